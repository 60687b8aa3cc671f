package fetch

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteManifest(t *testing.T) {
	dir := t.TempDir()
	consolidated := filepath.Join(dir, "all_games.json")
	manifest := filepath.Join(dir, "index.json")

	writeFileT(t, consolidated, `[{"igdb_id":1},{"igdb_id":2}]`)

	if err := WriteManifest(manifest, consolidated, 2); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	b, err := os.ReadFile(manifest)
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}

	var m Manifest
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("parse manifest: %v", err)
	}
	if m.Version != ManifestVersion {
		t.Errorf("version = %q, want %q", m.Version, ManifestVersion)
	}
	if m.RunID == "" {
		t.Error("run_id is empty")
	}
	if m.Updated == "" {
		t.Error("updated is empty")
	}
	if m.AllGames.Count != 2 {
		t.Errorf("count = %d, want 2", m.AllGames.Count)
	}

	info, _ := os.Stat(consolidated)
	if m.AllGames.Size != info.Size() {
		t.Errorf("size = %d, want %d", m.AllGames.Size, info.Size())
	}
	if m.AllGames.File != "all_games.json" {
		t.Errorf("file = %q", m.AllGames.File)
	}
	if !m.Buckets.Available || m.Buckets.Directory != "games/" {
		t.Errorf("unexpected buckets stub: %+v", m.Buckets)
	}
}
