package bucket

import (
	"encoding/json"
	"testing"

	"github.com/spf13/afero"

	"gamecache/pkg/models"
)

func testGames() []models.Game {
	return []models.Game{
		{IGDBID: 1, Name: "The Witcher 3", Genres: []string{"RPG"}, ExternalIDs: []models.ExternalID{}},
		{IGDBID: 2, Name: "Thief", ExternalIDs: []models.ExternalID{}},
		{IGDBID: 3, Name: "7 Days to Die", ExternalIDs: []models.ExternalID{}},
		{IGDBID: 4, Name: "", ExternalIDs: []models.ExternalID{}},
		{IGDBID: 5, Name: "The Talos Principle", ExternalIDs: []models.ExternalID{}},
	}
}

func newTestSplitter() *Splitter {
	return &Splitter{
		Fs:       afero.NewMemMapFs(),
		GamesDir: "data/games",
	}
}

func readBucket(t *testing.T, fs afero.Fs, path string) []models.Game {
	t.Helper()
	b, err := afero.ReadFile(fs, path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	var games []models.Game
	if err := json.Unmarshal(b, &games); err != nil {
		t.Fatalf("parse %s: %v", path, err)
	}
	return games
}

func TestSplit(t *testing.T) {
	t.Run("groups by key with fan-out dirs", func(t *testing.T) {
		s := newTestSplitter()
		m, err := s.Split(testGames())
		if err != nil {
			t.Fatalf("split failed: %v", err)
		}

		// "The Witcher 3", "Thief" and "The Talos Principle" share "th"
		th := readBucket(t, s.Fs, "data/games/t/th.json")
		if len(th) != 3 {
			t.Fatalf("expected 3 games in th bucket, got %d", len(th))
		}
		// stable grouping: input order preserved inside the bucket
		if th[0].IGDBID != 1 || th[1].IGDBID != 2 || th[2].IGDBID != 5 {
			t.Errorf("th bucket out of order: %d, %d, %d", th[0].IGDBID, th[1].IGDBID, th[2].IGDBID)
		}

		sevenD := readBucket(t, s.Fs, "data/games/7/7d.json")
		if len(sevenD) != 1 || sevenD[0].IGDBID != 3 {
			t.Errorf("unexpected 7d bucket contents: %+v", sevenD)
		}

		// nameless game lands in the 00 bucket under the 0 dir
		zeroes := readBucket(t, s.Fs, "data/games/0/00.json")
		if len(zeroes) != 1 || zeroes[0].IGDBID != 4 {
			t.Errorf("unexpected 00 bucket contents: %+v", zeroes)
		}

		if m.TotalGames != 5 || m.TotalBuckets != 3 || m.TotalSubdirs != 3 {
			t.Errorf("manifest totals = %d/%d/%d, want 5/3/3",
				m.TotalGames, m.TotalBuckets, m.TotalSubdirs)
		}
	})

	t.Run("no record dropped or duplicated", func(t *testing.T) {
		s := newTestSplitter()
		games := testGames()
		m, err := s.Split(games)
		if err != nil {
			t.Fatalf("split failed: %v", err)
		}

		seen := map[int64]int{}
		for _, stat := range m.Buckets {
			for _, g := range readBucket(t, s.Fs, "data/games/"+stat.File) {
				seen[g.IGDBID]++
			}
		}
		if len(seen) != len(games) {
			t.Fatalf("expected %d distinct games across buckets, got %d", len(games), len(seen))
		}
		for id, n := range seen {
			if n != 1 {
				t.Errorf("game %d appears %d times across buckets", id, n)
			}
		}
	})

	t.Run("manifest stats match written files", func(t *testing.T) {
		s := newTestSplitter()
		m, err := s.Split(testGames())
		if err != nil {
			t.Fatalf("split failed: %v", err)
		}

		for key, stat := range m.Buckets {
			info, err := s.Fs.Stat("data/games/" + stat.File)
			if err != nil {
				t.Fatalf("stat bucket %s: %v", key, err)
			}
			if info.Size() != stat.Size {
				t.Errorf("bucket %s: manifest size %d, file size %d", key, stat.Size, info.Size())
			}
		}
	})

	t.Run("idempotent over identical input", func(t *testing.T) {
		s1 := newTestSplitter()
		m1, err := s1.Split(testGames())
		if err != nil {
			t.Fatalf("first split failed: %v", err)
		}

		s2 := newTestSplitter()
		m2, err := s2.Split(testGames())
		if err != nil {
			t.Fatalf("second split failed: %v", err)
		}

		for key, stat := range m1.Buckets {
			b1, _ := afero.ReadFile(s1.Fs, "data/games/"+stat.File)
			b2, err := afero.ReadFile(s2.Fs, "data/games/"+stat.File)
			if err != nil {
				t.Fatalf("second run missing bucket %s: %v", key, err)
			}
			if string(b1) != string(b2) {
				t.Errorf("bucket %s differs between runs", key)
			}
		}

		// manifests agree modulo the timestamp
		m1.Updated = ""
		m2.Updated = ""
		j1, _ := json.Marshal(m1)
		j2, _ := json.Marshal(m2)
		if string(j1) != string(j2) {
			t.Errorf("manifests differ between runs:\n%s\n%s", j1, j2)
		}
	})

	t.Run("empty input is an error", func(t *testing.T) {
		s := newTestSplitter()
		if _, err := s.Split(nil); err == nil {
			t.Error("expected error for empty input")
		}
	})
}

func TestWriteManifest(t *testing.T) {
	s := newTestSplitter()
	m, err := s.Split(testGames())
	if err != nil {
		t.Fatalf("split failed: %v", err)
	}
	if err := s.WriteManifest("data/index.json", m); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	b, err := afero.ReadFile(s.Fs, "data/index.json")
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}

	var got Manifest
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("parse manifest: %v", err)
	}
	if got.Version != ManifestVersion {
		t.Errorf("version = %q, want %q", got.Version, ManifestVersion)
	}
	if got.Structure != "games/{first_char}/{bucket}.json" {
		t.Errorf("unexpected structure field: %q", got.Structure)
	}
	if len(got.Buckets) != m.TotalBuckets {
		t.Errorf("bucket table has %d entries, want %d", len(got.Buckets), m.TotalBuckets)
	}
}

func TestLoad(t *testing.T) {
	s := newTestSplitter()

	games := testGames()
	b, _ := json.Marshal(games)
	if err := afero.WriteFile(s.Fs, "data/all_games.json", b, 0o644); err != nil {
		t.Fatalf("seed all_games.json: %v", err)
	}

	got, err := s.Load("data/all_games.json")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(got) != len(games) {
		t.Fatalf("loaded %d games, want %d", len(got), len(games))
	}

	t.Run("missing file", func(t *testing.T) {
		if _, err := s.Load("data/nope.json"); err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("malformed file", func(t *testing.T) {
		_ = afero.WriteFile(s.Fs, "data/bad.json", []byte("{not an array"), 0o644)
		if _, err := s.Load("data/bad.json"); err == nil {
			t.Error("expected error for malformed file")
		}
	})
}
