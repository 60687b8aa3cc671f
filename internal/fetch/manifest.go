package fetch

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/google/uuid"
)

// ManifestVersion is bumped when the on-disk layout changes shape.
const ManifestVersion = "1.0.0"

// Manifest is the fetch-stage view of index.json. The splitter later
// rewrites the file with its per-bucket table; here the buckets block
// is only a placeholder saying where they will live.
type Manifest struct {
	Version  string        `json:"version"`
	Updated  string        `json:"updated"`
	RunID    string        `json:"run_id"`
	AllGames AllGamesStats `json:"all_games"`
	Buckets  BucketsStub   `json:"buckets"`
}

type AllGamesStats struct {
	File   string  `json:"file"`
	Count  int     `json:"count"`
	Size   int64   `json:"size"`
	SizeMB float64 `json:"size_mb"`
}

type BucketsStub struct {
	Available bool   `json:"available"`
	Directory string `json:"directory"`
	Count     int    `json:"count"`
}

// WriteManifest regenerates the fetch manifest next to the published
// consolidated file. Called only after a successful commit.
func WriteManifest(manifestPath, consolidatedPath string, count int) error {
	var size int64
	if info, err := os.Stat(consolidatedPath); err == nil {
		size = info.Size()
	}

	m := Manifest{
		Version: ManifestVersion,
		Updated: time.Now().UTC().Format(time.RFC3339),
		RunID:   uuid.New().String(),
		AllGames: AllGamesStats{
			File:   "all_games.json",
			Count:  count,
			Size:   size,
			SizeMB: math.Round(float64(size)/1048576*10) / 10,
		},
		Buckets: BucketsStub{
			Available: true,
			Directory: "games/",
			Count:     0, // filled in by the splitter
		},
	}

	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	if err := os.WriteFile(manifestPath, b, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}
