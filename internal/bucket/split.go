package bucket

import (
	"encoding/json"
	"fmt"
	"log"
	"math"
	"path"
	"sort"
	"time"

	"github.com/spf13/afero"

	"gamecache/pkg/models"
)

// ManifestVersion matches the fetch stage; both rewrite index.json.
const ManifestVersion = "1.0.0"

// Stat describes one written bucket file in the manifest.
type Stat struct {
	File   string  `json:"file"` // path relative to the games dir's parent
	Count  int     `json:"count"`
	Size   int64   `json:"size"`
	SizeKB float64 `json:"size_kb"`
}

// Manifest is the partition-stage view of index.json.
type Manifest struct {
	Version      string          `json:"version"`
	Updated      string          `json:"updated"`
	TotalGames   int             `json:"total_games"`
	TotalBuckets int             `json:"total_buckets"`
	TotalSubdirs int             `json:"total_subdirs"`
	Structure    string          `json:"structure"`
	Buckets      map[string]Stat `json:"buckets"`
}

// Splitter writes the sharded layout. Fs is an afero filesystem so
// tests can run against a memfs; the binary passes the OS fs.
type Splitter struct {
	Fs       afero.Fs
	GamesDir string // e.g. data/games
}

// Split groups games by bucket key and writes one compact JSON array
// per bucket at <GamesDir>/<subdir>/<key>.json. Grouping is stable:
// inside a bucket, games keep the order they had in the input.
//
// Re-running over identical input reproduces byte-identical bucket
// files and an identical manifest (modulo its timestamp).
func (s *Splitter) Split(games []models.Game) (*Manifest, error) {
	if len(games) == 0 {
		return nil, fmt.Errorf("no games to split")
	}

	log.Printf("[split] processing %d games", len(games))

	buckets := make(map[string][]models.Game)
	for _, g := range games {
		key := Key(g.Name)
		buckets[key] = append(buckets[key], g)
	}

	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	stats := make(map[string]Stat, len(buckets))
	subdirs := make(map[string]bool)

	log.Printf("[split] writing %d bucket files", len(buckets))
	for _, key := range keys {
		subdir := SubdirFor(key)
		dir := path.Join(s.GamesDir, subdir)
		if !subdirs[subdir] {
			if err := s.Fs.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("mkdir %s: %w", dir, err)
			}
			subdirs[subdir] = true
		}

		b, err := json.Marshal(buckets[key])
		if err != nil {
			return nil, fmt.Errorf("marshal bucket %s: %w", key, err)
		}

		file := path.Join(dir, key+".json")
		if err := afero.WriteFile(s.Fs, file, b, 0o644); err != nil {
			return nil, fmt.Errorf("write bucket %s: %w", key, err)
		}

		size := int64(len(b))
		stats[key] = Stat{
			File:   path.Join(subdir, key+".json"),
			Count:  len(buckets[key]),
			Size:   size,
			SizeKB: math.Round(float64(size)/1024*10) / 10,
		}
	}

	m := &Manifest{
		Version:      ManifestVersion,
		Updated:      time.Now().UTC().Format(time.RFC3339),
		TotalGames:   len(games),
		TotalBuckets: len(buckets),
		TotalSubdirs: len(subdirs),
		Structure:    "games/{first_char}/{bucket}.json",
		Buckets:      stats,
	}

	log.Printf("[split] done: %d games in %d buckets across %d subdirectories",
		m.TotalGames, m.TotalBuckets, m.TotalSubdirs)
	return m, nil
}

// WriteManifest overwrites index.json with the partition manifest.
func (s *Splitter) WriteManifest(manifestPath string, m *Manifest) error {
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	if err := afero.WriteFile(s.Fs, manifestPath, b, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// Load reads the consolidated file through the splitter's filesystem.
func (s *Splitter) Load(allGamesPath string) ([]models.Game, error) {
	b, err := afero.ReadFile(s.Fs, allGamesPath)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", allGamesPath, err)
	}
	var games []models.Game
	if err := json.Unmarshal(b, &games); err != nil {
		return nil, fmt.Errorf("parse %s: %w", allGamesPath, err)
	}
	return games, nil
}
