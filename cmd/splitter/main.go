package main

import (
	"flag"
	"log"
	"path/filepath"

	"github.com/spf13/afero"

	"gamecache/internal/bucket"
)

func main() {
	var (
		dataDir = flag.String("data", "data", "directory holding all_games.json")
	)
	flag.Parse()

	allGames := filepath.Join(*dataDir, "all_games.json")
	gamesDir := filepath.Join(*dataDir, "games")
	manifest := filepath.Join(*dataDir, "index.json")

	s := &bucket.Splitter{
		Fs:       afero.NewOsFs(),
		GamesDir: gamesDir,
	}

	log.Printf("[split] loading %s", allGames)
	games, err := s.Load(allGames)
	if err != nil {
		log.Fatalf("load consolidated file: %v", err)
	}

	m, err := s.Split(games)
	if err != nil {
		log.Fatalf("split failed: %v", err)
	}

	if err := s.WriteManifest(manifest, m); err != nil {
		log.Fatalf("write manifest: %v", err)
	}

	log.Printf("✅ %d games split into %d buckets under %s", m.TotalGames, m.TotalBuckets, gamesDir)
}
