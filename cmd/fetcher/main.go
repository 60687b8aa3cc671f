package main

import (
	"context"
	"errors"
	"log"
	"os"
	"path/filepath"

	"gamecache/internal/fetch"
	"gamecache/internal/igdb"
	"gamecache/pkg/utils"
)

func main() {
	cfg := utils.LoadFetchConfig()

	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		log.Fatal("IGDB_CLIENT_ID and IGDB_CLIENT_SECRET must be set")
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		log.Fatalf("create data dir: %v", err)
	}

	stores, err := fetch.LoadStoreTable(cfg.StoresFile)
	if err != nil {
		log.Fatalf("load store table: %v", err)
	}

	stagingPath := filepath.Join(cfg.DataDir, "all_games_temp.json")
	finalPath := filepath.Join(cfg.DataDir, "all_games.json")
	manifestPath := filepath.Join(cfg.DataDir, "index.json")

	ctx := context.Background()

	client := igdb.NewClient(igdb.ClientOptions{
		APIURL:       os.Getenv("IGDB_API_URL"),
		AuthURL:      os.Getenv("IGDB_AUTH_URL"),
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
	})

	log.Println("[auth] authenticating with Twitch")
	session, err := client.Authenticate(ctx)
	if err != nil {
		log.Fatalf("auth failed: %v", err)
	}
	log.Printf("[auth] authenticated (token expires in %dh)", int(session.ExpiresIn.Hours()))

	engine := &fetch.Engine{
		API:          client,
		Session:      session,
		Stores:       stores,
		PageSize:     cfg.PageSize,
		MaxGames:     cfg.MaxGames,
		RequestDelay: cfg.RequestDelay,
		Cooldown:     cfg.Cooldown,
		MaxRetries:   cfg.MaxRetries,
	}

	writer, err := fetch.NewArrayWriter(stagingPath)
	if err != nil {
		log.Fatalf("open staging file: %v", err)
	}

	count, err := engine.Download(ctx, writer)
	if err != nil {
		writer.Close()
		_ = os.Remove(stagingPath)
		log.Fatalf("download failed: %v", err)
	}
	if err := writer.Close(); err != nil {
		_ = os.Remove(stagingPath)
		log.Fatalf("close staging file: %v", err)
	}

	if err := fetch.ValidateAndCommit(stagingPath, finalPath, count, cfg.MinGames); err != nil {
		var verr *fetch.ValidationError
		if errors.As(err, &verr) {
			log.Printf("[abort] %v", verr)
			os.Exit(1)
		}
		_ = os.Remove(stagingPath)
		log.Fatalf("commit failed: %v", err)
	}

	if err := fetch.WriteManifest(manifestPath, finalPath, count); err != nil {
		log.Fatalf("write manifest: %v", err)
	}

	log.Printf("✅ %d games downloaded and validated", count)
}
