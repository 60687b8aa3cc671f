package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"gamecache/pkg/database"
	"gamecache/pkg/models"
)

// import-db loads the consolidated catalog into a local SQLite
// database for apps that prefer SQL over the sharded JSON layout.
// It is optional; the published artifact stays the file layout.
func main() {
	var (
		in = flag.String("in", "data/all_games.json", "input consolidated JSON path")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	db := database.MustOpen(database.DefaultConfig())
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	games, err := loadGames(*in)
	if err != nil {
		log.Fatalf("load games failed: %v", err)
	}

	if err := importGames(ctx, db, games); err != nil {
		log.Fatalf("import failed: %v", err)
	}

	log.Printf("✅ imported %d games from %s", len(games), *in)
}

func loadGames(path string) ([]models.Game, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var games []models.Game
	if err := json.Unmarshal(b, &games); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return games, nil
}

func importGames(ctx context.Context, db *sql.DB, games []models.Game) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	gameStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO games (igdb_id, name, summary, genres, developers, publishers,
		                   aggregated_rating, release_date, platforms, cover_url)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(igdb_id) DO UPDATE SET
		  name = excluded.name,
		  summary = excluded.summary,
		  genres = excluded.genres,
		  developers = excluded.developers,
		  publishers = excluded.publishers,
		  aggregated_rating = excluded.aggregated_rating,
		  release_date = excluded.release_date,
		  platforms = excluded.platforms,
		  cover_url = excluded.cover_url
	`)
	if err != nil {
		return fmt.Errorf("prepare games stmt: %w", err)
	}
	defer gameStmt.Close()

	delRefs, err := tx.PrepareContext(ctx, `DELETE FROM external_ids WHERE igdb_id = ?`)
	if err != nil {
		return fmt.Errorf("prepare delete refs stmt: %w", err)
	}
	defer delRefs.Close()

	refStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO external_ids (igdb_id, category, store, uid, url)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare refs stmt: %w", err)
	}
	defer refStmt.Close()

	for _, g := range games {
		genres, _ := json.Marshal(g.Genres)
		developers, _ := json.Marshal(g.Developers)
		publishers, _ := json.Marshal(g.Publishers)
		platforms, _ := json.Marshal(g.Platforms)

		if _, err := gameStmt.ExecContext(
			ctx,
			g.IGDBID,
			g.Name,
			g.Summary,
			string(genres),
			string(developers),
			string(publishers),
			g.AggregatedRating,
			g.ReleaseDate,
			string(platforms),
			g.CoverURL,
		); err != nil {
			return fmt.Errorf("exec upsert for %d: %w", g.IGDBID, err)
		}

		// refs are owned by their game: replace wholesale on re-import
		if _, err := delRefs.ExecContext(ctx, g.IGDBID); err != nil {
			return fmt.Errorf("clear refs for %d: %w", g.IGDBID, err)
		}
		for _, ref := range g.ExternalIDs {
			if _, err := refStmt.ExecContext(ctx, g.IGDBID, ref.Category, ref.Store, ref.UID, ref.URL); err != nil {
				return fmt.Errorf("exec ref insert for %d: %w", g.IGDBID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
