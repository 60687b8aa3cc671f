package database

import (
	"database/sql"
	"fmt"
)

// schema is embedded so the import tool works from any directory.
const schema = `
CREATE TABLE IF NOT EXISTS games (
  igdb_id INTEGER PRIMARY KEY,
  name TEXT,
  summary TEXT,
  genres TEXT,      -- JSON array as text
  developers TEXT,  -- JSON array as text
  publishers TEXT,  -- JSON array as text
  aggregated_rating REAL,
  release_date INTEGER,
  platforms TEXT,   -- JSON array as text
  cover_url TEXT
);

CREATE TABLE IF NOT EXISTS external_ids (
  igdb_id INTEGER NOT NULL REFERENCES games(igdb_id) ON DELETE CASCADE,
  category INTEGER NOT NULL,
  store TEXT NOT NULL,
  uid TEXT,
  url TEXT
);

CREATE INDEX IF NOT EXISTS idx_external_ids_game ON external_ids(igdb_id);
CREATE INDEX IF NOT EXISTS idx_external_ids_store ON external_ids(store, uid);
`

func Migrate(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
