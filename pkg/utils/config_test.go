package utils

import (
	"testing"
	"time"
)

func TestLoadFetchConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg := LoadFetchConfig()

		if cfg.PageSize != 500 {
			t.Errorf("PageSize = %d, want 500", cfg.PageSize)
		}
		if cfg.RequestDelay != 286*time.Millisecond {
			t.Errorf("RequestDelay = %s, want 286ms", cfg.RequestDelay)
		}
		if cfg.Cooldown != 5*time.Second {
			t.Errorf("Cooldown = %s, want 5s", cfg.Cooldown)
		}
		if cfg.MinGames != 100000 {
			t.Errorf("MinGames = %d, want 100000", cfg.MinGames)
		}
		if cfg.MaxGames != 400000 {
			t.Errorf("MaxGames = %d, want 400000", cfg.MaxGames)
		}
		if cfg.MaxRetries != 0 {
			t.Errorf("MaxRetries = %d, want 0 (unbounded)", cfg.MaxRetries)
		}
		if cfg.DataDir != "data" {
			t.Errorf("DataDir = %q, want %q", cfg.DataDir, "data")
		}
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("IGDB_CLIENT_ID", "id-from-env")
		t.Setenv("GAMECACHE_PAGE_SIZE", "100")
		t.Setenv("GAMECACHE_REQUEST_DELAY_MS", "50")
		t.Setenv("GAMECACHE_MIN_GAMES", "10")
		t.Setenv("GAMECACHE_DATA_DIR", "/tmp/cache")

		cfg := LoadFetchConfig()
		if cfg.ClientID != "id-from-env" {
			t.Errorf("ClientID = %q", cfg.ClientID)
		}
		if cfg.PageSize != 100 {
			t.Errorf("PageSize = %d, want 100", cfg.PageSize)
		}
		if cfg.RequestDelay != 50*time.Millisecond {
			t.Errorf("RequestDelay = %s, want 50ms", cfg.RequestDelay)
		}
		if cfg.MinGames != 10 {
			t.Errorf("MinGames = %d, want 10", cfg.MinGames)
		}
		if cfg.DataDir != "/tmp/cache" {
			t.Errorf("DataDir = %q", cfg.DataDir)
		}
	})

	t.Run("bad values fall back to defaults", func(t *testing.T) {
		t.Setenv("GAMECACHE_PAGE_SIZE", "lots")
		t.Setenv("GAMECACHE_MIN_GAMES", "-5")

		cfg := LoadFetchConfig()
		if cfg.PageSize != 500 {
			t.Errorf("PageSize = %d, want default 500", cfg.PageSize)
		}
		if cfg.MinGames != 100000 {
			t.Errorf("MinGames = %d, want default 100000", cfg.MinGames)
		}
	})

	t.Run("zero rejected where it would stall the fetch", func(t *testing.T) {
		// a zero page size would never advance the offset cursor
		t.Setenv("GAMECACHE_PAGE_SIZE", "0")
		t.Setenv("GAMECACHE_MIN_GAMES", "0")
		t.Setenv("GAMECACHE_MAX_GAMES", "0")

		cfg := LoadFetchConfig()
		if cfg.PageSize != 500 {
			t.Errorf("PageSize = %d, want default 500", cfg.PageSize)
		}
		if cfg.MinGames != 100000 {
			t.Errorf("MinGames = %d, want default 100000", cfg.MinGames)
		}
		if cfg.MaxGames != 400000 {
			t.Errorf("MaxGames = %d, want default 400000", cfg.MaxGames)
		}
	})

	t.Run("zero retries stays valid as unbounded", func(t *testing.T) {
		t.Setenv("GAMECACHE_MAX_RETRIES", "0")

		cfg := LoadFetchConfig()
		if cfg.MaxRetries != 0 {
			t.Errorf("MaxRetries = %d, want 0 (unbounded)", cfg.MaxRetries)
		}
	})
}
