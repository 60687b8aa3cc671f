package utils

import (
	"os"
	"strconv"
	"time"
)

// FetchConfig holds everything the fetch stage reads from the
// environment. Every field has a working default so a bare
// `go run ./cmd/fetcher` against real credentials just works.
type FetchConfig struct {
	ClientID     string
	ClientSecret string

	PageSize     int           // records per page request
	RequestDelay time.Duration // pause between pages (~3.5 req/sec)
	Cooldown     time.Duration // pause after a 429 before retrying
	MaxRetries   int           // 429 retries per page; 0 = unbounded
	MinGames     int           // reject runs smaller than this
	MaxGames     int           // stop paginating past this many

	DataDir    string // where all_games.json and games/ live
	StoresFile string // optional JSON override for the store table
}

// LoadFetchConfig reads the fetch configuration from the environment.
// Unset or unparseable values fall back to defaults.
func LoadFetchConfig() FetchConfig {
	return FetchConfig{
		ClientID:     envString("IGDB_CLIENT_ID", ""),
		ClientSecret: envString("IGDB_CLIENT_SECRET", ""),

		PageSize:     envPositiveInt("GAMECACHE_PAGE_SIZE", 500),
		RequestDelay: envMillis("GAMECACHE_REQUEST_DELAY_MS", 286*time.Millisecond),
		Cooldown:     envMillis("GAMECACHE_RATE_LIMIT_COOLDOWN_MS", 5*time.Second),
		MaxRetries:   envInt("GAMECACHE_MAX_RETRIES", 0),
		MinGames:     envPositiveInt("GAMECACHE_MIN_GAMES", 100000),
		MaxGames:     envPositiveInt("GAMECACHE_MAX_GAMES", 400000),

		DataDir:    envString("GAMECACHE_DATA_DIR", "data"),
		StoresFile: envString("GAMECACHE_STORES_FILE", ""),
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		// if parse fails, fall back to the default
		return fallback
	}
	return n
}

// envPositiveInt is envInt for knobs where zero makes no sense: a zero
// page size would stall the cursor, a zero min/max games would disable
// validation or fetch nothing.
func envPositiveInt(key string, fallback int) int {
	n := envInt(key, fallback)
	if n <= 0 {
		return fallback
	}
	return n
}

func envMillis(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return fallback
	}
	return time.Duration(n) * time.Millisecond
}
