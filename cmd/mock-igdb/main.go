package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

// mock-igdb emulates just enough of the token and catalog endpoints to
// run the fetcher offline:
//
//	POST /oauth2/token         -> {"access_token": ..., "expires_in": ...}
//	POST /v4/games             -> deterministic synthesized games
//	POST /v4/external_games    -> 2 refs per requested game id
//
// Point the fetcher at it with:
//
//	IGDB_AUTH_URL=http://localhost:9000/oauth2/token \
//	IGDB_API_URL=http://localhost:9000/v4 \
//	GAMECACHE_MIN_GAMES=100 go run ./cmd/fetcher
func main() {
	var (
		addr       = flag.String("addr", ":9000", "listen address")
		totalGames = flag.Int("games", 1500, "size of the synthesized catalog")
		limitEvery = flag.Int("rate-limit-every", 0, "answer 429 to every Nth query (0 = never)")
	)
	flag.Parse()

	var requests atomic.Int64

	rateLimited := func() bool {
		if *limitEvery <= 0 {
			return false
		}
		return requests.Add(1)%int64(*limitEvery) == 0
	}

	router := gin.Default()

	router.POST("/oauth2/token", func(c *gin.Context) {
		if c.PostForm("client_id") == "" || c.PostForm("client_secret") == "" {
			c.JSON(http.StatusBadRequest, gin.H{"message": "missing credentials"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"access_token": "mock-token",
			"expires_in":   5183999,
			"token_type":   "bearer",
		})
	})

	router.POST("/v4/games", func(c *gin.Context) {
		if rateLimited() {
			c.JSON(http.StatusTooManyRequests, gin.H{"message": "Too Many Requests"})
			return
		}
		body, _ := io.ReadAll(c.Request.Body)
		offset := extractInt(string(body), "offset")
		limit := extractInt(string(body), "limit")
		if limit <= 0 {
			limit = 500
		}

		games := make([]gin.H, 0, limit)
		for i := offset; i < offset+limit && i < *totalGames; i++ {
			id := int64(i + 1)
			games = append(games, gin.H{
				"id":      id,
				"name":    fmt.Sprintf("Mock Game %d", id),
				"summary": fmt.Sprintf("Synthesized catalog entry %d.", id),
				"genres":  []gin.H{{"name": "Adventure"}},
				"involved_companies": []gin.H{
					{"company": gin.H{"name": "Mock Studio"}, "developer": true, "publisher": false},
					{"company": gin.H{"name": "Mock Publishing"}, "developer": false, "publisher": true},
				},
				"aggregated_rating":  float64(50 + id%50),
				"first_release_date": 1262304000 + id*86400,
				"platforms":          []gin.H{{"name": "PC (Microsoft Windows)"}},
				"cover":              gin.H{"url": fmt.Sprintf("//images.mock/covers/%d.jpg", id)},
			})
		}
		c.JSON(http.StatusOK, games)
	})

	router.POST("/v4/external_games", func(c *gin.Context) {
		if rateLimited() {
			c.JSON(http.StatusTooManyRequests, gin.H{"message": "Too Many Requests"})
			return
		}
		body, _ := io.ReadAll(c.Request.Body)
		ids := extractIDs(string(body))

		refs := make([]gin.H, 0, len(ids)*2)
		for _, id := range ids {
			refs = append(refs,
				gin.H{"id": id * 10, "game": id, "category": 1,
					"uid": strconv.FormatInt(100000+id, 10),
					"url": fmt.Sprintf("https://store.mock/steam/%d", id)},
				gin.H{"id": id*10 + 1, "game": id, "category": 5,
					"uid": strconv.FormatInt(200000+id, 10),
					"url": fmt.Sprintf("https://store.mock/gog/%d", id)},
			)
		}
		c.JSON(http.StatusOK, refs)
	})

	log.Printf("mock-igdb listening on %s (%d games)", *addr, *totalGames)
	log.Fatal(router.Run(*addr))
}

var intRe = regexp.MustCompile(`(offset|limit)\s+(\d+)\s*;`)

func extractInt(body, field string) int {
	for _, m := range intRe.FindAllStringSubmatch(body, -1) {
		if m[1] == field {
			n, _ := strconv.Atoi(m[2])
			return n
		}
	}
	return 0
}

var idListRe = regexp.MustCompile(`game\s*=\s*\(([^)]*)\)`)

func extractIDs(body string) []int64 {
	m := idListRe.FindStringSubmatch(body)
	if m == nil {
		return nil
	}
	var ids []int64
	for _, part := range strings.Split(m[1], ",") {
		n, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err == nil {
			ids = append(ids, n)
		}
	}
	return ids
}
