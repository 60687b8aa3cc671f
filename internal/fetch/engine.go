package fetch

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gamecache/internal/igdb"
	"gamecache/pkg/models"
)

// API is the slice of the IGDB client the engine needs. Split out so
// engine tests can drive the loop against a stub without a server.
type API interface {
	Games(ctx context.Context, s igdb.Session, offset, limit int) ([]igdb.Game, error)
	ExternalGames(ctx context.Context, s igdb.Session, ids []int64) ([]igdb.ExternalGame, error)
}

// maxConsecutiveEmpty is how many empty pages in a row mean
// end-of-data. Transient empty responses below that are tolerated.
const maxConsecutiveEmpty = 3

// Engine walks the full games collection page by page, joins each page
// with its external-store cross-references, and appends the result to
// a staging writer. Strictly sequential: one page's games fetch, its
// refs fetch, and its write finish before the next page starts.
type Engine struct {
	API     API
	Session igdb.Session
	Stores  StoreTable

	PageSize     int
	MaxGames     int
	RequestDelay time.Duration // pause between pages
	Cooldown     time.Duration // pause after a 429
	MaxRetries   int           // 429 retries per request; 0 = unbounded

	// Sleep is swapped out in tests so retry paths run without real
	// delays. Nil means time.Sleep.
	Sleep func(time.Duration)
}

func (e *Engine) sleep(d time.Duration) {
	if e.Sleep != nil {
		e.Sleep(d)
		return
	}
	time.Sleep(d)
}

// Download runs the fetch-join loop and returns the number of games
// written. Upstream ids are passed through as-is: if the source ever
// returns duplicate ids, they appear twice in the output.
func (e *Engine) Download(ctx context.Context, w *ArrayWriter) (int, error) {
	if e.PageSize <= 0 {
		return 0, fmt.Errorf("page size must be positive, got %d", e.PageSize)
	}

	log.Printf("[fetch] starting download (page size %d, limit %d)", e.PageSize, e.MaxGames)

	consecutiveEmpty := 0
	for offset := 0; offset < e.MaxGames; offset += e.PageSize {
		if err := ctx.Err(); err != nil {
			return w.Count(), err
		}

		games, err := e.fetchGamesPage(ctx, offset)
		if err != nil {
			return w.Count(), err
		}

		if len(games) == 0 {
			consecutiveEmpty++
			if consecutiveEmpty >= maxConsecutiveEmpty {
				log.Printf("[fetch] no more games after offset %d", offset)
				break
			}
			continue
		}
		consecutiveEmpty = 0

		ids := make([]int64, 0, len(games))
		for _, g := range games {
			if g.ID != 0 {
				ids = append(ids, g.ID)
			}
		}

		refs, err := e.fetchExternalRefs(ctx, ids)
		if err != nil {
			return w.Count(), err
		}

		refsByGame := e.joinRefs(refs)
		for _, g := range games {
			if err := w.Append(e.normalize(g, refsByGame[g.ID])); err != nil {
				return w.Count(), err
			}
		}

		if w.Count()%e.PageSize == 0 {
			log.Printf("[fetch] processed %d games", w.Count())
		}

		// stay under the upstream requests-per-second ceiling
		e.sleep(e.RequestDelay)
	}

	log.Printf("[fetch] download finished: %d games", w.Count())
	return w.Count(), nil
}

// fetchGamesPage retrieves one page, waiting out 429s and retrying the
// same offset. Any other upstream failure is logged and yields an
// empty page: validation is the backstop for a partially failed run.
func (e *Engine) fetchGamesPage(ctx context.Context, offset int) ([]igdb.Game, error) {
	retries := 0
	for {
		games, err := e.API.Games(ctx, e.Session, offset, e.PageSize)
		switch {
		case err == nil:
			return games, nil
		case errors.Is(err, igdb.ErrRateLimited):
			retries++
			if e.MaxRetries > 0 && retries > e.MaxRetries {
				log.Printf("[fetch] giving up on offset %d after %d rate-limit retries", offset, e.MaxRetries)
				return nil, nil
			}
			log.Printf("[fetch] rate limited at offset %d, waiting %s", offset, e.Cooldown)
			e.sleep(e.Cooldown)
		case errors.As(err, new(*igdb.StatusError)):
			log.Printf("[fetch] failed to fetch games at offset %d: %v", offset, err)
			return nil, nil
		default:
			return nil, err
		}
	}
}

// fetchExternalRefs retrieves the cross-references for one page's ids,
// with the same 429-and-retry handling. A hard failure degrades to "no
// refs for this page" so the games themselves are still written.
func (e *Engine) fetchExternalRefs(ctx context.Context, ids []int64) ([]igdb.ExternalGame, error) {
	retries := 0
	for {
		refs, err := e.API.ExternalGames(ctx, e.Session, ids)
		switch {
		case err == nil:
			return refs, nil
		case errors.Is(err, igdb.ErrRateLimited):
			retries++
			if e.MaxRetries > 0 && retries > e.MaxRetries {
				log.Printf("[fetch] giving up on external ids after %d rate-limit retries", e.MaxRetries)
				return nil, nil
			}
			e.sleep(e.Cooldown)
		case errors.As(err, new(*igdb.StatusError)):
			log.Printf("[fetch] failed to fetch external ids: %v", err)
			return nil, nil
		default:
			return nil, err
		}
	}
}

// joinRefs groups raw cross-references by their owning game id,
// preserving upstream order. A game with several entries for the same
// store keeps all of them.
func (e *Engine) joinRefs(refs []igdb.ExternalGame) map[int64][]models.ExternalID {
	byGame := make(map[int64][]models.ExternalID)
	for _, r := range refs {
		byGame[r.Game] = append(byGame[r.Game], models.ExternalID{
			Category: r.Category,
			Store:    e.Stores.Label(r.Category),
			UID:      r.UID,
			URL:      r.URL,
		})
	}
	return byGame
}

// normalize maps one raw IGDB game plus its joined refs into the
// canonical output entity.
func (e *Engine) normalize(g igdb.Game, refs []models.ExternalID) models.Game {
	genres := make([]string, 0, len(g.Genres))
	for _, x := range g.Genres {
		if x.Name != "" {
			genres = append(genres, x.Name)
		}
	}

	developers := []string{}
	publishers := []string{}
	for _, ic := range g.InvolvedCompanies {
		if ic.Company.Name == "" {
			continue
		}
		if ic.Developer {
			developers = append(developers, ic.Company.Name)
		}
		if ic.Publisher {
			publishers = append(publishers, ic.Company.Name)
		}
	}

	platforms := make([]string, 0, len(g.Platforms))
	for _, x := range g.Platforms {
		if x.Name != "" {
			platforms = append(platforms, x.Name)
		}
	}

	coverURL := ""
	if g.Cover != nil {
		coverURL = g.Cover.URL
	}

	if refs == nil {
		refs = []models.ExternalID{}
	}

	return models.Game{
		IGDBID:           g.ID,
		Name:             g.Name,
		Summary:          g.Summary,
		Genres:           genres,
		Developers:       developers,
		Publishers:       publishers,
		AggregatedRating: g.AggregatedRating,
		ReleaseDate:      g.FirstReleaseDate,
		Platforms:        platforms,
		CoverURL:         coverURL,
		ExternalIDs:      refs,
	}
}
