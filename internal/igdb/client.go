package igdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Public IGDB endpoints. Tests and the mock server override these
// through ClientOptions.
const (
	DefaultAPIURL  = "https://api.igdb.com/v4"
	DefaultAuthURL = "https://id.twitch.tv/oauth2/token"
)

// ErrRateLimited is returned when the API answers 429. The fetch
// engine treats it as retryable; every other non-200 becomes a
// *StatusError.
var ErrRateLimited = errors.New("igdb: rate limited")

// AuthError means the token exchange itself failed. It is fatal:
// credentials are either valid or not, so callers must not retry.
type AuthError struct {
	Status int
	Body   string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("igdb: auth failed: status %d: %s", e.Status, e.Body)
}

// StatusError is any non-200, non-429 response to a query.
type StatusError struct {
	Endpoint string
	Status   int
	Body     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("igdb: %s: status %d: %s", e.Endpoint, e.Status, e.Body)
}

// Session is the short-lived result of one token exchange. It is an
// immutable value threaded through every query call; the client keeps
// no token state of its own.
type Session struct {
	Token     string
	ExpiresIn time.Duration
}

// Client talks to the IGDB v4 API.
type Client struct {
	apiURL       string
	authURL      string
	clientID     string
	clientSecret string
	http         *http.Client
}

type ClientOptions struct {
	APIURL       string // defaults to DefaultAPIURL
	AuthURL      string // defaults to DefaultAuthURL
	ClientID     string
	ClientSecret string
	Timeout      time.Duration // defaults to 30s
}

func NewClient(opts ClientOptions) *Client {
	api := strings.TrimRight(opts.APIURL, "/")
	if api == "" {
		api = DefaultAPIURL
	}
	auth := opts.AuthURL
	if auth == "" {
		auth = DefaultAuthURL
	}
	to := opts.Timeout
	if to <= 0 {
		to = 30 * time.Second
	}
	return &Client{
		apiURL:       api,
		authURL:      auth,
		clientID:     opts.ClientID,
		clientSecret: opts.ClientSecret,
		http:         &http.Client{Timeout: to},
	}
}

// Authenticate performs the client-credentials exchange and returns a
// fresh Session. No refresh happens mid-run; a full catalog download
// is expected to finish well inside the token's validity window.
func (c *Client) Authenticate(ctx context.Context) (Session, error) {
	form := url.Values{}
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)
	form.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.authURL, strings.NewReader(form.Encode()))
	if err != nil {
		return Session{}, fmt.Errorf("igdb: build auth request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return Session{}, fmt.Errorf("igdb: auth request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return Session{}, &AuthError{Status: resp.StatusCode, Body: string(body)}
	}

	var tok struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &tok); err != nil {
		return Session{}, fmt.Errorf("igdb: decode auth response: %w", err)
	}
	if tok.AccessToken == "" {
		return Session{}, &AuthError{Status: resp.StatusCode, Body: "empty access_token"}
	}

	expires := tok.ExpiresIn
	if expires == 0 {
		expires = 3600
	}
	return Session{
		Token:     tok.AccessToken,
		ExpiresIn: time.Duration(expires) * time.Second,
	}, nil
}

// Game is the raw shape of one /games entry, before normalization.
type Game struct {
	ID                int64             `json:"id"`
	Name              string            `json:"name"`
	Summary           string            `json:"summary"`
	Genres            []Named           `json:"genres"`
	InvolvedCompanies []InvolvedCompany `json:"involved_companies"`
	AggregatedRating  float64           `json:"aggregated_rating"`
	FirstReleaseDate  int64             `json:"first_release_date"`
	Platforms         []Named           `json:"platforms"`
	Cover             *Cover            `json:"cover"`
}

// InvolvedCompany links a game to a company in a developer and/or
// publisher role.
type InvolvedCompany struct {
	Company   Named `json:"company"`
	Developer bool  `json:"developer"`
	Publisher bool  `json:"publisher"`
}

// Cover holds the cover-image reference of a game.
type Cover struct {
	URL string `json:"url"`
}

// Named is the {id, name} sub-object IGDB uses for expanded references.
type Named struct {
	Name string `json:"name"`
}

// ExternalGame is one raw /external_games entry. Game is the foreign
// key back to the owning /games id.
type ExternalGame struct {
	ID       int64  `json:"id"`
	Game     int64  `json:"game"`
	Category int    `json:"category"`
	UID      string `json:"uid"`
	URL      string `json:"url"`
}

// Games fetches one page of main games (category = 0), sorted by id so
// pagination stays stable across calls.
func (c *Client) Games(ctx context.Context, s Session, offset, limit int) ([]Game, error) {
	query := fmt.Sprintf(`fields id, name, summary,
       genres.name,
       involved_companies.company.name,
       involved_companies.developer,
       involved_companies.publisher,
       aggregated_rating,
       first_release_date,
       platforms.name,
       cover.url;
where category = 0;
offset %d;
limit %d;
sort id asc;`, offset, limit)

	var games []Game
	if err := c.query(ctx, s, "games", query, &games); err != nil {
		return nil, err
	}
	return games, nil
}

// ExternalGames fetches every cross-reference whose game id is in ids.
// The IN-predicate keeps the query bounded to one page's worth of keys.
func (c *Client) ExternalGames(ctx context.Context, s Session, ids []int64) ([]ExternalGame, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	query := fmt.Sprintf(`fields id, game, category, uid, url;
where game = (%s);
limit 500;`, strings.Join(parts, ","))

	var refs []ExternalGame
	if err := c.query(ctx, s, "external_games", query, &refs); err != nil {
		return nil, err
	}
	return refs, nil
}

// query posts one Apicalypse body to an endpoint and decodes the array
// response. 429 maps to ErrRateLimited so the engine can back off and
// retry the same page.
func (c *Client) query(ctx context.Context, s Session, endpoint, body string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/"+endpoint, strings.NewReader(body))
	if err != nil {
		return fmt.Errorf("igdb: build %s request: %w", endpoint, err)
	}
	req.Header.Set("Client-ID", c.clientID)
	req.Header.Set("Authorization", "Bearer "+s.Token)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("igdb: %s request: %w", endpoint, err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return ErrRateLimited
	case resp.StatusCode != http.StatusOK:
		return &StatusError{Endpoint: endpoint, Status: resp.StatusCode, Body: string(raw)}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("igdb: decode %s response: %w", endpoint, err)
	}
	return nil
}
