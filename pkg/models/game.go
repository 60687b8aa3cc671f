package models

// Game is the normalized, internal form of one catalog entry as it
// appears in all_games.json and in every bucket file.
//
// The fetcher maps raw IGDB responses into this structure first, then
// everything downstream (validation, split, DB import) works from it.
type Game struct {
	IGDBID           int64        `json:"igdb_id"`                     // upstream numeric id (natural key)
	Name             string       `json:"name"`                        // display name; may be empty
	Summary          string       `json:"summary,omitempty"`           // free-text description
	Genres           []string     `json:"genres"`                      // genre labels, upstream order
	Developers       []string     `json:"developers"`                  // developing companies
	Publishers       []string     `json:"publishers"`                  // publishing companies
	AggregatedRating float64      `json:"aggregated_rating,omitempty"` // critic rating, 0-100
	ReleaseDate      int64        `json:"release_date,omitempty"`      // first release, unix seconds
	Platforms        []string     `json:"platforms"`                   // platform labels
	CoverURL         string       `json:"cover_url,omitempty"`         // cover image URL (if any)
	ExternalIDs      []ExternalID `json:"external_ids"`                // store cross-references
}

// ExternalID is one store cross-reference owned by a single Game.
// It only ever exists embedded in its parent; there is no separate
// external_ids dataset.
type ExternalID struct {
	Category int    `json:"category"` // upstream store category code
	Store    string `json:"store"`    // derived label, e.g. "steam"
	UID      string `json:"uid"`      // id of the game inside that store
	URL      string `json:"url"`      // store page URL
}
