package catalog

import (
	"context"
	"strings"
)

// Genre is a catalog genre.
type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Developer is a studio credited on a game. Only the detail endpoint
// returns developers.
type Developer struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// RatingItem is one bucket of a game's rating distribution
// (e.g. "exceptional", "recommended", "meh", "skip").
type RatingItem struct {
	ID      int64   `json:"id"`
	Title   string  `json:"title"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// Game is a catalog game. List results carry the summary fields; the detail
// endpoint adds developers.
type Game struct {
	ID              int64        `json:"id"`
	Name            string       `json:"name"`
	Released        string       `json:"released,omitempty"`
	BackgroundImage string       `json:"background_image,omitempty"`
	Rating          float64      `json:"rating"`
	Developers      []Developer  `json:"developers,omitempty"`
	Genres          []Genre      `json:"genres,omitempty"`
	Ratings         []RatingItem `json:"ratings,omitempty"`
}

// GenreNames returns the genre names in catalog order.
func (g Game) GenreNames() []string {
	names := make([]string, 0, len(g.Genres))
	for _, genre := range g.Genres {
		names = append(names, genre.Name)
	}
	return names
}

// Developer returns the developer names joined with ", ".
func (g Game) Developer() string {
	names := make([]string, 0, len(g.Developers))
	for _, d := range g.Developers {
		names = append(names, d.Name)
	}
	return strings.Join(names, ", ")
}

// GameListResponse is one page of catalog results.
type GameListResponse struct {
	Count    int    `json:"count"`
	Next     string `json:"next,omitempty"`
	Previous string `json:"previous,omitempty"`
	Results  []Game `json:"results"`
}

// DefaultPageSize is the page size used when ListOptions leaves it unset.
const DefaultPageSize = 20

// ListOptions selects a page of catalog results.
type ListOptions struct {
	Page     int
	PageSize int
	Ordering string // e.g. "-rating", "popularity", "-added"
	Search   string
}

// Client reads from the game catalog.
type Client interface {
	// ListGames returns one page of games.
	ListGames(ctx context.Context, opts ListOptions) (*GameListResponse, error)
	// GetGame returns a single game including its rating distribution.
	GetGame(ctx context.Context, id int64) (*Game, error)
}
