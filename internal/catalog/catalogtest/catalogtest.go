// Package catalogtest provides a testify mock of catalog.Client.
package catalogtest

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/ryanm101/gameshelf/internal/catalog"
)

// Client is a mock catalog.Client.
type Client struct {
	mock.Mock
}

var _ catalog.Client = (*Client)(nil)

func (m *Client) ListGames(ctx context.Context, opts catalog.ListOptions) (*catalog.GameListResponse, error) {
	args := m.Called(ctx, opts)
	res, _ := args.Get(0).(*catalog.GameListResponse)
	return res, args.Error(1)
}

func (m *Client) GetGame(ctx context.Context, id int64) (*catalog.Game, error) {
	args := m.Called(ctx, id)
	g, _ := args.Get(0).(*catalog.Game)
	return g, args.Error(1)
}

// Games returns n catalog games with ids 1..n and two genres each.
func Games(n int) []catalog.Game {
	games := make([]catalog.Game, 0, n)
	for i := 1; i <= n; i++ {
		games = append(games, catalog.Game{
			ID:     int64(i),
			Name:   "Game " + string(rune('A'+i-1)),
			Rating: 4.0 + float64(i)/10,
			Genres: []catalog.Genre{
				{ID: 4, Name: "Action", Slug: "action"},
				{ID: 5, Name: "RPG", Slug: "role-playing-games-rpg"},
			},
		})
	}
	return games
}

// Page wraps games in a list response.
func Page(games []catalog.Game) *catalog.GameListResponse {
	return &catalog.GameListResponse{Count: len(games), Results: games}
}
