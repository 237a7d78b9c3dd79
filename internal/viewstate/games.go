package viewstate

import (
	"context"

	"github.com/ryanm101/gameshelf/internal/catalog"
)

// GameSource is the catalog side of the games repository.
type GameSource interface {
	FetchGames(ctx context.Context, page int) (*catalog.GameListResponse, error)
	SearchGames(ctx context.Context, query string, page int) (*catalog.GameListResponse, error)
	GameDetails(ctx context.Context, id int64) (*catalog.Game, error)
}

// ListPage is the state of the game list screen.
type ListPage struct {
	Games   []catalog.Game
	Page    int
	Query   string
	HasNext bool
}

// GameList backs the game list screen.
type GameList struct {
	base
	op
	List *Observable[ListPage]

	games GameSource
}

// NewGameList returns an empty GameList.
func NewGameList(rt *Runtime, games GameSource) *GameList {
	return &GameList{
		base:  newBase(rt, "games"),
		op:    newOp(),
		List:  NewObservable(ListPage{Page: 1}),
		games: games,
	}
}

// Load fetches a catalog page. A failure leaves the list unchanged.
func (h *GameList) Load(page int) {
	h.Search("", page)
}

// Search fetches a page of results for query; an empty query lists the
// catalog.
func (h *GameList) Search(query string, page int) {
	if page < 1 {
		page = 1
	}
	load(&h.base, h.op,
		func(ctx context.Context) (*catalog.GameListResponse, error) {
			return h.games.SearchGames(ctx, query, page)
		},
		func(res *catalog.GameListResponse) {
			h.List.Set(ListPage{Games: res.Results, Page: page, Query: query, HasNext: res.Next != ""})
		},
		nil)
}

// NextPage loads the page after the current one, if there is one.
func (h *GameList) NextPage() {
	cur := h.List.Get()
	if cur.HasNext {
		h.Search(cur.Query, cur.Page+1)
	}
}

// PrevPage loads the page before the current one.
func (h *GameList) PrevPage() {
	cur := h.List.Get()
	if cur.Page > 1 {
		h.Search(cur.Query, cur.Page-1)
	}
}

// GameDetail backs the game detail screen.
type GameDetail struct {
	base
	op
	Game *Observable[*catalog.Game]

	games GameSource
}

// NewGameDetail returns an empty GameDetail.
func NewGameDetail(rt *Runtime, games GameSource) *GameDetail {
	return &GameDetail{
		base:  newBase(rt, "detail"),
		op:    newOp(),
		Game:  NewObservable[*catalog.Game](nil),
		games: games,
	}
}

// Show publishes a game handed over by the list screen, before its full
// record is loaded.
func (h *GameDetail) Show(g catalog.Game) {
	h.rt.Loop.Post(func() {
		if !h.Closed() {
			h.Game.Set(&g)
		}
	})
}

// Load fetches the full record of id. A failure clears the game.
func (h *GameDetail) Load(id int64) {
	load(&h.base, h.op,
		func(ctx context.Context) (*catalog.Game, error) {
			return h.games.GameDetails(ctx, id)
		},
		func(g *catalog.Game) { h.Game.Set(g) },
		func(error) { h.Game.Set(nil) })
}
