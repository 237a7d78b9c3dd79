// Package repository maps catalog and store calls into domain results and
// folds every failure into a single I/O error kind.
package repository

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/ryanm101/gameshelf/internal/catalog"
	"github.com/ryanm101/gameshelf/internal/db"
	"github.com/ryanm101/gameshelf/internal/logging"
	"github.com/ryanm101/gameshelf/internal/tracing"
)

// DefaultOrdering sorts catalog pages best-rated first.
const DefaultOrdering = "-rating"

// GamesOptions configures catalog paging.
type GamesOptions struct {
	PageSize int
	Ordering string
}

// Games reads the catalog and maintains the local game cache.
type Games struct {
	client catalog.Client
	store  *db.DB
	opts   GamesOptions
}

// NewGames returns a Games repository. Zero options fall back to a page
// size of 20 ordered by "-rating".
func NewGames(client catalog.Client, store *db.DB, opts GamesOptions) *Games {
	if opts.PageSize <= 0 {
		opts.PageSize = catalog.DefaultPageSize
	}
	if opts.Ordering == "" {
		opts.Ordering = DefaultOrdering
	}
	return &Games{client: client, store: store, opts: opts}
}

// FetchGames returns one page of the catalog.
func (r *Games) FetchGames(ctx context.Context, page int) (res *catalog.GameListResponse, err error) {
	ctx, span := tracing.StartSpan(ctx, "repository.FetchGames",
		tracing.WithAttributes(attribute.Int("page", page)))
	defer func() { tracing.End(span, err) }()

	res, err = r.client.ListGames(ctx, catalog.ListOptions{
		Page:     page,
		PageSize: r.opts.PageSize,
		Ordering: r.opts.Ordering,
	})
	if err != nil {
		return nil, ioError("fetch games", err)
	}
	return res, nil
}

// SearchGames returns one page of catalog results matching query. An empty
// query behaves like FetchGames.
func (r *Games) SearchGames(ctx context.Context, query string, page int) (res *catalog.GameListResponse, err error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return r.FetchGames(ctx, page)
	}

	ctx, span := tracing.StartSpan(ctx, "repository.SearchGames",
		tracing.WithAttributes(attribute.String("query", query), attribute.Int("page", page)))
	defer func() { tracing.End(span, err) }()

	res, err = r.client.ListGames(ctx, catalog.ListOptions{
		Page:     page,
		PageSize: r.opts.PageSize,
		Search:   query,
	})
	if err != nil {
		return nil, ioError("search games", err)
	}
	return res, nil
}

// GameDetails returns the full catalog record for id.
func (r *Games) GameDetails(ctx context.Context, id int64) (g *catalog.Game, err error) {
	ctx, span := tracing.StartSpan(ctx, "repository.GameDetails",
		tracing.WithAttributes(attribute.Int64("game.id", id)))
	defer func() { tracing.End(span, err) }()

	g, err = r.client.GetGame(ctx, id)
	if err != nil {
		return nil, ioError(fmt.Sprintf("game details %d", id), err)
	}
	return g, nil
}

// ToCached flattens a catalog game into a cache row.
func ToCached(g catalog.Game) db.Game {
	return db.Game{
		ID:              g.ID,
		Name:            g.Name,
		BackgroundImage: g.BackgroundImage,
		Genres:          db.JoinGenres(g.GenreNames()),
		Released:        g.Released,
		Developer:       g.Developer(),
		Rating:          g.Rating,
	}
}

// CacheGame stores g in the local cache. It returns false when the game is
// already cached.
func (r *Games) CacheGame(ctx context.Context, g catalog.Game) (bool, error) {
	ok, err := r.store.InsertGame(ctx, ToCached(g))
	if err != nil {
		return false, ioError("cache game", err)
	}
	return ok, nil
}

// CachedGame returns the cached row for id, or nil.
func (r *Games) CachedGame(ctx context.Context, id int64) (*db.Game, error) {
	g, err := r.store.GetGame(ctx, id)
	if err != nil {
		return nil, ioError("cached game", err)
	}
	return g, nil
}

// RateGame records the user's rating of a catalog game. The game is
// fetched, cached and rated in one transaction.
func (r *Games) RateGame(ctx context.Context, userID, gameID int64, rating float64) (err error) {
	ctx, span := tracing.StartSpan(ctx, "repository.RateGame",
		tracing.WithAttributes(attribute.Int64("user.id", userID), attribute.Int64("game.id", gameID)))
	defer func() { tracing.End(span, err) }()

	if rating < 0 || rating > 5 {
		return ioError("rate game", fmt.Errorf("rating %.1f out of range 0-5", rating))
	}

	g, err := r.client.GetGame(ctx, gameID)
	if err != nil {
		return ioError("rate game", err)
	}
	if err := r.store.RateGame(ctx, userID, ToCached(*g), rating); err != nil {
		return ioError("rate game", err)
	}
	logging.Debug("game rated", "user_id", userID, "game_id", gameID, "rating", rating)
	return nil
}
