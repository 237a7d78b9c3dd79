package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listBody = `{
	"count": 2,
	"next": "https://api.rawg.io/api/games?key=k&page=2",
	"previous": null,
	"results": [
		{"id": 3498, "name": "Grand Theft Auto V", "released": "2013-09-17", "background_image": "https://media.rawg.io/gta.jpg", "rating": 4.47,
		 "genres": [{"id": 4, "name": "Action", "slug": "action"}, {"id": 3, "name": "Adventure", "slug": "adventure"}]},
		{"id": 3328, "name": "The Witcher 3: Wild Hunt", "released": null, "background_image": null, "rating": 4.66, "genres": []}
	]
}`

const detailBody = `{
	"id": 3328,
	"name": "The Witcher 3: Wild Hunt",
	"released": "2015-05-18",
	"background_image": "https://media.rawg.io/w3.jpg",
	"rating": 4.66,
	"developers": [{"id": 9023, "name": "CD PROJEKT RED", "slug": "cd-projekt-red"}],
	"genres": [{"id": 5, "name": "RPG", "slug": "role-playing-games-rpg"}],
	"ratings": [
		{"id": 5, "title": "exceptional", "count": 5000, "percent": 77.5},
		{"id": 4, "title": "recommended", "count": 1200, "percent": 18.6},
		{"id": 3, "title": "meh", "count": 200, "percent": 3.1},
		{"id": 1, "title": "skip", "count": 50, "percent": 0.8}
	]
}`

func newTestClient(t *testing.T, h http.HandlerFunc) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewHTTPClient(Options{BaseURL: srv.URL, APIKey: "secret", Timeout: 2 * time.Second})
}

func TestListGames(t *testing.T) {
	var got *http.Request
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r
		_, _ = w.Write([]byte(listBody))
	})

	resp, err := c.ListGames(context.Background(), ListOptions{Page: 1, Ordering: "-rating"})
	require.NoError(t, err)

	assert.Equal(t, "/games", got.URL.Path)
	assert.Equal(t, "secret", got.URL.Query().Get("key"))
	assert.Equal(t, "1", got.URL.Query().Get("page"))
	assert.Equal(t, "20", got.URL.Query().Get("page_size"), "page size defaults to 20")
	assert.Equal(t, "-rating", got.URL.Query().Get("ordering"))
	assert.False(t, got.URL.Query().Has("search"))

	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, "https://api.rawg.io/api/games?key=k&page=2", resp.Next)
	assert.Empty(t, resp.Previous)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, int64(3498), resp.Results[0].ID)
	assert.Equal(t, []string{"Action", "Adventure"}, resp.Results[0].GenreNames())
	assert.Empty(t, resp.Results[1].Released)
	assert.Empty(t, resp.Results[1].BackgroundImage)
}

func TestListGames_Search(t *testing.T) {
	var got *http.Request
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r
		_, _ = w.Write([]byte(`{"count": 0, "next": null, "previous": null, "results": []}`))
	})

	resp, err := c.ListGames(context.Background(), ListOptions{Page: 0, PageSize: 5, Search: "witcher"})
	require.NoError(t, err)
	assert.Empty(t, resp.Results)
	assert.NotNil(t, resp.Results)

	assert.Equal(t, "witcher", got.URL.Query().Get("search"))
	assert.Equal(t, "5", got.URL.Query().Get("page_size"))
	assert.Equal(t, "1", got.URL.Query().Get("page"), "page is at least 1")
}

func TestGetGame(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/games/3328", r.URL.Path)
		_, _ = w.Write([]byte(detailBody))
	})

	g, err := c.GetGame(context.Background(), 3328)
	require.NoError(t, err)

	assert.Equal(t, "The Witcher 3: Wild Hunt", g.Name)
	assert.Equal(t, "CD PROJEKT RED", g.Developer())
	require.Len(t, g.Ratings, 4)
	assert.Equal(t, "exceptional", g.Ratings[0].Title)
	assert.Equal(t, 5000, g.Ratings[0].Count)
	assert.Equal(t, 77.5, g.Ratings[0].Percent)
}

func TestGetGame_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		kind    error
		status  int
	}{
		{
			name: "not found",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, `{"detail": "Not found."}`, http.StatusNotFound)
			},
			kind:   ErrStatus,
			status: http.StatusNotFound,
		},
		{
			name: "malformed json",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"id": 1, "name": `))
			},
			kind: ErrDecode,
		},
		{
			name: "schema mismatch",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"id": "3328", "name": "The Witcher 3"}`))
			},
			kind: ErrDecode,
		},
		{
			name: "missing required field",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"id": 3328}`))
			},
			kind: ErrDecode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, tt.handler)

			g, err := c.GetGame(context.Background(), 3328)
			require.Error(t, err)
			assert.Nil(t, g, "no partial record on failure")
			assert.ErrorIs(t, err, tt.kind)

			var reqErr *RequestError
			require.True(t, errors.As(err, &reqErr))
			assert.Equal(t, "get game", reqErr.Op)
			assert.Equal(t, tt.status, reqErr.StatusCode)
		})
	}
}

func TestListGames_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	c := NewHTTPClient(Options{BaseURL: srv.URL, APIKey: "secret"})
	_, err := c.ListGames(context.Background(), ListOptions{Page: 1})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransport)
	assert.NotContains(t, err.Error(), "secret", "api key must not leak into errors")
}

func TestListGames_Canceled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(listBody))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.ListGames(ctx, ListOptions{Page: 1})
	assert.ErrorIs(t, err, ErrTransport)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGame_DeveloperJoinsNames(t *testing.T) {
	g := Game{Developers: []Developer{{Name: "Valve"}, {Name: "Hidden Path"}}}
	assert.Equal(t, "Valve, Hidden Path", g.Developer())
	assert.Empty(t, Game{}.Developer())
}
