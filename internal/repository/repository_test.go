package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ryanm101/gameshelf/internal/auth"
	"github.com/ryanm101/gameshelf/internal/catalog"
	"github.com/ryanm101/gameshelf/internal/catalog/catalogtest"
	"github.com/ryanm101/gameshelf/internal/db"
)

func openTestDB(t *testing.T) *db.DB {
	t.Helper()
	store, err := db.Open(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestFetchGames_UsesPagingOptions(t *testing.T) {
	client := &catalogtest.Client{}
	client.On("ListGames", mock.Anything, catalog.ListOptions{Page: 2, PageSize: 20, Ordering: "-rating"}).
		Return(catalogtest.Page(catalogtest.Games(2)), nil)

	repo := NewGames(client, openTestDB(t), GamesOptions{})
	res, err := repo.FetchGames(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, res.Results, 2)
	client.AssertExpectations(t)
}

func TestSearchGames(t *testing.T) {
	client := &catalogtest.Client{}
	client.On("ListGames", mock.Anything, catalog.ListOptions{Page: 1, PageSize: 10, Search: "witcher"}).
		Return(catalogtest.Page(catalogtest.Games(1)), nil)

	repo := NewGames(client, openTestDB(t), GamesOptions{PageSize: 10})
	res, err := repo.SearchGames(context.Background(), "  witcher ", 1)
	require.NoError(t, err)
	assert.Len(t, res.Results, 1)
	client.AssertExpectations(t)
}

func TestSearchGames_EmptyQueryFetches(t *testing.T) {
	client := &catalogtest.Client{}
	client.On("ListGames", mock.Anything, catalog.ListOptions{Page: 1, PageSize: 20, Ordering: "-rating"}).
		Return(catalogtest.Page(nil), nil)

	repo := NewGames(client, openTestDB(t), GamesOptions{})
	_, err := repo.SearchGames(context.Background(), "", 1)
	require.NoError(t, err)
	client.AssertExpectations(t)
}

func TestGames_FailuresBecomeIOError(t *testing.T) {
	cause := &catalog.RequestError{Op: "get game", Err: catalog.ErrDecode}
	client := &catalogtest.Client{}
	client.On("ListGames", mock.Anything, mock.Anything).Return(nil, &catalog.RequestError{Op: "list games", Err: catalog.ErrTransport})
	client.On("GetGame", mock.Anything, int64(7)).Return(nil, cause)

	repo := NewGames(client, openTestDB(t), GamesOptions{})

	_, err := repo.FetchGames(context.Background(), 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIO)
	assert.ErrorIs(t, err, catalog.ErrTransport)

	_, err = repo.GameDetails(context.Background(), 7)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIO)
	assert.ErrorIs(t, err, catalog.ErrDecode)

	var ioErr *IOError
	require.True(t, errors.As(err, &ioErr))
	assert.Equal(t, "game details 7", ioErr.Op)
	assert.Contains(t, err.Error(), "invalid catalog response")
}

func TestCacheGame(t *testing.T) {
	repo := NewGames(&catalogtest.Client{}, openTestDB(t), GamesOptions{})
	g := catalog.Game{
		ID:         3328,
		Name:       "The Witcher 3: Wild Hunt",
		Released:   "2015-05-18",
		Rating:     4.66,
		Genres:     []catalog.Genre{{Name: "RPG"}, {Name: "Action"}},
		Developers: []catalog.Developer{{Name: "CD PROJEKT RED"}},
	}

	ok, err := repo.CacheGame(context.Background(), g)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.CacheGame(context.Background(), catalog.Game{ID: 3328, Name: "Other"})
	require.NoError(t, err)
	assert.False(t, ok, "second insert with the same id fails")

	cached, err := repo.CachedGame(context.Background(), 3328)
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.Equal(t, "The Witcher 3: Wild Hunt", cached.Name)
	assert.Equal(t, "RPG, Action", cached.Genres)
	assert.Equal(t, "CD PROJEKT RED", cached.Developer)
}

func TestRateGame(t *testing.T) {
	store := openTestDB(t)
	detail := catalogtest.Games(1)[0]
	client := &catalogtest.Client{}
	client.On("GetGame", mock.Anything, int64(1)).Return(&detail, nil)

	users := NewUsers(store, auth.PlainHasher{})
	uid, err := users.Register(context.Background(), "ana", "ana@x.com", "pw1")
	require.NoError(t, err)

	games := NewGames(client, store, GamesOptions{})
	require.NoError(t, games.RateGame(context.Background(), uid, 1, 4.5))
	require.NoError(t, games.RateGame(context.Background(), uid, 1, 3.0))

	rated, err := users.UserGames(context.Background(), uid)
	require.NoError(t, err)
	require.Len(t, rated, 1)
	assert.Equal(t, 3.0, rated[0].UserRating)
	assert.Equal(t, detail.Rating, rated[0].GameRating)
}

func TestRateGame_RejectsOutOfRange(t *testing.T) {
	repo := NewGames(&catalogtest.Client{}, openTestDB(t), GamesOptions{})
	err := repo.RateGame(context.Background(), 1, 1, 6)
	assert.ErrorIs(t, err, ErrIO)
}

func TestRateGame_UnknownUser(t *testing.T) {
	store := openTestDB(t)
	detail := catalogtest.Games(1)[0]
	client := &catalogtest.Client{}
	client.On("GetGame", mock.Anything, int64(1)).Return(&detail, nil)

	err := NewGames(client, store, GamesOptions{}).RateGame(context.Background(), 99, 1, 4)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIO)
	assert.ErrorIs(t, err, db.ErrNotFound)

	cached, err := store.GetGame(context.Background(), 1)
	require.NoError(t, err)
	assert.Nil(t, cached, "game is not cached when rating fails")
}

func TestRegisterAndLogin_EndToEnd(t *testing.T) {
	hashers := []struct {
		name   string
		hasher auth.Hasher
	}{
		{"plain", auth.PlainHasher{}},
		{"bcrypt", auth.BcryptHasher{Cost: bcrypt.MinCost}},
	}

	for _, tt := range hashers {
		t.Run(tt.name, func(t *testing.T) {
			users := NewUsers(openTestDB(t), tt.hasher)
			ctx := context.Background()

			id, err := users.Register(ctx, "ana", "ana@x.com", "pw1")
			require.NoError(t, err)
			assert.NotEqual(t, db.NoUser, id)

			got, err := users.Login(ctx, "ana@x.com", "pw1")
			require.NoError(t, err)
			assert.Equal(t, id, got)

			got, err = users.Login(ctx, "ana@x.com", "wrong")
			require.NoError(t, err)
			assert.Equal(t, db.NoUser, got)

			got, err = users.Login(ctx, "bob@x.com", "pw1")
			require.NoError(t, err)
			assert.Equal(t, db.NoUser, got)
		})
	}
}

// countingHasher records Compare calls.
type countingHasher struct {
	auth.Hasher
	compares int
}

func (h *countingHasher) Compare(stored, password string) bool {
	h.compares++
	return h.Hasher.Compare(stored, password)
}

func TestLogin_PlainModeUsesHasherCompare(t *testing.T) {
	h := &countingHasher{Hasher: auth.PlainHasher{}}
	users := NewUsers(openTestDB(t), h)
	ctx := context.Background()

	id, err := users.Register(ctx, "ana", "ana@x.com", "pw1")
	require.NoError(t, err)

	got, err := users.Login(ctx, "ana@x.com", "pw1")
	require.NoError(t, err)
	assert.Equal(t, id, got)

	got, err = users.Login(ctx, "ana@x.com", "pw2")
	require.NoError(t, err)
	assert.Equal(t, db.NoUser, got)

	assert.Equal(t, 2, h.compares)
}

func TestRegister_Duplicate(t *testing.T) {
	users := NewUsers(openTestDB(t), auth.PlainHasher{})
	ctx := context.Background()

	_, err := users.Register(ctx, "ana", "ana@x.com", "pw1")
	require.NoError(t, err)

	taken, err := users.IsEmailTaken(ctx, "ana@x.com")
	require.NoError(t, err)
	assert.True(t, taken)

	id, err := users.Register(ctx, "ana2", "ana@x.com", "pw2")
	require.NoError(t, err)
	assert.Equal(t, db.NoUser, id)

	got, err := users.Login(ctx, "ana@x.com", "pw1")
	require.NoError(t, err)
	assert.NotEqual(t, db.NoUser, got, "first user is untouched")
}

func TestUser(t *testing.T) {
	users := NewUsers(openTestDB(t), auth.PlainHasher{})
	ctx := context.Background()

	id, err := users.Register(ctx, "ana", "ana@x.com", "pw1")
	require.NoError(t, err)

	u, err := users.User(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "ana", u.Username)
	assert.Empty(t, u.Games)

	u, err = users.User(ctx, 999)
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestUsers_StoreFailureBecomesIOError(t *testing.T) {
	store := openTestDB(t)
	require.NoError(t, store.Close())

	users := NewUsers(store, auth.PlainHasher{})
	_, err := users.Register(context.Background(), "ana", "ana@x.com", "pw1")
	assert.ErrorIs(t, err, ErrIO)

	_, err = users.Login(context.Background(), "ana@x.com", "pw1")
	assert.ErrorIs(t, err, ErrIO)
}
