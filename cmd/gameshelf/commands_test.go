package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ryanm101/gameshelf/internal/db"
)

const rawgList = `{
	"count": 1,
	"next": null,
	"previous": null,
	"results": [
		{"id": 3328, "name": "The Witcher 3: Wild Hunt", "released": "2015-05-18", "rating": 4.66,
		 "genres": [{"id": 5, "name": "RPG", "slug": "rpg"}]}
	]
}`

const rawgDetail = `{
	"id": 3328,
	"name": "The Witcher 3: Wild Hunt",
	"released": "2015-05-18",
	"rating": 4.66,
	"developers": [{"id": 9023, "name": "CD PROJEKT RED", "slug": "cd-projekt-red"}],
	"genres": [{"id": 5, "name": "RPG", "slug": "rpg"}],
	"ratings": [{"id": 5, "title": "exceptional", "count": 5000, "percent": 77.5}]
}`

// testEnv points a fresh config at a fake RAWG server and a temp database.
func testEnv(t *testing.T) (cfgPath, dbPath string, requests *[]*http.Request) {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("GAMESHELF_DB", "")
	t.Setenv("RAWG_API_KEY", "")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")

	var seen []*http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r)
		switch r.URL.Path {
		case "/games":
			_, _ = w.Write([]byte(rawgList))
		case "/games/3328":
			_, _ = w.Write([]byte(rawgDetail))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	dbPath = filepath.Join(dir, "test.db")
	cfgPath = filepath.Join(dir, "config.yaml")
	cfg := "db_path: " + dbPath + "\n" +
		"catalog:\n  base_url: " + srv.URL + "\n  api_key: test-key\n" +
		"auth:\n  password_hash: plain\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0600))
	return cfgPath, dbPath, &seen
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	a := &app{}
	cmd := newRootCmd(a)
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := a.execute(context.Background(), cmd)
	return out.String(), err
}

func TestGamesList(t *testing.T) {
	cfgPath, _, requests := testEnv(t)

	out, err := run(t, "--config", cfgPath, "games", "list", "--page", "2")
	require.NoError(t, err)

	assert.Contains(t, out, "The Witcher 3: Wild Hunt")
	assert.Contains(t, out, "4.66")
	assert.Contains(t, out, "RPG")
	assert.Contains(t, out, "page 2, 1 games in total")

	require.Len(t, *requests, 1)
	q := (*requests)[0].URL.Query()
	assert.Equal(t, "test-key", q.Get("key"))
	assert.Equal(t, "2", q.Get("page"))
	assert.Equal(t, "-rating", q.Get("ordering"))
}

func TestGamesList_PageBelowOne(t *testing.T) {
	cfgPath, _, requests := testEnv(t)

	out, err := run(t, "--config", cfgPath, "games", "list", "--page", "-3")
	require.NoError(t, err)

	assert.Contains(t, out, "page 1, 1 games in total")
	require.Len(t, *requests, 1)
	assert.Equal(t, "1", (*requests)[0].URL.Query().Get("page"))
}

func TestGamesList_SearchJSON(t *testing.T) {
	cfgPath, _, requests := testEnv(t)

	out, err := run(t, "--config", cfgPath, "--json", "games", "list", "--search", "witcher")
	require.NoError(t, err)

	var res struct {
		Count   int `json:"count"`
		Results []struct {
			ID int64 `json:"id"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 1, res.Count)
	require.Len(t, res.Results, 1)
	assert.Equal(t, int64(3328), res.Results[0].ID)

	q := (*requests)[0].URL.Query()
	assert.Equal(t, "witcher", q.Get("search"))
	assert.False(t, q.Has("ordering"), "searches are ranked by relevance")
}

func TestGamesShow(t *testing.T) {
	cfgPath, _, _ := testEnv(t)

	out, err := run(t, "--config", cfgPath, "games", "show", "3328")
	require.NoError(t, err)

	assert.Contains(t, out, "The Witcher 3: Wild Hunt")
	assert.Contains(t, out, "CD PROJEKT RED")
	assert.Contains(t, out, "exceptional")
	assert.Contains(t, out, "77.5%")
}

func TestGamesShow_Errors(t *testing.T) {
	cfgPath, _, _ := testEnv(t)

	_, err := run(t, "--config", cfgPath, "games", "show", "abc")
	assert.ErrorContains(t, err, `invalid game id "abc"`)

	_, err = run(t, "--config", cfgPath, "games", "show", "1")
	assert.Error(t, err)
}

func TestDBCommands(t *testing.T) {
	cfgPath, dbPath, _ := testEnv(t)

	_, err := run(t, "--config", cfgPath, "db", "init")
	require.NoError(t, err)
	assert.FileExists(t, dbPath)

	store, err := db.Open(context.Background(), dbPath)
	require.NoError(t, err)
	_, err = store.InsertUser(context.Background(), db.User{Username: "ana", Email: "ana@x.com", Password: "pw1"})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	out, err := run(t, "--config", cfgPath, "--json", "db", "stats")
	require.NoError(t, err)
	var st db.Stats
	require.NoError(t, json.Unmarshal([]byte(out), &st))
	assert.Equal(t, 1, st.Users)

	_, err = run(t, "--config", cfgPath, "db", "reset")
	assert.ErrorContains(t, err, "--yes")

	_, err = run(t, "--config", cfgPath, "db", "reset", "--yes")
	require.NoError(t, err)

	out, err = run(t, "--config", cfgPath, "--json", "db", "stats")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &st))
	assert.Zero(t, st.Users)
}

func TestConfigShow_MasksSecrets(t *testing.T) {
	cfgPath, _, _ := testEnv(t)

	out, err := run(t, "--config", cfgPath, "config", "show")
	require.NoError(t, err)

	assert.Contains(t, out, "# Active configuration")
	assert.Contains(t, out, "********")
	assert.NotContains(t, out, "test-key")
}

func TestConfigInit(t *testing.T) {
	cfgPath, _, _ := testEnv(t)

	_, err := run(t, "--config", cfgPath, "config", "init")
	require.NoError(t, err)
	assert.FileExists(t, ".gameshelf.yaml")

	_, err = run(t, "--config", cfgPath, "config", "init")
	assert.ErrorContains(t, err, "already exists")
}
