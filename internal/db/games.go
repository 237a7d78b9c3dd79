package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// GenreSeparator joins genre names in the game table's genres column.
const GenreSeparator = ", "

// Game is a row of the game cache. Its ID is the catalog's id.
type Game struct {
	ID              int64   `json:"id"`
	Name            string  `json:"name"`
	BackgroundImage string  `json:"background_image,omitempty"`
	Genres          string  `json:"genres,omitempty"`
	Released        string  `json:"released,omitempty"`
	Developer       string  `json:"developer,omitempty"`
	Rating          float64 `json:"rating"`
}

// UserGameView is a rated game joined with its cached metadata.
type UserGameView struct {
	GameID          int64   `json:"game_id"`
	Name            string  `json:"name"`
	BackgroundImage string  `json:"background_image,omitempty"`
	Genres          string  `json:"genres,omitempty"`
	Released        string  `json:"released,omitempty"`
	Developer       string  `json:"developer,omitempty"`
	UserRating      float64 `json:"user_rating"`
	GameRating      float64 `json:"game_rating"`
}

// JoinGenres flattens genre names into the genres column format, keeping
// their order.
func JoinGenres(names []string) string {
	return strings.Join(names, GenreSeparator)
}

// execer is satisfied by *sql.Conn and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const insertGameSQL = `
	INSERT INTO game (id, name, background_image, genres, released, developer, rating)
	VALUES (?, ?, ?, ?, ?, ?, ?)
`

func gameArgs(g Game) []any {
	return []any{
		g.ID, g.Name, nullString(g.BackgroundImage), nullString(g.Genres),
		nullString(g.Released), nullString(g.Developer), g.Rating,
	}
}

// InsertGame adds a game to the cache. It reports false when a game with the
// same id is already cached; the existing row is left untouched.
func (db *DB) InsertGame(ctx context.Context, g Game) (bool, error) {
	var inserted bool
	err := db.withConn(ctx, func(conn *sql.Conn) error {
		if _, err := conn.ExecContext(ctx, insertGameSQL, gameArgs(g)...); err != nil {
			if isConstraint(err) {
				return nil
			}
			return err
		}
		inserted = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to insert game %d: %w", g.ID, err)
	}
	return inserted, nil
}

// GetGame returns a cached game, or nil if it is not cached.
func (db *DB) GetGame(ctx context.Context, id int64) (*Game, error) {
	var g *Game
	err := db.withConn(ctx, func(conn *sql.Conn) error {
		row := conn.QueryRowContext(ctx, `
			SELECT id, name, background_image, genres, released, developer, rating
			FROM game WHERE id = ?
		`, id)

		var out Game
		var image, genres, released, developer sql.NullString
		var rating sql.NullFloat64
		if err := row.Scan(&out.ID, &out.Name, &image, &genres, &released, &developer, &rating); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil
			}
			return err
		}
		out.BackgroundImage = image.String
		out.Genres = genres.String
		out.Released = released.String
		out.Developer = developer.String
		out.Rating = rating.Float64
		g = &out
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get game %d: %w", id, err)
	}
	return g, nil
}

// DeleteGame removes a game from the cache. Ratings of the game go with it.
func (db *DB) DeleteGame(ctx context.Context, id int64) error {
	err := db.withConn(ctx, func(conn *sql.Conn) error {
		_, err := conn.ExecContext(ctx, "DELETE FROM game WHERE id = ?", id)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to delete game %d: %w", id, err)
	}
	return nil
}

// RateGame caches g if needed and records the user's rating for it, in one
// transaction. Rating the same game again replaces the previous rating; the
// (user, game) pair never has more than one row.
func (db *DB) RateGame(ctx context.Context, userID int64, g Game, rating float64) error {
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO game (id, name, background_image, genres, released, developer, rating)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO NOTHING
		`, gameArgs(g)...); err != nil {
			return err
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO user_games (user_id_fk, game_id_fk, rating)
			VALUES (?, ?, ?)
			ON CONFLICT(user_id_fk, game_id_fk) DO UPDATE SET rating = excluded.rating
		`, userID, g.ID, rating)
		if isForeignKey(err) {
			return fmt.Errorf("user %d: %w", userID, ErrNotFound)
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to rate game %d: %w", g.ID, err)
	}
	return nil
}

// DeleteRating removes a user's rating for a game.
func (db *DB) DeleteRating(ctx context.Context, userID, gameID int64) error {
	err := db.withConn(ctx, func(conn *sql.Conn) error {
		_, err := conn.ExecContext(ctx,
			"DELETE FROM user_games WHERE user_id_fk = ? AND game_id_fk = ?", userID, gameID)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to delete rating: %w", err)
	}
	return nil
}

// GetUserGames returns the games a user has rated, in row order.
func (db *DB) GetUserGames(ctx context.Context, userID int64) ([]UserGameView, error) {
	var games []UserGameView
	err := db.withConn(ctx, func(conn *sql.Conn) error {
		var err error
		games, err = queryUserGames(ctx, conn, userID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get games of user %d: %w", userID, err)
	}
	return games, nil
}

func queryUserGames(ctx context.Context, q execer, userID int64) ([]UserGameView, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT g.id, g.name, g.background_image, g.genres, g.released, g.developer,
			g.rating, ug.rating
		FROM user_games ug
		INNER JOIN game g ON ug.game_id_fk = g.id
		WHERE ug.user_id_fk = ?
	`, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	games := []UserGameView{}
	for rows.Next() {
		var v UserGameView
		var image, genres, released, developer sql.NullString
		var gameRating sql.NullFloat64
		if err := rows.Scan(&v.GameID, &v.Name, &image, &genres, &released, &developer, &gameRating, &v.UserRating); err != nil {
			return nil, err
		}
		v.BackgroundImage = image.String
		v.Genres = genres.String
		v.Released = released.String
		v.Developer = developer.String
		v.GameRating = gameRating.Float64
		games = append(games, v)
	}
	return games, rows.Err()
}
