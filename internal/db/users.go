package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// User is a registered user. Games is filled by GetUserByID.
type User struct {
	ID       int64          `json:"id"`
	Username string         `json:"username"`
	Email    string         `json:"email"`
	Password string         `json:"-"`
	Games    []UserGameView `json:"games"`
}

// InsertUser stores a new user and returns its id. It returns NoUser when
// the username or email is already taken.
func (db *DB) InsertUser(ctx context.Context, u User) (int64, error) {
	id := NoUser
	err := db.withConn(ctx, func(conn *sql.Conn) error {
		res, err := conn.ExecContext(ctx,
			`INSERT INTO "user" (username, email, password) VALUES (?, ?, ?)`,
			u.Username, u.Email, u.Password)
		if err != nil {
			if isConstraint(err) {
				return nil
			}
			return err
		}
		id, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return NoUser, fmt.Errorf("failed to insert user: %w", err)
	}
	return id, nil
}

// CheckEmailExists reports whether a user is registered with exactly this
// email.
func (db *DB) CheckEmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := db.withConn(ctx, func(conn *sql.Conn) error {
		return conn.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM "user" WHERE email = ?)`, email).Scan(&exists)
	})
	if err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return exists, nil
}

// CheckUserCredentials returns the id of the user whose stored email and
// password both equal the given strings, or NoUser.
func (db *DB) CheckUserCredentials(ctx context.Context, email, password string) (int64, error) {
	id := NoUser
	err := db.withConn(ctx, func(conn *sql.Conn) error {
		err := conn.QueryRowContext(ctx,
			`SELECT id FROM "user" WHERE email = ? AND password = ?`, email, password).Scan(&id)
		if errors.Is(err, sql.ErrNoRows) {
			id = NoUser
			return nil
		}
		return err
	})
	if err != nil {
		return NoUser, fmt.Errorf("failed to check credentials: %w", err)
	}
	return id, nil
}

// GetPasswordHash returns the id and stored password of the user with this
// email, or NoUser and "".
func (db *DB) GetPasswordHash(ctx context.Context, email string) (int64, string, error) {
	id, hash := NoUser, ""
	err := db.withConn(ctx, func(conn *sql.Conn) error {
		err := conn.QueryRowContext(ctx,
			`SELECT id, password FROM "user" WHERE email = ?`, email).Scan(&id, &hash)
		if errors.Is(err, sql.ErrNoRows) {
			id, hash = NoUser, ""
			return nil
		}
		return err
	})
	if err != nil {
		return NoUser, "", fmt.Errorf("failed to get password: %w", err)
	}
	return id, hash, nil
}

// GetUserByID returns the user with its rated games, or nil if there is no
// such user.
func (db *DB) GetUserByID(ctx context.Context, id int64) (*User, error) {
	var u *User
	err := db.withConn(ctx, func(conn *sql.Conn) error {
		var out User
		err := conn.QueryRowContext(ctx,
			`SELECT id, username, email, password FROM "user" WHERE id = ?`, id).
			Scan(&out.ID, &out.Username, &out.Email, &out.Password)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil
			}
			return err
		}

		out.Games, err = queryUserGames(ctx, conn, out.ID)
		if err != nil {
			return err
		}
		u = &out
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	return u, nil
}

// DeleteUser removes a user. The user's ratings go with it.
func (db *DB) DeleteUser(ctx context.Context, id int64) error {
	err := db.withConn(ctx, func(conn *sql.Conn) error {
		_, err := conn.ExecContext(ctx, `DELETE FROM "user" WHERE id = ?`, id)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to delete user %d: %w", id, err)
	}
	return nil
}
