package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"

	"github.com/XSAM/otelsql"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	_ "modernc.org/sqlite"
)

// SchemaVersion is the version of the schema created by this package.
// A store at a lower version is dropped and recreated on open.
const SchemaVersion = 3

// ErrSchemaTooNew is returned when the store was written by a newer build.
var ErrSchemaTooNew = errors.New("database schema is newer than this build")

// DB wraps a SQLite database holding users, cached games and ratings.
type DB struct {
	conn *sql.DB
	path string
}

// Open opens or creates a SQLite database at the given path and brings its
// schema to SchemaVersion.
func Open(ctx context.Context, path string) (*DB, error) {
	conn, err := otelsql.Open("sqlite", dsn(path),
		otelsql.WithAttributes(semconv.DBSystemSqlite),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A file database shared between goroutines is happier with a single
	// writer; an in-memory one must stay on one connection to be shared at all.
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn, path: path}
	if err := db.migrate(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

// dsn builds a modernc DSN that enables foreign keys on every new connection.
func dsn(path string) string {
	q := url.Values{}
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", "busy_timeout(5000)")
	return "file:" + path + "?" + q.Encode()
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Conn returns the underlying database connection.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Path returns the path the database was opened from.
func (db *DB) Path() string {
	return db.path
}

// withConn runs fn on a connection acquired for the duration of the call.
// The connection goes back to the pool on every exit path.
func (db *DB) withConn(ctx context.Context, fn func(*sql.Conn) error) error {
	conn, err := db.conn.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire connection: %w", err)
	}
	defer func() { _ = conn.Close() }()
	return fn(conn)
}

// withTx runs fn inside one transaction on a scoped connection. fn's error
// rolls the transaction back.
func (db *DB) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	return db.withConn(ctx, func(conn *sql.Conn) error {
		tx, err := conn.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		if err := fn(tx); err != nil {
			return err
		}
		return tx.Commit()
	})
}

// migrate creates the schema on a fresh store and drops and recreates it on
// an older one.
func (db *DB) migrate(ctx context.Context) error {
	if _, err := db.conn.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		)
	`); err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	version, err := db.Version(ctx)
	if err != nil {
		return err
	}

	switch {
	case version == SchemaVersion:
		return nil
	case version > SchemaVersion:
		return fmt.Errorf("%w: have %d, want %d", ErrSchemaTooNew, version, SchemaVersion)
	case version == 0:
		return db.create(ctx)
	default:
		return db.upgrade(ctx)
	}
}

// Version returns the schema version recorded in the store, 0 when fresh.
func (db *DB) Version(ctx context.Context) (int, error) {
	var version int
	err := db.conn.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}

// Reset drops every table and recreates the schema. All data is lost.
func (db *DB) Reset(ctx context.Context) error {
	return db.upgrade(ctx)
}

func (db *DB) create(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS "user" (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT NOT NULL UNIQUE,
			email TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS game (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			background_image TEXT,
			genres TEXT,
			released TEXT,
			developer TEXT,
			rating REAL
		);

		CREATE TABLE IF NOT EXISTS user_games (
			user_id_fk INTEGER NOT NULL,
			game_id_fk INTEGER NOT NULL,
			rating REAL NOT NULL,
			PRIMARY KEY (user_id_fk, game_id_fk),
			FOREIGN KEY (user_id_fk) REFERENCES "user"(id) ON DELETE CASCADE,
			FOREIGN KEY (game_id_fk) REFERENCES game(id) ON DELETE CASCADE
		);

		CREATE INDEX IF NOT EXISTS idx_user_games_game_id ON user_games(game_id_fk);
	`

	return db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, schema); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM schema_version"); err != nil {
			return fmt.Errorf("failed to clear schema version: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", SchemaVersion); err != nil {
			return fmt.Errorf("failed to record schema version: %w", err)
		}
		return nil
	})
}

// upgrade is destructive: the store is a disposable cache and credential
// store, not a system of record.
func (db *DB) upgrade(ctx context.Context) error {
	drop := `
		DROP TABLE IF EXISTS user_games;
		DROP TABLE IF EXISTS game;
		DROP TABLE IF EXISTS "user";
	`
	if _, err := db.conn.ExecContext(ctx, drop); err != nil {
		return fmt.Errorf("failed to drop tables: %w", err)
	}
	return db.create(ctx)
}

// Stats holds row counts for each table.
type Stats struct {
	Users   int `json:"users"`
	Games   int `json:"games"`
	Ratings int `json:"ratings"`
}

// Stats returns the number of rows in each table.
func (db *DB) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	err := db.withConn(ctx, func(conn *sql.Conn) error {
		return conn.QueryRowContext(ctx, `
			SELECT
				(SELECT COUNT(*) FROM "user"),
				(SELECT COUNT(*) FROM game),
				(SELECT COUNT(*) FROM user_games)
		`).Scan(&s.Users, &s.Games, &s.Ratings)
	})
	if err != nil {
		return Stats{}, fmt.Errorf("failed to count rows: %w", err)
	}
	return s, nil
}
