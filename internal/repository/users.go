package repository

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"github.com/ryanm101/gameshelf/internal/auth"
	"github.com/ryanm101/gameshelf/internal/db"
	"github.com/ryanm101/gameshelf/internal/logging"
	"github.com/ryanm101/gameshelf/internal/tracing"
)

// Users manages registration, login and a user's rated games.
type Users struct {
	store  *db.DB
	hasher auth.Hasher
}

// NewUsers returns a Users repository storing credentials through hasher.
func NewUsers(store *db.DB, hasher auth.Hasher) *Users {
	return &Users{store: store, hasher: hasher}
}

// Register creates a user and returns its id, or db.NoUser when the
// username or email is taken.
func (r *Users) Register(ctx context.Context, username, email, password string) (id int64, err error) {
	ctx, span := tracing.StartSpan(ctx, "repository.Register")
	defer func() { tracing.End(span, err) }()

	stored, err := r.hasher.Hash(password)
	if err != nil {
		return db.NoUser, ioError("register", err)
	}
	id, err = r.store.InsertUser(ctx, db.User{Username: username, Email: email, Password: stored})
	if err != nil {
		return db.NoUser, ioError("register", err)
	}
	if id == db.NoUser {
		logging.Debug("registration conflict", "username", username)
	} else {
		logging.Info("user registered", "user_id", id)
	}
	return id, nil
}

// IsEmailTaken reports whether email is already registered.
func (r *Users) IsEmailTaken(ctx context.Context, email string) (bool, error) {
	taken, err := r.store.CheckEmailExists(ctx, email)
	if err != nil {
		return false, ioError("check email", err)
	}
	return taken, nil
}

// Login returns the id of the user with these credentials, or db.NoUser.
func (r *Users) Login(ctx context.Context, email, password string) (id int64, err error) {
	ctx, span := tracing.StartSpan(ctx, "repository.Login")
	defer func() {
		span.SetAttributes(attribute.Bool("login.ok", err == nil && id != db.NoUser))
		tracing.End(span, err)
	}()

	id, stored, err := r.store.GetPasswordHash(ctx, email)
	if err != nil {
		return db.NoUser, ioError("login", err)
	}
	if id == db.NoUser || !r.hasher.Compare(stored, password) {
		return db.NoUser, nil
	}
	return id, nil
}

// User returns the user with its rated games, or nil.
func (r *Users) User(ctx context.Context, id int64) (*db.User, error) {
	u, err := r.store.GetUserByID(ctx, id)
	if err != nil {
		return nil, ioError("get user", err)
	}
	return u, nil
}

// UserGames returns the games rated by the user, in store order.
func (r *Users) UserGames(ctx context.Context, userID int64) ([]db.UserGameView, error) {
	games, err := r.store.GetUserGames(ctx, userID)
	if err != nil {
		return nil, ioError("user games", err)
	}
	return games, nil
}
