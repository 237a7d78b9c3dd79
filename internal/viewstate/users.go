package viewstate

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/ryanm101/gameshelf/internal/auth"
	"github.com/ryanm101/gameshelf/internal/db"
	"github.com/ryanm101/gameshelf/internal/metrics"
	"github.com/ryanm101/gameshelf/internal/session"
)

var (
	// ErrInvalidCredentials is published when login finds no matching user.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrEmailTaken is published when registration hits an existing account.
	ErrEmailTaken = errors.New("email or username already registered")
)

// UserStore is the users repository.
type UserStore interface {
	Register(ctx context.Context, username, email, password string) (int64, error)
	IsEmailTaken(ctx context.Context, email string) (bool, error)
	Login(ctx context.Context, email, password string) (int64, error)
	UserGames(ctx context.Context, userID int64) ([]db.UserGameView, error)
}

// GameRater is the rating side of the games repository.
type GameRater interface {
	RateGame(ctx context.Context, userID, gameID int64, rating float64) error
}

// Auth backs the login and register screens.
type Auth struct {
	base
	op
	// UserID is set after a successful login.
	UserID *Observable[int64]
	// Registered is set to the new id after a successful registration.
	Registered *Observable[int64]

	users   UserStore
	session *session.Session
}

// NewAuth returns an Auth holder that logs users into sess.
func NewAuth(rt *Runtime, users UserStore, sess *session.Session) *Auth {
	return &Auth{
		base:       newBase(rt, "auth"),
		op:         newOp(),
		UserID:     NewObservable(db.NoUser),
		Registered: NewObservable(db.NoUser),
		users:      users,
		session:    sess,
	}
}

// Login validates form, checks the credentials and logs the user in.
func (h *Auth) Login(form auth.LoginForm) {
	if err := form.Validate(); err != nil {
		fail(&h.base, h.op, err)
		return
	}
	load(&h.base, h.op,
		func(ctx context.Context) (int64, error) {
			id, err := h.users.Login(ctx, form.Email, form.Password)
			if err != nil {
				return db.NoUser, err
			}
			if id == db.NoUser {
				return db.NoUser, ErrInvalidCredentials
			}
			return id, nil
		},
		func(id int64) {
			h.session.LogIn(id, form.Email)
			h.UserID.Set(id)
		},
		nil)
}

// Register validates form and creates the account.
func (h *Auth) Register(form auth.RegistrationForm) {
	if err := form.Validate(); err != nil {
		fail(&h.base, h.op, err)
		return
	}
	load(&h.base, h.op,
		func(ctx context.Context) (int64, error) {
			taken, err := h.users.IsEmailTaken(ctx, form.Email)
			if err != nil {
				return db.NoUser, err
			}
			if taken {
				return db.NoUser, ErrEmailTaken
			}
			id, err := h.users.Register(ctx, form.Username, form.Email, form.Password)
			if err != nil {
				return db.NoUser, err
			}
			if id == db.NoUser {
				return db.NoUser, ErrEmailTaken
			}
			return id, nil
		},
		func(id int64) { h.Registered.Set(id) },
		nil)
}

// Logout clears the session.
func (h *Auth) Logout() {
	h.rt.Loop.Post(func() {
		h.session.LogOut()
		h.UserID.Set(db.NoUser)
	})
}

// Library backs the "my games" screen and rating from the detail screen.
type Library struct {
	base
	op
	// Rating tracks Rate separately from Load.
	Rating op
	Games  *Observable[[]db.UserGameView]

	// owner is the user whose games Games holds; results for anyone else
	// are dropped.
	owner atomic.Int64
	users UserStore
	rater GameRater
}

// NewLibrary returns an empty Library.
func NewLibrary(rt *Runtime, users UserStore, rater GameRater) *Library {
	h := &Library{
		base:   newBase(rt, "library"),
		op:     newOp(),
		Rating: newOp(),
		Games:  NewObservable([]db.UserGameView{}),
		users:  users,
		rater:  rater,
	}
	h.owner.Store(db.NoUser)
	return h
}

// publish sets Games unless the library has moved on to another user.
func (h *Library) publish(userID int64, games []db.UserGameView) {
	if h.owner.Load() != userID {
		metrics.LoadsTotal.WithLabelValues(h.screen, "dropped").Inc()
		return
	}
	h.Games.Set(games)
}

// Load fetches the games rated by userID. A different user than the last
// Load clears Games first.
func (h *Library) Load(userID int64) {
	if h.owner.Swap(userID) != userID {
		h.rt.Loop.Post(func() { h.Games.Set([]db.UserGameView{}) })
	}
	load(&h.base, h.op,
		func(ctx context.Context) ([]db.UserGameView, error) {
			return h.users.UserGames(ctx, userID)
		},
		func(games []db.UserGameView) { h.publish(userID, games) },
		nil)
}

// Rate stores the user's rating of gameID and refreshes the library.
func (h *Library) Rate(userID, gameID int64, rating float64) {
	h.owner.CompareAndSwap(db.NoUser, userID)
	load(&h.base, h.Rating,
		func(ctx context.Context) ([]db.UserGameView, error) {
			if err := h.rater.RateGame(ctx, userID, gameID, rating); err != nil {
				return nil, err
			}
			return h.users.UserGames(ctx, userID)
		},
		func(games []db.UserGameView) { h.publish(userID, games) },
		nil)
}
