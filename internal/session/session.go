// Package session tracks the logged-in user of an interactive session.
package session

import (
	"sync"

	"github.com/google/uuid"

	"github.com/ryanm101/gameshelf/internal/db"
)

// Session holds the current user. The zero value is not usable; use New.
type Session struct {
	id string

	mu     sync.RWMutex
	userID int64
	email  string
}

// New returns a logged-out session with a fresh id.
func New() *Session {
	return &Session{id: uuid.NewString(), userID: db.NoUser}
}

// ID identifies the session in logs.
func (s *Session) ID() string {
	return s.id
}

// LogIn records userID as the current user.
func (s *Session) LogIn(userID int64, email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userID = userID
	s.email = email
}

// LogOut clears the current user.
func (s *Session) LogOut() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userID = db.NoUser
	s.email = ""
}

// User returns the current user id, or db.NoUser.
func (s *Session) User() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID
}

// Email returns the current user's email, or "".
func (s *Session) Email() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.email
}

// LoggedIn reports whether a user is logged in.
func (s *Session) LoggedIn() bool {
	return s.User() != db.NoUser
}
