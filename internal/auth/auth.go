// Package auth hashes passwords and validates login and registration forms.
package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrMissingField is returned when a required form field is empty.
	ErrMissingField = errors.New("all fields are required")
	// ErrPasswordMismatch is returned when password and confirmation differ.
	ErrPasswordMismatch = errors.New("passwords do not match")
)

// Hash modes accepted by NewHasher.
const (
	ModeBcrypt = "bcrypt"
	ModePlain  = "plain"
)

// Hasher turns passwords into stored credentials and checks them.
type Hasher interface {
	Hash(password string) (string, error)
	// Compare reports whether password matches the stored credential.
	Compare(stored, password string) bool
}

// NewHasher returns the hasher for mode. cost is ignored for plain mode;
// values below bcrypt.MinCost use bcrypt.DefaultCost.
func NewHasher(mode string, cost int) (Hasher, error) {
	switch strings.ToLower(mode) {
	case "", ModeBcrypt:
		if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
			cost = bcrypt.DefaultCost
		}
		return BcryptHasher{Cost: cost}, nil
	case ModePlain:
		return PlainHasher{}, nil
	default:
		return nil, fmt.Errorf("unknown password hash mode %q", mode)
	}
}

// BcryptHasher stores salted bcrypt hashes.
type BcryptHasher struct {
	Cost int
}

func (h BcryptHasher) Hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.Cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(b), nil
}

func (h BcryptHasher) Compare(stored, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
}

// PlainHasher stores passwords as given. Only for stores that already hold
// plaintext credentials.
type PlainHasher struct{}

func (PlainHasher) Hash(password string) (string, error) { return password, nil }

func (PlainHasher) Compare(stored, password string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(password)) == 1
}

// LoginForm is the input of the login screen.
type LoginForm struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks that both fields are filled in.
func (f LoginForm) Validate() error {
	if strings.TrimSpace(f.Email) == "" || f.Password == "" {
		return ErrMissingField
	}
	return nil
}

// RegistrationForm is the input of the register screen.
type RegistrationForm struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Confirm  string `json:"confirm_password"`
}

// Validate checks for empty fields, then that the confirmation matches.
// Whether the email is taken is the repository's concern.
func (f RegistrationForm) Validate() error {
	if strings.TrimSpace(f.Username) == "" || strings.TrimSpace(f.Email) == "" ||
		f.Password == "" || f.Confirm == "" {
		return ErrMissingField
	}
	if f.Password != f.Confirm {
		return ErrPasswordMismatch
	}
	return nil
}
