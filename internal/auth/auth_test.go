package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestNewHasher(t *testing.T) {
	tests := []struct {
		name    string
		mode    string
		cost    int
		want    Hasher
		wantErr bool
	}{
		{"default is bcrypt", "", 0, BcryptHasher{Cost: bcrypt.DefaultCost}, false},
		{"bcrypt", "bcrypt", bcrypt.MinCost, BcryptHasher{Cost: bcrypt.MinCost}, false},
		{"plain", "plain", 0, PlainHasher{}, false},
		{"case insensitive", "BCRYPT", 0, BcryptHasher{Cost: bcrypt.DefaultCost}, false},
		{"unknown", "md5", 0, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := NewHasher(tt.mode, tt.cost)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, h)
		})
	}
}

func TestNewHasher_ClampsCost(t *testing.T) {
	h, err := NewHasher("bcrypt", 1)
	require.NoError(t, err)
	assert.Equal(t, BcryptHasher{Cost: bcrypt.DefaultCost}, h)
}

func TestBcryptHasher(t *testing.T) {
	h := BcryptHasher{Cost: bcrypt.MinCost}

	stored, err := h.Hash("pw1")
	require.NoError(t, err)
	assert.NotEqual(t, "pw1", stored)

	again, err := h.Hash("pw1")
	require.NoError(t, err)
	assert.NotEqual(t, stored, again, "hashes are salted")

	assert.True(t, h.Compare(stored, "pw1"))
	assert.False(t, h.Compare(stored, "pw2"))
	assert.False(t, h.Compare("not-a-hash", "pw1"))
}

func TestPlainHasher(t *testing.T) {
	h := PlainHasher{}

	stored, err := h.Hash("pw1")
	require.NoError(t, err)
	assert.Equal(t, "pw1", stored)
	assert.True(t, h.Compare(stored, "pw1"))
	assert.False(t, h.Compare(stored, "PW1"))
}

func TestLoginForm_Validate(t *testing.T) {
	assert.NoError(t, LoginForm{Email: "ana@x.com", Password: "pw1"}.Validate())
	assert.ErrorIs(t, LoginForm{Email: "", Password: "pw1"}.Validate(), ErrMissingField)
	assert.ErrorIs(t, LoginForm{Email: "  ", Password: "pw1"}.Validate(), ErrMissingField)
	assert.ErrorIs(t, LoginForm{Email: "ana@x.com"}.Validate(), ErrMissingField)
}

func TestRegistrationForm_Validate(t *testing.T) {
	tests := []struct {
		name string
		form RegistrationForm
		want error
	}{
		{"valid", RegistrationForm{"ana", "ana@x.com", "pw1", "pw1"}, nil},
		{"missing username", RegistrationForm{"", "ana@x.com", "pw1", "pw1"}, ErrMissingField},
		{"missing email", RegistrationForm{"ana", "", "pw1", "pw1"}, ErrMissingField},
		{"missing confirm", RegistrationForm{"ana", "ana@x.com", "pw1", ""}, ErrMissingField},
		{"mismatch", RegistrationForm{"ana", "ana@x.com", "pw1", "pw2"}, ErrPasswordMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.form.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}
