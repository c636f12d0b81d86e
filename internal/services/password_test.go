package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	hash, err := h.HashPassword("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)

	assert.NoError(t, h.ComparePassword(hash, "correct horse"))
	assert.ErrorIs(t, h.ComparePassword(hash, "battery staple"), ErrInvalidCredentials)
	assert.Error(t, h.ComparePassword("not-a-hash", "x"))
}

func TestBcryptHasher_PasswordTooLong(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	_, err := h.HashPassword(strings.Repeat("a", 73))
	assert.ErrorIs(t, err, ErrPasswordTooLong)

	// 72 bytes is the limit, not 72 characters
	_, err = h.HashPassword(strings.Repeat("é", 40))
	assert.ErrorIs(t, err, ErrPasswordTooLong)

	_, err = h.HashPassword(strings.Repeat("a", 72))
	assert.NoError(t, err)
}
