package models

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVerificationPolicy(t *testing.T) {
	p, err := ParseVerificationPolicy(PolicyVerifyOnConfirm, "")
	require.NoError(t, err)
	assert.IsType(t, VerifyOnConfirm{}, p)

	p, err = ParseVerificationPolicy(PolicyManual, "ignored")
	require.NoError(t, err)
	assert.IsType(t, ManualVerification{}, p)

	p, err = ParseVerificationPolicy(PolicyVerifyByRegex, `@example\.org$`)
	require.NoError(t, err)
	assert.Equal(t, VerificationInfo{Kind: PolicyVerifyByRegex, Regex: `@example\.org$`}, InfoOf(p))

	_, err = ParseVerificationPolicy(PolicyVerifyByRegex, "")
	assert.True(t, errors.Is(err, ErrInvalidPolicy))

	_, err = ParseVerificationPolicy(PolicyVerifyByRegex, "([")
	assert.True(t, errors.Is(err, ErrInvalidPolicy))

	_, err = ParseVerificationPolicy("NOPE", "")
	assert.True(t, errors.Is(err, ErrInvalidPolicy))
}

func TestShouldVerify(t *testing.T) {
	regex, err := ParseVerificationPolicy(PolicyVerifyByRegex, `@mcgill\.ca$`)
	require.NoError(t, err)

	assert.True(t, ShouldVerify(VerifyOnConfirm{}, "a@b.c"))
	assert.False(t, ShouldVerify(ManualVerification{}, "a@b.c"))
	assert.True(t, ShouldVerify(regex, "jane@mcgill.ca"))
	assert.False(t, ShouldVerify(regex, "jane@gmail.com"))
	assert.False(t, ShouldVerify(VerifyByRegex{}, "jane@mcgill.ca"))
}

func TestConfirmEmailInfo_ActiveAndExpired(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	var none *ConfirmEmailInfo
	assert.False(t, none.Active(now))

	info := &ConfirmEmailInfo{Code: 123456, Expiry: now.Add(time.Minute)}
	assert.True(t, info.Active(now))
	assert.False(t, info.Expired(now))

	info.Expiry = now.Add(-time.Second)
	assert.False(t, info.Active(now))
	assert.True(t, info.Expired(now))
}

func TestUser_Public(t *testing.T) {
	u := &User{Email: "a@b.c", HashedPassword: "$2a$hash", ConfirmEmailInfo: &ConfirmEmailInfo{Code: 111111}}
	pub := u.Public()
	assert.Empty(t, pub.HashedPassword)
	assert.Nil(t, pub.ConfirmEmailInfo)
	assert.Equal(t, "$2a$hash", u.HashedPassword)
}
