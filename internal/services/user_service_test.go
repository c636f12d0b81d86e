package services

import (
	"context"
	"testing"
	"time"

	"databank/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "jane@example.org", NormalizeEmail("  Jane@EXAMPLE.org\n"))
}

func TestUserService(t *testing.T) {
	env := newTestEnv(models.ManualVerification{})
	svc := NewUserService(env.users, zap.NewNop()).(*userService)
	svc.now = env.clock.Now
	ctx := context.Background()

	jane := env.signup("jane@example.org")
	env.signup("john@example.org")

	got, err := svc.GetUserByID(ctx, jane.ID)
	require.NoError(t, err)
	assert.Equal(t, "jane@example.org", got.Email)
	assert.Empty(t, got.HashedPassword)

	_, err = svc.GetUserByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)

	all, err := svc.ListUsers(ctx, 0, -5)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	for _, u := range all {
		assert.Empty(t, u.HashedPassword)
	}
	one, err := svc.ListUsers(ctx, 1, 0)
	require.NoError(t, err)
	assert.Len(t, one, 1)

	verified, err := svc.VerifyUser(ctx, jane.ID)
	require.NoError(t, err)
	require.NotNil(t, verified.VerifiedAt)
	first := *verified.VerifiedAt

	env.clock.Advance(time.Hour)
	again, err := svc.VerifyUser(ctx, jane.ID)
	require.NoError(t, err)
	assert.Equal(t, first, *again.VerifiedAt)

	_, err = svc.VerifyUser(ctx, "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
