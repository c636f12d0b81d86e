package services

import (
	"context"
	"strings"
	"testing"

	"databank/internal/authz"
	"databank/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func adminRequest(info models.VerificationInfo) models.SetupRequest {
	return models.SetupRequest{
		Admin: models.CreateAccountRequest{
			FirstName: "Ada", LastName: "Admin", Email: "Admin@Example.org", Password: "password1",
		},
		VerificationInfo: info,
	}
}

func TestSetup_CreatesAdminOnce(t *testing.T) {
	env := newTestEnv(models.ManualVerification{})
	ctx := context.Background()

	ok, err := env.setupSvc.IsSetUp(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	admin, err := env.setupSvc.Setup(ctx, adminRequest(models.VerificationInfo{
		Kind: models.PolicyVerifyByRegex, Regex: `@example\.org$`,
	}))
	require.NoError(t, err)
	assert.Equal(t, authz.RoleAdmin, admin.Role)
	assert.Equal(t, "admin@example.org", admin.Email)
	assert.NotNil(t, admin.ConfirmedAt)
	assert.NotNil(t, admin.VerifiedAt)
	assert.Empty(t, admin.HashedPassword)

	ok, err = env.setupSvc.IsSetUp(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	policy, err := env.setupSvc.VerificationPolicy(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.PolicyVerifyByRegex, policy.Kind())
	assert.True(t, models.ShouldVerify(policy, "x@example.org"))

	_, err = env.setupSvc.Setup(ctx, adminRequest(models.VerificationInfo{Kind: models.PolicyManual}))
	assert.ErrorIs(t, err, ErrAlreadySetUp)
}

func TestSetup_InvalidPolicy(t *testing.T) {
	env := newTestEnv(models.ManualVerification{})
	_, err := env.setupSvc.Setup(context.Background(), adminRequest(models.VerificationInfo{Kind: models.PolicyVerifyByRegex}))
	assert.ErrorIs(t, err, ErrInvalidPolicy)

	ok, err := env.setupSvc.IsSetUp(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerificationPolicy_DefaultBeforeSetup(t *testing.T) {
	env := newTestEnv(models.VerifyOnConfirm{})
	policy, err := env.setupSvc.VerificationPolicy(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.VerifyOnConfirm{}, policy)
}

func TestUpdateVerificationPolicy(t *testing.T) {
	env := newTestEnv(models.ManualVerification{})
	ctx := context.Background()

	_, err := env.setupSvc.UpdateVerificationPolicy(ctx, models.VerificationInfo{Kind: models.PolicyVerifyOnConfirm})
	assert.ErrorIs(t, err, ErrNotSetUp)

	_, err = env.setupSvc.Setup(ctx, adminRequest(models.VerificationInfo{Kind: models.PolicyManual}))
	require.NoError(t, err)

	_, err = env.setupSvc.UpdateVerificationPolicy(ctx, models.VerificationInfo{Kind: "SOMETHING"})
	assert.ErrorIs(t, err, ErrInvalidPolicy)

	stored, err := env.setupSvc.UpdateVerificationPolicy(ctx, models.VerificationInfo{Kind: models.PolicyVerifyOnConfirm, Regex: "ignored"})
	require.NoError(t, err)
	assert.Equal(t, models.VerificationInfo{Kind: models.PolicyVerifyOnConfirm}, stored)

	policy, err := env.setupSvc.VerificationPolicy(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.VerifyOnConfirm{}, policy)
}

func TestSetup_PasswordTooLong(t *testing.T) {
	env := newTestEnv(models.ManualVerification{})
	req := adminRequest(models.VerificationInfo{Kind: models.PolicyManual})
	req.Admin.Password = strings.Repeat("x", 80)

	_, err := env.setupSvc.Setup(context.Background(), req)
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}
