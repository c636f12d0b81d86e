package services

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"databank/internal/authz"
	"databank/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestLogin(t *testing.T) {
	env := newTestEnv(models.ManualVerification{})
	created := env.signup("Jane@Example.org ")
	ctx := context.Background()

	payload, err := env.auth.Login(ctx, "jane@example.org", "correct horse")
	require.NoError(t, err)
	claims, err := env.tokens.Parse(payload.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, created.ID, claims.ID)
	assert.Equal(t, authz.RoleStandard, claims.Role)

	_, err = env.auth.Login(ctx, "JANE@example.org", "correct horse")
	require.NoError(t, err)

	_, wrongPassword := env.auth.Login(ctx, "jane@example.org", "battery staple")
	_, unknownEmail := env.auth.Login(ctx, "ghost@example.org", "correct horse")
	assert.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	assert.ErrorIs(t, unknownEmail, ErrInvalidCredentials)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

func TestLogin_StoreError(t *testing.T) {
	env := newTestEnv(models.ManualVerification{})
	env.users.getErr = errors.New("db down")

	_, err := env.auth.Login(context.Background(), "jane@example.org", "x")
	assert.EqualError(t, err, "db down")
}

func TestCreateAccount(t *testing.T) {
	env := newTestEnv(models.ManualVerification{})
	ctx := context.Background()

	u := env.signup("  Jane@Example.ORG")
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "jane@example.org", u.Email)
	assert.Equal(t, authz.RoleStandard, u.Role)
	assert.Empty(t, u.HashedPassword)
	assert.Nil(t, u.ConfirmedAt)
	assert.Nil(t, u.VerifiedAt)

	stored := env.users.stored("jane@example.org")
	require.NoError(t, env.hasher.ComparePassword(stored.HashedPassword, "correct horse"))

	_, err := env.auth.CreateAccount(ctx, models.CreateAccountRequest{
		FirstName: "J", LastName: "D", Email: "jane@example.org", Password: "whatever1",
	})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestSendConfirmEmailCode_Throttled(t *testing.T) {
	env := newTestEnv(models.ManualVerification{})
	env.signup("jane@example.org")
	env.auth.limiter = denyLimiter{}

	_, err := env.auth.SendConfirmEmailCode(context.Background(), "jane@example.org", language.English)
	assert.ErrorIs(t, err, ErrResendThrottled)
	assert.Zero(t, env.mailer.count())
	assert.Nil(t, env.users.stored("jane@example.org").ConfirmEmailInfo)
}

func TestVerifyAccount_UnknownUser(t *testing.T) {
	env := newTestEnv(models.VerifyOnConfirm{})
	_, err := env.auth.VerifyAccount(context.Background(), 111111, "ghost@example.org")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestVerifyAccount_WrongCodeIssuesNoToken(t *testing.T) {
	env := newTestEnv(models.VerifyOnConfirm{})
	env.signup("jane@example.org")
	ctx := context.Background()

	_, err := env.auth.SendConfirmEmailCode(ctx, "jane@example.org", language.English)
	require.NoError(t, err)

	payload, err := env.auth.VerifyAccount(ctx, 222222, "jane@example.org")
	assert.ErrorIs(t, err, ErrIncorrectCode)
	assert.Nil(t, payload)
	assert.Nil(t, env.users.stored("jane@example.org").VerifiedAt)
}

func TestEndToEnd_VerifyOnConfirm(t *testing.T) {
	env := newTestEnv(models.VerifyOnConfirm{})
	created := env.signup("jane@example.org")
	ctx := context.Background()

	_, err := env.auth.SendConfirmEmailCode(ctx, "jane@example.org", language.English)
	require.NoError(t, err)

	payload, err := env.auth.VerifyAccount(ctx, 111111, "jane@example.org")
	require.NoError(t, err)

	stored := env.users.stored("jane@example.org")
	require.NotNil(t, stored.ConfirmedAt)
	require.NotNil(t, stored.VerifiedAt)
	assert.Nil(t, stored.ConfirmEmailInfo)

	claims, err := env.tokens.Parse(payload.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, created.ID, claims.ID)
	require.NotNil(t, claims.ConfirmedAt)
	require.NotNil(t, claims.VerifiedAt)
	assert.True(t, claims.VerifiedAt.Equal(*stored.VerifiedAt))

	_, err = env.auth.VerifyAccount(ctx, 111111, "jane@example.org")
	assert.ErrorIs(t, err, ErrNoCodeRequested)
}

func TestEndToEnd_VerifyByRegex(t *testing.T) {
	policy := models.VerifyByRegex{Pattern: regexp.MustCompile(`@mcgill\.ca$`)}
	env := newTestEnv(policy)
	env.signup("jane@gmail.com")
	env.signup("john@mcgill.ca")
	ctx := context.Background()

	for _, email := range []string{"jane@gmail.com", "john@mcgill.ca"} {
		_, err := env.auth.SendConfirmEmailCode(ctx, email, language.English)
		require.NoError(t, err)
	}

	payload, err := env.auth.VerifyAccount(ctx, 111111, "jane@gmail.com")
	require.NoError(t, err)
	claims, err := env.tokens.Parse(payload.AccessToken)
	require.NoError(t, err)
	assert.NotNil(t, claims.ConfirmedAt)
	assert.Nil(t, claims.VerifiedAt)
	assert.Nil(t, env.users.stored("jane@gmail.com").VerifiedAt)

	_, err = env.auth.VerifyAccount(ctx, 111111, "john@mcgill.ca")
	require.NoError(t, err)
	assert.NotNil(t, env.users.stored("john@mcgill.ca").VerifiedAt)
}

func TestEndToEnd_ManualThenStoredPolicy(t *testing.T) {
	env := newTestEnv(models.VerifyOnConfirm{})
	ctx := context.Background()

	// setup stores MANUAL, which overrides the configured default
	_, err := env.setupSvc.Setup(ctx, models.SetupRequest{
		Admin: models.CreateAccountRequest{
			FirstName: "Ada", LastName: "Admin", Email: "admin@example.org", Password: "password1",
		},
		VerificationInfo: models.VerificationInfo{Kind: models.PolicyManual},
	})
	require.NoError(t, err)

	env.signup("jane@example.org")
	_, err = env.auth.SendConfirmEmailCode(ctx, "jane@example.org", language.English)
	require.NoError(t, err)

	env.clock.Advance(time.Minute)
	_, err = env.auth.VerifyAccount(ctx, 111111, "jane@example.org")
	require.NoError(t, err)

	stored := env.users.stored("jane@example.org")
	assert.NotNil(t, stored.ConfirmedAt)
	assert.Nil(t, stored.VerifiedAt)
}

func TestCreateAccount_PasswordTooLong(t *testing.T) {
	env := newTestEnv(models.ManualVerification{})

	_, err := env.auth.CreateAccount(context.Background(), models.CreateAccountRequest{
		FirstName: "Jane", LastName: "Doe", Email: "jane@example.org", Password: strings.Repeat("x", 80),
	})
	assert.ErrorIs(t, err, ErrPasswordTooLong)
	assert.Nil(t, env.users.stored("jane@example.org"))
}
