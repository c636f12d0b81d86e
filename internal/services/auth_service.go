package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"databank/internal/authz"
	"databank/internal/metrics"
	"databank/internal/models"
	"databank/internal/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

type AuthService interface {
	Login(ctx context.Context, email, password string) (*models.AuthPayload, error)
	// CreateAccount always creates a STANDARD account, whatever the caller asks for.
	CreateAccount(ctx context.Context, req models.CreateAccountRequest) (*models.User, error)
	SendConfirmEmailCode(ctx context.Context, email string, lang language.Tag) (*models.ConfirmEmailProcedureInfo, error)
	VerifyAccount(ctx context.Context, code int, email string) (*models.AuthPayload, error)
}

type authService struct {
	users   repositories.UserRepository
	hasher  PasswordHasher
	tokens  TokenService
	confirm ConfirmEmailService
	setup   SetupService
	limiter ResendLimiter
	log     *zap.Logger
	now     func() time.Time

	// compared against when the email is unknown so both failure paths cost a bcrypt round
	dummyHash string
}

func NewAuthService(
	users repositories.UserRepository,
	hasher PasswordHasher,
	tokens TokenService,
	confirm ConfirmEmailService,
	setup SetupService,
	limiter ResendLimiter,
	log *zap.Logger,
) (AuthService, error) {
	dummy, err := hasher.HashPassword(uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("prepare dummy hash: %w", err)
	}
	if limiter == nil {
		limiter = NewNoopResendLimiter()
	}
	return &authService{
		users:     users,
		hasher:    hasher,
		tokens:    tokens,
		confirm:   confirm,
		setup:     setup,
		limiter:   limiter,
		log:       log,
		now:       time.Now,
		dummyHash: dummy,
	}, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*models.AuthPayload, error) {
	email = NormalizeEmail(email)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	if user == nil {
		_ = s.hasher.ComparePassword(s.dummyHash, password)
		metrics.LoginAttemptsTotal.WithLabelValues("failure").Inc()
		s.log.Info("[auth][login] unknown email")
		return nil, ErrInvalidCredentials
	}
	if err := s.hasher.ComparePassword(user.HashedPassword, password); err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("failure").Inc()
		if !errors.Is(err, ErrInvalidCredentials) {
			s.log.Warn("[auth][login] password compare failed", zap.String("user_id", user.ID), zap.Error(err))
		} else {
			s.log.Info("[auth][login] wrong password", zap.String("user_id", user.ID))
		}
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Sign(user)
	if err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	s.log.Info("[auth][login] success", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	return &models.AuthPayload{AccessToken: token}, nil
}

func (s *authService) CreateAccount(ctx context.Context, req models.CreateAccountRequest) (*models.User, error) {
	hash, err := s.hasher.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		ID:             uuid.NewString(),
		FirstName:      strings.TrimSpace(req.FirstName),
		LastName:       strings.TrimSpace(req.LastName),
		Email:          NormalizeEmail(req.Email),
		HashedPassword: hash,
		Role:           authz.RoleStandard,
		CreatedAt:      s.now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	metrics.AccountsCreatedTotal.Inc()
	s.log.Info("[auth][account] created", zap.String("user_id", user.ID))
	return user.Public(), nil
}

func (s *authService) SendConfirmEmailCode(ctx context.Context, email string, lang language.Tag) (*models.ConfirmEmailProcedureInfo, error) {
	email = NormalizeEmail(email)
	ok, err := s.limiter.Allow(ctx, email)
	if err != nil {
		return nil, err
	}
	if !ok {
		s.log.Info("[auth][confirm-email] resend throttled")
		return nil, ErrResendThrottled
	}
	return s.confirm.Issue(ctx, email, lang)
}

func (s *authService) VerifyAccount(ctx context.Context, code int, email string) (*models.AuthPayload, error) {
	// the identity in the token may be stale, work from the stored record
	user, err := s.users.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if err := s.confirm.Verify(ctx, user, code); err != nil {
		if IsVerificationFailure(err) {
			metrics.VerifyAttemptsTotal.WithLabelValues("rejected").Inc()
		} else {
			metrics.VerifyAttemptsTotal.WithLabelValues("error").Inc()
		}
		return nil, err
	}

	policy, err := s.setup.VerificationPolicy(ctx)
	if err != nil {
		return nil, err
	}
	if models.ShouldVerify(policy, user.Email) {
		verifiedAt, err := s.users.SetVerified(ctx, user.ID, s.now().UTC())
		if err != nil {
			return nil, err
		}
		if verifiedAt == nil {
			return nil, ErrUserNotFound
		}
		user.VerifiedAt = verifiedAt
	}
	metrics.VerifyAttemptsTotal.WithLabelValues("confirmed").Inc()
	s.log.Info("[auth][verify] email confirmed",
		zap.String("user_id", user.ID),
		zap.String("policy", policy.Kind()),
		zap.Bool("verified", user.IsVerified()))

	token, err := s.tokens.Sign(user)
	if err != nil {
		return nil, err
	}
	return &models.AuthPayload{AccessToken: token}, nil
}
