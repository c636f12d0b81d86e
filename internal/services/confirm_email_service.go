package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"databank/internal/i18n"
	"databank/internal/metrics"
	"databank/internal/models"
	"databank/internal/repositories"
	"databank/internal/utils"

	"go.uber.org/zap"
	"golang.org/x/text/language"
)

// VerificationSettings are the validated limits of the confirmation code flow.
type VerificationSettings struct {
	Timeout     time.Duration
	MaxAttempts int
}

func NewVerificationSettings(timeout time.Duration, maxAttempts int) (VerificationSettings, error) {
	if timeout <= 0 {
		return VerificationSettings{}, fmt.Errorf("verification timeout must be positive, got %s", timeout)
	}
	if maxAttempts <= 0 {
		return VerificationSettings{}, fmt.Errorf("max validation attempts must be a positive integer, got %d", maxAttempts)
	}
	return VerificationSettings{Timeout: timeout, MaxAttempts: maxAttempts}, nil
}

// ConfirmEmailService issues and checks the one-time code proving a user
// controls their email address.
type ConfirmEmailService interface {
	// Issue sends the user's active code again, or mints and sends a new one.
	Issue(ctx context.Context, email string, lang language.Tag) (*models.ConfirmEmailProcedureInfo, error)
	// Verify consumes the code on a match and sets user.ConfirmedAt.
	Verify(ctx context.Context, user *models.User, code int) error
}

type confirmEmailService struct {
	users      repositories.UserRepository
	mailer     EmailService
	translator *i18n.Translator
	settings   VerificationSettings
	log        *zap.Logger

	now     func() time.Time
	newCode func() (int, error)
}

func NewConfirmEmailService(
	users repositories.UserRepository,
	mailer EmailService,
	translator *i18n.Translator,
	settings VerificationSettings,
	log *zap.Logger,
) ConfirmEmailService {
	return &confirmEmailService{
		users:      users,
		mailer:     mailer,
		translator: translator,
		settings:   settings,
		log:        log,
		now:        time.Now,
		newCode:    utils.NewConfirmationCode,
	}
}

func (s *confirmEmailService) Issue(ctx context.Context, email string, lang language.Tag) (*models.ConfirmEmailProcedureInfo, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("issue confirm code: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	now := s.now()
	info := user.ConfirmEmailInfo
	kind := "reused"

	// An active code is reused so its attempt count survives a resend.
	if !info.Active(now) {
		code, err := s.newCode()
		if err != nil {
			return nil, fmt.Errorf("generate confirm code: %w", err)
		}
		fresh := &models.ConfirmEmailInfo{
			AttemptsMade: 0,
			Code:         code,
			Expiry:       now.Add(s.settings.Timeout).UTC().Truncate(time.Microsecond),
		}
		stored, err := s.users.StartConfirmEmail(ctx, user.Email, fresh, now)
		if err != nil {
			return nil, err
		}
		if stored {
			info = fresh
			kind = "new"
		} else {
			// another request minted first, send that one
			user, err = s.users.GetByEmail(ctx, email)
			if err != nil {
				return nil, fmt.Errorf("issue confirm code: %w", err)
			}
			if user == nil {
				return nil, ErrUserNotFound
			}
			if !user.ConfirmEmailInfo.Active(now) {
				return nil, ErrConcurrentUpdate
			}
			info = user.ConfirmEmailInfo
		}
	}

	subject, body := s.translator.ConfirmationEmail(lang, info.Code)
	if err := s.mailer.SendMail(ctx, user.Email, subject, body); err != nil {
		return nil, err
	}
	metrics.ConfirmCodesTotal.WithLabelValues(kind).Inc()
	s.log.Info("[confirm-email][issue] code sent",
		zap.String("user_id", user.ID),
		zap.String("kind", kind),
		zap.Int("attempts_made", info.AttemptsMade),
		zap.Time("expiry", info.Expiry))

	return &models.ConfirmEmailProcedureInfo{AttemptsMade: info.AttemptsMade, Expiry: info.Expiry}, nil
}

func (s *confirmEmailService) Verify(ctx context.Context, user *models.User, code int) error {
	info := user.ConfirmEmailInfo
	if info == nil {
		return ErrNoCodeRequested
	}
	now := s.now()
	if info.Expired(now) {
		return ErrCodeExpired
	}
	// Checked before counting this attempt: MaxAttempts+1 wrong codes are accepted before lockout.
	if info.AttemptsMade > s.settings.MaxAttempts {
		return ErrTooManyAttempts
	}

	if code != info.Code {
		attempts, ok, err := s.users.IncrementConfirmAttempts(ctx, user.Email, info)
		if err != nil {
			return err
		}
		if !ok {
			return ErrConcurrentUpdate
		}
		info.AttemptsMade = attempts
		s.log.Info("[confirm-email][verify] incorrect code",
			zap.String("user_id", user.ID), zap.Int("attempts_made", attempts))
		return ErrIncorrectCode
	}

	confirmedAt, ok, err := s.users.ConsumeConfirmEmail(ctx, user.Email, info, s.settings.MaxAttempts, now)
	if err != nil {
		return err
	}
	if !ok {
		return ErrConcurrentUpdate
	}
	user.ConfirmEmailInfo = nil
	user.ConfirmedAt = confirmedAt
	return nil
}

// IsVerificationFailure reports whether err is one of the expected outcomes
// of a rejected code rather than an infrastructure failure.
func IsVerificationFailure(err error) bool {
	return errors.Is(err, ErrNoCodeRequested) ||
		errors.Is(err, ErrCodeExpired) ||
		errors.Is(err, ErrTooManyAttempts) ||
		errors.Is(err, ErrIncorrectCode) ||
		errors.Is(err, ErrConcurrentUpdate)
}
