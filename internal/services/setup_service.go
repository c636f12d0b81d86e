package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"databank/internal/authz"
	"databank/internal/models"
	"databank/internal/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type SetupService interface {
	IsSetUp(ctx context.Context) (bool, error)
	// Setup creates the first administrator and stores the verification policy. It runs once.
	Setup(ctx context.Context, req models.SetupRequest) (*models.User, error)
	// VerificationPolicy is the stored policy, or the configured default before setup.
	VerificationPolicy(ctx context.Context) (models.VerificationPolicy, error)
	UpdateVerificationPolicy(ctx context.Context, info models.VerificationInfo) (models.VerificationInfo, error)
}

type setupService struct {
	repo          repositories.SetupRepository
	hasher        PasswordHasher
	defaultPolicy models.VerificationPolicy
	log           *zap.Logger
	now           func() time.Time
}

func NewSetupService(repo repositories.SetupRepository, hasher PasswordHasher, defaultPolicy models.VerificationPolicy, log *zap.Logger) SetupService {
	return &setupService{
		repo:          repo,
		hasher:        hasher,
		defaultPolicy: defaultPolicy,
		log:           log,
		now:           time.Now,
	}
}

func (s *setupService) IsSetUp(ctx context.Context) (bool, error) {
	info, err := s.repo.GetVerificationInfo(ctx)
	if err != nil {
		return false, err
	}
	return info != nil, nil
}

func (s *setupService) Setup(ctx context.Context, req models.SetupRequest) (*models.User, error) {
	policy, err := req.VerificationInfo.Policy()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPolicy, err)
	}

	hash, err := s.hasher.HashPassword(req.Admin.Password)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	admin := &models.User{
		ID:             uuid.NewString(),
		FirstName:      strings.TrimSpace(req.Admin.FirstName),
		LastName:       strings.TrimSpace(req.Admin.LastName),
		Email:          NormalizeEmail(req.Admin.Email),
		HashedPassword: hash,
		Role:           authz.RoleAdmin,
		CreatedAt:      now,
		ConfirmedAt:    &now,
		VerifiedAt:     &now,
	}

	err = s.repo.Initialize(ctx, admin, models.InfoOf(policy))
	switch {
	case errors.Is(err, repositories.ErrAlreadyInitialized):
		return nil, ErrAlreadySetUp
	case errors.Is(err, repositories.ErrDuplicateEmail):
		return nil, ErrEmailTaken
	case err != nil:
		return nil, err
	}

	s.log.Info("[setup] completed", zap.String("admin_id", admin.ID), zap.String("policy", policy.Kind()))
	return admin.Public(), nil
}

func (s *setupService) VerificationPolicy(ctx context.Context) (models.VerificationPolicy, error) {
	info, err := s.repo.GetVerificationInfo(ctx)
	if err != nil {
		return nil, err
	}
	if info == nil {
		return s.defaultPolicy, nil
	}
	policy, err := info.Policy()
	if err != nil {
		return nil, fmt.Errorf("stored verification policy: %w", err)
	}
	return policy, nil
}

func (s *setupService) UpdateVerificationPolicy(ctx context.Context, info models.VerificationInfo) (models.VerificationInfo, error) {
	policy, err := info.Policy()
	if err != nil {
		return models.VerificationInfo{}, fmt.Errorf("%w: %v", ErrInvalidPolicy, err)
	}
	stored := models.InfoOf(policy)
	if err := s.repo.UpdateVerificationInfo(ctx, stored); err != nil {
		if errors.Is(err, repositories.ErrNotInitialized) {
			return models.VerificationInfo{}, ErrNotSetUp
		}
		return models.VerificationInfo{}, err
	}
	s.log.Info("[setup] verification policy updated", zap.String("policy", stored.Kind))
	return stored, nil
}
