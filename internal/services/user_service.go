package services

import (
	"context"
	"strings"
	"time"

	"databank/internal/models"
	"databank/internal/repositories"

	"go.uber.org/zap"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

type UserService interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error)
	// VerifyUser is the manual, administrator driven verification.
	VerifyUser(ctx context.Context, id string) (*models.User, error)
}

type userService struct {
	repo repositories.UserRepository
	log  *zap.Logger
	now  func() time.Time
}

func NewUserService(repo repositories.UserRepository, log *zap.Logger) UserService {
	return &userService{repo: repo, log: log, now: time.Now}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *userService) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u.Public(), nil
}

func (s *userService) ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	users, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	res := make([]*models.User, 0, len(users))
	for _, u := range users {
		res = append(res, u.Public())
	}
	return res, nil
}

func (s *userService) VerifyUser(ctx context.Context, id string) (*models.User, error) {
	at, err := s.repo.SetVerified(ctx, id, s.now().UTC())
	if err != nil {
		return nil, err
	}
	if at == nil {
		return nil, ErrUserNotFound
	}
	s.log.Info("[users][verify] verified by administrator", zap.String("user_id", id))
	return s.GetUserByID(ctx, id)
}
