package services

import (
	"errors"
	"fmt"
	"time"

	"databank/internal/authz"
	"databank/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("Invalid or expired token")

// Claims is the fixed projection of a user carried by an access token. It
// never holds the password hash or a confirmation code.
type Claims struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	FirstName   string     `json:"firstName"`
	LastName    string     `json:"lastName"`
	Role        authz.Role `json:"role"`
	ConfirmedAt *time.Time `json:"confirmedAt"`
	VerifiedAt  *time.Time `json:"verifiedAt"`
	jwt.RegisteredClaims
}

type TokenService interface {
	Sign(user *models.User) (string, error)
	Parse(token string) (*Claims, error)
}

type tokenService struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

func NewTokenService(secret string, ttl time.Duration) TokenService {
	return &tokenService{key: []byte(secret), ttl: ttl, now: time.Now}
}

func claimsFor(u *models.User) Claims {
	return Claims{
		ID:          u.ID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Role:        u.Role,
		ConfirmedAt: u.ConfirmedAt,
		VerifiedAt:  u.VerifiedAt,
	}
}

func (s *tokenService) Sign(user *models.User) (string, error) {
	now := s.now()
	claims := claimsFor(user)
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   user.ID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}

func (s *tokenService) Parse(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		// only HMAC, never "none" or an asymmetric method with our secret
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.key, nil
	}, jwt.WithExpirationRequired(), jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
