package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"databank/internal/authz"
	"databank/internal/handlers"
	"databank/internal/i18n"
	"databank/internal/models"
	"databank/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type okPinger struct{}

func (okPinger) PingContext(context.Context) error { return nil }

func newTestRouter(tokens services.TokenService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	log := zap.NewNop()
	// services are never reached in these tests
	return SetupRoutes(gin.New(), tokens,
		handlers.NewAuthHandler(nil, i18n.New(), log),
		handlers.NewSetupHandler(nil, log),
		handlers.NewUserHandler(nil, log),
		handlers.NewProjectHandler(nil, log),
		handlers.NewHealthHandler(okPinger{}),
	)
}

func TestRoutes_Protection(t *testing.T) {
	tokens := services.NewTokenService("secret", time.Hour)
	r := newTestRouter(tokens)

	standard, err := tokens.Sign(&models.User{ID: "u-1", Email: "jane@example.org", Role: authz.RoleStandard})
	require.NoError(t, err)

	cases := []struct {
		method, path, token string
		want                int
	}{
		{http.MethodPost, "/auth/confirm-email-code", "", http.StatusUnauthorized},
		{http.MethodPost, "/auth/verify-account", "", http.StatusUnauthorized},
		{http.MethodGet, "/users/me", "", http.StatusUnauthorized},
		{http.MethodGet, "/users", "", http.StatusUnauthorized},
		{http.MethodGet, "/users", standard, http.StatusForbidden},
		{http.MethodPatch, "/users/u-2/verify", standard, http.StatusForbidden},
		{http.MethodPut, "/admin/verification-policy", standard, http.StatusForbidden},
		{http.MethodGet, "/admin/verification-policy", standard, http.StatusForbidden},
		{http.MethodGet, "/projects", "", http.StatusUnauthorized},
		{http.MethodPost, "/projects", "", http.StatusUnauthorized},
		{http.MethodGet, "/projects/p-1/datasets", "", http.StatusUnauthorized},
		{http.MethodDelete, "/projects/p-1/users/u-2", "", http.StatusUnauthorized},
		{http.MethodPost, "/admin/users/u-2/datasets", standard, http.StatusForbidden},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		if tc.token != "" {
			req.Header.Set("Authorization", "Bearer "+tc.token)
		}
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		assert.Equal(t, tc.want, rr.Code, "%s %s", tc.method, tc.path)
	}
}

func TestRoutes_Public(t *testing.T) {
	r := newTestRouter(services.NewTokenService("secret", time.Hour))

	for _, path := range []string{"/healthz", "/metrics"} {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rr.Code, path)
	}
}
