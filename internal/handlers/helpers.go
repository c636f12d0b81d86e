package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"databank/internal/middleware"
	"databank/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// statusFor maps service errors onto HTTP statuses; anything unknown is a 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrProjectNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrNoCodeRequested),
		errors.Is(err, services.ErrCodeExpired),
		errors.Is(err, services.ErrTooManyAttempts),
		errors.Is(err, services.ErrIncorrectCode),
		errors.Is(err, services.ErrAlreadySetUp),
		errors.Is(err, services.ErrNotDatasetOwner),
		errors.Is(err, services.ErrCreatorNotMember),
		errors.Is(err, services.ErrNotProjectManager):
		return http.StatusForbidden
	case errors.Is(err, services.ErrEmailTaken),
		errors.Is(err, services.ErrConcurrentUpdate),
		errors.Is(err, services.ErrNotSetUp):
		return http.StatusConflict
	case errors.Is(err, services.ErrResendThrottled):
		return http.StatusTooManyRequests
	case errors.Is(err, services.ErrInvalidPolicy),
		errors.Is(err, services.ErrPasswordTooLong):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeError responds with {"error": msg}. Internal failures are logged and
// hidden behind a generic message.
func writeError(c *gin.Context, log *zap.Logger, area string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Error(area+" internal error", zap.Error(err), zap.String("path", c.FullPath()))
		_ = c.Error(err)
		c.JSON(status, gin.H{"error": "Internal Server Error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// currentClaims aborts with 401 when the route is not behind AuthMiddleware.
func currentClaims(c *gin.Context) (*services.Claims, bool) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": services.ErrInvalidToken.Error()})
		return nil, false
	}
	return claims, true
}

// queryInt reads a non-negative integer query parameter, falling back to def.
func queryInt(c *gin.Context, key string, def int) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + key})
		return 0, false
	}
	return n, true
}
