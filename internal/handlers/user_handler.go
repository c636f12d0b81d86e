package handlers

import (
	"net/http"

	"databank/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type UserHandler struct {
	service services.UserService
	log     *zap.Logger
}

func NewUserHandler(service services.UserService, log *zap.Logger) *UserHandler {
	return &UserHandler{service: service, log: log}
}

// @Summary      Current user
// @Tags         Users
// @Produce      json
// @Success      200  {object}  models.User
// @Security     BearerAuth
// @Router       /users/me [get]
func (h *UserHandler) Me(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		return
	}
	user, err := h.service.GetUserByID(c.Request.Context(), claims.ID)
	if err != nil {
		writeError(c, h.log, "[users][me]", err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// @Summary      List users
// @Tags         Users
// @Produce      json
// @Param        limit   query     int  false  "Page size (default 50, max 200)"
// @Param        offset  query     int  false  "Offset"
// @Success      200     {array}   models.User
// @Security     BearerAuth
// @Router       /users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	limit, ok := queryInt(c, "limit", 0)
	if !ok {
		return
	}
	offset, ok := queryInt(c, "offset", 0)
	if !ok {
		return
	}
	users, err := h.service.ListUsers(c.Request.Context(), limit, offset)
	if err != nil {
		writeError(c, h.log, "[users][list]", err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// @Summary      Verify a user manually
// @Description  Marks the account verified. Calling it again keeps the first verification time.
// @Tags         Users
// @Produce      json
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  models.User
// @Failure      404  {object}  map[string]string
// @Security     BearerAuth
// @Router       /users/{id}/verify [patch]
func (h *UserHandler) VerifyUser(c *gin.Context) {
	user, err := h.service.VerifyUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.log, "[users][verify]", err)
		return
	}
	c.JSON(http.StatusOK, user)
}
