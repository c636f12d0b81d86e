package handlers

import (
	"net/http"

	"databank/internal/models"
	"databank/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type SetupHandler struct {
	service services.SetupService
	log     *zap.Logger
}

func NewSetupHandler(service services.SetupService, log *zap.Logger) *SetupHandler {
	return &SetupHandler{service: service, log: log}
}

// @Summary      Setup state
// @Tags         Setup
// @Produce      json
// @Success      200  {object}  models.SetupState
// @Router       /setup [get]
func (h *SetupHandler) GetSetupState(c *gin.Context) {
	ok, err := h.service.IsSetUp(c.Request.Context())
	if err != nil {
		writeError(c, h.log, "[setup][state]", err)
		return
	}
	c.JSON(http.StatusOK, models.SetupState{IsSetup: ok})
}

// @Summary      Initial setup
// @Description  Creates the first administrator and stores the verification policy. Only allowed once.
// @Tags         Setup
// @Accept       json
// @Produce      json
// @Param        setup  body      models.SetupRequest  true  "Administrator and policy"
// @Success      201    {object}  models.User
// @Failure      400    {object}  map[string]string
// @Failure      403    {object}  map[string]string
// @Router       /setup [post]
func (h *SetupHandler) Setup(c *gin.Context) {
	var req models.SetupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	admin, err := h.service.Setup(c.Request.Context(), req)
	if err != nil {
		writeError(c, h.log, "[setup]", err)
		return
	}
	c.JSON(http.StatusCreated, admin)
}

// @Summary      Current verification policy
// @Tags         Admin
// @Produce      json
// @Success      200  {object}  models.VerificationInfo
// @Security     BearerAuth
// @Router       /admin/verification-policy [get]
func (h *SetupHandler) GetVerificationPolicy(c *gin.Context) {
	policy, err := h.service.VerificationPolicy(c.Request.Context())
	if err != nil {
		writeError(c, h.log, "[setup][policy]", err)
		return
	}
	c.JSON(http.StatusOK, models.InfoOf(policy))
}

// @Summary      Change the verification policy
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        policy  body      models.VerificationInfo  true  "New policy"
// @Success      200     {object}  models.VerificationInfo
// @Failure      400     {object}  map[string]string
// @Security     BearerAuth
// @Router       /admin/verification-policy [put]
func (h *SetupHandler) UpdateVerificationPolicy(c *gin.Context) {
	var req models.VerificationInfo
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	stored, err := h.service.UpdateVerificationPolicy(c.Request.Context(), req)
	if err != nil {
		writeError(c, h.log, "[setup][policy]", err)
		return
	}
	c.JSON(http.StatusOK, stored)
}
