package handlers

import (
	"net/http"

	"databank/internal/i18n"
	"databank/internal/models"
	"databank/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	authService services.AuthService
	translator  *i18n.Translator
	log         *zap.Logger
}

func NewAuthHandler(authService services.AuthService, translator *i18n.Translator, log *zap.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, translator: translator, log: log}
}

// @Summary      Log in
// @Description  Exchanges email and password for an access token
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        login  body      models.LoginRequest  true  "Credentials"
// @Success      200    {object}  models.AuthPayload
// @Failure      400    {object}  map[string]string
// @Failure      401    {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	payload, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, h.log, "[auth][login]", err)
		return
	}
	c.JSON(http.StatusOK, payload)
}

// @Summary      Create an account
// @Description  Signs up a STANDARD user. The role cannot be chosen by the caller.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        account  body      models.CreateAccountRequest  true  "New account"
// @Success      201      {object}  models.User
// @Failure      400      {object}  map[string]string
// @Failure      409      {object}  map[string]string
// @Router       /auth/account [post]
func (h *AuthHandler) CreateAccount(c *gin.Context) {
	var req models.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	user, err := h.authService.CreateAccount(c.Request.Context(), req)
	if err != nil {
		writeError(c, h.log, "[auth][account]", err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// @Summary      Send the email confirmation code
// @Description  Emails the current code again while it is valid, otherwise a new one
// @Tags         Auth
// @Produce      json
// @Param        Accept-Language  header    string  false  "Email language (en, fr)"
// @Success      200              {object}  models.ConfirmEmailProcedureInfo
// @Failure      401              {object}  map[string]string
// @Failure      429              {object}  map[string]string
// @Security     BearerAuth
// @Router       /auth/confirm-email-code [post]
func (h *AuthHandler) SendConfirmEmailCode(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		return
	}
	lang := h.translator.Resolve(c.GetHeader("Accept-Language"))
	info, err := h.authService.SendConfirmEmailCode(c.Request.Context(), claims.Email, lang)
	if err != nil {
		writeError(c, h.log, "[auth][confirm-email]", err)
		return
	}
	c.JSON(http.StatusOK, info)
}

// @Summary      Verify the account
// @Description  Checks the emailed code and returns a token reflecting the new state
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        code  body      models.VerifyAccountRequest  true  "Emailed code"
// @Success      200   {object}  models.AuthPayload
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Security     BearerAuth
// @Router       /auth/verify-account [post]
func (h *AuthHandler) VerifyAccount(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		return
	}
	var req models.VerifyAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	payload, err := h.authService.VerifyAccount(c.Request.Context(), req.Code, claims.Email)
	if err != nil {
		writeError(c, h.log, "[auth][verify]", err)
		return
	}
	c.JSON(http.StatusOK, payload)
}
