package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/medgrid/emr-admin/internal/model"
	"github.com/medgrid/emr-admin/internal/service/auth"
	"github.com/medgrid/emr-admin/internal/service/preference"
	"github.com/medgrid/emr-admin/pkg/httputil"
)

type Handler struct {
	service auth.Servicer
	prefs   preference.Servicer
}

func NewHandler(service auth.Servicer, prefs preference.Servicer) *Handler {
	return &Handler{service: service, prefs: prefs}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/login", h.Login)
		authGroup.POST("/refresh", h.RefreshToken)
		authGroup.POST("/password-reset/request", h.RequestPasswordReset)
		authGroup.POST("/password-reset/verify", h.VerifyOTP)
		authGroup.POST("/password-reset", h.ResetPassword)
	}
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithValidationError(c, err)
		return
	}

	tokens, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrAccountLocked):
			c.JSON(http.StatusLocked, gin.H{"error": err.Error()})
		case errors.Is(err, model.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		default:
			httputil.RespondWithError(c, err)
		}
		return
	}

	// Session profile caching is best effort; the login succeeds either way.
	h.prefs.SetSessionProfile(c.Request.Context(), tokens.User.ID, &model.SessionProfile{
		Name: tokens.User.Name,
		Role: tokens.Role,
	})

	c.JSON(http.StatusOK, tokens)
}

func (h *Handler) RefreshToken(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithValidationError(c, err)
		return
	}

	tokens, err := h.service.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, tokens)
}

func (h *Handler) RequestPasswordReset(c *gin.Context) {
	var req model.RequestResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithValidationError(c, err)
		return
	}

	if err := h.service.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "if the account exists, a reset code has been sent"})
}

func (h *Handler) VerifyOTP(c *gin.Context) {
	var req model.VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithValidationError(c, err)
		return
	}

	if err := h.service.VerifyOTP(c.Request.Context(), req.Email, req.Code); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

func (h *Handler) ResetPassword(c *gin.Context) {
	var req model.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithValidationError(c, err)
		return
	}

	if err := h.service.ResetPassword(c.Request.Context(), &req); err != nil {
		if errors.Is(err, model.ErrInvalidOTP) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		httputil.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}
