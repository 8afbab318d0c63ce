// internal/handlers/session/session_handler.go
package session

import (
	"net/http"

	domain "storefront-gateway/internal/domain/session"
	"storefront-gateway/internal/pkg/response"
	sessionService "storefront-gateway/internal/service/session"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type SessionHandler struct {
	sessions *sessionService.Service
	logger   *zap.Logger
}

func NewSessionHandler(sessions *sessionService.Service, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{sessions: sessions, logger: logger}
}

// Current returns the session state for UI hydration.
func (h *SessionHandler) Current(c *gin.Context) {
	response.Success(c, http.StatusOK, "session state", h.sessions.Current())
}

// Register handles account creation.
func (h *SessionHandler) Register(c *gin.Context) {
	var req domain.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	res := h.sessions.Register(c.Request.Context(), &req)
	h.writeAuthResult(c, res, http.StatusCreated)
}

// Login handles user login. An unverified account is surfaced as a
// distinguished failure so the UI routes to the verification page.
func (h *SessionHandler) Login(c *gin.Context) {
	var req domain.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	res := h.sessions.Login(c.Request.Context(), &req)
	h.writeAuthResult(c, res, http.StatusOK)
}

func (h *SessionHandler) writeAuthResult(c *gin.Context, res domain.AuthResult, okStatus int) {
	if res.Success {
		response.Success(c, okStatus, res.Message, h.sessions.Current())
		return
	}
	if res.RequiresVerification {
		response.Error(c, http.StatusForbidden, res.Message, nil, gin.H{
			"requiresVerification": true,
			"email":                res.Email,
		})
		return
	}
	response.Error(c, http.StatusUnauthorized, res.Message, nil)
}

// Logout clears the session; it always succeeds.
func (h *SessionHandler) Logout(c *gin.Context) {
	res := h.sessions.Logout(c.Request.Context())
	response.Success(c, http.StatusOK, res.Message, nil)
}

// VerifyEmail confirms the emailed verification code.
func (h *SessionHandler) VerifyEmail(c *gin.Context) {
	var req domain.VerifyEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	res := h.sessions.VerifyEmail(c.Request.Context(), req.Email, req.VerificationCode)
	h.writeResult(c, res)
}

// ResendVerification re-sends the verification code.
func (h *SessionHandler) ResendVerification(c *gin.Context) {
	var req domain.ResendVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	res := h.sessions.ResendVerification(c.Request.Context(), req.Email)
	h.writeResult(c, res)
}

// Refresh forces a token refresh; a failed refresh clears the session.
func (h *SessionHandler) Refresh(c *gin.Context) {
	if err := h.sessions.RefreshAccessToken(c.Request.Context()); err != nil {
		response.Unauthorized(c, "session expired, please log in again")
		return
	}
	response.Success(c, http.StatusOK, "token refreshed", h.sessions.Current())
}

// RequestPasswordReset starts the password reset flow.
func (h *SessionHandler) RequestPasswordReset(c *gin.Context) {
	var req domain.PasswordResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	res := h.sessions.RequestPasswordReset(c.Request.Context(), req.Email)
	h.writeResult(c, res)
}

// ResetPassword completes the password reset flow.
func (h *SessionHandler) ResetPassword(c *gin.Context) {
	var req domain.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	res := h.sessions.ResetPassword(c.Request.Context(), req.Token, req.NewPassword)
	h.writeResult(c, res)
}

// UpdateProfile patches profile fields through the platform API.
func (h *SessionHandler) UpdateProfile(c *gin.Context) {
	var req domain.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	res := h.sessions.UpdateProfile(c.Request.Context(), &req)
	if res.Success {
		response.Success(c, http.StatusOK, res.Message, h.sessions.Current())
		return
	}
	response.Error(c, http.StatusBadRequest, res.Message, nil)
}

// DeleteAccount removes the account upstream and clears the session.
func (h *SessionHandler) DeleteAccount(c *gin.Context) {
	res := h.sessions.DeleteAccount(c.Request.Context())
	h.writeResult(c, res)
}

func (h *SessionHandler) writeResult(c *gin.Context, res domain.Result) {
	if res.Success {
		response.Success(c, http.StatusOK, res.Message, nil)
		return
	}
	response.Error(c, http.StatusBadRequest, res.Message, nil)
}
