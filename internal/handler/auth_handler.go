package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gaelxxl34/alsabil-service/internal/domain"
	"github.com/gaelxxl34/alsabil-service/internal/service"
	"github.com/gaelxxl34/alsabil-service/pkg/middleware"
)

type AuthHandler struct {
	auth         *service.AuthService
	secureCookie bool
	logger       *zap.Logger
}

func NewAuthHandler(auth *service.AuthService, secureCookie bool, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		auth:         auth,
		secureCookie: secureCookie,
		logger:       logger,
	}
}

// Login exchanges email/password for the session cookie pair. The session
// cookie is HTTP-only and SameSite=Strict; the role cookie is readable by
// the client for UI gating and carries no authority.
func (h *AuthHandler) Login(c *gin.Context) {
	var req domain.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "email and password are required")
		return
	}

	user, token, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	maxAge := int(h.auth.SessionTTL().Seconds())
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.SessionCookie, token, maxAge, "/", "", h.secureCookie, true)
	c.SetCookie(middleware.RoleCookie, string(user.Role), maxAge, "/", "", h.secureCookie, false)

	respondOK(c, http.StatusOK, gin.H{
		"user": user,
		"role": user.Role,
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", h.secureCookie, true)
	c.SetCookie(middleware.RoleCookie, "", -1, "/", "", h.secureCookie, false)
	respondOK(c, http.StatusOK, nil)
}

// Me returns the caller's user document.
func (h *AuthHandler) Me(c *gin.Context) {
	ident, ok := identity(c)
	if !ok {
		return
	}

	user, err := h.auth.GetUser(c.Request.Context(), ident.UserID)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	respondOK(c, http.StatusOK, user)
}
