package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gaelxxl34/alsabil-service/internal/domain"
)

const (
	// SessionCookie is the HTTP-only credential cookie; RoleCookie is the
	// parallel readable cookie used for client-side role gating only. The
	// server never trusts RoleCookie.
	SessionCookie = "session"
	RoleCookie    = "user-role"

	identityKey = "identity"
)

// SessionVerifier resolves a raw session token into a caller identity.
type SessionVerifier interface {
	VerifySession(ctx context.Context, token string) (domain.Identity, error)
}

// Auth is the access guard's entry check: it requires a valid session
// cookie and attaches the resolved identity to the request context. Missing
// or invalid credentials end the request with a bare 401 envelope.
func Auth(verifier SessionVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookie)
		if err != nil || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "authentication required",
			})
			return
		}

		ident, err := verifier.VerifySession(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "authentication required",
			})
			return
		}

		c.Set(identityKey, ident)
		c.Next()
	}
}

// RequireRoles ends the request with 403 unless the caller holds one of the
// given roles. Must run after Auth.
func RequireRoles(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		ident, ok := IdentityFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "authentication required",
			})
			return
		}
		for _, r := range roles {
			if ident.Role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"success": false,
			"error":   "access denied",
		})
	}
}

// IdentityFrom returns the identity attached by Auth.
func IdentityFrom(c *gin.Context) (domain.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return domain.Identity{}, false
	}
	ident, ok := v.(domain.Identity)
	return ident, ok
}
