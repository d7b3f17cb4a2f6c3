package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"screening-backend/internal/shared/auth"
	"screening-backend/internal/shared/server/respond"
	"screening-backend/internal/shared/telemetry"
)

const (
	sessionIDKey = "sessionId"

	// SessionCookieName carries the signed session token for browser clients.
	SessionCookieName = "screening_session"
	// SessionHeader carries the signed session token for API clients.
	SessionHeader = "X-Session-Token"
)

// Session resolves the caller's screening session from a signed token, issuing a new
// session when the token is missing, expired or forged.
func Session(signer *auth.Signer, secureCookie bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}

		token := strings.TrimSpace(c.GetHeader(SessionHeader))
		if token == "" {
			if cookie, err := c.Cookie(SessionCookieName); err == nil {
				token = strings.TrimSpace(cookie)
			}
		}

		if token != "" {
			claims, err := signer.Verify(token)
			if err == nil {
				c.Set(sessionIDKey, claims.Sub)
				c.Next()
				return
			}
			telemetry.Debug("session.token_rejected", map[string]any{
				"request_id": RequestIDFromContext(c),
				"error":      err,
			})
		}

		sessionID := uuid.NewString()
		issued, err := signer.Sign(sessionID)
		if err != nil {
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to start session", nil)
			return
		}
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(SessionCookieName, issued, int(signer.TTL().Seconds()), "/", "", secureCookie, true)
		c.Header(SessionHeader, issued)
		c.Set(sessionIDKey, sessionID)
		c.Next()
	}
}

// SessionIDFromContext fetches the session ID set by the session middleware.
func SessionIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(sessionIDKey)
	if id, ok := val.(string); ok {
		return id
	}
	return ""
}
