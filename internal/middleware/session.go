package middleware

import (
	"net/http" // HTTP status codes

	"storefront/internal/session" // Session boundary

	"github.com/gin-gonic/gin" // Gin web framework
)

// CtxSessionKey is the gin context key holding the current session.Session
const CtxSessionKey = "session"

// SessionMiddleware resolves the session cookie and stores the session in the context.
// Requests without a live session pass through unauthenticated.
func SessionMiddleware(m *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if sess, ok := m.Current(c); ok {
			c.Set(CtxSessionKey, sess) // Store session in context
		}
		c.Next() // Proceed to the next handler
	}
}

// RequireSession aborts with 401 unless SessionMiddleware found a live session
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentSession(c); !ok {
			// No session, abort with unauthorized status
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}
		c.Next()
	}
}

// CurrentSession returns the session stored by SessionMiddleware
func CurrentSession(c *gin.Context) (session.Session, bool) {
	v, exists := c.Get(CtxSessionKey)
	if !exists {
		return session.Session{}, false
	}
	sess, ok := v.(session.Session)
	return sess, ok
}
