package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/liqd/a4-roots/internal/pkg/jwt"
	"github.com/liqd/a4-roots/internal/pkg/response"
)

const (
	ContextKeyUserID     = "user_id"
	ContextKeySessionKey = "session_key"

	sessionCookieName = "a4_session"
	sessionCookieTTL  = 60 * 60 * 24 * 30 // seconds
)

// Auth returns a middleware that enforces JWT authentication.
func Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := jwt.Parse(extractToken(c))
		if err != nil {
			response.Unauthorized(c)
			return
		}
		c.Set(ContextKeyUserID, claims.UserID)
		c.Next()
	}
}

// OptionalAuth sets the user ID if a valid token is present, but does not
// block the request.
func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, err := jwt.Parse(extractToken(c)); err == nil && claims.UserID != "" {
			c.Set(ContextKeyUserID, claims.UserID)
		}
		c.Next()
	}
}

// SessionKey ensures anonymous requests carry a stable session key cookie so
// summary feedback can be scoped without an account.
func SessionKey() gin.HandlerFunc {
	return func(c *gin.Context) {
		key, err := c.Cookie(sessionCookieName)
		if err != nil || key == "" {
			key = strings.ReplaceAll(uuid.New().String(), "-", "")
			c.SetCookie(sessionCookieName, key, sessionCookieTTL, "/", "", false, true)
		}
		c.Set(ContextKeySessionKey, key)
		c.Next()
	}
}

// CurrentUserID extracts the authenticated user ID from context.
func CurrentUserID(c *gin.Context) string {
	v, _ := c.Get(ContextKeyUserID)
	id, _ := v.(string)
	return id
}

// CurrentSessionKey extracts the anonymous session key from context.
func CurrentSessionKey(c *gin.Context) string {
	v, _ := c.Get(ContextKeySessionKey)
	key, _ := v.(string)
	return key
}

// IsAuthenticated returns true if the request has a valid auth token.
func IsAuthenticated(c *gin.Context) bool {
	return CurrentUserID(c) != ""
}

func extractToken(c *gin.Context) string {
	token := strings.TrimSpace(c.GetHeader("Authorization"))
	if token == "" {
		token = strings.TrimSpace(c.Query("token"))
	}
	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	return token
}
