package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"ether-wallet.backend/internal/domain/entities"
	domainerrors "ether-wallet.backend/internal/domain/errors"
)

const (
	// SessionCookieName is the cookie carrying the session id
	SessionCookieName = "session_id"
	// SessionHeader is the header fallback for non-browser clients
	SessionHeader = "X-Session-ID"
	// UserIDKey is the context key for user ID
	UserIDKey = "userId"
	// UserKey is the context key for the resolved user
	UserKey = "user"
	// SessionIDKey is the context key for the session id
	SessionIDKey = "sessionId"
)

// SessionAuthenticator resolves a session id to its user.
type SessionAuthenticator interface {
	Authenticate(ctx context.Context, sessionID string) (*entities.User, error)
}

// SessionID extracts the session id from the request, cookie first.
func SessionID(c *gin.Context) string {
	if cookie, err := c.Cookie(SessionCookieName); err == nil && cookie != "" {
		return cookie
	}
	return c.GetHeader(SessionHeader)
}

// AuthMiddleware resolves the request's session to a user and aborts
// unauthenticated requests.
func AuthMiddleware(auth SessionAuthenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := SessionID(c)
		if sessionID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Session is required",
			})
			return
		}

		user, err := auth.Authenticate(c.Request.Context(), sessionID)
		if err != nil {
			if errors.Is(err, domainerrors.ErrTokenExpired) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error": "Session has expired",
				})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid session",
			})
			return
		}

		c.Set(UserIDKey, user.ID)
		c.Set(UserKey, user)
		c.Set(SessionIDKey, sessionID)

		c.Next()
	}
}

// GetUserID gets the user ID from context
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return uuid.Nil, false
	}
	return userID.(uuid.UUID), true
}

// GetUser gets the resolved user from context
func GetUser(c *gin.Context) (*entities.User, bool) {
	user, exists := c.Get(UserKey)
	if !exists {
		return nil, false
	}
	return user.(*entities.User), true
}
