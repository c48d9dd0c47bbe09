package middlewares

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"jobcard_portal/internal/models"
	"jobcard_portal/internal/responses"
	"jobcard_portal/internal/utils"
)

const (
	UserKey           = "user"
	SessionKey        = "sessionId"
	AccessTokenCookie = "access_token"
)

type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*models.User, *utils.Claims, error)
}

// Authenticate accepts "Authorization: Bearer <token>" or the access token
// cookie set by the SSO callback.
func Authenticate(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, ok := AccessToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "Missing access token"})
			return
		}

		user, claims, err := auth.Authenticate(c.Request.Context(), tokenStr)
		if err != nil {
			if responses.StatusFor(err) == http.StatusInternalServerError {
				_ = c.Error(err)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "Could not verify session"})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "Invalid or expired token"})
			return
		}

		c.Set(UserKey, user)
		c.Set(SessionKey, claims.ID)
		c.Next()
	}
}

// AccessToken reads the bearer header, falling back to the access token
// cookie. A malformed Authorization header is not retried as a cookie.
func AccessToken(c *gin.Context) (string, bool) {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			return "", false
		}
		return parts[1], true
	}
	if cookie, err := c.Cookie(AccessTokenCookie); err == nil && cookie != "" {
		return cookie, true
	}
	return "", false
}

// CurrentUser returns the user stored by Authenticate.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, exists := c.Get(UserKey)
	if !exists {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok && user != nil
}
