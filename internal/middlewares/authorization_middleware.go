package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireSuperuser must run after Authenticate.
func RequireSuperuser(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "Unauthorized"})
		return
	}
	if !user.IsSuperuser {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"status": "error", "message": "Access denied. Superuser privileges required."})
		return
	}
	c.Next()
}
