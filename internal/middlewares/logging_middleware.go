package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"jobcard_portal/internal/logging"
)

// RequestLogger writes one structured line per request.
func RequestLogger(c *gin.Context) {
	start := time.Now()
	c.Next()

	fields := logrus.Fields{
		"method":   c.Request.Method,
		"path":     c.FullPath(),
		"status":   c.Writer.Status(),
		"duration": time.Since(start).String(),
		"ip":       c.ClientIP(),
	}
	if user, ok := CurrentUser(c); ok {
		fields["user"] = user.Email
	}

	entry := logging.Logger.WithFields(fields)
	switch status := c.Writer.Status(); {
	case status >= 500:
		entry.WithField("errors", c.Errors.String()).Error("request failed")
	case status >= 400:
		entry.Warn("request rejected")
	default:
		entry.Info("request handled")
	}
}
