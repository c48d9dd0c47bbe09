package routes

import (
	"github.com/gin-gonic/gin"

	"jobcard_portal/internal/handlers"
)

// AuthRoutes are all public: logout resolves its session from the tokens it
// is sent rather than from the authenticate middleware.
type AuthRoutes struct {
	handler *handlers.SSOHandler
}

func NewAuthRoutes(handler *handlers.SSOHandler) *AuthRoutes {
	return &AuthRoutes{handler: handler}
}

func (r *AuthRoutes) RegisterRoutes(router *gin.RouterGroup) {
	auth := router.Group("/auth")
	{
		auth.GET("/sso/login", r.handler.Login)
		auth.GET("/sso/callback", r.handler.Callback)
		auth.POST("/refresh", r.handler.Refresh)
		auth.POST("/logout", r.handler.Logout)
	}
}
