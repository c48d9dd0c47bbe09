package routes

import (
	"github.com/gin-gonic/gin"

	"jobcard_portal/internal/handlers"
)

type UserRoutes struct {
	handler      *handlers.UserHandler
	authenticate gin.HandlerFunc
}

func NewUserRoutes(handler *handlers.UserHandler, authenticate gin.HandlerFunc) *UserRoutes {
	return &UserRoutes{handler: handler, authenticate: authenticate}
}

func (r *UserRoutes) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/users")
	users.Use(r.authenticate)
	{
		users.GET("/me", r.handler.GetMe)
	}
}
