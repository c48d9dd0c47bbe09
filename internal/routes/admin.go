package routes

import (
	"github.com/gin-gonic/gin"

	"jobcard_portal/internal/handlers"
	"jobcard_portal/internal/middlewares"
)

type AdminRoutes struct {
	admin        *handlers.AdminHandler
	hse          *handlers.HseHandler
	authenticate gin.HandlerFunc
}

func NewAdminRoutes(admin *handlers.AdminHandler, hse *handlers.HseHandler, authenticate gin.HandlerFunc) *AdminRoutes {
	return &AdminRoutes{admin: admin, hse: hse, authenticate: authenticate}
}

func (r *AdminRoutes) RegisterRoutes(router *gin.RouterGroup) {
	admin := router.Group("/admin")
	admin.Use(r.authenticate, middlewares.RequireSuperuser)
	{
		admin.GET("/users", r.admin.ListUsers)
		admin.GET("/memberships", r.admin.GetMemberships)
		admin.PUT("/memberships", r.admin.SetRole)

		admin.GET("/hse/topics", r.hse.ListTopics)
		admin.POST("/hse/topics", r.hse.CreateTopic)
		admin.POST("/hse/topics/:topic_id/questions", r.hse.CreateQuestion)
		admin.PATCH("/hse/questions/:question_id", r.hse.UpdateQuestion)
	}
}
