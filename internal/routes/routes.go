package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"jobcard_portal/internal/handlers"
	"jobcard_portal/internal/middlewares"
)

// Handlers groups everything the router dispatches to.
type Handlers struct {
	SSO     *handlers.SSOHandler
	User    *handlers.UserHandler
	Project *handlers.ProjectHandler
	Wbs     *handlers.WbsHandler
	Jobcard *handlers.JobcardHandler
	Hse     *handlers.HseHandler
	Admin   *handlers.AdminHandler
}

func RegisterRoutes(router *gin.Engine, auth middlewares.Authenticator, h Handlers) {
	api := router.Group("/api/v1")
	authenticate := middlewares.Authenticate(auth)

	NewAuthRoutes(h.SSO).RegisterRoutes(api)
	NewUserRoutes(h.User, authenticate).RegisterRoutes(api)
	NewProjectRoutes(h.Project, h.Wbs, h.Jobcard, h.Hse, authenticate).RegisterRoutes(api)
	NewAdminRoutes(h.Admin, h.Hse, authenticate).RegisterRoutes(api)

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})
}
