package routes

import (
	"github.com/gin-gonic/gin"

	"jobcard_portal/internal/handlers"
	"jobcard_portal/internal/middlewares"
)

type ProjectRoutes struct {
	projects     *handlers.ProjectHandler
	wbs          *handlers.WbsHandler
	jobcards     *handlers.JobcardHandler
	hse          *handlers.HseHandler
	authenticate gin.HandlerFunc
}

func NewProjectRoutes(
	projects *handlers.ProjectHandler,
	wbs *handlers.WbsHandler,
	jobcards *handlers.JobcardHandler,
	hse *handlers.HseHandler,
	authenticate gin.HandlerFunc,
) *ProjectRoutes {
	return &ProjectRoutes{projects: projects, wbs: wbs, jobcards: jobcards, hse: hse, authenticate: authenticate}
}

// Role checks per project happen in the services; only project creation is
// gated here since it has no project to resolve a role against.
func (r *ProjectRoutes) RegisterRoutes(router *gin.RouterGroup) {
	projects := router.Group("/projects")
	projects.Use(r.authenticate) // All project routes require authentication
	{
		projects.GET("", r.projects.ListProjects)
		projects.POST("", middlewares.RequireSuperuser, r.projects.CreateProject)
		projects.GET("/:number", r.projects.GetProject)
		projects.PATCH("/:number", r.projects.UpdateProject)
		projects.DELETE("/:number", r.projects.DeleteProject)

		projects.POST("/:number/items", r.projects.CreateItem)
		projects.PATCH("/:number/items/:seq", r.projects.UpdateItem)
		projects.DELETE("/:number/items/:seq", r.projects.DeleteItem)

		projects.GET("/:number/items/:seq/wbs", r.wbs.GetWbs)
		projects.POST("/:number/items/:seq/wbs", r.wbs.CreateNode)
		projects.PATCH("/:number/wbs/:node_id", r.wbs.UpdateNode)
		projects.DELETE("/:number/wbs/:node_id", r.wbs.DeleteNode)

		projects.GET("/:number/jobcards", r.jobcards.ListJobcards)
		projects.POST("/:number/jobcards", r.jobcards.CreateJobcard)
		projects.GET("/:number/jobcards/:slug", r.jobcards.GetJobcard)
		projects.PATCH("/:number/jobcards/:slug", r.jobcards.UpdateJobcard)
		projects.DELETE("/:number/jobcards/:slug", r.jobcards.DeleteJobcard)

		projects.GET("/:number/jobcards/:slug/hse", r.hse.GetChecklist)
		projects.PUT("/:number/jobcards/:slug/hse", r.hse.SaveAnswers)
	}
}
