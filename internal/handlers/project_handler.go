package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"jobcard_portal/internal/responses"
	"jobcard_portal/internal/services"
)

type ProjectHandler struct {
	projectService *services.ProjectService
}

func NewProjectHandler(projectService *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectService: projectService}
}

// ListProjects handles GET /api/v1/projects
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		responses.Error(c, err, "Unauthorized")
		return
	}

	projects, err := h.projectService.ListForUser(c.Request.Context(), user)
	if err != nil {
		responses.Error(c, err, "Failed to retrieve projects")
		return
	}
	responses.Success(c, http.StatusOK, projects, "Projects retrieved successfully")
}

// GetProject handles GET /api/v1/projects/:number
func (h *ProjectHandler) GetProject(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		responses.Error(c, err, "Unauthorized")
		return
	}

	overview, err := h.projectService.Overview(c.Request.Context(), user, c.Param("number"))
	if err != nil {
		responses.Error(c, err, "Project not found or access denied")
		return
	}
	responses.Success(c, http.StatusOK, overview, "Project retrieved successfully")
}

// CreateProject handles POST /api/v1/projects
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		responses.Error(c, err, "Unauthorized")
		return
	}

	var req services.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	project, err := h.projectService.Create(c.Request.Context(), user, req)
	if err != nil {
		responses.Error(c, err, "Failed to create project")
		return
	}
	responses.Success(c, http.StatusCreated, project, "Project created successfully")
}

// UpdateProject handles PATCH /api/v1/projects/:number
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		responses.Error(c, err, "Unauthorized")
		return
	}

	var req services.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	project, err := h.projectService.Update(c.Request.Context(), user, c.Param("number"), req)
	if err != nil {
		responses.Error(c, err, "Failed to update project")
		return
	}
	responses.Success(c, http.StatusOK, project, "Project updated successfully")
}

// DeleteProject handles DELETE /api/v1/projects/:number
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		responses.Error(c, err, "Unauthorized")
		return
	}

	if err := h.projectService.Delete(c.Request.Context(), user, c.Param("number")); err != nil {
		responses.Error(c, err, "Failed to delete project")
		return
	}
	responses.Success(c, http.StatusOK, nil, "Project deleted successfully")
}

// CreateItem handles POST /api/v1/projects/:number/items
func (h *ProjectHandler) CreateItem(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		responses.Error(c, err, "Unauthorized")
		return
	}

	var req services.ItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	item, err := h.projectService.CreateItem(c.Request.Context(), user, c.Param("number"), req)
	if err != nil {
		responses.Error(c, err, "Failed to create item")
		return
	}
	responses.Success(c, http.StatusCreated, item, "Item created successfully")
}

// UpdateItem handles PATCH /api/v1/projects/:number/items/:seq
func (h *ProjectHandler) UpdateItem(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		responses.Error(c, err, "Unauthorized")
		return
	}
	seq, err := itemParam(c)
	if err != nil {
		responses.Error(c, err, "Invalid item")
		return
	}

	var req services.ItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	item, err := h.projectService.UpdateItem(c.Request.Context(), user, c.Param("number"), seq, req)
	if err != nil {
		responses.Error(c, err, "Failed to update item")
		return
	}
	responses.Success(c, http.StatusOK, item, "Item updated successfully")
}

// DeleteItem handles DELETE /api/v1/projects/:number/items/:seq
func (h *ProjectHandler) DeleteItem(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		responses.Error(c, err, "Unauthorized")
		return
	}
	seq, err := itemParam(c)
	if err != nil {
		responses.Error(c, err, "Invalid item")
		return
	}

	if err := h.projectService.DeleteItem(c.Request.Context(), user, c.Param("number"), seq); err != nil {
		responses.Error(c, err, "Failed to delete item")
		return
	}
	responses.Success(c, http.StatusOK, nil, "Item deleted successfully")
}
