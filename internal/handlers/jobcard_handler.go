package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"jobcard_portal/internal/apperr"
	"jobcard_portal/internal/models"
	"jobcard_portal/internal/responses"
	"jobcard_portal/internal/services"
)

type JobcardHandler struct {
	jobcardService *services.JobcardService
}

func NewJobcardHandler(jobcardService *services.JobcardService) *JobcardHandler {
	return &JobcardHandler{jobcardService: jobcardService}
}

// ListJobcards handles GET /api/v1/projects/:number/jobcards?item=&wbs_node=&status=
func (h *JobcardHandler) ListJobcards(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		responses.Error(c, err, "Unauthorized")
		return
	}
	filter, err := jobcardFilter(c)
	if err != nil {
		responses.Error(c, err, "Invalid filter")
		return
	}

	jobcards, err := h.jobcardService.List(c.Request.Context(), user, c.Param("number"), filter)
	if err != nil {
		responses.Error(c, err, "Failed to retrieve jobcards")
		return
	}
	responses.Success(c, http.StatusOK, jobcards, "Jobcards retrieved successfully")
}

func jobcardFilter(c *gin.Context) (models.JobcardFilter, error) {
	var filter models.JobcardFilter
	if v := c.Query("item"); v != "" {
		seq, err := strconv.Atoi(v)
		if err != nil {
			return filter, apperr.Validation("invalid item %q", v)
		}
		filter.ItemSequence = &seq
	}
	if v := c.Query("wbs_node"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return filter, apperr.Validation("invalid wbs_node %q", v)
		}
		filter.WbsNodeID = &id
	}
	if v := c.Query("status"); v != "" {
		status, err := models.ParseJobcardStatus(v)
		if err != nil {
			return filter, apperr.Validation("%v", err)
		}
		filter.Status = status
	}
	return filter, nil
}

// GetJobcard handles GET /api/v1/projects/:number/jobcards/:slug
func (h *JobcardHandler) GetJobcard(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		responses.Error(c, err, "Unauthorized")
		return
	}

	detail, err := h.jobcardService.Get(c.Request.Context(), user, c.Param("number"), c.Param("slug"))
	if err != nil {
		responses.Error(c, err, "Jobcard not found or access denied")
		return
	}
	responses.Success(c, http.StatusOK, detail, "Jobcard retrieved successfully")
}

// CreateJobcard handles POST /api/v1/projects/:number/jobcards
func (h *JobcardHandler) CreateJobcard(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		responses.Error(c, err, "Unauthorized")
		return
	}

	var req services.CreateJobcardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	jobcard, err := h.jobcardService.Create(c.Request.Context(), user, c.Param("number"), req)
	if err != nil {
		responses.Error(c, err, "Failed to create jobcard")
		return
	}
	responses.Success(c, http.StatusCreated, jobcard, "Jobcard created successfully")
}

// UpdateJobcard handles PATCH /api/v1/projects/:number/jobcards/:slug
func (h *JobcardHandler) UpdateJobcard(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		responses.Error(c, err, "Unauthorized")
		return
	}

	var req services.UpdateJobcardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	jobcard, err := h.jobcardService.Update(c.Request.Context(), user, c.Param("number"), c.Param("slug"), req)
	if err != nil {
		responses.Error(c, err, "Failed to update jobcard")
		return
	}
	responses.Success(c, http.StatusOK, jobcard, "Jobcard updated successfully")
}

// DeleteJobcard handles DELETE /api/v1/projects/:number/jobcards/:slug
func (h *JobcardHandler) DeleteJobcard(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		responses.Error(c, err, "Unauthorized")
		return
	}

	if err := h.jobcardService.Delete(c.Request.Context(), user, c.Param("number"), c.Param("slug")); err != nil {
		responses.Error(c, err, "Failed to delete jobcard")
		return
	}
	responses.Success(c, http.StatusOK, nil, "Jobcard deleted successfully")
}
