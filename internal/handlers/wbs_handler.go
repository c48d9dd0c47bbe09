package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"jobcard_portal/internal/responses"
	"jobcard_portal/internal/services"
)

type WbsHandler struct {
	wbsService *services.WbsService
}

func NewWbsHandler(wbsService *services.WbsService) *WbsHandler {
	return &WbsHandler{wbsService: wbsService}
}

// GetWbs handles GET /api/v1/projects/:number/items/:seq/wbs
func (h *WbsHandler) GetWbs(c *gin.Context) {
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

	view, err := h.wbsService.View(c.Request.Context(), user, c.Param("number"), seq)
	if err != nil {
		responses.Error(c, err, "Failed to retrieve work breakdown")
		return
	}
	responses.Success(c, http.StatusOK, view, "Work breakdown retrieved successfully")
}

// CreateNode handles POST /api/v1/projects/:number/items/:seq/wbs
func (h *WbsHandler) CreateNode(c *gin.Context) {
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

	var req services.CreateNodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	node, err := h.wbsService.CreateNode(c.Request.Context(), user, c.Param("number"), seq, req)
	if err != nil {
		responses.Error(c, err, "Failed to create WBS node")
		return
	}
	responses.Success(c, http.StatusCreated, node, "WBS node created successfully")
}

// UpdateNode handles PATCH /api/v1/projects/:number/wbs/:node_id
func (h *WbsHandler) UpdateNode(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		responses.Error(c, err, "Unauthorized")
		return
	}
	nodeID, err := uuidParam(c, "node_id")
	if err != nil {
		responses.Error(c, err, "Invalid WBS node")
		return
	}

	var req services.UpdateNodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	node, err := h.wbsService.UpdateNode(c.Request.Context(), user, c.Param("number"), nodeID, req)
	if err != nil {
		responses.Error(c, err, "Failed to update WBS node")
		return
	}
	responses.Success(c, http.StatusOK, node, "WBS node updated successfully")
}

// DeleteNode handles DELETE /api/v1/projects/:number/wbs/:node_id
func (h *WbsHandler) DeleteNode(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		responses.Error(c, err, "Unauthorized")
		return
	}
	nodeID, err := uuidParam(c, "node_id")
	if err != nil {
		responses.Error(c, err, "Invalid WBS node")
		return
	}

	if err := h.wbsService.DeleteNode(c.Request.Context(), user, c.Param("number"), nodeID); err != nil {
		responses.Error(c, err, "Failed to delete WBS node")
		return
	}
	responses.Success(c, http.StatusOK, nil, "WBS node deleted successfully")
}
