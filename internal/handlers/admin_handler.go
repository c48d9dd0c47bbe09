package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"jobcard_portal/internal/responses"
	"jobcard_portal/internal/services"
)

type AdminHandler struct {
	adminService *services.AdminService
}

func NewAdminHandler(adminService *services.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

// ListUsers handles GET /api/v1/admin/users
func (h *AdminHandler) ListUsers(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		responses.Error(c, err, "Unauthorized")
		return
	}

	users, err := h.adminService.ListUsers(c.Request.Context(), user)
	if err != nil {
		responses.Error(c, err, "Failed to retrieve users")
		return
	}
	responses.Success(c, http.StatusOK, users, "Users retrieved successfully")
}

// GetMemberships handles GET /api/v1/admin/memberships
func (h *AdminHandler) GetMemberships(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		responses.Error(c, err, "Unauthorized")
		return
	}

	matrix, err := h.adminService.Memberships(c.Request.Context(), user)
	if err != nil {
		responses.Error(c, err, "Failed to retrieve memberships")
		return
	}
	responses.Success(c, http.StatusOK, matrix, "Memberships retrieved successfully")
}

// SetRole handles PUT /api/v1/admin/memberships
func (h *AdminHandler) SetRole(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		responses.Error(c, err, "Unauthorized")
		return
	}

	var req services.SetRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	member, err := h.adminService.SetRole(c.Request.Context(), user, req)
	if err != nil {
		responses.Error(c, err, "Failed to update membership")
		return
	}
	responses.Success(c, http.StatusOK, member, "Membership updated successfully")
}
