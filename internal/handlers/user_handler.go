package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"jobcard_portal/internal/responses"
)

type UserHandler struct{}

func NewUserHandler() *UserHandler {
	return &UserHandler{}
}

// GetMe handles GET /api/v1/users/me
func (h *UserHandler) GetMe(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		responses.Error(c, err, "Unauthorized")
		return
	}
	responses.Success(c, http.StatusOK, user, "User retrieved successfully")
}
