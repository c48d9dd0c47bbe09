package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"jobcard_portal/internal/apperr"
	"jobcard_portal/internal/middlewares"
	"jobcard_portal/internal/models"
)

func currentUser(c *gin.Context) (*models.User, error) {
	user, ok := middlewares.CurrentUser(c)
	if !ok {
		return nil, apperr.Unauthorized("no signed-in user")
	}
	return user, nil
}

func itemParam(c *gin.Context) (int, error) {
	seq, err := strconv.Atoi(c.Param("seq"))
	if err != nil || seq <= 0 {
		return 0, apperr.Validation("invalid item sequence %q", c.Param("seq"))
	}
	return seq, nil
}

func uuidParam(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, apperr.Validation("invalid %s %q", name, c.Param(name))
	}
	return id, nil
}
