package services

import (
	"context"
	"fmt"

	"jobcard_portal/internal/apperr"
	"jobcard_portal/internal/models"
)

// AccessService answers "may this user do that on this project". It stands
// in for row-level security: every project-scoped service call goes
// through Require first.
type AccessService struct {
	projects ProjectStore
	members  MemberStore
}

func NewAccessService(projects ProjectStore, members MemberStore) *AccessService {
	return &AccessService{projects: projects, members: members}
}

// RoleFor returns the user's effective role. Superusers are admins
// everywhere.
func (s *AccessService) RoleFor(ctx context.Context, user *models.User, projectNumber string) (models.Role, error) {
	if user.IsSuperuser {
		return models.RoleAdmin, nil
	}
	role, err := s.members.GetRole(ctx, projectNumber, user.ID)
	if err != nil {
		return models.RoleNone, fmt.Errorf("failed to load role: %w", err)
	}
	return role, nil
}

// Require loads the project and checks the user holds at least min on it.
// Non-members get ErrNotFound so project numbers do not leak.
func (s *AccessService) Require(ctx context.Context, user *models.User, projectNumber string, min models.Role) (*models.Project, models.Role, error) {
	project, err := s.projects.GetByNumber(ctx, models.NormalizeProjectNumber(projectNumber))
	if err != nil {
		return nil, models.RoleNone, fmt.Errorf("failed to get project: %w", err)
	}
	if project == nil {
		return nil, models.RoleNone, apperr.NotFound("project %s", projectNumber)
	}

	role, err := s.RoleFor(ctx, user, project.Number)
	if err != nil {
		return nil, models.RoleNone, err
	}
	if role == models.RoleNone {
		return nil, models.RoleNone, apperr.NotFound("project %s", projectNumber)
	}
	if !role.AtLeast(min) {
		return nil, role, apperr.Forbidden("%s role required on project %s", min, project.Number)
	}
	return project, role, nil
}

func RequireSuperuser(user *models.User) error {
	if user == nil || !user.IsSuperuser {
		return apperr.Forbidden("superuser privileges required")
	}
	return nil
}
