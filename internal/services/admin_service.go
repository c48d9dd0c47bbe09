package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"jobcard_portal/internal/apperr"
	"jobcard_portal/internal/models"
)

// AdminService backs the superuser membership screen.
type AdminService struct {
	users    UserStore
	projects ProjectStore
	members  MemberStore
}

func NewAdminService(users UserStore, projects ProjectStore, members MemberStore) *AdminService {
	return &AdminService{users: users, projects: projects, members: members}
}

type SetRoleRequest struct {
	ProjectNumber string    `json:"project_number" binding:"required"`
	UserID        uuid.UUID `json:"user_id" binding:"required"`
	Role          string    `json:"role" binding:"required"`
}

type MembershipMatrix struct {
	Users    []models.User          `json:"users"`
	Projects []models.Project       `json:"projects"`
	Members  []models.ProjectMember `json:"members"`
}

func (s *AdminService) Memberships(ctx context.Context, actor *models.User) (*MembershipMatrix, error) {
	if err := RequireSuperuser(actor); err != nil {
		return nil, err
	}

	matrix := &MembershipMatrix{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		users, err := s.users.List(gctx)
		if err != nil {
			return fmt.Errorf("failed to list users: %w", err)
		}
		matrix.Users = users
		return nil
	})
	g.Go(func() error {
		projects, err := s.projects.List(gctx)
		if err != nil {
			return fmt.Errorf("failed to list projects: %w", err)
		}
		matrix.Projects = projects
		return nil
	})
	g.Go(func() error {
		members, err := s.members.ListAll(gctx)
		if err != nil {
			return fmt.Errorf("failed to list members: %w", err)
		}
		matrix.Members = members
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if matrix.Users == nil {
		matrix.Users = []models.User{}
	}
	if matrix.Projects == nil {
		matrix.Projects = []models.Project{}
	}
	if matrix.Members == nil {
		matrix.Members = []models.ProjectMember{}
	}
	return matrix, nil
}

// SetRole grants role on a project. RoleNone removes the membership.
func (s *AdminService) SetRole(ctx context.Context, actor *models.User, req SetRoleRequest) (*models.ProjectMember, error) {
	if err := RequireSuperuser(actor); err != nil {
		return nil, err
	}

	role, err := models.ParseRole(req.Role)
	if err != nil {
		return nil, apperr.Validation("%v", err)
	}

	number := models.NormalizeProjectNumber(req.ProjectNumber)
	project, err := s.projects.GetByNumber(ctx, number)
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	if project == nil {
		return nil, apperr.NotFound("project %s", number)
	}
	user, err := s.users.FindByID(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, apperr.NotFound("user %s", req.UserID)
	}

	member := models.ProjectMember{
		ProjectNumber: project.Number,
		UserID:        user.ID,
		Role:          role,
		Email:         user.Email,
		DisplayName:   user.DisplayName,
	}
	if role == models.RoleNone {
		if err := s.members.Delete(ctx, project.Number, user.ID); err != nil {
			return nil, fmt.Errorf("failed to remove member: %w", err)
		}
		return &member, nil
	}
	if err := s.members.Upsert(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to save member: %w", err)
	}
	return &member, nil
}

func (s *AdminService) ListUsers(ctx context.Context, actor *models.User) ([]models.User, error) {
	if err := RequireSuperuser(actor); err != nil {
		return nil, err
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}

// SetSuperuser is used by the CLI, which runs without a signed-in actor.
// The user must have signed in at least once.
func (s *AdminService) SetSuperuser(ctx context.Context, email string, superuser bool) error {
	if err := s.users.SetSuperuser(ctx, email, superuser); err != nil {
		return fmt.Errorf("failed to update %s: %w", email, err)
	}
	return nil
}
