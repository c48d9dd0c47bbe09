package services

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"jobcard_portal/internal/apperr"
	"jobcard_portal/internal/models"
)

type ProjectService struct {
	projects ProjectStore
	items    ItemStore
	members  MemberStore
	jobcards JobcardStore
	access   *AccessService
}

func NewProjectService(
	projects ProjectStore,
	items ItemStore,
	members MemberStore,
	jobcards JobcardStore,
	access *AccessService,
) *ProjectService {
	return &ProjectService{
		projects: projects,
		items:    items,
		members:  members,
		jobcards: jobcards,
		access:   access,
	}
}

type CreateProjectRequest struct {
	Number      string `json:"number" binding:"required,max=32"`
	Description string `json:"description" binding:"max=500"`
}

type UpdateProjectRequest struct {
	Description *string `json:"description" binding:"omitempty,max=500"`
}

type ItemRequest struct {
	Sequence    int    `json:"sequence" binding:"min=0"`
	Description string `json:"description" binding:"max=500"`
}

// ProjectOverview is what the project screen loads in one round trip.
type ProjectOverview struct {
	Project          models.Project               `json:"project"`
	Role             models.Role                  `json:"role"`
	Items            []models.ProjectItem         `json:"items"`
	Members          []models.ProjectMember       `json:"members"`
	JobcardsByStatus map[models.JobcardStatus]int `json:"jobcards_by_status"`
}

// ListForUser returns the caller's projects; superusers see all of them as
// admin.
func (s *ProjectService) ListForUser(ctx context.Context, user *models.User) ([]models.ProjectSummary, error) {
	if !user.IsSuperuser {
		projects, err := s.projects.ListForUser(ctx, user.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list projects: %w", err)
		}
		if projects == nil {
			projects = []models.ProjectSummary{}
		}
		return projects, nil
	}

	all, err := s.projects.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	summaries := make([]models.ProjectSummary, 0, len(all))
	for _, p := range all {
		summaries = append(summaries, models.ProjectSummary{Project: p, Role: models.RoleAdmin})
	}
	return summaries, nil
}

func (s *ProjectService) Overview(ctx context.Context, user *models.User, number string) (*ProjectOverview, error) {
	project, role, err := s.access.Require(ctx, user, number, models.RoleMember)
	if err != nil {
		return nil, err
	}

	overview := &ProjectOverview{Project: *project, Role: role}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		items, err := s.items.ListByProject(gctx, project.Number)
		if err != nil {
			return fmt.Errorf("failed to list items: %w", err)
		}
		overview.Items = items
		return nil
	})
	g.Go(func() error {
		members, err := s.members.ListByProject(gctx, project.Number)
		if err != nil {
			return fmt.Errorf("failed to list members: %w", err)
		}
		overview.Members = members
		return nil
	})
	g.Go(func() error {
		counts, err := s.jobcards.CountByStatus(gctx, project.Number)
		if err != nil {
			return fmt.Errorf("failed to count jobcards: %w", err)
		}
		overview.JobcardsByStatus = counts
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if overview.Items == nil {
		overview.Items = []models.ProjectItem{}
	}
	if overview.Members == nil {
		overview.Members = []models.ProjectMember{}
	}
	return overview, nil
}

func (s *ProjectService) Create(ctx context.Context, user *models.User, req CreateProjectRequest) (*models.Project, error) {
	if err := RequireSuperuser(user); err != nil {
		return nil, err
	}

	project := &models.Project{Number: req.Number, Description: req.Description}
	project.Prepare()
	if project.Number == "" || strings.ContainsAny(project.Number, "/ ") {
		return nil, apperr.Validation("project number %q is not valid", req.Number)
	}

	if err := s.projects.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to save project: %w", err)
	}
	return project, nil
}

func (s *ProjectService) Update(ctx context.Context, user *models.User, number string, req UpdateProjectRequest) (*models.Project, error) {
	project, _, err := s.access.Require(ctx, user, number, models.RoleAdmin)
	if err != nil {
		return nil, err
	}

	if req.Description != nil {
		project.Description = strings.TrimSpace(*req.Description)
	}
	if err := s.projects.Update(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}
	return project, nil
}

func (s *ProjectService) Delete(ctx context.Context, user *models.User, number string) error {
	if err := RequireSuperuser(user); err != nil {
		return err
	}
	if err := s.projects.Delete(ctx, models.NormalizeProjectNumber(number)); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return nil
}

func (s *ProjectService) CreateItem(ctx context.Context, user *models.User, number string, req ItemRequest) (*models.ProjectItem, error) {
	project, _, err := s.access.Require(ctx, user, number, models.RoleManager)
	if err != nil {
		return nil, err
	}

	item := &models.ProjectItem{
		ProjectNumber: project.Number,
		Sequence:      req.Sequence,
		Description:   strings.TrimSpace(req.Description),
	}
	if err := s.items.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to create item: %w", err)
	}
	return item, nil
}

func (s *ProjectService) UpdateItem(ctx context.Context, user *models.User, number string, sequence int, req ItemRequest) (*models.ProjectItem, error) {
	project, _, err := s.access.Require(ctx, user, number, models.RoleManager)
	if err != nil {
		return nil, err
	}

	item := &models.ProjectItem{
		ProjectNumber: project.Number,
		Sequence:      sequence,
		Description:   strings.TrimSpace(req.Description),
	}
	if err := s.items.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to update item: %w", err)
	}
	return item, nil
}

func (s *ProjectService) DeleteItem(ctx context.Context, user *models.User, number string, sequence int) error {
	project, _, err := s.access.Require(ctx, user, number, models.RoleAdmin)
	if err != nil {
		return err
	}
	if err := s.items.Delete(ctx, project.Number, sequence); err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	return nil
}
