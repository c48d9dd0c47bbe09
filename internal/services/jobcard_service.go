package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"jobcard_portal/internal/apperr"
	"jobcard_portal/internal/models"
	"jobcard_portal/internal/utils"
	"jobcard_portal/internal/wbs"
)

const slugAttempts = 3

type JobcardService struct {
	jobcards JobcardStore
	nodes    WbsStore
	hse      HseStore
	wbs      *WbsService
	access   *AccessService
}

func NewJobcardService(jobcards JobcardStore, nodes WbsStore, hse HseStore, wbsService *WbsService, access *AccessService) *JobcardService {
	return &JobcardService{
		jobcards: jobcards,
		nodes:    nodes,
		hse:      hse,
		wbs:      wbsService,
		access:   access,
	}
}

type CreateJobcardRequest struct {
	WbsNodeID   uuid.UUID `json:"wbs_node_id" binding:"required"`
	Title       string    `json:"title" binding:"required,max=200"`
	Description string    `json:"description" binding:"max=5000"`
	Status      string    `json:"status"`
}

type UpdateJobcardRequest struct {
	WbsNodeID   *uuid.UUID `json:"wbs_node_id"`
	Title       *string    `json:"title" binding:"omitempty,max=200"`
	Description *string    `json:"description" binding:"omitempty,max=5000"`
	Status      *string    `json:"status"`
}

type JobcardEntry struct {
	models.JobcardTask
	WbsPath string `json:"wbs_path"`
}

type JobcardDetail struct {
	Jobcard models.JobcardTask `json:"jobcard"`
	WbsNode models.WbsNode     `json:"wbs_node"`
	Role    models.Role        `json:"role"`
	Hse     models.HseSummary  `json:"hse"`
}

func (s *JobcardService) List(ctx context.Context, user *models.User, number string, filter models.JobcardFilter) ([]JobcardEntry, error) {
	project, _, err := s.access.Require(ctx, user, number, models.RoleMember)
	if err != nil {
		return nil, err
	}

	tasks, err := s.jobcards.List(ctx, project.Number, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobcards: %w", err)
	}

	paths, err := s.pathsForItems(ctx, project.Number, tasks)
	if err != nil {
		return nil, err
	}

	entries := make([]JobcardEntry, 0, len(tasks))
	for _, t := range tasks {
		entries = append(entries, JobcardEntry{JobcardTask: t, WbsPath: paths[t.WbsNodeID]})
	}
	return entries, nil
}

// pathsForItems loads the WBS of every item the tasks touch, in parallel.
func (s *JobcardService) pathsForItems(ctx context.Context, projectNumber string, tasks []models.JobcardTask) (map[uuid.UUID]string, error) {
	seqs := make(map[int]bool)
	for _, t := range tasks {
		seqs[t.ItemSequence] = true
	}

	var mu sync.Mutex
	paths := make(map[uuid.UUID]string)

	g, gctx := errgroup.WithContext(ctx)
	for seq := range seqs {
		g.Go(func() error {
			nodes, err := s.nodes.ListByItem(gctx, projectNumber, seq)
			if err != nil {
				return fmt.Errorf("failed to list wbs nodes: %w", err)
			}
			itemPaths := wbs.Paths(nodes)

			mu.Lock()
			defer mu.Unlock()
			for id, p := range itemPaths {
				paths[id] = p
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}

func (s *JobcardService) Get(ctx context.Context, user *models.User, number, slug string) (*JobcardDetail, error) {
	project, role, err := s.access.Require(ctx, user, number, models.RoleMember)
	if err != nil {
		return nil, err
	}
	task, err := s.getBySlug(ctx, project.Number, slug)
	if err != nil {
		return nil, err
	}

	detail := &JobcardDetail{Jobcard: *task, Role: role}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		node, err := s.wbs.NodeInProject(gctx, task.WbsNodeID, project.Number)
		if err != nil {
			return err
		}
		if node.Path, err = s.wbs.PathOf(gctx, node); err != nil {
			return err
		}
		detail.WbsNode = *node
		return nil
	})
	g.Go(func() error {
		summary, err := hseSummary(gctx, s.hse, task.ID)
		if err != nil {
			return err
		}
		detail.Hse = summary
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return detail, nil
}

func (s *JobcardService) Create(ctx context.Context, user *models.User, number string, req CreateJobcardRequest) (*models.JobcardTask, error) {
	project, _, err := s.access.Require(ctx, user, number, models.RoleMember)
	if err != nil {
		return nil, err
	}
	node, err := s.wbs.NodeInProject(ctx, req.WbsNodeID, project.Number)
	if err != nil {
		return nil, err
	}

	task := &models.JobcardTask{
		ProjectNumber: project.Number,
		ItemSequence:  node.ItemSequence,
		WbsNodeID:     node.ID,
		Title:         strings.TrimSpace(req.Title),
		Description:   strings.TrimSpace(req.Description),
		CreatedBy:     user.ID,
	}
	if task.Title == "" {
		return nil, apperr.Validation("title must not be empty")
	}
	if req.Status != "" {
		if task.Status, err = models.ParseJobcardStatus(req.Status); err != nil {
			return nil, apperr.Validation("%v", err)
		}
	}

	// Two concurrent creates can pick the same slug; the unique index
	// rejects the loser, which then picks again.
	base := utils.Slugify(task.Title)
	for attempt := 1; ; attempt++ {
		if task.Slug, err = s.nextSlug(ctx, project.Number, base); err != nil {
			return nil, err
		}
		err = s.jobcards.Create(ctx, task)
		if err == nil {
			return task, nil
		}
		if !errors.Is(err, apperr.ErrDuplicate) || attempt == slugAttempts {
			return nil, fmt.Errorf("failed to create jobcard: %w", err)
		}
	}
}

func (s *JobcardService) nextSlug(ctx context.Context, projectNumber, base string) (string, error) {
	existing, err := s.jobcards.SlugsWithPrefix(ctx, projectNumber, base)
	if err != nil {
		return "", fmt.Errorf("failed to list slugs: %w", err)
	}
	taken := make(map[string]bool, len(existing))
	for _, slug := range existing {
		taken[slug] = true
	}
	return utils.UniqueSlug(base, func(s string) bool { return taken[s] }), nil
}

// Update edits a jobcard. The slug is kept when the title changes so links
// stay valid.
func (s *JobcardService) Update(ctx context.Context, user *models.User, number, slug string, req UpdateJobcardRequest) (*models.JobcardTask, error) {
	project, _, err := s.access.Require(ctx, user, number, models.RoleMember)
	if err != nil {
		return nil, err
	}
	task, err := s.getBySlug(ctx, project.Number, slug)
	if err != nil {
		return nil, err
	}

	if req.WbsNodeID != nil && *req.WbsNodeID != task.WbsNodeID {
		node, err := s.wbs.NodeInProject(ctx, *req.WbsNodeID, project.Number)
		if err != nil {
			return nil, err
		}
		task.WbsNodeID = node.ID
		task.ItemSequence = node.ItemSequence
	}
	if req.Title != nil {
		task.Title = strings.TrimSpace(*req.Title)
		if task.Title == "" {
			return nil, apperr.Validation("title must not be empty")
		}
	}
	if req.Description != nil {
		task.Description = strings.TrimSpace(*req.Description)
	}
	if req.Status != nil {
		if task.Status, err = models.ParseJobcardStatus(*req.Status); err != nil {
			return nil, apperr.Validation("%v", err)
		}
	}

	if err := s.jobcards.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to update jobcard: %w", err)
	}
	return task, nil
}

func (s *JobcardService) Delete(ctx context.Context, user *models.User, number, slug string) error {
	project, _, err := s.access.Require(ctx, user, number, models.RoleManager)
	if err != nil {
		return err
	}
	task, err := s.getBySlug(ctx, project.Number, slug)
	if err != nil {
		return err
	}
	if err := s.jobcards.Delete(ctx, task.ID); err != nil {
		return fmt.Errorf("failed to delete jobcard: %w", err)
	}
	return nil
}

func (s *JobcardService) getBySlug(ctx context.Context, projectNumber, slug string) (*models.JobcardTask, error) {
	task, err := s.jobcards.GetBySlug(ctx, projectNumber, slug)
	if err != nil {
		return nil, fmt.Errorf("failed to get jobcard: %w", err)
	}
	if task == nil {
		return nil, apperr.NotFound("jobcard %s", slug)
	}
	return task, nil
}
