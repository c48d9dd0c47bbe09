package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"jobcard_portal/internal/apperr"
	"jobcard_portal/internal/models"
	"jobcard_portal/internal/wbs"
)

type WbsService struct {
	items  ItemStore
	nodes  WbsStore
	access *AccessService
}

func NewWbsService(items ItemStore, nodes WbsStore, access *AccessService) *WbsService {
	return &WbsService{items: items, nodes: nodes, access: access}
}

type CreateNodeRequest struct {
	ParentID    *uuid.UUID `json:"parent_id"`
	Code        string     `json:"code" binding:"required,max=32"`
	Name        string     `json:"name" binding:"required,max=200"`
	Description string     `json:"description" binding:"max=2000"`
	SortOrder   int        `json:"sort_order"`
}

// UpdateNodeRequest changes only the fields that are set. MakeRoot moves
// the node to the top level; ParentID moves it under another node.
type UpdateNodeRequest struct {
	ParentID    *uuid.UUID `json:"parent_id"`
	MakeRoot    bool       `json:"make_root"`
	Code        *string    `json:"code" binding:"omitempty,max=32"`
	Name        *string    `json:"name" binding:"omitempty,max=200"`
	Description *string    `json:"description" binding:"omitempty,max=2000"`
	SortOrder   *int       `json:"sort_order"`
}

// WbsView is the WBS screen of one project item: the flat node list in
// tree order with paths, and the same nodes nested.
type WbsView struct {
	Project models.Project     `json:"project"`
	Item    models.ProjectItem `json:"item"`
	Role    models.Role        `json:"role"`
	Nodes   []models.WbsNode   `json:"nodes"`
	Tree    []*wbs.Tree        `json:"tree"`
}

func (s *WbsService) View(ctx context.Context, user *models.User, number string, itemSeq int) (*WbsView, error) {
	project, role, err := s.access.Require(ctx, user, number, models.RoleMember)
	if err != nil {
		return nil, err
	}
	item, err := s.requireItem(ctx, project.Number, itemSeq)
	if err != nil {
		return nil, err
	}

	nodes, err := s.nodes.ListByItem(ctx, project.Number, item.Sequence)
	if err != nil {
		return nil, fmt.Errorf("failed to list wbs nodes: %w", err)
	}

	return &WbsView{
		Project: *project,
		Item:    *item,
		Role:    role,
		Nodes:   wbs.Annotate(nodes),
		Tree:    wbs.Build(nodes),
	}, nil
}

func (s *WbsService) CreateNode(ctx context.Context, user *models.User, number string, itemSeq int, req CreateNodeRequest) (*models.WbsNode, error) {
	project, _, err := s.access.Require(ctx, user, number, models.RoleManager)
	if err != nil {
		return nil, err
	}
	item, err := s.requireItem(ctx, project.Number, itemSeq)
	if err != nil {
		return nil, err
	}

	node := &models.WbsNode{
		ProjectNumber: project.Number,
		ItemSequence:  item.Sequence,
		ParentID:      req.ParentID,
		Code:          strings.TrimSpace(req.Code),
		Name:          strings.TrimSpace(req.Name),
		Description:   strings.TrimSpace(req.Description),
		SortOrder:     req.SortOrder,
	}
	if err := validateCode(node.Code); err != nil {
		return nil, err
	}
	if node.ParentID != nil {
		if _, err := s.nodeInItem(ctx, *node.ParentID, project.Number, item.Sequence); err != nil {
			return nil, err
		}
	}

	if err := s.nodes.Create(ctx, node); err != nil {
		return nil, fmt.Errorf("failed to create wbs node: %w", err)
	}
	return s.withPath(ctx, node)
}

func (s *WbsService) UpdateNode(ctx context.Context, user *models.User, number string, nodeID uuid.UUID, req UpdateNodeRequest) (*models.WbsNode, error) {
	project, _, err := s.access.Require(ctx, user, number, models.RoleManager)
	if err != nil {
		return nil, err
	}
	node, err := s.NodeInProject(ctx, nodeID, project.Number)
	if err != nil {
		return nil, err
	}

	switch {
	case req.MakeRoot:
		node.ParentID = nil
	case req.ParentID != nil:
		if _, err := s.nodeInItem(ctx, *req.ParentID, project.Number, node.ItemSequence); err != nil {
			return nil, err
		}
		siblings, err := s.nodes.ListByItem(ctx, project.Number, node.ItemSequence)
		if err != nil {
			return nil, fmt.Errorf("failed to list wbs nodes: %w", err)
		}
		if wbs.IsDescendant(siblings, node.ID, *req.ParentID) {
			return nil, apperr.Validation("cannot move wbs node %s under itself", node.Code)
		}
		node.ParentID = req.ParentID
	}
	if req.Code != nil {
		node.Code = strings.TrimSpace(*req.Code)
		if err := validateCode(node.Code); err != nil {
			return nil, err
		}
	}
	if req.Name != nil {
		node.Name = strings.TrimSpace(*req.Name)
		if node.Name == "" {
			return nil, apperr.Validation("name must not be empty")
		}
	}
	if req.Description != nil {
		node.Description = strings.TrimSpace(*req.Description)
	}
	if req.SortOrder != nil {
		node.SortOrder = *req.SortOrder
	}

	if err := s.nodes.Update(ctx, node); err != nil {
		return nil, fmt.Errorf("failed to update wbs node: %w", err)
	}
	return s.withPath(ctx, node)
}

func (s *WbsService) DeleteNode(ctx context.Context, user *models.User, number string, nodeID uuid.UUID) error {
	project, _, err := s.access.Require(ctx, user, number, models.RoleManager)
	if err != nil {
		return err
	}
	if _, err := s.NodeInProject(ctx, nodeID, project.Number); err != nil {
		return err
	}
	if err := s.nodes.Delete(ctx, nodeID); err != nil {
		return fmt.Errorf("failed to delete wbs node: %w", err)
	}
	return nil
}

// NodeInProject loads a node and hides nodes of other projects.
func (s *WbsService) NodeInProject(ctx context.Context, nodeID uuid.UUID, projectNumber string) (*models.WbsNode, error) {
	node, err := s.nodes.Get(ctx, nodeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get wbs node: %w", err)
	}
	if node == nil || node.ProjectNumber != projectNumber {
		return nil, apperr.NotFound("wbs node %s", nodeID)
	}
	return node, nil
}

// PathOf returns the dotted path of one node within its item.
func (s *WbsService) PathOf(ctx context.Context, node *models.WbsNode) (string, error) {
	nodes, err := s.nodes.ListByItem(ctx, node.ProjectNumber, node.ItemSequence)
	if err != nil {
		return "", fmt.Errorf("failed to list wbs nodes: %w", err)
	}
	return wbs.Paths(nodes)[node.ID], nil
}

func (s *WbsService) nodeInItem(ctx context.Context, nodeID uuid.UUID, projectNumber string, itemSeq int) (*models.WbsNode, error) {
	node, err := s.NodeInProject(ctx, nodeID, projectNumber)
	if err != nil {
		return nil, err
	}
	if node.ItemSequence != itemSeq {
		return nil, apperr.Validation("wbs node %s belongs to item %d, not %d", node.Code, node.ItemSequence, itemSeq)
	}
	return node, nil
}

func (s *WbsService) requireItem(ctx context.Context, projectNumber string, seq int) (*models.ProjectItem, error) {
	item, err := s.items.Get(ctx, projectNumber, seq)
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	if item == nil {
		return nil, apperr.NotFound("item %s/%d", projectNumber, seq)
	}
	return item, nil
}

func (s *WbsService) withPath(ctx context.Context, node *models.WbsNode) (*models.WbsNode, error) {
	path, err := s.PathOf(ctx, node)
	if err != nil {
		return nil, err
	}
	node.Path = path
	return node, nil
}

func validateCode(code string) error {
	if code == "" {
		return apperr.Validation("code must not be empty")
	}
	if strings.Contains(code, wbs.Separator) {
		return apperr.Validation("code %q must not contain %q", code, wbs.Separator)
	}
	return nil
}
