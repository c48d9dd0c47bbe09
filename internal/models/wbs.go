package models

import "github.com/google/uuid"

type WbsNode struct {
	ID            uuid.UUID  `json:"id"`
	ProjectNumber string     `json:"project_number"`
	ItemSequence  int        `json:"item_sequence"`
	ParentID      *uuid.UUID `json:"parent_id,omitempty"`
	Code          string     `json:"code"`
	Name          string     `json:"name"`
	Description   string     `json:"description,omitempty"`
	SortOrder     int        `json:"sort_order"`
	Path          string     `json:"path,omitempty"`
}

func (n *WbsNode) Prepare() {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
}
