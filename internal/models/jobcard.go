package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type JobcardStatus string

const (
	StatusOpen       JobcardStatus = "open"
	StatusInProgress JobcardStatus = "in_progress"
	StatusOnHold     JobcardStatus = "on_hold"
	StatusDone       JobcardStatus = "done"
	StatusCancelled  JobcardStatus = "cancelled"
)

func ParseJobcardStatus(s string) (JobcardStatus, error) {
	switch st := JobcardStatus(s); st {
	case StatusOpen, StatusInProgress, StatusOnHold, StatusDone, StatusCancelled:
		return st, nil
	}
	return "", fmt.Errorf("invalid status %q", s)
}

type JobcardTask struct {
	ID            uuid.UUID     `json:"id"`
	ProjectNumber string        `json:"project_number"`
	ItemSequence  int           `json:"item_sequence"`
	WbsNodeID     uuid.UUID     `json:"wbs_node_id"`
	Title         string        `json:"title"`
	Description   string        `json:"description"`
	Status        JobcardStatus `json:"status"`
	Slug          string        `json:"slug"`
	CreatedBy     uuid.UUID     `json:"created_by"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

func (j *JobcardTask) Prepare() {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	if j.Status == "" {
		j.Status = StatusOpen
	}
}

// JobcardFilter narrows a project's jobcard list. Zero values match all.
type JobcardFilter struct {
	ItemSequence *int
	WbsNodeID    *uuid.UUID
	Status       JobcardStatus
}
