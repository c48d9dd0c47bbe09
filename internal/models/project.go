package models

import (
	"strings"
	"time"
)

type Project struct {
	Number      string    `json:"number"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

func (p *Project) Prepare() {
	p.Number = NormalizeProjectNumber(p.Number)
	p.Description = strings.TrimSpace(p.Description)
}

// ProjectSummary is a project as seen by one user.
type ProjectSummary struct {
	Project
	Role Role `json:"role"`
}

type ProjectItem struct {
	ProjectNumber string `json:"project_number"`
	Sequence      int    `json:"sequence"`
	Description   string `json:"description"`
}

// NormalizeProjectNumber is the canonical form project numbers are stored in.
func NormalizeProjectNumber(number string) string {
	return strings.ToUpper(strings.TrimSpace(number))
}
