package services

import (
	"context"

	"github.com/google/uuid"

	"jobcard_portal/internal/models"
)

// The stores below are satisfied by the pgx repositories in
// internal/repositories and by the in-memory fakes in internal/testutil.

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	RecordLogin(ctx context.Context, id uuid.UUID, displayName, subject string) error
	SetSuperuser(ctx context.Context, email string, superuser bool) error
	List(ctx context.Context) ([]models.User, error)
}

type ProjectStore interface {
	Create(ctx context.Context, project *models.Project) error
	GetByNumber(ctx context.Context, number string) (*models.Project, error)
	List(ctx context.Context) ([]models.Project, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.ProjectSummary, error)
	Update(ctx context.Context, project *models.Project) error
	Delete(ctx context.Context, number string) error
}

type MemberStore interface {
	GetRole(ctx context.Context, projectNumber string, userID uuid.UUID) (models.Role, error)
	ListByProject(ctx context.Context, projectNumber string) ([]models.ProjectMember, error)
	ListAll(ctx context.Context) ([]models.ProjectMember, error)
	Upsert(ctx context.Context, member models.ProjectMember) error
	Delete(ctx context.Context, projectNumber string, userID uuid.UUID) error
}

type ItemStore interface {
	ListByProject(ctx context.Context, projectNumber string) ([]models.ProjectItem, error)
	Get(ctx context.Context, projectNumber string, sequence int) (*models.ProjectItem, error)
	Create(ctx context.Context, item *models.ProjectItem) error
	Update(ctx context.Context, item *models.ProjectItem) error
	Delete(ctx context.Context, projectNumber string, sequence int) error
}

type WbsStore interface {
	ListByItem(ctx context.Context, projectNumber string, itemSequence int) ([]models.WbsNode, error)
	Get(ctx context.Context, id uuid.UUID) (*models.WbsNode, error)
	Create(ctx context.Context, node *models.WbsNode) error
	Update(ctx context.Context, node *models.WbsNode) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type JobcardStore interface {
	List(ctx context.Context, projectNumber string, filter models.JobcardFilter) ([]models.JobcardTask, error)
	GetBySlug(ctx context.Context, projectNumber, slug string) (*models.JobcardTask, error)
	SlugsWithPrefix(ctx context.Context, projectNumber, prefix string) ([]string, error)
	CountByStatus(ctx context.Context, projectNumber string) (map[models.JobcardStatus]int, error)
	Create(ctx context.Context, task *models.JobcardTask) error
	Update(ctx context.Context, task *models.JobcardTask) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type HseStore interface {
	ListTopics(ctx context.Context, includeInactive bool) ([]models.HseTopic, error)
	CreateTopic(ctx context.Context, topic *models.HseTopic) error
	CreateQuestion(ctx context.Context, question *models.HseQuestion) error
	GetQuestion(ctx context.Context, id uuid.UUID) (*models.HseQuestion, error)
	UpdateQuestion(ctx context.Context, question *models.HseQuestion) error
	ListResponses(ctx context.Context, taskID uuid.UUID) ([]models.HseResponse, error)
	UpsertResponses(ctx context.Context, responses []models.HseResponse) error
}

type SessionStore interface {
	StoreSession(ctx context.Context, jti string, userID string) error
	SessionExists(ctx context.Context, jti string) (bool, error)
	DeleteSession(ctx context.Context, jti string) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
	Blacklist(ctx context.Context, jti string) error
}
