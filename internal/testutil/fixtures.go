package testutil

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"jobcard_portal/internal/models"
)

// Sessions is the Redis session store in memory.
type Sessions struct {
	mu          sync.Mutex
	live        map[string]string
	blacklisted map[string]bool
}

func NewSessions() *Sessions {
	return &Sessions{live: make(map[string]string), blacklisted: make(map[string]bool)}
}

func (s *Sessions) StoreSession(ctx context.Context, jti string, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.live[jti] = userID
	return nil
}

func (s *Sessions) SessionExists(ctx context.Context, jti string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.live[jti]
	return ok, nil
}

func (s *Sessions) DeleteSession(ctx context.Context, jti string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.live, jti)
	return nil
}

func (s *Sessions) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.blacklisted[jti], nil
}

func (s *Sessions) Blacklist(ctx context.Context, jti string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blacklisted[jti] = true
	return nil
}

// SeedUser adds a user with the given email.
func SeedUser(t testing.TB, db *DB, email string, superuser bool) *models.User {
	t.Helper()
	user := &models.User{Email: email, DisplayName: email, IsSuperuser: superuser}
	require.NoError(t, db.Users().Create(context.Background(), user))
	return user
}

// SeedProject adds a project and one membership per entry in roles.
func SeedProject(t testing.TB, db *DB, number string, roles map[*models.User]models.Role) *models.Project {
	t.Helper()
	ctx := context.Background()

	project := &models.Project{Number: number, Description: "project " + number}
	project.Prepare()
	require.NoError(t, db.Projects().Create(ctx, project))

	for user, role := range roles {
		require.NoError(t, db.Members().Upsert(ctx, models.ProjectMember{
			ProjectNumber: project.Number,
			UserID:        user.ID,
			Role:          role,
		}))
	}
	return project
}

func SeedItem(t testing.TB, db *DB, projectNumber string, sequence int) *models.ProjectItem {
	t.Helper()
	item := &models.ProjectItem{ProjectNumber: projectNumber, Sequence: sequence, Description: "item"}
	require.NoError(t, db.Items().Create(context.Background(), item))
	return item
}

// SeedNode adds a WBS node under parent, or at the root when parent is nil.
func SeedNode(t testing.TB, db *DB, item *models.ProjectItem, parent *models.WbsNode, code string) *models.WbsNode {
	t.Helper()
	node := &models.WbsNode{
		ProjectNumber: item.ProjectNumber,
		ItemSequence:  item.Sequence,
		Code:          code,
		Name:          "node " + code,
	}
	if parent != nil {
		node.ParentID = &parent.ID
	}
	require.NoError(t, db.Wbs().Create(context.Background(), node))
	return node
}

func SeedJobcard(t testing.TB, db *DB, node *models.WbsNode, slug string, createdBy uuid.UUID) *models.JobcardTask {
	t.Helper()
	task := &models.JobcardTask{
		ProjectNumber: node.ProjectNumber,
		ItemSequence:  node.ItemSequence,
		WbsNodeID:     node.ID,
		Title:         slug,
		Slug:          slug,
		CreatedBy:     createdBy,
	}
	require.NoError(t, db.Jobcards().Create(context.Background(), task))
	return task
}

// SeedTopic adds an active topic with one active question per prompt.
func SeedTopic(t testing.TB, db *DB, name string, prompts ...string) (*models.HseTopic, []models.HseQuestion) {
	t.Helper()
	ctx := context.Background()

	topic := &models.HseTopic{Name: name, Active: true}
	require.NoError(t, db.Hse().CreateTopic(ctx, topic))

	questions := make([]models.HseQuestion, 0, len(prompts))
	for i, prompt := range prompts {
		q := &models.HseQuestion{TopicID: topic.ID, Prompt: prompt, SortOrder: i, Active: true}
		require.NoError(t, db.Hse().CreateQuestion(ctx, q))
		questions = append(questions, *q)
	}
	return topic, questions
}
