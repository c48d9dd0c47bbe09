// Package testutil holds in-memory stand-ins for the Postgres and Redis
// repositories. They keep the constraints the services depend on: unique
// keys and refused deletes surface as apperr.ErrConflict, missing rows as
// nil results, and project or item deletes cascade.
package testutil

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"jobcard_portal/internal/apperr"
	"jobcard_portal/internal/models"
)

type itemKey struct {
	project  string
	sequence int
}

type memberKey struct {
	project string
	user    uuid.UUID
}

type responseKey struct {
	task     uuid.UUID
	question uuid.UUID
}

// DB is one shared in-memory dataset. The per-table stores returned by its
// accessors all read and write it under one lock.
type DB struct {
	mu sync.Mutex

	users     map[uuid.UUID]models.User
	projects  map[string]models.Project
	members   map[memberKey]models.Role
	items     map[itemKey]models.ProjectItem
	nodes     map[uuid.UUID]models.WbsNode
	jobcards  map[uuid.UUID]models.JobcardTask
	topics    map[uuid.UUID]models.HseTopic
	questions map[uuid.UUID]models.HseQuestion
	responses map[responseKey]models.HseResponse
}

func NewDB() *DB {
	return &DB{
		users:     make(map[uuid.UUID]models.User),
		projects:  make(map[string]models.Project),
		members:   make(map[memberKey]models.Role),
		items:     make(map[itemKey]models.ProjectItem),
		nodes:     make(map[uuid.UUID]models.WbsNode),
		jobcards:  make(map[uuid.UUID]models.JobcardTask),
		topics:    make(map[uuid.UUID]models.HseTopic),
		questions: make(map[uuid.UUID]models.HseQuestion),
		responses: make(map[responseKey]models.HseResponse),
	}
}

func (db *DB) Users() *UserStore { return &UserStore{db: db} }
func (db *DB) Projects() *ProjectStore { return &ProjectStore{db: db} }
func (db *DB) Members() *MemberStore { return &MemberStore{db: db} }
func (db *DB) Items() *ItemStore { return &ItemStore{db: db} }
func (db *DB) Wbs() *WbsStore { return &WbsStore{db: db} }
func (db *DB) Jobcards() *JobcardStore { return &JobcardStore{db: db} }
func (db *DB) Hse() *HseStore { return &HseStore{db: db} }

// ---- users ----

type UserStore struct{ db *DB }

func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	user.Prepare()
	for _, u := range s.db.users {
		if u.Email == user.Email {
			return apperr.Duplicate("user %s", user.Email)
		}
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	s.db.users[user.ID] = *user
	return nil
}

func (s *UserStore) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	u, ok := s.db.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range s.db.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, nil
}

func (s *UserStore) RecordLogin(ctx context.Context, id uuid.UUID, displayName, subject string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	u, ok := s.db.users[id]
	if !ok {
		return apperr.NotFound("user %s", id)
	}
	now := time.Now()
	u.DisplayName = displayName
	u.Subject = subject
	u.LastLoginAt = &now
	s.db.users[id] = u
	return nil
}

func (s *UserStore) SetSuperuser(ctx context.Context, email string, superuser bool) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	email = strings.ToLower(strings.TrimSpace(email))
	for id, u := range s.db.users {
		if u.Email == email {
			u.IsSuperuser = superuser
			s.db.users[id] = u
			return nil
		}
	}
	return apperr.NotFound("user %s", email)
}

func (s *UserStore) List(ctx context.Context) ([]models.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	out := make([]models.User, 0, len(s.db.users))
	for _, u := range s.db.users {
		out = append(out, u)
	}
	slices.SortFunc(out, func(a, b models.User) int { return cmp.Compare(a.Email, b.Email) })
	return out, nil
}

// ---- projects ----

type ProjectStore struct{ db *DB }

func (s *ProjectStore) Create(ctx context.Context, project *models.Project) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.projects[project.Number]; ok {
		return apperr.Duplicate("project %s", project.Number)
	}
	project.CreatedAt = time.Now()
	s.db.projects[project.Number] = *project
	return nil
}

func (s *ProjectStore) GetByNumber(ctx context.Context, number string) (*models.Project, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	p, ok := s.db.projects[number]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (s *ProjectStore) List(ctx context.Context) ([]models.Project, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	out := make([]models.Project, 0, len(s.db.projects))
	for _, p := range s.db.projects {
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b models.Project) int { return cmp.Compare(a.Number, b.Number) })
	return out, nil
}

func (s *ProjectStore) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.ProjectSummary, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	var out []models.ProjectSummary
	for key, role := range s.db.members {
		if key.user != userID {
			continue
		}
		out = append(out, models.ProjectSummary{Project: s.db.projects[key.project], Role: role})
	}
	slices.SortFunc(out, func(a, b models.ProjectSummary) int { return cmp.Compare(a.Number, b.Number) })
	return out, nil
}

func (s *ProjectStore) Update(ctx context.Context, project *models.Project) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.projects[project.Number]; !ok {
		return apperr.NotFound("project %s", project.Number)
	}
	s.db.projects[project.Number] = *project
	return nil
}

// Delete cascades to everything the project owns.
func (s *ProjectStore) Delete(ctx context.Context, number string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.projects[number]; !ok {
		return apperr.NotFound("project %s", number)
	}
	delete(s.db.projects, number)
	for key := range s.db.members {
		if key.project == number {
			delete(s.db.members, key)
		}
	}
	for key := range s.db.items {
		if key.project == number {
			s.db.dropItemLocked(key)
		}
	}
	return nil
}

// ---- members ----

type MemberStore struct{ db *DB }

func (s *MemberStore) GetRole(ctx context.Context, projectNumber string, userID uuid.UUID) (models.Role, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	role, ok := s.db.members[memberKey{projectNumber, userID}]
	if !ok {
		return models.RoleNone, nil
	}
	return role, nil
}

func (s *MemberStore) ListByProject(ctx context.Context, projectNumber string) ([]models.ProjectMember, error) {
	return s.list(func(k memberKey) bool { return k.project == projectNumber }), nil
}

func (s *MemberStore) ListAll(ctx context.Context) ([]models.ProjectMember, error) {
	return s.list(func(memberKey) bool { return true }), nil
}

func (s *MemberStore) list(match func(memberKey) bool) []models.ProjectMember {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	var out []models.ProjectMember
	for key, role := range s.db.members {
		if !match(key) {
			continue
		}
		u := s.db.users[key.user]
		out = append(out, models.ProjectMember{
			ProjectNumber: key.project,
			UserID:        key.user,
			Role:          role,
			Email:         u.Email,
			DisplayName:   u.DisplayName,
		})
	}
	slices.SortFunc(out, func(a, b models.ProjectMember) int {
		return cmp.Or(cmp.Compare(a.ProjectNumber, b.ProjectNumber), cmp.Compare(a.Email, b.Email))
	})
	return out
}

func (s *MemberStore) Upsert(ctx context.Context, member models.ProjectMember) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.projects[member.ProjectNumber]; !ok {
		return apperr.Conflict("project %s does not exist", member.ProjectNumber)
	}
	if _, ok := s.db.users[member.UserID]; !ok {
		return apperr.Conflict("user %s does not exist", member.UserID)
	}
	s.db.members[memberKey{member.ProjectNumber, member.UserID}] = member.Role
	return nil
}

func (s *MemberStore) Delete(ctx context.Context, projectNumber string, userID uuid.UUID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	delete(s.db.members, memberKey{projectNumber, userID})
	return nil
}

// ---- items ----

type ItemStore struct{ db *DB }

func (s *ItemStore) ListByProject(ctx context.Context, projectNumber string) ([]models.ProjectItem, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	var out []models.ProjectItem
	for key, item := range s.db.items {
		if key.project == projectNumber {
			out = append(out, item)
		}
	}
	slices.SortFunc(out, func(a, b models.ProjectItem) int { return cmp.Compare(a.Sequence, b.Sequence) })
	return out, nil
}

func (s *ItemStore) Get(ctx context.Context, projectNumber string, sequence int) (*models.ProjectItem, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	item, ok := s.db.items[itemKey{projectNumber, sequence}]
	if !ok {
		return nil, nil
	}
	return &item, nil
}

func (s *ItemStore) Create(ctx context.Context, item *models.ProjectItem) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.projects[item.ProjectNumber]; !ok {
		return apperr.Conflict("project %s does not exist", item.ProjectNumber)
	}
	if item.Sequence <= 0 {
		next := 1
		for key := range s.db.items {
			if key.project == item.ProjectNumber && key.sequence >= next {
				next = key.sequence + 1
			}
		}
		item.Sequence = next
	}
	key := itemKey{item.ProjectNumber, item.Sequence}
	if _, ok := s.db.items[key]; ok {
		return apperr.Duplicate("item %s/%d", item.ProjectNumber, item.Sequence)
	}
	s.db.items[key] = *item
	return nil
}

func (s *ItemStore) Update(ctx context.Context, item *models.ProjectItem) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	key := itemKey{item.ProjectNumber, item.Sequence}
	if _, ok := s.db.items[key]; !ok {
		return apperr.NotFound("item %s/%d", item.ProjectNumber, item.Sequence)
	}
	s.db.items[key] = *item
	return nil
}

func (s *ItemStore) Delete(ctx context.Context, projectNumber string, sequence int) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	key := itemKey{projectNumber, sequence}
	if _, ok := s.db.items[key]; !ok {
		return apperr.NotFound("item %s/%d", projectNumber, sequence)
	}
	s.db.dropItemLocked(key)
	return nil
}

// dropItemLocked removes an item with its nodes, jobcards and responses.
func (db *DB) dropItemLocked(key itemKey) {
	delete(db.items, key)
	for id, n := range db.nodes {
		if n.ProjectNumber == key.project && n.ItemSequence == key.sequence {
			delete(db.nodes, id)
		}
	}
	for id, t := range db.jobcards {
		if t.ProjectNumber == key.project && t.ItemSequence == key.sequence {
			delete(db.jobcards, id)
			db.dropResponsesLocked(id)
		}
	}
}

func (db *DB) dropResponsesLocked(taskID uuid.UUID) {
	for key := range db.responses {
		if key.task == taskID {
			delete(db.responses, key)
		}
	}
}

// ---- wbs ----

type WbsStore struct{ db *DB }

func (s *WbsStore) ListByItem(ctx context.Context, projectNumber string, itemSequence int) ([]models.WbsNode, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	var out []models.WbsNode
	for _, n := range s.db.nodes {
		if n.ProjectNumber == projectNumber && n.ItemSequence == itemSequence {
			out = append(out, n)
		}
	}
	slices.SortFunc(out, func(a, b models.WbsNode) int {
		return cmp.Or(cmp.Compare(a.SortOrder, b.SortOrder), cmp.Compare(a.Code, b.Code))
	})
	return out, nil
}

func (s *WbsStore) Get(ctx context.Context, id uuid.UUID) (*models.WbsNode, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	n, ok := s.db.nodes[id]
	if !ok {
		return nil, nil
	}
	return &n, nil
}

func (s *WbsStore) Create(ctx context.Context, node *models.WbsNode) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	node.Prepare()
	if err := s.checkLocked(node); err != nil {
		return err
	}
	stored := *node
	stored.Path = ""
	s.db.nodes[node.ID] = stored
	return nil
}

func (s *WbsStore) Update(ctx context.Context, node *models.WbsNode) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.nodes[node.ID]; !ok {
		return apperr.NotFound("wbs node %s", node.ID)
	}
	if err := s.checkLocked(node); err != nil {
		return err
	}
	stored := *node
	stored.Path = ""
	s.db.nodes[node.ID] = stored
	return nil
}

// Delete refuses nodes that still have children or jobcards.
func (s *WbsStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.nodes[id]; !ok {
		return apperr.NotFound("wbs node %s", id)
	}
	for _, n := range s.db.nodes {
		if n.ParentID != nil && *n.ParentID == id {
			return apperr.Conflict("wbs node %s still has children", id)
		}
	}
	for _, t := range s.db.jobcards {
		if t.WbsNodeID == id {
			return apperr.Conflict("wbs node %s still has jobcards", id)
		}
	}
	delete(s.db.nodes, id)
	return nil
}

func (s *WbsStore) checkLocked(node *models.WbsNode) error {
	if _, ok := s.db.items[itemKey{node.ProjectNumber, node.ItemSequence}]; !ok {
		return apperr.Conflict("item %s/%d does not exist", node.ProjectNumber, node.ItemSequence)
	}
	if node.ParentID != nil {
		if _, ok := s.db.nodes[*node.ParentID]; !ok {
			return apperr.Conflict("parent %s does not exist", *node.ParentID)
		}
	}
	for _, n := range s.db.nodes {
		if n.ID == node.ID || n.ProjectNumber != node.ProjectNumber || n.ItemSequence != node.ItemSequence {
			continue
		}
		if sameParent(n.ParentID, node.ParentID) && n.Code == node.Code {
			return apperr.Duplicate("wbs code %s already used under this parent", node.Code)
		}
	}
	return nil
}

func sameParent(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// ---- jobcards ----

type JobcardStore struct{ db *DB }

func (s *JobcardStore) List(ctx context.Context, projectNumber string, filter models.JobcardFilter) ([]models.JobcardTask, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	var out []models.JobcardTask
	for _, t := range s.db.jobcards {
		switch {
		case t.ProjectNumber != projectNumber:
		case filter.ItemSequence != nil && t.ItemSequence != *filter.ItemSequence:
		case filter.WbsNodeID != nil && t.WbsNodeID != *filter.WbsNodeID:
		case filter.Status != "" && t.Status != filter.Status:
		default:
			out = append(out, t)
		}
	}
	slices.SortFunc(out, func(a, b models.JobcardTask) int {
		return cmp.Or(cmp.Compare(a.ItemSequence, b.ItemSequence), a.CreatedAt.Compare(b.CreatedAt))
	})
	return out, nil
}

func (s *JobcardStore) GetBySlug(ctx context.Context, projectNumber, slug string) (*models.JobcardTask, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for _, t := range s.db.jobcards {
		if t.ProjectNumber == projectNumber && t.Slug == slug {
			return &t, nil
		}
	}
	return nil, nil
}

func (s *JobcardStore) SlugsWithPrefix(ctx context.Context, projectNumber, prefix string) ([]string, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	var out []string
	for _, t := range s.db.jobcards {
		if t.ProjectNumber == projectNumber && strings.HasPrefix(t.Slug, prefix) {
			out = append(out, t.Slug)
		}
	}
	return out, nil
}

func (s *JobcardStore) CountByStatus(ctx context.Context, projectNumber string) (map[models.JobcardStatus]int, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	counts := make(map[models.JobcardStatus]int)
	for _, t := range s.db.jobcards {
		if t.ProjectNumber == projectNumber {
			counts[t.Status]++
		}
	}
	return counts, nil
}

func (s *JobcardStore) Create(ctx context.Context, task *models.JobcardTask) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	task.Prepare()
	if err := s.checkLocked(task); err != nil {
		return err
	}
	now := time.Now()
	task.CreatedAt = now
	task.UpdatedAt = now
	s.db.jobcards[task.ID] = *task
	return nil
}

func (s *JobcardStore) Update(ctx context.Context, task *models.JobcardTask) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.jobcards[task.ID]; !ok {
		return apperr.NotFound("jobcard %s", task.ID)
	}
	if err := s.checkLocked(task); err != nil {
		return err
	}
	task.UpdatedAt = time.Now()
	s.db.jobcards[task.ID] = *task
	return nil
}

func (s *JobcardStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.jobcards[id]; !ok {
		return apperr.NotFound("jobcard %s", id)
	}
	delete(s.db.jobcards, id)
	s.db.dropResponsesLocked(id)
	return nil
}

func (s *JobcardStore) checkLocked(task *models.JobcardTask) error {
	if _, ok := s.db.nodes[task.WbsNodeID]; !ok {
		return apperr.Conflict("wbs node %s does not exist", task.WbsNodeID)
	}
	for _, t := range s.db.jobcards {
		if t.ID != task.ID && t.ProjectNumber == task.ProjectNumber && t.Slug == task.Slug {
			return apperr.Duplicate("jobcard slug %s", task.Slug)
		}
	}
	return nil
}

// ---- hse ----

type HseStore struct{ db *DB }

// ListTopics nests questions under their topic. Without includeInactive
// only active topics and active questions are returned.
func (s *HseStore) ListTopics(ctx context.Context, includeInactive bool) ([]models.HseTopic, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	var out []models.HseTopic
	for _, t := range s.db.topics {
		if !includeInactive && !t.Active {
			continue
		}
		t.Questions = nil
		for _, q := range s.db.questions {
			if q.TopicID == t.ID && (includeInactive || q.Active) {
				t.Questions = append(t.Questions, q)
			}
		}
		slices.SortFunc(t.Questions, func(a, b models.HseQuestion) int {
			return cmp.Or(cmp.Compare(a.SortOrder, b.SortOrder), cmp.Compare(a.Prompt, b.Prompt))
		})
		out = append(out, t)
	}
	slices.SortFunc(out, func(a, b models.HseTopic) int {
		return cmp.Or(cmp.Compare(a.SortOrder, b.SortOrder), cmp.Compare(a.Name, b.Name))
	})
	return out, nil
}

func (s *HseStore) CreateTopic(ctx context.Context, topic *models.HseTopic) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for _, t := range s.db.topics {
		if t.Name == topic.Name {
			return apperr.Duplicate("hse topic %s", topic.Name)
		}
	}
	if topic.ID == uuid.Nil {
		topic.ID = uuid.New()
	}
	stored := *topic
	stored.Questions = nil
	s.db.topics[topic.ID] = stored
	return nil
}

func (s *HseStore) CreateQuestion(ctx context.Context, question *models.HseQuestion) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.topics[question.TopicID]; !ok {
		return apperr.Conflict("hse topic %s does not exist", question.TopicID)
	}
	if question.ID == uuid.Nil {
		question.ID = uuid.New()
	}
	s.db.questions[question.ID] = *question
	return nil
}

func (s *HseStore) GetQuestion(ctx context.Context, id uuid.UUID) (*models.HseQuestion, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	q, ok := s.db.questions[id]
	if !ok {
		return nil, nil
	}
	return &q, nil
}

func (s *HseStore) UpdateQuestion(ctx context.Context, question *models.HseQuestion) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.questions[question.ID]; !ok {
		return apperr.NotFound("hse question %s", question.ID)
	}
	s.db.questions[question.ID] = *question
	return nil
}

func (s *HseStore) ListResponses(ctx context.Context, taskID uuid.UUID) ([]models.HseResponse, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	var out []models.HseResponse
	for key, r := range s.db.responses {
		if key.task == taskID {
			out = append(out, r)
		}
	}
	return out, nil
}

// UpsertResponses applies the whole batch or nothing.
func (s *HseStore) UpsertResponses(ctx context.Context, responses []models.HseResponse) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for _, r := range responses {
		if _, ok := s.db.jobcards[r.TaskID]; !ok {
			return apperr.Conflict("jobcard %s does not exist", r.TaskID)
		}
		if _, ok := s.db.questions[r.QuestionID]; !ok {
			return apperr.Conflict("hse question %s does not exist", r.QuestionID)
		}
	}
	now := time.Now()
	for _, r := range responses {
		r.UpdatedAt = now
		s.db.responses[responseKey{r.TaskID, r.QuestionID}] = r
	}
	return nil
}
