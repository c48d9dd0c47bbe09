package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"jobcard_portal/internal/apperr"
	"jobcard_portal/internal/models"
)

type HseService struct {
	hse      HseStore
	jobcards JobcardStore
	access   *AccessService
}

func NewHseService(hse HseStore, jobcards JobcardStore, access *AccessService) *HseService {
	return &HseService{hse: hse, jobcards: jobcards, access: access}
}

type AnswerInput struct {
	QuestionID uuid.UUID `json:"question_id" binding:"required"`
	Answer     string    `json:"answer" binding:"required"`
	Comment    string    `json:"comment" binding:"max=2000"`
}

type AnswerRequest struct {
	Answers []AnswerInput `json:"answers" binding:"required,min=1,dive"`
}

type TopicRequest struct {
	Name      string `json:"name" binding:"required,max=200"`
	SortOrder int    `json:"sort_order"`
}

type QuestionRequest struct {
	Prompt    string `json:"prompt" binding:"required,max=1000"`
	SortOrder int    `json:"sort_order"`
}

type UpdateQuestionRequest struct {
	Prompt    *string `json:"prompt" binding:"omitempty,max=1000"`
	SortOrder *int    `json:"sort_order"`
	Active    *bool   `json:"active"`
}

type ChecklistItem struct {
	Question models.HseQuestion  `json:"question"`
	Response *models.HseResponse `json:"response,omitempty"`
}

type ChecklistTopic struct {
	ID    uuid.UUID       `json:"id"`
	Name  string          `json:"name"`
	Items []ChecklistItem `json:"items"`
}

// HseChecklist is the HSE screen of one jobcard.
type HseChecklist struct {
	Jobcard models.JobcardTask `json:"jobcard"`
	Role    models.Role        `json:"role"`
	Topics  []ChecklistTopic   `json:"topics"`
	Summary models.HseSummary  `json:"summary"`
}

func (s *HseService) Checklist(ctx context.Context, user *models.User, number, slug string) (*HseChecklist, error) {
	_, role, task, err := s.jobcard(ctx, user, number, slug)
	if err != nil {
		return nil, err
	}
	return s.checklist(ctx, task, role)
}

func (s *HseService) checklist(ctx context.Context, task *models.JobcardTask, role models.Role) (*HseChecklist, error) {
	var topics []models.HseTopic
	var responses []models.HseResponse

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if topics, err = s.hse.ListTopics(gctx, false); err != nil {
			return fmt.Errorf("failed to list hse topics: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if responses, err = s.hse.ListResponses(gctx, task.ID); err != nil {
			return fmt.Errorf("failed to list hse responses: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byQuestion := make(map[uuid.UUID]models.HseResponse, len(responses))
	for _, r := range responses {
		byQuestion[r.QuestionID] = r
	}

	out := &HseChecklist{
		Jobcard: *task,
		Role:    role,
		Topics:  make([]ChecklistTopic, 0, len(topics)),
		Summary: summarize(topics, responses),
	}
	for _, t := range topics {
		ct := ChecklistTopic{ID: t.ID, Name: t.Name, Items: make([]ChecklistItem, 0, len(t.Questions))}
		for _, q := range t.Questions {
			item := ChecklistItem{Question: q}
			if r, ok := byQuestion[q.ID]; ok {
				item.Response = &r
			}
			ct.Items = append(ct.Items, item)
		}
		out.Topics = append(out.Topics, ct)
	}
	return out, nil
}

// Answer upserts a batch of answers and returns the refreshed checklist.
// Only active questions can be answered, each at most once per batch.
func (s *HseService) Answer(ctx context.Context, user *models.User, number, slug string, req AnswerRequest) (*HseChecklist, error) {
	_, role, task, err := s.jobcard(ctx, user, number, slug)
	if err != nil {
		return nil, err
	}

	topics, err := s.hse.ListTopics(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list hse topics: %w", err)
	}
	active := make(map[uuid.UUID]bool)
	for _, t := range topics {
		for _, q := range t.Questions {
			active[q.ID] = true
		}
	}

	seen := make(map[uuid.UUID]bool, len(req.Answers))
	batch := make([]models.HseResponse, 0, len(req.Answers))
	for _, in := range req.Answers {
		if !active[in.QuestionID] {
			return nil, apperr.Validation("unknown or inactive question %s", in.QuestionID)
		}
		if seen[in.QuestionID] {
			return nil, apperr.Validation("question %s answered twice", in.QuestionID)
		}
		seen[in.QuestionID] = true

		answer, err := models.ParseHseAnswer(strings.ToLower(strings.TrimSpace(in.Answer)))
		if err != nil {
			return nil, apperr.Validation("%v", err)
		}
		batch = append(batch, models.HseResponse{
			TaskID:      task.ID,
			QuestionID:  in.QuestionID,
			Answer:      answer,
			Comment:     strings.TrimSpace(in.Comment),
			RespondedBy: user.ID,
		})
	}

	if err := s.hse.UpsertResponses(ctx, batch); err != nil {
		return nil, fmt.Errorf("failed to save hse responses: %w", err)
	}
	return s.checklist(ctx, task, role)
}

func (s *HseService) ListTopics(ctx context.Context, user *models.User) ([]models.HseTopic, error) {
	if err := RequireSuperuser(user); err != nil {
		return nil, err
	}
	topics, err := s.hse.ListTopics(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list hse topics: %w", err)
	}
	if topics == nil {
		topics = []models.HseTopic{}
	}
	return topics, nil
}

func (s *HseService) CreateTopic(ctx context.Context, user *models.User, req TopicRequest) (*models.HseTopic, error) {
	if err := RequireSuperuser(user); err != nil {
		return nil, err
	}
	topic := &models.HseTopic{Name: strings.TrimSpace(req.Name), SortOrder: req.SortOrder, Active: true}
	if topic.Name == "" {
		return nil, apperr.Validation("name must not be empty")
	}
	if err := s.hse.CreateTopic(ctx, topic); err != nil {
		return nil, fmt.Errorf("failed to create hse topic: %w", err)
	}
	return topic, nil
}

func (s *HseService) CreateQuestion(ctx context.Context, user *models.User, topicID uuid.UUID, req QuestionRequest) (*models.HseQuestion, error) {
	if err := RequireSuperuser(user); err != nil {
		return nil, err
	}
	topics, err := s.hse.ListTopics(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list hse topics: %w", err)
	}
	found := false
	for _, t := range topics {
		if t.ID == topicID {
			found = true
			break
		}
	}
	if !found {
		return nil, apperr.NotFound("hse topic %s", topicID)
	}

	question := &models.HseQuestion{
		TopicID:   topicID,
		Prompt:    strings.TrimSpace(req.Prompt),
		SortOrder: req.SortOrder,
		Active:    true,
	}
	if question.Prompt == "" {
		return nil, apperr.Validation("prompt must not be empty")
	}
	if err := s.hse.CreateQuestion(ctx, question); err != nil {
		return nil, fmt.Errorf("failed to create hse question: %w", err)
	}
	return question, nil
}

// UpdateQuestion rewords, reorders or (de)activates a question. Questions
// are never deleted so past answers keep their context.
func (s *HseService) UpdateQuestion(ctx context.Context, user *models.User, id uuid.UUID, req UpdateQuestionRequest) (*models.HseQuestion, error) {
	if err := RequireSuperuser(user); err != nil {
		return nil, err
	}
	question, err := s.hse.GetQuestion(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get hse question: %w", err)
	}
	if question == nil {
		return nil, apperr.NotFound("hse question %s", id)
	}

	if req.Prompt != nil {
		question.Prompt = strings.TrimSpace(*req.Prompt)
		if question.Prompt == "" {
			return nil, apperr.Validation("prompt must not be empty")
		}
	}
	if req.SortOrder != nil {
		question.SortOrder = *req.SortOrder
	}
	if req.Active != nil {
		question.Active = *req.Active
	}

	if err := s.hse.UpdateQuestion(ctx, question); err != nil {
		return nil, fmt.Errorf("failed to update hse question: %w", err)
	}
	return question, nil
}

func (s *HseService) jobcard(ctx context.Context, user *models.User, number, slug string) (*models.Project, models.Role, *models.JobcardTask, error) {
	project, role, err := s.access.Require(ctx, user, number, models.RoleMember)
	if err != nil {
		return nil, models.RoleNone, nil, err
	}
	task, err := s.jobcards.GetBySlug(ctx, project.Number, slug)
	if err != nil {
		return nil, models.RoleNone, nil, fmt.Errorf("failed to get jobcard: %w", err)
	}
	if task == nil {
		return nil, models.RoleNone, nil, apperr.NotFound("jobcard %s", slug)
	}
	return project, role, task, nil
}

func hseSummary(ctx context.Context, store HseStore, taskID uuid.UUID) (models.HseSummary, error) {
	topics, err := store.ListTopics(ctx, false)
	if err != nil {
		return models.HseSummary{}, fmt.Errorf("failed to list hse topics: %w", err)
	}
	responses, err := store.ListResponses(ctx, taskID)
	if err != nil {
		return models.HseSummary{}, fmt.Errorf("failed to list hse responses: %w", err)
	}
	return summarize(topics, responses), nil
}

// summarize counts answers to active questions only; answers left behind
// by deactivated questions are ignored.
func summarize(topics []models.HseTopic, responses []models.HseResponse) models.HseSummary {
	var summary models.HseSummary
	active := make(map[uuid.UUID]bool)
	for _, t := range topics {
		for _, q := range t.Questions {
			active[q.ID] = true
			summary.Total++
		}
	}
	for _, r := range responses {
		if !active[r.QuestionID] {
			continue
		}
		summary.Answered++
		if r.Answer == models.AnswerNo {
			summary.No++
		}
	}
	return summary
}
