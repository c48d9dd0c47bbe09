package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"jobcard_portal/internal/apperr"
	"jobcard_portal/internal/models"
)

type HseRepository struct {
	pool *pgxpool.Pool
}

func NewHseRepository(pool *pgxpool.Pool) *HseRepository {
	return &HseRepository{pool: pool}
}

// ListTopics returns topics with their questions nested, both ordered by
// sort order. Inactive topics and questions are skipped unless
// includeInactive is set.
func (r *HseRepository) ListTopics(ctx context.Context, includeInactive bool) ([]models.HseTopic, error) {
	query := `
		SELECT t.id, t.name, t.sort_order, t.active,
		       q.id, q.prompt, q.sort_order, q.active
		FROM hse_topics t
		LEFT JOIN hse_questions q ON q.topic_id = t.id AND ($1 OR q.active)
		WHERE $1 OR t.active
		ORDER BY t.sort_order, t.name, q.sort_order, q.prompt
	`

	rows, err := r.pool.Query(ctx, query, includeInactive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var topics []models.HseTopic
	for rows.Next() {
		var topic models.HseTopic
		var qID *uuid.UUID
		var qPrompt *string
		var qSort *int
		var qActive *bool
		if err := rows.Scan(&topic.ID, &topic.Name, &topic.SortOrder, &topic.Active, &qID, &qPrompt, &qSort, &qActive); err != nil {
			return nil, err
		}

		if n := len(topics); n == 0 || topics[n-1].ID != topic.ID {
			topics = append(topics, topic)
		}
		if qID != nil {
			last := &topics[len(topics)-1]
			last.Questions = append(last.Questions, models.HseQuestion{
				ID:        *qID,
				TopicID:   topic.ID,
				Prompt:    *qPrompt,
				SortOrder: *qSort,
				Active:    *qActive,
			})
		}
	}
	return topics, rows.Err()
}

func (r *HseRepository) CreateTopic(ctx context.Context, topic *models.HseTopic) error {
	if topic.ID == uuid.Nil {
		topic.ID = uuid.New()
	}
	query := `INSERT INTO hse_topics (id, name, sort_order, active) VALUES ($1, $2, $3, $4)`
	_, err := r.pool.Exec(ctx, query, topic.ID, topic.Name, topic.SortOrder, topic.Active)
	return translate(err)
}

func (r *HseRepository) CreateQuestion(ctx context.Context, question *models.HseQuestion) error {
	if question.ID == uuid.Nil {
		question.ID = uuid.New()
	}
	query := `INSERT INTO hse_questions (id, topic_id, prompt, sort_order, active) VALUES ($1, $2, $3, $4, $5)`
	_, err := r.pool.Exec(ctx, query, question.ID, question.TopicID, question.Prompt, question.SortOrder, question.Active)
	return translate(err)
}

func (r *HseRepository) GetQuestion(ctx context.Context, id uuid.UUID) (*models.HseQuestion, error) {
	query := `SELECT id, topic_id, prompt, sort_order, active FROM hse_questions WHERE id = $1`

	var q models.HseQuestion
	err := r.pool.QueryRow(ctx, query, id).Scan(&q.ID, &q.TopicID, &q.Prompt, &q.SortOrder, &q.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &q, nil
}

func (r *HseRepository) UpdateQuestion(ctx context.Context, question *models.HseQuestion) error {
	query := `UPDATE hse_questions SET prompt = $2, sort_order = $3, active = $4 WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, question.ID, question.Prompt, question.SortOrder, question.Active)
	if err != nil {
		return translate(err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound("hse question %s", question.ID)
	}
	return nil
}

func (r *HseRepository) ListResponses(ctx context.Context, taskID uuid.UUID) ([]models.HseResponse, error) {
	query := `
		SELECT task_id, question_id, answer, comment, responded_by, updated_at
		FROM hse_responses WHERE task_id = $1
	`

	rows, err := r.pool.Query(ctx, query, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var responses []models.HseResponse
	for rows.Next() {
		var resp models.HseResponse
		var answer string
		var respondedBy *uuid.UUID
		if err := rows.Scan(&resp.TaskID, &resp.QuestionID, &answer, &resp.Comment, &respondedBy, &resp.UpdatedAt); err != nil {
			return nil, err
		}
		resp.Answer = models.HseAnswer(answer)
		if respondedBy != nil {
			resp.RespondedBy = *respondedBy
		}
		responses = append(responses, resp)
	}
	return responses, rows.Err()
}

// UpsertResponses writes all answers in one transaction.
func (r *HseRepository) UpsertResponses(ctx context.Context, responses []models.HseResponse) error {
	if len(responses) == 0 {
		return nil
	}

	query := `
		INSERT INTO hse_responses (task_id, question_id, answer, comment, responded_by, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (task_id, question_id) DO UPDATE SET
			answer = EXCLUDED.answer,
			comment = EXCLUDED.comment,
			responded_by = EXCLUDED.responded_by,
			updated_at = EXCLUDED.updated_at
	`

	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, resp := range responses {
			batch.Queue(query, resp.TaskID, resp.QuestionID, string(resp.Answer), resp.Comment, resp.RespondedBy)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return translate(err)
		}
		return nil
	})
}
