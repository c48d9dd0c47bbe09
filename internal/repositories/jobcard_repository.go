package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"jobcard_portal/internal/apperr"
	"jobcard_portal/internal/models"
)

type JobcardRepository struct {
	pool *pgxpool.Pool
}

func NewJobcardRepository(pool *pgxpool.Pool) *JobcardRepository {
	return &JobcardRepository{pool: pool}
}

const jobcardColumns = `id, project_number, item_sequence, wbs_node_id, title, description, status, slug, created_by, created_at, updated_at`

func scanJobcard(row pgx.Row) (*models.JobcardTask, error) {
	var task models.JobcardTask
	var status string
	var createdBy *uuid.UUID
	err := row.Scan(
		&task.ID,
		&task.ProjectNumber,
		&task.ItemSequence,
		&task.WbsNodeID,
		&task.Title,
		&task.Description,
		&status,
		&task.Slug,
		&createdBy,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	task.Status = models.JobcardStatus(status)
	if createdBy != nil {
		task.CreatedBy = *createdBy
	}
	return &task, nil
}

func (r *JobcardRepository) List(ctx context.Context, projectNumber string, filter models.JobcardFilter) ([]models.JobcardTask, error) {
	conds := []string{"project_number = $1"}
	args := []any{projectNumber}

	if filter.ItemSequence != nil {
		args = append(args, *filter.ItemSequence)
		conds = append(conds, fmt.Sprintf("item_sequence = $%d", len(args)))
	}
	if filter.WbsNodeID != nil {
		args = append(args, *filter.WbsNodeID)
		conds = append(conds, fmt.Sprintf("wbs_node_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}

	query := `SELECT ` + jobcardColumns + ` FROM jobcard_tasks
		WHERE ` + strings.Join(conds, " AND ") + `
		ORDER BY item_sequence, created_at`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []models.JobcardTask
	for rows.Next() {
		task, err := scanJobcard(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

func (r *JobcardRepository) GetBySlug(ctx context.Context, projectNumber, slug string) (*models.JobcardTask, error) {
	query := `SELECT ` + jobcardColumns + ` FROM jobcard_tasks WHERE project_number = $1 AND slug = $2`

	task, err := scanJobcard(r.pool.QueryRow(ctx, query, projectNumber, slug))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return task, err
}

// SlugsWithPrefix lists the slugs in a project that start with prefix.
func (r *JobcardRepository) SlugsWithPrefix(ctx context.Context, projectNumber, prefix string) ([]string, error) {
	query := `SELECT slug FROM jobcard_tasks WHERE project_number = $1 AND starts_with(slug, $2)`

	rows, err := r.pool.Query(ctx, query, projectNumber, prefix)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

func (r *JobcardRepository) CountByStatus(ctx context.Context, projectNumber string) (map[models.JobcardStatus]int, error) {
	query := `SELECT status, COUNT(*) FROM jobcard_tasks WHERE project_number = $1 GROUP BY status`

	rows, err := r.pool.Query(ctx, query, projectNumber)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[models.JobcardStatus]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[models.JobcardStatus(status)] = n
	}
	return counts, rows.Err()
}

func (r *JobcardRepository) Create(ctx context.Context, task *models.JobcardTask) error {
	task.Prepare()

	now := time.Now()
	query := `
		INSERT INTO jobcard_tasks (id, project_number, item_sequence, wbs_node_id, title, description, status, slug, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
	`
	_, err := r.pool.Exec(ctx, query,
		task.ID,
		task.ProjectNumber,
		task.ItemSequence,
		task.WbsNodeID,
		task.Title,
		task.Description,
		string(task.Status),
		task.Slug,
		task.CreatedBy,
		now,
	)
	if err != nil {
		return translate(err)
	}
	task.CreatedAt = now
	task.UpdatedAt = now
	return nil
}

func (r *JobcardRepository) Update(ctx context.Context, task *models.JobcardTask) error {
	now := time.Now()
	query := `
		UPDATE jobcard_tasks SET
			item_sequence = $2, wbs_node_id = $3, title = $4, description = $5, status = $6, updated_at = $7
		WHERE id = $1
	`
	result, err := r.pool.Exec(ctx, query,
		task.ID,
		task.ItemSequence,
		task.WbsNodeID,
		task.Title,
		task.Description,
		string(task.Status),
		now,
	)
	if err != nil {
		return translate(err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound("jobcard %s", task.ID)
	}
	task.UpdatedAt = now
	return nil
}

func (r *JobcardRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM jobcard_tasks WHERE id = $1`, id)
	if err != nil {
		return translate(err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound("jobcard %s", id)
	}
	return nil
}
