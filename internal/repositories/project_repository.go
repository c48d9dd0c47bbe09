package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"jobcard_portal/internal/apperr"
	"jobcard_portal/internal/models"
)

type ProjectRepository struct {
	pool *pgxpool.Pool
}

func NewProjectRepository(pool *pgxpool.Pool) *ProjectRepository {
	return &ProjectRepository{pool: pool}
}

func (r *ProjectRepository) Create(ctx context.Context, project *models.Project) error {
	project.Prepare()

	now := time.Now()
	query := `INSERT INTO projects (number, description, created_at) VALUES ($1, $2, $3)`
	if _, err := r.pool.Exec(ctx, query, project.Number, project.Description, now); err != nil {
		return translate(err)
	}
	project.CreatedAt = now
	return nil
}

func (r *ProjectRepository) GetByNumber(ctx context.Context, number string) (*models.Project, error) {
	query := `SELECT number, description, created_at FROM projects WHERE number = $1`

	var project models.Project
	err := r.pool.QueryRow(ctx, query, number).Scan(
		&project.Number,
		&project.Description,
		&project.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &project, nil
}

func (r *ProjectRepository) List(ctx context.Context) ([]models.Project, error) {
	query := `SELECT number, description, created_at FROM projects ORDER BY number`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		var project models.Project
		if err := rows.Scan(&project.Number, &project.Description, &project.CreatedAt); err != nil {
			return nil, err
		}
		projects = append(projects, project)
	}
	return projects, rows.Err()
}

// ListForUser returns the projects userID is a member of, with the role.
func (r *ProjectRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.ProjectSummary, error) {
	query := `
		SELECT p.number, p.description, p.created_at, m.role
		FROM projects p
		JOIN project_members m ON m.project_number = p.number
		WHERE m.user_id = $1
		ORDER BY p.number
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []models.ProjectSummary
	for rows.Next() {
		var summary models.ProjectSummary
		var role string
		if err := rows.Scan(&summary.Number, &summary.Description, &summary.CreatedAt, &role); err != nil {
			return nil, err
		}
		summary.Role = models.Role(role)
		projects = append(projects, summary)
	}
	return projects, rows.Err()
}

func (r *ProjectRepository) Update(ctx context.Context, project *models.Project) error {
	query := `UPDATE projects SET description = $2 WHERE number = $1`

	result, err := r.pool.Exec(ctx, query, project.Number, project.Description)
	if err != nil {
		return translate(err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound("project %s", project.Number)
	}
	return nil
}

func (r *ProjectRepository) Delete(ctx context.Context, number string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM projects WHERE number = $1`, number)
	if err != nil {
		return translate(err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound("project %s", number)
	}
	return nil
}
