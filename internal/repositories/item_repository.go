package repositories

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"jobcard_portal/internal/apperr"
	"jobcard_portal/internal/models"
)

type ItemRepository struct {
	pool *pgxpool.Pool
}

func NewItemRepository(pool *pgxpool.Pool) *ItemRepository {
	return &ItemRepository{pool: pool}
}

func (r *ItemRepository) ListByProject(ctx context.Context, projectNumber string) ([]models.ProjectItem, error) {
	query := `
		SELECT project_number, sequence, description
		FROM project_items WHERE project_number = $1
		ORDER BY sequence
	`

	rows, err := r.pool.Query(ctx, query, projectNumber)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.ProjectItem
	for rows.Next() {
		var item models.ProjectItem
		if err := rows.Scan(&item.ProjectNumber, &item.Sequence, &item.Description); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *ItemRepository) Get(ctx context.Context, projectNumber string, sequence int) (*models.ProjectItem, error) {
	query := `
		SELECT project_number, sequence, description
		FROM project_items WHERE project_number = $1 AND sequence = $2
	`

	var item models.ProjectItem
	err := r.pool.QueryRow(ctx, query, projectNumber, sequence).Scan(&item.ProjectNumber, &item.Sequence, &item.Description)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// Create inserts item. A zero Sequence takes the next free number in the
// project and is written back to item.
func (r *ItemRepository) Create(ctx context.Context, item *models.ProjectItem) error {
	query := `
		INSERT INTO project_items (project_number, sequence, description)
		VALUES (
			$1,
			CASE WHEN $2::int > 0 THEN $2::int
			     ELSE (SELECT COALESCE(MAX(sequence), 0) + 1 FROM project_items WHERE project_number = $1)
			END,
			$3
		)
		RETURNING sequence
	`
	err := r.pool.QueryRow(ctx, query, item.ProjectNumber, item.Sequence, item.Description).Scan(&item.Sequence)
	return translate(err)
}

func (r *ItemRepository) Update(ctx context.Context, item *models.ProjectItem) error {
	query := `UPDATE project_items SET description = $3 WHERE project_number = $1 AND sequence = $2`

	result, err := r.pool.Exec(ctx, query, item.ProjectNumber, item.Sequence, item.Description)
	if err != nil {
		return translate(err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound("item %s/%d", item.ProjectNumber, item.Sequence)
	}
	return nil
}

func (r *ItemRepository) Delete(ctx context.Context, projectNumber string, sequence int) error {
	query := `DELETE FROM project_items WHERE project_number = $1 AND sequence = $2`

	result, err := r.pool.Exec(ctx, query, projectNumber, sequence)
	if err != nil {
		return translate(err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound("item %s/%d", projectNumber, sequence)
	}
	return nil
}
