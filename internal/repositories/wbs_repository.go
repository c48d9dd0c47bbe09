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

type WbsRepository struct {
	pool *pgxpool.Pool
}

func NewWbsRepository(pool *pgxpool.Pool) *WbsRepository {
	return &WbsRepository{pool: pool}
}

const wbsColumns = `id, project_number, item_sequence, parent_id, code, name, description, sort_order`

func scanWbsNode(row pgx.Row) (*models.WbsNode, error) {
	var node models.WbsNode
	err := row.Scan(
		&node.ID,
		&node.ProjectNumber,
		&node.ItemSequence,
		&node.ParentID,
		&node.Code,
		&node.Name,
		&node.Description,
		&node.SortOrder,
	)
	if err != nil {
		return nil, err
	}
	return &node, nil
}

func (r *WbsRepository) ListByItem(ctx context.Context, projectNumber string, itemSequence int) ([]models.WbsNode, error) {
	query := `SELECT ` + wbsColumns + ` FROM wbs_nodes
		WHERE project_number = $1 AND item_sequence = $2
		ORDER BY sort_order, code`

	rows, err := r.pool.Query(ctx, query, projectNumber, itemSequence)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var nodes []models.WbsNode
	for rows.Next() {
		node, err := scanWbsNode(rows)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, *node)
	}
	return nodes, rows.Err()
}

func (r *WbsRepository) Get(ctx context.Context, id uuid.UUID) (*models.WbsNode, error) {
	query := `SELECT ` + wbsColumns + ` FROM wbs_nodes WHERE id = $1`

	node, err := scanWbsNode(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return node, err
}

func (r *WbsRepository) Create(ctx context.Context, node *models.WbsNode) error {
	node.Prepare()

	query := `
		INSERT INTO wbs_nodes (id, project_number, item_sequence, parent_id, code, name, description, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.pool.Exec(ctx, query,
		node.ID,
		node.ProjectNumber,
		node.ItemSequence,
		node.ParentID,
		node.Code,
		node.Name,
		node.Description,
		node.SortOrder,
	)
	return translate(err)
}

func (r *WbsRepository) Update(ctx context.Context, node *models.WbsNode) error {
	query := `
		UPDATE wbs_nodes SET
			parent_id = $2, code = $3, name = $4, description = $5, sort_order = $6
		WHERE id = $1
	`
	result, err := r.pool.Exec(ctx, query,
		node.ID,
		node.ParentID,
		node.Code,
		node.Name,
		node.Description,
		node.SortOrder,
	)
	if err != nil {
		return translate(err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound("wbs node %s", node.ID)
	}
	return nil
}

func (r *WbsRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM wbs_nodes WHERE id = $1`, id)
	if err != nil {
		return translate(err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound("wbs node %s", id)
	}
	return nil
}
