package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"jobcard_portal/internal/models"
)

type MemberRepository struct {
	pool *pgxpool.Pool
}

func NewMemberRepository(pool *pgxpool.Pool) *MemberRepository {
	return &MemberRepository{pool: pool}
}

// GetRole returns models.RoleNone when userID has no membership row.
func (r *MemberRepository) GetRole(ctx context.Context, projectNumber string, userID uuid.UUID) (models.Role, error) {
	query := `SELECT role FROM project_members WHERE project_number = $1 AND user_id = $2`

	var role string
	err := r.pool.QueryRow(ctx, query, projectNumber, userID).Scan(&role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.RoleNone, nil
		}
		return models.RoleNone, err
	}
	return models.Role(role), nil
}

func (r *MemberRepository) ListByProject(ctx context.Context, projectNumber string) ([]models.ProjectMember, error) {
	return r.list(ctx, `WHERE m.project_number = $1`, projectNumber)
}

func (r *MemberRepository) ListAll(ctx context.Context) ([]models.ProjectMember, error) {
	return r.list(ctx, ``)
}

func (r *MemberRepository) list(ctx context.Context, where string, args ...any) ([]models.ProjectMember, error) {
	query := `
		SELECT m.project_number, m.user_id, m.role, u.email, u.display_name
		FROM project_members m
		JOIN users u ON u.id = m.user_id
		` + where + `
		ORDER BY m.project_number, u.email
	`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []models.ProjectMember
	for rows.Next() {
		var member models.ProjectMember
		var role string
		if err := rows.Scan(&member.ProjectNumber, &member.UserID, &role, &member.Email, &member.DisplayName); err != nil {
			return nil, err
		}
		member.Role = models.Role(role)
		members = append(members, member)
	}
	return members, rows.Err()
}

func (r *MemberRepository) Upsert(ctx context.Context, member models.ProjectMember) error {
	query := `
		INSERT INTO project_members (project_number, user_id, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (project_number, user_id) DO UPDATE SET role = EXCLUDED.role
	`
	_, err := r.pool.Exec(ctx, query, member.ProjectNumber, member.UserID, string(member.Role))
	return translate(err)
}

func (r *MemberRepository) Delete(ctx context.Context, projectNumber string, userID uuid.UUID) error {
	query := `DELETE FROM project_members WHERE project_number = $1 AND user_id = $2`
	_, err := r.pool.Exec(ctx, query, projectNumber, userID)
	return err
}
