package repositories

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"jobcard_portal/internal/apperr"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// translate turns unique violations into apperr.ErrDuplicate, foreign-key
// violations into apperr.ErrConflict and passes everything else through.
func translate(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%s already exists: %w", pgErr.TableName, apperr.ErrDuplicate)
		case pgForeignKeyViolation:
			return fmt.Errorf("%s is still referenced or missing a reference (%s): %w",
				pgErr.TableName, pgErr.ConstraintName, apperr.ErrConflict)
		}
	}
	return err
}
