package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/kahvecikaan/product-catalog/internal/domain"
)

// SQLSTATE classes the store maps onto domain errors.
const (
	classDataException       = "22"
	classIntegrityConstraint = "23"
)

// translate maps PostgreSQL rejections of a write onto domain errors and
// leaves every other error untouched.
func translate(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch {
	case strings.HasPrefix(pgErr.Code, classIntegrityConstraint):
		return fmt.Errorf("%w: %w", domain.ErrConstraintViolation, err)
	case strings.HasPrefix(pgErr.Code, classDataException):
		return fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	default:
		return err
	}
}
