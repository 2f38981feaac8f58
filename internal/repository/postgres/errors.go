package postgres

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"bliss-balance-backend/internal/domain"
)

// mapError translates driver-level failures into the domain taxonomy so
// services can decide on retries without knowing about Postgres.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	if errors.Is(err, driver.ErrBadConn) {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "40001", "40P01": // serialization_failure, deadlock_detected
			return fmt.Errorf("%w: %v", domain.ErrConcurrentUpdate, err)
		case "23505": // unique_violation
			switch pqErr.Constraint {
			case "accounts_merchant_code_key":
				return domain.ErrDuplicateCode
			case "accounts_email_key":
				return domain.ErrDuplicateEmail
			}
			return err
		case "23503": // foreign_key_violation
			return domain.ErrAccountReferenced
		}
		switch pqErr.Code.Class() {
		case "08", "57": // connection exceptions, operator intervention
			return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
		}
	}
	return err
}
