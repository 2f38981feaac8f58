package postgres

import (
	"context"
	"database/sql"
	"errors"

	"bliss-balance-backend/internal/repository"
)

type idempotencyRepository struct {
	db *sql.DB
}

func NewIdempotencyRepository(db *sql.DB) repository.IdempotencyRepository {
	return &idempotencyRepository{db: db}
}

func (r *idempotencyRepository) Get(ctx context.Context, key string) (int, []byte, bool, error) {
	var status int
	var body []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT response_status, response_body FROM idempotency_keys WHERE key_id = $1`,
		key).Scan(&status, &body)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil, false, nil
	}
	if err != nil {
		return 0, nil, false, mapError(err)
	}
	return status, body, true, nil
}

// Reserve inserts a placeholder row with status zero. The primary key makes
// the insert atomic: of two racing requests exactly one sees a row count of
// one and wins the reservation.
func (r *idempotencyRepository) Reserve(ctx context.Context, key string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO idempotency_keys (key_id, response_status, response_body) VALUES ($1, 0, ''::bytea)
		 ON CONFLICT (key_id) DO NOTHING`,
		key)
	if err != nil {
		return false, mapError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, mapError(err)
	}
	return n == 1, nil
}

func (r *idempotencyRepository) Save(ctx context.Context, key string, status int, body []byte) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE idempotency_keys SET response_status = $2, response_body = $3 WHERE key_id = $1`,
		key, status, body)
	return mapError(err)
}

// Release drops a reservation whose handler did not produce a storable
// response. Filled rows are left alone.
func (r *idempotencyRepository) Release(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM idempotency_keys WHERE key_id = $1 AND response_status = 0`,
		key)
	return mapError(err)
}
