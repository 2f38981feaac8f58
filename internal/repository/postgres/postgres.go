package postgres

import (
	"database/sql"

	"bliss-balance-backend/internal/repository"

	_ "github.com/lib/pq"
)

type Store struct {
	db *sql.DB
	repository.AccountRepository
	repository.LedgerRepository
	repository.SettingsRepository
	repository.IdempotencyRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                    db,
		AccountRepository:     NewAccountRepository(db),
		LedgerRepository:      NewLedgerRepository(db),
		SettingsRepository:    NewSettingsRepository(db),
		IdempotencyRepository: NewIdempotencyRepository(db),
	}
}
