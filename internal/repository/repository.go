package repository

import (
	"context"
	"time"

	"bliss-balance-backend/internal/domain"
)

type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	GetByMerchantCode(ctx context.Context, code string) (*domain.Account, error)
	ListByRole(ctx context.Context, role domain.Role) ([]domain.Account, error)
	CountByRole(ctx context.Context, role domain.Role) (int32, error)
	UpdateCommissionRate(ctx context.Context, id string, rate *float64) error
	UpdateDisplayName(ctx context.Context, id, displayName string) error

	// AdjustBalance applies a signed delta as a single conditional update;
	// the store rejects any change that would drive the balance negative.
	AdjustBalance(ctx context.Context, id string, delta int64) (int64, error)

	// Deactivate soft-removes an account; Delete removes the row and is
	// refused while transaction history references it.
	Deactivate(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

// LedgerRepository owns the transaction log and every balance mutation the
// ledger engine performs. The three record operations are atomic: balance
// updates and the log append commit together or not at all.
type LedgerRepository interface {
	RecordPurchase(ctx context.Context, tx *domain.Transaction) error

	// RecordRecharge credits the client and returns the balance the commit
	// left behind, so callers report the committed figure rather than a
	// value read before the transaction.
	RecordRecharge(ctx context.Context, tx *domain.Transaction) (int64, error)
	RecordPayout(ctx context.Context, tx *domain.Transaction) error

	ListByAccount(ctx context.Context, accountID string, page, pageSize int32) ([]domain.Transaction, int32, error)
	Search(ctx context.Context, filter domain.TransactionFilter, page, pageSize int32) ([]domain.Transaction, int32, error)

	// DerivedBalance folds the log into the balance an account should hold.
	DerivedBalance(ctx context.Context, accountID string) (int64, error)
	SummarizeByType(ctx context.Context, from, to time.Time) ([]domain.TypeSummary, error)
	HasTransactions(ctx context.Context, accountID string) (bool, error)
}

type SettingsRepository interface {
	// GetCommissionPercent returns the global default commission rate; the
	// second value is false when no administrator has set one yet.
	GetCommissionPercent(ctx context.Context) (float64, bool, error)
	SetCommissionPercent(ctx context.Context, percent float64) error
}

type IdempotencyRepository interface {
	// Reserve claims a key before the guarded handler runs. It returns false
	// when another request already holds or completed the key, so at most one
	// request under a given key ever executes.
	Reserve(ctx context.Context, key string) (bool, error)

	// Get reports the stored response for a key. A reserved key whose handler
	// has not finished yet is returned with status zero.
	Get(ctx context.Context, key string) (status int, body []byte, found bool, err error)

	// Save fills a reserved key with the response to replay; Release gives a
	// reservation back after a failed attempt so the caller can retry.
	Save(ctx context.Context, key string, status int, body []byte) error
	Release(ctx context.Context, key string) error
}
