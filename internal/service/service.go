package service

import (
	"context"

	"bliss-balance-backend/internal/domain"
)

// LedgerEngine is the single authority for balance-affecting operations.
// Every money movement validates, applies both balance updates and the log
// append atomically, and never partially commits.
type LedgerEngine interface {
	RecordPurchase(ctx context.Context, clientID, merchantID string, grossAmount int64, description string) (*domain.Transaction, error)
	RecordRecharge(ctx context.Context, clientID string, amount int64, description string) (*domain.Transaction, error)
	RecordPayout(ctx context.Context, merchantID string, amount int64, description string) (*domain.Transaction, error)

	GetTransactions(ctx context.Context, accountID string, page, pageSize int32) ([]domain.Transaction, int32, error)
	SearchTransactions(ctx context.Context, filter domain.TransactionFilter, page, pageSize int32) ([]domain.Transaction, int32, error)

	GetCommissionPercent(ctx context.Context) (float64, error)
	SetCommissionPercent(ctx context.Context, percent float64) error
}

// AccountDirectory resolves accounts and enforces identity invariants.
type AccountDirectory interface {
	GetAccount(ctx context.Context, id string) (*domain.Account, error)
	GetMerchantByCode(ctx context.Context, code string) (*domain.Account, error)
	ListAccounts(ctx context.Context, role domain.Role) ([]domain.Account, error)
	GetBalance(ctx context.Context, id string) (int64, error)
	AdjustBalance(ctx context.Context, id string, delta int64) (int64, error)
	UpdateMerchantCommission(ctx context.Context, id string, ratePercent *float64) error
	DeactivateAccount(ctx context.Context, id string) error

	// RequireRole re-checks the stored role on every privileged call rather
	// than trusting a cached claim.
	RequireRole(ctx context.Context, accountID string, role domain.Role) (*domain.Account, error)
}

// ProvisioningService creates accounts saga-style: identity first, account
// record second, with the identity deleted again when a later step fails.
type ProvisioningService interface {
	CreateClient(ctx context.Context, name, email, password string, initialBalance int64) (*domain.Account, error)
	CreateMerchant(ctx context.Context, name, email, password, merchantCode string, commissionRate *float64) (*domain.Account, error)
	BootstrapAdmin(ctx context.Context, name, email, password string) (*domain.Account, error)
	ResetAdmins(ctx context.Context) (int, error)
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (*domain.Account, string, string, error) // account, access, refresh
	Refresh(ctx context.Context, refreshToken string) (string, string, error)
}

type EmailService interface {
	SendPurchaseReceipt(ctx context.Context, email, name, merchantName string, gross, commission int64) error
	SendRechargeReceipt(ctx context.Context, email, name string, amount, newBalance int64) error
	SendPayoutNotice(ctx context.Context, email, name string, amount int64) error
	SendAccountDeactivatedNotice(ctx context.Context, email, name string) error
	SendAdminAlert(ctx context.Context, subject, message string) error
}
