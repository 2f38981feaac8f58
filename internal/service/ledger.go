package service

import (
	"context"
	"fmt"
	"time"

	"bliss-balance-backend/internal/domain"
	"bliss-balance-backend/internal/logger"
	"bliss-balance-backend/internal/repository"
	"bliss-balance-backend/internal/utils"
)

type ledgerEngine struct {
	accountRepo  repository.AccountRepository
	ledgerRepo   repository.LedgerRepository
	settingsRepo repository.SettingsRepository
	emailSvc     EmailService

	defaultCommissionPercent float64
	retryAttempts            int
	retryBackoff             time.Duration
}

func NewLedgerEngine(
	accountRepo repository.AccountRepository,
	ledgerRepo repository.LedgerRepository,
	settingsRepo repository.SettingsRepository,
	emailSvc EmailService,
	defaultCommissionPercent float64,
	retryAttempts int,
	retryBackoff time.Duration,
) LedgerEngine {
	return &ledgerEngine{
		accountRepo:              accountRepo,
		ledgerRepo:               ledgerRepo,
		settingsRepo:             settingsRepo,
		emailSvc:                 emailSvc,
		defaultCommissionPercent: defaultCommissionPercent,
		retryAttempts:            retryAttempts,
		retryBackoff:             retryBackoff,
	}
}

// withRetry re-runs an operation on ConcurrentUpdateConflict or
// StoreUnavailable with exponential backoff. Those are the only error
// classes that are safe to retry; everything else surfaces immediately.
func (s *ledgerEngine) withRetry(ctx context.Context, op func() error) error {
	backoff := s.retryBackoff
	var err error
	for attempt := 1; attempt <= s.retryAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}
		err = op()
		if err == nil || !domain.Retryable(err) {
			return err
		}
		logger.Warn("Retrying ledger operation", "attempt", attempt, "error", err)
	}
	return err
}

func (s *ledgerEngine) activeAccount(ctx context.Context, id string, role domain.Role) (*domain.Account, error) {
	account, err := s.accountRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if account.Role != role {
		return nil, domain.ErrInvalidRole
	}
	if !account.Active {
		return nil, domain.ErrAccountInactive
	}
	return account, nil
}

func (s *ledgerEngine) RecordPurchase(ctx context.Context, clientID, merchantID string, grossAmount int64, description string) (*domain.Transaction, error) {
	if grossAmount <= 0 {
		return nil, domain.ErrInvalidAmount
	}

	client, err := s.activeAccount(ctx, clientID, domain.RoleClient)
	if err != nil {
		return nil, err
	}
	merchant, err := s.activeAccount(ctx, merchantID, domain.RoleMerchant)
	if err != nil {
		return nil, err
	}

	// Commission is fixed at purchase time: the rate in force now decides
	// the split, and later rate changes never rewrite history.
	globalPercent, err := s.GetCommissionPercent(ctx)
	if err != nil {
		return nil, err
	}
	rate := utils.EffectiveRate(merchant, globalPercent)
	commission := utils.CommissionAmount(grossAmount, rate)

	t := &domain.Transaction{
		Type:             domain.TransactionTypePurchase,
		ActorID:          &client.ID,
		CounterpartyID:   &merchant.ID,
		GrossAmount:      grossAmount,
		CommissionAmount: commission,
		Description:      description,
	}
	if err := s.withRetry(ctx, func() error {
		return s.ledgerRepo.RecordPurchase(ctx, t)
	}); err != nil {
		return nil, fmt.Errorf("purchase failed: %w", err)
	}

	logger.Info("Purchase recorded",
		"transaction_id", t.ID, "client_id", client.ID, "merchant_id", merchant.ID,
		"gross", grossAmount, "commission", commission)

	if s.emailSvc != nil {
		_ = s.emailSvc.SendPurchaseReceipt(ctx, client.Email, client.DisplayName, merchant.DisplayName, grossAmount, commission)
	}
	return t, nil
}

func (s *ledgerEngine) RecordRecharge(ctx context.Context, clientID string, amount int64, description string) (*domain.Transaction, error) {
	if amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}

	client, err := s.activeAccount(ctx, clientID, domain.RoleClient)
	if err != nil {
		return nil, err
	}

	t := &domain.Transaction{
		Type:        domain.TransactionTypeRecharge,
		ActorID:     &client.ID,
		GrossAmount: amount,
		Description: description,
	}
	var newBalance int64
	if err := s.withRetry(ctx, func() error {
		var err error
		newBalance, err = s.ledgerRepo.RecordRecharge(ctx, t)
		return err
	}); err != nil {
		return nil, fmt.Errorf("recharge failed: %w", err)
	}

	logger.Info("Recharge recorded", "transaction_id", t.ID, "client_id", client.ID, "amount", amount, "balance", newBalance)

	// The receipt reports the balance the commit produced, not the one read
	// before it; a concurrent recharge would make the pre-read stale.
	if s.emailSvc != nil {
		_ = s.emailSvc.SendRechargeReceipt(ctx, client.Email, client.DisplayName, amount, newBalance)
	}
	return t, nil
}

func (s *ledgerEngine) RecordPayout(ctx context.Context, merchantID string, amount int64, description string) (*domain.Transaction, error) {
	if amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}

	merchant, err := s.activeAccount(ctx, merchantID, domain.RoleMerchant)
	if err != nil {
		return nil, err
	}

	t := &domain.Transaction{
		Type:           domain.TransactionTypePayout,
		CounterpartyID: &merchant.ID,
		GrossAmount:    amount,
		Description:    description,
	}
	if err := s.withRetry(ctx, func() error {
		return s.ledgerRepo.RecordPayout(ctx, t)
	}); err != nil {
		return nil, fmt.Errorf("payout failed: %w", err)
	}

	logger.Info("Payout recorded", "transaction_id", t.ID, "merchant_id", merchant.ID, "amount", amount)

	if s.emailSvc != nil {
		_ = s.emailSvc.SendPayoutNotice(ctx, merchant.Email, merchant.DisplayName, amount)
	}
	return t, nil
}

func (s *ledgerEngine) GetTransactions(ctx context.Context, accountID string, page, pageSize int32) ([]domain.Transaction, int32, error) {
	return s.ledgerRepo.ListByAccount(ctx, accountID, page, pageSize)
}

func (s *ledgerEngine) SearchTransactions(ctx context.Context, filter domain.TransactionFilter, page, pageSize int32) ([]domain.Transaction, int32, error) {
	return s.ledgerRepo.Search(ctx, filter, page, pageSize)
}

// GetCommissionPercent reads the admin-configured global rate at operation
// time, falling back to the configured default before any admin has set one.
func (s *ledgerEngine) GetCommissionPercent(ctx context.Context) (float64, error) {
	percent, ok, err := s.settingsRepo.GetCommissionPercent(ctx)
	if err != nil {
		return 0, err
	}
	if !ok {
		return s.defaultCommissionPercent, nil
	}
	return percent, nil
}

func (s *ledgerEngine) SetCommissionPercent(ctx context.Context, percent float64) error {
	if !utils.ValidCommissionRate(percent) {
		return fmt.Errorf("commission percent must be between 0 and 100")
	}
	return s.settingsRepo.SetCommissionPercent(ctx, percent)
}
