package service

import (
	"context"
	"fmt"

	"bliss-balance-backend/internal/domain"
	"bliss-balance-backend/internal/repository"
	"bliss-balance-backend/internal/utils"
)

type accountDirectory struct {
	accountRepo repository.AccountRepository
	ledgerRepo  repository.LedgerRepository
	emailSvc    EmailService
}

func NewAccountDirectory(
	accountRepo repository.AccountRepository,
	ledgerRepo repository.LedgerRepository,
	emailSvc EmailService,
) AccountDirectory {
	return &accountDirectory{
		accountRepo: accountRepo,
		ledgerRepo:  ledgerRepo,
		emailSvc:    emailSvc,
	}
}

func (s *accountDirectory) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return s.accountRepo.GetByID(ctx, id)
}

func (s *accountDirectory) GetMerchantByCode(ctx context.Context, code string) (*domain.Account, error) {
	merchant, err := s.accountRepo.GetByMerchantCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if !merchant.Active {
		return nil, domain.ErrAccountInactive
	}
	return merchant, nil
}

func (s *accountDirectory) ListAccounts(ctx context.Context, role domain.Role) ([]domain.Account, error) {
	return s.accountRepo.ListByRole(ctx, role)
}

func (s *accountDirectory) GetBalance(ctx context.Context, id string) (int64, error) {
	account, err := s.accountRepo.GetByID(ctx, id)
	if err != nil {
		return 0, err
	}
	return account.Balance, nil
}

// AdjustBalance applies a signed correction outside the three ledger
// operations. Admin accounts hold no balance, so the primitive refuses
// them.
func (s *accountDirectory) AdjustBalance(ctx context.Context, id string, delta int64) (int64, error) {
	account, err := s.accountRepo.GetByID(ctx, id)
	if err != nil {
		return 0, err
	}
	if account.IsAdmin() {
		return 0, domain.ErrInvalidRole
	}
	return s.accountRepo.AdjustBalance(ctx, id, delta)
}

func (s *accountDirectory) UpdateMerchantCommission(ctx context.Context, id string, ratePercent *float64) error {
	if ratePercent != nil && !utils.ValidCommissionRate(*ratePercent) {
		return fmt.Errorf("commission percent must be between 0 and 100")
	}
	merchant, err := s.accountRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !merchant.IsMerchant() {
		return domain.ErrInvalidRole
	}
	return s.accountRepo.UpdateCommissionRate(ctx, id, ratePercent)
}

// DeactivateAccount soft-removes an account. Accounts referenced by
// transaction history keep their rows so the audit trail stays resolvable.
func (s *accountDirectory) DeactivateAccount(ctx context.Context, id string) error {
	account, err := s.accountRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.accountRepo.Deactivate(ctx, id); err != nil {
		return err
	}
	if s.emailSvc != nil {
		_ = s.emailSvc.SendAccountDeactivatedNotice(ctx, account.Email, account.DisplayName)
	}
	return nil
}

// RequireRole is the stateless authorization check for privileged
// operations: it reads the stored role on every call instead of trusting
// session claims.
func (s *accountDirectory) RequireRole(ctx context.Context, accountID string, role domain.Role) (*domain.Account, error) {
	account, err := s.accountRepo.GetByID(ctx, accountID)
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
