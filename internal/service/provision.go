package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bliss-balance-backend/internal/domain"
	"bliss-balance-backend/internal/identity"
	"bliss-balance-backend/internal/logger"
	"bliss-balance-backend/internal/repository"
)

const minPasswordLength = 6

type provisioningService struct {
	accountRepo repository.AccountRepository
	ledgerRepo  repository.LedgerRepository
	idp         identity.Provider
	emailDomain string
}

func NewProvisioningService(
	accountRepo repository.AccountRepository,
	ledgerRepo repository.LedgerRepository,
	idp identity.Provider,
	emailDomain string,
) ProvisioningService {
	return &provisioningService{
		accountRepo: accountRepo,
		ledgerRepo:  ledgerRepo,
		idp:         idp,
		emailDomain: emailDomain,
	}
}

func validateCredentials(name, email, password string) error {
	if name == "" || email == "" || password == "" {
		return fmt.Errorf("name, email and password are required")
	}
	if len(password) < minPasswordLength {
		return fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}
	return nil
}

// createAccount runs the provisioning saga: identity first, account record
// second. When the account insert fails the identity is deleted again so no
// orphaned credentials survive a partial failure.
func (s *provisioningService) createAccount(ctx context.Context, account *domain.Account, email, password string) (*domain.Account, error) {
	uid, err := s.idp.CreateIdentity(ctx, email, password, account.DisplayName)
	if err != nil {
		if errors.Is(err, identity.ErrIdentityExists) {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create identity: %w", err)
	}

	account.ID = uid
	account.Email = email
	if err := s.accountRepo.Create(ctx, account); err != nil {
		logger.Warn("Account creation failed, compensating identity", "uid", uid, "error", err)
		if delErr := s.idp.DeleteIdentity(ctx, uid); delErr != nil {
			logger.Error("Failed to delete orphaned identity", "uid", uid, "error", delErr)
		}
		return nil, err
	}
	return account, nil
}

func (s *provisioningService) CreateClient(ctx context.Context, name, email, password string, initialBalance int64) (*domain.Account, error) {
	if err := validateCredentials(name, email, password); err != nil {
		return nil, err
	}
	if !strings.HasSuffix(email, s.emailDomain) {
		return nil, domain.ErrInvalidDomain
	}
	if initialBalance < 0 {
		return nil, domain.ErrInvalidAmount
	}

	account, err := s.createAccount(ctx, &domain.Account{
		Role:        domain.RoleClient,
		DisplayName: name,
	}, email, password)
	if err != nil {
		return nil, err
	}

	// Book the opening balance as a recharge so the stored balance stays
	// derivable from the transaction log.
	if initialBalance > 0 {
		t := &domain.Transaction{
			Type:        domain.TransactionTypeRecharge,
			ActorID:     &account.ID,
			GrossAmount: initialBalance,
			Description: "Initial balance",
		}
		newBalance, err := s.ledgerRepo.RecordRecharge(ctx, t)
		if err != nil {
			return nil, fmt.Errorf("failed to record initial balance: %w", err)
		}
		account.Balance = newBalance
	}

	logger.Info("Client account created", "account_id", account.ID, "initial_balance", initialBalance)
	return account, nil
}

func isFiveDigits(code string) bool {
	if len(code) != 5 {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (s *provisioningService) CreateMerchant(ctx context.Context, name, email, password, merchantCode string, commissionRate *float64) (*domain.Account, error) {
	if err := validateCredentials(name, email, password); err != nil {
		return nil, err
	}
	if !isFiveDigits(merchantCode) {
		return nil, fmt.Errorf("merchant code must be exactly 5 digits")
	}
	if commissionRate != nil && (*commissionRate < 0 || *commissionRate > 100) {
		return nil, fmt.Errorf("commission percent must be between 0 and 100")
	}

	// Pre-check keeps the saga from creating an identity doomed to be
	// compensated; the unique constraint still decides races.
	if _, err := s.accountRepo.GetByMerchantCode(ctx, merchantCode); err == nil {
		return nil, domain.ErrDuplicateCode
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	account, err := s.createAccount(ctx, &domain.Account{
		Role:           domain.RoleMerchant,
		DisplayName:    name,
		MerchantCode:   merchantCode,
		CommissionRate: commissionRate,
	}, email, password)
	if err != nil {
		return nil, err
	}

	logger.Info("Merchant account created", "account_id", account.ID, "merchant_code", merchantCode)
	return account, nil
}

// BootstrapAdmin creates the first administrator. It is the only admin
// creation path and refuses to run once any admin exists.
func (s *provisioningService) BootstrapAdmin(ctx context.Context, name, email, password string) (*domain.Account, error) {
	if err := validateCredentials(name, email, password); err != nil {
		return nil, err
	}

	count, err := s.accountRepo.CountByRole(ctx, domain.RoleAdmin)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, domain.ErrAdminAlreadyExists
	}

	account, err := s.createAccount(ctx, &domain.Account{
		Role:        domain.RoleAdmin,
		DisplayName: name,
	}, email, password)
	if err != nil {
		return nil, err
	}

	logger.Info("Administrator bootstrapped", "account_id", account.ID)
	return account, nil
}

// ResetAdmins removes every administrator account and identity so
// BootstrapAdmin becomes available again. Identity deletions continue past
// individual failures; a half-deleted admin set must not block the reset.
func (s *provisioningService) ResetAdmins(ctx context.Context) (int, error) {
	admins, err := s.accountRepo.ListByRole(ctx, domain.RoleAdmin)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, admin := range admins {
		// Hard deletes are refused for any account the transaction log still
		// references. Admins never transact, so a referenced admin row means
		// corrupted data that a reset must not paper over.
		referenced, err := s.ledgerRepo.HasTransactions(ctx, admin.ID)
		if err != nil {
			return removed, err
		}
		if referenced {
			return removed, fmt.Errorf("admin account %s has transaction history: %w", admin.ID, domain.ErrAccountReferenced)
		}
		if err := s.accountRepo.Delete(ctx, admin.ID); err != nil {
			return removed, fmt.Errorf("failed to delete admin account %s: %w", admin.ID, err)
		}
		if err := s.idp.DeleteIdentity(ctx, admin.ID); err != nil {
			logger.Error("Failed to delete admin identity, continuing", "uid", admin.ID, "error", err)
		}
		removed++
	}

	logger.Info("Administrator reset completed", "removed", removed)
	return removed, nil
}
