package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"bliss-balance-backend/internal/domain"
	"bliss-balance-backend/internal/service"
)

func activeClient(id string, balance int64) *domain.Account {
	return &domain.Account{
		ID:          id,
		Role:        domain.RoleClient,
		DisplayName: "Client",
		Email:       "client@colegiorefous.edu.co",
		Balance:     balance,
		Active:      true,
	}
}

func activeMerchant(id string) *domain.Account {
	return &domain.Account{
		ID:           id,
		Role:         domain.RoleMerchant,
		DisplayName:  "Cafeteria",
		Email:        "cafeteria@colegiorefous.edu.co",
		Active:       true,
		MerchantCode: "12345",
	}
}

func newEngine(accountRepo *MockAccountRepo, ledgerRepo *MockLedgerRepo, settingsRepo *MockSettingsRepo, emailSvc *MockEmailService) service.LedgerEngine {
	return service.NewLedgerEngine(accountRepo, ledgerRepo, settingsRepo, emailSvc, 5, 3, time.Millisecond)
}

func TestLedgerEngine_RecordPurchase(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		accountRepo := new(MockAccountRepo)
		ledgerRepo := new(MockLedgerRepo)
		settingsRepo := new(MockSettingsRepo)
		emailSvc := new(MockEmailService)
		engine := newEngine(accountRepo, ledgerRepo, settingsRepo, emailSvc)

		accountRepo.On("GetByID", ctx, "client-1").Return(activeClient("client-1", 8000), nil)
		accountRepo.On("GetByID", ctx, "merchant-1").Return(activeMerchant("merchant-1"), nil)
		settingsRepo.On("GetCommissionPercent", ctx).Return(5.0, true, nil)
		ledgerRepo.On("RecordPurchase", ctx, mock.AnythingOfType("*domain.Transaction")).Return(nil)
		emailSvc.On("SendPurchaseReceipt", ctx, "client@colegiorefous.edu.co", "Client", "Cafeteria", int64(5000), int64(250)).Return(nil)

		tx, err := engine.RecordPurchase(ctx, "client-1", "merchant-1", 5000, "Lunch")
		assert.NoError(t, err)
		assert.Equal(t, int64(250), tx.CommissionAmount)
		assert.Equal(t, domain.TransactionTypePurchase, tx.Type)
		ledgerRepo.AssertExpectations(t)
		emailSvc.AssertExpectations(t)
	})

	t.Run("MerchantOverrideRate", func(t *testing.T) {
		accountRepo := new(MockAccountRepo)
		ledgerRepo := new(MockLedgerRepo)
		settingsRepo := new(MockSettingsRepo)
		emailSvc := new(MockEmailService)
		engine := newEngine(accountRepo, ledgerRepo, settingsRepo, emailSvc)

		merchant := activeMerchant("merchant-1")
		rate := 2.0
		merchant.CommissionRate = &rate

		accountRepo.On("GetByID", ctx, "client-1").Return(activeClient("client-1", 8000), nil)
		accountRepo.On("GetByID", ctx, "merchant-1").Return(merchant, nil)
		settingsRepo.On("GetCommissionPercent", ctx).Return(5.0, true, nil)
		ledgerRepo.On("RecordPurchase", ctx, mock.AnythingOfType("*domain.Transaction")).Return(nil)
		emailSvc.On("SendPurchaseReceipt", ctx, mock.Anything, mock.Anything, mock.Anything, int64(5000), int64(100)).Return(nil)

		tx, err := engine.RecordPurchase(ctx, "client-1", "merchant-1", 5000, "")
		assert.NoError(t, err)
		assert.Equal(t, int64(100), tx.CommissionAmount)
	})

	t.Run("InvalidAmount", func(t *testing.T) {
		engine := newEngine(new(MockAccountRepo), new(MockLedgerRepo), new(MockSettingsRepo), new(MockEmailService))

		_, err := engine.RecordPurchase(ctx, "client-1", "merchant-1", 0, "")
		assert.ErrorIs(t, err, domain.ErrInvalidAmount)

		_, err = engine.RecordPurchase(ctx, "client-1", "merchant-1", -100, "")
		assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	})

	t.Run("WrongRole", func(t *testing.T) {
		accountRepo := new(MockAccountRepo)
		engine := newEngine(accountRepo, new(MockLedgerRepo), new(MockSettingsRepo), new(MockEmailService))

		// A merchant cannot stand in as the paying client.
		accountRepo.On("GetByID", ctx, "merchant-1").Return(activeMerchant("merchant-1"), nil)

		_, err := engine.RecordPurchase(ctx, "merchant-1", "merchant-1", 100, "")
		assert.ErrorIs(t, err, domain.ErrInvalidRole)
	})

	t.Run("InactiveClient", func(t *testing.T) {
		accountRepo := new(MockAccountRepo)
		engine := newEngine(accountRepo, new(MockLedgerRepo), new(MockSettingsRepo), new(MockEmailService))

		client := activeClient("client-1", 8000)
		client.Active = false
		accountRepo.On("GetByID", ctx, "client-1").Return(client, nil)

		_, err := engine.RecordPurchase(ctx, "client-1", "merchant-1", 100, "")
		assert.ErrorIs(t, err, domain.ErrAccountInactive)
	})

	t.Run("InsufficientFundsNotRetried", func(t *testing.T) {
		accountRepo := new(MockAccountRepo)
		ledgerRepo := new(MockLedgerRepo)
		settingsRepo := new(MockSettingsRepo)
		engine := newEngine(accountRepo, ledgerRepo, settingsRepo, new(MockEmailService))

		accountRepo.On("GetByID", ctx, "client-1").Return(activeClient("client-1", 100), nil)
		accountRepo.On("GetByID", ctx, "merchant-1").Return(activeMerchant("merchant-1"), nil)
		settingsRepo.On("GetCommissionPercent", ctx).Return(5.0, true, nil)
		ledgerRepo.On("RecordPurchase", ctx, mock.AnythingOfType("*domain.Transaction")).Return(domain.ErrInsufficientFunds).Once()

		_, err := engine.RecordPurchase(ctx, "client-1", "merchant-1", 5000, "")
		assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
		ledgerRepo.AssertExpectations(t)
	})

	t.Run("ConflictRetriedThenSucceeds", func(t *testing.T) {
		accountRepo := new(MockAccountRepo)
		ledgerRepo := new(MockLedgerRepo)
		settingsRepo := new(MockSettingsRepo)
		emailSvc := new(MockEmailService)
		engine := newEngine(accountRepo, ledgerRepo, settingsRepo, emailSvc)

		accountRepo.On("GetByID", ctx, "client-1").Return(activeClient("client-1", 8000), nil)
		accountRepo.On("GetByID", ctx, "merchant-1").Return(activeMerchant("merchant-1"), nil)
		settingsRepo.On("GetCommissionPercent", ctx).Return(5.0, true, nil)
		ledgerRepo.On("RecordPurchase", ctx, mock.AnythingOfType("*domain.Transaction")).Return(domain.ErrConcurrentUpdate).Twice()
		ledgerRepo.On("RecordPurchase", ctx, mock.AnythingOfType("*domain.Transaction")).Return(nil).Once()
		emailSvc.On("SendPurchaseReceipt", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

		_, err := engine.RecordPurchase(ctx, "client-1", "merchant-1", 5000, "")
		assert.NoError(t, err)
		ledgerRepo.AssertExpectations(t)
	})

	t.Run("ConflictRetriesExhausted", func(t *testing.T) {
		accountRepo := new(MockAccountRepo)
		ledgerRepo := new(MockLedgerRepo)
		settingsRepo := new(MockSettingsRepo)
		engine := newEngine(accountRepo, ledgerRepo, settingsRepo, new(MockEmailService))

		accountRepo.On("GetByID", ctx, "client-1").Return(activeClient("client-1", 8000), nil)
		accountRepo.On("GetByID", ctx, "merchant-1").Return(activeMerchant("merchant-1"), nil)
		settingsRepo.On("GetCommissionPercent", ctx).Return(5.0, true, nil)
		ledgerRepo.On("RecordPurchase", ctx, mock.AnythingOfType("*domain.Transaction")).Return(domain.ErrConcurrentUpdate).Times(3)

		_, err := engine.RecordPurchase(ctx, "client-1", "merchant-1", 5000, "")
		assert.ErrorIs(t, err, domain.ErrConcurrentUpdate)
		ledgerRepo.AssertExpectations(t)
	})
}

func TestLedgerEngine_RecordRecharge(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		accountRepo := new(MockAccountRepo)
		ledgerRepo := new(MockLedgerRepo)
		emailSvc := new(MockEmailService)
		engine := newEngine(accountRepo, ledgerRepo, new(MockSettingsRepo), emailSvc)

		accountRepo.On("GetByID", ctx, "client-1").Return(activeClient("client-1", 1000), nil)
		ledgerRepo.On("RecordRecharge", ctx, mock.AnythingOfType("*domain.Transaction")).Return(int64(11000), nil)
		emailSvc.On("SendRechargeReceipt", ctx, "client@colegiorefous.edu.co", "Client", int64(10000), int64(11000)).Return(nil)

		tx, err := engine.RecordRecharge(ctx, "client-1", 10000, "Top-up")
		assert.NoError(t, err)
		assert.Equal(t, int64(0), tx.CommissionAmount)
		assert.Equal(t, domain.TransactionTypeRecharge, tx.Type)
		emailSvc.AssertExpectations(t)
	})

	t.Run("ReceiptReportsCommittedBalance", func(t *testing.T) {
		accountRepo := new(MockAccountRepo)
		ledgerRepo := new(MockLedgerRepo)
		emailSvc := new(MockEmailService)
		engine := newEngine(accountRepo, ledgerRepo, new(MockSettingsRepo), emailSvc)

		// The balance read before the transaction is 1000, but a concurrent
		// recharge lands first and the commit leaves 14000 behind. The
		// receipt must carry 14000, not the stale 11000.
		accountRepo.On("GetByID", ctx, "client-1").Return(activeClient("client-1", 1000), nil)
		ledgerRepo.On("RecordRecharge", ctx, mock.AnythingOfType("*domain.Transaction")).Return(int64(14000), nil)
		emailSvc.On("SendRechargeReceipt", ctx, "client@colegiorefous.edu.co", "Client", int64(10000), int64(14000)).Return(nil)

		_, err := engine.RecordRecharge(ctx, "client-1", 10000, "Top-up")
		assert.NoError(t, err)
		emailSvc.AssertExpectations(t)
	})

	t.Run("RejectsMerchant", func(t *testing.T) {
		accountRepo := new(MockAccountRepo)
		engine := newEngine(accountRepo, new(MockLedgerRepo), new(MockSettingsRepo), new(MockEmailService))

		accountRepo.On("GetByID", ctx, "merchant-1").Return(activeMerchant("merchant-1"), nil)

		_, err := engine.RecordRecharge(ctx, "merchant-1", 10000, "")
		assert.ErrorIs(t, err, domain.ErrInvalidRole)
	})
}

func TestLedgerEngine_RecordPayout(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		accountRepo := new(MockAccountRepo)
		ledgerRepo := new(MockLedgerRepo)
		emailSvc := new(MockEmailService)
		engine := newEngine(accountRepo, ledgerRepo, new(MockSettingsRepo), emailSvc)

		accountRepo.On("GetByID", ctx, "merchant-1").Return(activeMerchant("merchant-1"), nil)
		ledgerRepo.On("RecordPayout", ctx, mock.AnythingOfType("*domain.Transaction")).Return(nil)
		emailSvc.On("SendPayoutNotice", ctx, "cafeteria@colegiorefous.edu.co", "Cafeteria", int64(3000)).Return(nil)

		tx, err := engine.RecordPayout(ctx, "merchant-1", 3000, "Weekly payout")
		assert.NoError(t, err)
		assert.Equal(t, domain.TransactionTypePayout, tx.Type)
		assert.Nil(t, tx.ActorID)
	})

	t.Run("InsufficientFunds", func(t *testing.T) {
		accountRepo := new(MockAccountRepo)
		ledgerRepo := new(MockLedgerRepo)
		engine := newEngine(accountRepo, ledgerRepo, new(MockSettingsRepo), new(MockEmailService))

		accountRepo.On("GetByID", ctx, "merchant-1").Return(activeMerchant("merchant-1"), nil)
		ledgerRepo.On("RecordPayout", ctx, mock.AnythingOfType("*domain.Transaction")).Return(domain.ErrInsufficientFunds).Once()

		_, err := engine.RecordPayout(ctx, "merchant-1", 3000, "")
		assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
		ledgerRepo.AssertExpectations(t)
	})
}

func TestLedgerEngine_CommissionPercent(t *testing.T) {
	ctx := context.Background()

	t.Run("FallsBackToDefault", func(t *testing.T) {
		settingsRepo := new(MockSettingsRepo)
		engine := newEngine(new(MockAccountRepo), new(MockLedgerRepo), settingsRepo, new(MockEmailService))

		settingsRepo.On("GetCommissionPercent", ctx).Return(0.0, false, nil)

		percent, err := engine.GetCommissionPercent(ctx)
		assert.NoError(t, err)
		assert.Equal(t, 5.0, percent)
	})

	t.Run("SetRejectsOutOfRange", func(t *testing.T) {
		engine := newEngine(new(MockAccountRepo), new(MockLedgerRepo), new(MockSettingsRepo), new(MockEmailService))

		assert.Error(t, engine.SetCommissionPercent(ctx, -1))
		assert.Error(t, engine.SetCommissionPercent(ctx, 101))
	})

	t.Run("SetPersists", func(t *testing.T) {
		settingsRepo := new(MockSettingsRepo)
		engine := newEngine(new(MockAccountRepo), new(MockLedgerRepo), settingsRepo, new(MockEmailService))

		settingsRepo.On("SetCommissionPercent", ctx, 7.5).Return(nil)

		assert.NoError(t, engine.SetCommissionPercent(ctx, 7.5))
		settingsRepo.AssertExpectations(t)
	})
}
