package http_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"bliss-balance-backend/internal/domain"
)

// MockDirectory
type MockDirectory struct {
	mock.Mock
}

func (m *MockDirectory) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}
func (m *MockDirectory) GetMerchantByCode(ctx context.Context, code string) (*domain.Account, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}
func (m *MockDirectory) ListAccounts(ctx context.Context, role domain.Role) ([]domain.Account, error) {
	args := m.Called(ctx, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}
func (m *MockDirectory) GetBalance(ctx context.Context, id string) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockDirectory) AdjustBalance(ctx context.Context, id string, delta int64) (int64, error) {
	args := m.Called(ctx, id, delta)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockDirectory) UpdateMerchantCommission(ctx context.Context, id string, ratePercent *float64) error {
	args := m.Called(ctx, id, ratePercent)
	return args.Error(0)
}
func (m *MockDirectory) DeactivateAccount(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockDirectory) RequireRole(ctx context.Context, accountID string, role domain.Role) (*domain.Account, error) {
	args := m.Called(ctx, accountID, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

// MockLedger
type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) RecordPurchase(ctx context.Context, clientID, merchantID string, grossAmount int64, description string) (*domain.Transaction, error) {
	args := m.Called(ctx, clientID, merchantID, grossAmount, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}
func (m *MockLedger) RecordRecharge(ctx context.Context, clientID string, amount int64, description string) (*domain.Transaction, error) {
	args := m.Called(ctx, clientID, amount, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}
func (m *MockLedger) RecordPayout(ctx context.Context, merchantID string, amount int64, description string) (*domain.Transaction, error) {
	args := m.Called(ctx, merchantID, amount, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}
func (m *MockLedger) GetTransactions(ctx context.Context, accountID string, page, pageSize int32) ([]domain.Transaction, int32, error) {
	args := m.Called(ctx, accountID, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int32), args.Error(2)
	}
	return args.Get(0).([]domain.Transaction), args.Get(1).(int32), args.Error(2)
}
func (m *MockLedger) SearchTransactions(ctx context.Context, filter domain.TransactionFilter, page, pageSize int32) ([]domain.Transaction, int32, error) {
	args := m.Called(ctx, filter, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int32), args.Error(2)
	}
	return args.Get(0).([]domain.Transaction), args.Get(1).(int32), args.Error(2)
}
func (m *MockLedger) GetCommissionPercent(ctx context.Context) (float64, error) {
	args := m.Called(ctx)
	return args.Get(0).(float64), args.Error(1)
}
func (m *MockLedger) SetCommissionPercent(ctx context.Context, percent float64) error {
	args := m.Called(ctx, percent)
	return args.Error(0)
}

// MockProvisioning
type MockProvisioning struct {
	mock.Mock
}

func (m *MockProvisioning) CreateClient(ctx context.Context, name, email, password string, initialBalance int64) (*domain.Account, error) {
	args := m.Called(ctx, name, email, password, initialBalance)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}
func (m *MockProvisioning) CreateMerchant(ctx context.Context, name, email, password, merchantCode string, commissionRate *float64) (*domain.Account, error) {
	args := m.Called(ctx, name, email, password, merchantCode, commissionRate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}
func (m *MockProvisioning) BootstrapAdmin(ctx context.Context, name, email, password string) (*domain.Account, error) {
	args := m.Called(ctx, name, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}
func (m *MockProvisioning) ResetAdmins(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// MockAuth
type MockAuth struct {
	mock.Mock
}

func (m *MockAuth) Login(ctx context.Context, email, password string) (*domain.Account, string, string, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.String(1), args.String(2), args.Error(3)
	}
	return args.Get(0).(*domain.Account), args.String(1), args.String(2), args.Error(3)
}
func (m *MockAuth) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	args := m.Called(ctx, refreshToken)
	return args.String(0), args.String(1), args.Error(2)
}

// MockIdempotencyRepo
type MockIdempotencyRepo struct {
	mock.Mock
}

func (m *MockIdempotencyRepo) Reserve(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}
func (m *MockIdempotencyRepo) Get(ctx context.Context, key string) (int, []byte, bool, error) {
	args := m.Called(ctx, key)
	if args.Get(1) == nil {
		return args.Int(0), nil, args.Bool(2), args.Error(3)
	}
	return args.Int(0), args.Get(1).([]byte), args.Bool(2), args.Error(3)
}
func (m *MockIdempotencyRepo) Save(ctx context.Context, key string, status int, body []byte) error {
	args := m.Called(ctx, key, status, body)
	return args.Error(0)
}
func (m *MockIdempotencyRepo) Release(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}
