package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"bliss-balance-backend/internal/domain"
	"bliss-balance-backend/internal/repository"
)

type accountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) repository.AccountRepository {
	return &accountRepository{db: db}
}

const accountColumns = `id, role, display_name, email, balance, merchant_code, commission_rate, active, created_on`

func scanAccount(row interface{ Scan(...any) error }) (*domain.Account, error) {
	var a domain.Account
	var code sql.NullString
	var rate sql.NullFloat64
	err := row.Scan(&a.ID, &a.Role, &a.DisplayName, &a.Email, &a.Balance, &code, &rate, &a.Active, &a.CreatedOn)
	if err != nil {
		return nil, err
	}
	if code.Valid {
		a.MerchantCode = code.String
	}
	if rate.Valid {
		a.CommissionRate = &rate.Float64
	}
	return &a, nil
}

func (r *accountRepository) Create(ctx context.Context, account *domain.Account) error {
	query := `INSERT INTO accounts (id, role, display_name, email, balance, merchant_code, commission_rate, active, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE, $8) RETURNING created_on`
	var code any
	if account.MerchantCode != "" {
		code = account.MerchantCode
	}
	var rate any
	if account.CommissionRate != nil {
		rate = *account.CommissionRate
	}
	now := time.Now().UTC()
	err := r.db.QueryRowContext(ctx, query,
		account.ID, account.Role, account.DisplayName, account.Email,
		account.Balance, code, rate, now).Scan(&account.CreatedOn)
	if err != nil {
		return mapError(err)
	}
	account.Active = true
	return nil
}

func (r *accountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	a, err := scanAccount(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError(err)
	}
	return a, nil
}

func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1`
	a, err := scanAccount(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		return nil, mapError(err)
	}
	return a, nil
}

func (r *accountRepository) GetByMerchantCode(ctx context.Context, code string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE merchant_code = $1`
	a, err := scanAccount(r.db.QueryRowContext(ctx, query, code))
	if err != nil {
		return nil, mapError(err)
	}
	return a, nil
}

func (r *accountRepository) ListByRole(ctx context.Context, role domain.Role) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE role = $1 ORDER BY created_on DESC`
	rows, err := r.db.QueryContext(ctx, query, role)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, mapError(err)
		}
		accounts = append(accounts, *a)
	}
	return accounts, mapError(rows.Err())
}

func (r *accountRepository) CountByRole(ctx context.Context, role domain.Role) (int32, error) {
	var count int32
	err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM accounts WHERE role = $1`, role).Scan(&count)
	return count, mapError(err)
}

func (r *accountRepository) UpdateCommissionRate(ctx context.Context, id string, rate *float64) error {
	var val any
	if rate != nil {
		val = *rate
	}
	res, err := r.db.ExecContext(ctx, `UPDATE accounts SET commission_rate = $1 WHERE id = $2 AND role = 'merchant'`, val, id)
	if err != nil {
		return mapError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *accountRepository) UpdateDisplayName(ctx context.Context, id, displayName string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE accounts SET display_name = $1 WHERE id = $2`, displayName, id)
	if err != nil {
		return mapError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// AdjustBalance is the directory's server-side increment primitive. The
// balance guard sits in the WHERE clause, so a losing race can never drive
// the stored balance negative.
func (r *accountRepository) AdjustBalance(ctx context.Context, id string, delta int64) (int64, error) {
	query := `UPDATE accounts SET balance = balance + $1
	          WHERE id = $2 AND balance + $1 >= 0 RETURNING balance`
	var balance int64
	err := r.db.QueryRowContext(ctx, query, delta, id).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		// Distinguish a missing account from a rejected debit.
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return 0, getErr
		}
		return 0, domain.ErrInsufficientFunds
	}
	if err != nil {
		return 0, mapError(err)
	}
	return balance, nil
}

func (r *accountRepository) Deactivate(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE accounts SET active = FALSE WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *accountRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
