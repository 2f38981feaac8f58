package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"bliss-balance-backend/internal/domain"
	"bliss-balance-backend/internal/repository"
)

type ledgerRepository struct {
	db *sql.DB
}

func NewLedgerRepository(db *sql.DB) repository.LedgerRepository {
	return &ledgerRepository{db: db}
}

const insertTransaction = `INSERT INTO transactions (id, type, actor_id, counterparty_id, gross_amount, commission_amount, description, created_on)
          VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING created_on`

// lockBalances reads the given account rows FOR UPDATE in deterministic id
// order. Consistent ordering keeps concurrent purchases that touch the same
// pair of accounts from deadlocking.
func lockBalances(ctx context.Context, tx *sql.Tx, ids []string) (map[string]int64, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT id, balance FROM accounts WHERE id = ANY($1) ORDER BY id FOR UPDATE`,
		pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	balances := make(map[string]int64, len(ids))
	for rows.Next() {
		var id string
		var balance int64
		if err := rows.Scan(&id, &balance); err != nil {
			return nil, err
		}
		balances[id] = balance
	}
	return balances, rows.Err()
}

// RecordPurchase debits the client, credits the merchant net of commission,
// and appends the log entry in one database transaction. Partial
// application is impossible: any failure rolls all three writes back.
func (r *ledgerRepository) RecordPurchase(ctx context.Context, t *domain.Transaction) error {
	if t.ActorID == nil || t.CounterpartyID == nil {
		return domain.ErrNotFound
	}
	clientID, merchantID := *t.ActorID, *t.CounterpartyID

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return mapError(err)
	}
	defer tx.Rollback()

	balances, err := lockBalances(ctx, tx, []string{clientID, merchantID})
	if err != nil {
		return mapError(err)
	}
	clientBalance, ok := balances[clientID]
	if !ok {
		return domain.ErrNotFound
	}
	if _, ok := balances[merchantID]; !ok {
		return domain.ErrNotFound
	}
	if clientBalance < t.GrossAmount {
		return domain.ErrInsufficientFunds
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE accounts SET balance = balance - $1 WHERE id = $2`,
		t.GrossAmount, clientID); err != nil {
		return mapError(err)
	}
	merchantNet := t.GrossAmount - t.CommissionAmount
	if _, err := tx.ExecContext(ctx,
		`UPDATE accounts SET balance = balance + $1 WHERE id = $2`,
		merchantNet, merchantID); err != nil {
		return mapError(err)
	}

	t.ID = uuid.NewString()
	now := time.Now().UTC()
	if err := tx.QueryRowContext(ctx, insertTransaction,
		t.ID, t.Type, t.ActorID, t.CounterpartyID,
		t.GrossAmount, t.CommissionAmount, t.Description, now).Scan(&t.CreatedOn); err != nil {
		return mapError(err)
	}

	return mapError(tx.Commit())
}

// RecordRecharge credits a client and appends the log entry atomically. It
// returns the credited balance as the transaction saw it, so receipts carry
// the committed figure even when recharges race.
func (r *ledgerRepository) RecordRecharge(ctx context.Context, t *domain.Transaction) (int64, error) {
	if t.ActorID == nil {
		return 0, domain.ErrNotFound
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, mapError(err)
	}
	defer tx.Rollback()

	var newBalance int64
	err = tx.QueryRowContext(ctx,
		`UPDATE accounts SET balance = balance + $1 WHERE id = $2 RETURNING balance`,
		t.GrossAmount, *t.ActorID).Scan(&newBalance)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, domain.ErrNotFound
	}
	if err != nil {
		return 0, mapError(err)
	}

	t.ID = uuid.NewString()
	now := time.Now().UTC()
	if err := tx.QueryRowContext(ctx, insertTransaction,
		t.ID, t.Type, t.ActorID, nil,
		t.GrossAmount, int64(0), t.Description, now).Scan(&t.CreatedOn); err != nil {
		return 0, mapError(err)
	}

	if err := tx.Commit(); err != nil {
		return 0, mapError(err)
	}
	return newBalance, nil
}

// RecordPayout debits a merchant and appends the log entry atomically.
func (r *ledgerRepository) RecordPayout(ctx context.Context, t *domain.Transaction) error {
	if t.CounterpartyID == nil {
		return domain.ErrNotFound
	}
	merchantID := *t.CounterpartyID

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return mapError(err)
	}
	defer tx.Rollback()

	balances, err := lockBalances(ctx, tx, []string{merchantID})
	if err != nil {
		return mapError(err)
	}
	balance, ok := balances[merchantID]
	if !ok {
		return domain.ErrNotFound
	}
	if balance < t.GrossAmount {
		return domain.ErrInsufficientFunds
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE accounts SET balance = balance - $1 WHERE id = $2`,
		t.GrossAmount, merchantID); err != nil {
		return mapError(err)
	}

	t.ID = uuid.NewString()
	now := time.Now().UTC()
	if err := tx.QueryRowContext(ctx, insertTransaction,
		t.ID, t.Type, nil, t.CounterpartyID,
		t.GrossAmount, int64(0), t.Description, now).Scan(&t.CreatedOn); err != nil {
		return mapError(err)
	}

	return mapError(tx.Commit())
}

const transactionColumns = `id, type, actor_id, counterparty_id, gross_amount, commission_amount, COALESCE(description, ''), created_on`

func scanTransaction(rows *sql.Rows) (*domain.Transaction, error) {
	var t domain.Transaction
	var actor, counterparty sql.NullString
	err := rows.Scan(&t.ID, &t.Type, &actor, &counterparty, &t.GrossAmount, &t.CommissionAmount, &t.Description, &t.CreatedOn)
	if err != nil {
		return nil, err
	}
	if actor.Valid {
		t.ActorID = &actor.String
	}
	if counterparty.Valid {
		t.CounterpartyID = &counterparty.String
	}
	return &t, nil
}

func (r *ledgerRepository) ListByAccount(ctx context.Context, accountID string, page, pageSize int32) ([]domain.Transaction, int32, error) {
	offset := (page - 1) * pageSize
	query := `SELECT ` + transactionColumns + ` FROM transactions
	          WHERE actor_id = $1 OR counterparty_id = $1
	          ORDER BY created_on DESC, id DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, accountID, pageSize, offset)
	if err != nil {
		return nil, 0, mapError(err)
	}
	defer rows.Close()

	var txs []domain.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, mapError(err)
		}
		txs = append(txs, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, mapError(err)
	}

	var count int32
	countQuery := `SELECT count(*) FROM transactions WHERE actor_id = $1 OR counterparty_id = $1`
	if err := r.db.QueryRowContext(ctx, countQuery, accountID).Scan(&count); err != nil {
		return nil, 0, mapError(err)
	}
	return txs, count, nil
}

func (r *ledgerRepository) Search(ctx context.Context, filter domain.TransactionFilter, page, pageSize int32) ([]domain.Transaction, int32, error) {
	where := `WHERE ($1 = '' OR t.type = $1)
	          AND ($2::timestamptz IS NULL OR t.created_on >= $2)
	          AND ($3::timestamptz IS NULL OR t.created_on < $3)
	          AND ($4 = '' OR t.description ILIKE '%' || $4 || '%'
	               OR a.display_name ILIKE '%' || $4 || '%'
	               OR c.display_name ILIKE '%' || $4 || '%')`
	base := ` FROM transactions t
	          LEFT JOIN accounts a ON t.actor_id = a.id
	          LEFT JOIN accounts c ON t.counterparty_id = c.id ` + where

	var from, to any
	if !filter.From.IsZero() {
		from = filter.From
	}
	if !filter.To.IsZero() {
		to = filter.To
	}

	offset := (page - 1) * pageSize
	query := `SELECT t.id, t.type, t.actor_id, t.counterparty_id, t.gross_amount, t.commission_amount, COALESCE(t.description, ''), t.created_on` +
		base + ` ORDER BY t.created_on DESC, t.id DESC LIMIT $5 OFFSET $6`
	rows, err := r.db.QueryContext(ctx, query, string(filter.Type), from, to, filter.SearchText, pageSize, offset)
	if err != nil {
		return nil, 0, mapError(err)
	}
	defer rows.Close()

	var txs []domain.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, mapError(err)
		}
		txs = append(txs, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, mapError(err)
	}

	var count int32
	countQuery := `SELECT count(*)` + base
	if err := r.db.QueryRowContext(ctx, countQuery, string(filter.Type), from, to, filter.SearchText).Scan(&count); err != nil {
		return nil, 0, mapError(err)
	}
	return txs, count, nil
}

// DerivedBalance folds the transaction log into the balance the account
// should hold. Initial balances are booked as recharge entries at
// provisioning time, so stored and derived balances agree unless a write
// was lost.
func (r *ledgerRepository) DerivedBalance(ctx context.Context, accountID string) (int64, error) {
	query := `SELECT COALESCE(SUM(CASE
	            WHEN type = 'recharge' AND actor_id = $1 THEN gross_amount
	            WHEN type = 'purchase' AND actor_id = $1 THEN -gross_amount
	            WHEN type = 'purchase' AND counterparty_id = $1 THEN gross_amount - commission_amount
	            WHEN type = 'payout' AND counterparty_id = $1 THEN -gross_amount
	            ELSE 0 END), 0)
	          FROM transactions WHERE actor_id = $1 OR counterparty_id = $1`
	var balance int64
	err := r.db.QueryRowContext(ctx, query, accountID).Scan(&balance)
	return balance, mapError(err)
}

func (r *ledgerRepository) SummarizeByType(ctx context.Context, from, to time.Time) ([]domain.TypeSummary, error) {
	query := `SELECT type, count(*), COALESCE(SUM(gross_amount), 0), COALESCE(SUM(commission_amount), 0)
	          FROM transactions WHERE created_on >= $1 AND created_on < $2
	          GROUP BY type ORDER BY type`
	rows, err := r.db.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var summaries []domain.TypeSummary
	for rows.Next() {
		var s domain.TypeSummary
		if err := rows.Scan(&s.Type, &s.Count, &s.GrossVolume, &s.CommissionVolume); err != nil {
			return nil, mapError(err)
		}
		summaries = append(summaries, s)
	}
	return summaries, mapError(rows.Err())
}

func (r *ledgerRepository) HasTransactions(ctx context.Context, accountID string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM transactions WHERE actor_id = $1 OR counterparty_id = $1)`
	err := r.db.QueryRowContext(ctx, query, accountID).Scan(&exists)
	if err != nil {
		return false, mapError(fmt.Errorf("failed to check transaction references: %w", err))
	}
	return exists, nil
}
