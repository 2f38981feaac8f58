package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strconv"

	"bliss-balance-backend/internal/repository"
)

const commissionSettingKey = "commission_percent"

type settingsRepository struct {
	db *sql.DB
}

func NewSettingsRepository(db *sql.DB) repository.SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) GetCommissionPercent(ctx context.Context) (float64, bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = $1`, commissionSettingKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, mapError(err)
	}
	percent, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, false, err
	}
	return percent, true, nil
}

func (r *settingsRepository) SetCommissionPercent(ctx context.Context, percent float64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES ($1, $2)
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`,
		commissionSettingKey, strconv.FormatFloat(percent, 'f', -1, 64))
	return mapError(err)
}
