package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// LocalProvider keeps bcrypt credentials in the local_identities table. It
// stands in for the hosted provider in development and tests, selected by
// the identity.type config switch.
type LocalProvider struct {
	db *sql.DB
}

func NewLocalProvider(db *sql.DB) *LocalProvider {
	return &LocalProvider{db: db}
}

func (p *LocalProvider) CreateIdentity(ctx context.Context, email, password, displayName string) (string, error) {
	var existing string
	err := p.db.QueryRowContext(ctx, `SELECT id FROM local_identities WHERE email = $1`, email).Scan(&existing)
	if err == nil {
		return "", ErrIdentityExists
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	uid := uuid.NewString()
	_, err = p.db.ExecContext(ctx,
		`INSERT INTO local_identities (id, email, password_hash, display_name) VALUES ($1, $2, $3, $4)`,
		uid, email, string(hash), displayName)
	if err != nil {
		return "", fmt.Errorf("failed to create local identity: %w", err)
	}
	return uid, nil
}

func (p *LocalProvider) VerifyCredentials(ctx context.Context, email, password string) (string, error) {
	var uid, hash string
	err := p.db.QueryRowContext(ctx,
		`SELECT id, password_hash FROM local_identities WHERE email = $1`, email).Scan(&uid, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}
	return uid, nil
}

func (p *LocalProvider) DeleteIdentity(ctx context.Context, uid string) error {
	res, err := p.db.ExecContext(ctx, `DELETE FROM local_identities WHERE id = $1`, uid)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrIdentityNotFound
	}
	return nil
}

func (p *LocalProvider) LookupByEmail(ctx context.Context, email string) (string, error) {
	var uid string
	err := p.db.QueryRowContext(ctx, `SELECT id FROM local_identities WHERE email = $1`, email).Scan(&uid)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrIdentityNotFound
	}
	if err != nil {
		return "", err
	}
	return uid, nil
}
