package identity

import (
	"context"
	"errors"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrIdentityExists     = errors.New("identity already exists for this email")
	ErrIdentityNotFound   = errors.New("identity not found")
)

// Provider is the external identity collaborator. The identity uid doubles
// as the Account.ID, so account rows and identities stay in lockstep via
// the provisioning saga.
type Provider interface {
	// CreateIdentity registers email/password credentials and returns the
	// new identity's uid.
	CreateIdentity(ctx context.Context, email, password, displayName string) (string, error)

	// VerifyCredentials checks a login attempt and returns the identity's
	// uid, or ErrInvalidCredentials.
	VerifyCredentials(ctx context.Context, email, password string) (string, error)

	// DeleteIdentity removes the identity. Used as the compensating action
	// when a later provisioning step fails, and by admin reset.
	DeleteIdentity(ctx context.Context, uid string) error

	// LookupByEmail returns the uid registered for an email, or
	// ErrIdentityNotFound.
	LookupByEmail(ctx context.Context, email string) (string, error)
}
