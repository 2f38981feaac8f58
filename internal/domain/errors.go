package domain

import "errors"

// Error taxonomy for ledger and directory operations. Repositories map
// driver-level failures onto these; services and handlers match with
// errors.Is.
var (
	ErrNotFound           = errors.New("account not found")
	ErrInvalidAmount      = errors.New("amount must be greater than zero")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrInvalidRole        = errors.New("operation not allowed for this account role")
	ErrInvalidDomain      = errors.New("email must belong to the institutional domain")
	ErrDuplicateCode      = errors.New("merchant code already in use")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrConcurrentUpdate   = errors.New("concurrent update conflict")
	ErrStoreUnavailable   = errors.New("record store unavailable")
	ErrAccountInactive    = errors.New("account is deactivated")
	ErrAccountReferenced  = errors.New("account is referenced by transaction history")
	ErrAdminAlreadyExists = errors.New("an administrator already exists")
)

// Retryable reports whether an error signals a safe-to-retry race or a
// transient store failure. All other errors are terminal for the operation.
func Retryable(err error) bool {
	return errors.Is(err, ErrConcurrentUpdate) || errors.Is(err, ErrStoreUnavailable)
}
