package domain

import "time"

type Role string

const (
	RoleClient   Role = "client"
	RoleMerchant Role = "merchant"
	RoleAdmin    Role = "admin"
)

// Account is a client, merchant, or admin identity. Balances are held in
// integer minor units and are mutated only by the ledger engine. The ID is
// the identity provider's uid for the same principal.
type Account struct {
	ID          string    `json:"id"`
	Role        Role      `json:"role"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email"`
	Balance     int64     `json:"balance"`
	Active      bool      `json:"active"`
	CreatedOn   time.Time `json:"created_on"`

	// Merchant-only fields. CommissionRate is a percentage; nil means the
	// global default applies at purchase time.
	MerchantCode   string   `json:"merchant_code,omitempty"`
	CommissionRate *float64 `json:"commission_rate,omitempty"`
}

func (a *Account) IsClient() bool   { return a.Role == RoleClient }
func (a *Account) IsMerchant() bool { return a.Role == RoleMerchant }
func (a *Account) IsAdmin() bool    { return a.Role == RoleAdmin }
