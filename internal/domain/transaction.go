package domain

import "time"

type TransactionType string

const (
	TransactionTypePurchase TransactionType = "purchase"
	TransactionTypeRecharge TransactionType = "recharge"
	TransactionTypePayout   TransactionType = "payout"
)

// Transaction is one immutable record of a money movement. ActorID is the
// client for purchases and recharges (nil for payouts); CounterpartyID is
// the merchant for purchases and payouts (nil for recharges). Rows are
// never updated or deleted once appended.
type Transaction struct {
	ID               string          `json:"id"`
	Type             TransactionType `json:"type"`
	ActorID          *string         `json:"actor_id,omitempty"`
	CounterpartyID   *string         `json:"counterparty_id,omitempty"`
	GrossAmount      int64           `json:"gross_amount"`
	CommissionAmount int64           `json:"commission_amount"`
	Description      string          `json:"description"`
	CreatedOn        time.Time       `json:"created_on"`
}

// TransactionFilter is the admin search filter. Zero values mean
// "no constraint"; the predicates are conjunctive.
type TransactionFilter struct {
	Type       TransactionType
	From       time.Time
	To         time.Time
	SearchText string
}

// TypeSummary aggregates the log per transaction type over a date range.
type TypeSummary struct {
	Type             TransactionType `json:"type"`
	Count            int64           `json:"count"`
	GrossVolume      int64           `json:"gross_volume"`
	CommissionVolume int64           `json:"commission_volume"`
}
