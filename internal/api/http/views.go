package http

import (
	"time"

	"bliss-balance-backend/internal/domain"
	"bliss-balance-backend/internal/utils"
)

// transactionView is the wire shape for log entries. NetAmount is the
// merchant-side value of a purchase (gross minus commission); for the other
// types it equals the gross amount.
type transactionView struct {
	ID               string                 `json:"id"`
	Type             domain.TransactionType `json:"type"`
	ActorID          *string                `json:"actor_id,omitempty"`
	CounterpartyID   *string                `json:"counterparty_id,omitempty"`
	GrossAmount      int64                  `json:"gross_amount"`
	CommissionAmount int64                  `json:"commission_amount"`
	NetAmount        int64                  `json:"net_amount"`
	Description      string                 `json:"description"`
	CreatedOn        time.Time              `json:"created_on"`
}

func newTransactionView(tx domain.Transaction) transactionView {
	return transactionView{
		ID:               tx.ID,
		Type:             tx.Type,
		ActorID:          tx.ActorID,
		CounterpartyID:   tx.CounterpartyID,
		GrossAmount:      tx.GrossAmount,
		CommissionAmount: tx.CommissionAmount,
		NetAmount:        utils.MerchantNet(tx.GrossAmount, tx.CommissionAmount),
		Description:      tx.Description,
		CreatedOn:        tx.CreatedOn,
	}
}

func transactionViews(txs []domain.Transaction) []transactionView {
	views := make([]transactionView, 0, len(txs))
	for _, tx := range txs {
		views = append(views, newTransactionView(tx))
	}
	return views
}
