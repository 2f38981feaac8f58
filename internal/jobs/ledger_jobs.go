package jobs

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bliss-balance-backend/internal/domain"
	"bliss-balance-backend/internal/logger"
)

// ReconcileBalances folds the transaction log per account and compares the
// result with the stored balance. Drift means a balance write and a log
// append got separated, which the ledger's transactional boundary should
// make impossible; any hit is alerted to the administrator.
func (jr *JobRunner) ReconcileBalances() {
	jr.runWithRecovery("ReconcileBalances", func() {
		ctx := context.Background()

		var drifts []string
		for _, role := range []domain.Role{domain.RoleClient, domain.RoleMerchant} {
			accounts, err := jr.store.AccountRepository.ListByRole(ctx, role)
			if err != nil {
				logger.Error("Failed to list accounts for reconciliation", "role", role, "error", err)
				return
			}
			for _, account := range accounts {
				derived, err := jr.store.LedgerRepository.DerivedBalance(ctx, account.ID)
				if err != nil {
					logger.Error("Failed to derive balance", "account_id", account.ID, "error", err)
					continue
				}
				if derived != account.Balance {
					logger.Error("Balance drift detected",
						"account_id", account.ID, "stored", account.Balance, "derived", derived)
					drifts = append(drifts, fmt.Sprintf("%s (%s): stored %d, derived %d",
						account.DisplayName, account.ID, account.Balance, derived))
				}
			}
		}

		if len(drifts) == 0 {
			logger.Info("Balance reconciliation clean")
			return
		}
		message := fmt.Sprintf("Balance drift detected on %d account(s):\n\n%s",
			len(drifts), strings.Join(drifts, "\n"))
		if err := jr.emailSvc.SendAdminAlert(ctx, "BLISS balance reconciliation alert", message); err != nil {
			logger.Error("Failed to send reconciliation alert", "error", err)
		}
	})
}

// SendDailySummary mails the administrator the previous day's transaction
// counts and volumes per type.
func (jr *JobRunner) SendDailySummary() {
	jr.runWithRecovery("SendDailySummary", func() {
		ctx := context.Background()

		now := time.Now().UTC()
		to := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		from := to.AddDate(0, 0, -1)

		summaries, err := jr.store.LedgerRepository.SummarizeByType(ctx, from, to)
		if err != nil {
			logger.Error("Failed to summarize transactions", "error", err)
			return
		}

		var b strings.Builder
		fmt.Fprintf(&b, "Activity for %s:\n\n", from.Format("2006-01-02"))
		if len(summaries) == 0 {
			b.WriteString("No transactions recorded.\n")
		}
		for _, s := range summaries {
			fmt.Fprintf(&b, "%-10s %5d transactions, gross $%d, commission $%d\n",
				s.Type, s.Count, s.GrossVolume, s.CommissionVolume)
		}

		if err := jr.emailSvc.SendAdminAlert(ctx, "BLISS daily activity summary", b.String()); err != nil {
			logger.Error("Failed to send daily summary", "error", err)
		}
	})
}
