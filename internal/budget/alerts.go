package budget

import (
	"context"
	"fmt"
	"time"

	"centavo/internal/logger"
	"centavo/internal/metrics"
)

// Notifier queues a budget alert for asynchronous delivery.
type Notifier interface {
	QueueBudgetAlert(ctx context.Context, userID int, title, body string) error
}

// AlertService re-checks budgets after each committed expense and queues a
// notification for every budget the expense pushes across its threshold.
// Alerts fire only on the crossing, not on every expense past it.
type AlertService struct {
	repo     Repository
	notifier Notifier
}

func NewAlertService(repo Repository, notifier Notifier) *AlertService {
	return &AlertService{repo: repo, notifier: notifier}
}

func (a *AlertService) ExpenseRecorded(ctx context.Context, userID, walletID int, categoryID *int, amountCents int64, occurredAt time.Time) {
	budgets, err := a.repo.ListMatching(ctx, userID, walletID, categoryID, occurredAt)
	if err != nil {
		logger.Errorf("Failed to check budgets for user %d: %v", userID, err)
		return
	}

	for _, b := range budgets {
		if !crossed(b.SpentCents, amountCents, b.AmountCents, b.AlertThreshold) {
			continue
		}

		title := fmt.Sprintf("Budget alert: %d%% threshold reached", b.AlertThreshold)
		body := fmt.Sprintf("You have spent %s of your %s budget of %s.",
			formatCents(b.SpentCents), b.Period, formatCents(b.AmountCents))

		if err := a.notifier.QueueBudgetAlert(ctx, userID, title, body); err != nil {
			logger.Errorf("Failed to queue budget alert for user %d: %v", userID, err)
			continue
		}

		metrics.RecordBudgetAlert()
		logger.Infof("Budget %d alert queued for user %d", b.ID, userID)
	}
}

// crossed reports whether adding the latest expense moved spending from
// below the threshold to at or above it.
func crossed(spentCents, expenseCents, budgetCents int64, thresholdPct int) bool {
	limit := budgetCents * int64(thresholdPct)
	return spentCents*100 >= limit && (spentCents-expenseCents)*100 < limit
}

func formatCents(c int64) string {
	return fmt.Sprintf("%d.%02d", c/100, c%100)
}
