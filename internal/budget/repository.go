package budget

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

var ErrBudgetNotFound = errors.New("budget not found")

// spentExpr aggregates expense transactions falling inside the budget
// window and matching its category/wallet scope. NULL scope columns match
// everything.
const spentExpr = `COALESCE((
		SELECT SUM(t.amount_cents)
		FROM transactions t
		JOIN wallets w ON w.id = t.wallet_id
		WHERE w.user_id = b.user_id
		  AND t.type = 'expense'
		  AND t.occurred_at >= b.start_date
		  AND t.occurred_at < b.end_date
		  AND (b.category_id IS NULL OR t.category_id = b.category_id)
		  AND (b.wallet_id IS NULL OR t.wallet_id = b.wallet_id)
	), 0) AS spent_cents`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, b *Budget) (*Budget, error) {
	query := `
		INSERT INTO budgets (user_id, category_id, wallet_id, amount_cents, period, start_date, end_date, alert_threshold)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		b.UserID, b.CategoryID, b.WalletID, b.AmountCents, b.Period,
		b.StartDate, b.EndDate, b.AlertThreshold,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create budget: %w", err)
	}

	return b, nil
}

func (r *repository) GetByID(ctx context.Context, userID, id int) (*Budget, error) {
	query := fmt.Sprintf(`SELECT b.*, %s FROM budgets b WHERE b.id = $1 AND b.user_id = $2`, spentExpr)

	var b Budget
	if err := r.db.GetContext(ctx, &b, query, id, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBudgetNotFound
		}
		return nil, fmt.Errorf("failed to get budget: %w", err)
	}

	return &b, nil
}

func (r *repository) ListByUser(ctx context.Context, userID int) ([]Budget, error) {
	query := fmt.Sprintf(`SELECT b.*, %s FROM budgets b WHERE b.user_id = $1 ORDER BY b.created_at DESC`, spentExpr)

	budgets := []Budget{}
	if err := r.db.SelectContext(ctx, &budgets, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list budgets: %w", err)
	}

	return budgets, nil
}

func (r *repository) Update(ctx context.Context, userID, id int, req UpdateBudgetRequest) (*Budget, error) {
	b, err := r.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if req.AmountCents != nil {
		b.AmountCents = *req.AmountCents
	}
	if req.AlertThreshold != nil {
		b.AlertThreshold = *req.AlertThreshold
	}
	if req.Period != nil && *req.Period != b.Period {
		b.Period = *req.Period
		b.StartDate, b.EndDate = PeriodWindow(b.Period, time.Now())
	}

	query := `
		UPDATE budgets
		SET amount_cents = $1, period = $2, start_date = $3, end_date = $4, alert_threshold = $5, updated_at = NOW()
		WHERE id = $6 AND user_id = $7
		RETURNING updated_at`

	err = r.db.QueryRowxContext(ctx, query,
		b.AmountCents, b.Period, b.StartDate, b.EndDate, b.AlertThreshold, id, userID,
	).Scan(&b.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBudgetNotFound
		}
		return nil, fmt.Errorf("failed to update budget: %w", err)
	}

	return b, nil
}

func (r *repository) Delete(ctx context.Context, userID, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM budgets WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete budget: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if rows == 0 {
		return ErrBudgetNotFound
	}

	return nil
}

func (r *repository) ListMatching(ctx context.Context, userID, walletID int, categoryID *int, occurredAt time.Time) ([]Budget, error) {
	query := fmt.Sprintf(`
		SELECT b.*, %s
		FROM budgets b
		WHERE b.user_id = $1
		  AND b.start_date <= $2 AND b.end_date > $2
		  AND (b.wallet_id IS NULL OR b.wallet_id = $3)
		  AND (b.category_id IS NULL OR b.category_id = $4)`, spentExpr)

	budgets := []Budget{}
	if err := r.db.SelectContext(ctx, &budgets, query, userID, occurredAt, walletID, categoryID); err != nil {
		return nil, fmt.Errorf("failed to list matching budgets: %w", err)
	}

	return budgets, nil
}
