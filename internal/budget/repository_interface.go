package budget

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, b *Budget) (*Budget, error)
	GetByID(ctx context.Context, userID, id int) (*Budget, error)
	ListByUser(ctx context.Context, userID int) ([]Budget, error)
	Update(ctx context.Context, userID, id int, req UpdateBudgetRequest) (*Budget, error)
	Delete(ctx context.Context, userID, id int) error

	// ListMatching returns the budgets, spent amounts included, whose
	// window covers occurredAt and whose category/wallet scope matches
	// the given expense.
	ListMatching(ctx context.Context, userID, walletID int, categoryID *int, occurredAt time.Time) ([]Budget, error)
}
