package transaction

import "context"

type Repository interface {
	// Create inserts the transaction and applies its balance effect to the
	// affected wallet(s) in one database transaction.
	Create(ctx context.Context, t *Transaction) (*Transaction, error)

	// Update patches the transaction, reversing the original balance effect
	// and applying the new one atomically when amount, type or wallets change.
	Update(ctx context.Context, userID, id int, req UpdateTransactionRequest) (*Transaction, error)

	// Delete reverses the transaction's balance effect and removes the row
	// atomically.
	Delete(ctx context.Context, userID, id int) error

	GetByID(ctx context.Context, userID, id int) (*Transaction, error)
	List(ctx context.Context, userID int, filter ListFilter) (*ListResult, error)
}
