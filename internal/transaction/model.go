package transaction

import "time"

const (
	TypeIncome   = "income"
	TypeExpense  = "expense"
	TypeTransfer = "transfer"
)

type Transaction struct {
	ID          int       `db:"id" json:"id"`
	UserID      int       `db:"user_id" json:"user_id"`
	WalletID    int       `db:"wallet_id" json:"wallet_id"`
	ToWalletID  *int      `db:"to_wallet_id" json:"to_wallet_id,omitempty"`
	CategoryID  *int      `db:"category_id" json:"category_id,omitempty"`
	Type        string    `db:"type" json:"type"`
	AmountCents int64     `db:"amount_cents" json:"amount_cents"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	OccurredAt  time.Time `db:"occurred_at" json:"occurred_at"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

type CreateTransactionRequest struct {
	Type        string     `json:"type" binding:"required,oneof=income expense transfer"`
	AmountCents int64      `json:"amount_cents" binding:"required,gt=0"`
	WalletID    int        `json:"wallet_id" binding:"required"`
	ToWalletID  *int       `json:"to_wallet_id"`
	CategoryID  *int       `json:"category_id"`
	Title       string     `json:"title" binding:"omitempty,max=200"`
	Description string     `json:"description" binding:"omitempty,max=2000"`
	OccurredAt  *time.Time `json:"occurred_at"`
}

type UpdateTransactionRequest struct {
	Type        *string    `json:"type" binding:"omitempty,oneof=income expense transfer"`
	AmountCents *int64     `json:"amount_cents" binding:"omitempty,gt=0"`
	WalletID    *int       `json:"wallet_id"`
	ToWalletID  *int       `json:"to_wallet_id"`
	CategoryID  *int       `json:"category_id"`
	Title       *string    `json:"title" binding:"omitempty,max=200"`
	Description *string    `json:"description" binding:"omitempty,max=2000"`
	OccurredAt  *time.Time `json:"occurred_at"`
}

type ListFilter struct {
	WalletID *int
	Type     string
	Page     int
	Limit    int
}

type ListResult struct {
	Transactions []Transaction `json:"transactions"`
	Total        int           `json:"total"`
	Page         int           `json:"page"`
	Limit        int           `json:"limit"`
	TotalPages   int           `json:"total_pages"`
}

// balanceDeltas returns the signed effect of a transaction on each wallet it
// touches: income credits the wallet, expense debits it, a transfer debits
// the source and credits the destination.
func balanceDeltas(txType string, amountCents int64, walletID int, toWalletID *int) map[int]int64 {
	deltas := make(map[int]int64, 2)
	switch txType {
	case TypeIncome:
		deltas[walletID] += amountCents
	case TypeExpense:
		deltas[walletID] -= amountCents
	case TypeTransfer:
		deltas[walletID] -= amountCents
		if toWalletID != nil {
			deltas[*toWalletID] += amountCents
		}
	}
	return deltas
}
