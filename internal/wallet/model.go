package wallet

import "time"

type Wallet struct {
	ID           int       `db:"id" json:"id"`
	UserID       int       `db:"user_id" json:"user_id"`
	Name         string    `db:"name" json:"name"`
	Currency     string    `db:"currency" json:"currency"`
	BalanceCents int64     `db:"balance_cents" json:"balance_cents"`
	IsDefault    bool      `db:"is_default" json:"is_default"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

type CreateWalletRequest struct {
	Name      string `json:"name" binding:"required,max=100"`
	Currency  string `json:"currency" binding:"omitempty,len=3"`
	IsDefault bool   `json:"is_default"`
}

type UpdateWalletRequest struct {
	Name      *string `json:"name" binding:"omitempty,max=100"`
	Currency  *string `json:"currency" binding:"omitempty,len=3"`
	IsDefault *bool   `json:"is_default"`
}
