package wallet

import "context"

type Repository interface {
	Create(ctx context.Context, userID int, name, currency string, isDefault bool) (*Wallet, error)
	GetByID(ctx context.Context, userID, walletID int) (*Wallet, error)
	ListByUser(ctx context.Context, userID int) ([]Wallet, error)
	Update(ctx context.Context, userID, walletID int, req UpdateWalletRequest) (*Wallet, error)
	Delete(ctx context.Context, userID, walletID int, force bool) error
}
