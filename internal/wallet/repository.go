package wallet

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"centavo/internal/db"
)

var (
	ErrWalletNotFound        = errors.New("wallet not found")
	ErrWalletHasTransactions = errors.New("wallet has linked transactions")
	ErrDefaultWalletDelete   = errors.New("cannot delete the default wallet")
	ErrDefaultRequired       = errors.New("another wallet must be made default first")
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(database *sqlx.DB) Repository {
	return &repository{db: database}
}

func (r *repository) Create(ctx context.Context, userID int, name, currency string, isDefault bool) (*Wallet, error) {
	if currency == "" {
		currency = "USD"
	}

	var w Wallet
	err := db.RunInTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var count int
		if err := tx.GetContext(ctx, &count,
			`SELECT COUNT(*) FROM wallets WHERE user_id = $1`, userID); err != nil {
			return err
		}

		// The first wallet is always the default.
		if count == 0 {
			isDefault = true
		}

		if isDefault {
			if _, err := tx.ExecContext(ctx,
				`UPDATE wallets SET is_default = FALSE, updated_at = NOW()
				 WHERE user_id = $1 AND is_default`, userID); err != nil {
				return err
			}
		}

		return tx.QueryRowxContext(ctx,
			`INSERT INTO wallets (user_id, name, currency, is_default)
			 VALUES ($1, $2, $3, $4)
			 RETURNING id, user_id, name, currency, balance_cents, is_default, created_at, updated_at`,
			userID, name, currency, isDefault,
		).StructScan(&w)
	})
	if err != nil {
		return nil, err
	}

	return &w, nil
}

func (r *repository) GetByID(ctx context.Context, userID, walletID int) (*Wallet, error) {
	var w Wallet
	err := r.db.GetContext(ctx, &w,
		`SELECT id, user_id, name, currency, balance_cents, is_default, created_at, updated_at
		 FROM wallets
		 WHERE id = $1 AND user_id = $2`,
		walletID, userID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrWalletNotFound
	}
	if err != nil {
		return nil, err
	}

	return &w, nil
}

func (r *repository) ListByUser(ctx context.Context, userID int) ([]Wallet, error) {
	wallets := []Wallet{}
	err := r.db.SelectContext(ctx, &wallets,
		`SELECT id, user_id, name, currency, balance_cents, is_default, created_at, updated_at
		 FROM wallets
		 WHERE user_id = $1
		 ORDER BY is_default DESC, created_at ASC`,
		userID,
	)
	if err != nil {
		return nil, err
	}

	return wallets, nil
}

func (r *repository) Update(ctx context.Context, userID, walletID int, req UpdateWalletRequest) (*Wallet, error) {
	var w Wallet
	err := db.RunInTx(ctx, r.db, func(tx *sqlx.Tx) error {
		err := tx.QueryRowxContext(ctx,
			`SELECT id, user_id, name, currency, balance_cents, is_default, created_at, updated_at
			 FROM wallets
			 WHERE id = $1 AND user_id = $2
			 FOR UPDATE`,
			walletID, userID,
		).StructScan(&w)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrWalletNotFound
		}
		if err != nil {
			return err
		}

		if req.Name != nil {
			w.Name = *req.Name
		}
		if req.Currency != nil {
			w.Currency = *req.Currency
		}
		if req.IsDefault != nil {
			if !*req.IsDefault && w.IsDefault {
				// Exactly one default wallet must exist at all times.
				return ErrDefaultRequired
			}
			if *req.IsDefault && !w.IsDefault {
				if _, err := tx.ExecContext(ctx,
					`UPDATE wallets SET is_default = FALSE, updated_at = NOW()
					 WHERE user_id = $1 AND is_default`, userID); err != nil {
					return err
				}
				w.IsDefault = true
			}
		}

		return tx.QueryRowxContext(ctx,
			`UPDATE wallets
			 SET name = $1, currency = $2, is_default = $3, updated_at = NOW()
			 WHERE id = $4
			 RETURNING id, user_id, name, currency, balance_cents, is_default, created_at, updated_at`,
			w.Name, w.Currency, w.IsDefault, w.ID,
		).StructScan(&w)
	})
	if err != nil {
		return nil, err
	}

	return &w, nil
}

// Delete removes a wallet. Without force it refuses when transactions still
// reference the wallet. With force it deletes those transactions and reverses
// the counterpart leg of any transfer so other wallets keep a consistent
// balance.
func (r *repository) Delete(ctx context.Context, userID, walletID int, force bool) error {
	return db.RunInTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var w Wallet
		err := tx.QueryRowxContext(ctx,
			`SELECT id, user_id, name, currency, balance_cents, is_default, created_at, updated_at
			 FROM wallets
			 WHERE id = $1 AND user_id = $2
			 FOR UPDATE`,
			walletID, userID,
		).StructScan(&w)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrWalletNotFound
		}
		if err != nil {
			return err
		}

		if w.IsDefault {
			return ErrDefaultWalletDelete
		}

		var linked int
		if err := tx.GetContext(ctx, &linked,
			`SELECT COUNT(*) FROM transactions WHERE wallet_id = $1 OR to_wallet_id = $1`,
			walletID); err != nil {
			return err
		}

		if linked > 0 {
			if !force {
				return ErrWalletHasTransactions
			}

			// Transfers out of this wallet credited their destination; take
			// that credit back before the rows disappear.
			if _, err := tx.ExecContext(ctx,
				`UPDATE wallets w
				 SET balance_cents = w.balance_cents - x.total, updated_at = NOW()
				 FROM (
				     SELECT to_wallet_id AS wid, SUM(amount_cents) AS total
				     FROM transactions
				     WHERE wallet_id = $1 AND type = 'transfer'
				     GROUP BY to_wallet_id
				 ) x
				 WHERE w.id = x.wid`, walletID); err != nil {
				return err
			}

			// Transfers into this wallet debited their source; give it back.
			if _, err := tx.ExecContext(ctx,
				`UPDATE wallets w
				 SET balance_cents = w.balance_cents + x.total, updated_at = NOW()
				 FROM (
				     SELECT wallet_id AS wid, SUM(amount_cents) AS total
				     FROM transactions
				     WHERE to_wallet_id = $1 AND type = 'transfer'
				     GROUP BY wallet_id
				 ) x
				 WHERE w.id = x.wid`, walletID); err != nil {
				return err
			}

			if _, err := tx.ExecContext(ctx,
				`DELETE FROM transactions WHERE wallet_id = $1 OR to_wallet_id = $1`,
				walletID); err != nil {
				return err
			}
		}

		_, err = tx.ExecContext(ctx, `DELETE FROM wallets WHERE id = $1`, walletID)
		return err
	})
}
