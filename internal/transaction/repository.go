package transaction

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"centavo/internal/db"
)

var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrWalletNotFound      = errors.New("wallet not found")
	ErrSameWallet          = errors.New("transfer source and destination must differ")
	ErrToWalletRequired    = errors.New("transfer requires a destination wallet")
	ErrCategoryRequired    = errors.New("category is required unless type is transfer")
)

const defaultLimit = 50

type repository struct {
	db *sqlx.DB
}

func NewRepository(database *sqlx.DB) Repository {
	return &repository{db: database}
}

// lockWallets locks the given wallets for the caller in ascending id order
// and fails with ErrWalletNotFound when any of them does not exist or is not
// owned by the user. Consistent lock ordering keeps concurrent transfers
// between the same pair of wallets from deadlocking.
func lockWallets(ctx context.Context, tx *sqlx.Tx, userID int, walletIDs ...int) error {
	seen := make(map[int]struct{}, len(walletIDs))
	ids := make([]int, 0, len(walletIDs))
	for _, id := range walletIDs {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)

	var locked []int
	err := tx.SelectContext(ctx, &locked,
		`SELECT id FROM wallets
		 WHERE id = ANY($1) AND user_id = $2
		 ORDER BY id
		 FOR UPDATE`,
		pq.Array(ids), userID,
	)
	if err != nil {
		return err
	}
	if len(locked) != len(ids) {
		return ErrWalletNotFound
	}

	return nil
}

func applyDeltas(ctx context.Context, tx *sqlx.Tx, deltas map[int]int64) error {
	ids := make([]int, 0, len(deltas))
	for id := range deltas {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	for _, id := range ids {
		if deltas[id] == 0 {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE wallets
			 SET balance_cents = balance_cents + $1, updated_at = NOW()
			 WHERE id = $2`,
			deltas[id], id); err != nil {
			return err
		}
	}

	return nil
}

func (r *repository) Create(ctx context.Context, t *Transaction) (*Transaction, error) {
	var created Transaction
	err := db.RunInTx(ctx, r.db, func(tx *sqlx.Tx) error {
		wallets := []int{t.WalletID}
		if t.ToWalletID != nil {
			wallets = append(wallets, *t.ToWalletID)
		}
		if err := lockWallets(ctx, tx, t.UserID, wallets...); err != nil {
			return err
		}

		if err := applyDeltas(ctx, tx,
			balanceDeltas(t.Type, t.AmountCents, t.WalletID, t.ToWalletID)); err != nil {
			return err
		}

		return tx.QueryRowxContext(ctx,
			`INSERT INTO transactions
			     (user_id, wallet_id, to_wallet_id, category_id, type, amount_cents, title, description, occurred_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			 RETURNING id, user_id, wallet_id, to_wallet_id, category_id, type, amount_cents,
			           title, description, occurred_at, created_at, updated_at`,
			t.UserID, t.WalletID, t.ToWalletID, t.CategoryID, t.Type,
			t.AmountCents, t.Title, t.Description, t.OccurredAt,
		).StructScan(&created)
	})
	if err != nil {
		return nil, err
	}

	return &created, nil
}

func (r *repository) Update(ctx context.Context, userID, id int, req UpdateTransactionRequest) (*Transaction, error) {
	var updated Transaction
	err := db.RunInTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var orig Transaction
		err := tx.QueryRowxContext(ctx,
			`SELECT id, user_id, wallet_id, to_wallet_id, category_id, type, amount_cents,
			        title, description, occurred_at, created_at, updated_at
			 FROM transactions
			 WHERE id = $1 AND user_id = $2
			 FOR UPDATE`,
			id, userID,
		).StructScan(&orig)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrTransactionNotFound
		}
		if err != nil {
			return err
		}

		merged := orig
		if req.Type != nil {
			merged.Type = *req.Type
		}
		if req.AmountCents != nil {
			merged.AmountCents = *req.AmountCents
		}
		if req.WalletID != nil {
			merged.WalletID = *req.WalletID
		}
		if req.ToWalletID != nil {
			merged.ToWalletID = req.ToWalletID
		}
		if req.CategoryID != nil {
			merged.CategoryID = req.CategoryID
		}
		if req.Title != nil {
			merged.Title = *req.Title
		}
		if req.Description != nil {
			merged.Description = *req.Description
		}
		if req.OccurredAt != nil {
			merged.OccurredAt = *req.OccurredAt
		}

		if merged.Type == TypeTransfer {
			merged.CategoryID = nil
			if merged.ToWalletID == nil {
				return ErrToWalletRequired
			}
			if *merged.ToWalletID == merged.WalletID {
				return ErrSameWallet
			}
		} else {
			merged.ToWalletID = nil
			if merged.CategoryID == nil {
				return ErrCategoryRequired
			}
		}

		if balanceAffecting(&orig, &merged) {
			wallets := []int{orig.WalletID, merged.WalletID}
			if orig.ToWalletID != nil {
				wallets = append(wallets, *orig.ToWalletID)
			}
			if merged.ToWalletID != nil {
				wallets = append(wallets, *merged.ToWalletID)
			}
			if err := lockWallets(ctx, tx, userID, wallets...); err != nil {
				return err
			}

			// Reverse the original effect on both legs, then apply the new
			// one. Netting the two keeps untouched wallets at zero delta.
			net := make(map[int]int64, 4)
			for wid, d := range balanceDeltas(orig.Type, orig.AmountCents, orig.WalletID, orig.ToWalletID) {
				net[wid] -= d
			}
			for wid, d := range balanceDeltas(merged.Type, merged.AmountCents, merged.WalletID, merged.ToWalletID) {
				net[wid] += d
			}
			if err := applyDeltas(ctx, tx, net); err != nil {
				return err
			}
		}

		return tx.QueryRowxContext(ctx,
			`UPDATE transactions
			 SET wallet_id = $1, to_wallet_id = $2, category_id = $3, type = $4,
			     amount_cents = $5, title = $6, description = $7, occurred_at = $8,
			     updated_at = NOW()
			 WHERE id = $9
			 RETURNING id, user_id, wallet_id, to_wallet_id, category_id, type, amount_cents,
			           title, description, occurred_at, created_at, updated_at`,
			merged.WalletID, merged.ToWalletID, merged.CategoryID, merged.Type,
			merged.AmountCents, merged.Title, merged.Description, merged.OccurredAt, id,
		).StructScan(&updated)
	})
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

func balanceAffecting(orig, merged *Transaction) bool {
	if orig.Type != merged.Type || orig.AmountCents != merged.AmountCents || orig.WalletID != merged.WalletID {
		return true
	}
	switch {
	case orig.ToWalletID == nil && merged.ToWalletID == nil:
		return false
	case orig.ToWalletID == nil || merged.ToWalletID == nil:
		return true
	default:
		return *orig.ToWalletID != *merged.ToWalletID
	}
}

func (r *repository) Delete(ctx context.Context, userID, id int) error {
	return db.RunInTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var t Transaction
		err := tx.QueryRowxContext(ctx,
			`SELECT id, user_id, wallet_id, to_wallet_id, category_id, type, amount_cents,
			        title, description, occurred_at, created_at, updated_at
			 FROM transactions
			 WHERE id = $1 AND user_id = $2
			 FOR UPDATE`,
			id, userID,
		).StructScan(&t)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrTransactionNotFound
		}
		if err != nil {
			return err
		}

		wallets := []int{t.WalletID}
		if t.ToWalletID != nil {
			wallets = append(wallets, *t.ToWalletID)
		}
		if err := lockWallets(ctx, tx, userID, wallets...); err != nil {
			return err
		}

		reversed := make(map[int]int64, 2)
		for wid, d := range balanceDeltas(t.Type, t.AmountCents, t.WalletID, t.ToWalletID) {
			reversed[wid] = -d
		}
		if err := applyDeltas(ctx, tx, reversed); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `DELETE FROM transactions WHERE id = $1`, id)
		return err
	})
}

func (r *repository) GetByID(ctx context.Context, userID, id int) (*Transaction, error) {
	var t Transaction
	err := r.db.GetContext(ctx, &t,
		`SELECT id, user_id, wallet_id, to_wallet_id, category_id, type, amount_cents,
		        title, description, occurred_at, created_at, updated_at
		 FROM transactions
		 WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTransactionNotFound
	}
	if err != nil {
		return nil, err
	}

	return &t, nil
}

func (r *repository) List(ctx context.Context, userID int, filter ListFilter) (*ListResult, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultLimit
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}

	where := []string{"user_id = $1"}
	args := []interface{}{userID}

	if filter.WalletID != nil {
		args = append(args, *filter.WalletID)
		where = append(where, fmt.Sprintf("(wallet_id = $%d OR to_wallet_id = $%d)", len(args), len(args)))
	}
	if filter.Type != "" {
		args = append(args, filter.Type)
		where = append(where, fmt.Sprintf("type = $%d", len(args)))
	}

	whereClause := strings.Join(where, " AND ")

	var total int
	if err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM transactions WHERE "+whereClause, args...); err != nil {
		return nil, err
	}

	offset := (filter.Page - 1) * filter.Limit
	args = append(args, filter.Limit, offset)

	transactions := []Transaction{}
	query := fmt.Sprintf(`
		SELECT id, user_id, wallet_id, to_wallet_id, category_id, type, amount_cents,
		       title, description, occurred_at, created_at, updated_at
		FROM transactions
		WHERE %s
		ORDER BY occurred_at DESC, id DESC
		LIMIT $%d OFFSET $%d
	`, whereClause, len(args)-1, len(args))
	if err := r.db.SelectContext(ctx, &transactions, query, args...); err != nil {
		return nil, err
	}

	totalPages := (total + filter.Limit - 1) / filter.Limit

	return &ListResult{
		Transactions: transactions,
		Total:        total,
		Page:         filter.Page,
		Limit:        filter.Limit,
		TotalPages:   totalPages,
	}, nil
}
