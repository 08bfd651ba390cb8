package category

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"centavo/internal/db"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrCategoryInUse    = errors.New("category is referenced by transactions")
	ErrDefaultReadOnly  = errors.New("default categories cannot be modified")
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(database *sqlx.DB) Repository {
	return &repository{db: database}
}

func (r *repository) Create(ctx context.Context, userID int, req CreateCategoryRequest) (*Category, error) {
	query := `
		INSERT INTO categories (user_id, name, type, icon, color)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, user_id, name, type, icon, color, created_at
	`

	var cat Category
	if err := r.db.GetContext(ctx, &cat, query, userID, req.Name, req.Type, req.Icon, req.Color); err != nil {
		return nil, err
	}

	return &cat, nil
}

// GetVisible returns a category the user can reference: their own or a
// shared default.
func (r *repository) GetVisible(ctx context.Context, userID, categoryID int) (*Category, error) {
	query := `
		SELECT id, user_id, name, type, icon, color, created_at
		FROM categories
		WHERE id = $1 AND (user_id = $2 OR user_id IS NULL)
	`

	var cat Category
	err := r.db.GetContext(ctx, &cat, query, categoryID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCategoryNotFound
	}
	if err != nil {
		return nil, err
	}

	return &cat, nil
}

func (r *repository) ListVisible(ctx context.Context, userID int) ([]Category, error) {
	categories := []Category{}
	err := r.db.SelectContext(ctx, &categories, `
		SELECT id, user_id, name, type, icon, color, created_at
		FROM categories
		WHERE user_id = $1 OR user_id IS NULL
		ORDER BY user_id NULLS FIRST, type, name
	`, userID)
	if err != nil {
		return nil, err
	}

	return categories, nil
}

func (r *repository) Update(ctx context.Context, userID, categoryID int, req UpdateCategoryRequest) (*Category, error) {
	cat, err := r.GetVisible(ctx, userID, categoryID)
	if err != nil {
		return nil, err
	}
	if cat.IsDefault() {
		return nil, ErrDefaultReadOnly
	}

	if req.Name != nil {
		cat.Name = *req.Name
	}
	if req.Icon != nil {
		cat.Icon = *req.Icon
	}
	if req.Color != nil {
		cat.Color = *req.Color
	}

	query := `
		UPDATE categories
		SET name = $1, icon = $2, color = $3
		WHERE id = $4 AND user_id = $5
		RETURNING id, user_id, name, type, icon, color, created_at
	`

	var updated Category
	if err := r.db.GetContext(ctx, &updated, query, cat.Name, cat.Icon, cat.Color, categoryID, userID); err != nil {
		return nil, err
	}

	return &updated, nil
}

func (r *repository) Delete(ctx context.Context, userID, categoryID int) error {
	return db.RunInTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var cat Category
		err := tx.QueryRowxContext(ctx, `
			SELECT id, user_id, name, type, icon, color, created_at
			FROM categories
			WHERE id = $1 AND user_id = $2
			FOR UPDATE
		`, categoryID, userID).StructScan(&cat)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrCategoryNotFound
		}
		if err != nil {
			return err
		}

		var inUse bool
		if err := tx.GetContext(ctx, &inUse,
			`SELECT EXISTS(SELECT 1 FROM transactions WHERE category_id = $1)`,
			categoryID); err != nil {
			return err
		}
		if inUse {
			return ErrCategoryInUse
		}

		_, err = tx.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, categoryID)
		return err
	})
}
