package category

import "context"

type Repository interface {
	Create(ctx context.Context, userID int, req CreateCategoryRequest) (*Category, error)
	GetVisible(ctx context.Context, userID, categoryID int) (*Category, error)
	ListVisible(ctx context.Context, userID int) ([]Category, error)
	Update(ctx context.Context, userID, categoryID int, req UpdateCategoryRequest) (*Category, error)
	Delete(ctx context.Context, userID, categoryID int) error
}
