package category

import "time"

const (
	TypeIncome  = "income"
	TypeExpense = "expense"
)

type Category struct {
	ID        int       `db:"id" json:"id"`
	UserID    *int      `db:"user_id" json:"user_id,omitempty"`
	Name      string    `db:"name" json:"name"`
	Type      string    `db:"type" json:"type"`
	Icon      string    `db:"icon" json:"icon"`
	Color     string    `db:"color" json:"color"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// IsDefault reports whether the category is one of the shared defaults.
func (c *Category) IsDefault() bool {
	return c.UserID == nil
}

type CreateCategoryRequest struct {
	Name  string `json:"name" binding:"required,max=100"`
	Type  string `json:"type" binding:"required,oneof=income expense"`
	Icon  string `json:"icon" binding:"omitempty,max=50"`
	Color string `json:"color" binding:"omitempty,max=20"`
}

type UpdateCategoryRequest struct {
	Name  *string `json:"name" binding:"omitempty,max=100"`
	Icon  *string `json:"icon" binding:"omitempty,max=50"`
	Color *string `json:"color" binding:"omitempty,max=20"`
}
