package category

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func setupCategoryMock(t *testing.T) (Repository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewRepository(sqlxDB)

	closer := func() { sqlxDB.Close() }
	return repo, mock, closer
}

func categoryColumns() []string {
	return []string{"id", "user_id", "name", "type", "icon", "color", "created_at"}
}

func TestCreateCategory(t *testing.T) {
	repo, mock, close := setupCategoryMock(t)
	defer close()

	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO categories (user_id, name, type, icon, color) VALUES ($1, $2, $3, $4, $5) RETURNING id, user_id, name, type, icon, color, created_at")).
		WithArgs(1, "Coffee", TypeExpense, "coffee", "#795548").
		WillReturnRows(sqlmock.NewRows(categoryColumns()).
			AddRow(11, 1, "Coffee", TypeExpense, "coffee", "#795548", now))

	cat, err := repo.Create(context.Background(), 1, CreateCategoryRequest{
		Name:  "Coffee",
		Type:  TypeExpense,
		Icon:  "coffee",
		Color: "#795548",
	})
	require.NoError(t, err)
	require.Equal(t, 11, cat.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetVisible_SharedDefault(t *testing.T) {
	repo, mock, close := setupCategoryMock(t)
	defer close()

	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1 AND (user_id = $2 OR user_id IS NULL)")).
		WithArgs(3, 1).
		WillReturnRows(sqlmock.NewRows(categoryColumns()).
			AddRow(3, nil, "Groceries", TypeExpense, "shopping-cart", "#f57c00", now))

	cat, err := repo.GetVisible(context.Background(), 1, 3)
	require.NoError(t, err)
	require.True(t, cat.IsDefault())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetVisible_OtherUsersCategoryHidden(t *testing.T) {
	repo, mock, close := setupCategoryMock(t)
	defer close()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1 AND (user_id = $2 OR user_id IS NULL)")).
		WithArgs(8, 1).
		WillReturnRows(sqlmock.NewRows(categoryColumns()))

	_, err := repo.GetVisible(context.Background(), 1, 8)
	require.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestUpdateCategory_DefaultReadOnly(t *testing.T) {
	repo, mock, close := setupCategoryMock(t)
	defer close()

	now := time.Now()
	name := "Renamed"

	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1 AND (user_id = $2 OR user_id IS NULL)")).
		WithArgs(3, 1).
		WillReturnRows(sqlmock.NewRows(categoryColumns()).
			AddRow(3, nil, "Groceries", TypeExpense, "shopping-cart", "#f57c00", now))

	_, err := repo.Update(context.Background(), 1, 3, UpdateCategoryRequest{Name: &name})
	require.ErrorIs(t, err, ErrDefaultReadOnly)
}

func TestDeleteCategory_InUse(t *testing.T) {
	repo, mock, close := setupCategoryMock(t)
	defer close()

	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM categories WHERE id = $1 AND user_id = $2 FOR UPDATE")).
		WithArgs(11, 1).
		WillReturnRows(sqlmock.NewRows(categoryColumns()).
			AddRow(11, 1, "Coffee", TypeExpense, "coffee", "#795548", now))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM transactions WHERE category_id = $1)")).
		WithArgs(11).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectRollback()

	err := repo.Delete(context.Background(), 1, 11)
	require.ErrorIs(t, err, ErrCategoryInUse)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteCategory_Success(t *testing.T) {
	repo, mock, close := setupCategoryMock(t)
	defer close()

	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM categories WHERE id = $1 AND user_id = $2 FOR UPDATE")).
		WithArgs(11, 1).
		WillReturnRows(sqlmock.NewRows(categoryColumns()).
			AddRow(11, 1, "Coffee", TypeExpense, "coffee", "#795548", now))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM transactions WHERE category_id = $1)")).
		WithArgs(11).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM categories WHERE id = $1")).
		WithArgs(11).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Delete(context.Background(), 1, 11)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
