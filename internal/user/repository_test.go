package user

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func setupUserMock(t *testing.T) (Repository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewRepository(sqlxDB)

	closer := func() { sqlxDB.Close() }
	return repo, mock, closer
}

func userColumns() []string {
	return []string{"id", "name", "email", "password_hash", "created_at"}
}

func TestCreateAndFindUser(t *testing.T) {
	repo, mock, close := setupUserMock(t)
	defer close()

	ctx := context.Background()
	now := time.Now()

	// Create inserts the user and their default wallet in one transaction.
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users (name, email, password_hash) VALUES ($1, $2, $3) RETURNING id, name, email, password_hash, created_at")).
		WithArgs("Alice", "a@example.com", "hash").
		WillReturnRows(sqlmock.NewRows(userColumns()).AddRow(1, "Alice", "a@example.com", "hash", now))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO wallets (user_id, name, currency, is_default) VALUES ($1, $2, $3, TRUE)")).
		WithArgs(1, "Cash", "USD").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	u, err := repo.Create(ctx, "Alice", "a@example.com", "hash")
	require.NoError(t, err)
	require.Equal(t, 1, u.ID)

	// FindByEmail
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, email, password_hash, created_at FROM users WHERE email = $1")).
		WithArgs("a@example.com").
		WillReturnRows(sqlmock.NewRows(userColumns()).AddRow(1, "Alice", "a@example.com", "hash", now))

	fu, err := repo.FindByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	require.Equal(t, "Alice", fu.Name)

	// EmailExists true
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)")).
		WithArgs("a@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := repo.EmailExists(ctx, "a@example.com")
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUser_WalletInsertFailureRollsBack(t *testing.T) {
	repo, mock, close := setupUserMock(t)
	defer close()

	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users (name, email, password_hash) VALUES ($1, $2, $3) RETURNING id, name, email, password_hash, created_at")).
		WithArgs("Alice", "a@example.com", "hash").
		WillReturnRows(sqlmock.NewRows(userColumns()).AddRow(1, "Alice", "a@example.com", "hash", now))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO wallets (user_id, name, currency, is_default) VALUES ($1, $2, $3, TRUE)")).
		WithArgs(1, "Cash", "USD").
		WillReturnError(errors.New("insert failed"))
	mock.ExpectRollback()

	_, err := repo.Create(context.Background(), "Alice", "a@example.com", "hash")
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByEmail_NotFound(t *testing.T) {
	repo, mock, close := setupUserMock(t)
	defer close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, email, password_hash, created_at FROM users WHERE email = $1")).
		WithArgs("missing@example.com").
		WillReturnRows(sqlmock.NewRows(userColumns()))

	_, err := repo.FindByEmail(context.Background(), "missing@example.com")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestFindByID_NotFound(t *testing.T) {
	repo, mock, close := setupUserMock(t)
	defer close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, email, password_hash, created_at FROM users WHERE id = $1")).
		WithArgs(99).
		WillReturnRows(sqlmock.NewRows(userColumns()))

	_, err := repo.FindByID(context.Background(), 99)
	require.ErrorIs(t, err, ErrUserNotFound)
}
