package wallet

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupWalletMock(t *testing.T) (Repository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewRepository(sqlxDB)

	closer := func() { sqlxDB.Close() }
	return repo, mock, closer
}

func walletColumns() []string {
	return []string{"id", "user_id", "name", "currency", "balance_cents", "is_default", "created_at", "updated_at"}
}

const selectWalletForUpdate = "FROM wallets WHERE id = $1 AND user_id = $2 FOR UPDATE"

func TestCreate_FirstWalletBecomesDefault(t *testing.T) {
	repo, mock, close := setupWalletMock(t)
	defer close()

	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM wallets WHERE user_id = $1")).
		WithArgs(10).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	// First wallet: the default flag is forced on even though the caller
	// asked for false, and the unset pass still runs.
	mock.ExpectExec(regexp.QuoteMeta("UPDATE wallets SET is_default = FALSE, updated_at = NOW() WHERE user_id = $1 AND is_default")).
		WithArgs(10).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO wallets (user_id, name, currency, is_default)")).
		WithArgs(10, "Cash", "USD", true).
		WillReturnRows(sqlmock.NewRows(walletColumns()).
			AddRow(1, 10, "Cash", "USD", 0, true, now, now))
	mock.ExpectCommit()

	w, err := repo.Create(context.Background(), 10, "Cash", "", false)
	require.NoError(t, err)
	assert.True(t, w.IsDefault)
	assert.Equal(t, "USD", w.Currency)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_NewDefaultUnsetsOldOne(t *testing.T) {
	repo, mock, close := setupWalletMock(t)
	defer close()

	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM wallets WHERE user_id = $1")).
		WithArgs(10).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE wallets SET is_default = FALSE, updated_at = NOW() WHERE user_id = $1 AND is_default")).
		WithArgs(10).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO wallets (user_id, name, currency, is_default)")).
		WithArgs(10, "Savings", "EUR", true).
		WillReturnRows(sqlmock.NewRows(walletColumns()).
			AddRow(3, 10, "Savings", "EUR", 0, true, now, now))
	mock.ExpectCommit()

	w, err := repo.Create(context.Background(), 10, "Savings", "EUR", true)
	require.NoError(t, err)
	assert.True(t, w.IsDefault)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate_UnsettingDefaultRejected(t *testing.T) {
	repo, mock, close := setupWalletMock(t)
	defer close()

	now := time.Now()
	notDefault := false

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(selectWalletForUpdate)).
		WithArgs(1, 10).
		WillReturnRows(sqlmock.NewRows(walletColumns()).
			AddRow(1, 10, "Cash", "USD", 500, true, now, now))
	mock.ExpectRollback()

	_, err := repo.Update(context.Background(), 10, 1, UpdateWalletRequest{IsDefault: &notDefault})
	require.ErrorIs(t, err, ErrDefaultRequired)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete_DefaultWalletRefused(t *testing.T) {
	repo, mock, close := setupWalletMock(t)
	defer close()

	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(selectWalletForUpdate)).
		WithArgs(1, 10).
		WillReturnRows(sqlmock.NewRows(walletColumns()).
			AddRow(1, 10, "Cash", "USD", 500, true, now, now))
	mock.ExpectRollback()

	err := repo.Delete(context.Background(), 10, 1, false)
	require.ErrorIs(t, err, ErrDefaultWalletDelete)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete_LinkedTransactionsNeedForce(t *testing.T) {
	repo, mock, close := setupWalletMock(t)
	defer close()

	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(selectWalletForUpdate)).
		WithArgs(2, 10).
		WillReturnRows(sqlmock.NewRows(walletColumns()).
			AddRow(2, 10, "Savings", "USD", 500, false, now, now))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM transactions WHERE wallet_id = $1 OR to_wallet_id = $1")).
		WithArgs(2).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectRollback()

	err := repo.Delete(context.Background(), 10, 2, false)
	require.ErrorIs(t, err, ErrWalletHasTransactions)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete_ForceReversesTransferLegs(t *testing.T) {
	repo, mock, close := setupWalletMock(t)
	defer close()

	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(selectWalletForUpdate)).
		WithArgs(2, 10).
		WillReturnRows(sqlmock.NewRows(walletColumns()).
			AddRow(2, 10, "Savings", "USD", 500, false, now, now))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM transactions WHERE wallet_id = $1 OR to_wallet_id = $1")).
		WithArgs(2).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectExec(regexp.QuoteMeta("SET balance_cents = w.balance_cents - x.total")).
		WithArgs(2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("SET balance_cents = w.balance_cents + x.total")).
		WithArgs(2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM transactions WHERE wallet_id = $1 OR to_wallet_id = $1")).
		WithArgs(2).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM wallets WHERE id = $1")).
		WithArgs(2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Delete(context.Background(), 10, 2, true)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
