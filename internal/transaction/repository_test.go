package transaction

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTransactionMock(t *testing.T) (Repository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewRepository(sqlxDB)

	closer := func() { sqlxDB.Close() }
	return repo, mock, closer
}

func transactionColumns() []string {
	return []string{
		"id", "user_id", "wallet_id", "to_wallet_id", "category_id", "type",
		"amount_cents", "title", "description", "occurred_at", "created_at", "updated_at",
	}
}

const (
	lockWalletsQuery = "SELECT id FROM wallets WHERE id = ANY($1) AND user_id = $2 ORDER BY id FOR UPDATE"
	applyDeltaQuery  = "UPDATE wallets SET balance_cents = balance_cents + $1, updated_at = NOW() WHERE id = $2"
	selectForUpdate  = "FROM transactions WHERE id = $1 AND user_id = $2 FOR UPDATE"
)

func TestCreate_IncomeIncreasesBalance(t *testing.T) {
	repo, mock, close := setupTransactionMock(t)
	defer close()

	ctx := context.Background()
	now := time.Now()
	catID := 3

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockWalletsQuery)).
		WithArgs(pq.Array([]int{1}), 10).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectExec(regexp.QuoteMeta(applyDeltaQuery)).
		WithArgs(int64(5000), 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO transactions")).
		WithArgs(10, 1, nil, &catID, TypeIncome, int64(5000), "Paycheck", "", now).
		WillReturnRows(sqlmock.NewRows(transactionColumns()).
			AddRow(1, 10, 1, nil, catID, TypeIncome, 5000, "Paycheck", "", now, now, now))
	mock.ExpectCommit()

	created, err := repo.Create(ctx, &Transaction{
		UserID:      10,
		WalletID:    1,
		CategoryID:  &catID,
		Type:        TypeIncome,
		AmountCents: 5000,
		Title:       "Paycheck",
		OccurredAt:  now,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, created.ID)
	assert.Equal(t, int64(5000), created.AmountCents)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_TransferMovesBothBalances(t *testing.T) {
	repo, mock, close := setupTransactionMock(t)
	defer close()

	ctx := context.Background()
	now := time.Now()
	dest := 2

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockWalletsQuery)).
		WithArgs(pq.Array([]int{1, 2}), 10).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1).AddRow(2))
	// Deltas apply in ascending wallet id order.
	mock.ExpectExec(regexp.QuoteMeta(applyDeltaQuery)).
		WithArgs(int64(-3000), 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(applyDeltaQuery)).
		WithArgs(int64(3000), 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO transactions")).
		WithArgs(10, 1, &dest, nil, TypeTransfer, int64(3000), "", "", now).
		WillReturnRows(sqlmock.NewRows(transactionColumns()).
			AddRow(7, 10, 1, dest, nil, TypeTransfer, 3000, "", "", now, now, now))
	mock.ExpectCommit()

	created, err := repo.Create(ctx, &Transaction{
		UserID:      10,
		WalletID:    1,
		ToWalletID:  &dest,
		Type:        TypeTransfer,
		AmountCents: 3000,
		OccurredAt:  now,
	})
	require.NoError(t, err)
	assert.Equal(t, 7, created.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_UnknownWalletRollsBack(t *testing.T) {
	repo, mock, close := setupTransactionMock(t)
	defer close()

	ctx := context.Background()

	mock.ExpectBegin()
	// Lock returns fewer rows than requested: wallet missing or not owned.
	mock.ExpectQuery(regexp.QuoteMeta(lockWalletsQuery)).
		WithArgs(pq.Array([]int{99}), 10).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	catID := 3
	_, err := repo.Create(ctx, &Transaction{
		UserID:      10,
		WalletID:    99,
		CategoryID:  &catID,
		Type:        TypeExpense,
		AmountCents: 100,
		OccurredAt:  time.Now(),
	})
	require.ErrorIs(t, err, ErrWalletNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_InsertFailureRollsBackBalanceUpdate(t *testing.T) {
	repo, mock, close := setupTransactionMock(t)
	defer close()

	ctx := context.Background()
	catID := 3

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockWalletsQuery)).
		WithArgs(pq.Array([]int{1}), 10).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectExec(regexp.QuoteMeta(applyDeltaQuery)).
		WithArgs(int64(-100), 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO transactions")).
		WillReturnError(errors.New("insert failed"))
	mock.ExpectRollback()

	_, err := repo.Create(ctx, &Transaction{
		UserID:      10,
		WalletID:    1,
		CategoryID:  &catID,
		Type:        TypeExpense,
		AmountCents: 100,
		OccurredAt:  time.Now(),
	})
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete_ReversesTransferOnBothWallets(t *testing.T) {
	repo, mock, close := setupTransactionMock(t)
	defer close()

	ctx := context.Background()
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(selectForUpdate)).
		WithArgs(7, 10).
		WillReturnRows(sqlmock.NewRows(transactionColumns()).
			AddRow(7, 10, 1, 2, nil, TypeTransfer, 3000, "", "", now, now, now))
	mock.ExpectQuery(regexp.QuoteMeta(lockWalletsQuery)).
		WithArgs(pq.Array([]int{1, 2}), 10).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1).AddRow(2))
	// Reversal: money returns to the source, leaves the destination.
	mock.ExpectExec(regexp.QuoteMeta(applyDeltaQuery)).
		WithArgs(int64(3000), 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(applyDeltaQuery)).
		WithArgs(int64(-3000), 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM transactions WHERE id = $1")).
		WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Delete(ctx, 10, 7)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete_MissingTransaction(t *testing.T) {
	repo, mock, close := setupTransactionMock(t)
	defer close()

	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(selectForUpdate)).
		WithArgs(42, 10).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	err := repo.Delete(ctx, 10, 42)
	require.ErrorIs(t, err, ErrTransactionNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate_AmountChangeAppliesNetDelta(t *testing.T) {
	repo, mock, close := setupTransactionMock(t)
	defer close()

	ctx := context.Background()
	now := time.Now()
	catID := 3
	newAmount := int64(8000)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(selectForUpdate)).
		WithArgs(5, 10).
		WillReturnRows(sqlmock.NewRows(transactionColumns()).
			AddRow(5, 10, 1, nil, catID, TypeExpense, 5000, "Dinner", "", now, now, now))
	mock.ExpectQuery(regexp.QuoteMeta(lockWalletsQuery)).
		WithArgs(pq.Array([]int{1}), 10).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	// Expense went from 5000 to 8000: net -3000 on the wallet.
	mock.ExpectExec(regexp.QuoteMeta(applyDeltaQuery)).
		WithArgs(int64(-3000), 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE transactions")).
		WillReturnRows(sqlmock.NewRows(transactionColumns()).
			AddRow(5, 10, 1, nil, catID, TypeExpense, 8000, "Dinner", "", now, now, now))
	mock.ExpectCommit()

	updated, err := repo.Update(ctx, 10, 5, UpdateTransactionRequest{AmountCents: &newAmount})
	require.NoError(t, err)
	assert.Equal(t, int64(8000), updated.AmountCents)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate_WalletMoveShiftsEffect(t *testing.T) {
	repo, mock, close := setupTransactionMock(t)
	defer close()

	ctx := context.Background()
	now := time.Now()
	catID := 3
	newWallet := 2

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(selectForUpdate)).
		WithArgs(5, 10).
		WillReturnRows(sqlmock.NewRows(transactionColumns()).
			AddRow(5, 10, 1, nil, catID, TypeExpense, 5000, "Dinner", "", now, now, now))
	mock.ExpectQuery(regexp.QuoteMeta(lockWalletsQuery)).
		WithArgs(pq.Array([]int{1, 2}), 10).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1).AddRow(2))
	// Full expense effect moves from wallet 1 to wallet 2.
	mock.ExpectExec(regexp.QuoteMeta(applyDeltaQuery)).
		WithArgs(int64(5000), 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(applyDeltaQuery)).
		WithArgs(int64(-5000), 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE transactions")).
		WillReturnRows(sqlmock.NewRows(transactionColumns()).
			AddRow(5, 10, 2, nil, catID, TypeExpense, 5000, "Dinner", "", now, now, now))
	mock.ExpectCommit()

	updated, err := repo.Update(ctx, 10, 5, UpdateTransactionRequest{WalletID: &newWallet})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.WalletID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate_NoBalanceChangeSkipsWalletWork(t *testing.T) {
	repo, mock, close := setupTransactionMock(t)
	defer close()

	ctx := context.Background()
	now := time.Now()
	catID := 3
	title := "Groceries"

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(selectForUpdate)).
		WithArgs(5, 10).
		WillReturnRows(sqlmock.NewRows(transactionColumns()).
			AddRow(5, 10, 1, nil, catID, TypeExpense, 5000, "Dinner", "", now, now, now))
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE transactions")).
		WillReturnRows(sqlmock.NewRows(transactionColumns()).
			AddRow(5, 10, 1, nil, catID, TypeExpense, 5000, "Groceries", "", now, now, now))
	mock.ExpectCommit()

	updated, err := repo.Update(ctx, 10, 5, UpdateTransactionRequest{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Groceries", updated.Title)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate_TransferToSameWalletRejected(t *testing.T) {
	repo, mock, close := setupTransactionMock(t)
	defer close()

	ctx := context.Background()
	now := time.Now()
	sameWallet := 1
	transfer := TypeTransfer

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(selectForUpdate)).
		WithArgs(5, 10).
		WillReturnRows(sqlmock.NewRows(transactionColumns()).
			AddRow(5, 10, 1, nil, 3, TypeExpense, 5000, "", "", now, now, now))
	mock.ExpectRollback()

	_, err := repo.Update(ctx, 10, 5, UpdateTransactionRequest{
		Type:       &transfer,
		ToWalletID: &sameWallet,
	})
	require.ErrorIs(t, err, ErrSameWallet)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBalanceDeltas(t *testing.T) {
	dest := 2

	income := balanceDeltas(TypeIncome, 1000, 1, nil)
	assert.Equal(t, map[int]int64{1: 1000}, income)

	expense := balanceDeltas(TypeExpense, 1000, 1, nil)
	assert.Equal(t, map[int]int64{1: -1000}, expense)

	transfer := balanceDeltas(TypeTransfer, 1000, 1, &dest)
	assert.Equal(t, map[int]int64{1: -1000, 2: 1000}, transfer)
}

func TestBalanceAffecting(t *testing.T) {
	dest := 2
	otherDest := 3

	base := Transaction{Type: TypeTransfer, AmountCents: 100, WalletID: 1, ToWalletID: &dest}

	same := base
	assert.False(t, balanceAffecting(&base, &same))

	moved := base
	moved.ToWalletID = &otherDest
	assert.True(t, balanceAffecting(&base, &moved))

	repriced := base
	repriced.AmountCents = 200
	assert.True(t, balanceAffecting(&base, &repriced))
}
