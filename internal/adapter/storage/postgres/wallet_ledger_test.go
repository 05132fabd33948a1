package postgres

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalletLedger_Credit(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	ledger := NewWalletLedger()
	cafeID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE cafes").
		WithArgs(cafeID, int64(20_000)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = ledger.Credit(context.Background(), tx, cafeID, 20_000)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletLedger_Credit_UnknownCafe(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	ledger := NewWalletLedger()
	cafeID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE cafes").
		WithArgs(cafeID, int64(20_000)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = ledger.Credit(context.Background(), tx, cafeID, 20_000)
	assert.Error(t, err)
}

func TestWalletLedger_Debit_Sufficient(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	ledger := NewWalletLedger()
	cafeID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE cafes").
		WithArgs(cafeID, int64(50_000)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	ok, err := ledger.Debit(context.Background(), tx, cafeID, 50_000)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletLedger_Debit_Insufficient(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	ledger := NewWalletLedger()
	cafeID := uuid.New()

	// The conditional WHERE matched no row: balance below the requested amount.
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE cafes").
		WithArgs(cafeID, int64(999_999)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	ok, err := ledger.Debit(context.Background(), tx, cafeID, 999_999)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestWalletLedger_Refund(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	ledger := NewWalletLedger()
	cafeID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE cafes").
		WithArgs(cafeID, int64(100_000)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = ledger.Refund(context.Background(), tx, cafeID, 100_000)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
