package postgres

import (
	"context"
	"testing"
	"time"

	"cafetip/internal/core/domain"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTip() *domain.Tip {
	return &domain.Tip{
		ID:         uuid.New(),
		CafeID:     uuid.New(),
		Amount:     20_000,
		Commission: 1_000,
		TotalPaid:  21_000,
		Status:     domain.TipStatusPending,
		ClientIP:   "1.2.3.4",
		UserAgent:  "test-agent",
		CreatedAt:  time.Now().UTC().Truncate(time.Microsecond),
		UpdatedAt:  time.Now().UTC().Truncate(time.Microsecond),
	}
}

func tipColumnNames() []string {
	return []string{"id", "cafe_id", "amount", "commission", "total_paid", "status", "rating", "comment", "nickname", "payment_ref", "client_ip", "user_agent", "created_at", "updated_at"}
}

func tipRow(tip *domain.Tip) *pgxmock.Rows {
	return pgxmock.NewRows(tipColumnNames()).AddRow(
		tip.ID, tip.CafeID, tip.Amount, tip.Commission, tip.TotalPaid, tip.Status,
		tip.Rating, tip.Comment, tip.Nickname, tip.PaymentRef, tip.ClientIP, tip.UserAgent,
		tip.CreatedAt, tip.UpdatedAt,
	)
}

func TestTipRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTipRepo(mock)
	tip := newTestTip()

	mock.ExpectExec("INSERT INTO tips").
		WithArgs(tip.ID, tip.CafeID, tip.Amount, tip.Commission, tip.TotalPaid, tip.Status,
			tip.Rating, tip.Comment, tip.Nickname, tip.PaymentRef, tip.ClientIP, tip.UserAgent,
			tip.CreatedAt, tip.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = repo.Create(context.Background(), tip)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTipRepo_GetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTipRepo(mock)
	tip := newTestTip()

	mock.ExpectQuery("SELECT .+ FROM tips WHERE id").
		WithArgs(tip.ID).
		WillReturnRows(tipRow(tip))

	result, err := repo.GetByID(context.Background(), tip.ID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, int64(21_000), result.TotalPaid)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTipRepo_GetByID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTipRepo(mock)
	id := uuid.New()

	mock.ExpectQuery("SELECT .+ FROM tips WHERE id").
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows(tipColumnNames()))

	result, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestTipRepo_MarkPaid(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTipRepo(mock)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE tips SET status = 'PAID'").
		WithArgs(id, "987654").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.MarkPaid(context.Background(), tx, id, "987654")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTipRepo_MarkPaid_AlreadyTerminal(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTipRepo(mock)
	id := uuid.New()

	// The PENDING guard matched nothing: the tip already settled.
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE tips SET status = 'PAID'").
		WithArgs(id, "987654").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.MarkPaid(context.Background(), tx, id, "987654")
	assert.Error(t, err)
}

func TestTipRepo_MarkFailed(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTipRepo(mock)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE tips SET status = 'FAILED'").
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.MarkFailed(context.Background(), tx, id)
	assert.NoError(t, err)
}
