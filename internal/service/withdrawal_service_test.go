package service

import (
	"context"
	"testing"

	"cafetip/internal/core/domain"
	"cafetip/internal/core/ports"
	"cafetip/internal/core/ports/mocks"
	"cafetip/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type withdrawalTestDeps struct {
	svc        *WithdrawalServiceImpl
	payoutRepo *mocks.MockPayoutRepository
	cafeRepo   *mocks.MockCafeRepository
	ledger     *mocks.MockWalletLedger
	audit      *mocks.MockAuditService
	transactor *mocks.MockDBTransactor
	ctrl       *gomock.Controller
}

func setupWithdrawalService(t *testing.T) *withdrawalTestDeps {
	ctrl := gomock.NewController(t)
	d := &withdrawalTestDeps{
		payoutRepo: mocks.NewMockPayoutRepository(ctrl),
		cafeRepo:   mocks.NewMockCafeRepository(ctrl),
		ledger:     mocks.NewMockWalletLedger(ctrl),
		audit:      mocks.NewMockAuditService(ctrl),
		transactor: mocks.NewMockDBTransactor(ctrl),
		ctrl:       ctrl,
	}
	d.svc = NewWithdrawalService(
		d.payoutRepo, d.cafeRepo, d.ledger, d.audit, d.transactor, zerolog.Nop(),
	)
	return d
}

func ownedCafe(ownerID uuid.UUID, balance int64) *domain.Cafe {
	return &domain.Cafe{
		ID:            uuid.New(),
		OwnerID:       ownerID,
		Name:          "Cafe Dena",
		WalletBalance: balance,
		IsActive:      true,
	}
}

// ==================== Request Tests ====================

func TestWithdrawalService_Request_Success(t *testing.T) {
	d := setupWithdrawalService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	ownerID := uuid.New()
	cafe := ownedCafe(ownerID, 200_000)
	tx := &mockTx{}

	d.cafeRepo.EXPECT().GetByOwnerID(ctx, ownerID).Return(cafe, nil)
	d.payoutRepo.EXPECT().CountPending(ctx, cafe.ID).Return(0, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.ledger.EXPECT().Debit(ctx, tx, cafe.ID, int64(100_000)).Return(true, nil)
	d.payoutRepo.EXPECT().Create(ctx, tx, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ any, p *domain.Payout) error {
			assert.Equal(t, int64(100_000), p.Amount)
			assert.Equal(t, int64(10_000), p.Fee)
			assert.Equal(t, int64(90_000), p.NetAmount)
			assert.Equal(t, domain.PayoutStatusPending, p.Status)
			return nil
		})
	d.audit.EXPECT().Log(gomock.Any(), gomock.Any())

	payout, err := d.svc.Request(ctx, ports.WithdrawalRequest{
		OwnerID:  ownerID,
		Amount:   100_000,
		BankInfo: "IR062960000000100324200001",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(90_000), payout.NetAmount)
}

func TestWithdrawalService_Request_FeeWaivedAboveThreshold(t *testing.T) {
	d := setupWithdrawalService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	ownerID := uuid.New()
	cafe := ownedCafe(ownerID, 1_000_000)
	tx := &mockTx{}

	d.cafeRepo.EXPECT().GetByOwnerID(ctx, ownerID).Return(cafe, nil)
	d.payoutRepo.EXPECT().CountPending(ctx, cafe.ID).Return(0, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.ledger.EXPECT().Debit(ctx, tx, cafe.ID, int64(500_000)).Return(true, nil)
	d.payoutRepo.EXPECT().Create(ctx, tx, gomock.Any()).Return(nil)
	d.audit.EXPECT().Log(gomock.Any(), gomock.Any())

	payout, err := d.svc.Request(ctx, ports.WithdrawalRequest{
		OwnerID:  ownerID,
		Amount:   500_000,
		BankInfo: "IR062960000000100324200001",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), payout.Fee)
	assert.Equal(t, int64(500_000), payout.NetAmount)
}

func TestWithdrawalService_Request_BelowMinimum(t *testing.T) {
	d := setupWithdrawalService(t)
	defer d.ctrl.Finish()

	_, err := d.svc.Request(context.Background(), ports.WithdrawalRequest{
		OwnerID:  uuid.New(),
		Amount:   9_999,
		BankInfo: "IR062960000000100324200001",
	})
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "WDR_001", appErr.Code)
}

func TestWithdrawalService_Request_InvalidBankInfo(t *testing.T) {
	d := setupWithdrawalService(t)
	defer d.ctrl.Finish()

	// Whitespace padding must not count toward the minimum length.
	for _, bankInfo := range []string{"", "   ", "IR123", "          X"} {
		_, err := d.svc.Request(context.Background(), ports.WithdrawalRequest{
			OwnerID:  uuid.New(),
			Amount:   50_000,
			BankInfo: bankInfo,
		})
		var appErr *apperror.AppError
		require.ErrorAs(t, err, &appErr, "bank info %q", bankInfo)
		assert.Equal(t, "WDR_003", appErr.Code)
	}
}

func TestWithdrawalService_Request_InsufficientBalance(t *testing.T) {
	d := setupWithdrawalService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	ownerID := uuid.New()
	cafe := ownedCafe(ownerID, 30_000)
	tx := &mockTx{}

	d.cafeRepo.EXPECT().GetByOwnerID(ctx, ownerID).Return(cafe, nil)
	d.payoutRepo.EXPECT().CountPending(ctx, cafe.ID).Return(0, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	// Conditional debit reports insufficient funds; no payout row is created.
	d.ledger.EXPECT().Debit(ctx, tx, cafe.ID, int64(50_000)).Return(false, nil)

	_, err := d.svc.Request(ctx, ports.WithdrawalRequest{
		OwnerID:  ownerID,
		Amount:   50_000,
		BankInfo: "IR062960000000100324200001",
	})
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "WDR_002", appErr.Code)
}

func TestWithdrawalService_Request_TooManyPending(t *testing.T) {
	d := setupWithdrawalService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	ownerID := uuid.New()
	cafe := ownedCafe(ownerID, 1_000_000)

	d.cafeRepo.EXPECT().GetByOwnerID(ctx, ownerID).Return(cafe, nil)
	d.payoutRepo.EXPECT().CountPending(ctx, cafe.ID).Return(domain.MaxPendingPayouts, nil)

	_, err := d.svc.Request(ctx, ports.WithdrawalRequest{
		OwnerID:  ownerID,
		Amount:   50_000,
		BankInfo: "IR062960000000100324200001",
	})
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "WDR_004", appErr.Code)
}

// ==================== UpdateStatus Tests ====================

func pendingPayout(cafeID uuid.UUID) *domain.Payout {
	return &domain.Payout{
		ID:        uuid.New(),
		CafeID:    cafeID,
		Amount:    100_000,
		Fee:       10_000,
		NetAmount: 90_000,
		BankInfo:  "IR062960000000100324200001",
		Status:    domain.PayoutStatusPending,
	}
}

func TestWithdrawalService_UpdateStatus_ToProcessing(t *testing.T) {
	d := setupWithdrawalService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	payout := pendingPayout(uuid.New())
	adminID := uuid.New()
	tx := &mockTx{}

	d.payoutRepo.EXPECT().GetByID(ctx, payout.ID).Return(payout, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.payoutRepo.EXPECT().UpdateStatus(ctx, tx, payout.ID, domain.PayoutStatusProcessing).Return(nil)
	d.audit.EXPECT().Log(gomock.Any(), gomock.Any())

	updated, err := d.svc.UpdateStatus(ctx, ports.PayoutStatusUpdate{
		PayoutID: payout.ID,
		Status:   domain.PayoutStatusProcessing,
		ActorID:  adminID,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.PayoutStatusProcessing, updated.Status)
}

func TestWithdrawalService_UpdateStatus_RejectionRefunds(t *testing.T) {
	d := setupWithdrawalService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	cafeID := uuid.New()
	payout := pendingPayout(cafeID)
	tx := &mockTx{}

	d.payoutRepo.EXPECT().GetByID(ctx, payout.ID).Return(payout, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.payoutRepo.EXPECT().UpdateStatus(ctx, tx, payout.ID, domain.PayoutStatusRejected).Return(nil)
	// The full held amount comes back, not the net.
	d.ledger.EXPECT().Refund(ctx, tx, cafeID, int64(100_000)).Return(nil)
	d.audit.EXPECT().Log(gomock.Any(), gomock.Any())

	updated, err := d.svc.UpdateStatus(ctx, ports.PayoutStatusUpdate{
		PayoutID: payout.ID,
		Status:   domain.PayoutStatusRejected,
		ActorID:  uuid.New(),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.PayoutStatusRejected, updated.Status)
}

func TestWithdrawalService_UpdateStatus_CompletionDoesNotRefund(t *testing.T) {
	d := setupWithdrawalService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	payout := pendingPayout(uuid.New())
	payout.Status = domain.PayoutStatusProcessing
	tx := &mockTx{}

	d.payoutRepo.EXPECT().GetByID(ctx, payout.ID).Return(payout, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.payoutRepo.EXPECT().UpdateStatus(ctx, tx, payout.ID, domain.PayoutStatusCompleted).Return(nil)
	d.audit.EXPECT().Log(gomock.Any(), gomock.Any())
	// No Refund expectation: Completed keeps the debit.

	_, err := d.svc.UpdateStatus(ctx, ports.PayoutStatusUpdate{
		PayoutID: payout.ID,
		Status:   domain.PayoutStatusCompleted,
		ActorID:  uuid.New(),
	})
	require.NoError(t, err)
}

func TestWithdrawalService_UpdateStatus_TerminalPayoutRejectsChange(t *testing.T) {
	d := setupWithdrawalService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	payout := pendingPayout(uuid.New())
	payout.Status = domain.PayoutStatusRejected

	d.payoutRepo.EXPECT().GetByID(ctx, payout.ID).Return(payout, nil)

	// A second rejection must not trigger a second refund.
	_, err := d.svc.UpdateStatus(ctx, ports.PayoutStatusUpdate{
		PayoutID: payout.ID,
		Status:   domain.PayoutStatusRejected,
		ActorID:  uuid.New(),
	})
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "WDR_006", appErr.Code)
}

func TestWithdrawalService_UpdateStatus_NotFound(t *testing.T) {
	d := setupWithdrawalService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	id := uuid.New()
	d.payoutRepo.EXPECT().GetByID(ctx, id).Return(nil, nil)

	_, err := d.svc.UpdateStatus(ctx, ports.PayoutStatusUpdate{
		PayoutID: id,
		Status:   domain.PayoutStatusProcessing,
		ActorID:  uuid.New(),
	})
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "WDR_005", appErr.Code)
}

// ==================== Overview Tests ====================

func TestWithdrawalService_Overview(t *testing.T) {
	d := setupWithdrawalService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	ownerID := uuid.New()
	cafe := ownedCafe(ownerID, 150_000)
	payouts := []domain.Payout{*pendingPayout(cafe.ID)}

	d.cafeRepo.EXPECT().GetByOwnerID(ctx, ownerID).Return(cafe, nil)
	d.payoutRepo.EXPECT().ListByCafe(ctx, cafe.ID, payoutHistoryLimit).Return(payouts, nil)

	overview, err := d.svc.Overview(ctx, ownerID)
	require.NoError(t, err)
	assert.Equal(t, int64(150_000), overview.WalletBalance)
	assert.Len(t, overview.Payouts, 1)
}
