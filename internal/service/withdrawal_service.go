package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"cafetip/internal/core/domain"
	"cafetip/internal/core/ports"
	"cafetip/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const payoutHistoryLimit = 50

// WithdrawalServiceImpl implements ports.WithdrawalService.
type WithdrawalServiceImpl struct {
	payoutRepo ports.PayoutRepository
	cafeRepo   ports.CafeRepository
	ledger     ports.WalletLedger
	audit      ports.AuditService
	transactor ports.DBTransactor
	log        zerolog.Logger
}

// NewWithdrawalService creates a new WithdrawalServiceImpl.
func NewWithdrawalService(
	payoutRepo ports.PayoutRepository,
	cafeRepo ports.CafeRepository,
	ledger ports.WalletLedger,
	audit ports.AuditService,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *WithdrawalServiceImpl {
	return &WithdrawalServiceImpl{
		payoutRepo: payoutRepo,
		cafeRepo:   cafeRepo,
		ledger:     ledger,
		audit:      audit,
		transactor: transactor,
		log:        log,
	}
}

// Request creates a payout and debits the wallet in one transaction. The
// debit is a conditional update, so two concurrent requests against the
// same wallet can never overdraw it.
func (s *WithdrawalServiceImpl) Request(ctx context.Context, req ports.WithdrawalRequest) (*domain.Payout, error) {
	if req.Amount < domain.MinWithdrawalAmount {
		return nil, apperror.ErrBelowMinimumWithdrawal(domain.MinWithdrawalAmount)
	}
	// Checked after trimming: the DTO's length binding runs before
	// sanitization, so padded values would slip through it.
	if len(strings.TrimSpace(req.BankInfo)) < domain.MinBankInfoLen {
		return nil, apperror.ErrInvalidBankInfo()
	}

	cafe, err := s.cafeRepo.GetByOwnerID(ctx, req.OwnerID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get cafe: %w", err))
	}
	if cafe == nil {
		return nil, apperror.ErrCafeNotFound()
	}

	pending, err := s.payoutRepo.CountPending(ctx, cafe.ID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("count pending payouts: %w", err))
	}
	if pending >= domain.MaxPendingPayouts {
		return nil, apperror.ErrTooManyPendingPayouts(pending)
	}

	fee := domain.WithdrawalFee(req.Amount)
	now := time.Now().UTC()
	payout := &domain.Payout{
		ID:        uuid.New(),
		CafeID:    cafe.ID,
		Amount:    req.Amount,
		Fee:       fee,
		NetAmount: req.Amount - fee,
		BankInfo:  req.BankInfo,
		Status:    domain.PayoutStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	debited, err := s.ledger.Debit(ctx, dbTx, cafe.ID, req.Amount)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("debit wallet: %w", err))
	}
	if !debited {
		return nil, apperror.ErrInsufficientBalance()
	}
	if err := s.payoutRepo.Create(ctx, dbTx, payout); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create payout: %w", err))
	}
	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("payout_id", payout.ID.String()).
		Str("cafe_id", cafe.ID.String()).
		Int64("amount", payout.Amount).
		Int64("fee", payout.Fee).
		Msg("withdrawal requested")

	details, _ := json.Marshal(map[string]any{
		"amount":     payout.Amount,
		"fee":        payout.Fee,
		"net_amount": payout.NetAmount,
	})
	s.audit.Log(ctx, &domain.AuditLog{
		ID:        uuid.New(),
		Action:    domain.AuditActionWithdrawalRequest,
		Entity:    "payout",
		EntityID:  payout.ID.String(),
		ActorID:   &req.OwnerID,
		Details:   string(details),
		IPAddress: req.ClientIP,
		CreatedAt: time.Now().UTC(),
	})

	return payout, nil
}

// UpdateStatus applies an admin transition. Moving to REJECTED refunds the
// held amount in the same transaction as the status change, and only on
// the first transition there: terminal payouts reject any further change.
func (s *WithdrawalServiceImpl) UpdateStatus(ctx context.Context, req ports.PayoutStatusUpdate) (*domain.Payout, error) {
	payout, err := s.payoutRepo.GetByID(ctx, req.PayoutID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get payout: %w", err))
	}
	if payout == nil {
		return nil, apperror.ErrPayoutNotFound()
	}
	if !payout.CanTransitionTo(req.Status) {
		return nil, apperror.ErrInvalidPayoutTransition(string(payout.Status), string(req.Status))
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if err := s.payoutRepo.UpdateStatus(ctx, dbTx, payout.ID, req.Status); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update payout status: %w", err))
	}
	if req.Status == domain.PayoutStatusRejected {
		if err := s.ledger.Refund(ctx, dbTx, payout.CafeID, payout.Amount); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("refund wallet: %w", err))
		}
	}
	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("payout_id", payout.ID.String()).
		Str("from", string(payout.Status)).
		Str("to", string(req.Status)).
		Str("actor_id", req.ActorID.String()).
		Msg("payout status updated")

	details, _ := json.Marshal(map[string]any{
		"from":   payout.Status,
		"to":     req.Status,
		"amount": payout.Amount,
	})
	s.audit.Log(ctx, &domain.AuditLog{
		ID:        uuid.New(),
		Action:    domain.AuditActionPayoutStatusUpdate,
		Entity:    "payout",
		EntityID:  payout.ID.String(),
		ActorID:   &req.ActorID,
		Details:   string(details),
		IPAddress: req.ClientIP,
		CreatedAt: time.Now().UTC(),
	})

	payout.Status = req.Status
	payout.UpdatedAt = time.Now().UTC()
	return payout, nil
}

// Overview returns the owner's current balance and recent payouts.
func (s *WithdrawalServiceImpl) Overview(ctx context.Context, ownerID uuid.UUID) (*ports.WithdrawalOverview, error) {
	cafe, err := s.cafeRepo.GetByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get cafe: %w", err))
	}
	if cafe == nil {
		return nil, apperror.ErrCafeNotFound()
	}

	payouts, err := s.payoutRepo.ListByCafe(ctx, cafe.ID, payoutHistoryLimit)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list payouts: %w", err))
	}

	return &ports.WithdrawalOverview{
		WalletBalance: cafe.WalletBalance,
		Payouts:       payouts,
	}, nil
}

// ListAll returns payouts across all cafes, optionally filtered by status.
// Admin only; enforced at the HTTP layer.
func (s *WithdrawalServiceImpl) ListAll(ctx context.Context, status *domain.PayoutStatus) ([]domain.Payout, error) {
	payouts, err := s.payoutRepo.List(ctx, status, payoutHistoryLimit)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list payouts: %w", err))
	}
	return payouts, nil
}
