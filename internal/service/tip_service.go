package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"cafetip/internal/core/domain"
	"cafetip/internal/core/ports"
	"cafetip/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const tipDescriptionPrefix = "Tip for "

// TipServiceImpl implements ports.TipService.
type TipServiceImpl struct {
	tipRepo    ports.TipRepository
	txRepo     ports.TransactionRepository
	cafeRepo   ports.CafeRepository
	ledger     ports.WalletLedger
	gateway    ports.PaymentGateway
	notifier   ports.Notifier
	audit      ports.AuditService
	transactor ports.DBTransactor
	baseURL    string
	log        zerolog.Logger
}

// NewTipService creates a new TipServiceImpl. baseURL is the public origin
// used to build the gateway callback URL.
func NewTipService(
	tipRepo ports.TipRepository,
	txRepo ports.TransactionRepository,
	cafeRepo ports.CafeRepository,
	ledger ports.WalletLedger,
	gateway ports.PaymentGateway,
	notifier ports.Notifier,
	audit ports.AuditService,
	transactor ports.DBTransactor,
	baseURL string,
	log zerolog.Logger,
) *TipServiceImpl {
	return &TipServiceImpl{
		tipRepo:    tipRepo,
		txRepo:     txRepo,
		cafeRepo:   cafeRepo,
		ledger:     ledger,
		gateway:    gateway,
		notifier:   notifier,
		audit:      audit,
		transactor: transactor,
		baseURL:    baseURL,
		log:        log,
	}
}

// Create validates the tip, persists it as PENDING and opens a gateway
// payment session. The commission is computed here so the stored tip is
// immutable from the customer's point of view onward.
func (s *TipServiceImpl) Create(ctx context.Context, req ports.CreateTipRequest) (*ports.CreateTipResult, error) {
	if req.Amount < domain.MinTipAmount || req.Amount > domain.MaxTipAmount {
		return nil, apperror.ErrTipAmountOutOfBounds(domain.MinTipAmount, domain.MaxTipAmount)
	}
	if req.Rating != nil && (*req.Rating < 1 || *req.Rating > 5) {
		return nil, apperror.ErrInvalidRating()
	}

	cafe, err := s.cafeRepo.GetByID(ctx, req.CafeID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get cafe: %w", err))
	}
	if cafe == nil || !cafe.IsActive {
		return nil, apperror.ErrCafeNotFound()
	}

	commission := domain.Commission(req.Amount)
	now := time.Now().UTC()
	tip := &domain.Tip{
		ID:         uuid.New(),
		CafeID:     cafe.ID,
		Amount:     req.Amount,
		Commission: commission,
		TotalPaid:  req.Amount + commission,
		Rating:     req.Rating,
		Comment:    req.Comment,
		Nickname:   req.Nickname,
		Status:     domain.TipStatusPending,
		ClientIP:   req.ClientIP,
		UserAgent:  req.UserAgent,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.tipRepo.Create(ctx, tip); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create tip: %w", err))
	}

	callbackURL := fmt.Sprintf("%s/api/v1/payments/verify?tipId=%s", s.baseURL, tip.ID)
	initiated, err := s.gateway.Initiate(ctx, tip.TotalPaid, tipDescriptionPrefix+cafe.Name, callbackURL)
	if err != nil {
		// No gateway session exists, so there is nothing to settle later.
		if updErr := s.tipRepo.UpdateStatus(ctx, tip.ID, domain.TipStatusFailed); updErr != nil {
			s.log.Error().Err(updErr).Str("tip_id", tip.ID.String()).Msg("failed to mark tip failed after gateway error")
		}
		return nil, apperror.ErrGatewayInitiation(err)
	}

	txn := &domain.Transaction{
		ID:        uuid.New(),
		TipID:     &tip.ID,
		Type:      domain.TransactionTypeTipPayment,
		Amount:    tip.TotalPaid,
		Authority: initiated.Authority,
		Status:    domain.TransactionStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.txRepo.Create(ctx, txn); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create transaction: %w", err))
	}

	s.log.Info().
		Str("tip_id", tip.ID.String()).
		Str("cafe_id", cafe.ID.String()).
		Int64("amount", tip.Amount).
		Int64("total_paid", tip.TotalPaid).
		Msg("tip created, awaiting payment")

	return &ports.CreateTipResult{TipID: tip.ID, PaymentURL: initiated.PaymentURL}, nil
}

// Settle processes the gateway callback. It never returns an error: the
// customer is redirected regardless, so every failure collapses into an
// unsuccessful result. Repeated callbacks for an already settled
// transaction are answered from the stored terminal state without
// touching the wallet again.
func (s *TipServiceImpl) Settle(ctx context.Context, req ports.SettleRequest) *ports.SettleResult {
	failed := &ports.SettleResult{Success: false}

	txn, err := s.txRepo.GetByAuthorityAndTip(ctx, req.Authority, req.TipID)
	if err != nil {
		s.log.Error().Err(err).Str("tip_id", req.TipID.String()).Msg("settle: transaction lookup failed")
		return failed
	}
	if txn == nil {
		s.log.Warn().Str("authority", req.Authority).Str("tip_id", req.TipID.String()).Msg("settle: no matching transaction")
		return failed
	}

	tip, err := s.tipRepo.GetByID(ctx, req.TipID)
	if err != nil || tip == nil {
		s.log.Error().Err(err).Str("tip_id", req.TipID.String()).Msg("settle: tip lookup failed")
		return failed
	}

	// Replayed callback after settlement already happened.
	if txn.IsTerminal() {
		if txn.Status == domain.TransactionStatusCompleted {
			return &ports.SettleResult{Success: true, TotalPaid: tip.TotalPaid}
		}
		return failed
	}

	if req.GatewayStatus != "OK" {
		s.failSettlement(ctx, txn, tip)
		return failed
	}

	verified, err := s.gateway.Verify(ctx, req.Authority, tip.TotalPaid)
	if err != nil {
		s.log.Warn().Err(err).Str("tip_id", tip.ID.String()).Msg("settle: gateway verification failed")
		s.failSettlement(ctx, txn, tip)
		return failed
	}

	reference := strconv.FormatInt(verified.RefID, 10)
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("settle: begin tx")
		return failed
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if err := s.txRepo.Complete(ctx, dbTx, txn.ID, reference); err != nil {
		s.log.Error().Err(err).Str("tx_id", txn.ID.String()).Msg("settle: complete transaction")
		return failed
	}
	if err := s.tipRepo.MarkPaid(ctx, dbTx, tip.ID, reference); err != nil {
		s.log.Error().Err(err).Str("tip_id", tip.ID.String()).Msg("settle: mark tip paid")
		return failed
	}
	if err := s.ledger.Credit(ctx, dbTx, tip.CafeID, tip.Amount); err != nil {
		s.log.Error().Err(err).Str("cafe_id", tip.CafeID.String()).Msg("settle: credit wallet")
		return failed
	}
	if err := dbTx.Commit(ctx); err != nil {
		s.log.Error().Err(err).Msg("settle: commit tx")
		return failed
	}

	s.log.Info().
		Str("tip_id", tip.ID.String()).
		Str("cafe_id", tip.CafeID.String()).
		Int64("amount", tip.Amount).
		Str("ref_id", reference).
		Msg("tip settled")

	s.recordTipPaid(ctx, tip, reference)
	s.notifyOwner(tip)

	return &ports.SettleResult{Success: true, TotalPaid: tip.TotalPaid}
}

// failSettlement marks the transaction and tip FAILED in one transaction.
// The tip holds no money yet, so a failure here is only logged.
func (s *TipServiceImpl) failSettlement(ctx context.Context, txn *domain.Transaction, tip *domain.Tip) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("settle: begin fail tx")
		return
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if err := s.txRepo.MarkFailed(ctx, dbTx, txn.ID); err != nil {
		s.log.Error().Err(err).Str("tx_id", txn.ID.String()).Msg("settle: mark transaction failed")
		return
	}
	if err := s.tipRepo.MarkFailed(ctx, dbTx, tip.ID); err != nil {
		s.log.Error().Err(err).Str("tip_id", tip.ID.String()).Msg("settle: mark tip failed")
		return
	}
	if err := dbTx.Commit(ctx); err != nil {
		s.log.Error().Err(err).Msg("settle: commit fail tx")
	}
}

func (s *TipServiceImpl) recordTipPaid(ctx context.Context, tip *domain.Tip, reference string) {
	details, _ := json.Marshal(map[string]any{
		"amount":     tip.Amount,
		"commission": tip.Commission,
		"total_paid": tip.TotalPaid,
		"reference":  reference,
	})
	s.audit.Log(ctx, &domain.AuditLog{
		ID:        uuid.New(),
		Action:    domain.AuditActionTipPaid,
		Entity:    "tip",
		EntityID:  tip.ID.String(),
		Details:   string(details),
		IPAddress: tip.ClientIP,
		CreatedAt: time.Now().UTC(),
	})
}

// notifyOwner sends the Telegram notification best-effort from a
// detached goroutine, so a slow bot API never delays the settlement
// redirect. The settlement's request context is gone by the time the
// send runs, hence the fresh background context. A delivery failure
// can only cost a message, never money.
func (s *TipServiceImpl) notifyOwner(tip *domain.Tip) {
	if s.notifier == nil {
		return
	}
	go func() {
		ctx := context.Background()
		cafe, err := s.cafeRepo.GetByID(ctx, tip.CafeID)
		if err != nil || cafe == nil || cafe.TelegramChatID == nil {
			return
		}
		n := ports.TipNotification{
			CafeName: cafe.Name,
			Amount:   tip.Amount,
			Rating:   tip.Rating,
			Comment:  tip.Comment,
			Nickname: tip.Nickname,
		}
		if err := s.notifier.NotifyTip(ctx, *cafe.TelegramChatID, n); err != nil {
			s.log.Warn().Err(err).Str("cafe_id", cafe.ID.String()).Msg("telegram notification failed")
		}
	}()
}
