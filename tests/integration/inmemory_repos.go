package integration

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"cafetip/internal/core/domain"
	"cafetip/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// --- In-Memory User Repo ---

type inMemoryUserRepo struct {
	mu    sync.RWMutex
	users map[uuid.UUID]*domain.User
}

func newInMemoryUserRepo() *inMemoryUserRepo {
	return &inMemoryUserRepo{users: make(map[uuid.UUID]*domain.User)}
}

func (r *inMemoryUserRepo) Create(ctx context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return fmt.Errorf("email already exists")
		}
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *inMemoryUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *inMemoryUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

// --- In-Memory Cafe Repo + Wallet Ledger ---

// inMemoryCafeRepo backs both the cafe repository and the wallet ledger,
// so balance mutations share one mutex the way the real implementations
// share one database row.
type inMemoryCafeRepo struct {
	mu    sync.RWMutex
	cafes map[uuid.UUID]*domain.Cafe
}

func newInMemoryCafeRepo() *inMemoryCafeRepo {
	return &inMemoryCafeRepo{cafes: make(map[uuid.UUID]*domain.Cafe)}
}

func (r *inMemoryCafeRepo) Create(ctx context.Context, c *domain.Cafe) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *c
	r.cafes[c.ID] = &cp
	return nil
}

func (r *inMemoryCafeRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Cafe, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.cafes[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *inMemoryCafeRepo) GetByOwnerID(ctx context.Context, ownerID uuid.UUID) (*domain.Cafe, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.cafes {
		if c.OwnerID == ownerID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryCafeRepo) GetBySlug(ctx context.Context, slug string) (*domain.Cafe, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.cafes {
		if c.Slug == slug {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryCafeRepo) Credit(ctx context.Context, tx pgx.Tx, cafeID uuid.UUID, amount int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.cafes[cafeID]
	if !ok {
		return fmt.Errorf("cafe not found")
	}
	c.WalletBalance += amount
	c.TotalTips += amount
	return nil
}

func (r *inMemoryCafeRepo) Debit(ctx context.Context, tx pgx.Tx, cafeID uuid.UUID, amount int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.cafes[cafeID]
	if !ok {
		return false, nil
	}
	if c.WalletBalance < amount {
		return false, nil
	}
	c.WalletBalance -= amount
	return true, nil
}

func (r *inMemoryCafeRepo) Refund(ctx context.Context, tx pgx.Tx, cafeID uuid.UUID, amount int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.cafes[cafeID]
	if !ok {
		return fmt.Errorf("cafe not found")
	}
	c.WalletBalance += amount
	return nil
}

// --- In-Memory Tip Repo ---

type inMemoryTipRepo struct {
	mu   sync.RWMutex
	tips map[uuid.UUID]*domain.Tip
}

func newInMemoryTipRepo() *inMemoryTipRepo {
	return &inMemoryTipRepo{tips: make(map[uuid.UUID]*domain.Tip)}
}

func (r *inMemoryTipRepo) Create(ctx context.Context, t *domain.Tip) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *t
	r.tips[t.ID] = &cp
	return nil
}

func (r *inMemoryTipRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Tip, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tips[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (r *inMemoryTipRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TipStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tips[id]
	if !ok || t.Status != domain.TipStatusPending {
		return nil
	}
	t.Status = status
	return nil
}

func (r *inMemoryTipRepo) MarkFailed(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	return r.UpdateStatus(ctx, id, domain.TipStatusFailed)
}

func (r *inMemoryTipRepo) MarkPaid(ctx context.Context, tx pgx.Tx, id uuid.UUID, paymentRef string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tips[id]
	if !ok {
		return fmt.Errorf("tip not found")
	}
	if t.Status != domain.TipStatusPending {
		return fmt.Errorf("tip %s is not pending", id)
	}
	t.Status = domain.TipStatusPaid
	t.PaymentRef = &paymentRef
	return nil
}

// --- In-Memory Transaction Repo ---

type inMemoryTransactionRepo struct {
	mu           sync.RWMutex
	transactions map[uuid.UUID]*domain.Transaction
}

func newInMemoryTransactionRepo() *inMemoryTransactionRepo {
	return &inMemoryTransactionRepo{transactions: make(map[uuid.UUID]*domain.Transaction)}
}

func (r *inMemoryTransactionRepo) Create(ctx context.Context, t *domain.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *t
	r.transactions[t.ID] = &cp
	return nil
}

func (r *inMemoryTransactionRepo) GetByAuthorityAndTip(ctx context.Context, authority string, tipID uuid.UUID) (*domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.transactions {
		if t.Authority == authority && t.TipID != nil && *t.TipID == tipID {
			cp := *t
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryTransactionRepo) MarkFailed(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.transactions[id]
	if !ok || t.Status != domain.TransactionStatusPending {
		return nil
	}
	t.Status = domain.TransactionStatusFailed
	return nil
}

func (r *inMemoryTransactionRepo) Complete(ctx context.Context, tx pgx.Tx, id uuid.UUID, reference string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.transactions[id]
	if !ok {
		return fmt.Errorf("transaction not found")
	}
	if t.Status != domain.TransactionStatusPending {
		return fmt.Errorf("transaction %s is not pending", id)
	}
	t.Status = domain.TransactionStatusCompleted
	t.Reference = &reference
	return nil
}

// --- In-Memory Payout Repo ---

type inMemoryPayoutRepo struct {
	mu      sync.RWMutex
	payouts map[uuid.UUID]*domain.Payout
}

func newInMemoryPayoutRepo() *inMemoryPayoutRepo {
	return &inMemoryPayoutRepo{payouts: make(map[uuid.UUID]*domain.Payout)}
}

func (r *inMemoryPayoutRepo) Create(ctx context.Context, tx pgx.Tx, p *domain.Payout) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.payouts[p.ID] = &cp
	return nil
}

func (r *inMemoryPayoutRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Payout, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.payouts[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *inMemoryPayoutRepo) CountPending(ctx context.Context, cafeID uuid.UUID) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	count := 0
	for _, p := range r.payouts {
		if p.CafeID == cafeID && p.Status == domain.PayoutStatusPending {
			count++
		}
	}
	return count, nil
}

func (r *inMemoryPayoutRepo) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.PayoutStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payouts[id]
	if !ok {
		return fmt.Errorf("payout not found")
	}
	if p.IsTerminal() {
		return fmt.Errorf("payout %s already settled", id)
	}
	p.Status = status
	return nil
}

func (r *inMemoryPayoutRepo) ListByCafe(ctx context.Context, cafeID uuid.UUID, limit int) ([]domain.Payout, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.Payout
	for _, p := range r.payouts {
		if p.CafeID == cafeID {
			result = append(result, *p)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (r *inMemoryPayoutRepo) List(ctx context.Context, status *domain.PayoutStatus, limit int) ([]domain.Payout, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.Payout
	for _, p := range r.payouts {
		if status != nil && p.Status != *status {
			continue
		}
		result = append(result, *p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// --- In-Memory Audit Repo ---

type inMemoryAuditRepo struct {
	mu      sync.RWMutex
	entries []domain.AuditLog
}

func newInMemoryAuditRepo() *inMemoryAuditRepo {
	return &inMemoryAuditRepo{}
}

func (r *inMemoryAuditRepo) Create(ctx context.Context, entry *domain.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, *entry)
	return nil
}

// --- Fake Payment Gateway ---

// fakeGateway hands out sequential authorities and verifies every
// payment unless failVerify is set.
type fakeGateway struct {
	mu         sync.Mutex
	seq        int
	failVerify bool
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{}
}

func (g *fakeGateway) Initiate(ctx context.Context, amount int64, description, callbackURL string) (*ports.InitiateResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	authority := fmt.Sprintf("A%06d", g.seq)
	return &ports.InitiateResult{
		Authority:  authority,
		PaymentURL: "https://sandbox.zarinpal.com/pg/StartPay/" + authority,
	}, nil
}

func (g *fakeGateway) lastAuthority() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return fmt.Sprintf("A%06d", g.seq)
}

func (g *fakeGateway) Verify(ctx context.Context, authority string, amount int64) (*ports.VerifyResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failVerify {
		return nil, fmt.Errorf("gateway rejected verification")
	}
	return &ports.VerifyResult{RefID: 900_000 + int64(g.seq)}, nil
}

// --- In-Memory Transactor (no-op tx) ---

type inMemoryTransactor struct{}

func newInMemoryTransactor() *inMemoryTransactor {
	return &inMemoryTransactor{}
}

func (t *inMemoryTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	return &noopTx{}, nil
}

// noopTx is a no-op pgx.Tx implementation for in-memory testing.
type noopTx struct{}

func (t *noopTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *noopTx) Commit(ctx context.Context) error          { return nil }
func (t *noopTx) Rollback(ctx context.Context) error        { return nil }
func (t *noopTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *noopTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *noopTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *noopTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *noopTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (t *noopTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *noopTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}
func (t *noopTx) Conn() *pgx.Conn { return nil }
