package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"soukly-backend/internal/domain"
)

// In-memory fakes for the repository interfaces. They implement only what the
// usecases under test reach for; unimplemented paths panic loudly.

type fakeTxManager struct{}

func (fakeTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeCache struct {
	mu    sync.Mutex
	items map[string]interface{}
}

func newFakeCache() *fakeCache {
	return &fakeCache{items: make(map[string]interface{})}
}

func (c *fakeCache) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.items[key]
	return v, ok
}

func (c *fakeCache) Set(key string, value interface{}, _ time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = value
}

func (c *fakeCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

func (c *fakeCache) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]interface{})
}

type fakeConfigRepo struct {
	settings domain.PlatformSettings
	err      error
}

func newFakeConfigRepo() *fakeConfigRepo {
	return &fakeConfigRepo{settings: domain.DefaultPlatformSettings()}
}

func (r *fakeConfigRepo) GetSettings(context.Context) (*domain.PlatformSettings, error) {
	if r.err != nil {
		return nil, r.err
	}
	s := r.settings
	return &s, nil
}

func (r *fakeConfigRepo) UpdateSettings(_ context.Context, s *domain.PlatformSettings) error {
	r.settings = *s
	return nil
}

type fakeProductRepo struct {
	products map[string]domain.Product
}

func newFakeProductRepo(products ...domain.Product) *fakeProductRepo {
	r := &fakeProductRepo{products: make(map[string]domain.Product)}
	for _, p := range products {
		r.products[p.ID] = p
	}
	return r
}

func (r *fakeProductRepo) GetByID(_ context.Context, id string) (*domain.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

type fakeSupplierRepo struct {
	mu        sync.Mutex
	suppliers map[string]*domain.Supplier
}

func newFakeSupplierRepo(suppliers ...*domain.Supplier) *fakeSupplierRepo {
	r := &fakeSupplierRepo{suppliers: make(map[string]*domain.Supplier)}
	for _, s := range suppliers {
		r.suppliers[s.ID] = s
	}
	return r
}

func (r *fakeSupplierRepo) GetByID(_ context.Context, id string) (*domain.Supplier, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.suppliers[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *s
	return &copied, nil
}

func (r *fakeSupplierRepo) GetAll(context.Context, int, int) ([]domain.Supplier, int64, error) {
	panic("not used")
}

func (r *fakeSupplierRepo) UpdateStatus(_ context.Context, id, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.suppliers[id]
	if !ok {
		return domain.ErrNotFound
	}
	s.Status = status
	return nil
}

func (r *fakeSupplierRepo) UpdateWalletDebt(_ context.Context, id string, debt int64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.suppliers[id]
	if !ok {
		return domain.ErrNotFound
	}
	s.Wallet.PlatformDebt = debt
	s.Wallet.LastDebtUpdate = &at
	return nil
}

type fakeOrderRepo struct {
	mu      sync.Mutex
	orders  map[string]*domain.Order
	history []domain.OrderHistory

	// listDebtErr makes the debt scan fail, exercising the fail-closed path.
	listDebtErr error

	// afterGet runs once after the next GetByID, outside the lock. Used to
	// interleave a competing writer between a read and its update.
	afterGet func()
}

func newFakeOrderRepo(orders ...*domain.Order) *fakeOrderRepo {
	r := &fakeOrderRepo{orders: make(map[string]*domain.Order)}
	for _, o := range orders {
		r.orders[o.ID] = o
	}
	return r
}

func (r *fakeOrderRepo) Create(_ context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *order
	r.orders[order.ID] = &copied
	return nil
}

func (r *fakeOrderRepo) GetByID(_ context.Context, id string) (*domain.Order, error) {
	r.mu.Lock()
	o, ok := r.orders[id]
	if !ok {
		r.mu.Unlock()
		return nil, domain.ErrNotFound
	}
	copied := *o
	hook := r.afterGet
	r.afterGet = nil
	r.mu.Unlock()

	if hook != nil {
		hook()
	}
	return &copied, nil
}

func (r *fakeOrderRepo) GetAll(context.Context, domain.OrderFilter) ([]domain.Order, int64, error) {
	panic("not used")
}

func (r *fakeOrderRepo) GetActiveOrder(_ context.Context, supplierID string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var oldest *domain.Order
	for _, o := range r.orders {
		if o.SupplierID != supplierID || !contains(domain.ActiveOrderStatuses, o.Status) {
			continue
		}
		if oldest == nil || o.CreatedAt.Before(oldest.CreatedAt) {
			oldest = o
		}
	}
	if oldest == nil {
		return nil, domain.ErrNotFound
	}
	copied := *oldest
	return &copied, nil
}

func (r *fakeOrderRepo) CountActive(_ context.Context, supplierID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, o := range r.orders {
		if o.SupplierID == supplierID && contains(domain.ActiveOrderStatuses, o.Status) {
			count++
		}
	}
	return count, nil
}

func (r *fakeOrderRepo) UpdateStatus(_ context.Context, id, from, to string, reason *string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return domain.ErrNotFound
	}
	if o.Status != from {
		return fmt.Errorf("status moved since read: %w", domain.ErrInvalidTransition)
	}
	o.Status = to
	if reason != nil {
		o.CancelReason = reason
	}
	o.StatusChangedAt = at
	return nil
}

func (r *fakeOrderRepo) ListDebtOrders(_ context.Context, supplierID string, platformDeliveryPct int) ([]domain.DebtOrder, error) {
	if r.listDebtErr != nil {
		return nil, r.listDebtErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.DebtOrder
	for _, o := range r.orders {
		if o.SupplierID != supplierID || !contains(domain.DebtOrderStatuses, o.Status) || o.SettlementStatus != domain.SettlementUnsettled {
			continue
		}
		out = append(out, domain.DebtOrder{
			OrderID: o.ID,
			Amount:  DebtContribution(o.Items, o.Delivery.Fee, platformDeliveryPct),
		})
	}
	return out, nil
}

func (r *fakeOrderRepo) MarkSettled(_ context.Context, orderIDs []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range orderIDs {
		if o, ok := r.orders[id]; ok {
			o.SettlementStatus = domain.SettlementPaid
		}
	}
	return nil
}

func (r *fakeOrderRepo) MarkCommissionPaid(_ context.Context, orderID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[orderID]
	if !ok {
		return false, domain.ErrNotFound
	}
	if o.CommissionPaid {
		return false, nil
	}
	o.CommissionPaid = true
	return true, nil
}

func (r *fakeOrderRepo) ListStaleOutForDelivery(_ context.Context, before time.Time) ([]domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Order
	for _, o := range r.orders {
		if o.Status == domain.OrderStatusOutForDelivery && o.StatusChangedAt.Before(before) {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) CreateHistory(_ context.Context, h *domain.OrderHistory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.history = append(r.history, *h)
	return nil
}

func (r *fakeOrderRepo) GetHistory(_ context.Context, orderID string) ([]domain.OrderHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.OrderHistory
	for _, h := range r.history {
		if h.OrderID == orderID {
			out = append(out, h)
		}
	}
	return out, nil
}

type fakePartnerRepo struct {
	mu       sync.Mutex
	partners map[string]*domain.Partner
}

func newFakePartnerRepo(partners ...*domain.Partner) *fakePartnerRepo {
	r := &fakePartnerRepo{partners: make(map[string]*domain.Partner)}
	for _, p := range partners {
		r.partners[p.ID] = p
	}
	return r
}

func (r *fakePartnerRepo) GetByID(_ context.Context, id string) (*domain.Partner, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.partners[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (r *fakePartnerRepo) GetByPromoCode(_ context.Context, code string) (*domain.Partner, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.partners {
		if p.PromoCode == code {
			copied := *p
			return &copied, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakePartnerRepo) CreditSale(_ context.Context, partnerID string, commission int64) (*domain.Partner, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.partners[partnerID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	p.WalletBalance += commission
	p.TotalEarnings += commission
	p.TotalSales++
	copied := *p
	return &copied, nil
}

func (r *fakePartnerRepo) UpdateLevel(_ context.Context, partnerID, level string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.partners[partnerID]
	if !ok {
		return domain.ErrNotFound
	}
	p.Level = level
	return nil
}

func (r *fakePartnerRepo) DebitWallet(_ context.Context, partnerID string, amount int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.partners[partnerID]
	if !ok {
		return domain.ErrNotFound
	}
	if p.WalletBalance < amount {
		return domain.ErrInsufficientBalance
	}
	p.WalletBalance -= amount
	return nil
}

func (r *fakePartnerRepo) CreditWithdrawn(_ context.Context, partnerID string, amount int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.partners[partnerID]
	if !ok {
		return domain.ErrNotFound
	}
	p.TotalWithdrawn += amount
	return nil
}

type fakeWithdrawalRepo struct {
	mu          sync.Mutex
	withdrawals map[string]*domain.Withdrawal
}

func newFakeWithdrawalRepo() *fakeWithdrawalRepo {
	return &fakeWithdrawalRepo{withdrawals: make(map[string]*domain.Withdrawal)}
}

func (r *fakeWithdrawalRepo) Create(_ context.Context, w *domain.Withdrawal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *w
	r.withdrawals[w.ID] = &copied
	return nil
}

func (r *fakeWithdrawalRepo) GetByID(_ context.Context, id string) (*domain.Withdrawal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.withdrawals[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *w
	return &copied, nil
}

func (r *fakeWithdrawalRepo) ListByPartner(_ context.Context, partnerID string) ([]domain.Withdrawal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Withdrawal
	for _, w := range r.withdrawals {
		if w.PartnerID == partnerID {
			out = append(out, *w)
		}
	}
	return out, nil
}

func (r *fakeWithdrawalRepo) ListByStatus(_ context.Context, status string, _, _ int) ([]domain.Withdrawal, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Withdrawal
	for _, w := range r.withdrawals {
		if w.Status == status {
			out = append(out, *w)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeWithdrawalRepo) MarkPaid(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.withdrawals[id]
	if !ok {
		return domain.ErrNotFound
	}
	w.Status = domain.WithdrawalStatusPaid
	w.PaidAt = &at
	return nil
}

type fakeSettlementRepo struct {
	mu          sync.Mutex
	settlements map[string]*domain.Settlement
}

func newFakeSettlementRepo() *fakeSettlementRepo {
	return &fakeSettlementRepo{settlements: make(map[string]*domain.Settlement)}
}

func (r *fakeSettlementRepo) CreatePending(_ context.Context, s *domain.Settlement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.settlements {
		if existing.SupplierID == s.SupplierID && existing.Status == domain.SettlementStatusPending {
			return domain.ErrSettlementPending
		}
	}
	copied := *s
	r.settlements[s.ID] = &copied
	return nil
}

func (r *fakeSettlementRepo) GetByID(_ context.Context, id string) (*domain.Settlement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.settlements[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *s
	return &copied, nil
}

func (r *fakeSettlementRepo) HasPending(_ context.Context, supplierID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.settlements {
		if s.SupplierID == supplierID && s.Status == domain.SettlementStatusPending {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeSettlementRepo) ListBySupplier(_ context.Context, supplierID string) ([]domain.Settlement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Settlement
	for _, s := range r.settlements {
		if s.SupplierID == supplierID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *fakeSettlementRepo) ListByStatus(_ context.Context, status string, _, _ int) ([]domain.Settlement, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Settlement
	for _, s := range r.settlements {
		if s.Status == status {
			out = append(out, *s)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeSettlementRepo) SetProofURL(_ context.Context, id, url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.settlements[id]
	if !ok {
		return domain.ErrNotFound
	}
	s.ProofURL = &url
	return nil
}

func (r *fakeSettlementRepo) Resolve(_ context.Context, id, status string, reason *string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.settlements[id]
	if !ok || s.Status != domain.SettlementStatusPending {
		return domain.ErrNotFound
	}
	s.Status = status
	s.RejectReason = reason
	s.ResolvedAt = &at
	return nil
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
