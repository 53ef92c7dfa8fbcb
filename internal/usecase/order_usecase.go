package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"soukly-backend/internal/domain"
	"soukly-backend/internal/events"
	"soukly-backend/pkg/utils"
)

// allowedTransitions is the strict forward edge set. There are no backward
// moves; cancellation is only reachable from pre-delivery states.
var allowedTransitions = map[string][]string{
	domain.OrderStatusPending:        {domain.OrderStatusPreparing, domain.OrderStatusCancelled},
	domain.OrderStatusPreparing:      {domain.OrderStatusOutForDelivery, domain.OrderStatusCancelled},
	domain.OrderStatusOutForDelivery: {domain.OrderStatusDelivered, domain.OrderStatusCancelled},
	domain.OrderStatusDelivered:      {domain.OrderStatusCompleted},
	domain.OrderStatusCompleted:      {},
	domain.OrderStatusCancelled:      {},
}

type OrderUsecase struct {
	orderRepo   domain.OrderRepository
	productRepo domain.ProductRepository
	partnerRepo domain.PartnerRepository
	configRepo  domain.ConfigRepository
	txManager   domain.TransactionManager
	carts       *CartUsecase
	hub         *events.Hub
}

func NewOrderUsecase(orderRepo domain.OrderRepository, productRepo domain.ProductRepository, partnerRepo domain.PartnerRepository, configRepo domain.ConfigRepository, txManager domain.TransactionManager, carts *CartUsecase, hub *events.Hub) *OrderUsecase {
	return &OrderUsecase{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		partnerRepo: partnerRepo,
		configRepo:  configRepo,
		txManager:   txManager,
		carts:       carts,
		hub:         hub,
	}
}

// --- Checkout ---

type CheckoutReq struct {
	Customer       domain.Customer `json:"customer"`
	DeliveryMethod string          `json:"deliveryMethod"`
	PaymentMethod  string          `json:"paymentMethod"`
}

// Checkout turns the session cart into an order. Every money field is
// computed here once and frozen; nothing downstream ever re-prices an order.
func (u *OrderUsecase) Checkout(ctx context.Context, sessionID string, req CheckoutReq) (*domain.Order, error) {
	cart := u.carts.Get(sessionID)
	if len(cart.Items) == 0 {
		return nil, domain.ErrEmptyCart
	}
	if cart.Pending != nil {
		return nil, fmt.Errorf("resolve the supplier conflict first: %w", domain.ErrSupplierConflict)
	}
	if req.Customer.Name == "" || req.Customer.Phone == "" {
		return nil, fmt.Errorf("customer name and phone are required")
	}

	settings, err := u.configRepo.GetSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	orderID := utils.GenerateUUID()
	items := make([]domain.OrderItem, 0, len(cart.Items))
	for _, ci := range cart.Items {
		// Re-read each product so the declared supplier cost is frozen from
		// the catalog, not from whatever the session holds.
		product, err := u.productRepo.GetByID(ctx, ci.ProductID)
		if err != nil {
			return nil, fmt.Errorf("product %s not found", ci.ProductID)
		}
		if product.SupplierID != cart.SupplierID() {
			return nil, domain.ErrSupplierConflict
		}
		items = append(items, domain.OrderItem{
			ID:               utils.GenerateUUID(),
			OrderID:          orderID,
			ProductID:        product.ID,
			Name:             product.Name,
			Quantity:         ci.Quantity,
			UnitSellingPrice: product.SellingPrice,
			UnitSupplierCost: product.SupplierCost,
		})
	}

	deliveryFee := settings.DeliveryFee
	if req.DeliveryMethod == domain.DeliveryMethodPickup {
		deliveryFee = 0
	}

	// Freeze the promo. Commission comes from the partner's CURRENT level;
	// later level changes never retroactively alter this order.
	var promo *domain.Promo
	if cart.Promo != nil {
		partner, err := u.partnerRepo.GetByID(ctx, cart.Promo.PartnerID)
		if err != nil {
			return nil, fmt.Errorf("promo partner not found: %w", err)
		}
		promo = &domain.Promo{
			Code:              cart.Promo.Code,
			PartnerID:         partner.ID,
			DiscountAmount:    cart.Promo.Discount,
			PartnerCommission: settings.CommissionFor(LevelFor(partner.TotalSales)),
		}
	}

	pricing := ComputePricing(items, deliveryFee, settings.PlatformDeliveryPct, promo)
	now := time.Now()

	order := &domain.Order{
		ID:         orderID,
		Code:       utils.GenerateOrderCode(),
		SupplierID: cart.SupplierID(),
		Customer:   req.Customer,
		Items:      items,
		Delivery:   domain.Delivery{Method: req.DeliveryMethod, Fee: deliveryFee},
		Payment:    domain.Payment{Method: req.PaymentMethod},
		Promo:      promo,

		Status:           domain.OrderStatusPending,
		SettlementStatus: domain.SettlementUnsettled,

		SupplierShare: pricing.SupplierKeeps(),
		PlatformShare: pricing.PlatformKeeps(),
		FinalTotal:    pricing.FinalTotal,

		CreatedAt:       now,
		StatusChangedAt: now,
	}

	err = u.txManager.Do(ctx, func(txCtx context.Context) error {
		if err := u.orderRepo.Create(txCtx, order); err != nil {
			return err
		}
		return u.orderRepo.CreateHistory(txCtx, &domain.OrderHistory{
			ID:        utils.GenerateUUID(),
			OrderID:   orderID,
			NewStatus: domain.OrderStatusPending,
		})
	})
	if err != nil {
		return nil, err
	}

	u.carts.Clear(sessionID)
	slog.Info("Usecase: Checkout", "order_id", order.ID, "code", order.Code, "supplier_id", order.SupplierID, "total", order.FinalTotal)
	return order, nil
}

// --- State Machine ---

// Transition moves an order along the status chain. Out-of-order jumps are
// rejected with ErrInvalidTransition; cancelling a delivered or completed
// order with ErrTerminalState. delivered -> completed is admin-only.
func (u *OrderUsecase) Transition(ctx context.Context, orderID, target string, reason *string, actor *domain.User) (*domain.Order, error) {
	order, err := u.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := validateTransition(order.Status, target); err != nil {
		return nil, err
	}
	if target == domain.OrderStatusCancelled && (reason == nil || *reason == "") {
		return nil, domain.ErrCancelReasonNeeded
	}
	if target == domain.OrderStatusCompleted && (actor == nil || actor.Role != domain.RoleAdmin) {
		return nil, fmt.Errorf("only an admin can complete an order: %w", domain.ErrInvalidTransition)
	}
	if actor != nil && actor.Role == domain.RoleSupplier && actor.ActorID != order.SupplierID {
		return nil, domain.ErrNotFound
	}

	previous := order.Status
	now := time.Now()

	err = u.txManager.Do(ctx, func(txCtx context.Context) error {
		if err := u.orderRepo.UpdateStatus(txCtx, orderID, previous, target, reason, now); err != nil {
			return err
		}

		var createdBy *string
		if actor != nil {
			createdBy = &actor.ID
		}
		return u.orderRepo.CreateHistory(txCtx, &domain.OrderHistory{
			ID:             utils.GenerateUUID(),
			OrderID:        orderID,
			PreviousStatus: &previous,
			NewStatus:      target,
			Reason:         reason,
			CreatedBy:      createdBy,
		})
	})
	if err != nil {
		return nil, err
	}

	order.Status = target
	order.StatusChangedAt = now
	order.CancelReason = reason

	u.hub.Publish(events.OrderChange{
		OrderID:        order.ID,
		SupplierID:     order.SupplierID,
		PreviousStatus: previous,
		Status:         target,
	})
	return order, nil
}

func validateTransition(current, target string) error {
	if target == domain.OrderStatusCancelled {
		switch current {
		case domain.OrderStatusDelivered, domain.OrderStatusCompleted:
			return domain.ErrTerminalState
		case domain.OrderStatusCancelled:
			return domain.ErrInvalidTransition
		}
	}
	for _, next := range allowedTransitions[current] {
		if next == target {
			return nil
		}
	}
	return fmt.Errorf("%s -> %s: %w", current, target, domain.ErrInvalidTransition)
}

// --- Sequential Visibility ---

// ActiveOrderView is the supplier's action surface: the single oldest active
// order plus a badge count of what is queued behind it.
type ActiveOrderView struct {
	Order       *domain.Order `json:"order"`
	QueuedCount int           `json:"queuedCount"`
}

// GetActiveOrder implements the one-order-at-a-time rule as a read-side
// query; no locking is involved.
func (u *OrderUsecase) GetActiveOrder(ctx context.Context, supplierID string) (*ActiveOrderView, error) {
	order, err := u.orderRepo.GetActiveOrder(ctx, supplierID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return &ActiveOrderView{}, nil
		}
		return nil, err
	}

	total, err := u.orderRepo.CountActive(ctx, supplierID)
	if err != nil {
		return nil, err
	}
	queued := total - 1
	if queued < 0 {
		queued = 0
	}
	return &ActiveOrderView{Order: order, QueuedCount: queued}, nil
}

func (u *OrderUsecase) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	return u.orderRepo.GetByID(ctx, id)
}

func (u *OrderUsecase) GetAllOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, int64, error) {
	return u.orderRepo.GetAll(ctx, filter)
}

func (u *OrderUsecase) GetOrderHistory(ctx context.Context, orderID string) ([]domain.OrderHistory, error) {
	return u.orderRepo.GetHistory(ctx, orderID)
}

// --- Advisory auto-promotion ---

// RunAutoDelivery promotes orders stuck in out_for_delivery past the
// configured delay to delivered, through the normal transition path so the
// audit trail and debt recompute still fire. Advisory only; there is no
// timeout-based cancellation.
func (u *OrderUsecase) RunAutoDelivery(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			u.sweepStaleDeliveries(ctx)
		}
	}
}

func (u *OrderUsecase) sweepStaleDeliveries(ctx context.Context) {
	settings, err := u.configRepo.GetSettings(ctx)
	if err != nil {
		slog.Error("AutoDelivery: load settings failed", "error", err)
		return
	}

	cutoff := time.Now().Add(-settings.AutoDeliverAfter)
	stale, err := u.orderRepo.ListStaleOutForDelivery(ctx, cutoff)
	if err != nil {
		slog.Error("AutoDelivery: scan failed", "error", err)
		return
	}

	for _, order := range stale {
		reason := "auto-promoted after delivery delay"
		if _, err := u.Transition(ctx, order.ID, domain.OrderStatusDelivered, &reason, nil); err != nil {
			slog.Error("AutoDelivery: promotion failed", "order_id", order.ID, "error", err)
		} else {
			slog.Info("AutoDelivery: promoted", "order_id", order.ID, "code", order.Code)
		}
	}
}
