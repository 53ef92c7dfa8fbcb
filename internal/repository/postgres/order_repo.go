package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"soukly-backend/internal/domain"
	"soukly-backend/internal/events"

	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type orderRepository struct {
	db *pgxpool.Pool
}

func NewOrderRepository(db *pgxpool.Pool) domain.OrderRepository {
	return &orderRepository{db: db}
}

const orderColumns = `id, code, supplier_id, customer_name, customer_phone,
	delivery_method, delivery_fee, payment_method,
	promo_code, promo_partner_id, promo_discount, promo_commission,
	status, cancel_reason, settlement_status, commission_paid,
	supplier_share, platform_share, final_total,
	created_at, status_changed_at`

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	var promoCode, promoPartnerID *string
	var promoDiscount, promoCommission *int64

	err := row.Scan(
		&o.ID, &o.Code, &o.SupplierID, &o.Customer.Name, &o.Customer.Phone,
		&o.Delivery.Method, &o.Delivery.Fee, &o.Payment.Method,
		&promoCode, &promoPartnerID, &promoDiscount, &promoCommission,
		&o.Status, &o.CancelReason, &o.SettlementStatus, &o.CommissionPaid,
		&o.SupplierShare, &o.PlatformShare, &o.FinalTotal,
		&o.CreatedAt, &o.StatusChangedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	if promoCode != nil {
		o.Promo = &domain.Promo{Code: *promoCode}
		if promoPartnerID != nil {
			o.Promo.PartnerID = *promoPartnerID
		}
		if promoDiscount != nil {
			o.Promo.DiscountAmount = *promoDiscount
		}
		if promoCommission != nil {
			o.Promo.PartnerCommission = *promoCommission
		}
	}
	return &o, nil
}

func (r *orderRepository) loadItems(ctx context.Context, orderIDs []string) (map[string][]domain.OrderItem, error) {
	rows, err := q(ctx, r.db).Query(ctx, `
		SELECT id, order_id, product_id, name, quantity, unit_selling_price, unit_supplier_cost
		FROM order_items WHERE order_id = ANY($1) ORDER BY created_at`, orderIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make(map[string][]domain.OrderItem)
	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Name, &it.Quantity, &it.UnitSellingPrice, &it.UnitSupplierCost); err != nil {
			return nil, err
		}
		items[it.OrderID] = append(items[it.OrderID], it)
	}
	return items, rows.Err()
}

func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	db := q(ctx, r.db)

	var promoCode, promoPartnerID *string
	var promoDiscount, promoCommission *int64
	if order.Promo != nil {
		promoCode = &order.Promo.Code
		promoPartnerID = &order.Promo.PartnerID
		promoDiscount = &order.Promo.DiscountAmount
		promoCommission = &order.Promo.PartnerCommission
	}

	_, err := db.Exec(ctx, `
		INSERT INTO orders (`+orderColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21)`,
		order.ID, order.Code, order.SupplierID, order.Customer.Name, order.Customer.Phone,
		order.Delivery.Method, order.Delivery.Fee, order.Payment.Method,
		promoCode, promoPartnerID, promoDiscount, promoCommission,
		order.Status, order.CancelReason, order.SettlementStatus, order.CommissionPaid,
		order.SupplierShare, order.PlatformShare, order.FinalTotal,
		order.CreatedAt, order.StatusChangedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for _, it := range order.Items {
		_, err := db.Exec(ctx, `
			INSERT INTO order_items (id, order_id, product_id, name, quantity, unit_selling_price, unit_supplier_cost)
			VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			it.ID, order.ID, it.ProductID, it.Name, it.Quantity, it.UnitSellingPrice, it.UnitSupplierCost,
		)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}
	return nil
}

func (r *orderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	order, err := scanOrder(q(ctx, r.db).QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	items, err := r.loadItems(ctx, []string{order.ID})
	if err != nil {
		return nil, err
	}
	order.Items = items[order.ID]
	return order, nil
}

func (r *orderRepository) GetAll(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, int64, error) {
	where := []string{"TRUE"}
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Status != "" {
		where = append(where, "status = "+arg(filter.Status))
	}
	if filter.SupplierID != "" {
		where = append(where, "supplier_id = "+arg(filter.SupplierID))
	}
	if filter.Search != "" {
		p := arg("%" + filter.Search + "%")
		where = append(where, "(code ILIKE "+p+" OR customer_name ILIKE "+p+" OR customer_phone ILIKE "+p+")")
	}
	cond := strings.Join(where, " AND ")

	var total int64
	if err := q(ctx, r.db).QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := 0
	if filter.Page > 1 {
		offset = (filter.Page - 1) * limit
	}

	rows, err := q(ctx, r.db).Query(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE `+cond+
			` ORDER BY created_at DESC LIMIT `+arg(limit)+` OFFSET `+arg(offset), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var orders []domain.Order
	var ids []string
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		orders = append(orders, *o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	if len(ids) > 0 {
		items, err := r.loadItems(ctx, ids)
		if err != nil {
			return nil, 0, err
		}
		for i := range orders {
			orders[i].Items = items[orders[i].ID]
		}
	}
	return orders, total, nil
}

// GetActiveOrder is the sequential-visibility query: the oldest order in the
// active status set, by immutable created_at, limit 1.
func (r *orderRepository) GetActiveOrder(ctx context.Context, supplierID string) (*domain.Order, error) {
	order, err := scanOrder(q(ctx, r.db).QueryRow(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE supplier_id = $1 AND status = ANY($2)
		ORDER BY created_at ASC LIMIT 1`,
		supplierID, domain.ActiveOrderStatuses))
	if err != nil {
		return nil, err
	}
	items, err := r.loadItems(ctx, []string{order.ID})
	if err != nil {
		return nil, err
	}
	order.Items = items[order.ID]
	return order, nil
}

func (r *orderRepository) CountActive(ctx context.Context, supplierID string) (int, error) {
	var count int
	err := q(ctx, r.db).QueryRow(ctx,
		`SELECT COUNT(*) FROM orders WHERE supplier_id = $1 AND status = ANY($2)`,
		supplierID, domain.ActiveOrderStatuses).Scan(&count)
	return count, err
}

// UpdateStatus writes the transition and emits the change on the NOTIFY
// channel in the same statement batch, so remote subscribers observe exactly
// the committed write. The WHERE clause pins the status the caller validated
// against, so two concurrent writers racing from the same status cannot both
// land; the loser's row match fails and the transaction rolls back.
func (r *orderRepository) UpdateStatus(ctx context.Context, id, from, to string, reason *string, at time.Time) error {
	db := q(ctx, r.db)

	var supplierID string
	err := db.QueryRow(ctx, `
		UPDATE orders SET
			status = $3,
			cancel_reason = COALESCE($4, cancel_reason),
			status_changed_at = $5
		WHERE id = $1 AND status = $2
		RETURNING supplier_id`,
		id, from, to, reason, at).Scan(&supplierID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			var exists bool
			if chkErr := db.QueryRow(ctx,
				`SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, id).Scan(&exists); chkErr != nil {
				return chkErr
			}
			if !exists {
				return domain.ErrNotFound
			}
			return fmt.Errorf("status moved since read: %w", domain.ErrInvalidTransition)
		}
		return err
	}

	payload, err := json.Marshal(events.OrderChange{
		OrderID:        id,
		SupplierID:     supplierID,
		PreviousStatus: from,
		Status:         to,
	})
	if err != nil {
		return err
	}
	_, err = db.Exec(ctx, `SELECT pg_notify($1, $2)`, events.OrderChangeChannel, string(payload))
	return err
}

// ListDebtOrders is the debt scan: delivered/completed unsettled orders with
// their contribution (item margin + platform delivery share).
func (r *orderRepository) ListDebtOrders(ctx context.Context, supplierID string, platformDeliveryPct int) ([]domain.DebtOrder, error) {
	rows, err := q(ctx, r.db).Query(ctx, `
		SELECT o.id,
			COALESCE(SUM((i.unit_selling_price - i.unit_supplier_cost) * i.quantity), 0)
				+ o.delivery_fee * $3 / 100
		FROM orders o
		JOIN order_items i ON i.order_id = o.id
		WHERE o.supplier_id = $1
		  AND o.status = ANY($2)
		  AND o.settlement_status = 'unsettled'
		GROUP BY o.id, o.delivery_fee
		ORDER BY o.created_at ASC`,
		supplierID, domain.DebtOrderStatuses, platformDeliveryPct)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.DebtOrder
	for rows.Next() {
		var d domain.DebtOrder
		if err := rows.Scan(&d.OrderID, &d.Amount); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *orderRepository) MarkSettled(ctx context.Context, orderIDs []string) error {
	if len(orderIDs) == 0 {
		return nil
	}
	_, err := q(ctx, r.db).Exec(ctx,
		`UPDATE orders SET settlement_status = 'paid' WHERE id = ANY($1)`, orderIDs)
	return err
}

func (r *orderRepository) MarkCommissionPaid(ctx context.Context, orderID string) (bool, error) {
	tag, err := q(ctx, r.db).Exec(ctx,
		`UPDATE orders SET commission_paid = TRUE WHERE id = $1 AND commission_paid = FALSE`, orderID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *orderRepository) ListStaleOutForDelivery(ctx context.Context, before time.Time) ([]domain.Order, error) {
	rows, err := q(ctx, r.db).Query(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE status = 'out_for_delivery' AND status_changed_at < $1
		ORDER BY status_changed_at ASC`, before)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

func (r *orderRepository) CreateHistory(ctx context.Context, h *domain.OrderHistory) error {
	_, err := q(ctx, r.db).Exec(ctx, `
		INSERT INTO order_history (id, order_id, previous_status, new_status, reason, created_by)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		h.ID, h.OrderID, h.PreviousStatus, h.NewStatus, h.Reason, h.CreatedBy)
	if err != nil {
		return fmt.Errorf("failed to record history: %w", err)
	}
	return nil
}

func (r *orderRepository) GetHistory(ctx context.Context, orderID string) ([]domain.OrderHistory, error) {
	rows, err := q(ctx, r.db).Query(ctx, `
		SELECT id, order_id, previous_status, new_status, reason, created_by, created_at
		FROM order_history WHERE order_id = $1 ORDER BY created_at ASC`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.OrderHistory
	for rows.Next() {
		var h domain.OrderHistory
		if err := rows.Scan(&h.ID, &h.OrderID, &h.PreviousStatus, &h.NewStatus, &h.Reason, &h.CreatedBy, &h.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}
