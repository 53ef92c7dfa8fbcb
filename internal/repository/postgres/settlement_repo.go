package postgres

import (
	"context"
	"errors"
	"time"

	"soukly-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type settlementRepository struct {
	db *pgxpool.Pool
}

func NewSettlementRepository(db *pgxpool.Pool) domain.SettlementRepository {
	return &settlementRepository{db: db}
}

const settlementColumns = `id, supplier_id, amount, transaction_ref, proof_url,
	status, reject_reason, order_ids, created_at, resolved_at`

func scanSettlement(row pgx.Row) (*domain.Settlement, error) {
	var s domain.Settlement
	err := row.Scan(&s.ID, &s.SupplierID, &s.Amount, &s.TransactionRef, &s.ProofURL,
		&s.Status, &s.RejectReason, &s.OrderIDs, &s.CreatedAt, &s.ResolvedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// CreatePending is the conditional write behind the one-pending-settlement
// rule. The INSERT only fires when no pending row exists, and the partial
// unique index (supplier_id WHERE status='pending') closes the race between
// two rapid declarations.
func (r *settlementRepository) CreatePending(ctx context.Context, s *domain.Settlement) error {
	tag, err := q(ctx, r.db).Exec(ctx, `
		INSERT INTO settlements (id, supplier_id, amount, transaction_ref, status, order_ids, created_at)
		SELECT $1, $2, $3, $4, 'pending', $5, $6
		WHERE NOT EXISTS (
			SELECT 1 FROM settlements WHERE supplier_id = $2 AND status = 'pending'
		)`,
		s.ID, s.SupplierID, s.Amount, s.TransactionRef, s.OrderIDs, s.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrSettlementPending
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSettlementPending
	}
	return nil
}

func (r *settlementRepository) GetByID(ctx context.Context, id string) (*domain.Settlement, error) {
	return scanSettlement(q(ctx, r.db).QueryRow(ctx,
		`SELECT `+settlementColumns+` FROM settlements WHERE id = $1`, id))
}

func (r *settlementRepository) HasPending(ctx context.Context, supplierID string) (bool, error) {
	var exists bool
	err := q(ctx, r.db).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM settlements WHERE supplier_id = $1 AND status = 'pending')`,
		supplierID).Scan(&exists)
	return exists, err
}

func (r *settlementRepository) ListBySupplier(ctx context.Context, supplierID string) ([]domain.Settlement, error) {
	rows, err := q(ctx, r.db).Query(ctx,
		`SELECT `+settlementColumns+` FROM settlements WHERE supplier_id = $1 ORDER BY created_at DESC`, supplierID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSettlements(rows)
}

func (r *settlementRepository) ListByStatus(ctx context.Context, status string, limit, offset int) ([]domain.Settlement, int64, error) {
	var total int64
	if err := q(ctx, r.db).QueryRow(ctx,
		`SELECT COUNT(*) FROM settlements WHERE status = $1`, status).Scan(&total); err != nil {
		return nil, 0, err
	}
	if limit <= 0 {
		limit = 20
	}

	rows, err := q(ctx, r.db).Query(ctx,
		`SELECT `+settlementColumns+` FROM settlements WHERE status = $1 ORDER BY created_at ASC LIMIT $2 OFFSET $3`,
		status, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out, err := collectSettlements(rows)
	return out, total, err
}

func collectSettlements(rows pgx.Rows) ([]domain.Settlement, error) {
	var out []domain.Settlement
	for rows.Next() {
		s, err := scanSettlement(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

func (r *settlementRepository) SetProofURL(ctx context.Context, id, url string) error {
	tag, err := q(ctx, r.db).Exec(ctx, `UPDATE settlements SET proof_url = $2 WHERE id = $1`, id, url)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *settlementRepository) Resolve(ctx context.Context, id, status string, reason *string, at time.Time) error {
	tag, err := q(ctx, r.db).Exec(ctx, `
		UPDATE settlements SET status = $2, reject_reason = $3, resolved_at = $4
		WHERE id = $1 AND status = 'pending'`,
		id, status, reason, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
