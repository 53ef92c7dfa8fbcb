package postgres

import (
	"context"
	"errors"
	"time"

	"soukly-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type supplierRepository struct {
	db *pgxpool.Pool
}

func NewSupplierRepository(db *pgxpool.Pool) domain.SupplierRepository {
	return &supplierRepository{db: db}
}

const supplierColumns = `id, name, phone, status, platform_debt, last_debt_update, created_at`

func scanSupplier(row pgx.Row) (*domain.Supplier, error) {
	var s domain.Supplier
	err := row.Scan(&s.ID, &s.Name, &s.Phone, &s.Status, &s.Wallet.PlatformDebt, &s.Wallet.LastDebtUpdate, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *supplierRepository) GetByID(ctx context.Context, id string) (*domain.Supplier, error) {
	return scanSupplier(q(ctx, r.db).QueryRow(ctx, `SELECT `+supplierColumns+` FROM suppliers WHERE id = $1`, id))
}

func (r *supplierRepository) GetAll(ctx context.Context, limit, offset int) ([]domain.Supplier, int64, error) {
	var total int64
	if err := q(ctx, r.db).QueryRow(ctx, `SELECT COUNT(*) FROM suppliers`).Scan(&total); err != nil {
		return nil, 0, err
	}
	if limit <= 0 {
		limit = 20
	}

	rows, err := q(ctx, r.db).Query(ctx,
		`SELECT `+supplierColumns+` FROM suppliers ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []domain.Supplier
	for rows.Next() {
		s, err := scanSupplier(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *s)
	}
	return out, total, rows.Err()
}

func (r *supplierRepository) UpdateStatus(ctx context.Context, id, status string) error {
	tag, err := q(ctx, r.db).Exec(ctx, `UPDATE suppliers SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateWalletDebt overwrites the cached derived scalar, last-writer-wins.
// The order set stays the source of truth.
func (r *supplierRepository) UpdateWalletDebt(ctx context.Context, id string, debt int64, at time.Time) error {
	tag, err := q(ctx, r.db).Exec(ctx,
		`UPDATE suppliers SET platform_debt = $2, last_debt_update = $3 WHERE id = $1`, id, debt, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
