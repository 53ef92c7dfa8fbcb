package postgres

import (
	"context"
	"errors"
	"time"

	"soukly-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type partnerRepository struct {
	db *pgxpool.Pool
}

func NewPartnerRepository(db *pgxpool.Pool) domain.PartnerRepository {
	return &partnerRepository{db: db}
}

const partnerColumns = `id, name, phone, promo_code, level, total_sales,
	wallet_balance, total_earnings, total_withdrawn, created_at`

func scanPartner(row pgx.Row) (*domain.Partner, error) {
	var p domain.Partner
	err := row.Scan(&p.ID, &p.Name, &p.Phone, &p.PromoCode, &p.Level, &p.TotalSales,
		&p.WalletBalance, &p.TotalEarnings, &p.TotalWithdrawn, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *partnerRepository) GetByID(ctx context.Context, id string) (*domain.Partner, error) {
	return scanPartner(q(ctx, r.db).QueryRow(ctx, `SELECT `+partnerColumns+` FROM partners WHERE id = $1`, id))
}

func (r *partnerRepository) GetByPromoCode(ctx context.Context, code string) (*domain.Partner, error) {
	return scanPartner(q(ctx, r.db).QueryRow(ctx,
		`SELECT `+partnerColumns+` FROM partners WHERE promo_code = $1`, code))
}

// CreditSale applies one completed referred sale in a single statement and
// returns the updated row, so the caller can re-derive the level from the new
// totals.
func (r *partnerRepository) CreditSale(ctx context.Context, partnerID string, commission int64) (*domain.Partner, error) {
	return scanPartner(q(ctx, r.db).QueryRow(ctx, `
		UPDATE partners SET
			wallet_balance = wallet_balance + $2,
			total_earnings = total_earnings + $2,
			total_sales = total_sales + 1
		WHERE id = $1
		RETURNING `+partnerColumns,
		partnerID, commission))
}

func (r *partnerRepository) UpdateLevel(ctx context.Context, partnerID, level string) error {
	tag, err := q(ctx, r.db).Exec(ctx, `UPDATE partners SET level = $2 WHERE id = $1`, partnerID, level)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DebitWallet re-checks the balance inside the statement; a concurrent debit
// that would overdraw simply matches no row.
func (r *partnerRepository) DebitWallet(ctx context.Context, partnerID string, amount int64) error {
	tag, err := q(ctx, r.db).Exec(ctx, `
		UPDATE partners SET wallet_balance = wallet_balance - $2
		WHERE id = $1 AND wallet_balance >= $2`,
		partnerID, amount)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInsufficientBalance
	}
	return nil
}

func (r *partnerRepository) CreditWithdrawn(ctx context.Context, partnerID string, amount int64) error {
	tag, err := q(ctx, r.db).Exec(ctx,
		`UPDATE partners SET total_withdrawn = total_withdrawn + $2 WHERE id = $1`, partnerID, amount)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// --- Withdrawals ---

type withdrawalRepository struct {
	db *pgxpool.Pool
}

func NewWithdrawalRepository(db *pgxpool.Pool) domain.WithdrawalRepository {
	return &withdrawalRepository{db: db}
}

const withdrawalColumns = `id, partner_id, amount, payout_details, status, created_at, paid_at`

func scanWithdrawal(row pgx.Row) (*domain.Withdrawal, error) {
	var w domain.Withdrawal
	err := row.Scan(&w.ID, &w.PartnerID, &w.Amount, &w.PayoutDetails, &w.Status, &w.CreatedAt, &w.PaidAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &w, nil
}

func (r *withdrawalRepository) Create(ctx context.Context, w *domain.Withdrawal) error {
	_, err := q(ctx, r.db).Exec(ctx, `
		INSERT INTO withdrawals (id, partner_id, amount, payout_details, status, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		w.ID, w.PartnerID, w.Amount, w.PayoutDetails, w.Status, w.CreatedAt)
	return err
}

func (r *withdrawalRepository) GetByID(ctx context.Context, id string) (*domain.Withdrawal, error) {
	return scanWithdrawal(q(ctx, r.db).QueryRow(ctx,
		`SELECT `+withdrawalColumns+` FROM withdrawals WHERE id = $1`, id))
}

func (r *withdrawalRepository) ListByPartner(ctx context.Context, partnerID string) ([]domain.Withdrawal, error) {
	rows, err := q(ctx, r.db).Query(ctx,
		`SELECT `+withdrawalColumns+` FROM withdrawals WHERE partner_id = $1 ORDER BY created_at DESC`, partnerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectWithdrawals(rows)
}

func (r *withdrawalRepository) ListByStatus(ctx context.Context, status string, limit, offset int) ([]domain.Withdrawal, int64, error) {
	var total int64
	if err := q(ctx, r.db).QueryRow(ctx,
		`SELECT COUNT(*) FROM withdrawals WHERE status = $1`, status).Scan(&total); err != nil {
		return nil, 0, err
	}
	if limit <= 0 {
		limit = 20
	}

	rows, err := q(ctx, r.db).Query(ctx,
		`SELECT `+withdrawalColumns+` FROM withdrawals WHERE status = $1 ORDER BY created_at ASC LIMIT $2 OFFSET $3`,
		status, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out, err := collectWithdrawals(rows)
	return out, total, err
}

func collectWithdrawals(rows pgx.Rows) ([]domain.Withdrawal, error) {
	var out []domain.Withdrawal
	for rows.Next() {
		w, err := scanWithdrawal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *w)
	}
	return out, rows.Err()
}

func (r *withdrawalRepository) MarkPaid(ctx context.Context, id string, at time.Time) error {
	tag, err := q(ctx, r.db).Exec(ctx, `
		UPDATE withdrawals SET status = 'paid', paid_at = $2
		WHERE id = $1 AND status = 'pending'`, id, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
