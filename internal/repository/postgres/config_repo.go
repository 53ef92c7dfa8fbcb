package postgres

import (
	"context"
	"errors"
	"time"

	"soukly-backend/internal/domain"
	"soukly-backend/pkg/cache"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	settingsCacheKey = "config:platform_settings"
	settingsCacheTTL = time.Minute
)

// configRepository serves the single platform_settings row through a short
// cache, so admin edits take effect within a minute without a restart.
type configRepository struct {
	db    *pgxpool.Pool
	cache cache.CacheService
}

func NewConfigRepository(db *pgxpool.Pool, cache cache.CacheService) domain.ConfigRepository {
	return &configRepository{db: db, cache: cache}
}

func (r *configRepository) GetSettings(ctx context.Context) (*domain.PlatformSettings, error) {
	if v, ok := r.cache.Get(settingsCacheKey); ok {
		if s, ok := v.(domain.PlatformSettings); ok {
			return &s, nil
		}
	}

	var s domain.PlatformSettings
	var autoDeliverHours int
	err := q(ctx, r.db).QueryRow(ctx, `
		SELECT closing_time, opening_time, platform_delivery_pct, delivery_fee,
			auto_deliver_after_hours, promo_discount,
			commission_standard, commission_actif, commission_premium,
			min_withdrawal_standard, min_withdrawal_actif, min_withdrawal_premium,
			updated_at
		FROM platform_settings WHERE id = 1`).Scan(
		&s.ClosingTime, &s.OpeningTime, &s.PlatformDeliveryPct, &s.DeliveryFee,
		&autoDeliverHours, &s.PromoDiscount,
		&s.CommissionStandard, &s.CommissionActif, &s.CommissionPremium,
		&s.MinWithdrawalStandard, &s.MinWithdrawalActif, &s.MinWithdrawalPremium,
		&s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			defaults := domain.DefaultPlatformSettings()
			return &defaults, nil
		}
		return nil, err
	}
	s.AutoDeliverAfter = time.Duration(autoDeliverHours) * time.Hour

	r.cache.Set(settingsCacheKey, s, settingsCacheTTL)
	return &s, nil
}

func (r *configRepository) UpdateSettings(ctx context.Context, s *domain.PlatformSettings) error {
	_, err := q(ctx, r.db).Exec(ctx, `
		INSERT INTO platform_settings (
			id, closing_time, opening_time, platform_delivery_pct, delivery_fee,
			auto_deliver_after_hours, promo_discount,
			commission_standard, commission_actif, commission_premium,
			min_withdrawal_standard, min_withdrawal_actif, min_withdrawal_premium,
			updated_at
		) VALUES (1, $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12, NOW())
		ON CONFLICT (id) DO UPDATE SET
			closing_time = EXCLUDED.closing_time,
			opening_time = EXCLUDED.opening_time,
			platform_delivery_pct = EXCLUDED.platform_delivery_pct,
			delivery_fee = EXCLUDED.delivery_fee,
			auto_deliver_after_hours = EXCLUDED.auto_deliver_after_hours,
			promo_discount = EXCLUDED.promo_discount,
			commission_standard = EXCLUDED.commission_standard,
			commission_actif = EXCLUDED.commission_actif,
			commission_premium = EXCLUDED.commission_premium,
			min_withdrawal_standard = EXCLUDED.min_withdrawal_standard,
			min_withdrawal_actif = EXCLUDED.min_withdrawal_actif,
			min_withdrawal_premium = EXCLUDED.min_withdrawal_premium,
			updated_at = NOW()`,
		s.ClosingTime, s.OpeningTime, s.PlatformDeliveryPct, s.DeliveryFee,
		int(s.AutoDeliverAfter.Hours()), s.PromoDiscount,
		s.CommissionStandard, s.CommissionActif, s.CommissionPremium,
		s.MinWithdrawalStandard, s.MinWithdrawalActif, s.MinWithdrawalPremium)
	if err != nil {
		return err
	}

	r.cache.Delete(settingsCacheKey)
	return nil
}
