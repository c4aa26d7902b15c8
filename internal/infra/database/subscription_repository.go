package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/xavierca1/crebit-marketplace/internal/entity"
)

type SubscriptionRepository struct {
	DB *sql.DB
}

func NewSubscriptionRepository(db *sql.DB) *SubscriptionRepository {
	return &SubscriptionRepository{DB: db}
}

const subscriptionColumns = `id, company_id, name, vertical, risk, min_score, max_price_cents,
		min_requested_cents, max_daily_purchases, daily_purchases, window_started_at,
		active, auto_purchase, created_at, updated_at`

func scanSubscription(row interface{ Scan(...any) error }) (*entity.Subscription, error) {
	var (
		s            entity.Subscription
		vertical     sql.NullString
		risk         sql.NullString
		minScore     sql.NullInt64
		maxPrice     sql.NullInt64
		minRequested sql.NullInt64
		windowStart  sql.NullTime
	)
	err := row.Scan(
		&s.ID,
		&s.CompanyID,
		&s.Name,
		&vertical,
		&risk,
		&minScore,
		&maxPrice,
		&minRequested,
		&s.MaxDailyPurchases,
		&s.DailyPurchases,
		&windowStart,
		&s.Active,
		&s.AutoPurchase,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if vertical.Valid {
		v := entity.Vertical(vertical.String)
		s.Criteria.Vertical = &v
	}
	if risk.Valid {
		r := entity.Risk(risk.String)
		s.Criteria.Risk = &r
	}
	if minScore.Valid {
		v := int(minScore.Int64)
		s.Criteria.MinScore = &v
	}
	if maxPrice.Valid {
		s.Criteria.MaxPriceCents = &maxPrice.Int64
	}
	if minRequested.Valid {
		s.Criteria.MinRequestedCents = &minRequested.Int64
	}
	if windowStart.Valid {
		s.WindowStartedAt = &windowStart.Time
	}
	return &s, nil
}

// criteriaArgs flattens the optional criteria into nullable column values.
func criteriaArgs(c entity.Criteria) []any {
	var vertical, risk *string
	if c.Vertical != nil {
		v := string(*c.Vertical)
		vertical = &v
	}
	if c.Risk != nil {
		r := string(*c.Risk)
		risk = &r
	}
	return []any{vertical, risk, c.MinScore, c.MaxPriceCents, c.MinRequestedCents}
}

func (r *SubscriptionRepository) Create(ctx context.Context, sub *entity.Subscription) error {
	query := `
		INSERT INTO lead_subscriptions (
			id, company_id, name, vertical, risk, min_score, max_price_cents, min_requested_cents,
			max_daily_purchases, daily_purchases, window_started_at, active, auto_purchase,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	args := []any{sub.ID, sub.CompanyID, sub.Name}
	args = append(args, criteriaArgs(sub.Criteria)...)
	args = append(args,
		sub.MaxDailyPurchases,
		sub.DailyPurchases,
		sub.WindowStartedAt,
		sub.Active,
		sub.AutoPurchase,
		sub.CreatedAt,
		sub.UpdatedAt,
	)
	_, err := r.DB.ExecContext(ctx, query, args...)
	return mapError("create subscription", err)
}

// Update rewrites the editable fields. The counter is clamped to the new maximum.
func (r *SubscriptionRepository) Update(ctx context.Context, sub *entity.Subscription) error {
	query := `
		UPDATE lead_subscriptions SET
			name = $2, vertical = $3, risk = $4, min_score = $5, max_price_cents = $6,
			min_requested_cents = $7, max_daily_purchases = $8,
			daily_purchases = LEAST(daily_purchases, $8),
			active = $9, auto_purchase = $10, updated_at = $11
		WHERE id = $1
	`
	args := []any{sub.ID, sub.Name}
	args = append(args, criteriaArgs(sub.Criteria)...)
	args = append(args, sub.MaxDailyPurchases, sub.Active, sub.AutoPurchase, sub.UpdatedAt)

	res, err := r.DB.ExecContext(ctx, query, args...)
	return requireOneRow("update subscription", res, err)
}

func (r *SubscriptionRepository) FindByID(ctx context.Context, id string) (*entity.Subscription, error) {
	s, err := scanSubscription(r.DB.QueryRowContext(ctx,
		`SELECT `+subscriptionColumns+` FROM lead_subscriptions WHERE id = $1`, id))
	if err != nil {
		return nil, mapError("find subscription", err)
	}
	return s, nil
}

func (r *SubscriptionRepository) ListByCompany(ctx context.Context, companyID string) ([]*entity.Subscription, error) {
	return r.list(ctx, `SELECT `+subscriptionColumns+` FROM lead_subscriptions
		WHERE company_id = $1 ORDER BY created_at`, companyID)
}

func (r *SubscriptionRepository) ListActiveByCompany(ctx context.Context, companyID string) ([]*entity.Subscription, error) {
	return r.list(ctx, `SELECT `+subscriptionColumns+` FROM lead_subscriptions
		WHERE company_id = $1 AND active ORDER BY created_at`, companyID)
}

func (r *SubscriptionRepository) ListActiveAutoPurchase(ctx context.Context) ([]*entity.Subscription, error) {
	return r.list(ctx, `SELECT `+subscriptionColumns+` FROM lead_subscriptions
		WHERE active AND auto_purchase ORDER BY created_at`)
}

func (r *SubscriptionRepository) list(ctx context.Context, query string, args ...any) ([]*entity.Subscription, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError("list subscriptions", err)
	}
	defer rows.Close()

	var subs []*entity.Subscription
	for rows.Next() {
		s, err := scanSubscription(rows)
		if err != nil {
			return nil, mapError("scan subscription", err)
		}
		subs = append(subs, s)
	}
	return subs, mapError("list subscriptions", rows.Err())
}

func (r *SubscriptionRepository) SetActive(ctx context.Context, id string, active bool) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE lead_subscriptions SET active = $2, updated_at = NOW() WHERE id = $1`, id, active)
	return requireOneRow("toggle subscription", res, err)
}

func (r *SubscriptionRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM lead_subscriptions WHERE id = $1`, id)
	return requireOneRow("delete subscription", res, err)
}

// ResetExpiredWindows zeroes the counters whose window elapsed at now.
func (r *SubscriptionRepository) ResetExpiredWindows(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE lead_subscriptions SET daily_purchases = 0, window_started_at = NULL
		WHERE window_started_at IS NOT NULL AND window_started_at <= $1`,
		now.Add(-entity.QuotaWindow),
	)
	if err != nil {
		return 0, mapError("reset quotas", err)
	}
	n, err := res.RowsAffected()
	return n, mapError("reset quotas", err)
}

// consumeQuotaTx increments the counter of an active subscription that still has
// room in its window, opening a new window when the previous one elapsed.
func consumeQuotaTx(ctx context.Context, tx *sql.Tx, subscriptionID, companyID string, now time.Time) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE lead_subscriptions SET
			daily_purchases = CASE
				WHEN window_started_at IS NULL OR window_started_at <= $3 THEN 1
				ELSE daily_purchases + 1 END,
			window_started_at = CASE
				WHEN window_started_at IS NULL OR window_started_at <= $3 THEN $4
				ELSE window_started_at END,
			updated_at = $4
		WHERE id = $1 AND company_id = $2 AND active
			AND (window_started_at IS NULL OR window_started_at <= $3 OR daily_purchases < max_daily_purchases)`,
		subscriptionID, companyID, now.Add(-entity.QuotaWindow), now,
	)
	if err != nil {
		return mapError("consume quota", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return mapError("consume quota", err)
	}
	if n == 0 {
		return entity.ErrQuotaExceeded
	}
	return nil
}

func requireOneRow(op string, res sql.Result, err error) error {
	if err != nil {
		return mapError(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return mapError(op, err)
	}
	if n == 0 {
		return entity.ErrNotFound
	}
	return nil
}
