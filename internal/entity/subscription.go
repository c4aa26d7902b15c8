package entity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// QuotaWindow is the rolling period of a subscription's daily counter. The window
// opens on the first purchase and the counter counts as zero once it has elapsed.
const QuotaWindow = 24 * time.Hour

// Criteria holds the optional filters of a subscription. A nil field is a wildcard;
// a zero value is a real bound.
type Criteria struct {
	Vertical          *Vertical `json:"vertical,omitempty"`
	Risk              *Risk     `json:"risk,omitempty"`
	MinScore          *int      `json:"min_score,omitempty"`
	MaxPriceCents     *int64    `json:"max_price_cents,omitempty"`
	MinRequestedCents *int64    `json:"min_requested_cents,omitempty"`
}

func (c Criteria) Matches(l *Lead) bool {
	if c.Vertical != nil && l.Vertical != *c.Vertical {
		return false
	}
	if c.Risk != nil && l.Risk != *c.Risk {
		return false
	}
	if c.MinScore != nil && l.Score < *c.MinScore {
		return false
	}
	if c.MaxPriceCents != nil && l.PriceCents > *c.MaxPriceCents {
		return false
	}
	if c.MinRequestedCents != nil && l.RequestedAmountCents < *c.MinRequestedCents {
		return false
	}
	return true
}

type Subscription struct {
	ID                string     `json:"id"`
	CompanyID         string     `json:"company_id"`
	Name              string     `json:"name"`
	Criteria          Criteria   `json:"criteria"`
	MaxDailyPurchases int        `json:"max_daily_purchases"`
	DailyPurchases    int        `json:"daily_purchases"`
	WindowStartedAt   *time.Time `json:"window_started_at,omitempty"`
	Active            bool       `json:"active"`
	AutoPurchase      bool       `json:"auto_purchase"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

func NewSubscription(companyID, name string, criteria Criteria, maxDaily int, autoPurchase bool) *Subscription {
	now := time.Now()
	return &Subscription{
		ID:                uuid.New().String(),
		CompanyID:         companyID,
		Name:              name,
		Criteria:          criteria,
		MaxDailyPurchases: maxDaily,
		Active:            true,
		AutoPurchase:      autoPurchase,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

func WindowExpired(startedAt *time.Time, now time.Time) bool {
	return startedAt == nil || now.Sub(*startedAt) >= QuotaWindow
}

// UsedInWindow is the counter as seen at `now`.
func (s *Subscription) UsedInWindow(now time.Time) int {
	if WindowExpired(s.WindowStartedAt, now) {
		return 0
	}
	return s.DailyPurchases
}

func (s *Subscription) HasQuota(now time.Time) bool {
	return s.UsedInWindow(now) < s.MaxDailyPurchases
}

// ConsumeQuota records one purchase at `now`, opening a new window when the
// previous one has elapsed.
func (s *Subscription) ConsumeQuota(now time.Time) error {
	if !s.Active {
		return ErrQuotaExceeded
	}
	if WindowExpired(s.WindowStartedAt, now) {
		start := now
		s.WindowStartedAt = &start
		s.DailyPurchases = 0
	}
	if s.DailyPurchases >= s.MaxDailyPurchases {
		return ErrQuotaExceeded
	}
	s.DailyPurchases++
	s.UpdatedAt = now
	return nil
}

type SubscriptionRepository interface {
	Create(ctx context.Context, sub *Subscription) error
	Update(ctx context.Context, sub *Subscription) error
	FindByID(ctx context.Context, id string) (*Subscription, error)
	ListByCompany(ctx context.Context, companyID string) ([]*Subscription, error)
	ListActiveByCompany(ctx context.Context, companyID string) ([]*Subscription, error)
	ListActiveAutoPurchase(ctx context.Context) ([]*Subscription, error)
	SetActive(ctx context.Context, id string, active bool) error
	Delete(ctx context.Context, id string) error
	ResetExpiredWindows(ctx context.Context, now time.Time) (int64, error)
}
