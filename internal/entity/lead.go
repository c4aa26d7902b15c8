package entity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Risk string

const (
	RiskLow    Risk = "low"
	RiskMedium Risk = "medium"
	RiskHigh   Risk = "high"
)

func (r Risk) Valid() bool {
	return r == RiskLow || r == RiskMedium || r == RiskHigh
}

type Intention string

const (
	IntentionHigh   Intention = "high"
	IntentionMedium Intention = "medium"
	IntentionLow    Intention = "low"
)

func (i Intention) Valid() bool {
	return i == IntentionHigh || i == IntentionMedium || i == IntentionLow
}

// Vertical is the pension fund / payroll segment the prospect belongs to.
type Vertical string

const (
	VerticalColpensiones Vertical = "Colpensiones"
	VerticalFopep        Vertical = "Fopep"
	VerticalMagisterio   Vertical = "Magisterio"
	VerticalMilitary     Vertical = "Fuerzas Militares"
)

type LeadStatus string

const (
	LeadCaptured LeadStatus = "captured"
	LeadOffered  LeadStatus = "offered"
	LeadReserved LeadStatus = "reserved"
	LeadSold     LeadStatus = "sold"
	LeadRejected LeadStatus = "rejected"
	LeadInReview LeadStatus = "in_review"
)

// sold is terminal and only reachable through a purchase.
var leadTransitions = map[LeadStatus][]LeadStatus{
	LeadCaptured: {LeadOffered, LeadRejected},
	LeadOffered:  {LeadReserved, LeadSold, LeadRejected, LeadInReview},
	LeadReserved: {LeadOffered, LeadRejected},
	LeadInReview: {LeadOffered, LeadRejected},
}

func (s LeadStatus) Valid() bool {
	switch s {
	case LeadCaptured, LeadOffered, LeadReserved, LeadSold, LeadRejected, LeadInReview:
		return true
	}
	return false
}

func (s LeadStatus) CanTransitionTo(next LeadStatus) bool {
	for _, allowed := range leadTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Lead struct {
	ID                   string     `json:"id"`
	Risk                 Risk       `json:"risk"`
	Intention            Intention  `json:"intention"`
	Score                int        `json:"score"`
	RequestedAmountCents int64      `json:"requested_amount_cents"`
	PriceCents           int64      `json:"price_cents"`
	Vertical             Vertical   `json:"vertical"`
	Status               LeadStatus `json:"status"`
	Sold                 bool       `json:"sold"`
	Converted            bool       `json:"converted"`
	CreatedAt            time.Time  `json:"created_at"`
	SoldAt               *time.Time `json:"sold_at,omitempty"`
	BuyerCompanyID       string     `json:"buyer_company_id,omitempty"`
}

func NewLead(vertical Vertical, risk Risk, intention Intention, score int, requestedCents, priceCents int64, status LeadStatus) *Lead {
	return &Lead{
		ID:                   uuid.New().String(),
		Risk:                 risk,
		Intention:            intention,
		Score:                score,
		RequestedAmountCents: requestedCents,
		PriceCents:           priceCents,
		Vertical:             vertical,
		Status:               status,
		CreatedAt:            time.Now(),
	}
}

func (l *Lead) Purchasable() bool {
	return l.Status == LeadOffered && !l.Sold
}

// LeadFilter narrows marketplace listings. Nil fields match everything.
type LeadFilter struct {
	Vertical *Vertical
	Risk     *Risk
	Limit    int
}

type LeadRepository interface {
	Create(ctx context.Context, lead *Lead) error
	FindByID(ctx context.Context, id string) (*Lead, error)
	ListOffered(ctx context.Context, filter LeadFilter) ([]*Lead, error)
	// UpdateStatus applies the change only while the lead is still in `from`.
	UpdateStatus(ctx context.Context, id string, from, to LeadStatus) error
}
