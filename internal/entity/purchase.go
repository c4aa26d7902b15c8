package entity

import (
	"context"
	"time"
)

// Purchase is immutable after creation except Converted, which only goes
// false -> true, and RefundedAt, which is set at most once.
type Purchase struct {
	ID          string     `json:"id"`
	CompanyID   string     `json:"company_id"`
	LeadID      string     `json:"lead_id"`
	PriceCents  int64      `json:"price_cents"`
	Plan        Plan       `json:"plan"`
	Converted   bool       `json:"converted"`
	PurchasedAt time.Time  `json:"purchased_at"`
	RefundedAt  *time.Time `json:"refunded_at,omitempty"`
}

// PurchaseRequest is executed as one storage transaction. When SubscriptionID is
// set the subscription quota is checked and consumed inside the same transaction.
type PurchaseRequest struct {
	CompanyID      string
	LeadID         string
	SubscriptionID string
	Now            time.Time
}

// PurchaseReceipt is what the purchase transaction commits.
type PurchaseReceipt struct {
	Purchase     *Purchase
	BalanceCents int64
	FreeLead     bool
}

type PurchaseRepository interface {
	Purchase(ctx context.Context, req PurchaseRequest) (*PurchaseReceipt, error)
	FindByID(ctx context.Context, id string) (*Purchase, error)
	FindByCompanyAndLead(ctx context.Context, companyID, leadID string) (*Purchase, error)
	MarkConverted(ctx context.Context, id string) error
}
