package entity

import (
	"context"
	"time"
)

const RechargeApproved = "APPROVED"

// Recharge is a balance top-up confirmed by the payment gateway. GatewayTransactionID
// is unique: the same transaction never credits twice.
type Recharge struct {
	GatewayTransactionID string    `json:"gateway_transaction_id"`
	CompanyID            string    `json:"company_id"`
	AmountCents          int64     `json:"amount_cents"`
	Reference            string    `json:"reference"`
	Status               string    `json:"status"`
	CreatedAt            time.Time `json:"created_at"`
}

type RechargeRepository interface {
	// Apply records the recharge and credits the company in one transaction.
	// applied is false when the transaction id was already recorded.
	Apply(ctx context.Context, r *Recharge) (applied bool, balanceCents int64, err error)
}
