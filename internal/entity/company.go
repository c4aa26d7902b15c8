package entity

import (
	"context"
	"time"
)

type Plan string

const (
	PlanFreemium     Plan = "freemium"
	PlanBasic        Plan = "basic"
	PlanProfessional Plan = "professional"
	PlanEnterprise   Plan = "enterprise"
)

func (p Plan) Valid() bool {
	switch p {
	case PlanFreemium, PlanBasic, PlanProfessional, PlanEnterprise:
		return true
	}
	return false
}

// Company is a buyer account. BalanceCents is never negative.
type Company struct {
	ID             string `json:"id"`
	UserID         string `json:"user_id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Plan           Plan   `json:"plan"`
	BalanceCents   int64  `json:"balance_cents"`
	Active         bool   `json:"active"`
	PurchasedLeads int    `json:"purchased_leads"`
	FreeLeadsLimit int    `json:"free_leads_limit"`
	FreeLeadsUsed  int    `json:"free_leads_used"`
}

func (c *Company) HasFreeLead() bool {
	return c.Plan == PlanFreemium && c.FreeLeadsUsed < c.FreeLeadsLimit
}

func (c *Company) CanAfford(priceCents int64) bool {
	return c.HasFreeLead() || c.BalanceCents >= priceCents
}

type LedgerKind string

const (
	LedgerRecharge   LedgerKind = "recharge"
	LedgerPurchase   LedgerKind = "purchase"
	LedgerRefund     LedgerKind = "refund"
	LedgerAdjustment LedgerKind = "adjustment"
)

// LedgerEntry is the audit row written next to every balance mutation.
type LedgerEntry struct {
	ID                string     `json:"id"`
	CompanyID         string     `json:"company_id"`
	AmountCents       int64      `json:"amount_cents"`
	BalanceAfterCents int64      `json:"balance_after_cents"`
	Kind              LedgerKind `json:"kind"`
	ReferenceID       string     `json:"reference_id,omitempty"`
	Description       string     `json:"description,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

// BalanceChange describes one credit or debit. AmountCents is always positive;
// the direction comes from the repository method.
type BalanceChange struct {
	CompanyID   string
	AmountCents int64
	Kind        LedgerKind
	ReferenceID string
	Description string
}

type CompanyRepository interface {
	FindByID(ctx context.Context, id string) (*Company, error)
	FindByUserID(ctx context.Context, userID string) (*Company, error)
	// Credit and Debit return the balance after the change.
	Credit(ctx context.Context, change BalanceChange) (int64, error)
	Debit(ctx context.Context, change BalanceChange) (int64, error)
	UpdatePlan(ctx context.Context, id string, plan Plan) (*Company, error)
}
