package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/xavierca1/crebit-marketplace/internal/entity"
)

type PurchaseRepository struct {
	DB *sql.DB
}

func NewPurchaseRepository(db *sql.DB) *PurchaseRepository {
	return &PurchaseRepository{DB: db}
}

// Purchase sells the lead, charges the company (or consumes a free lead), consumes
// the subscription quota when requested and records the purchase, all in one
// transaction. Every step is a conditional update, so concurrent buyers of the same
// lead serialize on the lead row and exactly one of them commits.
func (r *PurchaseRepository) Purchase(ctx context.Context, req entity.PurchaseRequest) (*entity.PurchaseReceipt, error) {
	purchase := &entity.Purchase{
		ID:          uuid.New().String(),
		CompanyID:   req.CompanyID,
		LeadID:      req.LeadID,
		PurchasedAt: req.Now,
	}
	receipt := &entity.PurchaseReceipt{Purchase: purchase}

	var (
		listPrice int64
		freeLimit int
		freeUsed  int
		active    bool
	)

	err := NewTransaction(r.DB).
		AddStep("sell lead", func(ctx context.Context, tx *sql.Tx) error {
			err := tx.QueryRowContext(ctx,
				`UPDATE leads SET status = 'sold', sold = TRUE, buyer_company_id = $1, sold_at = $2
				WHERE id = $3 AND status = 'offered' AND sold = FALSE
				RETURNING price_cents`,
				req.CompanyID, req.Now, req.LeadID,
			).Scan(&listPrice)
			if errors.Is(err, sql.ErrNoRows) {
				return entity.ErrLeadUnavailable
			}
			return mapError("sell lead", err)
		}).
		AddStep("lock company", func(ctx context.Context, tx *sql.Tx) error {
			err := tx.QueryRowContext(ctx,
				`SELECT plan, active, free_leads_limit, free_leads_used FROM companies WHERE id = $1 FOR UPDATE`,
				req.CompanyID,
			).Scan(&purchase.Plan, &active, &freeLimit, &freeUsed)
			if err != nil {
				return mapError("lock company", err)
			}
			if !active {
				return entity.ErrForbidden
			}
			return nil
		}).
		AddStep("consume quota", func(ctx context.Context, tx *sql.Tx) error {
			if req.SubscriptionID == "" {
				return nil
			}
			return consumeQuotaTx(ctx, tx, req.SubscriptionID, req.CompanyID, req.Now)
		}).
		AddStep("charge company", func(ctx context.Context, tx *sql.Tx) error {
			company := entity.Company{Plan: purchase.Plan, FreeLeadsLimit: freeLimit, FreeLeadsUsed: freeUsed}
			if company.HasFreeLead() && listPrice > 0 {
				receipt.FreeLead = true
				err := tx.QueryRowContext(ctx,
					`UPDATE companies SET free_leads_used = free_leads_used + 1, purchased_leads = purchased_leads + 1
					WHERE id = $1 RETURNING balance_cents`,
					req.CompanyID,
				).Scan(&receipt.BalanceCents)
				return mapError("consume free lead", err)
			}

			purchase.PriceCents = listPrice
			if listPrice > 0 {
				if _, err := debitTx(ctx, tx, entity.BalanceChange{
					CompanyID:   req.CompanyID,
					AmountCents: listPrice,
					Kind:        entity.LedgerPurchase,
					ReferenceID: purchase.ID,
					Description: "lead " + req.LeadID,
				}); err != nil {
					return err
				}
			}
			err := tx.QueryRowContext(ctx,
				`UPDATE companies SET purchased_leads = purchased_leads + 1 WHERE id = $1 RETURNING balance_cents`,
				req.CompanyID,
			).Scan(&receipt.BalanceCents)
			return mapError("count purchase", err)
		}).
		AddStep("record purchase", func(ctx context.Context, tx *sql.Tx) error {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO purchases (id, company_id, lead_id, price_cents, plan, converted, purchased_at)
				VALUES ($1, $2, $3, $4, $5, FALSE, $6)`,
				purchase.ID, purchase.CompanyID, purchase.LeadID, purchase.PriceCents, purchase.Plan, purchase.PurchasedAt,
			)
			if isUniqueViolation(err) {
				return entity.ErrLeadUnavailable
			}
			return mapError("record purchase", err)
		}).
		Execute(ctx)
	if err != nil {
		return nil, err
	}
	return receipt, nil
}

const purchaseColumns = `id, company_id, lead_id, price_cents, plan, converted, purchased_at, refunded_at`

func scanPurchase(row interface{ Scan(...any) error }) (*entity.Purchase, error) {
	var (
		p          entity.Purchase
		refundedAt sql.NullTime
	)
	if err := row.Scan(&p.ID, &p.CompanyID, &p.LeadID, &p.PriceCents, &p.Plan, &p.Converted, &p.PurchasedAt, &refundedAt); err != nil {
		return nil, err
	}
	if refundedAt.Valid {
		p.RefundedAt = &refundedAt.Time
	}
	return &p, nil
}

func (r *PurchaseRepository) FindByID(ctx context.Context, id string) (*entity.Purchase, error) {
	p, err := scanPurchase(r.DB.QueryRowContext(ctx, `SELECT `+purchaseColumns+` FROM purchases WHERE id = $1`, id))
	if err != nil {
		return nil, mapError("find purchase", err)
	}
	return p, nil
}

func (r *PurchaseRepository) FindByCompanyAndLead(ctx context.Context, companyID, leadID string) (*entity.Purchase, error) {
	p, err := scanPurchase(r.DB.QueryRowContext(ctx,
		`SELECT `+purchaseColumns+` FROM purchases WHERE company_id = $1 AND lead_id = $2`,
		companyID, leadID,
	))
	if err != nil {
		return nil, mapError("find purchase", err)
	}
	return p, nil
}

// MarkConverted flags the purchase and its lead. The flag never goes back to false.
func (r *PurchaseRepository) MarkConverted(ctx context.Context, id string) error {
	var leadID string
	return NewTransaction(r.DB).
		AddStep("convert purchase", func(ctx context.Context, tx *sql.Tx) error {
			err := tx.QueryRowContext(ctx,
				`UPDATE purchases SET converted = TRUE WHERE id = $1 RETURNING lead_id`, id,
			).Scan(&leadID)
			return mapError("convert purchase", err)
		}).
		AddStep("convert lead", func(ctx context.Context, tx *sql.Tx) error {
			_, err := tx.ExecContext(ctx, `UPDATE leads SET converted = TRUE WHERE id = $1`, leadID)
			return mapError("convert lead", err)
		}).
		Execute(ctx)
}
