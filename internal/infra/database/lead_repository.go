package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/xavierca1/crebit-marketplace/internal/entity"
)

type LeadRepository struct {
	DB *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

const leadColumns = `id, risk, intention, score, requested_amount_cents, price_cents, vertical,
		status, sold, converted, created_at, sold_at, buyer_company_id`

func scanLead(row interface{ Scan(...any) error }) (*entity.Lead, error) {
	var (
		l      entity.Lead
		soldAt sql.NullTime
		buyer  sql.NullString
	)
	err := row.Scan(
		&l.ID,
		&l.Risk,
		&l.Intention,
		&l.Score,
		&l.RequestedAmountCents,
		&l.PriceCents,
		&l.Vertical,
		&l.Status,
		&l.Sold,
		&l.Converted,
		&l.CreatedAt,
		&soldAt,
		&buyer,
	)
	if err != nil {
		return nil, err
	}
	if soldAt.Valid {
		l.SoldAt = &soldAt.Time
	}
	l.BuyerCompanyID = buyer.String
	return &l, nil
}

func (r *LeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	query := `
		INSERT INTO leads (
			id, risk, intention, score, requested_amount_cents, price_cents,
			vertical, status, sold, converted, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.DB.ExecContext(ctx, query,
		lead.ID,
		lead.Risk,
		lead.Intention,
		lead.Score,
		lead.RequestedAmountCents,
		lead.PriceCents,
		lead.Vertical,
		lead.Status,
		lead.Sold,
		lead.Converted,
		lead.CreatedAt,
	)
	return mapError("create lead", err)
}

func (r *LeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE id = $1`
	lead, err := scanLead(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError("find lead", err)
	}
	return lead, nil
}

func (r *LeadRepository) ListOffered(ctx context.Context, filter entity.LeadFilter) ([]*entity.Lead, error) {
	conds := []string{"status = $1", "sold = FALSE"}
	args := []any{entity.LeadOffered}

	if filter.Vertical != nil {
		args = append(args, *filter.Vertical)
		conds = append(conds, fmt.Sprintf("vertical = $%d", len(args)))
	}
	if filter.Risk != nil {
		args = append(args, *filter.Risk)
		conds = append(conds, fmt.Sprintf("risk = $%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	args = append(args, limit)

	query := fmt.Sprintf(`SELECT %s FROM leads WHERE %s ORDER BY created_at DESC LIMIT $%d`,
		leadColumns, strings.Join(conds, " AND "), len(args))

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError("list offered leads", err)
	}
	defer rows.Close()

	var leads []*entity.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, mapError("scan lead", err)
		}
		leads = append(leads, lead)
	}
	return leads, mapError("list offered leads", rows.Err())
}

func (r *LeadRepository) UpdateStatus(ctx context.Context, id string, from, to entity.LeadStatus) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE leads SET status = $1 WHERE id = $2 AND status = $3 AND sold = FALSE`,
		to, id, from,
	)
	if err != nil {
		return mapError("update lead status", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return mapError("update lead status", err)
	}
	if n == 1 {
		return nil
	}

	var exists bool
	if err := r.DB.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM leads WHERE id = $1)`, id).Scan(&exists); err != nil {
		return mapError("update lead status", err)
	}
	if !exists {
		return entity.ErrNotFound
	}
	return entity.ErrInvalidTransition
}
