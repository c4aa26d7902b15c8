package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/xavierca1/crebit-marketplace/internal/entity"
)

type ReportRepository struct {
	DB *sql.DB
}

func NewReportRepository(db *sql.DB) *ReportRepository {
	return &ReportRepository{DB: db}
}

func (r *ReportRepository) Create(ctx context.Context, report *entity.Report) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO lead_reports (id, company_id, lead_id, reason, comment, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		report.ID, report.CompanyID, report.LeadID, report.Reason, report.Comment, report.Status, report.CreatedAt,
	)
	if isUniqueViolation(err) {
		return entity.ErrAlreadyReported
	}
	return mapError("create report", err)
}

func (r *ReportRepository) FindByID(ctx context.Context, id string) (*entity.Report, error) {
	var (
		rep        entity.Report
		resolvedAt sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, company_id, lead_id, reason, comment, status, created_at, resolved_at
		FROM lead_reports WHERE id = $1`, id,
	).Scan(&rep.ID, &rep.CompanyID, &rep.LeadID, &rep.Reason, &rep.Comment, &rep.Status, &rep.CreatedAt, &resolvedAt)
	if err != nil {
		return nil, mapError("find report", err)
	}
	if resolvedAt.Valid {
		rep.ResolvedAt = &resolvedAt.Time
	}
	return &rep, nil
}

func (r *ReportRepository) MarkInReview(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE lead_reports SET status = 'in_review' WHERE id = $1 AND status = 'pending'`, id)
	if err := requireOneRow("mark report in review", res, err); !errors.Is(err, entity.ErrNotFound) {
		return err
	}
	return r.explainMiss(ctx, r.DB, id, entity.ErrInvalidTransition)
}

// Resolve applies the decision only while the report is open; the refund of an
// approval commits or rolls back with the status change. A purchase is refunded
// at most once: refunded_at is claimed conditionally before the credit.
func (r *ReportRepository) Resolve(ctx context.Context, id string, decision entity.ReportStatus, now time.Time) (*entity.ReportResolution, error) {
	rep := &entity.Report{ID: id}
	res := &entity.ReportResolution{Report: rep}

	err := NewTransaction(r.DB).
		AddStep("close report", func(ctx context.Context, tx *sql.Tx) error {
			err := tx.QueryRowContext(ctx,
				`UPDATE lead_reports SET status = $2, resolved_at = $3
				WHERE id = $1 AND status IN ('pending', 'in_review')
				RETURNING company_id, lead_id, reason, comment, created_at`,
				id, decision, now,
			).Scan(&rep.CompanyID, &rep.LeadID, &rep.Reason, &rep.Comment, &rep.CreatedAt)
			if errors.Is(err, sql.ErrNoRows) {
				return r.explainMiss(ctx, tx, id, entity.ErrAlreadyResolved)
			}
			if err != nil {
				return mapError("close report", err)
			}
			rep.Status = decision
			rep.ResolvedAt = &now
			return nil
		}).
		AddStep("refund purchase", func(ctx context.Context, tx *sql.Tx) error {
			if decision != entity.ReportApproved {
				return nil
			}
			var purchaseID string
			var price int64
			err := tx.QueryRowContext(ctx,
				`UPDATE purchases SET refunded_at = $3
				WHERE company_id = $1 AND lead_id = $2 AND refunded_at IS NULL
				RETURNING id, price_cents`,
				rep.CompanyID, rep.LeadID, now,
			).Scan(&purchaseID, &price)
			if errors.Is(err, sql.ErrNoRows) {
				return purchaseRefundMiss(ctx, tx, rep.CompanyID, rep.LeadID)
			}
			if err != nil {
				return mapError("claim refund", err)
			}
			if price == 0 {
				return nil
			}
			balance, err := creditTx(ctx, tx, entity.BalanceChange{
				CompanyID:   rep.CompanyID,
				AmountCents: price,
				Kind:        entity.LedgerRefund,
				ReferenceID: purchaseID,
				Description: "report " + id,
			})
			if err != nil {
				return err
			}
			res.RefundedCents = price
			res.BalanceCents = balance
			return nil
		}).
		Execute(ctx)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// purchaseRefundMiss tells an already refunded purchase from a missing one.
func purchaseRefundMiss(ctx context.Context, q queryer, companyID, leadID string) error {
	var exists bool
	err := q.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM purchases WHERE company_id = $1 AND lead_id = $2)`,
		companyID, leadID,
	).Scan(&exists)
	if err != nil {
		return mapError("find purchase", err)
	}
	if !exists {
		return entity.ErrNotFound
	}
	return entity.ErrAlreadyResolved
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// explainMiss tells a missing report from one in the wrong state.
func (r *ReportRepository) explainMiss(ctx context.Context, q queryer, id string, stateErr error) error {
	var exists bool
	if err := q.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM lead_reports WHERE id = $1)`, id).Scan(&exists); err != nil {
		return mapError("find report", err)
	}
	if !exists {
		return entity.ErrNotFound
	}
	return stateErr
}
