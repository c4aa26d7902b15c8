package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/xavierca1/crebit-marketplace/internal/entity"
)

type CompanyRepository struct {
	DB *sql.DB
}

func NewCompanyRepository(db *sql.DB) *CompanyRepository {
	return &CompanyRepository{DB: db}
}

const companyColumns = `id, user_id, name, email, plan, balance_cents, active,
		purchased_leads, free_leads_limit, free_leads_used`

func scanCompany(row interface{ Scan(...any) error }) (*entity.Company, error) {
	var c entity.Company
	err := row.Scan(
		&c.ID,
		&c.UserID,
		&c.Name,
		&c.Email,
		&c.Plan,
		&c.BalanceCents,
		&c.Active,
		&c.PurchasedLeads,
		&c.FreeLeadsLimit,
		&c.FreeLeadsUsed,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CompanyRepository) FindByID(ctx context.Context, id string) (*entity.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies WHERE id = $1`
	c, err := scanCompany(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError("find company", err)
	}
	return c, nil
}

func (r *CompanyRepository) FindByUserID(ctx context.Context, userID string) (*entity.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies WHERE user_id = $1`
	c, err := scanCompany(r.DB.QueryRowContext(ctx, query, userID))
	if err != nil {
		return nil, mapError("find company by user", err)
	}
	return c, nil
}

func (r *CompanyRepository) UpdatePlan(ctx context.Context, id string, plan entity.Plan) (*entity.Company, error) {
	query := `UPDATE companies SET plan = $2 WHERE id = $1 RETURNING ` + companyColumns
	c, err := scanCompany(r.DB.QueryRowContext(ctx, query, id, plan))
	if err != nil {
		return nil, mapError("update company plan", err)
	}
	return c, nil
}

func (r *CompanyRepository) Credit(ctx context.Context, change entity.BalanceChange) (int64, error) {
	var balance int64
	err := NewTransaction(r.DB).
		AddStep("credit balance", func(ctx context.Context, tx *sql.Tx) error {
			var err error
			balance, err = creditTx(ctx, tx, change)
			return err
		}).
		Execute(ctx)
	return balance, err
}

func (r *CompanyRepository) Debit(ctx context.Context, change entity.BalanceChange) (int64, error) {
	var balance int64
	err := NewTransaction(r.DB).
		AddStep("debit balance", func(ctx context.Context, tx *sql.Tx) error {
			var err error
			balance, err = debitTx(ctx, tx, change)
			return err
		}).
		Execute(ctx)
	return balance, err
}

// creditTx adds to the balance and writes the ledger row on tx.
func creditTx(ctx context.Context, tx *sql.Tx, change entity.BalanceChange) (int64, error) {
	if change.AmountCents <= 0 {
		return 0, entity.ErrInvalidAmount
	}

	var balance int64
	err := tx.QueryRowContext(ctx,
		`UPDATE companies SET balance_cents = balance_cents + $1 WHERE id = $2 RETURNING balance_cents`,
		change.AmountCents, change.CompanyID,
	).Scan(&balance)
	if err != nil {
		return 0, mapError("credit", err)
	}

	if err := insertLedger(ctx, tx, change, change.AmountCents, balance); err != nil {
		return 0, err
	}
	return balance, nil
}

// debitTx subtracts only when the balance covers the amount. Zero rows means the
// company is missing or short of funds; a follow-up read tells which.
func debitTx(ctx context.Context, tx *sql.Tx, change entity.BalanceChange) (int64, error) {
	if change.AmountCents <= 0 {
		return 0, entity.ErrInvalidAmount
	}

	var balance int64
	err := tx.QueryRowContext(ctx,
		`UPDATE companies SET balance_cents = balance_cents - $1
		WHERE id = $2 AND balance_cents >= $1 RETURNING balance_cents`,
		change.AmountCents, change.CompanyID,
	).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		var exists bool
		if err := tx.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM companies WHERE id = $1)`, change.CompanyID,
		).Scan(&exists); err != nil {
			return 0, mapError("debit", err)
		}
		if !exists {
			return 0, entity.ErrNotFound
		}
		return 0, entity.ErrInsufficientFunds
	}
	if err != nil {
		return 0, mapError("debit", err)
	}

	if err := insertLedger(ctx, tx, change, -change.AmountCents, balance); err != nil {
		return 0, err
	}
	return balance, nil
}

func insertLedger(ctx context.Context, tx *sql.Tx, change entity.BalanceChange, signedAmount, balanceAfter int64) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO balance_transactions
			(id, company_id, amount_cents, balance_after_cents, kind, reference_id, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		uuid.New().String(),
		change.CompanyID,
		signedAmount,
		balanceAfter,
		change.Kind,
		change.ReferenceID,
		change.Description,
		time.Now(),
	)
	return mapError("insert ledger entry", err)
}
