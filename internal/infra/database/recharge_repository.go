package database

import (
	"context"
	"database/sql"

	"github.com/xavierca1/crebit-marketplace/internal/entity"
)

type RechargeRepository struct {
	DB *sql.DB
}

func NewRechargeRepository(db *sql.DB) *RechargeRepository {
	return &RechargeRepository{DB: db}
}

// Apply records the gateway transaction and credits the company in one transaction.
// The unique gateway_transaction_id makes a replayed event a no-op.
func (r *RechargeRepository) Apply(ctx context.Context, rc *entity.Recharge) (bool, int64, error) {
	var (
		applied bool
		balance int64
	)

	err := NewTransaction(r.DB).
		AddStep("check company", func(ctx context.Context, tx *sql.Tx) error {
			var exists bool
			err := tx.QueryRowContext(ctx,
				`SELECT EXISTS (SELECT 1 FROM companies WHERE id = $1)`, rc.CompanyID,
			).Scan(&exists)
			if err != nil {
				return mapError("check company", err)
			}
			if !exists {
				return entity.ErrNotFound
			}
			return nil
		}).
		AddStep("record recharge", func(ctx context.Context, tx *sql.Tx) error {
			res, err := tx.ExecContext(ctx,
				`INSERT INTO recharges (gateway_transaction_id, company_id, amount_cents, reference, status, created_at)
				VALUES ($1, $2, $3, $4, $5, $6)
				ON CONFLICT (gateway_transaction_id) DO NOTHING`,
				rc.GatewayTransactionID, rc.CompanyID, rc.AmountCents, rc.Reference, rc.Status, rc.CreatedAt,
			)
			if err != nil {
				return mapError("record recharge", err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return mapError("record recharge", err)
			}
			applied = n == 1
			return nil
		}).
		AddStep("credit balance", func(ctx context.Context, tx *sql.Tx) error {
			if !applied {
				return nil
			}
			var err error
			balance, err = creditTx(ctx, tx, entity.BalanceChange{
				CompanyID:   rc.CompanyID,
				AmountCents: rc.AmountCents,
				Kind:        entity.LedgerRecharge,
				ReferenceID: rc.GatewayTransactionID,
				Description: rc.Reference,
			})
			return err
		}).
		Execute(ctx)
	if err != nil {
		return false, 0, err
	}
	return applied, balance, nil
}
