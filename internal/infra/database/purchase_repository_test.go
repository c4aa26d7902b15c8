package database

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/crebit-marketplace/internal/entity"
)

var purchaseNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func expectSellLead(mock sqlmock.Sqlmock, price int64) {
	mock.ExpectQuery(q(`UPDATE leads SET status = 'sold', sold = TRUE`)).
		WithArgs("c1", purchaseNow, "l1").
		WillReturnRows(sqlmock.NewRows([]string{"price_cents"}).AddRow(price))
}

func expectLockCompany(mock sqlmock.Sqlmock, plan string, active bool, limit, used int) {
	mock.ExpectQuery(q(`SELECT plan, active, free_leads_limit, free_leads_used FROM companies WHERE id = $1 FOR UPDATE`)).
		WithArgs("c1").
		WillReturnRows(sqlmock.NewRows([]string{"plan", "active", "free_leads_limit", "free_leads_used"}).
			AddRow(plan, active, limit, used))
}

func TestPurchaseRepository_Purchase_Paid(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPurchaseRepository(db)

	mock.ExpectBegin()
	expectSellLead(mock, 1000)
	expectLockCompany(mock, "basic", true, 0, 0)
	mock.ExpectQuery(q(`UPDATE companies SET balance_cents = balance_cents - $1`)).
		WithArgs(int64(1000), "c1").
		WillReturnRows(sqlmock.NewRows([]string{"balance_cents"}).AddRow(int64(500)))
	mock.ExpectExec(q(`INSERT INTO balance_transactions`)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(q(`UPDATE companies SET purchased_leads = purchased_leads + 1`)).
		WithArgs("c1").
		WillReturnRows(sqlmock.NewRows([]string{"balance_cents"}).AddRow(int64(500)))
	mock.ExpectExec(q(`INSERT INTO purchases`)).
		WithArgs(sqlmock.AnyArg(), "c1", "l1", int64(1000), "basic", purchaseNow).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	receipt, err := repo.Purchase(context.Background(), entity.PurchaseRequest{CompanyID: "c1", LeadID: "l1", Now: purchaseNow})

	require.NoError(t, err)
	assert.Equal(t, int64(1000), receipt.Purchase.PriceCents)
	assert.Equal(t, int64(500), receipt.BalanceCents)
	assert.False(t, receipt.FreeLead)
	assert.Equal(t, entity.PlanBasic, receipt.Purchase.Plan)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPurchaseRepository_Purchase_LeadAlreadySold(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPurchaseRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(q(`UPDATE leads SET status = 'sold', sold = TRUE`)).
		WillReturnRows(sqlmock.NewRows([]string{"price_cents"}))
	mock.ExpectRollback()

	_, err := repo.Purchase(context.Background(), entity.PurchaseRequest{CompanyID: "c1", LeadID: "l1", Now: purchaseNow})

	assert.ErrorIs(t, err, entity.ErrLeadUnavailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPurchaseRepository_Purchase_InsufficientFundsRollsBack(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPurchaseRepository(db)

	mock.ExpectBegin()
	expectSellLead(mock, 1000)
	expectLockCompany(mock, "basic", true, 0, 0)
	mock.ExpectQuery(q(`UPDATE companies SET balance_cents = balance_cents - $1`)).
		WillReturnRows(sqlmock.NewRows([]string{"balance_cents"}))
	mock.ExpectQuery(q(`SELECT EXISTS (SELECT 1 FROM companies`)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectRollback()

	_, err := repo.Purchase(context.Background(), entity.PurchaseRequest{CompanyID: "c1", LeadID: "l1", Now: purchaseNow})

	assert.ErrorIs(t, err, entity.ErrInsufficientFunds)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPurchaseRepository_Purchase_FreeLead(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPurchaseRepository(db)

	mock.ExpectBegin()
	expectSellLead(mock, 1000)
	expectLockCompany(mock, "freemium", true, 5, 2)
	mock.ExpectQuery(q(`UPDATE companies SET free_leads_used = free_leads_used + 1`)).
		WithArgs("c1").
		WillReturnRows(sqlmock.NewRows([]string{"balance_cents"}).AddRow(int64(0)))
	mock.ExpectExec(q(`INSERT INTO purchases`)).
		WithArgs(sqlmock.AnyArg(), "c1", "l1", int64(0), "freemium", purchaseNow).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	receipt, err := repo.Purchase(context.Background(), entity.PurchaseRequest{CompanyID: "c1", LeadID: "l1", Now: purchaseNow})

	require.NoError(t, err)
	assert.True(t, receipt.FreeLead)
	assert.Equal(t, int64(0), receipt.Purchase.PriceCents)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPurchaseRepository_Purchase_QuotaExceeded(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPurchaseRepository(db)

	mock.ExpectBegin()
	expectSellLead(mock, 1000)
	expectLockCompany(mock, "basic", true, 0, 0)
	mock.ExpectExec(q(`UPDATE lead_subscriptions SET`)).
		WithArgs("s1", "c1", purchaseNow.Add(-entity.QuotaWindow), purchaseNow).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := repo.Purchase(context.Background(), entity.PurchaseRequest{
		CompanyID:      "c1",
		LeadID:         "l1",
		SubscriptionID: "s1",
		Now:            purchaseNow,
	})

	assert.ErrorIs(t, err, entity.ErrQuotaExceeded)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPurchaseRepository_Purchase_InactiveCompany(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPurchaseRepository(db)

	mock.ExpectBegin()
	expectSellLead(mock, 1000)
	expectLockCompany(mock, "basic", false, 0, 0)
	mock.ExpectRollback()

	_, err := repo.Purchase(context.Background(), entity.PurchaseRequest{CompanyID: "c1", LeadID: "l1", Now: purchaseNow})

	assert.ErrorIs(t, err, entity.ErrForbidden)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPurchaseRepository_Purchase_DuplicateRowIsUnavailable(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPurchaseRepository(db)

	mock.ExpectBegin()
	expectSellLead(mock, 0)
	expectLockCompany(mock, "basic", true, 0, 0)
	mock.ExpectQuery(q(`UPDATE companies SET purchased_leads = purchased_leads + 1`)).
		WillReturnRows(sqlmock.NewRows([]string{"balance_cents"}).AddRow(int64(100)))
	mock.ExpectExec(q(`INSERT INTO purchases`)).
		WillReturnError(&pgconn.PgError{Code: "23505"})
	mock.ExpectRollback()

	_, err := repo.Purchase(context.Background(), entity.PurchaseRequest{CompanyID: "c1", LeadID: "l1", Now: purchaseNow})

	assert.ErrorIs(t, err, entity.ErrLeadUnavailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPurchaseRepository_MarkConverted(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPurchaseRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(q(`UPDATE purchases SET converted = TRUE WHERE id = $1 RETURNING lead_id`)).
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows([]string{"lead_id"}).AddRow("l1"))
	mock.ExpectExec(q(`UPDATE leads SET converted = TRUE WHERE id = $1`)).
		WithArgs("l1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.MarkConverted(context.Background(), "p1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
