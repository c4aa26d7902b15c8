package usecase_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/crebit-marketplace/internal/entity"
	"github.com/xavierca1/crebit-marketplace/internal/infra/memstore"
	"github.com/xavierca1/crebit-marketplace/internal/infra/queue"
	"github.com/xavierca1/crebit-marketplace/internal/usecase"
)

func TestLedger_CreditAndDebit(t *testing.T) {
	store := memstore.New()
	company := seedCompany(store, entity.PlanBasic, 1000)
	uc := usecase.NewLedgerUseCase(store.Companies(), newQueue(), testLogger())

	balance, err := uc.Credit(context.Background(), entity.BalanceChange{CompanyID: company.ID, AmountCents: 500, Kind: entity.LedgerRecharge})
	require.NoError(t, err)
	assert.Equal(t, int64(1500), balance)

	balance, err = uc.Debit(context.Background(), entity.BalanceChange{CompanyID: company.ID, AmountCents: 1500, Kind: entity.LedgerPurchase})
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance)

	entries := store.Ledger(company.ID)
	require.Len(t, entries, 2)
	assert.Equal(t, int64(1500), entries[0].BalanceAfterCents)
	assert.Equal(t, int64(0), entries[1].BalanceAfterCents)
}

func TestLedger_RejectsNonPositiveAmounts(t *testing.T) {
	store := memstore.New()
	company := seedCompany(store, entity.PlanBasic, 1000)
	uc := usecase.NewLedgerUseCase(store.Companies(), newQueue(), testLogger())

	for _, amount := range []int64{0, -10} {
		_, err := uc.Credit(context.Background(), entity.BalanceChange{CompanyID: company.ID, AmountCents: amount})
		assert.ErrorIs(t, err, entity.ErrInvalidAmount)

		_, err = uc.Debit(context.Background(), entity.BalanceChange{CompanyID: company.ID, AmountCents: amount})
		assert.ErrorIs(t, err, entity.ErrInvalidAmount)
	}
	assert.Empty(t, store.Ledger(company.ID))
}

func TestLedger_DebitBeyondBalance(t *testing.T) {
	store := memstore.New()
	company := seedCompany(store, entity.PlanBasic, 100)
	uc := usecase.NewLedgerUseCase(store.Companies(), newQueue(), testLogger())

	_, err := uc.Debit(context.Background(), entity.BalanceChange{CompanyID: company.ID, AmountCents: 101})

	assert.ErrorIs(t, err, entity.ErrInsufficientFunds)
	c, _ := store.Companies().FindByID(context.Background(), company.ID)
	assert.Equal(t, int64(100), c.BalanceCents)
}

func TestLedger_UnknownCompany(t *testing.T) {
	store := memstore.New()
	uc := usecase.NewLedgerUseCase(store.Companies(), newQueue(), testLogger())

	_, err := uc.Credit(context.Background(), entity.BalanceChange{CompanyID: "missing", AmountCents: 1})

	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestLedger_ConcurrentCreditsAreNotLost(t *testing.T) {
	store := memstore.New()
	company := seedCompany(store, entity.PlanBasic, 0)
	uc := usecase.NewLedgerUseCase(store.Companies(), newQueue(), testLogger())

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.Credit(context.Background(), entity.BalanceChange{CompanyID: company.ID, AmountCents: 10, Kind: entity.LedgerRecharge})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	c, _ := store.Companies().FindByID(context.Background(), company.ID)
	assert.Equal(t, int64(500), c.BalanceCents)
}

func TestLedger_AdjustBalance(t *testing.T) {
	store := memstore.New()
	q := newQueue()
	company := seedCompany(store, entity.PlanBasic, 1000)
	uc := usecase.NewLedgerUseCase(store.Companies(), q, testLogger())

	balance, err := uc.AdjustBalance(context.Background(), usecase.AdjustBalanceInput{CompanyID: company.ID, AmountCents: -400, Note: "chargeback"})
	require.NoError(t, err)
	assert.Equal(t, int64(600), balance)

	balance, err = uc.AdjustBalance(context.Background(), usecase.AdjustBalanceInput{CompanyID: company.ID, AmountCents: 250, Note: "bonus"})
	require.NoError(t, err)
	assert.Equal(t, int64(850), balance)

	_, err = uc.AdjustBalance(context.Background(), usecase.AdjustBalanceInput{CompanyID: company.ID})
	assert.ErrorIs(t, err, entity.ErrInvalidAmount)

	entries := store.Ledger(company.ID)
	require.Len(t, entries, 2)
	assert.Equal(t, entity.LedgerAdjustment, entries[0].Kind)
	assert.Equal(t, int64(-400), entries[0].AmountCents)

	sent := q.Sent()
	require.Len(t, sent, 2)
	assert.Equal(t, queue.KindBalance, sent[0].Kind)
}
