package database

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/crebit-marketplace/internal/entity"
)

var subscriptionRowColumns = []string{
	"id", "company_id", "name", "vertical", "risk", "min_score", "max_price_cents",
	"min_requested_cents", "max_daily_purchases", "daily_purchases", "window_started_at",
	"active", "auto_purchase", "created_at", "updated_at",
}

func TestSubscriptionRepository_FindByID_MapsNullableCriteria(t *testing.T) {
	db, mock := newMock(t)
	repo := NewSubscriptionRepository(db)
	now := time.Now()

	mock.ExpectQuery(q(`FROM lead_subscriptions WHERE id = $1`)).
		WithArgs("s1").
		WillReturnRows(sqlmock.NewRows(subscriptionRowColumns).
			AddRow("s1", "c1", "Bajo riesgo", "Fopep", nil, int64(0), nil, int64(1000000), 3, 1, now, true, false, now, now))

	sub, err := repo.FindByID(context.Background(), "s1")

	require.NoError(t, err)
	require.NotNil(t, sub.Criteria.Vertical)
	assert.Equal(t, entity.VerticalFopep, *sub.Criteria.Vertical)
	assert.Nil(t, sub.Criteria.Risk)
	require.NotNil(t, sub.Criteria.MinScore)
	assert.Equal(t, 0, *sub.Criteria.MinScore)
	assert.Nil(t, sub.Criteria.MaxPriceCents)
	assert.Equal(t, int64(1000000), *sub.Criteria.MinRequestedCents)
	assert.NotNil(t, sub.WindowStartedAt)
}

func TestSubscriptionRepository_ResetExpiredWindows(t *testing.T) {
	db, mock := newMock(t)
	repo := NewSubscriptionRepository(db)
	now := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec(q(`UPDATE lead_subscriptions SET daily_purchases = 0, window_started_at = NULL`)).
		WithArgs(now.Add(-24 * time.Hour)).
		WillReturnResult(sqlmock.NewResult(0, 4))

	n, err := repo.ResetExpiredWindows(context.Background(), now)

	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
}

func TestSubscriptionRepository_Delete_Missing(t *testing.T) {
	db, mock := newMock(t)
	repo := NewSubscriptionRepository(db)

	mock.ExpectExec(q(`DELETE FROM lead_subscriptions WHERE id = $1`)).
		WithArgs("s9").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Delete(context.Background(), "s9"), entity.ErrNotFound)
}
