package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscription_ConsumeQuotaRollingWindow(t *testing.T) {
	sub := NewSubscription("c-1", "daily", Criteria{}, 2, true)
	start := time.Date(2024, 6, 1, 22, 0, 0, 0, time.UTC)

	require.NoError(t, sub.ConsumeQuota(start))
	require.NoError(t, sub.ConsumeQuota(start.Add(time.Hour)))
	assert.ErrorIs(t, sub.ConsumeQuota(start.Add(3*time.Hour)), ErrQuotaExceeded)
	assert.False(t, sub.HasQuota(start.Add(23*time.Hour)))

	// a new calendar day is not enough, the window is 24h from the first purchase
	assert.Equal(t, 2, sub.UsedInWindow(start.Add(4*time.Hour)))

	require.NoError(t, sub.ConsumeQuota(start.Add(QuotaWindow)))
	assert.Equal(t, 1, sub.DailyPurchases)
	assert.Equal(t, start.Add(QuotaWindow), *sub.WindowStartedAt)
}

func TestSubscription_InactiveHasNoQuota(t *testing.T) {
	sub := NewSubscription("c-1", "paused", Criteria{}, 5, false)
	sub.Active = false

	assert.ErrorIs(t, sub.ConsumeQuota(time.Now()), ErrQuotaExceeded)
	assert.Nil(t, sub.WindowStartedAt)
}

func TestCompany_CanAfford(t *testing.T) {
	freemium := &Company{Plan: PlanFreemium, FreeLeadsLimit: 1}
	assert.True(t, freemium.HasFreeLead())
	assert.True(t, freemium.CanAfford(1000000))

	freemium.FreeLeadsUsed = 1
	assert.False(t, freemium.CanAfford(1))

	basic := &Company{Plan: PlanBasic, BalanceCents: 500, FreeLeadsLimit: 3}
	assert.False(t, basic.HasFreeLead())
	assert.True(t, basic.CanAfford(500))
	assert.False(t, basic.CanAfford(501))
}

func TestReportStatus(t *testing.T) {
	assert.True(t, ReportPending.CanResolve())
	assert.True(t, ReportInReview.CanResolve())
	assert.False(t, ReportApproved.CanResolve())
	assert.True(t, ReportRejected.IsDecision())
	assert.False(t, ReportInReview.IsDecision())
}
