package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/crebit-marketplace/internal/entity"
	"github.com/xavierca1/crebit-marketplace/internal/infra/memstore"
	"github.com/xavierca1/crebit-marketplace/internal/usecase"
)

func TestRecommend(t *testing.T) {
	low := entity.NewLead(entity.VerticalFopep, entity.RiskLow, entity.IntentionHigh, 800, 1000, 2000000, entity.LeadOffered)
	high := entity.NewLead(entity.VerticalColpensiones, entity.RiskHigh, entity.IntentionLow, 300, 1000, 500000, entity.LeadOffered)

	byRisk := entity.NewSubscription("c-1", "low risk", entity.Criteria{Risk: ptr(entity.RiskLow)}, 1, false)
	cheap := entity.NewSubscription("c-1", "cheap", entity.Criteria{MaxPriceCents: ptr(int64(600000))}, 1, false)
	paused := entity.NewSubscription("c-1", "paused", entity.Criteria{}, 1, false)
	paused.Active = false

	got := usecase.Recommend([]*entity.Subscription{byRisk, cheap, paused}, []*entity.Lead{low, high})

	require.Len(t, got, 2)
	assert.True(t, got[0].Recommended)
	assert.Equal(t, []string{byRisk.ID}, got[0].MatchedBy)
	assert.True(t, got[1].Recommended)
	assert.Equal(t, []string{cheap.ID}, got[1].MatchedBy)
}

func TestRecommend_NoSubscriptions(t *testing.T) {
	lead := entity.NewLead(entity.VerticalFopep, entity.RiskLow, entity.IntentionHigh, 800, 1000, 1, entity.LeadOffered)

	got := usecase.Recommend(nil, []*entity.Lead{lead})

	require.Len(t, got, 1)
	assert.False(t, got[0].Recommended)
	assert.Empty(t, got[0].MatchedBy)
}

func TestListAvailable_OnlyOfferedLeads(t *testing.T) {
	store := memstore.New()
	company := seedCompany(store, entity.PlanBasic, 0)
	offered := seedLead(store, entity.RiskLow, 100)
	store.AddLead(entity.NewLead(entity.VerticalFopep, entity.RiskLow, entity.IntentionHigh, 800, 1000, 100, entity.LeadCaptured))
	require.NoError(t, store.Subscriptions().Create(context.Background(),
		entity.NewSubscription(company.ID, "low", entity.Criteria{Risk: ptr(entity.RiskLow)}, 1, false)))

	got, err := usecase.NewMatchLeadsUseCase(store.Leads(), store.Subscriptions()).
		ListAvailable(context.Background(), company.ID, entity.LeadFilter{})

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, offered.ID, got[0].ID)
	assert.True(t, got[0].Recommended)
}
