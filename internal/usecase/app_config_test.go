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

func TestAppConfig_DefaultsWhenEmpty(t *testing.T) {
	uc := usecase.NewAppConfigUseCase(memstore.New().Config(), testLogger())

	cfg, err := uc.Get(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Version)
	assert.Equal(t, entity.DefaultAppConfig().LeadPrices, cfg.LeadPrices)
}

func TestAppConfig_UpdateMergesAndVersions(t *testing.T) {
	uc := usecase.NewAppConfigUseCase(memstore.New().Config(), testLogger())

	cfg, err := uc.Update(context.Background(), usecase.AppConfigInput{
		LeadPrices:  map[entity.Risk]int64{entity.RiskHigh: 750000},
		BaseVersion: 0,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Version)
	assert.Equal(t, int64(750000), cfg.LeadPrices[entity.RiskHigh])
	assert.Equal(t, int64(2000000), cfg.LeadPrices[entity.RiskLow])
	assert.Equal(t, 10, cfg.CommissionRates[entity.PlanProfessional])

	got, err := uc.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, cfg.LeadPrices, got.LeadPrices)
}

func TestAppConfig_StaleBaseVersionConflicts(t *testing.T) {
	uc := usecase.NewAppConfigUseCase(memstore.New().Config(), testLogger())
	input := usecase.AppConfigInput{LeadPrices: map[entity.Risk]int64{entity.RiskLow: 1}}

	_, err := uc.Update(context.Background(), input)
	require.NoError(t, err)

	_, err = uc.Update(context.Background(), input)

	assert.ErrorIs(t, err, entity.ErrStorageConflict)
	assert.True(t, usecase.IsTechnicalError(err))
}

func TestAppConfig_Validation(t *testing.T) {
	uc := usecase.NewAppConfigUseCase(memstore.New().Config(), testLogger())

	_, err := uc.Update(context.Background(), usecase.AppConfigInput{
		LeadPrices:      map[entity.Risk]int64{"extreme": 1, entity.RiskLow: -5},
		CommissionRates: map[entity.Plan]int{entity.PlanBasic: 101},
	})

	var verrs usecase.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Len(t, verrs, 3)
}
