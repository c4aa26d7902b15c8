package usecase

import (
	"context"
	"errors"
	"maps"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/xavierca1/crebit-marketplace/internal/entity"
)

type AppConfigUseCase struct {
	Repo   entity.ConfigRepository
	Logger logrus.FieldLogger
}

func NewAppConfigUseCase(repo entity.ConfigRepository, logger logrus.FieldLogger) *AppConfigUseCase {
	return &AppConfigUseCase{Repo: repo, Logger: logger}
}

// Get returns the latest stored configuration, or the defaults when none exists.
func (uc *AppConfigUseCase) Get(ctx context.Context) (*entity.AppConfig, error) {
	cfg, err := uc.Repo.Latest(ctx)
	if errors.Is(err, entity.ErrNotFound) {
		return entity.DefaultAppConfig(), nil
	}
	if err != nil {
		return nil, classify(err, "failed to load app config")
	}
	return cfg, nil
}

// Update stores a new version on top of BaseVersion. A writer that lost the race
// gets StorageConflict and must re-read.
func (uc *AppConfigUseCase) Update(ctx context.Context, input AppConfigInput) (*entity.AppConfig, error) {
	if errs := ValidateAppConfigInput(input); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	current, err := uc.Get(ctx)
	if err != nil {
		return nil, err
	}
	if current.Version != input.BaseVersion {
		return nil, classify(entity.ErrStorageConflict, "app config changed concurrently")
	}

	next := &entity.AppConfig{
		Version:         current.Version + 1,
		LeadPrices:      maps.Clone(current.LeadPrices),
		CommissionRates: maps.Clone(current.CommissionRates),
		UpdatedAt:       time.Now(),
	}
	if next.LeadPrices == nil {
		next.LeadPrices = map[entity.Risk]int64{}
	}
	maps.Copy(next.LeadPrices, input.LeadPrices)
	if next.CommissionRates == nil {
		next.CommissionRates = map[entity.Plan]int{}
	}
	maps.Copy(next.CommissionRates, input.CommissionRates)

	if err := uc.Repo.Save(ctx, next); err != nil {
		return nil, classify(err, "failed to save app config")
	}

	uc.Logger.WithField("version", next.Version).Info("app config updated")
	return next, nil
}
