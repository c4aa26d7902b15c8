package entity

import (
	"context"
	"time"
)

// AppConfig is the platform pricing configuration. Every update is stored as a new version.
type AppConfig struct {
	Version         int            `json:"version"`
	LeadPrices      map[Risk]int64 `json:"lead_prices"`
	// CommissionRates are whole percentages per plan, published to the admin
	// console only. No balance movement reads them.
	CommissionRates map[Plan]int   `json:"commission_rates"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		Version: 0,
		LeadPrices: map[Risk]int64{
			RiskLow:    2000000,
			RiskMedium: 1000000,
			RiskHigh:   500000,
		},
		CommissionRates: map[Plan]int{
			PlanFreemium:     0,
			PlanBasic:        5,
			PlanProfessional: 10,
			PlanEnterprise:   15,
		},
	}
}

func (c *AppConfig) PriceFor(r Risk) (int64, bool) {
	p, ok := c.LeadPrices[r]
	return p, ok
}

type ConfigRepository interface {
	// Latest returns ErrNotFound when nothing has been saved yet.
	Latest(ctx context.Context) (*AppConfig, error)
	// Save stores cfg as version cfg.Version; it fails with ErrStorageConflict
	// when that version already exists.
	Save(ctx context.Context, cfg *AppConfig) error
}
