package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/xavierca1/crebit-marketplace/internal/entity"
)

type ConfigRepository struct {
	DB *sql.DB
}

func NewConfigRepository(db *sql.DB) *ConfigRepository {
	return &ConfigRepository{DB: db}
}

func (r *ConfigRepository) Latest(ctx context.Context) (*entity.AppConfig, error) {
	var (
		cfg         entity.AppConfig
		prices      []byte
		commissions []byte
	)
	err := r.DB.QueryRowContext(ctx,
		`SELECT version, lead_prices, commission_rates, updated_at
		FROM app_config ORDER BY version DESC LIMIT 1`,
	).Scan(&cfg.Version, &prices, &commissions, &cfg.UpdatedAt)
	if err != nil {
		return nil, mapError("load app config", err)
	}
	if err := json.Unmarshal(prices, &cfg.LeadPrices); err != nil {
		return nil, fmt.Errorf("decode lead prices: %w", err)
	}
	if err := json.Unmarshal(commissions, &cfg.CommissionRates); err != nil {
		return nil, fmt.Errorf("decode commission rates: %w", err)
	}
	return &cfg, nil
}

// Save inserts cfg.Version. The version is the primary key, so two writers racing
// from the same base produce one row and one StorageConflict.
func (r *ConfigRepository) Save(ctx context.Context, cfg *entity.AppConfig) error {
	prices, err := json.Marshal(cfg.LeadPrices)
	if err != nil {
		return err
	}
	commissions, err := json.Marshal(cfg.CommissionRates)
	if err != nil {
		return err
	}

	_, err = r.DB.ExecContext(ctx,
		`INSERT INTO app_config (version, lead_prices, commission_rates, updated_at)
		VALUES ($1, $2, $3, $4)`,
		cfg.Version, string(prices), string(commissions), cfg.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("app config version %d: %w", cfg.Version, entity.ErrStorageConflict)
	}
	return mapError("save app config", err)
}
