package usecase

import (
	"fmt"
	"strings"

	"github.com/xavierca1/crebit-marketplace/internal/entity"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is returned by use cases when input validation fails.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for _, e := range v {
		parts = append(parts, e.Error())
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func ValidateSubscriptionInput(input SubscriptionInput) []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(input.Name) == "" {
		errors = append(errors, ValidationError{"name", "is required"})
	} else if len(input.Name) > 120 {
		errors = append(errors, ValidationError{"name", "must not exceed 120 characters"})
	}

	if input.MaxDailyPurchases < 1 {
		errors = append(errors, ValidationError{"max_daily_purchases", "must be at least 1"})
	}

	c := input.Criteria
	if c.Vertical != nil && strings.TrimSpace(string(*c.Vertical)) == "" {
		errors = append(errors, ValidationError{"criteria.vertical", "must not be empty"})
	}
	if c.Risk != nil && !c.Risk.Valid() {
		errors = append(errors, ValidationError{"criteria.risk", "must be low, medium or high"})
	}
	if c.MinScore != nil && *c.MinScore < 0 {
		errors = append(errors, ValidationError{"criteria.min_score", "must not be negative"})
	}
	if c.MaxPriceCents != nil && *c.MaxPriceCents < 0 {
		errors = append(errors, ValidationError{"criteria.max_price_cents", "must not be negative"})
	}
	if c.MinRequestedCents != nil && *c.MinRequestedCents < 0 {
		errors = append(errors, ValidationError{"criteria.min_requested_cents", "must not be negative"})
	}

	return errors
}

func ValidateCreateLeadInput(input CreateLeadInput) []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(string(input.Vertical)) == "" {
		errors = append(errors, ValidationError{"vertical", "is required"})
	}
	if !input.Risk.Valid() {
		errors = append(errors, ValidationError{"risk", "must be low, medium or high"})
	}
	if !input.Intention.Valid() {
		errors = append(errors, ValidationError{"intention", "must be high, medium or low"})
	}
	if input.Score < 0 || input.Score > 1000 {
		errors = append(errors, ValidationError{"score", "must be between 0 and 1000"})
	}
	if input.RequestedAmountCents <= 0 {
		errors = append(errors, ValidationError{"requested_amount_cents", "must be positive"})
	}
	if input.PriceCents != nil && *input.PriceCents < 0 {
		errors = append(errors, ValidationError{"price_cents", "must not be negative"})
	}
	if input.Status != "" && input.Status != entity.LeadCaptured && input.Status != entity.LeadOffered {
		errors = append(errors, ValidationError{"status", "must be captured or offered"})
	}

	return errors
}

func ValidateCreateReportInput(input CreateReportInput) []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(input.LeadID) == "" {
		errors = append(errors, ValidationError{"lead_id", "is required"})
	}
	if !input.Reason.Valid() {
		errors = append(errors, ValidationError{"reason", "is invalid"})
	}
	if len(input.Comment) > 1000 {
		errors = append(errors, ValidationError{"comment", "must not exceed 1000 characters"})
	}

	return errors
}

func ValidateAppConfigInput(input AppConfigInput) []ValidationError {
	var errors []ValidationError

	if len(input.LeadPrices) == 0 {
		errors = append(errors, ValidationError{"lead_prices", "is required"})
	}
	for risk, price := range input.LeadPrices {
		if !risk.Valid() {
			errors = append(errors, ValidationError{"lead_prices", fmt.Sprintf("unknown risk %q", risk)})
		} else if price < 0 {
			errors = append(errors, ValidationError{"lead_prices." + string(risk), "must not be negative"})
		}
	}
	for plan, rate := range input.CommissionRates {
		if !plan.Valid() {
			errors = append(errors, ValidationError{"commission_rates", fmt.Sprintf("unknown plan %q", plan)})
		} else if rate < 0 || rate > 100 {
			errors = append(errors, ValidationError{"commission_rates." + string(plan), "must be between 0 and 100"})
		}
	}
	if input.BaseVersion < 0 {
		errors = append(errors, ValidationError{"base_version", "must not be negative"})
	}

	return errors
}
