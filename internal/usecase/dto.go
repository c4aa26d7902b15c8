package usecase

import (
	"github.com/xavierca1/crebit-marketplace/internal/entity"
)

type PurchaseLeadInput struct {
	CompanyID      string `json:"company_id"`
	LeadID         string `json:"lead_id"`
	SubscriptionID string `json:"subscription_id,omitempty"`
}

type PurchaseLeadOutput struct {
	Purchase     *entity.Purchase `json:"purchase"`
	BalanceCents int64            `json:"balance_cents"`
	FreeLead     bool             `json:"free_lead"`
}

type CreateCheckoutInput struct {
	UserID        string `json:"-"`
	AmountInCents int64  `json:"amountInCents"`
}

type CreateCheckoutOutput struct {
	Reference     string `json:"reference"`
	Signature     string `json:"signature"`
	AmountInCents int64  `json:"amount_in_cents"`
	Currency      string `json:"currency"`
	PublicKey     string `json:"public_key,omitempty"`
}

// WompiEvent is the webhook body posted by the gateway.
type WompiEvent struct {
	Event     string `json:"event"`
	Timestamp int64  `json:"timestamp"`
	Signature struct {
		Checksum string `json:"checksum"`
	} `json:"signature"`
	Data struct {
		Transaction WompiTransaction `json:"transaction"`
	} `json:"data"`
}

type WompiTransaction struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	AmountInCents int64  `json:"amount_in_cents"`
	Reference     string `json:"reference"`
}

type RechargeOutcome string

const (
	RechargeCredited  RechargeOutcome = "credited"
	RechargeDuplicate RechargeOutcome = "duplicate"
	RechargeIgnored   RechargeOutcome = "ignored"
	RechargeMalformed RechargeOutcome = "malformed"
)

type ProcessRechargeOutput struct {
	Outcome      RechargeOutcome `json:"outcome"`
	CompanyID    string          `json:"company_id,omitempty"`
	BalanceCents int64           `json:"balance_cents,omitempty"`
}

type WatchOutcome string

const (
	WatchConfirmed    WatchOutcome = "confirmed"
	WatchInconclusive WatchOutcome = "inconclusive"
)

type WatchResult struct {
	Outcome      WatchOutcome `json:"outcome"`
	BalanceCents int64        `json:"balance_cents"`
	Attempts     int          `json:"attempts"`
	Message      string       `json:"message"`
}

type SubscriptionInput struct {
	Name              string          `json:"name"`
	Criteria          entity.Criteria `json:"criteria"`
	MaxDailyPurchases int             `json:"max_daily_purchases"`
	AutoPurchase      bool            `json:"auto_purchase"`
	Active            *bool           `json:"active,omitempty"`
}

type AvailableLead struct {
	*entity.Lead
	Recommended bool     `json:"recommended"`
	MatchedBy   []string `json:"matched_by,omitempty"`
}

type CreateLeadInput struct {
	Vertical             entity.Vertical   `json:"vertical"`
	Risk                 entity.Risk       `json:"risk"`
	Intention            entity.Intention  `json:"intention"`
	Score                int               `json:"score"`
	RequestedAmountCents int64             `json:"requested_amount_cents"`
	PriceCents           *int64            `json:"price_cents,omitempty"`
	Status               entity.LeadStatus `json:"status,omitempty"`
}

type CreateReportInput struct {
	CompanyID string              `json:"-"`
	LeadID    string              `json:"lead_id"`
	Reason    entity.ReportReason `json:"reason"`
	Comment   string              `json:"comment,omitempty"`
}

type AdjustBalanceInput struct {
	CompanyID   string `json:"-"`
	AmountCents int64  `json:"amount_cents"`
	Note        string `json:"note"`
}

type AppConfigInput struct {
	LeadPrices      map[entity.Risk]int64 `json:"lead_prices"`
	CommissionRates map[entity.Plan]int   `json:"commission_rates"`
	BaseVersion     int                   `json:"base_version"`
}
