package wompi

import "time"

const StatusApproved = "APPROVED"

// Transaction is the subset of the gateway transaction the marketplace reads.
type Transaction struct {
	ID              string    `json:"id"`
	Status          string    `json:"status"`
	AmountInCents   int64     `json:"amount_in_cents"`
	Reference       string    `json:"reference"`
	Currency        string    `json:"currency"`
	PaymentMethod   string    `json:"payment_method_type"`
	StatusMessage   string    `json:"status_message,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	FinalizedAt     time.Time `json:"finalized_at,omitempty"`
	CustomerEmail   string    `json:"customer_email,omitempty"`
	RedirectURL     string    `json:"redirect_url,omitempty"`
	PaymentLinkID   string    `json:"payment_link_id,omitempty"`
	PaymentSourceID int64     `json:"payment_source_id,omitempty"`
}

type transactionResponse struct {
	Data Transaction `json:"data"`
}

type errorResponse struct {
	Error struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	} `json:"error"`
}
