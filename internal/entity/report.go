package entity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type ReportReason string

const (
	ReasonWrongData        ReportReason = "wrong_data"
	ReasonNoAnswer         ReportReason = "no_answer"
	ReasonAlreadyHasCredit ReportReason = "already_has_credit"
	ReasonNotInterested    ReportReason = "not_interested"
	ReasonOther            ReportReason = "other"
)

func (r ReportReason) Valid() bool {
	switch r {
	case ReasonWrongData, ReasonNoAnswer, ReasonAlreadyHasCredit, ReasonNotInterested, ReasonOther:
		return true
	}
	return false
}

type ReportStatus string

const (
	ReportPending  ReportStatus = "pending"
	ReportInReview ReportStatus = "in_review"
	ReportApproved ReportStatus = "approved"
	ReportRejected ReportStatus = "rejected"
)

func (s ReportStatus) IsTerminal() bool {
	return s == ReportApproved || s == ReportRejected
}

func (s ReportStatus) CanResolve() bool {
	return s == ReportPending || s == ReportInReview
}

// BlocksNewReport reports whether a report in status s keeps the company from
// filing another one for the same lead.
func (s ReportStatus) BlocksNewReport() bool {
	return s != ReportRejected
}

// IsDecision reports whether s is a valid outcome of ResolveReport.
func (s ReportStatus) IsDecision() bool {
	return s == ReportApproved || s == ReportRejected
}

type Report struct {
	ID         string       `json:"id"`
	CompanyID  string       `json:"company_id"`
	LeadID     string       `json:"lead_id"`
	Reason     ReportReason `json:"reason"`
	Comment    string       `json:"comment,omitempty"`
	Status     ReportStatus `json:"status"`
	CreatedAt  time.Time    `json:"created_at"`
	ResolvedAt *time.Time   `json:"resolved_at,omitempty"`
}

func NewReport(companyID, leadID string, reason ReportReason, comment string) *Report {
	return &Report{
		ID:        uuid.New().String(),
		CompanyID: companyID,
		LeadID:    leadID,
		Reason:    reason,
		Comment:   comment,
		Status:    ReportPending,
		CreatedAt: time.Now(),
	}
}

type ReportResolution struct {
	Report        *Report `json:"report"`
	RefundedCents int64   `json:"refunded_cents"`
	BalanceCents  int64   `json:"balance_cents,omitempty"`
}

type ReportRepository interface {
	Create(ctx context.Context, report *Report) error
	FindByID(ctx context.Context, id string) (*Report, error)
	MarkInReview(ctx context.Context, id string) error
	// Resolve changes status and, for approvals, refunds the purchase price in one transaction.
	Resolve(ctx context.Context, id string, decision ReportStatus, now time.Time) (*ReportResolution, error)
}
