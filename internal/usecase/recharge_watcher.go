package usecase

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/xavierca1/crebit-marketplace/internal/entity"
)

const (
	MessageRechargeConfirmed    = "recharge confirmed"
	MessageRechargeInconclusive = "could not confirm instantly; the balance will update when the payment is confirmed"
)

// RechargeWatcher observes a company balance after checkout. It never mutates
// state: crediting belongs to the webhook path.
type RechargeWatcher struct {
	Companies   entity.CompanyRepository
	Interval    time.Duration
	MaxAttempts int
	Logger      logrus.FieldLogger
}

func NewRechargeWatcher(companies entity.CompanyRepository, interval time.Duration, maxAttempts int, logger logrus.FieldLogger) *RechargeWatcher {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	if maxAttempts <= 0 {
		maxAttempts = 8
	}
	return &RechargeWatcher{
		Companies:   companies,
		Interval:    interval,
		MaxAttempts: maxAttempts,
		Logger:      logger,
	}
}

// Await polls until the balance exceeds initialBalance or attempts run out.
// Read failures count as attempts. Cancelling ctx ends the wait early with an
// inconclusive result.
func (w *RechargeWatcher) Await(ctx context.Context, companyID string, initialBalance int64) *WatchResult {
	result := &WatchResult{
		Outcome:      WatchInconclusive,
		BalanceCents: initialBalance,
		Message:      MessageRechargeInconclusive,
	}

	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()

	for attempt := 1; attempt <= w.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return result
		case <-ticker.C:
		}

		result.Attempts = attempt
		company, err := w.Companies.FindByID(ctx, companyID)
		if err != nil {
			w.Logger.WithError(err).WithFields(logrus.Fields{
				"company_id": companyID,
				"attempt":    attempt,
			}).Warn("balance read failed while awaiting recharge")
			continue
		}
		result.BalanceCents = company.BalanceCents
		if company.BalanceCents > initialBalance {
			result.Outcome = WatchConfirmed
			result.Message = MessageRechargeConfirmed
			return result
		}
	}
	return result
}
