package usecase

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/xavierca1/crebit-marketplace/internal/entity"
	"github.com/xavierca1/crebit-marketplace/internal/infra/queue"
)

// AutoPurchaseUseCase buys a newly offered lead for the first opted-in subscription
// that matches it and still has quota. Quota is enforced by the purchase transaction.
type AutoPurchaseUseCase struct {
	Leads         entity.LeadRepository
	Subscriptions entity.SubscriptionRepository
	Purchaser     LeadPurchaser
	Logger        logrus.FieldLogger
}

func NewAutoPurchaseUseCase(leads entity.LeadRepository, subs entity.SubscriptionRepository, purchaser LeadPurchaser, logger logrus.FieldLogger) *AutoPurchaseUseCase {
	return &AutoPurchaseUseCase{
		Leads:         leads,
		Subscriptions: subs,
		Purchaser:     purchaser,
		Logger:        logger,
	}
}

// Execute returns the purchase made, or nil when no subscription bought the lead.
func (uc *AutoPurchaseUseCase) Execute(ctx context.Context, leadID string) (*PurchaseLeadOutput, error) {
	lead, err := uc.Leads.FindByID(ctx, leadID)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, nil
		}
		return nil, classify(err, "failed to load lead")
	}
	if !lead.Purchasable() {
		return nil, nil
	}

	subs, err := uc.Subscriptions.ListActiveAutoPurchase(ctx)
	if err != nil {
		return nil, classify(err, "failed to list subscriptions")
	}

	log := uc.Logger.WithField("lead_id", leadID)
	for _, sub := range subs {
		if !sub.Active || !sub.AutoPurchase || !sub.Criteria.Matches(lead) {
			continue
		}

		out, err := uc.Purchaser.Execute(ctx, PurchaseLeadInput{
			CompanyID:      sub.CompanyID,
			LeadID:         leadID,
			SubscriptionID: sub.ID,
		})
		switch {
		case err == nil:
			log.WithFields(logrus.Fields{
				"company_id":      sub.CompanyID,
				"subscription_id": sub.ID,
			}).Info("🤖 lead auto-purchased")
			return out, nil
		case errors.Is(err, entity.ErrLeadUnavailable):
			return nil, nil
		case errors.Is(err, entity.ErrQuotaExceeded),
			errors.Is(err, entity.ErrInsufficientFunds),
			errors.Is(err, entity.ErrForbidden),
			errors.Is(err, entity.ErrNotFound):
			log.WithError(err).WithField("subscription_id", sub.ID).Debug("auto-purchase candidate skipped")
		default:
			return nil, err
		}
	}
	return nil, nil
}

// HandleLeadOffered adapts Execute to the queue worker.
func (uc *AutoPurchaseUseCase) HandleLeadOffered(ctx context.Context, payload queue.LeadOfferedPayload) error {
	_, err := uc.Execute(ctx, payload.LeadID)
	return err
}
