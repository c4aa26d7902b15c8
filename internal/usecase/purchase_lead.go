package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/xavierca1/crebit-marketplace/internal/entity"
	"github.com/xavierca1/crebit-marketplace/internal/infra/queue"
)

type PurchaseLeadUseCase struct {
	Leads     entity.LeadRepository
	Companies entity.CompanyRepository
	Purchases entity.PurchaseRepository
	Queue     QueueProducerInterface
	Logger    logrus.FieldLogger
	Now       func() time.Time
}

func NewPurchaseLeadUseCase(
	leads entity.LeadRepository,
	companies entity.CompanyRepository,
	purchases entity.PurchaseRepository,
	queue QueueProducerInterface,
	logger logrus.FieldLogger,
) *PurchaseLeadUseCase {
	return &PurchaseLeadUseCase{
		Leads:     leads,
		Companies: companies,
		Purchases: purchases,
		Queue:     queue,
		Logger:    logger,
		Now:       time.Now,
	}
}

// Execute buys a lead for a company. The reads below only give the caller the
// precise reason early; the decision is taken by the single storage transaction
// in PurchaseRepository.Purchase, which re-checks availability and funds.
func (uc *PurchaseLeadUseCase) Execute(ctx context.Context, input PurchaseLeadInput) (*PurchaseLeadOutput, error) {
	log := uc.Logger.WithFields(logrus.Fields{
		"company_id": input.CompanyID,
		"lead_id":    input.LeadID,
	})

	lead, err := uc.Leads.FindByID(ctx, input.LeadID)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, classify(entity.ErrLeadUnavailable, "purchase")
		}
		return nil, classify(err, "failed to load lead")
	}
	if !lead.Purchasable() {
		return nil, classify(entity.ErrLeadUnavailable, "purchase")
	}

	company, err := uc.Companies.FindByID(ctx, input.CompanyID)
	if err != nil {
		return nil, classify(err, "failed to load company")
	}
	if !company.Active {
		return nil, classify(entity.ErrForbidden, "purchase")
	}
	if !company.CanAfford(lead.PriceCents) {
		return nil, classify(entity.ErrInsufficientFunds, "purchase")
	}

	var receipt *entity.PurchaseReceipt
	err = withConflictRetry(ctx, func() error {
		var err error
		receipt, err = uc.Purchases.Purchase(ctx, entity.PurchaseRequest{
			CompanyID:      input.CompanyID,
			LeadID:         input.LeadID,
			SubscriptionID: input.SubscriptionID,
			Now:            uc.Now(),
		})
		return err
	})
	if err != nil {
		log.WithError(err).Warn("lead purchase rejected")
		return nil, classify(err, "failed to purchase lead")
	}

	purchase := receipt.Purchase
	log.WithFields(logrus.Fields{
		"purchase_id":   purchase.ID,
		"price_cents":   purchase.PriceCents,
		"balance_cents": receipt.BalanceCents,
		"free_lead":     receipt.FreeLead,
	}).Info("lead purchased")

	message := fmt.Sprintf("Compraste el lead %s por $%s.", lead.ID, formatPesos(purchase.PriceCents))
	if receipt.FreeLead {
		message = fmt.Sprintf("Usaste un lead gratis: %s.", lead.ID)
	}
	uc.notify(ctx, company, message)

	return &PurchaseLeadOutput{
		Purchase:     purchase,
		BalanceCents: receipt.BalanceCents,
		FreeLead:     receipt.FreeLead,
	}, nil
}

// MarkConverted flags a purchase (and its lead) as converted. Calling it again is a no-op.
func (uc *PurchaseLeadUseCase) MarkConverted(ctx context.Context, companyID, purchaseID string) (*entity.Purchase, error) {
	purchase, err := uc.Purchases.FindByID(ctx, purchaseID)
	if err != nil {
		return nil, classify(err, "failed to load purchase")
	}
	if purchase.CompanyID != companyID {
		return nil, classify(entity.ErrNotFound, "purchase")
	}
	if purchase.Converted {
		return purchase, nil
	}
	if err := uc.Purchases.MarkConverted(ctx, purchaseID); err != nil {
		return nil, classify(err, "failed to mark purchase as converted")
	}
	purchase.Converted = true
	return purchase, nil
}

func (uc *PurchaseLeadUseCase) notify(ctx context.Context, company *entity.Company, message string) {
	publishNotification(ctx, uc.Queue, uc.Logger, queue.NotificationPayload{
		UserID:  company.UserID,
		Email:   company.Email,
		Kind:    queue.KindPurchase,
		Message: message,
		Link:    "/mis-compras",
	})
}
