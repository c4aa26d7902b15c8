package usecase

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/xavierca1/crebit-marketplace/internal/entity"
	"github.com/xavierca1/crebit-marketplace/internal/infra/queue"
)

type LeadAdminUseCase struct {
	Leads  entity.LeadRepository
	Config *AppConfigUseCase
	Queue  QueueProducerInterface
	Logger logrus.FieldLogger
}

func NewLeadAdminUseCase(leads entity.LeadRepository, config *AppConfigUseCase, queue QueueProducerInterface, logger logrus.FieldLogger) *LeadAdminUseCase {
	return &LeadAdminUseCase{Leads: leads, Config: config, Queue: queue, Logger: logger}
}

// CreateLead stores a lead. Without an explicit price the risk tier's configured
// price applies; without a status the lead is offered immediately.
func (uc *LeadAdminUseCase) CreateLead(ctx context.Context, input CreateLeadInput) (*entity.Lead, error) {
	if errs := ValidateCreateLeadInput(input); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	var price int64
	if input.PriceCents != nil {
		price = *input.PriceCents
	} else {
		cfg, err := uc.Config.Get(ctx)
		if err != nil {
			return nil, err
		}
		p, ok := cfg.PriceFor(input.Risk)
		if !ok {
			return nil, ValidationErrors{{Field: "price_cents", Message: "no default price for risk " + string(input.Risk)}}
		}
		price = p
	}

	status := input.Status
	if status == "" {
		status = entity.LeadOffered
	}

	lead := entity.NewLead(input.Vertical, input.Risk, input.Intention, input.Score, input.RequestedAmountCents, price, status)
	if err := uc.Leads.Create(ctx, lead); err != nil {
		return nil, classify(err, "failed to create lead")
	}

	uc.Logger.WithFields(logrus.Fields{
		"lead_id":     lead.ID,
		"status":      lead.Status,
		"price_cents": lead.PriceCents,
	}).Info("lead created")

	if lead.Status == entity.LeadOffered {
		uc.announce(ctx, lead.ID)
	}
	return lead, nil
}

// UpdateStatus moves a lead along the state machine; sold is reserved to the
// purchase engine. The update is conditional
// on the status read here, so a concurrent change fails with InvalidTransition.
func (uc *LeadAdminUseCase) UpdateStatus(ctx context.Context, leadID string, next entity.LeadStatus) (*entity.Lead, error) {
	if !next.Valid() {
		return nil, ValidationErrors{{Field: "status", Message: "is invalid"}}
	}

	lead, err := uc.Leads.FindByID(ctx, leadID)
	if err != nil {
		return nil, classify(err, "failed to load lead")
	}
	if next == entity.LeadSold || !lead.Status.CanTransitionTo(next) {
		return nil, classify(entity.ErrInvalidTransition, "lead status")
	}
	if err := uc.Leads.UpdateStatus(ctx, leadID, lead.Status, next); err != nil {
		return nil, classify(err, "failed to update lead status")
	}

	uc.Logger.WithFields(logrus.Fields{
		"lead_id": leadID,
		"from":    lead.Status,
		"to":      next,
	}).Info("lead status updated")

	lead.Status = next
	if next == entity.LeadOffered {
		uc.announce(ctx, leadID)
	}
	return lead, nil
}

func (uc *LeadAdminUseCase) announce(ctx context.Context, leadID string) {
	if uc.Queue == nil {
		return
	}
	payload := queue.LeadOfferedPayload{LeadID: leadID, OfferedAt: time.Now()}
	if err := uc.Queue.PublishLeadOffered(context.WithoutCancel(ctx), payload); err != nil {
		uc.Logger.WithError(err).WithField("lead_id", leadID).Warn("⚠️ lead.offered not published")
	}
}
