package usecase

import (
	"context"

	"github.com/xavierca1/crebit-marketplace/internal/entity"
)

// Recommend flags each lead that matches at least one active subscription. It is
// a read-only signal and never buys anything.
func Recommend(subs []*entity.Subscription, leads []*entity.Lead) []AvailableLead {
	out := make([]AvailableLead, 0, len(leads))
	for _, lead := range leads {
		item := AvailableLead{Lead: lead}
		for _, sub := range subs {
			if sub.Active && sub.Criteria.Matches(lead) {
				item.Recommended = true
				item.MatchedBy = append(item.MatchedBy, sub.ID)
			}
		}
		out = append(out, item)
	}
	return out
}

type MatchLeadsUseCase struct {
	Leads         entity.LeadRepository
	Subscriptions entity.SubscriptionRepository
}

func NewMatchLeadsUseCase(leads entity.LeadRepository, subs entity.SubscriptionRepository) *MatchLeadsUseCase {
	return &MatchLeadsUseCase{Leads: leads, Subscriptions: subs}
}

func (uc *MatchLeadsUseCase) ListAvailable(ctx context.Context, companyID string, filter entity.LeadFilter) ([]AvailableLead, error) {
	leads, err := uc.Leads.ListOffered(ctx, filter)
	if err != nil {
		return nil, classify(err, "failed to list leads")
	}
	subs, err := uc.Subscriptions.ListActiveByCompany(ctx, companyID)
	if err != nil {
		return nil, classify(err, "failed to list subscriptions")
	}
	return Recommend(subs, leads), nil
}
