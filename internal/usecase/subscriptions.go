package usecase

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/xavierca1/crebit-marketplace/internal/entity"
)

type SubscriptionUseCase struct {
	Repo   entity.SubscriptionRepository
	Logger logrus.FieldLogger
}

func NewSubscriptionUseCase(repo entity.SubscriptionRepository, logger logrus.FieldLogger) *SubscriptionUseCase {
	return &SubscriptionUseCase{Repo: repo, Logger: logger}
}

func (uc *SubscriptionUseCase) List(ctx context.Context, companyID string) ([]*entity.Subscription, error) {
	subs, err := uc.Repo.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, classify(err, "failed to list subscriptions")
	}
	return subs, nil
}

func (uc *SubscriptionUseCase) Create(ctx context.Context, companyID string, input SubscriptionInput) (*entity.Subscription, error) {
	if errs := ValidateSubscriptionInput(input); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	sub := entity.NewSubscription(companyID, input.Name, input.Criteria, input.MaxDailyPurchases, input.AutoPurchase)
	if input.Active != nil {
		sub.Active = *input.Active
	}
	if err := uc.Repo.Create(ctx, sub); err != nil {
		return nil, classify(err, "failed to create subscription")
	}

	uc.Logger.WithFields(logrus.Fields{
		"company_id":      companyID,
		"subscription_id": sub.ID,
		"auto_purchase":   sub.AutoPurchase,
	}).Info("subscription created")
	return sub, nil
}

// Update replaces name, criteria and limits. The quota counter and window are kept.
func (uc *SubscriptionUseCase) Update(ctx context.Context, companyID, id string, input SubscriptionInput) (*entity.Subscription, error) {
	if errs := ValidateSubscriptionInput(input); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	sub, err := uc.owned(ctx, companyID, id)
	if err != nil {
		return nil, err
	}

	sub.Name = input.Name
	sub.Criteria = input.Criteria
	sub.MaxDailyPurchases = input.MaxDailyPurchases
	sub.AutoPurchase = input.AutoPurchase
	if input.Active != nil {
		sub.Active = *input.Active
	}
	sub.UpdatedAt = time.Now()

	if err := uc.Repo.Update(ctx, sub); err != nil {
		return nil, classify(err, "failed to update subscription")
	}
	return sub, nil
}

func (uc *SubscriptionUseCase) SetActive(ctx context.Context, companyID, id string, active bool) (*entity.Subscription, error) {
	sub, err := uc.owned(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if err := uc.Repo.SetActive(ctx, id, active); err != nil {
		return nil, classify(err, "failed to toggle subscription")
	}
	sub.Active = active
	return sub, nil
}

func (uc *SubscriptionUseCase) Delete(ctx context.Context, companyID, id string) error {
	if _, err := uc.owned(ctx, companyID, id); err != nil {
		return err
	}
	if err := uc.Repo.Delete(ctx, id); err != nil {
		return classify(err, "failed to delete subscription")
	}
	return nil
}

// ResetExpiredQuotas zeroes counters whose rolling window has elapsed at now.
func (uc *SubscriptionUseCase) ResetExpiredQuotas(ctx context.Context, now time.Time) (int64, error) {
	n, err := uc.Repo.ResetExpiredWindows(ctx, now)
	if err != nil {
		return 0, classify(err, "failed to reset quotas")
	}
	return n, nil
}

// owned hides subscriptions of other companies behind NotFound.
func (uc *SubscriptionUseCase) owned(ctx context.Context, companyID, id string) (*entity.Subscription, error) {
	sub, err := uc.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, classify(err, "failed to load subscription")
	}
	if sub.CompanyID != companyID {
		return nil, classify(entity.ErrNotFound, "subscription")
	}
	return sub, nil
}
