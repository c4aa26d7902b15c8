package usecase

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/xavierca1/crebit-marketplace/internal/entity"
	"github.com/xavierca1/crebit-marketplace/internal/infra/queue"
)

// LedgerUseCase exposes the balance primitives. Each call is a single conditional
// update in storage, so concurrent calls on one company never lose an update.
type LedgerUseCase struct {
	Companies entity.CompanyRepository
	Queue     QueueProducerInterface
	Logger    logrus.FieldLogger
}

func NewLedgerUseCase(companies entity.CompanyRepository, queue QueueProducerInterface, logger logrus.FieldLogger) *LedgerUseCase {
	return &LedgerUseCase{Companies: companies, Queue: queue, Logger: logger}
}

func (uc *LedgerUseCase) Credit(ctx context.Context, change entity.BalanceChange) (int64, error) {
	if change.AmountCents <= 0 {
		return 0, classify(entity.ErrInvalidAmount, "credit")
	}
	var balance int64
	err := withConflictRetry(ctx, func() error {
		var err error
		balance, err = uc.Companies.Credit(ctx, change)
		return err
	})
	if err != nil {
		return 0, classify(err, "failed to credit balance")
	}
	return balance, nil
}

func (uc *LedgerUseCase) Debit(ctx context.Context, change entity.BalanceChange) (int64, error) {
	if change.AmountCents <= 0 {
		return 0, classify(entity.ErrInvalidAmount, "debit")
	}
	var balance int64
	err := withConflictRetry(ctx, func() error {
		var err error
		balance, err = uc.Companies.Debit(ctx, change)
		return err
	})
	if err != nil {
		return 0, classify(err, "failed to debit balance")
	}
	return balance, nil
}

// AdjustBalance is the admin correction: positive amounts credit, negative amounts debit.
func (uc *LedgerUseCase) AdjustBalance(ctx context.Context, input AdjustBalanceInput) (int64, error) {
	change := entity.BalanceChange{
		CompanyID:   input.CompanyID,
		Kind:        entity.LedgerAdjustment,
		Description: input.Note,
	}

	var (
		balance int64
		err     error
	)
	switch {
	case input.AmountCents > 0:
		change.AmountCents = input.AmountCents
		balance, err = uc.Credit(ctx, change)
	case input.AmountCents < 0:
		change.AmountCents = -input.AmountCents
		balance, err = uc.Debit(ctx, change)
	default:
		return 0, classify(entity.ErrInvalidAmount, "adjust")
	}
	if err != nil {
		return 0, err
	}

	uc.Logger.WithFields(logrus.Fields{
		"company_id":    input.CompanyID,
		"amount_cents":  input.AmountCents,
		"balance_cents": balance,
	}).Info("balance adjusted by admin")

	if company, err := uc.Companies.FindByID(ctx, input.CompanyID); err == nil {
		publishNotification(ctx, uc.Queue, uc.Logger, queue.NotificationPayload{
			UserID:  company.UserID,
			Email:   company.Email,
			Kind:    queue.KindBalance,
			Message: fmt.Sprintf("Tu saldo fue ajustado en $%s. Nuevo saldo: $%s.", formatPesos(input.AmountCents), formatPesos(balance)),
			Link:    "/saldo",
		})
	}
	return balance, nil
}
