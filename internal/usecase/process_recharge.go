package usecase

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/xavierca1/crebit-marketplace/internal/entity"
	"github.com/xavierca1/crebit-marketplace/internal/infra/queue"
)

const eventTransactionUpdated = "transaction.updated"

// EventChecksum is sha256(id + status + amount_in_cents + timestamp + secret).
func EventChecksum(tx WompiTransaction, timestamp int64, secret string) string {
	return sha256Hex(
		tx.ID,
		tx.Status,
		strconv.FormatInt(tx.AmountInCents, 10),
		strconv.FormatInt(timestamp, 10),
		secret,
	)
}

type ProcessRechargeUseCase struct {
	Recharges    entity.RechargeRepository
	Companies    entity.CompanyRepository
	Gateway      PaymentGateway
	Queue        QueueProducerInterface
	EventsSecret string
	Logger       logrus.FieldLogger
}

func NewProcessRechargeUseCase(
	recharges entity.RechargeRepository,
	companies entity.CompanyRepository,
	gateway PaymentGateway,
	queue QueueProducerInterface,
	eventsSecret string,
	logger logrus.FieldLogger,
) *ProcessRechargeUseCase {
	return &ProcessRechargeUseCase{
		Recharges:    recharges,
		Companies:    companies,
		Gateway:      gateway,
		Queue:        queue,
		EventsSecret: eventsSecret,
		Logger:       logger,
	}
}

// Execute handles a webhook event. Only an authentic, approved transaction.updated
// event moves money, and each gateway transaction credits at most once.
// A MalformedReference error means the event should still be acknowledged.
func (uc *ProcessRechargeUseCase) Execute(ctx context.Context, event WompiEvent) (*ProcessRechargeOutput, error) {
	if uc.EventsSecret == "" {
		uc.Logger.Error("❌ webhook rejected: events secret not configured")
		return nil, &TechnicalError{Code: "WEBHOOK_NOT_CONFIGURED", Message: "events secret not configured"}
	}
	tx := event.Data.Transaction
	expected := EventChecksum(tx, event.Timestamp, uc.EventsSecret)
	if subtle.ConstantTimeCompare([]byte(expected), []byte(event.Signature.Checksum)) != 1 {
		uc.Logger.WithField("transaction_id", tx.ID).Warn("🚫 webhook rejected: invalid checksum")
		return nil, classify(entity.ErrInvalidSignature, "webhook")
	}

	if event.Event != eventTransactionUpdated || tx.Status != entity.RechargeApproved {
		uc.Logger.WithFields(logrus.Fields{
			"event":          event.Event,
			"status":         tx.Status,
			"transaction_id": tx.ID,
		}).Info("webhook ignored")
		return &ProcessRechargeOutput{Outcome: RechargeIgnored}, nil
	}

	return uc.apply(ctx, tx)
}

// Reconcile pulls a transaction from the gateway and runs it through the same
// exactly-once path as the webhook.
func (uc *ProcessRechargeUseCase) Reconcile(ctx context.Context, transactionID string) (*ProcessRechargeOutput, error) {
	if uc.Gateway == nil {
		return nil, &TechnicalError{Code: "GATEWAY_UNAVAILABLE", Message: "payment gateway not configured"}
	}
	remote, err := uc.Gateway.GetTransaction(ctx, transactionID)
	if err != nil {
		return nil, &TechnicalError{Code: "GATEWAY_ERROR", Message: "failed to fetch transaction", Err: err}
	}
	if remote.Status != entity.RechargeApproved {
		return &ProcessRechargeOutput{Outcome: RechargeIgnored}, nil
	}
	return uc.apply(ctx, WompiTransaction{
		ID:            remote.ID,
		Status:        remote.Status,
		AmountInCents: remote.AmountInCents,
		Reference:     remote.Reference,
	})
}

func (uc *ProcessRechargeUseCase) apply(ctx context.Context, tx WompiTransaction) (*ProcessRechargeOutput, error) {
	log := uc.Logger.WithFields(logrus.Fields{
		"transaction_id":  tx.ID,
		"reference":       tx.Reference,
		"amount_in_cents": tx.AmountInCents,
	})

	companyID, err := ParseReference(tx.Reference)
	if err == nil && (tx.AmountInCents <= 0 || tx.ID == "") {
		err = entity.ErrMalformedReference
	}
	if err != nil {
		log.Error("❌ recharge not applied: malformed reference or amount")
		return &ProcessRechargeOutput{Outcome: RechargeMalformed}, classify(err, "recharge")
	}

	recharge := &entity.Recharge{
		GatewayTransactionID: tx.ID,
		CompanyID:            companyID,
		AmountCents:          tx.AmountInCents,
		Reference:            tx.Reference,
		Status:               tx.Status,
		CreatedAt:            time.Now(),
	}

	var (
		applied bool
		balance int64
	)
	err = withConflictRetry(ctx, func() error {
		var err error
		applied, balance, err = uc.Recharges.Apply(ctx, recharge)
		return err
	})
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			log.WithField("company_id", companyID).Error("❌ recharge not applied: unknown company")
			return &ProcessRechargeOutput{Outcome: RechargeMalformed, CompanyID: companyID},
				classify(fmt.Errorf("unknown company %s: %w", companyID, entity.ErrMalformedReference), "recharge")
		}
		log.WithError(err).Error("❌ recharge storage failure")
		return nil, classify(err, "failed to apply recharge")
	}

	if !applied {
		log.Info("recharge already applied")
		return &ProcessRechargeOutput{Outcome: RechargeDuplicate, CompanyID: companyID}, nil
	}

	log.WithFields(logrus.Fields{
		"company_id":    companyID,
		"balance_cents": balance,
	}).Info("✅ recharge credited")

	if company, err := uc.Companies.FindByID(ctx, companyID); err == nil {
		publishNotification(ctx, uc.Queue, uc.Logger, queue.NotificationPayload{
			UserID:  company.UserID,
			Email:   company.Email,
			Kind:    queue.KindRecharge,
			Message: fmt.Sprintf("Recarga de $%s acreditada. Nuevo saldo: $%s.", formatPesos(tx.AmountInCents), formatPesos(balance)),
			Link:    "/saldo",
		})
	}

	return &ProcessRechargeOutput{
		Outcome:      RechargeCredited,
		CompanyID:    companyID,
		BalanceCents: balance,
	}, nil
}
