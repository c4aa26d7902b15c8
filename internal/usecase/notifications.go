package usecase

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/xavierca1/crebit-marketplace/internal/entity"
	"github.com/xavierca1/crebit-marketplace/internal/infra/queue"
)

const notificationListLimit = 20

// publishNotification is fire-and-forget: a failure is logged and never reaches the caller.
func publishNotification(ctx context.Context, producer QueueProducerInterface, logger logrus.FieldLogger, payload queue.NotificationPayload) {
	if producer == nil || payload.UserID == "" {
		return
	}
	if err := producer.PublishNotification(context.WithoutCancel(ctx), payload); err != nil {
		logger.WithError(err).WithFields(logrus.Fields{
			"user_id": payload.UserID,
			"kind":    payload.Kind,
		}).Warn("⚠️ notification not published")
	}
}

func formatPesos(cents int64) string {
	pesos := cents / 100
	s := fmt.Sprintf("%d", pesos)
	if pesos < 0 {
		s = s[1:]
	}
	var out []byte
	for i := range len(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, '.')
		}
		out = append(out, s[i])
	}
	if pesos < 0 {
		return "-" + string(out)
	}
	return string(out)
}

type NotificationUseCase struct {
	Repo entity.NotificationRepository
}

func NewNotificationUseCase(repo entity.NotificationRepository) *NotificationUseCase {
	return &NotificationUseCase{Repo: repo}
}

func (uc *NotificationUseCase) List(ctx context.Context, userID string) ([]*entity.Notification, error) {
	items, err := uc.Repo.ListByUser(ctx, userID, notificationListLimit)
	if err != nil {
		return nil, classify(err, "failed to list notifications")
	}
	return items, nil
}

func (uc *NotificationUseCase) MarkAllRead(ctx context.Context, userID string) error {
	if err := uc.Repo.MarkAllRead(ctx, userID); err != nil {
		return classify(err, "failed to mark notifications as read")
	}
	return nil
}

// EmailService is the e-mail channel of notification delivery.
type EmailService interface {
	Enabled() bool
	SendNotification(to, subject, message, link string) error
}

// DeliverNotificationUseCase runs on the queue worker: it stores the notification
// and mails it when the user has an address. A mail failure does not fail delivery.
type DeliverNotificationUseCase struct {
	Repo   entity.NotificationRepository
	Email  EmailService
	Logger logrus.FieldLogger
}

func NewDeliverNotificationUseCase(repo entity.NotificationRepository, email EmailService, logger logrus.FieldLogger) *DeliverNotificationUseCase {
	return &DeliverNotificationUseCase{Repo: repo, Email: email, Logger: logger}
}

var notificationSubjects = map[queue.NotificationKind]string{
	queue.KindPurchase: "Compra de lead confirmada",
	queue.KindRecharge: "Recarga acreditada",
	queue.KindReport:   "Actualización de tu reporte",
	queue.KindBalance:  "Ajuste de saldo",
}

func (uc *DeliverNotificationUseCase) HandleNotification(ctx context.Context, payload queue.NotificationPayload) error {
	n := entity.NewNotification(payload.UserID, payload.Message, payload.Link)
	if err := uc.Repo.Create(ctx, n); err != nil {
		return classify(err, "failed to store notification")
	}

	if payload.Email == "" || uc.Email == nil || !uc.Email.Enabled() {
		return nil
	}
	subject, ok := notificationSubjects[payload.Kind]
	if !ok {
		subject = "Notificación de Crebit"
	}
	if err := uc.Email.SendNotification(payload.Email, subject, payload.Message, payload.Link); err != nil {
		uc.Logger.WithError(err).WithField("user_id", payload.UserID).Warn("⚠️ notification e-mail not sent")
	}
	return nil
}
