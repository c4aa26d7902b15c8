package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// NotificationHandler persists and delivers one notification.
type NotificationHandler interface {
	HandleNotification(ctx context.Context, payload NotificationPayload) error
}

// LeadOfferedHandler reacts to a lead entering the offered state.
type LeadOfferedHandler interface {
	HandleLeadOffered(ctx context.Context, payload LeadOfferedPayload) error
}

// Consumer is the subset of *amqp.Channel the worker needs.
type Consumer interface {
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

type Worker struct {
	Channel       Consumer
	Notifications NotificationHandler
	LeadOffered   LeadOfferedHandler
	Logger        logrus.FieldLogger
	Timeout       time.Duration
}

func NewWorker(ch Consumer, notifications NotificationHandler, leadOffered LeadOfferedHandler, logger logrus.FieldLogger) *Worker {
	return &Worker{
		Channel:       ch,
		Notifications: notifications,
		LeadOffered:   leadOffered,
		Logger:        logger,
		Timeout:       30 * time.Second,
	}
}

// Start consumes both queues until ctx is cancelled or a delivery channel closes.
func (w *Worker) Start(ctx context.Context) error {
	notifications, err := w.Channel.Consume(NotificationQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to consume %s: %w", NotificationQueue, err)
	}
	offered, err := w.Channel.Consume(LeadOfferedQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to consume %s: %w", LeadOfferedQueue, err)
	}

	w.Logger.Info("🐇 queue worker listening")
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-notifications:
			if !ok {
				return fmt.Errorf("%s delivery channel closed", NotificationQueue)
			}
			w.handle(ctx, d, w.processNotification)
		case d, ok := <-offered:
			if !ok {
				return fmt.Errorf("%s delivery channel closed", LeadOfferedQueue)
			}
			w.handle(ctx, d, w.processLeadOffered)
		}
	}
}

type deliveryFunc func(ctx context.Context, body []byte) error

// errMalformed marks a message that can never succeed.
type errMalformed struct{ err error }

func (e errMalformed) Error() string { return "malformed message: " + e.err.Error() }

func (w *Worker) handle(ctx context.Context, d amqp.Delivery, fn deliveryFunc) {
	ctx, cancel := context.WithTimeout(ctx, w.Timeout)
	defer cancel()

	log := w.Logger.WithField("routing_key", d.RoutingKey)
	if err := fn(ctx, d.Body); err != nil {
		// Redelivered once; a second failure goes to the dead-letter queue.
		var malformed errMalformed
		requeue := !d.Redelivered
		if errors.As(err, &malformed) {
			requeue = false
		}
		log.WithError(err).WithField("requeue", requeue).Error("❌ message failed")
		d.Nack(false, requeue)
		return
	}
	d.Ack(false)
}

func (w *Worker) processNotification(ctx context.Context, body []byte) error {
	var payload NotificationPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return errMalformed{err}
	}
	return w.Notifications.HandleNotification(ctx, payload)
}

func (w *Worker) processLeadOffered(ctx context.Context, body []byte) error {
	var payload LeadOfferedPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return errMalformed{err}
	}
	return w.LeadOffered.HandleLeadOffered(ctx, payload)
}
