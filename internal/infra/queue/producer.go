package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

type NotificationKind string

const (
	KindPurchase NotificationKind = "purchase"
	KindRecharge NotificationKind = "recharge"
	KindReport   NotificationKind = "report"
	KindBalance  NotificationKind = "balance"
)

type NotificationPayload struct {
	UserID  string           `json:"user_id"`
	Email   string           `json:"email,omitempty"`
	Kind    NotificationKind `json:"kind"`
	Message string           `json:"message"`
	Link    string           `json:"link,omitempty"`
}

type LeadOfferedPayload struct {
	LeadID    string    `json:"lead_id"`
	OfferedAt time.Time `json:"offered_at"`
}

// Publisher is the subset of *amqp.Channel the producer needs.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type RabbitMQProducer struct {
	Ch Publisher
}

func NewProducer(ch Publisher) *RabbitMQProducer {
	return &RabbitMQProducer{Ch: ch}
}

func (p *RabbitMQProducer) PublishNotification(ctx context.Context, payload NotificationPayload) error {
	return p.publish(ctx, NotificationRoutingKey, payload)
}

func (p *RabbitMQProducer) PublishLeadOffered(ctx context.Context, payload LeadOfferedPayload) error {
	return p.publish(ctx, LeadOfferedRoutingKey, payload)
}

func (p *RabbitMQProducer) publish(ctx context.Context, key string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}

	err = p.Ch.PublishWithContext(ctx,
		ExchangeName,
		key,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", key, err)
	}
	return nil
}
