package queue

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	ExchangeName = "ex.marketplace"
	DLXName      = "ex.dlx"

	NotificationQueue      = "q.notifications"
	NotificationDLQ        = "q.notifications.dlq"
	NotificationRoutingKey = "k.notification"

	LeadOfferedQueue      = "q.leads.offered"
	LeadOfferedDLQ        = "q.leads.offered.dlq"
	LeadOfferedRoutingKey = "k.lead.offered"
)

type RabbitMQ struct {
	Conn *amqp.Connection
	Ch   *amqp.Channel
}

func NewRabbitMQ(url string) (*RabbitMQ, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := setupTopology(ch); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare topology: %w", err)
	}

	return &RabbitMQ{Conn: conn, Ch: ch}, nil
}

func (r *RabbitMQ) Close() error {
	if r.Ch != nil {
		r.Ch.Close()
	}
	if r.Conn != nil {
		return r.Conn.Close()
	}
	return nil
}

func setupTopology(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(DLXName, "direct", true, false, false, false, nil); err != nil {
		return err
	}
	if err := ch.ExchangeDeclare(ExchangeName, "direct", true, false, false, false, nil); err != nil {
		return err
	}

	bindings := []struct {
		queue, dlq, key string
	}{
		{NotificationQueue, NotificationDLQ, NotificationRoutingKey},
		{LeadOfferedQueue, LeadOfferedDLQ, LeadOfferedRoutingKey},
	}

	for _, b := range bindings {
		if _, err := ch.QueueDeclare(b.dlq, true, false, false, false, nil); err != nil {
			return err
		}
		if err := ch.QueueBind(b.dlq, b.key, DLXName, false, nil); err != nil {
			return err
		}

		// Nacked messages go to the DLX under the same key.
		args := amqp.Table{
			"x-dead-letter-exchange":    DLXName,
			"x-dead-letter-routing-key": b.key,
		}
		if _, err := ch.QueueDeclare(b.queue, true, false, false, false, args); err != nil {
			return err
		}
		if err := ch.QueueBind(b.queue, b.key, ExchangeName, false, nil); err != nil {
			return err
		}
	}
	return nil
}
