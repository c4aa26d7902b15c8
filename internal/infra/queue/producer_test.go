package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type publishedMessage struct {
	exchange string
	key      string
	msg      amqp.Publishing
}

type fakePublisher struct {
	sent []publishedMessage
	err  error
}

func (f *fakePublisher) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, publishedMessage{exchange: exchange, key: key, msg: msg})
	return nil
}

func TestProducer_PublishNotification(t *testing.T) {
	pub := &fakePublisher{}

	err := NewProducer(pub).PublishNotification(context.Background(), NotificationPayload{
		UserID:  "u-1",
		Kind:    KindPurchase,
		Message: "Compraste el lead",
		Link:    "/mis-compras",
	})

	require.NoError(t, err)
	require.Len(t, pub.sent, 1)
	got := pub.sent[0]
	assert.Equal(t, ExchangeName, got.exchange)
	assert.Equal(t, NotificationRoutingKey, got.key)
	assert.Equal(t, amqp.Persistent, got.msg.DeliveryMode)
	assert.Equal(t, "application/json", got.msg.ContentType)

	var body NotificationPayload
	require.NoError(t, json.Unmarshal(got.msg.Body, &body))
	assert.Equal(t, "u-1", body.UserID)
	assert.Equal(t, KindPurchase, body.Kind)
}

func TestProducer_PublishLeadOffered(t *testing.T) {
	pub := &fakePublisher{}

	require.NoError(t, NewProducer(pub).PublishLeadOffered(context.Background(), LeadOfferedPayload{LeadID: "lead-1"}))

	require.Len(t, pub.sent, 1)
	assert.Equal(t, LeadOfferedRoutingKey, pub.sent[0].key)
	assert.JSONEq(t, `{"lead_id":"lead-1","offered_at":"0001-01-01T00:00:00Z"}`, string(pub.sent[0].msg.Body))
}

func TestProducer_PublishError(t *testing.T) {
	pub := &fakePublisher{err: errors.New("channel closed")}

	err := NewProducer(pub).PublishNotification(context.Background(), NotificationPayload{UserID: "u-1"})

	assert.ErrorContains(t, err, NotificationRoutingKey)
	assert.ErrorContains(t, err, "channel closed")
}
