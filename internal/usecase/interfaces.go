package usecase

import (
	"context"

	"github.com/xavierca1/crebit-marketplace/internal/infra/integration/wompi"
	"github.com/xavierca1/crebit-marketplace/internal/infra/queue"
)

type QueueProducerInterface interface {
	PublishNotification(ctx context.Context, payload queue.NotificationPayload) error
	PublishLeadOffered(ctx context.Context, payload queue.LeadOfferedPayload) error
}

type PaymentGateway interface {
	GetTransaction(ctx context.Context, transactionID string) (*wompi.Transaction, error)
}

// LeadPurchaser is the purchase engine as seen by the auto-purchase flow.
type LeadPurchaser interface {
	Execute(ctx context.Context, input PurchaseLeadInput) (*PurchaseLeadOutput, error)
}
