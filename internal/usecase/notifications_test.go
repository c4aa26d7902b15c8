package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/crebit-marketplace/internal/infra/memstore"
	"github.com/xavierca1/crebit-marketplace/internal/infra/queue"
	"github.com/xavierca1/crebit-marketplace/internal/usecase"
)

func TestDeliverNotification_StoresAndMails(t *testing.T) {
	store := memstore.New()
	email := &MockEmailService{}
	email.On("Enabled").Return(true)
	email.On("SendNotification", "ops@acme.co", "Recarga acreditada", "Recarga de $50.000 acreditada.", "/saldo").Return(nil)
	uc := usecase.NewDeliverNotificationUseCase(store.Notifications(), email, testLogger())

	err := uc.HandleNotification(context.Background(), queue.NotificationPayload{
		UserID:  "u-1",
		Email:   "ops@acme.co",
		Kind:    queue.KindRecharge,
		Message: "Recarga de $50.000 acreditada.",
		Link:    "/saldo",
	})

	require.NoError(t, err)
	email.AssertExpectations(t)
	items, _ := store.Notifications().ListByUser(context.Background(), "u-1", 10)
	require.Len(t, items, 1)
	assert.False(t, items[0].IsRead)
}

func TestDeliverNotification_MailFailureIsNotFatal(t *testing.T) {
	store := memstore.New()
	email := &MockEmailService{}
	email.On("Enabled").Return(true)
	email.On("SendNotification", mockAny, mockAny, mockAny, mockAny).Return(errors.New("smtp timeout"))
	uc := usecase.NewDeliverNotificationUseCase(store.Notifications(), email, testLogger())

	err := uc.HandleNotification(context.Background(), queue.NotificationPayload{UserID: "u-1", Email: "a@b.co", Kind: queue.KindPurchase, Message: "m"})

	assert.NoError(t, err)
}

func TestDeliverNotification_MailDisabled(t *testing.T) {
	store := memstore.New()
	email := &MockEmailService{}
	email.On("Enabled").Return(false)
	uc := usecase.NewDeliverNotificationUseCase(store.Notifications(), email, testLogger())

	err := uc.HandleNotification(context.Background(), queue.NotificationPayload{UserID: "u-1", Email: "a@b.co", Message: "m"})

	require.NoError(t, err)
	email.AssertNotCalled(t, "SendNotification", mockAny, mockAny, mockAny, mockAny)
}

func TestNotifications_ListAndMarkRead(t *testing.T) {
	store := memstore.New()
	deliver := usecase.NewDeliverNotificationUseCase(store.Notifications(), nil, testLogger())
	for i := range 25 {
		require.NoError(t, deliver.HandleNotification(context.Background(), queue.NotificationPayload{UserID: "u-1", Message: fmt.Sprintf("n%d", i)}))
	}
	require.NoError(t, deliver.HandleNotification(context.Background(), queue.NotificationPayload{UserID: "u-2", Message: "other"}))
	uc := usecase.NewNotificationUseCase(store.Notifications())

	items, err := uc.List(context.Background(), "u-1")
	require.NoError(t, err)
	require.Len(t, items, 20)
	assert.Equal(t, "n24", items[0].Message)

	require.NoError(t, uc.MarkAllRead(context.Background(), "u-1"))
	items, _ = uc.List(context.Background(), "u-1")
	for _, n := range items {
		assert.True(t, n.IsRead)
	}
	others, _ := uc.List(context.Background(), "u-2")
	assert.False(t, others[0].IsRead)
}
