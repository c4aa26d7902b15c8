package usecase_test

import (
	"context"
	"io"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"

	"github.com/xavierca1/crebit-marketplace/internal/entity"
	"github.com/xavierca1/crebit-marketplace/internal/infra/integration/wompi"
	"github.com/xavierca1/crebit-marketplace/internal/infra/memstore"
	"github.com/xavierca1/crebit-marketplace/internal/infra/queue"
)

// MockQueueProducer
type MockQueueProducer struct {
	mock.Mock
	mu            sync.Mutex
	notifications []queue.NotificationPayload
}

func (m *MockQueueProducer) PublishNotification(ctx context.Context, payload queue.NotificationPayload) error {
	m.mu.Lock()
	m.notifications = append(m.notifications, payload)
	m.mu.Unlock()
	args := m.Called(ctx, payload)
	return args.Error(0)
}

func (m *MockQueueProducer) PublishLeadOffered(ctx context.Context, payload queue.LeadOfferedPayload) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}

func (m *MockQueueProducer) Sent() []queue.NotificationPayload {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]queue.NotificationPayload(nil), m.notifications...)
}

func newQueue() *MockQueueProducer {
	q := &MockQueueProducer{}
	q.On("PublishNotification", mock.Anything, mock.Anything).Return(nil).Maybe()
	q.On("PublishLeadOffered", mock.Anything, mock.Anything).Return(nil).Maybe()
	return q
}

// MockPaymentGateway
type MockPaymentGateway struct {
	mock.Mock
}

func (m *MockPaymentGateway) GetTransaction(ctx context.Context, id string) (*wompi.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wompi.Transaction), args.Error(1)
}

// MockEmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) Enabled() bool {
	return m.Called().Bool(0)
}

func (m *MockEmailService) SendNotification(to, subject, message, link string) error {
	return m.Called(to, subject, message, link).Error(0)
}

// MockCompanyRepository lets tests inject read failures.
type MockCompanyRepository struct {
	mock.Mock
}

func (m *MockCompanyRepository) FindByID(ctx context.Context, id string) (*entity.Company, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Company), args.Error(1)
}

func (m *MockCompanyRepository) FindByUserID(ctx context.Context, userID string) (*entity.Company, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Company), args.Error(1)
}

func (m *MockCompanyRepository) Credit(ctx context.Context, change entity.BalanceChange) (int64, error) {
	args := m.Called(ctx, change)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCompanyRepository) Debit(ctx context.Context, change entity.BalanceChange) (int64, error) {
	args := m.Called(ctx, change)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCompanyRepository) UpdatePlan(ctx context.Context, id string, plan entity.Plan) (*entity.Company, error) {
	args := m.Called(ctx, id, plan)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Company), args.Error(1)
}

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func seedCompany(store *memstore.Store, plan entity.Plan, balance int64) *entity.Company {
	return store.AddCompany(&entity.Company{
		UserID:         uuid.NewString(),
		Name:           "Acme Créditos",
		Email:          "ops@acme.co",
		Plan:           plan,
		BalanceCents:   balance,
		Active:         true,
		FreeLeadsLimit: 5,
	})
}

func seedLead(store *memstore.Store, risk entity.Risk, price int64) *entity.Lead {
	return store.AddLead(entity.NewLead(entity.VerticalColpensiones, risk, entity.IntentionHigh, 750, 2500000000, price, entity.LeadOffered))
}

var mockAny = mock.Anything
