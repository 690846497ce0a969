package contact

import (
	"context"

	"github.com/google/uuid"
	"github.com/seafresh/backend/internal/domain/contact"
	"github.com/stretchr/testify/mock"
)

// MockMessageRepository is a mock implementation of contact.Repository
type MockMessageRepository struct {
	mock.Mock
}

func (m *MockMessageRepository) Create(ctx context.Context, msg *contact.Message) error {
	return m.Called(ctx, msg).Error(0)
}

func (m *MockMessageRepository) Update(ctx context.Context, msg *contact.Message) error {
	return m.Called(ctx, msg).Error(0)
}

func (m *MockMessageRepository) FindByID(ctx context.Context, id uuid.UUID) (*contact.Message, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contact.Message), args.Error(1)
}

func (m *MockMessageRepository) FindAll(ctx context.Context, filter contact.Filter) ([]*contact.Message, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*contact.Message), args.Get(1).(int64), args.Error(2)
}

func (m *MockMessageRepository) CountByStatus(ctx context.Context, status contact.Status) (int64, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMessageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// MockMailer is a mock implementation of Mailer
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendContactReceived(ctx context.Context, msg *contact.Message) error {
	return m.Called(ctx, msg).Error(0)
}

func (m *MockMailer) SendContactReply(ctx context.Context, msg *contact.Message) error {
	return m.Called(ctx, msg).Error(0)
}
