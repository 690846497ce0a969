package contact

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/seafresh/backend/internal/domain/contact"
	"github.com/seafresh/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var fixedNow = time.Date(2026, 10, 19, 11, 0, 0, 0, time.UTC)

func newTestContactService() (*ContactService, *MockMessageRepository, *MockMailer) {
	repo := new(MockMessageRepository)
	mailer := new(MockMailer)
	svc := NewContactService(repo, mailer, zap.NewNop())
	svc.now = func() time.Time { return fixedNow }
	return svc, repo, mailer
}

func newTestMessage(t *testing.T) *contact.Message {
	t.Helper()
	msg, err := contact.NewMessage("Ravi Menon", "ravi@example.com", "", "Bulk order", "Do you deliver 20kg of mackerel on weekends?", nil)
	require.NoError(t, err)
	return msg
}

func TestContactService_Submit(t *testing.T) {
	ctx := context.Background()
	req := SubmitMessageRequest{
		Name:    "Ravi Menon",
		Email:   "ravi@example.com",
		Subject: "Bulk order",
		Message: "Do you deliver 20kg of mackerel on weekends?",
	}

	t.Run("stores and forwards", func(t *testing.T) {
		svc, repo, mailer := newTestContactService()
		userID := uuid.New()
		repo.On("Create", ctx, mock.MatchedBy(func(m *contact.Message) bool {
			return m.Status == contact.StatusNew && m.UserID != nil && *m.UserID == userID
		})).Return(nil)
		mailer.On("SendContactReceived", ctx, mock.Anything).Return(nil)

		resp, err := svc.Submit(ctx, req, &userID)
		require.NoError(t, err)
		assert.Equal(t, "new", resp.Status)
		mailer.AssertExpectations(t)
	})

	t.Run("email failure is not fatal", func(t *testing.T) {
		svc, repo, mailer := newTestContactService()
		repo.On("Create", ctx, mock.Anything).Return(nil)
		mailer.On("SendContactReceived", ctx, mock.Anything).Return(errors.New("resend down"))

		_, err := svc.Submit(ctx, req, nil)
		require.NoError(t, err)
	})

	t.Run("rejects short message", func(t *testing.T) {
		svc, repo, _ := newTestContactService()
		bad := req
		bad.Message = "hi"

		_, err := svc.Submit(ctx, bad, nil)
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "INVALID_MESSAGE", de.Code)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestContactService_Admin(t *testing.T) {
	ctx := context.Background()

	t.Run("list maps filter", func(t *testing.T) {
		svc, repo, _ := newTestContactService()
		repo.On("FindAll", ctx, contact.Filter{Status: contact.StatusNew, Search: "mackerel", Page: 1, PageSize: 20}).
			Return([]*contact.Message{newTestMessage(t)}, int64(1), nil)

		items, total, err := svc.List(ctx, MessageListFilter{Status: "new", Search: "mackerel", Page: 1, PageSize: 20})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, "Bulk order", items[0].Subject)
	})

	t.Run("mark read saves only new messages", func(t *testing.T) {
		svc, repo, _ := newTestContactService()
		msg := newTestMessage(t)
		repo.On("FindByID", ctx, msg.ID).Return(msg, nil)
		repo.On("Update", ctx, msg).Return(nil).Once()

		resp, err := svc.MarkRead(ctx, msg.ID)
		require.NoError(t, err)
		assert.Equal(t, "read", resp.Status)

		_, err = svc.MarkRead(ctx, msg.ID)
		require.NoError(t, err)
		repo.AssertNumberOfCalls(t, "Update", 1)
	})

	t.Run("reply emails sender", func(t *testing.T) {
		svc, repo, mailer := newTestContactService()
		msg := newTestMessage(t)
		adminID := uuid.New()
		repo.On("FindByID", ctx, msg.ID).Return(msg, nil)
		repo.On("Update", ctx, msg).Return(nil)
		mailer.On("SendContactReply", ctx, msg).Return(nil)

		resp, err := svc.Reply(ctx, adminID, msg.ID, ReplyRequest{Reply: "Yes, every Saturday."})
		require.NoError(t, err)
		assert.True(t, resp.EmailSent)
		assert.Equal(t, "replied", resp.Status)
		assert.Equal(t, &adminID, resp.RepliedBy)
		assert.Equal(t, fixedNow, *resp.RepliedAt)
	})

	t.Run("reply kept when email fails", func(t *testing.T) {
		svc, repo, mailer := newTestContactService()
		msg := newTestMessage(t)
		repo.On("FindByID", ctx, msg.ID).Return(msg, nil)
		repo.On("Update", ctx, msg).Return(nil)
		mailer.On("SendContactReply", ctx, msg).Return(errors.New("bounced"))

		resp, err := svc.Reply(ctx, uuid.New(), msg.ID, ReplyRequest{Reply: "Yes, every Saturday."})
		require.NoError(t, err)
		assert.False(t, resp.EmailSent)
		repo.AssertCalled(t, "Update", ctx, msg)
	})

	t.Run("reply to missing message", func(t *testing.T) {
		svc, repo, _ := newTestContactService()
		id := uuid.New()
		repo.On("FindByID", ctx, id).Return(nil, shared.ErrNotFound)

		_, err := svc.Reply(ctx, uuid.New(), id, ReplyRequest{Reply: "Hello"})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("count unread", func(t *testing.T) {
		svc, repo, _ := newTestContactService()
		repo.On("CountByStatus", ctx, contact.StatusNew).Return(int64(4), nil)

		n, err := svc.CountUnread(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(4), n)
	})
}
