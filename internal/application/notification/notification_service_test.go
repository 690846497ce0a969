package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/seafresh/backend/internal/domain/notification"
	"github.com/seafresh/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var fixedNow = time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)

func newTestNotificationService() (*NotificationService, *MockNotificationRepository, *MockUserRepository) {
	repo := new(MockNotificationRepository)
	users := new(MockUserRepository)
	svc := NewNotificationService(repo, users, zap.NewNop())
	svc.now = func() time.Time { return fixedNow }
	return svc, repo, users
}

func TestNotificationService_Notify(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("stores and pushes", func(t *testing.T) {
		svc, repo, _ := newTestNotificationService()
		pusher := new(MockPusher)
		svc.SetPusher(pusher)

		repo.On("Create", ctx, mock.MatchedBy(func(n *notification.Notification) bool {
			return n.UserID == userID && n.Type == notification.TypeOrder && n.Title == "Order shipped"
		})).Return(nil)
		pusher.On("Push", userID.String(), mock.AnythingOfType("*notification.Notification")).Return()

		err := svc.Notify(ctx, userID, notification.TypeOrder, "Order shipped", "On its way", "/orders/1")
		require.NoError(t, err)
		repo.AssertExpectations(t)
		pusher.AssertExpectations(t)
	})

	t.Run("does not push when store fails", func(t *testing.T) {
		svc, repo, _ := newTestNotificationService()
		pusher := new(MockPusher)
		svc.SetPusher(pusher)
		repo.On("Create", ctx, mock.Anything).Return(errors.New("db down"))

		err := svc.Notify(ctx, userID, notification.TypeOrder, "Order shipped", "On its way", "")
		require.Error(t, err)
		pusher.AssertNotCalled(t, "Push", mock.Anything, mock.Anything)
	})

	t.Run("rejects invalid type", func(t *testing.T) {
		svc, repo, _ := newTestNotificationService()

		err := svc.Notify(ctx, userID, notification.Type("sms"), "Hi", "There", "")
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "INVALID_TYPE", de.Code)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestNotificationService_Inbox(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("list maps filter", func(t *testing.T) {
		svc, repo, _ := newTestNotificationService()
		n, err := notification.NewNotification(userID, notification.TypePromotion, "Weekend sale", "20% off prawns", "")
		require.NoError(t, err)

		repo.On("FindByUser", ctx, notification.Filter{
			UserID:     userID,
			UnreadOnly: true,
			Type:       notification.TypePromotion,
			Page:       2,
			PageSize:   10,
		}).Return([]*notification.Notification{n}, int64(11), nil)

		items, total, err := svc.List(ctx, userID, NotificationListFilter{UnreadOnly: true, Type: "promotion", Page: 2, PageSize: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(11), total)
		require.Len(t, items, 1)
		assert.Equal(t, "Weekend sale", items[0].Title)
		assert.False(t, items[0].IsRead)
	})

	t.Run("mark read uses clock", func(t *testing.T) {
		svc, repo, _ := newTestNotificationService()
		id := uuid.New()
		repo.On("MarkRead", ctx, userID, id, fixedNow).Return(nil)
		repo.On("MarkAllRead", ctx, userID, fixedNow).Return(int64(3), nil)
		repo.On("CountUnread", ctx, userID).Return(int64(0), nil)

		require.NoError(t, svc.MarkRead(ctx, userID, id))
		updated, err := svc.MarkAllRead(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, int64(3), updated)
		unread, err := svc.UnreadCount(ctx, userID)
		require.NoError(t, err)
		assert.Zero(t, unread)
	})

	t.Run("delete scoped to user", func(t *testing.T) {
		svc, repo, _ := newTestNotificationService()
		id := uuid.New()
		repo.On("Delete", ctx, userID, id).Return(shared.ErrNotFound)

		err := svc.Delete(ctx, userID, id)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestNotificationService_Broadcast(t *testing.T) {
	ctx := context.Background()

	t.Run("fans out to active users", func(t *testing.T) {
		svc, repo, users := newTestNotificationService()
		pusher := new(MockPusher)
		svc.SetPusher(pusher)
		ids := []uuid.UUID{uuid.New(), uuid.New()}

		users.On("FindActiveIDs", ctx).Return(ids, nil)
		repo.On("CreateBatch", ctx, mock.MatchedBy(func(items []*notification.Notification) bool {
			return len(items) == 2 && items[0].UserID == ids[0] && items[1].Type == notification.TypePromotion
		})).Return(nil)
		pusher.On("Push", mock.Anything, mock.Anything).Return()

		resp, err := svc.Broadcast(ctx, BroadcastRequest{Title: "Fresh catch", Message: "Kingfish is back in stock"})
		require.NoError(t, err)
		assert.Equal(t, 2, resp.Recipients)
		pusher.AssertNumberOfCalls(t, "Push", 2)
	})

	t.Run("no active users", func(t *testing.T) {
		svc, repo, users := newTestNotificationService()
		users.On("FindActiveIDs", ctx).Return([]uuid.UUID{}, nil)

		resp, err := svc.Broadcast(ctx, BroadcastRequest{Type: "system", Title: "Maintenance", Message: "Back soon"})
		require.NoError(t, err)
		assert.Zero(t, resp.Recipients)
		repo.AssertNotCalled(t, "CreateBatch", mock.Anything, mock.Anything)
	})

	t.Run("validates before loading users", func(t *testing.T) {
		svc, _, users := newTestNotificationService()

		_, err := svc.Broadcast(ctx, BroadcastRequest{Title: "   ", Message: "x"})
		require.Error(t, err)
		users.AssertNotCalled(t, "FindActiveIDs", mock.Anything)
	})
}
