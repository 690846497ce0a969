package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/seafresh/backend/internal/domain/identity"
	"github.com/seafresh/backend/internal/domain/notification"
	"go.uber.org/zap"
)

// NotificationService manages the in-app notification inbox
type NotificationService struct {
	repo     notification.Repository
	userRepo identity.UserRepository
	pusher   notification.Pusher
	logger   *zap.Logger
	now      func() time.Time
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(repo notification.Repository, userRepo identity.UserRepository, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		repo:     repo,
		userRepo: userRepo,
		logger:   logger,
		now:      time.Now,
	}
}

// SetPusher sets the realtime channel new notifications are pushed to
func (s *NotificationService) SetPusher(pusher notification.Pusher) {
	s.pusher = pusher
}

// Notify stores a notification for one user and pushes it to their open connections
func (s *NotificationService) Notify(ctx context.Context, userID uuid.UUID, t notification.Type, title, message, link string) error {
	n, err := notification.NewNotification(userID, t, title, message, link)
	if err != nil {
		return err
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	s.push(n)
	return nil
}

// List lists the caller's notifications
func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, filter NotificationListFilter) ([]NotificationResponse, int64, error) {
	items, total, err := s.repo.FindByUser(ctx, notification.Filter{
		UserID:     userID,
		UnreadOnly: filter.UnreadOnly,
		Type:       notification.Type(filter.Type),
		Page:       filter.Page,
		PageSize:   filter.PageSize,
	})
	if err != nil {
		return nil, 0, err
	}
	return ToNotificationResponses(items), total, nil
}

// UnreadCount returns the number of unread notifications of the caller
func (s *NotificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}

// MarkRead marks one of the caller's notifications as read
func (s *NotificationService) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	return s.repo.MarkRead(ctx, userID, id, s.now())
}

// MarkAllRead marks all of the caller's notifications as read
func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.MarkAllRead(ctx, userID, s.now())
}

// Delete deletes one of the caller's notifications
func (s *NotificationService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return s.repo.Delete(ctx, userID, id)
}

// Broadcast sends a notification to every active user (admin)
func (s *NotificationService) Broadcast(ctx context.Context, req BroadcastRequest) (*BroadcastResponse, error) {
	t := notification.Type(req.Type)
	if t == "" {
		t = notification.TypePromotion
	}
	// validate once before fanning out
	if _, err := notification.NewNotification(uuid.New(), t, req.Title, req.Message, req.Link); err != nil {
		return nil, err
	}

	ids, err := s.userRepo.FindActiveIDs(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]*notification.Notification, 0, len(ids))
	for _, id := range ids {
		n, err := notification.NewNotification(id, t, req.Title, req.Message, req.Link)
		if err != nil {
			return nil, err
		}
		items = append(items, n)
	}
	if len(items) > 0 {
		if err := s.repo.CreateBatch(ctx, items); err != nil {
			return nil, fmt.Errorf("create broadcast: %w", err)
		}
	}
	for _, n := range items {
		s.push(n)
	}

	s.logger.Info("notification broadcast", zap.String("title", req.Title), zap.Int("recipients", len(items)))
	return &BroadcastResponse{Recipients: len(items)}, nil
}

func (s *NotificationService) push(n *notification.Notification) {
	if s.pusher != nil {
		s.pusher.Push(n.UserID.String(), n)
	}
}
