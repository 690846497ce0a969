package notification

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/seafresh/backend/internal/domain/shared"
)

// Type groups notifications in the customer's inbox
type Type string

const (
	TypeOrder     Type = "order"
	TypePromotion Type = "promotion"
	TypeSystem    Type = "system"
)

// IsValid checks if the type is valid
func (t Type) IsValid() bool {
	switch t {
	case TypeOrder, TypePromotion, TypeSystem:
		return true
	}
	return false
}

// Notification is a message shown in a user's notification inbox
type Notification struct {
	shared.BaseEntity
	UserID  uuid.UUID
	Type    Type
	Title   string
	Message string
	Link    string
	IsRead  bool
	ReadAt  *time.Time
}

// NewNotification creates an unread notification
func NewNotification(userID uuid.UUID, t Type, title, message, link string) (*Notification, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "Recipient cannot be empty")
	}
	if !t.IsValid() {
		return nil, shared.NewDomainError("INVALID_TYPE", "Notification type must be order, promotion or system")
	}
	title = strings.TrimSpace(title)
	if title == "" || len(title) > 200 {
		return nil, shared.NewDomainError("INVALID_TITLE", "Title must be 1-200 characters")
	}
	message = strings.TrimSpace(message)
	if message == "" || len(message) > 2000 {
		return nil, shared.NewDomainError("INVALID_MESSAGE", "Message must be 1-2000 characters")
	}
	link = strings.TrimSpace(link)
	if len(link) > 500 {
		return nil, shared.NewDomainError("INVALID_LINK", "Link cannot exceed 500 characters")
	}
	return &Notification{
		BaseEntity: shared.NewBaseEntity(),
		UserID:     userID,
		Type:       t,
		Title:      title,
		Message:    message,
		Link:       link,
	}, nil
}

// MarkRead marks the notification as read
func (n *Notification) MarkRead(at time.Time) {
	if n.IsRead {
		return
	}
	n.IsRead = true
	n.ReadAt = &at
	n.UpdatedAt = at
}

// Filter filters a user's notifications
type Filter struct {
	UserID     uuid.UUID
	UnreadOnly bool
	Type       Type
	Page       int
	PageSize   int
}

// Offset returns the number of rows to skip
func (f Filter) Offset() int {
	if f.Page <= 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit()
}

// Limit returns the page size bounded to 100
func (f Filter) Limit() int {
	if f.PageSize <= 0 {
		return 20
	}
	if f.PageSize > 100 {
		return 100
	}
	return f.PageSize
}

// Repository persists notifications. Mutations are scoped to the owner and
// return shared.ErrNotFound for notifications of other users.
type Repository interface {
	Create(ctx context.Context, n *Notification) error
	CreateBatch(ctx context.Context, items []*Notification) error
	FindByUser(ctx context.Context, filter Filter) ([]*Notification, int64, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, userID, id uuid.UUID, at time.Time) error
	MarkAllRead(ctx context.Context, userID uuid.UUID, at time.Time) (int64, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}
