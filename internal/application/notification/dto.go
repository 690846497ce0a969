package notification

import (
	"time"

	"github.com/google/uuid"
	"github.com/seafresh/backend/internal/domain/notification"
)

// NotificationListFilter represents filter options for the inbox
type NotificationListFilter struct {
	UnreadOnly bool   `form:"unread"`
	Type       string `form:"type" binding:"omitempty,oneof=order promotion system"`
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// BroadcastRequest sends a notification to every active user
type BroadcastRequest struct {
	Type    string `json:"type" binding:"omitempty,oneof=promotion system"`
	Title   string `json:"title" binding:"required,min=1,max=200"`
	Message string `json:"message" binding:"required,min=1,max=2000"`
	Link    string `json:"link" binding:"max=500"`
}

// BroadcastResponse reports how many users were notified
type BroadcastResponse struct {
	Recipients int `json:"recipients"`
}

// NotificationResponse represents a notification in API responses
type NotificationResponse struct {
	ID        uuid.UUID  `json:"id"`
	Type      string     `json:"type"`
	Title     string     `json:"title"`
	Message   string     `json:"message"`
	Link      string     `json:"link,omitempty"`
	IsRead    bool       `json:"is_read"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// ToNotificationResponse converts a domain Notification to NotificationResponse
func ToNotificationResponse(n *notification.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		Type:      string(n.Type),
		Title:     n.Title,
		Message:   n.Message,
		Link:      n.Link,
		IsRead:    n.IsRead,
		ReadAt:    n.ReadAt,
		CreatedAt: n.CreatedAt,
	}
}

// ToNotificationResponses converts a slice of notifications
func ToNotificationResponses(items []*notification.Notification) []NotificationResponse {
	responses := make([]NotificationResponse, len(items))
	for i, n := range items {
		responses[i] = ToNotificationResponse(n)
	}
	return responses
}
