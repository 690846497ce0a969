package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	notificationapp "github.com/seafresh/backend/internal/application/notification"
	"github.com/seafresh/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// NotificationService is the inbox
type NotificationService interface {
	List(ctx context.Context, userID uuid.UUID, filter notificationapp.NotificationListFilter) ([]notificationapp.NotificationResponse, int64, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, userID, id uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	Broadcast(ctx context.Context, req notificationapp.BroadcastRequest) (*notificationapp.BroadcastResponse, error)
}

// WebSocketServer upgrades a request into a realtime connection for a user
type WebSocketServer interface {
	ServeWS(w http.ResponseWriter, r *http.Request, userID string) error
}

// NotificationHandler handles the notification inbox and its realtime feed
type NotificationHandler struct {
	BaseHandler
	notifications NotificationService
	ws            WebSocketServer
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notifications NotificationService, ws WebSocketServer) *NotificationHandler {
	return &NotificationHandler{notifications: notifications, ws: ws}
}

// List godoc
// @ID           listNotifications
// @Summary      My notifications
// @Tags         notifications
// @Produce      json
// @Param        unread query bool   false "Unread only"
// @Param        type   query string false "order, promotion or system"
// @Success      200 {object} APIResponse[[]notification.NotificationResponse]
// @Router       /notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	session, ok := h.Session(c)
	if !ok {
		return
	}
	var filter notificationapp.NotificationListFilter
	if !h.BindQuery(c, &filter) {
		return
	}
	items, total, err := h.notifications.List(c.Request.Context(), session.UserID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, items, total, filter.Page, filter.PageSize)
}

// UnreadCount godoc
// @ID           countUnreadNotifications
// @Summary      Unread notification count
// @Tags         notifications
// @Produce      json
// @Success      200 {object} APIResponse[CountData]
// @Router       /notifications/unread-count [get]
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	session, ok := h.Session(c)
	if !ok {
		return
	}
	count, err := h.notifications.UnreadCount(c.Request.Context(), session.UserID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, CountData{Count: count})
}

// MarkRead godoc
// @ID           markNotificationRead
// @Summary      Mark a notification read
// @Tags         notifications
// @Param        id path string true "Notification ID"
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Router       /notifications/{id}/read [patch]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	session, ok := h.Session(c)
	if !ok {
		return
	}
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	if err := h.notifications.MarkRead(c.Request.Context(), session.UserID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// MarkAllRead godoc
// @ID           markAllNotificationsRead
// @Summary      Mark every notification read
// @Tags         notifications
// @Produce      json
// @Success      200 {object} APIResponse[CountData]
// @Router       /notifications/read-all [patch]
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	session, ok := h.Session(c)
	if !ok {
		return
	}
	count, err := h.notifications.MarkAllRead(c.Request.Context(), session.UserID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, CountData{Count: count})
}

// Delete godoc
// @ID           deleteNotification
// @Summary      Delete a notification
// @Tags         notifications
// @Param        id path string true "Notification ID"
// @Success      204
// @Router       /notifications/{id} [delete]
func (h *NotificationHandler) Delete(c *gin.Context) {
	session, ok := h.Session(c)
	if !ok {
		return
	}
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	if err := h.notifications.Delete(c.Request.Context(), session.UserID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Broadcast godoc
// @ID           broadcastNotification
// @Summary      Notify every active user
// @Tags         admin-notifications
// @Accept       json
// @Produce      json
// @Param        request body notification.BroadcastRequest true "Notification"
// @Success      200 {object} APIResponse[notification.BroadcastResponse]
// @Router       /admin/notifications/broadcast [post]
func (h *NotificationHandler) Broadcast(c *gin.Context) {
	var req notificationapp.BroadcastRequest
	if !h.BindJSON(c, &req) {
		return
	}
	result, err := h.notifications.Broadcast(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Stream godoc
// @ID           streamNotifications
// @Summary      Realtime notifications over a websocket
// @Description  Authenticated by the session cookie; every new notification is pushed as JSON
// @Tags         notifications
// @Success      101
// @Failure      401 {object} ErrorResponse
// @Router       /notifications/ws [get]
func (h *NotificationHandler) Stream(c *gin.Context) {
	session, ok := h.Session(c)
	if !ok {
		return
	}
	if h.ws == nil {
		h.Error(c, http.StatusServiceUnavailable, "ERR_REALTIME_UNAVAILABLE", "Realtime notifications are disabled")
		return
	}
	// The upgrader has already answered the request when ServeWS fails.
	if err := h.ws.ServeWS(c.Writer, c.Request, session.UserID.String()); err != nil {
		logger.FromContext(c.Request.Context()).Debug("Websocket upgrade failed", zap.Error(err))
	}
	c.Abort()
}
