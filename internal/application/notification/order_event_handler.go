package notification

import (
	"context"
	"fmt"

	"github.com/seafresh/backend/internal/domain/identity"
	"github.com/seafresh/backend/internal/domain/notification"
	"github.com/seafresh/backend/internal/domain/shared"
	"github.com/seafresh/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OrderEventHandler turns order lifecycle events into in-app notifications and emails
type OrderEventHandler struct {
	notifications *NotificationService
	userRepo      identity.UserRepository
	mailer        *Mailer
	logger        *zap.Logger
}

// NewOrderEventHandler creates a new OrderEventHandler
func NewOrderEventHandler(notifications *NotificationService, userRepo identity.UserRepository, logger *zap.Logger) *OrderEventHandler {
	return &OrderEventHandler{
		notifications: notifications,
		userRepo:      userRepo,
		logger:        logger,
	}
}

// WithMailer enables order update emails
func (h *OrderEventHandler) WithMailer(mailer *Mailer) *OrderEventHandler {
	h.mailer = mailer
	return h
}

// EventTypes returns the event types this handler is interested in
func (h *OrderEventHandler) EventTypes() []string {
	return []string{
		trade.EventTypeOrderPlaced,
		trade.EventTypeOrderPaid,
		trade.EventTypeOrderStatusChanged,
		trade.EventTypeOrderCancelled,
		trade.EventTypeOrderRefunded,
	}
}

type orderMessage struct {
	title  string
	body   string
	amount decimal.Decimal
	email  bool
}

// Handle processes an order event
func (h *OrderEventHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	orderEvent, ok := event.(trade.OrderEvent)
	if !ok {
		h.logger.Error("Unexpected event type",
			zap.String("expected", "trade.OrderEvent"),
			zap.String("actual", event.EventType()))
		return fmt.Errorf("unexpected event type: %T", event)
	}

	msg, ok := describeOrderEvent(event)
	if !ok {
		return nil
	}

	link := "/orders/" + orderEvent.GetOrderID().String()
	if err := h.notifications.Notify(ctx, orderEvent.GetUserID(), notification.TypeOrder, msg.title, msg.body, link); err != nil {
		h.logger.Error("Failed to create order notification",
			zap.String("order_number", orderEvent.GetOrderNumber()),
			zap.Error(err))
		return err
	}

	if msg.email && h.mailer != nil {
		h.sendEmail(ctx, orderEvent, msg)
	}
	return nil
}

func (h *OrderEventHandler) sendEmail(ctx context.Context, e trade.OrderEvent, msg orderMessage) {
	user, err := h.userRepo.FindByID(ctx, e.GetUserID())
	if err != nil {
		h.logger.Warn("Order email skipped, user not found",
			zap.String("user_id", e.GetUserID().String()),
			zap.Error(err))
		return
	}
	err = h.mailer.SendOrderUpdate(ctx, OrderEmail{
		To:           user.Email,
		CustomerName: user.Name,
		OrderNumber:  e.GetOrderNumber(),
		OrderID:      e.GetOrderID().String(),
		Headline:     msg.title,
		Body:         msg.body,
		Amount:       msg.amount,
	})
	if err != nil {
		h.logger.Warn("Failed to send order email",
			zap.String("order_number", e.GetOrderNumber()),
			zap.Error(err))
	}
}

func describeOrderEvent(event shared.DomainEvent) (orderMessage, bool) {
	switch e := event.(type) {
	case *trade.OrderPlacedEvent:
		body := fmt.Sprintf("We have received your order %s with %d item(s).", e.OrderNumber, e.ItemCount)
		if e.PaymentMethod == trade.PaymentMethodRazorpay {
			body += " It will be confirmed once the payment goes through."
		}
		return orderMessage{title: "Order placed", body: body, amount: e.Total, email: true}, true
	case *trade.OrderPaidEvent:
		return orderMessage{
			title:  "Payment received",
			body:   fmt.Sprintf("Payment for order %s was successful. We are preparing your catch.", e.OrderNumber),
			amount: e.Amount,
			email:  true,
		}, true
	case *trade.OrderStatusChangedEvent:
		switch e.To {
		case trade.OrderStatusProcessing:
			return orderMessage{title: "Order confirmed", body: fmt.Sprintf("Order %s is being processed.", e.OrderNumber)}, true
		case trade.OrderStatusShipped:
			return orderMessage{title: "Order shipped", body: fmt.Sprintf("Order %s is on its way.", e.OrderNumber), email: true}, true
		case trade.OrderStatusDelivered:
			return orderMessage{title: "Order delivered", body: fmt.Sprintf("Order %s has been delivered. Enjoy your meal!", e.OrderNumber), email: true}, true
		}
		// cancellations are reported by OrderCancelled
		return orderMessage{}, false
	case *trade.OrderCancelledEvent:
		body := fmt.Sprintf("Order %s has been cancelled.", e.OrderNumber)
		if e.Reason != "" {
			body = fmt.Sprintf("Order %s has been cancelled: %s.", e.OrderNumber, e.Reason)
		}
		if e.NeedsRefund {
			body += " Your refund will be processed shortly."
		}
		return orderMessage{title: "Order cancelled", body: body, email: true}, true
	case *trade.OrderRefundedEvent:
		return orderMessage{
			title:  "Refund processed",
			body:   fmt.Sprintf("The refund for order %s has been processed to your original payment method.", e.OrderNumber),
			amount: e.Amount,
			email:  true,
		}, true
	}
	return orderMessage{}, false
}
