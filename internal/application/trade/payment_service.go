package trade

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/seafresh/backend/internal/domain/identity"
	"github.com/seafresh/backend/internal/domain/payment"
	"github.com/seafresh/backend/internal/domain/shared"
	"github.com/seafresh/backend/internal/domain/shared/valueobject"
	"github.com/seafresh/backend/internal/domain/trade"
	"go.uber.org/zap"
)

// PaymentServiceConfig holds the public payment settings
type PaymentServiceConfig struct {
	Currency       string
	ShopName       string
	CODEnabled     bool
	Pricing        trade.PricingPolicy
	WebhookDedupe  time.Duration
	WebhookKeyBase string
}

// PaymentService connects orders to the Razorpay checkout
type PaymentService struct {
	orderRepo      trade.OrderRepository
	userRepo       identity.UserRepository
	gateway        payment.Gateway
	idempotency    shared.IdempotencyStore
	eventPublisher shared.EventPublisher
	config         PaymentServiceConfig
	logger         *zap.Logger
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(
	orderRepo trade.OrderRepository,
	userRepo identity.UserRepository,
	gateway payment.Gateway,
	idempotency shared.IdempotencyStore,
	config PaymentServiceConfig,
	logger *zap.Logger,
) *PaymentService {
	if config.Currency == "" {
		config.Currency = string(valueobject.DefaultCurrency)
	}
	if config.WebhookDedupe <= 0 {
		config.WebhookDedupe = 72 * time.Hour
	}
	if config.WebhookKeyBase == "" {
		config.WebhookKeyBase = "razorpay:event:"
	}
	return &PaymentService{
		orderRepo:   orderRepo,
		userRepo:    userRepo,
		gateway:     gateway,
		idempotency: idempotency,
		config:      config,
		logger:      logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *PaymentService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Config returns the public checkout configuration
func (s *PaymentService) Config() PaymentConfigResponse {
	keyID := ""
	if s.gateway != nil {
		keyID = s.gateway.KeyID()
	}
	return PaymentConfigResponse{
		KeyID:                 keyID,
		Currency:              s.config.Currency,
		ShopName:              s.config.ShopName,
		CODEnabled:            s.config.CODEnabled,
		ShippingFee:           s.config.Pricing.ShippingFee,
		FreeShippingThreshold: s.config.Pricing.FreeShippingThreshold,
	}
}

// CreatePaymentOrder opens (or reuses) the Razorpay order for one of the caller's pending orders
func (s *PaymentService) CreatePaymentOrder(ctx context.Context, userID, orderID uuid.UUID) (*CreatePaymentResponse, error) {
	if s.gateway == nil {
		return nil, shared.NewDomainError("GATEWAY_UNAVAILABLE", "Online payments are not configured")
	}
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.IsOwnedBy(userID) {
		return nil, shared.ErrNotFound
	}
	if order.IsPaid() {
		return nil, shared.NewDomainError("ORDER_ALREADY_PAID", "This order has already been paid")
	}
	if !order.AwaitsOnlinePayment() {
		return nil, shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Order %s is not awaiting payment", order.OrderNumber))
	}

	amount := valueobject.NewINR(order.Total).ToMinorUnits()
	if order.RazorpayOrderID == "" {
		gwOrder, err := s.gateway.CreateOrder(ctx, payment.CreateOrderRequest{
			AmountPaise: amount,
			Currency:    s.config.Currency,
			Receipt:     order.OrderNumber,
			Notes: map[string]string{
				"order_id":     order.ID.String(),
				"order_number": order.OrderNumber,
			},
		})
		if err != nil {
			return nil, fmt.Errorf("create razorpay order: %w", err)
		}
		if err := order.AttachGatewayOrder(gwOrder.ID); err != nil {
			return nil, err
		}
		if err := s.orderRepo.SaveWithLock(ctx, order); err != nil {
			return nil, err
		}
		s.logger.Info("razorpay order created",
			zap.String("order_number", order.OrderNumber),
			zap.String("razorpay_order_id", gwOrder.ID))
	}

	resp := &CreatePaymentResponse{
		KeyID:           s.gateway.KeyID(),
		RazorpayOrderID: order.RazorpayOrderID,
		Amount:          amount,
		Currency:        s.config.Currency,
		OrderID:         order.ID,
		OrderNumber:     order.OrderNumber,
		ShopName:        s.config.ShopName,
		CustomerName:    order.ShippingAddress.FullName,
		CustomerPhone:   order.ShippingAddress.Phone,
	}
	if user, err := s.userRepo.FindByID(ctx, userID); err == nil {
		resp.CustomerEmail = user.Email
	}
	return resp, nil
}

// VerifyPayment checks the checkout signature and marks the order paid.
// Verifying an already recorded payment returns the order unchanged.
func (s *PaymentService) VerifyPayment(ctx context.Context, userID uuid.UUID, req VerifyPaymentRequest) (*OrderResponse, error) {
	if s.gateway == nil {
		return nil, shared.NewDomainError("GATEWAY_UNAVAILABLE", "Online payments are not configured")
	}
	if err := s.gateway.VerifyPaymentSignature(req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature); err != nil {
		s.logger.Warn("payment signature mismatch",
			zap.String("order_id", req.OrderID.String()),
			zap.String("razorpay_order_id", req.RazorpayOrderID))
		return nil, err
	}

	order, err := s.orderRepo.FindByID(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}
	if !order.IsOwnedBy(userID) {
		return nil, shared.ErrNotFound
	}
	if order.RazorpayOrderID != req.RazorpayOrderID {
		return nil, shared.NewDomainError("ORDER_MISMATCH", "Payment does not belong to this order")
	}
	if order.RazorpayPaymentID == req.RazorpayPaymentID && order.PaymentStatus != trade.PaymentStatusPending &&
		order.PaymentStatus != trade.PaymentStatusFailed {
		response := ToOrderResponse(order)
		return &response, nil
	}

	if err := s.markPaid(ctx, order, req.RazorpayPaymentID); err != nil {
		return nil, err
	}

	response := ToOrderResponse(order)
	return &response, nil
}

func (s *PaymentService) markPaid(ctx context.Context, order *trade.Order, paymentID string) error {
	if err := order.MarkPaid(paymentID); err != nil {
		return err
	}
	if err := s.orderRepo.SaveWithLock(ctx, order); err != nil {
		return err
	}
	s.logger.Info("order paid",
		zap.String("order_number", order.OrderNumber),
		zap.String("payment_id", paymentID))
	s.publish(ctx, order)

	// a payment that lands after the order was cancelled goes straight back
	if order.NeedsRefund() {
		if err := issueRefund(ctx, s.gateway, order, order.RefundableAmount(), "Order was cancelled before payment completed"); err != nil {
			s.logger.Error("refund of late payment failed",
				zap.String("order_number", order.OrderNumber),
				zap.Error(err))
			return nil
		}
		if err := s.orderRepo.SaveWithLock(ctx, order); err != nil {
			return err
		}
		s.publish(ctx, order)
	}
	return nil
}

// HandleWebhook processes a signed Razorpay webhook. Deliveries are
// deduplicated by event ID; unknown orders are acknowledged and ignored.
func (s *PaymentService) HandleWebhook(ctx context.Context, body []byte, signature, eventID string) error {
	if s.gateway == nil {
		return shared.NewDomainError("GATEWAY_UNAVAILABLE", "Online payments are not configured")
	}
	if err := s.gateway.VerifyWebhookSignature(body, signature); err != nil {
		return err
	}

	var event payment.WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return shared.NewDomainError("INVALID_WEBHOOK", "Webhook body is not valid JSON")
	}

	key := ""
	if eventID != "" && s.idempotency != nil {
		key = s.config.WebhookKeyBase + eventID
		first, err := s.idempotency.MarkProcessed(ctx, key, s.config.WebhookDedupe)
		if err != nil {
			return fmt.Errorf("webhook dedupe: %w", err)
		}
		if !first {
			s.logger.Debug("duplicate webhook ignored", zap.String("event_id", eventID))
			return nil
		}
	}

	if err := s.dispatch(ctx, &event); err != nil {
		if key != "" {
			if ferr := s.idempotency.Forget(ctx, key); ferr != nil {
				s.logger.Warn("failed to release webhook key", zap.String("key", key), zap.Error(ferr))
			}
		}
		return err
	}
	return nil
}

func (s *PaymentService) dispatch(ctx context.Context, event *payment.WebhookEvent) error {
	log := s.logger.With(zap.String("event", event.Event))

	switch event.Event {
	case payment.WebhookPaymentCaptured:
		p := event.PaymentEntity()
		if p == nil {
			return shared.NewDomainError("INVALID_WEBHOOK", "payment entity missing")
		}
		order, err := s.orderRepo.FindByGatewayOrderID(ctx, p.OrderID)
		if err != nil {
			return ignoreNotFound(log, err, p.OrderID)
		}
		if order.PaymentStatus != trade.PaymentStatusPending && order.PaymentStatus != trade.PaymentStatusFailed {
			return nil
		}
		return s.markPaid(ctx, order, p.ID)

	case payment.WebhookPaymentFailed:
		p := event.PaymentEntity()
		if p == nil {
			return shared.NewDomainError("INVALID_WEBHOOK", "payment entity missing")
		}
		order, err := s.orderRepo.FindByGatewayOrderID(ctx, p.OrderID)
		if err != nil {
			return ignoreNotFound(log, err, p.OrderID)
		}
		if order.PaymentStatus != trade.PaymentStatusPending {
			return nil
		}
		if err := order.MarkPaymentFailed(p.ErrorDescription); err != nil {
			return err
		}
		if err := s.orderRepo.SaveWithLock(ctx, order); err != nil {
			return err
		}
		s.publish(ctx, order)
		return nil

	case payment.WebhookRefundProcessed, payment.WebhookRefundFailed:
		r := event.RefundEntity()
		if r == nil {
			return shared.NewDomainError("INVALID_WEBHOOK", "refund entity missing")
		}
		order, err := s.orderRepo.FindByGatewayPaymentID(ctx, r.PaymentID)
		if err != nil {
			return ignoreNotFound(log, err, r.PaymentID)
		}
		if order.PaymentStatus != trade.PaymentStatusRefundPending {
			return nil
		}
		if event.Event == payment.WebhookRefundProcessed {
			err = order.CompleteRefund(r.ID)
		} else {
			err = order.FailRefund()
			log.Warn("refund failed at gateway", zap.String("order_number", order.OrderNumber), zap.String("refund_id", r.ID))
		}
		if err != nil {
			return err
		}
		if err := s.orderRepo.SaveWithLock(ctx, order); err != nil {
			return err
		}
		s.publish(ctx, order)
		return nil
	}

	log.Debug("webhook event ignored")
	return nil
}

func ignoreNotFound(log *zap.Logger, err error, ref string) error {
	if errors.Is(err, shared.ErrNotFound) {
		log.Warn("webhook for unknown order", zap.String("ref", ref))
		return nil
	}
	return err
}

func (s *PaymentService) publish(ctx context.Context, order *trade.Order) {
	if err := shared.PublishAndClear(ctx, s.eventPublisher, order); err != nil {
		s.logger.Warn("failed to publish order events",
			zap.String("order_number", order.OrderNumber),
			zap.Error(err))
	}
}
