package handler

import (
	"context"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	tradeapp "github.com/seafresh/backend/internal/application/trade"
	"github.com/seafresh/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// Razorpay webhook headers
const (
	RazorpaySignatureHeader = "X-Razorpay-Signature"
	RazorpayEventIDHeader   = "X-Razorpay-Event-Id"
)

// PaymentService is the Razorpay side of the trade application
type PaymentService interface {
	Config() tradeapp.PaymentConfigResponse
	CreatePaymentOrder(ctx context.Context, userID, orderID uuid.UUID) (*tradeapp.CreatePaymentResponse, error)
	VerifyPayment(ctx context.Context, userID uuid.UUID, req tradeapp.VerifyPaymentRequest) (*tradeapp.OrderResponse, error)
	HandleWebhook(ctx context.Context, body []byte, signature, eventID string) error
}

// PaymentHandler handles the Razorpay checkout and webhooks
type PaymentHandler struct {
	BaseHandler
	payments PaymentService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(payments PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// Config godoc
// @ID           getPaymentConfig
// @Summary      Public payment configuration
// @Tags         payments
// @Produce      json
// @Success      200 {object} APIResponse[trade.PaymentConfigResponse]
// @Router       /payments/config [get]
func (h *PaymentHandler) Config(c *gin.Context) {
	h.Success(c, h.payments.Config())
}

// CreateOrder godoc
// @ID           createPaymentOrder
// @Summary      Open a Razorpay order for one of my pending orders
// @Tags         payments
// @Produce      json
// @Param        id path string true "Order ID"
// @Success      200 {object} APIResponse[trade.CreatePaymentResponse]
// @Failure      409 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Router       /payments/orders/{id} [post]
func (h *PaymentHandler) CreateOrder(c *gin.Context) {
	session, ok := h.Session(c)
	if !ok {
		return
	}
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.payments.CreatePaymentOrder(c.Request.Context(), session.UserID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Verify godoc
// @ID           verifyPayment
// @Summary      Verify the checkout handler callback
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        request body trade.VerifyPaymentRequest true "Razorpay response"
// @Success      200 {object} APIResponse[trade.OrderResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /payments/verify [post]
func (h *PaymentHandler) Verify(c *gin.Context) {
	session, ok := h.Session(c)
	if !ok {
		return
	}
	var req tradeapp.VerifyPaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}
	order, err := h.payments.VerifyPayment(c.Request.Context(), session.UserID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Webhook godoc
// @ID           razorpayWebhook
// @Summary      Razorpay webhook
// @Description  Verified against the raw body; deliveries are deduplicated by event ID
// @Tags         payments
// @Accept       json
// @Param        X-Razorpay-Signature header string true "HMAC-SHA256 of the body"
// @Param        X-Razorpay-Event-Id  header string false "Delivery ID"
// @Success      200 {object} APIResponse[MessageData]
// @Failure      400 {object} ErrorResponse
// @Router       /payments/webhook [post]
func (h *PaymentHandler) Webhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	eventID := c.GetHeader(RazorpayEventIDHeader)
	if err := h.payments.HandleWebhook(c.Request.Context(), body, c.GetHeader(RazorpaySignatureHeader), eventID); err != nil {
		logger.FromContext(c.Request.Context()).Warn("Razorpay webhook rejected", zap.String("event_id", eventID), zap.Error(err))
		h.HandleError(c, err)
		return
	}
	h.Success(c, MessageData{Message: "ok"})
}
