// Package payment defines the port to the online payment provider.
package payment

import (
	"context"

	"github.com/seafresh/backend/internal/domain/shared"
)

var (
	// ErrInvalidSignature is returned when a payment or webhook signature does not match
	ErrInvalidSignature = shared.NewDomainError("INVALID_SIGNATURE", "Payment signature verification failed")

	// ErrGatewayUnavailable means the provider could not be reached or failed on its side
	ErrGatewayUnavailable = shared.NewDomainError("GATEWAY_UNAVAILABLE", "Payment service is temporarily unavailable")

	// ErrGatewayRejected means the provider refused the request
	ErrGatewayRejected = shared.NewDomainError("GATEWAY_ERROR", "Payment provider rejected the request")
)

// CreateOrderRequest asks the gateway to open a payment order
type CreateOrderRequest struct {
	AmountPaise int64
	Currency    string
	Receipt     string
	Notes       map[string]string
}

// GatewayOrder is the gateway-side order the checkout widget pays against
type GatewayOrder struct {
	ID          string
	AmountPaise int64
	Currency    string
	Receipt     string
	Status      string
}

// RefundRequest asks the gateway to return money for a captured payment.
// AmountPaise of 0 refunds the full payment.
type RefundRequest struct {
	PaymentID   string
	AmountPaise int64
	Notes       map[string]string
}

// Refund is the gateway's refund record
type Refund struct {
	ID          string
	PaymentID   string
	AmountPaise int64
	Status      string
}

// Payment is a captured or attempted payment
type Payment struct {
	ID          string
	OrderID     string
	AmountPaise int64
	Currency    string
	Status      string
	Method      string
	Email       string
	ErrorReason string
}

// Gateway is the payment provider
type Gateway interface {
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*GatewayOrder, error)
	VerifyPaymentSignature(orderID, paymentID, signature string) error
	VerifyWebhookSignature(body []byte, signature string) error
	Refund(ctx context.Context, req RefundRequest) (*Refund, error)
	FetchPayment(ctx context.Context, paymentID string) (*Payment, error)
	KeyID() string
}

// Payment statuses reported by the gateway
const (
	PaymentStatusCreated    = "created"
	PaymentStatusAuthorized = "authorized"
	PaymentStatusCaptured   = "captured"
	PaymentStatusFailed     = "failed"
	PaymentStatusRefunded   = "refunded"
)

// Webhook event names handled by the storefront
const (
	WebhookPaymentCaptured = "payment.captured"
	WebhookPaymentFailed   = "payment.failed"
	WebhookRefundProcessed = "refund.processed"
	WebhookRefundFailed    = "refund.failed"
)

// WebhookEvent is the decoded webhook body
type WebhookEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Payment *struct {
			Entity WebhookPayment `json:"entity"`
		} `json:"payment,omitempty"`
		Refund *struct {
			Entity WebhookRefund `json:"entity"`
		} `json:"refund,omitempty"`
	} `json:"payload"`
	CreatedAt int64 `json:"created_at"`
}

// WebhookPayment is the payment entity inside a webhook
type WebhookPayment struct {
	ID               string `json:"id"`
	OrderID          string `json:"order_id"`
	Amount           int64  `json:"amount"`
	Currency         string `json:"currency"`
	Status           string `json:"status"`
	Method           string `json:"method"`
	ErrorDescription string `json:"error_description"`
}

// WebhookRefund is the refund entity inside a webhook
type WebhookRefund struct {
	ID        string `json:"id"`
	PaymentID string `json:"payment_id"`
	Amount    int64  `json:"amount"`
	Status    string `json:"status"`
}

// PaymentEntity returns the payment carried by the event, if any
func (e *WebhookEvent) PaymentEntity() *WebhookPayment {
	if e.Payload.Payment == nil {
		return nil
	}
	return &e.Payload.Payment.Entity
}

// RefundEntity returns the refund carried by the event, if any
func (e *WebhookEvent) RefundEntity() *WebhookRefund {
	if e.Payload.Refund == nil {
		return nil
	}
	return &e.Payload.Refund.Entity
}
