package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/seafresh/backend/internal/domain/payment"
	"github.com/seafresh/backend/internal/domain/shared"
	"github.com/seafresh/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

const (
	razorpayOrdersPath  = "/orders"
	razorpayRefundPath  = "/payments/%s/refund"
	razorpayPaymentPath = "/payments/%s"

	// responses larger than this are not Razorpay entities
	razorpayMaxResponse = 1 << 20
)

// Errors for configuration validation
var (
	ErrRazorpayMissingKey           = errors.New("razorpay: missing key id or key secret")
	ErrRazorpayMissingWebhookSecret = errors.New("razorpay: missing webhook secret")
)

// RazorpayAdapter implements payment.Gateway against the Razorpay REST API
type RazorpayAdapter struct {
	keyID         string
	keySecret     string
	webhookSecret string
	baseURL       string
	httpClient    *http.Client
	logger        *zap.Logger
}

var _ payment.Gateway = (*RazorpayAdapter)(nil)

// NewRazorpayAdapter creates a Razorpay adapter from configuration
func NewRazorpayAdapter(cfg config.RazorpayConfig, logger *zap.Logger) (*RazorpayAdapter, error) {
	if cfg.KeyID == "" || cfg.KeySecret == "" {
		return nil, ErrRazorpayMissingKey
	}
	if cfg.WebhookSecret == "" {
		return nil, ErrRazorpayMissingWebhookSecret
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RazorpayAdapter{
		keyID:         cfg.KeyID,
		keySecret:     cfg.KeySecret,
		webhookSecret: cfg.WebhookSecret,
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		httpClient:    &http.Client{Timeout: timeout},
		logger:        logger.Named("razorpay"),
	}, nil
}

// KeyID returns the public key id the checkout widget needs
func (a *RazorpayAdapter) KeyID() string {
	return a.keyID
}

// CreateOrder opens a Razorpay order for the amount in paise
func (a *RazorpayAdapter) CreateOrder(ctx context.Context, req payment.CreateOrderRequest) (*payment.GatewayOrder, error) {
	if req.AmountPaise <= 0 {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	body := razorpayOrderRequest{
		Amount:   req.AmountPaise,
		Currency: req.Currency,
		Receipt:  req.Receipt,
		Notes:    req.Notes,
	}
	var out razorpayOrder
	if err := a.do(ctx, http.MethodPost, razorpayOrdersPath, body, &out); err != nil {
		return nil, err
	}
	return &payment.GatewayOrder{
		ID:          out.ID,
		AmountPaise: out.Amount,
		Currency:    out.Currency,
		Receipt:     out.Receipt,
		Status:      out.Status,
	}, nil
}

// Refund refunds a captured payment. A zero amount refunds it in full.
func (a *RazorpayAdapter) Refund(ctx context.Context, req payment.RefundRequest) (*payment.Refund, error) {
	if req.PaymentID == "" {
		return nil, shared.NewDomainError("INVALID_PAYMENT", "Payment ID cannot be empty")
	}
	body := razorpayRefundRequest{Amount: req.AmountPaise, Speed: "normal", Notes: req.Notes}
	var out razorpayRefund
	if err := a.do(ctx, http.MethodPost, fmt.Sprintf(razorpayRefundPath, url.PathEscape(req.PaymentID)), body, &out); err != nil {
		return nil, err
	}
	return &payment.Refund{
		ID:          out.ID,
		PaymentID:   out.PaymentID,
		AmountPaise: out.Amount,
		Status:      out.Status,
	}, nil
}

// FetchPayment loads a payment by id
func (a *RazorpayAdapter) FetchPayment(ctx context.Context, paymentID string) (*payment.Payment, error) {
	if paymentID == "" {
		return nil, shared.NewDomainError("INVALID_PAYMENT", "Payment ID cannot be empty")
	}
	var out razorpayPayment
	if err := a.do(ctx, http.MethodGet, fmt.Sprintf(razorpayPaymentPath, url.PathEscape(paymentID)), nil, &out); err != nil {
		return nil, err
	}
	return &payment.Payment{
		ID:          out.ID,
		OrderID:     out.OrderID,
		AmountPaise: out.Amount,
		Currency:    out.Currency,
		Status:      out.Status,
		Method:      out.Method,
		Email:       out.Email,
		ErrorReason: out.ErrorDescription,
	}, nil
}

// VerifyPaymentSignature checks the checkout callback signature:
// hex(HMAC-SHA256(order_id + "|" + payment_id, key_secret))
func (a *RazorpayAdapter) VerifyPaymentSignature(orderID, paymentID, signature string) error {
	if orderID == "" || paymentID == "" || signature == "" {
		return payment.ErrInvalidSignature
	}
	return verifyHMAC([]byte(orderID+"|"+paymentID), a.keySecret, signature)
}

// VerifyWebhookSignature checks X-Razorpay-Signature against the raw body
func (a *RazorpayAdapter) VerifyWebhookSignature(body []byte, signature string) error {
	if len(body) == 0 || signature == "" {
		return payment.ErrInvalidSignature
	}
	return verifyHMAC(body, a.webhookSecret, signature)
}

func verifyHMAC(message []byte, secret, signature string) error {
	got, err := hex.DecodeString(strings.TrimSpace(signature))
	if err != nil {
		return payment.ErrInvalidSignature
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(message)
	if !hmac.Equal(mac.Sum(nil), got) {
		return payment.ErrInvalidSignature
	}
	return nil
}

// do sends an authenticated JSON request and decodes the response into out
func (a *RazorpayAdapter) do(ctx context.Context, method, path string, in, out any) error {
	var reqBody io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("razorpay: failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("razorpay: failed to create request: %w", err)
	}
	req.SetBasicAuth(a.keyID, a.keySecret)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := a.httpClient.Do(req)
	if err != nil {
		a.logger.Warn("Razorpay request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return fmt.Errorf("%w: %v", payment.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, razorpayMaxResponse))
	if err != nil {
		return fmt.Errorf("%w: failed to read response: %v", payment.ErrGatewayUnavailable, err)
	}

	a.logger.Debug("Razorpay response",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode >= 400 {
		var errResp razorpayErrorResponse
		detail := fmt.Sprintf("HTTP %d", resp.StatusCode)
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error.Code != "" {
			detail = errResp.Error.Code + ": " + errResp.Error.Description
		}
		a.logger.Warn("Razorpay returned an error",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("detail", detail),
		)
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			return fmt.Errorf("%w: %s", payment.ErrGatewayUnavailable, detail)
		}
		return fmt.Errorf("%w: %s", payment.ErrGatewayRejected, detail)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("%w: invalid response: %v", payment.ErrGatewayUnavailable, err)
	}
	return nil
}
