package dto

import (
	"net/http"
	"strings"
)

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	ErrCodeUnknown  = "ERR_UNKNOWN"
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation error codes
const (
	ErrCodeValidation = "ERR_VALIDATION"
)

// Authentication error codes
const (
	ErrCodeUnauthorized       = "ERR_UNAUTHORIZED"
	ErrCodeForbidden          = "ERR_FORBIDDEN"
	ErrCodeInvalidCredentials = "ERR_INVALID_CREDENTIALS"
	ErrCodeAccountBlocked     = "ERR_ACCOUNT_BLOCKED"
	ErrCodeOAuthStateInvalid  = "ERR_OAUTH_STATE_INVALID"
	ErrCodeOAuthExchange      = "ERR_OAUTH_EXCHANGE_FAILED"
	ErrCodeOAuthUnavailable   = "ERR_OAUTH_UNAVAILABLE"
	ErrCodeEmailNotVerified   = "ERR_EMAIL_NOT_VERIFIED"
)

// Resource error codes
const (
	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists       = "ERR_ALREADY_EXISTS"
	ErrCodeConflict            = "ERR_CONFLICT"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
)

// Business rule error codes
const (
	ErrCodeInvalidState      = "ERR_INVALID_STATE"
	ErrCodeBusinessRule      = "ERR_BUSINESS_RULE"
	ErrCodeInsufficientStock = "ERR_INSUFFICIENT_STOCK"
	ErrCodeSpinNotEligible   = "ERR_SPIN_NOT_ELIGIBLE"
	ErrCodeNotRefundable     = "ERR_NOT_REFUNDABLE"
)

// Coupon error codes
const (
	ErrCodeCouponNotFound  = "ERR_COUPON_NOT_FOUND"
	ErrCodeCouponInactive  = "ERR_COUPON_INACTIVE"
	ErrCodeCouponExpired   = "ERR_COUPON_EXPIRED"
	ErrCodeCouponExhausted = "ERR_COUPON_EXHAUSTED"
	ErrCodeCouponMinOrder  = "ERR_COUPON_MIN_ORDER"
)

// Payment error codes
const (
	ErrCodeInvalidSignature   = "ERR_INVALID_SIGNATURE"
	ErrCodeGatewayError       = "ERR_GATEWAY_ERROR"
	ErrCodeGatewayUnavailable = "ERR_GATEWAY_UNAVAILABLE"
)

// Input error codes
const (
	ErrCodeBadRequest      = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput    = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON     = "ERR_INVALID_JSON"
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
	ErrCodeFileTooLarge    = "ERR_FILE_TOO_LARGE"
	ErrCodeUnsupportedFile = "ERR_UNSUPPORTED_FILE_TYPE"
)

// Rate limiting error codes
const (
	ErrCodeRateLimited = "ERR_RATE_LIMITED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// General errors
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation: http.StatusBadRequest,

	// Auth errors
	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeForbidden:          http.StatusForbidden,
	ErrCodeInvalidCredentials: http.StatusUnauthorized,
	ErrCodeAccountBlocked:     http.StatusForbidden,
	ErrCodeOAuthStateInvalid:  http.StatusBadRequest,
	ErrCodeOAuthExchange:      http.StatusBadGateway,
	ErrCodeOAuthUnavailable:   http.StatusServiceUnavailable,
	ErrCodeEmailNotVerified:   http.StatusForbidden,
	"ERR_CANNOT_CHANGE_SELF":  http.StatusForbidden,
	"ERR_PASSWORD_NOT_SET":    http.StatusUnprocessableEntity,

	// Resource errors
	ErrCodeNotFound:             http.StatusNotFound,
	ErrCodeAlreadyExists:        http.StatusConflict,
	ErrCodeConflict:             http.StatusConflict,
	ErrCodeConcurrencyConflict:  http.StatusConflict,
	"ERR_PRODUCT_NOT_FOUND":     http.StatusUnprocessableEntity,
	"ERR_EMAIL_EXISTS":          http.StatusConflict,
	"ERR_COUPON_EXISTS":         http.StatusConflict,
	"ERR_SLUG_TAKEN":            http.StatusConflict,
	"ERR_GOOGLE_ALREADY_LINKED": http.StatusConflict,

	// Business rule errors -> 422 Unprocessable Entity
	ErrCodeInvalidState:        http.StatusUnprocessableEntity,
	ErrCodeBusinessRule:        http.StatusUnprocessableEntity,
	ErrCodeInsufficientStock:   http.StatusUnprocessableEntity,
	ErrCodeSpinNotEligible:     http.StatusUnprocessableEntity,
	ErrCodeNotRefundable:       http.StatusUnprocessableEntity,
	ErrCodeCouponNotFound:      http.StatusUnprocessableEntity,
	ErrCodeCouponInactive:      http.StatusUnprocessableEntity,
	ErrCodeCouponExpired:       http.StatusUnprocessableEntity,
	ErrCodeCouponExhausted:     http.StatusUnprocessableEntity,
	ErrCodeCouponMinOrder:      http.StatusUnprocessableEntity,
	"ERR_ORDER_ALREADY_PAID":   http.StatusConflict,
	"ERR_ORDER_MISMATCH":       http.StatusBadRequest,
	"ERR_PAYMENT_REQUIRED":     http.StatusUnprocessableEntity,
	"ERR_PRODUCT_UNAVAILABLE":  http.StatusUnprocessableEntity,
	"ERR_COD_DISABLED":         http.StatusUnprocessableEntity,
	"ERR_INVOICE_UNAVAILABLE":  http.StatusUnprocessableEntity,
	"ERR_ALREADY_ACTIVE":       http.StatusUnprocessableEntity,
	"ERR_ALREADY_BLOCKED":      http.StatusUnprocessableEntity,
	"ERR_NO_ITEMS":             http.StatusBadRequest,
	"ERR_DUPLICATE_ITEM":       http.StatusBadRequest,
	"ERR_TOO_MANY_IMAGES":      http.StatusBadRequest,
	"ERR_NO_REWARD":            http.StatusUnprocessableEntity,
	"ERR_PASSWORD_HASH_ERROR":  http.StatusInternalServerError,

	// Payment provider errors
	ErrCodeInvalidSignature:   http.StatusBadRequest,
	ErrCodeGatewayError:       http.StatusBadGateway,
	ErrCodeGatewayUnavailable: http.StatusServiceUnavailable,

	// Input errors -> 400 Bad Request
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidInput:    http.StatusBadRequest,
	ErrCodeInvalidJSON:     http.StatusBadRequest,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,
	ErrCodeFileTooLarge:    http.StatusRequestEntityTooLarge,
	ErrCodeUnsupportedFile: http.StatusUnsupportedMediaType,

	// Rate limiting -> 429 Too Many Requests
	ErrCodeRateLimited: http.StatusTooManyRequests,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Codes missing from ErrorCodeHTTPStatus fall back on their shape:
// ERR_INVALID_* is a 400, ERR_*_NOT_FOUND a 404, anything else a 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	switch {
	case strings.HasPrefix(code, "ERR_INVALID_"):
		return http.StatusBadRequest
	case strings.HasSuffix(code, "_NOT_FOUND"):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// legacyErrorCodeMapping maps domain codes whose name differs from the API code
var legacyErrorCodeMapping = map[string]string{
	"VALIDATION_ERROR":     ErrCodeValidation,
	"INTERNAL_ERROR":       ErrCodeInternal,
	"RATE_LIMIT_EXCEEDED":  ErrCodeRateLimited,
	"REQUEST_TOO_LARGE":    ErrCodeRequestTooLarge,
	"INVALID_FILE":         ErrCodeInvalidInput,
	"CONCURRENCY_CONFLICT": ErrCodeConcurrencyConflict,
}

// NormalizeErrorCode converts a domain error code (e.g. COUPON_EXPIRED) to the
// API format (ERR_COUPON_EXPIRED). Codes already in the API format pass through.
func NormalizeErrorCode(code string) string {
	if code == "" {
		return ErrCodeUnknown
	}
	if newCode, ok := legacyErrorCodeMapping[code]; ok {
		return newCode
	}
	if strings.HasPrefix(code, "ERR_") {
		return code
	}
	return "ERR_" + code
}
