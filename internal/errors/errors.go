package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrInvalidAmount is returned when a payment amount is zero or negative.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrStaleBalance is returned when a submitted withdrawal split no longer
	// matches the split computed from the current balance.
	ErrStaleBalance = errors.New("balance was changed, please preview the withdrawal again")
	// ErrInsufficientBalance is returned when a withdrawal exceeds the user's balance.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrDuplicateTransaction is returned when a ledger transaction already
	// exists for a merchant transaction id.
	ErrDuplicateTransaction = errors.New("transaction was already created")
	// ErrLockBusy is returned when a money lock cannot be acquired within the
	// bounded wait. Callers may retry.
	ErrLockBusy = errors.New("server too busy")
	// ErrUnknownPaymentStatus is returned when the provider reports a payment
	// status code outside the documented set.
	ErrUnknownPaymentStatus = errors.New("unknown provider payment status code")
	// ErrPaymentRequestNotFound is returned when a callback references a
	// merchant transaction id with no local payment request.
	ErrPaymentRequestNotFound = errors.New("payment request not found")
	// ErrCustomerNotFound is returned when a user has no provider customer id yet.
	ErrCustomerNotFound = errors.New("customer not registered with provider")
	// ErrUserNotFound is returned when a user is not found.
	ErrUserNotFound = errors.New("user not found")
)

// ProviderError represents a failed call to the payment provider: either a
// non-2xx HTTP response or a provider-level response code signaling failure.
type ProviderError struct {
	HTTPStatus   int
	ProviderCode int
	Message      string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider error: %s (http status %d, response code %d)",
		e.Message, e.HTTPStatus, e.ProviderCode)
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	var provErr *ProviderError
	if errors.As(err, &provErr) {
		return NewHTTPError(http.StatusBadGateway, provErr.Message, "PROVIDER_ERROR")
	}

	switch {
	case errors.Is(err, ErrInvalidAmount):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_AMOUNT")
	case errors.Is(err, ErrStaleBalance):
		return NewHTTPError(http.StatusConflict, err.Error(), "BALANCE_CHANGED")
	case errors.Is(err, ErrInsufficientBalance):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INSUFFICIENT_BALANCE")
	case errors.Is(err, ErrDuplicateTransaction):
		return NewHTTPError(http.StatusConflict, err.Error(), "DUPLICATE_TRANSACTION")
	case errors.Is(err, ErrLockBusy):
		return NewHTTPError(http.StatusServiceUnavailable, err.Error(), "SERVER_BUSY")
	case errors.Is(err, ErrUnknownPaymentStatus):
		return NewHTTPError(http.StatusBadGateway, err.Error(), "UNKNOWN_PAYMENT_STATUS")
	case errors.Is(err, ErrPaymentRequestNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "PAYMENT_REQUEST_NOT_FOUND")
	case errors.Is(err, ErrCustomerNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "CUSTOMER_NOT_FOUND")
	case errors.Is(err, ErrUserNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "USER_NOT_FOUND")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
