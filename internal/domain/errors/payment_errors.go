package errors

import (
	"errors"
	"fmt"
)

// PaymentError represents errors raised by payment processing and
// reconciliation.
type PaymentError struct {
	Type    string
	Message string
	Cause   error
}

func (e *PaymentError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s - %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *PaymentError) Unwrap() error {
	return e.Cause
}

// Payment error types
const (
	ErrTypeValidation        = "VALIDATION"
	ErrTypeNotFound          = "NOT_FOUND"
	ErrTypeGateway           = "GATEWAY"
	ErrTypeOrphanInstallment = "ORPHAN_INSTALLMENT"
	ErrTypeInvalidAllocation = "INVALID_ALLOCATION"
	ErrTypeInvalidTransition = "INVALID_TRANSITION"
)

// NewValidationError reports a caller-fixable input problem. It is always
// raised before any persistence write happens.
func NewValidationError(message string) *PaymentError {
	return &PaymentError{
		Type:    ErrTypeValidation,
		Message: message,
	}
}

// NewNotFoundError reports a missing payment or installment.
func NewNotFoundError(resource, id string) *PaymentError {
	return &PaymentError{
		Type:    ErrTypeNotFound,
		Message: fmt.Sprintf("%s not found: %s", resource, id),
	}
}

// NewGatewayError reports a failed or timed-out external charge.
func NewGatewayError(message string, cause error) *PaymentError {
	return &PaymentError{
		Type:    ErrTypeGateway,
		Message: message,
		Cause:   cause,
	}
}

// NewOrphanInstallmentError reports an installment whose owning payment is
// missing, a data-integrity anomaly surfaced during reconciliation.
func NewOrphanInstallmentError(installmentID, paymentID string) *PaymentError {
	return &PaymentError{
		Type:    ErrTypeOrphanInstallment,
		Message: fmt.Sprintf("installment %s references missing payment %s", installmentID, paymentID),
	}
}

// NewInvalidAllocationError reports a violated allocator precondition.
func NewInvalidAllocationError(message string) *PaymentError {
	return &PaymentError{
		Type:    ErrTypeInvalidAllocation,
		Message: message,
	}
}

// NewInvalidTransitionError reports an illegal status transition attempt.
func NewInvalidTransitionError(from, to string) *PaymentError {
	return &PaymentError{
		Type:    ErrTypeInvalidTransition,
		Message: fmt.Sprintf("illegal status transition from %s to %s", from, to),
	}
}

// TypeOf returns the payment error type, or an empty string for other errors.
func TypeOf(err error) string {
	var pe *PaymentError
	if errors.As(err, &pe) {
		return pe.Type
	}
	return ""
}

// IsType reports whether err is a PaymentError of the given type.
func IsType(err error, errType string) bool {
	return TypeOf(err) == errType
}
