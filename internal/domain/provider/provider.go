package provider

import (
	"context"
)

// GatewayClient defines the interface for external payment gateways
// (GreenPay, Stripe, etc.). Implementations must bound every call with a
// timeout; a timed-out charge is a failure, never a success.
type GatewayClient interface {
	// Charge attempts to move money for a single amount. A transport or
	// timeout problem is returned as an error; a business decline comes
	// back as a ChargeResult with Success false.
	Charge(ctx context.Context, req *ChargeRequest) (*ChargeResult, error)

	// Name returns the gateway name.
	Name() string
}

// ChargeRequest is a gateway-agnostic charge attempt.
type ChargeRequest struct {
	AmountCents int64    `json:"amount_cents"`
	Currency    string   `json:"currency"`
	ReferenceID string   `json:"reference_id"`
	Customer    Customer `json:"customer"`
	Description string   `json:"description,omitempty"`
}

// Customer identifies who is being charged.
type Customer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

// ChargeResult is the gateway's answer to a charge attempt. It is ephemeral;
// its fields are folded into installment and payment state.
type ChargeResult struct {
	Success       bool   `json:"success"`
	TransactionID string `json:"transaction_id"`
	AmountCents   int64  `json:"amount_cents"`
	Status        string `json:"status"`
	Message       string `json:"message,omitempty"`
}

// GatewayType identifies a configured gateway implementation.
type GatewayType string

const (
	GatewayTypeGreenPay GatewayType = "greenpay"
	GatewayTypeStripe   GatewayType = "stripe"
)

// GatewayError carries gateway-level failure details.
type GatewayError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (e *GatewayError) Error() string {
	if e.Details != "" {
		return e.Message + ": " + e.Details
	}
	return e.Message
}
