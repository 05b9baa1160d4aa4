// Package stripe implements the GatewayClient interface on top of the Stripe
// PaymentIntents API.
package stripe

import (
	"context"
	"strings"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/paymentintent"
	"go.uber.org/zap"

	"github.com/flexpay/payment-service/internal/domain/provider"
)

// Client charges payments through Stripe PaymentIntents.
type Client struct {
	logger *zap.Logger
}

// NewClient configures the global Stripe key and returns a client.
func NewClient(secretKey string, logger *zap.Logger) *Client {
	stripe.Key = secretKey
	return &Client{logger: logger}
}

// Name returns the gateway name.
func (c *Client) Name() string {
	return string(provider.GatewayTypeStripe)
}

// Charge creates and confirms a PaymentIntent for the requested amount.
// Card declines surface as an unsuccessful result; everything else is an
// error the caller can retry.
func (c *Client) Charge(ctx context.Context, req *provider.ChargeRequest) (*provider.ChargeResult, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.AmountCents),
		Currency: stripe.String(strings.ToLower(req.Currency)),
		Confirm:  stripe.Bool(true),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled:        stripe.Bool(true),
			AllowRedirects: stripe.String("never"),
		},
		Description:  stripe.String(req.Description),
		ReceiptEmail: stripe.String(req.Customer.Email),
	}
	params.Context = ctx
	params.AddMetadata("reference_id", req.ReferenceID)
	params.AddMetadata("customer_name", req.Customer.Name)

	intent, err := paymentintent.New(params)
	if err != nil {
		if stripeErr, ok := err.(*stripe.Error); ok && stripeErr.Type == stripe.ErrorTypeCard {
			c.logger.Warn("stripe charge declined",
				zap.String("reference", req.ReferenceID),
				zap.String("code", string(stripeErr.Code)))
			return &provider.ChargeResult{
				Success:     false,
				AmountCents: req.AmountCents,
				Status:      "failed",
				Message:     stripeErr.Msg,
			}, nil
		}
		c.logger.Error("stripe charge failed",
			zap.String("reference", req.ReferenceID),
			zap.Error(err))
		return nil, &provider.GatewayError{
			Code:    "API_ERROR",
			Message: "Stripe API request failed",
			Details: err.Error(),
		}
	}

	success := intent.Status == stripe.PaymentIntentStatusSucceeded
	return &provider.ChargeResult{
		Success:       success,
		TransactionID: intent.ID,
		AmountCents:   req.AmountCents,
		Status:        string(intent.Status),
		Message:       "payment intent " + string(intent.Status),
	}, nil
}
