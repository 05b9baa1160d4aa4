// Package greenpay implements the GatewayClient interface for the GreenPay
// charge API.
package greenpay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/flexpay/payment-service/internal/domain/provider"
)

// Client talks to the GreenPay payments endpoint.
type Client struct {
	apiURL string
	apiKey string
	client *http.Client
	logger *zap.Logger
}

// NewClient creates a GreenPay client. The HTTP client carries the timeout so
// a hung gateway call can never block a charge indefinitely.
func NewClient(apiURL, apiKey string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		apiURL: apiURL,
		apiKey: apiKey,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Name returns the gateway name.
func (c *Client) Name() string {
	return string(provider.GatewayTypeGreenPay)
}

type chargeRequestBody struct {
	Amount      int64        `json:"amount"`
	Currency    string       `json:"currency"`
	Customer    customerBody `json:"customer"`
	Reference   string       `json:"reference"`
	Description string       `json:"description,omitempty"`
}

type customerBody struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

type chargeResponseBody struct {
	Success       bool   `json:"success"`
	TransactionID string `json:"transactionId"`
	ID            string `json:"id"`
	Status        string `json:"status"`
	Message       string `json:"message"`
	Description   string `json:"description"`
}

// Charge posts a charge to GreenPay. Transport problems and timeouts are
// returned as errors; an HTTP-level decline comes back as an unsuccessful
// ChargeResult.
func (c *Client) Charge(ctx context.Context, req *provider.ChargeRequest) (*provider.ChargeResult, error) {
	body := chargeRequestBody{
		Amount:   req.AmountCents,
		Currency: req.Currency,
		Customer: customerBody{
			Name:  req.Customer.Name,
			Email: req.Customer.Email,
			Phone: req.Customer.Phone,
		},
		Reference:   req.ReferenceID,
		Description: req.Description,
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, &provider.GatewayError{
			Code:    "MARSHAL_ERROR",
			Message: "Failed to prepare charge request",
			Details: err.Error(),
		}
	}

	url := fmt.Sprintf("%s/payments", c.apiURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, &provider.GatewayError{
			Code:    "REQUEST_ERROR",
			Message: "Failed to create charge request",
			Details: err.Error(),
		}
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		c.logger.Error("GreenPay charge request failed",
			zap.String("reference", req.ReferenceID),
			zap.Error(err))
		return nil, &provider.GatewayError{
			Code:    "API_ERROR",
			Message: "GreenPay API request failed",
			Details: err.Error(),
		}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &provider.GatewayError{
			Code:    "RESPONSE_ERROR",
			Message: "Failed to read GreenPay response",
			Details: err.Error(),
		}
	}

	var parsed chargeResponseBody
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, &provider.GatewayError{
			Code:    "RESPONSE_ERROR",
			Message: "Failed to decode GreenPay response",
			Details: err.Error(),
		}
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("GreenPay charge declined",
			zap.String("reference", req.ReferenceID),
			zap.Int("status_code", resp.StatusCode),
			zap.String("message", parsed.Message))
		return &provider.ChargeResult{
			Success:     false,
			AmountCents: req.AmountCents,
			Status:      "failed",
			Message:     fmt.Sprintf("GreenPay error %d: %s", resp.StatusCode, parsed.Message),
		}, nil
	}

	transactionID := parsed.TransactionID
	if transactionID == "" {
		transactionID = parsed.ID
	}

	message := parsed.Message
	if message == "" {
		message = parsed.Description
	}

	success := parsed.Success || parsed.Status == "success"

	c.logger.Debug("GreenPay charge response",
		zap.String("reference", req.ReferenceID),
		zap.Bool("success", success),
		zap.String("transaction_id", transactionID))

	return &provider.ChargeResult{
		Success:       success,
		TransactionID: transactionID,
		AmountCents:   req.AmountCents,
		Status:        parsed.Status,
		Message:       message,
	}, nil
}
