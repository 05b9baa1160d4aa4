package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	domainErrors "github.com/flexpay/payment-service/internal/domain/errors"
)

func TestToCents(t *testing.T) {
	cases := []struct {
		name  string
		in    string
		cents int64
		ok    bool
	}{
		{"whole amount", "100", 10000, true},
		{"two decimal places", "99.99", 9999, true},
		{"one decimal place", "0.5", 50, true},
		{"sub-cent precision rejected", "10.001", 0, false},
		{"zero", "0", 0, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			amount, err := decimal.NewFromString(tc.in)
			assert.NoError(t, err)

			cents, ok := toCents(amount)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, tc.cents, cents)
			}
		})
	}
}

type echoValidator struct {
	validate *validator.Validate
}

func (v *echoValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

func newTestContext(body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = &echoValidator{validate: validator.New()}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestPaymentHandler_SubmitPayment_BadRequests(t *testing.T) {
	// Requests below are rejected before the service is ever consulted, so a
	// nil service is safe here.
	handler := NewPaymentHandler(nil, zap.NewNop())

	cases := []struct {
		name string
		body string
	}{
		{"malformed json", `{"amount": `},
		{"missing customer email", `{"amount":"100.00","payment_type":"full","customer_name":"A"}`},
		{"invalid email", `{"amount":"100.00","payment_type":"full","customer_name":"A","customer_email":"nope"}`},
		{"unknown payment type", `{"amount":"100.00","payment_type":"subscription","customer_name":"A","customer_email":"a@example.com"}`},
		{"sub-cent amount", `{"amount":"100.001","payment_type":"full","customer_name":"A","customer_email":"a@example.com"}`},
		{"sub-cent down payment", `{"amount":"100.00","down_payment":"10.005","payment_type":"installment","installment_count":3,"customer_name":"A","customer_email":"a@example.com"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := newTestContext(tc.body)
			err := handler.SubmitPayment(c)

			assert.NoError(t, err)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestPaymentHandler_DomainErrorMapping(t *testing.T) {
	handler := NewPaymentHandler(nil, zap.NewNop())

	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", domainErrors.NewValidationError("bad input"), http.StatusBadRequest},
		{"allocation", domainErrors.NewInvalidAllocationError("bad plan"), http.StatusBadRequest},
		{"not found", domainErrors.NewNotFoundError("payment", "x"), http.StatusNotFound},
		{"transition", domainErrors.NewInvalidTransitionError("completed", "cancelled"), http.StatusConflict},
		{"gateway", domainErrors.NewGatewayError("declined", nil), http.StatusBadGateway},
		{"unknown", assert.AnError, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := newTestContext(`{}`)
			err := handler.domainError(c, tc.err)

			assert.NoError(t, err)
			assert.Equal(t, tc.status, rec.Code)
		})
	}
}
