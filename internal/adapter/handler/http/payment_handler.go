package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	domainErrors "github.com/flexpay/payment-service/internal/domain/errors"
	"github.com/flexpay/payment-service/internal/domain/model"
	"github.com/flexpay/payment-service/internal/usecase"
)

type PaymentHandler struct {
	payments *usecase.PaymentService
	logger   *zap.Logger
}

func NewPaymentHandler(payments *usecase.PaymentService, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		payments: payments,
		logger:   logger,
	}
}

// SubmitPaymentRequest is the JSON body accepted by POST /payments. Amounts
// are decimal strings in major units ("100.00"); they are converted to minor
// units before the domain ever sees them.
type SubmitPaymentRequest struct {
	Amount           decimal.Decimal  `json:"amount" validate:"required"`
	PaymentType      string           `json:"payment_type" validate:"required,oneof=full installment"`
	DownPayment      *decimal.Decimal `json:"down_payment,omitempty"`
	InstallmentCount int              `json:"installment_count,omitempty"`
	CustomerName     string           `json:"customer_name" validate:"required"`
	CustomerEmail    string           `json:"customer_email" validate:"required,email"`
	CustomerPhone    string           `json:"customer_phone,omitempty"`
}

// SubmitPayment handles POST /payments.
func (h *PaymentHandler) SubmitPayment(c echo.Context) error {
	var req SubmitPaymentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": err.Error(),
		})
	}

	amountCents, ok := toCents(req.Amount)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "amount must have at most two decimal places",
		})
	}

	var downCents int64
	if req.DownPayment != nil {
		downCents, ok = toCents(*req.DownPayment)
		if !ok {
			return c.JSON(http.StatusBadRequest, echo.Map{
				"error": "down_payment must have at most two decimal places",
			})
		}
	}

	h.logger.Info("Payment submission received",
		zap.String("payment_type", req.PaymentType),
		zap.Int64("amount_cents", amountCents),
		zap.Int("installment_count", req.InstallmentCount),
	)

	outcome, err := h.payments.Submit(c.Request().Context(), &usecase.SubmitRequest{
		AmountCents:      amountCents,
		PaymentType:      model.PaymentType(req.PaymentType),
		DownPaymentCents: downCents,
		InstallmentCount: req.InstallmentCount,
		CustomerName:     req.CustomerName,
		CustomerEmail:    req.CustomerEmail,
		CustomerPhone:    req.CustomerPhone,
	})
	if err != nil {
		return h.domainError(c, err)
	}

	return c.JSON(http.StatusCreated, outcome)
}

// GetPayment handles GET /payments/:id.
func (h *PaymentHandler) GetPayment(c echo.Context) error {
	id := c.Param("id")

	payment, err := h.payments.GetPayment(c.Request().Context(), id)
	if err != nil {
		return h.domainError(c, err)
	}

	return c.JSON(http.StatusOK, payment)
}

// GetInstallments handles GET /payments/:id/installments.
func (h *PaymentHandler) GetInstallments(c echo.Context) error {
	id := c.Param("id")

	installments, err := h.payments.GetInstallments(c.Request().Context(), id)
	if err != nil {
		return h.domainError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"payment_id":   id,
		"installments": installments,
	})
}

// CancelPayment handles POST /payments/:id/cancel.
func (h *PaymentHandler) CancelPayment(c echo.Context) error {
	id := c.Param("id")

	if err := h.payments.Cancel(c.Request().Context(), id); err != nil {
		return h.domainError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"payment_id": id,
		"status":     string(model.PaymentStatusCancelled),
	})
}

// domainError maps domain error types onto HTTP status codes.
func (h *PaymentHandler) domainError(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	switch domainErrors.TypeOf(err) {
	case domainErrors.ErrTypeValidation, domainErrors.ErrTypeInvalidAllocation:
		status = http.StatusBadRequest
	case domainErrors.ErrTypeNotFound:
		status = http.StatusNotFound
	case domainErrors.ErrTypeInvalidTransition:
		status = http.StatusConflict
	case domainErrors.ErrTypeGateway:
		status = http.StatusBadGateway
	}

	if status == http.StatusInternalServerError {
		h.logger.Error("Request failed", zap.Error(err))
	}

	return c.JSON(status, echo.Map{
		"error": err.Error(),
	})
}

// toCents converts a decimal major-unit amount into minor units, rejecting
// values with sub-cent precision.
func toCents(amount decimal.Decimal) (int64, bool) {
	scaled := amount.Mul(decimal.NewFromInt(100))
	if !scaled.IsInteger() {
		return 0, false
	}
	return scaled.IntPart(), true
}
