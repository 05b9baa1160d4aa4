package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	domainErrors "github.com/flexpay/payment-service/internal/domain/errors"
	"github.com/flexpay/payment-service/internal/domain/model"
	"github.com/flexpay/payment-service/internal/domain/plan"
	"github.com/flexpay/payment-service/internal/domain/provider"
	"github.com/flexpay/payment-service/internal/domain/repository"
	"github.com/flexpay/payment-service/internal/events"
	"github.com/flexpay/payment-service/internal/metrics"
)

// SubmitRequest is a validated-shape payment submission. Amounts are minor
// currency units.
type SubmitRequest struct {
	AmountCents      int64
	PaymentType      model.PaymentType
	DownPaymentCents int64
	InstallmentCount int
	CustomerName     string
	CustomerEmail    string
	CustomerPhone    string
}

// PaymentOutcome reports a successful submission.
type PaymentOutcome struct {
	PaymentID        string     `json:"payment_id"`
	Message          string     `json:"message"`
	ChargedCents     int64      `json:"charged_cents"`
	InstallmentCount int        `json:"installment_count,omitempty"`
	NextPaymentDate  *time.Time `json:"next_payment_date,omitempty"`
}

// ChargeOutcome reports one installment charge attempt. Gateway declines are
// carried in Err instead of being raised, so a batch caller can keep going.
type ChargeOutcome struct {
	InstallmentID string
	PaymentID     string
	Sequence      int
	Status        model.InstallmentStatus
	TransactionID string
	// Duplicate marks an attempt that lost the processing claim to a
	// concurrent charge; nothing was sent to the gateway.
	Duplicate bool
	Err       error
}

// Succeeded reports whether this attempt ended with a paid installment.
func (o *ChargeOutcome) Succeeded() bool {
	return o.Err == nil && !o.Duplicate && o.Status == model.InstallmentStatusPaid
}

// PaymentService orchestrates payment submission and installment charges.
type PaymentService struct {
	paymentRepo     repository.PaymentRepository
	installmentRepo repository.InstallmentRepository
	cache           repository.PaymentCache
	gateway         provider.GatewayClient
	publisher       events.Publisher
	currency        string
	logger          *zap.Logger
}

// NewPaymentService creates a new payment service. cache may be nil when
// caching is disabled.
func NewPaymentService(
	paymentRepo repository.PaymentRepository,
	installmentRepo repository.InstallmentRepository,
	cache repository.PaymentCache,
	gateway provider.GatewayClient,
	publisher events.Publisher,
	currency string,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		paymentRepo:     paymentRepo,
		installmentRepo: installmentRepo,
		cache:           cache,
		gateway:         gateway,
		publisher:       publisher,
		currency:        currency,
		logger:          logger,
	}
}

// Submit validates the request, persists the payment (and plan, for
// installment payments) and attempts the first charge immediately. Validation
// failures happen before any write.
func (s *PaymentService) Submit(ctx context.Context, req *SubmitRequest) (*PaymentOutcome, error) {
	if err := s.validate(req); err != nil {
		metrics.PaymentsSubmitted.WithLabelValues(string(req.PaymentType), "rejected").Inc()
		return nil, err
	}

	paymentID := uuid.New().String()

	var outcome *PaymentOutcome
	var err error
	if req.PaymentType == model.PaymentTypeFull {
		outcome, err = s.submitFull(ctx, paymentID, req)
	} else {
		outcome, err = s.submitInstallment(ctx, paymentID, req)
	}

	result := "success"
	if err != nil {
		result = "failure"
	}
	metrics.PaymentsSubmitted.WithLabelValues(string(req.PaymentType), result).Inc()

	return outcome, err
}

func (s *PaymentService) validate(req *SubmitRequest) error {
	if req.AmountCents <= 0 {
		return domainErrors.NewValidationError("amount must be positive")
	}
	if req.CustomerName == "" || req.CustomerEmail == "" {
		return domainErrors.NewValidationError("customer name and email are required")
	}

	switch req.PaymentType {
	case model.PaymentTypeFull:
		if req.InstallmentCount != 0 {
			return domainErrors.NewValidationError("installment count is only valid for installment payments")
		}
		if req.DownPaymentCents != 0 {
			return domainErrors.NewValidationError("down payment is only valid for installment payments")
		}
	case model.PaymentTypeInstallment:
		if !model.IsValidInstallmentCount(req.InstallmentCount) {
			return domainErrors.NewValidationError("installment count must be 3, 6 or 12")
		}
		if req.DownPaymentCents < 0 {
			return domainErrors.NewValidationError("down payment cannot be negative")
		}
		if req.DownPaymentCents >= req.AmountCents {
			return domainErrors.NewValidationError("down payment must be less than total amount")
		}
	default:
		return domainErrors.NewValidationError("payment type must be full or installment")
	}

	return nil
}

// submitFull records the payment and charges the whole amount at once. A
// successful charge completes the payment; a failed one leaves it pending so
// it can be resubmitted.
func (s *PaymentService) submitFull(ctx context.Context, paymentID string, req *SubmitRequest) (*PaymentOutcome, error) {
	payment := s.buildPayment(paymentID, req)
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to persist payment: %w", err)
	}

	result, err := s.charge(ctx, req.AmountCents, paymentID, req, fmt.Sprintf("Full payment for %s", req.CustomerName))
	if err != nil {
		s.logger.Warn("Full payment charge failed",
			zap.String("payment_id", paymentID),
			zap.Error(err))
		return nil, err
	}

	if _, err := s.paymentRepo.UpdateStatusFrom(ctx, paymentID, model.PaymentStatusPending, model.PaymentStatusCompleted); err != nil {
		return nil, fmt.Errorf("failed to complete payment: %w", err)
	}
	s.invalidateCache(ctx, paymentID)

	s.publish(ctx, events.PaymentEvent{
		EventType:     events.EventTypePaymentCompleted,
		PaymentID:     paymentID,
		AmountCents:   req.AmountCents,
		TransactionID: result.TransactionID,
	})

	s.logger.Info("Full payment processed",
		zap.String("payment_id", paymentID),
		zap.Int64("amount_cents", req.AmountCents),
		zap.String("transaction_id", result.TransactionID))

	return &PaymentOutcome{
		PaymentID:    paymentID,
		Message:      "Payment processed successfully",
		ChargedCents: req.AmountCents,
	}, nil
}

// submitInstallment builds the plan, persists it and charges the first
// installment. A failed first charge leaves the payment and the remaining
// installments pending instead of abandoning the plan.
func (s *PaymentService) submitInstallment(ctx context.Context, paymentID string, req *SubmitRequest) (*PaymentOutcome, error) {
	amounts, err := plan.Allocate(req.AmountCents, req.DownPaymentCents, req.InstallmentCount)
	if err != nil {
		return nil, err
	}

	payment := s.buildPayment(paymentID, req)
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to persist payment: %w", err)
	}

	hasDownPayment := req.DownPaymentCents > 0
	now := time.Now()
	installments := make([]*model.Installment, len(amounts))
	for i, amount := range amounts {
		sequence := i + 1
		installments[i] = &model.Installment{
			ID:          uuid.New().String(),
			PaymentID:   paymentID,
			Sequence:    sequence,
			AmountCents: amount,
			DueDate:     plan.DueDate(sequence, hasDownPayment, now),
			Status:      model.InstallmentStatusPending,
		}
	}

	if err := s.installmentRepo.CreateBatch(ctx, installments); err != nil {
		return nil, fmt.Errorf("failed to persist installments: %w", err)
	}

	s.logger.Info("Installment plan created",
		zap.String("payment_id", paymentID),
		zap.Int("installments", len(installments)),
		zap.Int64("total_cents", req.AmountCents),
		zap.Int64("down_payment_cents", req.DownPaymentCents))

	first := installments[0]
	outcome := s.ChargeInstallment(ctx, first, payment)
	if outcome.Err != nil {
		return nil, outcome.Err
	}

	result := &PaymentOutcome{
		PaymentID:        paymentID,
		Message:          "Installment plan created. First installment processed.",
		ChargedCents:     first.AmountCents,
		InstallmentCount: req.InstallmentCount,
	}
	if len(installments) > 1 {
		next := installments[1].DueDate
		result.NextPaymentDate = &next
	}

	return result, nil
}

// ChargeInstallment attempts to charge one installment. It claims the
// installment (pending to processing) before calling the gateway so a crash
// mid-call leaves a visible in-flight record and no duplicate charge can run.
// Gateway declines are reported in the outcome, never raised.
func (s *PaymentService) ChargeInstallment(ctx context.Context, installment *model.Installment, payment *model.Payment) *ChargeOutcome {
	outcome := &ChargeOutcome{
		InstallmentID: installment.ID,
		PaymentID:     payment.ID,
		Sequence:      installment.Sequence,
	}

	claimed, err := s.installmentRepo.ClaimForProcessing(ctx, installment.ID)
	if err != nil {
		outcome.Err = fmt.Errorf("failed to claim installment %s: %w", installment.ID, err)
		return outcome
	}
	if !claimed {
		s.logger.Warn("Installment already claimed, skipping charge",
			zap.String("installment_id", installment.ID),
			zap.String("payment_id", payment.ID),
			zap.Int("sequence", installment.Sequence))
		// The concurrent owner decides the final status; the in-memory row
		// is stale, so no status is reported.
		outcome.Duplicate = true
		return outcome
	}
	outcome.Status = model.InstallmentStatusProcessing

	req := &SubmitRequest{
		CustomerName:  payment.CustomerName,
		CustomerEmail: payment.CustomerEmail,
	}
	if payment.CustomerPhone != nil {
		req.CustomerPhone = *payment.CustomerPhone
	}

	result, chargeErr := s.charge(ctx, installment.AmountCents, installment.ID, req,
		fmt.Sprintf("Installment %d for payment %s", installment.Sequence, payment.ID))

	if chargeErr != nil {
		if err := s.installmentRepo.MarkFailed(ctx, installment.ID); err != nil {
			s.logger.Error("Failed to mark installment failed",
				zap.String("installment_id", installment.ID),
				zap.Error(err))
		}
		outcome.Status = model.InstallmentStatusFailed
		outcome.Err = chargeErr

		s.publish(ctx, events.PaymentEvent{
			EventType:     events.EventTypeInstallmentFailed,
			PaymentID:     payment.ID,
			InstallmentID: installment.ID,
			Sequence:      installment.Sequence,
			AmountCents:   installment.AmountCents,
		})

		return outcome
	}

	if err := s.installmentRepo.MarkPaid(ctx, installment.ID, result.TransactionID); err != nil {
		outcome.Err = fmt.Errorf("charge succeeded but failed to record it: %w", err)
		return outcome
	}
	outcome.Status = model.InstallmentStatusPaid
	outcome.TransactionID = result.TransactionID

	s.logger.Info("Installment charged",
		zap.String("installment_id", installment.ID),
		zap.String("payment_id", payment.ID),
		zap.Int("sequence", installment.Sequence),
		zap.Int64("amount_cents", installment.AmountCents),
		zap.String("transaction_id", result.TransactionID))

	s.publish(ctx, events.PaymentEvent{
		EventType:     events.EventTypeInstallmentPaid,
		PaymentID:     payment.ID,
		InstallmentID: installment.ID,
		Sequence:      installment.Sequence,
		AmountCents:   installment.AmountCents,
		TransactionID: result.TransactionID,
	})

	s.completeIfSettled(ctx, payment)

	return outcome
}

// completeIfSettled re-reads sibling state after the paid write and promotes
// the payment to completed when nothing unpaid remains. The CAS guard keeps
// concurrent completers from double-firing.
func (s *PaymentService) completeIfSettled(ctx context.Context, payment *model.Payment) {
	unpaid, err := s.installmentRepo.CountUnpaid(ctx, payment.ID)
	if err != nil {
		s.logger.Error("Failed to check remaining installments",
			zap.String("payment_id", payment.ID),
			zap.Error(err))
		return
	}
	if unpaid > 0 {
		return
	}

	swapped, err := s.paymentRepo.UpdateStatusFrom(ctx, payment.ID, model.PaymentStatusPending, model.PaymentStatusCompleted)
	if err != nil {
		s.logger.Error("Failed to complete payment",
			zap.String("payment_id", payment.ID),
			zap.Error(err))
		return
	}
	if !swapped {
		return
	}

	s.invalidateCache(ctx, payment.ID)
	s.logger.Info("All installments paid, payment completed",
		zap.String("payment_id", payment.ID))

	s.publish(ctx, events.PaymentEvent{
		EventType:   events.EventTypePaymentCompleted,
		PaymentID:   payment.ID,
		AmountCents: payment.TotalAmountCents,
	})
}

// charge calls the gateway and normalizes both transport errors and business
// declines into a GATEWAY domain error.
func (s *PaymentService) charge(ctx context.Context, amountCents int64, referenceID string, req *SubmitRequest, description string) (*provider.ChargeResult, error) {
	start := time.Now()
	result, err := s.gateway.Charge(ctx, &provider.ChargeRequest{
		AmountCents: amountCents,
		Currency:    s.currency,
		ReferenceID: referenceID,
		Customer: provider.Customer{
			Name:  req.CustomerName,
			Email: req.CustomerEmail,
			Phone: req.CustomerPhone,
		},
		Description: description,
	})
	metrics.GatewayChargeDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.GatewayCharges.WithLabelValues(s.gateway.Name(), "error").Inc()
		return nil, domainErrors.NewGatewayError("charge attempt failed", err)
	}
	if !result.Success {
		metrics.GatewayCharges.WithLabelValues(s.gateway.Name(), "declined").Inc()
		message := result.Message
		if message == "" {
			message = "charge declined"
		}
		return nil, domainErrors.NewGatewayError(message, nil)
	}

	metrics.GatewayCharges.WithLabelValues(s.gateway.Name(), "success").Inc()
	return result, nil
}

// GetPayment looks a payment up, reading through the cache when one is
// configured.
func (s *PaymentService) GetPayment(ctx context.Context, id string) (*model.Payment, error) {
	if id == "" {
		return nil, domainErrors.NewValidationError("payment ID is required")
	}

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, id)
		if err != nil {
			s.logger.Warn("Payment cache read failed",
				zap.String("payment_id", id),
				zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	payment, err := s.paymentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, domainErrors.NewNotFoundError("payment", id)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, payment); err != nil {
			s.logger.Warn("Payment cache write failed",
				zap.String("payment_id", id),
				zap.Error(err))
		}
	}

	return payment, nil
}

// GetInstallments returns a payment's installments ordered by sequence.
func (s *PaymentService) GetInstallments(ctx context.Context, paymentID string) ([]model.Installment, error) {
	payment, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, domainErrors.NewNotFoundError("payment", paymentID)
	}

	return s.installmentRepo.GetByPaymentID(ctx, paymentID)
}

// Cancel moves a pending payment to cancelled.
func (s *PaymentService) Cancel(ctx context.Context, id string) error {
	payment, err := s.paymentRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if payment == nil {
		return domainErrors.NewNotFoundError("payment", id)
	}

	if !payment.Status.CanTransitionTo(model.PaymentStatusCancelled) {
		return domainErrors.NewInvalidTransitionError(string(payment.Status), string(model.PaymentStatusCancelled))
	}

	swapped, err := s.paymentRepo.UpdateStatusFrom(ctx, id, model.PaymentStatusPending, model.PaymentStatusCancelled)
	if err != nil {
		return err
	}
	if !swapped {
		// The payment moved to a terminal state between the read and the swap.
		return domainErrors.NewInvalidTransitionError(string(payment.Status), string(model.PaymentStatusCancelled))
	}

	s.invalidateCache(ctx, id)
	s.logger.Info("Payment cancelled", zap.String("payment_id", id))

	return nil
}

func (s *PaymentService) buildPayment(paymentID string, req *SubmitRequest) *model.Payment {
	payment := &model.Payment{
		ID:               paymentID,
		CustomerName:     req.CustomerName,
		CustomerEmail:    req.CustomerEmail,
		TotalAmountCents: req.AmountCents,
		PaymentType:      req.PaymentType,
		Status:           model.PaymentStatusPending,
	}
	if req.CustomerPhone != "" {
		phone := req.CustomerPhone
		payment.CustomerPhone = &phone
	}
	if req.PaymentType == model.PaymentTypeInstallment {
		count := req.InstallmentCount
		payment.InstallmentCount = &count
		if req.DownPaymentCents > 0 {
			down := req.DownPaymentCents
			payment.DownPaymentCents = &down
		}
	}
	return payment
}

func (s *PaymentService) invalidateCache(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, id); err != nil {
		s.logger.Warn("Payment cache invalidation failed",
			zap.String("payment_id", id),
			zap.Error(err))
	}
}

func (s *PaymentService) publish(ctx context.Context, event events.PaymentEvent) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish payment event",
			zap.String("event_type", event.EventType),
			zap.String("payment_id", event.PaymentID),
			zap.Error(err))
	}
}
