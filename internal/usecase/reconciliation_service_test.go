package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/flexpay/payment-service/internal/domain/model"
	"github.com/flexpay/payment-service/internal/domain/provider"
	"github.com/flexpay/payment-service/internal/events"
	"github.com/flexpay/payment-service/internal/usecase"
)

func newReconciliationService(paymentRepo *MockPaymentRepository, installmentRepo *MockInstallmentRepository, gateway *MockGatewayClient) *usecase.ReconciliationService {
	payments := usecase.NewPaymentService(
		paymentRepo, installmentRepo, nil, gateway, events.NewNoopPublisher(), "USD", zap.NewNop(),
	)
	return usecase.NewReconciliationService(
		paymentRepo, installmentRepo, payments, 30*24*time.Hour, zap.NewNop(),
	)
}

func dueInstallments(paymentID string, n int) []model.Installment {
	due := make([]model.Installment, n)
	for i := range due {
		due[i] = model.Installment{
			ID:          "inst-" + string(rune('1'+i)),
			PaymentID:   paymentID,
			Sequence:    i + 1,
			AmountCents: 3000,
			DueDate:     time.Now().Add(-time.Duration(n-i) * time.Hour),
			Status:      model.InstallmentStatusPending,
		}
	}
	return due
}

func TestReconciliationService_ProcessDueInstallments(t *testing.T) {
	ctx := context.Background()
	asOf := time.Now()

	payment := &model.Payment{
		ID:               "pay-1",
		CustomerName:     "Jordan Fisher",
		CustomerEmail:    "jordan@example.com",
		TotalAmountCents: 15000,
		PaymentType:      model.PaymentTypeInstallment,
		Status:           model.PaymentStatusPending,
	}

	t.Run("one decline does not stop the sweep", func(t *testing.T) {
		paymentRepo := new(MockPaymentRepository)
		installmentRepo := new(MockInstallmentRepository)
		gateway := new(MockGatewayClient)
		service := newReconciliationService(paymentRepo, installmentRepo, gateway)

		installmentRepo.On("GetDueUnpaid", ctx, asOf).Return(dueInstallments("pay-1", 5), nil)
		paymentRepo.On("GetByID", ctx, "pay-1").Return(payment, nil)
		installmentRepo.On("ClaimForProcessing", ctx, mock.AnythingOfType("string")).Return(true, nil)

		// Only the third installment is declined.
		gateway.On("Charge", ctx, mock.MatchedBy(func(req *provider.ChargeRequest) bool {
			return req.ReferenceID == "inst-3"
		})).Return(&provider.ChargeResult{Success: false, Message: "card declined"}, nil)
		gateway.On("Charge", ctx, mock.MatchedBy(func(req *provider.ChargeRequest) bool {
			return req.ReferenceID != "inst-3"
		})).Return(successfulCharge("txn-ok", 3000), nil)

		installmentRepo.On("MarkPaid", ctx, mock.AnythingOfType("string"), "txn-ok").Return(nil)
		installmentRepo.On("MarkFailed", ctx, "inst-3").Return(nil)
		installmentRepo.On("CountUnpaid", ctx, "pay-1").Return(int64(1), nil)

		report, err := service.ProcessDueInstallments(ctx, asOf)

		assert.NoError(t, err)
		assert.Equal(t, 5, report.Total)
		assert.Equal(t, 4, report.Succeeded)
		assert.Equal(t, 1, report.Failed)
		assert.Equal(t, 0, report.Skipped)
		assert.Len(t, report.Failures, 1)
		assert.Equal(t, "inst-3", report.Failures[0].InstallmentID)
		assert.Contains(t, report.Failures[0].Reason, "card declined")
	})

	t.Run("orphan installment is skipped", func(t *testing.T) {
		paymentRepo := new(MockPaymentRepository)
		installmentRepo := new(MockInstallmentRepository)
		gateway := new(MockGatewayClient)
		service := newReconciliationService(paymentRepo, installmentRepo, gateway)

		installmentRepo.On("GetDueUnpaid", ctx, asOf).Return(dueInstallments("pay-gone", 1), nil)
		paymentRepo.On("GetByID", ctx, "pay-gone").Return(nil, nil)

		report, err := service.ProcessDueInstallments(ctx, asOf)

		assert.NoError(t, err)
		assert.Equal(t, 1, report.Total)
		assert.Equal(t, 1, report.Skipped)
		assert.Zero(t, report.Succeeded)
		assert.Len(t, report.Failures, 1)
		gateway.AssertNotCalled(t, "Charge", mock.Anything, mock.Anything)
	})

	t.Run("cancelled payment's due installments are never charged", func(t *testing.T) {
		paymentRepo := new(MockPaymentRepository)
		installmentRepo := new(MockInstallmentRepository)
		gateway := new(MockGatewayClient)
		service := newReconciliationService(paymentRepo, installmentRepo, gateway)

		cancelled := &model.Payment{
			ID:               "pay-cancelled",
			CustomerName:     "Jordan Fisher",
			CustomerEmail:    "jordan@example.com",
			TotalAmountCents: 9000,
			PaymentType:      model.PaymentTypeInstallment,
			Status:           model.PaymentStatusCancelled,
		}
		installmentRepo.On("GetDueUnpaid", ctx, asOf).Return(dueInstallments("pay-cancelled", 2), nil)
		paymentRepo.On("GetByID", ctx, "pay-cancelled").Return(cancelled, nil)

		report, err := service.ProcessDueInstallments(ctx, asOf)

		assert.NoError(t, err)
		assert.Equal(t, 2, report.Total)
		assert.Equal(t, 2, report.Skipped)
		assert.Zero(t, report.Succeeded)
		assert.Zero(t, report.Failed)
		gateway.AssertNotCalled(t, "Charge", mock.Anything, mock.Anything)
		installmentRepo.AssertNotCalled(t, "ClaimForProcessing", mock.Anything, mock.Anything)
	})

	t.Run("completed payment's leftover rows are skipped", func(t *testing.T) {
		paymentRepo := new(MockPaymentRepository)
		installmentRepo := new(MockInstallmentRepository)
		gateway := new(MockGatewayClient)
		service := newReconciliationService(paymentRepo, installmentRepo, gateway)

		completed := &model.Payment{
			ID:     "pay-done",
			Status: model.PaymentStatusCompleted,
		}
		installmentRepo.On("GetDueUnpaid", ctx, asOf).Return(dueInstallments("pay-done", 1), nil)
		paymentRepo.On("GetByID", ctx, "pay-done").Return(completed, nil)

		report, err := service.ProcessDueInstallments(ctx, asOf)

		assert.NoError(t, err)
		assert.Equal(t, 1, report.Skipped)
		gateway.AssertNotCalled(t, "Charge", mock.Anything, mock.Anything)
	})

	t.Run("already claimed installment counts as skipped", func(t *testing.T) {
		paymentRepo := new(MockPaymentRepository)
		installmentRepo := new(MockInstallmentRepository)
		gateway := new(MockGatewayClient)
		service := newReconciliationService(paymentRepo, installmentRepo, gateway)

		installmentRepo.On("GetDueUnpaid", ctx, asOf).Return(dueInstallments("pay-1", 1), nil)
		paymentRepo.On("GetByID", ctx, "pay-1").Return(payment, nil)
		installmentRepo.On("ClaimForProcessing", ctx, "inst-1").Return(false, nil)

		report, err := service.ProcessDueInstallments(ctx, asOf)

		assert.NoError(t, err)
		assert.Equal(t, 1, report.Skipped)
		assert.Zero(t, report.Failed)
		gateway.AssertNotCalled(t, "Charge", mock.Anything, mock.Anything)
	})

	t.Run("empty batch returns an empty report", func(t *testing.T) {
		paymentRepo := new(MockPaymentRepository)
		installmentRepo := new(MockInstallmentRepository)
		gateway := new(MockGatewayClient)
		service := newReconciliationService(paymentRepo, installmentRepo, gateway)

		installmentRepo.On("GetDueUnpaid", ctx, asOf).Return([]model.Installment{}, nil)

		report, err := service.ProcessDueInstallments(ctx, asOf)

		assert.NoError(t, err)
		assert.Zero(t, report.Total)
	})

	t.Run("cancelled context stops before charging", func(t *testing.T) {
		paymentRepo := new(MockPaymentRepository)
		installmentRepo := new(MockInstallmentRepository)
		gateway := new(MockGatewayClient)
		service := newReconciliationService(paymentRepo, installmentRepo, gateway)

		cancelled, cancel := context.WithCancel(context.Background())
		cancel()

		installmentRepo.On("GetDueUnpaid", cancelled, asOf).Return(dueInstallments("pay-1", 3), nil)

		report, err := service.ProcessDueInstallments(cancelled, asOf)

		assert.NoError(t, err)
		assert.Equal(t, 3, report.Total)
		assert.Zero(t, report.Succeeded)
		gateway.AssertNotCalled(t, "Charge", mock.Anything, mock.Anything)
	})
}

func TestReconciliationService_CleanupExpiredRecords(t *testing.T) {
	ctx := context.Background()
	asOf := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	t.Run("surveys using the retention cutoff", func(t *testing.T) {
		paymentRepo := new(MockPaymentRepository)
		installmentRepo := new(MockInstallmentRepository)
		gateway := new(MockGatewayClient)
		service := newReconciliationService(paymentRepo, installmentRepo, gateway)

		cutoff := asOf.Add(-30 * 24 * time.Hour)
		paymentRepo.On("ListFailedBefore", ctx, cutoff).Return([]model.Payment{
			{ID: "pay-old", Status: model.PaymentStatusFailed, TotalAmountCents: 5000},
		}, nil)

		err := service.CleanupExpiredRecords(ctx, asOf)

		assert.NoError(t, err)
		paymentRepo.AssertExpectations(t)
	})

	t.Run("nothing expired is not an error", func(t *testing.T) {
		paymentRepo := new(MockPaymentRepository)
		installmentRepo := new(MockInstallmentRepository)
		gateway := new(MockGatewayClient)
		service := newReconciliationService(paymentRepo, installmentRepo, gateway)

		paymentRepo.On("ListFailedBefore", ctx, mock.AnythingOfType("time.Time")).Return([]model.Payment{}, nil)

		assert.NoError(t, service.CleanupExpiredRecords(ctx, asOf))
	})
}
