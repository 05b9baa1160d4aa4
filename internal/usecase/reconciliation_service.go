package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"

	domainErrors "github.com/flexpay/payment-service/internal/domain/errors"
	"github.com/flexpay/payment-service/internal/domain/model"
	"github.com/flexpay/payment-service/internal/domain/repository"
	"github.com/flexpay/payment-service/internal/metrics"
)

// BatchFailure describes one installment that could not be charged during a
// reconciliation sweep.
type BatchFailure struct {
	InstallmentID string `json:"installment_id"`
	PaymentID     string `json:"payment_id"`
	Sequence      int    `json:"sequence"`
	Reason        string `json:"reason"`
}

// BatchReport summarizes one reconciliation sweep.
type BatchReport struct {
	Total     int            `json:"total"`
	Succeeded int            `json:"succeeded"`
	Failed    int            `json:"failed"`
	Skipped   int            `json:"skipped"`
	Failures  []BatchFailure `json:"failures,omitempty"`
	StartedAt time.Time      `json:"started_at"`
	Duration  time.Duration  `json:"duration"`
}

// ReconciliationService drives due, unpaid installments to completion and
// performs housekeeping over long-dead failed records.
type ReconciliationService struct {
	paymentRepo     repository.PaymentRepository
	installmentRepo repository.InstallmentRepository
	payments        *PaymentService
	failedRetention time.Duration
	logger          *zap.Logger
}

// NewReconciliationService creates a new reconciliation service.
func NewReconciliationService(
	paymentRepo repository.PaymentRepository,
	installmentRepo repository.InstallmentRepository,
	payments *PaymentService,
	failedRetention time.Duration,
	logger *zap.Logger,
) *ReconciliationService {
	return &ReconciliationService{
		paymentRepo:     paymentRepo,
		installmentRepo: installmentRepo,
		payments:        payments,
		failedRetention: failedRetention,
		logger:          logger,
	}
}

// ProcessDueInstallments charges every pending installment due on or before
// asOf, earliest due first. Failures are isolated per item: a declined charge
// or a missing owning payment is recorded in the report and the sweep
// continues. Cancelling the context stops new charges; the in-flight one runs
// to completion.
func (s *ReconciliationService) ProcessDueInstallments(ctx context.Context, asOf time.Time) (*BatchReport, error) {
	metrics.ReconciliationRuns.Inc()

	report := &BatchReport{StartedAt: time.Now()}
	defer func() { report.Duration = time.Since(report.StartedAt) }()

	due, err := s.installmentRepo.GetDueUnpaid(ctx, asOf)
	if err != nil {
		return nil, err
	}

	report.Total = len(due)
	if len(due) == 0 {
		s.logger.Info("No due installments to process")
		return report, nil
	}

	s.logger.Info("Processing due installments",
		zap.Int("count", len(due)),
		zap.Time("as_of", asOf))

	for i := range due {
		if ctx.Err() != nil {
			s.logger.Warn("Reconciliation stopped before finishing the batch",
				zap.Int("processed", i),
				zap.Int("remaining", len(due)-i))
			break
		}

		installment := &due[i]

		payment, err := s.paymentRepo.GetByID(ctx, installment.PaymentID)
		if err != nil {
			report.Failed++
			report.Failures = append(report.Failures, BatchFailure{
				InstallmentID: installment.ID,
				PaymentID:     installment.PaymentID,
				Sequence:      installment.Sequence,
				Reason:        err.Error(),
			})
			metrics.ReconciliationItems.WithLabelValues("error").Inc()
			continue
		}
		if payment == nil {
			orphan := domainErrors.NewOrphanInstallmentError(installment.ID, installment.PaymentID)
			s.logger.Error("Orphan installment found during reconciliation",
				zap.String("installment_id", installment.ID),
				zap.String("payment_id", installment.PaymentID))
			report.Skipped++
			report.Failures = append(report.Failures, BatchFailure{
				InstallmentID: installment.ID,
				PaymentID:     installment.PaymentID,
				Sequence:      installment.Sequence,
				Reason:        orphan.Error(),
			})
			metrics.ReconciliationItems.WithLabelValues("orphan").Inc()
			continue
		}

		// A cancelled, completed or failed payment must never be charged
		// again; its leftover pending installments are dead rows.
		if payment.Status != model.PaymentStatusPending {
			s.logger.Info("Skipping installment of inactive payment",
				zap.String("installment_id", installment.ID),
				zap.String("payment_id", payment.ID),
				zap.String("payment_status", string(payment.Status)))
			report.Skipped++
			metrics.ReconciliationItems.WithLabelValues("inactive").Inc()
			continue
		}

		outcome := s.payments.ChargeInstallment(ctx, installment, payment)
		switch {
		case outcome.Succeeded():
			report.Succeeded++
			metrics.ReconciliationItems.WithLabelValues("paid").Inc()
		case outcome.Duplicate:
			report.Skipped++
			metrics.ReconciliationItems.WithLabelValues("duplicate").Inc()
		default:
			report.Failed++
			report.Failures = append(report.Failures, BatchFailure{
				InstallmentID: installment.ID,
				PaymentID:     installment.PaymentID,
				Sequence:      installment.Sequence,
				Reason:        outcome.Err.Error(),
			})
			metrics.ReconciliationItems.WithLabelValues("failed").Inc()
		}
	}

	s.logger.Info("Finished processing due installments",
		zap.Int("total", report.Total),
		zap.Int("succeeded", report.Succeeded),
		zap.Int("failed", report.Failed),
		zap.Int("skipped", report.Skipped))

	return report, nil
}

// CleanupExpiredRecords surveys failed payments older than the retention
// window. It only reports; active plans are never touched and records are
// never deleted.
func (s *ReconciliationService) CleanupExpiredRecords(ctx context.Context, asOf time.Time) error {
	cutoff := asOf.Add(-s.failedRetention)

	expired, err := s.paymentRepo.ListFailedBefore(ctx, cutoff)
	if err != nil {
		return err
	}

	if len(expired) == 0 {
		s.logger.Info("No expired failed payments found", zap.Time("cutoff", cutoff))
		return nil
	}

	for _, payment := range expired {
		s.logger.Warn("Failed payment past retention window",
			zap.String("payment_id", payment.ID),
			zap.Time("updated_at", payment.UpdatedAt),
			zap.Int64("total_cents", payment.TotalAmountCents))
	}

	s.logger.Info("Cleanup sweep finished",
		zap.Int("expired_failed_payments", len(expired)),
		zap.Time("cutoff", cutoff))

	return nil
}
