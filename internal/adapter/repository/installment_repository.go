package repository

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/flexpay/payment-service/internal/domain/model"
	domainRepo "github.com/flexpay/payment-service/internal/domain/repository"
)

// installmentRepository implements the InstallmentRepository interface on GORM.
type installmentRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewInstallmentRepository creates a new installment repository instance
func NewInstallmentRepository(db *gorm.DB, logger *zap.Logger) domainRepo.InstallmentRepository {
	return &installmentRepository{
		db:     db,
		logger: logger,
	}
}

// CreateBatch persists a plan's installments atomically, so a plan is either
// fully recorded or not recorded at all.
func (r *installmentRepository) CreateBatch(ctx context.Context, installments []*model.Installment) error {
	if len(installments) == 0 {
		return nil
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(installments).Error
	})

	if err != nil {
		r.logger.Error("Failed to create installments",
			zap.String("payment_id", installments[0].PaymentID),
			zap.Int("count", len(installments)),
			zap.Error(err))
		return fmt.Errorf("failed to create installments: %w", err)
	}

	return nil
}

func (r *installmentRepository) GetByPaymentID(ctx context.Context, paymentID string) ([]model.Installment, error) {
	var installments []model.Installment

	err := r.db.WithContext(ctx).
		Where("payment_id = ?", paymentID).
		Order("sequence ASC").
		Find(&installments).Error

	if err != nil {
		r.logger.Error("Failed to get installments by payment ID",
			zap.String("payment_id", paymentID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get installments: %w", err)
	}

	return installments, nil
}

func (r *installmentRepository) GetDueUnpaid(ctx context.Context, asOf time.Time) ([]model.Installment, error) {
	var installments []model.Installment

	err := r.db.WithContext(ctx).
		Where("status = ? AND due_date <= ?", model.InstallmentStatusPending, asOf).
		Order("due_date ASC").
		Find(&installments).Error

	if err != nil {
		r.logger.Error("Failed to get due unpaid installments",
			zap.Time("as_of", asOf),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get due installments: %w", err)
	}

	return installments, nil
}

// ClaimForProcessing is the mutual-exclusion step before a charge: only one
// caller can move a pending installment to processing, so the gateway is
// never charged twice for the same installment.
func (r *installmentRepository) ClaimForProcessing(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Installment{}).
		Where("id = ? AND status = ?", id, model.InstallmentStatusPending).
		Updates(map[string]interface{}{
			"status":     model.InstallmentStatusProcessing,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		r.logger.Error("Failed to claim installment for processing",
			zap.String("installment_id", id),
			zap.Error(result.Error))
		return false, fmt.Errorf("failed to claim installment: %w", result.Error)
	}

	return result.RowsAffected > 0, nil
}

func (r *installmentRepository) MarkPaid(ctx context.Context, id string, transactionID string) error {
	result := r.db.WithContext(ctx).
		Model(&model.Installment{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":         model.InstallmentStatusPaid,
			"transaction_id": transactionID,
			"updated_at":     time.Now(),
		})

	if result.Error != nil {
		r.logger.Error("Failed to mark installment paid",
			zap.String("installment_id", id),
			zap.String("transaction_id", transactionID),
			zap.Error(result.Error))
		return fmt.Errorf("failed to mark installment paid: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("installment not found: %s", id)
	}

	return nil
}

func (r *installmentRepository) MarkFailed(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Model(&model.Installment{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     model.InstallmentStatusFailed,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		r.logger.Error("Failed to mark installment failed",
			zap.String("installment_id", id),
			zap.Error(result.Error))
		return fmt.Errorf("failed to mark installment failed: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("installment not found: %s", id)
	}

	return nil
}

func (r *installmentRepository) CountUnpaid(ctx context.Context, paymentID string) (int64, error) {
	var count int64

	err := r.db.WithContext(ctx).
		Model(&model.Installment{}).
		Where("payment_id = ? AND status != ?", paymentID, model.InstallmentStatusPaid).
		Count(&count).Error

	if err != nil {
		r.logger.Error("Failed to count unpaid installments",
			zap.String("payment_id", paymentID),
			zap.Error(err))
		return 0, fmt.Errorf("failed to count unpaid installments: %w", err)
	}

	return count, nil
}
