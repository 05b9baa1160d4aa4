package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/flexpay/payment-service/internal/domain/model"
	domainRepo "github.com/flexpay/payment-service/internal/domain/repository"
)

// paymentRepository implements the PaymentRepository interface on GORM.
type paymentRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewPaymentRepository creates a new payment repository instance
func NewPaymentRepository(db *gorm.DB, logger *zap.Logger) domainRepo.PaymentRepository {
	return &paymentRepository{
		db:     db,
		logger: logger,
	}
}

func (r *paymentRepository) Create(ctx context.Context, payment *model.Payment) error {
	err := r.db.WithContext(ctx).Create(payment).Error
	if err != nil {
		r.logger.Error("Failed to create payment",
			zap.String("payment_id", payment.ID),
			zap.Error(err))
		return fmt.Errorf("failed to create payment: %w", err)
	}

	return nil
}

func (r *paymentRepository) GetByID(ctx context.Context, id string) (*model.Payment, error) {
	var payment model.Payment

	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&payment).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Error("Failed to get payment by ID",
			zap.String("payment_id", id),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}

	return &payment, nil
}

// UpdateStatusFrom only updates when the current status matches from, so
// concurrent completers cannot overwrite a terminal state.
func (r *paymentRepository) UpdateStatusFrom(ctx context.Context, id string, from, to model.PaymentStatus) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Payment{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{
			"status":     to,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		r.logger.Error("Failed to update payment status",
			zap.String("payment_id", id),
			zap.String("from", string(from)),
			zap.String("to", string(to)),
			zap.Error(result.Error))
		return false, fmt.Errorf("failed to update payment status: %w", result.Error)
	}

	return result.RowsAffected > 0, nil
}

func (r *paymentRepository) ListFailedBefore(ctx context.Context, cutoff time.Time) ([]model.Payment, error) {
	var payments []model.Payment

	err := r.db.WithContext(ctx).
		Where("status = ? AND updated_at < ?", model.PaymentStatusFailed, cutoff).
		Order("updated_at ASC").
		Find(&payments).Error

	if err != nil {
		r.logger.Error("Failed to list failed payments",
			zap.Time("cutoff", cutoff),
			zap.Error(err))
		return nil, fmt.Errorf("failed to list failed payments: %w", err)
	}

	return payments, nil
}
