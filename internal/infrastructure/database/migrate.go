package database

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/flexpay/payment-service/internal/domain/model"
)

// Migrate runs database migrations
func Migrate(db *gorm.DB, logger *zap.Logger) error {
	logger.Info("Running database migrations...")

	err := db.AutoMigrate(
		&model.Payment{},
		&model.Installment{},
	)
	if err != nil {
		logger.Error("Failed to run migrations", zap.Error(err))
		return err
	}

	if err := createCustomIndexes(db); err != nil {
		logger.Error("Failed to create custom indexes", zap.Error(err))
		return err
	}

	logger.Info("Database migrations completed successfully")
	return nil
}

// createCustomIndexes creates partial indexes that GORM tags cannot express.
// The due-date index backs the reconciliation sweep, which only ever scans
// pending rows.
func createCustomIndexes(db *gorm.DB) error {
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_installments_due_pending ON installments (due_date) WHERE status = 'pending'`).Error; err != nil {
		return err
	}

	// The retention survey filters and orders failed payments by updated_at.
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_payments_failed_updated ON payments (updated_at) WHERE status = 'failed'`).Error; err != nil {
		return err
	}

	return nil
}
