package repository

import (
	"context"
	"time"

	"github.com/flexpay/payment-service/internal/domain/model"
)

// PaymentRepository is the record store for payments.
type PaymentRepository interface {
	Create(ctx context.Context, payment *model.Payment) error
	// GetByID returns nil, nil when the payment does not exist.
	GetByID(ctx context.Context, id string) (*model.Payment, error)
	// UpdateStatusFrom performs a compare-and-swap status update and reports
	// whether a row actually changed.
	UpdateStatusFrom(ctx context.Context, id string, from, to model.PaymentStatus) (bool, error)
	// ListFailedBefore returns failed payments last updated before the cutoff.
	ListFailedBefore(ctx context.Context, cutoff time.Time) ([]model.Payment, error)
}
