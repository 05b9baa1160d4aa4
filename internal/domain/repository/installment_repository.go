package repository

import (
	"context"
	"time"

	"github.com/flexpay/payment-service/internal/domain/model"
)

// InstallmentRepository is the record store for installments.
type InstallmentRepository interface {
	// CreateBatch persists all installments of a plan in one transaction.
	CreateBatch(ctx context.Context, installments []*model.Installment) error
	// GetByPaymentID returns the payment's installments ordered by sequence.
	GetByPaymentID(ctx context.Context, paymentID string) ([]model.Installment, error)
	// GetDueUnpaid returns pending installments due on or before asOf,
	// ordered by due date ascending.
	GetDueUnpaid(ctx context.Context, asOf time.Time) ([]model.Installment, error)
	// ClaimForProcessing atomically moves a pending installment to
	// processing and reports whether this caller won the claim. A false
	// result means another charge attempt already owns the installment.
	ClaimForProcessing(ctx context.Context, id string) (bool, error)
	MarkPaid(ctx context.Context, id string, transactionID string) error
	MarkFailed(ctx context.Context, id string) error
	// CountUnpaid counts the payment's installments not yet paid.
	CountUnpaid(ctx context.Context, paymentID string) (int64, error)
}
