package repository

import (
	"context"

	"github.com/flexpay/payment-service/internal/domain/model"
)

// PaymentCache is a read-through cache for payment lookups. A miss returns
// nil, nil; cache failures are soft and never fail the lookup path.
type PaymentCache interface {
	Get(ctx context.Context, id string) (*model.Payment, error)
	Set(ctx context.Context, payment *model.Payment) error
	Invalidate(ctx context.Context, id string) error
}
