// Package plan holds the pure plan-building logic: splitting a total into
// near-equal installment amounts and assigning due dates.
package plan

import (
	"fmt"

	domainErrors "github.com/flexpay/payment-service/internal/domain/errors"
)

// Allocate splits totalCents into installment amounts in minor currency units.
//
// With a down payment the result has count+1 entries: the down payment first,
// followed by count entries splitting the remainder. Without one the result
// has count entries splitting the total. base = remaining/count and the first
// remaining%count split entries carry one extra cent, so the amounts always
// sum back to totalCents exactly.
func Allocate(totalCents, downPaymentCents int64, count int) ([]int64, error) {
	if count <= 0 {
		return nil, domainErrors.NewInvalidAllocationError(fmt.Sprintf("installment count must be positive, got %d", count))
	}
	if totalCents <= 0 {
		return nil, domainErrors.NewInvalidAllocationError(fmt.Sprintf("total amount must be positive, got %d", totalCents))
	}
	if downPaymentCents < 0 {
		return nil, domainErrors.NewInvalidAllocationError(fmt.Sprintf("down payment cannot be negative, got %d", downPaymentCents))
	}
	if downPaymentCents >= totalCents {
		return nil, domainErrors.NewInvalidAllocationError(
			fmt.Sprintf("down payment %d must be less than total %d", downPaymentCents, totalCents))
	}

	remaining := totalCents - downPaymentCents
	base := remaining / int64(count)
	remainder := remaining % int64(count)

	var amounts []int64
	if downPaymentCents > 0 {
		amounts = make([]int64, 0, count+1)
		amounts = append(amounts, downPaymentCents)
	} else {
		amounts = make([]int64, 0, count)
	}

	for i := int64(0); i < int64(count); i++ {
		amount := base
		if i < remainder {
			amount++
		}
		amounts = append(amounts, amount)
	}

	return amounts, nil
}
