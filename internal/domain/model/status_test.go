package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaymentStatusTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    PaymentStatus
		to      PaymentStatus
		allowed bool
	}{
		{"pending to completed", PaymentStatusPending, PaymentStatusCompleted, true},
		{"pending to failed", PaymentStatusPending, PaymentStatusFailed, true},
		{"pending to cancelled", PaymentStatusPending, PaymentStatusCancelled, true},
		{"completed is terminal", PaymentStatusCompleted, PaymentStatusPending, false},
		{"completed to cancelled", PaymentStatusCompleted, PaymentStatusCancelled, false},
		{"failed is terminal", PaymentStatusFailed, PaymentStatusCompleted, false},
		{"cancelled is terminal", PaymentStatusCancelled, PaymentStatusPending, false},
		{"no self transition", PaymentStatusPending, PaymentStatusPending, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestInstallmentStatusTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    InstallmentStatus
		to      InstallmentStatus
		allowed bool
	}{
		{"pending to processing", InstallmentStatusPending, InstallmentStatusProcessing, true},
		{"pending to failed", InstallmentStatusPending, InstallmentStatusFailed, true},
		{"processing to paid", InstallmentStatusProcessing, InstallmentStatusPaid, true},
		{"processing to failed", InstallmentStatusProcessing, InstallmentStatusFailed, true},
		{"pending cannot skip to paid", InstallmentStatusPending, InstallmentStatusPaid, false},
		{"paid is terminal", InstallmentStatusPaid, InstallmentStatusFailed, false},
		{"failed is terminal", InstallmentStatusFailed, InstallmentStatusPending, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestStatusIsTerminal(t *testing.T) {
	assert.False(t, PaymentStatusPending.IsTerminal())
	assert.True(t, PaymentStatusCompleted.IsTerminal())
	assert.True(t, PaymentStatusFailed.IsTerminal())
	assert.True(t, PaymentStatusCancelled.IsTerminal())

	assert.False(t, InstallmentStatusPending.IsTerminal())
	assert.False(t, InstallmentStatusProcessing.IsTerminal())
	assert.True(t, InstallmentStatusPaid.IsTerminal())
	assert.True(t, InstallmentStatusFailed.IsTerminal())
}

func TestIsValidInstallmentCount(t *testing.T) {
	for _, count := range []int{3, 6, 12} {
		assert.True(t, IsValidInstallmentCount(count))
	}
	for _, count := range []int{0, 1, 2, 4, 5, 7, 13, -3} {
		assert.False(t, IsValidInstallmentCount(count))
	}
}
