package plan

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainErrors "github.com/flexpay/payment-service/internal/domain/errors"
)

func TestAllocate(t *testing.T) {
	tests := []struct {
		name        string
		total       int64
		downPayment int64
		count       int
		expected    []int64
	}{
		{
			name:     "remainder distributed to first installments",
			total:    100,
			count:    3,
			expected: []int64{34, 33, 33},
		},
		{
			name:        "down payment followed by even split",
			total:       100,
			downPayment: 10,
			count:       3,
			expected:    []int64{10, 30, 30, 30},
		},
		{
			name:     "even split without remainder",
			total:    300,
			count:    3,
			expected: []int64{100, 100, 100},
		},
		{
			name:        "down payment with remainder",
			total:       100,
			downPayment: 3,
			count:       6,
			expected:    []int64{3, 17, 16, 16, 16, 16, 16},
		},
		{
			name:     "total smaller than count",
			total:    5,
			count:    12,
			expected: []int64{1, 1, 1, 1, 1, 0, 0, 0, 0, 0, 0, 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amounts, err := Allocate(tt.total, tt.downPayment, tt.count)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, amounts)
		})
	}
}

func TestAllocateExactSum(t *testing.T) {
	totals := []int64{1, 7, 99, 100, 1000, 12345, 99999, 1000001}
	downPayments := []int64{0, 1, 10, 50}

	for _, total := range totals {
		for _, down := range downPayments {
			if down >= total {
				continue
			}
			for _, count := range []int{3, 6, 12} {
				t.Run(fmt.Sprintf("total=%d down=%d count=%d", total, down, count), func(t *testing.T) {
					amounts, err := Allocate(total, down, count)
					require.NoError(t, err)

					expectedLen := count
					if down > 0 {
						expectedLen = count + 1
					}
					require.Len(t, amounts, expectedLen)

					var sum int64
					splitStart := 0
					if down > 0 {
						assert.Equal(t, down, amounts[0])
						splitStart = 1
					}

					var min, max int64
					for i, amount := range amounts {
						assert.GreaterOrEqual(t, amount, int64(0))
						sum += amount
						if i >= splitStart {
							if i == splitStart || amount < min {
								min = amount
							}
							if i == splitStart || amount > max {
								max = amount
							}
						}
					}

					assert.Equal(t, total, sum, "allocated amounts must reconstruct the total")
					assert.LessOrEqual(t, max-min, int64(1), "split installments must differ by at most one cent")
				})
			}
		}
	}
}

func TestAllocateInvalidInput(t *testing.T) {
	tests := []struct {
		name        string
		total       int64
		downPayment int64
		count       int
	}{
		{"zero count", 100, 0, 0},
		{"negative count", 100, 0, -1},
		{"zero total", 0, 0, 3},
		{"negative total", -50, 0, 3},
		{"negative down payment", 100, -1, 3},
		{"down payment equals total", 100, 100, 3},
		{"down payment exceeds total", 100, 150, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amounts, err := Allocate(tt.total, tt.downPayment, tt.count)
			assert.Nil(t, amounts)
			require.Error(t, err)
			assert.True(t, domainErrors.IsType(err, domainErrors.ErrTypeInvalidAllocation))
		})
	}
}
