package model

import (
	"time"
)

// PaymentType distinguishes a one-shot payment from an installment plan.
type PaymentType string

const (
	PaymentTypeFull        PaymentType = "full"
	PaymentTypeInstallment PaymentType = "installment"
)

// InstallmentCounts lists the plan sizes customers may choose.
var InstallmentCounts = []int{3, 6, 12}

// IsValidInstallmentCount reports whether count is an offered plan size.
func IsValidInstallmentCount(count int) bool {
	for _, c := range InstallmentCounts {
		if count == c {
			return true
		}
	}
	return false
}

// Payment represents a customer payment, either full or split into installments.
// Amounts are stored in minor currency units to avoid rounding drift.
type Payment struct {
	ID               string        `gorm:"primaryKey;size:36" json:"id"`
	CustomerName     string        `gorm:"column:customer_name;size:255;not null" json:"customer_name"`
	CustomerEmail    string        `gorm:"column:customer_email;size:255;not null" json:"customer_email"`
	CustomerPhone    *string       `gorm:"column:customer_phone;size:50" json:"customer_phone,omitempty"`
	TotalAmountCents int64         `gorm:"column:total_amount_cents;not null" json:"total_amount_cents"`
	PaymentType      PaymentType   `gorm:"column:payment_type;size:20;not null" json:"payment_type"`
	DownPaymentCents *int64        `gorm:"column:down_payment_cents" json:"down_payment_cents,omitempty"`
	InstallmentCount *int          `gorm:"column:installment_count" json:"installment_count,omitempty"`
	Status           PaymentStatus `gorm:"size:20;not null;default:'pending';index" json:"status"`
	CreatedAt        time.Time     `gorm:"default:now()" json:"created_at"`
	UpdatedAt        time.Time     `gorm:"default:now()" json:"updated_at"`

	// Relations
	Installments []Installment `gorm:"foreignKey:PaymentID" json:"installments,omitempty"`
}

// TableName specifies the table name for GORM
func (Payment) TableName() string {
	return "payments"
}

// DownPayment returns the down payment in cents, zero when absent.
func (p *Payment) DownPayment() int64 {
	if p.DownPaymentCents == nil {
		return 0
	}
	return *p.DownPaymentCents
}
