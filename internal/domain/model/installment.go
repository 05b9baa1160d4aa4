package model

import (
	"time"
)

// Installment is a single slice of an installment plan. All installments of a
// payment are created together when the payment is created and only change
// status through charge attempts; they are never deleted.
type Installment struct {
	ID            string            `gorm:"primaryKey;size:36" json:"id"`
	PaymentID     string            `gorm:"column:payment_id;size:36;not null;index" json:"payment_id"`
	Sequence      int               `gorm:"column:sequence;not null" json:"sequence"`
	AmountCents   int64             `gorm:"column:amount_cents;not null" json:"amount_cents"`
	DueDate       time.Time         `gorm:"column:due_date;not null;index" json:"due_date"`
	Status        InstallmentStatus `gorm:"size:20;not null;default:'pending';index" json:"status"`
	TransactionID *string           `gorm:"column:transaction_id;size:100" json:"transaction_id,omitempty"`
	CreatedAt     time.Time         `gorm:"default:now()" json:"created_at"`
	UpdatedAt     time.Time         `gorm:"default:now()" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Installment) TableName() string {
	return "installments"
}
