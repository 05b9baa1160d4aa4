package events

import "time"

// Event types
const (
	EventTypeInstallmentPaid   = "installment.paid"
	EventTypeInstallmentFailed = "installment.failed"
	EventTypePaymentCompleted  = "payment.completed"
)

// DefaultTopic is the Kafka topic payment events are published to.
const DefaultTopic = "payment-events"

// PaymentEvent is published whenever an installment settles or a payment
// completes.
type PaymentEvent struct {
	EventID       string    `json:"event_id"`
	EventType     string    `json:"event_type"`
	PaymentID     string    `json:"payment_id"`
	InstallmentID string    `json:"installment_id,omitempty"`
	Sequence      int       `json:"sequence,omitempty"`
	AmountCents   int64     `json:"amount_cents"`
	TransactionID string    `json:"transaction_id,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}
