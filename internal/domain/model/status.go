package model

// PaymentStatus is the lifecycle state of a Payment.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusCancelled PaymentStatus = "cancelled"
)

// InstallmentStatus is the lifecycle state of an Installment.
type InstallmentStatus string

const (
	InstallmentStatusPending    InstallmentStatus = "pending"
	InstallmentStatusProcessing InstallmentStatus = "processing"
	InstallmentStatusPaid       InstallmentStatus = "paid"
	InstallmentStatusFailed     InstallmentStatus = "failed"
)

// paymentTransitions holds the legal payment status transitions. Completed,
// failed and cancelled are terminal.
var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentStatusPending: {PaymentStatusCompleted, PaymentStatusFailed, PaymentStatusCancelled},
}

// installmentTransitions holds the legal installment status transitions. A
// charge outcome moves processing to exactly one of paid or failed; paid and
// failed are terminal.
var installmentTransitions = map[InstallmentStatus][]InstallmentStatus{
	InstallmentStatusPending:    {InstallmentStatusProcessing, InstallmentStatusFailed},
	InstallmentStatusProcessing: {InstallmentStatusPaid, InstallmentStatusFailed},
}

// CanTransitionTo reports whether moving from s to target is legal.
func (s PaymentStatus) CanTransitionTo(target PaymentStatus) bool {
	for _, allowed := range paymentTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed from s.
func (s PaymentStatus) IsTerminal() bool {
	return len(paymentTransitions[s]) == 0
}

// CanTransitionTo reports whether moving from s to target is legal.
func (s InstallmentStatus) CanTransitionTo(target InstallmentStatus) bool {
	for _, allowed := range installmentTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed from s.
func (s InstallmentStatus) IsTerminal() bool {
	return len(installmentTransitions[s]) == 0
}
