package core

// Payment tracking enums. Provisioned for the fees module; no endpoint is
// wired to them yet.
type (
	PaymentStatus string
	PaymentMethod string
	BatchStatus   string
)

const (
	PaymentPaid    PaymentStatus = "paid"
	PaymentPending PaymentStatus = "pending"
	PaymentOverdue PaymentStatus = "overdue"

	PaymentCash         PaymentMethod = "cash"
	PaymentCard         PaymentMethod = "card"
	PaymentUPI          PaymentMethod = "upi"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
	PaymentCheque       PaymentMethod = "cheque"

	BatchActive    BatchStatus = "active"
	BatchCompleted BatchStatus = "completed"
	BatchSuspended BatchStatus = "suspended"
)
