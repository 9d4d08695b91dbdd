package models

import "time"

// PaymentStatus represents the state of a tuition payment.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusPaid    PaymentStatus = "PAID"
	PaymentStatusOverdue PaymentStatus = "OVERDUE"
)

// Valid returns true when the status is a supported value.
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusOverdue:
		return true
	default:
		return false
	}
}

// PaymentRecord tracks a single tuition invoice for a student.
type PaymentRecord struct {
	ID          string        `db:"id" json:"id"`
	StudentID   string        `db:"student_id" json:"student_id"`
	Description string        `db:"description" json:"description"`
	AmountCents int64         `db:"amount_cents" json:"amount_cents"`
	Status      PaymentStatus `db:"status" json:"status"`
	DueDate     time.Time     `db:"due_date" json:"due_date"`
	PaidAt      *time.Time    `db:"paid_at" json:"paid_at,omitempty"`
	CreatedAt   time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time     `db:"updated_at" json:"updated_at"`
}

// PaymentFilter captures filtering criteria for listing payments.
type PaymentFilter struct {
	StudentID string
	Status    *PaymentStatus
	Page      int
	PageSize  int
}
