package billing

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus represents the settlement state of a payment record
type PaymentStatus string

const (
	StatusUnpaid PaymentStatus = "UNPAID"
	StatusPaid   PaymentStatus = "PAID"
)

// Valid reports whether s is a known payment status.
func (s PaymentStatus) Valid() bool {
	return s == StatusUnpaid || s == StatusPaid
}

// PaymentRecord is one account's tuition bill for one billing period.
// Amount is a snapshot of the tier fee at creation time, not a live reference;
// fee changes reach it only through the fee propagator and only while UNPAID.
// Records are never deleted, they are the audit trail.
type PaymentRecord struct {
	ID        string          `json:"id"`
	AccountID string          `json:"account_id"`
	Month     int             `json:"month"`
	Year      int             `json:"year"`
	Amount    decimal.Decimal `json:"amount"`
	Status    PaymentStatus   `json:"status"`
	DueDate   time.Time       `json:"due_date"`
	PaidDate  *time.Time      `json:"paid_date,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Period returns the billing period the record belongs to.
func (p *PaymentRecord) Period() Period {
	return Period{Year: p.Year, Month: p.Month}
}

// IsPaid reports whether the record has been settled.
func (p *PaymentRecord) IsPaid() bool {
	return p.Status == StatusPaid
}

// IsOverdue reports whether the record is unpaid and past its due date.
// A PAID record is never overdue regardless of dates.
func (p *PaymentRecord) IsOverdue(now time.Time) bool {
	return p.Status == StatusUnpaid && Overdue(p.DueDate, now)
}
