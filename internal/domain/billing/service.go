package billing

import (
	"context"
	"time"
)

// BillingService owns the payment ledger and batch generation.
type BillingService interface {
	// GenerateBatch creates the period's missing payment records for all
	// eligible accounts, snapshotting each account's current tier fee.
	// Idempotent: a period that is fully generated yields Created == 0.
	GenerateBatch(ctx context.Context, period Period) (BatchResult, error)

	// CreatePayment creates a single record from an administrative request.
	// A duplicate surfaces as ErrDuplicateRecord.
	CreatePayment(ctx context.Context, req CreatePaymentRequest) (PaymentResponse, error)

	// SetPaymentStatus transitions a record between PAID and UNPAID. The
	// record update and the access-gate hook run in one transaction so the
	// lock flag can never drift from the ledger across a status edit.
	SetPaymentStatus(ctx context.Context, recordID string, status PaymentStatus) (PaymentResponse, error)

	// ListPayments retrieves records matching the filter.
	ListPayments(ctx context.Context, filter PaymentFilter) ([]PaymentResponse, error)

	// AccountHistory retrieves one account's payment history, newest first.
	AccountHistory(ctx context.Context, accountID string) ([]PaymentResponse, error)

	// Summary aggregates the period's ledger at call time.
	Summary(ctx context.Context, period Period) (PeriodSummary, error)
}

// StatusHook is invoked by the billing service whenever a record's status
// changes, inside the same transaction as the status update. The access gate
// implements it; the indirection keeps gating logic swappable and testable
// apart from storage.
type StatusHook interface {
	// OnStatusChanged receives the record as it stands after the transition.
	// The ctx carries the surrounding transaction.
	OnStatusChanged(ctx context.Context, rec PaymentRecord) error
}

// AccessService derives account access from ledger state.
type AccessService interface {
	StatusHook

	// SweepOverdue locks owners of the period's overdue UNPAID records and
	// unlocks locked owners of its PAID records. Idempotent; each flag flip
	// re-checks the record's live status inside the flipping statement so a
	// concurrent status toggle wins over a stale sweep read.
	SweepOverdue(ctx context.Context, period Period, now time.Time) (SweepResult, error)

	// GetAccountAccess reports whether the account may reach gated content:
	// active, not locked, and the current-period record exists and is PAID.
	// No record for the current period means no access.
	GetAccountAccess(ctx context.Context, accountID string, now time.Time) (AccessStatus, error)

	// SetAccountLock sets the lock flag directly, bypassing ledger checks.
	// Administrative override; the next sweep may revert it if the ledger
	// disagrees.
	SetAccountLock(ctx context.Context, accountID string, locked bool) error
}
