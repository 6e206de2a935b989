package account

import (
	"context"

	"github.com/edutrack/tuition-backend-go/internal/domain/billing"
)

// Directory is the billing core's window onto accounts. Account creation and
// the approval workflow live outside this service; the directory exposes only
// what batch generation and the access gate need.
type Directory interface {
	// GetByID retrieves an account by id.
	GetByID(ctx context.Context, id string) (Account, error)

	// ListEligibleWithoutRecord resolves the accounts due for billing in the
	// period: active, approved, and lacking a payment record for it. Each
	// entry carries the tier's current monthly fee.
	ListEligibleWithoutRecord(ctx context.Context, period billing.Period) ([]EligibleAccount, error)

	// SetLocked sets the account's locked-for-nonpayment flag unconditionally.
	SetLocked(ctx context.Context, id string, locked bool) error

	// LockForNonpayment locks the account only if it is currently unlocked and
	// the given payment record is still UNPAID, as one conditional statement.
	// Reports whether the flag actually flipped. A toggle to PAID that races
	// the sweep therefore wins.
	LockForNonpayment(ctx context.Context, accountID, recordID string) (bool, error)

	// UnlockAfterPayment unlocks the account only if it is currently locked
	// and the given payment record is still PAID. Reports whether the flag
	// actually flipped.
	UnlockAfterPayment(ctx context.Context, accountID, recordID string) (bool, error)
}
