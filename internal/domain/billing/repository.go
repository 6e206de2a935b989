package billing

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentRepository handles payment record persistence.
//
// The store enforces the one-record-per-(account, period) invariant with a
// unique constraint; Create surfaces a violation as ErrDuplicateRecord so
// concurrent creators can rely on the database rather than application locks.
type PaymentRepository interface {
	// Create inserts a new payment record. Returns ErrDuplicateRecord when a
	// record already exists for the same account and period.
	Create(ctx context.Context, rec PaymentRecord) (PaymentRecord, error)

	// GetByID retrieves a payment record by id.
	GetByID(ctx context.Context, id string) (PaymentRecord, error)

	// GetByAccountAndPeriod retrieves the record for one account and period.
	GetByAccountAndPeriod(ctx context.Context, accountID string, period Period) (PaymentRecord, error)

	// UpdateStatus sets the record's status and paid date and returns the
	// updated record. paidDate is nil when the status is UNPAID.
	UpdateStatus(ctx context.Context, id string, status PaymentStatus, paidDate *time.Time) (PaymentRecord, error)

	// List retrieves records matching the filter, joined with directory data,
	// ordered by tier level then account name so paginated listings stay stable.
	List(ctx context.Context, filter PaymentFilter) ([]PaymentResponse, error)

	// ListByAccount retrieves an account's full payment history, newest first.
	ListByAccount(ctx context.Context, accountID string) ([]PaymentRecord, error)

	// Summary aggregates paid/unpaid counts and amounts for a period.
	Summary(ctx context.Context, period Period) (PeriodSummary, error)

	// UpdateAmountForTierWhereUnpaid bulk-updates the amount of every UNPAID
	// record owned by an account in the given tier, as a single conditional
	// statement. Returns the number of rows changed. PAID rows are never
	// touched.
	UpdateAmountForTierWhereUnpaid(ctx context.Context, tierID string, amount decimal.Decimal) (int64, error)

	// ListUnpaidOverdue retrieves the period's UNPAID records whose due date is
	// strictly before now, regardless of when the record was created.
	ListUnpaidOverdue(ctx context.Context, period Period, now time.Time) ([]PaymentRecord, error)

	// ListPaidWithLockedAccount retrieves the period's PAID records whose
	// owning account is still locked for nonpayment.
	ListPaidWithLockedAccount(ctx context.Context, period Period) ([]PaymentRecord, error)
}
