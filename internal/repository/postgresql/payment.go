package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/edutrack/tuition-backend-go/internal/domain/billing"
	"github.com/edutrack/tuition-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

const paymentColumns = `id, account_id, month, year, amount, status, due_date, paid_date, created_at, updated_at`

type paymentRepositoryImpl struct {
	db *database.DB
}

func NewPaymentRepository(db *database.DB) billing.PaymentRepository {
	return &paymentRepositoryImpl{db: db}
}

func scanPayment(row pgx.Row) (billing.PaymentRecord, error) {
	var rec billing.PaymentRecord
	err := row.Scan(
		&rec.ID,
		&rec.AccountID,
		&rec.Month,
		&rec.Year,
		&rec.Amount,
		&rec.Status,
		&rec.DueDate,
		&rec.PaidDate,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	return rec, err
}

// Create implements billing.PaymentRepository. The unique constraint on
// (account_id, year, month) is the duplicate guard; a violation surfaces as
// ErrDuplicateRecord so callers racing each other get exactly one record.
func (r *paymentRepositoryImpl) Create(ctx context.Context, rec billing.PaymentRecord) (billing.PaymentRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payments (id, account_id, month, year, amount, status, due_date)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6)
		RETURNING ` + paymentColumns

	result, err := scanPayment(q.QueryRow(ctx, query,
		rec.AccountID,
		rec.Month,
		rec.Year,
		rec.Amount,
		rec.Status,
		rec.DueDate,
	))

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return billing.PaymentRecord{}, billing.ErrDuplicateRecord
		}
		return billing.PaymentRecord{}, fmt.Errorf("failed to create payment record: %w", err)
	}

	return result, nil
}

// GetByID implements billing.PaymentRepository.
func (r *paymentRepositoryImpl) GetByID(ctx context.Context, id string) (billing.PaymentRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`

	rec, err := scanPayment(q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return billing.PaymentRecord{}, billing.ErrPaymentNotFound
	}
	if err != nil {
		return billing.PaymentRecord{}, fmt.Errorf("failed to get payment record: %w", err)
	}

	return rec, nil
}

// GetByAccountAndPeriod implements billing.PaymentRepository.
func (r *paymentRepositoryImpl) GetByAccountAndPeriod(ctx context.Context, accountID string, period billing.Period) (billing.PaymentRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE account_id = $1 AND year = $2 AND month = $3
	`

	rec, err := scanPayment(q.QueryRow(ctx, query, accountID, period.Year, period.Month))
	if errors.Is(err, pgx.ErrNoRows) {
		return billing.PaymentRecord{}, billing.ErrPaymentNotFound
	}
	if err != nil {
		return billing.PaymentRecord{}, fmt.Errorf("failed to get payment record: %w", err)
	}

	return rec, nil
}

// UpdateStatus implements billing.PaymentRepository.
func (r *paymentRepositoryImpl) UpdateStatus(ctx context.Context, id string, status billing.PaymentStatus, paidDate *time.Time) (billing.PaymentRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payments
		SET status = $1, paid_date = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING ` + paymentColumns

	rec, err := scanPayment(q.QueryRow(ctx, query, status, paidDate, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return billing.PaymentRecord{}, billing.ErrPaymentNotFound
	}
	if err != nil {
		return billing.PaymentRecord{}, fmt.Errorf("failed to update payment status: %w", err)
	}

	return rec, nil
}

// List implements billing.PaymentRepository. Ordering is tier level, account
// name, then record id, so pages stay stable across calls.
func (r *paymentRepositoryImpl) List(ctx context.Context, filter billing.PaymentFilter) ([]billing.PaymentResponse, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT p.id, p.account_id, a.name, a.tier_id, t.name, p.month, p.year,
		       p.amount, p.status, p.due_date, p.paid_date
		FROM payments p
		JOIN accounts a ON a.id = p.account_id
		JOIN tiers t ON t.id = a.tier_id
		WHERE 1 = 1
	`

	var args []interface{}
	argn := 0
	addArg := func(clause string, value interface{}) {
		argn++
		query += fmt.Sprintf(" AND %s = $%d", clause, argn)
		args = append(args, value)
	}

	if filter.Year != 0 {
		addArg("p.year", filter.Year)
	}
	if filter.Month != 0 {
		addArg("p.month", filter.Month)
	}
	if filter.TierID != "" {
		addArg("a.tier_id", filter.TierID)
	}
	if filter.AccountID != "" {
		addArg("p.account_id", filter.AccountID)
	}
	if filter.Status != "" {
		addArg("p.status", filter.Status)
	}

	query += ` ORDER BY t.level ASC, a.name ASC, p.id ASC`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	var payments []billing.PaymentResponse
	for rows.Next() {
		var p billing.PaymentResponse
		err := rows.Scan(
			&p.ID,
			&p.AccountID,
			&p.AccountName,
			&p.TierID,
			&p.TierName,
			&p.Month,
			&p.Year,
			&p.Amount,
			&p.Status,
			&p.DueDate,
			&p.PaidDate,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return payments, nil
}

// ListByAccount implements billing.PaymentRepository.
func (r *paymentRepositoryImpl) ListByAccount(ctx context.Context, accountID string) ([]billing.PaymentRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE account_id = $1
		ORDER BY year DESC, month DESC
	`

	rows, err := q.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list account payments: %w", err)
	}
	defer rows.Close()

	return collectPayments(rows)
}

// Summary implements billing.PaymentRepository. Computed directly from the
// ledger at call time, no caching.
func (r *paymentRepositoryImpl) Summary(ctx context.Context, period billing.Period) (billing.PeriodSummary, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'PAID'),
		       COUNT(*) FILTER (WHERE status = 'UNPAID'),
		       COALESCE(SUM(amount) FILTER (WHERE status = 'PAID'), 0),
		       COALESCE(SUM(amount) FILTER (WHERE status = 'UNPAID'), 0)
		FROM payments
		WHERE year = $1 AND month = $2
	`

	summary := billing.PeriodSummary{Year: period.Year, Month: period.Month}
	err := q.QueryRow(ctx, query, period.Year, period.Month).Scan(
		&summary.TotalRecords,
		&summary.PaidCount,
		&summary.UnpaidCount,
		&summary.AmountCollected,
		&summary.AmountOwed,
	)
	if err != nil {
		return billing.PeriodSummary{}, fmt.Errorf("failed to summarize period: %w", err)
	}

	return summary, nil
}

// UpdateAmountForTierWhereUnpaid implements billing.PaymentRepository. One
// bulk conditional statement, not read-then-loop-write, so a record that goes
// PAID mid-propagation keeps its charged amount.
func (r *paymentRepositoryImpl) UpdateAmountForTierWhereUnpaid(ctx context.Context, tierID string, amount decimal.Decimal) (int64, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payments p
		SET amount = $1, updated_at = NOW()
		FROM accounts a
		WHERE a.id = p.account_id
		  AND a.tier_id = $2
		  AND p.status = 'UNPAID'
	`

	commandTag, err := q.Exec(ctx, query, amount, tierID)
	if err != nil {
		return 0, fmt.Errorf("failed to propagate fee to unpaid records: %w", err)
	}

	return commandTag.RowsAffected(), nil
}

// ListUnpaidOverdue implements billing.PaymentRepository.
func (r *paymentRepositoryImpl) ListUnpaidOverdue(ctx context.Context, period billing.Period, now time.Time) ([]billing.PaymentRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE year = $1 AND month = $2
		  AND status = 'UNPAID'
		  AND due_date < $3
		ORDER BY account_id ASC
	`

	rows, err := q.Query(ctx, query, period.Year, period.Month, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list overdue payments: %w", err)
	}
	defer rows.Close()

	return collectPayments(rows)
}

// ListPaidWithLockedAccount implements billing.PaymentRepository.
func (r *paymentRepositoryImpl) ListPaidWithLockedAccount(ctx context.Context, period billing.Period) ([]billing.PaymentRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT p.id, p.account_id, p.month, p.year, p.amount, p.status, p.due_date, p.paid_date, p.created_at, p.updated_at
		FROM payments p
		JOIN accounts a ON a.id = p.account_id
		WHERE p.year = $1 AND p.month = $2
		  AND p.status = 'PAID'
		  AND a.locked_for_nonpayment = TRUE
		ORDER BY p.account_id ASC
	`

	rows, err := q.Query(ctx, query, period.Year, period.Month)
	if err != nil {
		return nil, fmt.Errorf("failed to list paid records with locked accounts: %w", err)
	}
	defer rows.Close()

	return collectPayments(rows)
}

func collectPayments(rows pgx.Rows) ([]billing.PaymentRecord, error) {
	var records []billing.PaymentRecord
	for rows.Next() {
		rec, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return records, nil
}
