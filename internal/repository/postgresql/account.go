package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/edutrack/tuition-backend-go/internal/domain/account"
	"github.com/edutrack/tuition-backend-go/internal/domain/billing"
	"github.com/edutrack/tuition-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type accountDirectoryImpl struct {
	db *database.DB
}

func NewAccountDirectory(db *database.DB) account.Directory {
	return &accountDirectoryImpl{db: db}
}

// GetByID implements account.Directory.
func (r *accountDirectoryImpl) GetByID(ctx context.Context, id string) (account.Account, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, name, tier_id, is_active, locked_for_nonpayment, approval_status, created_at, updated_at
		FROM accounts
		WHERE id = $1
	`

	var result account.Account
	err := q.QueryRow(ctx, query, id).Scan(
		&result.ID,
		&result.Name,
		&result.TierID,
		&result.IsActive,
		&result.LockedForNonpayment,
		&result.ApprovalStatus,
		&result.CreatedAt,
		&result.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return account.Account{}, account.ErrAccountNotFound
	}

	if err != nil {
		return account.Account{}, fmt.Errorf("failed to get account: %w", err)
	}

	return result, nil
}

// ListEligibleWithoutRecord implements account.Directory. Eligibility is
// active + approved; the NOT EXISTS clause is only a pre-check, the payments
// unique constraint is the real duplicate guard.
func (r *accountDirectoryImpl) ListEligibleWithoutRecord(ctx context.Context, period billing.Period) ([]account.EligibleAccount, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT a.id, a.tier_id, t.monthly_fee
		FROM accounts a
		JOIN tiers t ON t.id = a.tier_id
		WHERE a.is_active = TRUE
		  AND a.approval_status = 'APPROVED'
		  AND NOT EXISTS (
			SELECT 1 FROM payments p
			WHERE p.account_id = a.id AND p.year = $1 AND p.month = $2
		  )
		ORDER BY t.level ASC, a.name ASC
	`

	rows, err := q.Query(ctx, query, period.Year, period.Month)
	if err != nil {
		return nil, fmt.Errorf("failed to list eligible accounts: %w", err)
	}
	defer rows.Close()

	var accounts []account.EligibleAccount
	for rows.Next() {
		var a account.EligibleAccount
		err := rows.Scan(
			&a.ID,
			&a.TierID,
			&a.MonthlyFee,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan eligible account: %w", err)
		}
		accounts = append(accounts, a)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return accounts, nil
}

// SetLocked implements account.Directory.
func (r *accountDirectoryImpl) SetLocked(ctx context.Context, id string, locked bool) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE accounts
		SET locked_for_nonpayment = $1, updated_at = NOW()
		WHERE id = $2
	`

	commandTag, err := q.Exec(ctx, query, locked, id)
	if err != nil {
		return fmt.Errorf("failed to update lock flag: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return account.ErrAccountNotFound
	}

	return nil
}

// LockForNonpayment implements account.Directory. The lock flips only while
// the record is still UNPAID, so a concurrent toggle to PAID beats a sweep
// working from a stale read.
func (r *accountDirectoryImpl) LockForNonpayment(ctx context.Context, accountID, recordID string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE accounts
		SET locked_for_nonpayment = TRUE, updated_at = NOW()
		WHERE id = $1
		  AND locked_for_nonpayment = FALSE
		  AND EXISTS (
			SELECT 1 FROM payments p
			WHERE p.id = $2 AND p.account_id = $1 AND p.status = 'UNPAID'
		  )
	`

	commandTag, err := q.Exec(ctx, query, accountID, recordID)
	if err != nil {
		return false, fmt.Errorf("failed to lock account: %w", err)
	}

	return commandTag.RowsAffected() > 0, nil
}

// UnlockAfterPayment implements account.Directory.
func (r *accountDirectoryImpl) UnlockAfterPayment(ctx context.Context, accountID, recordID string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE accounts
		SET locked_for_nonpayment = FALSE, updated_at = NOW()
		WHERE id = $1
		  AND locked_for_nonpayment = TRUE
		  AND EXISTS (
			SELECT 1 FROM payments p
			WHERE p.id = $2 AND p.account_id = $1 AND p.status = 'PAID'
		  )
	`

	commandTag, err := q.Exec(ctx, query, accountID, recordID)
	if err != nil {
		return false, fmt.Errorf("failed to unlock account: %w", err)
	}

	return commandTag.RowsAffected() > 0, nil
}
