package access

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/edutrack/tuition-backend-go/internal/domain/account"
	"github.com/edutrack/tuition-backend-go/internal/domain/billing"
	"github.com/edutrack/tuition-backend-go/internal/pkg/clock"
)

type accessService struct {
	paymentRepo billing.PaymentRepository
	accountDir  account.Directory
	clk         clock.Clock
}

func NewAccessService(
	paymentRepo billing.PaymentRepository,
	accountDir account.Directory,
	clk clock.Clock,
) billing.AccessService {
	return &accessService{
		paymentRepo: paymentRepo,
		accountDir:  accountDir,
		clk:         clk,
	}
}

// OnStatusChanged is invoked by the billing service inside the status-update
// transaction. A record going PAID for the current period unlocks a locked
// owner immediately; going UNPAID never locks here, only the overdue sweep
// locks, so the grace period is honored.
func (s *accessService) OnStatusChanged(ctx context.Context, rec billing.PaymentRecord) error {
	if rec.Status != billing.StatusPaid {
		return nil
	}
	if rec.Period() != billing.PeriodOf(s.clk.Now()) {
		return nil
	}

	flipped, err := s.accountDir.UnlockAfterPayment(ctx, rec.AccountID, rec.ID)
	if err != nil {
		return fmt.Errorf("unlock after payment: %w", err)
	}
	if flipped {
		slog.Info("Account unlocked after payment",
			"account_id", rec.AccountID,
			"record_id", rec.ID,
		)
	}
	return nil
}

// SweepOverdue reconciles lock flags with the ledger. Every flag flip is a
// conditional statement that re-checks the record's live status, so a status
// toggle racing the sweep wins; running the sweep twice with nothing new
// overdue changes nothing. All UNPAID records of the period are evaluated each
// run, whenever they were created.
func (s *accessService) SweepOverdue(ctx context.Context, period billing.Period, now time.Time) (billing.SweepResult, error) {
	if !period.Valid() {
		return billing.SweepResult{}, billing.ErrInvalidPeriod
	}

	var result billing.SweepResult

	overdue, err := s.paymentRepo.ListUnpaidOverdue(ctx, period, now)
	if err != nil {
		return billing.SweepResult{}, fmt.Errorf("list overdue records: %w", err)
	}

	for _, rec := range overdue {
		flipped, err := s.accountDir.LockForNonpayment(ctx, rec.AccountID, rec.ID)
		if err != nil {
			return result, fmt.Errorf("lock account %s: %w", rec.AccountID, err)
		}
		if flipped {
			result.Locked++
			slog.Info("Account locked for nonpayment",
				"account_id", rec.AccountID,
				"record_id", rec.ID,
				"period", period.String(),
				"due_date", rec.DueDate,
			)
		}
	}

	// Locked accounts whose record is PAID should not exist; recompute from
	// ledger truth instead of failing the sweep.
	paidLocked, err := s.paymentRepo.ListPaidWithLockedAccount(ctx, period)
	if err != nil {
		return result, fmt.Errorf("list paid records with locked accounts: %w", err)
	}

	for _, rec := range paidLocked {
		flipped, err := s.accountDir.UnlockAfterPayment(ctx, rec.AccountID, rec.ID)
		if err != nil {
			return result, fmt.Errorf("unlock account %s: %w", rec.AccountID, err)
		}
		if flipped {
			result.Unlocked++
			slog.Warn("Locked account had a paid record, unlocked",
				"account_id", rec.AccountID,
				"record_id", rec.ID,
				"period", period.String(),
			)
		}
	}

	slog.Info("Overdue sweep completed",
		"period", period.String(),
		"locked", result.Locked,
		"unlocked", result.Unlocked,
	)

	return result, nil
}

// GetAccountAccess reports the gating layer's view of the account. No record
// for the current period means no access: a batch must have run first.
func (s *accessService) GetAccountAccess(ctx context.Context, accountID string, now time.Time) (billing.AccessStatus, error) {
	acct, err := s.accountDir.GetByID(ctx, accountID)
	if err != nil {
		return billing.AccessStatus{}, err
	}

	status := billing.AccessStatus{
		IsLocked: acct.LockedForNonpayment,
	}

	rec, err := s.paymentRepo.GetByAccountAndPeriod(ctx, accountID, billing.PeriodOf(now))
	switch {
	case errors.Is(err, billing.ErrPaymentNotFound):
		// no record, no access
	case err != nil:
		return billing.AccessStatus{}, fmt.Errorf("get current-period record: %w", err)
	default:
		status.IsPaid = rec.IsPaid()
	}

	status.HasAccess = acct.IsActive && !acct.LockedForNonpayment && status.IsPaid
	return status, nil
}

func (s *accessService) SetAccountLock(ctx context.Context, accountID string, locked bool) error {
	if _, err := s.accountDir.GetByID(ctx, accountID); err != nil {
		return err
	}

	if err := s.accountDir.SetLocked(ctx, accountID, locked); err != nil {
		return fmt.Errorf("set account lock: %w", err)
	}

	slog.Info("Account lock set manually",
		"account_id", accountID,
		"locked", locked,
	)
	return nil
}
