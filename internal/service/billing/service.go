package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/edutrack/tuition-backend-go/internal/domain/account"
	"github.com/edutrack/tuition-backend-go/internal/domain/billing"
	"github.com/edutrack/tuition-backend-go/internal/pkg/clock"
	"github.com/edutrack/tuition-backend-go/internal/pkg/database"
	"github.com/edutrack/tuition-backend-go/internal/repository/postgresql"
	"github.com/jackc/pgx/v5"
)

type billingService struct {
	db              *database.DB
	paymentRepo     billing.PaymentRepository
	accountDir      account.Directory
	statusHook      billing.StatusHook
	clk             clock.Clock
	gracePeriodDays int
}

func NewBillingService(
	db *database.DB,
	paymentRepo billing.PaymentRepository,
	accountDir account.Directory,
	statusHook billing.StatusHook,
	clk clock.Clock,
	gracePeriodDays int,
) billing.BillingService {
	return &billingService{
		db:              db,
		paymentRepo:     paymentRepo,
		accountDir:      accountDir,
		statusHook:      statusHook,
		clk:             clk,
		gracePeriodDays: gracePeriodDays,
	}
}

// GenerateBatch creates the period's missing records. The eligibility query is
// only a pre-check; the unique constraint settles creation races, so a
// duplicate error here is expected and counted rather than surfaced. A failure
// on one account does not stop the batch; re-running picks up what failed.
func (s *billingService) GenerateBatch(ctx context.Context, period billing.Period) (billing.BatchResult, error) {
	if !period.Valid() {
		return billing.BatchResult{}, billing.ErrInvalidPeriod
	}

	// Records already on the ledger before this run
	pre, err := s.paymentRepo.Summary(ctx, period)
	if err != nil {
		return billing.BatchResult{}, fmt.Errorf("summarize period: %w", err)
	}
	result := billing.BatchResult{AlreadyExisted: pre.TotalRecords}

	eligible, err := s.accountDir.ListEligibleWithoutRecord(ctx, period)
	if err != nil {
		return billing.BatchResult{}, fmt.Errorf("resolve eligible accounts: %w", err)
	}

	dueDate := period.DueDate(s.gracePeriodDays)
	for _, acct := range eligible {
		_, err := s.paymentRepo.Create(ctx, billing.PaymentRecord{
			AccountID: acct.ID,
			Month:     period.Month,
			Year:      period.Year,
			Amount:    acct.MonthlyFee,
			Status:    billing.StatusUnpaid,
			DueDate:   dueDate,
		})
		switch {
		case errors.Is(err, billing.ErrDuplicateRecord):
			// Lost the creation race to a concurrent caller
			result.AlreadyExisted++
		case err != nil:
			result.Failed++
			slog.Warn("Batch generation failed for account",
				"account_id", acct.ID,
				"period", period.String(),
				"error", err,
			)
		default:
			result.Created++
		}
	}

	slog.Info("Batch generation completed",
		"period", period.String(),
		"created", result.Created,
		"already_existed", result.AlreadyExisted,
		"failed", result.Failed,
	)

	return result, nil
}

func (s *billingService) CreatePayment(ctx context.Context, req billing.CreatePaymentRequest) (billing.PaymentResponse, error) {
	if err := req.Validate(); err != nil {
		return billing.PaymentResponse{}, err
	}

	if _, err := s.accountDir.GetByID(ctx, req.AccountID); err != nil {
		return billing.PaymentResponse{}, err
	}

	period := billing.Period{Year: req.Year, Month: req.Month}
	dueDate, ok := req.ParsedDueDate()
	if !ok {
		dueDate = period.DueDate(s.gracePeriodDays)
	}

	rec, err := s.paymentRepo.Create(ctx, billing.PaymentRecord{
		AccountID: req.AccountID,
		Month:     req.Month,
		Year:      req.Year,
		Amount:    req.Amount,
		Status:    billing.StatusUnpaid,
		DueDate:   dueDate,
	})
	if err != nil {
		return billing.PaymentResponse{}, err
	}

	return billing.ToPaymentResponse(rec), nil
}

// SetPaymentStatus is the single place a record's status changes. The update
// and the access-gate hook run in one transaction: a reader never sees a PAID
// record paired with a still-locked account as a steady state.
func (s *billingService) SetPaymentStatus(ctx context.Context, recordID string, status billing.PaymentStatus) (billing.PaymentResponse, error) {
	if !status.Valid() {
		return billing.PaymentResponse{}, billing.ErrInvalidStatus
	}

	var updated billing.PaymentRecord
	err := postgresql.WithTransaction(ctx, s.db, func(tx pgx.Tx) error {
		txCtx := context.WithValue(ctx, "tx", tx)

		var paidDate *time.Time
		if status == billing.StatusPaid {
			now := s.clk.Now()
			paidDate = &now
		}

		var err error
		updated, err = s.paymentRepo.UpdateStatus(txCtx, recordID, status, paidDate)
		if err != nil {
			return err
		}

		return s.statusHook.OnStatusChanged(txCtx, updated)
	})
	if err != nil {
		return billing.PaymentResponse{}, err
	}

	slog.Info("Payment status updated",
		"record_id", updated.ID,
		"account_id", updated.AccountID,
		"period", updated.Period().String(),
		"status", updated.Status,
	)

	return billing.ToPaymentResponse(updated), nil
}

func (s *billingService) ListPayments(ctx context.Context, filter billing.PaymentFilter) ([]billing.PaymentResponse, error) {
	payments, err := s.paymentRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return payments, nil
}

func (s *billingService) AccountHistory(ctx context.Context, accountID string) ([]billing.PaymentResponse, error) {
	if _, err := s.accountDir.GetByID(ctx, accountID); err != nil {
		return nil, err
	}

	records, err := s.paymentRepo.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("list account history: %w", err)
	}

	responses := make([]billing.PaymentResponse, len(records))
	for i, rec := range records {
		responses[i] = billing.ToPaymentResponse(rec)
	}
	return responses, nil
}

func (s *billingService) Summary(ctx context.Context, period billing.Period) (billing.PeriodSummary, error) {
	if !period.Valid() {
		return billing.PeriodSummary{}, billing.ErrInvalidPeriod
	}
	return s.paymentRepo.Summary(ctx, period)
}
