package cron

import (
	"context"
	"time"

	"github.com/edutrack/tuition-backend-go/internal/domain/billing"
	"github.com/edutrack/tuition-backend-go/internal/pkg/clock"
)

// BillingJobs contains billing-related cron jobs
type BillingJobs struct {
	billingService billing.BillingService
	accessService  billing.AccessService
	clk            clock.Clock
}

// NewBillingJobs creates billing cron jobs
func NewBillingJobs(
	billingService billing.BillingService,
	accessService billing.AccessService,
	clk clock.Clock,
) *BillingJobs {
	return &BillingJobs{
		billingService: billingService,
		accessService:  accessService,
		clk:            clk,
	}
}

// RegisterJobs registers all billing-related cron jobs. Both jobs are
// idempotent, so short intervals only cost queries, never duplicate state.
func (j *BillingJobs) RegisterJobs(scheduler *Scheduler, sweepInterval, batchInterval time.Duration) {
	// Generate the current period's missing payment records. Re-runs create
	// nothing once the period is covered.
	scheduler.AddJob(
		"generate_payment_batch",
		batchInterval,
		j.GenerateCurrentBatch,
	)

	// Reconcile lock flags with overdue state
	scheduler.AddJob(
		"sweep_overdue_payments",
		sweepInterval,
		j.SweepOverdue,
	)
}

// GenerateCurrentBatch creates missing payment records for the current period.
func (j *BillingJobs) GenerateCurrentBatch(ctx context.Context) error {
	period := billing.PeriodOf(j.clk.Now())
	_, err := j.billingService.GenerateBatch(ctx, period)
	return err
}

// SweepOverdue locks accounts with overdue unpaid records for the current
// period and unlocks locked accounts that have paid.
func (j *BillingJobs) SweepOverdue(ctx context.Context) error {
	now := j.clk.Now()
	_, err := j.accessService.SweepOverdue(ctx, billing.PeriodOf(now), now)
	return err
}
