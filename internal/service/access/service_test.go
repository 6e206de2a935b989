package access

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/edutrack/tuition-backend-go/internal/domain/billing"
	"github.com/edutrack/tuition-backend-go/internal/pkg/clock"
	"github.com/edutrack/tuition-backend-go/internal/pkg/database"
	"github.com/edutrack/tuition-backend-go/internal/repository/postgresql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testAccessDB *database.DB

func accessTestInit(t *testing.T) {
	t.Helper()
	if testAccessDB != nil {
		return
	}
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	var err error
	testAccessDB, err = database.NewPostgreSQLDB(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
}

func truncateAccessTables(t *testing.T, ctx context.Context) {
	t.Helper()
	for _, table := range []string{"payments", "accounts", "tiers"} {
		_, err := testAccessDB.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		require.NoError(t, err)
	}
}

func createAccessTestTier(t *testing.T, ctx context.Context, level int, fee int64) string {
	t.Helper()
	var tierID string
	err := testAccessDB.QueryRow(ctx, `
		INSERT INTO tiers (id, name, level, monthly_fee)
		VALUES (gen_random_uuid(), $1, $2, $3)
		RETURNING id
	`, fmt.Sprintf("Grade %d", level), level, fee).Scan(&tierID)
	require.NoError(t, err)
	return tierID
}

func createAccessTestAccount(t *testing.T, ctx context.Context, tierID string, active, locked bool) string {
	t.Helper()
	var accountID string
	name := fmt.Sprintf("account-%d", time.Now().UnixNano())
	err := testAccessDB.QueryRow(ctx, `
		INSERT INTO accounts (id, name, tier_id, is_active, locked_for_nonpayment, approval_status)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, 'APPROVED')
		RETURNING id
	`, name, tierID, active, locked).Scan(&accountID)
	require.NoError(t, err)
	return accountID
}

func createAccessTestPayment(t *testing.T, ctx context.Context, accountID string, year, month int, amount int64, status billing.PaymentStatus, dueDate time.Time) string {
	t.Helper()
	var recordID string
	err := testAccessDB.QueryRow(ctx, `
		INSERT INTO payments (id, account_id, month, year, amount, status, due_date)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6)
		RETURNING id
	`, accountID, month, year, amount, status, dueDate).Scan(&recordID)
	require.NoError(t, err)
	return recordID
}

func accountLocked(t *testing.T, ctx context.Context, accountID string) bool {
	t.Helper()
	var locked bool
	err := testAccessDB.QueryRow(ctx, `SELECT locked_for_nonpayment FROM accounts WHERE id = $1`, accountID).Scan(&locked)
	require.NoError(t, err)
	return locked
}

func newTestAccessService(clk clock.Clock) billing.AccessService {
	paymentRepo := postgresql.NewPaymentRepository(testAccessDB)
	accountDir := postgresql.NewAccountDirectory(testAccessDB)
	return NewAccessService(paymentRepo, accountDir, clk)
}

// ===== OVERDUE SWEEP =====

func TestSweepOverdue_LocksOnlyPastDue(t *testing.T) {
	ctx := context.Background()
	accessTestInit(t)
	truncateAccessTables(t, ctx)

	tierID := createAccessTestTier(t, ctx, 7, 4500)
	overdueAcct := createAccessTestAccount(t, ctx, tierID, true, false)
	graceAcct := createAccessTestAccount(t, ctx, tierID, true, false)
	paidAcct := createAccessTestAccount(t, ctx, tierID, true, false)

	dueDate := time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)
	createAccessTestPayment(t, ctx, overdueAcct, 2025, 3, 4500, billing.StatusUnpaid, dueDate)
	createAccessTestPayment(t, ctx, graceAcct, 2025, 3, 4500, billing.StatusUnpaid, dueDate)
	createAccessTestPayment(t, ctx, paidAcct, 2025, 3, 4500, billing.StatusPaid, dueDate)

	// Give the grace-window account a later due date
	_, err := testAccessDB.Exec(ctx, `
		UPDATE payments SET due_date = $1 WHERE account_id = $2
	`, time.Date(2025, time.March, 25, 0, 0, 0, 0, time.UTC), graceAcct)
	require.NoError(t, err)

	now := time.Date(2025, time.March, 20, 12, 0, 0, 0, time.UTC)
	svc := newTestAccessService(clock.Fixed{T: now})

	result, err := svc.SweepOverdue(ctx, billing.Period{Year: 2025, Month: 3}, now)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Locked)
	assert.Equal(t, 0, result.Unlocked)

	assert.True(t, accountLocked(t, ctx, overdueAcct))
	assert.False(t, accountLocked(t, ctx, graceAcct))
	assert.False(t, accountLocked(t, ctx, paidAcct))
}

func TestSweepOverdue_DueDateItselfIsNotOverdue(t *testing.T) {
	ctx := context.Background()
	accessTestInit(t)
	truncateAccessTables(t, ctx)

	tierID := createAccessTestTier(t, ctx, 7, 4500)
	accountID := createAccessTestAccount(t, ctx, tierID, true, false)

	dueDate := time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)
	createAccessTestPayment(t, ctx, accountID, 2025, 3, 4500, billing.StatusUnpaid, dueDate)

	svc := newTestAccessService(clock.Fixed{T: dueDate})

	result, err := svc.SweepOverdue(ctx, billing.Period{Year: 2025, Month: 3}, dueDate)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Locked)
	assert.False(t, accountLocked(t, ctx, accountID))
}

func TestSweepOverdue_SecondRunChangesNothing(t *testing.T) {
	ctx := context.Background()
	accessTestInit(t)
	truncateAccessTables(t, ctx)

	tierID := createAccessTestTier(t, ctx, 7, 4500)
	accountID := createAccessTestAccount(t, ctx, tierID, true, false)

	dueDate := time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)
	createAccessTestPayment(t, ctx, accountID, 2025, 3, 4500, billing.StatusUnpaid, dueDate)

	now := time.Date(2025, time.March, 20, 12, 0, 0, 0, time.UTC)
	svc := newTestAccessService(clock.Fixed{T: now})
	period := billing.Period{Year: 2025, Month: 3}

	first, err := svc.SweepOverdue(ctx, period, now)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Locked)

	second, err := svc.SweepOverdue(ctx, period, now)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Locked)
	assert.Equal(t, 0, second.Unlocked)
	assert.True(t, accountLocked(t, ctx, accountID))
}

func TestSweepOverdue_UnlocksLockedAccountWithPaidRecord(t *testing.T) {
	ctx := context.Background()
	accessTestInit(t)
	truncateAccessTables(t, ctx)

	tierID := createAccessTestTier(t, ctx, 7, 4500)
	accountID := createAccessTestAccount(t, ctx, tierID, true, true)

	dueDate := time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)
	createAccessTestPayment(t, ctx, accountID, 2025, 3, 4500, billing.StatusPaid, dueDate)

	now := time.Date(2025, time.March, 20, 12, 0, 0, 0, time.UTC)
	svc := newTestAccessService(clock.Fixed{T: now})

	result, err := svc.SweepOverdue(ctx, billing.Period{Year: 2025, Month: 3}, now)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Locked)
	assert.Equal(t, 1, result.Unlocked)
	assert.False(t, accountLocked(t, ctx, accountID))
}

// ===== STATUS-CHANGE HOOK =====

func TestOnStatusChanged_PaidCurrentPeriodUnlocks(t *testing.T) {
	ctx := context.Background()
	accessTestInit(t)
	truncateAccessTables(t, ctx)

	tierID := createAccessTestTier(t, ctx, 7, 4500)
	accountID := createAccessTestAccount(t, ctx, tierID, true, true)

	dueDate := time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)
	recordID := createAccessTestPayment(t, ctx, accountID, 2025, 3, 4500, billing.StatusPaid, dueDate)

	svc := newTestAccessService(clock.Fixed{T: time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)})

	err := svc.OnStatusChanged(ctx, billing.PaymentRecord{
		ID:        recordID,
		AccountID: accountID,
		Month:     3,
		Year:      2025,
		Status:    billing.StatusPaid,
	})
	require.NoError(t, err)
	assert.False(t, accountLocked(t, ctx, accountID))
}

func TestOnStatusChanged_PastPeriodDoesNotUnlock(t *testing.T) {
	ctx := context.Background()
	accessTestInit(t)
	truncateAccessTables(t, ctx)

	tierID := createAccessTestTier(t, ctx, 7, 4500)
	accountID := createAccessTestAccount(t, ctx, tierID, true, true)

	dueDate := time.Date(2025, time.February, 15, 0, 0, 0, 0, time.UTC)
	recordID := createAccessTestPayment(t, ctx, accountID, 2025, 2, 4500, billing.StatusPaid, dueDate)

	// Clock says March; paying February's record leaves the lock alone
	svc := newTestAccessService(clock.Fixed{T: time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)})

	err := svc.OnStatusChanged(ctx, billing.PaymentRecord{
		ID:        recordID,
		AccountID: accountID,
		Month:     2,
		Year:      2025,
		Status:    billing.StatusPaid,
	})
	require.NoError(t, err)
	assert.True(t, accountLocked(t, ctx, accountID))
}

// ===== MANUAL OVERRIDE =====

func TestSetAccountLock(t *testing.T) {
	ctx := context.Background()
	accessTestInit(t)
	truncateAccessTables(t, ctx)

	tierID := createAccessTestTier(t, ctx, 7, 4500)
	accountID := createAccessTestAccount(t, ctx, tierID, true, false)

	now := time.Date(2025, time.March, 20, 12, 0, 0, 0, time.UTC)
	svc := newTestAccessService(clock.Fixed{T: now})

	require.NoError(t, svc.SetAccountLock(ctx, accountID, true))
	assert.True(t, accountLocked(t, ctx, accountID))

	require.NoError(t, svc.SetAccountLock(ctx, accountID, false))
	assert.False(t, accountLocked(t, ctx, accountID))
}

func TestSetAccountLock_SweepRevertsManualLockWhenPaid(t *testing.T) {
	ctx := context.Background()
	accessTestInit(t)
	truncateAccessTables(t, ctx)

	tierID := createAccessTestTier(t, ctx, 7, 4500)
	accountID := createAccessTestAccount(t, ctx, tierID, true, false)

	dueDate := time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)
	createAccessTestPayment(t, ctx, accountID, 2025, 3, 4500, billing.StatusPaid, dueDate)

	now := time.Date(2025, time.March, 20, 12, 0, 0, 0, time.UTC)
	svc := newTestAccessService(clock.Fixed{T: now})

	require.NoError(t, svc.SetAccountLock(ctx, accountID, true))

	result, err := svc.SweepOverdue(ctx, billing.Period{Year: 2025, Month: 3}, now)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Unlocked)
	assert.False(t, accountLocked(t, ctx, accountID))
}

// ===== ACCESS STATUS =====

func TestGetAccountAccess(t *testing.T) {
	ctx := context.Background()
	accessTestInit(t)
	truncateAccessTables(t, ctx)

	tierID := createAccessTestTier(t, ctx, 7, 4500)
	now := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	dueDate := time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)
	svc := newTestAccessService(clock.Fixed{T: now})

	t.Run("paid and unlocked has access", func(t *testing.T) {
		accountID := createAccessTestAccount(t, ctx, tierID, true, false)
		createAccessTestPayment(t, ctx, accountID, 2025, 3, 4500, billing.StatusPaid, dueDate)

		status, err := svc.GetAccountAccess(ctx, accountID, now)
		require.NoError(t, err)
		assert.True(t, status.HasAccess)
		assert.True(t, status.IsPaid)
		assert.False(t, status.IsLocked)
	})

	t.Run("unpaid has no access", func(t *testing.T) {
		accountID := createAccessTestAccount(t, ctx, tierID, true, false)
		createAccessTestPayment(t, ctx, accountID, 2025, 3, 4500, billing.StatusUnpaid, dueDate)

		status, err := svc.GetAccountAccess(ctx, accountID, now)
		require.NoError(t, err)
		assert.False(t, status.HasAccess)
		assert.False(t, status.IsPaid)
	})

	t.Run("locked has no access even when paid", func(t *testing.T) {
		accountID := createAccessTestAccount(t, ctx, tierID, true, true)
		createAccessTestPayment(t, ctx, accountID, 2025, 3, 4500, billing.StatusPaid, dueDate)

		status, err := svc.GetAccountAccess(ctx, accountID, now)
		require.NoError(t, err)
		assert.False(t, status.HasAccess)
		assert.True(t, status.IsPaid)
		assert.True(t, status.IsLocked)
	})

	t.Run("no record for the period means no access", func(t *testing.T) {
		accountID := createAccessTestAccount(t, ctx, tierID, true, false)

		status, err := svc.GetAccountAccess(ctx, accountID, now)
		require.NoError(t, err)
		assert.False(t, status.HasAccess)
		assert.False(t, status.IsPaid)
	})
}
