package tier

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/edutrack/tuition-backend-go/internal/domain/billing"
	"github.com/edutrack/tuition-backend-go/internal/domain/tier"
	"github.com/edutrack/tuition-backend-go/internal/pkg/database"
	"github.com/edutrack/tuition-backend-go/internal/repository/postgresql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTierDB *database.DB

func tierTestInit(t *testing.T) {
	t.Helper()
	if testTierDB != nil {
		return
	}
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	var err error
	testTierDB, err = database.NewPostgreSQLDB(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
}

func truncateTierTables(t *testing.T, ctx context.Context) {
	t.Helper()
	for _, table := range []string{"payments", "accounts", "tiers"} {
		_, err := testTierDB.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		require.NoError(t, err)
	}
}

func createTierTestAccount(t *testing.T, ctx context.Context, tierID string) string {
	t.Helper()
	var accountID string
	name := fmt.Sprintf("account-%d", time.Now().UnixNano())
	err := testTierDB.QueryRow(ctx, `
		INSERT INTO accounts (id, name, tier_id, is_active, approval_status)
		VALUES (gen_random_uuid(), $1, $2, TRUE, 'APPROVED')
		RETURNING id
	`, name, tierID).Scan(&accountID)
	require.NoError(t, err)
	return accountID
}

func createTierTestPayment(t *testing.T, ctx context.Context, accountID string, amount int64, status billing.PaymentStatus) string {
	t.Helper()
	var recordID string
	err := testTierDB.QueryRow(ctx, `
		INSERT INTO payments (id, account_id, month, year, amount, status, due_date)
		VALUES (gen_random_uuid(), $1, 3, 2025, $2, $3, $4)
		RETURNING id
	`, accountID, amount, status, time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)).Scan(&recordID)
	require.NoError(t, err)
	return recordID
}

func paymentAmount(t *testing.T, ctx context.Context, recordID string) decimal.Decimal {
	t.Helper()
	var amount decimal.Decimal
	err := testTierDB.QueryRow(ctx, `SELECT amount FROM payments WHERE id = $1`, recordID).Scan(&amount)
	require.NoError(t, err)
	return amount
}

func newTestTierService() tier.TierService {
	return NewTierService(
		testTierDB,
		postgresql.NewTierRepository(testTierDB),
		postgresql.NewPaymentRepository(testTierDB),
	)
}

func TestCreateTier(t *testing.T) {
	ctx := context.Background()
	tierTestInit(t)
	truncateTierTables(t, ctx)

	svc := newTestTierService()

	created, err := svc.CreateTier(ctx, tier.CreateTierRequest{
		Name:       "Grade 7",
		Level:      7,
		MonthlyFee: decimal.NewFromInt(4500),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Grade 7", created.Name)
	assert.True(t, decimal.NewFromInt(4500).Equal(created.MonthlyFee))

	// Level is unique
	_, err = svc.CreateTier(ctx, tier.CreateTierRequest{
		Name:       "Grade 7 B",
		Level:      7,
		MonthlyFee: decimal.NewFromInt(4800),
	})
	assert.ErrorIs(t, err, tier.ErrLevelExists)
}

func TestCreateTier_NegativeFeeRejected(t *testing.T) {
	ctx := context.Background()
	tierTestInit(t)

	svc := newTestTierService()

	_, err := svc.CreateTier(ctx, tier.CreateTierRequest{
		Name:       "Grade 9",
		Level:      9,
		MonthlyFee: decimal.NewFromInt(-100),
	})
	assert.Error(t, err)
}

// The check constraint backs up request validation: a negative fee written
// straight through the repository surfaces as ErrNegativeFee.
func TestSetFee_NegativeFeeBlockedByConstraint(t *testing.T) {
	ctx := context.Background()
	tierTestInit(t)
	truncateTierTables(t, ctx)

	svc := newTestTierService()

	created, err := svc.CreateTier(ctx, tier.CreateTierRequest{
		Name:       "Grade 7",
		Level:      7,
		MonthlyFee: decimal.NewFromInt(4500),
	})
	require.NoError(t, err)

	repo := postgresql.NewTierRepository(testTierDB)
	_, err = repo.SetFee(ctx, created.ID, decimal.NewFromInt(-1))
	assert.ErrorIs(t, err, tier.ErrNegativeFee)

	unchanged, err := svc.GetTier(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(4500).Equal(unchanged.MonthlyFee))
}

func TestListTiers_OrderedByLevel(t *testing.T) {
	ctx := context.Background()
	tierTestInit(t)
	truncateTierTables(t, ctx)

	svc := newTestTierService()

	for _, spec := range []struct {
		name  string
		level int
	}{
		{"Grade 9", 9},
		{"Grade 7", 7},
		{"Grade 8", 8},
	} {
		_, err := svc.CreateTier(ctx, tier.CreateTierRequest{
			Name:       spec.name,
			Level:      spec.level,
			MonthlyFee: decimal.NewFromInt(4500),
		})
		require.NoError(t, err)
	}

	tiers, err := svc.ListTiers(ctx)
	require.NoError(t, err)
	require.Len(t, tiers, 3)
	assert.Equal(t, []int{7, 8, 9}, []int{tiers[0].Level, tiers[1].Level, tiers[2].Level})
}

// The fee cascade touches UNPAID records of the tier only. PAID records keep
// the amount that was actually charged, and other tiers are untouched.
func TestUpdateFeeAndPropagate(t *testing.T) {
	ctx := context.Background()
	tierTestInit(t)
	truncateTierTables(t, ctx)

	svc := newTestTierService()

	grade7, err := svc.CreateTier(ctx, tier.CreateTierRequest{
		Name:       "Grade 7",
		Level:      7,
		MonthlyFee: decimal.NewFromInt(4500),
	})
	require.NoError(t, err)
	grade8, err := svc.CreateTier(ctx, tier.CreateTierRequest{
		Name:       "Grade 8",
		Level:      8,
		MonthlyFee: decimal.NewFromInt(4800),
	})
	require.NoError(t, err)

	paidAcct := createTierTestAccount(t, ctx, grade7.ID)
	unpaidAcct := createTierTestAccount(t, ctx, grade7.ID)
	otherAcct := createTierTestAccount(t, ctx, grade8.ID)

	paidRec := createTierTestPayment(t, ctx, paidAcct, 4500, billing.StatusPaid)
	unpaidRec := createTierTestPayment(t, ctx, unpaidAcct, 4500, billing.StatusUnpaid)
	otherRec := createTierTestPayment(t, ctx, otherAcct, 4800, billing.StatusUnpaid)

	result, err := svc.UpdateFeeAndPropagate(ctx, grade7.ID, tier.UpdateFeeRequest{
		MonthlyFee: decimal.NewFromInt(5000),
	})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(5000).Equal(result.Tier.MonthlyFee))
	assert.Equal(t, int64(1), result.RecordsUpdated)

	assert.True(t, decimal.NewFromInt(4500).Equal(paymentAmount(t, ctx, paidRec)))
	assert.True(t, decimal.NewFromInt(5000).Equal(paymentAmount(t, ctx, unpaidRec)))
	assert.True(t, decimal.NewFromInt(4800).Equal(paymentAmount(t, ctx, otherRec)))
}

func TestUpdateFeeAndPropagate_UnknownTier(t *testing.T) {
	ctx := context.Background()
	tierTestInit(t)
	truncateTierTables(t, ctx)

	svc := newTestTierService()

	_, err := svc.UpdateFeeAndPropagate(ctx, "00000000-0000-4000-8000-000000000000", tier.UpdateFeeRequest{
		MonthlyFee: decimal.NewFromInt(5000),
	})
	assert.ErrorIs(t, err, tier.ErrTierNotFound)
}
