package billing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPeriodDueDate(t *testing.T) {
	p := Period{Year: 2025, Month: 3}

	due := p.DueDate(14)
	assert.Equal(t, time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC), due)

	// Zero grace period falls on the first of the month
	assert.Equal(t, p.Start(), p.DueDate(0))

	// Calendar-day arithmetic crosses month boundaries
	jan := Period{Year: 2025, Month: 1}
	assert.Equal(t, time.Date(2025, time.February, 14, 0, 0, 0, 0, time.UTC), jan.DueDate(44))
}

func TestOverdueIsStrict(t *testing.T) {
	due := time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)

	assert.False(t, Overdue(due, due), "not overdue at the due date itself")
	assert.False(t, Overdue(due, due.Add(-time.Second)))
	assert.True(t, Overdue(due, due.Add(24*time.Hour)))
	assert.True(t, Overdue(due, due.Add(time.Second)))
}

func TestPeriodValid(t *testing.T) {
	assert.True(t, Period{Year: 2025, Month: 1}.Valid())
	assert.True(t, Period{Year: 2025, Month: 12}.Valid())
	assert.False(t, Period{Year: 2025, Month: 0}.Valid())
	assert.False(t, Period{Year: 2025, Month: 13}.Valid())
	assert.False(t, Period{Year: 2019, Month: 6}.Valid())
	assert.False(t, Period{Year: 2101, Month: 6}.Valid())
}

func TestPeriodOf(t *testing.T) {
	p := PeriodOf(time.Date(2025, time.March, 20, 13, 45, 0, 0, time.UTC))
	assert.Equal(t, Period{Year: 2025, Month: 3}, p)
	assert.Equal(t, "2025-03", p.String())
}

func TestPaymentRecordIsOverdue(t *testing.T) {
	due := time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)
	after := due.AddDate(0, 0, 5)

	unpaid := PaymentRecord{Status: StatusUnpaid, DueDate: due}
	assert.True(t, unpaid.IsOverdue(after))
	assert.False(t, unpaid.IsOverdue(due))

	// A paid record is never overdue, no matter the dates
	paid := PaymentRecord{Status: StatusPaid, DueDate: due}
	assert.False(t, paid.IsOverdue(after))
}

func TestCreatePaymentRequestValidate(t *testing.T) {
	valid := CreatePaymentRequest{
		AccountID: "0188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b",
		Month:     3,
		Year:      2025,
		Amount:    decimal.NewFromInt(4500),
	}
	assert.NoError(t, valid.Validate())

	badPeriod := valid
	badPeriod.Month = 13
	assert.Error(t, badPeriod.Validate())

	negative := valid
	negative.Amount = decimal.NewFromInt(-1)
	assert.Error(t, negative.Validate())

	noAccount := valid
	noAccount.AccountID = ""
	assert.Error(t, noAccount.Validate())

	badDate := valid
	badDate.DueDate = "15-03-2025"
	assert.Error(t, badDate.Validate())

	withDate := valid
	withDate.DueDate = "2025-03-20"
	assert.NoError(t, withDate.Validate())
	due, ok := withDate.ParsedDueDate()
	assert.True(t, ok)
	assert.Equal(t, time.Date(2025, time.March, 20, 0, 0, 0, 0, time.UTC), due)
}

func TestSetStatusRequestValidate(t *testing.T) {
	ok := SetStatusRequest{Status: StatusPaid}
	assert.NoError(t, ok.Validate())

	bad := SetStatusRequest{Status: "SETTLED"}
	assert.Error(t, bad.Validate())
}

func TestSweepRequestValidate(t *testing.T) {
	ok := SweepRequest{Month: 3, Year: 2025}
	assert.NoError(t, ok.Validate())

	withNow := SweepRequest{Month: 3, Year: 2025, Now: "2025-03-20T00:00:00Z"}
	assert.NoError(t, withNow.Validate())

	badNow := SweepRequest{Month: 3, Year: 2025, Now: "2025-03-20"}
	assert.Error(t, badNow.Validate())
}
