package billing

import (
	"fmt"
	"time"
)

// Period is a (year, month) billing cycle. Exactly one payment record exists
// per account per period.
type Period struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// PeriodOf returns the billing period containing t.
func PeriodOf(t time.Time) Period {
	return Period{Year: t.Year(), Month: int(t.Month())}
}

// Valid reports whether the period holds a real month and a sane year.
func (p Period) Valid() bool {
	return p.Month >= 1 && p.Month <= 12 && p.Year >= 2020 && p.Year <= 2100
}

// Start returns midnight UTC on the first day of the period's month.
func (p Period) Start() time.Time {
	return time.Date(p.Year, time.Month(p.Month), 1, 0, 0, 0, 0, time.UTC)
}

// DueDate returns the period start plus the configured grace period, in
// calendar days. gracePeriodDays is a single global value; it never varies per
// tier or per account.
func (p Period) DueDate(gracePeriodDays int) time.Time {
	return p.Start().AddDate(0, 0, gracePeriodDays)
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}

// Overdue reports whether now is strictly past dueDate. At now == dueDate the
// record is not yet overdue.
func Overdue(dueDate, now time.Time) bool {
	return now.After(dueDate)
}
