package billing

import (
	"time"

	"github.com/edutrack/tuition-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type CreatePaymentRequest struct {
	AccountID string          `json:"account_id"`
	Month     int             `json:"month"`
	Year      int             `json:"year"`
	Amount    decimal.Decimal `json:"amount"`
	DueDate   string          `json:"due_date,omitempty"` // optional, "YYYY-MM-DD"
}

func (r *CreatePaymentRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.AccountID) {
		errs = append(errs, validator.ValidationError{
			Field:   "account_id",
			Message: "account_id is required",
		})
	} else if !validator.IsValidUUID(r.AccountID) {
		errs = append(errs, validator.ValidationError{
			Field:   "account_id",
			Message: "account_id must be a valid UUID",
		})
	}

	if !(Period{Year: r.Year, Month: r.Month}).Valid() {
		errs = append(errs, validator.ValidationError{
			Field:   "period",
			Message: "month must be 1-12 and year must be 2020-2100",
		})
	}

	if r.Amount.IsNegative() {
		errs = append(errs, validator.ValidationError{
			Field:   "amount",
			Message: "amount must not be negative",
		})
	}

	if r.DueDate != "" {
		if _, ok := validator.IsValidDate(r.DueDate); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "due_date",
				Message: "due_date must be in YYYY-MM-DD format",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ParsedDueDate returns the explicit due date if one was supplied. The caller
// falls back to the period due date otherwise.
func (r *CreatePaymentRequest) ParsedDueDate() (time.Time, bool) {
	if r.DueDate == "" {
		return time.Time{}, false
	}
	t, ok := validator.IsValidDate(r.DueDate)
	return t, ok
}

type SetStatusRequest struct {
	Status PaymentStatus `json:"status"`
}

func (r *SetStatusRequest) Validate() error {
	var errs validator.ValidationErrors

	if !r.Status.Valid() {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be PAID or UNPAID",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type GenerateBatchRequest struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

func (r *GenerateBatchRequest) Validate() error {
	var errs validator.ValidationErrors

	if !(Period{Year: r.Year, Month: r.Month}).Valid() {
		errs = append(errs, validator.ValidationError{
			Field:   "period",
			Message: "month must be 1-12 and year must be 2020-2100",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type SweepRequest struct {
	Month int    `json:"month"`
	Year  int    `json:"year"`
	Now   string `json:"now,omitempty"` // optional RFC3339 override, defaults to wall clock
}

func (r *SweepRequest) Validate() error {
	var errs validator.ValidationErrors

	if !(Period{Year: r.Year, Month: r.Month}).Valid() {
		errs = append(errs, validator.ValidationError{
			Field:   "period",
			Message: "month must be 1-12 and year must be 2020-2100",
		})
	}

	if r.Now != "" {
		if _, ok := validator.IsValidDateTime(r.Now); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "now",
				Message: "now must be an RFC3339 timestamp",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// SetLockRequest is the administrative lock override body.
type SetLockRequest struct {
	Locked bool `json:"locked"`
}

// PaymentFilter narrows payment listings. Zero values mean "no filter".
type PaymentFilter struct {
	Year      int
	Month     int
	TierID    string
	AccountID string
	Status    PaymentStatus
}

// BatchResult reports what a batch generation run did. Failed counts accounts
// whose record creation errored for reasons other than an existing record; the
// batch keeps going past them so a re-run can pick them up.
type BatchResult struct {
	Created        int `json:"created"`
	AlreadyExisted int `json:"already_existed"`
	Failed         int `json:"failed"`
}

// SweepResult reports lock flag changes made by an overdue sweep.
type SweepResult struct {
	Locked   int `json:"locked"`
	Unlocked int `json:"unlocked"`
}

// PeriodSummary aggregates a period's ledger at call time.
type PeriodSummary struct {
	Year            int             `json:"year"`
	Month           int             `json:"month"`
	TotalRecords    int             `json:"total_records"`
	PaidCount       int             `json:"paid_count"`
	UnpaidCount     int             `json:"unpaid_count"`
	AmountCollected decimal.Decimal `json:"amount_collected"`
	AmountOwed      decimal.Decimal `json:"amount_owed"`
}

// AccessStatus is the gating layer's view of one account.
type AccessStatus struct {
	HasAccess bool `json:"has_access"`
	IsPaid    bool `json:"is_paid"`
	IsLocked  bool `json:"is_locked"`
}

// PaymentResponse is a payment record enriched with directory data for
// administrative listings.
type PaymentResponse struct {
	ID          string          `json:"id"`
	AccountID   string          `json:"account_id"`
	AccountName string          `json:"account_name,omitempty"`
	TierID      string          `json:"tier_id,omitempty"`
	TierName    string          `json:"tier_name,omitempty"`
	Month       int             `json:"month"`
	Year        int             `json:"year"`
	Amount      decimal.Decimal `json:"amount"`
	Status      PaymentStatus   `json:"status"`
	DueDate     time.Time       `json:"due_date"`
	PaidDate    *time.Time      `json:"paid_date,omitempty"`
}

// ToPaymentResponse maps a bare record to its response shape.
func ToPaymentResponse(rec PaymentRecord) PaymentResponse {
	return PaymentResponse{
		ID:        rec.ID,
		AccountID: rec.AccountID,
		Month:     rec.Month,
		Year:      rec.Year,
		Amount:    rec.Amount,
		Status:    rec.Status,
		DueDate:   rec.DueDate,
		PaidDate:  rec.PaidDate,
	}
}
