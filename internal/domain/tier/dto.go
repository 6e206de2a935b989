package tier

import (
	"github.com/edutrack/tuition-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type CreateTierRequest struct {
	Name       string          `json:"name"`
	Level      int             `json:"level"`
	MonthlyFee decimal.Decimal `json:"monthly_fee"`
}

func (r *CreateTierRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name is required",
		})
	}
	if len(r.Name) > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name must not exceed 100 characters",
		})
	}

	if r.Level < 1 {
		errs = append(errs, validator.ValidationError{
			Field:   "level",
			Message: "level must be a positive integer",
		})
	}

	if r.MonthlyFee.IsNegative() {
		errs = append(errs, validator.ValidationError{
			Field:   "monthly_fee",
			Message: "monthly_fee must not be negative",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type UpdateFeeRequest struct {
	MonthlyFee decimal.Decimal `json:"monthly_fee"`
}

func (r *UpdateFeeRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.MonthlyFee.IsNegative() {
		errs = append(errs, validator.ValidationError{
			Field:   "monthly_fee",
			Message: "monthly_fee must not be negative",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type TierResponse struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Level      int             `json:"level"`
	MonthlyFee decimal.Decimal `json:"monthly_fee"`
}

// FeeUpdateResult reports a fee change and how many unresolved ledger entries
// it cascaded to.
type FeeUpdateResult struct {
	Tier           TierResponse `json:"tier"`
	RecordsUpdated int64        `json:"records_updated"`
}

func ToTierResponse(t Tier) TierResponse {
	return TierResponse{
		ID:         t.ID,
		Name:       t.Name,
		Level:      t.Level,
		MonthlyFee: t.MonthlyFee,
	}
}
