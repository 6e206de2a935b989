package response

import (
	"errors"
	"net/http"

	"github.com/edutrack/tuition-backend-go/internal/domain/account"
	"github.com/edutrack/tuition-backend-go/internal/domain/billing"
	"github.com/edutrack/tuition-backend-go/internal/domain/tier"
	"github.com/edutrack/tuition-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Tier domain errors
	case errors.Is(err, tier.ErrTierNotFound):
		NotFound(w, "Tier not found")
	case errors.Is(err, tier.ErrNegativeFee):
		BadRequest(w, "Monthly fee must not be negative", nil)
	case errors.Is(err, tier.ErrLevelExists):
		Conflict(w, "Tier with this level already exists")

	// Account domain errors
	case errors.Is(err, account.ErrAccountNotFound):
		NotFound(w, "Account not found")

	// Billing domain errors
	case errors.Is(err, billing.ErrPaymentNotFound):
		NotFound(w, "Payment record not found")
	case errors.Is(err, billing.ErrDuplicateRecord):
		Conflict(w, "Payment record already exists for this account and period")
	case errors.Is(err, billing.ErrInvalidStatus):
		BadRequest(w, "Status must be PAID or UNPAID", nil)
	case errors.Is(err, billing.ErrInvalidPeriod):
		BadRequest(w, "Month must be 1-12 and year must be 2020-2100", nil)

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
