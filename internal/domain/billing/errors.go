package billing

import "errors"

var (
	ErrPaymentNotFound = errors.New("payment record not found")
	ErrDuplicateRecord = errors.New("payment record already exists for this account and period")
	ErrInvalidStatus   = errors.New("invalid payment status")
	ErrInvalidPeriod   = errors.New("invalid billing period")
)
