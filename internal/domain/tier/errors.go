package tier

import "errors"

var (
	ErrTierNotFound = errors.New("tier not found")
	ErrNegativeFee  = errors.New("monthly fee must not be negative")
	ErrLevelExists  = errors.New("tier with this level already exists")
)
