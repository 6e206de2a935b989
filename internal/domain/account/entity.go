package account

import (
	"time"

	"github.com/shopspring/decimal"
)

// ApprovalStatus mirrors the registration workflow's states. Registration
// itself is external; billing only reads the flag.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "PENDING"
	ApprovalApproved ApprovalStatus = "APPROVED"
	ApprovalRejected ApprovalStatus = "REJECTED"
)

// Account is an enrolled subject whose access to gated resources depends on
// payment compliance. The lock flag is mutated exclusively by the access gate;
// everything else belongs to the external account directory.
type Account struct {
	ID                  string         `json:"id"`
	Name                string         `json:"name"`
	TierID              string         `json:"tier_id"`
	IsActive            bool           `json:"is_active"`
	LockedForNonpayment bool           `json:"locked_for_nonpayment"`
	ApprovalStatus      ApprovalStatus `json:"approval_status"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
}

// EligibleAccount is the directory's view of an account due for billing: the
// account plus its tier's current monthly fee at resolution time.
type EligibleAccount struct {
	ID         string
	TierID     string
	MonthlyFee decimal.Decimal
}
