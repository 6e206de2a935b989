package tier

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tier is a pricing group (grade level) with its own monthly fee. Level is a
// strictly ordered, unique ordinal; it is the sort key everywhere tiers are
// listed and it never changes after creation.
type Tier struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Level      int             `json:"level"`
	MonthlyFee decimal.Decimal `json:"monthly_fee"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}
