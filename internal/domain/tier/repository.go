package tier

import (
	"context"

	"github.com/shopspring/decimal"
)

type TierRepository interface {
	// Create inserts a tier. The level must be unique across tiers.
	Create(ctx context.Context, t Tier) (Tier, error)

	// GetByID retrieves a tier by id.
	GetByID(ctx context.Context, id string) (Tier, error)

	// List retrieves all tiers ordered by level ascending. Listing code must
	// never assume insertion order.
	List(ctx context.Context) ([]Tier, error)

	// SetFee updates a tier's monthly fee and returns the updated tier. The
	// registry does not cascade to the ledger; the fee propagator does.
	SetFee(ctx context.Context, id string, fee decimal.Decimal) (Tier, error)
}

// TierService exposes registry reads and the fee-change operation that
// cascades to unresolved ledger entries.
type TierService interface {
	ListTiers(ctx context.Context) ([]TierResponse, error)
	GetTier(ctx context.Context, id string) (TierResponse, error)
	CreateTier(ctx context.Context, req CreateTierRequest) (TierResponse, error)

	// UpdateFeeAndPropagate sets the tier's fee and, in the same transaction,
	// bulk-updates every UNPAID record for accounts in the tier to the new
	// amount. PAID records keep the amount that was actually charged.
	UpdateFeeAndPropagate(ctx context.Context, tierID string, req UpdateFeeRequest) (FeeUpdateResult, error)
}
