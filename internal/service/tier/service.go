package tier

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/edutrack/tuition-backend-go/internal/domain/billing"
	"github.com/edutrack/tuition-backend-go/internal/domain/tier"
	"github.com/edutrack/tuition-backend-go/internal/pkg/database"
	"github.com/edutrack/tuition-backend-go/internal/repository/postgresql"
	"github.com/jackc/pgx/v5"
)

type tierService struct {
	db          *database.DB
	tierRepo    tier.TierRepository
	paymentRepo billing.PaymentRepository
}

func NewTierService(
	db *database.DB,
	tierRepo tier.TierRepository,
	paymentRepo billing.PaymentRepository,
) tier.TierService {
	return &tierService{
		db:          db,
		tierRepo:    tierRepo,
		paymentRepo: paymentRepo,
	}
}

func (s *tierService) ListTiers(ctx context.Context) ([]tier.TierResponse, error) {
	tiers, err := s.tierRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tiers: %w", err)
	}

	responses := make([]tier.TierResponse, len(tiers))
	for i, t := range tiers {
		responses[i] = tier.ToTierResponse(t)
	}
	return responses, nil
}

func (s *tierService) GetTier(ctx context.Context, id string) (tier.TierResponse, error) {
	t, err := s.tierRepo.GetByID(ctx, id)
	if err != nil {
		return tier.TierResponse{}, err
	}
	return tier.ToTierResponse(t), nil
}

func (s *tierService) CreateTier(ctx context.Context, req tier.CreateTierRequest) (tier.TierResponse, error) {
	if err := req.Validate(); err != nil {
		return tier.TierResponse{}, err
	}

	created, err := s.tierRepo.Create(ctx, tier.Tier{
		Name:       req.Name,
		Level:      req.Level,
		MonthlyFee: req.MonthlyFee,
	})
	if err != nil {
		return tier.TierResponse{}, err
	}

	return tier.ToTierResponse(created), nil
}

// UpdateFeeAndPropagate sets the fee and cascades it to unresolved ledger
// entries in one transaction. The cascade is a single conditional bulk update;
// records that transition to PAID concurrently keep their charged amount.
func (s *tierService) UpdateFeeAndPropagate(ctx context.Context, tierID string, req tier.UpdateFeeRequest) (tier.FeeUpdateResult, error) {
	if err := req.Validate(); err != nil {
		return tier.FeeUpdateResult{}, err
	}

	var result tier.FeeUpdateResult
	err := postgresql.WithTransaction(ctx, s.db, func(tx pgx.Tx) error {
		txCtx := context.WithValue(ctx, "tx", tx)

		updated, err := s.tierRepo.SetFee(txCtx, tierID, req.MonthlyFee)
		if err != nil {
			return err
		}

		count, err := s.paymentRepo.UpdateAmountForTierWhereUnpaid(txCtx, tierID, req.MonthlyFee)
		if err != nil {
			return err
		}

		result = tier.FeeUpdateResult{
			Tier:           tier.ToTierResponse(updated),
			RecordsUpdated: count,
		}
		return nil
	})
	if err != nil {
		return tier.FeeUpdateResult{}, err
	}

	slog.Info("Tier fee updated",
		"tier_id", tierID,
		"monthly_fee", req.MonthlyFee.String(),
		"records_updated", result.RecordsUpdated,
	)

	return result, nil
}
