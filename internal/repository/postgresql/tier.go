package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/edutrack/tuition-backend-go/internal/domain/tier"
	"github.com/edutrack/tuition-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

type tierRepositoryImpl struct {
	db *database.DB
}

func NewTierRepository(db *database.DB) tier.TierRepository {
	return &tierRepositoryImpl{db: db}
}

// Create implements tier.TierRepository.
func (r *tierRepositoryImpl) Create(ctx context.Context, t tier.Tier) (tier.Tier, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO tiers (id, name, level, monthly_fee)
		VALUES (gen_random_uuid(), $1, $2, $3)
		RETURNING id, name, level, monthly_fee, created_at, updated_at
	`

	var result tier.Tier
	err := q.QueryRow(ctx, query, t.Name, t.Level, t.MonthlyFee).Scan(
		&result.ID,
		&result.Name,
		&result.Level,
		&result.MonthlyFee,
		&result.CreatedAt,
		&result.UpdatedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return tier.Tier{}, tier.ErrLevelExists
			case "23514":
				return tier.Tier{}, tier.ErrNegativeFee
			}
		}
		return tier.Tier{}, fmt.Errorf("failed to create tier: %w", err)
	}

	return result, nil
}

// GetByID implements tier.TierRepository.
func (r *tierRepositoryImpl) GetByID(ctx context.Context, id string) (tier.Tier, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, name, level, monthly_fee, created_at, updated_at
		FROM tiers
		WHERE id = $1
	`

	var result tier.Tier
	err := q.QueryRow(ctx, query, id).Scan(
		&result.ID,
		&result.Name,
		&result.Level,
		&result.MonthlyFee,
		&result.CreatedAt,
		&result.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return tier.Tier{}, tier.ErrTierNotFound
	}

	if err != nil {
		return tier.Tier{}, fmt.Errorf("failed to get tier: %w", err)
	}

	return result, nil
}

// List implements tier.TierRepository. Tiers are always returned in level
// order; insertion order is meaningless.
func (r *tierRepositoryImpl) List(ctx context.Context) ([]tier.Tier, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, name, level, monthly_fee, created_at, updated_at
		FROM tiers
		ORDER BY level ASC
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list tiers: %w", err)
	}
	defer rows.Close()

	var tiers []tier.Tier
	for rows.Next() {
		var t tier.Tier
		err := rows.Scan(
			&t.ID,
			&t.Name,
			&t.Level,
			&t.MonthlyFee,
			&t.CreatedAt,
			&t.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tier: %w", err)
		}
		tiers = append(tiers, t)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return tiers, nil
}

// SetFee implements tier.TierRepository. The monthly_fee check constraint is
// the backstop for callers that skip request validation; a violation maps to
// ErrNegativeFee.
func (r *tierRepositoryImpl) SetFee(ctx context.Context, id string, fee decimal.Decimal) (tier.Tier, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE tiers
		SET monthly_fee = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING id, name, level, monthly_fee, created_at, updated_at
	`

	var result tier.Tier
	err := q.QueryRow(ctx, query, fee, id).Scan(
		&result.ID,
		&result.Name,
		&result.Level,
		&result.MonthlyFee,
		&result.CreatedAt,
		&result.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return tier.Tier{}, tier.ErrTierNotFound
	}

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23514" {
			return tier.Tier{}, tier.ErrNegativeFee
		}
		return tier.Tier{}, fmt.Errorf("failed to update tier fee: %w", err)
	}

	return result, nil
}
