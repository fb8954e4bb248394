package repository

import (
	"context"
	"errors"
	"math"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/qurum/pitchbooking/internal/domain"
)

// PricingRepository manages the singleton price-per-hour record.
type PricingRepository interface {
	GetPrice(ctx context.Context) (float64, error)
	SetPrice(ctx context.Context, price float64) (float64, error)
}

const pricingRowID = 1

type PGPricingRepository struct {
	db           *pgxpool.Pool
	defaultPrice float64
}

// NewPricingRepository returns a repository that falls back to
// defaultPrice while no config row exists. The row is created lazily on
// the first SetPrice.
func NewPricingRepository(db *pgxpool.Pool, defaultPrice float64) PricingRepository {
	return &PGPricingRepository{db: db, defaultPrice: defaultPrice}
}

func (r *PGPricingRepository) GetPrice(ctx context.Context) (float64, error) {
	var price float64
	err := r.db.QueryRow(ctx, `SELECT price_per_hour FROM config WHERE id=$1`, pricingRowID).Scan(&price)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return r.defaultPrice, nil
		}
		return 0, err
	}
	return price, nil
}

func (r *PGPricingRepository) SetPrice(ctx context.Context, price float64) (float64, error) {
	if !(price > 0) || math.IsInf(price, 1) {
		return 0, domain.NewValidationError("price must be a positive finite number")
	}
	err := r.db.QueryRow(ctx, `INSERT INTO config (id, price_per_hour) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET price_per_hour = EXCLUDED.price_per_hour
		RETURNING price_per_hour`, pricingRowID, price).Scan(&price)
	if err != nil {
		return 0, err
	}
	return price, nil
}

var _ PricingRepository = (*PGPricingRepository)(nil)
