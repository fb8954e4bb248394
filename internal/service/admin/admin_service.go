package admin

import (
	"context"
	"time"

	"github.com/qurum/pitchbooking/internal/domain"
	"github.com/qurum/pitchbooking/internal/repository"
)

type AdminUseCase interface {
	Stats(ctx context.Context) (*domain.Stats, error)
	Customers(ctx context.Context) ([]domain.Customer, error)
	GetPrice(ctx context.Context) (float64, error)
	SetPrice(ctx context.Context, price float64) (float64, error)
}

type AdminService struct {
	bookings repository.BookingRepository
	pricing  repository.PricingRepository
	now      func() time.Time
}

func NewAdminService(bookings repository.BookingRepository, pricing repository.PricingRepository) *AdminService {
	return &AdminService{bookings: bookings, pricing: pricing, now: time.Now}
}

// Stats buckets revenue by the local start of day and month.
func (s *AdminService) Stats(ctx context.Context) (*domain.Stats, error) {
	now := s.now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return s.bookings.Stats(ctx, dayStart, monthStart)
}

func (s *AdminService) Customers(ctx context.Context) ([]domain.Customer, error) {
	return s.bookings.Customers(ctx)
}

func (s *AdminService) GetPrice(ctx context.Context) (float64, error) {
	return s.pricing.GetPrice(ctx)
}

func (s *AdminService) SetPrice(ctx context.Context, price float64) (float64, error) {
	return s.pricing.SetPrice(ctx, price)
}

var _ AdminUseCase = (*AdminService)(nil)
