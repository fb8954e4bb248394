package schedule

import (
	"context"

	"github.com/qurum/pitchbooking/internal/repository"
)

type ScheduleUseCase interface {
	BookedSlots(ctx context.Context) ([]string, error)
}

// Cache is the read-through store for the booked-slot set. The booking
// service invalidates it on every ledger mutation.
type Cache interface {
	GetBookedSlots(ctx context.Context) ([]string, error)
	SetBookedSlots(ctx context.Context, slots []string) error
}

type ScheduleService struct {
	repo  repository.BookingRepository
	cache Cache
}

func NewScheduleService(repo repository.BookingRepository, cache Cache) *ScheduleService {
	return &ScheduleService{repo: repo, cache: cache}
}

// BookedSlots returns every slot identifier currently held by an active
// booking. A slot is bookable iff it is absent from this set.
func (s *ScheduleService) BookedSlots(ctx context.Context) ([]string, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetBookedSlots(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	slots, err := s.repo.BookedSlots(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.SetBookedSlots(ctx, slots)
	}
	return slots, nil
}

var _ ScheduleUseCase = (*ScheduleService)(nil)
