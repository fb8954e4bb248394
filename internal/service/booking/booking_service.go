package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/qurum/pitchbooking/internal/domain"
	"github.com/qurum/pitchbooking/internal/kafka"
	"github.com/qurum/pitchbooking/internal/logger"
	"github.com/qurum/pitchbooking/internal/repository"
)

type BookingUseCase interface {
	CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error)
	BookingsByPhone(ctx context.Context, phone string) ([]domain.Booking, error)
	CancelBooking(ctx context.Context, id string) (*domain.Booking, error)
	ListBookings(ctx context.Context) ([]domain.Booking, error)
	DeleteBooking(ctx context.Context, id string) error
}

type Cache interface {
	AcquireSlotLocks(ctx context.Context, slots []string, ttl time.Duration) (bool, error)
	ReleaseSlotLocks(ctx context.Context, slots []string) error
	InvalidateBookedSlots(ctx context.Context) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type BookingService struct {
	bookings           repository.BookingRepository
	pricing            repository.PricingRepository
	cache              Cache
	producer           Producer
	policy             *domain.CancellationPolicy
	bookingTopic       string
	notificationsTopic string
	lockTTL            time.Duration
}

// CreateBookingInput carries the create request. Nil price/amount mean
// "use the defaults": slots × price-per-hour for the total, full payment
// for the paid amount.
type CreateBookingInput struct {
	Name          string   `json:"name"`
	Phone         string   `json:"phone"`
	Team          string   `json:"team"`
	SelectedSlots []string `json:"selectedSlots"`
	TotalPrice    *float64 `json:"totalPrice"`
	PaidAmount    *float64 `json:"paidAmount"`
	PaymentMethod string   `json:"paymentMethod"`
}

type BookingServiceOption func(*BookingService)

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

func NewBookingService(
	bookings repository.BookingRepository,
	pricing repository.PricingRepository,
	cache Cache,
	producer Producer,
	policy *domain.CancellationPolicy,
	bookingTopic string,
	lockTTL time.Duration,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings:     bookings,
		pricing:      pricing,
		cache:        cache,
		producer:     producer,
		policy:       policy,
		bookingTopic: bookingTopic,
		lockTTL:      lockTTL,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// CreateBooking validates the request, normalizes the slot list and runs
// the check-and-reserve: slot locks serialize concurrent submissions, and
// the repository's transactional insert is the final word on overlaps. Of
// two racing creates for a shared slot exactly one succeeds; the other
// gets a SlotConflictError.
func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error) {
	if input.Name == "" {
		return nil, domain.NewValidationError("name is required")
	}
	if input.Phone == "" {
		return nil, domain.NewValidationError("phone is required")
	}
	if len(input.SelectedSlots) == 0 {
		return nil, domain.NewValidationError("at least one slot is required")
	}
	for _, slot := range input.SelectedSlots {
		if !domain.ValidSlotID(slot) {
			return nil, domain.NewValidationError("malformed slot id %q", slot)
		}
	}

	// Sorted so Slots[0] is the earliest; the cancellation window check
	// depends on that.
	slots := domain.SortSlotIDs(append([]string(nil), input.SelectedSlots...))

	totalPrice, paidAmount, err := s.resolveAmounts(ctx, input, len(slots))
	if err != nil {
		return nil, err
	}

	method := domain.PaymentMethod(input.PaymentMethod)
	if method == "" {
		method = domain.PaymentMethodCash
	}

	if s.cache != nil {
		ok, err := s.cache.AcquireSlotLocks(ctx, slots, s.lockTTL)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, &domain.SlotConflictError{Slots: slots}
		}
		// Released on every exit path; the DB constraint keeps the slots
		// held once the insert commits.
		defer func() {
			_ = s.cache.ReleaseSlotLocks(ctx, slots)
		}()
	}

	booking := &domain.Booking{
		ID:            uuid.NewString(),
		Name:          input.Name,
		Phone:         input.Phone,
		TeamName:      input.Team,
		Slots:         slots,
		TotalPrice:    totalPrice,
		PaidAmount:    paidAmount,
		PaymentMethod: method,
	}

	if err := s.bookings.Create(ctx, booking); err != nil {
		return nil, err
	}

	s.invalidateSlots(ctx)
	s.publish(ctx, "booking_created", booking)
	return booking, nil
}

func (s *BookingService) resolveAmounts(ctx context.Context, input CreateBookingInput, slotCount int) (total, paid float64, err error) {
	if input.TotalPrice != nil {
		total = *input.TotalPrice
	} else {
		price, err := s.pricing.GetPrice(ctx)
		if err != nil {
			return 0, 0, err
		}
		total = float64(slotCount) * price
	}
	if total < 0 {
		return 0, 0, domain.NewValidationError("total price must not be negative")
	}

	if input.PaidAmount != nil {
		paid = *input.PaidAmount
	} else {
		paid = total
	}
	if paid < 0 {
		return 0, 0, domain.NewValidationError("paid amount must not be negative")
	}
	return total, paid, nil
}

func (s *BookingService) BookingsByPhone(ctx context.Context, phone string) ([]domain.Booking, error) {
	if phone == "" {
		return nil, domain.NewValidationError("phone is required")
	}
	return s.bookings.ListByPhone(ctx, phone)
}

// CancelBooking is the customer-facing soft cancel, gated by the
// cancellation window. Cancelling an already-cancelled booking is a no-op
// success.
func (s *BookingService) CancelBooking(ctx context.Context, id string) (*domain.Booking, error) {
	current, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status == domain.BookingStatusCancelled {
		return current, nil
	}

	if len(current.Slots) > 0 {
		allowed, err := s.policy.Allowed(current.Slots[0], time.Now())
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, domain.ErrTooLate
		}
	}

	updated, err := s.bookings.Cancel(ctx, id)
	if err != nil {
		return nil, err
	}

	s.invalidateSlots(ctx)
	s.publish(ctx, "booking_cancelled", updated)
	return updated, nil
}

func (s *BookingService) ListBookings(ctx context.Context) ([]domain.Booking, error) {
	return s.bookings.List(ctx)
}

// DeleteBooking is the admin hard delete. It bypasses the cancellation
// policy and frees the slots immediately.
func (s *BookingService) DeleteBooking(ctx context.Context, id string) error {
	if err := s.bookings.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateSlots(ctx)
	return nil
}

func (s *BookingService) invalidateSlots(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateBookedSlots(ctx); err != nil {
		logger.ErrorLogger.Errorf("invalidate booked slots cache: %v", err)
	}
}

func (s *BookingService) publish(ctx context.Context, eventType string, booking *domain.Booking) {
	if s.producer == nil || s.bookingTopic == "" {
		return
	}
	event := kafka.BookingEvent{
		Type:       eventType,
		BookingID:  booking.ID,
		Name:       booking.Name,
		Phone:      booking.Phone,
		Slots:      booking.Slots,
		TotalPrice: booking.TotalPrice,
		Status:     string(booking.Status),
		CreatedAt:  booking.CreatedAt,
	}
	if err := s.producer.Publish(ctx, s.bookingTopic, booking.ID, event); err != nil {
		logger.ErrorLogger.Errorf("publish %s event for booking %s: %v", eventType, booking.ID, err)
		return
	}
	if s.notificationsTopic != "" {
		if err := s.producer.Publish(ctx, s.notificationsTopic, booking.ID, event); err != nil {
			logger.ErrorLogger.Errorf("publish %s notification for booking %s: %v", eventType, booking.ID, err)
		}
	}
}

var _ BookingUseCase = (*BookingService)(nil)
