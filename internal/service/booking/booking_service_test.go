package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/qurum/pitchbooking/internal/domain"
	"github.com/qurum/pitchbooking/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func init() {
	logger.InitLoggers("", "error")
}

type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	args := m.Called(ctx, booking)
	return args.Error(0)
}

func (m *MockBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) List(ctx context.Context) ([]domain.Booking, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) ListByPhone(ctx context.Context, phone string) ([]domain.Booking, error) {
	args := m.Called(ctx, phone)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) Cancel(ctx context.Context, id string) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockBookingRepository) BookedSlots(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockBookingRepository) Stats(ctx context.Context, dayStart, monthStart time.Time) (*domain.Stats, error) {
	args := m.Called(ctx, dayStart, monthStart)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Stats), args.Error(1)
}

func (m *MockBookingRepository) Customers(ctx context.Context) ([]domain.Customer, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Customer), args.Error(1)
}

type MockPricingRepository struct {
	mock.Mock
}

func (m *MockPricingRepository) GetPrice(ctx context.Context) (float64, error) {
	args := m.Called(ctx)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockPricingRepository) SetPrice(ctx context.Context, price float64) (float64, error) {
	args := m.Called(ctx, price)
	return args.Get(0).(float64), args.Error(1)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) AcquireSlotLocks(ctx context.Context, slots []string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, slots, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockCache) ReleaseSlotLocks(ctx context.Context, slots []string) error {
	args := m.Called(ctx, slots)
	return args.Error(0)
}

func (m *MockCache) InvalidateBookedSlots(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) Publish(ctx context.Context, topic, key string, value interface{}) error {
	args := m.Called(ctx, topic, key, value)
	return args.Error(0)
}

func newTestService(repo *MockBookingRepository, pricing *MockPricingRepository, cache *MockCache, producer *MockProducer) *BookingService {
	return &BookingService{
		bookings:     repo,
		pricing:      pricing,
		cache:        cache,
		producer:     producer,
		policy:       domain.NewCancellationPolicy(6 * time.Hour),
		bookingTopic: "booking-events",
		lockTTL:      30 * time.Second,
	}
}

// futureSlot builds a valid slot id d from now.
func futureSlot(d time.Duration) string {
	return time.Now().Add(d).Format("2006-01-02-15:04")
}

func TestBookingService_CreateBooking_DefaultsFromPricing(t *testing.T) {
	mockRepo := &MockBookingRepository{}
	mockPricing := &MockPricingRepository{}
	mockCache := &MockCache{}
	mockProducer := &MockProducer{}
	service := newTestService(mockRepo, mockPricing, mockCache, mockProducer)

	ctx := context.Background()
	input := CreateBookingInput{
		Name:  "Ahmed",
		Phone: "99887766",
		Team:  "Falcons",
		SelectedSlots: []string{
			"2024-06-01-21:00",
			"2024-06-01-19:00",
			"2024-06-01-20:00",
		},
	}
	sorted := []string{"2024-06-01-19:00", "2024-06-01-20:00", "2024-06-01-21:00"}

	mockPricing.On("GetPrice", ctx).Return(float64(15), nil).Once()
	mockCache.On("AcquireSlotLocks", ctx, sorted, 30*time.Second).Return(true, nil).Once()
	mockCache.On("ReleaseSlotLocks", ctx, sorted).Return(nil).Once()
	mockCache.On("InvalidateBookedSlots", ctx).Return(nil).Once()
	mockRepo.On("Create", ctx, mock.AnythingOfType("*domain.Booking")).Return(nil).Once()
	mockProducer.On("Publish", ctx, "booking-events", mock.Anything, mock.Anything).Return(nil).Once()

	booking, err := service.CreateBooking(ctx, input)

	assert.NoError(t, err)
	assert.NotNil(t, booking)
	assert.NotEmpty(t, booking.ID)
	assert.Equal(t, sorted, booking.Slots)
	assert.Equal(t, float64(45), booking.TotalPrice)
	assert.Equal(t, float64(45), booking.PaidAmount)
	assert.Equal(t, domain.PaymentMethodCash, booking.PaymentMethod)
	assert.Equal(t, domain.PaymentStatusPaid, booking.PaymentStatus())

	mockRepo.AssertExpectations(t)
	mockPricing.AssertExpectations(t)
	mockCache.AssertExpectations(t)
	mockProducer.AssertExpectations(t)
}

func TestBookingService_CreateBooking_ExplicitAmounts(t *testing.T) {
	mockRepo := &MockBookingRepository{}
	mockPricing := &MockPricingRepository{}
	mockCache := &MockCache{}
	mockProducer := &MockProducer{}
	service := newTestService(mockRepo, mockPricing, mockCache, mockProducer)

	ctx := context.Background()
	total := float64(45)
	paid := float64(20)
	input := CreateBookingInput{
		Name:          "Said",
		Phone:         "91234567",
		SelectedSlots: []string{"2024-06-01-19:00"},
		TotalPrice:    &total,
		PaidAmount:    &paid,
		PaymentMethod: "TRANSFER",
	}

	mockCache.On("AcquireSlotLocks", ctx, input.SelectedSlots, 30*time.Second).Return(true, nil).Once()
	mockCache.On("ReleaseSlotLocks", ctx, input.SelectedSlots).Return(nil).Once()
	mockCache.On("InvalidateBookedSlots", ctx).Return(nil).Once()
	mockRepo.On("Create", ctx, mock.AnythingOfType("*domain.Booking")).Return(nil).Once()
	mockProducer.On("Publish", ctx, "booking-events", mock.Anything, mock.Anything).Return(nil).Once()

	booking, err := service.CreateBooking(ctx, input)

	assert.NoError(t, err)
	assert.Equal(t, float64(45), booking.TotalPrice)
	assert.Equal(t, float64(20), booking.PaidAmount)
	assert.Equal(t, domain.PaymentMethodTransfer, booking.PaymentMethod)
	assert.Equal(t, domain.PaymentStatusPartial, booking.PaymentStatus())
	assert.Equal(t, float64(25), booking.Remaining())

	// Caller supplied the price, the pricing repo must not be consulted.
	mockPricing.AssertNotCalled(t, "GetPrice")
	mockRepo.AssertExpectations(t)
}

func TestBookingService_CreateBooking_ValidationErrors(t *testing.T) {
	service := newTestService(&MockBookingRepository{}, &MockPricingRepository{}, &MockCache{}, &MockProducer{})
	ctx := context.Background()

	negative := float64(-5)
	testCases := []struct {
		name  string
		input CreateBookingInput
	}{
		{
			name:  "missing name",
			input: CreateBookingInput{Phone: "99887766", SelectedSlots: []string{"2024-06-01-19:00"}},
		},
		{
			name:  "missing phone",
			input: CreateBookingInput{Name: "Ahmed", SelectedSlots: []string{"2024-06-01-19:00"}},
		},
		{
			name:  "empty slot list",
			input: CreateBookingInput{Name: "Ahmed", Phone: "99887766"},
		},
		{
			name:  "malformed slot id",
			input: CreateBookingInput{Name: "Ahmed", Phone: "99887766", SelectedSlots: []string{"tuesday-evening"}},
		},
		{
			name: "negative total price",
			input: CreateBookingInput{
				Name: "Ahmed", Phone: "99887766",
				SelectedSlots: []string{"2024-06-01-19:00"},
				TotalPrice:    &negative,
			},
		},
		{
			name: "negative paid amount",
			input: CreateBookingInput{
				Name: "Ahmed", Phone: "99887766",
				SelectedSlots: []string{"2024-06-01-19:00"},
				PaidAmount:    &negative,
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.input.TotalPrice == nil && len(tc.input.SelectedSlots) > 0 && domain.ValidSlotID(tc.input.SelectedSlots[0]) {
				service.pricing.(*MockPricingRepository).On("GetPrice", ctx).Return(float64(15), nil).Maybe()
			}
			booking, err := service.CreateBooking(ctx, tc.input)
			assert.Error(t, err)
			assert.Nil(t, booking)

			var validationErr *domain.ValidationError
			assert.ErrorAs(t, err, &validationErr)
		})
	}
}

func TestBookingService_CreateBooking_SlotsLocked(t *testing.T) {
	mockRepo := &MockBookingRepository{}
	mockPricing := &MockPricingRepository{}
	mockCache := &MockCache{}
	service := newTestService(mockRepo, mockPricing, mockCache, &MockProducer{})

	ctx := context.Background()
	input := CreateBookingInput{
		Name:          "Ahmed",
		Phone:         "99887766",
		SelectedSlots: []string{"2024-06-01-19:00"},
	}

	mockPricing.On("GetPrice", ctx).Return(float64(15), nil).Once()
	mockCache.On("AcquireSlotLocks", ctx, input.SelectedSlots, 30*time.Second).Return(false, nil).Once()

	booking, err := service.CreateBooking(ctx, input)

	assert.Error(t, err)
	assert.Nil(t, booking)

	var conflictErr *domain.SlotConflictError
	assert.ErrorAs(t, err, &conflictErr)
	assert.Equal(t, input.SelectedSlots, conflictErr.Slots)

	mockCache.AssertExpectations(t)
	mockRepo.AssertNotCalled(t, "Create")
}

func TestBookingService_CreateBooking_RepositoryConflict(t *testing.T) {
	mockRepo := &MockBookingRepository{}
	mockPricing := &MockPricingRepository{}
	mockCache := &MockCache{}
	mockProducer := &MockProducer{}
	service := newTestService(mockRepo, mockPricing, mockCache, mockProducer)

	ctx := context.Background()
	input := CreateBookingInput{
		Name:          "Ahmed",
		Phone:         "99887766",
		SelectedSlots: []string{"2024-06-01-19:00"},
	}

	conflict := &domain.SlotConflictError{Slots: input.SelectedSlots}
	mockPricing.On("GetPrice", ctx).Return(float64(15), nil).Once()
	mockCache.On("AcquireSlotLocks", ctx, input.SelectedSlots, 30*time.Second).Return(true, nil).Once()
	mockCache.On("ReleaseSlotLocks", ctx, input.SelectedSlots).Return(nil).Once()
	mockRepo.On("Create", ctx, mock.Anything).Return(conflict).Once()

	booking, err := service.CreateBooking(ctx, input)

	assert.Error(t, err)
	assert.Nil(t, booking)

	var conflictErr *domain.SlotConflictError
	assert.ErrorAs(t, err, &conflictErr)

	// Locks must be released on the failure path too.
	mockCache.AssertExpectations(t)
	mockCache.AssertNotCalled(t, "InvalidateBookedSlots")
	mockProducer.AssertNotCalled(t, "Publish")
}

func TestBookingService_CancelBooking_Success(t *testing.T) {
	mockRepo := &MockBookingRepository{}
	mockCache := &MockCache{}
	mockProducer := &MockProducer{}
	service := newTestService(mockRepo, &MockPricingRepository{}, mockCache, mockProducer)

	ctx := context.Background()
	id := "booking-1"
	slot := futureSlot(48 * time.Hour)

	existing := &domain.Booking{ID: id, Status: domain.BookingStatusActive, Slots: []string{slot}}
	cancelled := &domain.Booking{ID: id, Status: domain.BookingStatusCancelled, Slots: []string{slot}}

	mockRepo.On("GetByID", ctx, id).Return(existing, nil).Once()
	mockRepo.On("Cancel", ctx, id).Return(cancelled, nil).Once()
	mockCache.On("InvalidateBookedSlots", ctx).Return(nil).Once()
	mockProducer.On("Publish", ctx, "booking-events", id, mock.Anything).Return(nil).Once()

	booking, err := service.CancelBooking(ctx, id)

	assert.NoError(t, err)
	assert.Equal(t, domain.BookingStatusCancelled, booking.Status)

	mockRepo.AssertExpectations(t)
	mockCache.AssertExpectations(t)
	mockProducer.AssertExpectations(t)
}

func TestBookingService_CancelBooking_TooLate(t *testing.T) {
	mockRepo := &MockBookingRepository{}
	service := newTestService(mockRepo, &MockPricingRepository{}, &MockCache{}, &MockProducer{})

	ctx := context.Background()
	id := "booking-1"
	existing := &domain.Booking{
		ID:     id,
		Status: domain.BookingStatusActive,
		Slots:  []string{futureSlot(2 * time.Hour)},
	}

	mockRepo.On("GetByID", ctx, id).Return(existing, nil).Once()

	booking, err := service.CancelBooking(ctx, id)

	assert.Nil(t, booking)
	assert.ErrorIs(t, err, domain.ErrTooLate)

	mockRepo.AssertNotCalled(t, "Cancel")
}

func TestBookingService_CancelBooking_AlreadyCancelled(t *testing.T) {
	mockRepo := &MockBookingRepository{}
	service := newTestService(mockRepo, &MockPricingRepository{}, &MockCache{}, &MockProducer{})

	ctx := context.Background()
	id := "booking-1"
	existing := &domain.Booking{
		ID:     id,
		Status: domain.BookingStatusCancelled,
		Slots:  []string{futureSlot(48 * time.Hour)},
	}

	mockRepo.On("GetByID", ctx, id).Return(existing, nil).Once()

	booking, err := service.CancelBooking(ctx, id)

	// Re-cancel is a no-op success.
	assert.NoError(t, err)
	assert.Equal(t, existing, booking)

	mockRepo.AssertNotCalled(t, "Cancel")
}

func TestBookingService_CancelBooking_NotFound(t *testing.T) {
	mockRepo := &MockBookingRepository{}
	service := newTestService(mockRepo, &MockPricingRepository{}, &MockCache{}, &MockProducer{})

	ctx := context.Background()
	mockRepo.On("GetByID", ctx, "missing").Return(nil, domain.ErrNotFound).Once()

	booking, err := service.CancelBooking(ctx, "missing")

	assert.Nil(t, booking)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBookingService_DeleteBooking(t *testing.T) {
	mockRepo := &MockBookingRepository{}
	mockCache := &MockCache{}
	service := newTestService(mockRepo, &MockPricingRepository{}, mockCache, &MockProducer{})

	ctx := context.Background()
	mockRepo.On("Delete", ctx, "booking-1").Return(nil).Once()
	mockCache.On("InvalidateBookedSlots", ctx).Return(nil).Once()

	err := service.DeleteBooking(ctx, "booking-1")

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}

func TestBookingService_DeleteBooking_NotFound(t *testing.T) {
	mockRepo := &MockBookingRepository{}
	mockCache := &MockCache{}
	service := newTestService(mockRepo, &MockPricingRepository{}, mockCache, &MockProducer{})

	ctx := context.Background()
	mockRepo.On("Delete", ctx, "missing").Return(domain.ErrNotFound).Once()

	err := service.DeleteBooking(ctx, "missing")

	assert.ErrorIs(t, err, domain.ErrNotFound)
	mockCache.AssertNotCalled(t, "InvalidateBookedSlots")
}

func TestBookingService_BookingsByPhone(t *testing.T) {
	mockRepo := &MockBookingRepository{}
	service := newTestService(mockRepo, &MockPricingRepository{}, &MockCache{}, &MockProducer{})

	ctx := context.Background()
	history := []domain.Booking{
		{ID: "b2", Phone: "99887766", Status: domain.BookingStatusActive},
		{ID: "b1", Phone: "99887766", Status: domain.BookingStatusCancelled},
	}
	mockRepo.On("ListByPhone", ctx, "99887766").Return(history, nil).Once()

	bookings, err := service.BookingsByPhone(ctx, "99887766")

	assert.NoError(t, err)
	// Cancelled bookings stay visible in history.
	assert.Equal(t, history, bookings)
}

func TestBookingService_BookingsByPhone_MissingPhone(t *testing.T) {
	service := newTestService(&MockBookingRepository{}, &MockPricingRepository{}, &MockCache{}, &MockProducer{})

	bookings, err := service.BookingsByPhone(context.Background(), "")

	assert.Nil(t, bookings)
	var validationErr *domain.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestBookingService_Publish_WithNotifications(t *testing.T) {
	mockProducer := &MockProducer{}
	service := &BookingService{
		producer:           mockProducer,
		bookingTopic:       "booking-events",
		notificationsTopic: "booking-notifications",
	}

	ctx := context.Background()
	booking := &domain.Booking{ID: "b1", Status: domain.BookingStatusActive}

	mockProducer.On("Publish", ctx, "booking-events", "b1", mock.Anything).Return(nil).Once()
	mockProducer.On("Publish", ctx, "booking-notifications", "b1", mock.Anything).Return(nil).Once()

	service.publish(ctx, "booking_created", booking)

	mockProducer.AssertExpectations(t)
}

func TestBookingService_Publish_NoProducer(t *testing.T) {
	service := &BookingService{}

	// Must not panic without a producer wired.
	service.publish(context.Background(), "booking_created", &domain.Booking{ID: "b1"})
}

func TestBookingService_CreateBooking_PricingError(t *testing.T) {
	mockRepo := &MockBookingRepository{}
	mockPricing := &MockPricingRepository{}
	service := newTestService(mockRepo, mockPricing, &MockCache{}, &MockProducer{})

	ctx := context.Background()
	expectedErr := errors.New("database error")
	mockPricing.On("GetPrice", ctx).Return(float64(0), expectedErr).Once()

	booking, err := service.CreateBooking(ctx, CreateBookingInput{
		Name:          "Ahmed",
		Phone:         "99887766",
		SelectedSlots: []string{"2024-06-01-19:00"},
	})

	assert.Nil(t, booking)
	assert.Equal(t, expectedErr, err)
	mockRepo.AssertNotCalled(t, "Create")
}
