package domain

import "time"

type BookingStatus string

const (
	BookingStatusActive    BookingStatus = "ACTIVE"
	BookingStatusCancelled BookingStatus = "CANCELLED"
)

type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "CASH"
	PaymentMethodTransfer PaymentMethod = "TRANSFER"
)

// PaymentStatus is derived from the paid/total amounts, never stored.
type PaymentStatus string

const (
	PaymentStatusPaid    PaymentStatus = "PAID"
	PaymentStatusPartial PaymentStatus = "PARTIAL"
	PaymentStatusPending PaymentStatus = "PENDING"
)

// Booking is one reservation transaction covering one or more slot
// identifiers. Slots are kept sorted chronologically; Slots[0] is the
// earliest and is what the cancellation window is measured against.
type Booking struct {
	ID            string
	Name          string
	Phone         string
	TeamName      string
	Slots         []string
	TotalPrice    float64
	PaidAmount    float64
	PaymentMethod PaymentMethod
	Status        BookingStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (b *Booking) PaymentStatus() PaymentStatus {
	switch {
	case b.PaidAmount >= b.TotalPrice:
		return PaymentStatusPaid
	case b.PaidAmount > 0:
		return PaymentStatusPartial
	default:
		return PaymentStatusPending
	}
}

// Remaining is the outstanding amount, never negative.
func (b *Booking) Remaining() float64 {
	if b.PaidAmount >= b.TotalPrice {
		return 0
	}
	return b.TotalPrice - b.PaidAmount
}

// Customer is a derived roster entry, grouped from bookings by phone
// number. It is never stored.
type Customer struct {
	Name   string
	Phone  string
	Visits int
}

// Stats holds the admin dashboard aggregates.
type Stats struct {
	TodayRevenue   float64
	MonthlyRevenue float64
	TotalBookings  int64
}
