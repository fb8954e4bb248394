package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/qurum/pitchbooking/internal/domain"
	"github.com/qurum/pitchbooking/internal/service/booking"
	"github.com/qurum/pitchbooking/internal/service/schedule"
)

type BookingHandler struct {
	bookings booking.BookingUseCase
	schedule schedule.ScheduleUseCase
}

type bookingResponse struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Phone         string   `json:"phone"`
	TeamName      string   `json:"teamName,omitempty"`
	Slots         []string `json:"slots"`
	TotalPrice    float64  `json:"totalPrice"`
	PaidAmount    float64  `json:"paidAmount"`
	Remaining     float64  `json:"remaining"`
	PaymentMethod string   `json:"paymentMethod"`
	PaymentStatus string   `json:"paymentStatus"`
	Status        string   `json:"status"`
	CreatedAt     string   `json:"createdAt"`
}

type cancelBookingRequest struct {
	ID string `json:"id" binding:"required"`
}

func NewBookingHandler(bookings booking.BookingUseCase, sched schedule.ScheduleUseCase) *BookingHandler {
	return &BookingHandler{bookings: bookings, schedule: sched}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.GET("/bookings", h.availability)
	router.POST("/bookings", h.create)
	router.GET("/my-bookings", h.myBookings)
	router.PATCH("/my-bookings", h.cancel)
}

func (h *BookingHandler) availability(c *gin.Context) {
	slots, err := h.schedule.BookedSlots(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch bookings"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookedSlots": slots})
}

func (h *BookingHandler) create(c *gin.Context) {
	var req booking.CreateBookingInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.bookings.CreateBooking(c.Request.Context(), req)
	if err != nil {
		writeBookingError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toBookingResponse(created))
}

func (h *BookingHandler) myBookings(c *gin.Context) {
	phone := c.Query("phone")
	if phone == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "phone number is required"})
		return
	}

	bookings, err := h.bookings.BookingsByPhone(c.Request.Context(), phone)
	if err != nil {
		writeBookingError(c, err)
		return
	}

	resp := make([]bookingResponse, 0, len(bookings))
	for i := range bookings {
		resp = append(resp, toBookingResponse(&bookings[i]))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *BookingHandler) cancel(c *gin.Context) {
	var req cancelBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing id"})
		return
	}

	cancelled, err := h.bookings.CancelBooking(c.Request.Context(), req.ID)
	if err != nil {
		writeBookingError(c, err)
		return
	}

	c.JSON(http.StatusOK, toBookingResponse(cancelled))
}

// writeBookingError maps the domain error taxonomy onto HTTP statuses.
// Conflicts carry the rejected slot list so clients can refresh their
// availability view; storage errors stay opaque.
func writeBookingError(c *gin.Context, err error) {
	var validationErr *domain.ValidationError
	var conflictErr *domain.SlotConflictError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error()})
	case errors.As(err, &conflictErr):
		c.JSON(http.StatusConflict, gin.H{"error": "slots already booked", "conflictingSlots": conflictErr.Slots})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
	case errors.Is(err, domain.ErrTooLate):
		c.JSON(http.StatusBadRequest, gin.H{"error": "too late to cancel (less than 6 hours)"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func toBookingResponse(b *domain.Booking) bookingResponse {
	return bookingResponse{
		ID:            b.ID,
		Name:          b.Name,
		Phone:         b.Phone,
		TeamName:      b.TeamName,
		Slots:         b.Slots,
		TotalPrice:    b.TotalPrice,
		PaidAmount:    b.PaidAmount,
		Remaining:     b.Remaining(),
		PaymentMethod: string(b.PaymentMethod),
		PaymentStatus: string(b.PaymentStatus()),
		Status:        string(b.Status),
		CreatedAt:     b.CreatedAt.Format(time.RFC3339),
	}
}
