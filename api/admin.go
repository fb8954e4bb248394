package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/qurum/pitchbooking/internal/service/admin"
	"github.com/qurum/pitchbooking/internal/service/booking"
)

type AdminHandler struct {
	bookings booking.BookingUseCase
	admin    admin.AdminUseCase
}

type setPriceRequest struct {
	Price float64 `json:"price"`
}

func NewAdminHandler(bookings booking.BookingUseCase, adm admin.AdminUseCase) *AdminHandler {
	return &AdminHandler{bookings: bookings, admin: adm}
}

func (h *AdminHandler) Register(router *gin.RouterGroup) {
	router.GET("/admin/bookings", h.list)
	router.DELETE("/admin/bookings", h.delete)
	router.GET("/admin/stats", h.stats)
	router.GET("/admin/customers", h.customers)
	router.GET("/settings", h.getPrice)
	router.POST("/settings", h.setPrice)
}

func (h *AdminHandler) list(c *gin.Context) {
	bookings, err := h.bookings.ListBookings(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch bookings"})
		return
	}

	resp := make([]bookingResponse, 0, len(bookings))
	for i := range bookings {
		resp = append(resp, toBookingResponse(&bookings[i]))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AdminHandler) delete(c *gin.Context) {
	id := c.Query("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id required"})
		return
	}

	if err := h.bookings.DeleteBooking(c.Request.Context(), id); err != nil {
		writeBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *AdminHandler) stats(c *gin.Context) {
	stats, err := h.admin.Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch stats"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"todayRevenue":   stats.TodayRevenue,
		"monthlyRevenue": stats.MonthlyRevenue,
		"totalBookings":  stats.TotalBookings,
	})
}

func (h *AdminHandler) customers(c *gin.Context) {
	customers, err := h.admin.Customers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch customers"})
		return
	}

	type customerResponse struct {
		Name   string `json:"name"`
		Phone  string `json:"phone"`
		Visits int    `json:"visits"`
	}
	resp := make([]customerResponse, 0, len(customers))
	for _, cust := range customers {
		resp = append(resp, customerResponse{Name: cust.Name, Phone: cust.Phone, Visits: cust.Visits})
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AdminHandler) getPrice(c *gin.Context) {
	price, err := h.admin.GetPrice(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch price"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"price": price})
}

func (h *AdminHandler) setPrice(c *gin.Context) {
	var req setPriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	price, err := h.admin.SetPrice(c.Request.Context(), req.Price)
	if err != nil {
		writeBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"price": price})
}
