package bootstrap

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/qurum/pitchbooking/api"
	"github.com/qurum/pitchbooking/config"
	"github.com/qurum/pitchbooking/internal/service/admin"
	"github.com/qurum/pitchbooking/internal/service/booking"
	"github.com/qurum/pitchbooking/internal/service/schedule"
)

// Run starts the HTTP server and blocks until the context is canceled or
// the server fails.
func Run(ctx context.Context, cfg *config.Config, bookingSvc booking.BookingUseCase, scheduleSvc schedule.ScheduleUseCase, adminSvc admin.AdminUseCase) error {
	router := gin.Default()

	group := router.Group("/api")
	api.NewBookingHandler(bookingSvc, scheduleSvc).Register(group)
	api.NewAdminHandler(bookingSvc, adminSvc).Register(group)

	httpSrv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	}
}
