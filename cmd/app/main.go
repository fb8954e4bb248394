package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/qurum/pitchbooking/config"
	"github.com/qurum/pitchbooking/internal/bootstrap"
	"github.com/qurum/pitchbooking/internal/cache"
	"github.com/qurum/pitchbooking/internal/domain"
	"github.com/qurum/pitchbooking/internal/kafka"
	"github.com/qurum/pitchbooking/internal/logger"
	"github.com/qurum/pitchbooking/internal/repository"
	"github.com/qurum/pitchbooking/internal/service/admin"
	"github.com/qurum/pitchbooking/internal/service/booking"
	"github.com/qurum/pitchbooking/internal/service/schedule"
)

func main() {
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger.InitLoggers(cfg.Logging.Dir, cfg.Logging.Level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Booking.SlotsCacheTTLSeconds)*time.Second)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	bookingRepo := repository.NewBookingRepository(pool)
	pricingRepo := repository.NewPricingRepository(pool, cfg.Booking.DefaultPricePerHour)
	policy := domain.NewCancellationPolicy(time.Duration(cfg.Booking.CancelWindowHours) * time.Hour)

	bookingService := booking.NewBookingService(
		bookingRepo,
		pricingRepo,
		redisCache,
		producer,
		policy,
		cfg.Kafka.BookingTopic,
		time.Duration(cfg.Booking.SlotLockTTLSeconds)*time.Second,
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
	)
	scheduleService := schedule.NewScheduleService(bookingRepo, redisCache)
	adminService := admin.NewAdminService(bookingRepo, pricingRepo)

	if err := bootstrap.Run(ctx, cfg, bookingService, scheduleService, adminService); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
