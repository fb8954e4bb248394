package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/qurum/pitchbooking/config"
	"github.com/qurum/pitchbooking/internal/email"
	"github.com/qurum/pitchbooking/internal/kafka"
	"github.com/qurum/pitchbooking/internal/logger"
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

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic)
	defer consumer.Close()

	emailSender := email.NewSender()

	if err := consumer.ConsumeEvents(ctx, emailSender.Send); err != nil && ctx.Err() == nil {
		logger.ErrorLogger.Errorf("consumer stopped: %v", err)
	}
}
