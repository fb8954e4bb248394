package email

import (
	"context"
	"strings"

	"github.com/qurum/pitchbooking/internal/kafka"
	"github.com/qurum/pitchbooking/internal/logger"
)

// Sender delivers booking notifications to the facility owner. Delivery is
// a log line for now; the worker treats it as best effort.
type Sender struct{}

func NewSender() *Sender {
	return &Sender{}
}

func (s *Sender) Send(ctx context.Context, event kafka.BookingEvent) error {
	logger.InfoLogger.Infof("notify %s (%s): %s booking %s for %s",
		event.Name, event.Phone, event.Type, event.BookingID, strings.Join(event.Slots, ", "))
	return nil
}
