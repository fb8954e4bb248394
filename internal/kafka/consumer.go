package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/qurum/pitchbooking/internal/logger"
	"github.com/segmentio/kafka-go"
)

// Consumer reads booking events off a topic as part of a consumer group.
type Consumer struct {
	reader *kafka.Reader
}

func NewConsumer(brokers []string, groupID, topic string) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:           brokers,
			GroupID:           groupID,
			Topic:             topic,
			HeartbeatInterval: 3 * time.Second,
			SessionTimeout:    30 * time.Second,
		}),
	}
}

func (c *Consumer) Close() error {
	if c == nil || c.reader == nil {
		return nil
	}
	return c.reader.Close()
}

// ConsumeEvents delivers decoded booking events to handler until ctx is
// cancelled or the reader fails. A payload that does not decode is logged
// and skipped so a poison message cannot wedge the group.
func (c *Consumer) ConsumeEvents(ctx context.Context, handler func(context.Context, BookingEvent) error) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			return err
		}

		var event BookingEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			logger.ErrorLogger.Errorf("decode booking event at offset %d: %v", msg.Offset, err)
			continue
		}

		if err := handler(ctx, event); err != nil {
			return err
		}
	}
}
