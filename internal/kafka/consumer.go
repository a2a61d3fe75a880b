package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

type Consumer struct {
	reader *kafka.Reader
	log    *slog.Logger
}

func NewConsumer(brokers []string, groupID, topic string, logger *slog.Logger) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:           brokers,
			GroupID:           groupID,
			Topic:             topic,
			HeartbeatInterval: 3 * time.Second,
			SessionTimeout:    30 * time.Second,
		}),
		log: logger,
	}
}

func (c *Consumer) Close() error {
	if c == nil || c.reader == nil {
		return nil
	}
	return c.reader.Close()
}

// Consume blocks until ctx is cancelled or the handler fails.
func (c *Consumer) Consume(ctx context.Context, handler func(context.Context, kafka.Message) error) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}

		if err := handler(ctx, msg); err != nil {
			return err
		}
	}
}

// ConsumeNotifications decodes TicketNotification messages. Undecodable
// messages are logged and skipped.
func (c *Consumer) ConsumeNotifications(ctx context.Context, handle func(context.Context, TicketNotification) error) error {
	return c.Consume(ctx, func(ctx context.Context, msg kafka.Message) error {
		var n TicketNotification
		if err := json.Unmarshal(msg.Value, &n); err != nil {
			c.log.Warn("skipping undecodable notification", "offset", msg.Offset, "error", err)
			return nil
		}
		return handle(ctx, n)
	})
}
