package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/eyecare-clinic/console/pkg/common/logger"
	"github.com/eyecare-clinic/console/pkg/common/models"
	"github.com/segmentio/kafka-go"
)

// handlerAttempts bounds how often one event is handed to the handler.
const handlerAttempts = 3

type Consumer struct {
	reader     *kafka.Reader
	retryDelay time.Duration
}

type EventHandler func(ctx context.Context, event models.Event) error

func NewConsumer(brokers []string, topic, groupID string) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6, // 10MB
	})

	return &Consumer{reader: reader, retryDelay: 500 * time.Millisecond}
}

// Consume blocks until ctx is done. A failing handler is retried with a
// growing delay; an event that still fails is logged and committed, because
// kafka-go commits offsets cumulatively and the next commit would skip it
// anyway. Cancellation mid-retry leaves the message uncommitted.
func (c *Consumer) Consume(ctx context.Context, handler EventHandler) error {
	for {
		message, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return ctx.Err()
			}
			logger.Log.WithError(err).Error("Failed to fetch message")
			continue
		}

		var event models.Event
		if err := json.Unmarshal(message.Value, &event); err != nil {
			logger.Log.WithError(err).WithField("offset", message.Offset).Error("Failed to unmarshal event")
			if err := c.reader.CommitMessages(ctx, message); err != nil {
				logger.Log.WithError(err).Error("Failed to commit message")
			}
			continue
		}

		if err := handle(ctx, handler, event, c.retryDelay); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Log.WithError(err).WithFields(map[string]interface{}{
				"event_id":   event.ID,
				"event_type": event.Type,
				"attempts":   handlerAttempts,
			}).Error("Dropping event after failed retries")
		}

		if err := c.reader.CommitMessages(ctx, message); err != nil {
			logger.Log.WithError(err).Error("Failed to commit message")
		}
	}
}

func handle(ctx context.Context, handler EventHandler, event models.Event, delay time.Duration) error {
	var err error
	for attempt := 1; attempt <= handlerAttempts; attempt++ {
		if err = handler(ctx, event); err == nil {
			return nil
		}
		if attempt == handlerAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay * time.Duration(attempt)):
		}
	}
	return err
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
