package kafka

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

// Handler processes one message. The offset is committed by the group
// reader before the handler runs.
type Handler func(ctx context.Context, msg kafka.Message) error

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

type Consumer struct {
	reader      messageReader
	topic       string
	skipOnError bool
	log         logrus.FieldLogger
}

type ConsumerOption func(*Consumer)

// WithSkipOnError logs a message the handler fails on and moves to the next
// one, so a single poison message cannot stall the partition.
func WithSkipOnError() ConsumerOption {
	return func(c *Consumer) {
		c.skipOnError = true
	}
}

func WithLogger(log logrus.FieldLogger) ConsumerOption {
	return func(c *Consumer) {
		c.log = log
	}
}

func NewConsumer(brokers []string, groupID, topic string, opts ...ConsumerOption) *Consumer {
	c := &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:           brokers,
			GroupID:           groupID,
			Topic:             topic,
			HeartbeatInterval: 3 * time.Second,
			SessionTimeout:    30 * time.Second,
		}),
		topic: topic,
		log:   logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.WithFields(logrus.Fields{"component": "consumer", "topic": topic})
	return c
}

func (c *Consumer) Close() error {
	if c == nil || c.reader == nil {
		return nil
	}
	return c.reader.Close()
}

// Consume reads until ctx is done, the reader fails, or handler fails while
// skipping is off. A cancelled context is a clean stop and returns nil.
func (c *Consumer) Consume(ctx context.Context, handler Handler) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read %s: %w", c.topic, err)
		}

		if err := c.handle(ctx, msg, handler); err != nil {
			return err
		}
	}
}

func (c *Consumer) handle(ctx context.Context, msg kafka.Message, handler Handler) error {
	err := handler(ctx, msg)
	if err == nil {
		return nil
	}

	entry := c.log.WithError(err).WithFields(logrus.Fields{
		"partition": msg.Partition,
		"offset":    msg.Offset,
		"key":       string(msg.Key),
	})
	if c.skipOnError && ctx.Err() == nil {
		entry.Error("message skipped")
		return nil
	}
	entry.Error("message handler failed")
	return fmt.Errorf("handle %s offset %d: %w", c.topic, msg.Offset, err)
}
