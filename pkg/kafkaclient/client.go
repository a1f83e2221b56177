package kafkaclient

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

const retryDelay = time.Second

// Reader is the part of *kafka.Reader the consumer needs; tests swap it out.
type Reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer pumps messages from a Kafka topic onto a channel. Offsets are
// committed explicitly through CommitOffset.
type Consumer struct {
	reader   Reader
	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	messages chan kafka.Message
}

// NewConsumer creates a consumer-group reader for topic.
func NewConsumer(brokers []string, topic, groupID string) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: brokers,
		Topic:   topic,
		GroupID: groupID,
		// Offsets are committed by CommitOffset only.
		CommitInterval: 0,
		MinBytes:       1,
		MaxBytes:       10e6,
	})
	return newConsumer(reader)
}

func newConsumer(reader Reader) *Consumer {
	return &Consumer{
		reader:   reader,
		done:     make(chan struct{}),
		messages: make(chan kafka.Message),
	}
}

// Messages is closed once the consume loop exits.
func (c *Consumer) Messages() <-chan kafka.Message {
	return c.messages
}

func (c *Consumer) CommitOffset(ctx context.Context, msg kafka.Message) error {
	slog.Debug("committing offset", "topic", msg.Topic, "partition", msg.Partition, "offset", msg.Offset)
	return c.reader.CommitMessages(ctx, msg)
}

// StartConsuming runs the fetch loop in a goroutine until ctx is done, Stop
// is called or the reader is closed.
func (c *Consumer) StartConsuming(ctx context.Context) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer close(c.messages)

		slog.Info("starting kafka consumer loop")
		for {
			select {
			case <-ctx.Done():
				slog.Info("context canceled, stopping consumer loop")
				return
			case <-c.done:
				slog.Info("shutdown signal received, stopping consumer loop")
				return
			default:
			}

			msg, err := c.reader.FetchMessage(ctx)
			if err != nil {
				if errors.Is(err, io.EOF) || ctx.Err() != nil {
					return
				}
				slog.Warn("error reading message", "err", err)
				select {
				case <-time.After(retryDelay):
				case <-ctx.Done():
					return
				case <-c.done:
					return
				}
				continue
			}

			select {
			case c.messages <- msg:
				slog.Debug("message received", "topic", msg.Topic, "partition", msg.Partition, "offset", msg.Offset)
			case <-ctx.Done():
				return
			case <-c.done:
				return
			}
		}
	}()
}

// Stop ends the loop, waits for it and closes the reader. Safe to call twice.
func (c *Consumer) Stop() {
	c.stopOnce.Do(func() {
		slog.Info("stopping kafka consumer")
		close(c.done)
		c.wg.Wait()
		if err := c.reader.Close(); err != nil {
			slog.Error("failed to close kafka reader", "err", err)
		}
	})
}
