package service

import (
	"context"

	"github.com/minio/minio-go/v7/pkg/notification"
	"github.com/segmentio/kafka-go"
)

// MessageIterator is a source of Kafka messages with explicit commits.
// Implementations own the consumer lifecycle and close the Messages channel
// when they stop.
type MessageIterator interface {
	Messages() <-chan kafka.Message
	CommitOffset(ctx context.Context, msg kafka.Message) error
}

// LoaderFunc loads and decodes the object at bucket/key. It must be
// read-only and honor ctx.
type LoaderFunc[T any] func(ctx context.Context, bucket, key string) (T, error)

// FetchedObject pairs a loaded object with the bucket event that announced it.
type FetchedObject[T any] struct {
	Data  T
	Event notification.Event
}
