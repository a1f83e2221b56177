// Package service turns bucket notifications delivered over Kafka into
// loaded objects. A message is committed once every object it announces
// has been handed out or has failed permanently. Offsets are committed in
// order, so a message that keeps failing stops the stream instead of being
// committed past; the group redelivers it after a restart.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7/pkg/notification"
	"github.com/segmentio/kafka-go"
)

const (
	objectCreatedPrefix = "s3:ObjectCreated:"

	defaultAttempts = 3
	defaultBackoff  = time.Second
)

// Iterator is safe to use from a single goroutine; each Objects call
// starts its own streaming goroutine.
type Iterator[T any] struct {
	msgIterator MessageIterator
	loader      LoaderFunc[T]

	// Permanent reports load errors that retrying cannot fix. Messages whose
	// only failures are permanent are still committed. Nil treats every
	// load error as transient.
	Permanent func(err error) bool
	// Attempts bounds the loads tried for one object before a transient
	// failure stops the stream. Backoff is the pause between them.
	Attempts int
	Backoff  time.Duration

	err error
}

func NewIterator[T any](iterator MessageIterator, loader LoaderFunc[T]) *Iterator[T] {
	return &Iterator[T]{
		msgIterator: iterator,
		loader:      loader,
		Attempts:    defaultAttempts,
		Backoff:     defaultBackoff,
	}
}

// Err reports why the last Objects stream stopped early. It is nil when the
// message source closed or ctx was done. Call it after the channel closes.
func (it *Iterator[T]) Err() error {
	return it.err
}

// Objects streams loaded objects until the message source closes or ctx is
// done. Undecodable messages and permanently failed loads are logged and
// skipped. A load still failing transiently after Attempts tries ends the
// stream without committing its message; see Err.
func (it *Iterator[T]) Objects(ctx context.Context) <-chan *FetchedObject[T] {
	out := make(chan *FetchedObject[T])
	it.err = nil
	go func() {
		defer close(out)

		for msg := range it.msgIterator.Messages() {
			var info notification.Info
			if err := json.Unmarshal(msg.Value, &info); err != nil {
				slog.Warn("skipping undecodable notification", "offset", msg.Offset, "err", err)
				it.commit(ctx, msg)
				continue
			}

			for _, event := range info.Records {
				if !strings.HasPrefix(event.EventName, objectCreatedPrefix) {
					continue
				}

				bucket := event.S3.Bucket.Name
				key, err := url.QueryUnescape(event.S3.Object.Key)
				if err != nil {
					slog.Warn("skipping malformed object key", "key", event.S3.Object.Key, "err", err)
					continue
				}

				data, err := it.load(ctx, bucket, key)
				if err != nil {
					if it.Permanent != nil && it.Permanent(err) {
						slog.Error("skipping object", "bucket", bucket, "key", key, "err", err)
						continue
					}
					if ctx.Err() == nil {
						it.err = fmt.Errorf("offset %d: load %s/%s: %w", msg.Offset, bucket, key, err)
						slog.Error("stopping before offset", "offset", msg.Offset, "err", err)
					}
					return
				}

				select {
				case out <- &FetchedObject[T]{Data: data, Event: event}:
				case <-ctx.Done():
					return
				}
			}

			it.commit(ctx, msg)
		}
	}()
	return out
}

// load retries transient failures up to Attempts times.
func (it *Iterator[T]) load(ctx context.Context, bucket, key string) (T, error) {
	attempts := max(it.Attempts, 1)
	for attempt := 1; ; attempt++ {
		data, err := it.loader(ctx, bucket, key)
		if err == nil {
			return data, nil
		}
		if attempt >= attempts || (it.Permanent != nil && it.Permanent(err)) {
			return data, err
		}
		slog.Warn("retrying object load", "bucket", bucket, "key", key, "attempt", attempt, "err", err)
		select {
		case <-time.After(it.Backoff):
		case <-ctx.Done():
			return data, ctx.Err()
		}
	}
}

func (it *Iterator[T]) commit(ctx context.Context, msg kafka.Message) {
	if err := it.msgIterator.CommitOffset(ctx, msg); err != nil {
		slog.Error("failed to commit offset", "offset", msg.Offset, "err", err)
	}
}
