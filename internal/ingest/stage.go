// Package ingest runs per-record steps over a stream. Steps inside a stage
// run in parallel; stages run one after another.
package ingest

import "context"

// Step processes one item. Steps in the same stage share the item and must
// not write the same fields.
type Step[T any] func(ctx context.Context, item *T) error

// Stage is a set of steps started together for each item.
type Stage[T any] struct {
	name  string
	steps []Step[T]
}

func NewStage[T any](name string, steps ...Step[T]) Stage[T] {
	return Stage[T]{name: name, steps: steps}
}
