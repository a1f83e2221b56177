package ingest

import (
	"context"
	"log/slog"
	"sync"
)

type Pipeline[T any] struct {
	stages []Stage[T]
}

func NewPipeline[T any](stages ...Stage[T]) *Pipeline[T] {
	return &Pipeline[T]{stages: stages}
}

// Process applies every stage to each item from in and returns how many
// items had no failing step. A failing step is logged; later stages still
// run for that item. Process returns when in is closed or ctx is done.
func (p *Pipeline[T]) Process(ctx context.Context, in <-chan *T) int {
	clean := 0
	for {
		var item *T
		select {
		case <-ctx.Done():
			return clean
		case next, ok := <-in:
			if !ok {
				return clean
			}
			item = next
		}

		if p.apply(ctx, item) {
			clean++
		}
	}
}

func (p *Pipeline[T]) apply(ctx context.Context, item *T) bool {
	var (
		mu sync.Mutex
		ok = true
	)
	for _, stage := range p.stages {
		var wg sync.WaitGroup
		for _, step := range stage.steps {
			wg.Add(1)
			go func(step Step[T]) {
				defer wg.Done()
				if err := step(ctx, item); err != nil {
					slog.Error("step failed", "stage", stage.name, "err", err)
					mu.Lock()
					ok = false
					mu.Unlock()
				}
			}(step)
		}
		wg.Wait()
	}
	return ok
}
