// Package worker provides the single consumer loop shared by the pipeline
// stages: an unbounded FIFO drained by one goroutine.
package worker

import (
	"context"
	"log/slog"
	"sync"
)

type Loop[T any] struct {
	name    string
	process func(context.Context, T)

	mu    sync.Mutex
	items []T
	wake  chan struct{}
}

func New[T any](name string, process func(context.Context, T)) *Loop[T] {
	return &Loop[T]{
		name:    name,
		process: process,
		wake:    make(chan struct{}, 1),
	}
}

// Submit appends the item to the queue. It never blocks.
func (l *Loop[T]) Submit(item T) {
	l.mu.Lock()
	l.items = append(l.items, item)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Remove drops every queued item matching the predicate and returns how many
// were dropped. The item currently being processed is not affected.
func (l *Loop[T]) Remove(match func(T) bool) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	kept := l.items[:0]
	for _, item := range l.items {
		if !match(item) {
			kept = append(kept, item)
		}
	}

	removed := len(l.items) - len(kept)

	var zero T
	for i := len(kept); i < len(l.items); i++ {
		l.items[i] = zero
	}
	l.items = kept

	return removed
}

func (l *Loop[T]) next() (T, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var zero T
	if len(l.items) == 0 {
		return zero, false
	}

	item := l.items[0]
	l.items[0] = zero
	l.items = l.items[1:]

	return item, true
}

// Run processes items in submission order until the context is done.
func (l *Loop[T]) Run(ctx context.Context) {
	slog.Info("worker started", slog.String("worker", l.name))
	defer slog.Info("worker stopped", slog.String("worker", l.name))

	for {
		if ctx.Err() != nil {
			return
		}

		item, ok := l.next()
		if !ok {
			select {
			case <-ctx.Done():
				return
			case <-l.wake:
				continue
			}
		}

		l.process(ctx, item)
	}
}
