// Package fetch carries batch responses: a lazy, single-pass sequence of
// per-item results plus statistics that resolve once the producer is done.
package fetch

import (
	"context"
	"iter"
	"sync"
	"time"
)

// Result is one item of a batch. Exactly one of Value and Err is meaningful.
type Result[T any] struct {
	Value T
	Err   error
}

// OK wraps a value.
func OK[T any](v T) Result[T] { return Result[T]{Value: v} }

// Fail wraps a per-item error.
func Fail[T any](err error) Result[T] { return Result[T]{Err: err} }

// Stats summarises a finished batch.
type Stats struct {
	Entries  int
	Failures int
	Bytes    int64
	Elapsed  time.Duration
}

// Sizer is implemented by values that know their payload size. Stats.Bytes
// sums it over successful items.
type Sizer interface {
	Size() int
}

// Fetch is a batch response. Entries may be consumed once; Stats resolves
// regardless of how much of the sequence was consumed. A streamed fetch
// holds a producer goroutine until it is drained, closed, asked for Stats
// or its context ends.
type Fetch[T any] struct {
	ch       chan Result[T]
	done     chan struct{} // closed when the producer has finished
	stop     chan struct{} // closed by Close
	want     chan struct{} // closed by Stats
	pending  []Result[T]   // produced after Stats, replayed by Entries
	once     sync.Once
	wantOnce sync.Once
	taken    sync.Once
	stats    Stats
	cancel   context.CancelFunc
}

// FromResults returns a Fetch over already materialised results, in order.
// Its Stats are available immediately.
func FromResults[T any](results []Result[T]) *Fetch[T] {
	f := &Fetch[T]{
		ch:     make(chan Result[T], len(results)),
		done:   make(chan struct{}),
		stop:   make(chan struct{}),
		want:   make(chan struct{}),
		cancel: func() {},
	}
	for _, r := range results {
		f.ch <- r
		f.account(r)
	}
	close(f.ch)
	close(f.done)
	return f
}

// Stream runs produce on its own goroutine. emit blocks until the consumer
// takes the item, or buffers it once Stats has been requested. It returns
// false once the consumer has gone away or ctx is done; produce should
// return promptly after that. A non-nil error returned by produce is
// delivered as a final failed item.
func Stream[T any](ctx context.Context, produce func(ctx context.Context, emit func(Result[T]) bool) error) *Fetch[T] {
	ctx, cancel := context.WithCancel(ctx)
	f := &Fetch[T]{
		ch:     make(chan Result[T]),
		done:   make(chan struct{}),
		stop:   make(chan struct{}),
		want:   make(chan struct{}),
		cancel: cancel,
	}
	go f.run(ctx, produce)
	return f
}

func (f *Fetch[T]) run(ctx context.Context, produce func(context.Context, func(Result[T]) bool) error) {
	start := time.Now()
	defer func() {
		f.stats.Elapsed = time.Since(start)
		close(f.ch)
		close(f.done)
	}()

	// An item is accounted once it is handed over or buffered. Once one
	// item is buffered, all later items are buffered too.
	buffered := false
	emit := func(r Result[T]) bool {
		select {
		case <-f.stop:
			return false
		case <-ctx.Done():
			return false
		default:
		}
		if !buffered {
			select {
			case f.ch <- r:
				f.account(r)
				return true
			case <-f.want:
				buffered = true
			case <-f.stop:
				return false
			case <-ctx.Done():
				return false
			}
		}
		f.pending = append(f.pending, r)
		f.account(r)
		return true
	}
	if err := produce(ctx, emit); err != nil {
		emit(Fail[T](err))
	}
}

func (f *Fetch[T]) account(r Result[T]) {
	if r.Err != nil {
		f.stats.Failures++
		return
	}
	f.stats.Entries++
	if s, ok := any(r.Value).(Sizer); ok {
		f.stats.Bytes += int64(s.Size())
	}
}

// Entries yields each item in order. Only the first call yields items;
// later calls yield a single ErrClosed. Breaking out of the loop closes
// the fetch.
func (f *Fetch[T]) Entries() iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		first := false
		f.taken.Do(func() { first = true })
		if !first {
			var zero T
			yield(zero, ErrClosed)
			return
		}
		for r := range f.ch {
			if !yield(r.Value, r.Err) {
				f.Close()
				return
			}
		}
		<-f.done
		for _, r := range f.pending {
			if !yield(r.Value, r.Err) {
				f.Close()
				return
			}
		}
	}
}

// Stats waits for the producer to finish and returns the batch statistics.
// Items the consumer has not taken yet are buffered for a later Entries, so
// Stats does not depend on consumption. Stats counts every item handed over
// or buffered; after Close, items never produced are not counted.
func (f *Fetch[T]) Stats(ctx context.Context) (Stats, error) {
	f.wantOnce.Do(func() { close(f.want) })
	select {
	case <-f.done:
		return f.stats, nil
	case <-ctx.Done():
		return Stats{}, ctx.Err()
	}
}

// Close abandons the remaining items and lets the producer exit.
func (f *Fetch[T]) Close() {
	f.once.Do(func() {
		close(f.stop)
		f.cancel()
	})
}

// TryCollect drains the fetch and returns every value, or the first
// per-item error.
func (f *Fetch[T]) TryCollect() ([]T, error) {
	var out []T
	for v, err := range f.Entries() {
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Collect drains the fetch into results, keeping per-item failures.
func (f *Fetch[T]) Collect() []Result[T] {
	var out []Result[T]
	for v, err := range f.Entries() {
		out = append(out, Result[T]{Value: v, Err: err})
	}
	return out
}
