// Package iterator walks paginated list endpoints one batch at a time.
//
// An Iterator starts Idle, fetches a batch when the caller first asks for a
// record, hands out decoded records from that batch, and fetches again with
// the continuation cursor while the server reports more. It never retries;
// a failed fetch ends iteration with an *api.IterationError.
package iterator

import (
	"context"
	"encoding/json"
	"errors"
	"iter"

	"github.com/agentic-research/notional/api"
)

// State is the position of an Iterator in its fetch cycle.
type State int

const (
	Idle State = iota
	Fetching
	HasBatch
	Exhausted
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Fetching:
		return "fetching"
	case HasBatch:
		return "has_batch"
	case Exhausted:
		return "exhausted"
	}
	return "unknown"
}

// ErrMissingCursor is the protocol violation of a batch that reports more
// results without a cursor to reach them.
var ErrMissingCursor = errors.New("has_more is set but next_cursor is missing")

// FetchFunc requests one batch. cursor is "" for the first batch.
type FetchFunc func(ctx context.Context, cursor string) (*api.ListResponse, error)

// DecodeFunc turns one list result into a record.
type DecodeFunc[T any] func(data json.RawMessage) (T, error)

// Iterator is a forward-only, non-restartable sequence of records.
// It is not safe for concurrent use.
type Iterator[T any] struct {
	fetch  FetchFunc
	decode DecodeFunc[T]
	limit  int

	state   State
	cursor  string
	hasMore bool
	batch   []json.RawMessage
	pos     int

	cur   T
	err   error
	pages int
	total int
}

// New returns an Idle iterator. Nothing is fetched until Next is called.
func New[T any](fetch FetchFunc, decode DecodeFunc[T]) *Iterator[T] {
	return &Iterator[T]{fetch: fetch, decode: decode}
}

// Limit stops iteration after n records. n <= 0 means no limit.
func (it *Iterator[T]) Limit(n int) *Iterator[T] {
	it.limit = n
	return it
}

// Next advances to the next record, fetching a batch when the current one
// is used up. It returns false at the end of the results or on error.
func (it *Iterator[T]) Next(ctx context.Context) bool {
	for {
		if it.err != nil || it.state == Exhausted {
			return false
		}
		if it.limit > 0 && it.total >= it.limit {
			it.state = Exhausted
			return false
		}
		if it.state == HasBatch {
			if it.pos < len(it.batch) {
				v, err := it.decode(it.batch[it.pos])
				it.pos++
				if err != nil {
					it.err = err
					it.state = Exhausted
					return false
				}
				it.cur = v
				it.total++
				return true
			}
			if !it.hasMore {
				it.state = Exhausted
				return false
			}
		}
		if err := it.fetchBatch(ctx); err != nil {
			it.err = err
			it.state = Exhausted
			return false
		}
	}
}

func (it *Iterator[T]) fetchBatch(ctx context.Context) error {
	it.state = Fetching
	page := it.pages + 1
	resp, err := it.fetch(ctx, it.cursor)
	if err != nil {
		return &api.IterationError{Page: page, Err: err}
	}
	if resp == nil {
		return &api.IterationError{Page: page, Err: errors.New("empty list response")}
	}
	if resp.HasMore && resp.Cursor() == "" {
		return &api.IterationError{Page: page, Err: ErrMissingCursor}
	}
	it.pages = page
	it.batch, it.pos = resp.Results, 0
	it.hasMore, it.cursor = resp.HasMore, resp.Cursor()
	it.state = HasBatch
	return nil
}

// Value returns the record Next advanced to.
func (it *Iterator[T]) Value() T { return it.cur }

// Err returns the error that ended iteration, if any.
func (it *Iterator[T]) Err() error { return it.err }

// State returns the current state.
func (it *Iterator[T]) State() State { return it.state }

// PageNumber returns how many batches have been fetched.
func (it *Iterator[T]) PageNumber() int { return it.pages }

// Total returns how many records have been handed out.
func (it *Iterator[T]) Total() int { return it.total }

// LastPage reports whether the current batch is the final one.
func (it *Iterator[T]) LastPage() bool { return it.pages > 0 && !it.hasMore }

// All adapts the iterator to a range-over-func sequence. An error is
// yielded once, paired with the zero record, and ends the sequence.
func (it *Iterator[T]) All(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for it.Next(ctx) {
			if !yield(it.cur, nil) {
				return
			}
		}
		if it.err != nil {
			var zero T
			yield(zero, it.err)
		}
	}
}

// Collect drains the iterator.
func (it *Iterator[T]) Collect(ctx context.Context) ([]T, error) {
	var out []T
	for it.Next(ctx) {
		out = append(out, it.cur)
	}
	return out, it.err
}
