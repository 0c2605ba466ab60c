package session

import (
	"context"
	"errors"
)

var ErrClosed = errors.New("session closed")

// dispatcher serialises every state change onto the goroutine that drives
// Pump/Step/Settle. Background work runs on its own goroutine and hands a
// single completion back through queue.
type dispatcher struct {
	queue   chan func()
	ctx     context.Context
	cancel  context.CancelFunc
	pending int // loop goroutine only
}

func newDispatcher(size int) *dispatcher {
	if size <= 0 {
		size = 64
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &dispatcher{queue: make(chan func(), size), ctx: ctx, cancel: cancel}
}

// post is safe from any goroutine. Completions posted after teardown are
// dropped.
func (d *dispatcher) post(fn func()) {
	select {
	case d.queue <- fn:
	case <-d.ctx.Done():
	}
}

func (d *dispatcher) pump() int {
	n := 0
	for {
		select {
		case fn := <-d.queue:
			fn()
			n++
		default:
			return n
		}
	}
}

func (d *dispatcher) step(ctx context.Context) error {
	select {
	case fn := <-d.queue:
		fn()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-d.ctx.Done():
		return ErrClosed
	}
}

// spawn runs work in the background and delivers its result to done on the
// loop goroutine. Must be called from the loop goroutine.
func spawn[T any](d *dispatcher, ctx context.Context, work func(context.Context) (T, error), done func(T, error)) {
	d.pending++
	go func() {
		v, err := work(ctx)
		d.post(func() {
			d.pending--
			done(v, err)
		})
	}()
}

// Token is the cancellation handle of one background query.
type Token struct {
	ctx        context.Context
	cancel     context.CancelFunc
	generation uint64
}

func newToken(parent context.Context, gen uint64) *Token {
	ctx, cancel := context.WithCancel(parent)
	return &Token{ctx: ctx, cancel: cancel, generation: gen}
}

func (t *Token) Cancel()            { t.cancel() }
func (t *Token) Cancelled() bool    { return t.ctx.Err() != nil }
func (t *Token) Generation() uint64 { return t.generation }
