// Package async provides the deferred/promise primitive the view engine uses
// for every suspension point: item loads, theme transitions, tag renders and
// event-handler aggregates.
//
// A Promise settles exactly once, either resolved with a value or rejected
// with an error. Callbacks registered with Always, Then and Fail run on their
// own goroutine after the promise settles.
package async

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Sentinel errors for promise operations.
var (
	ErrRejected = errors.New("async: rejected")
	ErrPending  = errors.New("async: not settled")
)

// Settler is implemented by anything that eventually settles. Err is only
// meaningful once Done is closed.
type Settler interface {
	Done() <-chan struct{}
	Err() error
}

// Promise is a single-assignment deferred value.
type Promise[T any] struct {
	done chan struct{}
	once sync.Once
	val  T
	err  error
}

// Signal is a promise that carries no value.
type Signal = Promise[struct{}]

// New creates a pending promise.
func New[T any]() *Promise[T] {
	return &Promise[T]{done: make(chan struct{})}
}

// NewSignal creates a pending value-less promise.
func NewSignal() *Signal {
	return New[struct{}]()
}

// Resolved returns a promise already resolved with v.
func Resolved[T any](v T) *Promise[T] {
	p := New[T]()
	p.Resolve(v)
	return p
}

// Rejected returns a promise already rejected with err.
func Rejected[T any](err error) *Promise[T] {
	p := New[T]()
	p.Reject(err)
	return p
}

// Fired returns a resolved signal.
func Fired() *Signal {
	return Resolved(struct{}{})
}

// Resolve settles the promise with v. It reports whether this call settled it.
func (p *Promise[T]) Resolve(v T) bool {
	settled := false
	p.once.Do(func() {
		p.val = v
		close(p.done)
		settled = true
	})
	return settled
}

// Reject settles the promise with err. A nil err is replaced by ErrRejected.
func (p *Promise[T]) Reject(err error) bool {
	if err == nil {
		err = ErrRejected
	}
	settled := false
	p.once.Do(func() {
		p.err = err
		close(p.done)
		settled = true
	})
	return settled
}

// Done is closed once the promise settles.
func (p *Promise[T]) Done() <-chan struct{} {
	return p.done
}

// Err returns the rejection reason, or nil while pending or when resolved.
func (p *Promise[T]) Err() error {
	select {
	case <-p.done:
		return p.err
	default:
		return nil
	}
}

// Settled reports whether the promise has settled.
func (p *Promise[T]) Settled() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// Value returns the settled value without blocking. ErrPending is returned
// while the promise is still pending.
func (p *Promise[T]) Value() (T, error) {
	select {
	case <-p.done:
		return p.val, p.err
	default:
		var zero T
		return zero, ErrPending
	}
}

// Wait blocks until the promise settles or ctx is done.
func (p *Promise[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-p.done:
		return p.val, p.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Always runs fn after the promise settles, whatever the outcome.
func (p *Promise[T]) Always(fn func()) *Promise[T] {
	go func() {
		<-p.done
		fn()
	}()
	return p
}

// Then runs fn with the value if the promise resolves.
func (p *Promise[T]) Then(fn func(T)) *Promise[T] {
	go func() {
		<-p.done
		if p.err == nil {
			fn(p.val)
		}
	}()
	return p
}

// Fail runs fn with the reason if the promise rejects.
func (p *Promise[T]) Fail(fn func(error)) *Promise[T] {
	go func() {
		<-p.done
		if p.err != nil {
			fn(p.err)
		}
	}()
	return p
}

// Map derives a promise from p. Rejections propagate without calling fn.
func Map[T, U any](p *Promise[T], fn func(T) (U, error)) *Promise[U] {
	out := New[U]()
	go func() {
		<-p.done
		if p.err != nil {
			out.Reject(p.err)
			return
		}
		v, err := fn(p.val)
		if err != nil {
			out.Reject(err)
			return
		}
		out.Resolve(v)
	}()
	return out
}

// Forward settles dst with the outcome of src once src settles. A nil src
// resolves dst immediately.
func Forward(src Settler, dst *Signal) {
	if src == nil {
		dst.Resolve(struct{}{})
		return
	}
	go func() {
		<-src.Done()
		if err := src.Err(); err != nil {
			dst.Reject(err)
			return
		}
		dst.Resolve(struct{}{})
	}()
}

// All joins ss. The returned signal resolves after every input has settled.
// Rejected inputs do not short-circuit the join and never reject it. Nil
// inputs count as settled.
func All(ss ...Settler) *Signal {
	out := NewSignal()
	var g errgroup.Group
	for _, s := range ss {
		if s == nil {
			continue
		}
		g.Go(func() error {
			<-s.Done()
			return nil
		})
	}
	go func() {
		_ = g.Wait()
		out.Resolve(struct{}{})
	}()
	return out
}

// After runs fn with the outcome of s once it settles.
func After(s Settler, fn func(err error)) {
	go func() {
		<-s.Done()
		fn(s.Err())
	}()
}
