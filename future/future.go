// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package future

import (
	"context"
	"sync"
)

// Future is a read-only handle on a value that becomes available later,
// or on the error explaining why it never will.
//
// Await can be called any number of times and from any number of
// goroutines. A canceled context only abandons that particular wait.
type Future[T any] interface {
	// Await blocks until the Future is completed or the context is done.
	Await(ctx context.Context) (T, error)
	// Done returns a channel closed once the Future is completed.
	Done() <-chan struct{}
}

// Promise is the writable side of a Future. Only the first completion counts.
type Promise[T any] struct {
	once  sync.Once
	done  chan struct{}
	value T
	err   error
}

// NewPromise creates an uncompleted Promise
func NewPromise[T any]() *Promise[T] {
	return &Promise[T]{done: make(chan struct{})}
}

// Success completes the Promise with a value.
// It reports whether this call completed the Promise.
func (p *Promise[T]) Success(value T) bool {
	return p.complete(value, nil)
}

// Failure completes the Promise with an error.
// It reports whether this call completed the Promise.
func (p *Promise[T]) Failure(err error) bool {
	var zero T
	return p.complete(zero, err)
}

// Future returns the read side of the Promise
func (p *Promise[T]) Future() Future[T] {
	return p
}

// Await blocks until the Promise is completed or ctx is done.
func (p *Promise[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-p.done:
		return p.value, p.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Done returns a channel closed once the Promise is completed
func (p *Promise[T]) Done() <-chan struct{} {
	return p.done
}

func (p *Promise[T]) complete(value T, err error) bool {
	completed := false
	p.once.Do(func() {
		p.value = value
		p.err = err
		completed = true
		close(p.done)
	})
	return completed
}

// New runs task on its own goroutine and returns a Future of its outcome.
func New[T any](task func() (T, error)) Future[T] {
	promise := NewPromise[T]()
	go func() {
		value, err := task()
		if err != nil {
			promise.Failure(err)
			return
		}
		promise.Success(value)
	}()
	return promise.Future()
}
