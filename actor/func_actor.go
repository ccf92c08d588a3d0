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

package actor

import (
	"context"
)

// ReceiveFunc is a message handling placeholder. A returned error is
// reported as a handler failure.
type ReceiveFunc = func(ctx *ReceiveContext) error

// PreStartFunc defines the PreStart hook of a FuncActor
type PreStartFunc = func(ctx context.Context) error

// PostStopFunc defines the PostStop hook of a FuncActor
type PostStopFunc = func(ctx context.Context) error

// FuncOption configures a FuncActor
type FuncOption interface {
	// Apply sets the Option value of a config.
	Apply(actor *FuncActor)
}

var _ FuncOption = funcOption(nil)

type funcOption func(actor *FuncActor)

// Apply implementation
func (f funcOption) Apply(actor *FuncActor) {
	f(actor)
}

// WithPreStart defines the PreStart hook
func WithPreStart(fn PreStartFunc) FuncOption {
	return funcOption(func(actor *FuncActor) {
		actor.preStart = fn
	})
}

// WithPostStop defines the PostStop hook
func WithPostStop(fn PostStopFunc) FuncOption {
	return funcOption(func(actor *FuncActor) {
		actor.postStop = fn
	})
}

// FuncActor turns plain functions into an Actor
type FuncActor struct {
	receive  ReceiveFunc
	preStart PreStartFunc
	postStop PostStopFunc
}

var _ Actor = (*FuncActor)(nil)

// NewFuncActor creates a FuncActor handling messages with the given function
func NewFuncActor(receive ReceiveFunc, opts ...FuncOption) *FuncActor {
	actor := &FuncActor{receive: receive}
	for _, opt := range opts {
		opt.Apply(actor)
	}
	return actor
}

// PreStart runs the configured PreStart hook
func (x *FuncActor) PreStart(ctx context.Context) error {
	if x.preStart != nil {
		return x.preStart(ctx)
	}
	return nil
}

// Receive runs the handling function
func (x *FuncActor) Receive(ctx *ReceiveContext) {
	if x.receive == nil {
		return
	}
	if err := x.receive(ctx); err != nil {
		ctx.Err(err)
	}
}

// PostStop runs the configured PostStop hook
func (x *FuncActor) PostStop(ctx context.Context) error {
	if x.postStop != nil {
		return x.postStop(ctx)
	}
	return nil
}
