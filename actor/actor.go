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

// Actor defines the behavior of a unit of computation living in a World.
//
// Actors communicate exclusively through messages. Each actor owns a mailbox
// and processes its messages one at a time, so the implementation never needs
// to synchronize access to its own fields.
//
// The lifecycle of an actor follows three phases:
//  1. PreStart – setup before the actor is registered
//  2. Receive – handling of every delivered message, in mailbox order
//  3. PostStop – cleanup once the consume loop ends
type Actor interface {
	// PreStart is invoked once before the actor is registered in the World.
	//
	// Use this hook to open connections or allocate resources. When an error
	// is returned the actor is not registered and the creating call fails.
	PreStart(ctx context.Context) error

	// Receive handles every application message delivered to the actor.
	//
	// Failures are reported with ReceiveContext.Err or by panicking. Both are
	// contained to the message being handled: the failure is logged and the
	// next message is processed normally.
	//
	// Receive must not block for long. Offload blocking work to goroutines
	// and report results with messages.
	Receive(ctx *ReceiveContext)

	// PostStop is invoked exactly once when the consume loop ends, whether the
	// actor was stopped, suspended, removed or destroyed.
	PostStop(ctx context.Context) error
}

// defaultActor is the behavior used when GetOrCreate is given no actor.
// It accepts every message and only traces it.
type defaultActor struct{}

var _ Actor = (*defaultActor)(nil)

func (*defaultActor) PreStart(context.Context) error { return nil }

func (*defaultActor) Receive(ctx *ReceiveContext) {
	ctx.Logger().Debugf("received command=(%s) from=(%s)", ctx.Command(), ctx.Sender())
}

func (*defaultActor) PostStop(context.Context) error { return nil }
