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
	"maps"

	gerrors "github.com/tochemey/acta/errors"
	"github.com/tochemey/acta/log"
)

// ReceiveContext carries a delivered message and the operations available
// to an actor while handling it.
//
// A ReceiveContext is created for every message accepted by a mailbox. It is
// only valid within the handling of that message, except when the
// suspend/resume stage defers it for replay.
//
// Context() is non-cancelable: work started while handling a message is not
// canceled when the caller that sent the message goes away.
type ReceiveContext struct {
	ctx     context.Context
	message Message
	sender  string
	self    *PID
	err     error
}

// newReceiveContext creates the envelope queued in a mailbox
func newReceiveContext(ctx context.Context, sender string, self *PID, message Message) *ReceiveContext {
	if ctx == nil {
		ctx = context.Background()
	}
	if ctx.Done() != nil {
		ctx = context.WithoutCancel(ctx)
	}
	return &ReceiveContext{
		ctx:     ctx,
		message: message,
		sender:  sender,
		self:    self,
	}
}

// Self returns the PID of the actor handling the message
func (rctx *ReceiveContext) Self() *PID {
	return rctx.self
}

// Sender returns the name of the sender or the empty string when the message
// was originated by the runtime or an external caller.
func (rctx *ReceiveContext) Sender() string {
	return rctx.sender
}

// Message returns the message being handled. Treat it as immutable.
func (rctx *ReceiveContext) Message() Message {
	return rctx.message
}

// Command returns the command of the message being handled
func (rctx *ReceiveContext) Command() string {
	return rctx.message.Command()
}

// Context returns the context associated with the message
func (rctx *ReceiveContext) Context() context.Context {
	return rctx.ctx
}

// World returns the World the actor lives in
func (rctx *ReceiveContext) World() *World {
	return rctx.self.world
}

// Logger returns the logger of the actor
func (rctx *ReceiveContext) Logger() log.Logger {
	return rctx.self.logger
}

// Err records a failure observed while handling the message.
// The failure is logged by the runtime and does not stop the actor.
func (rctx *ReceiveContext) Err(err error) {
	rctx.err = err
}

// Tell sends a message to the named actor with this actor as sender
func (rctx *ReceiveContext) Tell(to string, message Message) error {
	return rctx.self.world.TellFrom(rctx.ctx, to, message, rctx.self.name)
}

// Reply answers the message being handled. When the message was sent with
// an ask the reply resolves it, otherwise the data is sent back as a plain
// message. It returns ErrNoSender when the message has no sender.
func (rctx *ReceiveContext) Reply(data any) error {
	if rctx.sender == "" {
		return gerrors.ErrNoSender
	}

	if correlationID := rctx.message.CorrelationID(); correlationID != "" {
		return rctx.Tell(rctx.sender, NewReply(correlationID, data))
	}
	return rctx.Tell(rctx.sender, Message{DataKey: data})
}

// State returns a copy of the actor state. It returns nil for actors that
// are not suspendable.
func (rctx *ReceiveContext) State() map[string]any {
	if rctx.self.state == nil {
		return nil
	}
	return maps.Clone(rctx.self.state.values)
}

// SetState merges the given values into the actor state, overwriting
// matching keys. It is a no-op for actors that are not suspendable.
func (rctx *ReceiveContext) SetState(values map[string]any) {
	if rctx.self.state == nil {
		return
	}
	maps.Copy(rctx.self.state.values, values)
}

// ReplaceState replaces the whole actor state
func (rctx *ReceiveContext) ReplaceState(values map[string]any) {
	if rctx.self.state == nil {
		return
	}
	rctx.self.state.values = maps.Clone(values)
	if rctx.self.state.values == nil {
		rctx.self.state.values = make(map[string]any)
	}
}

func (rctx *ReceiveContext) getError() error {
	return rctx.err
}
