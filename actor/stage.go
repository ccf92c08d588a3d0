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

// Handler handles one delivered message
type Handler func(ctx *ReceiveContext)

// Stage is one step of the message handling pipeline of an actor.
//
// A stage either consumes the message or hands it to the next handler.
// Stages run on the consume loop of the actor so they share its
// one-message-at-a-time guarantee.
type Stage interface {
	Handle(ctx *ReceiveContext, next Handler)
}

// StageFunc turns a function into a Stage
type StageFunc func(ctx *ReceiveContext, next Handler)

// Handle implementation
func (f StageFunc) Handle(ctx *ReceiveContext, next Handler) {
	f(ctx, next)
}

// compose folds the stages around the terminal handler. The first stage
// sees the message first.
func compose(terminal Handler, stages ...Stage) Handler {
	handler := terminal
	for i := len(stages) - 1; i >= 0; i-- {
		stage := stages[i]
		if stage == nil {
			continue
		}
		next := handler
		handler = func(ctx *ReceiveContext) {
			stage.Handle(ctx, next)
		}
	}
	return handler
}

// controlStage handles the suspend/resume commands addressed to an actor
// that has no state. A suspend is acknowledged immediately since there is
// nothing to persist. Other control commands are dropped.
type controlStage struct{}

var _ Stage = controlStage{}

func (controlStage) Handle(ctx *ReceiveContext, next Handler) {
	command := ctx.Command()
	if !isControl(command) {
		next(ctx)
		return
	}

	if command != InternalSuspend {
		ctx.Logger().Debugf("dropping %s: actor has no state", command)
		return
	}

	if correlationID := ctx.Message().CorrelationID(); correlationID != "" {
		ack := Message{CommandKey: StateSaved, ReplyToKey: correlationID}
		ctx.World().acknowledge(ctx.Context(), ack, ctx.Self().Name())
	}
}
