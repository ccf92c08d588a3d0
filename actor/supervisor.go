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

// supervisor is the behavior of the "world" actor. It resolves pending asks
// and tracks stop acknowledgements.
type supervisor struct {
	world *World
}

var _ Actor = (*supervisor)(nil)

func newSupervisor(world *World) *supervisor {
	return &supervisor{world: world}
}

func (*supervisor) PreStart(context.Context) error { return nil }

func (x *supervisor) Receive(ctx *ReceiveContext) {
	message := ctx.Message()
	if replyTo := message.ReplyTo(); replyTo != "" {
		if err := x.world.resolve(replyTo, message); err != nil {
			ctx.Logger().Warn(err)
		}
	}

	if message.Command() == Stopped {
		ctx.Logger().Debugf("received %s from %s", Stopped, ctx.Sender())
		x.world.acknowledgeStop(ctx.Sender())
	}
}

func (*supervisor) PostStop(context.Context) error { return nil }
