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
	"errors"
	"maps"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"

	"github.com/tochemey/acta/log"
	"github.com/tochemey/acta/persistence"
)

const (
	waitFor = 5 * time.Second
	tick    = 10 * time.Millisecond
)

// fooActor stores the data of set_foo as its whole state and answers
// get_foo with the state
type fooActor struct{}

var _ Actor = (*fooActor)(nil)

func (*fooActor) PreStart(context.Context) error { return nil }

func (*fooActor) Receive(ctx *ReceiveContext) {
	switch ctx.Command() {
	case "set_foo":
		ctx.ReplaceState(ctx.Message().DataMap())
	case "get_foo":
		if err := ctx.Reply(ctx.State()); err != nil {
			ctx.Err(err)
		}
	}
}

func (*fooActor) PostStop(context.Context) error { return nil }

// recorder keeps every message it receives in arrival order
type recorder struct {
	mu       sync.Mutex
	received []Message
	stopped  *atomic.Bool
}

var _ Actor = (*recorder)(nil)

func newRecorder() *recorder {
	return &recorder{stopped: atomic.NewBool(false)}
}

func (*recorder) PreStart(context.Context) error { return nil }

func (x *recorder) Receive(ctx *ReceiveContext) {
	x.mu.Lock()
	x.received = append(x.received, ctx.Message())
	x.mu.Unlock()

	if ctx.Command() == "state" {
		if err := ctx.Reply(ctx.State()); err != nil {
			ctx.Err(err)
		}
	}
}

func (x *recorder) PostStop(context.Context) error {
	x.stopped.Store(true)
	return nil
}

func (x *recorder) commands() []string {
	x.mu.Lock()
	defer x.mu.Unlock()
	commands := make([]string, 0, len(x.received))
	for _, message := range x.received {
		commands = append(commands, message.Command())
	}
	return commands
}

func (x *recorder) count() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return len(x.received)
}

// faultyActor fails on "bad", panics on "panic" and counts "good"
type faultyActor struct {
	good *atomic.Int64
}

var _ Actor = (*faultyActor)(nil)

func newFaultyActor() *faultyActor {
	return &faultyActor{good: atomic.NewInt64(0)}
}

func (*faultyActor) PreStart(context.Context) error { return nil }

func (x *faultyActor) Receive(ctx *ReceiveContext) {
	switch ctx.Command() {
	case "bad":
		ctx.Err(errors.New("bad message"))
	case "panic":
		panic("boom")
	case "panic-error":
		panic(errors.New("boom"))
	case "good":
		x.good.Inc()
	}
}

func (*faultyActor) PostStop(context.Context) error { return nil }

// gatedPersistence holds LOAD_STATE requests until the test releases them
type gatedPersistence struct {
	mu      sync.Mutex
	pending []string
	data    map[string]any
}

var _ Actor = (*gatedPersistence)(nil)

func (*gatedPersistence) PreStart(context.Context) error { return nil }

func (x *gatedPersistence) Receive(ctx *ReceiveContext) {
	switch ctx.Command() {
	case LoadState:
		x.mu.Lock()
		x.pending = append(x.pending, ctx.Sender())
		x.mu.Unlock()
	case "release", "fail":
		x.mu.Lock()
		pending := slices.Clone(x.pending)
		x.pending = nil
		x.mu.Unlock()

		for _, name := range pending {
			reply := NewCommandWithData(LoadedState, maps.Clone(x.data))
			if ctx.Command() == "fail" {
				reply = Message{CommandKey: LoadStateFailed, ErrorKey: "store unavailable"}
			}
			if err := ctx.Tell(name, reply); err != nil {
				ctx.Err(err)
			}
		}
	}
}

func (*gatedPersistence) PostStop(context.Context) error { return nil }

func (x *gatedPersistence) waiting() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return len(x.pending)
}

// newTestWorld creates a World with an in-memory persistence collaborator
// that is stopped when the test ends
func newTestWorld(t *testing.T, opts ...Option) (*World, *persistence.MemoryStore) {
	t.Helper()
	store := persistence.NewMemoryStore()
	opts = append([]Option{WithLogger(log.DiscardLogger), WithPersistence(store)}, opts...)
	world, err := NewWorld(context.Background(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() {
		if world.Running() {
			_ = world.StopAll(context.Background())
		}
	})
	return world, store
}
