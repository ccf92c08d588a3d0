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
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	gerrors "github.com/tochemey/acta/errors"
	"github.com/tochemey/acta/log"
	"github.com/tochemey/acta/persistence"
)

func TestWorld(t *testing.T) {
	t.Run("With suspend and revive round trip", func(t *testing.T) {
		ctx := context.Background()
		world, store := newTestWorld(t)

		_, err := world.Create(ctx, "some-actor", new(fooActor), AsSuspendable())
		require.NoError(t, err)

		require.NoError(t, world.Tell(ctx, "some-actor", NewCommandWithData("set_foo", map[string]any{"t": 123})))

		reply, err := world.Ask(ctx, "some-actor", NewCommand("get_foo"))
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"t": 123, recvKey: int64(1)}, reply.DataMap())

		require.NoError(t, world.Suspend(ctx, "some-actor"))

		_, err = world.Get("some-actor")
		require.ErrorIs(t, err, gerrors.ErrActorNotFound)
		err = world.Tell(ctx, "some-actor", NewCommand("get_foo"))
		require.ErrorIs(t, err, gerrors.ErrActorNotFound)

		exists, err := store.Exists(ctx, persistence.StateKey("some-actor"))
		require.NoError(t, err)
		require.True(t, exists)

		_, err = world.Revive(ctx, "some-actor", new(fooActor))
		require.NoError(t, err)

		reply, err = world.Ask(ctx, "some-actor", NewCommand("get_foo"))
		require.NoError(t, err)
		assert.EqualValues(t, 123, reply.DataMap()["t"])
		assert.EqualValues(t, 2, reply.DataMap()[recvKey])
	})
	t.Run("With revive of a never suspended actor", func(t *testing.T) {
		ctx := context.Background()
		world, _ := newTestWorld(t)

		_, err := world.Revive(ctx, "fresh", new(fooActor))
		require.NoError(t, err)

		reply, err := world.Ask(ctx, "fresh", NewCommand("get_foo"))
		require.NoError(t, err)
		assert.Equal(t, map[string]any{recvKey: int64(1)}, reply.DataMap())
	})
	t.Run("With suspend of a plain actor", func(t *testing.T) {
		ctx := context.Background()
		world, store := newTestWorld(t)

		actor := newRecorder()
		pid, err := world.Create(ctx, "plain", actor)
		require.NoError(t, err)

		require.NoError(t, world.Suspend(ctx, "plain"))
		<-pid.Done()
		assert.Zero(t, store.Len())
		assert.True(t, actor.stopped.Load())
	})
	t.Run("With suspend without persistence", func(t *testing.T) {
		ctx := context.Background()
		world, _ := newTestWorld(t, WithPersistence(nil))

		_, err := world.Create(ctx, "orphan", new(fooActor), AsSuspendable())
		require.NoError(t, err)

		err = world.Suspend(ctx, "orphan")
		require.ErrorIs(t, err, gerrors.ErrPersistenceFailure)
		_, err = world.Get("orphan")
		require.ErrorIs(t, err, gerrors.ErrActorNotFound)
	})
	t.Run("With suspend of an unknown actor", func(t *testing.T) {
		world, _ := newTestWorld(t)
		err := world.Suspend(context.Background(), "ghost")
		require.ErrorIs(t, err, gerrors.ErrActorNotFound)
		assert.Zero(t, world.waiters.Len())
	})
	t.Run("With suspend of reserved names", func(t *testing.T) {
		world, _ := newTestWorld(t)
		require.ErrorIs(t, world.Suspend(context.Background(), WorldName), gerrors.ErrReservedName)
		require.ErrorIs(t, world.Suspend(context.Background(), DefaultPersistenceName), gerrors.ErrReservedName)
	})
	t.Run("With create errors", func(t *testing.T) {
		ctx := context.Background()
		world, _ := newTestWorld(t)

		_, err := world.Create(ctx, "", newRecorder())
		require.ErrorIs(t, err, gerrors.ErrInvalidActorName)

		_, err = world.Create(ctx, WorldName, newRecorder())
		require.ErrorIs(t, err, gerrors.ErrReservedName)

		_, err = world.Create(ctx, "nil", nil)
		require.ErrorIs(t, err, gerrors.ErrUndefinedActor)

		_, err = world.Create(ctx, "dup", newRecorder())
		require.NoError(t, err)
		_, err = world.Create(ctx, "dup", newRecorder())
		require.ErrorIs(t, err, gerrors.ErrActorAlreadyExists)

		_, err = world.Create(ctx, "broken", NewFuncActor(nil, WithPreStart(func(context.Context) error {
			return errors.New("cannot start")
		})))
		require.ErrorIs(t, err, gerrors.ErrInitFailure)
		_, err = world.Get("broken")
		require.ErrorIs(t, err, gerrors.ErrActorNotFound)
	})
	t.Run("With get or create", func(t *testing.T) {
		ctx := context.Background()
		world, _ := newTestWorld(t)

		pid, err := world.GetOrCreate(ctx, "lazy", nil)
		require.NoError(t, err)
		require.NotNil(t, pid)

		again, err := world.GetOrCreate(ctx, "lazy", newRecorder())
		require.NoError(t, err)
		assert.Same(t, pid, again)

		require.NoError(t, world.Tell(ctx, "lazy", NewCommand("anything")))
		assert.Equal(t, []string{"lazy", DefaultPersistenceName}, world.Actors())
		assert.Equal(t, 2, world.Len())
	})
	t.Run("With tell to an unknown actor", func(t *testing.T) {
		world, _ := newTestWorld(t)
		err := world.Tell(context.Background(), "ghost", NewCommand("hello"))
		require.ErrorIs(t, err, gerrors.ErrActorNotFound)
	})
	t.Run("With ask replies resolving their own waiter", func(t *testing.T) {
		ctx := context.Background()
		world, _ := newTestWorld(t)

		_, err := world.Create(ctx, "echo", NewFuncActor(func(ctx *ReceiveContext) error {
			// delay odd requests so replies interleave
			if n := ctx.Message()["n"].(int); n%2 == 1 {
				time.Sleep(time.Millisecond)
			}
			return ctx.Reply(ctx.Message()["n"])
		}))
		require.NoError(t, err)

		const asks = 50
		var wg sync.WaitGroup
		wg.Add(asks)
		errs := make(chan error, asks)
		for n := range asks {
			go func() {
				defer wg.Done()
				reply, err := world.Ask(ctx, "echo", Message{"n": n})
				if err != nil {
					errs <- err
					return
				}
				if reply.Data() != n {
					errs <- fmt.Errorf("ask %d resolved with %v", n, reply.Data())
				}
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}
		assert.Zero(t, world.waiters.Len())
	})
	t.Run("With ask not modifying the message", func(t *testing.T) {
		ctx := context.Background()
		world, _ := newTestWorld(t)

		_, err := world.Create(ctx, "echo", NewFuncActor(func(ctx *ReceiveContext) error {
			return ctx.Reply(ctx.Message().CorrelationID())
		}))
		require.NoError(t, err)

		request := NewCommand("ping")
		reply, err := world.Ask(ctx, "echo", request)
		require.NoError(t, err)
		assert.NotEmpty(t, reply.Data())
		assert.Empty(t, request.CorrelationID())
		assert.Equal(t, reply.Data(), reply.ReplyTo())
	})
	t.Run("With ask canceled", func(t *testing.T) {
		ctx := context.Background()
		world, _ := newTestWorld(t)

		_, err := world.Create(ctx, "silent", newRecorder())
		require.NoError(t, err)

		cancelCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
		defer cancel()
		_, err = world.Ask(cancelCtx, "silent", NewCommand("ping"))
		require.ErrorIs(t, err, gerrors.ErrRequestCanceled)
		require.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Zero(t, world.waiters.Len())
	})
	t.Run("With ask timeout option", func(t *testing.T) {
		ctx := context.Background()
		world, _ := newTestWorld(t, WithAskTimeout(50*time.Millisecond))

		_, err := world.Create(ctx, "silent", newRecorder())
		require.NoError(t, err)

		_, err = world.Ask(ctx, "silent", NewCommand("ping"))
		require.ErrorIs(t, err, gerrors.ErrRequestCanceled)
	})
	t.Run("With unresolved reply", func(t *testing.T) {
		ctx := context.Background()
		world, _ := newTestWorld(t)

		// a reply nobody waits for is dropped
		require.NoError(t, world.Tell(ctx, WorldName, NewReply("unknown", "data")))
		require.ErrorIs(t, world.resolve("unknown", nil), gerrors.ErrUnresolvedCorrelation)
	})
	t.Run("With stop", func(t *testing.T) {
		ctx := context.Background()
		world, _ := newTestWorld(t)

		actor := newRecorder()
		_, err := world.Create(ctx, "doomed", actor)
		require.NoError(t, err)

		require.NoError(t, world.Stop(ctx, "doomed"))
		assert.True(t, actor.stopped.Load())
		assert.False(t, world.Stopping("doomed"))
		_, err = world.Get("doomed")
		require.ErrorIs(t, err, gerrors.ErrActorNotFound)

		require.ErrorIs(t, world.Stop(ctx, "doomed"), gerrors.ErrActorNotFound)
		require.ErrorIs(t, world.Stop(ctx, WorldName), gerrors.ErrReservedName)
		require.ErrorIs(t, world.Tell(ctx, WorldName, NewCommand(InternalStop)), gerrors.ErrReservedName)
	})
	t.Run("With stop bypassing the barrier", func(t *testing.T) {
		ctx := context.Background()
		gate := new(gatedPersistence)
		world, _ := newTestWorld(t, WithPersistence(nil))
		_, err := world.Create(ctx, DefaultPersistenceName, gate)
		require.NoError(t, err)

		pid, err := world.Revive(ctx, "blocked", newRecorder())
		require.NoError(t, err)
		require.Eventually(t, func() bool { return gate.waiting() == 1 }, waitFor, tick)

		require.NoError(t, world.Stop(ctx, "blocked"))
		<-pid.Done()
	})
	t.Run("With suspend queued behind stop", func(t *testing.T) {
		ctx := context.Background()
		world, store := newTestWorld(t)

		release := make(chan struct{})
		pid, err := world.Create(ctx, "busy", NewFuncActor(func(ctx *ReceiveContext) error {
			if ctx.Command() == "block" {
				<-release
			}
			return nil
		}), AsSuspendable())
		require.NoError(t, err)
		require.NoError(t, world.Tell(ctx, "busy", NewCommand("block")))
		require.Eventually(t, func() bool { return pid.MailboxSize() == 0 }, waitFor, tick)

		stopped := make(chan error, 1)
		go func() { stopped <- world.Stop(ctx, "busy") }()
		require.Eventually(t, func() bool { return world.Stopping("busy") && pid.MailboxSize() == 1 }, waitFor, tick)

		suspendCtx, cancel := context.WithTimeout(ctx, waitFor)
		defer cancel()
		suspended := make(chan error, 1)
		go func() { suspended <- world.Suspend(suspendCtx, "busy") }()
		require.Eventually(t, func() bool { return pid.MailboxSize() == 2 }, waitFor, tick)

		close(release)
		require.NoError(t, <-stopped)

		err = <-suspended
		require.ErrorIs(t, err, gerrors.ErrPersistenceFailure)
		require.NotErrorIs(t, err, gerrors.ErrRequestCanceled)
		assert.Zero(t, store.Len())
		assert.Zero(t, world.waiters.Len())
	})
	t.Run("With stop of an actor with a full mailbox", func(t *testing.T) {
		ctx := context.Background()
		world, _ := newTestWorld(t)

		release := make(chan struct{})
		defer close(release)
		pid, err := world.Create(ctx, "crowded", NewFuncActor(func(ctx *ReceiveContext) error {
			if ctx.Command() == "block" {
				<-release
			}
			return nil
		}), WithMailbox(NewBoundedMailbox(1)))
		require.NoError(t, err)

		require.NoError(t, world.Tell(ctx, "crowded", NewCommand("block")))
		require.Eventually(t, func() bool { return pid.MailboxSize() == 0 }, waitFor, tick)
		require.NoError(t, world.Tell(ctx, "crowded", NewCommand("queued")))

		err = world.Stop(ctx, "crowded")
		require.ErrorIs(t, err, gerrors.ErrMailboxFull)
		require.NotErrorIs(t, err, gerrors.ErrActorNotFound)
		assert.False(t, world.Stopping("crowded"))
	})
	t.Run("With ask to the supervisory actor", func(t *testing.T) {
		world, _ := newTestWorld(t)
		_, err := world.Ask(context.Background(), WorldName, NewCommand("ping"))
		require.ErrorIs(t, err, gerrors.ErrReservedName)
		assert.Zero(t, world.waiters.Len())
	})
	t.Run("With remove", func(t *testing.T) {
		ctx := context.Background()
		world, store := newTestWorld(t)

		actor := newRecorder()
		pid, err := world.Create(ctx, "temp", actor, AsSuspendable())
		require.NoError(t, err)

		require.NoError(t, world.Remove("temp"))
		<-pid.Done()
		assert.Zero(t, store.Len())
		require.ErrorIs(t, world.Remove("temp"), gerrors.ErrActorNotFound)
		require.ErrorIs(t, world.Remove(WorldName), gerrors.ErrReservedName)
	})
	t.Run("With destroy", func(t *testing.T) {
		ctx := context.Background()
		world, err := NewWorld(ctx, WithLogger(log.DiscardLogger))
		require.NoError(t, err)

		actors := make([]*recorder, 5)
		for i := range actors {
			actors[i] = newRecorder()
			_, err := world.Create(ctx, fmt.Sprintf("actor-%d", i), actors[i])
			require.NoError(t, err)
		}

		require.NoError(t, world.Destroy(ctx))
		for _, actor := range actors {
			assert.True(t, actor.stopped.Load())
		}
		assert.Zero(t, world.Len())
		require.ErrorIs(t, world.Destroy(ctx), gerrors.ErrWorldStopped)
	})
	t.Run("With persistence connection failure", func(t *testing.T) {
		_, err := NewWorld(context.Background(), WithLogger(log.DiscardLogger), WithPersistence(&unreachableStore{}))
		require.Error(t, err)
		require.ErrorIs(t, err, gerrors.ErrInitFailure)
	})
	t.Run("With invalid options", func(t *testing.T) {
		_, err := NewWorld(context.Background(), WithLogger(log.DiscardLogger), WithPersistenceName(WorldName))
		require.ErrorIs(t, err, gerrors.ErrReservedName)

		_, err = NewWorld(context.Background(), WithLogger(log.DiscardLogger), WithCompression("lz4"))
		require.Error(t, err)
	})
}

func TestWorldStopAll(t *testing.T) {
	t.Run("With every actor acknowledged", func(t *testing.T) {
		ctx := context.Background()
		world, _ := newTestWorld(t)

		const count = 20
		actors := make([]*recorder, count)
		for i := range actors {
			actors[i] = newRecorder()
			_, err := world.Create(ctx, fmt.Sprintf("actor-%d", i), actors[i], AsSuspendable())
			require.NoError(t, err)
			require.NoError(t, world.Tell(ctx, fmt.Sprintf("actor-%d", i), NewCommand("work")))
		}
		require.Equal(t, count+1, world.Len())

		require.NoError(t, world.StopAll(ctx))

		for _, actor := range actors {
			assert.True(t, actor.stopped.Load())
		}
		assert.Zero(t, world.Len())
		assert.Empty(t, world.Actors())
		assert.False(t, world.Running())
		assert.Zero(t, world.pendingStops.Cardinality())
		goleak.VerifyNone(t)
	})
	t.Run("With world stopped afterwards", func(t *testing.T) {
		ctx := context.Background()
		world, _ := newTestWorld(t)
		require.NoError(t, world.StopAll(ctx))

		_, err := world.Create(ctx, "late", newRecorder())
		require.ErrorIs(t, err, gerrors.ErrWorldStopped)
		_, err = world.Revive(ctx, "late", newRecorder())
		require.ErrorIs(t, err, gerrors.ErrWorldStopped)
		_, err = world.Get("late")
		require.ErrorIs(t, err, gerrors.ErrWorldStopped)
		_, err = world.Ask(ctx, "late", NewCommand("x"))
		require.ErrorIs(t, err, gerrors.ErrWorldStopped)
		require.ErrorIs(t, world.Tell(ctx, "late", NewCommand("x")), gerrors.ErrWorldStopped)
		require.ErrorIs(t, world.Suspend(ctx, "late"), gerrors.ErrWorldStopped)
		require.ErrorIs(t, world.Stop(ctx, "late"), gerrors.ErrWorldStopped)
		require.ErrorIs(t, world.Remove("late"), gerrors.ErrWorldStopped)
		require.ErrorIs(t, world.StopAll(ctx), gerrors.ErrWorldStopped)
	})
	t.Run("With suspended actor in flight", func(t *testing.T) {
		ctx := context.Background()
		world, _ := newTestWorld(t)

		_, err := world.Create(ctx, "suspended", new(fooActor), AsSuspendable())
		require.NoError(t, err)
		require.NoError(t, world.Suspend(ctx, "suspended"))

		require.NoError(t, world.StopAll(ctx))
	})
	t.Run("With pending ask abandoned", func(t *testing.T) {
		ctx := context.Background()
		world, _ := newTestWorld(t, WithShutdownTimeout(100*time.Millisecond))

		release := make(chan struct{})
		_, err := world.Create(ctx, "stuck", NewFuncActor(func(*ReceiveContext) error {
			<-release
			return nil
		}))
		require.NoError(t, err)

		asked := make(chan error, 1)
		go func() {
			_, err := world.Ask(ctx, "stuck", NewCommand("ping"))
			asked <- err
		}()
		require.Eventually(t, func() bool { return world.waiters.Len() == 1 }, waitFor, tick)

		require.ErrorIs(t, world.StopAll(ctx), context.DeadlineExceeded)
		select {
		case err := <-asked:
			require.ErrorIs(t, err, gerrors.ErrWorldStopped)
		case <-time.After(waitFor):
			t.Fatal("ask still pending after the world stopped")
		}
		assert.Zero(t, world.waiters.Len())
		close(release)
	})
	t.Run("With shutdown timeout", func(t *testing.T) {
		ctx := context.Background()
		world, _ := newTestWorld(t, WithShutdownTimeout(100*time.Millisecond))

		release := make(chan struct{})
		_, err := world.Create(ctx, "stuck", NewFuncActor(func(*ReceiveContext) error {
			<-release
			return nil
		}))
		require.NoError(t, err)
		require.NoError(t, world.Tell(ctx, "stuck", NewCommand("block")))

		err = world.StopAll(ctx)
		require.ErrorIs(t, err, context.DeadlineExceeded)
		assert.False(t, world.Running())
		close(release)
	})
}

// unreachableStore fails to connect
type unreachableStore struct {
	persistence.MemoryStore
}

func (*unreachableStore) Connect(context.Context) error {
	return errors.New("connection refused")
}
