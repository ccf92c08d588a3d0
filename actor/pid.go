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
	"runtime"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/atomic"

	gerrors "github.com/tochemey/acta/errors"
	"github.com/tochemey/acta/future"
	"github.com/tochemey/acta/log"
)

const (
	idle int32 = iota
	busy
)

// PID is the handle of a live actor. It owns the mailbox and runs the
// consume loop that drains it one message at a time.
type PID struct {
	name     string
	world    *World
	actor    Actor
	mailbox  Mailbox
	logger   log.Logger
	pipeline Handler

	// state is nil for actors that are not suspendable
	state *actorState
	// replays holds the deferred messages released by the last barrier.
	// Only accessed from the consume loop.
	replays []*ReceiveContext

	processing atomic.Int32
	// sendLock orders the close marker after every accepted message
	sendLock   sync.RWMutex
	closed     atomic.Bool
	stopping   atomic.Bool
	terminated atomic.Bool
	done       *future.Promise[struct{}]
}

func newPID(world *World, name string, actor Actor, config *spawnConfig) *PID {
	pid := &PID{
		name:    name,
		world:   world,
		actor:   actor,
		mailbox: config.mailbox,
		logger:  world.logger.With("actor", name),
		done:    future.NewPromise[struct{}](),
	}

	stages := make([]Stage, 0, len(config.stages)+1)
	if config.suspendable {
		pid.state = newActorState()
		stages = append(stages, suspendableStage{})
	} else {
		stages = append(stages, controlStage{})
	}
	stages = append(stages, config.stages...)
	pid.pipeline = compose(actor.Receive, stages...)
	return pid
}

// Name returns the name of the actor
func (pid *PID) Name() string {
	return pid.name
}

// IsSuspendable reports whether the actor carries a persistable state
func (pid *PID) IsSuspendable() bool {
	return pid.state != nil
}

// IsRunning reports whether the consume loop of the actor is still alive
func (pid *PID) IsRunning() bool {
	return !pid.terminated.Load()
}

// IsStopping reports whether the actor is tearing down
func (pid *PID) IsStopping() bool {
	return pid.stopping.Load()
}

// MailboxSize returns a snapshot of the number of queued messages
func (pid *PID) MailboxSize() int64 {
	return pid.mailbox.Len()
}

// Done is closed once the consume loop has exited
func (pid *PID) Done() <-chan struct{} {
	return pid.done.Done()
}

// init runs the PreStart hook of the actor
func (pid *PID) init(ctx context.Context) error {
	pid.logger.Debugf("initializing actor %s", pid.name)
	if err := pid.actor.PreStart(ctx); err != nil {
		return gerrors.NewErrInitFailure(err)
	}
	return nil
}

// tell enqueues a message and wakes the consume loop.
// It fails once the actor has been closed.
func (pid *PID) tell(ctx context.Context, message Message, sender string) error {
	if err := pid.enqueue(ctx, message, sender); err != nil {
		return err
	}
	pid.process()
	return nil
}

// enqueue queues a message without waking the consume loop
func (pid *PID) enqueue(ctx context.Context, message Message, sender string) error {
	pid.sendLock.RLock()
	defer pid.sendLock.RUnlock()
	if pid.closed.Load() {
		return gerrors.ErrMailboxDisposed
	}
	return pid.mailbox.Enqueue(newReceiveContext(ctx, sender, pid, message))
}

// close marks the end of the mailbox. Every message accepted before close is
// still handled, after which the loop ends and PostStop runs.
// Subsequent sends fail with ErrMailboxDisposed.
func (pid *PID) close() {
	pid.sendLock.Lock()
	alreadyClosed := pid.closed.Swap(true)
	pid.sendLock.Unlock()
	if alreadyClosed {
		return
	}
	pid.process()
}

// process starts the consume loop when the actor is idle
func (pid *PID) process() {
	if pid.terminated.Load() {
		return
	}

	if !pid.processing.CompareAndSwap(idle, busy) {
		return
	}

	go func() {
		for {
			if pid.terminated.Load() {
				pid.processing.Store(idle)
				return
			}

			if received := pid.mailbox.Dequeue(); received != nil {
				pid.dispatch(received)
				continue
			}

			// closed is read before emptiness so that every message accepted
			// before the close is observed
			if pid.closed.Load() && pid.mailbox.IsEmpty() {
				pid.finalize(false)
				pid.processing.Store(idle)
				return
			}

			pid.processing.Store(idle)

			if (!pid.mailbox.IsEmpty() || pid.closed.Load()) && pid.processing.CompareAndSwap(idle, busy) {
				continue
			}
			return
		}
	}()
}

// dispatch handles one dequeued message followed by any replay it released
func (pid *PID) dispatch(received *ReceiveContext) {
	if received.Command() == InternalStop {
		pid.finalize(true)
		return
	}

	pid.invoke(received, false)
	for len(pid.replays) > 0 && !pid.terminated.Load() {
		next := pid.replays[0]
		pid.replays[0] = nil
		pid.replays = pid.replays[1:]
		pid.invoke(next, true)
	}
}

// enqueueReplay schedules deferred messages to run after the current one
func (pid *PID) enqueueReplay(pending []*ReceiveContext) {
	if len(pending) == 0 {
		return
	}
	pid.replays = append(pid.replays, pending...)
}

// invoke runs the pipeline for a single message. Handler failures are
// logged and counted. They never end the consume loop.
func (pid *PID) invoke(received *ReceiveContext, replayed bool) {
	ctx := received.Context()
	attrs := metric.WithAttributes(attribute.String("actor", pid.name))
	if replayed {
		pid.world.metric.replayed(ctx, attrs)
	}

	if err := pid.handle(received); err != nil {
		herr := gerrors.NewHandlerError(pid.name, received.Command(), err)
		pid.logger.Error(herr)
		pid.world.metric.failed(ctx, attrs)
		return
	}
	pid.world.metric.processed(ctx, attrs)
}

func (pid *PID) handle(received *ReceiveContext) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = toPanicError(r)
		}
	}()

	pid.pipeline(received)
	return received.getError()
}

// finalize ends the consume loop. It runs once.
// When stop is set the supervisory actor is told the actor has stopped.
func (pid *PID) finalize(stop bool) {
	if !pid.terminated.CompareAndSwap(false, true) {
		return
	}

	pid.stopping.Store(true)
	pid.sendLock.Lock()
	pid.closed.Store(true)
	pid.sendLock.Unlock()

	ctx := context.Background()
	if err := pid.actor.PostStop(ctx); err != nil {
		pid.logger.Errorf("PostStop failed: %v", err)
	}

	pid.abandonQueued(ctx)
	pid.mailbox.Dispose()
	pid.replays = nil
	if pid.state != nil {
		pid.abandonDeferred(ctx)
	}

	if stop {
		if err := pid.world.TellFrom(ctx, WorldName, NewCommand(Stopped), pid.name); err != nil {
			pid.logger.Warnf("failed to notify stop: %v", err)
		}
	}

	pid.logger.Debugf("actor %s terminated", pid.name)
	pid.done.Success(struct{}{})
}

// abandonQueued drops the messages left behind the end of the loop.
// A suspend among them is answered with a failure.
func (pid *PID) abandonQueued(ctx context.Context) {
	dropped := 0
	for received := pid.mailbox.Dequeue(); received != nil; received = pid.mailbox.Dequeue() {
		dropped++
		if received.Command() == InternalSuspend {
			pid.rejectSuspend(ctx, received, "actor terminated before suspending")
		}
	}
	if dropped > 0 {
		pid.logger.Debugf("dropped %d messages queued behind the stop", dropped)
	}
}

// rejectSuspend fails the suspend request carried by received
func (pid *PID) rejectSuspend(ctx context.Context, received *ReceiveContext, reason string) {
	correlationID := received.Message().CorrelationID()
	if correlationID == "" {
		return
	}
	ack := Message{
		CommandKey: StateSaved,
		ReplyToKey: correlationID,
		ErrorKey:   reason,
	}
	pid.world.acknowledge(ctx, ack, pid.name)
}

// toPanicError enriches a recovered panic with the location that raised it
func toPanicError(r any) error {
	pc, fn, line, _ := runtime.Caller(3)
	if err, ok := r.(error); ok {
		var pe *gerrors.PanicError
		if errors.As(err, &pe) {
			return pe
		}
		return gerrors.NewPanicError(fmt.Errorf("%w at %s[%s:%d]", err, runtime.FuncForPC(pc).Name(), fn, line))
	}
	return gerrors.NewPanicError(fmt.Errorf("%#v at %s[%s:%d]", r, runtime.FuncForPC(pc).Name(), fn, line))
}
