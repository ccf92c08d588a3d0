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
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/atomic"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	gerrors "github.com/tochemey/acta/errors"
	"github.com/tochemey/acta/future"
	"github.com/tochemey/acta/internal/chain"
	"github.com/tochemey/acta/internal/codec"
	"github.com/tochemey/acta/internal/xsync"
	"github.com/tochemey/acta/log"
	"github.com/tochemey/acta/persistence"
)

const (
	worldRunning int32 = iota
	worldStopping
	worldStopped
)

// World is the registry of the actors living in one runtime. It routes
// messages by name, correlates asks with their replies and coordinates
// suspend, revive and stop.
//
// A World owns a supervisory actor registered under the reserved name
// "world". Replies to asks and stop acknowledgements are addressed to it.
// Several Worlds may live in the same process.
type World struct {
	logger          log.Logger
	store           persistence.StateStore
	persistenceName string
	compression     Compression
	askTimeout      time.Duration
	shutdownTimeout time.Duration
	mailboxFactory  MailboxFactory
	meterProvider   metric.MeterProvider
	metric          *worldMetric

	mu     sync.RWMutex
	actors map[string]*PID

	supervisor   *PID
	waiters      *xsync.Map[string, *future.Promise[Message]]
	pendingStops mapset.Set[string]
	stopWaiters  *xsync.Map[string, *future.Promise[struct{}]]

	state atomic.Int32
}

// NewWorld creates a running World.
//
// When a persistence store is configured with WithPersistence the
// persistence collaborator is created as well. Its PreStart connects the
// store, so NewWorld fails when the store cannot be reached.
func NewWorld(ctx context.Context, opts ...Option) (*World, error) {
	world := &World{
		logger:          log.DefaultLogger,
		persistenceName: DefaultPersistenceName,
		compression:     NoCompression,
		mailboxFactory:  func() Mailbox { return NewUnboundedMailbox() },
		actors:          make(map[string]*PID),
		waiters:         xsync.NewMap[string, *future.Promise[Message]](),
		pendingStops:    mapset.NewSet[string](),
		stopWaiters:     xsync.NewMap[string, *future.Promise[struct{}]](),
	}

	for _, opt := range opts {
		opt.Apply(world)
	}

	if world.logger == nil {
		world.logger = log.DiscardLogger
	}

	if err := validateName(world.persistenceName); err != nil {
		return nil, err
	}

	stateCodec, err := codec.New(world.compression)
	if err != nil {
		return nil, err
	}

	if world.meterProvider != nil {
		if world.metric, err = newWorldMetric(world.meterProvider, world); err != nil {
			return nil, err
		}
	}

	supervisor, err := world.spawn(ctx, WorldName, newSupervisor(world), WithMailbox(NewUnboundedMailbox()))
	if err != nil {
		return nil, err
	}
	world.supervisor = supervisor
	world.actors[WorldName] = supervisor

	if world.store != nil {
		if _, err := world.Create(ctx, world.persistenceName, newPersistenceActor(world.store, stateCodec)); err != nil {
			return nil, multierr.Append(err, world.Destroy(ctx))
		}
	}

	world.logger.Debug("world started")
	return world, nil
}

// Logger returns the World logger
func (world *World) Logger() log.Logger {
	return world.logger
}

// Persistence returns the name of the persistence collaborator
func (world *World) Persistence() string {
	return world.persistenceName
}

// Running reports whether the World accepts new actors
func (world *World) Running() bool {
	return world.state.Load() == worldRunning
}

// Stopping reports whether a stop of the named actor is awaiting its acknowledgement
func (world *World) Stopping(name string) bool {
	return world.pendingStops.Contains(name)
}

// Actors returns the sorted names of the registered actors, the supervisory
// actor excluded
func (world *World) Actors() []string {
	world.mu.RLock()
	names := slices.Sorted(maps.Keys(world.actors))
	world.mu.RUnlock()
	return slices.DeleteFunc(names, func(name string) bool { return name == WorldName })
}

// Len returns the number of registered actors, the supervisory actor excluded
func (world *World) Len() int {
	world.mu.RLock()
	defer world.mu.RUnlock()
	if _, ok := world.actors[WorldName]; ok {
		return len(world.actors) - 1
	}
	return len(world.actors)
}

// Create registers a new actor under the given name and returns its handle.
//
// The PreStart hook of the actor runs before registration. A PreStart
// failure aborts the creation. Creating a name that is already registered
// fails with ErrActorAlreadyExists.
func (world *World) Create(ctx context.Context, name string, actor Actor, opts ...SpawnOption) (*PID, error) {
	if err := world.ensureRunning(); err != nil {
		return nil, err
	}

	if err := world.validateActor(name, actor); err != nil {
		return nil, err
	}

	if world.exists(name) {
		return nil, gerrors.NewErrActorAlreadyExists(name)
	}

	pid, err := world.spawn(ctx, name, actor, opts...)
	if err != nil {
		return nil, err
	}

	if err := world.register(pid); err != nil {
		pid.close()
		return nil, err
	}

	world.logger.Debugf("actor %s created", name)
	return pid, nil
}

// Get returns the live actor registered under the given name
func (world *World) Get(name string) (*PID, error) {
	if world.state.Load() == worldStopped {
		return nil, gerrors.ErrWorldStopped
	}
	return world.lookup(name)
}

// GetOrCreate returns the live actor registered under the given name or
// creates it. A nil actor creates an actor that only traces its messages.
func (world *World) GetOrCreate(ctx context.Context, name string, actor Actor, opts ...SpawnOption) (*PID, error) {
	pid, err := world.Get(name)
	if err == nil {
		return pid, nil
	}

	if !errors.Is(err, gerrors.ErrActorNotFound) {
		return nil, err
	}

	if actor == nil {
		actor = new(defaultActor)
	}

	pid, err = world.Create(ctx, name, actor, opts...)
	if errors.Is(err, gerrors.ErrActorAlreadyExists) {
		return world.Get(name)
	}
	return pid, err
}

// Tell sends a fire-and-forget message without sender to the named actor.
// It fails with ErrActorNotFound when no such actor is registered.
func (world *World) Tell(ctx context.Context, name string, message Message) error {
	return world.TellFrom(ctx, name, message, "")
}

// TellFrom sends a fire-and-forget message to the named actor on behalf of sender
func (world *World) TellFrom(ctx context.Context, name string, message Message, sender string) error {
	if world.state.Load() == worldStopped {
		return gerrors.ErrWorldStopped
	}

	if name == WorldName && message.Command() == InternalStop {
		return gerrors.NewErrReservedName(name)
	}

	pid, err := world.lookup(name)
	if err != nil {
		return err
	}

	if err := pid.tell(ctx, message, sender); err != nil {
		if errors.Is(err, gerrors.ErrMailboxDisposed) {
			return gerrors.NewErrActorNotFound(name)
		}
		return err
	}
	return nil
}

// Ask sends the message to the named actor and waits for its reply.
//
// The message is annotated with a fresh correlation id and sent on behalf
// of the supervisory actor. The actor answers with ReceiveContext.Reply or
// by telling "world" a message whose "reply_to" carries the correlation id.
//
// Ask waits until the reply arrives, the context ends or the optional ask
// timeout elapses. The caller's message is not modified.
func (world *World) Ask(ctx context.Context, name string, message Message) (Message, error) {
	if world.state.Load() == worldStopped {
		return nil, gerrors.ErrWorldStopped
	}

	if name == WorldName {
		return nil, gerrors.NewErrReservedName(name)
	}

	pid, err := world.lookup(name)
	if err != nil {
		return nil, err
	}

	correlationID := uuid.NewString()
	waiter := world.await(correlationID)
	defer world.waiters.Delete(correlationID)
	if world.state.Load() == worldStopped {
		return nil, gerrors.ErrWorldStopped
	}

	if err := pid.tell(ctx, message.With(CorrelationIDKey, correlationID), WorldName); err != nil {
		if errors.Is(err, gerrors.ErrMailboxDisposed) {
			return nil, gerrors.NewErrActorNotFound(name)
		}
		return nil, err
	}

	if world.askTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, world.askTimeout)
		defer cancel()
	}

	reply, err := waiter.Await(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", gerrors.ErrRequestCanceled, err)
	}
	return reply, nil
}

// Suspend persists the state of the named actor and removes it.
//
// The actor is removed from the registry right away, so no new message can
// reach it, and the messages it had already accepted are handled before it
// terminates. Suspend returns once the persistence collaborator acknowledged
// the save. A save failure is returned as ErrPersistenceFailure. An actor
// that is not suspendable has nothing to save and is acknowledged at once.
func (world *World) Suspend(ctx context.Context, name string) error {
	if err := world.ensureRunning(); err != nil {
		return err
	}

	if name == WorldName || name == world.persistenceName {
		return gerrors.NewErrReservedName(name)
	}

	correlationID := uuid.NewString()
	waiter := world.await(correlationID)
	defer world.waiters.Delete(correlationID)
	if world.state.Load() == worldStopped {
		return gerrors.ErrWorldStopped
	}

	pid, err := world.detach(name)
	if err != nil {
		return err
	}

	command := Message{CommandKey: InternalSuspend, CorrelationIDKey: correlationID}
	if err := pid.tell(ctx, command, ""); err != nil {
		pid.close()
		return err
	}
	pid.close()

	reply, err := waiter.Await(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", gerrors.ErrRequestCanceled, err)
	}

	if reason := reply.Error(); reason != "" {
		return gerrors.NewErrPersistenceFailure(errors.New(reason))
	}

	world.logger.Debugf("actor %s suspended", name)
	return nil
}

// Revive creates the named actor again and reloads the state it saved when
// it was suspended.
//
// The reload request is the first message of the new mailbox. Messages sent
// to the actor before its state arrives are deferred and replayed in order
// once it does. The actor is always created suspendable.
//
// A Revive racing a Suspend of the same name that is still in flight may
// load the state saved before that Suspend.
func (world *World) Revive(ctx context.Context, name string, actor Actor, opts ...SpawnOption) (*PID, error) {
	if err := world.ensureRunning(); err != nil {
		return nil, err
	}

	if err := world.validateActor(name, actor); err != nil {
		return nil, err
	}

	if world.exists(name) {
		return nil, gerrors.NewErrActorAlreadyExists(name)
	}

	opts = append(slices.Clone(opts), AsSuspendable())
	pid, err := world.spawn(ctx, name, actor, opts...)
	if err != nil {
		return nil, err
	}

	if err := pid.enqueue(ctx, NewCommand(InternalReloadState), ""); err != nil {
		pid.close()
		return nil, err
	}

	if err := world.register(pid); err != nil {
		pid.close()
		return nil, err
	}

	pid.process()
	world.logger.Debugf("actor %s revived", name)
	return pid, nil
}

// Remove closes the named actor without persisting its state.
// The messages it had already accepted are still handled.
func (world *World) Remove(name string) error {
	if world.state.Load() == worldStopped {
		return gerrors.ErrWorldStopped
	}

	if name == WorldName {
		return gerrors.NewErrReservedName(name)
	}

	pid, err := world.detach(name)
	if err != nil {
		return err
	}

	pid.close()
	return nil
}

// Stop stops the named actor and waits for it to acknowledge its
// termination. The actor terminates once it dequeues the stop command.
// Messages queued behind the stop command are dropped.
func (world *World) Stop(ctx context.Context, name string) error {
	if world.state.Load() == worldStopped {
		return gerrors.ErrWorldStopped
	}

	if name == WorldName {
		return gerrors.NewErrReservedName(name)
	}

	pid, err := world.lookup(name)
	if err != nil {
		return err
	}

	waiter := world.expectStop(name)
	if err := pid.tell(ctx, NewCommand(InternalStop), ""); err != nil {
		world.cancelStop(name)
		if errors.Is(err, gerrors.ErrMailboxDisposed) {
			return gerrors.NewErrActorNotFound(name)
		}
		return err
	}

	if _, err := waiter.Await(ctx); err != nil {
		return fmt.Errorf("%w: %w", gerrors.ErrRequestCanceled, err)
	}
	return nil
}

// StopAll stops every actor and waits until all of them acknowledged their
// termination. The supervisory actor is torn down last. Afterwards the
// World is stopped and every operation fails with ErrWorldStopped.
//
// When the context has no deadline the shutdown timeout, if any, bounds the wait.
func (world *World) StopAll(ctx context.Context) error {
	if !world.state.CompareAndSwap(worldRunning, worldStopping) {
		return gerrors.ErrWorldStopped
	}

	if _, ok := ctx.Deadline(); !ok && world.shutdownTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, world.shutdownTimeout)
		defer cancel()
	}

	world.mu.RLock()
	pids := make([]*PID, 0, len(world.actors))
	for name, pid := range world.actors {
		if name != WorldName {
			pids = append(pids, pid)
		}
	}
	world.mu.RUnlock()

	world.logger.Debugf("stopping %d actors", len(pids))

	eg := new(errgroup.Group)
	for _, pid := range pids {
		waiter := world.expectStop(pid.Name())
		if err := pid.tell(ctx, NewCommand(InternalStop), ""); err != nil {
			// closing or unable to accept the command: close it and wait for
			// its loop to end instead
			world.cancelStop(pid.Name())
			world.unregister(pid)
			pid.close()
			eg.Go(func() error {
				select {
				case <-pid.Done():
					return nil
				case <-ctx.Done():
					return fmt.Errorf("actor=(%s) %w", pid.Name(), ctx.Err())
				}
			})
			continue
		}

		eg.Go(func() error {
			if _, err := waiter.Await(ctx); err != nil {
				return fmt.Errorf("actor=(%s) %w", pid.Name(), err)
			}
			return nil
		})
	}

	err := eg.Wait()

	teardown := chain.New().
		Add(world.stopSupervisor).
		Add(func(context.Context) error { return world.metric.unregister() })

	err = multierr.Append(err, teardown.Run(ctx))
	world.state.Store(worldStopped)
	world.abandonWaiters()

	if err != nil {
		world.logger.Errorf("world stopped with errors: %v", err)
		return err
	}

	world.logger.Debug("world stopped")
	return nil
}

// Destroy closes every actor, the supervisory actor included, without
// waiting for stop acknowledgements. It waits for every consume loop to end
// or the context to be done.
func (world *World) Destroy(ctx context.Context) error {
	if world.state.Swap(worldStopped) == worldStopped {
		return gerrors.ErrWorldStopped
	}

	world.mu.Lock()
	pids := slices.Collect(maps.Values(world.actors))
	clear(world.actors)
	world.mu.Unlock()

	eg := new(errgroup.Group)
	for _, pid := range pids {
		pid.close()
		eg.Go(func() error {
			select {
			case <-pid.Done():
				return nil
			case <-ctx.Done():
				return fmt.Errorf("actor=(%s) %w", pid.Name(), ctx.Err())
			}
		})
	}

	err := multierr.Append(eg.Wait(), world.metric.unregister())
	world.abandonWaiters()
	return err
}

// stopSupervisor tears down the supervisory actor
func (world *World) stopSupervisor(ctx context.Context) error {
	supervisor := world.supervisor
	supervisor.close()

	select {
	case <-supervisor.Done():
	case <-ctx.Done():
		return fmt.Errorf("actor=(%s) %w", WorldName, ctx.Err())
	}

	world.mu.Lock()
	delete(world.actors, WorldName)
	world.mu.Unlock()
	return nil
}

// spawn creates the PID of an actor and runs its PreStart hook
func (world *World) spawn(ctx context.Context, name string, actor Actor, opts ...SpawnOption) (*PID, error) {
	config := newSpawnConfig(opts...)
	if config.mailbox == nil {
		config.mailbox = world.mailboxFactory()
	}

	pid := newPID(world, name, actor, config)
	if err := pid.init(ctx); err != nil {
		return nil, err
	}
	return pid, nil
}

// register publishes the actor under its name
func (world *World) register(pid *PID) error {
	world.mu.Lock()
	defer world.mu.Unlock()

	if world.state.Load() != worldRunning {
		return gerrors.ErrWorldStopped
	}

	if _, ok := world.actors[pid.Name()]; ok {
		return gerrors.NewErrActorAlreadyExists(pid.Name())
	}

	world.actors[pid.Name()] = pid
	return nil
}

// detach removes the named actor from the registry and returns it
func (world *World) detach(name string) (*PID, error) {
	world.mu.Lock()
	defer world.mu.Unlock()

	pid, ok := world.actors[name]
	if !ok {
		return nil, gerrors.NewErrActorNotFound(name)
	}

	delete(world.actors, name)
	return pid, nil
}

// unregister removes the given actor when it is still the one registered under its name
func (world *World) unregister(pid *PID) {
	world.mu.Lock()
	if registered, ok := world.actors[pid.Name()]; ok && registered == pid {
		delete(world.actors, pid.Name())
	}
	world.mu.Unlock()
}

// release removes the named actor once its loop has ended. A newer actor
// registered under the same name is left untouched.
func (world *World) release(name string) {
	world.mu.Lock()
	if pid, ok := world.actors[name]; ok && !pid.IsRunning() {
		delete(world.actors, name)
	}
	world.mu.Unlock()
}

func (world *World) lookup(name string) (*PID, error) {
	world.mu.RLock()
	pid, ok := world.actors[name]
	world.mu.RUnlock()
	if !ok {
		return nil, gerrors.NewErrActorNotFound(name)
	}
	return pid, nil
}

func (world *World) exists(name string) bool {
	_, err := world.lookup(name)
	return err == nil
}

// await parks a waiter for the given correlation id
func (world *World) await(correlationID string) *future.Promise[Message] {
	waiter := future.NewPromise[Message]()
	world.waiters.Set(correlationID, waiter)
	return waiter
}

// resolve completes the waiter of the given correlation id at most once
func (world *World) resolve(correlationID string, reply Message) error {
	waiter, ok := world.waiters.Pop(correlationID)
	if !ok {
		return fmt.Errorf("%w: %s", gerrors.ErrUnresolvedCorrelation, correlationID)
	}
	waiter.Success(reply)
	return nil
}

// acknowledge delivers a reply to the waiter named by its reply_to entry.
// It goes through the supervisory actor and falls back to resolving the
// waiter directly when the supervisory actor is gone.
func (world *World) acknowledge(ctx context.Context, reply Message, sender string) {
	if err := world.TellFrom(ctx, WorldName, reply, sender); err == nil {
		return
	}
	if err := world.resolve(reply.ReplyTo(), reply); err != nil {
		world.logger.Debugf("dropping reply from %s: %v", sender, err)
	}
}

// abandonWaiters fails every pending ask or suspend once the World is stopped
func (world *World) abandonWaiters() {
	for correlationID, waiter := range world.waiters.Drain() {
		if waiter.Failure(gerrors.ErrWorldStopped) {
			world.logger.Debugf("abandoned pending request %s", correlationID)
		}
	}
}

// expectStop registers a pending stop of the named actor
func (world *World) expectStop(name string) *future.Promise[struct{}] {
	waiter, _ := world.stopWaiters.GetOrSet(name, future.NewPromise[struct{}]())
	world.pendingStops.Add(name)
	return waiter
}

func (world *World) cancelStop(name string) {
	world.pendingStops.Remove(name)
	world.stopWaiters.Delete(name)
}

// acknowledgeStop handles the stop acknowledgement of the named actor
func (world *World) acknowledgeStop(name string) {
	world.pendingStops.Remove(name)
	world.release(name)
	if waiter, ok := world.stopWaiters.Pop(name); ok {
		waiter.Success(struct{}{})
	}
}

func (world *World) ensureRunning() error {
	if world.state.Load() != worldRunning {
		return gerrors.ErrWorldStopped
	}
	return nil
}

func (world *World) validateActor(name string, actor Actor) error {
	if err := validateName(name); err != nil {
		return err
	}
	if actor == nil {
		return gerrors.ErrUndefinedActor
	}
	return nil
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return gerrors.ErrInvalidActorName
	}
	if name == WorldName {
		return gerrors.NewErrReservedName(name)
	}
	return nil
}
