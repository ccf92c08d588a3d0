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
)

// recvKey is the state entry counting the application messages handled by
// a suspendable actor
const recvKey = "recv"

// actorState is the state owned by a suspendable actor together with its
// reload barrier. It is only touched from the consume loop of the actor.
type actorState struct {
	values map[string]any
	// waitFor names the command the actor is waiting for. Empty when no
	// barrier is set.
	waitFor   string
	waitQueue []*ReceiveContext
}

func newActorState() *actorState {
	return &actorState{values: make(map[string]any)}
}

// suspendableStage implements the suspend/resume state machine:
//
//	Active --INTERNAL_RELOAD_STATE--> AwaitingReload --LOADED_STATE--> Active
//
// While awaiting the reload every other message is deferred. Deferred
// messages are replayed in arrival order once the barrier clears, each one
// evaluated against the barrier in place at the time of its replay.
type suspendableStage struct{}

var _ Stage = suspendableStage{}

func (suspendableStage) Handle(ctx *ReceiveContext, next Handler) {
	pid := ctx.Self()
	state := pid.state
	command := ctx.Command()

	if state.waitFor != "" {
		if command != state.waitFor && command != LoadStateFailed {
			pid.logger.Debugf("waiting for %s, deferring command=(%s)", state.waitFor, command)
			state.waitQueue = append(state.waitQueue, ctx)
			return
		}

		pid.logger.Debugf("resolved waiting for %s with %s", state.waitFor, command)
		pending := state.waitQueue
		state.waitFor = ""
		state.waitQueue = nil
		defer pid.enqueueReplay(pending)
	}

	switch command {
	case InternalSuspend:
		saveState(ctx, state)
	case InternalReloadState:
		if err := ctx.Tell(pid.world.persistenceName, NewCommand(LoadState)); err != nil {
			pid.logger.Errorf("failed to request state reload: %v", err)
			return
		}
		state.waitFor = LoadedState
	case LoadedState:
		maps.Copy(state.values, ctx.Message().DataMap())
		next(ctx)
	case LoadStateFailed:
		pid.logger.Warnf("state reload failed: %s", ctx.Message().Error())
		next(ctx)
	default:
		state.values[recvKey] = toInt(state.values[recvKey]) + 1
		next(ctx)
	}
}

// saveState hands a snapshot of the state to the persistence collaborator.
// The correlation id of the suspend rides along so the collaborator can
// acknowledge the save to the World.
func saveState(ctx *ReceiveContext, state *actorState) {
	pid := ctx.Self()
	correlationID := ctx.Message().CorrelationID()

	request := Message{
		CommandKey: SaveState,
		DataKey:    maps.Clone(state.values),
	}
	if correlationID != "" {
		request[CorrelationIDKey] = correlationID
	}

	err := ctx.Tell(pid.world.persistenceName, request)
	if err == nil {
		return
	}

	pid.logger.Errorf("failed to save state: %v", err)
	if correlationID != "" {
		ack := Message{
			CommandKey: StateSaved,
			ReplyToKey: correlationID,
			ErrorKey:   err.Error(),
		}
		pid.world.acknowledge(ctx.Context(), ack, pid.name)
	}
}

// abandonDeferred drops the messages deferred behind a barrier that will
// never clear. A suspend among them is answered with a failure so that its
// caller does not wait forever.
func (pid *PID) abandonDeferred(ctx context.Context) {
	deferred := pid.state.waitQueue
	pid.state.waitQueue = nil
	if len(deferred) > 0 {
		pid.logger.Warnf("dropping %d messages deferred while waiting for %s", len(deferred), pid.state.waitFor)
	}

	for _, received := range deferred {
		if received.Command() == InternalSuspend {
			pid.rejectSuspend(ctx, received, "actor terminated while waiting for "+pid.state.waitFor)
		}
	}
}

// toInt reads a counter that may have round-tripped through the state codec
func toInt(value any) int64 {
	switch v := value.(type) {
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case int64:
		return v
	case float64:
		return int64(v)
	default:
		return 0
	}
}
