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

	gerrors "github.com/tochemey/acta/errors"
	"github.com/tochemey/acta/internal/codec"
	"github.com/tochemey/acta/persistence"
)

// PersistenceActor is the persistence collaborator. It saves and loads the
// state of suspendable actors on their behalf, keyed by the name of the
// requesting actor.
//
// Protocol:
//   - SAVE_STATE{data, correlation_id?} saves data under "state::"+sender.
//     When a correlation id is present the World is told STATE_SAVED with
//     reply_to set to it, and an error entry when the save failed.
//   - LOAD_STATE answers the sender with LOADED_STATE{data}. Data is empty when
//     nothing was saved. A failure answers LOAD_STATE_FAILED{error}.
//
// The store is connected in PreStart and disconnected in PostStop.
type PersistenceActor struct {
	store persistence.StateStore
	codec *codec.Codec
}

var _ Actor = (*PersistenceActor)(nil)

// NewPersistenceActor creates a persistence collaborator writing blobs with
// the given compression
func NewPersistenceActor(store persistence.StateStore, compression Compression) (*PersistenceActor, error) {
	stateCodec, err := codec.New(compression)
	if err != nil {
		return nil, err
	}
	return newPersistenceActor(store, stateCodec), nil
}

func newPersistenceActor(store persistence.StateStore, stateCodec *codec.Codec) *PersistenceActor {
	return &PersistenceActor{store: store, codec: stateCodec}
}

// PreStart connects the store
func (x *PersistenceActor) PreStart(ctx context.Context) error {
	if x.store == nil {
		return gerrors.ErrPersistenceFailure
	}
	return x.store.Connect(ctx)
}

// Receive handles the persistence protocol
func (x *PersistenceActor) Receive(ctx *ReceiveContext) {
	switch ctx.Command() {
	case SaveState:
		x.save(ctx)
	case LoadState:
		x.load(ctx)
	default:
		ctx.Logger().Debugf("ignoring command=(%s) from=(%s)", ctx.Command(), ctx.Sender())
	}
}

// PostStop disconnects the store
func (x *PersistenceActor) PostStop(ctx context.Context) error {
	return x.store.Disconnect(ctx)
}

func (x *PersistenceActor) save(ctx *ReceiveContext) {
	message := ctx.Message()
	sender := ctx.Sender()

	var err error
	if sender == "" {
		err = gerrors.ErrNoSender
	} else {
		var blob []byte
		if blob, err = x.codec.Encode(message.DataMap()); err == nil {
			err = x.store.Save(ctx.Context(), persistence.StateKey(sender), blob)
		}
	}

	if correlationID := message.CorrelationID(); correlationID != "" {
		ack := Message{CommandKey: StateSaved, ReplyToKey: correlationID}
		if err != nil {
			ack[ErrorKey] = err.Error()
		}
		ctx.World().acknowledge(ctx.Context(), ack, ctx.Self().Name())
	}

	if err != nil {
		ctx.Err(gerrors.NewErrPersistenceFailure(err))
		return
	}
	ctx.Logger().Debugf("state of %s saved", sender)
}

func (x *PersistenceActor) load(ctx *ReceiveContext) {
	sender := ctx.Sender()
	if sender == "" {
		ctx.Err(gerrors.ErrNoSender)
		return
	}

	state, err := x.read(ctx.Context(), sender)
	if err != nil {
		failure := Message{CommandKey: LoadStateFailed, ErrorKey: err.Error()}
		if terr := ctx.Tell(sender, failure); terr != nil {
			ctx.Logger().Warnf("failed to report load failure to %s: %v", sender, terr)
		}
		ctx.Err(gerrors.NewErrPersistenceFailure(err))
		return
	}

	if err := ctx.Tell(sender, NewCommandWithData(LoadedState, state)); err != nil {
		ctx.Err(err)
	}
}

func (x *PersistenceActor) read(ctx context.Context, name string) (map[string]any, error) {
	blob, err := x.store.Load(ctx, persistence.StateKey(name))
	if err != nil {
		if errors.Is(err, persistence.ErrKeyNotFound) {
			return map[string]any{}, nil
		}
		return nil, err
	}
	return x.codec.Decode(blob)
}
