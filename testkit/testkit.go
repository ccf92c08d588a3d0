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

package testkit

import (
	"context"
	"testing"

	"go.uber.org/atomic"

	"github.com/tochemey/acta/actor"
	"github.com/tochemey/acta/log"
	"github.com/tochemey/acta/persistence"
)

// TestKit defines actor test kit
type TestKit struct {
	world        *actor.World
	store        *persistence.MemoryStore
	kt           *testing.T
	logger       log.Logger
	worldOptions []actor.Option
	started      *atomic.Bool
}

// New creates an instance of TestKit backed by a world whose persistence
// collaborator keeps states in memory
func New(ctx context.Context, t *testing.T, opts ...Option) *TestKit {
	testkit := &TestKit{
		kt:      t,
		logger:  log.DiscardLogger,
		store:   persistence.NewMemoryStore(),
		started: atomic.NewBool(false),
	}
	for _, opt := range opts {
		opt.Apply(testkit)
	}

	worldOptions := append([]actor.Option{
		actor.WithLogger(testkit.logger),
		actor.WithPersistence(testkit.store),
	}, testkit.worldOptions...)

	world, err := actor.NewWorld(ctx, worldOptions...)
	if err != nil {
		t.Fatal(err.Error())
	}

	testkit.world = world
	testkit.started.Store(true)
	return testkit
}

// World returns the testkit world
func (k *TestKit) World() *actor.World {
	return k.world
}

// Store returns the in-memory store behind the persistence collaborator
func (k *TestKit) Store() *persistence.MemoryStore {
	return k.store
}

// Spawn creates an actor
func (k *TestKit) Spawn(ctx context.Context, name string, actor actor.Actor, opts ...actor.SpawnOption) *actor.PID {
	pid, err := k.world.Create(ctx, name, actor, opts...)
	if err != nil {
		k.kt.Fatal(err.Error())
	}
	return pid
}

// NewProbe create a test probe
func (k *TestKit) NewProbe(ctx context.Context) Probe {
	testProbe, err := newProbe(ctx, k.world, k.kt)
	if err != nil {
		k.kt.Fatal(err.Error())
	}
	return testProbe
}

// Shutdown stops the test kit
func (k *TestKit) Shutdown(ctx context.Context) {
	if !k.started.CompareAndSwap(true, false) {
		return
	}
	if err := k.world.StopAll(ctx); err != nil {
		k.kt.Fatal(err.Error())
	}
}
