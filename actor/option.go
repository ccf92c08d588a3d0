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
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/tochemey/acta/internal/codec"
	"github.com/tochemey/acta/log"
	"github.com/tochemey/acta/persistence"
)

// Compression selects how persisted state blobs are compressed
type Compression = codec.Compression

const (
	// NoCompression stores state blobs as is
	NoCompression = codec.NoCompression
	// ZstdCompression compresses state blobs with zstd
	ZstdCompression = codec.Zstd
	// BrotliCompression compresses state blobs with brotli
	BrotliCompression = codec.Brotli
)

// Option is the interface that applies a configuration option.
type Option interface {
	// Apply sets the Option value of a config.
	Apply(world *World)
}

// enforce compilation error
var _ Option = OptionFunc(nil)

// OptionFunc implements the Option interface.
type OptionFunc func(*World)

// Apply implementation
func (f OptionFunc) Apply(world *World) {
	f(world)
}

// WithLogger sets the World logger
func WithLogger(logger log.Logger) Option {
	return OptionFunc(func(world *World) {
		world.logger = logger
	})
}

// WithPersistence registers the persistence collaborator backed by the given
// store when the World starts
func WithPersistence(store persistence.StateStore) Option {
	return OptionFunc(func(world *World) {
		world.store = store
	})
}

// WithPersistenceName sets the name under which suspendable actors reach
// the persistence collaborator. The default is "persistence".
func WithPersistenceName(name string) Option {
	return OptionFunc(func(world *World) {
		world.persistenceName = name
	})
}

// WithCompression sets the compression of the state blobs written by the
// persistence collaborator
func WithCompression(compression Compression) Option {
	return OptionFunc(func(world *World) {
		world.compression = compression
	})
}

// WithAskTimeout bounds every ask. By default an ask waits until it is
// answered or its context ends.
func WithAskTimeout(timeout time.Duration) Option {
	return OptionFunc(func(world *World) {
		world.askTimeout = timeout
	})
}

// WithMailboxFactory sets the mailbox created for actors spawned without
// an explicit mailbox
func WithMailboxFactory(factory MailboxFactory) Option {
	return OptionFunc(func(world *World) {
		world.mailboxFactory = factory
	})
}

// WithMetric enables the World instruments on the given meter provider
func WithMetric(provider metric.MeterProvider) Option {
	return OptionFunc(func(world *World) {
		world.meterProvider = provider
	})
}

// WithShutdownTimeout bounds StopAll when the caller context has no deadline
func WithShutdownTimeout(timeout time.Duration) Option {
	return OptionFunc(func(world *World) {
		world.shutdownTimeout = timeout
	})
}
