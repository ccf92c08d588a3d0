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

package persistence

import "context"

// StateStore is the durable key/value collaborator used to save and load
// actor state across suspend and revive.
//
// Values are opaque blobs. For the same key, a Load issued after a Save
// returned must observe that Save's value (last write wins). Independent keys
// carry no ordering guarantee. Implementations must be safe for concurrent use.
//
// Available implementations:
//
//   - MemoryStore for tests and ephemeral state
//   - plugins/redis for a shared Redis server
//   - plugins/bolt for an embedded file
//   - plugins/nats for a NATS JetStream key/value bucket
type StateStore interface {
	// Connect opens the underlying resources. It is called once, before any other call.
	Connect(ctx context.Context) error
	// Disconnect releases the underlying resources.
	Disconnect(ctx context.Context) error
	// Save writes the blob under the given key, replacing any previous value.
	Save(ctx context.Context, key string, value []byte) error
	// Load returns the blob saved under the given key.
	// It returns ErrKeyNotFound when nothing was saved.
	Load(ctx context.Context, key string) ([]byte, error)
	// Delete removes the key. Deleting a missing key is a no-op.
	Delete(ctx context.Context, key string) error
	// Exists reports whether a blob is saved under the given key.
	Exists(ctx context.Context, key string) (bool, error)
}
