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

import (
	"context"
	"slices"

	"go.uber.org/atomic"

	"github.com/tochemey/acta/internal/xsync"
)

// MemoryStore keeps the state blobs in memory.
// Content survives Disconnect so that a store can be reused across Worlds in tests.
type MemoryStore struct {
	entries   *xsync.Map[string, []byte]
	connected *atomic.Bool
}

var _ StateStore = (*MemoryStore)(nil)

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries:   xsync.NewMap[string, []byte](),
		connected: atomic.NewBool(false),
	}
}

// Connect marks the store as usable
func (s *MemoryStore) Connect(context.Context) error {
	s.connected.Store(true)
	return nil
}

// Disconnect marks the store as unusable
func (s *MemoryStore) Disconnect(context.Context) error {
	s.connected.Store(false)
	return nil
}

// Save stores a copy of the value
func (s *MemoryStore) Save(ctx context.Context, key string, value []byte) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	s.entries.Set(key, slices.Clone(value))
	return nil
}

// Load returns a copy of the saved value
func (s *MemoryStore) Load(ctx context.Context, key string) ([]byte, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	value, ok := s.entries.Get(key)
	if !ok {
		return nil, ErrKeyNotFound
	}
	return slices.Clone(value), nil
}

// Delete removes the key
func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	s.entries.Delete(key)
	return nil
}

// Exists reports whether the key is present
func (s *MemoryStore) Exists(ctx context.Context, key string) (bool, error) {
	if err := s.check(ctx); err != nil {
		return false, err
	}
	_, ok := s.entries.Get(key)
	return ok, nil
}

// Len returns the number of saved keys
func (s *MemoryStore) Len() int {
	return s.entries.Len()
}

func (s *MemoryStore) check(ctx context.Context) error {
	if !s.connected.Load() {
		return ErrNotConnected
	}
	return ctx.Err()
}
