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

// Package bolt provides a persistence.StateStore backed by an embedded bbolt file.
package bolt

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	bbolt "go.etcd.io/bbolt"

	"github.com/tochemey/acta/persistence"
)

const (
	fileMode      os.FileMode = 0o600
	defaultBucket             = "acta_state"
)

var defaultTimeout = 5 * time.Second

// Config holds the bbolt settings
type Config struct {
	// Path is the database file. Parent directories are created on Connect.
	Path string
	// Bucket holds the state entries
	Bucket string
	// Timeout bounds the wait on the file lock when opening
	Timeout time.Duration
}

// StateStore saves state blobs in a single bbolt bucket.
// bbolt gives single-writer/multi-reader semantics, the store only guards its open state.
type StateStore struct {
	config Config
	mu     sync.RWMutex
	db     *bbolt.DB
	bucket []byte
}

var _ persistence.StateStore = (*StateStore)(nil)

// NewStateStore creates a StateStore. The file is opened on Connect.
func NewStateStore(config Config) *StateStore {
	if config.Bucket == "" {
		config.Bucket = defaultBucket
	}
	if config.Timeout <= 0 {
		config.Timeout = defaultTimeout
	}
	return &StateStore{config: config, bucket: []byte(config.Bucket)}
}

// Connect opens (or creates) the database file and its bucket
func (s *StateStore) Connect(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return nil
	}

	if s.config.Path == "" {
		return errors.New("bolt: path is required")
	}

	if err := os.MkdirAll(filepath.Dir(s.config.Path), 0o700); err != nil {
		return fmt.Errorf("bolt: creating directory: %w", err)
	}

	db, err := bbolt.Open(s.config.Path, fileMode, &bbolt.Options{Timeout: s.config.Timeout, NoGrowSync: true})
	if err != nil {
		return fmt.Errorf("bolt: opening %s: %w", s.config.Path, err)
	}

	if err := db.Update(func(tx *bbolt.Tx) error {
		_, e := tx.CreateBucketIfNotExists(s.bucket)
		return e
	}); err != nil {
		_ = db.Close()
		return fmt.Errorf("bolt: initializing bucket: %w", err)
	}

	s.db = db
	return nil
}

// Disconnect closes the database file. The file itself is kept.
func (s *StateStore) Disconnect(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Save writes the blob
func (s *StateStore) Save(ctx context.Context, key string, value []byte) error {
	return s.update(ctx, func(bucket *bbolt.Bucket) error {
		return bucket.Put([]byte(key), value)
	})
}

// Load reads the blob. The returned slice is a copy, safe to use after the transaction.
func (s *StateStore) Load(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.view(ctx, func(bucket *bbolt.Bucket) error {
		data := bucket.Get([]byte(key))
		if data == nil {
			return persistence.ErrKeyNotFound
		}
		value = slices.Clone(data)
		return nil
	})
	return value, err
}

// Delete removes the key
func (s *StateStore) Delete(ctx context.Context, key string) error {
	return s.update(ctx, func(bucket *bbolt.Bucket) error {
		return bucket.Delete([]byte(key))
	})
}

// Exists reports whether the key is present
func (s *StateStore) Exists(ctx context.Context, key string) (bool, error) {
	var found bool
	err := s.view(ctx, func(bucket *bbolt.Bucket) error {
		found = bucket.Get([]byte(key)) != nil
		return nil
	})
	return found, err
}

func (s *StateStore) update(ctx context.Context, fn func(*bbolt.Bucket) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return persistence.ErrNotConnected
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(s.bucket)
		if bucket == nil {
			return fmt.Errorf("bolt: bucket %q missing", s.bucket)
		}
		return fn(bucket)
	})
}

func (s *StateStore) view(ctx context.Context, fn func(*bbolt.Bucket) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return persistence.ErrNotConnected
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(s.bucket)
		if bucket == nil {
			return fmt.Errorf("bolt: bucket %q missing", s.bucket)
		}
		return fn(bucket)
	})
}
