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

// Package nats provides a persistence.StateStore backed by a NATS JetStream key/value bucket.
package nats

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/flowchartsman/retry"
	natsgo "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/tochemey/acta/persistence"
)

const (
	defaultBucket     = "acta_state"
	defaultMaxRetries = 5
	defaultMaxDelay   = 2 * time.Second
)

// Config holds the NATS settings
type Config struct {
	// URL of the server, nats.DefaultURL when empty
	URL string
	// Bucket is the key/value bucket name
	Bucket string
	// InMemory keeps the bucket in memory instead of on disk
	InMemory bool
	// MaxRetries bounds the number of connection attempts
	MaxRetries int
	// MaxRetryDelay caps the delay between two connection attempts
	MaxRetryDelay time.Duration
}

// StateStore saves state blobs in a JetStream key/value bucket.
//
// Bucket keys only accept a restricted alphabet, so state keys are stored
// base64 URL encoded.
type StateStore struct {
	config Config
	mu     sync.RWMutex
	conn   *natsgo.Conn
	kv     jetstream.KeyValue
}

var _ persistence.StateStore = (*StateStore)(nil)

// NewStateStore creates a StateStore. Nothing is dialed until Connect.
func NewStateStore(config Config) *StateStore {
	if config.URL == "" {
		config.URL = natsgo.DefaultURL
	}
	if config.Bucket == "" {
		config.Bucket = defaultBucket
	}
	if config.MaxRetries <= 0 {
		config.MaxRetries = defaultMaxRetries
	}
	if config.MaxRetryDelay <= 0 {
		config.MaxRetryDelay = defaultMaxDelay
	}
	return &StateStore{config: config}
}

// Connect dials the server with an exponential backoff and creates the bucket when missing
func (s *StateStore) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn != nil {
		return nil
	}

	var conn *natsgo.Conn
	retrier := retry.NewRetrier(s.config.MaxRetries, 100*time.Millisecond, s.config.MaxRetryDelay)
	if err := retrier.RunContext(ctx, func(context.Context) error {
		var err error
		conn, err = natsgo.Connect(s.config.URL,
			natsgo.Name("acta"),
			natsgo.ReconnectWait(s.config.MaxRetryDelay),
			natsgo.MaxReconnects(-1))
		return err
	}); err != nil {
		return fmt.Errorf("nats: failed to connect to %s: %w", s.config.URL, err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return fmt.Errorf("nats: failed to create jetstream context: %w", err)
	}

	storage := jetstream.FileStorage
	if s.config.InMemory {
		storage = jetstream.MemoryStorage
	}

	kv, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:  s.config.Bucket,
		Storage: storage,
		History: 1,
	})
	if err != nil {
		conn.Close()
		return fmt.Errorf("nats: failed to create bucket %s: %w", s.config.Bucket, err)
	}

	s.conn = conn
	s.kv = kv
	return nil
}

// Disconnect closes the connection. The bucket content is kept.
func (s *StateStore) Disconnect(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return nil
	}
	s.conn.Close()
	s.conn = nil
	s.kv = nil
	return nil
}

// Save writes the blob
func (s *StateStore) Save(ctx context.Context, key string, value []byte) error {
	kv, err := s.bucket()
	if err != nil {
		return err
	}
	_, err = kv.Put(ctx, encodeKey(key), value)
	return err
}

// Load reads the blob
func (s *StateStore) Load(ctx context.Context, key string) ([]byte, error) {
	kv, err := s.bucket()
	if err != nil {
		return nil, err
	}

	entry, err := kv.Get(ctx, encodeKey(key))
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, persistence.ErrKeyNotFound
		}
		return nil, err
	}
	return entry.Value(), nil
}

// Delete removes the key
func (s *StateStore) Delete(ctx context.Context, key string) error {
	kv, err := s.bucket()
	if err != nil {
		return err
	}
	if err := kv.Delete(ctx, encodeKey(key)); err != nil && !errors.Is(err, jetstream.ErrKeyNotFound) {
		return err
	}
	return nil
}

// Exists reports whether the key is present
func (s *StateStore) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.Load(ctx, key)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, persistence.ErrKeyNotFound):
		return false, nil
	default:
		return false, err
	}
}

func (s *StateStore) bucket() (jetstream.KeyValue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.kv == nil {
		return nil, persistence.ErrNotConnected
	}
	return s.kv, nil
}

func encodeKey(key string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(key))
}
