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

// Package redis provides a persistence.StateStore backed by a Redis server.
package redis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/flowchartsman/retry"
	"github.com/redis/go-redis/v9"
	"go.uber.org/atomic"

	"github.com/tochemey/acta/persistence"
)

const (
	defaultAddr       = "127.0.0.1:6379"
	defaultMaxRetries = 5
	defaultMaxDelay   = 2 * time.Second
)

// Config holds the Redis connection settings
type Config struct {
	// Addr is the host:port of the server
	Addr string
	// Username and Password authenticate the connection when set
	Username string
	Password string
	// DB selects the logical database
	DB int
	// MaxRetries bounds the number of connection attempts
	MaxRetries int
	// MaxRetryDelay caps the delay between two connection attempts
	MaxRetryDelay time.Duration
}

func (c *Config) sanitize() {
	if c.Addr == "" {
		c.Addr = defaultAddr
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = defaultMaxRetries
	}
	if c.MaxRetryDelay <= 0 {
		c.MaxRetryDelay = defaultMaxDelay
	}
}

// StateStore saves state blobs as plain Redis strings
type StateStore struct {
	config    Config
	mu        sync.RWMutex
	client    *redis.Client
	connected *atomic.Bool
}

var _ persistence.StateStore = (*StateStore)(nil)

// NewStateStore creates a StateStore. Nothing is dialed until Connect.
func NewStateStore(config Config) *StateStore {
	config.sanitize()
	return &StateStore{
		config:    config,
		connected: atomic.NewBool(false),
	}
}

// Connect dials the server and pings it, retrying with an exponential backoff.
func (s *StateStore) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.connected.Load() {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     s.config.Addr,
		Username: s.config.Username,
		Password: s.config.Password,
		DB:       s.config.DB,
	})

	retrier := retry.NewRetrier(s.config.MaxRetries, 100*time.Millisecond, s.config.MaxRetryDelay)
	if err := retrier.RunContext(ctx, func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}); err != nil {
		_ = client.Close()
		return fmt.Errorf("redis: failed to connect to %s: %w", s.config.Addr, err)
	}

	s.client = client
	s.connected.Store(true)
	return nil
}

// Disconnect closes the client
func (s *StateStore) Disconnect(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.connected.Load() {
		return nil
	}

	s.connected.Store(false)
	err := s.client.Close()
	s.client = nil
	return err
}

// Save writes the blob without expiry
func (s *StateStore) Save(ctx context.Context, key string, value []byte) error {
	client, err := s.acquire()
	if err != nil {
		return err
	}
	return client.Set(ctx, key, value, 0).Err()
}

// Load reads the blob
func (s *StateStore) Load(ctx context.Context, key string) ([]byte, error) {
	client, err := s.acquire()
	if err != nil {
		return nil, err
	}

	value, err := client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, persistence.ErrKeyNotFound
		}
		return nil, err
	}
	return value, nil
}

// Delete removes the key
func (s *StateStore) Delete(ctx context.Context, key string) error {
	client, err := s.acquire()
	if err != nil {
		return err
	}
	return client.Del(ctx, key).Err()
}

// Exists reports whether the key is present
func (s *StateStore) Exists(ctx context.Context, key string) (bool, error) {
	client, err := s.acquire()
	if err != nil {
		return false, err
	}

	count, err := client.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *StateStore) acquire() (*redis.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.connected.Load() {
		return nil, persistence.ErrNotConnected
	}
	return s.client, nil
}
