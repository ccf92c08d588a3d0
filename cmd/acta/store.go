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

package main

import (
	"github.com/tochemey/acta/persistence"
	"github.com/tochemey/acta/persistence/plugins/bolt"
	"github.com/tochemey/acta/persistence/plugins/nats"
	"github.com/tochemey/acta/persistence/plugins/redis"
)

// newStateStore creates the store selected by the configuration
func newStateStore(cfg *Config) persistence.StateStore {
	switch cfg.Store {
	case redisStore:
		return redis.NewStateStore(redis.Config{
			Addr:     cfg.Redis.Addr,
			Username: cfg.Redis.Username,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	case boltStore:
		return bolt.NewStateStore(bolt.Config{
			Path:   cfg.Bolt.Path,
			Bucket: cfg.Bolt.Bucket,
		})
	case natsStore:
		return nats.NewStateStore(nats.Config{
			URL:      cfg.Nats.URL,
			Bucket:   cfg.Nats.Bucket,
			InMemory: cfg.Nats.InMemory,
		})
	default:
		return persistence.NewMemoryStore()
	}
}
