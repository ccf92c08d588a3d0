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
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/tochemey/acta/internal/codec"
	"github.com/tochemey/acta/log"
)

const (
	memoryStore = "memory"
	redisStore  = "redis"
	boltStore   = "bolt"
	natsStore   = "nats"
)

// Config is the process configuration of acta run
type Config struct {
	LogLevel        string        `toml:"log-level"`
	LogFile         string        `toml:"log-file"`
	Store           string        `toml:"store"`
	Compression     string        `toml:"compression"`
	ShutdownTimeout time.Duration `toml:"shutdown-timeout"`
	AskTimeout      time.Duration `toml:"ask-timeout"`
	Scheduler       bool          `toml:"scheduler"`

	Redis RedisConfig `toml:"redis"`
	Bolt  BoltConfig  `toml:"bolt"`
	Nats  NatsConfig  `toml:"nats"`
}

// RedisConfig configures the redis store
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// BoltConfig configures the bolt store
type BoltConfig struct {
	Path   string `toml:"path"`
	Bucket string `toml:"bucket"`
}

// NatsConfig configures the NATS key/value store
type NatsConfig struct {
	URL      string `toml:"url"`
	Bucket   string `toml:"bucket"`
	InMemory bool   `toml:"in-memory"`
}

// defaultConfig returns the configuration used when nothing is set
func defaultConfig() *Config {
	return &Config{
		LogLevel:        "info",
		Store:           memoryStore,
		Compression:     string(codec.NoCompression),
		ShutdownTimeout: 30 * time.Second,
		Scheduler:       true,
		Redis:           RedisConfig{Addr: "localhost:6379"},
		Bolt:            BoltConfig{Path: "acta.db"},
		Nats:            NatsConfig{URL: "nats://localhost:4222"},
	}
}

// applyEnv overrides the configuration with the ACTA_* environment variables
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if value, ok := lookup("ACTA_LOG_LEVEL"); ok {
		c.LogLevel = value
	}
	if value, ok := lookup("ACTA_STORE"); ok {
		c.Store = value
	}
	if value, ok := lookup("ACTA_REDIS_ADDR"); ok {
		c.Redis.Addr = value
	}
	if value, ok := lookup("ACTA_BOLT_PATH"); ok {
		c.Bolt.Path = value
	}
	if value, ok := lookup("ACTA_NATS_URL"); ok {
		c.Nats.URL = value
	}
	if value, ok := lookup("ACTA_COMPRESSION"); ok {
		c.Compression = value
	}
	if value, ok := lookup("ACTA_SHUTDOWN_TIMEOUT"); ok {
		timeout, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid ACTA_SHUTDOWN_TIMEOUT: %w", err)
		}
		c.ShutdownTimeout = timeout
	}
	if value, ok := lookup("ACTA_SCHEDULER"); ok {
		enabled, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid ACTA_SCHEDULER: %w", err)
		}
		c.Scheduler = enabled
	}
	return nil
}

// Validate checks the configuration
func (c *Config) Validate() error {
	if log.ParseLevel(c.LogLevel) == log.InvalidLevel {
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}

	switch c.Store {
	case memoryStore:
	case redisStore:
		if c.Redis.Addr == "" {
			return fmt.Errorf("redis store requires an address")
		}
	case boltStore:
		if c.Bolt.Path == "" {
			return fmt.Errorf("bolt store requires a path")
		}
	case natsStore:
		if c.Nats.URL == "" {
			return fmt.Errorf("nats store requires a url")
		}
	default:
		return fmt.Errorf("unknown store %q (expected memory|redis|bolt|nats)", c.Store)
	}

	if _, err := codec.ParseCompression(c.Compression); err != nil {
		return err
	}

	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown timeout must be positive")
	}
	if c.AskTimeout < 0 {
		return fmt.Errorf("ask timeout must not be negative")
	}
	return nil
}

// strictDecodeFile decodes a TOML file and rejects the keys it does not know
func strictDecodeFile(path string, cfg *Config) error {
	metadata, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return err
	}

	if undecoded := metadata.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		return fmt.Errorf("unknown configuration options: %s", strings.Join(keys, ", "))
	}
	return nil
}

// openLogger creates the process logger
func (c *Config) openLogger() (log.Logger, func() error, error) {
	level := log.ParseLevel(c.LogLevel)
	if c.LogFile == "" {
		return log.NewZap(level, os.Stdout), func() error { return nil }, nil
	}

	file, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return log.NewZap(level, file), file.Close, nil
}
