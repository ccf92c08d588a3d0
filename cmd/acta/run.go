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
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/multierr"

	"github.com/tochemey/acta/actor"
	"github.com/tochemey/acta/internal/codec"
	"github.com/tochemey/acta/scheduler"
)

// options defines flags for the `run` command.
type options struct {
	config     *Config
	configPath string
}

func newOptions() *options {
	return &options{config: defaultConfig()}
}

// addFlags binds the run flags to the command
func (o *options) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.configPath, "config", "", "path of the TOML configuration file")
	cmd.Flags().StringVar(&o.config.LogLevel, "log-level", o.config.LogLevel, "log level (debug|info|warn|error)")
	cmd.Flags().StringVar(&o.config.LogFile, "log-file", o.config.LogFile, "log file path, stdout when empty")
	cmd.Flags().StringVar(&o.config.Store, "store", o.config.Store, "state store (memory|redis|bolt|nats)")
	cmd.Flags().StringVar(&o.config.Compression, "compression", o.config.Compression, "state compression (none|zstd|brotli)")
	cmd.Flags().DurationVar(&o.config.ShutdownTimeout, "shutdown-timeout", o.config.ShutdownTimeout, "maximum time given to stop every actor")
	cmd.Flags().DurationVar(&o.config.AskTimeout, "ask-timeout", o.config.AskTimeout, "default ask timeout, none when zero")
	cmd.Flags().BoolVar(&o.config.Scheduler, "scheduler", o.config.Scheduler, "start the task scheduler actor")
	cmd.Flags().StringVar(&o.config.Redis.Addr, "redis-addr", o.config.Redis.Addr, "redis address")
	cmd.Flags().StringVar(&o.config.Bolt.Path, "bolt-path", o.config.Bolt.Path, "bolt database file")
	cmd.Flags().StringVar(&o.config.Nats.URL, "nats-url", o.config.Nats.URL, "NATS server url")
}

// complete merges defaults, environment, configuration file and the flags
// explicitly set, in that order
func (o *options) complete(cmd *cobra.Command) error {
	cfg := defaultConfig()
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return err
	}

	if len(o.configPath) > 0 {
		if err := strictDecodeFile(o.configPath, cfg); err != nil {
			return err
		}
	}

	var unknown error
	cmd.Flags().Visit(func(flag *pflag.Flag) {
		switch flag.Name {
		case "config":
		case "log-level":
			cfg.LogLevel = o.config.LogLevel
		case "log-file":
			cfg.LogFile = o.config.LogFile
		case "store":
			cfg.Store = o.config.Store
		case "compression":
			cfg.Compression = o.config.Compression
		case "shutdown-timeout":
			cfg.ShutdownTimeout = o.config.ShutdownTimeout
		case "ask-timeout":
			cfg.AskTimeout = o.config.AskTimeout
		case "scheduler":
			cfg.Scheduler = o.config.Scheduler
		case "redis-addr":
			cfg.Redis.Addr = o.config.Redis.Addr
		case "bolt-path":
			cfg.Bolt.Path = o.config.Bolt.Path
		case "nats-url":
			cfg.Nats.URL = o.config.Nats.URL
		default:
			unknown = multierr.Append(unknown, errors.New("unknown flag "+flag.Name))
		}
	})
	if unknown != nil {
		return unknown
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	o.config = cfg
	return nil
}

// run starts the world and blocks until ctx is done, then stops every actor
func (o *options) run(ctx context.Context) (err error) {
	cfg := o.config
	logger, closeLog, err := cfg.openLogger()
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, logger.Flush(), closeLog())
	}()

	compression, _ := codec.ParseCompression(cfg.Compression)
	world, err := actor.NewWorld(ctx,
		actor.WithLogger(logger),
		actor.WithPersistence(newStateStore(cfg)),
		actor.WithCompression(compression),
		actor.WithAskTimeout(cfg.AskTimeout),
		actor.WithShutdownTimeout(cfg.ShutdownTimeout))
	if err != nil {
		return err
	}

	// the scheduler reloads the tasks left pending by a previous run
	if cfg.Scheduler {
		if _, err := world.Revive(ctx, scheduler.DefaultName, scheduler.New(scheduler.WithLogger(logger))); err != nil {
			return multierr.Append(err, world.StopAll(context.WithoutCancel(ctx)))
		}
	}

	logger.Infof("acta running with the %s store, actors: %v", cfg.Store, world.Actors())
	<-ctx.Done()
	logger.Info("acta stopping")

	stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.ShutdownTimeout)
	defer cancel()
	if cfg.Scheduler {
		if err := world.Suspend(stopCtx, scheduler.DefaultName); err != nil {
			logger.Warnf("failed to save the pending tasks: %v", err)
		}
	}
	if err := world.StopAll(stopCtx); err != nil {
		logger.Errorf("failed to stop every actor: %v", err)
		return err
	}

	logger.Info("acta stopped")
	return nil
}

// newCmdRun creates the `run` command.
func newCmdRun() *cobra.Command {
	o := newOptions()

	command := &cobra.Command{
		Use:   "run",
		Short: "Start an actor world and run it until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := o.complete(cmd); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return o.run(ctx)
		},
	}

	o.addFlags(command)
	return command
}
