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

package chain

import (
	"context"

	"go.uber.org/multierr"
)

// Runner is a single step of a Chain
type Runner func(ctx context.Context) error

// Chain runs a sequence of steps in insertion order and combines their errors.
// Steps are only executed when Run is called.
type Chain struct {
	failFast bool
	runners  []Runner
}

// Option configures a Chain at creation time.
type Option func(*Chain)

// WithFailFast stops the chain at the first failing step.
func WithFailFast() Option {
	return func(c *Chain) { c.failFast = true }
}

// New creates an empty Chain. By default every step runs and all errors are combined.
func New(opts ...Option) *Chain {
	chain := &Chain{runners: make([]Runner, 0, 4)}
	for _, opt := range opts {
		opt(chain)
	}
	return chain
}

// Add appends steps to the chain
func (c *Chain) Add(runners ...Runner) *Chain {
	for _, runner := range runners {
		if runner != nil {
			c.runners = append(c.runners, runner)
		}
	}
	return c
}

// AddIf appends the step when condition holds
func (c *Chain) AddIf(condition bool, runner Runner) *Chain {
	if condition {
		return c.Add(runner)
	}
	return c
}

// Run executes the steps in order.
func (c *Chain) Run(ctx context.Context) error {
	var err error
	for _, runner := range c.runners {
		if e := runner(ctx); e != nil {
			if c.failFast {
				return e
			}
			err = multierr.Append(err, e)
		}
	}
	return err
}
