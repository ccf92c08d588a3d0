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
	"context"

	"go.opentelemetry.io/otel/metric"

	imetric "github.com/tochemey/acta/internal/metric"
)

// worldMetric records the World instruments. A nil worldMetric records nothing.
type worldMetric struct {
	instruments  *imetric.WorldMetric
	registration metric.Registration
}

// newWorldMetric creates the instruments on the given provider and observes
// the number of registered actors
func newWorldMetric(provider metric.MeterProvider, world *World) (*worldMetric, error) {
	meter := imetric.New(imetric.WithMeterProvider(provider)).Meter()
	instruments, err := imetric.NewWorldMetric(meter)
	if err != nil {
		return nil, err
	}

	registration, err := meter.RegisterCallback(func(_ context.Context, observer metric.Observer) error {
		observer.ObserveInt64(instruments.ActorsCount(), int64(world.Len()))
		return nil
	}, instruments.ActorsCount())
	if err != nil {
		return nil, err
	}

	return &worldMetric{
		instruments:  instruments,
		registration: registration,
	}, nil
}

func (x *worldMetric) processed(ctx context.Context, opts ...metric.AddOption) {
	if x != nil {
		x.instruments.ProcessedCount().Add(ctx, 1, opts...)
	}
}

func (x *worldMetric) failed(ctx context.Context, opts ...metric.AddOption) {
	if x != nil {
		x.instruments.FailedCount().Add(ctx, 1, opts...)
	}
}

func (x *worldMetric) replayed(ctx context.Context, opts ...metric.AddOption) {
	if x != nil {
		x.instruments.ReplayedCount().Add(ctx, 1, opts...)
	}
}

func (x *worldMetric) unregister() error {
	if x == nil || x.registration == nil {
		return nil
	}
	return x.registration.Unregister()
}
