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

package metric

import "go.opentelemetry.io/otel/metric"

// WorldMetric groups the instruments describing a World.
//
// Instruments:
//   - acta.messages.processed (Int64Counter)
//   - acta.messages.failed    (Int64Counter)
//   - acta.messages.replayed  (Int64Counter)
//   - acta.actors.count       (Int64ObservableGauge)
type WorldMetric struct {
	processedCount metric.Int64Counter
	failedCount    metric.Int64Counter
	replayedCount  metric.Int64Counter
	actorsCount    metric.Int64ObservableGauge
}

// NewWorldMetric creates the World instruments using the provided Meter.
// It fails on the first instrument that cannot be created.
func NewWorldMetric(meter metric.Meter) (*WorldMetric, error) {
	var instruments WorldMetric
	var err error

	if instruments.processedCount, err = meter.Int64Counter(
		"acta.messages.processed",
		metric.WithDescription("Total number of messages handled by actors"),
	); err != nil {
		return nil, err
	}

	if instruments.failedCount, err = meter.Int64Counter(
		"acta.messages.failed",
		metric.WithDescription("Total number of messages whose handler failed or panicked"),
	); err != nil {
		return nil, err
	}

	if instruments.replayedCount, err = meter.Int64Counter(
		"acta.messages.replayed",
		metric.WithDescription("Total number of messages redelivered after a state reload"),
	); err != nil {
		return nil, err
	}

	if instruments.actorsCount, err = meter.Int64ObservableGauge(
		"acta.actors.count",
		metric.WithDescription("Number of actors registered in the World"),
	); err != nil {
		return nil, err
	}

	return &instruments, nil
}

// ProcessedCount returns the processed messages counter
func (x *WorldMetric) ProcessedCount() metric.Int64Counter {
	return x.processedCount
}

// FailedCount returns the failed messages counter
func (x *WorldMetric) FailedCount() metric.Int64Counter {
	return x.failedCount
}

// ReplayedCount returns the replayed messages counter
func (x *WorldMetric) ReplayedCount() metric.Int64Counter {
	return x.replayedCount
}

// ActorsCount returns the registered actors gauge
func (x *WorldMetric) ActorsCount() metric.Int64ObservableGauge {
	return x.actorsCount
}
