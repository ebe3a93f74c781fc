/*
Copyright 2017 The Nuclio Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package runner drives one scenario: each value a generator produces is fed to the
// estimator and appended to the sample window
package runner

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/nuclio/percentile-harness/pkg/estimator"
	"github.com/nuclio/percentile-harness/pkg/scenario"
	"github.com/nuclio/percentile-harness/pkg/window"

	"github.com/nuclio/errors"
	"github.com/nuclio/logger"
)

// Waiter blocks for duration or until ctx is done, whichever comes first
type Waiter func(ctx context.Context, duration time.Duration) error

type Configuration struct {
	Name      string
	Generator scenario.Generator
	Estimator estimator.Estimator
	Window    *window.Window

	// Unit is the wall clock length of one generated value for timed scenarios
	Unit time.Duration

	// Wait defaults to a timer that a cancelled context interrupts
	Wait Waiter
}

type Statistics struct {
	Runs             uint64
	Recorded         uint64
	Dropped          uint64
	InterruptedWaits uint64
}

type Runner struct {
	logger     logger.Logger
	name       string
	generator  scenario.Generator
	estimator  estimator.Estimator
	window     *window.Window
	unit       time.Duration
	wait       Waiter
	statistics Statistics

	// next iteration of a one-shot generator. only touched by Run, which is never
	// called concurrently
	cursor int
}

func NewRunner(parentLogger logger.Logger, configuration *Configuration) (*Runner, error) {
	if configuration.Generator == nil {
		return nil, errors.New("Generator is required")
	}

	if configuration.Estimator == nil {
		return nil, errors.New("Estimator is required")
	}

	if configuration.Window == nil {
		return nil, errors.New("Window is required")
	}

	unit := configuration.Unit
	if unit == 0 {
		unit = time.Millisecond
	}

	if unit < 0 {
		return nil, errors.Errorf("Unit must be positive, got %s", unit)
	}

	wait := configuration.Wait
	if wait == nil {
		wait = WaitContext
	}

	return &Runner{
		logger:    parentLogger.GetChild(configuration.Name),
		name:      configuration.Name,
		generator: configuration.Generator,
		estimator: configuration.Estimator,
		window:    configuration.Window,
		unit:      unit,
		wait:      wait,
	}, nil
}

// Run performs one scheduled invocation. Repeating generators produce IterationLimit()
// values; one-shot generators resume where the previous invocation stopped and do
// nothing once consumed. A done ctx ends the run between iterations, never mid-append
func (r *Runner) Run(ctx context.Context) {
	limit := r.generator.IterationLimit()
	oneShot := r.generator.Mode() == scenario.ModeOneShot

	first := 0
	if oneShot {
		if r.cursor >= limit {
			r.logger.DebugWith("Trace already consumed, nothing to do", "length", limit)
			return
		}

		first = r.cursor
	}

	atomic.AddUint64(&r.statistics.Runs, 1)

	r.logger.DebugWith("Running",
		"first", first,
		"limit", limit,
		"mode", r.generator.Mode().String())

	for iteration := first; iteration < limit; iteration++ {
		if ctx.Err() != nil {
			r.logger.WarnWith("Run ended early",
				"iteration", iteration,
				"limit", limit,
				"reason", ctx.Err().Error())
			return
		}

		value := r.generator.NextValue(iteration)
		r.record(ctx, iteration, value)

		if oneShot {
			r.cursor = iteration + 1
		}

		r.append(iteration, value)
	}
}

func (r *Runner) GetStatistics() Statistics {
	return Statistics{
		Runs:             atomic.LoadUint64(&r.statistics.Runs),
		Recorded:         atomic.LoadUint64(&r.statistics.Recorded),
		Dropped:          atomic.LoadUint64(&r.statistics.Dropped),
		InterruptedWaits: atomic.LoadUint64(&r.statistics.InterruptedWaits),
	}
}

func (r *Runner) GetName() string {
	return r.name
}

func (r *Runner) record(ctx context.Context, iteration int, value int64) {
	switch r.generator.Recording() {
	case scenario.RecordingDirect:
		r.estimator.Update(time.Duration(value))

	default:
		r.estimator.Time(func() {
			if err := r.wait(ctx, time.Duration(value)*r.unit); err != nil {

				// the estimator still records what was actually waited
				atomic.AddUint64(&r.statistics.InterruptedWaits, 1)
				r.logger.WarnWith("Wait interrupted",
					"iteration", iteration,
					"value", value,
					"err", err.Error())
			}
		})
	}
}

func (r *Runner) append(iteration int, value int64) {
	if err := r.window.Append(value); err != nil {
		atomic.AddUint64(&r.statistics.Dropped, 1)
		r.logger.WarnWith("Failed to append sample, dropping it",
			"iteration", iteration,
			"value", value,
			"capacity", r.window.Capacity(),
			"err", err.Error())
		return
	}

	atomic.AddUint64(&r.statistics.Recorded, 1)
}

// WaitContext sleeps for duration unless ctx is done first
func WaitContext(ctx context.Context, duration time.Duration) error {
	if duration <= 0 {
		return nil
	}

	timer := time.NewTimer(duration)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
