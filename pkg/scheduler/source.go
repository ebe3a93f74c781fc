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

package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nuclio/percentile-harness/pkg/errgroup"

	"github.com/nuclio/errors"
	"github.com/nuclio/logger"
	"github.com/robfig/cron/v3"
)

// ErrShutdownTimeout is returned by Stop when the in-flight tick outlives the grace period
var ErrShutdownTimeout = errors.New("Timed out waiting for in-flight tick")

// Task is one tick of work. ctx is cancelled when a stop times out
type Task func(ctx context.Context)

type Statistics struct {
	Fired     uint64
	Skipped   uint64
	Completed uint64
}

type SourceConfiguration struct {
	Name     string
	Schedule cron.Schedule

	// Anchor is the instant the schedule counts from. A schedule whose first firing is
	// the anchor itself fires as soon as the source starts. Defaults to now
	Anchor time.Time

	// Grace bounds how long Stop waits for the in-flight tick
	Grace time.Duration
	Task  Task
}

// Source fires a task on a schedule. A dispatcher hands firings to a single worker over
// a one slot channel; a firing while the worker is busy is skipped, so ticks never queue
// and never overlap
type Source struct {
	logger         logger.Logger
	configuration  SourceConfiguration
	statistics     Statistics
	handoff        chan time.Time
	busy           atomic.Bool
	stopChannel    chan struct{}
	stoppedChannel chan struct{}
	stopOnce       sync.Once
	started        atomic.Bool
	cancelTask     context.CancelFunc
}

func NewSource(parentLogger logger.Logger, configuration *SourceConfiguration) (*Source, error) {
	if configuration.Name == "" {
		return nil, errors.New("Source name is required")
	}

	if configuration.Schedule == nil {
		return nil, errors.New("Schedule is required")
	}

	if configuration.Task == nil {
		return nil, errors.New("Task is required")
	}

	if configuration.Grace < 0 {
		return nil, errors.Errorf("Grace period must not be negative, got %s", configuration.Grace)
	}

	newSource := &Source{
		logger:         parentLogger.GetChild(configuration.Name),
		configuration:  *configuration,
		handoff:        make(chan time.Time, 1),
		stopChannel:    make(chan struct{}),
		stoppedChannel: make(chan struct{}),
	}

	if newSource.configuration.Anchor.IsZero() {
		newSource.configuration.Anchor = time.Now()
	}

	return newSource, nil
}

// Start launches the dispatcher and the worker. It does not block
func (s *Source) Start(ctx context.Context) error {
	if !s.started.CompareAndSwap(false, true) {
		return errors.Errorf("Source %s already started", s.configuration.Name)
	}

	errGroup, errGroupCtx := errgroup.WithContext(ctx, s.logger)

	var taskCtx context.Context
	taskCtx, s.cancelTask = context.WithCancel(errGroupCtx)

	errGroup.Go("dispatch", func() error {
		s.dispatch(taskCtx)
		return nil
	})

	errGroup.Go("work", func() error {
		s.work(taskCtx)
		return nil
	})

	go func() {
		if err := errGroup.Wait(); err != nil {
			s.logger.WarnWith("Source terminated with error", "err", errors.Cause(err).Error())
		}

		close(s.stoppedChannel)
	}()

	s.logger.DebugWith("Started",
		"anchor", s.configuration.Anchor,
		"grace", s.configuration.Grace)

	return nil
}

// Stop prevents new firings and waits up to the grace period for the in-flight tick.
// On timeout the tick's context is cancelled and ErrShutdownTimeout is returned
func (s *Source) Stop() error {
	if !s.started.Load() {
		return nil
	}

	s.stopOnce.Do(func() {
		close(s.stopChannel)
	})

	defer s.cancelTask()

	select {
	case <-s.stoppedChannel:
		return nil
	case <-time.After(s.configuration.Grace):
	}

	s.logger.WarnWith("In-flight tick outlived the grace period, cancelling it",
		"grace", s.configuration.Grace)

	s.cancelTask()

	// give a cancelled tick the chance to unwind before moving on
	select {
	case <-s.stoppedChannel:
	case <-time.After(s.configuration.Grace):
	}

	return ErrShutdownTimeout
}

// Done is closed once both the dispatcher and the worker have exited, which also
// happens when a schedule runs out of firings
func (s *Source) Done() <-chan struct{} {
	return s.stoppedChannel
}

func (s *Source) GetName() string {
	return s.configuration.Name
}

func (s *Source) GetStatistics() Statistics {
	return Statistics{
		Fired:     atomic.LoadUint64(&s.statistics.Fired),
		Skipped:   atomic.LoadUint64(&s.statistics.Skipped),
		Completed: atomic.LoadUint64(&s.statistics.Completed),
	}
}

func (s *Source) dispatch(ctx context.Context) {

	// closing the handoff lets the worker exit after its current tick
	defer close(s.handoff)

	reference := s.configuration.Anchor.Add(-time.Nanosecond)

	for {
		next := s.configuration.Schedule.Next(reference)
		if next.IsZero() {
			s.logger.DebugWith("Schedule exhausted")
			return
		}

		timer := time.NewTimer(time.Until(next))

		select {
		case <-timer.C:
			s.fire(next)
		case <-s.stopChannel:
			timer.Stop()
			return
		case <-ctx.Done():
			timer.Stop()
			return
		}

		// firings missed while we were late are not replayed
		reference = next
		if now := time.Now(); now.After(reference) {
			reference = now
		}
	}
}

func (s *Source) fire(tick time.Time) {
	atomic.AddUint64(&s.statistics.Fired, 1)

	// busy from handoff until the task returns, so the slot is always empty here
	if !s.busy.CompareAndSwap(false, true) {
		skipped := atomic.AddUint64(&s.statistics.Skipped, 1)
		s.logger.DebugWith("Worker busy, skipping tick", "tick", tick, "skipped", skipped)
		return
	}

	s.handoff <- tick
}

func (s *Source) work(ctx context.Context) {
	for tick := range s.handoff {
		startTime := time.Now()

		s.configuration.Task(ctx)

		atomic.AddUint64(&s.statistics.Completed, 1)
		s.busy.Store(false)

		s.logger.DebugWith("Tick completed",
			"tick", tick,
			"duration", time.Since(startTime).String())
	}
}
