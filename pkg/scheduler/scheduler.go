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

// Package scheduler runs tasks on independent schedules, each source with a single
// worker that skips firings while busy
package scheduler

import (
	"context"
	"sort"
	"sync"

	"github.com/nuclio/errors"
	"github.com/nuclio/logger"
)

// Scheduler tracks the running sources by name
type Scheduler struct {
	logger  logger.Logger
	lock    sync.Mutex
	sources map[string]*Source
}

func NewScheduler(parentLogger logger.Logger) *Scheduler {
	return &Scheduler{
		logger:  parentLogger.GetChild("scheduler"),
		sources: map[string]*Source{},
	}
}

// Start creates and starts a source
func (s *Scheduler) Start(ctx context.Context, configuration *SourceConfiguration) (*Source, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, found := s.sources[configuration.Name]; found {
		return nil, errors.Errorf("Source %s is already scheduled", configuration.Name)
	}

	source, err := NewSource(s.logger, configuration)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to create source")
	}

	if err := source.Start(ctx); err != nil {
		return nil, errors.Wrap(err, "Failed to start source")
	}

	s.sources[configuration.Name] = source

	return source, nil
}

// Stop stops a source and forgets it. ErrShutdownTimeout is returned as is so callers
// can tell it apart
func (s *Scheduler) Stop(name string) error {
	s.lock.Lock()
	source, found := s.sources[name]
	delete(s.sources, name)
	s.lock.Unlock()

	if !found {
		return errors.Errorf("Source %s is not scheduled", name)
	}

	err := source.Stop()

	statistics := source.GetStatistics()
	s.logger.InfoWith("Source stopped",
		"name", name,
		"fired", statistics.Fired,
		"skipped", statistics.Skipped,
		"completed", statistics.Completed)

	return err
}

// StopAll stops every source, returning the first failure
func (s *Scheduler) StopAll() error {
	var firstErr error

	for _, name := range s.GetSourceNames() {
		if err := s.Stop(name); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}

func (s *Scheduler) GetSourceNames() []string {
	s.lock.Lock()
	defer s.lock.Unlock()

	var names []string
	for name := range s.sources {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}
