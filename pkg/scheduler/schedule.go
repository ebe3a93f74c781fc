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
	"time"

	"github.com/nuclio/errors"
	"github.com/robfig/cron/v3"
)

// FixedRate fires at first, first+period, first+2*period, ... on its own logical clock.
// Slots that pass while nobody asks are skipped, never replayed
type FixedRate struct {
	first  time.Time
	period time.Duration
}

func NewFixedRate(start time.Time, initialDelay time.Duration, period time.Duration) (*FixedRate, error) {
	if period <= 0 {
		return nil, errors.Errorf("Period must be positive, got %s", period)
	}

	if initialDelay < 0 {
		return nil, errors.Errorf("Initial delay must not be negative, got %s", initialDelay)
	}

	return &FixedRate{
		first:  start.Add(initialDelay),
		period: period,
	}, nil
}

// Next returns the first slot strictly after t
func (fr *FixedRate) Next(t time.Time) time.Time {
	if t.Before(fr.first) {
		return fr.first
	}

	elapsedSlots := t.Sub(fr.first) / fr.period

	return fr.first.Add((elapsedSlots + 1) * fr.period)
}

// Once fires a single time and is then exhausted
type Once struct {
	at time.Time
}

func NewOnce(at time.Time) *Once {
	return &Once{at: at}
}

// Next returns the zero time once at has passed, which cron treats as "never"
func (o *Once) Next(t time.Time) time.Time {
	if t.Before(o.at) {
		return o.at
	}

	return time.Time{}
}

// ParseSchedule parses a standard cron spec, including descriptors such as "@every 1m"
// and "@hourly"
func ParseSchedule(spec string) (cron.Schedule, error) {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to parse schedule %q", spec)
	}

	return schedule, nil
}
