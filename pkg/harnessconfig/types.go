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

package harnessconfig

import (
	"time"

	"github.com/nuclio/percentile-harness/pkg/metricsink"
)

const (
	LoggerFormatConsole = "console"
	LoggerFormatJSON    = "json"

	LoggerLevelDebug = "debug"
	LoggerLevelInfo  = "info"
	LoggerLevelWarn  = "warn"
	LoggerLevelError = "error"
)

type Logger struct {
	Level  string `json:"level,omitempty"`
	Format string `json:"format,omitempty"`
}

type Estimator struct {
	Kind       string                 `json:"kind,omitempty"`
	Attributes map[string]interface{} `json:"attributes,omitempty"`
}

type Reporter struct {

	// Period is a Go duration. The first report happens one period after start
	Period string `json:"period,omitempty"`

	// Schedule is an optional cron spec that replaces the fixed rate
	Schedule string `json:"schedule,omitempty"`

	parsedPeriod time.Duration
}

func (r *Reporter) GetPeriod() time.Duration {
	return r.parsedPeriod
}

type Scenario struct {
	Name string `json:"name"`
	Kind string `json:"kind"`

	// Period is the fixed rate at which the scenario runs, and how long a stopping
	// scenario may take to finish its in-flight run
	Period string `json:"period,omitempty"`

	// Schedule is an optional cron spec that replaces the fixed rate
	Schedule string `json:"schedule,omitempty"`

	// Scale divides the estimator's nanoseconds into the unit values are reported in
	Scale int `json:"scale,omitempty"`

	// Unit is the wall clock length of one generated value of a timed scenario
	Unit string `json:"unit,omitempty"`

	Attributes map[string]interface{} `json:"attributes,omitempty"`

	parsedPeriod time.Duration
	parsedUnit   time.Duration
}

func (s *Scenario) GetPeriod() time.Duration {
	return s.parsedPeriod
}

func (s *Scenario) GetUnit() time.Duration {
	return s.parsedUnit
}

type Config struct {
	Namespace      string                     `json:"namespace,omitempty"`
	Lifetime       string                     `json:"lifetime,omitempty"`
	BufferCapacity int                        `json:"bufferCapacity,omitempty"`
	Percentiles    []float64                  `json:"percentiles,omitempty"`
	Logger         Logger                     `json:"logger,omitempty"`
	Estimator      Estimator                  `json:"estimator,omitempty"`
	Reporter       Reporter                   `json:"reporter,omitempty"`
	Sinks          []metricsink.Configuration `json:"sinks,omitempty"`
	Scenarios      []Scenario                 `json:"scenarios,omitempty"`

	parsedLifetime time.Duration
}

// GetLifetime returns how long each scenario runs. Valid after Validate
func (c *Config) GetLifetime() time.Duration {
	return c.parsedLifetime
}
