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

// Package harnessconfig reads the harness configuration: what to run, how long, where to
// report it
package harnessconfig

import (
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/nuclio/percentile-harness/pkg/estimator"
	"github.com/nuclio/percentile-harness/pkg/metricsink"
	"github.com/nuclio/percentile-harness/pkg/percentile"
	"github.com/nuclio/percentile-harness/pkg/scheduler"
	"github.com/nuclio/percentile-harness/pkg/window"

	"github.com/nuclio/errors"
	"github.com/samber/lo"
	"sigs.k8s.io/yaml"
)

const (
	DefaultNamespace      = "test.metricsedgecases"
	DefaultLifetime       = "3h"
	DefaultReporterPeriod = "1m"
	DefaultUnit           = "1ms"
	DefaultSinkKind       = "logger"
)

type Reader struct{}

func NewReader() (*Reader, error) {
	return &Reader{}, nil
}

// Read parses YAML from reader and fills whatever it leaves out with defaults
func (r *Reader) Read(reader io.Reader, config *Config) error {
	configBytes, err := io.ReadAll(reader)
	if err != nil {
		return errors.Wrap(err, "Failed to read harness configuration")
	}

	if err := yaml.UnmarshalStrict(configBytes, config); err != nil {
		return errors.Wrap(err, "Failed to unmarshal harness configuration")
	}

	config.applyDefaults(r.GetDefaultConfiguration())

	return nil
}

// ReadFileOrDefault reads the configuration file, or returns the default configuration
// when there's no file at the path
func (r *Reader) ReadFileOrDefault(configurationPath string) (*Config, error) {
	var config Config

	if configurationPath == "" {
		return r.GetDefaultConfiguration(), nil
	}

	configurationFile, err := os.Open(configurationPath)
	if err != nil {
		if os.IsNotExist(err) {
			return r.GetDefaultConfiguration(), nil
		}

		return nil, errors.Wrapf(err, "Failed to open configuration file %s", configurationPath)
	}

	// close after
	defer configurationFile.Close() // nolint: errcheck

	if err := r.Read(configurationFile, &config); err != nil {
		return nil, errors.Wrap(err, "Failed to read configuration file")
	}

	return &config, nil
}

// GetDefaultConfiguration returns the three classic edge cases: uniform latencies, a
// bimodal run with a late spike of slow calls and a heavy tailed precomputed trace
func (r *Reader) GetDefaultConfiguration() *Config {
	return &Config{
		Namespace:      DefaultNamespace,
		Lifetime:       DefaultLifetime,
		BufferCapacity: window.DefaultCapacity,
		Percentiles:    append([]float64{}, percentile.Default...),
		Logger: Logger{
			Level:  LoggerLevelInfo,
			Format: LoggerFormatConsole,
		},
		Estimator: Estimator{
			Kind: estimator.DefaultKind,
		},
		Reporter: Reporter{
			Period: DefaultReporterPeriod,
		},
		Sinks: []metricsink.Configuration{
			{Kind: DefaultSinkKind},
		},
		Scenarios: []Scenario{
			{
				Name:   "scenario1",
				Kind:   "uniform",
				Period: "20m",
				Scale:  1000000,
				Unit:   DefaultUnit,
				Attributes: map[string]interface{}{
					"bound": 1000,
					"limit": 500,
				},
			},
			{
				Name:   "scenario2",
				Kind:   "bimodal",
				Period: "30m",
				Scale:  1000000,
				Unit:   DefaultUnit,
				Attributes: map[string]interface{}{
					"threshold": 9960,
					"low":       30,
					"high":      15000,
					"limit":     window.DefaultCapacity,
				},
			},
			{
				Name:   "scenario3",
				Kind:   "weibullTrace",
				Period: "1m",
				Scale:  1,
				Unit:   DefaultUnit,
				Attributes: map[string]interface{}{
					"length": window.DefaultCapacity,
					"shape":  0.5,
					"lambda": 1000000,
				},
			},
		},
	}
}

// Validate checks the configuration and parses its durations
func (c *Config) Validate() error {
	var err error

	if c.Namespace == "" {
		return errors.New("Namespace is required")
	}

	if c.parsedLifetime, err = parsePositiveDuration(c.Lifetime); err != nil {
		return errors.Wrap(err, "Invalid lifetime")
	}

	if c.BufferCapacity <= 0 {
		return errors.Errorf("Buffer capacity must be positive, got %d", c.BufferCapacity)
	}

	if err := percentile.Validate(c.Percentiles); err != nil {
		return errors.Wrap(err, "Invalid percentiles")
	}

	switch c.Logger.Format {
	case LoggerFormatConsole, LoggerFormatJSON:
	default:
		return errors.Errorf("Unknown logger format: %s", c.Logger.Format)
	}

	switch c.Logger.Level {
	case LoggerLevelDebug, LoggerLevelInfo, LoggerLevelWarn, LoggerLevelError:
	default:
		return errors.Errorf("Unknown logger level: %s", c.Logger.Level)
	}

	if c.Reporter.parsedPeriod, err = parsePositiveDuration(c.Reporter.Period); err != nil {
		return errors.Wrap(err, "Invalid reporter period")
	}

	if c.Reporter.Schedule != "" {
		if _, err := scheduler.ParseSchedule(c.Reporter.Schedule); err != nil {
			return errors.Wrap(err, "Invalid reporter schedule")
		}
	}

	for _, sink := range c.Sinks {
		if sink.Kind == "" {
			return errors.New("Sink kind is required")
		}
	}

	if len(c.Scenarios) == 0 {
		return errors.New("At least one scenario is required")
	}

	scenarioNames := lo.Map(c.Scenarios, func(scenario Scenario, _ int) string {
		return scenario.Name
	})

	if duplicates := lo.FindDuplicates(scenarioNames); len(duplicates) != 0 {
		return errors.Errorf("Scenario names must be unique, found %v more than once", duplicates)
	}

	for scenarioIndex := range c.Scenarios {
		if err := c.Scenarios[scenarioIndex].validate(); err != nil {
			return errors.Wrapf(err, "Invalid scenario %d", scenarioIndex+1)
		}
	}

	return nil
}

// SelectScenarios returns the scenarios a selector picks: those whose 1-based ordinal
// contains it, or the one named exactly like it. An empty selector picks all
func (c *Config) SelectScenarios(selector string) ([]Scenario, error) {
	selected := lo.Filter(c.Scenarios, func(scenario Scenario, scenarioIndex int) bool {
		return selector == "" ||
			strings.Contains(strconv.Itoa(scenarioIndex+1), selector) ||
			scenario.Name == selector
	})

	if len(selected) == 0 {
		return nil, errors.Errorf("No scenario matches %q", selector)
	}

	return selected, nil
}

func (s *Scenario) validate() error {
	var err error

	if s.Name == "" {
		return errors.New("Name is required")
	}

	if s.Kind == "" {
		return errors.Errorf("Kind of %s is required", s.Name)
	}

	if s.Scale <= 0 {
		return errors.Errorf("Scale of %s must be positive, got %d", s.Name, s.Scale)
	}

	if s.parsedPeriod, err = parsePositiveDuration(s.Period); err != nil {
		return errors.Wrapf(err, "Invalid period of %s", s.Name)
	}

	if s.parsedUnit, err = parsePositiveDuration(s.Unit); err != nil {
		return errors.Wrapf(err, "Invalid unit of %s", s.Name)
	}

	if s.Schedule != "" {
		if _, err := scheduler.ParseSchedule(s.Schedule); err != nil {
			return errors.Wrapf(err, "Invalid schedule of %s", s.Name)
		}
	}

	return nil
}

func (c *Config) applyDefaults(defaults *Config) {
	c.Namespace = lo.Ternary(c.Namespace == "", defaults.Namespace, c.Namespace)
	c.Lifetime = lo.Ternary(c.Lifetime == "", defaults.Lifetime, c.Lifetime)
	c.BufferCapacity = lo.Ternary(c.BufferCapacity == 0, defaults.BufferCapacity, c.BufferCapacity)
	c.Percentiles = lo.Ternary(len(c.Percentiles) == 0, defaults.Percentiles, c.Percentiles)
	c.Logger.Level = lo.Ternary(c.Logger.Level == "", defaults.Logger.Level, c.Logger.Level)
	c.Logger.Format = lo.Ternary(c.Logger.Format == "", defaults.Logger.Format, c.Logger.Format)
	c.Estimator.Kind = lo.Ternary(c.Estimator.Kind == "", defaults.Estimator.Kind, c.Estimator.Kind)
	c.Reporter.Period = lo.Ternary(c.Reporter.Period == "", defaults.Reporter.Period, c.Reporter.Period)
	c.Sinks = lo.Ternary(len(c.Sinks) == 0, defaults.Sinks, c.Sinks)
	c.Scenarios = lo.Ternary(len(c.Scenarios) == 0, defaults.Scenarios, c.Scenarios)

	for scenarioIndex := range c.Scenarios {
		scenario := &c.Scenarios[scenarioIndex]

		scenario.Scale = lo.Ternary(scenario.Scale == 0, 1, scenario.Scale)
		scenario.Unit = lo.Ternary(scenario.Unit == "", DefaultUnit, scenario.Unit)
	}
}

func parsePositiveDuration(value string) (time.Duration, error) {
	duration, err := time.ParseDuration(value)
	if err != nil {
		return 0, errors.Wrapf(err, "Failed to parse duration %q", value)
	}

	if duration <= 0 {
		return 0, errors.Errorf("Duration must be positive, got %s", duration)
	}

	return duration, nil
}
