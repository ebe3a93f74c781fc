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

// Package reporter compares the exact percentiles of each drained window with the
// estimator's and hands the result to the metric sinks
package reporter

import (
	"context"
	"sync"
	"time"

	"github.com/nuclio/percentile-harness/pkg/estimator"
	"github.com/nuclio/percentile-harness/pkg/metricsink"
	"github.com/nuclio/percentile-harness/pkg/percentile"
	"github.com/nuclio/percentile-harness/pkg/report"
	"github.com/nuclio/percentile-harness/pkg/window"

	"github.com/nuclio/errors"
	"github.com/nuclio/logger"
)

type Configuration struct {
	Namespace   string
	Percentiles []float64
}

type Reporter struct {
	logger      logger.Logger
	namespace   string
	percentiles []float64
	window      *window.Window
	provider    estimator.Provider
	metricSinks []metricsink.MetricSink
	now         func() time.Time

	accuracyLock sync.Mutex
	accuracy     map[string]*Accuracy
}

func NewReporter(parentLogger logger.Logger,
	configuration *Configuration,
	sampleWindow *window.Window,
	provider estimator.Provider,
	metricSinks []metricsink.MetricSink) (*Reporter, error) {
	if configuration.Namespace == "" {
		return nil, errors.New("Namespace is required")
	}

	percentiles := configuration.Percentiles
	if len(percentiles) == 0 {
		percentiles = percentile.Default
	}

	if err := percentile.Validate(percentiles); err != nil {
		return nil, errors.Wrap(err, "Invalid percentiles")
	}

	if sampleWindow == nil || provider == nil {
		return nil, errors.New("Window and estimator provider are required")
	}

	return &Reporter{
		logger:      parentLogger.GetChild("reporter"),
		namespace:   configuration.Namespace,
		percentiles: percentiles,
		window:      sampleWindow,
		provider:    provider,
		metricSinks: metricSinks,
		now:         time.Now,
		accuracy:    map[string]*Accuracy{},
	}, nil
}

// Report is the reporter's scheduled tick: drain, compare, emit
func (r *Reporter) Report(ctx context.Context) {
	snapshot := r.window.DrainAndReset()

	if snapshot.Name == "" {
		r.logger.DebugWith("No active scenario, skipping report", "drained", len(snapshot.Values))
		return
	}

	scenarioReport := r.BuildReport(snapshot, r.now())

	r.recordAccuracy(scenarioReport)

	for _, metricSink := range r.metricSinks {
		if err := metricSink.Emit(scenarioReport); err != nil {
			r.logger.WarnWith("Failed to emit report",
				"sink", metricSink.GetName(),
				"scenario", scenarioReport.Scenario,
				"err", errors.Cause(err).Error())
		}
	}
}

// BuildReport computes the exact percentiles of the snapshot and reads the scenario's
// estimator. Estimator nanoseconds are divided by the scenario scale
func (r *Reporter) BuildReport(snapshot *window.Snapshot, now time.Time) *report.Report {
	scale := int64(snapshot.Scale)
	if scale <= 0 {
		scale = 1
	}

	scenarioEstimator := r.provider.Get(snapshot.Name)

	estimatorPercentiles := make([]int64, len(r.percentiles))
	for percentileIndex, p := range r.percentiles {
		estimatorPercentiles[percentileIndex] = int64(scenarioEstimator.Percentile(p)) / scale
	}

	return &report.Report{
		Scenario:               snapshot.Name,
		Timestamp:              now.Truncate(time.Second),
		Percentiles:            r.percentiles,
		RealCount:              int64(len(snapshot.Values)),
		RealPercentiles:        percentile.OfValues(snapshot.Values, r.percentiles),
		EstimatorCount:         scenarioEstimator.Count(),
		EstimatorOneMinuteRate: int64(scenarioEstimator.Rate1() * 60),
		EstimatorPercentiles:   estimatorPercentiles,
	}
}

// GetAccuracy returns what the reporter learned about a scenario's estimator so far
func (r *Reporter) GetAccuracy(scenario string) *Accuracy {
	r.accuracyLock.Lock()
	defer r.accuracyLock.Unlock()

	return r.accuracy[scenario]
}

func (r *Reporter) GetPercentiles() []float64 {
	return r.percentiles
}

func (r *Reporter) recordAccuracy(scenarioReport *report.Report) {
	r.accuracyLock.Lock()
	defer r.accuracyLock.Unlock()

	scenarioAccuracy, found := r.accuracy[scenarioReport.Scenario]
	if !found {
		scenarioAccuracy = NewAccuracy(scenarioReport.Scenario, r.percentiles)
		r.accuracy[scenarioReport.Scenario] = scenarioAccuracy
	}

	scenarioAccuracy.Add(scenarioReport)
}
