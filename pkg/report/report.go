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

// Package report holds one reporter tick's comparison and renders it as graphite
// plaintext lines
package report

import (
	"fmt"
	"time"

	"github.com/nuclio/percentile-harness/pkg/percentile"
)

const (
	SourceReal      = "real"
	SourceEstimator = "estimator"

	MetricCount         = "count"
	MetricOneMinuteRate = "oneminuterate"
)

// Measurement is a single value of a report
type Measurement struct {
	Source string
	Metric string
	Value  int64
}

// Report compares the exact percentiles of one window with what the estimator reports.
// Real and estimator percentiles are in the order of Percentiles
type Report struct {
	Scenario    string
	Timestamp   time.Time
	Percentiles []float64

	RealCount       int64
	RealPercentiles []int64

	EstimatorCount         int64
	EstimatorOneMinuteRate int64
	EstimatorPercentiles   []int64
}

// PercentileMetric names the metric of a quantile: 0.95 -> "95percentile"
func PercentileMetric(p float64) string {
	return percentile.Label(p) + "percentile"
}

// Measurements flattens the report, real values first
func (r *Report) Measurements() []Measurement {
	measurements := []Measurement{
		{Source: SourceReal, Metric: MetricCount, Value: r.RealCount},
	}

	for percentileIndex, p := range r.Percentiles {
		measurements = append(measurements, Measurement{
			Source: SourceReal,
			Metric: PercentileMetric(p),
			Value:  r.RealPercentiles[percentileIndex],
		})
	}

	measurements = append(measurements,
		Measurement{Source: SourceEstimator, Metric: MetricCount, Value: r.EstimatorCount},
		Measurement{Source: SourceEstimator, Metric: MetricOneMinuteRate, Value: r.EstimatorOneMinuteRate})

	for percentileIndex, p := range r.Percentiles {
		measurements = append(measurements, Measurement{
			Source: SourceEstimator,
			Metric: PercentileMetric(p),
			Value:  r.EstimatorPercentiles[percentileIndex],
		})
	}

	return measurements
}

// Lines renders the report as "<namespace>.<scenario>.<source>.<metric> <value> <unixSeconds>"
func (r *Report) Lines(namespace string) []string {
	var lines []string

	for _, measurement := range r.Measurements() {
		lines = append(lines, FormatLine(namespace, r.Scenario, measurement, r.Timestamp))
	}

	return lines
}

func FormatLine(namespace string, scenario string, measurement Measurement, timestamp time.Time) string {
	return fmt.Sprintf("%s %d %d",
		MetricPath(namespace, scenario, measurement),
		measurement.Value,
		timestamp.Unix())
}

func MetricPath(namespace string, scenario string, measurement Measurement) string {
	return fmt.Sprintf("%s.%s.%s.%s", namespace, scenario, measurement.Source, measurement.Metric)
}
