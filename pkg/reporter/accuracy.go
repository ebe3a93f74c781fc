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

package reporter

import (
	"math"
	"sync"

	"github.com/nuclio/percentile-harness/pkg/report"

	"github.com/montanaflynn/stats"
)

// AccuracySummary describes how far the estimator was from the exact value of one
// percentile across a scenario's reports. Errors are in the scenario's display unit
type AccuracySummary struct {
	Percentile        float64
	Reports           int
	MeanAbsoluteError float64
	MaxAbsoluteError  float64

	// MeanRelativeError skips reports whose exact value is 0
	MeanRelativeError float64
}

// Accuracy accumulates the estimator errors of one scenario
type Accuracy struct {
	lock           sync.Mutex
	scenario       string
	percentiles    []float64
	reports        int
	absoluteErrors []stats.Float64Data
	relativeErrors []stats.Float64Data
}

func NewAccuracy(scenario string, percentiles []float64) *Accuracy {
	return &Accuracy{
		scenario:       scenario,
		percentiles:    percentiles,
		absoluteErrors: make([]stats.Float64Data, len(percentiles)),
		relativeErrors: make([]stats.Float64Data, len(percentiles)),
	}
}

// Add records a report. Reports of empty windows carry no exact values and are ignored
func (a *Accuracy) Add(scenarioReport *report.Report) {
	if scenarioReport.RealCount == 0 {
		return
	}

	a.lock.Lock()
	defer a.lock.Unlock()

	a.reports++

	for percentileIndex := range a.percentiles {
		realValue := float64(scenarioReport.RealPercentiles[percentileIndex])
		estimatedValue := float64(scenarioReport.EstimatorPercentiles[percentileIndex])
		absoluteError := math.Abs(estimatedValue - realValue)

		a.absoluteErrors[percentileIndex] = append(a.absoluteErrors[percentileIndex], absoluteError)

		if realValue != 0 {
			a.relativeErrors[percentileIndex] = append(a.relativeErrors[percentileIndex], absoluteError/realValue)
		}
	}
}

func (a *Accuracy) GetScenario() string {
	return a.scenario
}

func (a *Accuracy) GetReports() int {
	a.lock.Lock()
	defer a.lock.Unlock()

	return a.reports
}

// Summarize returns one summary per percentile, in configuration order
func (a *Accuracy) Summarize() []AccuracySummary {
	a.lock.Lock()
	defer a.lock.Unlock()

	summaries := make([]AccuracySummary, len(a.percentiles))

	for percentileIndex, p := range a.percentiles {
		summaries[percentileIndex] = AccuracySummary{
			Percentile:        p,
			Reports:           a.reports,
			MeanAbsoluteError: meanOrZero(a.absoluteErrors[percentileIndex]),
			MaxAbsoluteError:  maxOrZero(a.absoluteErrors[percentileIndex]),
			MeanRelativeError: meanOrZero(a.relativeErrors[percentileIndex]),
		}
	}

	return summaries
}

func meanOrZero(data stats.Float64Data) float64 {
	if data.Len() == 0 {
		return 0
	}

	mean, err := data.Mean()
	if err != nil {
		return 0
	}

	return mean
}

func maxOrZero(data stats.Float64Data) float64 {
	if data.Len() == 0 {
		return 0
	}

	maximum, err := data.Max()
	if err != nil {
		return 0
	}

	return maximum
}
