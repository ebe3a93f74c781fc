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

package prometheus

import (
	"github.com/nuclio/percentile-harness/pkg/report"

	"github.com/nuclio/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// ReportGatherer mirrors the latest report of every scenario into a gauge vector
type ReportGatherer struct {
	values *prometheus.GaugeVec
}

func NewReportGatherer(namespace string, metricRegistry *prometheus.Registry) (*ReportGatherer, error) {
	newReportGatherer := &ReportGatherer{
		values: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "percentile_harness_value",
			Help: "Latest reported value, by scenario, source (real or estimator) and metric",
			ConstLabels: prometheus.Labels{
				"namespace": namespace,
			},
		}, []string{"scenario", "source", "metric"}),
	}

	if err := metricRegistry.Register(newReportGatherer.values); err != nil {
		return nil, errors.Wrap(err, "Failed to register report values metric")
	}

	return newReportGatherer, nil
}

func (rg *ReportGatherer) Gather(report *report.Report) {
	for _, measurement := range report.Measurements() {
		rg.values.With(prometheus.Labels{
			"scenario": report.Scenario,
			"source":   measurement.Source,
			"metric":   measurement.Metric,
		}).Set(float64(measurement.Value))
	}
}

// Values exposes the underlying vector
func (rg *ReportGatherer) Values() *prometheus.GaugeVec {
	return rg.values
}
