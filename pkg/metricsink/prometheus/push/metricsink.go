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

// Package prometheuspush pushes the latest reports to a prometheus pushgateway
package prometheuspush

import (
	"time"

	"github.com/nuclio/percentile-harness/pkg/common"
	"github.com/nuclio/percentile-harness/pkg/metricsink"
	"github.com/nuclio/percentile-harness/pkg/metricsink/prometheus"
	"github.com/nuclio/percentile-harness/pkg/report"

	"github.com/nuclio/errors"
	"github.com/nuclio/logger"
	prometheusclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

const (
	Kind = "prometheusPush"

	defaultJobName = "percentile-harness"
)

type Attributes struct {
	URL          string
	JobName      string
	InstanceName string

	// Interval of zero pushes on every report
	Interval time.Duration
}

type Configuration struct {
	metricsink.Configuration
	Attributes
}

func NewConfiguration(metricSinkConfiguration *metricsink.Configuration) (*Configuration, error) {
	newConfiguration := Configuration{
		Configuration: *metricSinkConfiguration,
		Attributes: Attributes{
			JobName: defaultJobName,
		},
	}

	if err := common.DecodeAttributes(metricSinkConfiguration.Attributes, &newConfiguration.Attributes); err != nil {
		return nil, errors.Wrap(err, "Failed to decode attributes")
	}

	if newConfiguration.URL == "" {
		return nil, errors.New("Pushgateway URL is required")
	}

	if newConfiguration.Interval < 0 {
		return nil, errors.Errorf("Interval must not be negative, got %s", newConfiguration.Interval)
	}

	return &newConfiguration, nil
}

type MetricSink struct {
	*metricsink.AbstractMetricSink
	configuration  *Configuration
	metricRegistry *prometheusclient.Registry
	gatherer       *prometheus.ReportGatherer
	pusher         *push.Pusher
	periodic       bool
}

func newMetricSink(parentLogger logger.Logger, configuration *Configuration) (*MetricSink, error) {
	newAbstractMetricSink, err := metricsink.NewAbstractMetricSink(parentLogger.GetChild(configuration.Name),
		Kind,
		&configuration.Configuration)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to create abstract metric sink")
	}

	newMetricPusher := &MetricSink{
		AbstractMetricSink: newAbstractMetricSink,
		configuration:      configuration,
		metricRegistry:     prometheusclient.NewRegistry(),
	}

	newMetricPusher.gatherer, err = prometheus.NewReportGatherer(configuration.Namespace, newMetricPusher.metricRegistry)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to create report gatherer")
	}

	newMetricPusher.pusher = push.New(configuration.URL, configuration.JobName).
		Gatherer(newMetricPusher.metricRegistry)

	if configuration.InstanceName != "" {
		newMetricPusher.pusher = newMetricPusher.pusher.Grouping("instance", configuration.InstanceName)
	}

	newMetricPusher.Logger.InfoWith("Created",
		"jobName", configuration.JobName,
		"instanceName", configuration.InstanceName,
		"pushGatewayURL", configuration.URL,
		"pushInterval", configuration.Interval)

	return newMetricPusher, nil
}

func (ms *MetricSink) Start() error {
	if ms.configuration.Interval == 0 {
		return nil
	}

	ms.periodic = true

	// push in the background
	go ms.pushPeriodically()

	return nil
}

func (ms *MetricSink) Stop() chan struct{} {
	if !ms.periodic {
		return ms.AbstractMetricSink.Stop()
	}

	// closing the channel will break the loop
	close(ms.StopChannel)

	return ms.StoppedChannel
}

func (ms *MetricSink) Emit(report *report.Report) error {
	ms.gatherer.Gather(report)

	if ms.periodic {
		return nil
	}

	return ms.push()
}

func (ms *MetricSink) pushPeriodically() {

	// set when stop() is called and channel is closed
	done := false
	defer close(ms.StoppedChannel)

	ms.Logger.DebugWith("Pushing periodically",
		"interval", ms.configuration.Interval,
		"target", ms.configuration.URL)

	for !done {
		select {
		case <-time.After(ms.configuration.Interval):
			if err := ms.push(); err != nil {
				ms.Logger.WarnWith("Failed to push metrics", "err", errors.Cause(err).Error())
			}
		case <-ms.StopChannel:
			done = true
		}
	}
}

// push adds to the job's group rather than replacing it, so values of scenarios that
// are no longer reporting stay visible
func (ms *MetricSink) push() error {
	if err := ms.pusher.Add(); err != nil {
		return errors.Wrapf(err, "Failed to push to %s", ms.configuration.URL)
	}

	return nil
}

type factory struct{}

func (f *factory) Create(parentLogger logger.Logger,
	metricSinkConfiguration *metricsink.Configuration) (metricsink.MetricSink, error) {
	configuration, err := NewConfiguration(metricSinkConfiguration)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to create prometheus push configuration")
	}

	metricSink, err := newMetricSink(parentLogger, configuration)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to create prometheus push metric sink")
	}

	return metricSink, nil
}

// register factory
func init() {
	metricsink.RegistrySingleton.Register(Kind, &factory{})
}
