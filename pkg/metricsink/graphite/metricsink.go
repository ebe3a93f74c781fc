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

// Package graphite sends report lines to a carbon plaintext listener
package graphite

import (
	"net"
	"strings"
	"time"

	"github.com/nuclio/percentile-harness/pkg/common"
	"github.com/nuclio/percentile-harness/pkg/metricsink"
	"github.com/nuclio/percentile-harness/pkg/report"

	"github.com/nuclio/errors"
	"github.com/nuclio/logger"
)

const (
	Kind = "graphite"

	defaultAddress = "localhost:2003"
	defaultTimeout = 5 * time.Second
)

type Attributes struct {
	Address string
	Timeout time.Duration
}

type Configuration struct {
	metricsink.Configuration
	Attributes
}

func NewConfiguration(metricSinkConfiguration *metricsink.Configuration) (*Configuration, error) {
	newConfiguration := Configuration{
		Configuration: *metricSinkConfiguration,
		Attributes: Attributes{
			Address: defaultAddress,
			Timeout: defaultTimeout,
		},
	}

	if err := common.DecodeAttributes(metricSinkConfiguration.Attributes, &newConfiguration.Attributes); err != nil {
		return nil, errors.Wrap(err, "Failed to decode attributes")
	}

	if _, _, err := net.SplitHostPort(newConfiguration.Address); err != nil {
		return nil, errors.Wrapf(err, "Invalid address %s", newConfiguration.Address)
	}

	if newConfiguration.Timeout <= 0 {
		return nil, errors.Errorf("Timeout must be positive, got %s", newConfiguration.Timeout)
	}

	return &newConfiguration, nil
}

// MetricSink opens a connection per report
type MetricSink struct {
	*metricsink.AbstractMetricSink
	configuration *Configuration
}

func newMetricSink(parentLogger logger.Logger, configuration *Configuration) (*MetricSink, error) {
	newAbstractMetricSink, err := metricsink.NewAbstractMetricSink(parentLogger.GetChild(configuration.Name),
		Kind,
		&configuration.Configuration)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to create abstract metric sink")
	}

	newMetricSink := &MetricSink{
		AbstractMetricSink: newAbstractMetricSink,
		configuration:      configuration,
	}

	newMetricSink.Logger.InfoWith("Created", "address", configuration.Address)

	return newMetricSink, nil
}

func (ms *MetricSink) Emit(report *report.Report) error {
	connection, err := net.DialTimeout("tcp", ms.configuration.Address, ms.configuration.Timeout)
	if err != nil {
		return errors.Wrapf(err, "Failed to connect to %s", ms.configuration.Address)
	}

	defer connection.Close() // nolint: errcheck

	if err := connection.SetWriteDeadline(time.Now().Add(ms.configuration.Timeout)); err != nil {
		return errors.Wrap(err, "Failed to set write deadline")
	}

	payload := strings.Join(report.Lines(ms.Namespace), "\n") + "\n"

	if _, err := connection.Write([]byte(payload)); err != nil {
		return errors.Wrapf(err, "Failed to write to %s", ms.configuration.Address)
	}

	ms.Logger.DebugWith("Sent report", "scenario", report.Scenario, "bytes", len(payload))

	return nil
}

type factory struct{}

func (f *factory) Create(parentLogger logger.Logger,
	metricSinkConfiguration *metricsink.Configuration) (metricsink.MetricSink, error) {
	configuration, err := NewConfiguration(metricSinkConfiguration)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to create graphite sink configuration")
	}

	metricSink, err := newMetricSink(parentLogger, configuration)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to create graphite metric sink")
	}

	return metricSink, nil
}

// register factory
func init() {
	metricsink.RegistrySingleton.Register(Kind, &factory{})
}
