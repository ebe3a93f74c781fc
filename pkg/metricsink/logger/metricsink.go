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

// Package logger emits report lines through the harness logger or straight to stdout
package logger

import (
	"fmt"
	"io"
	"os"

	"github.com/nuclio/percentile-harness/pkg/common"
	"github.com/nuclio/percentile-harness/pkg/metricsink"
	"github.com/nuclio/percentile-harness/pkg/report"

	"github.com/nuclio/errors"
	"github.com/nuclio/logger"
)

const (
	Kind = "logger"

	OutputLog    = "log"
	OutputStdout = "stdout"
)

type Attributes struct {
	Output string
}

type Configuration struct {
	metricsink.Configuration
	Attributes
}

func NewConfiguration(metricSinkConfiguration *metricsink.Configuration) (*Configuration, error) {
	newConfiguration := Configuration{
		Configuration: *metricSinkConfiguration,
		Attributes: Attributes{
			Output: OutputLog,
		},
	}

	if err := common.DecodeAttributes(metricSinkConfiguration.Attributes, &newConfiguration.Attributes); err != nil {
		return nil, errors.Wrap(err, "Failed to decode attributes")
	}

	switch newConfiguration.Output {
	case OutputLog, OutputStdout:
	default:
		return nil, errors.Errorf("Unknown output: %s", newConfiguration.Output)
	}

	return &newConfiguration, nil
}

type MetricSink struct {
	*metricsink.AbstractMetricSink
	configuration *Configuration
	writer        io.Writer
}

func newMetricSink(parentLogger logger.Logger, configuration *Configuration) (*MetricSink, error) {
	newAbstractMetricSink, err := metricsink.NewAbstractMetricSink(parentLogger.GetChild(configuration.Name),
		Kind,
		&configuration.Configuration)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to create abstract metric sink")
	}

	return &MetricSink{
		AbstractMetricSink: newAbstractMetricSink,
		configuration:      configuration,
		writer:             os.Stdout,
	}, nil
}

func (ms *MetricSink) Emit(report *report.Report) error {
	for _, line := range report.Lines(ms.Namespace) {
		if ms.configuration.Output == OutputStdout {
			if _, err := fmt.Fprintln(ms.writer, line); err != nil {
				return errors.Wrap(err, "Failed to write line")
			}

			continue
		}

		ms.Logger.InfoWith(line)
	}

	return nil
}

type factory struct{}

func (f *factory) Create(parentLogger logger.Logger,
	metricSinkConfiguration *metricsink.Configuration) (metricsink.MetricSink, error) {
	configuration, err := NewConfiguration(metricSinkConfiguration)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to create logger sink configuration")
	}

	metricSink, err := newMetricSink(parentLogger, configuration)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to create logger metric sink")
	}

	return metricSink, nil
}

// register factory
func init() {
	metricsink.RegistrySingleton.Register(Kind, &factory{})
}
