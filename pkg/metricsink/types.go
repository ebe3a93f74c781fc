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

package metricsink

import (
	"github.com/nuclio/percentile-harness/pkg/registry"

	"github.com/nuclio/errors"
	"github.com/nuclio/logger"
)

type Configuration struct {
	Kind       string                 `json:"kind"`
	Name       string                 `json:"name,omitempty"`
	Disabled   bool                   `json:"disabled,omitempty"`
	Attributes map[string]interface{} `json:"attributes,omitempty"`

	// Namespace prefixes every metric path. Set by the harness
	Namespace string `json:"-"`
}

type Factory interface {
	Create(parentLogger logger.Logger, configuration *Configuration) (MetricSink, error)
}

// RegistrySingleton holds the factory of every metric sink kind linked into the binary
var RegistrySingleton = registry.NewRegistry[Factory]("metricsink")

// NewMetricSink creates a sink of the configured kind through the registry
func NewMetricSink(parentLogger logger.Logger, configuration *Configuration) (MetricSink, error) {
	if configuration.Name == "" {
		configuration.Name = configuration.Kind
	}

	factory, err := RegistrySingleton.Get(configuration.Kind)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to find metric sink factory")
	}

	metricSink, err := factory.Create(parentLogger, configuration)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to create %s metric sink", configuration.Kind)
	}

	return metricSink, nil
}

// NewMetricSinks creates every enabled sink
func NewMetricSinks(parentLogger logger.Logger,
	configurations []Configuration,
	namespace string) ([]MetricSink, error) {
	var metricSinks []MetricSink

	for configurationIndex := range configurations {
		configuration := configurations[configurationIndex]
		if configuration.Disabled {
			parentLogger.DebugWith("Metric sink disabled, skipping", "kind", configuration.Kind, "name", configuration.Name)
			continue
		}

		configuration.Namespace = namespace

		metricSink, err := NewMetricSink(parentLogger, &configuration)
		if err != nil {
			return nil, errors.Wrap(err, "Failed to create metric sink")
		}

		metricSinks = append(metricSinks, metricSink)
	}

	return metricSinks, nil
}
