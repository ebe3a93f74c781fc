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

// Package dropwizard estimates with go-metrics timers: a meter for the rates and a
// histogram over a forward-decaying reservoir for the percentiles
package dropwizard

import (
	"github.com/nuclio/percentile-harness/pkg/common"
	"github.com/nuclio/percentile-harness/pkg/estimator"

	"github.com/nuclio/errors"
	"github.com/nuclio/logger"
	"github.com/rcrowley/go-metrics"
)

const (
	Kind = "dropwizard"

	ReservoirExponentiallyDecaying = "exponentiallyDecaying"
	ReservoirUniform               = "uniform"

	defaultReservoirSize = 1028
	defaultAlpha         = 0.015
)

type Attributes struct {
	Reservoir     string
	ReservoirSize int
	Alpha         float64
}

type Provider struct {
	*estimator.AbstractProvider
	attributes Attributes
	registry   metrics.Registry
}

func NewProvider(parentLogger logger.Logger, configuration *estimator.Configuration) (*Provider, error) {
	attributes := Attributes{
		Reservoir:     ReservoirExponentiallyDecaying,
		ReservoirSize: defaultReservoirSize,
		Alpha:         defaultAlpha,
	}

	if err := common.DecodeAttributes(configuration.Attributes, &attributes); err != nil {
		return nil, errors.Wrap(err, "Failed to decode dropwizard attributes")
	}

	if attributes.ReservoirSize <= 0 {
		return nil, errors.Errorf("Reservoir size must be positive, got %d", attributes.ReservoirSize)
	}

	switch attributes.Reservoir {
	case ReservoirExponentiallyDecaying, ReservoirUniform:
	default:
		return nil, errors.Errorf("Unknown reservoir: %s", attributes.Reservoir)
	}

	newProvider := &Provider{
		attributes: attributes,
		registry:   metrics.NewRegistry(),
	}

	newProvider.AbstractProvider = estimator.NewAbstractProvider(parentLogger, Kind, newProvider.createEstimator)

	newProvider.Logger.DebugWith("Created",
		"reservoir", attributes.Reservoir,
		"reservoirSize", attributes.ReservoirSize,
		"alpha", attributes.Alpha)

	return newProvider, nil
}

// Stop unregisters the timers, which stops their meters
func (p *Provider) Stop() {
	p.AbstractProvider.Stop()
	p.registry.UnregisterAll()
}

func (p *Provider) createEstimator(name string) estimator.Estimator {
	return p.registry.GetOrRegister(name, p.newTimer).(metrics.Timer)
}

func (p *Provider) newTimer() metrics.Timer {
	var sample metrics.Sample

	switch p.attributes.Reservoir {
	case ReservoirUniform:
		sample = metrics.NewUniformSample(p.attributes.ReservoirSize)
	default:
		sample = metrics.NewExpDecaySample(p.attributes.ReservoirSize, p.attributes.Alpha)
	}

	return metrics.NewCustomTimer(metrics.NewHistogram(sample), metrics.NewMeter())
}
