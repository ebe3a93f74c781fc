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

// Package ckms estimates with the targeted-quantile stream of Cormode, Korn,
// Muthukrishnan and Srivastava, as prometheus summaries do
package ckms

import (
	"github.com/nuclio/percentile-harness/pkg/common"
	"github.com/nuclio/percentile-harness/pkg/estimator"
	"github.com/nuclio/percentile-harness/pkg/percentile"

	"github.com/beorn7/perks/quantile"
	"github.com/nuclio/errors"
	"github.com/nuclio/logger"
)

const (
	Kind = "ckms"

	defaultEpsilon = 0.0001
)

type Attributes struct {
	Epsilon float64
}

type sketch struct {
	stream *quantile.Stream
}

func (s *sketch) Add(nanoseconds float64) {
	s.stream.Insert(nanoseconds)
}

func (s *sketch) Quantile(p float64) float64 {
	return s.stream.Query(p)
}

type factory struct{}

func (f *factory) Create(parentLogger logger.Logger,
	configuration *estimator.Configuration) (estimator.Provider, error) {
	attributes := Attributes{
		Epsilon: defaultEpsilon,
	}

	if err := common.DecodeAttributes(configuration.Attributes, &attributes); err != nil {
		return nil, errors.Wrap(err, "Failed to decode ckms attributes")
	}

	if attributes.Epsilon <= 0 || attributes.Epsilon >= 1 {
		return nil, errors.Errorf("Epsilon must be in (0, 1), got %v", attributes.Epsilon)
	}

	targetPercentiles := configuration.Percentiles
	if len(targetPercentiles) == 0 {
		targetPercentiles = percentile.Default
	}

	// the stream is only accurate for the quantiles it targets
	targets := map[float64]float64{}
	for _, targetPercentile := range targetPercentiles {
		targets[targetPercentile] = attributes.Epsilon
	}

	return estimator.NewAbstractProvider(parentLogger, Kind, func(name string) estimator.Estimator {
		return estimator.NewSketchEstimator(&sketch{
			stream: quantile.NewTargeted(targets),
		})
	}), nil
}

// register factory
func init() {
	estimator.RegistrySingleton.Register(Kind, &factory{})
}
