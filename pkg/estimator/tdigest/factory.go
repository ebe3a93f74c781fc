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

// Package tdigest estimates with a merging t-digest
package tdigest

import (
	"github.com/nuclio/percentile-harness/pkg/common"
	"github.com/nuclio/percentile-harness/pkg/estimator"

	"github.com/influxdata/tdigest"
	"github.com/nuclio/errors"
	"github.com/nuclio/logger"
)

const (
	Kind = "tdigest"

	defaultCompression = 1000
)

type Attributes struct {
	Compression float64
}

type sketch struct {
	digest *tdigest.TDigest
}

func (s *sketch) Add(nanoseconds float64) {
	s.digest.Add(nanoseconds, 1)
}

func (s *sketch) Quantile(p float64) float64 {
	return s.digest.Quantile(p)
}

type factory struct{}

func (f *factory) Create(parentLogger logger.Logger,
	configuration *estimator.Configuration) (estimator.Provider, error) {
	attributes := Attributes{
		Compression: defaultCompression,
	}

	if err := common.DecodeAttributes(configuration.Attributes, &attributes); err != nil {
		return nil, errors.Wrap(err, "Failed to decode tdigest attributes")
	}

	if attributes.Compression <= 0 {
		return nil, errors.Errorf("Compression must be positive, got %v", attributes.Compression)
	}

	return estimator.NewAbstractProvider(parentLogger, Kind, func(name string) estimator.Estimator {
		return estimator.NewSketchEstimator(&sketch{
			digest: tdigest.NewWithCompression(attributes.Compression),
		})
	}), nil
}

// register factory
func init() {
	estimator.RegistrySingleton.Register(Kind, &factory{})
}
