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

// Package ddsketch estimates with a relative-error DDSketch
package ddsketch

import (
	"github.com/nuclio/percentile-harness/pkg/common"
	"github.com/nuclio/percentile-harness/pkg/estimator"

	"github.com/DataDog/sketches-go/ddsketch"
	"github.com/nuclio/errors"
	"github.com/nuclio/logger"
)

const (
	Kind = "ddsketch"

	defaultRelativeAccuracy = 0.01
)

type Attributes struct {
	RelativeAccuracy float64
}

type sketch struct {
	logger   logger.Logger
	ddsketch *ddsketch.DDSketch
}

func (s *sketch) Add(nanoseconds float64) {
	if err := s.ddsketch.Add(nanoseconds); err != nil {
		s.logger.WarnWith("Failed to add value to sketch", "value", nanoseconds, "err", err)
	}
}

func (s *sketch) Quantile(p float64) float64 {
	value, err := s.ddsketch.GetValueAtQuantile(p)
	if err != nil {
		return 0
	}

	return value
}

type factory struct{}

func (f *factory) Create(parentLogger logger.Logger,
	configuration *estimator.Configuration) (estimator.Provider, error) {
	attributes := Attributes{
		RelativeAccuracy: defaultRelativeAccuracy,
	}

	if err := common.DecodeAttributes(configuration.Attributes, &attributes); err != nil {
		return nil, errors.Wrap(err, "Failed to decode ddsketch attributes")
	}

	// validate once here so the creator below can't fail
	if _, err := ddsketch.NewDefaultDDSketch(attributes.RelativeAccuracy); err != nil {
		return nil, errors.Wrap(err, "Invalid relative accuracy")
	}

	sketchLogger := parentLogger.GetChild(Kind)

	return estimator.NewAbstractProvider(parentLogger, Kind, func(name string) estimator.Estimator {
		newDDSketch, _ := ddsketch.NewDefaultDDSketch(attributes.RelativeAccuracy)

		return estimator.NewSketchEstimator(&sketch{
			logger:   sketchLogger.GetChild(name),
			ddsketch: newDDSketch,
		})
	}), nil
}

// register factory
func init() {
	estimator.RegistrySingleton.Register(Kind, &factory{})
}
