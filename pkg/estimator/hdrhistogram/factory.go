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

// Package hdrhistogram estimates with an HDR histogram of nanosecond values
package hdrhistogram

import (
	"time"

	"github.com/nuclio/percentile-harness/pkg/common"
	"github.com/nuclio/percentile-harness/pkg/estimator"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/nuclio/errors"
	"github.com/nuclio/logger"
)

const Kind = "hdrhistogram"

type Attributes struct {
	LowestDiscernibleValue time.Duration
	HighestTrackableValue  time.Duration
	SignificantFigures     int
}

type sketch struct {
	histogram *hdrhistogram.Histogram
}

// Add clamps values into the trackable range rather than dropping them
func (s *sketch) Add(nanoseconds float64) {
	value := int64(nanoseconds)

	if value < s.histogram.LowestTrackableValue() {
		value = s.histogram.LowestTrackableValue()
	}

	if value > s.histogram.HighestTrackableValue() {
		value = s.histogram.HighestTrackableValue()
	}

	s.histogram.RecordValue(value) // nolint: errcheck
}

func (s *sketch) Quantile(p float64) float64 {
	return float64(s.histogram.ValueAtQuantile(p * 100))
}

type factory struct{}

func (f *factory) Create(parentLogger logger.Logger,
	configuration *estimator.Configuration) (estimator.Provider, error) {
	attributes := Attributes{
		LowestDiscernibleValue: time.Microsecond,
		HighestTrackableValue:  time.Hour,
		SignificantFigures:     3,
	}

	if err := common.DecodeAttributes(configuration.Attributes, &attributes); err != nil {
		return nil, errors.Wrap(err, "Failed to decode hdrhistogram attributes")
	}

	if attributes.LowestDiscernibleValue <= 0 ||
		attributes.HighestTrackableValue < 2*attributes.LowestDiscernibleValue {
		return nil, errors.Errorf("Invalid trackable range [%s, %s]",
			attributes.LowestDiscernibleValue,
			attributes.HighestTrackableValue)
	}

	if attributes.SignificantFigures < 1 || attributes.SignificantFigures > 5 {
		return nil, errors.Errorf("Significant figures must be in [1, 5], got %d", attributes.SignificantFigures)
	}

	return estimator.NewAbstractProvider(parentLogger, Kind, func(name string) estimator.Estimator {
		return estimator.NewSketchEstimator(&sketch{
			histogram: hdrhistogram.New(attributes.LowestDiscernibleValue.Nanoseconds(),
				attributes.HighestTrackableValue.Nanoseconds(),
				attributes.SignificantFigures),
		})
	}), nil
}

// register factory
func init() {
	estimator.RegistrySingleton.Register(Kind, &factory{})
}
