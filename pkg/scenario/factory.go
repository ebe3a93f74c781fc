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

package scenario

import (
	"time"

	"github.com/nuclio/percentile-harness/pkg/common"

	"github.com/nuclio/errors"
)

type UniformAttributes struct {
	Bound int64
	Limit int
	Seed  uint64
}

type BimodalAttributes struct {
	Threshold int
	Low       int64
	High      int64
	Limit     int
}

type TraceAttributes struct {
	Values []int64
}

type WeibullTraceAttributes struct {
	Length int
	Shape  float64
	Lambda float64
	Seed   uint64
}

// NewGenerator creates a generator of the given kind from its attributes. A zero seed is
// replaced by the current time
func NewGenerator(kind string, attributes map[string]interface{}) (Generator, error) {
	switch kind {
	case KindUniform:
		uniformAttributes := UniformAttributes{}
		if err := common.DecodeAttributes(attributes, &uniformAttributes); err != nil {
			return nil, errors.Wrap(err, "Failed to decode uniform attributes")
		}

		uniformRandom, err := NewUniformRandom(uniformAttributes.Bound,
			uniformAttributes.Limit,
			seedOrNow(uniformAttributes.Seed))
		if err != nil {
			return nil, errors.Wrap(err, "Failed to create uniform generator")
		}

		return uniformRandom, nil

	case KindBimodal:
		bimodalAttributes := BimodalAttributes{}
		if err := common.DecodeAttributes(attributes, &bimodalAttributes); err != nil {
			return nil, errors.Wrap(err, "Failed to decode bimodal attributes")
		}

		bimodal, err := NewBimodalWithTailSpike(bimodalAttributes.Threshold,
			bimodalAttributes.Low,
			bimodalAttributes.High,
			bimodalAttributes.Limit)
		if err != nil {
			return nil, errors.Wrap(err, "Failed to create bimodal generator")
		}

		return bimodal, nil

	case KindTrace:
		traceAttributes := TraceAttributes{}
		if err := common.DecodeAttributes(attributes, &traceAttributes); err != nil {
			return nil, errors.Wrap(err, "Failed to decode trace attributes")
		}

		return newTraceGenerator(traceAttributes.Values)

	case KindWeibullTrace:
		weibullAttributes := WeibullTraceAttributes{}
		if err := common.DecodeAttributes(attributes, &weibullAttributes); err != nil {
			return nil, errors.Wrap(err, "Failed to decode weibull trace attributes")
		}

		trace, err := NewWeibullTrace(weibullAttributes.Length,
			weibullAttributes.Shape,
			weibullAttributes.Lambda,
			seedOrNow(weibullAttributes.Seed))
		if err != nil {
			return nil, errors.Wrap(err, "Failed to generate weibull trace")
		}

		return newTraceGenerator(trace)

	default:
		return nil, errors.Errorf("Unknown scenario kind: %s", kind)
	}
}

func newTraceGenerator(trace []int64) (Generator, error) {
	precomputedTrace, err := NewPrecomputedTrace(trace)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to create trace generator")
	}

	return precomputedTrace, nil
}

func seedOrNow(seed uint64) uint64 {
	if seed != 0 {
		return seed
	}

	return uint64(time.Now().UnixNano())
}
