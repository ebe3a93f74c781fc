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
	"math"
	"math/rand/v2"

	"github.com/nuclio/errors"
	"gonum.org/v1/gonum/stat/distuv"
)

// NewWeibullTrace draws length samples from Weibull(shape, lambda), rounded to the nearest
// integer
func NewWeibullTrace(length int, shape float64, lambda float64, seed uint64) ([]int64, error) {
	if length <= 0 {
		return nil, errors.Errorf("Trace length must be positive, got %d", length)
	}

	if shape <= 0 || lambda <= 0 {
		return nil, errors.Errorf("Weibull parameters must be positive, got shape=%v lambda=%v", shape, lambda)
	}

	distribution := distuv.Weibull{
		K:      shape,
		Lambda: lambda,
		Src:    rand.NewPCG(seed, seed^0xda942042e4dd58b5),
	}

	trace := make([]int64, length)
	for index := range trace {
		sample := math.Round(distribution.Rand())

		// heavy tails can overflow int64 for silly parameters
		if sample > math.MaxInt64/2 {
			sample = math.MaxInt64 / 2
		}

		trace[index] = int64(sample)
	}

	return trace, nil
}
