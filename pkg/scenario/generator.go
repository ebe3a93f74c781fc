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
	"math/rand/v2"
	"slices"

	"github.com/nuclio/errors"
)

//
// Uniform random
// Every iteration draws from [0, bound), regardless of the iteration index
//

type UniformRandom struct {
	bound  int64
	limit  int
	random *rand.Rand
}

func NewUniformRandom(bound int64, limit int, seed uint64) (*UniformRandom, error) {
	if bound <= 0 {
		return nil, errors.Errorf("Uniform bound must be positive, got %d", bound)
	}

	if limit <= 0 {
		return nil, errors.Errorf("Iteration limit must be positive, got %d", limit)
	}

	return &UniformRandom{
		bound:  bound,
		limit:  limit,
		random: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}, nil
}

// NextValue is not safe for concurrent use; a runner drives one generator from a single worker
func (ur *UniformRandom) NextValue(iteration int) int64 {
	return ur.random.Int64N(ur.bound)
}

func (ur *UniformRandom) IterationLimit() int {
	return ur.limit
}

func (ur *UniformRandom) Mode() Mode {
	return ModeRepeating
}

func (ur *UniformRandom) Recording() Recording {
	return RecordingTimed
}

//
// Bimodal with tail spike
// Mostly fast calls followed by a late burst of slow ones
//

type BimodalWithTailSpike struct {
	threshold int
	low       int64
	high      int64
	limit     int
}

func NewBimodalWithTailSpike(threshold int, low int64, high int64, limit int) (*BimodalWithTailSpike, error) {
	if limit <= 0 {
		return nil, errors.Errorf("Iteration limit must be positive, got %d", limit)
	}

	if threshold < 0 {
		return nil, errors.Errorf("Threshold must not be negative, got %d", threshold)
	}

	if low < 0 || high < 0 {
		return nil, errors.Errorf("Latencies must not be negative, got low=%d high=%d", low, high)
	}

	return &BimodalWithTailSpike{
		threshold: threshold,
		low:       low,
		high:      high,
		limit:     limit,
	}, nil
}

func (bts *BimodalWithTailSpike) NextValue(iteration int) int64 {
	if iteration < bts.threshold {
		return bts.low
	}

	return bts.high
}

func (bts *BimodalWithTailSpike) IterationLimit() int {
	return bts.limit
}

func (bts *BimodalWithTailSpike) Mode() Mode {
	return ModeRepeating
}

func (bts *BimodalWithTailSpike) Recording() Recording {
	return RecordingTimed
}

//
// Precomputed trace
// Replays a fixed sequence exactly once; values are already elapsed nanoseconds
//

type PrecomputedTrace struct {
	trace []int64
}

func NewPrecomputedTrace(trace []int64) (*PrecomputedTrace, error) {
	if len(trace) == 0 {
		return nil, errors.New("Trace must not be empty")
	}

	for index, value := range trace {
		if value < 0 {
			return nil, errors.Errorf("Trace value at %d is negative: %d", index, value)
		}
	}

	return &PrecomputedTrace{
		trace: slices.Clone(trace),
	}, nil
}

func (pt *PrecomputedTrace) NextValue(iteration int) int64 {
	return pt.trace[iteration]
}

func (pt *PrecomputedTrace) IterationLimit() int {
	return len(pt.trace)
}

func (pt *PrecomputedTrace) Mode() Mode {
	return ModeOneShot
}

func (pt *PrecomputedTrace) Recording() Recording {
	return RecordingDirect
}
