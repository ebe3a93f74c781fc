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

// Mode determines how a generator is driven across scheduler ticks
type Mode int

const (

	// ModeRepeating generators restart from iteration 0 on every tick
	ModeRepeating Mode = iota

	// ModeOneShot generators are consumed once over the harness lifetime
	ModeOneShot
)

func (m Mode) String() string {
	switch m {
	case ModeRepeating:
		return "repeating"
	case ModeOneShot:
		return "oneShot"
	default:
		return "unknown"
	}
}

// Recording determines what the estimator is fed for each generated value
type Recording int

const (

	// RecordingTimed values are waited out and the estimator times the wait
	RecordingTimed Recording = iota

	// RecordingDirect values are handed to the estimator as already elapsed nanoseconds
	RecordingDirect
)

func (r Recording) String() string {
	switch r {
	case RecordingTimed:
		return "timed"
	case RecordingDirect:
		return "direct"
	default:
		return "unknown"
	}
}

// Generator produces the latency values of a synthetic workload
type Generator interface {

	// NextValue returns the latency of the given iteration, in the scenario's unit
	NextValue(iteration int) int64

	// IterationLimit returns how many values a single run produces
	IterationLimit() int

	// Mode returns how the generator is driven across ticks
	Mode() Mode

	// Recording returns how values reach the estimator
	Recording() Recording
}

// Kinds
const (
	KindUniform      = "uniform"
	KindBimodal      = "bimodal"
	KindTrace        = "trace"
	KindWeibullTrace = "weibullTrace"
)
