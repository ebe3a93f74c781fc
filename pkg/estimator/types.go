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

package estimator

import (
	"time"

	"github.com/nuclio/percentile-harness/pkg/registry"

	"github.com/nuclio/logger"
)

const DefaultKind = "dropwizard"

// Estimator is the streaming statistics capability under validation. Implementations
// must be safe for concurrent use
type Estimator interface {

	// Update records an already elapsed duration
	Update(duration time.Duration)

	// Time runs f and records how long it took
	Time(f func())

	// Count returns the number of recorded durations
	Count() int64

	// Rate1 returns the one-minute exponentially weighted rate, in events per second
	Rate1() float64

	// Percentile returns the estimated p-th quantile (0 < p <= 1), in nanoseconds
	Percentile(p float64) float64
}

// Provider hands out one estimator per scenario name and owns their lifetime
type Provider interface {

	// Get returns the estimator of a scenario, creating it on first use
	Get(name string) Estimator

	// GetKind returns the kind of estimator
	GetKind() string

	// Stop releases the provider's estimators
	Stop()
}

type Configuration struct {
	Kind       string
	Attributes map[string]interface{}

	// Percentiles are the quantiles the harness will query, for estimators that need
	// to know them up front
	Percentiles []float64
}

type Factory interface {
	Create(parentLogger logger.Logger, configuration *Configuration) (Provider, error)
}

// RegistrySingleton holds the factory of every estimator kind linked into the binary
var RegistrySingleton = registry.NewRegistry[Factory]("estimator")
