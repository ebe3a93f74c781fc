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
	"sync"

	"github.com/nuclio/errors"
	"github.com/nuclio/logger"
)

// AbstractProvider keeps a lazily populated name -> estimator map. Kinds embed it and
// supply the creator
type AbstractProvider struct {
	Logger     logger.Logger
	Kind       string
	lock       sync.Mutex
	estimators map[string]Estimator
	creator    func(name string) Estimator
}

func NewAbstractProvider(parentLogger logger.Logger,
	kind string,
	creator func(name string) Estimator) *AbstractProvider {
	return &AbstractProvider{
		Logger:     parentLogger.GetChild(kind),
		Kind:       kind,
		estimators: map[string]Estimator{},
		creator:    creator,
	}
}

func (ap *AbstractProvider) Get(name string) Estimator {
	ap.lock.Lock()
	defer ap.lock.Unlock()

	if existingEstimator, found := ap.estimators[name]; found {
		return existingEstimator
	}

	newEstimator := ap.creator(name)
	ap.estimators[name] = newEstimator

	ap.Logger.DebugWith("Created estimator", "name", name, "kind", ap.Kind)

	return newEstimator
}

func (ap *AbstractProvider) GetKind() string {
	return ap.Kind
}

// Stop stops every estimator that holds background resources
func (ap *AbstractProvider) Stop() {
	ap.lock.Lock()
	defer ap.lock.Unlock()

	for _, estimatorInstance := range ap.estimators {
		if stoppable, ok := estimatorInstance.(interface{ Stop() }); ok {
			stoppable.Stop()
		}
	}

	ap.estimators = map[string]Estimator{}
}

// NewProvider creates a provider of the configured kind through the registry
func NewProvider(parentLogger logger.Logger, configuration *Configuration) (Provider, error) {
	kind := configuration.Kind
	if kind == "" {
		kind = DefaultKind
	}

	factory, err := RegistrySingleton.Get(kind)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to find estimator factory")
	}

	provider, err := factory.Create(parentLogger, configuration)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to create %s estimator provider", kind)
	}

	return provider, nil
}
