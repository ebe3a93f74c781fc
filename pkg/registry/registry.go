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

package registry

import (
	"fmt"
	"sort"
	"sync"
)

// Registry maps a kind (e.g. "tdigest", "graphite") to whatever creates instances of that kind.
// Packages register themselves from init()
type Registry[T any] struct {
	className  string
	lock       sync.Mutex
	registered map[string]T
}

func NewRegistry[T any](className string) *Registry[T] {
	return &Registry[T]{
		className:  className,
		registered: map[string]T{},
	}
}

func (r *Registry[T]) Register(kind string, registeree T) {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, found := r.registered[kind]; found {

		// registries register things on package initialization; no place for error handling
		panic(fmt.Sprintf("Already registered: %s", kind))
	}

	r.registered[kind] = registeree
}

func (r *Registry[T]) Get(kind string) (T, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	registeree, found := r.registered[kind]
	if !found {
		var zero T

		return zero, fmt.Errorf("Registry for %s failed to find: %s", r.className, kind)
	}

	return registeree, nil
}

// GetKinds returns the registered kinds, sorted
func (r *Registry[T]) GetKinds() []string {
	r.lock.Lock()
	defer r.lock.Unlock()

	kinds := make([]string, 0, len(r.registered))
	for kind := range r.registered {
		kinds = append(kinds, kind)
	}

	sort.Strings(kinds)

	return kinds
}
