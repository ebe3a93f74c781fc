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

// Package window holds the raw samples recorded between two reporter ticks, together with
// the scenario they belong to
package window

import (
	"sync"

	"github.com/nuclio/errors"
)

const DefaultCapacity = 10000

// ErrCapacityExceeded is returned by Append when the window holds Capacity() samples
var ErrCapacityExceeded = errors.New("Sample window capacity exceeded")

// ActiveScenario identifies the scenario currently writing into the window
type ActiveScenario struct {
	Name  string
	Scale int
}

// Snapshot is what a drain hands to the reporter. Values are owned by the caller
type Snapshot struct {
	ActiveScenario
	Values []int64
}

// Window is a fixed capacity append-only sample buffer. The buffer and the active
// scenario share one lock so a drain never pairs samples with the wrong scenario
type Window struct {
	lock   sync.Mutex
	values []int64
	length int
	active ActiveScenario
}

func NewWindow(capacity int) (*Window, error) {
	if capacity <= 0 {
		return nil, errors.Errorf("Window capacity must be positive, got %d", capacity)
	}

	return &Window{
		values: make([]int64, capacity),
	}, nil
}

// Activate sets the active scenario and discards whatever the previous scenario left behind
func (w *Window) Activate(name string, scale int) {
	w.lock.Lock()
	defer w.lock.Unlock()

	w.active = ActiveScenario{
		Name:  name,
		Scale: scale,
	}
	w.length = 0
}

// Active returns the active scenario
func (w *Window) Active() ActiveScenario {
	w.lock.Lock()
	defer w.lock.Unlock()

	return w.active
}

// Append stores a sample. A full window leaves both length and stored samples untouched
func (w *Window) Append(value int64) error {
	w.lock.Lock()
	defer w.lock.Unlock()

	if w.length == len(w.values) {
		return ErrCapacityExceeded
	}

	w.values[w.length] = value
	w.length++

	return nil
}

// DrainAndReset copies out the valid samples and empties the window in one critical section
func (w *Window) DrainAndReset() *Snapshot {
	w.lock.Lock()
	defer w.lock.Unlock()

	drained := make([]int64, w.length)
	copy(drained, w.values[:w.length])

	w.length = 0

	return &Snapshot{
		ActiveScenario: w.active,
		Values:         drained,
	}
}

func (w *Window) Len() int {
	w.lock.Lock()
	defer w.lock.Unlock()

	return w.length
}

func (w *Window) Capacity() int {
	return len(w.values)
}
