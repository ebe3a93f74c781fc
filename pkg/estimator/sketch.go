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
	"time"

	"github.com/rcrowley/go-metrics"
)

// Sketch is the quantile part of an estimator. Sketches need not be thread safe
type Sketch interface {
	Add(nanoseconds float64)
	Quantile(p float64) float64
}

// SketchEstimator adds locking, a count and a one-minute rate (a go-metrics meter, the
// same one a dropwizard timer uses) around a quantile sketch
type SketchEstimator struct {
	lock   sync.Mutex
	sketch Sketch
	meter  metrics.Meter
}

func NewSketchEstimator(sketch Sketch) *SketchEstimator {
	return &SketchEstimator{
		sketch: sketch,
		meter:  metrics.NewMeter(),
	}
}

func (se *SketchEstimator) Update(duration time.Duration) {
	se.lock.Lock()
	se.sketch.Add(float64(duration.Nanoseconds()))
	se.lock.Unlock()

	se.meter.Mark(1)
}

func (se *SketchEstimator) Time(f func()) {
	start := time.Now()
	f()
	se.Update(time.Since(start))
}

func (se *SketchEstimator) Count() int64 {
	return se.meter.Count()
}

func (se *SketchEstimator) Rate1() float64 {
	return se.meter.Rate1()
}

func (se *SketchEstimator) Percentile(p float64) float64 {
	if se.Count() == 0 {
		return 0
	}

	se.lock.Lock()
	defer se.lock.Unlock()

	return se.sketch.Quantile(p)
}

// Stop detaches the meter from the go-metrics ticker
func (se *SketchEstimator) Stop() {
	se.meter.Stop()
}
