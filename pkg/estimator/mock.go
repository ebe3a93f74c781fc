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

	"github.com/stretchr/testify/mock"
)

type MockEstimator struct {
	mock.Mock
}

func (m *MockEstimator) Update(duration time.Duration) {
	m.Called(duration)
}

// Time records the call and then runs f, so tests observe whatever f does
func (m *MockEstimator) Time(f func()) {
	m.Called(f)
	f()
}

func (m *MockEstimator) Count() int64 {
	args := m.Called()
	return args.Get(0).(int64)
}

func (m *MockEstimator) Rate1() float64 {
	args := m.Called()
	return args.Get(0).(float64)
}

func (m *MockEstimator) Percentile(p float64) float64 {
	args := m.Called(p)
	return args.Get(0).(float64)
}

type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) Get(name string) Estimator {
	args := m.Called(name)
	return args.Get(0).(Estimator)
}

func (m *MockProvider) GetKind() string {
	return "mock"
}

func (m *MockProvider) Stop() {
	m.Called()
}
