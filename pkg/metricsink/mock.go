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

package metricsink

import (
	"github.com/nuclio/percentile-harness/pkg/report"

	"github.com/stretchr/testify/mock"
)

type MockMetricSink struct {
	mock.Mock
	*AbstractMetricSink
}

func NewMockMetricSink(name string) *MockMetricSink {
	return &MockMetricSink{
		AbstractMetricSink: &AbstractMetricSink{
			Name:           name,
			Kind:           "mock",
			StopChannel:    make(chan struct{}),
			StoppedChannel: make(chan struct{}),
		},
	}
}

func (m *MockMetricSink) Emit(report *report.Report) error {
	args := m.Called(report)
	return args.Error(0)
}
