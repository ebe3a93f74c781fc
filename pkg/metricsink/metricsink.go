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

// Package metricsink delivers reports to wherever they are charted
package metricsink

import (
	"sync"

	"github.com/nuclio/percentile-harness/pkg/report"

	"github.com/nuclio/logger"
)

type MetricSink interface {

	// Start starts the sink's background work, if any
	Start() error

	// Stop stops the sink, returns a channel that is closed when the sink actually stops
	Stop() chan struct{}

	// Emit delivers one report
	Emit(report *report.Report) error

	// GetKind returns the kind of metric sink
	GetKind() string

	// GetName returns the name of metric sink
	GetName() string
}

// AbstractMetricSink is the base struct for all metric sinks
type AbstractMetricSink struct {
	Logger         logger.Logger
	Name           string
	Kind           string
	Namespace      string
	StopChannel    chan struct{}
	StoppedChannel chan struct{}
	stopOnce       sync.Once
}

// NewAbstractMetricSink creates a new abstract metric sink
func NewAbstractMetricSink(logger logger.Logger,
	kind string,
	configuration *Configuration) (*AbstractMetricSink, error) {
	return &AbstractMetricSink{
		Logger:         logger,
		Kind:           kind,
		Name:           configuration.Name,
		Namespace:      configuration.Namespace,
		StopChannel:    make(chan struct{}),
		StoppedChannel: make(chan struct{}),
	}, nil
}

// GetKind returns the kind of metric sink
func (ams *AbstractMetricSink) GetKind() string {
	return ams.Kind
}

// GetName returns the name of metric sink
func (ams *AbstractMetricSink) GetName() string {
	return ams.Name
}

// Start does nothing for sinks without background work
func (ams *AbstractMetricSink) Start() error {
	return nil
}

// Stop closes both channels, as there is no background work to wait for
func (ams *AbstractMetricSink) Stop() chan struct{} {
	ams.stopOnce.Do(func() {
		close(ams.StopChannel)
		close(ams.StoppedChannel)
	})

	return ams.StoppedChannel
}
