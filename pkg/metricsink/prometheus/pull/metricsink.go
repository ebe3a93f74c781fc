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

// Package prometheuspull serves the latest reports on a scrape endpoint
package prometheuspull

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/nuclio/percentile-harness/pkg/common"
	"github.com/nuclio/percentile-harness/pkg/metricsink"
	"github.com/nuclio/percentile-harness/pkg/metricsink/prometheus"
	"github.com/nuclio/percentile-harness/pkg/report"

	"github.com/nuclio/errors"
	"github.com/nuclio/logger"
	prometheusclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	Kind = "prometheusPull"

	defaultListenAddress = ":8090"
	defaultPath          = "/metrics"
	shutdownTimeout      = 5 * time.Second
)

type Attributes struct {
	ListenAddress string
	Path          string
}

type Configuration struct {
	metricsink.Configuration
	Attributes
}

func NewConfiguration(metricSinkConfiguration *metricsink.Configuration) (*Configuration, error) {
	newConfiguration := Configuration{
		Configuration: *metricSinkConfiguration,
		Attributes: Attributes{
			ListenAddress: defaultListenAddress,
			Path:          defaultPath,
		},
	}

	if err := common.DecodeAttributes(metricSinkConfiguration.Attributes, &newConfiguration.Attributes); err != nil {
		return nil, errors.Wrap(err, "Failed to decode attributes")
	}

	return &newConfiguration, nil
}

type MetricSink struct {
	*metricsink.AbstractMetricSink
	configuration  *Configuration
	metricRegistry *prometheusclient.Registry
	gatherer       *prometheus.ReportGatherer
	listener       net.Listener
	server         *http.Server
}

func newMetricSink(parentLogger logger.Logger, configuration *Configuration) (*MetricSink, error) {
	newAbstractMetricSink, err := metricsink.NewAbstractMetricSink(parentLogger.GetChild(configuration.Name),
		Kind,
		&configuration.Configuration)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to create abstract metric sink")
	}

	newMetricPuller := &MetricSink{
		AbstractMetricSink: newAbstractMetricSink,
		configuration:      configuration,
		metricRegistry:     prometheusclient.NewRegistry(),
	}

	newMetricPuller.gatherer, err = prometheus.NewReportGatherer(configuration.Namespace, newMetricPuller.metricRegistry)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to create report gatherer")
	}

	newMetricPuller.Logger.InfoWith("Created",
		"listenAddress", configuration.ListenAddress,
		"path", configuration.Path)

	return newMetricPuller, nil
}

func (ms *MetricSink) Start() error {
	var err error

	ms.listener, err = net.Listen("tcp", ms.configuration.ListenAddress)
	if err != nil {
		return errors.Wrapf(err, "Failed to listen on %s", ms.configuration.ListenAddress)
	}

	mux := http.NewServeMux()
	mux.Handle(ms.configuration.Path, promhttp.HandlerFor(ms.metricRegistry, promhttp.HandlerOpts{}))

	ms.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go ms.serve()

	ms.Logger.DebugWith("Started", "address", ms.listener.Addr().String())

	return nil
}

func (ms *MetricSink) Stop() chan struct{} {
	if ms.server == nil {
		return ms.AbstractMetricSink.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := ms.server.Shutdown(ctx); err != nil {
		ms.Logger.WarnWith("Failed to shut down server gracefully", "err", err.Error())
	}

	return ms.StoppedChannel
}

func (ms *MetricSink) Emit(report *report.Report) error {
	ms.gatherer.Gather(report)

	return nil
}

// Addr returns the address the sink serves on, once started
func (ms *MetricSink) Addr() string {
	if ms.listener == nil {
		return ""
	}

	return ms.listener.Addr().String()
}

func (ms *MetricSink) serve() {
	defer close(ms.StoppedChannel)

	if err := ms.server.Serve(ms.listener); err != nil && err != http.ErrServerClosed {
		ms.Logger.WarnWith("Server stopped", "err", err.Error())
	}
}

type factory struct{}

func (f *factory) Create(parentLogger logger.Logger,
	metricSinkConfiguration *metricsink.Configuration) (metricsink.MetricSink, error) {
	configuration, err := NewConfiguration(metricSinkConfiguration)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to create prometheus pull configuration")
	}

	metricSink, err := newMetricSink(parentLogger, configuration)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to create prometheus pull metric sink")
	}

	return metricSink, nil
}

// register factory
func init() {
	metricsink.RegistrySingleton.Register(Kind, &factory{})
}
