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

// Package harness runs scenarios one after the other against an estimator, with a
// reporter comparing the estimator to the exact percentiles throughout
package harness

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/nuclio/percentile-harness/pkg/estimator"
	_ "github.com/nuclio/percentile-harness/pkg/estimator/ckms"
	_ "github.com/nuclio/percentile-harness/pkg/estimator/ddsketch"
	_ "github.com/nuclio/percentile-harness/pkg/estimator/dropwizard"
	_ "github.com/nuclio/percentile-harness/pkg/estimator/hdrhistogram"
	_ "github.com/nuclio/percentile-harness/pkg/estimator/tdigest"
	"github.com/nuclio/percentile-harness/pkg/harnessconfig"
	"github.com/nuclio/percentile-harness/pkg/metricsink"
	_ "github.com/nuclio/percentile-harness/pkg/metricsink/graphite"
	_ "github.com/nuclio/percentile-harness/pkg/metricsink/logger"
	_ "github.com/nuclio/percentile-harness/pkg/metricsink/prometheus/pull"
	_ "github.com/nuclio/percentile-harness/pkg/metricsink/prometheus/push"
	"github.com/nuclio/percentile-harness/pkg/percentile"
	"github.com/nuclio/percentile-harness/pkg/renderer"
	"github.com/nuclio/percentile-harness/pkg/reporter"
	"github.com/nuclio/percentile-harness/pkg/runner"
	"github.com/nuclio/percentile-harness/pkg/scenario"
	"github.com/nuclio/percentile-harness/pkg/scheduler"
	"github.com/nuclio/percentile-harness/pkg/window"

	"github.com/nuclio/errors"
	"github.com/nuclio/logger"
	"github.com/robfig/cron/v3"
	"github.com/rs/xid"
	"github.com/samber/lo"
)

const reporterSourceName = "reporter"

// Harness owns everything a run shares: the sample window, the estimators, the
// scheduler, the reporter and the sinks
type Harness struct {
	logger      logger.Logger
	config      *harnessconfig.Config
	runID       string
	window      *window.Window
	provider    estimator.Provider
	scheduler   *scheduler.Scheduler
	reporter    *reporter.Reporter
	metricSinks []metricsink.MetricSink
	renderer    *renderer.Renderer
}

type preparedScenario struct {
	config  *harnessconfig.Scenario
	runner  *runner.Runner
	oneShot bool
}

func NewHarness(parentLogger logger.Logger, config *harnessconfig.Config, output io.Writer) (*Harness, error) {
	var err error

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "Invalid configuration")
	}

	newHarness := &Harness{
		logger:   parentLogger.GetChild("harness"),
		config:   config,
		runID:    xid.New().String(),
		renderer: renderer.NewRenderer(output),
	}

	newHarness.window, err = window.NewWindow(config.BufferCapacity)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to create sample window")
	}

	newHarness.provider, err = estimator.NewProvider(newHarness.logger, &estimator.Configuration{
		Kind:        config.Estimator.Kind,
		Attributes:  config.Estimator.Attributes,
		Percentiles: config.Percentiles,
	})
	if err != nil {
		return nil, errors.Wrap(err, "Failed to create estimator provider")
	}

	newHarness.metricSinks, err = metricsink.NewMetricSinks(newHarness.logger, config.Sinks, config.Namespace)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to create metric sinks")
	}

	newHarness.reporter, err = reporter.NewReporter(newHarness.logger,
		&reporter.Configuration{
			Namespace:   config.Namespace,
			Percentiles: config.Percentiles,
		},
		newHarness.window,
		newHarness.provider,
		newHarness.metricSinks)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to create reporter")
	}

	newHarness.scheduler = scheduler.NewScheduler(newHarness.logger)

	return newHarness, nil
}

// SelectScenarios returns the scenarios a selector picks
func (h *Harness) SelectScenarios(selector string) ([]harnessconfig.Scenario, error) {
	return h.config.SelectScenarios(selector)
}

// Run runs the selected scenarios in order, each for the configured lifetime, and
// returns once the last one stopped or ctx is done
func (h *Harness) Run(ctx context.Context, selector string) error {
	selected, err := h.SelectScenarios(selector)
	if err != nil {
		return errors.Wrap(err, "Failed to select scenarios")
	}

	defer h.provider.Stop()

	// create everything up front so configuration errors surface before anything runs
	preparedScenarios, err := h.prepareScenarios(selected)
	if err != nil {
		return errors.Wrap(err, "Failed to prepare scenarios")
	}

	h.logger.InfoWith("Starting",
		"runID", h.runID,
		"scenarios", lo.Map(selected, func(scenarioConfig harnessconfig.Scenario, _ int) string {
			return scenarioConfig.Name
		}),
		"estimator", h.provider.GetKind(),
		"lifetime", h.config.GetLifetime().String(),
		"namespace", h.config.Namespace)

	defer h.stopMetricSinks()

	if err := h.startMetricSinks(); err != nil {
		return errors.Wrap(err, "Failed to start metric sinks")
	}

	if err := h.startReporter(ctx); err != nil {
		return errors.Wrap(err, "Failed to start reporter")
	}

	for _, prepared := range preparedScenarios {
		if ctx.Err() != nil {
			h.logger.WarnWith("Run cancelled, skipping remaining scenarios", "next", prepared.config.Name)
			break
		}

		if err := h.runScenario(ctx, prepared); err != nil {
			h.stopSource(reporterSourceName)
			return errors.Wrapf(err, "Failed to run scenario %s", prepared.config.Name)
		}
	}

	h.stopSource(reporterSourceName)

	h.logger.InfoWith("Done", "runID", h.runID)

	return nil
}

func (h *Harness) GetRunID() string {
	return h.runID
}

func (h *Harness) prepareScenarios(selected []harnessconfig.Scenario) ([]*preparedScenario, error) {
	var preparedScenarios []*preparedScenario

	for scenarioIndex := range selected {
		scenarioConfig := &selected[scenarioIndex]

		generator, err := scenario.NewGenerator(scenarioConfig.Kind, scenarioConfig.Attributes)
		if err != nil {
			return nil, errors.Wrapf(err, "Failed to create generator of %s", scenarioConfig.Name)
		}

		scenarioRunner, err := runner.NewRunner(h.logger, &runner.Configuration{
			Name:      scenarioConfig.Name,
			Generator: generator,
			Estimator: h.provider.Get(scenarioConfig.Name),
			Window:    h.window,
			Unit:      scenarioConfig.GetUnit(),
		})
		if err != nil {
			return nil, errors.Wrapf(err, "Failed to create runner of %s", scenarioConfig.Name)
		}

		preparedScenarios = append(preparedScenarios, &preparedScenario{
			config:  scenarioConfig,
			runner:  scenarioRunner,
			oneShot: generator.Mode() == scenario.ModeOneShot,
		})
	}

	return preparedScenarios, nil
}

func (h *Harness) startReporter(ctx context.Context) error {
	anchor := time.Now()
	period := h.config.Reporter.GetPeriod()

	// the first report covers one full period
	schedule, err := h.createSchedule(h.config.Reporter.Schedule, anchor, period, period)
	if err != nil {
		return errors.Wrap(err, "Failed to create reporter schedule")
	}

	if _, err := h.scheduler.Start(ctx, &scheduler.SourceConfiguration{
		Name:     reporterSourceName,
		Schedule: schedule,
		Anchor:   anchor,
		Grace:    period,
		Task:     h.reporter.Report,
	}); err != nil {
		return errors.Wrap(err, "Failed to schedule reporter")
	}

	return nil
}

func (h *Harness) runScenario(ctx context.Context, prepared *preparedScenario) error {
	scenarioConfig := prepared.config
	period := scenarioConfig.GetPeriod()
	anchor := time.Now()

	var schedule cron.Schedule
	var err error

	if prepared.oneShot {
		schedule = scheduler.NewOnce(anchor)
	} else if schedule, err = h.createSchedule(scenarioConfig.Schedule, anchor, 0, period); err != nil {
		return errors.Wrap(err, "Failed to create scenario schedule")
	}

	h.window.Activate(scenarioConfig.Name, scenarioConfig.Scale)

	h.logger.InfoWith("Scenario started",
		"name", scenarioConfig.Name,
		"kind", scenarioConfig.Kind,
		"period", period.String(),
		"scale", scenarioConfig.Scale,
		"oneShot", prepared.oneShot)

	if _, err := h.scheduler.Start(ctx, &scheduler.SourceConfiguration{
		Name:     scenarioConfig.Name,
		Schedule: schedule,
		Anchor:   anchor,
		Grace:    period,
		Task:     prepared.runner.Run,
	}); err != nil {
		return errors.Wrap(err, "Failed to schedule scenario")
	}

	select {
	case <-time.After(h.config.GetLifetime()):
	case <-ctx.Done():
	}

	h.stopSource(scenarioConfig.Name)

	runnerStatistics := prepared.runner.GetStatistics()
	h.logger.InfoWith("Scenario stopped",
		"name", scenarioConfig.Name,
		"runs", runnerStatistics.Runs,
		"recorded", runnerStatistics.Recorded,
		"dropped", runnerStatistics.Dropped,
		"interruptedWaits", runnerStatistics.InterruptedWaits)

	h.summarizeAccuracy(scenarioConfig.Name)

	return nil
}

// createSchedule returns the cron spec's schedule when there is one, a fixed rate otherwise
func (h *Harness) createSchedule(spec string,
	anchor time.Time,
	initialDelay time.Duration,
	period time.Duration) (cron.Schedule, error) {
	if spec != "" {
		return scheduler.ParseSchedule(spec)
	}

	return scheduler.NewFixedRate(anchor, initialDelay, period)
}

func (h *Harness) stopSource(name string) {
	err := h.scheduler.Stop(name)

	switch {
	case err == scheduler.ErrShutdownTimeout:
		h.logger.WarnWith("Source did not stop in time, moving on", "name", name)
	case err != nil:
		h.logger.WarnWith("Failed to stop source", "name", name, "err", errors.Cause(err).Error())
	}
}

func (h *Harness) summarizeAccuracy(scenarioName string) {
	scenarioAccuracy := h.reporter.GetAccuracy(scenarioName)
	if scenarioAccuracy == nil || scenarioAccuracy.GetReports() == 0 {
		h.logger.InfoWith("No reports to summarize", "name", scenarioName)
		return
	}

	summaries := scenarioAccuracy.Summarize()

	var records [][]interface{}
	for _, summary := range summaries {
		h.logger.InfoWith("Estimator accuracy",
			"name", scenarioName,
			"percentile", summary.Percentile,
			"reports", summary.Reports,
			"meanAbsoluteError", summary.MeanAbsoluteError,
			"maxAbsoluteError", summary.MaxAbsoluteError,
			"meanRelativeError", summary.MeanRelativeError)

		records = append(records, []interface{}{
			percentile.Label(summary.Percentile),
			summary.Reports,
			fmt.Sprintf("%.2f", summary.MeanAbsoluteError),
			fmt.Sprintf("%.2f", summary.MaxAbsoluteError),
			fmt.Sprintf("%.2f%%", summary.MeanRelativeError*100),
		})
	}

	h.renderer.RenderTable(fmt.Sprintf("%s accuracy (%s)", scenarioName, h.provider.GetKind()),
		[]interface{}{"Percentile", "Reports", "Mean abs error", "Max abs error", "Mean rel error"},
		records)
}

func (h *Harness) startMetricSinks() error {
	for _, metricSink := range h.metricSinks {
		if err := metricSink.Start(); err != nil {
			return errors.Wrapf(err, "Failed to start metric sink %s", metricSink.GetName())
		}
	}

	return nil
}

func (h *Harness) stopMetricSinks() {
	for _, metricSink := range h.metricSinks {
		<-metricSink.Stop()
	}
}
