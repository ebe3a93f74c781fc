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

package reporter

import (
	"context"
	"testing"
	"time"

	"github.com/nuclio/percentile-harness/pkg/estimator"
	"github.com/nuclio/percentile-harness/pkg/metricsink"
	"github.com/nuclio/percentile-harness/pkg/report"
	"github.com/nuclio/percentile-harness/pkg/window"

	"github.com/nuclio/errors"
	"github.com/nuclio/logger"
	nucliozap "github.com/nuclio/zap"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type ReporterTestSuite struct {
	suite.Suite
	logger        logger.Logger
	ctx           context.Context
	window        *window.Window
	mockProvider  *estimator.MockProvider
	mockEstimator *estimator.MockEstimator
	mockSinks     []*metricsink.MockMetricSink
	reporter      *Reporter
	now           time.Time
}

func (suite *ReporterTestSuite) SetupSuite() {
	suite.logger, _ = nucliozap.NewNuclioZapTest("test")
	suite.ctx = context.Background()
	suite.now = time.Unix(1600000000, 700000000)
}

func (suite *ReporterTestSuite) SetupTest() {
	var err error

	suite.window, err = window.NewWindow(window.DefaultCapacity)
	suite.Require().NoError(err)

	suite.mockProvider = &estimator.MockProvider{}
	suite.mockEstimator = &estimator.MockEstimator{}
	suite.mockSinks = []*metricsink.MockMetricSink{
		metricsink.NewMockMetricSink("first"),
		metricsink.NewMockMetricSink("second"),
	}

	suite.reporter, err = NewReporter(suite.logger,
		&Configuration{Namespace: "test.metricsedgecases"},
		suite.window,
		suite.mockProvider,
		[]metricsink.MetricSink{suite.mockSinks[0], suite.mockSinks[1]})
	suite.Require().NoError(err)

	suite.reporter.now = func() time.Time {
		return suite.now
	}
}

func (suite *ReporterTestSuite) TestNoActiveScenario() {
	suite.Require().NoError(suite.window.Append(5))

	suite.reporter.Report(suite.ctx)

	// the stray sample is drained all the same
	suite.Require().Zero(suite.window.Len())
	suite.mockProvider.AssertNotCalled(suite.T(), "Get", mock.Anything)

	for _, mockSink := range suite.mockSinks {
		mockSink.AssertNotCalled(suite.T(), "Emit", mock.Anything)
	}
}

func (suite *ReporterTestSuite) TestRampReport() {
	suite.window.Activate("scenario1", 1000000)
	for value := int64(1000); value >= 1; value-- {
		suite.Require().NoError(suite.window.Append(value))
	}

	suite.mockEstimatorReturns(1500, 0.5, map[float64]float64{
		0.95:  950400000,
		0.99:  990999999,
		0.999: 1001000000,
	})

	var emitted *report.Report
	for _, mockSink := range suite.mockSinks {
		mockSink.On("Emit", mock.Anything).Run(func(args mock.Arguments) {
			emitted = args.Get(0).(*report.Report)
		}).Return(nil).Once()
	}

	suite.reporter.Report(suite.ctx)

	for _, mockSink := range suite.mockSinks {
		mockSink.AssertExpectations(suite.T())
	}

	suite.Require().NotNil(emitted)
	suite.Require().Equal(&report.Report{
		Scenario:               "scenario1",
		Timestamp:              time.Unix(1600000000, 0),
		Percentiles:            []float64{0.95, 0.99, 0.999},
		RealCount:              1000,
		RealPercentiles:        []int64{951, 991, 1000},
		EstimatorCount:         1500,
		EstimatorOneMinuteRate: 30,
		EstimatorPercentiles:   []int64{950, 990, 1001},
	}, emitted)

	suite.Require().Equal([]string{
		"test.metricsedgecases.scenario1.real.count 1000 1600000000",
		"test.metricsedgecases.scenario1.real.95percentile 951 1600000000",
		"test.metricsedgecases.scenario1.real.99percentile 991 1600000000",
		"test.metricsedgecases.scenario1.real.999percentile 1000 1600000000",
		"test.metricsedgecases.scenario1.estimator.count 1500 1600000000",
		"test.metricsedgecases.scenario1.estimator.oneminuterate 30 1600000000",
		"test.metricsedgecases.scenario1.estimator.95percentile 950 1600000000",
		"test.metricsedgecases.scenario1.estimator.99percentile 990 1600000000",
		"test.metricsedgecases.scenario1.estimator.999percentile 1001 1600000000",
	}, emitted.Lines("test.metricsedgecases"))

	// the window was reset by the drain
	suite.Require().Zero(suite.window.Len())
}

func (suite *ReporterTestSuite) TestEmptyWindowReportsZeros() {
	suite.window.Activate("scenario3", 1)

	suite.mockEstimatorReturns(0, 0, map[float64]float64{
		0.95:  0,
		0.99:  0,
		0.999: 0,
	})

	var emitted *report.Report
	for _, mockSink := range suite.mockSinks {
		mockSink.On("Emit", mock.Anything).Run(func(args mock.Arguments) {
			emitted = args.Get(0).(*report.Report)
		}).Return(nil)
	}

	suite.reporter.Report(suite.ctx)

	suite.Require().NotNil(emitted)
	suite.Require().Zero(emitted.RealCount)
	suite.Require().Equal([]int64{0, 0, 0}, emitted.RealPercentiles)

	// empty windows say nothing about accuracy
	suite.Require().Zero(suite.reporter.GetAccuracy("scenario3").GetReports())
}

func (suite *ReporterTestSuite) TestFailingSinkDoesNotStopOthers() {
	suite.window.Activate("scenario2", 1000000)
	suite.Require().NoError(suite.window.Append(30))

	suite.mockEstimatorReturns(1, 0, map[float64]float64{
		0.95:  30000000,
		0.99:  30000000,
		0.999: 30000000,
	})

	suite.mockSinks[0].On("Emit", mock.Anything).Return(errors.New("connection refused")).Once()
	suite.mockSinks[1].On("Emit", mock.Anything).Return(nil).Once()

	suite.reporter.Report(suite.ctx)

	suite.mockSinks[0].AssertExpectations(suite.T())
	suite.mockSinks[1].AssertExpectations(suite.T())
}

func (suite *ReporterTestSuite) TestAccuracyAccumulates() {
	suite.mockEstimatorReturns(1, 0, map[float64]float64{
		0.95:  12000000,
		0.99:  12000000,
		0.999: 12000000,
	})

	for _, mockSink := range suite.mockSinks {
		mockSink.On("Emit", mock.Anything).Return(nil)
	}

	for _, value := range []int64{10, 8} {
		suite.window.Activate("scenario1", 1000000)
		suite.Require().NoError(suite.window.Append(value))
		suite.reporter.Report(suite.ctx)
	}

	scenarioAccuracy := suite.reporter.GetAccuracy("scenario1")
	suite.Require().NotNil(scenarioAccuracy)
	suite.Require().Equal(2, scenarioAccuracy.GetReports())

	summaries := scenarioAccuracy.Summarize()
	suite.Require().Len(summaries, 3)

	// estimated 12 against exact 10 and 8
	suite.Require().Equal(0.95, summaries[0].Percentile)
	suite.Require().InDelta(3.0, summaries[0].MeanAbsoluteError, 1e-9)
	suite.Require().InDelta(4.0, summaries[0].MaxAbsoluteError, 1e-9)
	suite.Require().InDelta((0.2+0.5)/2, summaries[0].MeanRelativeError, 1e-9)
}

func (suite *ReporterTestSuite) TestInvalidConfiguration() {
	for _, testCase := range []struct {
		name          string
		configuration Configuration
	}{
		{name: "noNamespace", configuration: Configuration{}},
		{name: "percentileAboveOne", configuration: Configuration{Namespace: "ns", Percentiles: []float64{1.5}}},
		{name: "zeroPercentile", configuration: Configuration{Namespace: "ns", Percentiles: []float64{0}}},
	} {
		suite.Run(testCase.name, func() {
			reporter, err := NewReporter(suite.logger, &testCase.configuration, suite.window, suite.mockProvider, nil)
			suite.Require().Error(err)
			suite.Require().Nil(reporter)
		})
	}
}

func (suite *ReporterTestSuite) mockEstimatorReturns(count int64, rate1 float64, percentiles map[float64]float64) {
	suite.mockProvider.On("Get", mock.Anything).Return(suite.mockEstimator)
	suite.mockEstimator.On("Count").Return(count)
	suite.mockEstimator.On("Rate1").Return(rate1)

	for p, value := range percentiles {
		suite.mockEstimator.On("Percentile", p).Return(value)
	}
}

type AccuracyTestSuite struct {
	suite.Suite
}

func (suite *AccuracyTestSuite) TestZeroRealValuesSkipRelativeError() {
	accuracy := NewAccuracy("scenario", []float64{0.5})

	accuracy.Add(&report.Report{
		RealCount:            3,
		RealPercentiles:      []int64{0},
		EstimatorPercentiles: []int64{2},
	})

	summaries := accuracy.Summarize()
	suite.Require().Equal([]AccuracySummary{
		{
			Percentile:        0.5,
			Reports:           1,
			MeanAbsoluteError: 2,
			MaxAbsoluteError:  2,
			MeanRelativeError: 0,
		},
	}, summaries)
}

func (suite *AccuracyTestSuite) TestEmpty() {
	accuracy := NewAccuracy("scenario", []float64{0.95, 0.99})

	suite.Require().Equal("scenario", accuracy.GetScenario())
	suite.Require().Equal([]AccuracySummary{
		{Percentile: 0.95},
		{Percentile: 0.99},
	}, accuracy.Summarize())
}

func TestReporterTestSuite(t *testing.T) {
	suite.Run(t, new(ReporterTestSuite))
}

func TestAccuracyTestSuite(t *testing.T) {
	suite.Run(t, new(AccuracyTestSuite))
}
