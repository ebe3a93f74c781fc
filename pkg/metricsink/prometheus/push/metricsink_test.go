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

package prometheuspush

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/nuclio/percentile-harness/pkg/metricsink"
	"github.com/nuclio/percentile-harness/pkg/report"

	"github.com/nuclio/logger"
	nucliozap "github.com/nuclio/zap"
	"github.com/stretchr/testify/suite"
)

type pushRequest struct {
	method string
	path   string
	body   string
}

type PushSinkTestSuite struct {
	suite.Suite
	logger       logger.Logger
	server       *httptest.Server
	requestsLock sync.Mutex
	requests     []pushRequest
}

func (suite *PushSinkTestSuite) SetupSuite() {
	suite.logger, _ = nucliozap.NewNuclioZapTest("test")
}

func (suite *PushSinkTestSuite) SetupTest() {
	suite.requests = nil
	suite.server = httptest.NewServer(http.HandlerFunc(func(responseWriter http.ResponseWriter, request *http.Request) {
		body, _ := io.ReadAll(request.Body)

		suite.requestsLock.Lock()
		suite.requests = append(suite.requests, pushRequest{
			method: request.Method,
			path:   request.URL.Path,
			body:   string(body),
		})
		suite.requestsLock.Unlock()

		responseWriter.WriteHeader(http.StatusOK)
	}))
}

func (suite *PushSinkTestSuite) TearDownTest() {
	suite.server.Close()
}

func (suite *PushSinkTestSuite) TestPushOnEmit() {
	metricSink := suite.createSink(map[string]interface{}{
		"url":          suite.server.URL,
		"jobName":      "harness",
		"instanceName": "runner-1",
	})

	suite.Require().NoError(metricSink.Start())
	suite.Require().NoError(metricSink.Emit(suite.createReport()))
	<-metricSink.Stop()

	requests := suite.getRequests()
	suite.Require().Len(requests, 1)
	suite.Require().Equal(http.MethodPost, requests[0].method)
	suite.Require().Equal("/metrics/job/harness/instance/runner-1", requests[0].path)
}

func (suite *PushSinkTestSuite) TestPushPeriodically() {
	metricSink := suite.createSink(map[string]interface{}{
		"url":      suite.server.URL,
		"interval": "20ms",
	})

	suite.Require().NoError(metricSink.Start())

	// emitting only updates the gauges
	suite.Require().NoError(metricSink.Emit(suite.createReport()))

	suite.Require().Eventually(func() bool {
		return len(suite.getRequests()) >= 2
	}, 5*time.Second, 10*time.Millisecond)

	select {
	case <-metricSink.Stop():
	case <-time.After(5 * time.Second):
		suite.Fail("Sink did not stop")
	}

	for _, request := range suite.getRequests() {
		suite.Require().Equal("/metrics/job/percentile-harness", request.path)
	}
}

func (suite *PushSinkTestSuite) TestPushFailure() {
	metricSink := suite.createSink(map[string]interface{}{
		"url": suite.server.URL,
	})

	suite.server.Close()
	suite.Require().Error(metricSink.Emit(suite.createReport()))
}

func (suite *PushSinkTestSuite) createSink(attributes map[string]interface{}) *MetricSink {
	configuration, err := NewConfiguration(&metricsink.Configuration{
		Kind:       Kind,
		Name:       "gateway",
		Namespace:  "test",
		Attributes: attributes,
	})
	suite.Require().NoError(err)

	metricSink, err := newMetricSink(suite.logger, configuration)
	suite.Require().NoError(err)

	return metricSink
}

func (suite *PushSinkTestSuite) createReport() *report.Report {
	return &report.Report{
		Scenario:        "scenario1",
		Timestamp:       time.Now(),
		Percentiles:     []float64{0.99},
		RealCount:       500,
		RealPercentiles: []int64{990},
		EstimatorCount:  500,
		EstimatorPercentiles: []int64{
			985,
		},
	}
}

func (suite *PushSinkTestSuite) getRequests() []pushRequest {
	suite.requestsLock.Lock()
	defer suite.requestsLock.Unlock()

	return append([]pushRequest(nil), suite.requests...)
}

func TestPushSinkTestSuite(t *testing.T) {
	suite.Run(t, new(PushSinkTestSuite))
}
