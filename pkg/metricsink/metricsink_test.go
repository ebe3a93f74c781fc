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

package metricsink_test

import (
	"testing"

	"github.com/nuclio/percentile-harness/pkg/metricsink"
	_ "github.com/nuclio/percentile-harness/pkg/metricsink/graphite"
	_ "github.com/nuclio/percentile-harness/pkg/metricsink/logger"
	_ "github.com/nuclio/percentile-harness/pkg/metricsink/prometheus/pull"
	_ "github.com/nuclio/percentile-harness/pkg/metricsink/prometheus/push"

	"github.com/nuclio/logger"
	nucliozap "github.com/nuclio/zap"
	"github.com/stretchr/testify/suite"
)

type MetricSinkTestSuite struct {
	suite.Suite
	logger logger.Logger
}

func (suite *MetricSinkTestSuite) SetupSuite() {
	suite.logger, _ = nucliozap.NewNuclioZapTest("test")
}

func (suite *MetricSinkTestSuite) TestKindsRegistered() {
	suite.Require().Equal([]string{
		"graphite",
		"logger",
		"prometheusPull",
		"prometheusPush",
	}, metricsink.RegistrySingleton.GetKinds())
}

func (suite *MetricSinkTestSuite) TestNewMetricSinks() {
	metricSinks, err := metricsink.NewMetricSinks(suite.logger, []metricsink.Configuration{
		{Kind: "logger"},
		{Kind: "graphite", Name: "carbon", Attributes: map[string]interface{}{"address": "carbon:2003"}},
		{Kind: "prometheusPush", Disabled: true},
	}, "test.metricsedgecases")
	suite.Require().NoError(err)
	suite.Require().Len(metricSinks, 2)

	// names default to the kind
	suite.Require().Equal("logger", metricSinks[0].GetName())
	suite.Require().Equal("logger", metricSinks[0].GetKind())
	suite.Require().Equal("carbon", metricSinks[1].GetName())
	suite.Require().Equal("graphite", metricSinks[1].GetKind())

	for _, metricSink := range metricSinks {
		suite.Require().NoError(metricSink.Start())
		<-metricSink.Stop()
	}
}

func (suite *MetricSinkTestSuite) TestInvalidConfiguration() {
	for _, testCase := range []struct {
		name          string
		configuration metricsink.Configuration
	}{
		{name: "unknownKind", configuration: metricsink.Configuration{Kind: "statsd"}},
		{name: "unknownAttribute", configuration: metricsink.Configuration{
			Kind:       "logger",
			Attributes: map[string]interface{}{"color": "blue"},
		}},
		{name: "unknownOutput", configuration: metricsink.Configuration{
			Kind:       "logger",
			Attributes: map[string]interface{}{"output": "printer"},
		}},
		{name: "graphiteBadAddress", configuration: metricsink.Configuration{
			Kind:       "graphite",
			Attributes: map[string]interface{}{"address": "no-port"},
		}},
		{name: "pushWithoutURL", configuration: metricsink.Configuration{Kind: "prometheusPush"}},
	} {
		suite.Run(testCase.name, func() {
			metricSink, err := metricsink.NewMetricSink(suite.logger, &testCase.configuration)
			suite.Require().Error(err)
			suite.Require().Nil(metricSink)
		})
	}
}

func TestMetricSinkTestSuite(t *testing.T) {
	suite.Run(t, new(MetricSinkTestSuite))
}
