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

package harnessconfig

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type HarnessConfigTestSuite struct {
	suite.Suite
	reader *Reader
}

func (suite *HarnessConfigTestSuite) SetupTest() {
	var err error

	suite.reader, err = NewReader()
	suite.Require().NoError(err)
}

func (suite *HarnessConfigTestSuite) TestDefaultConfiguration() {
	config := suite.reader.GetDefaultConfiguration()
	suite.Require().NoError(config.Validate())

	suite.Require().Equal("test.metricsedgecases", config.Namespace)
	suite.Require().Equal(3*time.Hour, config.GetLifetime())
	suite.Require().Equal(10000, config.BufferCapacity)
	suite.Require().Equal([]float64{0.95, 0.99, 0.999}, config.Percentiles)
	suite.Require().Equal(time.Minute, config.Reporter.GetPeriod())
	suite.Require().Equal("dropwizard", config.Estimator.Kind)
	suite.Require().Len(config.Sinks, 1)
	suite.Require().Equal("logger", config.Sinks[0].Kind)

	suite.Require().Len(config.Scenarios, 3)

	for scenarioIndex, testCase := range []struct {
		name   string
		kind   string
		period time.Duration
		scale  int
	}{
		{name: "scenario1", kind: "uniform", period: 20 * time.Minute, scale: 1000000},
		{name: "scenario2", kind: "bimodal", period: 30 * time.Minute, scale: 1000000},
		{name: "scenario3", kind: "weibullTrace", period: time.Minute, scale: 1},
	} {
		scenario := config.Scenarios[scenarioIndex]
		suite.Require().Equal(testCase.name, scenario.Name)
		suite.Require().Equal(testCase.kind, scenario.Kind)
		suite.Require().Equal(testCase.period, scenario.GetPeriod())
		suite.Require().Equal(testCase.scale, scenario.Scale)
		suite.Require().Equal(time.Millisecond, scenario.GetUnit())
	}
}

func (suite *HarnessConfigTestSuite) TestReadFillsDefaults() {
	config := Config{}

	err := suite.reader.Read(strings.NewReader(`
namespace: staging.harness
lifetime: 10m
estimator:
  kind: tdigest
  attributes:
    compression: 200
sinks:
- kind: graphite
  attributes:
    address: carbon:2003
scenarios:
- name: quick
  kind: uniform
  period: 30s
  attributes:
    bound: 100
    limit: 50
`), &config)
	suite.Require().NoError(err)
	suite.Require().NoError(config.Validate())

	suite.Require().Equal("staging.harness", config.Namespace)
	suite.Require().Equal(10*time.Minute, config.GetLifetime())
	suite.Require().Equal(10000, config.BufferCapacity)
	suite.Require().Equal(time.Minute, config.Reporter.GetPeriod())
	suite.Require().Equal("tdigest", config.Estimator.Kind)
	suite.Require().Equal(float64(200), config.Estimator.Attributes["compression"])
	suite.Require().Equal("graphite", config.Sinks[0].Kind)

	suite.Require().Len(config.Scenarios, 1)
	suite.Require().Equal(30*time.Second, config.Scenarios[0].GetPeriod())
	suite.Require().Equal(1, config.Scenarios[0].Scale)
	suite.Require().Equal(time.Millisecond, config.Scenarios[0].GetUnit())
}

func (suite *HarnessConfigTestSuite) TestReadRejectsUnknownFields() {
	config := Config{}

	err := suite.reader.Read(strings.NewReader("namespace: a\nlifetyme: 1h\n"), &config)
	suite.Require().Error(err)
}

func (suite *HarnessConfigTestSuite) TestReadFileOrDefault() {
	config, err := suite.reader.ReadFileOrDefault(filepath.Join(suite.T().TempDir(), "missing.yaml"))
	suite.Require().NoError(err)
	suite.Require().Equal(suite.reader.GetDefaultConfiguration(), config)

	configurationPath := filepath.Join(suite.T().TempDir(), "harness.yaml")
	suite.Require().NoError(os.WriteFile(configurationPath, []byte("lifetime: 90m\n"), 0600))

	config, err = suite.reader.ReadFileOrDefault(configurationPath)
	suite.Require().NoError(err)
	suite.Require().NoError(config.Validate())
	suite.Require().Equal(90*time.Minute, config.GetLifetime())
	suite.Require().Len(config.Scenarios, 3)
}

func (suite *HarnessConfigTestSuite) TestValidate() {
	for _, testCase := range []struct {
		name   string
		modify func(config *Config)
	}{
		{name: "noNamespace", modify: func(config *Config) { config.Namespace = "" }},
		{name: "badLifetime", modify: func(config *Config) { config.Lifetime = "forever" }},
		{name: "zeroLifetime", modify: func(config *Config) { config.Lifetime = "0s" }},
		{name: "zeroCapacity", modify: func(config *Config) { config.BufferCapacity = 0 }},
		{name: "badPercentile", modify: func(config *Config) { config.Percentiles = []float64{95} }},
		{name: "badLoggerFormat", modify: func(config *Config) { config.Logger.Format = "xml" }},
		{name: "badLoggerLevel", modify: func(config *Config) { config.Logger.Level = "trace" }},
		{name: "badReporterSchedule", modify: func(config *Config) { config.Reporter.Schedule = "sometimes" }},
		{name: "sinkWithoutKind", modify: func(config *Config) { config.Sinks[0].Kind = "" }},
		{name: "noScenarios", modify: func(config *Config) { config.Scenarios = nil }},
		{name: "duplicateScenario", modify: func(config *Config) { config.Scenarios[1].Name = "scenario1" }},
		{name: "scenarioWithoutKind", modify: func(config *Config) { config.Scenarios[0].Kind = "" }},
		{name: "negativeScale", modify: func(config *Config) { config.Scenarios[0].Scale = -1 }},
		{name: "badPeriod", modify: func(config *Config) { config.Scenarios[0].Period = "20" }},
		{name: "badUnit", modify: func(config *Config) { config.Scenarios[0].Unit = "-1ms" }},
		{name: "badSchedule", modify: func(config *Config) { config.Scenarios[0].Schedule = "* *" }},
	} {
		suite.Run(testCase.name, func() {
			config := suite.reader.GetDefaultConfiguration()
			testCase.modify(config)

			suite.Require().Error(config.Validate())
		})
	}
}

func (suite *HarnessConfigTestSuite) TestSelectScenarios() {
	config := suite.reader.GetDefaultConfiguration()

	for _, testCase := range []struct {
		selector      string
		expectedNames []string
	}{
		{selector: "", expectedNames: []string{"scenario1", "scenario2", "scenario3"}},
		{selector: "2", expectedNames: []string{"scenario2"}},
		{selector: "scenario3", expectedNames: []string{"scenario3"}},
	} {
		selected, err := config.SelectScenarios(testCase.selector)
		suite.Require().NoError(err)

		var selectedNames []string
		for _, scenario := range selected {
			selectedNames = append(selectedNames, scenario.Name)
		}

		suite.Require().Equal(testCase.expectedNames, selectedNames)
	}

	// names only match exactly
	_, err := config.SelectScenarios("scenario")
	suite.Require().Error(err)
}

func TestHarnessConfigTestSuite(t *testing.T) {
	suite.Run(t, new(HarnessConfigTestSuite))
}
