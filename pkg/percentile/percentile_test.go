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

package percentile

import (
	"math"
	"testing"

	"github.com/stretchr/testify/suite"
)

type PercentileTestSuite struct {
	suite.Suite
}

func (suite *PercentileTestSuite) TestOfSorted() {
	sorted := make([]int64, 1000)
	for index := range sorted {
		sorted[index] = int64(index + 1)
	}

	for _, testCase := range []struct {
		name     string
		p        float64
		expected int64
	}{
		{name: "p95", p: 0.95, expected: 951},
		{name: "p99", p: 0.99, expected: 991},
		{name: "p999", p: 0.999, expected: 1000},
		{name: "p50", p: 0.5, expected: 501},
		{name: "p100", p: 1, expected: 1000},
	} {
		suite.Run(testCase.name, func() {
			suite.Require().Equal(testCase.expected, OfSorted(sorted, testCase.p))

			// same input, same answer
			suite.Require().Equal(testCase.expected, OfSorted(sorted, testCase.p))
		})
	}
}

func (suite *PercentileTestSuite) TestEmptyWindowIsZero() {
	for _, p := range Default {
		suite.Require().Zero(OfSorted(nil, p))
	}

	suite.Require().Equal([]int64{0, 0, 0}, OfValues([]int64{}, Default))
}

func (suite *PercentileTestSuite) TestIndexClampsSmallWindows() {
	for _, testCase := range []struct {
		name     string
		n        int
		p        float64
		expected int
	}{
		{name: "SingleSample", n: 1, p: 0.999, expected: 0},
		{name: "UnderThousand", n: 500, p: 0.999, expected: 499},
		{name: "ExactlyThousand", n: 1000, p: 0.999, expected: 999},
		{name: "AboveThousand", n: 10000, p: 0.999, expected: 9990},
		{name: "FullPercentile", n: 10, p: 1, expected: 9},
	} {
		suite.Run(testCase.name, func() {
			index := Index(testCase.n, testCase.p)
			suite.Require().Equal(testCase.expected, index)
			suite.Require().GreaterOrEqual(index, 0)
			suite.Require().Less(index, testCase.n)
		})
	}
}

func (suite *PercentileTestSuite) TestOfValuesDoesNotSortInput() {
	values := []int64{30, 10, 20}

	results := OfValues(values, []float64{0.5, 0.999})
	suite.Require().Equal([]int64{20, 30}, results)
	suite.Require().Equal([]int64{30, 10, 20}, values)
}

func (suite *PercentileTestSuite) TestBimodalWindow() {
	values := make([]int64, 0, 10000)
	for index := 0; index < 10000; index++ {
		if index < 9960 {
			values = append(values, 30)
		} else {
			values = append(values, 15000)
		}
	}

	suite.Require().Equal([]int64{30, 30, 15000}, OfValues(values, Default))
}

func (suite *PercentileTestSuite) TestValidate() {
	suite.Require().NoError(Validate(Default))
	suite.Require().NoError(Validate([]float64{1}))
	suite.Require().Error(Validate(nil))
	suite.Require().Error(Validate([]float64{0}))
	suite.Require().Error(Validate([]float64{1.5}))
	suite.Require().Error(Validate([]float64{math.NaN()}))
}

func (suite *PercentileTestSuite) TestLabel() {
	for p, expected := range map[float64]string{
		0.95:   "95",
		0.99:   "99",
		0.999:  "999",
		0.5:    "50",
		0.75:   "75",
		0.9999: "9999",
		1:      "100",
	} {
		suite.Require().Equal(expected, Label(p), "p=%v", p)
	}
}

func TestPercentileTestSuite(t *testing.T) {
	suite.Run(t, new(PercentileTestSuite))
}
