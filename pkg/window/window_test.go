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

package window

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"
)

type WindowTestSuite struct {
	suite.Suite
	window *Window
}

func (suite *WindowTestSuite) SetupTest() {
	var err error

	suite.window, err = NewWindow(4)
	suite.Require().NoError(err)
}

func (suite *WindowTestSuite) TestAppendAndDrain() {
	suite.window.Activate("scenario1", 1000)

	for _, value := range []int64{3, 1, 2} {
		suite.Require().NoError(suite.window.Append(value))
	}

	snapshot := suite.window.DrainAndReset()
	suite.Require().Equal("scenario1", snapshot.Name)
	suite.Require().Equal(1000, snapshot.Scale)
	suite.Require().Equal([]int64{3, 1, 2}, snapshot.Values)
	suite.Require().Zero(suite.window.Len())

	// the drained copy is independent of the window
	suite.Require().NoError(suite.window.Append(9))
	suite.Require().Equal([]int64{3, 1, 2}, snapshot.Values)
}

func (suite *WindowTestSuite) TestAppendWhenFull() {
	for value := int64(0); value < 4; value++ {
		suite.Require().NoError(suite.window.Append(value))
	}

	suite.Require().Equal(ErrCapacityExceeded, suite.window.Append(100))
	suite.Require().Equal(4, suite.window.Len())
	suite.Require().Equal([]int64{0, 1, 2, 3}, suite.window.DrainAndReset().Values)

	// drained windows accept samples again
	suite.Require().NoError(suite.window.Append(100))
}

func (suite *WindowTestSuite) TestDrainEmpty() {
	snapshot := suite.window.DrainAndReset()
	suite.Require().Empty(snapshot.Name)
	suite.Require().Empty(snapshot.Values)
}

func (suite *WindowTestSuite) TestActivateClears() {
	suite.window.Activate("scenario1", 1)
	suite.Require().NoError(suite.window.Append(1))

	suite.window.Activate("scenario2", 1000000)
	suite.Require().Zero(suite.window.Len())
	suite.Require().Equal(ActiveScenario{Name: "scenario2", Scale: 1000000}, suite.window.Active())
}

func (suite *WindowTestSuite) TestConcurrentAppendAndDrain() {
	concurrentWindow, err := NewWindow(DefaultCapacity)
	suite.Require().NoError(err)

	var waitGroup sync.WaitGroup
	var drained []int64

	for appenderIndex := 0; appenderIndex < 4; appenderIndex++ {
		waitGroup.Add(1)

		go func() {
			defer waitGroup.Done()

			for value := 0; value < 1000; value++ {
				suite.NoError(concurrentWindow.Append(int64(value)))
			}
		}()
	}

	drainDone := make(chan struct{})
	go func() {
		defer close(drainDone)

		for drainIndex := 0; drainIndex < 100; drainIndex++ {
			drained = append(drained, concurrentWindow.DrainAndReset().Values...)
		}
	}()

	waitGroup.Wait()
	<-drainDone

	drained = append(drained, concurrentWindow.DrainAndReset().Values...)

	// every sample is drained exactly once
	suite.Require().Len(drained, 4000)
}

func (suite *WindowTestSuite) TestInvalidCapacity() {
	_, err := NewWindow(0)
	suite.Require().Error(err)
}

func TestWindowTestSuite(t *testing.T) {
	suite.Run(t, new(WindowTestSuite))
}
