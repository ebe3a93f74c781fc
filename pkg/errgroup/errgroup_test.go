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

package errgroup

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/nuclio/errors"
	"github.com/nuclio/logger"
	nucliozap "github.com/nuclio/zap"
	"github.com/stretchr/testify/suite"
)

type ErrGroupTestSuite struct {
	suite.Suite
	logger logger.Logger
	ctx    context.Context
}

func (suite *ErrGroupTestSuite) SetupTest() {
	suite.logger, _ = nucliozap.NewNuclioZapTest("test")
	suite.ctx = context.Background()
}

func (suite *ErrGroupTestSuite) TestAllGoroutinesRun() {
	var callCount int64

	errGroup, _ := WithContext(suite.ctx, suite.logger)
	for goroutineIndex := 0; goroutineIndex < 10; goroutineIndex++ {
		errGroup.Go("count", func() error {
			atomic.AddInt64(&callCount, 1)
			return nil
		})
	}

	suite.Require().NoError(errGroup.Wait())
	suite.Require().Equal(int64(10), atomic.LoadInt64(&callCount))
}

func (suite *ErrGroupTestSuite) TestPanicBecomesError() {
	errGroup, errGroupCtx := WithContext(suite.ctx, suite.logger)

	errGroup.Go("panicking", func() error {
		panic("boom")
	})

	// the failure cancels the group context
	errGroup.Go("waiting", func() error {
		<-errGroupCtx.Done()
		return nil
	})

	err := errGroup.Wait()
	suite.Require().Error(err)
	suite.Require().Contains(err.Error(), "boom")
}

func (suite *ErrGroupTestSuite) TestFirstErrorReturned() {
	errGroup, _ := WithContext(suite.ctx, suite.logger)

	errGroup.Go("failing", func() error {
		return errors.New("failed")
	})

	suite.Require().EqualError(errGroup.Wait(), "failed")
}

func TestErrGroupTestSuite(t *testing.T) {
	suite.Run(t, new(ErrGroupTestSuite))
}
