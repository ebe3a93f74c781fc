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

package registry

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type RegistryTestSuite struct {
	suite.Suite
	registry *Registry[int]
}

func (suite *RegistryTestSuite) SetupTest() {
	suite.registry = NewRegistry[int]("test")
}

func (suite *RegistryTestSuite) TestRegisterAndGet() {
	suite.registry.Register("b", 2)
	suite.registry.Register("a", 1)

	value, err := suite.registry.Get("b")
	suite.Require().NoError(err)
	suite.Require().Equal(2, value)

	suite.Require().Equal([]string{"a", "b"}, suite.registry.GetKinds())
}

func (suite *RegistryTestSuite) TestGetUnknown() {
	value, err := suite.registry.Get("missing")
	suite.Require().Error(err)
	suite.Require().Zero(value)
}

func (suite *RegistryTestSuite) TestRegisterTwicePanics() {
	suite.registry.Register("a", 1)
	suite.Require().Panics(func() { suite.registry.Register("a", 2) })
}

func TestRegistryTestSuite(t *testing.T) {
	suite.Run(t, new(RegistryTestSuite))
}
