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

package common

import (
	"github.com/mitchellh/mapstructure"
	"github.com/nuclio/errors"
)

// DecodeAttributes decodes a kind-specific attribute map into result. Keys are matched case
// insensitively, numbers may arrive as float64 (YAML through JSON) and unknown keys are an error
func DecodeAttributes(attributes map[string]interface{}, result interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           result,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return errors.Wrap(err, "Failed to create attribute decoder")
	}

	if err := decoder.Decode(attributes); err != nil {
		return errors.Wrap(err, "Failed to decode attributes")
	}

	return nil
}
