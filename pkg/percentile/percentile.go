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
	"slices"
	"strconv"
	"strings"

	"github.com/nuclio/errors"
)

// Default are the percentiles reported when none are configured
var Default = []float64{0.95, 0.99, 0.999}

// Sorted returns an ascending copy of values
func Sorted(values []int64) []int64 {
	sorted := slices.Clone(values)
	slices.Sort(sorted)

	return sorted
}

// Index returns floor(n*p) clamped to [0, n-1]. For n < 1000 and p = 0.999 the
// unclamped index is n, so the maximum is reported
func Index(n int, p float64) int {
	index := int(math.Floor(float64(n) * p))

	if index >= n {
		index = n - 1
	}

	if index < 0 {
		index = 0
	}

	return index
}

// OfSorted returns the nearest-rank order statistic of an ascending slice, or 0 for an empty one
func OfSorted(sorted []int64, p float64) int64 {
	if len(sorted) == 0 {
		return 0
	}

	return sorted[Index(len(sorted), p)]
}

// OfValues computes every requested percentile over a single sorted copy of values
func OfValues(values []int64, percentiles []float64) []int64 {
	sorted := Sorted(values)

	results := make([]int64, len(percentiles))
	for percentileIndex, p := range percentiles {
		results[percentileIndex] = OfSorted(sorted, p)
	}

	return results
}

// Validate makes sure every percentile lies in (0, 1]
func Validate(percentiles []float64) error {
	if len(percentiles) == 0 {
		return errors.New("At least one percentile is required")
	}

	for _, p := range percentiles {
		if p <= 0 || p > 1 || math.IsNaN(p) {
			return errors.Errorf("Percentile must be in (0, 1], got %v", p)
		}
	}

	return nil
}

// Label renders p the way metric names carry it: the decimal digits of p, at least two
// of them (0.95 -> "95", 0.999 -> "999", 0.5 -> "50", 1 -> "100")
func Label(p float64) string {
	if p >= 1 {
		return "100"
	}

	formatted := strconv.FormatFloat(p, 'f', -1, 64)
	digits := strings.TrimPrefix(formatted, "0.")

	if len(digits) < 2 {
		digits += "0"
	}

	return digits
}
