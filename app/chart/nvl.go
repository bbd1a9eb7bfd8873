/* Apache v2 license
*  Copyright (C) <2019> MindWear
*
*  SPDX-License-Identifier: Apache-2.0
 */

package chart

import (
	"math"
	"sort"

	"github.com/pkg/errors"

	"github.com/mindwear/comparison-service/app/reading"
)

// NormalizedColumn names the derived value every overlay figure plots.
const NormalizedColumn = "normalized_vector_length"

// NormalizedVectorLength derives the Euclidean norm of each (x, y, z)
// reading, rescaled to the reference unit cube so an axis pegged at 1g in
// every direction lands at 1.
func NormalizedVectorLength(s *reading.Series) (*reading.Series, error) {
	if len(s.Columns) < 3 {
		return nil, errors.Errorf("%s %s has %d columns, need x, y, z",
			s.Device, s.Sensor, len(s.Columns))
	}

	derived := &reading.Series{
		Device:  s.Device,
		Sensor:  s.Sensor,
		Columns: []string{NormalizedColumn},
	}
	cube := math.Sqrt(3)
	for _, r := range s.Readings {
		if len(r.Values) < 3 {
			continue
		}
		norm := math.Sqrt(r.Values[0]*r.Values[0] + r.Values[1]*r.Values[1] + r.Values[2]*r.Values[2])
		derived.Append(r.Timestamp, []float64{norm / cube})
	}
	return derived, nil
}

// BaselineShift shifts the series floor to 0 by subtracting the median
// (clamping below at 0) and renormalizes so the maximum is 1.
func BaselineShift(values []float64) []float64 {
	clean := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			clean = append(clean, v)
		}
	}
	if len(clean) == 0 {
		return append([]float64(nil), values...)
	}

	sort.Float64s(clean)
	baseline := median(clean)

	shifted := make([]float64, len(values))
	max := 0.0
	for i, v := range values {
		s := v - baseline
		if s < 0 || math.IsNaN(s) {
			s = 0
		}
		shifted[i] = s
		if s > max {
			max = s
		}
	}
	if max > 0 {
		for i := range shifted {
			shifted[i] /= max
		}
	}
	return shifted
}

// median of a sorted slice, averaging the middle pair for even lengths.
func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
