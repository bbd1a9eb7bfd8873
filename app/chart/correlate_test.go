/* Apache v2 license
*  Copyright (C) <2019> MindWear
*
*  SPDX-License-Identifier: Apache-2.0
 */

package chart

import (
	"io/ioutil"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestCrossCorrelatePeakAtAlignment(t *testing.T) {
	long := []float64{0, 0, 1, 2, 1, 0, 0}
	short := []float64{1, 2, 1}

	got := CrossCorrelate(long, short)
	// the peak is the perfectly aligned lag: 1*1 + 2*2 + 1*1
	if math.Abs(got-6) > floatPrecision {
		t.Errorf("expected peak 6, got %v", got)
	}
}

func TestCrossCorrelateOrderIndependent(t *testing.T) {
	a := []float64{0, 1, 3, 1}
	b := []float64{3, 1}
	if CrossCorrelate(a, b) != CrossCorrelate(b, a) {
		t.Error("expected the same peak regardless of argument order")
	}
}

func TestCrossCorrelateEmpty(t *testing.T) {
	if got := CrossCorrelate(nil, []float64{1}); got != 0 {
		t.Errorf("expected 0 for an empty series, got %v", got)
	}
}

func TestCorrelationLadderWritesEveryPair(t *testing.T) {
	dir, err := ioutil.TempDir("", "correlation")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	series := []NamedSeries{
		{Name: "A", Values: []float64{1, 2}},
		{Name: "B", Values: []float64{2, 1}},
		{Name: "C", Values: []float64{1, 1}},
	}
	CorrelationLadder(series, dir)

	for _, name := range []string{"A_C_correlation.csv", "B_C_correlation.csv", "A_B_correlation.csv"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("expected %s to be written: %s", name, err)
		}
	}
}
