/* Apache v2 license
*  Copyright (C) <2019> MindWear
*
*  SPDX-License-Identifier: Apache-2.0
 */

package chart

import (
	"math"
	"path/filepath"
	"strconv"

	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"

	"github.com/mindwear/comparison-service/pkg/csvkit"
)

// NamedSeries pairs a device name with one aligned value column.
type NamedSeries struct {
	Name   string
	Values []float64
}

// CrossCorrelate slides the shorter series across the longer one and returns
// the peak lagged dot product, one scalar summarizing how well the signals
// line up.
func CrossCorrelate(a, b []float64) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	long, short := a, b
	if len(b) > len(a) {
		long, short = b, a
	}

	peak := math.Inf(-1)
	for lag := 0; lag+len(short) <= len(long); lag++ {
		c := floats.Dot(long[lag:lag+len(short)], short)
		if c > peak {
			peak = c
		}
	}
	return peak
}

// CorrelationLadder computes the pairwise summary the comparison protocol
// calls for: every series against the last, then the last is discarded and
// the process repeats, ending with the final pair. All-pairs is O(N²) but N
// is the handful of devices on one wrist.
func CorrelationLadder(series []NamedSeries, outDir string) {
	working := append([]NamedSeries(nil), series...)
	for len(working) > 2 {
		last := working[len(working)-1]
		for i := 0; i < len(working)-1; i++ {
			writeCorrelation(outDir, working[i], last)
		}
		working = working[:len(working)-1]
	}
	if len(working) == 2 {
		writeCorrelation(outDir, working[0], working[1])
	}
}

func writeCorrelation(outDir string, a, b NamedSeries) {
	value := CrossCorrelate(a.Values, b.Values)
	path := filepath.Join(outDir, a.Name+"_"+b.Name+"_correlation.csv")

	row := [][]string{{strconv.FormatFloat(value, 'f', -1, 64)}}
	if err := csvkit.WriteFile(path, []string{"correlation"}, row); err != nil {
		log.WithFields(log.Fields{
			"Method": "chart.writeCorrelation",
			"Path":   path,
			"Error":  err.Error(),
		}).Error("Unable to save correlation")
		return
	}

	log.WithFields(log.Fields{
		"Method": "chart.writeCorrelation",
		"Pair":   a.Name + "/" + b.Name,
		"Value":  value,
	}).Info("Saved correlation")
}
