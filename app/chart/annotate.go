/* Apache v2 license
*  Copyright (C) <2019> MindWear
*
*  SPDX-License-Identifier: Apache-2.0
 */

package chart

import (
	"os"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/mindwear/comparison-service/pkg/csvkit"
)

// Annotation is a known wear interval drawn as a labeled band on a figure.
type Annotation struct {
	Label string
	Start time.Time
	Stop  time.Time
}

const wearableLogName = "wearable_log.csv"
const wearableLogLayout = "2006-01-02 15:04"

// LoadAnnotations reads the hand-kept wearable log and returns the wear
// intervals for one wearer that fall inside [start, stop], clamped to the
// figure range. A missing log just means an unannotated figure.
func LoadAnnotations(placementDir, wearer string, start, stop time.Time) []Annotation {
	path := filepath.Join(placementDir, wearableLogName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		log.WithFields(log.Fields{
			"Method": "chart.LoadAnnotations",
			"Path":   path,
		}).Warn("SourceMissing: no wearable log, figures will be unannotated")
		return nil
	}

	table, err := csvkit.ReadFile(path, csvkit.Options{Header: true, SkipBlank: true})
	if err != nil {
		log.WithFields(log.Fields{
			"Method": "chart.LoadAnnotations",
			"Path":   path,
			"Error":  err.Error(),
		}).Error("Unable to read wearable log")
		return nil
	}

	startDateIdx := csvkit.ColumnIndex(table.Header, "start date")
	startTimeIdx := csvkit.ColumnIndex(table.Header, "start time")
	endDateIdx := csvkit.ColumnIndex(table.Header, "end date")
	endTimeIdx := csvkit.ColumnIndex(table.Header, "end time")
	wearerIdx := csvkit.ColumnIndex(table.Header, "wearer")
	deviceIdx := csvkit.ColumnIndex(table.Header, "device")
	if startDateIdx < 0 || startTimeIdx < 0 || endDateIdx < 0 || endTimeIdx < 0 ||
		wearerIdx < 0 || deviceIdx < 0 {
		log.WithFields(log.Fields{
			"Method": "chart.LoadAnnotations",
			"Path":   path,
		}).Error("Wearable log is missing required columns")
		return nil
	}

	var annotations []Annotation
	seen := map[string]bool{}
	dropped := 0
	required := maxIndex([]int{startDateIdx, startTimeIdx, endDateIdx, endTimeIdx, wearerIdx, deviceIdx})
	for _, row := range table.Rows {
		if len(row) <= required {
			dropped++
			continue
		}
		if row[wearerIdx] != wearer {
			continue
		}

		rowStart, err := time.ParseInLocation(wearableLogLayout, row[startDateIdx]+" "+row[startTimeIdx], time.Local)
		if err != nil {
			dropped++
			continue
		}
		rowStop, err := time.ParseInLocation(wearableLogLayout, row[endDateIdx]+" "+row[endTimeIdx], time.Local)
		if err != nil {
			dropped++
			continue
		}
		if rowStart.Before(start) || rowStop.After(stop) {
			continue
		}
		// one band per device, first record wins
		if seen[row[deviceIdx]] {
			continue
		}
		seen[row[deviceIdx]] = true

		annotations = append(annotations, Annotation{
			Label: row[deviceIdx],
			Start: clampAfter(rowStart, start),
			Stop:  clampBefore(rowStop, stop),
		})
	}

	if dropped > 0 {
		log.WithFields(log.Fields{
			"Method": "chart.LoadAnnotations",
			"Path":   path,
		}).Warnf("dropped %d wearable log rows with missing or unparsable fields", dropped)
	}

	return annotations
}

func maxIndex(indexes []int) int {
	max := indexes[0]
	for _, i := range indexes[1:] {
		if i > max {
			max = i
		}
	}
	return max
}

func clampAfter(t, floor time.Time) time.Time {
	if t.Before(floor) {
		return floor
	}
	return t
}

func clampBefore(t, ceiling time.Time) time.Time {
	if t.After(ceiling) {
		return ceiling
	}
	return t
}
