/* Apache v2 license
*  Copyright (C) <2019> MindWear
*
*  SPDX-License-Identifier: Apache-2.0
 */

package reading

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/mindwear/comparison-service/pkg/csvkit"
)

// loadLayouts are the layouts tried when reading organized tables back. Some
// earlier exports were written without the fractional part.
var loadLayouts = []string{TimestampLayout, "2006-01-02 15:04:05"}

// ParseTimestamp parses one timestamp cell with the given layout.
func ParseTimestamp(value, layout string) ParseResult {
	t, err := time.ParseInLocation(layout, strings.TrimSpace(value), time.Local)
	if err != nil {
		return ParseResult{Reason: fmt.Sprintf("unparsable timestamp %q: %s", value, err.Error())}
	}
	return ParseResult{Timestamp: t}
}

// ParseEpochSeconds parses a Linux-epoch seconds cell.
func ParseEpochSeconds(value string) ParseResult {
	secs, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return ParseResult{Reason: fmt.Sprintf("unparsable epoch seconds %q: %s", value, err.Error())}
	}
	return ParseResult{Timestamp: time.Unix(secs, 0)}
}

// ParseEpochMillis parses a Linux-epoch milliseconds cell.
func ParseEpochMillis(value string) ParseResult {
	millis, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return ParseResult{Reason: fmt.Sprintf("unparsable epoch milliseconds %q: %s", value, err.Error())}
	}
	return ParseResult{Timestamp: time.Unix(millis/1000, (millis%1000)*int64(time.Millisecond))}
}

// Append adds one reading to the series.
func (s *Series) Append(timestamp time.Time, values []float64) {
	s.Readings = append(s.Readings, Reading{Timestamp: timestamp, Values: values})
}

// Len returns the number of readings.
func (s *Series) Len() int {
	return len(s.Readings)
}

// Sort orders the readings by timestamp. The sort is stable so readings that
// share a timestamp keep their ingest order.
func (s *Series) Sort() {
	sort.SliceStable(s.Readings, func(i, j int) bool {
		return s.Readings[i].Timestamp.Before(s.Readings[j].Timestamp)
	})
}

// Window returns the subsequence of readings with timestamps in
// [start, stop], inclusive on both ends. No interpolation or gap filling is
// done, and input order is preserved.
func (s *Series) Window(start, stop time.Time) *Series {
	windowed := &Series{Device: s.Device, Sensor: s.Sensor, Columns: s.Columns}
	for _, r := range s.Readings {
		if r.Timestamp.Before(start) || r.Timestamp.After(stop) {
			continue
		}
		windowed.Readings = append(windowed.Readings, r)
	}
	return windowed
}

// Save writes the series as an organized table: a Timestamp column followed
// by the value columns.
func (s *Series) Save(path string) error {
	header := append([]string{"Timestamp"}, s.Columns...)
	rows := make([][]string, 0, len(s.Readings))
	for _, r := range s.Readings {
		row := make([]string, 0, len(r.Values)+1)
		row = append(row, r.Timestamp.Format(TimestampLayout))
		for _, v := range r.Values {
			row = append(row, strconv.FormatFloat(v, 'f', -1, 64))
		}
		rows = append(rows, row)
	}
	return csvkit.WriteFile(path, header, rows)
}

// Load reads an organized table back. Rows whose timestamp or values cannot
// be parsed are skipped and the totals logged, per the error handling policy:
// one bad row degrades coverage, never the run.
func Load(path, deviceName, sensor string) (*Series, error) {
	table, err := csvkit.ReadFile(path, csvkit.Options{Header: true})
	if err != nil {
		return nil, err
	}
	if len(table.Header) < 2 {
		return nil, errors.Errorf("organized table %s has no value columns", path)
	}

	series := &Series{Device: deviceName, Sensor: sensor, Columns: table.Header[1:]}
	unparsable := 0
	for _, row := range table.Rows {
		if len(row) != len(table.Header) {
			unparsable++
			continue
		}
		result := parseLoadTimestamp(row[0])
		if !result.Parsed() {
			unparsable++
			continue
		}
		values := make([]float64, 0, len(row)-1)
		ok := true
		for _, cell := range row[1:] {
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				ok = false
				break
			}
			values = append(values, v)
		}
		if !ok {
			unparsable++
			continue
		}
		series.Append(result.Timestamp, values)
	}

	if unparsable > 0 {
		log.WithFields(log.Fields{
			"Method": "reading.Load",
			"Path":   path,
		}).Warnf("skipped %d unparsable rows", unparsable)
	}

	return series, nil
}

func parseLoadTimestamp(cell string) ParseResult {
	var result ParseResult
	for _, layout := range loadLayouts {
		result = ParseTimestamp(cell, layout)
		if result.Parsed() {
			return result
		}
	}
	return result
}
