/* Apache v2 license
*  Copyright (C) <2019> MindWear
*
*  SPDX-License-Identifier: Apache-2.0
 */

package organize

import (
	"io/ioutil"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/mindwear/comparison-service/app/device"
	"github.com/mindwear/comparison-service/app/reading"
	"github.com/mindwear/comparison-service/pkg/csvkit"
)

// ActiLife exports begin with a 10-line device report before the header row.
const actigraphSkipRows = 10

const actigraphLayout = "2006-01-02 15:04:05"

// actigraphColumns maps ActiLife column names to organized sensor names for
// the single-column streams.
var actigraphColumns = map[string]string{
	"lux": "light",
	"hr":  "heartrate",
}

func actigraphSeries(dir string) ([]*series, error) {
	acc := &series{data: &reading.Series{
		Device:  string(device.Actigraph),
		Sensor:  "accelerometer",
		Columns: []string{"x", "y", "z"},
	}}
	singles := map[string]*series{}
	for column, sensor := range actigraphColumns {
		singles[column] = &series{data: &reading.Series{
			Device:  string(device.Actigraph),
			Sensor:  sensor,
			Columns: []string{sensor},
		}}
	}

	entries, err := ioutil.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to list %s", dir)
	}

	matched := false
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), "1sec.csv") {
			continue
		}
		matched = true
		path := filepath.Join(dir, entry.Name())
		table, err := csvkit.ReadFile(path, csvkit.Options{SkipRows: actigraphSkipRows, Header: true})
		if err != nil {
			log.WithFields(log.Fields{
				"Method": "organize.actigraphSeries",
				"File":   entry.Name(),
				"Error":  err.Error(),
			}).Error("Unable to read Actigraph export, skipping file")
			continue
		}
		ingestActigraphTable(table, acc, singles)
		log.WithFields(log.Fields{
			"Method": "organize.actigraphSeries",
			"File":   entry.Name(),
			"Rows":   acc.data.Len(),
		}).Debug("Added Actigraph accelerometer data")
	}

	if !matched {
		log.WithFields(log.Fields{
			"Method": "organize.actigraphSeries",
			"Dir":    dir,
		}).Warn("SourceMissing: no *1sec.csv exports found")
	}

	all := []*series{acc}
	for _, s := range singles {
		all = append(all, s)
	}
	return all, nil
}

func ingestActigraphTable(table *csvkit.Table, acc *series, singles map[string]*series) {
	tsIdx := csvkit.ColumnIndex(table.Header, "timestamp")
	axisIdx := []int{
		csvkit.ColumnIndex(table.Header, "axis1"),
		csvkit.ColumnIndex(table.Header, "axis2"),
		csvkit.ColumnIndex(table.Header, "axis3"),
	}
	singleIdx := map[string]int{}
	for column := range singles {
		singleIdx[column] = csvkit.ColumnIndex(table.Header, column)
	}

	acc.skipped += table.Skipped
	for _, row := range table.Rows {
		if tsIdx < 0 || tsIdx >= len(row) {
			acc.skipped++
			continue
		}
		result := reading.ParseTimestamp(row[tsIdx], actigraphLayout)
		if !result.Parsed() {
			acc.skipped++
			log.WithFields(log.Fields{
				"Method": "organize.ingestActigraphTable",
				"Reason": result.Reason,
			}).Debug("Skipping row")
			continue
		}

		values, ok := rowFloats(row, axisIdx)
		if ok {
			for i := range values {
				values[i] = device.Actigraph.ToG(values[i])
			}
			acc.data.Append(result.Timestamp, values)
		} else {
			acc.skipped++
		}

		for column, s := range singles {
			idx := singleIdx[column]
			if idx < 0 || idx >= len(row) {
				continue
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(row[idx]), 64)
			if err != nil {
				s.skipped++
				continue
			}
			s.data.Append(result.Timestamp, []float64{v})
		}
	}
}

// rowFloats parses the cells at the given indexes; a missing or malformed
// cell rejects the whole row.
func rowFloats(row []string, indexes []int) ([]float64, bool) {
	values := make([]float64, 0, len(indexes))
	for _, idx := range indexes {
		if idx < 0 || idx >= len(row) {
			return nil, false
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(row[idx]), 64)
		if err != nil {
			return nil, false
		}
		values = append(values, v)
	}
	return values, true
}
