/* Apache v2 license
*  Copyright (C) <2019> MindWear
*
*  SPDX-License-Identifier: Apache-2.0
 */

package organize

import (
	"io/ioutil"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/mindwear/comparison-service/app/device"
	"github.com/mindwear/comparison-service/app/reading"
	"github.com/mindwear/comparison-service/pkg/csvkit"
)

// Wavelet exports live in a CSV subdirectory, interleave blank lines and
// comment lines starting with "C", and timestamp in epoch milliseconds.
var waveletOptions = csvkit.Options{Header: true, SkipBlank: true, CommentPrefix: "C"}

// waveletPPGColumns renames the export's column names to the organized ones.
var waveletPPGColumns = [][2]string{
	{"ir", "infrared"},
	{"red", "red"},
	{"ir_filt", "infrared_filtered"},
	{"red_filt", "red_filtered"},
}

func waveletSeries(dir string) ([]*series, error) {
	csvDir := filepath.Join(dir, "CSV")
	entries, err := ioutil.ReadDir(csvDir)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to list %s", csvDir)
	}

	acc := &series{data: &reading.Series{
		Device:  string(device.Wavelet),
		Sensor:  "accelerometer",
		Columns: []string{"x", "y", "z"},
	}}
	ppgColumns := make([]string, 0, len(waveletPPGColumns))
	for _, pair := range waveletPPGColumns {
		ppgColumns = append(ppgColumns, pair[1])
	}
	ppg := &series{data: &reading.Series{
		Device:  string(device.Wavelet),
		Sensor:  "photoplethysmograph",
		Columns: ppgColumns,
	}}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), "csv") {
			continue
		}
		path := filepath.Join(csvDir, entry.Name())
		table, err := csvkit.ReadFile(path, waveletOptions)
		if err != nil {
			log.WithFields(log.Fields{
				"Method": "organize.waveletSeries",
				"File":   entry.Name(),
				"Error":  err.Error(),
			}).Error("Unable to read Wavelet export, skipping file")
			continue
		}
		ingestWaveletTable(table, acc, ppg)
		log.WithFields(log.Fields{
			"Method": "organize.waveletSeries",
			"File":   entry.Name(),
			"Rows":   acc.data.Len(),
		}).Debug("Added Wavelet data")
	}

	return []*series{acc, ppg}, nil
}

func ingestWaveletTable(table *csvkit.Table, acc, ppg *series) {
	tsIdx := csvkit.ColumnIndex(table.Header, "timestamp")
	accIdx := []int{
		csvkit.ColumnIndex(table.Header, "accel.X"),
		csvkit.ColumnIndex(table.Header, "accel.Y"),
		csvkit.ColumnIndex(table.Header, "accel.Z"),
	}
	ppgIdx := make([]int, 0, len(waveletPPGColumns))
	for _, pair := range waveletPPGColumns {
		ppgIdx = append(ppgIdx, csvkit.ColumnIndex(table.Header, pair[0]))
	}

	acc.skipped += table.Skipped
	for _, row := range table.Rows {
		if tsIdx < 0 || tsIdx >= len(row) {
			acc.skipped++
			continue
		}
		result := reading.ParseEpochMillis(row[tsIdx])
		if !result.Parsed() {
			acc.skipped++
			log.WithFields(log.Fields{
				"Method": "organize.ingestWaveletTable",
				"Reason": result.Reason,
			}).Debug("Skipping row")
			continue
		}

		if values, ok := rowFloats(row, accIdx); ok {
			for i := range values {
				values[i] = device.Wavelet.ToG(values[i])
			}
			acc.data.Append(result.Timestamp, values)
		} else {
			acc.skipped++
		}

		if values, ok := rowFloats(row, ppgIdx); ok {
			ppg.data.Append(result.Timestamp, values)
		} else {
			ppg.skipped++
		}
	}
}
