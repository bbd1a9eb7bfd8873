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

// GENEActiv exports begin with a 100-line calibration report and carry no
// header row.
const geneactivSkipRows = 100

// GENEActiv timestamps separate the milliseconds with a colon.
const geneactivLayout = "2006-01-02 15:04:05:000"

const (
	geneactivTimestampCol = 0
	geneactivXCol         = 1
	geneactivLightCol     = 4
	geneactivTempCol      = 6
)

// geneactivAllSeries reads every export under dir and routes each file to the
// unit (black or pink) whose configured filename substring matches.
func geneactivAllSeries(dir string, units map[string]device.Device) ([]*series, error) {
	entries, err := ioutil.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to list %s", dir)
	}

	byDevice := map[device.Device][]*series{}
	for _, d := range []device.Device{device.GENEActivBlack, device.GENEActivPink} {
		byDevice[d] = []*series{
			{data: &reading.Series{Device: string(d), Sensor: "accelerometer", Columns: []string{"x", "y", "z"}}},
			{data: &reading.Series{Device: string(d), Sensor: "light", Columns: []string{"light"}}},
			{data: &reading.Series{Device: string(d), Sensor: "temperature", Columns: []string{"temperature"}}},
		}
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, "csv") {
			continue
		}
		d, ok := matchUnit(name, units)
		if !ok {
			log.WithFields(log.Fields{
				"Method": "organize.geneactivAllSeries",
				"File":   name,
			}).Debug("No GENEActiv unit matches filename, skipping")
			continue
		}

		table, err := csvkit.ReadFile(filepath.Join(dir, name), csvkit.Options{SkipRows: geneactivSkipRows})
		if err != nil {
			log.WithFields(log.Fields{
				"Method": "organize.geneactivAllSeries",
				"File":   name,
				"Error":  err.Error(),
			}).Error("Unable to read GENEActiv export, skipping file")
			continue
		}
		ingestGeneactivTable(table, d, byDevice[d])
		log.WithFields(log.Fields{
			"Method": "organize.geneactivAllSeries",
			"File":   name,
			"Device": string(d),
		}).Debug("Added GENEActiv data")
	}

	var all []*series
	for _, d := range []device.Device{device.GENEActivBlack, device.GENEActivPink} {
		all = append(all, byDevice[d]...)
	}
	return all, nil
}

func ingestGeneactivTable(table *csvkit.Table, d device.Device, out []*series) {
	acc, light, temp := out[0], out[1], out[2]
	acc.skipped += table.Skipped

	for _, row := range table.Rows {
		if len(row) <= geneactivTempCol {
			acc.skipped++
			continue
		}
		result := reading.ParseTimestamp(row[geneactivTimestampCol], geneactivLayout)
		if !result.Parsed() {
			acc.skipped++
			log.WithFields(log.Fields{
				"Method": "organize.ingestGeneactivTable",
				"Reason": result.Reason,
			}).Debug("Skipping row")
			continue
		}

		values, ok := rowFloats(row, []int{geneactivXCol, geneactivXCol + 1, geneactivXCol + 2})
		if ok {
			for i := range values {
				values[i] = d.ToG(values[i])
			}
			acc.data.Append(result.Timestamp, values)
		} else {
			acc.skipped++
		}

		if v, err := strconv.ParseFloat(strings.TrimSpace(row[geneactivLightCol]), 64); err == nil {
			light.data.Append(result.Timestamp, []float64{v})
		} else {
			light.skipped++
		}
		if v, err := strconv.ParseFloat(strings.TrimSpace(row[geneactivTempCol]), 64); err == nil {
			temp.data.Append(result.Timestamp, []float64{v})
		} else {
			temp.skipped++
		}
	}
}

// matchUnit is case insensitive, the config loader lowercases map keys.
func matchUnit(filename string, units map[string]device.Device) (device.Device, bool) {
	lower := strings.ToLower(filename)
	for substring, d := range units {
		if strings.Contains(lower, strings.ToLower(substring)) {
			return d, true
		}
	}
	return "", false
}
