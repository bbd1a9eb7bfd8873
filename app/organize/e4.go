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
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/mindwear/comparison-service/app/device"
	"github.com/mindwear/comparison-service/app/reading"
	"github.com/mindwear/comparison-service/pkg/csvkit"
)

// e4Streams maps the Empatica filename tag to the organized sensor and its
// value columns. E4 exports are headerless: the first row is the session
// start in epoch seconds, the second the sample rate in Hz, the rest samples.
var e4Streams = []struct {
	tag     string
	sensor  string
	columns []string
}{
	{"ACC", "accelerometer", []string{"x", "y", "z"}},
	{"BVP", "photoplethysmograph", []string{"nW"}},
	{"HR", "heartrate", []string{"heartrate"}},
	{"TEMP", "temperature", []string{"temperature"}},
}

func e4Series(dir string) ([]*series, error) {
	entries, err := ioutil.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to list %s", dir)
	}

	all := make([]*series, 0, len(e4Streams))
	for _, stream := range e4Streams {
		s := &series{data: &reading.Series{
			Device:  string(device.E4),
			Sensor:  stream.sensor,
			Columns: stream.columns,
		}}

		for _, entry := range entries {
			name := entry.Name()
			if entry.IsDir() || !strings.Contains(name, stream.tag) || !strings.HasSuffix(name, "csv") {
				continue
			}
			if err := ingestE4File(filepath.Join(dir, name), stream.sensor, s); err != nil {
				log.WithFields(log.Fields{
					"Method": "organize.e4Series",
					"File":   name,
					"Error":  err.Error(),
				}).Error("Unable to read E4 export, skipping file")
				continue
			}
			log.WithFields(log.Fields{
				"Method": "organize.e4Series",
				"File":   name,
				"Rows":   s.data.Len(),
			}).Debug("Added E4 data")
		}

		all = append(all, s)
	}
	return all, nil
}

func ingestE4File(path, sensor string, s *series) error {
	table, err := csvkit.ReadFile(path, csvkit.Options{})
	if err != nil {
		return err
	}
	if len(table.Rows) < 3 {
		return errors.Errorf("%s is too short to carry a start time, sample rate and samples", path)
	}

	start, err := strconv.ParseFloat(strings.TrimSpace(table.Rows[0][0]), 64)
	if err != nil {
		return errors.Wrapf(err, "unable to parse session start in %s", path)
	}
	rate, err := strconv.ParseFloat(strings.TrimSpace(table.Rows[1][0]), 64)
	if err != nil {
		return errors.Wrapf(err, "unable to parse sample rate in %s", path)
	}
	if rate <= 0 {
		return errors.Errorf("sample rate %v in %s is not positive", rate, path)
	}

	step := time.Duration(float64(time.Second) / rate)
	base := time.Unix(int64(start), 0)
	isAcc := sensor == "accelerometer"

	s.skipped += table.Skipped
	for i, row := range table.Rows[2:] {
		values := make([]float64, 0, len(s.data.Columns))
		ok := len(row) >= len(s.data.Columns)
		for c := 0; ok && c < len(s.data.Columns); c++ {
			v, err := strconv.ParseFloat(strings.TrimSpace(row[c]), 64)
			if err != nil {
				ok = false
				break
			}
			if isAcc {
				v = device.E4.ToG(v)
			}
			values = append(values, v)
		}
		if !ok {
			s.skipped++
			continue
		}
		s.data.Append(base.Add(time.Duration(i)*step), values)
	}

	return nil
}
