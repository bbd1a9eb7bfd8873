/* Apache v2 license
*  Copyright (C) <2019> MindWear
*
*  SPDX-License-Identifier: Apache-2.0
 */

package organize

import (
	"os"
	"path/filepath"
	"time"

	metrics "github.com/rcrowley/go-metrics"
	log "github.com/sirupsen/logrus"

	"github.com/mindwear/comparison-service/app/device"
	"github.com/mindwear/comparison-service/app/reading"
)

// Config names the vendor export roots and the organized output directory.
type Config struct {
	ActigraphDir string
	E4Dir        string
	GENEActivDir string
	WaveletDir   string
	OrganizedDir string
	// GENEActivUnits maps a filename substring (the study used wearer names)
	// to the GENEActiv unit that produced the file.
	GENEActivUnits map[string]device.Device
}

// Result reports the outcome of organizing one (device, sensor) table. A
// failed unit carries its error; it never aborts the other units.
type Result struct {
	Device  device.Device
	Sensor  string
	Rows    int
	Skipped int
	Err     error
}

type unit struct {
	dir  string
	name string
	run  func(string) ([]*series, error)
}

type series struct {
	data    *reading.Series
	skipped int
}

// Run organizes every configured vendor export into per-(device, sensor)
// tables under <organized>/<sensor>/<device>.csv. Each unit of work is
// isolated: a missing directory or bad file degrades coverage, not the run.
func Run(cfg Config) []Result {
	timer := metrics.GetOrRegisterTimer(`Organize.Run.Latency`, nil)
	begin := time.Now()
	defer func() { timer.Update(time.Since(begin)) }()

	units := []unit{
		{cfg.ActigraphDir, "Actigraph", actigraphSeries},
		{cfg.E4Dir, "E4", e4Series},
		{cfg.GENEActivDir, "GENEActiv", geneactivRunner(cfg.GENEActivUnits)},
		{cfg.WaveletDir, "Wavelet", waveletSeries},
	}

	var results []Result
	for _, u := range units {
		if u.dir == "" {
			continue
		}
		if _, err := os.Stat(u.dir); os.IsNotExist(err) {
			// SourceMissing: warn and keep going
			metrics.GetOrRegisterCounter(`Organize.Run.SourceMissing`, nil).Inc(1)
			log.WithFields(log.Fields{
				"Method": "organize.Run",
				"Vendor": u.name,
				"Dir":    u.dir,
			}).Warn("SourceMissing: vendor directory not found, skipping")
			continue
		}

		all, err := u.run(u.dir)
		if err != nil {
			metrics.GetOrRegisterCounter(`Organize.Run.Error`, nil).Inc(1)
			log.WithFields(log.Fields{
				"Method": "organize.Run",
				"Vendor": u.name,
				"Error":  err.Error(),
			}).Error("Unable to organize vendor data")
			results = append(results, Result{Device: device.Device(u.name), Err: err})
			continue
		}
		for _, s := range all {
			results = append(results, save(cfg.OrganizedDir, s))
		}
	}

	return results
}

func save(organizedDir string, s *series) Result {
	result := Result{
		Device:  device.Device(s.data.Device),
		Sensor:  s.data.Sensor,
		Rows:    s.data.Len(),
		Skipped: s.skipped,
	}

	if s.data.Len() == 0 {
		log.WithFields(log.Fields{
			"Method": "organize.save",
			"Device": s.data.Device,
			"Sensor": s.data.Sensor,
		}).Warn("No readings to save")
		return result
	}

	s.data.Sort()
	path := filepath.Join(organizedDir, s.data.Sensor, s.data.Device+".csv")
	if err := s.data.Save(path); err != nil {
		result.Err = err
		return result
	}

	log.WithFields(log.Fields{
		"Method":  "organize.save",
		"Device":  s.data.Device,
		"Sensor":  s.data.Sensor,
		"Rows":    result.Rows,
		"Skipped": result.Skipped,
		"Path":    path,
	}).Info("Saved organized table")
	return result
}

func geneactivRunner(units map[string]device.Device) func(string) ([]*series, error) {
	return func(dir string) ([]*series, error) {
		return geneactivAllSeries(dir, units)
	}
}
