/* Apache v2 license
*  Copyright (C) <2019> MindWear
*
*  SPDX-License-Identifier: Apache-2.0
 */

package chart

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	metrics "github.com/rcrowley/go-metrics"
	log "github.com/sirupsen/logrus"

	"github.com/mindwear/comparison-service/app/placement"
	"github.com/mindwear/comparison-service/app/reading"
)

const accelerometerDir = "accelerometer"

var accelerometerColumns = []string{"x", "y", "z"}

// BuildConfig locates the inputs the comparison table builder needs.
type BuildConfig struct {
	OrganizedDir string
	PlacementDir string
}

// BuildAll reconciles the placement log and writes one wide comparison table
// per (wearer, wrist) pair. Pairs are isolated, so one failing pair never
// stops the rest of the batch.
func BuildAll(cfg BuildConfig) error {
	mPairErrors := metrics.GetOrRegisterCounter(`Chart.BuildAll.PairErrors`, nil)
	timer := metrics.GetOrRegisterTimer(`Chart.BuildAll.Latency`, nil)
	begin := time.Now()
	defer func() { timer.Update(time.Since(begin)) }()

	placementLog, err := placement.Load(cfg.PlacementDir)
	if err != nil {
		return err
	}
	intervals := placement.Reconcile(placementLog)
	if err := placement.ValidateNoOverlap(intervals); err != nil {
		return err
	}

	for _, pw := range placement.PersonWrists(intervals) {
		if err := BuildPerson(cfg, intervals, pw); err != nil {
			mPairErrors.Inc(1)
			log.WithFields(log.Fields{
				"Method": "chart.BuildAll",
				"Pair":   pw.String(),
				"Error":  err.Error(),
			}).Error("Unable to build comparison table")
		}
	}
	return nil
}

// BuildPerson windows each worn device's organized accelerometer table to the
// pair's overall wear range and pivots the result into one wide table at
// <organized>/accelerometer/<wearer>_<wrist>.csv.
func BuildPerson(cfg BuildConfig, intervals []placement.WearInterval, pw placement.PersonWrist) error {
	start, stop, ok := placement.Overall(intervals, pw)
	if !ok {
		return errors.Errorf("no wear intervals for %s", pw)
	}

	var rows []Row
	for _, d := range placement.Devices(intervals, pw) {
		path := filepath.Join(cfg.OrganizedDir, accelerometerDir, string(d)+".csv")
		if _, err := os.Stat(path); os.IsNotExist(err) {
			log.WithFields(log.Fields{
				"Method": "chart.BuildPerson",
				"Device": string(d),
				"Path":   path,
			}).Warn("SourceMissing: no organized accelerometer table for device")
			continue
		}

		series, err := reading.Load(path, string(d), accelerometerDir)
		if err != nil {
			return err
		}
		for _, r := range series.Window(start, stop).Readings {
			rows = append(rows, Row{Device: string(d), Timestamp: r.Timestamp, Values: r.Values})
		}
	}

	wide := Pivot(rows, accelerometerColumns)
	out := filepath.Join(cfg.OrganizedDir, accelerometerDir, pw.String()+".csv")
	if err := wide.WriteCSV(out); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"Method":     "chart.BuildPerson",
		"Pair":       pw.String(),
		"Devices":    len(wide.Devices),
		"Timestamps": wide.Len(),
	}).Info("Built comparison table")
	return nil
}

// PlotConfig locates the inputs the figure builder needs.
type PlotConfig struct {
	OrganizedDir string
	PlacementDir string
	ChartDir     string
	Colors       Colors
}

// PlotAll renders every requested figure. Definitions are isolated so one
// failing figure never stops the rest.
func PlotAll(cfg PlotConfig, definitions []PlotDefinition) {
	mPlotErrors := metrics.GetOrRegisterCounter(`Chart.PlotAll.PlotErrors`, nil)

	for _, def := range definitions {
		if err := buildPlot(cfg, def); err != nil {
			mPlotErrors.Inc(1)
			log.WithFields(log.Fields{
				"Method": "chart.PlotAll",
				"Label":  def.Label,
				"Error":  err.Error(),
			}).Error("Unable to build figure")
		}
	}
}

// buildPlot renders one plot definition: the raw normalized overlay, the
// baseline adjusted overlay, their CSV forms, and the correlation ladder.
func buildPlot(cfg PlotConfig, def PlotDefinition) error {
	var rows []Row
	for _, name := range def.Devices {
		path, err := ensureNormalizedUnit(cfg, name)
		if err != nil {
			return err
		}
		series, err := reading.Load(path, name, accelerometerDir)
		if err != nil {
			return err
		}
		for _, r := range series.Window(def.Start, def.Stop).Readings {
			rows = append(rows, Row{Device: name, Timestamp: r.Timestamp, Values: r.Values})
		}
	}
	if len(rows) == 0 {
		return errors.Errorf("no readings in range for plot %q", def.Label)
	}

	raw := Pivot(rows, []string{NormalizedColumn})
	annotations := LoadAnnotations(cfg.PlacementDir, def.Person, def.Start, def.Stop)
	stem := filepath.Join(cfg.ChartDir, NormalizedColumn+"_"+underscored(def.Label))

	if err := saveTableAndFigure(cfg, raw, def.Label, annotations, stem); err != nil {
		return err
	}

	adjusted := baselineAdjust(raw)
	if err := saveTableAndFigure(cfg, adjusted, def.Label+" baseline adjusted",
		annotations, stem+"_baseline_adjusted"); err != nil {
		return err
	}

	var named []NamedSeries
	for _, d := range adjusted.Devices {
		_, values := adjusted.DeviceSeries(d, 0)
		named = append(named, NamedSeries{Name: d, Values: values})
	}
	CorrelationLadder(named, cfg.ChartDir)

	log.WithFields(log.Fields{
		"Method":  "chart.buildPlot",
		"Label":   def.Label,
		"Devices": len(raw.Devices),
	}).Info("Built figure")
	return nil
}

// ensureNormalizedUnit derives <device>_normalized_unit.csv from the device's
// organized accelerometer table if it is not already on disk.
func ensureNormalizedUnit(cfg PlotConfig, deviceName string) (string, error) {
	path := filepath.Join(cfg.OrganizedDir, accelerometerDir, deviceName+"_normalized_unit.csv")
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	source := filepath.Join(cfg.OrganizedDir, accelerometerDir, deviceName+".csv")
	series, err := reading.Load(source, deviceName, accelerometerDir)
	if err != nil {
		return "", errors.Wrapf(err, "unable to load accelerometer table for %s", deviceName)
	}

	derived, err := NormalizedVectorLength(series)
	if err != nil {
		return "", err
	}
	if err := derived.Save(path); err != nil {
		return "", err
	}
	return path, nil
}

// baselineAdjust applies the baseline shift to each device column and
// repivots the result.
func baselineAdjust(w *WideTable) *WideTable {
	var rows []Row
	for _, d := range w.Devices {
		times, values := w.DeviceSeries(d, 0)
		shifted := BaselineShift(values)
		for i := range times {
			rows = append(rows, Row{Device: d, Timestamp: times[i], Values: []float64{shifted[i]}})
		}
	}
	return Pivot(rows, w.Columns)
}

func saveTableAndFigure(cfg PlotConfig, table *WideTable, title string,
	annotations []Annotation, stem string) error {
	if err := table.WriteCSV(stem + ".csv"); err != nil {
		return err
	}

	figure := &Figure{
		Title:       title,
		Table:       table,
		Colors:      cfg.Colors,
		Annotations: annotations,
	}
	if err := figure.Save(stem + ".svg"); err != nil {
		return err
	}
	return figure.Save(stem + ".png")
}

func underscored(label string) string {
	return strings.ReplaceAll(label, " ", "_")
}
