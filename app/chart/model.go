/* Apache v2 license
*  Copyright (C) <2019> MindWear
*
*  SPDX-License-Identifier: Apache-2.0
 */

package chart

import (
	"encoding/json"
	"io/ioutil"
	"sort"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/mindwear/comparison-service/app/schemas"
	"github.com/mindwear/comparison-service/app/slices"
	"github.com/mindwear/comparison-service/pkg/csvkit"
)

// Colors maps a device name to its fixed line color. It is explicit
// configuration passed into the chart builder, never process-wide state.
type Colors map[string]string

// LoadColors reads and validates the device color lookup file.
func LoadColors(path string) (Colors, error) {
	document, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read color lookup %s", path)
	}

	result, err := schemas.Validate(document, schemas.DeviceColorsSchema)
	if err != nil {
		return nil, err
	}
	if !result.Valid() {
		return nil, errors.Errorf("color lookup %s is invalid: %+v",
			path, schemas.BuildErrorsString(result.Errors()))
	}

	var colors Colors
	if err := json.Unmarshal(document, &colors); err != nil {
		return nil, errors.Wrapf(err, "unable to decode color lookup %s", path)
	}
	return colors, nil
}

// PlotDefinition describes one comparison figure: which devices to overlay
// for one person over one time range.
type PlotDefinition struct {
	Label   string
	Person  string
	Devices []string
	Start   time.Time
	Stop    time.Time
}

// plotDefinitionLayout is the timestamp form used in plot definition files.
const plotDefinitionLayout = "2006-01-02 15:04"

// LoadPlotDefinitions reads and validates the plot definitions file.
func LoadPlotDefinitions(path string) ([]PlotDefinition, error) {
	document, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read plot definitions %s", path)
	}

	result, err := schemas.Validate(document, schemas.PlotDefinitionsSchema)
	if err != nil {
		return nil, err
	}
	if !result.Valid() {
		return nil, errors.Errorf("plot definitions %s are invalid: %+v",
			path, schemas.BuildErrorsString(result.Errors()))
	}

	var raw []struct {
		Label   string   `json:"label"`
		Person  string   `json:"person"`
		Devices []string `json:"devices"`
		Start   string   `json:"start"`
		Stop    string   `json:"stop"`
	}
	if err := json.Unmarshal(document, &raw); err != nil {
		return nil, errors.Wrapf(err, "unable to decode plot definitions %s", path)
	}

	definitions := make([]PlotDefinition, 0, len(raw))
	for _, r := range raw {
		start, err := time.ParseInLocation(plotDefinitionLayout, r.Start, time.Local)
		if err != nil {
			return nil, errors.Wrapf(err, "bad start time in plot %q", r.Label)
		}
		stop, err := time.ParseInLocation(plotDefinitionLayout, r.Stop, time.Local)
		if err != nil {
			return nil, errors.Wrapf(err, "bad stop time in plot %q", r.Label)
		}
		definitions = append(definitions, PlotDefinition{
			Label:   r.Label,
			Person:  r.Person,
			Devices: r.Devices,
			Start:   start,
			Stop:    stop,
		})
	}
	return definitions, nil
}

// Row is one long-format observation: a device's values at one instant. Rows
// are appended to a growing sequence and pivoted once at the end, so building
// the wide table costs O(total rows).
type Row struct {
	Device    string
	Timestamp time.Time
	Values    []float64
}

// WideTable is the pivoted form: one row per distinct timestamp, one column
// group per device.
type WideTable struct {
	Columns []string
	Devices []string
	Index   []time.Time
	cells   map[string]map[int64][]float64
}

// Pivot materializes the wide table from the accumulated rows.
func Pivot(rows []Row, columns []string) *WideTable {
	w := &WideTable{Columns: columns, cells: map[string]map[int64][]float64{}}

	seen := map[int64]bool{}
	for _, row := range rows {
		w.Devices = slices.AppendUnique(w.Devices, row.Device)
		key := row.Timestamp.UnixNano()
		if !seen[key] {
			seen[key] = true
			w.Index = append(w.Index, row.Timestamp)
		}
		byTime, ok := w.cells[row.Device]
		if !ok {
			byTime = map[int64][]float64{}
			w.cells[row.Device] = byTime
		}
		byTime[key] = row.Values
	}

	sort.Strings(w.Devices)
	sort.Slice(w.Index, func(i, j int) bool { return w.Index[i].Before(w.Index[j]) })
	return w
}

// Len returns the number of distinct timestamps.
func (w *WideTable) Len() int {
	return len(w.Index)
}

// Value returns the device's values at index position i, if present.
func (w *WideTable) Value(device string, i int) ([]float64, bool) {
	byTime, ok := w.cells[device]
	if !ok {
		return nil, false
	}
	values, ok := byTime[w.Index[i].UnixNano()]
	return values, ok
}

// DeviceSeries extracts the device's column as an aligned (time, value)
// series, dropping timestamps where the device has no reading.
func (w *WideTable) DeviceSeries(device string, column int) ([]time.Time, []float64) {
	var times []time.Time
	var values []float64
	for i := range w.Index {
		v, ok := w.Value(device, i)
		if !ok || column >= len(v) {
			continue
		}
		times = append(times, w.Index[i])
		values = append(values, v[column])
	}
	return times, values
}

// WriteCSV writes the wide table with one header column per (value column,
// device) pair, grouped by value column.
func (w *WideTable) WriteCSV(path string) error {
	header := []string{"Timestamp"}
	for _, column := range w.Columns {
		for _, d := range w.Devices {
			header = append(header, column+"_"+d)
		}
	}

	rows := make([][]string, 0, w.Len())
	for i := range w.Index {
		row := []string{w.Index[i].Format("2006-01-02 15:04:05.000000")}
		for c := range w.Columns {
			for _, d := range w.Devices {
				values, ok := w.Value(d, i)
				if !ok || c >= len(values) {
					row = append(row, "")
					continue
				}
				row = append(row, strconv.FormatFloat(values[c], 'f', -1, 64))
			}
		}
		rows = append(rows, row)
	}

	return csvkit.WriteFile(path, header, rows)
}
