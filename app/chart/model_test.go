/* Apache v2 license
*  Copyright (C) <2019> MindWear
*
*  SPDX-License-Identifier: Apache-2.0
 */

package chart

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestPivotOrdersAndAligns(t *testing.T) {
	base := time.Date(2017, 4, 6, 16, 0, 0, 0, time.Local)
	rows := []Row{
		{Device: "E4", Timestamp: base.Add(2 * time.Second), Values: []float64{0.2}},
		{Device: "Actigraph", Timestamp: base, Values: []float64{0.5}},
		{Device: "E4", Timestamp: base, Values: []float64{0.1}},
	}

	w := Pivot(rows, []string{"v"})

	if w.Len() != 2 {
		t.Fatalf("expected 2 distinct timestamps, got %d", w.Len())
	}
	if !w.Index[0].Equal(base) || !w.Index[1].Equal(base.Add(2*time.Second)) {
		t.Errorf("index is not time ordered: %v", w.Index)
	}
	if len(w.Devices) != 2 || w.Devices[0] != "Actigraph" || w.Devices[1] != "E4" {
		t.Errorf("expected sorted device names, got %v", w.Devices)
	}

	if _, ok := w.Value("Actigraph", 1); ok {
		t.Error("expected a missing cell where Actigraph has no reading")
	}
	values, ok := w.Value("E4", 1)
	if !ok || values[0] != 0.2 {
		t.Errorf("expected E4 value 0.2 at the second timestamp, got %v (present=%v)", values, ok)
	}
}

func TestDeviceSeriesDropsMissing(t *testing.T) {
	base := time.Date(2017, 4, 6, 16, 0, 0, 0, time.Local)
	rows := []Row{
		{Device: "E4", Timestamp: base, Values: []float64{0.1}},
		{Device: "Actigraph", Timestamp: base.Add(time.Second), Values: []float64{0.5}},
		{Device: "E4", Timestamp: base.Add(2 * time.Second), Values: []float64{0.3}},
	}

	times, values := Pivot(rows, []string{"v"}).DeviceSeries("E4", 0)
	if len(times) != 2 || len(values) != 2 {
		t.Fatalf("expected 2 aligned points for E4, got %d times and %d values", len(times), len(values))
	}
	if values[0] != 0.1 || values[1] != 0.3 {
		t.Errorf("unexpected E4 values %v", values)
	}
}

func TestWriteCSVGroupsColumnsByValue(t *testing.T) {
	dir, err := ioutil.TempDir("", "chart")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	base := time.Date(2017, 4, 6, 16, 0, 0, 0, time.Local)
	rows := []Row{
		{Device: "A", Timestamp: base, Values: []float64{1, 2}},
		{Device: "B", Timestamp: base, Values: []float64{3, 4}},
	}

	path := filepath.Join(dir, "wide.csv")
	if err := Pivot(rows, []string{"x", "y"}).WriteCSV(path); err != nil {
		t.Fatal(err)
	}

	content, err := ioutil.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "Timestamp,x_A,x_B,y_A,y_B\n"
	got := string(content)
	if len(got) < len(want) || got[:len(want)] != want {
		t.Errorf("expected header %q, got %q", want, got)
	}
}

func TestLoadPlotDefinitions(t *testing.T) {
	dir, err := ioutil.TempDir("", "chart")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "plots.json")
	document := `[
		{
			"label": "dominant wrist overlay",
			"person": "Jon",
			"devices": ["GENEActiv_black", "E4"],
			"start": "2017-04-06 16:20",
			"stop": "2017-04-07 16:03"
		}
	]`
	if err := ioutil.WriteFile(path, []byte(document), 0644); err != nil {
		t.Fatal(err)
	}

	definitions, err := LoadPlotDefinitions(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(definitions) != 1 {
		t.Fatalf("expected 1 definition, got %d", len(definitions))
	}
	def := definitions[0]
	if def.Person != "Jon" || len(def.Devices) != 2 {
		t.Errorf("unexpected definition %+v", def)
	}
	if !def.Stop.After(def.Start) {
		t.Errorf("expected stop after start, got %s / %s", def.Start, def.Stop)
	}
}

func TestLoadPlotDefinitionsRejectsInvalid(t *testing.T) {
	dir, err := ioutil.TempDir("", "chart")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "plots.json")
	document := `[{"label": "no person", "devices": ["E4"], "start": "2017-04-06 16:20", "stop": "2017-04-07 16:03"}]`
	if err := ioutil.WriteFile(path, []byte(document), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadPlotDefinitions(path); err == nil {
		t.Error("expected an invalid definitions file to be rejected")
	}
}

func TestLoadColors(t *testing.T) {
	dir, err := ioutil.TempDir("", "chart")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "colors.json")
	if err := ioutil.WriteFile(path, []byte(`{"E4": "#1f77b4"}`), 0644); err != nil {
		t.Fatal(err)
	}

	colors, err := LoadColors(path)
	if err != nil {
		t.Fatal(err)
	}
	if colors["E4"] != "#1f77b4" {
		t.Errorf("unexpected colors %v", colors)
	}
}
