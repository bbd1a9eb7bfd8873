/* Apache v2 license
*  Copyright (C) <2019> MindWear
*
*  SPDX-License-Identifier: Apache-2.0
 */

package mindboggle

import (
	"context"
	"os"
	"testing"
)

type recordingRunner struct {
	commands []string
}

func (r *recordingRunner) Run(_ context.Context, command string, args ...string) error {
	r.commands = append(r.commands, command)
	return nil
}

func buildChain(t *testing.T) *Workflow {
	t.Helper()
	w := NewWorkflow("chain")
	for _, name := range []string{"a", "b", "c"} {
		if err := w.Add(&Node{Name: name, Command: name, Outputs: map[string]string{"out": name + ".vtk"}}); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Connect("a", "out", "b", "in"); err != nil {
		t.Fatal(err)
	}
	if err := w.Connect("b", "out", "c", "in"); err != nil {
		t.Fatal(err)
	}
	return w
}

func TestSortTopologicalOrder(t *testing.T) {
	w := NewWorkflow("order")
	for _, name := range []string{"late", "early", "middle"} {
		if err := w.Add(&Node{Name: name, Command: name, Outputs: map[string]string{"out": name}}); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Connect("early", "out", "middle", "in"); err != nil {
		t.Fatal(err)
	}
	if err := w.Connect("middle", "out", "late", "in"); err != nil {
		t.Fatal(err)
	}

	sorted, err := w.Sort()
	if err != nil {
		t.Fatal(err)
	}
	position := map[string]int{}
	for i, n := range sorted {
		position[n.Name] = i
	}
	if position["early"] > position["middle"] || position["middle"] > position["late"] {
		t.Errorf("expected early before middle before late, got %v", position)
	}
}

func TestSortRejectsCycle(t *testing.T) {
	w := buildChain(t)
	if err := w.Connect("c", "out", "a", "in"); err != nil {
		t.Fatal(err)
	}
	if _, err := w.Sort(); err == nil {
		t.Error("expected a cycle to be rejected")
	}
}

func TestConnectRequiresOutputField(t *testing.T) {
	w := buildChain(t)
	if err := w.Connect("a", "missing", "b", "in"); err == nil {
		t.Error("expected an unknown output field to be rejected")
	}
	if err := w.Connect("a", "out", "ghost", "in"); err == nil {
		t.Error("expected an unknown node to be rejected")
	}
}

func TestAddRejectsDuplicateName(t *testing.T) {
	w := buildChain(t)
	if err := w.Add(&Node{Name: "a", Command: "a"}); err == nil {
		t.Error("expected a duplicate node name to be rejected")
	}
}

func TestRunExecutesInOrder(t *testing.T) {
	w := buildChain(t)
	runner := &recordingRunner{}
	if err := w.Run(context.Background(), runner); err != nil {
		t.Fatal(err)
	}
	if len(runner.commands) != 3 {
		t.Fatalf("expected 3 commands, got %d", len(runner.commands))
	}
	if runner.commands[0] != "a" || runner.commands[1] != "b" || runner.commands[2] != "c" {
		t.Errorf("unexpected run order %v", runner.commands)
	}
}

func TestLoadEnvironmentMissingVars(t *testing.T) {
	for _, key := range []string{"SUBJECTS_DIR", "MINDBOGGLE", "MINDBOGGLE_DATA", "MINDBOGGLE_TOOLS"} {
		os.Unsetenv(key)
	}
	if _, err := LoadEnvironment(); err == nil {
		t.Error("expected an error when the environment is unset")
	}

	os.Setenv("SUBJECTS_DIR", "/data/subjects")
	os.Setenv("MINDBOGGLE", "/opt/mindboggle")
	os.Setenv("MINDBOGGLE_DATA", "/opt/mindboggle/data")
	os.Setenv("MINDBOGGLE_TOOLS", "/opt/mindboggle/tools")
	defer func() {
		for _, key := range []string{"SUBJECTS_DIR", "MINDBOGGLE", "MINDBOGGLE_DATA", "MINDBOGGLE_TOOLS"} {
			os.Unsetenv(key)
		}
	}()

	env, err := LoadEnvironment()
	if err != nil {
		t.Fatal(err)
	}
	if env.Mindboggle != "/opt/mindboggle" {
		t.Errorf("unexpected environment %+v", env)
	}
}

func TestBuildPipelineFansOutHemispheres(t *testing.T) {
	env := Environment{
		SubjectsDir:     "/data/subjects",
		Mindboggle:      "/opt/mindboggle",
		MindboggleData:  "/opt/mindboggle/data",
		MindboggleTools: "/opt/mindboggle/tools",
	}

	w, err := BuildPipeline(env, "/data/output", []string{"sub01"}, Options{})
	if err != nil {
		t.Fatal(err)
	}

	// per hemisphere: convert, label, 3 shape measures, folds, sulci, tables
	if w.Len() != 16 {
		t.Errorf("expected 16 nodes for one subject, got %d", w.Len())
	}
	for _, name := range []string{"convert_surface_sub01_lh", "label_sub01_rh",
		"travel_depth_sub01_lh", "sulci_sub01_rh", "tables_sub01_lh"} {
		if w.Node(name) == nil {
			t.Errorf("expected node %s", name)
		}
	}

	if _, err := w.Sort(); err != nil {
		t.Errorf("expected an acyclic pipeline: %s", err)
	}
}

func TestBuildPipelineSkipFlags(t *testing.T) {
	env := Environment{
		SubjectsDir:     "/data/subjects",
		Mindboggle:      "/opt/mindboggle",
		MindboggleData:  "/opt/mindboggle/data",
		MindboggleTools: "/opt/mindboggle/tools",
	}

	w, err := BuildPipeline(env, "/data/output", []string{"sub01"},
		Options{SkipLabels: true, SkipShapes: true, SkipFeatures: true, SkipTables: true})
	if err != nil {
		t.Fatal(err)
	}
	// only the surface conversion nodes remain
	if w.Len() != 2 {
		t.Errorf("expected 2 nodes with every flow skipped, got %d", w.Len())
	}
}

func TestBuildPipelineNeedsSubjects(t *testing.T) {
	if _, err := BuildPipeline(Environment{}, "/data/output", nil, Options{}); err == nil {
		t.Error("expected an error for an empty subject list")
	}
}
