/* Apache v2 license
*  Copyright (C) <2019> MindWear
*
*  SPDX-License-Identifier: Apache-2.0
 */

package mindboggle

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// Environment holds the install locations the neuroimaging toolchain
// requires. All four are mandatory.
type Environment struct {
	SubjectsDir     string
	Mindboggle      string
	MindboggleData  string
	MindboggleTools string
}

// LoadEnvironment reads the required env vars. A missing var is a fatal
// configuration error for the caller, the toolchain cannot run without its
// install locations.
func LoadEnvironment() (Environment, error) {
	env := Environment{
		SubjectsDir:     os.Getenv("SUBJECTS_DIR"),
		Mindboggle:      os.Getenv("MINDBOGGLE"),
		MindboggleData:  os.Getenv("MINDBOGGLE_DATA"),
		MindboggleTools: os.Getenv("MINDBOGGLE_TOOLS"),
	}

	missing := []string{}
	if env.SubjectsDir == "" {
		missing = append(missing, "SUBJECTS_DIR")
	}
	if env.Mindboggle == "" {
		missing = append(missing, "MINDBOGGLE")
	}
	if env.MindboggleData == "" {
		missing = append(missing, "MINDBOGGLE_DATA")
	}
	if env.MindboggleTools == "" {
		missing = append(missing, "MINDBOGGLE_TOOLS")
	}
	if len(missing) > 0 {
		return Environment{}, errors.Errorf("required environment variables are unset: %v", missing)
	}
	return env, nil
}

// Options selects which sub-flows the pipeline includes.
type Options struct {
	SkipLabels   bool
	SkipShapes   bool
	SkipFeatures bool
	SkipTables   bool
}

var hemispheres = []string{"lh", "rh"}

// BuildPipeline assembles the per-subject, per-hemisphere workflow graph.
// Nodes write into <output>/workingdir and final artifacts into
// <output>/results; the directory tree is fixed by the external engine's
// conventions.
func BuildPipeline(env Environment, output string, subjects []string, opts Options) (*Workflow, error) {
	if len(subjects) == 0 {
		return nil, errors.New("no subjects given")
	}

	w := NewWorkflow("mindboggle")
	workingDir := filepath.Join(output, "workingdir")
	resultsDir := filepath.Join(output, "results")

	for _, subject := range subjects {
		for _, hemi := range hemispheres {
			if err := addHemisphereFlows(w, env, workingDir, resultsDir, subject, hemi, opts); err != nil {
				return nil, err
			}
		}
	}
	return w, nil
}

// addHemisphereFlows wires the label, shape, feature, and table flows for one
// (subject, hemisphere) pair. Later flows consume the earlier flows' surface
// outputs, so skipped flows also prune their dependents' connections.
func addHemisphereFlows(w *Workflow, env Environment, workingDir, resultsDir, subject, hemi string, opts Options) error {
	suffix := subject + "_" + hemi
	surface := filepath.Join(env.SubjectsDir, subject, "surf", hemi+".pial")

	convert := &Node{
		Name:    "convert_surface_" + suffix,
		Command: filepath.Join(env.MindboggleTools, "mris_convert_wrapper"),
		Inputs:  map[string]string{"surface": surface},
		Outputs: map[string]string{"vtk": filepath.Join(workingDir, suffix+".pial.vtk")},
	}
	if err := w.Add(convert); err != nil {
		return err
	}

	if !opts.SkipLabels {
		labels := &Node{
			Name:    "label_" + suffix,
			Command: filepath.Join(env.Mindboggle, "label_surface"),
			Args:    []string{"--atlas", filepath.Join(env.MindboggleData, "atlases", "DKT_atlas.vtk")},
			Outputs: map[string]string{"labels": filepath.Join(workingDir, suffix+".labels.vtk")},
		}
		if err := w.Add(labels); err != nil {
			return err
		}
		if err := w.Connect(convert.Name, "vtk", labels.Name, "surface"); err != nil {
			return err
		}
	}

	if !opts.SkipShapes {
		if err := addShapeFlow(w, env, workingDir, suffix, convert.Name); err != nil {
			return err
		}
	}

	if !opts.SkipFeatures {
		if err := addFeatureFlow(w, env, workingDir, suffix, convert.Name, opts); err != nil {
			return err
		}
	}

	if !opts.SkipTables {
		if err := addTableFlow(w, env, resultsDir, subject, suffix, opts); err != nil {
			return err
		}
	}
	return nil
}

// addShapeFlow adds the per-vertex shape measure nodes, each a compiled
// binary from the toolchain.
func addShapeFlow(w *Workflow, env Environment, workingDir, suffix, convertName string) error {
	measures := []struct {
		name   string
		binary string
	}{
		{"area", "PointAreaMain"},
		{"travel_depth", "TravelDepthMain"},
		{"curvature", "CurvatureMain"},
	}

	for _, m := range measures {
		node := &Node{
			Name:    m.name + "_" + suffix,
			Command: filepath.Join(env.MindboggleTools, m.binary),
			Outputs: map[string]string{m.name: filepath.Join(workingDir, suffix+"."+m.name+".vtk")},
		}
		if err := w.Add(node); err != nil {
			return err
		}
		if err := w.Connect(convertName, "vtk", node.Name, "surface"); err != nil {
			return err
		}
	}
	return nil
}

// addFeatureFlow extracts folds and sulci from the travel depth map.
func addFeatureFlow(w *Workflow, env Environment, workingDir, suffix, convertName string, opts Options) error {
	folds := &Node{
		Name:    "folds_" + suffix,
		Command: filepath.Join(env.Mindboggle, "extract_folds"),
		Outputs: map[string]string{"folds": filepath.Join(workingDir, suffix+".folds.vtk")},
	}
	if err := w.Add(folds); err != nil {
		return err
	}
	if opts.SkipShapes {
		if err := w.Connect(convertName, "vtk", folds.Name, "surface"); err != nil {
			return err
		}
	} else {
		if err := w.Connect("travel_depth_"+suffix, "travel_depth", folds.Name, "depth"); err != nil {
			return err
		}
	}

	sulci := &Node{
		Name:    "sulci_" + suffix,
		Command: filepath.Join(env.Mindboggle, "extract_sulci"),
		Outputs: map[string]string{"sulci": filepath.Join(workingDir, suffix+".sulci.vtk")},
	}
	if err := w.Add(sulci); err != nil {
		return err
	}
	return w.Connect(folds.Name, "folds", sulci.Name, "folds")
}

// addTableFlow writes the per-hemisphere shape table into the results tree.
func addTableFlow(w *Workflow, env Environment, resultsDir, subject, suffix string, opts Options) error {
	table := &Node{
		Name:    "tables_" + suffix,
		Command: filepath.Join(env.Mindboggle, "write_shape_tables"),
		Outputs: map[string]string{"table": filepath.Join(resultsDir, subject, suffix+"_shapes.csv")},
	}
	if err := w.Add(table); err != nil {
		return err
	}

	if !opts.SkipLabels {
		if err := w.Connect("label_"+suffix, "labels", table.Name, "labels"); err != nil {
			return err
		}
	}
	if !opts.SkipShapes {
		for _, measure := range []string{"area", "travel_depth", "curvature"} {
			if err := w.Connect(measure+"_"+suffix, measure, table.Name, measure); err != nil {
				return err
			}
		}
	}
	if !opts.SkipFeatures {
		if err := w.Connect("sulci_"+suffix, "sulci", table.Name, "sulci"); err != nil {
			return err
		}
	}
	return nil
}
