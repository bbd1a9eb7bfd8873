/* Apache v2 license
*  Copyright (C) <2019> MindWear
*
*  SPDX-License-Identifier: Apache-2.0
 */

package chart

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/mindwear/comparison-service/app/device"
)

const (
	figureWidth  = 10 * vg.Inch
	figureHeight = 8 * vg.Inch
	timeFormat   = "01-02 15:04"
)

// Figure renders one overlay chart of the wide table's first value column.
type Figure struct {
	Title       string
	Table       *WideTable
	Colors      Colors
	Annotations []Annotation
}

// Save renders the figure and writes it at the given path. The extension
// picks the encoder, .svg for the archive copy and .png for quick viewing.
func (f *Figure) Save(path string) error {
	p, err := plot.New()
	if err != nil {
		return errors.Wrap(err, "unable to create figure")
	}

	p.Title.Text = f.Title
	p.X.Tick.Marker = plot.TimeTicks{Format: timeFormat}
	p.Y.Label.Text = "unit cube normalized vector length"
	p.Y.Min = 0
	p.Y.Max = 1

	for _, name := range f.Table.Devices {
		times, values := f.Table.DeviceSeries(name, 0)
		if len(times) == 0 {
			continue
		}
		pts := make(plotter.XYs, len(times))
		for i := range times {
			pts[i].X = float64(times[i].Unix())
			pts[i].Y = values[i]
		}

		lineColor, err := parseHexColor(f.Colors[name])
		if err != nil {
			return errors.Wrapf(err, "no usable color for %s", name)
		}

		// the sparse Wavelet stream reads better as points than as a line
		if name == string(device.Wavelet) {
			scatter, err := plotter.NewScatter(pts)
			if err != nil {
				return errors.Wrapf(err, "unable to plot %s", name)
			}
			scatter.GlyphStyle.Color = lineColor
			p.Add(scatter)
			p.Legend.Add(displayLabel(name), scatter)
			continue
		}

		line, err := plotter.NewLine(pts)
		if err != nil {
			return errors.Wrapf(err, "unable to plot %s", name)
		}
		line.Color = lineColor
		p.Add(line)
		p.Legend.Add(displayLabel(name), line)
	}

	if err := f.addAnnotations(p); err != nil {
		return err
	}

	p.Legend.Top = true
	return errors.Wrapf(p.Save(figureWidth, figureHeight, path), "unable to save figure %s", path)
}

// addAnnotations draws each wear interval as a horizontal segment near the
// floor of the figure, stacked so overlapping intervals stay readable.
func (f *Figure) addAnnotations(p *plot.Plot) error {
	for i, a := range f.Annotations {
		y := 0.04 + 0.08*float64(i)
		segment := plotter.XYs{
			{X: float64(a.Start.Unix()), Y: y},
			{X: float64(a.Stop.Unix()), Y: y},
		}
		line, err := plotter.NewLine(segment)
		if err != nil {
			return errors.Wrapf(err, "unable to draw annotation %q", a.Label)
		}
		line.Color = color.Gray{Y: 80}
		line.Width = vg.Points(2)
		p.Add(line)

		labels, err := plotter.NewLabels(plotter.XYLabels{
			XYs:    plotter.XYs{{X: float64(a.Start.Unix()), Y: y + 0.01}},
			Labels: []string{a.Label},
		})
		if err != nil {
			return errors.Wrapf(err, "unable to label annotation %q", a.Label)
		}
		p.Add(labels)
	}
	return nil
}

// displayLabel maps an internal device name to the vendor's preferred
// spelling for legends and titles.
func displayLabel(name string) string {
	switch {
	case strings.HasPrefix(name, "GENEActiv"):
		return "GENEActiv"
	case name == string(device.Actigraph):
		return "ActiGraph"
	default:
		return name
	}
}

// parseHexColor decodes a "#rrggbb" string.
func parseHexColor(value string) (color.Color, error) {
	if len(value) != 7 || value[0] != '#' {
		return nil, fmt.Errorf("expected #rrggbb, got %q", value)
	}
	rgb, err := strconv.ParseUint(value[1:], 16, 32)
	if err != nil {
		return nil, fmt.Errorf("expected #rrggbb, got %q", value)
	}
	return color.RGBA{
		R: uint8(rgb >> 16),
		G: uint8(rgb >> 8),
		B: uint8(rgb),
		A: 255,
	}, nil
}
