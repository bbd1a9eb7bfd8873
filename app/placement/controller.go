/* Apache v2 license
*  Copyright (C) <2019> MindWear
*
*  SPDX-License-Identifier: Apache-2.0
 */

package placement

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	metrics "github.com/rcrowley/go-metrics"
	log "github.com/sirupsen/logrus"

	"github.com/mindwear/comparison-service/app/device"
	"github.com/mindwear/comparison-service/pkg/csvkit"
)

// columnDevices maps the hand-maintained log's column headers to devices. The
// log predates the device naming used everywhere else.
var columnDevices = map[string]device.Device{
	"Actigraph":         device.Actigraph,
	"E4":                device.E4,
	"Embrace":           device.Embrace,
	"GeneActiv (black)": device.GENEActivBlack,
	"GeneActiv (pink)":  device.GENEActivPink,
	"Biostrap":          device.Wavelet,
}

// Load reads person.csv and wrist.csv from the placement directory and
// outer-merges them on Timestamp into per-device assignments.
func Load(placementDir string) (*Log, error) {
	person, err := loadLog(filepath.Join(placementDir, "person.csv"))
	if err != nil {
		return nil, err
	}
	wrist, err := loadLog(filepath.Join(placementDir, "wrist.csv"))
	if err != nil {
		return nil, err
	}

	merged := &Log{Assignments: map[int64]map[device.Device]PersonWrist{}}
	for _, ts := range mergeTimestamps(person, wrist) {
		assignments := map[device.Device]PersonWrist{}
		for _, d := range device.All() {
			pw := PersonWrist{Wearer: person[ts][d], Wrist: wrist[ts][d]}
			// an assignment needs both halves of the record
			if pw.Wearer == "" || pw.Wrist == "" {
				continue
			}
			assignments[d] = pw
		}
		merged.Timestamps = append(merged.Timestamps, ts)
		merged.Assignments[ts] = assignments
	}

	return merged, nil
}

// Reconcile derives wear intervals from the merged log. Every recorded
// timestamp except the last starts an interval stopping at its successor; the
// final timestamp has no successor and opens no interval. That boundary
// policy is deliberate and preserved from the study protocol.
func Reconcile(l *Log) []WearInterval {
	mIntervals := metrics.GetOrRegisterGauge(`Placement.Reconcile.Intervals`, nil)
	timer := metrics.GetOrRegisterTimer(`Placement.Reconcile.Latency`, nil)
	begin := time.Now()

	var intervals []WearInterval
	for i, ts := range l.Timestamps {
		if i == len(l.Timestamps)-1 {
			break
		}
		next := l.Timestamps[i+1]
		for _, d := range device.All() {
			pw, ok := l.Assignments[ts][d]
			if !ok {
				continue
			}
			intervals = append(intervals, WearInterval{
				PersonWrist: pw,
				Device:      d,
				Start:       time.Unix(ts, 0),
				Stop:        time.Unix(next, 0),
			})
		}
	}

	sort.SliceStable(intervals, func(i, j int) bool {
		return intervals[i].Start.Before(intervals[j].Start)
	})

	mIntervals.Update(int64(len(intervals)))
	timer.Update(time.Since(begin))
	log.WithFields(log.Fields{
		"Method":     "placement.Reconcile",
		"Timestamps": len(l.Timestamps),
		"Intervals":  len(intervals),
	}).Info("Reconciled placement log")

	return intervals
}

// PersonWrists returns the distinct (wearer, wrist) pairs in the intervals,
// sorted for stable batch order.
func PersonWrists(intervals []WearInterval) []PersonWrist {
	seen := map[PersonWrist]bool{}
	var pairs []PersonWrist
	for _, interval := range intervals {
		if !seen[interval.PersonWrist] {
			seen[interval.PersonWrist] = true
			pairs = append(pairs, interval.PersonWrist)
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].Wearer != pairs[j].Wearer {
			return pairs[i].Wearer < pairs[j].Wearer
		}
		return pairs[i].Wrist < pairs[j].Wrist
	})
	return pairs
}

// Devices returns the distinct devices a pair wore, in first-seen order.
func Devices(intervals []WearInterval, pw PersonWrist) []device.Device {
	var devices []device.Device
	seen := map[device.Device]bool{}
	for _, interval := range intervals {
		if interval.PersonWrist != pw || seen[interval.Device] {
			continue
		}
		seen[interval.Device] = true
		devices = append(devices, interval.Device)
	}
	return devices
}

// Overall returns min(start) and max(stop) across a pair's intervals.
func Overall(intervals []WearInterval, pw PersonWrist) (start, stop time.Time, ok bool) {
	for _, interval := range intervals {
		if interval.PersonWrist != pw {
			continue
		}
		if !ok || interval.Start.Before(start) {
			start = interval.Start
		}
		if !ok || interval.Stop.After(stop) {
			stop = interval.Stop
		}
		ok = true
	}
	return start, stop, ok
}

// ValidateNoOverlap checks the invariant that one device's intervals never
// overlap for different wearers. A violation means the log was miskeyed.
func ValidateNoOverlap(intervals []WearInterval) error {
	byDevice := map[device.Device][]WearInterval{}
	for _, interval := range intervals {
		byDevice[interval.Device] = append(byDevice[interval.Device], interval)
	}

	for d, deviceIntervals := range byDevice {
		for i := 0; i < len(deviceIntervals); i++ {
			for j := i + 1; j < len(deviceIntervals); j++ {
				a, b := deviceIntervals[i], deviceIntervals[j]
				if a.PersonWrist.Wearer == b.PersonWrist.Wearer {
					continue
				}
				if a.Start.Before(b.Stop) && b.Start.Before(a.Stop) {
					return errors.Errorf("device %s assigned to both %s and %s between %s and %s",
						d, a.PersonWrist, b.PersonWrist, b.Start, a.Stop)
				}
			}
		}
	}
	return nil
}

// loadLog reads one half of the placement log (person.csv or wrist.csv) into
// timestamp -> device -> cell value.
func loadLog(path string) (map[int64]map[device.Device]string, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "placement log %s is missing", path)
	}

	table, err := csvkit.ReadFile(path, csvkit.Options{Header: true, SkipBlank: true})
	if err != nil {
		return nil, err
	}

	columns := map[int]device.Device{}
	for i, header := range table.Header {
		if d, ok := columnDevices[header]; ok {
			columns[i] = d
		}
	}
	if len(columns) == 0 {
		return nil, errors.Errorf("placement log %s has no recognized device columns", path)
	}

	entries := map[int64]map[device.Device]string{}
	unparsable := 0
	for _, row := range table.Rows {
		if len(row) == 0 {
			continue
		}
		// timestamps in the log are epoch seconds
		result := parseEpoch(row[0])
		if !result.ok {
			unparsable++
			continue
		}
		cells := map[device.Device]string{}
		for i, d := range columns {
			if i < len(row) {
				cells[d] = cleanCell(row[i])
			}
		}
		entries[result.seconds] = cells
	}

	if unparsable > 0 {
		log.WithFields(log.Fields{
			"Method": "placement.loadLog",
			"Path":   path,
		}).Warnf("skipped %d rows with unparsable timestamps", unparsable)
	}

	return entries, nil
}

type epochResult struct {
	seconds int64
	ok      bool
}

func parseEpoch(cell string) epochResult {
	seconds, err := strconv.ParseInt(strings.TrimSpace(cell), 10, 64)
	if err != nil {
		return epochResult{}
	}
	return epochResult{seconds: seconds, ok: true}
}

// cleanCell normalizes blank markers the spreadsheet exports use for "not
// worn".
func cleanCell(cell string) string {
	cell = strings.TrimSpace(cell)
	if cell == "nan" || cell == "NaN" || cell == "NA" {
		return ""
	}
	return cell
}

func mergeTimestamps(person, wrist map[int64]map[device.Device]string) []int64 {
	seen := map[int64]bool{}
	var merged []int64
	for ts := range person {
		if !seen[ts] {
			seen[ts] = true
			merged = append(merged, ts)
		}
	}
	for ts := range wrist {
		if !seen[ts] {
			seen[ts] = true
			merged = append(merged, ts)
		}
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i] < merged[j] })
	return merged
}
