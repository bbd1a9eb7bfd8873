/* Apache v2 license
*  Copyright (C) <2019> MindWear
*
*  SPDX-License-Identifier: Apache-2.0
 */

package reading

import "time"

// TimestampLayout is the layout organized tables are written with. It matches
// the microsecond-resolution form the rest of the toolchain expects.
const TimestampLayout = "2006-01-02 15:04:05.000000"

// Reading is one device sample on the shared Linux-epoch time axis. Timestamp
// uniqueness is not guaranteed across devices.
type Reading struct {
	Timestamp time.Time
	Values    []float64
}

// Series holds the readings of one (device, sensor) pair. Columns names the
// value columns, in the order they appear in each Reading.
type Series struct {
	Device   string
	Sensor   string
	Columns  []string
	Readings []Reading
}

// ParseResult is the outcome of parsing one timestamp cell: either a usable
// instant or the reason it could not be used. Callers decide whether to skip
// and log; nothing is swallowed silently.
type ParseResult struct {
	Timestamp time.Time
	Reason    string
}

// Parsed reports whether the cell produced a usable timestamp.
func (p ParseResult) Parsed() bool {
	return p.Reason == ""
}
