/* Apache v2 license
*  Copyright (C) <2019> MindWear
*
*  SPDX-License-Identifier: Apache-2.0
 */

package placement

import (
	"fmt"
	"time"

	"github.com/mindwear/comparison-service/app/device"
)

// PersonWrist identifies a wearer and which wrist a device was worn on.
type PersonWrist struct {
	Wearer string
	Wrist  string
}

// Empty reports whether the assignment cell was blank in the log.
func (pw PersonWrist) Empty() bool {
	return pw.Wearer == "" && pw.Wrist == ""
}

func (pw PersonWrist) String() string {
	return fmt.Sprintf("%s_%s", pw.Wearer, pw.Wrist)
}

// WearInterval says device was worn by PersonWrist from Start until just
// before Stop. Intervals are derived once per run from the placement log and
// never persisted as authoritative state.
type WearInterval struct {
	PersonWrist PersonWrist
	Device      device.Device
	Start       time.Time
	Stop        time.Time
}

// Log is the merged placement log: for each recorded epoch timestamp, which
// wearer and wrist had each device. A device missing from a timestamp's map
// was not worn at that time.
type Log struct {
	// Timestamps holds the distinct recorded instants, sorted ascending.
	Timestamps []int64
	// Assignments maps epoch seconds to per-device assignments. Only cells
	// with both a wearer and a wrist recorded become assignments.
	Assignments map[int64]map[device.Device]PersonWrist
}
