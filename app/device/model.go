/* Apache v2 license
*  Copyright (C) <2019> MindWear
*
*  SPDX-License-Identifier: Apache-2.0
 */

package device

// Device identifies one physical wearable unit in the study. The two
// GENEActiv units are tracked separately because they were worn by different
// people at the same time.
type Device string

const (
	Actigraph      Device = "Actigraph"
	E4             Device = "E4"
	Embrace        Device = "Embrace"
	GENEActivBlack Device = "GENEActiv_black"
	GENEActivPink  Device = "GENEActiv_pink"
	Wavelet        Device = "Wavelet"
)

// All returns every device in the study, in stable order.
func All() []Device {
	return []Device{Actigraph, E4, Embrace, GENEActivBlack, GENEActivPink, Wavelet}
}

// Valid reports whether d names a known device.
func Valid(d Device) bool {
	for _, known := range All() {
		if known == d {
			return true
		}
	}
	return false
}

// Sensors returns the sensor streams each device records.
func (d Device) Sensors() []string {
	switch d {
	case Actigraph:
		return []string{"accelerometer", "ecg", "light"}
	case E4:
		return []string{"accelerometer", "ppg", "eda", "temperature"}
	case Embrace:
		return []string{"accelerometer", "gyro", "eda", "temperature"}
	case GENEActivBlack, GENEActivPink:
		return []string{"accelerometer", "light", "temperature"}
	case Wavelet:
		return []string{"accelerometer", "gyro", "ppg"}
	}
	return nil
}

// AccelScale returns the divisor that converts this device's raw
// accelerometer counts to g. The conversion is linear and invertible.
//
// TODO: confirm with the GENEActiv vendor whether exports are 1/8g or 1/4g;
// their docs say 1/8g but the exports only decode sensibly at 1/4g, so the
// divisor stays 4 to match observed data.
func (d Device) AccelScale() float64 {
	switch d {
	case Actigraph:
		return 512
	case E4:
		return 64
	case GENEActivBlack, GENEActivPink:
		return 4
	case Wavelet:
		return 64
	}
	return 1
}

// ToG converts a raw accelerometer count to g.
func (d Device) ToG(raw float64) float64 {
	return raw / d.AccelScale()
}

// FromG converts g back to the device's raw count.
func (d Device) FromG(g float64) float64 {
	return g * d.AccelScale()
}
