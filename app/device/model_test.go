package device

import (
	"math"
	"testing"
)

const (
	// floatPrecision is the largest difference allowed for comparing floating point numbers in this test file
	floatPrecision = 1e-12
)

func TestScaleConversionsInvertible(t *testing.T) {
	sampleCounts := []float64{-2048, -512, -64, -4, -1, 0, 1, 4, 64, 512, 777, 2048}

	for _, d := range All() {
		for _, raw := range sampleCounts {
			g := d.ToG(raw)
			back := d.FromG(g)
			if math.Abs(raw-back) > floatPrecision {
				t.Errorf("%s: converting %v counts to g and back gave %v (diff %v)",
					d, raw, back, math.Abs(raw-back))
			}
		}
	}
}

func TestAccelScaleValues(t *testing.T) {
	expected := map[Device]float64{
		Actigraph:      512,
		E4:             64,
		GENEActivBlack: 4,
		GENEActivPink:  4,
		Wavelet:        64,
	}
	for d, factor := range expected {
		if d.AccelScale() != factor {
			t.Errorf("%s: expected scale factor %v, got %v", d, factor, d.AccelScale())
		}
	}
}

func TestValid(t *testing.T) {
	for _, d := range All() {
		if !Valid(d) {
			t.Errorf("%s should be a valid device", d)
		}
	}
	if Valid(Device("Fitbit_Blaze")) {
		t.Error("Fitbit_Blaze is not part of the study and should not validate")
	}
}
