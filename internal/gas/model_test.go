package gas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResistanceZeroADCFiniteAndPositive(t *testing.T) {
	m := New()
	rs := m.Resistance(0)

	assert.Greater(t, rs, 0.0)
	// epsilon-floored Vout gives the "infinite resistance" plateau
	assert.Greater(t, rs, m.Resistance(100))
}

func TestResistanceDecreasesWithADC(t *testing.T) {
	m := New()
	assert.Greater(t, m.Resistance(100), m.Resistance(900))
	assert.Greater(t, m.Resistance(900), m.Resistance(3000))
}

func TestPPMMonotonicInADC(t *testing.T) {
	m := New()
	for _, g := range SupportedGases() {
		lo, err := m.PPM(100, g)
		require.NoError(t, err)
		hi, err := m.PPM(900, g)
		require.NoError(t, err)
		assert.Greater(t, hi, lo, "gas %s: higher ADC must mean higher ppm", g)
	}
}

func TestPPMUnknownGasFails(t *testing.T) {
	m := New()
	_, err := m.PPM(500, "XYZ")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "XYZ")
	assert.Contains(t, err.Error(), "co2") // names the supported set
}

func TestPPMNeverNegative(t *testing.T) {
	m := New()
	for _, adc := range []float64{0, 1, 500, 4095, 9999} {
		ppm, err := m.PPM(adc, "co2")
		require.NoError(t, err)
		assert.GreaterOrEqual(t, ppm, 0.0)
	}
}

func TestAirQualityBands(t *testing.T) {
	m := New()

	tests := []struct {
		name string
		adc  float64
	}{
		{"clean air", 200},
		{"mid scale", 2000},
		{"near full scale", 4000},
	}
	lastIdx := -1
	for _, tt := range tests {
		idx, label, ppm := m.AirQuality(tt.adc)
		assert.GreaterOrEqual(t, idx, 0, tt.name)
		assert.Less(t, idx, 6, tt.name)
		assert.NotEmpty(t, label, tt.name)
		assert.GreaterOrEqual(t, ppm, 0.0, tt.name)
		// higher ADC never lands in a cleaner band
		assert.GreaterOrEqual(t, idx, lastIdx, tt.name)
		lastIdx = idx
	}
}

func TestAirQualityBandLabels(t *testing.T) {
	m := New()
	// bucket follows the co2-equivalent ppm exactly
	idx, label, ppm := m.AirQuality(3500)
	switch {
	case ppm < 400:
		assert.Equal(t, 0, idx)
		assert.Equal(t, "Excellent", label)
	case ppm >= 2500:
		assert.Equal(t, 5, idx)
		assert.Equal(t, "Hazardous", label)
	}
}

func TestCalibrateR0(t *testing.T) {
	m := New()
	rs := m.Resistance(1200)
	got := m.CalibrateR0(1200, 3.6)

	assert.InDelta(t, rs/3.6, got, 1e-9)
	r0, _, _ := m.Calibration()
	assert.Equal(t, got, r0)
}

func TestCalibrateR0IgnoresBadRatio(t *testing.T) {
	m := New()
	before, _, _ := m.Calibration()
	got := m.CalibrateR0(1200, 0)
	assert.Equal(t, before, got)
}

func TestSetCalibrationPartial(t *testing.T) {
	m := New()
	_, rlBefore, _ := m.Calibration()

	m.SetCalibration(50, 0, 3.3)

	r0, rl, vIn := m.Calibration()
	assert.Equal(t, 50.0, r0)
	assert.Equal(t, rlBefore, rl) // zero keeps current
	assert.Equal(t, 3.3, vIn)
}
