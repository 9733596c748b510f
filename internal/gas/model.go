// Package gas converts raw ADC readings of an MQ-series gas sensor into
// concentration estimates (ppm) and coarse air-quality buckets.
package gas

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
)

// ====== Tunables ======
const (
	// defaultR0: clean-air sensor resistance [kΩ], MQ-135 datasheet ballpark.
	defaultR0 = 76.63
	// defaultRL: load resistance of the divider [kΩ].
	defaultRL = 10.0
	// defaultVIn: supply voltage [V].
	defaultVIn = 5.0
	// defaultADCResolution: full-scale ADC count (12-bit).
	defaultADCResolution = 4095

	// voutEpsilon floors the divider output so an ADC reading of 0 yields a
	// large finite resistance instead of a division artifact.
	voutEpsilon = 0.001
)

// curve is a power-law fit ppm = a * (Rs/R0)^b for one gas species.
// Exponents are negative: a lower Rs/R0 ratio (higher ADC) means more gas.
type curve struct {
	a, b float64
}

var curves = map[string]curve{
	"co2":     {a: 110.47, b: -2.862},
	"co":      {a: 605.18, b: -3.937},
	"nh3":     {a: 102.2, b: -2.473},
	"alcohol": {a: 77.255, b: -3.18},
	"acetone": {a: 34.668, b: -3.369},
	"toluene": {a: 44.947, b: -3.445},
}

// SupportedGases lists the species with a calibrated curve, sorted.
func SupportedGases() []string {
	out := make([]string, 0, len(curves))
	for g := range curves {
		out = append(out, g)
	}
	sort.Strings(out)
	return out
}

// Air-quality bands over CO2-equivalent ppm. Breakpoints are fixed.
type band struct {
	upTo  float64 // exclusive upper bound; last band is open-ended
	label string
}

var bands = []band{
	{400, "Excellent"},
	{700, "Good"},
	{1000, "Moderate"},
	{1500, "Poor"},
	{2500, "Unhealthy"},
	{math.Inf(1), "Hazardous"},
}

// Model holds the calibration state of one sensor channel. Calibration
// mutation is serialized internally; keep one Model per stream when
// calibrating from multiple threads.
type Model struct {
	mu            sync.Mutex
	r0            float64 // clean-air resistance [kΩ]
	rl            float64 // load resistance [kΩ]
	vIn           float64 // supply voltage [V]
	adcResolution float64 // full-scale ADC count
}

// New returns a model with MQ-135 default calibration.
func New() *Model {
	return &Model{
		r0:            defaultR0,
		rl:            defaultRL,
		vIn:           defaultVIn,
		adcResolution: defaultADCResolution,
	}
}

// NewWithCalibration overrides the defaults; non-positive values keep them.
func NewWithCalibration(r0, rl, vIn, adcResolution float64) *Model {
	m := New()
	if r0 > 0 {
		m.r0 = r0
	}
	if rl > 0 {
		m.rl = rl
	}
	if vIn > 0 {
		m.vIn = vIn
	}
	if adcResolution > 0 {
		m.adcResolution = adcResolution
	}
	return m
}

// Resistance derives the instantaneous sensor resistance Rs [kΩ] from a raw
// ADC reading through the voltage-divider relationship. The output voltage is
// epsilon-floored, so adc=0 maps onto a large finite "infinite resistance"
// value rather than failing.
func (m *Model) Resistance(adc float64) float64 {
	m.mu.Lock()
	rl, vIn, res := m.rl, m.vIn, m.adcResolution
	m.mu.Unlock()

	if adc < 0 {
		adc = 0
	}
	if adc > res {
		adc = res
	}
	vOut := (adc / res) * vIn
	if vOut < voutEpsilon {
		vOut = voutEpsilon
	}
	rs := (vIn*rl)/vOut - rl
	if rs < voutEpsilon {
		rs = voutEpsilon
	}
	return rs
}

// PPM estimates the concentration of gasType from a raw ADC reading. An
// unknown species is a hard failure naming the supported set; it never
// substitutes a default curve.
func (m *Model) PPM(adc float64, gasType string) (float64, error) {
	c, ok := curves[strings.ToLower(strings.TrimSpace(gasType))]
	if !ok {
		return 0, fmt.Errorf("unsupported gas type %q (supported: %s)",
			gasType, strings.Join(SupportedGases(), ", "))
	}

	rs := m.Resistance(adc)
	m.mu.Lock()
	r0 := m.r0
	m.mu.Unlock()

	ppm := c.a * math.Pow(rs/r0, c.b)
	if ppm < 0 || math.IsNaN(ppm) {
		ppm = 0
	}
	return ppm, nil
}

// AirQuality maps the CO2-equivalent concentration into one of six fixed
// bands and returns (band index, label, ppm).
func (m *Model) AirQuality(adc float64) (int, string, float64) {
	ppm, _ := m.PPM(adc, "co2") // co2 curve always exists
	for i, b := range bands {
		if ppm < b.upTo {
			return i, b.label, ppm
		}
	}
	last := len(bands) - 1
	return last, bands[last].label, ppm
}

// CalibrateR0 recomputes R0 from a reading taken in known clean air:
// R0 = Rs(adc) / cleanAirRatio. A non-positive ratio is ignored.
func (m *Model) CalibrateR0(adcCleanAir, cleanAirRatio float64) float64 {
	if cleanAirRatio <= 0 {
		m.mu.Lock()
		defer m.mu.Unlock()
		return m.r0
	}
	rs := m.Resistance(adcCleanAir)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.r0 = rs / cleanAirRatio
	return m.r0
}

// SetCalibration overrides any subset of the divider parameters; zero or
// negative arguments leave the current value untouched.
func (m *Model) SetCalibration(r0, rl, vcc float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r0 > 0 {
		m.r0 = r0
	}
	if rl > 0 {
		m.rl = rl
	}
	if vcc > 0 {
		m.vIn = vcc
	}
}

// Calibration returns the current (r0, rl, vIn) parameters.
func (m *Model) Calibration() (r0, rl, vIn float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.r0, m.rl, m.vIn
}
