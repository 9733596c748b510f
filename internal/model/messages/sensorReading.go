package messages

import (
	"time"
)

// SensorReading carries one decoded environment packet (gas/smoke/flame
// channels) for a site. Every channel is optional: a nil pointer means "not
// measured this tick", never "measured zero".
type SensorReading struct {
	SiteID         string             `json:"site_id"`
	GasADC         *float64           `json:"gas_adc,omitempty"`       // raw ADC, converted to ppm by the controller
	GasPPM         *float64           `json:"gas_ppm,omitempty"`       // pre-converted ppm, if the edge did it
	SmokePct       *float64           `json:"smoke_pct,omitempty"`     // [0,100]
	FlameAnalogPct *float64           `json:"flame_analog_pct,omitempty"` // [0,100]
	FlameDigital   *int               `json:"flame_digital,omitempty"` // hardware digital flame pin
	Raw            map[string]float64 `json:"raw,omitempty"`           // diagnostic passthrough (adc1_raw, vbat, ...)
	Timestamp      time.Time          `json:"timestamp"`
}
