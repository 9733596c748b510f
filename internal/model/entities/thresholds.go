package entities

// Thresholds holds the per-site alarm thresholds. Values are accepted as
// configured; an unreachable threshold simply never triggers.
type Thresholds struct {
	TempThreshold         float64 `json:"temp_threshold"`          // °C, basic thermal qualifying threshold
	CriticalTempThreshold float64 `json:"critical_temp_threshold"` // °C, immediate-alarm override
	GasPPMThreshold       float64 `json:"gas_ppm_threshold"`
	SmokeThresholdPct     float64 `json:"smoke_threshold_pct"`
	FlameThresholdPct     float64 `json:"flame_threshold_pct"`
	FlameActiveValue      int     `json:"flame_active_value"` // digital value meaning "flame detected"
	// MinSources is carried in configuration but the priority rules do not
	// enforce it as a strict gate: smoke and gas alarm on their own.
	MinSources int `json:"min_sources"`
}
