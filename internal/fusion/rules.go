package fusion

import "fmt"

// The original controller encoded the alarm priorities as a run of
// overlapping if-blocks. Here each priority is an independent evaluator over
// a shared per-call state, folded left-to-right by Fuse: sources accumulate,
// confidence deltas sum, the last triggering reason wins. Earlier rules leave
// detection marks (thermalDetected, flameDetected, ...) that later
// correlation rules read.

type outcome struct {
	triggered       bool
	sources         []string
	confidence      float64
	reason          string
	forceConfidence bool // critical override: confidence becomes exactly 1.0
}

type evalState struct {
	cfg     Config
	reading Reading

	thermalDetected bool
	thermalMax      float64
	hotCells        []Cell
	smokeDetected   bool
	flameDetected   bool
}

type rule func(*evalState) outcome

// ruleChain is the alarm priority order. All rules run on every call.
var ruleChain = []rule{
	thermalPass,
	smokeRule,
	flameThermalRule,
	visionRule,
	gasRule,
	criticalOverrideRule,
}

// thermalPass scans the grid, records the maximum and the hot cells, and
// marks thermal as detected when the maximum qualifies. It never alarms on
// its own; the correlation rules and the critical override build on it.
func thermalPass(st *evalState) outcome {
	grid := st.reading.Thermal
	if grid == nil {
		return outcome{}
	}
	for ri, row := range grid {
		for ci, v := range row {
			if v > st.thermalMax {
				st.thermalMax = v
			}
			if v >= st.cfg.TempThreshold {
				st.hotCells = append(st.hotCells, Cell{Row: ri, Col: ci})
			}
		}
	}
	if st.thermalMax < st.cfg.TempThreshold {
		return outcome{}
	}
	st.thermalDetected = true
	return outcome{sources: []string{"thermal"}, confidence: weightThermal}
}

// smokeRule: priority 1, standalone trigger.
func smokeRule(st *evalState) outcome {
	v := st.reading.SmokePct
	if v == nil || *v < st.cfg.SmokeThresholdPct {
		return outcome{}
	}
	st.smokeDetected = true
	return outcome{
		triggered:  true,
		sources:    []string{"smoke"},
		confidence: weightSmoke,
		reason:     fmt.Sprintf("smoke %.1f%% >= threshold %.1f%%", *v, st.cfg.SmokeThresholdPct),
	}
}

// flameThermalRule: priority 2. Either flame signal alone counts as detected
// (source + weight) but only the thermal correlation alarms.
func flameThermalRule(st *evalState) outcome {
	analog := st.reading.FlameAnalogPct
	digital := st.reading.FlameDigital
	if analog != nil && *analog >= st.cfg.FlameThresholdPct {
		st.flameDetected = true
	}
	if digital != nil && *digital == st.cfg.FlameActiveValue {
		st.flameDetected = true
	}
	if !st.flameDetected {
		return outcome{}
	}
	o := outcome{sources: []string{"flame"}, confidence: weightFlame}
	if st.thermalDetected {
		o.triggered = true
		o.confidence += weightFlameThermal
		o.reason = fmt.Sprintf("flame detected with thermal max %.1f°C >= %.1f°C",
			st.thermalMax, st.cfg.TempThreshold)
	}
	return o
}

// visionRule: priority 3. Vision never alarms alone; it needs at least one
// corroborating sensor channel already detected this call.
func visionRule(st *evalState) outcome {
	score := st.reading.VisionScore
	if score == nil || *score < visionCutoff {
		return outcome{}
	}
	o := outcome{sources: []string{"vision"}, confidence: weightVision}
	if st.flameDetected || st.thermalDetected || st.smokeDetected {
		o.triggered = true
		o.reason = fmt.Sprintf("vision score %.2f corroborated by sensor evidence", *score)
	}
	return o
}

// gasRule: priority 4, standalone trigger like smoke.
func gasRule(st *evalState) outcome {
	v := st.reading.GasPPM
	if v == nil || *v < st.cfg.GasPPMThreshold {
		return outcome{}
	}
	return outcome{
		triggered:  true,
		sources:    []string{"gas"},
		confidence: weightGas,
		reason:     fmt.Sprintf("gas %.0f ppm >= threshold %.0f ppm", *v, st.cfg.GasPPMThreshold),
	}
}

// criticalOverrideRule runs last and wins over every other reason, forcing
// confidence to exactly 1.0. Sources already collected stay.
func criticalOverrideRule(st *evalState) outcome {
	if st.reading.Thermal == nil || st.thermalMax < st.cfg.CriticalTempThreshold {
		return outcome{}
	}
	return outcome{
		triggered:       true,
		forceConfidence: true,
		reason: fmt.Sprintf("critical temperature %.1f°C >= %.1f°C",
			st.thermalMax, st.cfg.CriticalTempThreshold),
	}
}
