// Package fusion implements the per-site multi-sensor alarm decision engine.
//
// Independent collaborators (thermal decoder, env packet decoder, vision
// worker) each call Fuse with whatever subset of readings they have; the
// engine evaluates a fixed, priority-ordered rule chain and always returns a
// complete decision. Apart from the event log and the configured thresholds
// the engine is stateless across calls: each decision is a function of the
// arguments of that call only.
package fusion

import (
	"sync"
	"time"
)

// Fixed per-rule confidence weights and the vision cutoff. Calibration
// constants carried over from field tuning; confidence is a raw accumulator,
// not a probability, and only the critical override clamps it.
const (
	weightThermal      = 0.4
	weightSmoke        = 0.5
	weightFlame        = 0.3
	weightFlameThermal = 0.2
	weightVision       = 0.3
	weightGas          = 0.4

	visionCutoff = 0.7
)

// Config holds the runtime-mutable thresholds of one engine.
type Config struct {
	TempThreshold         float64 // °C, basic thermal qualifying threshold
	CriticalTempThreshold float64 // °C, immediate-alarm override; kept >= TempThreshold
	GasPPMThreshold       float64
	SmokeThresholdPct     float64
	FlameThresholdPct     float64
	FlameActiveValue      int // digital value meaning "flame detected"

	// MinSources is retained as configuration but deliberately NOT enforced
	// as a strict gate: smoke and gas are standalone triggers by design.
	// Requiring N sources here would weaken the safety system.
	MinSources int
}

// DefaultConfig returns the field-tuned default thresholds.
func DefaultConfig() Config {
	return Config{
		TempThreshold:         45,
		CriticalTempThreshold: 60,
		GasPPMThreshold:       400,
		SmokeThresholdPct:     25,
		FlameThresholdPct:     60,
		FlameActiveValue:      1,
		MinSources:            2,
	}
}

// Reading is the argument bundle of a single fusion call. Every field is
// optional; a nil pointer (or nil grid) means "no data this tick", never
// "measured zero".
type Reading struct {
	Thermal        [][]float64 // °C grid, nil = absent
	GasPPM         *float64
	SmokePct       *float64 // [0,100]
	FlameAnalogPct *float64 // [0,100]
	FlameDigital   *int
	VisionScore    *float64 // [0,1]

	// Raw is passed through into the result unchanged for display purposes
	// and never influences the decision.
	Raw map[string]float64
}

// Cell is one thermal grid coordinate.
type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Result is the complete decision synthesized from one call.
type Result struct {
	Alarm      bool
	Reason     string // which rule fired; empty if no alarm
	Confidence float64
	Sources    []string // evaluation order, no duplicates within one call
	HotCells   []Cell   // row-major scan order
	ThermalMax float64  // 0.0 if no grid supplied
	Raw        map[string]float64
	At         time.Time
}

// Engine is the stateful per-site fusion engine. Safe for concurrent use:
// threshold reads are snapshotted per call and the event log append is
// locked. The intended deployment shape is one Engine per monitored site.
type Engine struct {
	mu  sync.RWMutex // guards cfg
	cfg Config
	log *EventLog
}

// New builds an engine. Zero thresholds fall back to the defaults and the
// critical threshold is raised to at least the basic one.
func New(cfg Config) *Engine {
	def := DefaultConfig()
	if cfg.TempThreshold <= 0 {
		cfg.TempThreshold = def.TempThreshold
	}
	if cfg.CriticalTempThreshold <= 0 {
		cfg.CriticalTempThreshold = def.CriticalTempThreshold
	}
	if cfg.GasPPMThreshold <= 0 {
		cfg.GasPPMThreshold = def.GasPPMThreshold
	}
	if cfg.SmokeThresholdPct <= 0 {
		cfg.SmokeThresholdPct = def.SmokeThresholdPct
	}
	if cfg.FlameThresholdPct <= 0 {
		cfg.FlameThresholdPct = def.FlameThresholdPct
	}
	if cfg.FlameActiveValue == 0 {
		cfg.FlameActiveValue = def.FlameActiveValue
	}
	if cfg.MinSources <= 0 {
		cfg.MinSources = def.MinSources
	}
	if cfg.CriticalTempThreshold < cfg.TempThreshold {
		cfg.CriticalTempThreshold = cfg.TempThreshold
	}
	return &Engine{cfg: cfg, log: newEventLog()}
}

// Config returns the current thresholds.
func (e *Engine) Config() Config {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cfg
}

// SetConfig replaces the thresholds at runtime (operator UI). In-flight Fuse
// calls keep the snapshot they took at entry, so no call ever observes a
// torn mix of old and new thresholds.
func (e *Engine) SetConfig(cfg Config) {
	if cfg.CriticalTempThreshold < cfg.TempThreshold {
		cfg.CriticalTempThreshold = cfg.TempThreshold
	}
	e.mu.Lock()
	e.cfg = cfg
	e.mu.Unlock()
}

// Fuse evaluates the priority-ordered rule chain against one reading bundle.
// It never fails: a zero-value Reading yields alarm=false, confidence=0,
// empty sources. Every call appends one entry to the event log.
func (e *Engine) Fuse(r Reading) Result {
	e.mu.RLock()
	cfg := e.cfg
	e.mu.RUnlock()

	st := &evalState{cfg: cfg, reading: r}

	res := Result{
		Raw: r.Raw,
		At:  time.Now().UTC(),
	}
	for _, rule := range ruleChain {
		o := rule(st)
		for _, s := range o.sources {
			res.Sources = appendSource(res.Sources, s)
		}
		res.Confidence += o.confidence
		if o.forceConfidence {
			res.Confidence = 1.0
		}
		if o.triggered {
			res.Alarm = true
			if o.reason != "" {
				res.Reason = o.reason // last reason wins
			}
		}
	}
	if res.Sources == nil {
		res.Sources = []string{}
	}
	res.HotCells = st.hotCells
	res.ThermalMax = st.thermalMax

	e.log.append(EventLogEntry{
		At:           res.At,
		Alarm:        res.Alarm,
		Confidence:   res.Confidence,
		Sources:      res.Sources,
		HotCellCount: len(res.HotCells),
		Reason:       res.Reason,
	})
	return res
}

// Events returns a copy of the append-only decision log.
func (e *Engine) Events() []EventLogEntry { return e.log.Snapshot() }

// EventCount reports how many decisions this engine has taken.
func (e *Engine) EventCount() int { return e.log.Len() }

func appendSource(sources []string, s string) []string {
	for _, have := range sources {
		if have == s {
			return sources
		}
	}
	return append(sources, s)
}
