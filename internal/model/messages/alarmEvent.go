package messages

import "time"

// AlarmEvent is published by the alarm-controller to record every fusion
// decision that raised (or cleared back to) an alarm state for a site.
type AlarmEvent struct {
	SiteID       string             `json:"site_id"`
	DecisionID   string             `json:"decision_id,omitempty"` // shared with the siren trigger

	Alarm        bool               `json:"alarm"`
	Reason       string             `json:"reason,omitempty"` // which rule fired
	Confidence   float64            `json:"confidence"`       // raw accumulator, not a probability
	Sources      []string           `json:"sources"`          // evaluation order, no duplicates
	HotCellCount int                `json:"hot_cell_count"`
	ThermalMax   float64            `json:"thermal_max"`
	Raw          map[string]float64 `json:"raw,omitempty"` // diagnostic passthrough
	Timestamp    time.Time          `json:"timestamp"`
}
