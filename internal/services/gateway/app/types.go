package app

import (
	"encoding/json"
	"strconv"
)

// ---------- Upstream payloads ----------

// Siren is one annunciator row from the annunciator service status map.
type Siren struct {
	SiteID string `json:"site_id"`
	ID     string `json:"id"`
	State  string `json:"state"`
}

// Reading is the latest env snapshot of one site from the persistence service.
type Reading struct {
	SiteID         string   `json:"site_id"`
	GasPPM         *float64 `json:"gas_ppm,omitempty"`
	SmokePct       *float64 `json:"smoke_pct,omitempty"`
	FlameAnalogPct *float64 `json:"flame_analog_pct,omitempty"`
	Time           string   `json:"time"` // RFC3339
}

func (p *Reading) UnmarshalJSON(b []byte) error {
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	if v, ok := m["site_id"].(string); ok {
		p.SiteID = v
	}
	// time / timestamp
	if t, ok := m["timestamp"].(string); ok && t != "" {
		p.Time = t
	} else if t, ok := m["time"].(string); ok && t != "" {
		p.Time = t
	}
	getNum := func(key string) *float64 {
		if mv, ok := m[key]; ok {
			switch x := mv.(type) {
			case float64:
				return &x
			case string:
				if f, err := strconv.ParseFloat(x, 64); err == nil {
					return &f
				}
			}
		}
		return nil
	}
	p.GasPPM = getNum("gas_ppm")
	p.SmokePct = getNum("smoke_pct")
	p.FlameAnalogPct = getNum("flame_analog_pct")
	return nil
}

// Alarm is one recent alarm decision from the event service.
type Alarm struct {
	SiteID     string  `json:"site_id"`
	Confidence float64 `json:"confidence"`
	Time       string  `json:"time"` // RFC3339
}

// Stats aggregates the confidences of the recent alarms.
type Stats struct {
	Mean float64 `json:"mean"`
	Max  float64 `json:"max"`
	Min  float64 `json:"min"`
}

// DashboardData is the payload served to the dashboard UI.
type DashboardData struct {
	Sirens   []Siren            `json:"sirens"`
	Readings []Reading          `json:"readings"`
	Alarms   []Alarm            `json:"alarms"`
	Stats    Stats              `json:"stats"`
	Sources  map[string]string  `json:"sources"` // upstream -> live|cache|unavailable
}
