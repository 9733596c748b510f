package entities

import "time"

// SirenState indicates whether an annunciator is idle or sounding.
type SirenState string

const (
	StateIdle     SirenState = "idle"
	StateSounding SirenState = "sounding"
)

// Annunciator represents a single siren/strobe unit installed at a site.
type Annunciator struct {
	SiteID string     `json:"site_id"`
	ID     string     `json:"id"` // unique annunciator identifier
	State  SirenState `json:"state"`
	// MaxRuntime bounds a single sounding cycle; 0 means no bound.
	MaxRuntime time.Duration `json:"max_runtime,omitempty"`
}

// ClampDuration bounds a requested sounding duration to the unit's MaxRuntime.
func (a Annunciator) ClampDuration(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	if a.MaxRuntime > 0 && d > a.MaxRuntime {
		return a.MaxRuntime
	}
	return d
}
