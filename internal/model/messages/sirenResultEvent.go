package messages

import "time"

// SirenResultEvent is published by the annunciator service at the end (or
// failure) of a sounding cycle. Aligned with the other events in
// internal/model/messages/*.
type SirenResultEvent struct {
	SiteID     string    `json:"site_id"`
	SirenID    string    `json:"siren_id"`
	TicketID   string    `json:"ticket_id,omitempty"`
	DecisionID string    `json:"decision_id,omitempty"`
	Status     string    `json:"status"`       // "OK" | "FAIL"
	RanFor     float64   `json:"ran_for_sec"`  // seconds actually sounded (>=0)
	Reason     string    `json:"reason"`       // "done" | "silenced" | "offline"
	StartedAt  time.Time `json:"started_at"`   // cycle start
	Timestamp  time.Time `json:"timestamp"`    // cycle end (event ts)
}
