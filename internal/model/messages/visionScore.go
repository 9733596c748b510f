package messages

import "time"

// VisionScore is published by the frame-analysis worker whenever a new
// inference completes, on its own cadence.
type VisionScore struct {
	SiteID    string    `json:"site_id"`
	CameraID  string    `json:"camera_id"`
	Score     float64   `json:"score"` // [0,1] confidence that fire/smoke is present
	Model     string    `json:"model,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
