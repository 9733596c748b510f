package messages

import "time"

// ThermalFrame is one decoded thermal grid (°C) from a thermal camera stream.
type ThermalFrame struct {
	SiteID    string      `json:"site_id"`
	StreamID  string      `json:"stream_id"`
	Rows      int         `json:"rows"`
	Cols      int         `json:"cols"`
	Cells     [][]float64 `json:"cells"` // row-major, Rows x Cols
	Timestamp time.Time   `json:"timestamp"`
}
