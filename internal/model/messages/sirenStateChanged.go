package messages

import (
	"time"

	"github.com/firesense-dev/firesense/internal/model/entities"
)

// StateChangeEvent is emitted when an annunciator changes state.
type StateChangeEvent struct {
	SiteID    string              `json:"site_id"`
	SirenID   string              `json:"siren_id"`
	NewState  entities.SirenState `json:"new_state"`
	Duration  time.Duration       `json:"duration"` // how long the new state is held
	Timestamp time.Time           `json:"timestamp"`
}
