package entities

// Site represents a monitored physical location (a room, a hall, a plant
// section) with its sensor streams and annunciators.
type Site struct {
	ID           string        `json:"id"`   // unique site identifier
	Name         string        `json:"name"` // e.g. "warehouse-north"
	Latitude     float64       `json:"latitude"`
	Longitude    float64       `json:"longitude"`
	Streams      []Stream      `json:"streams"`      // camera/thermal streams at this site
	Annunciators []Annunciator `json:"annunciators"` // sirens at this site
	Thresholds   Thresholds    `json:"thresholds"`   // per-site alarm thresholds
}

// Stream identifies one thermal-camera stream feeding the site.
type Stream struct {
	ID      string `json:"id"`
	SiteID  string `json:"site_id"`
	Rows    int    `json:"rows"` // thermal grid shape, e.g. 24
	Cols    int    `json:"cols"` // e.g. 32
	BaseFPS int    `json:"base_fps,omitempty"`
}

func (s *Site) GetAnnunciator(id string) *Annunciator {
	for i := range s.Annunciators {
		if s.Annunciators[i].ID == id {
			return &s.Annunciators[i]
		}
	}
	return nil
}

func (s *Site) GetStream(id string) *Stream {
	for i := range s.Streams {
		if s.Streams[i].ID == id {
			return &s.Streams[i]
		}
	}
	return nil
}
