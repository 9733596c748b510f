package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"
)

// Upstream wraps the REST calls to the collaborating services.
type Upstream struct {
	http *http.Client
}

func NewUpstream(timeout time.Duration) *Upstream {
	return &Upstream{http: &http.Client{Timeout: timeout}}
}

func (u *Upstream) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	res, err := u.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return fmt.Errorf("GET %s -> %s", url, res.Status)
	}
	return json.NewDecoder(res.Body).Decode(out)
}

// GetSirens reads the annunciator status map ("site/siren" -> annunciator)
// and flattens it to a sorted slice.
func (u *Upstream) GetSirens(ctx context.Context, base string) ([]Siren, error) {
	var raw map[string]Siren
	if err := u.getJSON(ctx, strings.TrimRight(base, "/")+"/sirens/status", &raw); err != nil {
		return nil, err
	}
	out := make([]Siren, 0, len(raw))
	for key, s := range raw {
		if s.SiteID == "" || s.ID == "" {
			if parts := strings.SplitN(key, "/", 2); len(parts) == 2 {
				if s.SiteID == "" {
					s.SiteID = parts[0]
				}
				if s.ID == "" {
					s.ID = parts[1]
				}
			}
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SiteID != out[j].SiteID {
			return out[i].SiteID < out[j].SiteID
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// GetReadings reads the latest per-site env snapshot from persistence.
func (u *Upstream) GetReadings(ctx context.Context, base string) ([]Reading, error) {
	var out []Reading
	if err := u.getJSON(ctx, strings.TrimRight(base, "/")+"/data/latest", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetAlarms reads the recent alarm decisions from the event service.
func (u *Upstream) GetAlarms(ctx context.Context, base string) ([]Alarm, error) {
	var out []Alarm
	if err := u.getJSON(ctx, strings.TrimRight(base, "/")+"/events/alarms/latest", &out); err != nil {
		return nil, err
	}
	return out, nil
}
