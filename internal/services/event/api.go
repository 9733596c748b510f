package event

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
)

// Alarm is the payload shape served to the gateway.
type Alarm struct {
	SiteID     string  `json:"site_id,omitempty"`
	Confidence float64 `json:"confidence"`
	Time       string  `json:"time"` // RFC3339
}

type alarmQueryParams struct {
	Minutes   int
	Limit     int
	TimeoutMS int
}

func parseAlarmQuery(r *http.Request, defMin, defLim, defTOms int) alarmQueryParams {
	q := r.URL.Query()
	get := func(k string, def, min, max int) int {
		if v := strings.TrimSpace(q.Get(k)); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				if n < min {
					return min
				}
				if max > 0 && n > max {
					return max
				}
				return n
			}
		}
		return def
	}
	return alarmQueryParams{
		Minutes:   get("minutes", defMin, 1, 7*24*60),
		Limit:     get("limit", defLim, 1, 500),
		TimeoutMS: get("timeout_ms", defTOms, 200, 5000),
	}
}

func buildFlux(bucket string, minutes, limit int) string {
	return fmt.Sprintf(`
from(bucket: %q)
  |> range(start: -%dm)
  |> filter(fn: (r) => r._measurement == "system_event" and r.event_type == "alarm.decision")
  |> filter(fn: (r) => r._field == "confidence")
  |> keep(columns: ["_time","_value","site_id"])
  |> sort(columns: ["_time"], desc: true)
  |> limit(n:%d)
`, bucket, minutes, limit)
}

func runAlarms(w http.ResponseWriter, r *http.Request, influx influxdb2.Client, org, bucket string, defMin, defLim int) {
	p := parseAlarmQuery(r, defMin, defLim, 2000)

	ctx, cancel := context.WithTimeout(r.Context(), time.Duration(p.TimeoutMS)*time.Millisecond)
	defer cancel()

	api := influx.QueryAPI(org)
	res, err := api.Query(ctx, buildFlux(bucket, p.Minutes, p.Limit))
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Error", "influx-query-error")
		_, _ = w.Write([]byte("[]"))
		return
	}
	defer func() { _ = res.Close() }()

	out := make([]Alarm, 0, p.Limit)
	for res.Next() {
		rec := res.Record()

		var confidence float64
		switch v := rec.Value().(type) {
		case float64:
			confidence = v
		case int64:
			confidence = float64(v)
		case int:
			confidence = float64(v)
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
				confidence = f
			}
		}

		var siteID string
		if v := rec.ValueByKey("site_id"); v != nil {
			if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
				siteID = s
			}
		}

		out = append(out, Alarm{
			SiteID:     siteID,
			Confidence: confidence,
			Time:       rec.Time().UTC().Format(time.RFC3339),
		})
	}
	if res.Err() != nil {
		w.Header().Set("X-Error", "influx-iter-error")
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

// NewAlarmsLatestHandler serves
// GET /events/alarms/latest?limit=20[&minutes=1440][&timeout_ms=2000]
func NewAlarmsLatestHandler(influx influxdb2.Client, org, bucket string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		runAlarms(w, r, influx, org, bucket, 1440, 20)
	})
}
