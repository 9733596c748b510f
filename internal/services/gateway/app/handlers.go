package app

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"time"
)

func (g *Gateway) HandleHealthz(w http.ResponseWriter, _ *http.Request) {
	_, _ = w.Write([]byte("ok"))
}

// HandleDashboard serves GET /dashboard/data: the three upstreams are fetched
// in parallel, each through its breaker; the alarm list falls back to the
// last-good cache when its upstream is unavailable.
func (g *Gateway) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(r.Context(), g.cfg.HTTPTimeout)
	defer cancel()

	data := DashboardData{
		Sirens:   []Siren{},
		Readings: []Reading{},
		Alarms:   []Alarm{},
		Sources:  map[string]string{},
	}

	type part struct {
		key    string
		apply  func()
		source string
	}
	ch := make(chan part, 3)

	go func() {
		p := part{key: "sirens", source: "unavailable", apply: func() {}}
		if res, err := g.annunciatorCB.Execute(func() (any, error) {
			return g.upstream.GetSirens(ctx, g.cfg.AnnunciatorURL)
		}); err == nil {
			sirens := res.([]Siren)
			p.source = "live"
			p.apply = func() { data.Sirens = sirens }
		} else {
			g.cfg.Logger.Printf("gateway: sirens upstream: %v", err)
		}
		ch <- p
	}()

	go func() {
		p := part{key: "readings", source: "unavailable", apply: func() {}}
		if res, err := g.persistenceCB.Execute(func() (any, error) {
			return g.upstream.GetReadings(ctx, g.cfg.PersistenceURL)
		}); err == nil {
			readings := res.([]Reading)
			p.source = "live"
			p.apply = func() { data.Readings = readings }
		} else {
			g.cfg.Logger.Printf("gateway: readings upstream: %v", err)
		}
		ch <- p
	}()

	go func() {
		p := part{key: "alarms", source: "live", apply: func() {}}
		if res, err := g.eventCB.Execute(func() (any, error) {
			a, err := g.upstream.GetAlarms(ctx, g.cfg.EventURL)
			if err != nil {
				return nil, err
			}
			if len(a) == 0 {
				return nil, fmt.Errorf("empty alarms")
			}
			return a, nil
		}); err == nil {
			alarms := res.([]Alarm)
			g.rememberAlarms(alarms)
			p.apply = func() { data.Alarms = alarms }
		} else {
			g.cfg.Logger.Printf("gateway: alarms upstream: %v (serving cache)", err)
			cached := g.cachedAlarms()
			p.source = "cache"
			p.apply = func() { data.Alarms = cached }
		}
		ch <- p
	}()

	for i := 0; i < 3; i++ {
		p := <-ch
		p.apply()
		data.Sources[p.key] = p.source
	}

	data.Stats = alarmStats(data.Alarms)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(data)

	g.cfg.Logger.Printf("GET /dashboard/data [%dms] cb[ann]=%v cb[pers]=%v cb[ev]=%v sirens=%d readings=%d alarms=%d",
		time.Since(start).Milliseconds(), g.annunciatorCB.State(), g.persistenceCB.State(), g.eventCB.State(),
		len(data.Sirens), len(data.Readings), len(data.Alarms))
}

// alarmStats computes min/mean/max confidence over the recent alarm list.
func alarmStats(alarms []Alarm) Stats {
	if len(alarms) == 0 {
		return Stats{}
	}
	var sum float64
	minv, maxv := math.MaxFloat64, -math.MaxFloat64
	for _, a := range alarms {
		sum += a.Confidence
		if a.Confidence < minv {
			minv = a.Confidence
		}
		if a.Confidence > maxv {
			maxv = a.Confidence
		}
	}
	return Stats{
		Mean: sum / float64(len(alarms)),
		Min:  minv,
		Max:  maxv,
	}
}
