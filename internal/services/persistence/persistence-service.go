package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	"github.com/firesense-dev/firesense/internal/model"
	"github.com/firesense-dev/firesense/pkg/rabbitmq"
)

// InfluxConfig holds the persistence sink configuration.
type InfluxConfig struct {
	InfluxURL       string
	InfluxToken     string
	InfluxOrg       string
	InfluxBucket    string
	MeasurementMode string // "per-site" | "single"
	MeasurementName string // when "single", e.g. "env_reading"
}

// Service persists raw env readings and alarm decision summaries to InfluxDB
// and keeps an in-memory latest-per-site cache as a query fallback.
type Service struct {
	consumer        rabbitmq.IConsumer[model.SensorReading]
	client          influxdb2.Client
	writeAPI        api.WriteAPIBlocking
	org             string
	bucket          string
	measurementMode string
	measurementName string

	cacheMu sync.RWMutex
	cache   map[string]model.SensorReading // site -> freshest reading
}

func NewService(consumer rabbitmq.IConsumer[model.SensorReading], cfg InfluxConfig) (*Service, error) {
	if cfg.InfluxURL == "" || cfg.InfluxToken == "" || cfg.InfluxOrg == "" || cfg.InfluxBucket == "" {
		return nil, fmt.Errorf("influx config incomplete")
	}

	client := influxdb2.NewClient(cfg.InfluxURL, cfg.InfluxToken)
	writeAPI := client.WriteAPIBlocking(cfg.InfluxOrg, cfg.InfluxBucket)

	return &Service{
		consumer:        consumer,
		client:          client,
		writeAPI:        writeAPI,
		org:             cfg.InfluxOrg,
		bucket:          cfg.InfluxBucket,
		measurementMode: cfg.MeasurementMode,
		measurementName: cfg.MeasurementName,
		cache:           make(map[string]model.SensorReading),
	}, nil
}

// Start blocks until the context closes.
func (s *Service) Start(ctx context.Context) {
	s.consumer.SetHandler(func(topic string, msg mqtt.Message) error {
		return s.handleMessage(ctx, msg)
	})
	s.consumer.ConsumeMessage(ctx)
}

func (s *Service) handleMessage(ctx context.Context, msg mqtt.Message) error {
	topic := msg.Topic()
	switch {
	case strings.HasPrefix(topic, "sensor/env/"):
		return s.handleEnv(ctx, topic, msg.Payload())
	case strings.HasPrefix(topic, "event/alarmDecision/"):
		return s.handleDecision(ctx, topic, msg.Payload())
	default:
		return nil
	}
}

func (s *Service) handleEnv(ctx context.Context, topic string, payload []byte) error {
	var m model.SensorReading
	if err := json.Unmarshal(payload, &m); err != nil {
		log.Printf("persistence: invalid JSON on %s: %v", topic, err)
		return nil // don't block the stream
	}
	if m.SiteID == "" {
		parts := strings.Split(topic, "/")
		if len(parts) >= 3 {
			m.SiteID = parts[2]
		}
	}
	if m.SiteID == "" {
		return nil
	}

	t := m.Timestamp
	if t.IsZero() {
		t = time.Now()
		m.Timestamp = t
	}

	s.cacheMu.Lock()
	s.cache[m.SiteID] = m
	s.cacheMu.Unlock()

	tags := map[string]string{"site_id": m.SiteID}
	fields := map[string]interface{}{}
	if m.GasADC != nil {
		fields["gas_adc"] = *m.GasADC
	}
	if m.GasPPM != nil {
		fields["gas_ppm"] = *m.GasPPM
	}
	if m.SmokePct != nil {
		fields["smoke_pct"] = *m.SmokePct
	}
	if m.FlameAnalogPct != nil {
		fields["flame_analog_pct"] = *m.FlameAnalogPct
	}
	if m.FlameDigital != nil {
		fields["flame_digital"] = int64(*m.FlameDigital)
	}
	for k, v := range m.Raw {
		fields["raw_"+k] = v
	}
	if len(fields) == 0 {
		return nil // an empty packet carries nothing worth a point
	}

	point := influxdb2.NewPoint(s.measurement("env_reading", m.SiteID), tags, fields, t)
	if err := s.writeAPI.WritePoint(ctx, point); err != nil {
		log.Printf("persistence: write error: %v", err)
		return err
	}
	return nil
}

func (s *Service) handleDecision(ctx context.Context, topic string, payload []byte) error {
	var d model.AlarmEvent
	if err := json.Unmarshal(payload, &d); err != nil {
		log.Printf("persistence: invalid JSON on %s: %v", topic, err)
		return nil
	}
	if d.SiteID == "" {
		parts := strings.Split(topic, "/")
		if len(parts) >= 3 {
			d.SiteID = parts[2]
		}
	}
	if d.SiteID == "" {
		return nil
	}

	t := d.Timestamp
	if t.IsZero() {
		t = time.Now()
	}

	tags := map[string]string{"site_id": d.SiteID}
	fields := map[string]interface{}{
		"alarm":          d.Alarm,
		"confidence":     d.Confidence,
		"thermal_max":    d.ThermalMax,
		"hot_cell_count": int64(d.HotCellCount),
	}

	point := influxdb2.NewPoint(s.measurement("alarm_decision", d.SiteID), tags, fields, t)
	if err := s.writeAPI.WritePoint(ctx, point); err != nil {
		log.Printf("persistence: write error: %v", err)
		return err
	}
	log.Printf("persistence: wrote decision site=%s confidence=%.2f", d.SiteID, d.Confidence)
	return nil
}

// measurement picks the measurement name for a point family.
func (s *Service) measurement(base, siteID string) string {
	name := s.measurementName
	if name == "" {
		name = base
	}
	if s.measurementMode == "per-site" {
		name = name + "_" + siteID
	}
	return sanitizeMeasurement(name)
}

// LatestCache returns the freshest reading per site, sorted by site ID.
func (s *Service) LatestCache() []model.SensorReading {
	s.cacheMu.RLock()
	out := make([]model.SensorReading, 0, len(s.cache))
	for _, v := range s.cache {
		out = append(out, v)
	}
	s.cacheMu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].SiteID < out[j].SiteID })
	return out
}

// QueryLatestFromInflux reads the last value of each env channel per site
// within the window and reassembles readings.
func (s *Service) QueryLatestFromInflux(ctx context.Context, minutes int) ([]model.SensorReading, error) {
	flux := fmt.Sprintf(`
from(bucket: %q)
  |> range(start: -%dm)
  |> filter(fn: (r) => r.site_id != "")
  |> filter(fn: (r) => r._field == "gas_ppm" or r._field == "smoke_pct" or r._field == "flame_analog_pct")
  |> group(columns: ["site_id","_field"])
  |> last()
  |> pivot(rowKey: ["site_id"], columnKey: ["_field"], valueColumn: "_value")
`, s.bucket, minutes)

	res, err := s.client.QueryAPI(s.org).Query(ctx, flux)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Close() }()

	var out []model.SensorReading
	for res.Next() {
		rec := res.Record()
		r := model.SensorReading{Timestamp: rec.Time()}
		if v, ok := rec.ValueByKey("site_id").(string); ok {
			r.SiteID = v
		}
		if r.SiteID == "" {
			continue
		}
		if v, ok := rec.ValueByKey("gas_ppm").(float64); ok {
			r.GasPPM = &v
		}
		if v, ok := rec.ValueByKey("smoke_pct").(float64); ok {
			r.SmokePct = &v
		}
		if v, ok := rec.ValueByKey("flame_analog_pct").(float64); ok {
			r.FlameAnalogPct = &v
		}
		out = append(out, r)
	}
	if res.Err() != nil {
		return nil, res.Err()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SiteID < out[j].SiteID })
	return out, nil
}

func sanitizeMeasurement(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z',
			r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9',
			r == '_', r == ':', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
