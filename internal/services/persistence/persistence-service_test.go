package persistence

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/firesense-dev/firesense/internal/model"
)

type fakeWriteAPI struct {
	points []*write.Point
}

func (f *fakeWriteAPI) WriteRecord(ctx context.Context, line ...string) error { return nil }

func (f *fakeWriteAPI) WritePoint(ctx context.Context, point ...*write.Point) error {
	f.points = append(f.points, point...)
	return nil
}

func (f *fakeWriteAPI) EnableBatching() {}

func (f *fakeWriteAPI) Flush(ctx context.Context) error { return nil }

type fakeMessage struct {
	topic   string
	payload []byte
}

func (f fakeMessage) Duplicate() bool   { return false }
func (f fakeMessage) Qos() byte         { return 0 }
func (f fakeMessage) Retained() bool    { return false }
func (f fakeMessage) Topic() string     { return f.topic }
func (f fakeMessage) MessageID() uint16 { return 0 }
func (f fakeMessage) Payload() []byte   { return f.payload }
func (f fakeMessage) Ack()              {}

func newTestService(mode, name string) (*Service, *fakeWriteAPI) {
	w := &fakeWriteAPI{}
	return &Service{
		writeAPI:        w,
		measurementMode: mode,
		measurementName: name,
		cache:           make(map[string]model.SensorReading),
	}, w
}

func f64(v float64) *float64 { return &v }

func pointFields(p *write.Point) map[string]interface{} {
	out := map[string]interface{}{}
	for _, f := range p.FieldList() {
		out[f.Key] = f.Value
	}
	return out
}

func TestEnvReadingWrittenAndCached(t *testing.T) {
	svc, w := newTestService("single", "env_reading")

	r := model.SensorReading{
		SiteID:   "site-a",
		GasPPM:   f64(420),
		SmokePct: f64(3.5),
		Raw:      map[string]float64{"vbat": 3.99},
	}
	b, err := json.Marshal(r)
	require.NoError(t, err)

	require.NoError(t, svc.handleMessage(context.Background(), fakeMessage{topic: "sensor/env/site-a", payload: b}))

	require.Len(t, w.points, 1)
	assert.Equal(t, "env_reading", w.points[0].Name())
	fields := pointFields(w.points[0])
	assert.Equal(t, 420.0, fields["gas_ppm"])
	assert.Equal(t, 3.5, fields["smoke_pct"])
	assert.Equal(t, 3.99, fields["raw_vbat"])

	cached := svc.LatestCache()
	require.Len(t, cached, 1)
	assert.Equal(t, "site-a", cached[0].SiteID)
	assert.False(t, cached[0].Timestamp.IsZero())
}

func TestSiteRecoveredFromTopic(t *testing.T) {
	svc, w := newTestService("single", "")

	b, err := json.Marshal(model.SensorReading{SmokePct: f64(12)})
	require.NoError(t, err)
	require.NoError(t, svc.handleMessage(context.Background(), fakeMessage{topic: "sensor/env/site-z", payload: b}))

	require.Len(t, w.points, 1)
	cached := svc.LatestCache()
	require.Len(t, cached, 1)
	assert.Equal(t, "site-z", cached[0].SiteID)
}

func TestEmptyPacketSkipped(t *testing.T) {
	svc, w := newTestService("single", "")

	b, err := json.Marshal(model.SensorReading{SiteID: "site-a"})
	require.NoError(t, err)
	require.NoError(t, svc.handleMessage(context.Background(), fakeMessage{topic: "sensor/env/site-a", payload: b}))

	assert.Empty(t, w.points)
}

func TestDecisionWritten(t *testing.T) {
	svc, w := newTestService("per-site", "")

	evt := model.AlarmEvent{
		SiteID:       "site-a",
		Alarm:        true,
		Confidence:   0.9,
		ThermalMax:   55.2,
		HotCellCount: 4,
		Timestamp:    time.Now(),
	}
	b, err := json.Marshal(evt)
	require.NoError(t, err)
	require.NoError(t, svc.handleMessage(context.Background(), fakeMessage{topic: "event/alarmDecision/site-a", payload: b}))

	require.Len(t, w.points, 1)
	assert.Equal(t, "alarm_decision_site-a", w.points[0].Name())
	fields := pointFields(w.points[0])
	assert.Equal(t, 0.9, fields["confidence"])
	assert.Equal(t, int64(4), fields["hot_cell_count"])
}

func TestMalformedPayloadDoesNotError(t *testing.T) {
	svc, w := newTestService("single", "")
	require.NoError(t, svc.handleMessage(context.Background(), fakeMessage{topic: "sensor/env/site-a", payload: []byte("{nope")}))
	assert.Empty(t, w.points)
}

func TestSanitizeMeasurement(t *testing.T) {
	assert.Equal(t, "env_reading_site-a", sanitizeMeasurement("env_reading_site-a"))
	assert.Equal(t, "env_reading_a_b", sanitizeMeasurement("env reading/a b"))
}
