package alarm_controller

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"google.golang.org/grpc"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pb "github.com/firesense-dev/firesense/grpc/gen/go/annunciator"
	"github.com/firesense-dev/firesense/internal/model"
)

// promauto registers on the default registry, so one Metrics per test binary.
var testMetrics = NewMetrics()

// ---- fakes ----

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

type published struct {
	topic   string
	qos     byte
	payload string
}

type capturePublisher struct {
	mu   sync.Mutex
	msgs []published
}

func (c *capturePublisher) PublishMessage(message interface{}) error {
	return c.PublishToQos("", 0, false, message.(string))
}

func (c *capturePublisher) PublishToQos(topic string, qos byte, retained bool, message string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, published{topic: topic, qos: qos, payload: message})
	return nil
}

func (c *capturePublisher) Close() {}

func (c *capturePublisher) snapshot() []published {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]published, len(c.msgs))
	copy(out, c.msgs)
	return out
}

type fakeSirenClient struct {
	mu       sync.Mutex
	requests []*pb.TriggerRequest
}

func (f *fakeSirenClient) TriggerSiren(ctx context.Context, in *pb.TriggerRequest, opts ...grpc.CallOption) (*pb.CommandResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, in)
	return &pb.CommandResponse{Success: true, TicketId: fmt.Sprintf("ticket-%d", len(f.requests))}, nil
}

func (f *fakeSirenClient) Silence(ctx context.Context, in *pb.SilenceRequest, opts ...grpc.CallOption) (*pb.CommandResponse, error) {
	return &pb.CommandResponse{Success: true}, nil
}

func (f *fakeSirenClient) triggers() []*pb.TriggerRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*pb.TriggerRequest, len(f.requests))
	copy(out, f.requests)
	return out
}

type fakeRouter struct {
	cli *fakeSirenClient
}

func (f fakeRouter) Get(site string) (pb.AnnunciatorServiceClient, bool) { return f.cli, true }
func (f fakeRouter) Close()                                             {}

type nopConsumer struct{}

func (nopConsumer) ConsumeMessage(ctx context.Context)                        {}
func (nopConsumer) SetHandler(func(queue string, message mqtt.Message) error) {}

// ---- helpers ----

func writeSites(t *testing.T) string {
	t.Helper()
	sites := []model.Site{
		{
			ID:   "site-a",
			Name: "warehouse-north",
			Streams: []model.Stream{
				{ID: "cam-1", Rows: 24, Cols: 32},
			},
			Annunciators: []model.Annunciator{
				{ID: "siren-1"},
			},
		},
	}
	b, err := json.Marshal(sites)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "sites-config.json")
	require.NoError(t, os.WriteFile(path, b, 0o644))
	return path
}

func newTestController(t *testing.T) (*Controller, *capturePublisher, *fakeSirenClient) {
	t.Helper()
	pub := &capturePublisher{}
	cli := &fakeSirenClient{}
	ctrl, err := NewController(nopConsumer{}, pub, fakeRouter{cli: cli}, writeSites(t), "event/alarmDecision/{site}", testMetrics)
	require.NoError(t, err)
	return ctrl, pub, cli
}

func envPayload(t *testing.T, r model.SensorReading) []byte {
	t.Helper()
	r.Timestamp = time.Now()
	b, err := json.Marshal(r)
	require.NoError(t, err)
	return b
}

func f64(v float64) *float64 { return &v }

// ---- tests ----

func TestSmokeAlarmPublishesDecisionAndTriggersSiren(t *testing.T) {
	ctrl, pub, cli := newTestController(t)

	payload := envPayload(t, model.SensorReading{SiteID: "site-a", SmokePct: f64(80)})
	require.NoError(t, ctrl.handleMessage("", fakeMessage{topic: "sensor/env/site-a", payload: payload}))

	msgs := pub.snapshot()
	require.Len(t, msgs, 1)
	assert.Equal(t, "event/alarmDecision/site-a", msgs[0].topic)
	assert.Equal(t, byte(1), msgs[0].qos)

	var evt model.AlarmEvent
	require.NoError(t, json.Unmarshal([]byte(msgs[0].payload), &evt))
	assert.True(t, evt.Alarm)
	assert.Equal(t, "site-a", evt.SiteID)
	assert.Equal(t, []string{"smoke"}, evt.Sources)
	assert.NotEmpty(t, evt.DecisionID)

	trigs := cli.triggers()
	require.Len(t, trigs, 1)
	assert.Equal(t, "site-a", trigs[0].GetSiteId())
	assert.Equal(t, "siren-1", trigs[0].GetSirenId())
	assert.Equal(t, evt.DecisionID, trigs[0].GetDecisionId())
}

func TestBelowThresholdNoDecision(t *testing.T) {
	ctrl, pub, cli := newTestController(t)

	payload := envPayload(t, model.SensorReading{SiteID: "site-a", SmokePct: f64(5)})
	require.NoError(t, ctrl.handleMessage("", fakeMessage{topic: "sensor/env/site-a", payload: payload}))

	assert.Empty(t, pub.snapshot())
	assert.Empty(t, cli.triggers())
}

func TestDuplicatePayloadDiscarded(t *testing.T) {
	ctrl, pub, _ := newTestController(t)

	payload := envPayload(t, model.SensorReading{SiteID: "site-a", SmokePct: f64(80)})
	msg := fakeMessage{topic: "sensor/env/site-a", payload: payload}
	require.NoError(t, ctrl.handleMessage("", msg))
	require.NoError(t, ctrl.handleMessage("", msg))

	assert.Len(t, pub.snapshot(), 1)
}

func TestGasADCConvertedBeforeFusing(t *testing.T) {
	ctrl, pub, _ := newTestController(t)

	// near-full-scale ADC maps to a tiny Rs/R0 ratio and an enormous ppm
	payload := envPayload(t, model.SensorReading{SiteID: "site-a", GasADC: f64(4000)})
	require.NoError(t, ctrl.handleMessage("", fakeMessage{topic: "sensor/env/site-a", payload: payload}))

	msgs := pub.snapshot()
	require.Len(t, msgs, 1)

	var evt model.AlarmEvent
	require.NoError(t, json.Unmarshal([]byte(msgs[0].payload), &evt))
	assert.Equal(t, []string{"gas"}, evt.Sources)
}

func TestUnknownSiteIgnored(t *testing.T) {
	ctrl, pub, cli := newTestController(t)

	payload := envPayload(t, model.SensorReading{SiteID: "site-zz", SmokePct: f64(80)})
	require.NoError(t, ctrl.handleMessage("", fakeMessage{topic: "sensor/env/site-zz", payload: payload}))

	assert.Empty(t, pub.snapshot())
	assert.Empty(t, cli.triggers())
}

func TestSiteRecoveredFromTopicWhenPayloadOmitsIt(t *testing.T) {
	ctrl, pub, _ := newTestController(t)

	payload := envPayload(t, model.SensorReading{SmokePct: f64(80)})
	require.NoError(t, ctrl.handleMessage("", fakeMessage{topic: "sensor/env/site-a", payload: payload}))

	msgs := pub.snapshot()
	require.Len(t, msgs, 1)
	var evt model.AlarmEvent
	require.NoError(t, json.Unmarshal([]byte(msgs[0].payload), &evt))
	assert.Equal(t, "site-a", evt.SiteID)
}

func TestSoundingWindowBlocksSecondTrigger(t *testing.T) {
	ctrl, pub, cli := newTestController(t)

	first := envPayload(t, model.SensorReading{SiteID: "site-a", SmokePct: f64(80)})
	require.NoError(t, ctrl.handleMessage("", fakeMessage{topic: "sensor/env/site-a", payload: first}))

	second := envPayload(t, model.SensorReading{SiteID: "site-a", SmokePct: f64(90)})
	require.NoError(t, ctrl.handleMessage("", fakeMessage{topic: "sensor/env/site-a", payload: second}))

	// both decisions recorded, only the first opened a siren cycle
	assert.Len(t, pub.snapshot(), 2)
	assert.Len(t, cli.triggers(), 1)
}

func TestThermalReadingMergesFreshEnvAndVision(t *testing.T) {
	ctrl, _, _ := newTestController(t)

	envMsg := envPayload(t, model.SensorReading{SiteID: "site-a", SmokePct: f64(10)})
	require.NoError(t, ctrl.handleMessage("", fakeMessage{topic: "sensor/env/site-a", payload: envMsg}))

	vision := model.VisionScore{SiteID: "site-a", CameraID: "cam-1", Score: 0.9, Timestamp: time.Now()}
	vb, err := json.Marshal(vision)
	require.NoError(t, err)
	require.NoError(t, ctrl.handleMessage("", fakeMessage{topic: "vision/score/site-a/cam-1", payload: vb}))

	r := ctrl.thermalReading(model.ThermalFrame{SiteID: "site-a", StreamID: "cam-1", Cells: [][]float64{{20, 21}}})
	require.NotNil(t, r.SmokePct)
	assert.Equal(t, 10.0, *r.SmokePct)
	require.NotNil(t, r.VisionScore)
	assert.Equal(t, 0.9, *r.VisionScore)
	assert.NotNil(t, r.Thermal)
}

func TestThermalFrameQueued(t *testing.T) {
	ctrl, _, _ := newTestController(t)

	frame := model.ThermalFrame{SiteID: "site-a", StreamID: "cam-1", Rows: 1, Cols: 2, Cells: [][]float64{{20, 21}}, Timestamp: time.Now()}
	b, err := json.Marshal(frame)
	require.NoError(t, err)
	require.NoError(t, ctrl.handleMessage("", fakeMessage{topic: "sensor/thermal/site-a/cam-1", payload: b}))

	require.Len(t, ctrl.frames, 1)
	got := <-ctrl.frames
	assert.Equal(t, "cam-1", got.StreamID)
}

func TestReasonClass(t *testing.T) {
	assert.Equal(t, "smoke", reasonClass("smoke 80.0% >= threshold 25.0%"))
	assert.Equal(t, "critical", reasonClass("critical temperature 80.0°C >= 60.0°C"))
	assert.Equal(t, "none", reasonClass(""))
}
