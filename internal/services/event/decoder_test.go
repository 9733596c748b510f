package event

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/firesense-dev/firesense/internal/model"
)

type fakeMessage struct {
	topic   string
	payload []byte
}

func (f fakeMessage) Duplicate() bool   { return false }
func (f fakeMessage) Qos() byte         { return 1 }
func (f fakeMessage) Retained() bool    { return false }
func (f fakeMessage) Topic() string     { return f.topic }
func (f fakeMessage) MessageID() uint16 { return 0 }
func (f fakeMessage) Payload() []byte   { return f.payload }
func (f fakeMessage) Ack()              {}

func handleOne(t *testing.T, topic string, v interface{}) (CommonEvent, error) {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)

	var got CommonEvent
	h := NewMQTTHandler(func(e CommonEvent) { got = e })
	err = h.Handle("", fakeMessage{topic: topic, payload: b})
	return got, err
}

func TestDecodeAlarmDecision(t *testing.T) {
	evt := model.AlarmEvent{
		SiteID:       "site-a",
		DecisionID:   "dec-1",
		Alarm:        true,
		Reason:       "smoke 80.0% >= threshold 25.0%",
		Confidence:   0.5,
		Sources:      []string{"smoke"},
		HotCellCount: 0,
		Timestamp:    time.Now(),
	}
	got, err := handleOne(t, "event/alarmDecision/site-a", evt)
	require.NoError(t, err)

	assert.Equal(t, "alarm.decision", got.EventType)
	assert.Equal(t, "alarm-controller", got.SourceService)
	assert.Equal(t, "site-a", got.SiteID)
	assert.Equal(t, "warning", got.Severity)
	assert.Equal(t, 0.5, got.Fields["confidence"])
	assert.Equal(t, "smoke", got.Fields["sources"])
}

func TestDecodeAlarmDecisionSiteFromTopic(t *testing.T) {
	evt := model.AlarmEvent{Alarm: false, Confidence: 0, Timestamp: time.Now()}
	got, err := handleOne(t, "event/alarmDecision/site-b", evt)
	require.NoError(t, err)
	assert.Equal(t, "site-b", got.SiteID)
	assert.Equal(t, "info", got.Severity)
}

func TestDecodeStateChange(t *testing.T) {
	evt := model.StateChangeEvent{
		SiteID:    "site-a",
		SirenID:   "siren-1",
		NewState:  model.StateSounding,
		Duration:  30 * time.Second,
		Timestamp: time.Now(),
	}
	got, err := handleOne(t, "event/StateChange/site-a/siren-1", evt)
	require.NoError(t, err)

	assert.Equal(t, "siren.state_change", got.EventType)
	assert.Equal(t, "site-a", got.SiteID)
	assert.Equal(t, "siren-1", got.UnitID)
	assert.Equal(t, "sounding", got.Fields["new_state"])
	assert.Equal(t, 30.0, got.Fields["duration"])
}

func TestDecodeSirenResultFailIsWarning(t *testing.T) {
	evt := model.SirenResultEvent{
		SiteID:    "site-a",
		SirenID:   "siren-1",
		Status:    "FAIL",
		Reason:    "offline",
		RanFor:    12.5,
		Timestamp: time.Now(),
	}
	got, err := handleOne(t, "event/sirenResult/site-a/siren-1", evt)
	require.NoError(t, err)

	assert.Equal(t, "siren.result", got.EventType)
	assert.Equal(t, "warning", got.Severity)
	assert.Equal(t, "offline", got.Fields["reason"])
	assert.Equal(t, 12.5, got.Fields["ran_for_sec"])
}

func TestIDsRecoveredFromTopic(t *testing.T) {
	// payload omits both IDs, topic carries them
	evt := model.SirenResultEvent{Status: "OK", Reason: "done", Timestamp: time.Now()}
	got, err := handleOne(t, "event/sirenResult/site-c/siren-9", evt)
	require.NoError(t, err)
	assert.Equal(t, "site-c", got.SiteID)
	assert.Equal(t, "siren-9", got.UnitID)
}

func TestUnknownTopicIgnored(t *testing.T) {
	called := false
	h := NewMQTTHandler(func(CommonEvent) { called = true })
	err := h.Handle("", fakeMessage{topic: "sensor/env/site-a", payload: []byte(`{}`)})
	require.NoError(t, err)
	assert.False(t, called)
}

func TestEventToPointTagsAndFields(t *testing.T) {
	p := EventToPoint(CommonEvent{
		EventType:     "alarm.decision",
		SourceService: "alarm-controller",
		SiteID:        "site-a",
		UnitID:        "siren-1",
		Severity:      "warning",
		Fields:        map[string]interface{}{"confidence": 0.9},
		Timestamp:     time.Now(),
	})
	require.NotNil(t, p)
	assert.Equal(t, "system_event", p.Name())

	tags := map[string]string{}
	for _, tag := range p.TagList() {
		tags[tag.Key] = tag.Value
	}
	assert.Equal(t, "site-a", tags["site_id"])
	assert.Equal(t, "siren-1", tags["siren_id"])
	assert.Equal(t, "warning", tags["severity"])

	fields := map[string]interface{}{}
	for _, f := range p.FieldList() {
		fields[f.Key] = f.Value
	}
	assert.Equal(t, 0.9, fields["confidence"])
}
