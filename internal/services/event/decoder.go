package event

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	msg "github.com/firesense-dev/firesense/internal/model/messages"
)

type CommonEvent struct {
	EventType     string // alarm.decision | siren.state_change | siren.result
	SourceService string // alarm-controller | annunciator-service | ...
	SiteID        string
	UnitID        string // siren ID; empty for site-wide events
	Severity      string // info|warning|error
	Fields        map[string]interface{}
	Timestamp     time.Time
}

// MQTTHandler turns MQTT messages into CommonEvents and hands them to sink (Influx).
type MQTTHandler struct{ sink func(CommonEvent) }

func NewMQTTHandler(sink func(CommonEvent)) *MQTTHandler { return &MQTTHandler{sink: sink} }

func (h *MQTTHandler) Handle(_ string, m mqtt.Message) error {
	topic := m.Topic()
	payload := m.Payload()

	var (
		evt CommonEvent
		err error
	)
	switch {
	case strings.HasPrefix(topic, "event/alarmDecision/"):
		evt, err = decodeAlarmDecision(topic, payload)
	case strings.HasPrefix(topic, "event/StateChange/"):
		evt, err = decodeStateChange(topic, payload)
	case strings.HasPrefix(topic, "event/sirenResult/"):
		evt, err = decodeSirenResult(topic, payload)
	default:
		return nil // ignore other topics
	}
	if err != nil {
		return err
	}
	if h.sink != nil {
		h.sink(evt)
	}
	return nil
}

func decodeAlarmDecision(topic string, payload []byte) (CommonEvent, error) {
	var d msg.AlarmEvent
	if err := json.Unmarshal(payload, &d); err != nil {
		return CommonEvent{}, err
	}
	siteID, _ := pickIDs(topic, d.SiteID, "", "event/alarmDecision/")
	if siteID == "" {
		return CommonEvent{}, errors.New("decision: missing site")
	}
	sev := "info"
	if d.Alarm {
		sev = "warning"
	}
	return CommonEvent{
		EventType:     "alarm.decision",
		SourceService: "alarm-controller",
		SiteID:        siteID,
		Severity:      sev,
		Fields: map[string]interface{}{
			"alarm":          d.Alarm,
			"decision_id":    d.DecisionID,
			"reason":         d.Reason,
			"confidence":     d.Confidence,
			"sources":        strings.Join(d.Sources, ","),
			"hot_cell_count": int64(d.HotCellCount),
			"thermal_max":    d.ThermalMax,
		},
		Timestamp: d.Timestamp,
	}, nil
}

func decodeStateChange(topic string, payload []byte) (CommonEvent, error) {
	var s msg.StateChangeEvent
	if err := json.Unmarshal(payload, &s); err != nil {
		return CommonEvent{}, err
	}
	siteID, sirenID := pickIDs(topic, s.SiteID, s.SirenID, "event/StateChange/")
	if siteID == "" || sirenID == "" {
		return CommonEvent{}, errors.New("stateChange: missing site/siren")
	}
	return CommonEvent{
		EventType:     "siren.state_change",
		SourceService: "annunciator-service",
		SiteID:        siteID,
		UnitID:        sirenID,
		Severity:      "info",
		Fields: map[string]interface{}{
			"new_state": string(s.NewState),
			"duration":  s.Duration.Seconds(),
		},
		Timestamp: s.Timestamp,
	}, nil
}

func decodeSirenResult(topic string, payload []byte) (CommonEvent, error) {
	var r msg.SirenResultEvent
	if err := json.Unmarshal(payload, &r); err != nil {
		return CommonEvent{}, err
	}
	siteID, sirenID := pickIDs(topic, r.SiteID, r.SirenID, "event/sirenResult/")
	if siteID == "" || sirenID == "" {
		return CommonEvent{}, errors.New("result: missing site/siren")
	}
	sev := "info"
	if strings.EqualFold(r.Status, "FAIL") {
		sev = "warning"
	}
	return CommonEvent{
		EventType:     "siren.result",
		SourceService: "annunciator-service",
		SiteID:        siteID,
		UnitID:        sirenID,
		Severity:      sev,
		Fields: map[string]interface{}{
			"status":      r.Status,
			"ran_for_sec": r.RanFor,
			"reason":      r.Reason,
			"decision_id": r.DecisionID,
		},
		Timestamp: r.Timestamp,
	}, nil
}

// pickIDs uses the payload, falling back to topic "prefix/{site}[/{siren}]".
func pickIDs(topic, siteID, sirenID, prefix string) (string, string) {
	if strings.TrimSpace(siteID) != "" && strings.TrimSpace(sirenID) != "" {
		return siteID, sirenID
	}
	suffix := strings.TrimPrefix(topic, prefix)
	parts := strings.Split(suffix, "/")
	if strings.TrimSpace(siteID) == "" && len(parts) >= 1 && parts[0] != "" {
		siteID = parts[0]
	}
	if strings.TrimSpace(sirenID) == "" && len(parts) >= 2 {
		sirenID = parts[1]
	}
	return siteID, sirenID
}
