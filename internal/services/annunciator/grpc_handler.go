package annunciator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	pb "github.com/firesense-dev/firesense/grpc/gen/go/annunciator"
	"github.com/firesense-dev/firesense/internal/model"
	"github.com/firesense-dev/firesense/pkg/rabbitmq"
)

type PublisherFactory func(topic string) rabbitmq.IPublisher

// GrpcHandler implements AnnunciatorService and publishes StateChange + SirenResult.
type GrpcHandler struct {
	pb.UnimplementedAnnunciatorServiceServer

	makePublisher PublisherFactory
	sites         map[string]model.Site

	// topic template for StateChange, e.g. "event/StateChange/{site}/{siren}"
	stateTopicTmpl string

	// topic template for SirenResult, e.g. "event/sirenResult/{site}/{siren}"
	resultTopicTmpl string

	// liveness (implicit heartbeat from sensor/env/{site})
	siteLivenessTTL time.Duration
	offlineGrace    time.Duration
	lastSeen        sync.Map // "site" -> time.Time

	// one sounding cycle per siren; Silence closes the stop channel
	mu     sync.Mutex
	active map[string]chan struct{} // "site|siren" -> stop
	states map[string]model.Annunciator
}

func NewGrpcHandler(factory PublisherFactory, stateTopicTmpl string, sites map[string]model.Site) *GrpcHandler {
	states := make(map[string]model.Annunciator)
	for _, site := range sites {
		for _, a := range site.Annunciators {
			a.State = model.StateIdle
			states[sirenKey(site.ID, a.ID)] = a
		}
	}
	return &GrpcHandler{
		makePublisher:   factory,
		sites:           sites,
		stateTopicTmpl:  stateTopicTmpl,
		resultTopicTmpl: "event/sirenResult/{site}/{siren}",
		siteLivenessTTL: 60 * time.Second,
		offlineGrace:    5 * time.Second,
		active:          make(map[string]chan struct{}),
		states:          states,
	}
}

func (h *GrpcHandler) SetResultTopicTemplate(t string) {
	if strings.TrimSpace(t) != "" {
		h.resultTopicTmpl = t
	}
}

// SetLiveness sets the heartbeat TTL and the grace window (driven by ENV from main).
func (h *GrpcHandler) SetLiveness(ttl, grace time.Duration) {
	if ttl > 0 {
		h.siteLivenessTTL = ttl
	}
	if grace > 0 {
		h.offlineGrace = grace
	}
}

// ============== RPC: TriggerSiren ==============

func (h *GrpcHandler) TriggerSiren(_ context.Context, req *pb.TriggerRequest) (*pb.CommandResponse, error) {
	sid, aid := strings.TrimSpace(req.GetSiteId()), strings.TrimSpace(req.GetSirenId())

	siren, ok := h.lookupSiren(sid, aid)
	if !ok {
		return &pb.CommandResponse{Success: false, Message: fmt.Sprintf("unknown site/siren %s/%s", sid, aid)}, nil
	}

	dur := 60 * time.Second
	if req.GetDurationSec() > 0 {
		dur = time.Duration(req.GetDurationSec()) * time.Second
	}
	dur = siren.ClampDuration(dur)
	if dur < time.Second {
		dur = time.Second
	}

	key := sirenKey(sid, aid)
	stop := make(chan struct{})
	h.mu.Lock()
	if _, busy := h.active[key]; busy {
		h.mu.Unlock()
		return &pb.CommandResponse{Success: false, Message: fmt.Sprintf("siren %s/%s already sounding", sid, aid)}, nil
	}
	h.active[key] = stop
	h.setState(key, model.StateSounding)
	h.mu.Unlock()

	// 1) publish StateChange ON
	stateTopic := formatTopic(h.stateTopicTmpl, sid, aid)
	onEvt := model.StateChangeEvent{
		SiteID:    sid,
		SirenID:   aid,
		NewState:  model.StateSounding,
		Duration:  dur,
		Timestamp: time.Now(),
	}
	b, _ := json.Marshal(onEvt)
	if err := h.makePublisher(stateTopic).PublishToQos(stateTopic, 1, false, string(b)); err != nil {
		h.clearActive(key)
		return &pb.CommandResponse{Success: false, Message: "publish state ON failed"}, err
	}

	// 2) Accepted + ticket; the cycle goroutine publishes the result at the end
	ticket := uuid.New().String()
	started := time.Now()

	go h.soundingCycle(sid, aid, req.GetDecisionId(), ticket, dur, started, stateTopic, stop)

	return &pb.CommandResponse{
		Success:  true,
		Message:  fmt.Sprintf("siren %s/%s sounding for %s", sid, aid, dur),
		TicketId: ticket,
	}, nil
}

// soundingCycle runs one siren activation to completion, silence or offline
// failure, then publishes the SirenResultEvent and the OFF StateChange.
func (h *GrpcHandler) soundingCycle(siteID, sirenID, decisionID, ticketID string, total time.Duration, started time.Time, stateTopic string, stop <-chan struct{}) {
	tick := time.NewTicker(time.Second)
	defer tick.Stop()
	defer h.clearActive(sirenKey(siteID, sirenID))

	deadline := started.Add(total)
	status, reason := "OK", "done"

loop:
	for time.Now().Before(deadline) {
		select {
		case <-stop:
			reason = "silenced"
			break loop
		case <-tick.C:
		}

		// liveness: no site heartbeat within TTL+grace means nobody can hear
		// whether the siren ran, report FAIL with the partial runtime
		if !h.isLive(siteID) && !h.waitGraceAlive(siteID, h.offlineGrace) {
			status, reason = "FAIL", "offline"
			break loop
		}
	}

	h.publishResult(model.SirenResultEvent{
		SiteID:     siteID,
		SirenID:    sirenID,
		TicketID:   ticketID,
		DecisionID: decisionID,
		Status:     status,
		RanFor:     time.Since(started).Seconds(),
		Reason:     reason,
		StartedAt:  started,
		Timestamp:  time.Now(),
	})

	// OFF at end of cycle (also the safety OFF on failure)
	offEvt := model.StateChangeEvent{
		SiteID:    siteID,
		SirenID:   sirenID,
		NewState:  model.StateIdle,
		Duration:  0,
		Timestamp: time.Now(),
	}
	ob, _ := json.Marshal(offEvt)
	_ = h.makePublisher(stateTopic).PublishToQos(stateTopic, 1, false, string(ob))
}

// ============== RPC: Silence ==============

func (h *GrpcHandler) Silence(_ context.Context, req *pb.SilenceRequest) (*pb.CommandResponse, error) {
	sid, aid := strings.TrimSpace(req.GetSiteId()), strings.TrimSpace(req.GetSirenId())

	h.mu.Lock()
	stop, busy := h.active[sirenKey(sid, aid)]
	h.mu.Unlock()
	if busy {
		close(stop)
		return &pb.CommandResponse{Success: true, Message: fmt.Sprintf("siren %s/%s silenced", sid, aid)}, nil
	}

	// no running cycle: still push an OFF so a desynced unit shuts up
	evt := model.StateChangeEvent{
		SiteID:    sid,
		SirenID:   aid,
		NewState:  model.StateIdle,
		Duration:  0,
		Timestamp: time.Now(),
	}
	b, _ := json.Marshal(evt)
	topic := formatTopic(h.stateTopicTmpl, sid, aid)
	if err := h.makePublisher(topic).PublishToQos(topic, 1, false, string(b)); err != nil {
		return &pb.CommandResponse{Success: false, Message: "publish state OFF failed"}, err
	}
	return &pb.CommandResponse{Success: true, Message: fmt.Sprintf("siren %s/%s already idle", sid, aid)}, nil
}

// ============== Helpers ==============

// OnEnvReading refreshes site liveness from the implicit heartbeat (sensor/env/{site}).
func (h *GrpcHandler) OnEnvReading(_ string, m mqtt.Message) error {
	parts := strings.Split(m.Topic(), "/")
	if len(parts) >= 3 {
		h.lastSeen.Store(parts[2], time.Now())
	}
	return nil
}

// Status reports the current state of every known siren, keyed "site/siren".
func (h *GrpcHandler) Status() map[string]model.Annunciator {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make(map[string]model.Annunciator, len(h.states))
	for k, a := range h.states {
		out[strings.ReplaceAll(k, "|", "/")] = a
	}
	return out
}

func (h *GrpcHandler) isLive(siteID string) bool {
	if v, ok := h.lastSeen.Load(siteID); ok {
		return time.Since(v.(time.Time)) < h.siteLivenessTTL
	}
	return false
}

func (h *GrpcHandler) waitGraceAlive(siteID string, grace time.Duration) bool {
	deadline := time.Now().Add(grace)
	for time.Now().Before(deadline) {
		if h.isLive(siteID) {
			return true
		}
		time.Sleep(200 * time.Millisecond)
	}
	return false
}

func (h *GrpcHandler) publishResult(evt model.SirenResultEvent) {
	topic := formatTopic(firstNonEmpty(h.resultTopicTmpl, "event/sirenResult/{site}/{siren}"), evt.SiteID, evt.SirenID)
	payload, _ := json.Marshal(evt)
	_ = h.makePublisher(topic).PublishToQos(topic, 1, false, string(payload))
}

func (h *GrpcHandler) clearActive(key string) {
	h.mu.Lock()
	delete(h.active, key)
	h.setState(key, model.StateIdle)
	h.mu.Unlock()
}

// setState must be called with h.mu held.
func (h *GrpcHandler) setState(key string, s model.SirenState) {
	a, ok := h.states[key]
	if !ok {
		return
	}
	a.State = s
	h.states[key] = a
}

func (h *GrpcHandler) lookupSiren(siteID, sirenID string) (model.Annunciator, bool) {
	site, ok := h.sites[siteID]
	if !ok {
		return model.Annunciator{}, false
	}
	for _, a := range site.Annunciators {
		if a.ID == sirenID {
			return a, true
		}
	}
	return model.Annunciator{}, false
}

func sirenKey(siteID, sirenID string) string {
	return siteID + "|" + sirenID
}

func formatTopic(tmpl, siteID, sirenID string) string {
	if strings.TrimSpace(tmpl) == "" {
		tmpl = "event/StateChange/{site}/{siren}"
	}
	return strings.NewReplacer("{site}", siteID, "{siren}", sirenID).Replace(tmpl)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
