// Package sse streams worksheet and evaluation events to HTTP clients as
// Server-Sent Events.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/starford/sunc/internal/models"
)

// Event types.
const (
	TypeWorksheetCreated  = "worksheet.created"
	TypeWorksheetUpdated  = "worksheet.updated"
	TypeWorksheetDeleted  = "worksheet.deleted"
	TypeResultsUpdated    = "results.updated"
	TypeEvaluationCreated = "evaluation.created"
)

const heartbeatInterval = 15 * time.Second

// Event is one message to broadcast.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type worksheetEventReq struct {
	kind string
	path string
}

// client is a subscriber channel plus the event type prefixes it wants;
// no prefixes means everything.
type client struct {
	ch       chan []byte
	prefixes []string
}

func (c *client) wants(eventType string) bool {
	if len(c.prefixes) == 0 {
		return true
	}
	for _, p := range c.prefixes {
		if strings.HasPrefix(eventType, p) {
			return true
		}
	}
	return false
}

// Broker fans events out to subscribers.
//
// A single event loop owns the client set and the results throttle; the
// public methods talk to it over channels.
type Broker struct {
	resultsMin time.Duration

	subscribeCh      chan *client
	unsubscribeCh    chan chan []byte
	publishCh        chan Event
	worksheetEventCh chan worksheetEventReq
	countReqCh       chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker creates a broker that emits results.updated at most once per
// resultsThrottle.
func NewBroker(resultsThrottle time.Duration) *Broker {
	if resultsThrottle <= 0 {
		resultsThrottle = 2 * time.Second
	}
	b := &Broker{
		resultsMin:       resultsThrottle,
		subscribeCh:      make(chan *client),
		unsubscribeCh:    make(chan chan []byte),
		publishCh:        make(chan Event, 256),
		worksheetEventCh: make(chan worksheetEventReq, 256),
		countReqCh:       make(chan chan int),
		stopCh:           make(chan struct{}),
		stopped:          make(chan struct{}),
	}
	go b.run()
	return b
}

func (b *Broker) run() {
	defer close(b.stopped)

	clients := make(map[chan []byte]*client)
	var lastResults time.Time

	broadcast := func(event Event) {
		payload, err := json.Marshal(event.Data)
		if err != nil {
			return
		}
		raw := fmt.Appendf(nil, "event: %s\ndata: %s\n\n", event.Type, payload)
		for ch, c := range clients {
			if !c.wants(event.Type) {
				continue
			}
			select {
			case ch <- raw:
			default:
				// Slow client: drop rather than stall the loop.
			}
		}
	}

	for {
		select {
		case <-b.stopCh:
			for ch := range clients {
				close(ch)
			}
			return

		case c := <-b.subscribeCh:
			clients[c.ch] = c

		case ch := <-b.unsubscribeCh:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
			}

		case event := <-b.publishCh:
			broadcast(event)

		case req := <-b.worksheetEventCh:
			data := map[string]string{"path": req.path}
			switch req.kind {
			case "created":
				broadcast(Event{Type: TypeWorksheetCreated, Data: data})
			case "updated":
				broadcast(Event{Type: TypeWorksheetUpdated, Data: data})
			case "deleted":
				broadcast(Event{Type: TypeWorksheetDeleted, Data: data})
			default:
				continue
			}
			if now := time.Now(); now.Sub(lastResults) >= b.resultsMin {
				lastResults = now
				broadcast(Event{Type: TypeResultsUpdated, Data: map[string]string{}})
			}

		case resp := <-b.countReqCh:
			resp <- len(clients)
		}
	}
}

// Close stops the event loop and closes every subscriber channel.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe registers a client for events whose type starts with one of
// prefixes, or for all events when none are given.
func (b *Broker) Subscribe(prefixes ...string) chan []byte {
	ch := make(chan []byte, 64)
	if b.closed.Load() {
		close(ch)
		return ch
	}
	select {
	case b.subscribeCh <- &client{ch: ch, prefixes: prefixes}:
	case <-b.stopped:
		close(ch)
	}
	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.unsubscribeCh <- ch:
	case <-b.stopped:
	}
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}
	resp := make(chan int, 1)
	select {
	case b.countReqCh <- resp:
	case <-b.stopped:
		return 0
	}
	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// Publish sends an event to all interested clients.
func (b *Broker) Publish(event Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.publishCh <- event:
	case <-b.stopped:
	}
}

// PublishWorksheetEvent announces a worksheet change, followed by a
// throttled results.updated.
func (b *Broker) PublishWorksheetEvent(kind, path string) {
	if b.closed.Load() {
		return
	}
	select {
	case b.worksheetEventCh <- worksheetEventReq{kind: kind, path: path}:
	case <-b.stopped:
	}
}

// EvaluationSummary is the payload of evaluation.created.
type EvaluationSummary struct {
	ID         string         `json:"id"`
	Operation  string         `json:"operation"`
	Expression string         `json:"expression"`
	Mode       models.Mode    `json:"mode"`
	Result     string         `json:"result"`
	Value      models.Complex `json:"value"`
}

// PublishEvaluation announces a freshly computed evaluation.
func (b *Broker) PublishEvaluation(e models.Evaluation) {
	b.Publish(Event{Type: TypeEvaluationCreated, Data: EvaluationSummary{
		ID:         e.ID,
		Operation:  e.Operation,
		Expression: e.Expression,
		Mode:       e.Mode,
		Result:     e.Result,
		Value:      e.Value,
	}})
}

// ServeHTTP is the stream endpoint. The optional "types" query parameter is
// a comma-separated list of event type prefixes, e.g. ?types=worksheet.
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.Subscribe(typePrefixes(r.URL.Query().Get("types"))...)
	defer b.Unsubscribe(ch)

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-heartbeat.C:
			_, _ = w.Write([]byte(": ping\n\n"))
			flusher.Flush()
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}

func typePrefixes(raw string) []string {
	var out []string
	for p := range strings.SplitSeq(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
