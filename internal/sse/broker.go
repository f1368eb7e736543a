// Package sse implements a Server-Sent Events broker that streams watcher
// and repair activity to HTTP clients.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/starford/mdxmend/internal/models"
)

// Event represents an SSE event to broadcast.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Event types.
const (
	TypeDocumentChecked = "document.checked"
	TypeDocumentFixed   = "document.fixed"
	TypeDocumentRemoved = "document.removed"
	TypeDirectoryDirty  = "directory.changed"
	TypeRunCompleted    = "run.completed"
)

type documentEvent struct {
	kind     string
	name     string
	findings []models.Finding
}

// DocumentPayload is the data carried by document.* events.
type DocumentPayload struct {
	Document string           `json:"document"`
	Findings []models.Finding `json:"findings,omitempty"`
	Count    int              `json:"count"`
}

// Broker manages SSE client connections and broadcasts events.
//
// A single internal event loop owns the client set and the throttle
// timestamp; public methods talk to it over channels, so no mutexes are
// required.
type Broker struct {
	dirtyMin time.Duration

	subscribeCh   chan chan []byte
	unsubscribeCh chan chan []byte
	publishCh     chan Event
	documentCh    chan documentEvent
	countReqCh    chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker creates a broker that emits at most one directory.changed event
// per throttle interval.
func NewBroker(throttle time.Duration) *Broker {
	if throttle <= 0 {
		throttle = 2 * time.Second
	}

	b := &Broker{
		dirtyMin:      throttle,
		subscribeCh:   make(chan chan []byte),
		unsubscribeCh: make(chan chan []byte),
		publishCh:     make(chan Event, 256),
		documentCh:    make(chan documentEvent, 256),
		countReqCh:    make(chan chan int),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}

	go b.run()
	return b
}

func (b *Broker) run() {
	defer close(b.stopped)

	clients := make(map[chan []byte]struct{})
	var lastDirty time.Time

	broadcast := func(event Event) {
		payload, err := json.Marshal(event.Data)
		if err != nil {
			return
		}
		raw := []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", event.Type, payload))

		for ch := range clients {
			select {
			case ch <- raw:
			default:
				// Client buffer full; skip to avoid blocking the loop.
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

		case ch := <-b.subscribeCh:
			clients[ch] = struct{}{}

		case ch := <-b.unsubscribeCh:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
			}

		case event := <-b.publishCh:
			broadcast(event)

		case req := <-b.documentCh:
			data := DocumentPayload{Document: req.name, Findings: req.findings, Count: len(req.findings)}
			switch req.kind {
			case "checked":
				broadcast(Event{Type: TypeDocumentChecked, Data: data})
			case "fixed":
				broadcast(Event{Type: TypeDocumentFixed, Data: data})
			case "removed":
				broadcast(Event{Type: TypeDocumentRemoved, Data: data})
			}

			now := time.Now()
			if now.Sub(lastDirty) >= b.dirtyMin {
				lastDirty = now
				broadcast(Event{Type: TypeDirectoryDirty, Data: map[string]string{}})
			}

		case resp := <-b.countReqCh:
			resp <- len(clients)
		}
	}
}

// Close gracefully stops the broker loop and closes all client channels.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe adds a new client and returns its channel.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, 64)
	if b.closed.Load() {
		close(ch)
		return ch
	}

	select {
	case b.subscribeCh <- ch:
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

// Publish sends an event to all connected clients.
func (b *Broker) Publish(event Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.publishCh <- event:
	case <-b.stopped:
	}
}

// PublishRun announces a finished repair run.
func (b *Broker) PublishRun(run models.Run) {
	run.Outcomes = nil
	b.Publish(Event{Type: TypeRunCompleted, Data: run})
}

// PublishDocumentEvent publishes a watcher event (kind is "checked",
// "fixed" or "removed") and a throttled directory.changed event. Its
// signature matches watcher.Callback.
func (b *Broker) PublishDocumentEvent(kind, name string, findings []models.Finding) {
	if b.closed.Load() {
		return
	}
	select {
	case b.documentCh <- documentEvent{kind: kind, name: name, findings: findings}:
	case <-b.stopped:
	}
}

// ServeHTTP is the SSE endpoint handler (GET /api/events).
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
