// Package sse implements a Server-Sent Events broker for real-time updates.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"sync/atomic"
	"time"

	"github.com/starford/shajara/internal/models"
)

// Event represents an SSE event to broadcast.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// sourcePayload is the data of a source.* event.
type sourcePayload struct {
	Path        string `json:"path"`
	Checksum    string `json:"checksum,omitempty"`
	Generation  string `json:"generation,omitempty"`
	Individuals int    `json:"individuals"`
	Families    int    `json:"families"`
	Error       string `json:"error,omitempty"`
}

// treePayload is the data of a tree.updated event.
type treePayload struct {
	Paths []string `json:"paths"`
}

const (
	// heartbeatInterval keeps idle connections open through proxies.
	heartbeatInterval = 30 * time.Second
	// retryMillis is the reconnect delay suggested to EventSource clients.
	retryMillis = 3000
)

type sourceEventReq struct {
	kind   string
	status models.SourceStatus
}

// Broker manages SSE client connections and broadcasts events.
//
// A single event loop owns the client set, the event id counter and the
// tree.updated throttle state. Public methods talk to it over channels.
//
// tree.updated is emitted at most once per throttle interval. Paths that
// change inside the interval are batched into one trailing event.
type Broker struct {
	treeMin time.Duration

	subscribeCh   chan chan []byte
	unsubscribeCh chan chan []byte
	publishCh     chan Event
	sourceEventCh chan sourceEventReq
	countReqCh    chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker creates a new SSE broker with the given tree.updated throttle
// interval.
func NewBroker(treeThrottle time.Duration) *Broker {
	if treeThrottle <= 0 {
		treeThrottle = 2 * time.Second
	}

	b := &Broker{
		treeMin:       treeThrottle,
		subscribeCh:   make(chan chan []byte),
		unsubscribeCh: make(chan chan []byte),
		publishCh:     make(chan Event, 256),
		sourceEventCh: make(chan sourceEventReq, 256),
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
	var (
		nextID   uint64
		lastTree time.Time
		pending  = make(map[string]struct{})
		flush    <-chan time.Time
	)

	broadcast := func(event Event) {
		payload, err := json.Marshal(event.Data)
		if err != nil {
			return
		}
		nextID++
		raw := []byte(fmt.Sprintf("id: %d\nevent: %s\ndata: %s\n\n", nextID, event.Type, payload))

		for ch := range clients {
			select {
			case ch <- raw:
			default:
				// Client buffer full; skip to avoid blocking broker loop.
			}
		}
	}

	flushTree := func(now time.Time) {
		paths := make([]string, 0, len(pending))
		for p := range pending {
			paths = append(paths, p)
		}
		sort.Strings(paths)
		clear(pending)
		lastTree = now
		broadcast(Event{Type: "tree.updated", Data: treePayload{Paths: paths}})
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

		case req := <-b.sourceEventCh:
			st := req.status
			broadcast(Event{Type: "source." + req.kind, Data: sourcePayload{
				Path:        st.Path,
				Checksum:    st.Checksum,
				Generation:  st.Generation,
				Individuals: st.Individuals,
				Families:    st.Families,
				Error:       st.Error,
			}})

			// A failed load keeps the previous tree.
			if req.kind == "failed" {
				continue
			}
			pending[st.Path] = struct{}{}
			if flush != nil {
				continue
			}
			now := time.Now()
			if wait := b.treeMin - now.Sub(lastTree); wait > 0 {
				flush = time.After(wait)
				continue
			}
			flushTree(now)

		case now := <-flush:
			flush = nil
			if len(pending) > 0 {
				flushTree(now)
			}

		case resp := <-b.countReqCh:
			resp <- len(clients)
		}
	}
}

// Close gracefully stops broker loop and closes all client channels.
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

// PublishSourceEvent publishes source.<kind> and, unless the load failed,
// schedules the path for the next tree.updated event.
func (b *Broker) PublishSourceEvent(kind string, status models.SourceStatus) {
	if b.closed.Load() {
		return
	}
	select {
	case b.sourceEventCh <- sourceEventReq{kind: kind, status: status}:
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
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "retry: %d\n\n", retryMillis)
	flusher.Flush()

	ch := b.Subscribe()
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
