// Package sse streams catalog change notifications to browsers as
// Server-Sent Events.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

// Event types.
const (
	TypeResourceCreated = "resource.created"
	TypeResourceUpdated = "resource.updated"
	TypeResourceDeleted = "resource.deleted"
	TypeCatalogUpdated  = "catalog.updated"
)

// Event is one broadcast message.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type resourceChange struct {
	kind string
	id   string
}

// Broker fans events out to connected clients.
//
// One goroutine owns the client set, the event sequence and the
// catalog.updated throttle; every public method talks to it over channels.
type Broker struct {
	throttle  time.Duration
	keepAlive time.Duration

	subscribeCh   chan chan []byte
	unsubscribeCh chan chan []byte
	publishCh     chan Event
	changeCh      chan resourceChange
	countCh       chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker starts a broker. catalog.updated is sent at most once per
// throttle interval.
func NewBroker(throttle time.Duration) *Broker {
	if throttle <= 0 {
		throttle = 2 * time.Second
	}
	b := &Broker{
		throttle:      throttle,
		keepAlive:     25 * time.Second,
		subscribeCh:   make(chan chan []byte),
		unsubscribeCh: make(chan chan []byte),
		publishCh:     make(chan Event, 256),
		changeCh:      make(chan resourceChange, 256),
		countCh:       make(chan chan int),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}
	go b.loop()
	return b
}

func (b *Broker) loop() {
	defer close(b.stopped)

	clients := make(map[chan []byte]struct{})
	var (
		seq         uint64
		lastSummary time.Time
	)

	send := func(e Event) {
		payload, err := json.Marshal(e.Data)
		if err != nil {
			return
		}
		seq++
		frame := []byte(fmt.Sprintf("id: %d\nevent: %s\ndata: %s\n\n", seq, e.Type, payload))
		for ch := range clients {
			select {
			case ch <- frame:
			default:
				// slow client; drop rather than stall the loop
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

		case e := <-b.publishCh:
			send(e)

		case c := <-b.changeCh:
			typ, ok := changeTypes[c.kind]
			if !ok {
				continue
			}
			send(Event{Type: typ, Data: map[string]string{"id": c.id}})
			if now := time.Now(); now.Sub(lastSummary) >= b.throttle {
				lastSummary = now
				send(Event{Type: TypeCatalogUpdated, Data: map[string]string{}})
			}

		case resp := <-b.countCh:
			resp <- len(clients)
		}
	}
}

var changeTypes = map[string]string{
	"created": TypeResourceCreated,
	"updated": TypeResourceUpdated,
	"deleted": TypeResourceDeleted,
}

// Close stops the loop and closes every client channel. Safe to call twice.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe registers a client. The channel is closed on Unsubscribe or
// Close.
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

// Unsubscribe removes a client.
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
	case b.countCh <- resp:
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

// Publish broadcasts an arbitrary event.
func (b *Broker) Publish(e Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.publishCh <- e:
	case <-b.stopped:
	}
}

// PublishResourceChange broadcasts resource.<kind> for id followed by a
// throttled catalog.updated. Unknown kinds are dropped.
func (b *Broker) PublishResourceChange(kind, id string) {
	if b.closed.Load() {
		return
	}
	select {
	case b.changeCh <- resourceChange{kind: kind, id: id}:
	case <-b.stopped:
	}
}

// ServeHTTP streams events to one client until it disconnects. A comment
// line is written periodically so proxies keep the connection open.
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

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	ticker := time.NewTicker(b.keepAlive)
	defer ticker.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
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
