// Package store carries the storage collaborators around the core: the
// change-notification hub and the single-file document store used as the
// local backend variant.
package store

import (
	"sync"
	"time"
)

// Collection names shared by both backends and the change feed
const (
	CollectionMissions  = "missions"
	CollectionUsers     = "users"
	CollectionTemplates = "form_templates"
	CollectionResponses = "form_responses"
	CollectionSettings  = "settings"
)

// Event describes one mutation of a collection
type Event struct {
	Collection string    `json:"collection"`
	ID         string    `json:"id"`
	Op         string    `json:"op"` // "upsert" or "delete"
	At         time.Time `json:"at"`
}

// Hub is a single-writer-many-reader change notifier owned by the
// application root. Services publish after every mutation; subscribers get a
// buffered channel and are dropped rather than blocked when they fall
// behind.
type Hub struct {
	mu   sync.Mutex
	next int
	subs map[int]subscriber
}

type subscriber struct {
	collection string // empty subscribes to everything
	ch         chan Event
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{subs: make(map[int]subscriber)}
}

// Subscribe registers for events on one collection (empty for all) and
// returns the event channel plus an unsubscribe func. The channel is closed
// on unsubscribe.
func (h *Hub) Subscribe(collection string) (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.next
	h.next++
	sub := subscriber{collection: collection, ch: make(chan Event, 64)}
	h.subs[id] = sub

	unsubscribe := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if s, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(s.ch)
		}
	}
	return sub.ch, unsubscribe
}

// Publish fans an event out to matching subscribers without blocking
func (h *Hub) Publish(ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, sub := range h.subs {
		if sub.collection != "" && sub.collection != ev.Collection {
			continue
		}
		select {
		case sub.ch <- ev:
		default:
			// Slow subscriber: drop the event rather than stall writers.
		}
	}
}
