// Package notify implements an ordered observer registry.
//
// Observers are called synchronously, in subscription order, on the
// publisher's goroutine. A panicking observer is not recovered; the panic
// reaches the publisher.
package notify

import (
	"sync"

	"github.com/google/uuid"
)

// Observer receives published values.
type Observer[T any] func(T)

// Subscription represents an active observer.
type Subscription[T any] struct {
	id  string
	hub *Hub[T]
}

// ID returns the subscription's unique identifier.
func (s *Subscription[T]) ID() string {
	return s.id
}

// Unsubscribe removes the observer. Safe to call multiple times.
func (s *Subscription[T]) Unsubscribe() {
	if s != nil && s.hub != nil {
		s.hub.unsubscribe(s.id)
	}
}

type entry[T any] struct {
	id       string
	observer Observer[T]
}

// Hub fans values out to observers.
type Hub[T any] struct {
	mu      sync.RWMutex
	entries []entry[T]
	closed  bool
}

// NewHub creates an empty hub.
func NewHub[T any]() *Hub[T] {
	return &Hub[T]{}
}

// Subscribe registers observer. Subscribing to a closed hub returns an
// inert subscription.
func (h *Hub[T]) Subscribe(observer Observer[T]) *Subscription[T] {
	h.mu.Lock()
	defer h.mu.Unlock()

	sub := &Subscription[T]{id: uuid.NewString(), hub: h}
	if h.closed || observer == nil {
		return sub
	}
	h.entries = append(h.entries, entry[T]{id: sub.id, observer: observer})
	return sub
}

// Publish delivers v to every observer registered at the time of the call.
func (h *Hub[T]) Publish(v T) {
	h.mu.RLock()
	if h.closed || len(h.entries) == 0 {
		h.mu.RUnlock()
		return
	}
	observers := make([]Observer[T], len(h.entries))
	for i, e := range h.entries {
		observers[i] = e.observer
	}
	h.mu.RUnlock()

	for _, obs := range observers {
		obs(v)
	}
}

// Len returns the number of observers.
func (h *Hub[T]) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.entries)
}

// Close drops all observers and ignores further publishes. Safe to call
// multiple times.
func (h *Hub[T]) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	h.entries = nil
}

func (h *Hub[T]) unsubscribe(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, e := range h.entries {
		if e.id == id {
			h.entries = append(h.entries[:i:i], h.entries[i+1:]...)
			return
		}
	}
}
