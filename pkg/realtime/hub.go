package realtime

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"mlimi/pkg/metrics"
)

type EventType string

const (
	Insert EventType = "INSERT"
	Update EventType = "UPDATE"
	Delete EventType = "DELETE"
)

type EventMask uint8

const (
	MaskInsert EventMask = 1 << iota
	MaskUpdate
	MaskDelete

	MaskAll = MaskInsert | MaskUpdate | MaskDelete
)

func (m EventMask) Has(t EventType) bool {
	switch t {
	case Insert:
		return m&MaskInsert != 0
	case Update:
		return m&MaskUpdate != 0
	case Delete:
		return m&MaskDelete != 0
	}
	return false
}

// Event signals that a table changed. Row content is not carried.
type Event struct {
	Table  string    `json:"table"`
	Type   EventType `json:"type"`
	At     time.Time `json:"at"`
	Origin string    `json:"origin,omitempty"`
}

type Handler func(Event)

// Relay forwards locally published events to other instances.
type Relay interface {
	Forward(ctx context.Context, ev Event) error
}

type Subscription struct {
	id     uint64
	table  string
	mask   EventMask
	fn     Handler
	hub    *Hub
	closed atomic.Bool
}

func (s *Subscription) Table() string { return s.table }

// Close is the same as Hub.Unsubscribe(s).
func (s *Subscription) Close() { s.hub.Unsubscribe(s) }

// Hub fans change events out to subscribers. Handlers run synchronously on
// the publishing goroutine, in subscription order.
type Hub struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[string][]*Subscription
	relays []Relay
	log    *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{subs: map[string][]*Subscription{}, log: log}
}

func (h *Hub) AddRelay(r Relay) {
	h.mu.Lock()
	h.relays = append(h.relays, r)
	h.mu.Unlock()
}

func (h *Hub) Subscribe(table string, mask EventMask, fn Handler) *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	s := &Subscription{id: h.nextID, table: table, mask: mask, fn: fn, hub: h}
	h.subs[table] = append(h.subs[table], s)
	metrics.Subscriptions.Inc()
	return s
}

// Unsubscribe is idempotent.
func (h *Hub) Unsubscribe(s *Subscription) {
	if s == nil || !s.closed.CompareAndSwap(false, true) {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	list := h.subs[s.table]
	for i, cur := range list {
		if cur.id == s.id {
			h.subs[s.table] = append(list[:i:i], list[i+1:]...)
			break
		}
	}
	if len(h.subs[s.table]) == 0 {
		delete(h.subs, s.table)
	}
	metrics.Subscriptions.Dec()
}

// Count returns the number of live subscriptions on table.
func (h *Hub) Count(table string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[table])
}

// Publish delivers ev locally and hands it to every relay.
func (h *Hub) Publish(ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	h.Deliver(ev)

	h.mu.RLock()
	relays := append([]Relay(nil), h.relays...)
	h.mu.RUnlock()
	for _, r := range relays {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := r.Forward(ctx, ev); err != nil {
			h.log.Warn("relay forward failed", zap.String("table", ev.Table), zap.Error(err))
		}
		cancel()
	}
}

// Deliver runs local handlers only.
func (h *Hub) Deliver(ev Event) {
	h.mu.RLock()
	subs := append([]*Subscription(nil), h.subs[ev.Table]...)
	h.mu.RUnlock()

	for _, s := range subs {
		if s.closed.Load() || !s.mask.Has(ev.Type) {
			continue
		}
		h.invoke(s, ev)
	}
}

func (h *Hub) invoke(s *Subscription, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			h.log.Error("subscriber panicked", zap.String("table", ev.Table), zap.Any("panic", r))
		}
	}()
	s.fn(ev)
}
