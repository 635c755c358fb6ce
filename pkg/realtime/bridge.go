package realtime

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Bridge keeps a view fresh: every change on Table re-runs Fetch in full.
type Bridge struct {
	hub   *Hub
	table string
	fetch func(context.Context) error
	log   *zap.Logger

	mu  sync.Mutex
	ctx context.Context
	sub *Subscription
}

func NewBridge(hub *Hub, table string, fetch func(context.Context) error, log *zap.Logger) *Bridge {
	if log == nil {
		log = zap.NewNop()
	}
	return &Bridge{hub: hub, table: table, fetch: fetch, log: log}
}

// Start subscribes to all event kinds. Calling it twice is a no-op.
func (b *Bridge) Start(ctx context.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.sub != nil {
		return
	}
	b.ctx = ctx
	b.sub = b.hub.Subscribe(b.table, MaskAll, b.onEvent)
}

func (b *Bridge) onEvent(ev Event) {
	b.mu.Lock()
	ctx := b.ctx
	b.mu.Unlock()
	if ctx == nil || ctx.Err() != nil {
		return
	}
	if err := b.fetch(ctx); err != nil {
		b.log.Warn("refresh failed", zap.String("table", b.table), zap.String("event", string(ev.Type)), zap.Error(err))
	}
}

// Close unsubscribes. No new fetch starts once Close returns.
func (b *Bridge) Close() {
	b.mu.Lock()
	sub := b.sub
	b.sub = nil
	b.ctx = nil
	b.mu.Unlock()
	b.hub.Unsubscribe(sub)
}
