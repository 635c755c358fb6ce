package realtime

import (
	"context"
	"sync"
	"time"

	"gorm.io/gorm"
)

const callbackPrefix = "realtime:"

// AttachGorm publishes an event after every committed create, update or
// delete that touched at least one row. Statements run through Transaction
// publish once the whole transaction commits.
func AttachGorm(db *gorm.DB, hub *Hub) error {
	cb := db.Callback()
	if err := cb.Create().After("gorm:commit_or_rollback_transaction").
		Register(callbackPrefix+"create", publisher(hub, Insert)); err != nil {
		return err
	}
	if err := cb.Update().After("gorm:commit_or_rollback_transaction").
		Register(callbackPrefix+"update", publisher(hub, Update)); err != nil {
		return err
	}
	return cb.Delete().After("gorm:commit_or_rollback_transaction").
		Register(callbackPrefix+"delete", publisher(hub, Delete))
}

func publisher(hub *Hub, t EventType) func(*gorm.DB) {
	return func(db *gorm.DB) {
		if db.Error != nil || db.RowsAffected == 0 || db.Statement.Table == "" {
			return
		}
		ev := Event{Table: db.Statement.Table, Type: t, At: time.Now().UTC()}
		if p := pendingFrom(db.Statement.Context); p != nil {
			p.add(func() { hub.Publish(ev) })
			return
		}
		hub.Publish(ev)
	}
}

type pendingKey struct{}

type pending struct {
	mu   sync.Mutex
	fire []func()
}

func (p *pending) add(f func()) {
	p.mu.Lock()
	p.fire = append(p.fire, f)
	p.mu.Unlock()
}

func pendingFrom(ctx context.Context) *pending {
	if ctx == nil {
		return nil
	}
	p, _ := ctx.Value(pendingKey{}).(*pending)
	return p
}

// Transaction runs fn inside a database transaction and holds back the
// change events of its statements until the commit succeeds. A rolled back
// transaction publishes nothing. Nested calls publish with the outermost.
func Transaction(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if pendingFrom(ctx) != nil {
		return db.WithContext(ctx).Transaction(fn)
	}
	p := &pending{}
	if err := db.WithContext(context.WithValue(ctx, pendingKey{}, p)).Transaction(fn); err != nil {
		return err
	}
	p.mu.Lock()
	fire := p.fire
	p.fire = nil
	p.mu.Unlock()
	for _, f := range fire {
		f()
	}
	return nil
}
