package realtime

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const DefaultChannel = "mlimi:changes"

// RedisRelay shares change events between instances over redis pub/sub.
type RedisRelay struct {
	rdb      *redis.Client
	hub      *Hub
	channel  string
	instance string
	log      *zap.Logger
}

func NewRedisRelay(rdb *redis.Client, hub *Hub, log *zap.Logger) *RedisRelay {
	if log == nil {
		log = zap.NewNop()
	}
	return &RedisRelay{rdb: rdb, hub: hub, channel: DefaultChannel, instance: uuid.NewString(), log: log}
}

func (r *RedisRelay) Forward(ctx context.Context, ev Event) error {
	if ev.Origin != "" && ev.Origin != r.instance {
		return nil
	}
	ev.Origin = r.instance
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return r.rdb.Publish(ctx, r.channel, b).Err()
}

// Run delivers remote events locally until ctx is cancelled.
func (r *RedisRelay) Run(ctx context.Context) error {
	sub := r.rdb.Subscribe(ctx, r.channel)
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		return err
	}
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return errors.New("redis subscription closed")
			}
			if ev, ok := r.accept([]byte(msg.Payload)); ok {
				r.hub.Deliver(ev)
			}
		}
	}
}

func (r *RedisRelay) accept(payload []byte) (Event, bool) {
	var ev Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		r.log.Warn("bad relay payload", zap.Error(err))
		return Event{}, false
	}
	if ev.Origin == r.instance || ev.Table == "" {
		return Event{}, false
	}
	return ev, true
}
