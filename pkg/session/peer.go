package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	NoticeRevoke  = "revoke"
	NoticeProfile = "profile"

	DefaultPeerChannel = "mlimi:sessions"

	broadcastTimeout = 2 * time.Second
)

// Notice is a session change every instance must apply. ID is a token id
// for revocations and an account id for profile changes.
type Notice struct {
	Kind    string `json:"kind"`
	ID      string `json:"id"`
	Expires int64  `json:"exp,omitempty"`
	Origin  string `json:"origin,omitempty"`
}

type Peer interface {
	Broadcast(ctx context.Context, n Notice) error
}

// RedisPeer carries notices between instances over redis pub/sub.
type RedisPeer struct {
	rdb      *redis.Client
	store    *Store
	channel  string
	instance string
	log      *zap.Logger
}

func NewRedisPeer(rdb *redis.Client, store *Store, log *zap.Logger) *RedisPeer {
	if log == nil {
		log = zap.NewNop()
	}
	return &RedisPeer{rdb: rdb, store: store, channel: DefaultPeerChannel, instance: uuid.NewString(), log: log}
}

func (p *RedisPeer) Broadcast(ctx context.Context, n Notice) error {
	n.Origin = p.instance
	b, err := json.Marshal(n)
	if err != nil {
		return err
	}
	if err := p.rdb.Publish(ctx, p.channel, b).Err(); err != nil {
		p.log.Warn("session notice not sent", zap.String("kind", n.Kind), zap.Error(err))
		return err
	}
	return nil
}

// Run applies notices from other instances until ctx is cancelled.
func (p *RedisPeer) Run(ctx context.Context) error {
	sub := p.rdb.Subscribe(ctx, p.channel)
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
			if n, ok := p.accept([]byte(msg.Payload)); ok {
				p.store.Apply(n)
			}
		}
	}
}

func (p *RedisPeer) accept(payload []byte) (Notice, bool) {
	var n Notice
	if err := json.Unmarshal(payload, &n); err != nil {
		p.log.Warn("bad session notice", zap.Error(err))
		return Notice{}, false
	}
	if n.Origin == p.instance || n.ID == "" {
		return Notice{}, false
	}
	if n.Kind != NoticeRevoke && n.Kind != NoticeProfile {
		return Notice{}, false
	}
	return n, true
}
