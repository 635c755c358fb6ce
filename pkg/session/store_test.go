package session

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mlimi/entities"
	"mlimi/pkg/apperr"
)

type fakeLoader struct {
	profiles map[string]*entities.Profile
	calls    int
	err      error
}

func (f *fakeLoader) FindByID(_ context.Context, id string) (*entities.Profile, error) {
	f.calls++
	if p, ok := f.profiles[id]; ok {
		cp := *p
		return &cp, nil
	}
	if f.err != nil {
		return nil, f.err
	}
	return nil, apperr.NotFound("profile not found")
}

func newStore() (*Store, *fakeLoader) {
	l := &fakeLoader{profiles: map[string]*entities.Profile{
		"acc-1": {ID: "acc-1", Name: "Chikondi", Role: entities.RoleFarmer, IsApproved: true},
	}}
	return NewStore("secret", time.Hour, l), l
}

func TestIssueAndResolveCachesProfile(t *testing.T) {
	s, l := newStore()
	tok, exp, err := s.Issue("acc-1")
	require.NoError(t, err)
	assert.True(t, exp.After(time.Now()))

	sess, err := s.Resolve(context.Background(), tok)
	require.NoError(t, err)
	assert.Equal(t, "acc-1", sess.AccountID)
	assert.Equal(t, entities.RoleFarmer, sess.Profile.Role)

	_, err = s.Resolve(context.Background(), tok)
	require.NoError(t, err)
	assert.Equal(t, 1, l.calls)
}

func TestInvalidateProfileReloads(t *testing.T) {
	s, l := newStore()
	tok, _, _ := s.Issue("acc-1")
	_, err := s.Resolve(context.Background(), tok)
	require.NoError(t, err)

	l.profiles["acc-1"].Name = "Chikondi B."
	s.InvalidateProfile("acc-1")

	sess, err := s.Resolve(context.Background(), tok)
	require.NoError(t, err)
	assert.Equal(t, "Chikondi B.", sess.Profile.Name)
	assert.Equal(t, 2, l.calls)
}

func TestRevokedTokenIsRejected(t *testing.T) {
	s, _ := newStore()
	tok, _, _ := s.Issue("acc-1")
	s.Revoke(tok)
	s.Revoke("garbage")

	_, err := s.Resolve(context.Background(), tok)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestResolveRejectsBadTokens(t *testing.T) {
	s, _ := newStore()
	other := NewStore("other-secret", time.Hour, &fakeLoader{})
	foreign, _, _ := other.Issue("acc-1")

	s.now = func() time.Time { return time.Now().Add(-48 * time.Hour) }
	expired, _, _ := s.Issue("acc-1")
	s.now = time.Now

	for name, tok := range map[string]string{"empty": "", "garbage": "a.b.c", "foreign": foreign, "expired": expired} {
		t.Run(name, func(t *testing.T) {
			_, err := s.Resolve(context.Background(), tok)
			assert.ErrorIs(t, err, ErrUnauthenticated)
		})
	}
}

func TestResolveWithoutProfile(t *testing.T) {
	s, _ := newStore()
	tok, _, _ := s.Issue("ghost")
	_, err := s.Resolve(context.Background(), tok)
	assert.ErrorIs(t, err, ErrProfileMissing)
}

func TestResolvePassesLoaderFailuresThrough(t *testing.T) {
	s, l := newStore()
	l.err = errors.New("dial tcp: connection refused")
	tok, _, _ := s.Issue("acc-1")

	_, err := s.Resolve(context.Background(), tok)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrProfileMissing)
	assert.EqualError(t, err, "dial tcp: connection refused")
}

func TestExpiredSessionsLeaveCache(t *testing.T) {
	s, _ := newStore()
	start := time.Now()
	s.now = func() time.Time { return start }

	for i := 0; i < 50; i++ {
		tok, _, err := s.Issue("acc-1")
		require.NoError(t, err)
		_, err = s.Resolve(context.Background(), tok)
		require.NoError(t, err)
	}
	assert.Equal(t, 50, s.Cached())

	s.now = func() time.Time { return start.Add(48 * time.Hour) }
	tok, _, _ := s.Issue("acc-1")
	_, err := s.Resolve(context.Background(), tok)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Cached())
}

type recordingPeer struct{ sent []Notice }

func (p *recordingPeer) Broadcast(_ context.Context, n Notice) error {
	p.sent = append(p.sent, n)
	return nil
}

func TestRevokeAndInvalidateReachPeers(t *testing.T) {
	a, _ := newStore()
	b, _ := newStore()
	peer := &recordingPeer{}
	a.SetPeer(peer)

	tok, _, _ := a.Issue("acc-1")
	_, err := b.Resolve(context.Background(), tok)
	require.NoError(t, err)

	a.InvalidateProfile("acc-1")
	a.Revoke(tok)
	require.Len(t, peer.sent, 2)
	assert.Equal(t, NoticeProfile, peer.sent[0].Kind)
	assert.Equal(t, NoticeRevoke, peer.sent[1].Kind)

	for _, n := range peer.sent {
		b.Apply(n)
	}
	assert.Equal(t, 0, b.Cached())
	_, err = b.Resolve(context.Background(), tok)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestRedisPeerAcceptFiltersOwnNotices(t *testing.T) {
	s, _ := newStore()
	p := NewRedisPeer(nil, s, nil)

	own, _ := json.Marshal(Notice{Kind: NoticeRevoke, ID: "t1", Origin: p.instance})
	_, ok := p.accept(own)
	assert.False(t, ok)

	remote, _ := json.Marshal(Notice{Kind: NoticeProfile, ID: "acc-1", Origin: "other"})
	n, ok := p.accept(remote)
	require.True(t, ok)
	assert.Equal(t, "acc-1", n.ID)

	unknown, _ := json.Marshal(Notice{Kind: "wipe", ID: "x", Origin: "other"})
	_, ok = p.accept(unknown)
	assert.False(t, ok)

	_, ok = p.accept([]byte("{"))
	assert.False(t, ok)
}
