package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"

	"mlimi/entities"
	"mlimi/pkg/apperr"
)

const sweepEvery = time.Minute

var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrProfileMissing  = errors.New("User profile not found. Please contact support.")
)

type ProfileLoader interface {
	FindByID(ctx context.Context, id string) (*entities.Profile, error)
}

type Session struct {
	TokenID   string
	AccountID string
	Profile   entities.Profile
	ExpiresAt time.Time
}

// Store issues session tokens and caches the resolved profile per token so
// request handlers never re-query it. Entries are dropped on sign-out, on
// profile changes and once the token expires. With a Peer set, sign-outs
// and profile changes reach every instance.
type Store struct {
	secret []byte
	ttl    time.Duration
	loader ProfileLoader
	now    func() time.Time
	peer   Peer

	mu        sync.RWMutex
	cache     map[string]*Session  // token id -> session
	revoked   map[string]time.Time // token id -> expiry
	lastSweep time.Time
}

func NewStore(secret string, ttl time.Duration, loader ProfileLoader) *Store {
	return &Store{
		secret:  []byte(secret),
		ttl:     ttl,
		loader:  loader,
		now:     time.Now,
		cache:   map[string]*Session{},
		revoked: map[string]time.Time{},
	}
}

func (s *Store) Issue(accountID string) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(s.ttl)
	claims := jwt.StandardClaims{
		Id:        uuid.NewString(),
		Subject:   accountID,
		IssuedAt:  now.Unix(),
		ExpiresAt: exp.Unix(),
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return tok, exp, nil
}

func (s *Store) parse(token string) (*jwt.StandardClaims, error) {
	claims := &jwt.StandardClaims{}
	// expiry is checked below against s.now
	parser := &jwt.Parser{SkipClaimsValidation: true}
	parsed, err := parser.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid || claims.Subject == "" || claims.Id == "" {
		return nil, ErrUnauthenticated
	}
	if !time.Unix(claims.ExpiresAt, 0).After(s.now()) {
		return nil, ErrUnauthenticated
	}
	return claims, nil
}

// Resolve validates token and returns its session, loading the profile on
// first use.
func (s *Store) Resolve(ctx context.Context, token string) (*Session, error) {
	claims, err := s.parse(token)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	_, revoked := s.revoked[claims.Id]
	cached := s.cache[claims.Id]
	s.mu.RUnlock()
	if revoked {
		return nil, ErrUnauthenticated
	}
	if cached != nil {
		return cached, nil
	}

	p, err := s.loader.FindByID(ctx, claims.Subject)
	if errors.Is(err, apperr.ErrNotFound) || (err == nil && p == nil) {
		return nil, ErrProfileMissing
	}
	if err != nil {
		return nil, err
	}
	sess := &Session{
		TokenID:   claims.Id,
		AccountID: claims.Subject,
		Profile:   *p,
		ExpiresAt: time.Unix(claims.ExpiresAt, 0),
	}
	s.mu.Lock()
	s.cache[claims.Id] = sess
	s.sweepLocked(s.now())
	s.mu.Unlock()
	return sess, nil
}

// sweepLocked drops expired cache entries and revocations, at most once per
// sweepEvery. s.mu must be held.
func (s *Store) sweepLocked(now time.Time) {
	if now.Sub(s.lastSweep) < sweepEvery {
		return
	}
	s.lastSweep = now
	for id, sess := range s.cache {
		if !sess.ExpiresAt.After(now) {
			delete(s.cache, id)
		}
	}
	for id, exp := range s.revoked {
		if exp.Before(now) {
			delete(s.revoked, id)
		}
	}
}

// Cached reports how many sessions are held in memory.
func (s *Store) Cached() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cache)
}

// Revoke ends the session behind token. Expired or malformed tokens are
// already unusable and are ignored.
func (s *Store) Revoke(token string) {
	claims, err := s.parse(token)
	if err != nil {
		return
	}
	n := Notice{Kind: NoticeRevoke, ID: claims.Id, Expires: claims.ExpiresAt}
	s.Apply(n)
	s.broadcast(n)
}

// InvalidateProfile drops cached sessions of the account so the next
// request reloads its profile.
func (s *Store) InvalidateProfile(accountID string) {
	n := Notice{Kind: NoticeProfile, ID: accountID}
	s.Apply(n)
	s.broadcast(n)
}

// Apply performs n on this instance only.
func (s *Store) Apply(n Notice) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch n.Kind {
	case NoticeRevoke:
		delete(s.cache, n.ID)
		s.revoked[n.ID] = time.Unix(n.Expires, 0)
		s.lastSweep = time.Time{}
		s.sweepLocked(s.now())
	case NoticeProfile:
		for id, sess := range s.cache {
			if sess.AccountID == n.ID {
				delete(s.cache, id)
			}
		}
	}
}

// SetPeer makes Revoke and InvalidateProfile reach other instances.
func (s *Store) SetPeer(p Peer) {
	s.mu.Lock()
	s.peer = p
	s.mu.Unlock()
}

func (s *Store) broadcast(n Notice) {
	s.mu.RLock()
	p := s.peer
	s.mu.RUnlock()
	if p == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), broadcastTimeout)
	defer cancel()
	_ = p.Broadcast(ctx, n)
}
