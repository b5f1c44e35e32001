package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"tourdesk/internal/domain"
	"tourdesk/internal/wizard"
)

// SessionStore keeps wizard sessions between requests. Every Save refreshes
// the expiry, so a session left alone for longer than the TTL disappears.
type SessionStore interface {
	Load(ctx context.Context, id string) (*wizard.Session, error)
	Save(ctx context.Context, s *wizard.Session) error
	Delete(ctx context.Context, id string) error
}

// RevocationList remembers logged-out token ids until they would have expired.
type RevocationList interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

const (
	sessionKeyPrefix = "tourdesk:wizard:"
	revokedKeyPrefix = "tourdesk:revoked:"
)

var errSessionNotFound = domain.NotFoundError{Resource: "wizard session"}

// RedisStore implements SessionStore and RevocationList on redis.
type RedisStore struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{Client: client, TTL: ttl}
}

func (r *RedisStore) Load(ctx context.Context, id string) (*wizard.Session, error) {
	raw, err := r.Client.Get(ctx, sessionKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, errSessionNotFound
	}
	if err != nil {
		return nil, domain.InternalError{Msg: "load wizard session failed", Err: err}
	}
	var s wizard.Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, domain.InternalError{Msg: "decode wizard session failed", Err: err}
	}
	return &s, nil
}

func (r *RedisStore) Save(ctx context.Context, s *wizard.Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return domain.InternalError{Msg: "encode wizard session failed", Err: err}
	}
	if err := r.Client.Set(ctx, sessionKeyPrefix+s.ID, raw, r.TTL).Err(); err != nil {
		return domain.InternalError{Msg: "save wizard session failed", Err: err}
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	if err := r.Client.Del(ctx, sessionKeyPrefix+id).Err(); err != nil {
		return domain.InternalError{Msg: "delete wizard session failed", Err: err}
	}
	return nil
}

func (r *RedisStore) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	if err := r.Client.Set(ctx, revokedKeyPrefix+tokenID, "1", ttl).Err(); err != nil {
		return domain.InternalError{Msg: "revoke token failed", Err: err}
	}
	return nil
}

func (r *RedisStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.Client.Exists(ctx, revokedKeyPrefix+tokenID).Result()
	if err != nil {
		return false, domain.InternalError{Msg: "check revoked token failed", Err: err}
	}
	return n > 0, nil
}

// MemoryStore is the single-process fallback used when no redis address is
// configured, and in tests. Sessions are stored encoded so callers never
// share a pointer with the store.
type MemoryStore struct {
	TTL time.Duration
	Now func() time.Time

	mu       sync.Mutex
	sessions map[string]memoryEntry
	revoked  map[string]time.Time
}

type memoryEntry struct {
	raw     []byte
	expires time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		TTL:      ttl,
		Now:      time.Now,
		sessions: map[string]memoryEntry{},
		revoked:  map[string]time.Time{},
	}
}

func (m *MemoryStore) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

func (m *MemoryStore) Load(_ context.Context, id string) (*wizard.Session, error) {
	m.mu.Lock()
	e, ok := m.sessions[id]
	if ok && m.TTL > 0 && !m.now().Before(e.expires) {
		delete(m.sessions, id)
		ok = false
	}
	m.mu.Unlock()
	if !ok {
		return nil, errSessionNotFound
	}
	var s wizard.Session
	if err := json.Unmarshal(e.raw, &s); err != nil {
		return nil, domain.InternalError{Msg: "decode wizard session failed", Err: err}
	}
	return &s, nil
}

func (m *MemoryStore) Save(_ context.Context, s *wizard.Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return domain.InternalError{Msg: "encode wizard session failed", Err: err}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = memoryEntry{raw: raw, expires: m.now().Add(m.TTL)}
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *MemoryStore) Revoke(_ context.Context, tokenID string, until time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if until.After(m.now()) {
		m.revoked[tokenID] = until
	}
	return nil
}

func (m *MemoryStore) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	until, ok := m.revoked[tokenID]
	if !ok {
		return false, nil
	}
	if !m.now().Before(until) {
		delete(m.revoked, tokenID)
		return false, nil
	}
	return true, nil
}

// Sweep drops expired entries. The HTTP server runs it periodically.
func (m *MemoryStore) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	n := 0
	for id, e := range m.sessions {
		if m.TTL > 0 && !now.Before(e.expires) {
			delete(m.sessions, id)
			n++
		}
	}
	for id, until := range m.revoked {
		if !now.Before(until) {
			delete(m.revoked, id)
		}
	}
	return n
}
