package memstore

// Package memstore provides in-process fallbacks for the session store
// and state cache. They back the documented degraded mode: when Redis
// is unreachable at startup the gateway still serves this instance's
// logins, scoped to process lifetime. The same types double as test
// fixtures.

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	domainauth "github.com/fooddash/console-api/internal/domain/auth"
)

// ErrNotFound is returned when a session is not present.
type notFoundError struct{}

func (notFoundError) Error() string { return "session not found" }

var ErrNotFound error = notFoundError{}

// SessionStore is a mutex-guarded in-memory session store.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]domainauth.Session
}

// NewSessionStore creates an empty in-memory session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]domainauth.Session)}
}

func (s *SessionStore) Save(_ context.Context, sess domainauth.Session) error {
	if sess.ID == "" {
		return errEmptyID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess
	return nil
}

func (s *SessionStore) Get(_ context.Context, id string) (domainauth.Session, error) {
	if id == "" {
		return domainauth.Session{}, ErrNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return domainauth.Session{}, ErrNotFound
	}
	if time.Now().After(sess.ExpiresAt) {
		delete(s.sessions, id)
		return domainauth.Session{}, ErrNotFound
	}
	return sess, nil
}

func (s *SessionStore) Delete(_ context.Context, id string) error {
	if id == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// DeleteByToken scans for the session holding the token. The store is
// process-local and small, so a scan is fine here.
func (s *SessionStore) DeleteByToken(_ context.Context, token string) error {
	if token == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sess := range s.sessions {
		if sess.Token == token {
			delete(s.sessions, id)
		}
	}
	return nil
}

type emptyIDError struct{}

func (emptyIDError) Error() string { return "session ID cannot be empty" }

var errEmptyID error = emptyIDError{}

type cacheEntry struct {
	data      []byte
	expiresAt time.Time
}

// StateCache is a mutex-guarded in-memory state cache. Values round-trip
// through JSON so behavior matches the Redis adapter.
type StateCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
}

// NewStateCache creates an empty in-memory state cache.
func NewStateCache() *StateCache {
	return &StateCache{entries: make(map[string]cacheEntry)}
}

// ErrCacheMiss is returned by Get when the key is absent or expired.
type cacheMissError struct{}

func (cacheMissError) Error() string { return "state cache miss" }

var ErrCacheMiss error = cacheMissError{}

func (c *StateCache) Seed(_ context.Context, key string, value any, ttl time.Duration) error {
	if key == "" {
		return errEmptyKey
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	entry := cacheEntry{data: data}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry
	return nil
}

func (c *StateCache) Get(_ context.Context, key string, dest any) error {
	c.mu.Lock()
	entry, ok := c.entries[key]
	if ok && !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		delete(c.entries, key)
		ok = false
	}
	c.mu.Unlock()
	if !ok {
		return ErrCacheMiss
	}
	return json.Unmarshal(entry.data, dest)
}

func (c *StateCache) Purge(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.entries, k)
	}
	return nil
}

type emptyKeyError struct{}

func (emptyKeyError) Error() string { return "key cannot be empty" }

var errEmptyKey error = emptyKeyError{}
