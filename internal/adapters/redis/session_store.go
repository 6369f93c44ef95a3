package redis

// Package redis provides Redis-backed adapters for the console gateway.

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	domainauth "github.com/fooddash/console-api/internal/domain/auth"
)

// SessionStore is a Redis-based session store for production use.
// TTL follows the session ExpiresAt so Redis evicts stale records on
// its own; Save replaces the whole record in a single SET, which keeps
// concurrent bootstrap commits last-writer-wins instead of interleaved.
type SessionStore struct {
	client redis.UniversalClient
	prefix string
}

// NewSessionStore creates a Redis session store with the default prefix.
func NewSessionStore(client redis.UniversalClient) *SessionStore {
	return &SessionStore{client: client, prefix: "session:"}
}

// NewSessionStoreWithPrefix creates a Redis session store with a custom key prefix.
func NewSessionStoreWithPrefix(client redis.UniversalClient, prefix string) *SessionStore {
	return &SessionStore{client: client, prefix: prefix}
}

func (s *SessionStore) Save(ctx context.Context, sess domainauth.Session) error {
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return errors.New("session is expired")
	}

	if err := s.client.Set(ctx, s.prefix+sess.ID, data, ttl).Err(); err != nil {
		return err
	}

	// Secondary index so a rejected bearer token can be traced back to
	// its session without scanning. Expires with the session.
	if sess.Token != "" {
		if err := s.client.Set(ctx, s.tokenKey(sess.Token), sess.ID, ttl).Err(); err != nil {
			return fmt.Errorf("index session token: %w", err)
		}
	}
	return nil
}

func (s *SessionStore) Get(ctx context.Context, id string) (domainauth.Session, error) {
	if id == "" {
		return domainauth.Session{}, ErrNotFound
	}

	data, err := s.client.Get(ctx, s.prefix+id).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domainauth.Session{}, ErrNotFound
		}
		return domainauth.Session{}, fmt.Errorf("redis get: %w", err)
	}

	var sess domainauth.Session
	if unmarshalErr := json.Unmarshal([]byte(data), &sess); unmarshalErr != nil {
		return domainauth.Session{}, fmt.Errorf("unmarshal session: %w", unmarshalErr)
	}

	// Redis TTL should have evicted this already; double-check anyway.
	if time.Now().After(sess.ExpiresAt) {
		if deleteErr := s.Delete(ctx, id); deleteErr != nil {
			return domainauth.Session{}, fmt.Errorf("cleanup expired session: %w", deleteErr)
		}
		return domainauth.Session{}, ErrNotFound
	}

	return sess, nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if id == "" {
		return nil // Nothing to delete
	}

	// Drop the token index alongside the record when we can still read it.
	if data, err := s.client.Get(ctx, s.prefix+id).Result(); err == nil {
		var sess domainauth.Session
		if unmarshalErr := json.Unmarshal([]byte(data), &sess); unmarshalErr == nil && sess.Token != "" {
			if delErr := s.client.Del(ctx, s.tokenKey(sess.Token)).Err(); delErr != nil {
				return fmt.Errorf("delete token index: %w", delErr)
			}
		}
	}

	return s.client.Del(ctx, s.prefix+id).Err()
}

// DeleteByToken removes the session holding the given bearer token.
// Used by the interceptor chain's 401 hook, which only sees the
// rejected credential.
func (s *SessionStore) DeleteByToken(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	id, err := s.client.Get(ctx, s.tokenKey(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("resolve token index: %w", err)
	}

	if delErr := s.client.Del(ctx, s.prefix+id, s.tokenKey(token)).Err(); delErr != nil {
		return fmt.Errorf("delete session by token: %w", delErr)
	}
	return nil
}

// tokenKey hashes the credential so the raw token never appears in a
// Redis key.
func (s *SessionStore) tokenKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return s.prefix + "token:" + hex.EncodeToString(sum[:16])
}

// ErrNotFound is returned when a session is not found.
type notFoundError struct{}

func (notFoundError) Error() string { return "session not found" }

var ErrNotFound error = notFoundError{}
