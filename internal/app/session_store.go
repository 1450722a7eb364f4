/**
 * @description
 * This file defines the SessionStore contract for USSD session persistence
 * and its Redis implementation. Sessions are short-lived JSON values keyed by
 * the gateway-assigned session id; the TTL is the only cleanup mechanism for
 * abandoned sessions, so every save refreshes it.
 *
 * @dependencies
 * - context, encoding/json, time: Standard Go libraries.
 * - github.com/redis/go-redis/v9: The Redis client library.
 */

package app

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionStore persists USSD sessions between gateway callbacks. Get returns
// (nil, nil) when no session exists for the id, which callers treat as the
// start of a new session.
type SessionStore interface {
	Get(ctx context.Context, sessionID string) (*Session, error)
	Save(ctx context.Context, sessionID string, sess *Session) error
	Delete(ctx context.Context, sessionID string) error
}

// RedisSessionStore implements SessionStore on a remote Redis instance.
type RedisSessionStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRedisSessionStore creates a session store with the given key prefix and
// session time-to-live.
func NewRedisSessionStore(client redis.UniversalClient, prefix string, ttl time.Duration) *RedisSessionStore {
	trimmedPrefix := strings.TrimSpace(prefix)
	if trimmedPrefix == "" {
		trimmedPrefix = "ussd-session"
	}
	trimmedPrefix = strings.TrimSuffix(trimmedPrefix, ":")
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}

	return &RedisSessionStore{
		client: client,
		prefix: trimmedPrefix,
		ttl:    ttl,
	}
}

func (s *RedisSessionStore) key(sessionID string) string {
	return fmt.Sprintf("%s:%s", s.prefix, sessionID)
}

// Get loads the session for the given id, or (nil, nil) if none exists.
func (s *RedisSessionStore) Get(ctx context.Context, sessionID string) (*Session, error) {
	payload, err := s.client.Get(ctx, s.key(sessionID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var sess Session
	if err := json.Unmarshal(payload, &sess); err != nil {
		return nil, fmt.Errorf("failed to decode session %s: %w", sessionID, err)
	}
	return &sess, nil
}

// Save writes the session and refreshes its TTL.
func (s *RedisSessionStore) Save(ctx context.Context, sessionID string, sess *Session) error {
	payload, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to encode session %s: %w", sessionID, err)
	}
	return s.client.Set(ctx, s.key(sessionID), payload, s.ttl).Err()
}

// Delete removes the session once the flow reaches a terminal outcome.
func (s *RedisSessionStore) Delete(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, s.key(sessionID)).Err()
}
