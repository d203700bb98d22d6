// Package session keeps server-side sessions in Redis. A session record holds
// the principal chosen at login and, for the administrative principal, the
// ephemeral cart. Records expire with the session TTL and are deleted on logout.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"storefront/internal/domain"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix      = "session:"
	fieldPrincipal = "principal"
	fieldCart      = "cart"
	fieldCreatedAt = "created_at"

	// maxCartRetries bounds optimistic transaction retries when concurrent
	// requests of the same session modify the cart.
	maxCartRetries = 8
)

var (
	// ErrNotFound is returned for unknown, expired or destroyed sessions.
	ErrNotFound = errors.New("session not found")
	// ErrCartContention is returned when the cart kept changing under every retry.
	ErrCartContention = errors.New("session cart update contention")
)

// Session is an authenticated session identity.
type Session struct {
	ID        string
	Principal domain.Principal
}

// Store persists session records in Redis.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewStore returns a Store whose records live for ttl.
func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

func key(sid string) string { return keyPrefix + sid }

// Create stores a new session for p and returns its id.
func (s *Store) Create(ctx context.Context, p domain.Principal) (string, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	sid := uuid.NewString()
	k := key(sid)
	pipe := s.rdb.TxPipeline()
	pipe.HSet(ctx, k, map[string]any{
		fieldPrincipal: string(b),
		fieldCart:      "[]",
		fieldCreatedAt: time.Now().UTC().Format(time.RFC3339Nano),
	})
	pipe.Expire(ctx, k, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", err
	}
	return sid, nil
}

// Load returns the principal of session sid.
func (s *Store) Load(ctx context.Context, sid string) (domain.Principal, error) {
	var p domain.Principal
	raw, err := s.rdb.HGet(ctx, key(sid), fieldPrincipal).Bytes()
	if errors.Is(err, redis.Nil) {
		return p, ErrNotFound
	}
	if err != nil {
		return p, err
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return p, fmt.Errorf("decode session principal: %w", err)
	}
	return p, nil
}

// Destroy deletes session sid. Deleting a missing session is not an error.
func (s *Store) Destroy(ctx context.Context, sid string) error {
	return s.rdb.Del(ctx, key(sid)).Err()
}

// Exists reports whether session sid is still alive.
func (s *Store) Exists(ctx context.Context, sid string) (bool, error) {
	n, err := s.rdb.Exists(ctx, key(sid)).Result()
	return n == 1, err
}

// Cart returns the ephemeral cart lines of session sid.
func (s *Store) Cart(ctx context.Context, sid string) ([]domain.CartLine, error) {
	raw, err := s.rdb.HGet(ctx, key(sid), fieldCart).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeCart(raw)
}

// UpdateCart applies fn to the ephemeral cart of session sid inside a
// WATCH/MULTI/EXEC transaction, retrying when another request changed the
// session in between. fn may be called more than once.
func (s *Store) UpdateCart(ctx context.Context, sid string, fn func([]domain.CartLine) ([]domain.CartLine, error)) error {
	k := key(sid)
	txf := func(tx *redis.Tx) error {
		raw, err := tx.HGet(ctx, k, fieldCart).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		lines, err := decodeCart(raw)
		if err != nil {
			return err
		}
		next, err := fn(lines)
		if err != nil {
			return err
		}
		if next == nil {
			next = []domain.CartLine{}
		}
		b, err := json.Marshal(next)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, k, fieldCart, string(b))
			return nil
		})
		return err
	}

	for i := 0; i < maxCartRetries; i++ {
		err := s.rdb.Watch(ctx, txf, k)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return ErrCartContention
}

func decodeCart(raw []byte) ([]domain.CartLine, error) {
	var lines []domain.CartLine
	if err := json.Unmarshal(raw, &lines); err != nil {
		return nil, fmt.Errorf("decode session cart: %w", err)
	}
	return lines, nil
}
