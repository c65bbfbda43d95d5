package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	pkgerrors "github.com/mangohub/mangostore-backend/pkg/errors"
	"github.com/mangohub/mangostore-backend/pkg/redis"
)

// SessionStore persists checkout sessions between requests.
type SessionStore interface {
	Save(ctx context.Context, session *Session) error
	Load(ctx context.Context, userID uuid.UUID) (*Session, error)
	Drop(ctx context.Context, userID uuid.UUID) error
}

type checkoutRedis interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	CheckoutKey(sessionID string) string
}

// RedisSessionStore keeps checkout sessions in redis, keyed per user, with a
// TTL so abandoned checkouts expire on their own.
type RedisSessionStore struct {
	client checkoutRedis
	ttl    time.Duration
}

// NewRedisSessionStore builds a session store over the shared redis client.
func NewRedisSessionStore(client *redis.Client, ttl time.Duration) (*RedisSessionStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	return &RedisSessionStore{client: client, ttl: ttl}, nil
}

// Save writes the full session, replacing whatever was stored before.
func (r *RedisSessionStore) Save(ctx context.Context, session *Session) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode checkout session")
	}
	if err := r.client.Set(ctx, r.client.CheckoutKey(session.UserID.String()), raw, r.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist checkout session")
	}
	return nil
}

// Load reads the stored session. A missing key returns nil without error.
func (r *RedisSessionStore) Load(ctx context.Context, userID uuid.UUID) (*Session, error) {
	raw, err := r.client.Get(ctx, r.client.CheckoutKey(userID.String()))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load checkout session")
	}

	var session Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode checkout session")
	}
	return &session, nil
}

// Drop deletes the stored session.
func (r *RedisSessionStore) Drop(ctx context.Context, userID uuid.UUID) error {
	if err := r.client.Del(ctx, r.client.CheckoutKey(userID.String())); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "drop checkout session")
	}
	return nil
}
