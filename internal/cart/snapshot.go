package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/mangohub/mangostore-backend/pkg/errors"
	"github.com/mangohub/mangostore-backend/pkg/redis"
)

// snapshotEntry is the wire shape stored per cart line. The price travels as
// a display string ("$12.99"); existing stored carts use this shape, so the
// codec keeps it.
type snapshotEntry struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    string `json:"price"`
	Quantity int    `json:"quantity"`
	Image    string `json:"image"`
}

// EncodeSnapshot marshals cart lines into the stored snapshot format.
func EncodeSnapshot(items []Item) ([]byte, error) {
	entries := make([]snapshotEntry, 0, len(items))
	for _, item := range items {
		entries = append(entries, snapshotEntry{
			ID:       item.ProductID.String(),
			Name:     item.Name,
			Price:    "$" + item.UnitPrice.StringFixed(2),
			Quantity: item.Quantity,
			Image:    item.Image,
		})
	}
	return json.Marshal(entries)
}

// DecodeSnapshot unmarshals a stored snapshot, stripping the currency prefix
// before any arithmetic happens.
func DecodeSnapshot(raw []byte) ([]Item, error) {
	var entries []snapshotEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("decode cart snapshot: %w", err)
	}

	items := make([]Item, 0, len(entries))
	for _, entry := range entries {
		productID, err := uuid.Parse(entry.ID)
		if err != nil {
			return nil, fmt.Errorf("decode cart snapshot: invalid product id %q", entry.ID)
		}
		price, err := decimal.NewFromString(strings.TrimPrefix(entry.Price, "$"))
		if err != nil {
			return nil, fmt.Errorf("decode cart snapshot: invalid price %q", entry.Price)
		}
		items = append(items, Item{
			ProductID: productID,
			Name:      entry.Name,
			Image:     entry.Image,
			UnitPrice: price,
			Quantity:  entry.Quantity,
		})
	}
	return items, nil
}

type snapshotRedis interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	CartKey(sessionID string) string
}

// RedisSnapshotStore persists cart snapshots in redis, keyed per session.
type RedisSnapshotStore struct {
	client snapshotRedis
	ttl    time.Duration
}

// NewRedisSnapshotStore builds a snapshot store over the shared redis client.
func NewRedisSnapshotStore(client *redis.Client, ttl time.Duration) (*RedisSnapshotStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	return &RedisSnapshotStore{client: client, ttl: ttl}, nil
}

// Save writes the full snapshot, replacing whatever was stored before.
func (r *RedisSnapshotStore) Save(ctx context.Context, sessionID string, items []Item) error {
	raw, err := EncodeSnapshot(items)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode cart snapshot")
	}
	if err := r.client.Set(ctx, r.client.CartKey(sessionID), raw, r.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist cart snapshot")
	}
	return nil
}

// Load reads the stored snapshot. A missing key is an empty cart.
func (r *RedisSnapshotStore) Load(ctx context.Context, sessionID string) ([]Item, error) {
	raw, err := r.client.Get(ctx, r.client.CartKey(sessionID))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart snapshot")
	}
	items, err := DecodeSnapshot([]byte(raw))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode cart snapshot")
	}
	return items, nil
}

// Drop deletes the stored snapshot.
func (r *RedisSnapshotStore) Drop(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, r.client.CartKey(sessionID)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "drop cart snapshot")
	}
	return nil
}
