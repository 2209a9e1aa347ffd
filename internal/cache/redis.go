// Package cache keeps rendered collection views in Redis.
//
// Keys embed two version counters, one global and one per collection.
// Bumping a counter orphans every key built from the old value; orphaned
// keys expire on their own TTL.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mrlokans/bookshelf/internal/collections"
	"github.com/mrlokans/bookshelf/internal/config"
)

const (
	keyPrefix        = "bookshelf:"
	globalVersionKey = keyPrefix + "collections:version"
	defaultTTL       = 10 * time.Minute
)

type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis connects to Redis and verifies the connection.
func NewRedis(ctx context.Context, cfg config.Cache) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
	}
	return newRedis(client, cfg.TTL), nil
}

func newRedis(client *redis.Client, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Redis{client: client, ttl: ttl}
}

func collectionVersionKey(id uint) string {
	return fmt.Sprintf("%scollection:%d:version", keyPrefix, id)
}

func (r *Redis) version(ctx context.Context, key string) int64 {
	v, err := r.client.Get(ctx, key).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		log.Printf("[CACHE] Failed to read %s: %v", key, err)
	}
	return v
}

func (r *Redis) viewKey(ctx context.Context, id uint) string {
	return fmt.Sprintf("%scollection:%d:view:%d:%d",
		keyPrefix, id, r.version(ctx, globalVersionKey), r.version(ctx, collectionVersionKey(id)))
}

// GetView returns the cached view of a collection. On a miss the returned
// key is the one the caller must pass to SetView: it is built from the
// versions current before the caller loads from the database, so a view
// loaded across a concurrent invalidation lands on an orphaned key.
func (r *Redis) GetView(ctx context.Context, collectionID uint) (*collections.View, string, bool) {
	key := r.viewKey(ctx, collectionID)
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("[CACHE] Failed to read collection %d: %v", collectionID, err)
			return nil, "", false
		}
		return nil, key, false
	}

	var view collections.View
	if err := json.Unmarshal(data, &view); err != nil {
		log.Printf("[CACHE] Dropping undecodable view for collection %d: %v", collectionID, err)
		return nil, key, false
	}
	return &view, key, true
}

// SetView stores a view under a key obtained from GetView. An empty key is
// ignored.
func (r *Redis) SetView(ctx context.Context, key string, view *collections.View) {
	if key == "" {
		return
	}
	data, err := json.Marshal(view)
	if err != nil {
		log.Printf("[CACHE] Failed to encode collection %d: %v", view.ID, err)
		return
	}
	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		log.Printf("[CACHE] Failed to store collection %d: %v", view.ID, err)
	}
}

// InvalidateCollection makes the cached view of one collection unreachable.
func (r *Redis) InvalidateCollection(ctx context.Context, collectionID uint) {
	if err := r.client.Incr(ctx, collectionVersionKey(collectionID)).Err(); err != nil {
		log.Printf("[CACHE] Failed to invalidate collection %d: %v", collectionID, err)
	}
}

// InvalidateAll makes every cached view unreachable.
func (r *Redis) InvalidateAll(ctx context.Context) {
	if err := r.client.Incr(ctx, globalVersionKey).Err(); err != nil {
		log.Printf("[CACHE] Failed to invalidate collections: %v", err)
	}
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Close() error {
	return r.client.Close()
}
