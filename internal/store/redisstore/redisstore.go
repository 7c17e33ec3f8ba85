// Package redisstore implements the gallery's catalog and click-counter
// persistence on Redis.
//
// Layout mirrors the original KV deployment: the whole catalog is one JSON
// document under the key "photo-metadata", and each photo's click counter
// lives under "clicks-<id>". Counter increments use INCR, which Redis
// executes atomically per key: concurrent clicks on the same photo are
// all observed without any client-side locking or compare-and-swap loop,
// and increments for different photos never contend with each other.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/lumapix/photogallery/internal/errx"
	"github.com/lumapix/photogallery/internal/gallery"
)

const (
	catalogKey       = "photo-metadata"
	counterKeyPrefix = "clicks-"
)

// catalogDoc is the stored shape of the catalog document.
type catalogDoc struct {
	Photos []gallery.Photo `json:"photos"`
}

// Store implements gallery.Store on a Redis client.
type Store struct {
	client *redis.Client
}

// New creates a Store on top of an established Redis client.
func New(client *redis.Client) *Store {
	return &Store{client: client}
}

// GetCatalog returns every photo in the catalog document. A key that has
// never been written yields an empty catalog, not an error.
func (s *Store) GetCatalog(ctx context.Context) ([]gallery.Photo, error) {
	const op = "redisstore.GetCatalog"

	raw, err := s.client.Get(ctx, catalogKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []gallery.Photo{}, nil
		}
		return nil, errx.E(op, errx.Unavailable, err)
	}

	var doc catalogDoc
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, errx.E(op, errx.Internal, fmt.Errorf("corrupt catalog document: %w", err))
	}
	if doc.Photos == nil {
		return []gallery.Photo{}, nil
	}
	return doc.Photos, nil
}

// PutCatalog replaces the catalog document.
func (s *Store) PutCatalog(ctx context.Context, photos []gallery.Photo) error {
	const op = "redisstore.PutCatalog"

	raw, err := json.Marshal(catalogDoc{Photos: photos})
	if err != nil {
		return errx.E(op, errx.Internal, err)
	}

	if err := s.client.Set(ctx, catalogKey, raw, 0).Err(); err != nil {
		return errx.E(op, errx.Unavailable, err)
	}
	return nil
}

// GetCounter returns the click count for one photo id; absent counters
// are zero.
func (s *Store) GetCounter(ctx context.Context, photoID string) (int64, error) {
	const op = "redisstore.GetCounter"

	count, err := s.client.Get(ctx, counterKey(photoID)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, errx.E(op, errx.Unavailable, err)
	}
	return count, nil
}

// GetCounters returns click counts for a batch of ids using one pipelined
// round trip. The GETs are still independent reads; no cross-key snapshot
// is implied.
func (s *Store) GetCounters(ctx context.Context, photoIDs []string) (map[string]int64, error) {
	const op = "redisstore.GetCounters"

	counts := make(map[string]int64, len(photoIDs))
	if len(photoIDs) == 0 {
		return counts, nil
	}

	pipe := s.client.Pipeline()
	cmds := make([]*redis.StringCmd, len(photoIDs))
	for i, id := range photoIDs {
		cmds[i] = pipe.Get(ctx, counterKey(id))
	}

	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, errx.E(op, errx.Unavailable, err)
	}

	for i, cmd := range cmds {
		count, err := cmd.Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return nil, errx.E(op, errx.Unavailable, err)
		}
		counts[photoIDs[i]] = count
	}
	return counts, nil
}

// IncrementCounter atomically increments the counter for photoID and
// returns the new value. INCR treats a missing key as zero, so the first
// click on a photo creates its counter at 1.
func (s *Store) IncrementCounter(ctx context.Context, photoID string) (int64, error) {
	const op = "redisstore.IncrementCounter"

	count, err := s.client.Incr(ctx, counterKey(photoID)).Result()
	if err != nil {
		return 0, errx.E(op, errx.Unavailable, err)
	}
	return count, nil
}

func counterKey(photoID string) string {
	return counterKeyPrefix + photoID
}
