package cached

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gocomet/rider-roster/internal/domain/rider"
	"github.com/gocomet/rider-roster/pkg/cache"
	"github.com/gocomet/rider-roster/pkg/logger"
)

const keyPrefix = "rider:"

// Store puts a Redis read-through cache for single rider lookups in front
// of another store. Cache failures are logged and never fail a request.
type Store struct {
	rider.Store
	client redis.Cmdable
	ttl    time.Duration
	log    *logger.Logger
}

// New wraps next with a cache whose entries live for ttl
func New(next rider.Store, client redis.Cmdable, ttl time.Duration, log *logger.Logger) *Store {
	return &Store{Store: next, client: client, ttl: ttl, log: log}
}

func cacheKey(id string) string {
	return keyPrefix + id
}

// Name reports the wrapped backend
func (s *Store) Name() string {
	return s.Store.Name() + "+redis"
}

func (s *Store) GetByID(ctx context.Context, id string) (*rider.Rider, error) {
	key := cacheKey(id)

	b, err := cache.Get(ctx, s.client, key)
	switch {
	case err == nil:
		var r rider.Rider
		if jsonErr := json.Unmarshal(b, &r); jsonErr == nil {
			return &r, nil
		}
		s.log.Warn("Discarding undecodable cache entry", logger.String("key", key))
	case !errors.Is(err, cache.ErrCacheMiss):
		s.log.Warn("Rider cache read failed", logger.String("key", key), logger.Err(err))
	}

	r, err := s.Store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.put(ctx, r)
	return r, nil
}

func (s *Store) Update(ctx context.Context, r *rider.Rider) error {
	s.evict(ctx, r.ID)
	if err := s.Store.Update(ctx, r); err != nil {
		return err
	}
	s.evict(ctx, r.ID)
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.Store.Delete(ctx, id); err != nil {
		return err
	}
	s.evict(ctx, id)
	return nil
}

func (s *Store) DeleteAll(ctx context.Context) error {
	if err := s.Store.DeleteAll(ctx); err != nil {
		return err
	}
	iter := s.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		s.log.Warn("Rider cache scan failed", logger.Err(err))
		return nil
	}
	if len(keys) > 0 {
		if err := cache.Delete(ctx, s.client, keys...); err != nil {
			s.log.Warn("Rider cache flush failed", logger.Err(err))
		}
	}
	return nil
}

// Close closes the wrapped store; the Redis client is owned by the caller
func (s *Store) Close(ctx context.Context) error {
	if err := s.Store.Close(ctx); err != nil {
		return fmt.Errorf("failed to close %s store: %w", s.Store.Name(), err)
	}
	return nil
}

func (s *Store) put(ctx context.Context, r *rider.Rider) {
	b, err := json.Marshal(r)
	if err != nil {
		return
	}
	if err := cache.SetWithExpiry(ctx, s.client, cacheKey(r.ID), b, s.ttl); err != nil {
		s.log.Warn("Rider cache write failed", logger.String("rider_id", r.ID), logger.Err(err))
	}
}

func (s *Store) evict(ctx context.Context, id string) {
	if err := cache.Delete(ctx, s.client, cacheKey(id)); err != nil {
		s.log.Warn("Rider cache eviction failed", logger.String("rider_id", id), logger.Err(err))
	}
}
