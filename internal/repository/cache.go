package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Dan9191/credit-service/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const cacheKeyPrefix = "credit:client:"

// CachedStore serves Get from Redis and falls through to the wrapped store
// on a miss. Cache failures are logged and never returned to the caller.
type CachedStore struct {
	next ClientStore
	rdb  *redis.Client
	ttl  time.Duration
	log  *logrus.Logger
}

// NewCachedStore wraps next with a Redis read-through cache
func NewCachedStore(next ClientStore, rdb *redis.Client, ttl time.Duration, log *logrus.Logger) *CachedStore {
	return &CachedStore{next: next, rdb: rdb, ttl: ttl, log: log}
}

func cacheKey(cpf string) string {
	return cacheKeyPrefix + cpf
}

// List is always served by the wrapped store
func (s *CachedStore) List(ctx context.Context) ([]models.Client, error) {
	return s.next.List(ctx)
}

// Get retrieves a client, consulting the cache first
func (s *CachedStore) Get(ctx context.Context, cpf string) (*models.Client, error) {
	key := cacheKey(cpf)
	raw, err := s.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var c models.Client
		if err := json.Unmarshal(raw, &c); err == nil {
			return &c, nil
		}
		s.log.Warnf("Discarding unreadable cache entry %s", key)
	case !errors.Is(err, redis.Nil):
		s.log.Warnf("Cache read failed for %s: %v", key, err)
	}

	c, err := s.next.Get(ctx, cpf)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(c); err == nil {
		if err := s.rdb.Set(ctx, key, data, s.ttl).Err(); err != nil {
			s.log.Warnf("Cache write failed for %s: %v", key, err)
		}
	}
	return c, nil
}

// Create inserts through the wrapped store and drops any cached copy
func (s *CachedStore) Create(ctx context.Context, c *models.Client) error {
	if err := s.next.Create(ctx, c); err != nil {
		return err
	}
	s.invalidate(ctx, c.CPF)
	return nil
}

// Upsert writes through the wrapped store and drops any cached copy
func (s *CachedStore) Upsert(ctx context.Context, c *models.Client) (bool, error) {
	inserted, err := s.next.Upsert(ctx, c)
	if err != nil {
		return false, err
	}
	s.invalidate(ctx, c.CPF)
	return inserted, nil
}

func (s *CachedStore) invalidate(ctx context.Context, cpf string) {
	if err := s.rdb.Del(ctx, cacheKey(cpf)).Err(); err != nil {
		s.log.Warnf("Cache invalidation failed for %s: %v", cpf, err)
	}
}

// Ping checks the wrapped store. An unreachable cache is only logged.
func (s *CachedStore) Ping(ctx context.Context) error {
	if err := s.rdb.Ping(ctx).Err(); err != nil {
		s.log.Warnf("Redis ping failed: %v", err)
	}
	return s.next.Ping(ctx)
}

// Close closes the cache client and the wrapped store
func (s *CachedStore) Close() error {
	cacheErr := s.rdb.Close()
	if err := s.next.Close(); err != nil {
		return err
	}
	return cacheErr
}
