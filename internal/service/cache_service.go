package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/campushub/portal-api/pkg/errors"
)

type cacheStore interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

type cacheMetrics interface {
	RecordCacheOperation(hit bool)
}

// CacheService wraps the cache store with hit/miss accounting. Failures never
// propagate to callers; a broken cache degrades to a miss.
type CacheService struct {
	store   cacheStore
	metrics cacheMetrics
	logger  *zap.Logger
}

// NewCacheService constructs CacheService. metrics may be nil.
func NewCacheService(store cacheStore, metrics cacheMetrics, logger *zap.Logger) *CacheService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{store: store, metrics: metrics, logger: logger}
}

// Get reads a cached value into dest and reports whether it was present.
func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) bool {
	if s.store == nil {
		return false
	}

	err := s.store.Get(ctx, key, dest)
	if err == nil {
		s.recordOperation(true)
		return true
	}

	if !errors.Is(err, appErrors.ErrCacheMiss) {
		s.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
	}
	s.recordOperation(false)
	return false
}

// Set stores a value with the given TTL. Errors are logged, not returned.
func (s *CacheService) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if s.store == nil {
		return
	}
	if err := s.store.Set(ctx, key, value, ttl); err != nil {
		s.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// Invalidate drops every cached entry matching the pattern.
func (s *CacheService) Invalidate(ctx context.Context, pattern string) {
	if s.store == nil {
		return
	}
	if err := s.store.DeleteByPattern(ctx, pattern); err != nil {
		s.logger.Warn("cache invalidation failed", zap.String("pattern", pattern), zap.Error(err))
	}
}

func (s *CacheService) recordOperation(hit bool) {
	if s.metrics != nil {
		s.metrics.RecordCacheOperation(hit)
	}
}
