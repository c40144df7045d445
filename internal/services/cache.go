package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/internmatch/matcher/internal/models"
)

// MatchCache stores ranked match lists per student. Implementations must
// treat an unavailable backend as a cache miss.
type MatchCache interface {
	Get(ctx context.Context, studentID uuid.UUID) ([]models.Match, bool)
	Set(ctx context.Context, studentID uuid.UUID, matches []models.Match)
	Invalidate(ctx context.Context, studentID uuid.UUID)
}

type redisMatchCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

// NewRedisMatchCache connects to redis at addr. When addr is empty or the
// server does not answer a ping, a no-op cache is returned.
func NewRedisMatchCache(addr, password string, ttl time.Duration, log *zap.Logger) MatchCache {
	if addr == "" {
		return NoopMatchCache{}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn("redis unavailable, match cache disabled", zap.String("addr", addr), zap.Error(err))
		_ = client.Close()
		return NoopMatchCache{}
	}

	return &redisMatchCache{client: client, ttl: ttl, log: log}
}

func matchCacheKey(studentID uuid.UUID) string {
	return fmt.Sprintf("matches:student:%s", studentID)
}

func (c *redisMatchCache) Get(ctx context.Context, studentID uuid.UUID) ([]models.Match, bool) {
	b, err := c.client.Get(ctx, matchCacheKey(studentID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("match cache read failed", zap.Stringer("student_id", studentID), zap.Error(err))
		}
		return nil, false
	}

	var matches []models.Match
	if err := json.Unmarshal(b, &matches); err != nil {
		c.log.Warn("match cache entry corrupt", zap.Stringer("student_id", studentID), zap.Error(err))
		return nil, false
	}
	return matches, true
}

func (c *redisMatchCache) Set(ctx context.Context, studentID uuid.UUID, matches []models.Match) {
	b, err := json.Marshal(matches)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, matchCacheKey(studentID), b, c.ttl).Err(); err != nil {
		c.log.Warn("match cache write failed", zap.Stringer("student_id", studentID), zap.Error(err))
	}
}

func (c *redisMatchCache) Invalidate(ctx context.Context, studentID uuid.UUID) {
	if err := c.client.Del(ctx, matchCacheKey(studentID)).Err(); err != nil {
		c.log.Warn("match cache invalidation failed", zap.Stringer("student_id", studentID), zap.Error(err))
	}
}

// Close releases the redis connection pool.
func (c *redisMatchCache) Close() error {
	return c.client.Close()
}

// NoopMatchCache never stores anything.
type NoopMatchCache struct{}

func (NoopMatchCache) Get(context.Context, uuid.UUID) ([]models.Match, bool) { return nil, false }
func (NoopMatchCache) Set(context.Context, uuid.UUID, []models.Match)        {}
func (NoopMatchCache) Invalidate(context.Context, uuid.UUID)                 {}
