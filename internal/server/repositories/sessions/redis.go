package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/loanportal/internal/common"
	"github.com/dmitrijs2005/loanportal/internal/server/models"
	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
)

const backendRedis = "redis"

// Key schema:
//
//	session:{sid} -> JSON-encoded models.Session, key TTL = time left until expiry
func redisKey(id string) string {
	return "session:" + id
}

// NewRedisClient creates a go-redis client from a URL such as "redis://localhost:6379/0".
func NewRedisClient(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	return redis.NewClient(opts), nil
}

type RedisRepository struct {
	rdb   redis.UniversalClient
	clock clockwork.Clock
}

func NewRedisRepository(rdb redis.UniversalClient, clock clockwork.Clock) *RedisRepository {
	return &RedisRepository{rdb: rdb, clock: clock}
}

func (r *RedisRepository) Get(ctx context.Context, id string) (s *models.Session, err error) {
	defer func() { observe(backendRedis, "get", err) }()

	raw, err := r.rdb.Get(ctx, redisKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("redis error: %w", err)
	}

	s = &models.Session{}
	if err = json.Unmarshal(raw, s); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	if s.Expired(r.clock.Now()) {
		return nil, common.ErrorNotFound
	}
	return s, nil
}

func (r *RedisRepository) Save(ctx context.Context, s *models.Session) (err error) {
	defer func() { observe(backendRedis, "save", err) }()

	ttl := s.ExpiresAt.Sub(r.clock.Now())
	if ttl <= 0 {
		return r.rdb.Del(ctx, redisKey(s.ID)).Err()
	}

	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err = r.rdb.Set(ctx, redisKey(s.ID), raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	return nil
}

func (r *RedisRepository) Delete(ctx context.Context, id string) (err error) {
	defer func() { observe(backendRedis, "delete", err) }()

	if err = r.rdb.Del(ctx, redisKey(id)).Err(); err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	return nil
}
