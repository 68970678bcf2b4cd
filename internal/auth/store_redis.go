// Copyright (c) 2026 Krishi Mitra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/krishimitra/internal/platform/constants"
)

// consumeScript deletes the key only when it still holds the presented code.
var consumeScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisCodeRepository keeps pending codes as expiring Redis keys.
//
// Expiry is enforced by the key TTL, so Consume ignores its clock argument.
type RedisCodeRepository struct {
	client *redis.Client
	now    func() time.Time
}

// NewRedisCodeRepository creates a [CodeRepository] backed by Redis.
func NewRedisCodeRepository(client *redis.Client) *RedisCodeRepository {
	return &RedisCodeRepository{client: client, now: time.Now}
}

func codeKey(mobile string) string {
	return constants.RedisPrefixLoginCode + mobile
}

// Save stores the code with a TTL ending at expiresAt, replacing any earlier code.
func (repository *RedisCodeRepository) Save(ctx context.Context, mobile, code string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(repository.now())
	if ttl <= 0 {
		return fmt.Errorf("redis_code_save_failed: expiry %s is in the past", expiresAt.Format(time.RFC3339))
	}

	if err := repository.client.Set(ctx, codeKey(mobile), code, ttl).Err(); err != nil {
		return fmt.Errorf("redis_code_save_failed: %w", err)
	}
	return nil
}

// Consume atomically compares and deletes the stored code.
func (repository *RedisCodeRepository) Consume(ctx context.Context, mobile, code string, _ time.Time) (bool, error) {
	deleted, err := consumeScript.Run(ctx, repository.client, []string{codeKey(mobile)}, code).Int()
	if err != nil {
		return false, fmt.Errorf("redis_code_consume_failed: %w", err)
	}
	return deleted == 1, nil
}
