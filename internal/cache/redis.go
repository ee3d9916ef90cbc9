package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"retail-chatbot/internal/common/logger"
	"retail-chatbot/internal/model"
)

const redisKeyPrefix = "chatbot:response:"

// RedisCache is the shared response cache used when more than one instance
// serves traffic. Responses round-trip through JSON, so Data comes back as
// generic maps; the payload is byte-equal for clients either way.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	log    logger.Logger
}

func NewRedisCache(client *redis.Client, ttl time.Duration, log logger.Logger) *RedisCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &RedisCache{client: client, ttl: ttl, log: log}
}

func (c *RedisCache) Get(ctx context.Context, key string) (*model.ChatbotResponse, bool) {
	raw, err := c.client.Get(ctx, redisKeyPrefix+key).Result()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.log.Warn("Response cache read failed", map[string]interface{}{"error": err.Error()})
		return nil, false
	}

	var resp model.ChatbotResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		c.log.Warn("Dropping undecodable cache entry", map[string]interface{}{"key": key})
		c.client.Del(ctx, redisKeyPrefix+key)
		return nil, false
	}
	return &resp, true
}

func (c *RedisCache) Put(ctx context.Context, key string, resp *model.ChatbotResponse) {
	raw, err := json.Marshal(resp)
	if err != nil {
		c.log.Warn("Failed to encode response for cache", map[string]interface{}{"error": err.Error()})
		return
	}
	if err := c.client.Set(ctx, redisKeyPrefix+key, raw, c.ttl).Err(); err != nil {
		c.log.Warn("Response cache write failed", map[string]interface{}{"error": err.Error()})
	}
}
