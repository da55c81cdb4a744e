package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"video-translate-service/ddd/domain/entity"
	"video-translate-service/ddd/domain/gateway"
	"video-translate-service/pkg/redisclient"
)

// redisTranscriptCache 转写结果缓存，key 为 <prefix>:transcript:<video_id>
type redisTranscriptCache struct {
	client *redisclient.Client
	ttl    time.Duration
}

func NewRedisTranscriptCache(client *redisclient.Client, ttl time.Duration) gateway.TranscriptCache {
	return &redisTranscriptCache{client: client, ttl: ttl}
}

func (c *redisTranscriptCache) Get(ctx context.Context, videoID string) (*entity.Transcript, error) {
	data, err := c.client.Raw().Get(ctx, c.client.Key("transcript", videoID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var t entity.Transcript
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("decode cached transcript: %w", err)
	}
	return &t, nil
}

func (c *redisTranscriptCache) Put(ctx context.Context, videoID string, t *entity.Transcript) error {
	if t == nil {
		return nil
	}
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("encode transcript: %w", err)
	}
	return c.client.Raw().Set(ctx, c.client.Key("transcript", videoID), data, c.ttl).Err()
}
