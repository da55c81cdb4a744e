package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"video-translate-service/ddd/domain/entity"
	"video-translate-service/pkg/redisclient"
)

// RedisStore 作业状态保存在 <prefix>:job:<id>，整体 JSON 覆盖写入
type RedisStore struct {
	client *redisclient.Client
	ttl    time.Duration
}

func NewRedisStore(client *redisclient.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) key(jobID string) string {
	return s.client.Key("job", jobID)
}

func (s *RedisStore) Save(ctx context.Context, p *entity.JobProgress) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal job progress: %w", err)
	}
	return s.client.Raw().Set(ctx, s.key(p.JobID), data, s.ttl).Err()
}

func (s *RedisStore) Get(ctx context.Context, jobID string) (*entity.JobProgress, error) {
	data, err := s.client.Raw().Get(ctx, s.key(jobID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var p entity.JobProgress
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("unmarshal job progress: %w", err)
	}
	return &p, nil
}
