package resource

import (
	"context"
	"fmt"

	"video-translate-service/pkg/config"
	"video-translate-service/pkg/redisclient"
)

// RedisResource manages the lifecycle of the shared Redis client.
type RedisResource struct {
	client *redisclient.Client
}

// NewRedisResource establishes the Redis connection.
func NewRedisResource(ctx context.Context, cfg config.RedisConfig) (*RedisResource, error) {
	client, err := redisclient.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect redis: %w", err)
	}
	return &RedisResource{client: client}, nil
}

// Client exposes the namespaced client.
func (r *RedisResource) Client() *redisclient.Client {
	return r.client
}

// Close tidy ups the underlying Redis client.
func (r *RedisResource) Close() {
	if r.client != nil {
		_ = r.client.Close()
	}
}
