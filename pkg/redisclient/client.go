package redisclient

import (
	"context"
	"crypto/tls"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"video-translate-service/pkg/config"
)

// Client wraps the go-redis client and namespaces every key with a prefix.
type Client struct {
	native *redis.Client
	prefix string
}

// New builds a redis client using service configuration and validates the connection.
func New(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	opts := &redis.Options{
		Addr:     cfg.GetRedisAddr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	if cfg.MinIdleConns > 0 {
		opts.MinIdleConns = cfg.MinIdleConns
	}

	opts.DialTimeout = pickDuration(cfg.DialTimeout, 5*time.Second)
	opts.ReadTimeout = pickDuration(cfg.ReadTimeout, 3*time.Second)
	opts.WriteTimeout = pickDuration(cfg.WriteTimeout, 3*time.Second)

	if cfg.EnableTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	cli := redis.NewClient(opts)
	if err := cli.Ping(ctx).Err(); err != nil {
		_ = cli.Close()
		return nil, err
	}

	return Wrap(cli, cfg.KeyPrefix), nil
}

// Wrap adopts an existing go-redis client.
func Wrap(native *redis.Client, prefix string) *Client {
	return &Client{native: native, prefix: strings.TrimSuffix(prefix, ":")}
}

// Raw exposes the underlying go-redis client for advanced use cases.
func (c *Client) Raw() *redis.Client {
	return c.native
}

// Key joins parts under the configured prefix, e.g. vts:job:<id>.
func (c *Client) Key(parts ...string) string {
	all := parts
	if c.prefix != "" {
		all = append([]string{c.prefix}, parts...)
	}
	return strings.Join(all, ":")
}

// Close stops the redis client and releases pooled connections.
func (c *Client) Close() error {
	return c.native.Close()
}

func pickDuration(v time.Duration, fallback time.Duration) time.Duration {
	if v <= 0 {
		return fallback
	}
	return v
}
