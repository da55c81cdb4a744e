package resource

import (
	"context"
	"fmt"
	"strings"

	"video-translate-service/pkg/config"
	"video-translate-service/pkg/logger"
)

// Resources 进程级共享句柄，在启动时按配置创建一次并注入各组件
type Resources struct {
	Minio    *MinioResource
	Supabase *SupabaseResource
	Mysql    *MysqlResource
	Redis    *RedisResource
	Kafka    *KafkaResource
}

// Open 根据存储后端、数据库驱动及开关打开所需资源; 任一失败时关闭已打开的资源
func Open(ctx context.Context, cfg *config.Config) (res *Resources, err error) {
	res = &Resources{}
	defer func() {
		if err != nil {
			res.Close()
			res = nil
		}
	}()

	storageBackend := strings.ToLower(cfg.Storage.Backend)
	dbDriver := strings.ToLower(cfg.Database.Driver)

	if storageBackend == "supabase" || dbDriver == "supabase" {
		if res.Supabase, err = NewSupabaseResource(cfg.Supabase); err != nil {
			return res, err
		}
	}

	switch storageBackend {
	case "supabase":
	case "", "minio":
		if res.Minio, err = NewMinioResource(ctx, cfg.Minio); err != nil {
			return res, err
		}
	default:
		return res, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}

	switch dbDriver {
	case "supabase":
	case "", "mysql":
		if res.Mysql, err = NewMysqlResource(cfg.Database); err != nil {
			return res, err
		}
	default:
		return res, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}

	if cfg.Redis.Enabled {
		if res.Redis, err = NewRedisResource(ctx, cfg.Redis); err != nil {
			return res, err
		}
	}

	if cfg.Kafka.Enabled {
		res.Kafka = NewKafkaResource(cfg.Kafka)
	}

	logger.Info("Resources opened", map[string]interface{}{
		"storage":  storageBackend,
		"database": dbDriver,
		"redis":    res.Redis != nil,
		"kafka":    res.Kafka != nil,
	})
	return res, nil
}

// Close 释放所有已打开的资源
func (r *Resources) Close() {
	if r == nil {
		return
	}
	if r.Kafka != nil {
		r.Kafka.Close()
	}
	if r.Redis != nil {
		r.Redis.Close()
	}
	if r.Mysql != nil {
		r.Mysql.Close()
	}
}
