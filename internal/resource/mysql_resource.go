package resource

import (
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"video-translate-service/pkg/config"
	"video-translate-service/pkg/logger"
)

// MysqlResource gorm 连接池
type MysqlResource struct {
	db *gorm.DB
}

// NewMysqlResource 打开连接并设置连接池参数
func NewMysqlResource(cfg config.DatabaseConfig) (*MysqlResource, error) {
	db, err := gorm.Open(mysql.Open(cfg.GetDSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open mysql: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	lifetime := cfg.ConnMaxLifetime
	if lifetime <= 0 {
		lifetime = time.Hour
	}
	sqlDB.SetConnMaxLifetime(lifetime)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping mysql: %w", err)
	}

	logger.Info("MySQL resource initialized", map[string]interface{}{
		"host":     cfg.Host,
		"database": cfg.Database,
	})
	return &MysqlResource{db: db}, nil
}

// MainDB 主库
func (r *MysqlResource) MainDB() *gorm.DB {
	return r.db
}

func (r *MysqlResource) Close() {
	if r.db == nil {
		return
	}
	if sqlDB, err := r.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
