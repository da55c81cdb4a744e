package resource

import (
	"errors"
	"fmt"

	"github.com/supabase-community/supabase-go"

	"video-translate-service/pkg/config"
	"video-translate-service/pkg/logger"
)

// SupabaseResource Supabase 项目客户端，同时提供存储与 PostgREST
type SupabaseResource struct {
	client *supabase.Client
	cfg    config.SupabaseConfig
}

func NewSupabaseResource(cfg config.SupabaseConfig) (*SupabaseResource, error) {
	if cfg.URL == "" || cfg.Key == "" {
		return nil, errors.New("supabase url and key are required")
	}
	client, err := supabase.NewClient(cfg.URL, cfg.Key, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create supabase client: %w", err)
	}
	logger.Info("Supabase resource initialized", map[string]interface{}{
		"url":    cfg.URL,
		"bucket": cfg.Bucket,
		"table":  cfg.Table,
	})
	return &SupabaseResource{client: client, cfg: cfg}, nil
}

func (r *SupabaseResource) Client() *supabase.Client { return r.client }

func (r *SupabaseResource) Bucket() string { return r.cfg.Bucket }

func (r *SupabaseResource) Table() string { return r.cfg.Table }

func (r *SupabaseResource) ProjectURL() string { return r.cfg.URL }
