package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/supabase-community/postgrest-go"

	"video-translate-service/ddd/domain/entity"
	"video-translate-service/ddd/domain/repo"
	"video-translate-service/ddd/infrastructure/database/convertor"
	"video-translate-service/ddd/infrastructure/database/po"
)

// ErrNoRowsUpdated 更新未命中任何记录
var ErrNoRowsUpdated = errors.New("no video record updated")

// tableClient *supabase.Client 与 *postgrest.Client 都满足
type tableClient interface {
	From(table string) *postgrest.QueryBuilder
}

type supabaseVideoRepository struct {
	client    tableClient
	table     string
	convertor *convertor.VideoRecordConvertor
}

// NewSupabaseVideoRepository 通过 PostgREST 读写 videos 表
func NewSupabaseVideoRepository(client tableClient, table string) repo.VideoRecordRepository {
	if table == "" {
		table = po.VideoRecord{}.TableName()
	}
	return &supabaseVideoRepository{client: client, table: table, convertor: convertor.NewVideoRecordConvertor()}
}

func (r *supabaseVideoRepository) Create(_ context.Context, record *entity.VideoRecord) error {
	row := r.convertor.ToPO(record)
	if _, _, err := r.client.From(r.table).Insert(row, false, "", "minimal", "").Execute(); err != nil {
		return fmt.Errorf("insert %s: %w", r.table, err)
	}
	return nil
}

func (r *supabaseVideoRepository) GetByID(_ context.Context, id string) (*entity.VideoRecord, error) {
	var rows []po.VideoRecord
	if _, err := r.client.From(r.table).Select("*", "", false).Eq("id", id).ExecuteTo(&rows); err != nil {
		return nil, fmt.Errorf("select %s: %w", r.table, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return r.convertor.ToEntity(&rows[0]), nil
}

func (r *supabaseVideoRepository) UpdateTranslation(_ context.Context, record *entity.VideoRecord) error {
	row := r.convertor.ToPO(record)
	var updated []po.VideoRecord
	if _, err := r.client.From(r.table).Update(row.TranslationColumns(), "representation", "").Eq("id", row.ID).ExecuteTo(&updated); err != nil {
		return fmt.Errorf("update %s: %w", r.table, err)
	}
	if len(updated) == 0 {
		return ErrNoRowsUpdated
	}
	return nil
}
