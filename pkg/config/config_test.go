package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 9000\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "fr", cfg.Translate.DefaultTargetLang)
	assert.Equal(t, "base", cfg.Whisper.Model)
	assert.Equal(t, "ffmpeg", cfg.Media.FFmpeg.BinaryPath)
	assert.Equal(t, "libx264", cfg.Media.FFmpeg.VideoCodec)
	assert.Equal(t, time.Second, cfg.Media.Thumbnail.Offset)
	assert.Equal(t, 0.9, cfg.Caption.MaxWidthRatio)
	assert.Equal(t, "translated_videos", cfg.Supabase.Bucket)
	assert.Equal(t, "videos", cfg.Supabase.Table)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, "minio", cfg.Storage.Backend)
	assert.Equal(t, 20, cfg.Worker.QueueCapacity)
}

func TestLoad_EnvOverride(t *testing.T) {
	path := writeConfig(t, "translate:\n  default_target_lang: de\n")
	t.Setenv("GO_VIDEO_TRANSLATE_DEFAULT_TARGET_LANG", "es")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "es", cfg.Translate.DefaultTargetLang)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestNormalize_CaptionFloorNeverAboveStart(t *testing.T) {
	cfg := &Config{Caption: CaptionConfig{FontSize: 20, MinFontSize: 30}}
	cfg.normalize()
	assert.Equal(t, 20.0, cfg.Caption.MinFontSize)
	assert.Equal(t, 0.3, cfg.Caption.MaxHeightRatio)
	assert.Equal(t, 3, cfg.Caption.MaxLines)
}

func TestGetDSN(t *testing.T) {
	db := DatabaseConfig{Username: "u", Password: "p", Host: "h", Port: 3306, Database: "d"}
	assert.Equal(t, "u:p@tcp(h:3306)/d?charset=utf8mb4&parseTime=True&loc=Local", db.GetDSN())
}
