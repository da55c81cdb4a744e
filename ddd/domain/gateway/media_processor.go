package gateway

import (
	"context"

	"video-translate-service/ddd/domain/entity"
	"video-translate-service/ddd/domain/port"
	"video-translate-service/ddd/domain/vo"
)

// MediaProcessor 音视频处理（ffmpeg/ffprobe）
type MediaProcessor interface {
	// Probe 获取时长与分辨率
	Probe(ctx context.Context, path string) (*vo.MediaInfo, error)
	// ExtractAudio 抽取单声道16k音轨
	ExtractAudio(ctx context.Context, videoPath, audioPath string) error
	// ReplaceAudio 用配音替换整条音轨
	ReplaceAudio(ctx context.Context, videoPath, audioPath, outPath string, progress port.ProgressCallback) error
	// OverlayCaptions 按时间窗口叠加字幕图片，原音轨不变
	OverlayCaptions(ctx context.Context, videoPath string, layers []entity.CaptionLayer, outPath string, progress port.ProgressCallback) error
	// ExtractFrame 截取指定时间点的一帧
	ExtractFrame(ctx context.Context, videoPath string, offsetSeconds float64, outPath string) error
}
