package gateway

import (
	"context"

	"video-translate-service/ddd/domain/entity"
)

// SpeechRecognizer 语音识别
type SpeechRecognizer interface {
	Transcribe(ctx context.Context, audioPath, workDir string) (*entity.Transcript, error)
}

// SpeechSynthesizer 语音合成，输出 mp3 文件
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text, lang, outPath string) error
}

// TextTranslator 机器翻译，源语言自动检测
type TextTranslator interface {
	Translate(ctx context.Context, text, targetLang string) (string, error)
}

// CaptionRenderer 把一段字幕渲染成 PNG，返回图片尺寸; 图片需放得进 videoWidth x videoHeight 的画面
type CaptionRenderer interface {
	Render(text string, videoWidth, videoHeight int, outPath string) (width, height int, err error)
}

// MediaFetcher 下载远程视频
type MediaFetcher interface {
	Fetch(ctx context.Context, rawURL, destPath string) error
}
