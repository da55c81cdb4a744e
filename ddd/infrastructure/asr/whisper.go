package asr

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"video-translate-service/ddd/domain/entity"
	"video-translate-service/ddd/domain/port"
	"video-translate-service/pkg/config"
	"video-translate-service/pkg/logger"
)

// WhisperRecognizer 调用 whisper CLI 做语音识别; 进程启动时构造一次，所有作业复用
type WhisperRecognizer struct {
	binary   string
	model    string
	language string
	runner   port.CmdRunner
}

// whisperOutput whisper --output_format json 的结构
type whisperOutput struct {
	Text     string `json:"text"`
	Language string `json:"language"`
	Segments []struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	} `json:"segments"`
}

func NewWhisperRecognizer(cfg config.WhisperConfig, runner port.CmdRunner) *WhisperRecognizer {
	binary := strings.TrimSpace(cfg.BinaryPath)
	if binary == "" {
		binary = "whisper"
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = "base"
	}
	return &WhisperRecognizer{
		binary:   binary,
		model:    model,
		language: strings.TrimSpace(cfg.Language),
		runner:   runner,
	}
}

func (w *WhisperRecognizer) Binary() string { return w.binary }

func (w *WhisperRecognizer) Model() string { return w.model }

func (w *WhisperRecognizer) Transcribe(ctx context.Context, audioPath, workDir string) (*entity.Transcript, error) {
	if audioPath == "" {
		return nil, fmt.Errorf("audio path is required")
	}

	args := []string{
		audioPath,
		"--model", w.model,
		"--output_format", "json",
		"--output_dir", workDir,
		"--verbose", "False",
	}
	if w.language != "" {
		args = append(args, "--language", w.language)
	}

	if _, err := w.runner.Run(ctx, w.binary, args...); err != nil {
		return nil, fmt.Errorf("whisper execution failed: %w", err)
	}

	base := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	raw, err := os.ReadFile(filepath.Join(workDir, base+".json"))
	if err != nil {
		return nil, fmt.Errorf("read whisper output: %w", err)
	}
	transcript, err := parseWhisperOutput(raw)
	if err != nil {
		return nil, err
	}

	logger.Info("Audio transcribed", map[string]interface{}{
		"model":    w.model,
		"language": transcript.Language,
		"segments": len(transcript.Segments),
	})
	return transcript, nil
}

func parseWhisperOutput(raw []byte) (*entity.Transcript, error) {
	var out whisperOutput
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("parse whisper output: %w", err)
	}
	t := &entity.Transcript{
		Language: out.Language,
		FullText: strings.TrimSpace(out.Text),
		Segments: make([]entity.TranscriptSegment, 0, len(out.Segments)),
	}
	for _, s := range out.Segments {
		t.Segments = append(t.Segments, entity.TranscriptSegment{
			Start: s.Start,
			End:   s.End,
			Text:  strings.TrimSpace(s.Text),
		})
	}
	return t, nil
}
