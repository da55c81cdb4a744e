package executor

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"video-translate-service/ddd/domain/entity"
	"video-translate-service/ddd/domain/port"
	"video-translate-service/ddd/domain/vo"
	"video-translate-service/pkg/config"
	"video-translate-service/pkg/logger"
)

// FFmpegExecutor implements gateway.MediaProcessor with local ffmpeg/ffprobe.
type FFmpegExecutor struct {
	cfg            config.FFmpegConfig
	trimToShortest bool
	captionMargin  int
	runner         port.CmdRunner
}

func NewFFmpegExecutor(media config.MediaConfig, caption config.CaptionConfig, runner port.CmdRunner) *FFmpegExecutor {
	if runner == nil {
		runner = NewCmdRunner()
	}
	return &FFmpegExecutor{
		cfg:            media.FFmpeg,
		trimToShortest: media.Compose.TrimToShortest,
		captionMargin:  caption.BottomMargin,
		runner:         runner,
	}
}

func (e *FFmpegExecutor) ffmpegBinary() string {
	if strings.TrimSpace(e.cfg.BinaryPath) != "" {
		return e.cfg.BinaryPath
	}
	return "ffmpeg"
}

func (e *FFmpegExecutor) ffprobeBinary() string {
	if strings.TrimSpace(e.cfg.ProbePath) != "" {
		return e.cfg.ProbePath
	}
	return "ffprobe"
}

func (e *FFmpegExecutor) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.cfg.Timeout > 0 {
		return context.WithTimeout(ctx, e.cfg.Timeout)
	}
	return context.WithCancel(ctx)
}

// probeResult ffprobe -print_format json 的输出
type probeResult struct {
	Streams []struct {
		CodecType string `json:"codec_type"`
		Width     int    `json:"width"`
		Height    int    `json:"height"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

func (e *FFmpegExecutor) Probe(ctx context.Context, path string) (*vo.MediaInfo, error) {
	out, err := e.runner.Run(ctx, e.ffprobeBinary(),
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)
	if err != nil {
		return nil, fmt.Errorf("ffprobe: %w", err)
	}
	return parseProbe(out)
}

func parseProbe(raw []byte) (*vo.MediaInfo, error) {
	var res probeResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, fmt.Errorf("ffprobe parse: %w", err)
	}
	info := &vo.MediaInfo{}
	if d, err := strconv.ParseFloat(strings.TrimSpace(res.Format.Duration), 64); err == nil {
		info.DurationSeconds = d
	}
	for _, s := range res.Streams {
		switch s.CodecType {
		case "video":
			if info.Width == 0 {
				info.Width, info.Height = s.Width, s.Height
			}
		case "audio":
			info.HasAudio = true
		}
	}
	if info.Width <= 0 || info.Height <= 0 {
		return nil, errors.New("no video stream found")
	}
	if info.DurationSeconds <= 0 {
		return nil, errors.New("unknown media duration")
	}
	return info, nil
}

// ExtractAudio 单声道 16kHz PCM，语音识别的标准输入
func (e *FFmpegExecutor) ExtractAudio(ctx context.Context, videoPath, audioPath string) error {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()
	_, err := e.runner.Run(ctx, e.ffmpegBinary(),
		"-y",
		"-i", videoPath,
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "pcm_s16le",
		audioPath,
	)
	if err != nil {
		return fmt.Errorf("extract audio: %w", err)
	}
	return nil
}

func (e *FFmpegExecutor) ExtractFrame(ctx context.Context, videoPath string, offsetSeconds float64, outPath string) error {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()
	_, err := e.runner.Run(ctx, e.ffmpegBinary(),
		"-y",
		"-ss", formatSeconds(offsetSeconds),
		"-i", videoPath,
		"-frames:v", "1",
		"-q:v", "2",
		outPath,
	)
	if err != nil {
		return fmt.Errorf("extract frame: %w", err)
	}
	return nil
}

func (e *FFmpegExecutor) ReplaceAudio(ctx context.Context, videoPath, audioPath, outPath string, progress port.ProgressCallback) error {
	args := e.buildReplaceAudioArgs(videoPath, audioPath, outPath)
	if err := e.runWithProgress(ctx, videoPath, args, progress); err != nil {
		return fmt.Errorf("replace audio: %w", err)
	}
	return nil
}

func (e *FFmpegExecutor) OverlayCaptions(ctx context.Context, videoPath string, layers []entity.CaptionLayer, outPath string, progress port.ProgressCallback) error {
	args := e.buildOverlayArgs(videoPath, layers, outPath)
	if err := e.runWithProgress(ctx, videoPath, args, progress); err != nil {
		return fmt.Errorf("overlay captions: %w", err)
	}
	return nil
}

func (e *FFmpegExecutor) encoderArgs() []string {
	codec := "libx264"
	if strings.TrimSpace(e.cfg.VideoCodec) != "" {
		codec = e.cfg.VideoCodec
	}
	preset := "medium"
	if strings.TrimSpace(e.cfg.VideoPreset) != "" {
		preset = e.cfg.VideoPreset
	}
	args := []string{"-c:v", codec, "-preset", preset}
	if e.cfg.Threads > 0 {
		args = append(args, "-threads", strconv.Itoa(e.cfg.Threads))
	}
	return args
}

func (e *FFmpegExecutor) buildReplaceAudioArgs(videoPath, audioPath, outPath string) []string {
	args := []string{
		"-y",
		"-progress", "pipe:2",
		"-nostats",
		"-i", videoPath,
		"-i", audioPath,
		"-map", "0:v:0",
		"-map", "1:a:0",
	}
	args = append(args, e.encoderArgs()...)
	args = append(args, "-c:a", "aac", "-b:a", "128k")
	// 配音与画面时长不一致时默认保留较长者
	if e.trimToShortest {
		args = append(args, "-shortest")
	}
	return append(args, "-movflags", "+faststart", outPath)
}

func (e *FFmpegExecutor) buildOverlayArgs(videoPath string, layers []entity.CaptionLayer, outPath string) []string {
	args := []string{
		"-y",
		"-progress", "pipe:2",
		"-nostats",
		"-i", videoPath,
	}
	for _, l := range layers {
		args = append(args, "-i", l.ImagePath)
	}
	if len(layers) == 0 {
		args = append(args, "-map", "0:v:0")
	} else {
		filter, label := buildOverlayFilter(layers, e.captionMargin)
		args = append(args, "-filter_complex", filter, "-map", label)
	}
	args = append(args, "-map", "0:a?")
	args = append(args, e.encoderArgs()...)
	// 原音轨原样复制
	args = append(args, "-c:a", "copy")
	return append(args, "-movflags", "+faststart", outPath)
}

// buildOverlayFilter 按分段顺序串联 overlay，后面的图层画在上面; 返回最终视频流标签
func buildOverlayFilter(layers []entity.CaptionLayer, margin int) (string, string) {
	parts := make([]string, 0, len(layers))
	prev := "0:v"
	for i, l := range layers {
		label := fmt.Sprintf("v%d", i+1)
		parts = append(parts, fmt.Sprintf(
			"[%s][%d:v]overlay=x=(W-w)/2:y=H-h-%d:enable='gte(t,%s)*lt(t,%s)'[%s]",
			prev, i+1, margin, formatSeconds(l.Start), formatSeconds(l.End), label,
		))
		prev = label
	}
	return strings.Join(parts, ";"), "[" + prev + "]"
}

func formatSeconds(v float64) string {
	if v < 0 {
		v = 0
	}
	return strconv.FormatFloat(v, 'f', 3, 64)
}

// runWithProgress 执行 ffmpeg 并从 -progress 输出解析进度
func (e *FFmpegExecutor) runWithProgress(ctx context.Context, inputPath string, args []string, progressCb port.ProgressCallback) error {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	var durationSec float64
	if progressCb != nil {
		if info, err := e.Probe(ctx, inputPath); err == nil {
			durationSec = info.DurationSeconds
		}
	}

	cmd := exec.CommandContext(ctx, e.ffmpegBinary(), args...)
	logger.Debugf("ffmpeg command=%s", strings.Join(cmd.Args, " "))
	if err := e.executeFFmpegCommand(ctx, cmd, durationSec, progressCb); err != nil {
		return err
	}
	if progressCb != nil {
		progressCb(100)
	}
	return nil
}

func (e *FFmpegExecutor) executeFFmpegCommand(ctx context.Context, cmd *exec.Cmd, durationSec float64, progressCb port.ProgressCallback) error {
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("创建FFmpeg stderr管道失败: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("启动FFmpeg命令失败: %w", err)
	}

	progressDone := make(chan struct{})
	buf := make([]string, 0, 200)
	go func() {
		defer close(progressDone)
		scanFFmpegProgress(stderr, durationSec, &buf, progressCb)
	}()

	done := make(chan error, 1)
	go func() {
		<-progressDone
		done <- cmd.Wait()
	}()

	select {
	case <-ctx.Done():
		if cmd.Process != nil {
			_ = cmd.Process.Kill()
		}
		<-done
		return ctx.Err()
	case err := <-done:
		if err != nil {
			tail := buf
			if n := len(tail); n > 50 {
				tail = tail[n-50:]
			}
			if len(tail) > 0 {
				logger.Errorf("ffmpeg failed tail_stderr=%s", strings.Join(tail, "\n"))
			}
			return fmt.Errorf("%w: %s", err, lastLine(tail))
		}
		return nil
	}
}

var reFFmpegTime = regexp.MustCompile(`time=(\d+):(\d+):(\d+\.?\d*)`)

func scanFFmpegProgress(stderr io.Reader, durationSec float64, capture *[]string, progressCb port.ProgressCallback) {
	scanner := bufio.NewScanner(stderr)
	scanner.Buffer(make([]byte, 0, 1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()

		if strings.HasPrefix(line, "out_time_ms=") {
			if ms, err := strconv.ParseFloat(strings.TrimPrefix(line, "out_time_ms="), 64); err == nil {
				emitProgress(ms/1e6, durationSec, progressCb)
			}
			continue
		}
		if strings.Contains(line, "=") && !strings.Contains(line, " ") {
			// -progress 的其它 key=value 行
			continue
		}

		if m := reFFmpegTime.FindStringSubmatch(line); len(m) == 4 {
			hh, _ := strconv.ParseFloat(m[1], 64)
			mm, _ := strconv.ParseFloat(m[2], 64)
			ss, _ := strconv.ParseFloat(m[3], 64)
			emitProgress(hh*3600+mm*60+ss, durationSec, progressCb)
			continue
		}

		if capture != nil {
			b := *capture
			if len(b) >= 200 {
				b = b[1:]
			}
			*capture = append(b, line)
		}
	}
}

func emitProgress(currentSec, totalSec float64, cb port.ProgressCallback) {
	if cb == nil || totalSec <= 0 {
		return
	}
	pct := int((currentSec / totalSec) * 100)
	if pct > 99 {
		pct = 99
	}
	if pct < 0 {
		pct = 0
	}
	cb(pct)
}

func lastLine(lines []string) string {
	for i := len(lines) - 1; i >= 0; i-- {
		if s := strings.TrimSpace(lines[i]); s != "" {
			return s
		}
	}
	return "no stderr output"
}
