package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"video-translate-service/ddd/domain/entity"
	"video-translate-service/ddd/domain/gateway"
	"video-translate-service/ddd/domain/port"
	"video-translate-service/ddd/domain/vo"
	"video-translate-service/pkg/errno"
	"video-translate-service/pkg/logger"
	"video-translate-service/pkg/workspace"
)

// PipelineService 翻译流水线：解析来源 -> 转写 -> 翻译/合成 -> 合成视频 -> 缩略图 -> 发布 -> 写记录
type PipelineService interface {
	Translate(ctx context.Context, job *entity.TranslationJob) (*entity.TranslatedArtifact, error)
	Retranslate(ctx context.Context, videoID, targetLang string, mode vo.TranslationMode) (*entity.TranslatedArtifact, error)
	// PrepareRetranslation 校验记录并构造作业，供异步提交使用
	PrepareRetranslation(ctx context.Context, videoID, targetLang string, mode vo.TranslationMode) (*entity.TranslationJob, error)
}

// PipelineDeps 流水线依赖; Transcripts/Progress/Reporter 可为空
type PipelineDeps struct {
	Resolver    SourceResolver
	Speech      SpeechToTextService
	Synthesis   SynthesisService
	Media       gateway.MediaProcessor
	Publisher   ArtifactPublisher
	Records     JobRecordWriter
	Transcripts gateway.TranscriptCache
	Progress    port.ProgressSink
	Reporter    gateway.TranslationResultReporter
}

// PipelineOptions 流水线参数
type PipelineOptions struct {
	TempRoot        string
	ThumbnailOffset time.Duration
	VideoPrefix     string
	ThumbnailPrefix string
	OriginalPrefix  string
}

type pipelineServiceImpl struct {
	deps PipelineDeps
	opts PipelineOptions
}

func NewPipelineService(deps PipelineDeps, opts PipelineOptions) PipelineService {
	if opts.ThumbnailOffset <= 0 {
		opts.ThumbnailOffset = time.Second
	}
	return &pipelineServiceImpl{deps: deps, opts: opts}
}

func (p *pipelineServiceImpl) Retranslate(ctx context.Context, videoID, targetLang string, mode vo.TranslationMode) (*entity.TranslatedArtifact, error) {
	job, err := p.PrepareRetranslation(ctx, videoID, targetLang, mode)
	if err != nil {
		return nil, err
	}
	return p.Translate(ctx, job)
}

func (p *pipelineServiceImpl) PrepareRetranslation(ctx context.Context, videoID, targetLang string, mode vo.TranslationMode) (*entity.TranslationJob, error) {
	record, err := p.deps.Records.LoadForRetranslation(ctx, videoID)
	if err != nil {
		return nil, err
	}
	return entity.NewRetranslationJob(record, targetLang, mode), nil
}

func (p *pipelineServiceImpl) Translate(ctx context.Context, job *entity.TranslationJob) (artifact *entity.TranslatedArtifact, err error) {
	start := time.Now()
	logger.Info("Translation job started", map[string]interface{}{
		"job_id":        job.JobID(),
		"video_id":      job.VideoID(),
		"target_lang":   job.TargetLang(),
		"mode":          job.Mode().String(),
		"retranslation": job.IsRetranslation(),
	})

	defer func() {
		if r := recover(); r != nil {
			artifact, err = nil, recoveredError(job, r)
		}
		if err != nil {
			p.fail(job, err)
			return
		}
		if artifact != nil {
			logger.Info("Translation job completed", map[string]interface{}{
				"job_id":      job.JobID(),
				"video_id":    artifact.VideoID,
				"duration_ms": time.Since(start).Milliseconds(),
			})
		}
	}()

	ws, err := workspace.New(p.opts.TempRoot, job.JobID())
	if err != nil {
		return nil, errno.NewBizError(errno.ErrMedia, err)
	}
	defer ws.Cleanup()

	p.stage(ctx, job, vo.JobStatusResolving)
	src, err := p.deps.Resolver.Resolve(ctx, job.Source(), ws.Dir())
	if err != nil {
		return nil, err
	}
	info, err := p.deps.Media.Probe(ctx, src)
	if err != nil {
		return nil, errno.NewBizError(errno.ErrMedia, err)
	}

	p.stage(ctx, job, vo.JobStatusTranscribing)
	transcript, cached, err := p.loadTranscript(ctx, job, src, ws.Dir())
	if err != nil {
		return nil, err
	}

	composed := ws.Path(fmt.Sprintf("translated_%s.mp4", SanitizeFilename(job.TargetLang())))
	if err = p.compose(ctx, job, transcript, src, info, ws, composed); err != nil {
		return nil, err
	}

	thumb := ws.Path("thumbnail.jpg")
	if err = p.extractThumbnail(ctx, src, info, thumb); err != nil {
		return nil, err
	}

	p.stage(ctx, job, vo.JobStatusPublishing)
	var published []*PublishedObject
	defer func() {
		// 发布阶段之后的 panic 在这里转成错误，已上传的对象才能回滚
		if r := recover(); r != nil {
			artifact, err = nil, recoveredError(job, r)
		}
		if err != nil && len(published) > 0 {
			// 作业已失败，用独立的 ctx 回滚
			rbCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			p.deps.Publisher.Rollback(rbCtx, published)
		}
	}()

	stem := MediaStem(job.Source())
	if job.NeedsOriginalPublished() {
		// 原视频地址会写入记录供重新翻译使用，不能用会过期的签名地址
		obj, perr := p.deps.Publisher.PublishPublic(ctx, src, p.opts.OriginalPrefix, stem+filepath.Ext(src), "")
		if perr != nil {
			return nil, perr
		}
		published = append(published, obj)
		job.SetOriginalURL(obj.URL)
	}

	video, err := p.deps.Publisher.Publish(ctx, composed, p.opts.VideoPrefix,
		fmt.Sprintf("%s_translated_%s.mp4", stem, job.TargetLang()), "video/mp4")
	if err != nil {
		return nil, err
	}
	published = append(published, video)

	thumbnail, err := p.deps.Publisher.Publish(ctx, thumb, p.opts.ThumbnailPrefix, stem+"_thumbnail.jpg", "image/jpeg")
	if err != nil {
		return nil, err
	}
	published = append(published, thumbnail)

	artifact = &entity.TranslatedArtifact{
		VideoID:        job.VideoID(),
		Mode:           job.Mode(),
		TranslatedURL:  video.URL,
		ThumbnailURL:   thumbnail.URL,
		TargetLanguage: job.TargetLang(),
		OriginalURL:    job.OriginalURL(),
	}

	p.stage(ctx, job, vo.JobStatusSaving)
	var record *entity.VideoRecord
	if job.IsRetranslation() {
		record, err = p.deps.Records.UpdateForRetranslation(ctx, job.VideoID(), artifact)
	} else {
		record, err = p.deps.Records.Insert(ctx, job, artifact)
	}
	if err != nil {
		return nil, err
	}
	artifact.VideoID = record.ID()
	artifact.OriginalURL = record.OriginalURL()

	if !cached {
		p.cacheTranscript(ctx, artifact.VideoID, transcript)
	}
	p.succeed(ctx, job, artifact)
	return artifact, nil
}

// compose 按模式生成配音视频或字幕视频
func (p *pipelineServiceImpl) compose(ctx context.Context, job *entity.TranslationJob, transcript *entity.Transcript,
	src string, info *vo.MediaInfo, ws *workspace.Workspace, out string) error {
	onProgress := p.composeProgress(ctx, job)

	switch job.Mode() {
	case vo.TranslationModeSubtitle:
		p.stage(ctx, job, vo.JobStatusTranslating)
		layers, err := p.deps.Synthesis.RenderCaptions(ctx, job, transcript, *info, ws)
		if err != nil {
			return err
		}
		p.stage(ctx, job, vo.JobStatusComposing)
		if err := p.deps.Media.OverlayCaptions(ctx, src, layers, out, onProgress); err != nil {
			return errno.NewBizError(errno.ErrMedia, err)
		}
	case vo.TranslationModeVoice:
		p.stage(ctx, job, vo.JobStatusTranslating)
		p.stage(ctx, job, vo.JobStatusSynthesizing)
		narration, err := p.deps.Synthesis.SynthesizeNarration(ctx, job, transcript, ws)
		if err != nil {
			return err
		}
		p.stage(ctx, job, vo.JobStatusComposing)
		if err := p.deps.Media.ReplaceAudio(ctx, src, narration, out, onProgress); err != nil {
			return errno.NewBizError(errno.ErrMedia, err)
		}
	default:
		return errno.NewBizError(errno.ErrInvalidMode, nil)
	}

	if _, err := os.Stat(out); err != nil {
		return errno.NewBizError(errno.ErrMedia, fmt.Errorf("composed output missing: %w", err))
	}
	return nil
}

func (p *pipelineServiceImpl) extractThumbnail(ctx context.Context, src string, info *vo.MediaInfo, out string) error {
	offset := p.opts.ThumbnailOffset.Seconds()
	if offset > info.DurationSeconds {
		return errno.NewBizError(errno.ErrMedia,
			fmt.Errorf("thumbnail offset %.2fs exceeds duration %.2fs", offset, info.DurationSeconds))
	}
	if err := p.deps.Media.ExtractFrame(ctx, src, offset, out); err != nil {
		return errno.NewBizError(errno.ErrMedia, err)
	}
	return nil
}

// loadTranscript 重新翻译优先使用缓存的转写结果
func (p *pipelineServiceImpl) loadTranscript(ctx context.Context, job *entity.TranslationJob, src, workDir string) (*entity.Transcript, bool, error) {
	if job.IsRetranslation() && p.deps.Transcripts != nil {
		t, err := p.deps.Transcripts.Get(ctx, job.VideoID())
		if err != nil {
			logger.Warn("Transcript cache lookup failed", map[string]interface{}{
				"video_id": job.VideoID(),
				"error":    err.Error(),
			})
		} else if t != nil {
			logger.Info("Reusing cached transcript", map[string]interface{}{
				"job_id":   job.JobID(),
				"video_id": job.VideoID(),
				"segments": len(t.Segments),
			})
			return t, true, nil
		}
	}

	t, err := p.deps.Speech.Transcribe(ctx, src, workDir)
	if err != nil {
		return nil, false, err
	}
	return t, false, nil
}

func (p *pipelineServiceImpl) cacheTranscript(ctx context.Context, videoID string, t *entity.Transcript) {
	if p.deps.Transcripts == nil || videoID == "" {
		return
	}
	if err := p.deps.Transcripts.Put(ctx, videoID, t); err != nil {
		logger.Warn("Failed to cache transcript", map[string]interface{}{
			"video_id": videoID,
			"error":    err.Error(),
		})
	}
}

func (p *pipelineServiceImpl) stage(ctx context.Context, job *entity.TranslationJob, status vo.JobStatus) {
	logger.Debug("Pipeline stage", map[string]interface{}{
		"job_id": job.JobID(),
		"status": status.String(),
	})
	if p.deps.Progress != nil {
		p.deps.Progress.SaveProgress(ctx, job.JobID(), status, status.BaseProgress(), "")
	}
}

// composeProgress 把 ffmpeg 的 0-100 映射到合成阶段的进度区间
func (p *pipelineServiceImpl) composeProgress(ctx context.Context, job *entity.TranslationJob) port.ProgressCallback {
	if p.deps.Progress == nil {
		return nil
	}
	lo := vo.JobStatusComposing.BaseProgress()
	hi := vo.JobStatusPublishing.BaseProgress()
	last := -1
	return func(percent int) {
		v := lo + (hi-lo)*percent/100
		if v == last {
			return
		}
		last = v
		p.deps.Progress.SaveProgress(ctx, job.JobID(), vo.JobStatusComposing, v, "")
	}
}

func (p *pipelineServiceImpl) succeed(ctx context.Context, job *entity.TranslationJob, artifact *entity.TranslatedArtifact) {
	if p.deps.Progress != nil {
		p.deps.Progress.SaveResult(ctx, job.JobID(), artifact)
	}
	if p.deps.Reporter != nil {
		if err := p.deps.Reporter.ReportSuccess(ctx, job.JobID(), artifact); err != nil {
			logger.Warn("Failed to report job success", map[string]interface{}{
				"job_id": job.JobID(),
				"error":  err.Error(),
			})
		}
	}
}

// recoveredError 记录 panic 现场并转成 ErrInternalServer
func recoveredError(job *entity.TranslationJob, r interface{}) error {
	logger.Error("Translation pipeline panicked", map[string]interface{}{
		"job_id": job.JobID(),
		"panic":  fmt.Sprint(r),
		"stack":  string(debug.Stack()),
	})
	return errno.NewBizError(errno.ErrInternalServer, fmt.Errorf("pipeline panicked: %v", r))
}

func (p *pipelineServiceImpl) fail(job *entity.TranslationJob, cause error) {
	logger.Error("Translation job failed", map[string]interface{}{
		"job_id":   job.JobID(),
		"video_id": job.VideoID(),
		"code":     errno.Decode(cause).Code,
		"error":    cause.Error(),
	})
	// 调用方的 ctx 可能已取消，终态用独立 ctx 写入
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	msg := errno.Decode(cause).Message
	if p.deps.Progress != nil {
		p.deps.Progress.SaveProgress(ctx, job.JobID(), vo.JobStatusFailed, vo.JobStatusFailed.BaseProgress(), msg)
	}
	if p.deps.Reporter != nil {
		if err := p.deps.Reporter.ReportFailure(ctx, job.JobID(), msg); err != nil {
			logger.Warn("Failed to report job failure", map[string]interface{}{
				"job_id": job.JobID(),
				"error":  err.Error(),
			})
		}
	}
}
