package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"sync"
	"time"

	"video-translate-service/ddd/application/cqe"
	"video-translate-service/ddd/application/dto"
	"video-translate-service/ddd/domain/entity"
	"video-translate-service/ddd/domain/gateway"
	"video-translate-service/ddd/domain/port"
	"video-translate-service/ddd/domain/service"
	"video-translate-service/ddd/domain/vo"
	"video-translate-service/ddd/infrastructure/queue"
	"video-translate-service/pkg/errno"
	"video-translate-service/pkg/logger"
)

var errAbandoned = errors.New("job abandoned during shutdown")

type TranslateApp interface {
	// TranslateVideo 提交作业并等待结果，ctx 到期时返回 ErrJobTimeout，作业继续在后台执行
	TranslateVideo(ctx context.Context, req *cqe.TranslateVideoReq) (*dto.TranslationResultDTO, error)
	// SubmitTranslateVideo 异步提交，立即返回作业ID
	SubmitTranslateVideo(ctx context.Context, req *cqe.TranslateVideoReq) (*dto.JobAcceptedDTO, error)
	// Retranslate 基于已有记录重新翻译并等待结果
	Retranslate(ctx context.Context, req *cqe.RetranslateVideoReq) (*dto.TranslationResultDTO, error)
	// SubmitRetranslate 异步重新翻译
	SubmitRetranslate(ctx context.Context, req *cqe.RetranslateVideoReq) (*dto.JobAcceptedDTO, error)
	// GetJobStatus 查询作业状态
	GetJobStatus(ctx context.Context, jobID string) (*dto.JobStatusDTO, error)

	// HandleJob 工作池执行作业的入口
	HandleJob(ctx context.Context, job *entity.TranslationJob) error
	// AbandonJob 停止时仍在队列中的作业
	AbandonJob(job *entity.TranslationJob)
}

// TranslateAppDeps 应用层依赖; Status 为空时不提供状态查询
type TranslateAppDeps struct {
	Pipeline    service.PipelineService
	Queue       queue.JobQueue
	Status      gateway.JobStatusStore
	Progress    port.ProgressSink
	DefaultLang string
}

type outcome struct {
	artifact *entity.TranslatedArtifact
	err      error
}

// pendingJob 已提交未结束的作业; cleanup 用于删除上传的临时文件
type pendingJob struct {
	done    chan outcome
	cleanup func()
}

type translateAppImpl struct {
	deps    TranslateAppDeps
	mu      sync.Mutex
	pending map[string]*pendingJob
}

func NewTranslateApp(deps TranslateAppDeps) TranslateApp {
	if deps.DefaultLang == "" {
		deps.DefaultLang = "fr"
	}
	return &translateAppImpl{deps: deps, pending: make(map[string]*pendingJob)}
}

func (a *translateAppImpl) TranslateVideo(ctx context.Context, req *cqe.TranslateVideoReq) (*dto.TranslationResultDTO, error) {
	cleanup := uploadCleanup(req)
	job, err := req.ToJob(a.deps.DefaultLang)
	if err != nil {
		runCleanup(cleanup)
		return nil, err
	}
	p, err := a.submit(ctx, job, cleanup)
	if err != nil {
		return nil, err
	}
	return a.wait(ctx, job, p)
}

func (a *translateAppImpl) SubmitTranslateVideo(ctx context.Context, req *cqe.TranslateVideoReq) (*dto.JobAcceptedDTO, error) {
	cleanup := uploadCleanup(req)
	job, err := req.ToJob(a.deps.DefaultLang)
	if err != nil {
		runCleanup(cleanup)
		return nil, err
	}
	if _, err := a.submit(ctx, job, cleanup); err != nil {
		return nil, err
	}
	return &dto.JobAcceptedDTO{JobID: job.JobID(), Status: vo.JobStatusQueued.String()}, nil
}

func (a *translateAppImpl) Retranslate(ctx context.Context, req *cqe.RetranslateVideoReq) (*dto.TranslationResultDTO, error) {
	job, err := a.prepareRetranslation(ctx, req)
	if err != nil {
		return nil, err
	}
	p, err := a.submit(ctx, job, nil)
	if err != nil {
		return nil, err
	}
	return a.wait(ctx, job, p)
}

func (a *translateAppImpl) SubmitRetranslate(ctx context.Context, req *cqe.RetranslateVideoReq) (*dto.JobAcceptedDTO, error) {
	job, err := a.prepareRetranslation(ctx, req)
	if err != nil {
		return nil, err
	}
	if _, err := a.submit(ctx, job, nil); err != nil {
		return nil, err
	}
	return &dto.JobAcceptedDTO{JobID: job.JobID(), Status: vo.JobStatusQueued.String()}, nil
}

func (a *translateAppImpl) GetJobStatus(ctx context.Context, jobID string) (*dto.JobStatusDTO, error) {
	if jobID == "" {
		return nil, errno.ErrInvalidParam
	}
	if a.deps.Status == nil {
		return nil, errno.ErrStatusTrackingOff
	}
	p, err := a.deps.Status.Get(ctx, jobID)
	if err != nil {
		return nil, errno.NewBizError(errno.ErrInternalServer, err)
	}
	if p == nil {
		return nil, errno.ErrJobNotFound
	}
	return dto.NewJobStatusDTO(p), nil
}

// HandleJob 无论流水线是否 panic，都要唤醒等待方并清理上传目录
func (a *translateAppImpl) HandleJob(ctx context.Context, job *entity.TranslationJob) (err error) {
	var artifact *entity.TranslatedArtifact
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Translation job panicked", map[string]interface{}{
				"job_id": job.JobID(),
				"panic":  fmt.Sprint(r),
				"stack":  string(debug.Stack()),
			})
			artifact, err = nil, errno.NewBizError(errno.ErrInternalServer, fmt.Errorf("job panicked: %v", r))
			a.markFailed(job.JobID(), errno.ErrInternalServer.Message)
		}
		a.finish(job.JobID(), outcome{artifact: artifact, err: err})
	}()

	artifact, err = a.deps.Pipeline.Translate(ctx, job)
	return err
}

func (a *translateAppImpl) AbandonJob(job *entity.TranslationJob) {
	logger.Warn("Queued job abandoned", map[string]interface{}{"job_id": job.JobID()})
	a.markFailed(job.JobID(), errAbandoned.Error())
	a.finish(job.JobID(), outcome{err: errno.NewBizError(errno.ErrInternalServer, errAbandoned)})
}

func (a *translateAppImpl) markFailed(jobID, msg string) {
	if a.deps.Progress == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	a.deps.Progress.SaveProgress(ctx, jobID, vo.JobStatusFailed, vo.JobStatusFailed.BaseProgress(), msg)
}

func (a *translateAppImpl) prepareRetranslation(ctx context.Context, req *cqe.RetranslateVideoReq) (*entity.TranslationJob, error) {
	lang, mode, err := req.Normalize(a.deps.DefaultLang)
	if err != nil {
		return nil, err
	}
	return a.deps.Pipeline.PrepareRetranslation(ctx, req.VideoID, lang, mode)
}

// submit 登记并入队; 入队失败时撤销登记
func (a *translateAppImpl) submit(ctx context.Context, job *entity.TranslationJob, cleanup func()) (*pendingJob, error) {
	p := &pendingJob{done: make(chan outcome, 1), cleanup: cleanup}
	a.mu.Lock()
	a.pending[job.JobID()] = p
	a.mu.Unlock()

	if a.deps.Progress != nil {
		a.deps.Progress.SaveProgress(ctx, job.JobID(), vo.JobStatusQueued, vo.JobStatusQueued.BaseProgress(), "")
	}
	if err := a.deps.Queue.Enqueue(ctx, job); err != nil {
		a.mu.Lock()
		delete(a.pending, job.JobID())
		a.mu.Unlock()
		runCleanup(cleanup)
		logger.Warn("Failed to enqueue translation job", map[string]interface{}{
			"job_id": job.JobID(),
			"error":  err.Error(),
		})
		if a.deps.Progress != nil {
			a.deps.Progress.SaveProgress(ctx, job.JobID(), vo.JobStatusFailed, vo.JobStatusFailed.BaseProgress(), errno.ErrQueueFull.Message)
		}
		if errors.Is(err, queue.ErrQueueFull) || errors.Is(err, queue.ErrQueueClosed) {
			return nil, errno.NewBizError(errno.ErrQueueFull, err)
		}
		return nil, errno.NewBizError(errno.ErrInternalServer, err)
	}

	logger.Info("Translation job queued", map[string]interface{}{
		"job_id":      job.JobID(),
		"video_id":    job.VideoID(),
		"target_lang": job.TargetLang(),
		"mode":        job.Mode().String(),
	})
	return p, nil
}

func (a *translateAppImpl) wait(ctx context.Context, job *entity.TranslationJob, p *pendingJob) (*dto.TranslationResultDTO, error) {
	select {
	case out := <-p.done:
		if out.err != nil {
			return nil, out.err
		}
		return dto.NewTranslationResultDTO(out.artifact), nil
	case <-ctx.Done():
		logger.Warn("Stopped waiting for translation job", map[string]interface{}{
			"job_id": job.JobID(),
			"error":  ctx.Err().Error(),
		})
		return nil, errno.NewBizError(errno.ErrJobTimeout, ctx.Err())
	}
}

func (a *translateAppImpl) finish(jobID string, out outcome) {
	a.mu.Lock()
	p, ok := a.pending[jobID]
	delete(a.pending, jobID)
	a.mu.Unlock()
	if !ok {
		return
	}
	runCleanup(p.cleanup)
	p.done <- out
}

// uploadCleanup 上传文件所在目录为该请求独占的临时目录，作业结束后整体删除
func uploadCleanup(req *cqe.TranslateVideoReq) func() {
	if !req.TempUpload || req.LocalPath == "" {
		return nil
	}
	dir := filepath.Dir(req.LocalPath)
	return func() {
		if err := os.RemoveAll(dir); err != nil {
			logger.Warn("Failed to remove upload directory", map[string]interface{}{
				"dir":   dir,
				"error": err.Error(),
			})
		}
	}
}

func runCleanup(fn func()) {
	if fn != nil {
		fn()
	}
}
