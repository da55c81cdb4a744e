package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"video-translate-service/ddd/domain/entity"
	"video-translate-service/ddd/infrastructure/queue"
	"video-translate-service/pkg/logger"
)

// JobHandler 执行单个作业
type JobHandler func(ctx context.Context, job *entity.TranslationJob) error

// WorkerStats 工作器统计信息
type WorkerStats struct {
	ProcessedJobs    uint64
	SuccessfulJobs   uint64
	FailedJobs       uint64
	AbandonedJobs    uint64
	CurrentlyRunning int
	StartTime        time.Time
	LastJobTime      time.Time
}

// Options 工作器参数
type Options struct {
	ID          string
	Concurrency int
	JobTimeout  time.Duration
	// GracePeriod 停止时等待进行中作业的时间，超时后取消它们
	GracePeriod time.Duration
	// OnAbandon 停止时仍在队列中的作业
	OnAbandon func(job *entity.TranslationJob)
}

// TranslateWorker 从队列取作业并发执行的工作池
type TranslateWorker struct {
	opts    Options
	queue   queue.JobQueue
	handler JobHandler

	running    bool
	stopPull   context.CancelFunc
	cancelJobs context.CancelFunc
	stats      WorkerStats
	mu         sync.RWMutex
	wg         sync.WaitGroup
}

// NewTranslateWorker 创建翻译工作器
func NewTranslateWorker(q queue.JobQueue, handler JobHandler, opts Options) *TranslateWorker {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if opts.ID == "" {
		opts.ID = "translate-worker"
	}
	return &TranslateWorker{opts: opts, queue: q, handler: handler}
}

func (w *TranslateWorker) Name() string { return w.opts.ID }

// Start 启动工作器
func (w *TranslateWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return fmt.Errorf("worker %s is already running", w.opts.ID)
	}

	// 取作业与执行作业使用不同的 ctx，停止时先停止取作业
	pullCtx, stopPull := context.WithCancel(ctx)
	jobCtx, cancelJobs := context.WithCancel(context.WithoutCancel(ctx))
	w.stopPull = stopPull
	w.cancelJobs = cancelJobs
	w.running = true
	w.stats.StartTime = time.Now()

	logger.Infof("Starting translate worker %s with %d goroutines", w.opts.ID, w.opts.Concurrency)
	for i := 0; i < w.opts.Concurrency; i++ {
		w.wg.Add(1)
		go w.workerLoop(pullCtx, jobCtx, i)
	}
	return nil
}

// Stop 关闭队列，等待进行中的作业，超过宽限期后取消; 队列中剩余作业交给 OnAbandon
func (w *TranslateWorker) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	w.mu.Unlock()

	logger.Infof("Stopping translate worker %s", w.opts.ID)
	w.stopPull()
	_ = w.queue.Close()

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()
	if w.opts.GracePeriod > 0 {
		select {
		case <-done:
		case <-time.After(w.opts.GracePeriod):
			logger.Warnf("Translate worker %s grace period elapsed, cancelling running jobs", w.opts.ID)
			w.cancelJobs()
			<-done
		}
	} else {
		w.cancelJobs()
		<-done
	}
	w.cancelJobs()

	w.drain()
	logger.Infof("Translate worker %s stopped", w.opts.ID)
	return nil
}

// IsRunning 检查工作器是否运行中
func (w *TranslateWorker) IsRunning() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}

// GetStats 获取工作器统计信息
func (w *TranslateWorker) GetStats() WorkerStats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.stats
}

func (w *TranslateWorker) workerLoop(pullCtx, jobCtx context.Context, idx int) {
	defer w.wg.Done()
	logger.Debugf("Worker %s-%d started", w.opts.ID, idx)
	defer logger.Debugf("Worker %s-%d stopped", w.opts.ID, idx)

	for pullCtx.Err() == nil {
		job, err := w.queue.Dequeue(pullCtx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, queue.ErrQueueClosed) {
				return
			}
			logger.Warnf("Worker %s-%d failed to dequeue job error=%v", w.opts.ID, idx, err)
			continue
		}
		w.processJob(jobCtx, job, idx)
	}
}

// processJob 处理单个作业，handler 的 panic 按失败计
func (w *TranslateWorker) processJob(ctx context.Context, job *entity.TranslationJob, idx int) {
	w.updateStats(func(s *WorkerStats) {
		s.CurrentlyRunning++
		s.LastJobTime = time.Now()
	})

	var err error
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
		w.updateStats(func(s *WorkerStats) {
			s.CurrentlyRunning--
			s.ProcessedJobs++
			if err != nil {
				s.FailedJobs++
			} else {
				s.SuccessfulJobs++
			}
		})
		if err != nil {
			logger.Warnf("Worker %s-%d job %s failed error=%v", w.opts.ID, idx, job.JobID(), err)
		}
	}()

	if w.opts.JobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.opts.JobTimeout)
		defer cancel()
	}
	logger.Infof("Worker %s-%d processing job %s", w.opts.ID, idx, job.JobID())
	err = w.handler(ctx, job)
}

func (w *TranslateWorker) drain() {
	for {
		job, err := w.queue.Dequeue(context.Background())
		if err != nil {
			return
		}
		w.updateStats(func(s *WorkerStats) { s.AbandonedJobs++ })
		if w.opts.OnAbandon != nil {
			w.opts.OnAbandon(job)
		}
	}
}

func (w *TranslateWorker) updateStats(fn func(*WorkerStats)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fn(&w.stats)
}
