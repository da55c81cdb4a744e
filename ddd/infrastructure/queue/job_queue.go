package queue

import (
	"context"
	"errors"
	"sync"

	"video-translate-service/ddd/domain/entity"
)

var (
	ErrQueueClosed = errors.New("queue is closed")
	ErrQueueFull   = errors.New("queue is full")
)

// JobQueue 翻译作业队列接口
type JobQueue interface {
	// Enqueue 入队，队列满时立即返回 ErrQueueFull
	Enqueue(ctx context.Context, job *entity.TranslationJob) error
	// Dequeue 出队（阻塞），队列关闭且取空后返回 ErrQueueClosed
	Dequeue(ctx context.Context) (*entity.TranslationJob, error)
	Size() int
	Close() error
}

// MemoryJobQueue 基于 channel 的内存队列，进程退出时未处理的作业丢失
type MemoryJobQueue struct {
	queue   chan *entity.TranslationJob
	closed  bool
	mu      sync.RWMutex
	metrics *QueueMetrics
}

// QueueMetrics 队列指标
type QueueMetrics struct {
	EnqueueCount uint64
	DequeueCount uint64
	MaxSize      int
	CurrentSize  int
	mu           sync.RWMutex
}

// NewMemoryJobQueue 创建内存作业队列
func NewMemoryJobQueue(capacity int) *MemoryJobQueue {
	if capacity <= 0 {
		capacity = 100 // 默认容量
	}
	return &MemoryJobQueue{
		queue:   make(chan *entity.TranslationJob, capacity),
		metrics: &QueueMetrics{MaxSize: capacity},
	}
}

// Enqueue 入队作业
func (q *MemoryJobQueue) Enqueue(ctx context.Context, job *entity.TranslationJob) error {
	if job == nil {
		return errors.New("job cannot be nil")
	}
	// 持读锁发送，保证不会向已关闭的 channel 写入
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.queue <- job:
		q.updateMetrics(func(m *QueueMetrics) { m.EnqueueCount++ })
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrQueueFull
	}
}

// Dequeue 不持锁等待，Close 关闭 channel 后自然返回
func (q *MemoryJobQueue) Dequeue(ctx context.Context) (*entity.TranslationJob, error) {
	select {
	case job, ok := <-q.queue:
		if !ok {
			return nil, ErrQueueClosed
		}
		q.updateMetrics(func(m *QueueMetrics) { m.DequeueCount++ })
		return job, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Size 获取队列大小
func (q *MemoryJobQueue) Size() int {
	return len(q.queue)
}

// Close 关闭队列，已入队的作业仍可取出
func (q *MemoryJobQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil
	}
	q.closed = true
	close(q.queue)
	return nil
}

// GetMetrics 获取队列指标
func (q *MemoryJobQueue) GetMetrics() QueueMetrics {
	q.metrics.mu.RLock()
	defer q.metrics.mu.RUnlock()
	return QueueMetrics{
		EnqueueCount: q.metrics.EnqueueCount,
		DequeueCount: q.metrics.DequeueCount,
		MaxSize:      q.metrics.MaxSize,
		CurrentSize:  q.Size(),
	}
}

func (q *MemoryJobQueue) updateMetrics(fn func(*QueueMetrics)) {
	q.metrics.mu.Lock()
	defer q.metrics.mu.Unlock()
	fn(q.metrics)
}
