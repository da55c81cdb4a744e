package task

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"video-translate-service/pkg/logger"
)

// BackgroundTask represents a long-running background process (consumer, worker pool, registry lease).
type BackgroundTask interface {
	Name() string
	Start(ctx context.Context) error
	Stop() error
}

// Func adapts Start/Stop functions to the BackgroundTask interface.
type Func struct {
	TaskName  string
	StartFunc func(ctx context.Context) error
	StopFunc  func() error
}

func (f *Func) Name() string { return f.TaskName }

func (f *Func) Start(ctx context.Context) error {
	if f.StartFunc == nil {
		return nil
	}
	return f.StartFunc(ctx)
}

func (f *Func) Stop() error {
	if f.StopFunc == nil {
		return nil
	}
	return f.StopFunc()
}

// Manager starts tasks in registration order and stops them in reverse.
type Manager struct {
	tasks   []BackgroundTask
	started []BackgroundTask
	mu      sync.Mutex
	cancel  context.CancelFunc
}

func NewManager() *Manager {
	return &Manager{tasks: make([]BackgroundTask, 0)}
}

// Register adds a background task; must be called before StartAll.
func (m *Manager) Register(task BackgroundTask) {
	if task == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks = append(m.tasks, task)
}

// StartAll starts all registered tasks once. If one fails, the ones
// already started are stopped again before returning.
func (m *Manager) StartAll(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil {
		return nil
	}
	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	for _, t := range m.tasks {
		if err := t.Start(runCtx); err != nil {
			m.stopLocked()
			return fmt.Errorf("start %s: %w", t.Name(), err)
		}
		m.started = append(m.started, t)
		logger.Infof("Background task started name=%s", t.Name())
	}
	return nil
}

// StopAll stops all running tasks and joins their errors.
func (m *Manager) StopAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopLocked()
}

func (m *Manager) stopLocked() error {
	if m.cancel != nil {
		m.cancel()
	}
	var errs []error
	for i := len(m.started) - 1; i >= 0; i-- {
		t := m.started[i]
		if err := t.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("stop %s: %w", t.Name(), err))
		}
		logger.Infof("Background task stopped name=%s", t.Name())
	}
	m.started = nil
	m.cancel = nil
	return errors.Join(errs...)
}
