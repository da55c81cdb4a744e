package workspace

import (
	"fmt"
	"os"
	"path/filepath"

	"video-translate-service/pkg/logger"
)

// Workspace 单个作业的临时目录，作业结束时整体删除
type Workspace struct {
	dir string
}

// New 在 root 下创建形如 job-<id>-xxxx 的目录
func New(root, jobID string) (*Workspace, error) {
	if root == "" {
		root = os.TempDir()
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create workspace root: %w", err)
	}
	dir, err := os.MkdirTemp(root, "job-"+jobID+"-")
	if err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}
	return &Workspace{dir: dir}, nil
}

func (w *Workspace) Dir() string { return w.dir }

// Path 返回工作目录内的文件路径
func (w *Workspace) Path(name string) string {
	return filepath.Join(w.dir, filepath.Base(name))
}

// MkdirAll 在工作目录内创建子目录
func (w *Workspace) MkdirAll(name string) (string, error) {
	p := filepath.Join(w.dir, name)
	if err := os.MkdirAll(p, 0o755); err != nil {
		return "", err
	}
	return p, nil
}

// Cleanup 递归删除工作目录，可重复调用
func (w *Workspace) Cleanup() {
	if w == nil || w.dir == "" {
		return
	}
	if err := os.RemoveAll(w.dir); err != nil {
		logger.Warn("Failed to remove job workspace", map[string]interface{}{
			"dir":   w.dir,
			"error": err.Error(),
		})
		return
	}
	w.dir = ""
}
