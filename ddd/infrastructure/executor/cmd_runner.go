package executor

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"video-translate-service/ddd/domain/port"
)

// execRunner runs binaries with os/exec and folds stderr into errors.
type execRunner struct{}

func NewCmdRunner() port.CmdRunner {
	return &execRunner{}
}

func (r *execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if ctx.Err() != nil {
			return out, fmt.Errorf("%s: %w", filepath.Base(name), ctx.Err())
		}
		return out, fmt.Errorf("%s: %w: %s", filepath.Base(name), err, tailString(stderr.String(), 2000))
	}
	return out, nil
}

func tailString(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return "..." + s[len(s)-max:]
}
