package port

import "context"

// CmdRunner executes external binaries (ffmpeg, ffprobe, whisper).
type CmdRunner interface {
	// Run waits for the command and returns stdout; stderr is folded into the error.
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}
