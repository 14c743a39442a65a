package executor

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

type shellExecutor struct{}

func New() Executor {
	return shellExecutor{}
}

// Execute runs the command and returns its stdout. The media tools this
// wraps (yt-dlp, ffmpeg, ffprobe) report diagnostics on stderr, so a
// failure error carries the trimmed stderr tail. Cancelling ctx kills
// the process.
func (shellExecutor) Execute(ctx context.Context, name string, args ...string) (string, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("%s interrupted: %w", name, ctx.Err())
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return "", fmt.Errorf("%s: %w", name, err)
	}

	return stdout.String(), nil
}
