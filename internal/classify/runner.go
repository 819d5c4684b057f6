package classify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"
)

// Runner executes the external inference tool against a staged image path.
// It is an interface so tests can verify the tool is never spawned when
// validation rejects the upload.
type Runner interface {
	Run(ctx context.Context, imagePath string) ([]byte, error)
}

// ExecRunner runs `command script imagePath` as a subprocess with a hard
// wall-clock timeout. On deadline the process is killed, not awaited.
type ExecRunner struct {
	Command string
	Script  string
	Timeout time.Duration
}

// Run invokes the tool and returns its stdout. A non-zero exit or timeout is
// reported with a stderr excerpt for logging.
func (r *ExecRunner) Run(ctx context.Context, imagePath string) ([]byte, error) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = 180 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, r.Command, r.Script, imagePath)

	// Pinned environment so the tool emits deterministic UTF-8 text.
	cmd.Env = []string{
		"PATH=" + os.Getenv("PATH"),
		"HOME=" + os.Getenv("HOME"),
		"PYTHONUNBUFFERED=1",
		"PYTHONIOENCODING=utf-8",
		"LANG=C.UTF-8",
		"LC_ALL=C.UTF-8",
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	// Do not wait on lingering pipe readers after the kill.
	cmd.WaitDelay = 5 * time.Second

	err := cmd.Run()
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("classifier timed out after %s", timeout)
		}
		return nil, fmt.Errorf("classifier failed: %w (stderr: %s)", err, excerpt(stderr.Bytes()))
	}

	return stdout.Bytes(), nil
}

func excerpt(b []byte) string {
	const max = 512
	s := string(bytes.TrimSpace(b))
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
