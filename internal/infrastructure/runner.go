package infrastructure

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/vid2pdf-go/pkg/logger"
)

// CommandResult holds the captured output of a finished command
type CommandResult struct {
	Stdout []byte
	Stderr []byte
}

// CommandRunner executes structured commands synchronously
type CommandRunner interface {
	Run(ctx context.Context, cmd Command) (*CommandResult, error)
}

// ExecRunner runs commands with os/exec. Stderr of every command is also
// appended to a per-day tools log so failures can be inspected afterwards.
type ExecRunner struct {
	logsDir string
	logger  *zap.Logger
	mu      sync.Mutex // serialises writes to the shared log file
}

// NewExecRunner creates a runner. An empty logsDir disables the tools log.
func NewExecRunner(logsDir string, logger *zap.Logger) *ExecRunner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExecRunner{logsDir: logsDir, logger: logger}
}

// Run executes cmd and waits for it to exit. Cancelling ctx kills the process.
func (r *ExecRunner) Run(ctx context.Context, cmd Command) (*CommandResult, error) {
	cmdLine := cmd.String()
	r.logger.Debug("Running command", zap.String("cmd", cmdLine))

	var stdout, stderr bytes.Buffer
	proc := exec.CommandContext(ctx, cmd.Path, cmd.Args...)
	proc.Stdout = &stdout
	proc.Stderr = &stderr

	start := time.Now()
	err := proc.Run()
	elapsed := time.Since(start)

	result := &CommandResult{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	r.appendLog(cmdLine, result.Stderr, err)

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = fmt.Errorf("%s: %w", filepath.Base(cmd.Path), ctxErr)
		} else {
			err = fmt.Errorf("%s: %w%s", filepath.Base(cmd.Path), err, stderrTail(result.Stderr))
		}
		r.logger.Debug("Command failed",
			zap.String("cmd", cmdLine),
			zap.Duration("elapsed", elapsed),
			zap.Error(err))
		return result, err
	}

	r.logger.Debug("Command finished",
		zap.String("cmd", cmdLine),
		zap.Duration("elapsed", elapsed))
	return result, nil
}

// appendLog writes a header, the command's stderr and a status footer
func (r *ExecRunner) appendLog(cmdLine string, stderr []byte, runErr error) {
	if r.logsDir == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := r.openLogFile()
	if err != nil {
		r.logger.Warn("Failed to open tools log", zap.Error(err))
		return
	}
	defer file.Close()

	var b strings.Builder
	fmt.Fprintf(&b, "\n=== [%s] ===\n$ %s\n", time.Now().Format("2006-01-02 15:04:05"), cmdLine)
	b.Write(stderr)
	if len(stderr) > 0 && stderr[len(stderr)-1] != '\n' {
		b.WriteByte('\n')
	}
	if runErr != nil {
		fmt.Fprintf(&b, "FAILED: %v\n", runErr)
	} else {
		b.WriteString("SUCCESS\n")
	}
	b.WriteString("=== END ===\n")

	if _, err := io.WriteString(file, b.String()); err != nil {
		r.logger.Warn("Failed to write tools log", zap.Error(err))
	}
}

// openLogFile opens today's tools log for appending
func (r *ExecRunner) openLogFile() (*os.File, error) {
	if err := os.MkdirAll(r.logsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create logs directory: %w", err)
	}
	path := logger.ToolsLogPath(r.logsDir, time.Now())
	return os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
}

// stderrTail returns the last non-empty stderr lines formatted for an error
func stderrTail(stderr []byte) string {
	const maxLines = 3
	lines := strings.Split(strings.TrimSpace(string(stderr)), "\n")
	var kept []string
	for i := len(lines) - 1; i >= 0 && len(kept) < maxLines; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			kept = append([]string{line}, kept...)
		}
	}
	if len(kept) == 0 {
		return ""
	}
	return ": " + strings.Join(kept, " | ")
}

// ExitCode extracts the process exit code from a Run error, or -1
func ExitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
