// Package toolchain invokes external build tools such as objcopy.
package toolchain

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"go.uber.org/zap"
)

// Runner executes an external command.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) error
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct {
	Log *zap.Logger
	Dir string
}

// maxStderrTail bounds how much stderr is carried in a returned error.
const maxStderrTail = 2048

// Run executes name with args and returns an error on non-zero exit.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) error {
	log := r.Log
	if log == nil {
		log = zap.NewNop()
	}

	cmdline := CommandLine(name, args...)
	log.Debug("exec", zap.String("cmd", cmdline))

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = r.Dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if out := strings.TrimSpace(stdout.String()); out != "" {
		log.Debug("exec stdout", zap.String("cmd", name), zap.String("output", out))
	}
	if err != nil {
		tail := strings.TrimSpace(stderr.String())
		if len(tail) > maxStderrTail {
			tail = tail[len(tail)-maxStderrTail:]
		}
		if tail != "" {
			return fmt.Errorf("%s: %w: %s", cmdline, err, tail)
		}
		return fmt.Errorf("%s: %w", cmdline, err)
	}
	return nil
}

// CommandLine renders a command for logs and errors.
func CommandLine(name string, args ...string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, name)
	for _, a := range args {
		if a == "" || strings.ContainsAny(a, " \t\"'") {
			a = fmt.Sprintf("%q", a)
		}
		parts = append(parts, a)
	}
	return strings.Join(parts, " ")
}
