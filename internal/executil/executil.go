// Package executil runs external programs for the bootstrap steps: blocking
// installers, streamed long pulls, and detached background services.
package executil

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"syscall"

	"github.com/rs/zerolog"
)

// Cmd describes one external invocation.
type Cmd struct {
	Path   string
	Args   []string
	Env    map[string]string // additional env vars
	Dir    string            // working directory
	Stream bool              // if true, stream output line by line through the logger
}

func (c Cmd) apply(cmd *exec.Cmd) *exec.Cmd {
	if c.Dir != "" {
		cmd.Dir = c.Dir
	}
	// inherit environment, then append overrides
	cmd.Env = os.Environ()
	for k, v := range c.Env {
		cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", k, v))
	}
	return cmd
}

// Run executes c and blocks until it exits. Cancelling ctx kills the child.
func Run(ctx context.Context, log zerolog.Logger, c Cmd) error {
	cmd := c.apply(exec.CommandContext(ctx, c.Path, c.Args...))
	log.Debug().Str("path", c.Path).Strs("args", c.Args).Msg("exec")
	if c.Stream {
		stdout, _ := cmd.StdoutPipe()
		stderr, _ := cmd.StderrPipe()
		if err := cmd.Start(); err != nil {
			return err
		}
		go stream(log, stdout)
		go stream(log, stderr)
		return cmd.Wait()
	}
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin
	return cmd.Run()
}

// Start launches c detached in its own process group and returns without
// waiting. The child is intentionally not bound to ctx: a detached service
// must survive the orchestrator's own lifetime unless explicitly killed.
func Start(ctx context.Context, log zerolog.Logger, c Cmd) (*exec.Cmd, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cmd := c.apply(exec.Command(c.Path, c.Args...))
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	log.Debug().Str("path", c.Path).Strs("args", c.Args).Msg("exec detached")
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	// reap in the background so the child never zombies
	go func() { _ = cmd.Wait() }()
	return cmd, nil
}

func stream(log zerolog.Logger, r io.Reader) {
	if r == nil {
		return
	}
	s := bufio.NewScanner(r)
	for s.Scan() {
		log.Info().Msg(s.Text())
	}
}

// ExitCode extracts a process exit code from err. Returns 0 for nil and 1 for
// errors that carry no exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		if code := ee.ExitCode(); code > 0 {
			return code
		}
	}
	return 1
}
