// Package cli wires the dormctl command tree: configuration resolution,
// logging, signal handling and the bootstrap entry points.
package cli

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"dormctl/internal/bootstrap"
	"dormctl/internal/executil"

	"github.com/rs/zerolog"
)

// Main runs the CLI and returns the process exit code. Failed external
// commands propagate their own exit codes; step aborts are logged with the
// step that failed.
func Main(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{}
	root := a.buildRootCmd()
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		log := a.log
		if step, ok := bootstrap.IsStepError(err); ok {
			log.Error().Str("step", step).Err(err).Msg("bootstrap aborted")
		} else {
			log.Error().Err(err).Msg("dormctl failed")
		}
		return executil.ExitCode(err)
	}
	return 0
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	w := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}
