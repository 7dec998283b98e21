package ollama

import (
	"context"
	"os/exec"

	"dormctl/internal/executil"

	"github.com/rs/zerolog"
)

const installScriptURL = "https://ollama.com/install.sh"

// CLI drives the ollama binary: install, background serve, blocking pull.
type CLI struct {
	log zerolog.Logger
}

func NewCLI(log zerolog.Logger) *CLI {
	return &CLI{log: log}
}

// Installed reports whether the ollama binary is on PATH.
func (c *CLI) Installed() bool {
	_, err := exec.LookPath("ollama")
	return err == nil
}

// Install runs the upstream installer script.
func (c *CLI) Install(ctx context.Context) error {
	c.log.Info().Msg("installing ollama CLI")
	return executil.Run(ctx, c.log, executil.Cmd{
		Path:   "sh",
		Args:   []string{"-c", "curl -fsSL " + installScriptURL + " | sh"},
		Stream: true,
	})
}

// Serve starts `ollama serve` detached. The service is deliberately not
// tracked for teardown; once up, it outlives the bootstrap run.
func (c *CLI) Serve(ctx context.Context) error {
	c.log.Info().Msg("starting ollama serve in the background")
	_, err := executil.Start(ctx, c.log, executil.Cmd{Path: "ollama", Args: []string{"serve"}})
	return err
}

// Pull downloads a model and blocks until it completes.
func (c *CLI) Pull(ctx context.Context, id string) error {
	c.log.Info().Str("model", id).Msg("pulling model")
	return executil.Run(ctx, c.log, executil.Cmd{Path: "ollama", Args: []string{"pull", id}, Stream: true})
}
