// Package pyenv manages the isolated Python environment the demo scripts run
// in. The venv is never "activated": its bin/ executables are invoked by path.
package pyenv

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"dormctl/internal/executil"

	"github.com/rs/zerolog"
)

// Packages is the fixed dependency list the demo scripts import. Installation
// is unconditional; pip itself is the idempotence layer.
var Packages = []string{
	"mcp",
	"chromadb",
	"sentence-transformers",
	"requests",
	"pandas",
	"scikit-learn",
	"numpy",
}

// Env is a virtual environment rooted at Dir, created with Python.
type Env struct {
	Dir    string
	Python string
	log    zerolog.Logger
}

func New(dir, python string, log zerolog.Logger) *Env {
	return &Env{Dir: dir, Python: python, log: log}
}

// InterpreterPath locates the base interpreter on PATH.
func (e *Env) InterpreterPath() (string, error) {
	p, err := exec.LookPath(e.Python)
	if err != nil {
		return "", fmt.Errorf("%s not found in PATH; install Python 3 first: %w", e.Python, err)
	}
	return p, nil
}

// Exists reports whether the venv directory has been created.
func (e *Env) Exists() bool {
	fi, err := os.Stat(e.Dir)
	return err == nil && fi.IsDir()
}

// Create runs `python -m venv <dir>`.
func (e *Env) Create(ctx context.Context) error {
	e.log.Info().Str("dir", e.Dir).Msg("creating virtual environment")
	return executil.Run(ctx, e.log, executil.Cmd{Path: e.Python, Args: []string{"-m", "venv", e.Dir}})
}

func (e *Env) pip() string    { return filepath.Join(e.Dir, "bin", "pip") }
func (e *Env) python() string { return filepath.Join(e.Dir, "bin", "python") }

// InstallPackages pip-installs the given packages into the venv.
func (e *Env) InstallPackages(ctx context.Context, pkgs []string) error {
	e.log.Info().Strs("packages", pkgs).Msg("installing Python dependencies")
	args := append([]string{"install", "--upgrade"}, pkgs...)
	return executil.Run(ctx, e.log, executil.Cmd{Path: e.pip(), Args: args, Stream: true})
}

// RunScript executes a script with the venv interpreter and blocks until it
// exits. extra is appended to the child environment.
func (e *Env) RunScript(ctx context.Context, script string, extra map[string]string) error {
	e.log.Info().Str("script", script).Msg("running script")
	return executil.Run(ctx, e.log, executil.Cmd{Path: e.python(), Args: []string{script}, Env: extra})
}

// StartScript launches a script with the venv interpreter as a detached,
// tracked process.
func (e *Env) StartScript(ctx context.Context, procs *executil.ProcManager, script string, extra map[string]string) error {
	e.log.Info().Str("script", script).Msg("starting script in the background")
	cmd, err := executil.Start(ctx, e.log, executil.Cmd{Path: e.python(), Args: []string{script}, Env: extra})
	if err != nil {
		return err
	}
	procs.Add(cmd)
	return nil
}
