package bootstrap

import (
	"context"
	"fmt"
	"net"
	"os"
	"time"

	"dormctl/internal/config"
	"dormctl/internal/executil"
	"dormctl/internal/pyenv"

	"github.com/rs/zerolog"
)

// PythonEnv is the isolated environment the demo scripts run in.
type PythonEnv interface {
	InterpreterPath() (string, error)
	Exists() bool
	Create(ctx context.Context) error
	InstallPackages(ctx context.Context, pkgs []string) error
	RunScript(ctx context.Context, script string, extra map[string]string) error
	StartScript(ctx context.Context, procs *executil.ProcManager, script string, extra map[string]string) error
}

// Service is the HTTP face of the inference endpoint.
type Service interface {
	Ready(ctx context.Context) bool
	WaitReady(ctx context.Context, timeout time.Duration) error
	HasModel(ctx context.Context, id string) (bool, error)
}

// Runtime is the local inference CLI: installer, background serve, model pull.
type Runtime interface {
	Installed() bool
	Install(ctx context.Context) error
	Serve(ctx context.Context) error
	Pull(ctx context.Context, id string) error
}

// SeedFunc creates the sample database at the given path.
type SeedFunc func(ctx context.Context, path string) error

// Deps are the collaborators the plan's steps act through. Narrow interfaces
// keep the branch logic testable without invoking installers.
type Deps struct {
	Py         PythonEnv
	Service    Service
	Runtime    Runtime
	Seed       SeedFunc
	Procs      *executil.ProcManager
	FileExists func(path string) bool
	PortBusy   func(port int) bool
	Sleep      func(d time.Duration)
	Log        zerolog.Logger
}

func (d *Deps) fileExists(path string) bool {
	if d.FileExists != nil {
		return d.FileExists(path)
	}
	return FileExists(path)
}

func (d *Deps) portBusy(port int) bool {
	if d.PortBusy != nil {
		return d.PortBusy(port)
	}
	return PortBusy(port)
}

func (d *Deps) sleep(dur time.Duration) {
	if d.Sleep != nil {
		d.Sleep(dur)
		return
	}
	time.Sleep(dur)
}

// Options tune plan construction.
type Options struct {
	SkipLaunch bool // provision only, do not hand off to the app
}

// Plan assembles the ordered step list for cfg. A remote endpoint omits every
// local-backend step; the operator's service is trusted as-is.
func Plan(cfg config.Config, d *Deps, opts Options) []Step {
	steps := []Step{
		{
			Name: "python",
			Check: func(ctx context.Context) (bool, error) {
				_, err := d.Py.InterpreterPath()
				return err == nil, nil
			},
			Run: func(ctx context.Context) error {
				_, err := d.Py.InterpreterPath()
				return err
			},
		},
		{
			Name: "venv",
			Check: func(ctx context.Context) (bool, error) {
				return d.Py.Exists(), nil
			},
			Run: func(ctx context.Context) error {
				return d.Py.Create(ctx)
			},
		},
		{
			// pip decides what is already satisfied; the step always runs
			Name: "deps",
			Run: func(ctx context.Context) error {
				return d.Py.InstallPackages(ctx, pyenv.Packages)
			},
		},
	}

	if cfg.Backend() == config.BackendLocal {
		steps = append(steps, localBackendSteps(cfg, d)...)
	} else {
		d.Log.Info().Str("endpoint", cfg.OllamaURL).
			Msg("remote backend configured, skipping local service provisioning")
	}

	steps = append(steps,
		Step{
			Name: "database",
			Check: func(ctx context.Context) (bool, error) {
				return d.fileExists(cfg.DBPath), nil
			},
			Run: func(ctx context.Context) error {
				return d.Seed(ctx, cfg.DBPath)
			},
		},
		Step{
			Name: "mcp-server",
			Check: func(ctx context.Context) (bool, error) {
				return d.portBusy(cfg.MCPPort), nil
			},
			Run: func(ctx context.Context) error {
				return d.Py.StartScript(ctx, d.Procs, cfg.ServerScript, nil)
			},
		},
	)

	if !opts.SkipLaunch {
		steps = append(steps, Step{
			Name: "launch",
			Run: func(ctx context.Context) error {
				return d.Py.RunScript(ctx, cfg.AppScript, map[string]string{
					"OLLAMA_URL": cfg.OllamaURL,
					"MODEL":      cfg.Model,
				})
			},
		})
	}
	return steps
}

func localBackendSteps(cfg config.Config, d *Deps) []Step {
	return []Step{
		{
			Name: "ollama-cli",
			Check: func(ctx context.Context) (bool, error) {
				return d.Runtime.Installed(), nil
			},
			Run: func(ctx context.Context) error {
				return d.Runtime.Install(ctx)
			},
		},
		{
			Name: "ollama-serve",
			Check: func(ctx context.Context) (bool, error) {
				return d.Service.Ready(ctx), nil
			},
			Run: func(ctx context.Context) error {
				if err := d.Runtime.Serve(ctx); err != nil {
					return err
				}
				if err := d.Service.WaitReady(ctx, cfg.ReadyTimeout()); err != nil {
					return err
				}
				// the version API answers before the model API settles
				d.sleep(cfg.SettleDelay())
				return nil
			},
		},
		{
			Name: "model",
			Check: func(ctx context.Context) (bool, error) {
				return d.Service.HasModel(ctx, cfg.Model)
			},
			Run: func(ctx context.Context) error {
				return d.Runtime.Pull(ctx, cfg.Model)
			},
		},
	}
}

// FileExists is the default filesystem probe.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// PortBusy reports whether something is listening on a loopback port.
func PortBusy(port int) bool {
	conn, err := net.DialTimeout("tcp", fmt.Sprintf("127.0.0.1:%d", port), 200*time.Millisecond)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}
