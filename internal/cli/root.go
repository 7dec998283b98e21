package cli

import (
	"context"
	"fmt"
	"os"

	"dormctl/internal/bootstrap"
	"dormctl/internal/config"
	"dormctl/internal/executil"
	"dormctl/internal/ollama"
	"dormctl/internal/pyenv"
	"dormctl/internal/seed"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// app carries the state shared by all subcommands: the resolved configuration
// and the logger, built once in the persistent pre-run.
type app struct {
	cfgFile  string
	logLevel string

	cfg   config.Config
	log   zerolog.Logger
	procs *executil.ProcManager
}

func (a *app) buildRootCmd() *cobra.Command {
	a.log = newLogger("info")
	a.procs = executil.NewProcManager()

	root := &cobra.Command{
		Use:           "dormctl",
		Short:         "Provision and launch the dormitory RAG demo",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "Config file (.toml/.yaml/.json)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level: debug|info|warn|error (defaults DORMCTL_LOG_LEVEL or info)")
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Resolve(a.cfgFile)
		if err != nil {
			return err
		}
		if a.logLevel != "" {
			cfg.LogLevel = a.logLevel
		}
		a.cfg = cfg
		a.log = newLogger(cfg.LogLevel)
		return nil
	}

	root.AddCommand(a.upCmd(), a.doctorCmd(), a.seedCmd(), a.pullCmd(), a.envCmd())
	return root
}

// deps builds the real collaborators for the step plan.
func (a *app) deps() *bootstrap.Deps {
	return &bootstrap.Deps{
		Py:      pyenv.New(a.cfg.VenvDir, a.cfg.Python, a.log),
		Service: ollama.NewClient(a.cfg.OllamaURL, a.log),
		Runtime: ollama.NewCLI(a.log),
		Seed: func(ctx context.Context, path string) error {
			return seed.Create(ctx, path, nil)
		},
		Procs: a.procs,
		Log:   a.log,
	}
}

func (a *app) upCmd() *cobra.Command {
	var skipLaunch bool
	var readyTimeout int
	cmd := &cobra.Command{
		Use:   "up",
		Short: "Provision the environment and launch the RAG query loop",
		Example: "  dormctl up\n" +
			"  OLLAMA_URL=http://10.0.2.2:11434 dormctl up\n" +
			"  dormctl up --skip-launch",
		RunE: func(cmd *cobra.Command, args []string) error {
			if readyTimeout > 0 {
				a.cfg.ReadyTimeoutSec = readyTimeout
			}
			a.log.Info().
				Str("endpoint", a.cfg.OllamaURL).
				Str("model", a.cfg.Model).
				Str("backend", a.cfg.Backend().String()).
				Msg("starting bootstrap")
			defer a.procs.KillAll()
			steps := bootstrap.Plan(a.cfg, a.deps(), bootstrap.Options{SkipLaunch: skipLaunch})
			if err := bootstrap.Run(cmd.Context(), a.log, steps); err != nil {
				return err
			}
			a.log.Info().Msg("bootstrap complete")
			return nil
		},
	}
	cmd.Flags().BoolVar(&skipLaunch, "skip-launch", false, "Provision only; do not start the query loop")
	cmd.Flags().IntVar(&readyTimeout, "ready-timeout", 0, "Seconds to wait for the local service (overrides config)")
	return cmd
}

func (a *app) doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Probe every bootstrap precondition without changing anything",
		RunE: func(cmd *cobra.Command, args []string) error {
			steps := bootstrap.Plan(a.cfg, a.deps(), bootstrap.Options{})
			report := bootstrap.Probe(cmd.Context(), steps)
			missing := 0
			for _, r := range report {
				switch {
				case r.Err != nil:
					fmt.Printf("%-14s probe error: %v\n", r.Step, r.Err)
					missing++
				case r.AlwaysRuns:
					fmt.Printf("%-14s always runs\n", r.Step)
				case r.Satisfied:
					fmt.Printf("%-14s ok\n", r.Step)
				default:
					fmt.Printf("%-14s missing\n", r.Step)
					missing++
				}
			}
			if missing > 0 {
				return fmt.Errorf("%d step(s) need provisioning; run 'dormctl up'", missing)
			}
			return nil
		},
	}
}

func (a *app) seedCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the sample dormitory database",
		RunE: func(cmd *cobra.Command, args []string) error {
			if bootstrap.FileExists(a.cfg.DBPath) {
				if !force {
					return fmt.Errorf("%s already exists; use --force to recreate", a.cfg.DBPath)
				}
				if err := os.Remove(a.cfg.DBPath); err != nil {
					return fmt.Errorf("remove existing database: %w", err)
				}
			}
			a.log.Info().Str("path", a.cfg.DBPath).Msg("creating sample database")
			return seed.Create(cmd.Context(), a.cfg.DBPath, nil)
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Recreate the database if it exists")
	return cmd
}

func (a *app) pullCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pull",
		Short: "Ensure the configured model is in the local inventory",
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.Backend() == config.BackendRemote {
				return fmt.Errorf("endpoint %s is remote; models are managed by its operator", a.cfg.OllamaURL)
			}
			client := ollama.NewClient(a.cfg.OllamaURL, a.log)
			if !client.Ready(cmd.Context()) {
				return fmt.Errorf("no service answering at %s; run 'dormctl up' first", a.cfg.OllamaURL)
			}
			ok, err := client.HasModel(cmd.Context(), a.cfg.Model)
			if err != nil {
				return err
			}
			if ok {
				a.log.Info().Str("model", a.cfg.Model).Msg("model already present")
				return nil
			}
			return ollama.NewCLI(a.log).Pull(cmd.Context(), a.cfg.Model)
		},
	}
}

func (a *app) envCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "env",
		Short: "Print the resolved configuration as shell exports",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("export OLLAMA_URL=%q\n", a.cfg.OllamaURL)
			fmt.Printf("export MODEL=%q\n", a.cfg.Model)
			fmt.Printf("export DORMCTL_DB=%q\n", a.cfg.DBPath)
			fmt.Printf("export DORMCTL_VENV=%q\n", a.cfg.VenvDir)
			return nil
		},
	}
}
