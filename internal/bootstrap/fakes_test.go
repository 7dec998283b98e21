package bootstrap

import (
	"context"
	"fmt"
	"time"

	"dormctl/internal/executil"
)

// fakePy records which environment actions ran.
type fakePy struct {
	interpMissing bool
	venvExists    bool

	created   bool
	installed [][]string
	ran       []string
	started   []string
	lastEnv   map[string]string
	runErr    error
}

func (f *fakePy) InterpreterPath() (string, error) {
	if f.interpMissing {
		return "", fmt.Errorf("python3 not found in PATH")
	}
	return "/usr/bin/python3", nil
}

func (f *fakePy) Exists() bool { return f.venvExists }

func (f *fakePy) Create(ctx context.Context) error {
	f.created = true
	f.venvExists = true
	return nil
}

func (f *fakePy) InstallPackages(ctx context.Context, pkgs []string) error {
	f.installed = append(f.installed, pkgs)
	return nil
}

func (f *fakePy) RunScript(ctx context.Context, script string, extra map[string]string) error {
	f.ran = append(f.ran, script)
	f.lastEnv = extra
	return f.runErr
}

func (f *fakePy) StartScript(ctx context.Context, procs *executil.ProcManager, script string, extra map[string]string) error {
	f.started = append(f.started, script)
	return nil
}

// fakeService simulates the endpoint's HTTP face.
type fakeService struct {
	ready    bool
	models   []string
	waitErr  error
	hasCalls int
}

func (f *fakeService) Ready(ctx context.Context) bool { return f.ready }

func (f *fakeService) WaitReady(ctx context.Context, timeout time.Duration) error {
	if f.waitErr != nil {
		return f.waitErr
	}
	f.ready = true
	return nil
}

func (f *fakeService) HasModel(ctx context.Context, id string) (bool, error) {
	f.hasCalls++
	for _, m := range f.models {
		if m == id {
			return true, nil
		}
	}
	return false, nil
}

// fakeRuntime simulates the inference CLI.
type fakeRuntime struct {
	installed  bool
	installRan bool
	serveRan   bool
	pulled     []string
	pullErr    error
}

func (f *fakeRuntime) Installed() bool { return f.installed }

func (f *fakeRuntime) Install(ctx context.Context) error {
	f.installRan = true
	f.installed = true
	return nil
}

func (f *fakeRuntime) Serve(ctx context.Context) error {
	f.serveRan = true
	return nil
}

func (f *fakeRuntime) Pull(ctx context.Context, id string) error {
	if f.pullErr != nil {
		return f.pullErr
	}
	f.pulled = append(f.pulled, id)
	return nil
}
