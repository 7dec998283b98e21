package executil

import (
	"context"
	"errors"
	"os/exec"
	"testing"

	"github.com/rs/zerolog"
)

func TestRunSuccess(t *testing.T) {
	err := Run(context.Background(), zerolog.Nop(), Cmd{Path: "true"})
	if err != nil {
		t.Fatalf("run true: %v", err)
	}
}

func TestRunFailure(t *testing.T) {
	err := Run(context.Background(), zerolog.Nop(), Cmd{Path: "false"})
	if err == nil {
		t.Fatalf("expected error from false")
	}
	if ExitCode(err) != 1 {
		t.Fatalf("exit code: %d", ExitCode(err))
	}
}

func TestRunStreamed(t *testing.T) {
	err := Run(context.Background(), zerolog.Nop(), Cmd{Path: "sh", Args: []string{"-c", "echo out; echo err 1>&2"}, Stream: true})
	if err != nil {
		t.Fatalf("streamed run: %v", err)
	}
}

func TestRunEnvAndDir(t *testing.T) {
	d := t.TempDir()
	err := Run(context.Background(), zerolog.Nop(), Cmd{
		Path: "sh",
		Args: []string{"-c", `test "$DORMCTL_TEST_VAR" = hello && test "$(pwd)" = "` + d + `"`},
		Env:  map[string]string{"DORMCTL_TEST_VAR": "hello"},
		Dir:  d,
	})
	if err != nil {
		t.Fatalf("env/dir not applied: %v", err)
	}
}

func TestStartAndKillAll(t *testing.T) {
	pm := NewProcManager()
	cmd, err := Start(context.Background(), zerolog.Nop(), Cmd{Path: "sleep", Args: []string{"30"}})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	pm.Add(cmd)
	if pm.Len() != 1 {
		t.Fatalf("tracked: %d", pm.Len())
	}
	pm.KillAll()
	if pm.Len() != 0 {
		t.Fatalf("not cleared: %d", pm.Len())
	}
}

func TestExitCode(t *testing.T) {
	if ExitCode(nil) != 0 {
		t.Fatalf("nil must be 0")
	}
	if ExitCode(errors.New("boom")) != 1 {
		t.Fatalf("plain error must be 1")
	}
	err := exec.Command("sh", "-c", "exit 3").Run()
	if ExitCode(err) != 3 {
		t.Fatalf("exit 3: got %d", ExitCode(err))
	}
}
