package executil

import (
	"os/exec"
	"sync"
	"syscall"
)

// ProcManager tracks detached processes started during a bootstrap run so
// teardown can reap them. Kills are best-effort.
type ProcManager struct {
	mu    sync.Mutex
	procs []*exec.Cmd
}

func NewProcManager() *ProcManager { return &ProcManager{} }

func (pm *ProcManager) Add(cmd *exec.Cmd) {
	pm.mu.Lock()
	pm.procs = append(pm.procs, cmd)
	pm.mu.Unlock()
}

// Len reports how many processes are currently tracked.
func (pm *ProcManager) Len() int {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	return len(pm.procs)
}

// KillAll signals every tracked process group and clears the list.
func (pm *ProcManager) KillAll() {
	pm.mu.Lock()
	procs := append([]*exec.Cmd(nil), pm.procs...)
	pm.procs = nil
	pm.mu.Unlock()
	for _, c := range procs {
		if c == nil || c.Process == nil {
			continue
		}
		// negative pid targets the whole process group set up by Start
		if err := syscall.Kill(-c.Process.Pid, syscall.SIGTERM); err != nil {
			_ = c.Process.Kill()
		}
	}
}
