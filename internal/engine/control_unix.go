//go:build unix

package engine

import (
	"fmt"

	"github.com/shirou/gopsutil/v3/process"
	"golang.org/x/sys/unix"

	"github.com/Dicklesworthstone/host_telemetry_engine/internal/model"
)

// Kill terminates pid. Failure is a result value, never a panic.
func (e *Engine) Kill(pid int) model.ControlResult {
	p, err := process.NewProcess(int32(pid))
	if err != nil {
		return model.ControlResult{Message: fmt.Sprintf("kill %d: no such process", pid)}
	}
	if err := p.Kill(); err != nil {
		return model.ControlResult{Message: fmt.Sprintf("kill %d: %v", pid, err)}
	}
	return model.ControlResult{OK: true, Message: fmt.Sprintf("killed %d", pid)}
}

// Renice sets the scheduling priority of pid.
func (e *Engine) Renice(pid, nice int) model.ControlResult {
	if err := unix.Setpriority(unix.PRIO_PROCESS, pid, nice); err != nil {
		return model.ControlResult{Message: fmt.Sprintf("renice %d: %v", pid, err)}
	}
	return model.ControlResult{OK: true, Message: fmt.Sprintf("reniced %d to %d", pid, nice)}
}
