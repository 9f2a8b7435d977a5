//go:build !unix

package engine

import (
	"fmt"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/Dicklesworthstone/host_telemetry_engine/internal/model"
)

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

func (e *Engine) Renice(pid, nice int) model.ControlResult {
	return model.ControlResult{Message: fmt.Sprintf("renice %d: not supported on this platform", pid)}
}
