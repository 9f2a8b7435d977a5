// Package platform reads raw OS counters behind one contract. Every read
// degrades to a zeroed structure on permission or missing-file errors;
// the only error that crosses this boundary is model.ErrUnsupported.
package platform

import (
	"runtime"

	"github.com/Dicklesworthstone/host_telemetry_engine/internal/model"
)

// Reader is the per-OS leaf adapter. Snapshots are raw and cumulative,
// never rate-normalized here.
type Reader interface {
	// Memory returns current memory counters in bytes, all-zero on failure.
	Memory() model.MemoryCounters
	// CPUTicks returns cumulative busy/total ticks per logical core.
	// Ordering is stable (core 0 first) across calls.
	CPUTicks() []model.CoreTicks
	// Processes walks the live PID set. PIDs whose detail sources vanish
	// mid-read are skipped, not reported.
	Processes() []model.ProcSample
	// Network returns cumulative non-loopback traffic since boot.
	Network() model.NetCounters
	// Mounts lists mounted filesystems with usage.
	Mounts() []model.MountUsage
	// DiskCounters returns global block-device counters, or
	// model.ErrUnsupported where the platform exposes none.
	DiskCounters() (model.DiskIOCounters, error)
	// Temperatures returns thermal zone readings, or model.ErrUnsupported.
	Temperatures() ([]model.Temp, error)
	// TicksPerSecond is the clock-tick unit used for ProcSample.CPUTicks.
	TicksPerSecond() uint64
}

// NewReader picks the implementation for the running OS. The decision is
// made once here, never re-evaluated per call.
func NewReader() Reader {
	switch runtime.GOOS {
	case "linux":
		return newProcReader("/proc", "/sys")
	case "darwin":
		return newDarwinReader()
	default:
		return newLibReader()
	}
}
