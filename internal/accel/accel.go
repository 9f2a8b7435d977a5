// Package accel is the optional fast-path metrics provider. Probing
// happens once at startup; a probe failure means the process runs on the
// pure platform readers for its whole lifetime.
package accel

import (
	"errors"
	"sort"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/net"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/Dicklesworthstone/host_telemetry_engine/internal/model"
	"github.com/Dicklesworthstone/host_telemetry_engine/internal/procs"
)

// Accelerator covers the operations the bridge may dispatch to the fast
// path. Any error or panic from these makes the caller retry the pure
// path within the same invocation.
type Accelerator interface {
	Init() error
	CPUPercents() ([]float64, error)
	MemoryInfo() (model.MemoryInfo, error)
	ProcessList(sortBy procs.SortKey, limit int) ([]model.ProcessRecord, error)
	NetworkStats() (model.NetCounters, error)
	DiskInfo() ([]model.DiskInfo, error)
}

// Probe tries the accelerator once and returns nil if it is not usable.
// Callers must not re-probe on a hot path.
func Probe() Accelerator {
	a := &sysAccel{}
	if err := a.Init(); err != nil {
		return nil
	}
	return a
}

// sysAccel keeps its own previous CPU reading, like the precompiled core
// it stands in for.
type sysAccel struct {
	prevCore []cpu.TimesStat
}

func (a *sysAccel) Init() error {
	times, err := cpu.Times(true)
	if err != nil {
		return err
	}
	if len(times) == 0 {
		return errors.New("accel: no cpu times")
	}
	a.prevCore = times
	return nil
}

func (a *sysAccel) CPUPercents() ([]float64, error) {
	times, err := cpu.Times(true)
	if err != nil {
		return nil, err
	}
	percents := make([]float64, len(times))
	for i, t := range times {
		if i >= len(a.prevCore) {
			continue
		}
		prev := a.prevCore[i]
		dt := t.Total() - prev.Total()
		di := (t.Idle + t.Iowait) - (prev.Idle + prev.Iowait)
		if dt > 0 {
			percents[i] = clampPct(100 * (1 - di/dt))
		}
	}
	a.prevCore = times
	return percents, nil
}

func (a *sysAccel) MemoryInfo() (model.MemoryInfo, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return model.MemoryInfo{}, err
	}
	info := model.MemoryInfo{
		Total:     vm.Total,
		Available: vm.Available,
		Percent:   clampPct(vm.UsedPercent),
	}
	if vm.Total >= vm.Available {
		info.Used = vm.Total - vm.Available
	}
	if sw, err := mem.SwapMemory(); err == nil {
		info.SwapTotal = sw.Total
		info.SwapUsed = sw.Used
	}
	return info, nil
}

func (a *sysAccel) ProcessList(sortBy procs.SortKey, limit int) ([]model.ProcessRecord, error) {
	list, err := process.Processes()
	if err != nil {
		return nil, err
	}
	records := make([]model.ProcessRecord, 0, len(list))
	for _, p := range list {
		name, err := p.Name()
		if err != nil || name == "" {
			continue
		}
		cpuPct, _ := p.CPUPercent()
		memPct, _ := p.MemoryPercent()
		var rss uint64
		if mi, err := p.MemoryInfo(); err == nil && mi != nil {
			rss = mi.RSS
		}
		records = append(records, model.ProcessRecord{
			PID:        int(p.Pid),
			Name:       name,
			CPUPercent: clampPct(cpuPct),
			MemPercent: clampPct(float64(memPct)),
			RSSBytes:   rss,
		})
	}
	sort.Slice(records, func(i, j int) bool {
		x, y := records[i], records[j]
		var kx, ky float64
		if sortBy == procs.SortMem {
			kx, ky = x.MemPercent, y.MemPercent
		} else {
			kx, ky = x.CPUPercent, y.CPUPercent
		}
		if kx != ky {
			return kx > ky
		}
		return x.PID < y.PID
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

func (a *sysAccel) NetworkStats() (model.NetCounters, error) {
	counters, err := net.IOCounters(true)
	if err != nil {
		return model.NetCounters{}, err
	}
	var n model.NetCounters
	for _, c := range counters {
		if c.Name == "lo" || c.Name == "lo0" {
			continue
		}
		n.BytesSent += c.BytesSent
		n.BytesRecv += c.BytesRecv
	}
	return n, nil
}

func (a *sysAccel) DiskInfo() ([]model.DiskInfo, error) {
	parts, err := disk.Partitions(false)
	if err != nil {
		return nil, err
	}
	var disks []model.DiskInfo
	for _, p := range parts {
		u, err := disk.Usage(p.Mountpoint)
		if err != nil {
			continue
		}
		disks = append(disks, model.DiskInfo{
			Device:     p.Device,
			Mountpoint: p.Mountpoint,
			FSType:     p.Fstype,
			Total:      u.Total,
			Used:       u.Used,
			Free:       u.Free,
			Percent:    clampPct(u.UsedPercent),
		})
	}
	return disks, nil
}

func clampPct(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
