package platform

import (
	"strings"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/net"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/Dicklesworthstone/host_telemetry_engine/internal/model"
)

// libReader satisfies the Reader contract through gopsutil, for platforms
// where neither native path is practical. gopsutil reports CPU time in
// seconds; we rescale to centisecond ticks so deltas stay integral.
type libReader struct{}

func newLibReader() *libReader { return &libReader{} }

func (r *libReader) TicksPerSecond() uint64 { return 100 }

func toTicks(seconds float64) uint64 {
	if seconds < 0 {
		return 0
	}
	return uint64(seconds * 100)
}

func (r *libReader) Memory() model.MemoryCounters {
	var m model.MemoryCounters
	if vm, err := mem.VirtualMemory(); err == nil {
		m.Total = vm.Total
		m.Available = vm.Available
		if vm.Total >= vm.Available {
			m.Used = vm.Total - vm.Available
		}
	}
	if sw, err := mem.SwapMemory(); err == nil {
		m.SwapTotal = sw.Total
		m.SwapUsed = sw.Used
	}
	return m
}

func (r *libReader) CPUTicks() []model.CoreTicks {
	times, err := cpu.Times(true)
	if err != nil {
		return nil
	}
	cores := make([]model.CoreTicks, len(times))
	for i, t := range times {
		busy := toTicks(t.User + t.Nice + t.System)
		cores[i] = model.CoreTicks{
			Busy:  busy,
			Total: busy + toTicks(t.Idle+t.Iowait),
		}
	}
	return cores
}

func (r *libReader) Processes() []model.ProcSample {
	procs, err := process.Processes()
	if err != nil {
		return nil
	}
	samples := make([]model.ProcSample, 0, len(procs))
	for _, p := range procs {
		name, err := p.Name()
		if err != nil || name == "" {
			continue
		}
		times, err := p.Times()
		if err != nil {
			continue
		}
		memInfo, err := p.MemoryInfo()
		if err != nil || memInfo == nil {
			continue
		}
		samples = append(samples, model.ProcSample{
			PID:      int(p.Pid),
			Name:     name,
			CPUTicks: toTicks(times.User + times.System),
			RSSBytes: memInfo.RSS,
		})
	}
	return samples
}

func (r *libReader) Network() model.NetCounters {
	var n model.NetCounters
	counters, err := net.IOCounters(true)
	if err != nil {
		return n
	}
	for _, c := range counters {
		if c.Name == "lo" || strings.HasPrefix(c.Name, "lo0") {
			continue
		}
		n.BytesSent += c.BytesSent
		n.BytesRecv += c.BytesRecv
	}
	return n
}

func (r *libReader) Mounts() []model.MountUsage {
	parts, err := disk.Partitions(false)
	if err != nil {
		return nil
	}
	var mounts []model.MountUsage
	for _, p := range parts {
		u, err := disk.Usage(p.Mountpoint)
		if err != nil {
			continue
		}
		mounts = append(mounts, model.MountUsage{
			Device:     p.Device,
			Mountpoint: p.Mountpoint,
			FSType:     p.Fstype,
			Total:      u.Total,
			Used:       u.Used,
			Free:       u.Free,
		})
	}
	return mounts
}

func (r *libReader) DiskCounters() (model.DiskIOCounters, error) {
	counters, err := disk.IOCounters()
	if err != nil {
		return model.DiskIOCounters{}, model.ErrUnsupported
	}
	var d model.DiskIOCounters
	for name, c := range counters {
		if strings.HasPrefix(name, "loop") || strings.HasPrefix(name, "ram") {
			continue
		}
		d.ReadBytes += c.ReadBytes
		d.WriteBytes += c.WriteBytes
		d.ReadOps += c.ReadCount
		d.WriteOps += c.WriteCount
		d.ReadTime += c.ReadTime
		d.WriteTime += c.WriteTime
		d.BusyTime += c.IoTime
	}
	return d, nil
}

func (r *libReader) Temperatures() ([]model.Temp, error) {
	stats, err := host.SensorsTemperatures()
	if err != nil || len(stats) == 0 {
		return nil, model.ErrUnsupported
	}
	temps := make([]model.Temp, 0, len(stats))
	for _, s := range stats {
		temps = append(temps, model.Temp{Zone: s.SensorKey, C: s.Temperature})
	}
	return temps, nil
}
