// Package engine is the facade the visualization layer polls each tick.
// It owns the acceleration bridge, the delta sampler, and the session
// network baseline; every operation returns a valid typed value so the
// caller's refresh loop never halts.
package engine

import (
	"regexp"
	"time"

	"github.com/shirou/gopsutil/v3/load"

	"github.com/Dicklesworthstone/host_telemetry_engine/internal/accel"
	"github.com/Dicklesworthstone/host_telemetry_engine/internal/model"
	"github.com/Dicklesworthstone/host_telemetry_engine/internal/platform"
	"github.com/Dicklesworthstone/host_telemetry_engine/internal/procs"
	"github.com/Dicklesworthstone/host_telemetry_engine/internal/sampler"
)

// Options configures one Engine. Zero values pick the platform reader
// and a startup accelerator probe.
type Options struct {
	// Reader overrides the OS-selected platform reader (tests).
	Reader platform.Reader
	// Accelerator overrides the probed fast path (tests).
	Accelerator accel.Accelerator
	// DisableAccel forces the pure path without probing.
	DisableAccel bool
	// Filter restricts process listings by name, nil for all.
	Filter *regexp.Regexp
}

// Engine composes the bridge, reader, sampler and enumerator. One
// instance per consumer; instances never share delta state, so multiple
// engines in one process cannot interfere. Not safe for concurrent use:
// callers polling at different rates construct their own Engine.
type Engine struct {
	reader platform.Reader
	samp   *sampler.Sampler
	enum   *procs.Enumerator
	accel  accel.Accelerator
	state  bridgeState

	probeOnInit bool
	netBase     model.NetCounters
}

func New(opts Options) *Engine {
	reader := opts.Reader
	if reader == nil {
		reader = platform.NewReader()
	}
	samp := sampler.New()
	e := &Engine{
		reader:      reader,
		samp:        samp,
		enum:        procs.New(reader, samp, opts.Filter),
		accel:       opts.Accelerator,
		state:       stateUnprobed,
		probeOnInit: opts.Accelerator == nil && !opts.DisableAccel,
	}
	if opts.DisableAccel {
		e.accel = nil
	}
	return e
}

// Init makes the one-way bridge decision and primes the first counter
// baselines so the first real reading is not a degenerate zero. Calling
// any operation before Init still works, it just reports the first-tick
// neutral values.
func (e *Engine) Init() {
	if e.state != stateUnprobed {
		return
	}
	if e.probeOnInit {
		e.accel = accel.Probe()
	}
	if e.accel != nil {
		if _, err := tryAccel(func() (struct{}, error) { return struct{}{}, e.accel.Init() }); err == nil {
			e.state = stateAccelerated
		} else {
			e.accel = nil
			e.state = stateFallback
		}
	} else {
		e.state = stateFallback
	}

	now := time.Now()
	e.cpuFallback(now)
	e.observeIO(now)
	e.netBase = e.rawNetwork()
}

// Accelerated reports whether the fast path won the startup probe.
func (e *Engine) Accelerated() bool { return e.state == stateAccelerated }

// Mode names the current bridge state: "unprobed" before Init, then
// "accelerated" or "fallback" for the rest of the process lifetime.
func (e *Engine) Mode() string { return e.state.String() }

// CPUPercents returns one entry per logical core, stable core ordering,
// each within [0,100].
func (e *Engine) CPUPercents() []float64 {
	if e.state == stateAccelerated {
		if v, err := tryAccel(e.accel.CPUPercents); err == nil && v != nil {
			return v
		}
	}
	return e.cpuFallback(time.Now())
}

func (e *Engine) cpuFallback(now time.Time) []float64 {
	ticks := e.reader.CPUTicks()
	percents := make([]float64, len(ticks))
	for i, t := range ticks {
		percents[i] = e.samp.ObserveRatio(sampler.CoreKey(i), t.Busy, t.Total, now)
	}
	return percents
}

// Memory returns current memory usage in bytes and percent.
func (e *Engine) Memory() model.MemoryInfo {
	if e.state == stateAccelerated {
		if v, err := tryAccel(e.accel.MemoryInfo); err == nil {
			return v
		}
	}
	c := e.reader.Memory()
	info := model.MemoryInfo{
		Total:     c.Total,
		Used:      c.Used,
		Available: c.Available,
		SwapTotal: c.SwapTotal,
		SwapUsed:  c.SwapUsed,
	}
	if c.Total > 0 {
		info.Percent = clampPct(float64(c.Used) / float64(c.Total) * 100)
	}
	return info
}

// Processes returns the ranked process list. limit <= 0 disables
// truncation.
func (e *Engine) Processes(sortBy procs.SortKey, limit int) []model.ProcessRecord {
	if sortBy != procs.SortMem {
		sortBy = procs.SortCPU
	}
	if e.state == stateAccelerated {
		if v, err := tryAccel(func() ([]model.ProcessRecord, error) {
			return e.accel.ProcessList(sortBy, limit)
		}); err == nil && v != nil {
			return v
		}
	}
	return e.enum.List(sortBy, limit)
}

// Network returns cumulative traffic since Init (or since the last
// baseline reset), loopback excluded.
func (e *Engine) Network() model.NetworkStats {
	cur := e.rawNetwork()
	var s model.NetworkStats
	if cur.BytesSent >= e.netBase.BytesSent {
		s.BytesSent = cur.BytesSent - e.netBase.BytesSent
	}
	if cur.BytesRecv >= e.netBase.BytesRecv {
		s.BytesRecv = cur.BytesRecv - e.netBase.BytesRecv
	}
	return s
}

// ResetNetworkBaseline re-zeros the session counters.
func (e *Engine) ResetNetworkBaseline() {
	e.netBase = e.rawNetwork()
}

func (e *Engine) rawNetwork() model.NetCounters {
	if e.state == stateAccelerated {
		if v, err := tryAccel(e.accel.NetworkStats); err == nil {
			return v
		}
	}
	return e.reader.Network()
}

// Disks lists mounted volumes with fill percentages.
func (e *Engine) Disks() []model.DiskInfo {
	if e.state == stateAccelerated {
		if v, err := tryAccel(e.accel.DiskInfo); err == nil && v != nil {
			return v
		}
	}
	mounts := e.reader.Mounts()
	disks := make([]model.DiskInfo, 0, len(mounts))
	for _, m := range mounts {
		d := model.DiskInfo{
			Device:     m.Device,
			Mountpoint: m.Mountpoint,
			FSType:     m.FSType,
			Total:      m.Total,
			Used:       m.Used,
			Free:       m.Free,
		}
		if m.Total > 0 {
			d.Percent = clampPct(float64(m.Used) / float64(m.Total) * 100)
		}
		disks = append(disks, d)
	}
	return disks
}

// IORates returns rate-normalized disk and network activity for the
// window since the previous call.
func (e *Engine) IORates() model.IORates {
	return e.observeIO(time.Now())
}

func (e *Engine) observeIO(now time.Time) model.IORates {
	var r model.IORates
	if d, err := e.reader.DiskCounters(); err == nil {
		r.DiskReadBps = e.samp.ObserveRate(sampler.DiskKey("read_bytes"), d.ReadBytes, now)
		r.DiskWriteBps = e.samp.ObserveRate(sampler.DiskKey("write_bytes"), d.WriteBytes, now)
		r.ReadLatMs = e.samp.ObserveLatency(sampler.DiskKey("read_lat"), d.ReadTime, d.ReadOps, now)
		r.WriteLatMs = e.samp.ObserveLatency(sampler.DiskKey("write_lat"), d.WriteTime, d.WriteOps, now)
	}
	n := e.reader.Network()
	r.NetSentBps = e.samp.ObserveRate(sampler.NetSentKey, n.BytesSent, now)
	r.NetRecvBps = e.samp.ObserveRate(sampler.NetRecvKey, n.BytesRecv, now)
	return r
}

// Temperatures returns thermal readings and whether the platform exposes
// any; false means "N/A", not zero load.
func (e *Engine) Temperatures() ([]model.Temp, bool) {
	temps, err := e.reader.Temperatures()
	if err != nil {
		return nil, false
	}
	return temps, true
}

// LoadAverages reads the kernel run-queue averages, zeroed where absent.
func (e *Engine) LoadAverages() model.LoadAverages {
	avg, err := load.Avg()
	if err != nil || avg == nil {
		return model.LoadAverages{}
	}
	return model.LoadAverages{Load1: avg.Load1, Load5: avg.Load5, Load15: avg.Load15}
}

// Snapshot assembles one full Sample from the current tick. Metric
// families are read back to back; small cross-family skew is tolerated.
func (e *Engine) Snapshot(interval time.Duration, sortBy procs.SortKey, limit int) model.Sample {
	temps, tempsOK := e.Temperatures()
	return model.Sample{
		Timestamp:      time.Now(),
		Interval:       interval,
		CPUPercents:    e.CPUPercents(),
		Memory:         e.Memory(),
		Network:        e.Network(),
		IO:             e.IORates(),
		Disks:          e.Disks(),
		Top:            e.Processes(sortBy, limit),
		Load:           e.LoadAverages(),
		Temps:          temps,
		TempsAvailable: tempsOK,
		Mode:           e.state.String(),
	}
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
