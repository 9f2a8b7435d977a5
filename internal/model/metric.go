package model

import (
	"errors"
	"time"
)

// ErrUnsupported marks a capability the running platform does not expose.
// Distinct from a zero reading so consumers can render "N/A" instead of 0.
var ErrUnsupported = errors.New("capability not supported on this platform")

// MemoryCounters is the raw memory read from one platform source, in bytes.
type MemoryCounters struct {
	Total     uint64
	Available uint64
	Used      uint64
	SwapTotal uint64
	SwapUsed  uint64
}

// CoreTicks holds cumulative busy/total CPU ticks for one logical core.
// Both values only grow; rates come from differencing two reads.
type CoreTicks struct {
	Busy  uint64
	Total uint64
}

// NetCounters is cumulative bytes moved across all non-loopback interfaces.
type NetCounters struct {
	BytesSent uint64
	BytesRecv uint64
}

// DiskIOCounters aggregates block-device activity since boot.
// Times are in milliseconds.
type DiskIOCounters struct {
	ReadBytes  uint64
	WriteBytes uint64
	ReadOps    uint64
	WriteOps   uint64
	ReadTime   uint64
	WriteTime  uint64
	BusyTime   uint64
}

// MountUsage describes one mounted filesystem, sizes in bytes.
type MountUsage struct {
	Device     string
	Mountpoint string
	FSType     string
	Total      uint64
	Used       uint64
	Free       uint64
}

// ProcSample is one process as read from the platform, not yet normalized.
// CPUTicks is cumulative user+system time in reader clock ticks.
type ProcSample struct {
	PID      int
	Name     string
	CPUTicks uint64
	RSSBytes uint64
}

// Temp is a thermal zone reading in degrees Celsius.
type Temp struct {
	Zone string  `json:"zone"`
	C    float64 `json:"celsius"`
}

// MemoryInfo is the normalized memory metric exposed to callers.
type MemoryInfo struct {
	Total     uint64  `json:"total"`
	Used      uint64  `json:"used"`
	Available uint64  `json:"available"`
	Percent   float64 `json:"percent"`
	SwapTotal uint64  `json:"swap_total"`
	SwapUsed  uint64  `json:"swap_used"`
}

// NetworkStats is cumulative traffic for the current session,
// loopback excluded.
type NetworkStats struct {
	BytesSent uint64 `json:"bytes_sent"`
	BytesRecv uint64 `json:"bytes_recv"`
}

// DiskInfo is one mounted volume with a derived fill percentage.
type DiskInfo struct {
	Device     string  `json:"device"`
	Mountpoint string  `json:"mountpoint"`
	FSType     string  `json:"fstype"`
	Total      uint64  `json:"total"`
	Used       uint64  `json:"used"`
	Free       uint64  `json:"free"`
	Percent    float64 `json:"percent"`
}

// ProcessRecord is one ranked process. Rebuilt fully every tick; records
// from a previous tick are never carried forward.
type ProcessRecord struct {
	PID        int     `json:"pid"`
	Name       string  `json:"name"`
	CPUPercent float64 `json:"cpu_percent"`
	MemPercent float64 `json:"mem_percent"`
	RSSBytes   uint64  `json:"rss_bytes"`
}

// IORates holds rate-normalized disk and network activity.
type IORates struct {
	DiskReadBps  float64 `json:"disk_read_bps"`
	DiskWriteBps float64 `json:"disk_write_bps"`
	ReadLatMs    float64 `json:"read_lat_ms"`
	WriteLatMs   float64 `json:"write_lat_ms"`
	NetSentBps   float64 `json:"net_sent_bps"`
	NetRecvBps   float64 `json:"net_recv_bps"`
}

// LoadAverages mirrors the kernel 1/5/15 minute run-queue averages.
type LoadAverages struct {
	Load1  float64 `json:"load1"`
	Load5  float64 `json:"load5"`
	Load15 float64 `json:"load15"`
}

// ControlResult reports a process-control action. Failures are values,
// never panics.
type ControlResult struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// Sample is the full per-tick snapshot exchanged between the engine,
// the TUI, and the JSON exporter.
type Sample struct {
	Timestamp      time.Time       `json:"timestamp"`
	Interval       time.Duration   `json:"interval"`
	CPUPercents    []float64       `json:"cpu_percents"`
	Memory         MemoryInfo      `json:"memory"`
	Network        NetworkStats    `json:"network"`
	IO             IORates         `json:"io"`
	Disks          []DiskInfo      `json:"disks"`
	Top            []ProcessRecord `json:"top"`
	Load           LoadAverages    `json:"load"`
	Temps          []Temp          `json:"temps,omitempty"`
	TempsAvailable bool            `json:"temps_available"`
	Mode           string          `json:"mode"`
}

// Zero returns an empty sample for initialization, before the first
// real tick arrives.
func Zero() Sample { return Sample{Timestamp: time.Now(), Mode: "unprobed"} }
