//go:build darwin

package platform

import (
	"bytes"
	"os/exec"
	"strconv"
	"strings"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/Dicklesworthstone/host_telemetry_engine/internal/model"
)

// darwinReader takes memory and mount data from native syscalls and
// delegates the remaining counters to the library reader, which mirrors
// how the kernel exposes them on this platform.
type darwinReader struct {
	lib *libReader
}

func newDarwinReader() Reader {
	return &darwinReader{lib: newLibReader()}
}

func (r *darwinReader) TicksPerSecond() uint64 { return r.lib.TicksPerSecond() }

func (r *darwinReader) Memory() model.MemoryCounters {
	var m model.MemoryCounters
	if total, err := unix.SysctlUint64("hw.memsize"); err == nil {
		m.Total = total
	}
	m.Used = vmStatUsed()
	if m.Total >= m.Used {
		m.Available = m.Total - m.Used
	}
	m.SwapTotal, m.SwapUsed = swapUsage()
	return m
}

// vmStatUsed sums active, wired and compressor pages from vm_stat.
func vmStatUsed() uint64 {
	out, err := exec.Command("vm_stat").Output()
	if err != nil {
		return 0
	}
	pageSize := uint64(syscall.Getpagesize())
	var pages uint64
	for _, line := range strings.Split(string(out), "\n") {
		for _, prefix := range []string{"Pages active", "Pages wired down", "Pages occupied by compressor"} {
			if v, ok := vmStatValue(line, prefix); ok {
				pages += v
			}
		}
	}
	return pages * pageSize
}

func vmStatValue(line, prefix string) (uint64, bool) {
	if !strings.HasPrefix(line, prefix) {
		return 0, false
	}
	_, rest, ok := strings.Cut(line, ":")
	if !ok {
		return 0, false
	}
	s := strings.TrimSuffix(strings.TrimSpace(rest), ".")
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// swapUsage parses "total = 2048.00M used = 1024.00M ..." from sysctl.
func swapUsage() (total, used uint64) {
	out, err := exec.Command("sysctl", "-n", "vm.swapusage").Output()
	if err != nil {
		return 0, 0
	}
	fields := strings.Fields(string(out))
	for i := 0; i+2 < len(fields); i++ {
		switch fields[i] {
		case "total":
			total = parseSwapSize(fields[i+2])
		case "used":
			used = parseSwapSize(fields[i+2])
		}
	}
	return total, used
}

func parseSwapSize(s string) uint64 {
	mult := uint64(1)
	switch {
	case strings.HasSuffix(s, "K"):
		mult = 1 << 10
	case strings.HasSuffix(s, "M"):
		mult = 1 << 20
	case strings.HasSuffix(s, "G"):
		mult = 1 << 30
	}
	s = strings.TrimRight(s, "KMG")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return uint64(v * float64(mult))
}

func (r *darwinReader) Mounts() []model.MountUsage {
	n, err := unix.Getfsstat(nil, unix.MNT_NOWAIT)
	if err != nil || n <= 0 {
		return nil
	}
	buf := make([]unix.Statfs_t, n)
	n, err = unix.Getfsstat(buf, unix.MNT_NOWAIT)
	if err != nil {
		return nil
	}
	var mounts []model.MountUsage
	for _, st := range buf[:n] {
		device := cString(st.Mntfromname[:])
		if !strings.HasPrefix(device, "/dev/") {
			continue
		}
		bsize := uint64(st.Bsize)
		total := st.Blocks * bsize
		free := st.Bavail * bsize
		mounts = append(mounts, model.MountUsage{
			Device:     device,
			Mountpoint: cString(st.Mntonname[:]),
			FSType:     cString(st.Fstypename[:]),
			Total:      total,
			Used:       total - free,
			Free:       free,
		})
	}
	return mounts
}

func cString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

func (r *darwinReader) CPUTicks() []model.CoreTicks   { return r.lib.CPUTicks() }
func (r *darwinReader) Processes() []model.ProcSample { return r.lib.Processes() }
func (r *darwinReader) Network() model.NetCounters    { return r.lib.Network() }

func (r *darwinReader) DiskCounters() (model.DiskIOCounters, error) {
	return r.lib.DiskCounters()
}

func (r *darwinReader) Temperatures() ([]model.Temp, error) {
	return nil, model.ErrUnsupported
}
