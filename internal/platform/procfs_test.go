package platform

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Dicklesworthstone/host_telemetry_engine/internal/model"
)

// writeTree lays out a fake proc root from path -> contents.
func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for path, contents := range files {
		full := filepath.Join(root, path)
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte(contents), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestMemoryFromMeminfo(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"meminfo": "MemTotal:       16000 kB\n" +
			"MemFree:         2000 kB\n" +
			"MemAvailable:   10000 kB\n" +
			"Buffers:          500 kB\n" +
			"SwapTotal:       8000 kB\n" +
			"SwapFree:        6000 kB\n",
	})
	r := newProcReader(root, root)
	m := r.Memory()
	if m.Total != 16000*1024 || m.Available != 10000*1024 {
		t.Fatalf("total/available = %d/%d", m.Total, m.Available)
	}
	if m.Used != 6000*1024 {
		t.Fatalf("used = %d, want total-available", m.Used)
	}
	if m.SwapTotal != 8000*1024 || m.SwapUsed != 2000*1024 {
		t.Fatalf("swap = %d/%d", m.SwapTotal, m.SwapUsed)
	}
}

func TestMemoryFailsSoftToZero(t *testing.T) {
	r := newProcReader(filepath.Join(t.TempDir(), "missing"), "/nonexistent")
	if m := r.Memory(); m != (model.MemoryCounters{}) {
		t.Fatalf("missing meminfo produced %+v, want zeroes", m)
	}
}

func TestCPUTicksOrderingAndMath(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"stat": "cpu  300 30 60 600 10 0 0 0 0 0\n" +
			"cpu0 100 10 20 200 5 0 0 0 0 0\n" +
			"cpu1 200 20 40 400 5 0 0 0 0 0\n" +
			"intr 12345\n",
	})
	r := newProcReader(root, root)
	cores := r.CPUTicks()
	if len(cores) != 2 {
		t.Fatalf("cores = %d, want 2 (aggregate line excluded)", len(cores))
	}
	// cpu0: busy = 100+10+20, total = busy + 200 idle + 5 iowait.
	if cores[0].Busy != 130 || cores[0].Total != 335 {
		t.Fatalf("core 0 = %+v", cores[0])
	}
	if cores[1].Busy != 260 || cores[1].Total != 665 {
		t.Fatalf("core 1 = %+v", cores[1])
	}
}

func TestProcessWalk(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"101/comm":  "nginx\n",
		"101/stat":  "101 (nginx) S 1 101 101 0 -1 4194304 100 0 0 0 250 150 0 0 20 0 1 0 100 1000000 512 18446744073709551615 1 1 0 0 0 0 0 0 0 0 0 0 17 0 0 0 0 0 0",
		"101/statm": "1000 512 100 10 0 400 0",
		// A name with spaces and parens must still parse.
		"102/comm":  "tmux: server\n",
		"102/stat":  "102 (tmux: server) S 1 102 102 0 -1 4194304 50 0 0 0 10 5 0 0 20 0 1 0 100 500000 256 18446744073709551615 1 1 0 0 0 0 0 0 0 0 0 0 17 0 0 0 0 0 0",
		"102/statm": "500 256 50 5 0 200 0",
	})
	r := newProcReader(root, root)
	procs := r.Processes()
	if len(procs) != 2 {
		t.Fatalf("procs = %d, want 2", len(procs))
	}
	byPID := map[int]model.ProcSample{}
	for _, p := range procs {
		byPID[p.PID] = p
	}
	nginx := byPID[101]
	if nginx.Name != "nginx" {
		t.Fatalf("name = %q", nginx.Name)
	}
	if nginx.CPUTicks != 400 {
		t.Fatalf("cpu ticks = %d, want utime+stime = 400", nginx.CPUTicks)
	}
	if want := 512 * uint64(os.Getpagesize()); nginx.RSSBytes != want {
		t.Fatalf("rss = %d, want %d", nginx.RSSBytes, want)
	}
	if byPID[102].CPUTicks != 15 {
		t.Fatalf("parenthesized name broke field offsets: %+v", byPID[102])
	}
}

func TestProcessWalkSkipsVanished(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"200/comm": "gone\n",
		// No stat/statm: the process exited between enumeration and read.
		"201/comm":  "alive\n",
		"201/stat":  "201 (alive) R 1 201 201 0 -1 0 0 0 0 0 1 1 0 0 20 0 1 0 1 1 1 1 1 1 0 0 0 0 0 0 0 0 0 0 0 0 17 0 0 0 0 0 0",
		"201/statm": "10 5 1 0 0 4 0",
	})
	r := newProcReader(root, root)
	procs := r.Processes()
	if len(procs) != 1 || procs[0].PID != 201 {
		t.Fatalf("got %+v, want only pid 201", procs)
	}
}

func TestNetworkExcludesLoopback(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"net/dev": "Inter-|   Receive                                                |  Transmit\n" +
			" face |bytes    packets errs drop fifo frame compressed multicast|bytes    packets errs drop fifo colls carrier compressed\n" +
			"    lo: 9999999   100    0    0    0     0          0         0  9999999   100    0    0    0     0       0          0\n" +
			"  eth0: 2000   20    0    0    0     0          0         0  1000   10    0    0    0     0       0          0\n" +
			" wlan0: 600   6    0    0    0     0          0         0  500    5    0    0    0     0       0          0\n",
	})
	r := newProcReader(root, root)
	n := r.Network()
	if n.BytesRecv != 2600 || n.BytesSent != 1500 {
		t.Fatalf("recv/sent = %d/%d, want 2600/1500", n.BytesRecv, n.BytesSent)
	}
}

func TestDiskCountersAggregate(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"diskstats": "   8       0 sda 100 0 2048 500 200 0 4096 700 0 300 1200\n" +
			"   8       1 sdb 10 0 16 50 20 0 32 70 0 30 120\n" +
			"   7       0 loop0 999 0 999999 999 999 0 999999 999 0 999 999\n",
	})
	r := newProcReader(root, root)
	d, err := r.DiskCounters()
	if err != nil {
		t.Fatal(err)
	}
	if d.ReadOps != 110 || d.WriteOps != 220 {
		t.Fatalf("ops = %d/%d, want 110/220", d.ReadOps, d.WriteOps)
	}
	if d.ReadBytes != (2048+16)*512 || d.WriteBytes != (4096+32)*512 {
		t.Fatalf("bytes = %d/%d (loop devices must be excluded)", d.ReadBytes, d.WriteBytes)
	}
	if d.ReadTime != 550 || d.WriteTime != 770 || d.BusyTime != 330 {
		t.Fatalf("times = %d/%d/%d", d.ReadTime, d.WriteTime, d.BusyTime)
	}
}

func TestMountsFilterAndDedupe(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"mounts": "/dev/sda1 " + root + " ext4 rw 0 0\n" +
			"/dev/sda1 " + root + " ext4 rw 0 0\n" +
			"proc /proc proc rw 0 0\n" +
			"tmpfs /tmp tmpfs rw 0 0\n",
	})
	r := newProcReader(root, root)
	mounts := r.Mounts()
	if len(mounts) != 1 {
		t.Fatalf("mounts = %d, want 1 (virtual filesystems and dupes excluded)", len(mounts))
	}
	m := mounts[0]
	if m.Device != "/dev/sda1" || m.FSType != "ext4" {
		t.Fatalf("mount = %+v", m)
	}
	if m.Total == 0 || m.Total != m.Used+m.Free {
		t.Fatalf("usage arithmetic off: total=%d used=%d free=%d", m.Total, m.Used, m.Free)
	}
}

func TestTemperaturesUnsupported(t *testing.T) {
	r := newProcReader(t.TempDir(), t.TempDir())
	_, err := r.Temperatures()
	if !errors.Is(err, model.ErrUnsupported) {
		t.Fatalf("err = %v, want ErrUnsupported", err)
	}
}

func TestTemperaturesFromSysfs(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"class/thermal/thermal_zone0/temp": "45500\n",
		"class/thermal/thermal_zone1/temp": "61000\n",
	})
	r := newProcReader(root, root)
	temps, err := r.Temperatures()
	if err != nil {
		t.Fatal(err)
	}
	if len(temps) != 2 {
		t.Fatalf("temps = %d, want 2", len(temps))
	}
	if temps[0].C != 45.5 && temps[1].C != 45.5 {
		t.Fatalf("missing 45.5C zone: %+v", temps)
	}
}
