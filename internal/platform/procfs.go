package platform

import (
	"bufio"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Dicklesworthstone/host_telemetry_engine/internal/model"
)

// procReader parses the Linux pseudo-filesystems. Roots are injectable so
// tests can point it at a fixture tree.
type procReader struct {
	procRoot string
	sysRoot  string
	pageSize uint64
}

func newProcReader(procRoot, sysRoot string) *procReader {
	return &procReader{
		procRoot: procRoot,
		sysRoot:  sysRoot,
		pageSize: uint64(os.Getpagesize()),
	}
}

// USER_HZ is 100 on every Linux architecture Go targets.
func (r *procReader) TicksPerSecond() uint64 { return 100 }

func (r *procReader) Memory() model.MemoryCounters {
	var m model.MemoryCounters
	var swapFree uint64
	f, err := os.Open(filepath.Join(r.procRoot, "meminfo"))
	if err != nil {
		return m
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 2 {
			continue
		}
		kb, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			continue
		}
		v := kb * 1024
		switch strings.TrimSuffix(fields[0], ":") {
		case "MemTotal":
			m.Total = v
		case "MemAvailable":
			m.Available = v
		case "SwapTotal":
			m.SwapTotal = v
		case "SwapFree":
			swapFree = v
		}
	}
	if m.Total >= m.Available {
		m.Used = m.Total - m.Available
	}
	if m.SwapTotal >= swapFree {
		m.SwapUsed = m.SwapTotal - swapFree
	}
	return m
}

func (r *procReader) CPUTicks() []model.CoreTicks {
	f, err := os.Open(filepath.Join(r.procRoot, "stat"))
	if err != nil {
		return nil
	}
	defer f.Close()

	var cores []model.CoreTicks
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		// Per-core lines only; the aggregate "cpu " line is skipped.
		if !strings.HasPrefix(line, "cpu") || strings.HasPrefix(line, "cpu ") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 5 {
			continue
		}
		user := parseUint(fields[1])
		nice := parseUint(fields[2])
		system := parseUint(fields[3])
		idle := parseUint(fields[4])
		var iowait uint64
		if len(fields) > 5 {
			iowait = parseUint(fields[5])
		}
		busy := user + nice + system
		cores = append(cores, model.CoreTicks{Busy: busy, Total: busy + idle + iowait})
	}
	return cores
}

func (r *procReader) Processes() []model.ProcSample {
	entries, err := os.ReadDir(r.procRoot)
	if err != nil {
		return nil
	}
	var procs []model.ProcSample
	for _, e := range entries {
		pid, err := strconv.Atoi(e.Name())
		if err != nil {
			continue
		}
		p, ok := r.readProc(pid)
		if !ok {
			// Exited between enumeration and detail read.
			continue
		}
		procs = append(procs, p)
	}
	return procs
}

func (r *procReader) readProc(pid int) (model.ProcSample, bool) {
	dir := filepath.Join(r.procRoot, strconv.Itoa(pid))

	comm, err := os.ReadFile(filepath.Join(dir, "comm"))
	if err != nil {
		return model.ProcSample{}, false
	}
	statB, err := os.ReadFile(filepath.Join(dir, "stat"))
	if err != nil {
		return model.ProcSample{}, false
	}
	statmB, err := os.ReadFile(filepath.Join(dir, "statm"))
	if err != nil {
		return model.ProcSample{}, false
	}

	// The comm field in stat is parenthesized and may contain spaces, so
	// fixed positions only hold after the closing paren.
	stat := string(statB)
	paren := strings.LastIndexByte(stat, ')')
	if paren < 0 {
		return model.ProcSample{}, false
	}
	rest := strings.Fields(stat[paren+1:])
	// rest[0] is state; utime and stime are stat fields 14 and 15.
	if len(rest) < 13 {
		return model.ProcSample{}, false
	}
	utime := parseUint(rest[11])
	stime := parseUint(rest[12])

	statm := strings.Fields(string(statmB))
	if len(statm) < 2 {
		return model.ProcSample{}, false
	}
	residentPages := parseUint(statm[1])

	return model.ProcSample{
		PID:      pid,
		Name:     strings.TrimSpace(string(comm)),
		CPUTicks: utime + stime,
		RSSBytes: residentPages * r.pageSize,
	}, true
}

func (r *procReader) Network() model.NetCounters {
	var n model.NetCounters
	f, err := os.Open(filepath.Join(r.procRoot, "net", "dev"))
	if err != nil {
		return n
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		if !strings.Contains(line, ":") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 10 {
			continue
		}
		iface := strings.TrimSuffix(fields[0], ":")
		if iface == "lo" {
			continue
		}
		n.BytesRecv += parseUint(fields[1])
		n.BytesSent += parseUint(fields[9])
	}
	return n
}

func (r *procReader) Mounts() []model.MountUsage {
	f, err := os.Open(filepath.Join(r.procRoot, "mounts"))
	if err != nil {
		return nil
	}
	defer f.Close()

	var mounts []model.MountUsage
	seen := make(map[string]bool)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 3 {
			continue
		}
		device, mount, fstype := fields[0], fields[1], fields[2]
		if !strings.HasPrefix(device, "/dev/") || seen[device] {
			continue
		}
		seen[device] = true

		total, free, err := fsUsage(mount)
		if err != nil {
			continue
		}
		mounts = append(mounts, model.MountUsage{
			Device:     device,
			Mountpoint: mount,
			FSType:     fstype,
			Total:      total,
			Used:       total - free,
			Free:       free,
		})
	}
	return mounts
}

const sectorSize = 512

func (r *procReader) DiskCounters() (model.DiskIOCounters, error) {
	var d model.DiskIOCounters
	f, err := os.Open(filepath.Join(r.procRoot, "diskstats"))
	if err != nil {
		return d, nil
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 14 {
			continue
		}
		name := fields[2]
		if strings.HasPrefix(name, "loop") || strings.HasPrefix(name, "ram") {
			continue
		}
		d.ReadOps += parseUint(fields[3])
		d.ReadBytes += parseUint(fields[5]) * sectorSize
		d.ReadTime += parseUint(fields[6])
		d.WriteOps += parseUint(fields[7])
		d.WriteBytes += parseUint(fields[9]) * sectorSize
		d.WriteTime += parseUint(fields[10])
		d.BusyTime += parseUint(fields[12])
	}
	return d, nil
}

func (r *procReader) Temperatures() ([]model.Temp, error) {
	paths, _ := filepath.Glob(filepath.Join(r.sysRoot, "class", "thermal", "thermal_zone*", "temp"))
	if len(paths) == 0 {
		return nil, model.ErrUnsupported
	}
	var temps []model.Temp
	for _, p := range paths {
		b, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		milli := parseUint(strings.TrimSpace(string(b)))
		temps = append(temps, model.Temp{
			Zone: filepath.Base(filepath.Dir(p)),
			C:    float64(milli) / 1000,
		})
	}
	if len(temps) == 0 {
		return nil, model.ErrUnsupported
	}
	return temps, nil
}

func parseUint(s string) uint64 {
	v, _ := strconv.ParseUint(s, 10, 64)
	return v
}
