// Package procs builds the ranked, bounded process list.
package procs

import (
	"regexp"
	"sort"
	"time"

	"github.com/Dicklesworthstone/host_telemetry_engine/internal/model"
	"github.com/Dicklesworthstone/host_telemetry_engine/internal/platform"
	"github.com/Dicklesworthstone/host_telemetry_engine/internal/sampler"
)

// SortKey selects the ranking column.
type SortKey string

const (
	SortCPU SortKey = "cpu"
	SortMem SortKey = "mem"
)

// Enumerator walks the live process set each call and rebuilds the full
// record list; PIDs from a previous tick are never carried forward.
type Enumerator struct {
	reader platform.Reader
	samp   *sampler.Sampler
	filter *regexp.Regexp
	now    func() time.Time
}

// New wires the enumerator to its reader and delta sampler. filter may be
// nil to include every process.
func New(reader platform.Reader, samp *sampler.Sampler, filter *regexp.Regexp) *Enumerator {
	return &Enumerator{reader: reader, samp: samp, filter: filter, now: time.Now}
}

// List returns processes ranked descending by sortBy, ties broken by
// ascending PID. limit <= 0 means no truncation; truncation happens only
// after the full ranking is known.
func (e *Enumerator) List(sortBy SortKey, limit int) []model.ProcessRecord {
	now := e.now()
	samples := e.reader.Processes()
	hz := e.reader.TicksPerSecond()
	if hz == 0 {
		hz = 100
	}
	memTotal := e.reader.Memory().Total

	records := make([]model.ProcessRecord, 0, len(samples))
	for _, p := range samples {
		if p.Name == "" {
			continue
		}
		if e.filter != nil && !e.filter.MatchString(p.Name) {
			continue
		}
		// Keying delta state by PID restarts the baseline naturally when
		// the OS reuses a PID after the old key goes stale.
		tickRate := e.samp.ObserveRate(sampler.PIDKey(p.PID), p.CPUTicks, now)
		cpuPct := clamp(tickRate / float64(hz) * 100)

		var memPct float64
		if memTotal > 0 {
			memPct = clamp(float64(p.RSSBytes) / float64(memTotal) * 100)
		}
		records = append(records, model.ProcessRecord{
			PID:        p.PID,
			Name:       p.Name,
			CPUPercent: cpuPct,
			MemPercent: memPct,
			RSSBytes:   p.RSSBytes,
		})
	}

	sort.Slice(records, func(i, j int) bool {
		a, b := records[i], records[j]
		var ka, kb float64
		if sortBy == SortMem {
			ka, kb = a.MemPercent, b.MemPercent
		} else {
			ka, kb = a.CPUPercent, b.CPUPercent
		}
		if ka != kb {
			return ka > kb
		}
		return a.PID < b.PID
	})

	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
