// Package sampler turns pairs of time-separated monotonic counter reads
// into bounded rates and percentages.
package sampler

import (
	"strconv"
	"time"
)

// SeriesKey identifies one tracked counter stream: a core, a disk, a PID,
// or a global singleton.
type SeriesKey string

func CoreKey(i int) SeriesKey         { return SeriesKey("cpu.core." + strconv.Itoa(i)) }
func PIDKey(pid int) SeriesKey        { return SeriesKey("proc.cpu." + strconv.Itoa(pid)) }
func DiskKey(metric string) SeriesKey { return SeriesKey("disk." + metric) }

const (
	CPUTotalKey SeriesKey = "cpu.total"
	NetSentKey  SeriesKey = "net.sent"
	NetRecvKey  SeriesKey = "net.recv"
)

type series struct {
	prevA    uint64
	prevB    uint64
	prevTime time.Time
	lastGood float64
	seen     bool
}

// Sampler owns delta state per SeriesKey. One instance per owner, no
// concurrent writers; independent consumers construct their own.
type Sampler struct {
	state map[SeriesKey]*series
}

func New() *Sampler {
	return &Sampler{state: make(map[SeriesKey]*series)}
}

func (s *Sampler) get(key SeriesKey) *series {
	st, ok := s.state[key]
	if !ok {
		st = &series{}
		s.state[key] = st
	}
	return st
}

// ObserveRatio computes a CPU-style percentage from busy/total tick
// counters. The first observation of a key returns 0, never an error.
// A wrapped or reset counter clamps to 0; the result stays in [0,100].
func (s *Sampler) ObserveRatio(key SeriesKey, busy, total uint64, now time.Time) float64 {
	st := s.get(key)
	defer func() {
		st.prevA, st.prevB, st.prevTime, st.seen = busy, total, now, true
	}()
	if !st.seen {
		return 0
	}
	if total < st.prevB || busy < st.prevA {
		st.lastGood = 0
		return 0
	}
	if total == st.prevB {
		// Zero-width window: repeat the last known good value.
		return st.lastGood
	}
	st.lastGood = clampPct(100 * float64(busy-st.prevA) / float64(total-st.prevB))
	return st.lastGood
}

// ObserveRate computes a per-second rate from one cumulative counter.
// First observation returns 0; elapsed <= 0 repeats the last good value;
// a counter wrap yields 0 rather than a negative rate.
func (s *Sampler) ObserveRate(key SeriesKey, value uint64, now time.Time) float64 {
	st := s.get(key)
	defer func() {
		st.prevA, st.prevTime, st.seen = value, now, true
	}()
	if !st.seen {
		return 0
	}
	elapsed := now.Sub(st.prevTime).Seconds()
	if elapsed <= 0 {
		return st.lastGood
	}
	if value < st.prevA {
		st.lastGood = 0
		return 0
	}
	st.lastGood = float64(value-st.prevA) / elapsed
	return st.lastGood
}

// ObserveLatency computes average time per operation over the window:
// delta time spent divided by delta op count, 0 on an idle window.
func (s *Sampler) ObserveLatency(key SeriesKey, timeSpent, ops uint64, now time.Time) float64 {
	st := s.get(key)
	defer func() {
		st.prevA, st.prevB, st.prevTime, st.seen = timeSpent, ops, now, true
	}()
	if !st.seen {
		return 0
	}
	if ops <= st.prevB || timeSpent < st.prevA {
		return 0
	}
	st.lastGood = float64(timeSpent-st.prevA) / float64(ops-st.prevB)
	return st.lastGood
}

// Len reports the number of tracked series. Stale keys are kept: device
// and PID churn is small and bounded, so eviction stays out of scope.
func (s *Sampler) Len() int { return len(s.state) }

func clampPct(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
