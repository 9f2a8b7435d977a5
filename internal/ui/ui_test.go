package ui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Dicklesworthstone/host_telemetry_engine/internal/config"
	"github.com/Dicklesworthstone/host_telemetry_engine/internal/engine"
	"github.com/Dicklesworthstone/host_telemetry_engine/internal/history"
	"github.com/Dicklesworthstone/host_telemetry_engine/internal/model"
	"github.com/Dicklesworthstone/host_telemetry_engine/internal/procs"
)

// stubReader is an all-zero platform source so UI tests never touch the OS.
type stubReader struct{}

func (stubReader) Memory() model.MemoryCounters  { return model.MemoryCounters{} }
func (stubReader) CPUTicks() []model.CoreTicks   { return nil }
func (stubReader) Processes() []model.ProcSample { return nil }
func (stubReader) Network() model.NetCounters    { return model.NetCounters{} }
func (stubReader) Mounts() []model.MountUsage    { return nil }
func (stubReader) DiskCounters() (model.DiskIOCounters, error) {
	return model.DiskIOCounters{}, nil
}
func (stubReader) Temperatures() ([]model.Temp, error) { return nil, model.ErrUnsupported }
func (stubReader) TicksPerSecond() uint64              { return 100 }

func keyMsg(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

// A burst of sort/reset keypresses must never wedge the event loop, even
// when the command buffer is already full because the poller is busy.
func TestKeypressesNeverBlockOnFullCommandBuffer(t *testing.T) {
	cmds := make(chan pollCmd, 4)
	for i := 0; i < cap(cmds); i++ {
		cmds <- cmdSortCPU
	}
	m := &Model{
		cmds:     cmds,
		upHist:   history.NewRing(80),
		downHist: history.NewRing(80),
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for _, r := range "cmrcmr" {
			m.Update(keyMsg(r))
		}
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Update blocked sending into a full command buffer")
	}
	if m.sortBy != procs.SortMem {
		t.Fatalf("sortBy = %q, want %q after final m keypress", m.sortBy, procs.SortMem)
	}
}

// The poll goroutine keeps consuming commands while its sample hand-off
// is pending, so the two goroutines cannot deadlock against each other.
func TestPollLoopDrainsCommandsDuringSampleHandoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	eng := engine.New(engine.Options{Reader: stubReader{}, DisableAccel: true})
	out := make(chan model.Sample)
	// Unbuffered: each completed send proves the loop received it.
	cmds := make(chan pollCmd)
	go pollLoop(ctx, eng, 5*time.Millisecond, procs.SortCPU, 5, cmds, out)

	// Let at least one tick fire with nobody reading out.
	time.Sleep(30 * time.Millisecond)
	for i := 0; i < 8; i++ {
		select {
		case cmds <- cmdSortMem:
		case <-time.After(2 * time.Second):
			t.Fatalf("command %d stuck while a sample hand-off was pending", i)
		}
	}
	select {
	case <-out:
	case <-time.After(2 * time.Second):
		t.Fatal("pending sample never delivered after commands drained")
	}
}

func TestFreshModelRendersBeforeFirstSample(t *testing.T) {
	eng := engine.New(engine.Options{Reader: stubReader{}, DisableAccel: true})
	m := New(config.Config{Interval: time.Hour, Sort: "cpu"}, eng)
	defer m.ctxCancel()

	if m.latest.Timestamp.IsZero() {
		t.Fatal("fresh model carries a zero timestamp")
	}
	view := m.View()
	if !strings.Contains(view, "Host Telemetry") {
		t.Fatal("fresh view is missing the header")
	}
	if !strings.Contains(view, "unprobed") {
		t.Fatal("fresh view should show the unprobed engine mode")
	}
}
