package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Dicklesworthstone/host_telemetry_engine/internal/config"
	"github.com/Dicklesworthstone/host_telemetry_engine/internal/engine"
	"github.com/Dicklesworthstone/host_telemetry_engine/internal/history"
	"github.com/Dicklesworthstone/host_telemetry_engine/internal/model"
	"github.com/Dicklesworthstone/host_telemetry_engine/internal/procs"
)

// pollCmd is a control message for the sampling goroutine. The engine is
// touched by that goroutine only, which keeps its delta state single-writer.
type pollCmd int

const (
	cmdSortCPU pollCmd = iota
	cmdSortMem
	cmdResetNet
)

// Model renders live samples from the engine.
type Model struct {
	cfg       config.Config
	latest    model.Sample
	stream    <-chan model.Sample
	cmds      chan<- pollCmd
	ctxCancel context.CancelFunc
	sortBy    procs.SortKey

	upHist   *history.Ring
	downHist *history.Ring

	width  int
	height int
}

func New(cfg config.Config, eng *engine.Engine) *Model {
	ctx, cancel := context.WithCancel(context.Background())
	stream := make(chan model.Sample)
	cmds := make(chan pollCmd, 4)
	sortBy := procs.SortKey(cfg.Sort)
	limit := cfg.Limit
	if limit == 0 {
		limit = 64
	}
	go pollLoop(ctx, eng, cfg.Interval, sortBy, limit, cmds, stream)
	return &Model{
		cfg:       cfg,
		latest:    model.Zero(),
		stream:    stream,
		cmds:      cmds,
		ctxCancel: cancel,
		sortBy:    sortBy,
		upHist:    history.NewRing(80),
		downHist:  history.NewRing(80),
		width:     120,
		height:    40,
	}
}

func pollLoop(ctx context.Context, eng *engine.Engine, interval time.Duration,
	sortBy procs.SortKey, limit int, cmds <-chan pollCmd, out chan<- model.Sample) {
	eng.Init()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	defer close(out)
	for {
		select {
		case <-ticker.C:
			samp := eng.Snapshot(interval, sortBy, limit)
			// Keep servicing commands while the sample hand-off is
			// pending, so a burst of keypresses can never wedge both
			// goroutines against each other.
			delivered := false
			for !delivered {
				select {
				case out <- samp:
					delivered = true
				case c := <-cmds:
					sortBy = applyCmd(eng, sortBy, c)
				case <-ctx.Done():
					return
				}
			}
		case c := <-cmds:
			sortBy = applyCmd(eng, sortBy, c)
		case <-ctx.Done():
			return
		}
	}
}

func applyCmd(eng *engine.Engine, sortBy procs.SortKey, c pollCmd) procs.SortKey {
	switch c {
	case cmdSortCPU:
		return procs.SortCPU
	case cmdSortMem:
		return procs.SortMem
	case cmdResetNet:
		eng.ResetNetworkBaseline()
	}
	return sortBy
}

// send must never block the Bubble Tea event loop. On a full buffer the
// command is dropped; the repeated keypress that filled it carried the
// same intent, so nothing is lost.
func (m *Model) send(c pollCmd) {
	select {
	case m.cmds <- c:
	default:
	}
}

// Messages
type tickMsg struct{}

func tickCmd() tea.Cmd { return tea.Tick(time.Second/5, func(time.Time) tea.Msg { return tickMsg{} }) }

func (m *Model) Init() tea.Cmd { return tickCmd() }

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.ctxCancel()
			return m, tea.Quit
		case "c":
			m.sortBy = procs.SortCPU
			m.send(cmdSortCPU)
		case "m":
			m.sortBy = procs.SortMem
			m.send(cmdSortMem)
		case "r":
			m.send(cmdResetNet)
		}
	case tickMsg:
		select {
		case samp, ok := <-m.stream:
			if ok {
				m.latest = samp
				m.upHist.Push(samp.IO.NetSentBps)
				m.downHist.Push(samp.IO.NetRecvBps)
			}
		default:
		}
		return m, tickCmd()
	}
	return m, nil
}

// Styles
var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("45"))
	subtleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("81")).Bold(true)
	gaugeFill   = "█"
	gaugeEmpty  = "░"
	sparkRunes  = []rune("▁▂▃▄▅▆▇█")
	cardStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("60")).
			Padding(0, 1).
			MarginRight(1)
)

// Sparkline normalization cap, display only; stored rates are uncapped.
const sparkCapBps = 10 * 1024 * 1024

func (m *Model) View() string {
	s := m.latest
	header := titleStyle.Render("Host Telemetry") + "  " +
		subtleStyle.Render(s.Timestamp.Format("Mon Jan 2 15:04:05 MST 2006"))

	var cpuLines []string
	for i, pct := range s.CPUPercents {
		cpuLines = append(cpuLines, fmt.Sprintf("%2d %s", i, gaugeBar(pct, 20)))
	}
	cpuLines = append(cpuLines, fmt.Sprintf("load %.2f %.2f %.2f",
		s.Load.Load1, s.Load.Load5, s.Load.Load15))
	cpuCard := card("CPU", strings.Join(cpuLines, "\n"))

	memCard := card("Memory",
		fmt.Sprintf("%s  %.1f/%.1f GiB\nSwap %3.0f%%",
			gaugeBar(s.Memory.Percent, 20),
			bytesToGiB(s.Memory.Used),
			bytesToGiB(s.Memory.Total),
			pct(s.Memory.SwapUsed, s.Memory.SwapTotal)))

	io := s.IO
	netCard := card("Network",
		fmt.Sprintf("UP   %8.1f KB/s %s\nDOWN %8.1f KB/s %s\nsession %s sent / %s recv",
			io.NetSentBps/1024, sparkline(m.upHist.Values(), sparkCapBps, 15),
			io.NetRecvBps/1024, sparkline(m.downHist.Values(), sparkCapBps, 15),
			humanBytes(s.Network.BytesSent), humanBytes(s.Network.BytesRecv)))

	ioCard := card("Disk I/O",
		fmt.Sprintf("R %6.1f MB/s  W %6.1f MB/s\nlat r %.1fms w %.1fms",
			io.DiskReadBps/(1024*1024), io.DiskWriteBps/(1024*1024),
			io.ReadLatMs, io.WriteLatMs))

	var diskLines []string
	for i, d := range s.Disks {
		if i >= 6 {
			break
		}
		diskLines = append(diskLines, fmt.Sprintf("%-14s %-6s %s",
			truncate(d.Mountpoint, 14), d.FSType, gaugeBar(d.Percent, 12)))
	}
	diskCard := card("Storage", strings.Join(diskLines, "\n"))

	tempCard := ""
	if s.TempsAvailable {
		lines := make([]string, 0, len(s.Temps))
		for i, t := range s.Temps {
			if i >= 4 {
				break
			}
			lines = append(lines, fmt.Sprintf("%-16s %5.1f°C", truncate(t.Zone, 16), t.C))
		}
		tempCard = card("Thermal", strings.Join(lines, "\n"))
	} else {
		tempCard = card("Thermal", subtleStyle.Render("N/A"))
	}

	topTable := card(fmt.Sprintf("Top (%s)", m.sortBy),
		renderTable(s.Top, 12))

	line1 := lipgloss.JoinHorizontal(lipgloss.Top, cpuCard, memCard, netCard, ioCard)
	line2 := lipgloss.JoinHorizontal(lipgloss.Top, topTable, diskCard, tempCard)
	footer := subtleStyle.Render(fmt.Sprintf("q quit · c/m sort · r reset net session · %s", s.Mode))

	return lipgloss.JoinVertical(lipgloss.Left, header, line1, line2, footer)
}

// Helpers
func gaugeBar(pct float64, width int) string {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	filled := int((pct / 100) * float64(width))
	if filled > width {
		filled = width
	}
	return fmt.Sprintf("[%s%s] %5.1f%%",
		strings.Repeat(gaugeFill, filled),
		strings.Repeat(gaugeEmpty, width-filled),
		pct)
}

// sparkline renders the last n values scaled against ceiling. Values
// above the ceiling render as full blocks; the ceiling is display-only.
func sparkline(vals []float64, ceiling float64, n int) string {
	if ceiling <= 0 {
		return ""
	}
	if len(vals) > n {
		vals = vals[len(vals)-n:]
	}
	var b strings.Builder
	for _, v := range vals {
		if v < 0 {
			v = 0
		}
		if v > ceiling {
			v = ceiling
		}
		idx := int(v / ceiling * float64(len(sparkRunes)-1))
		b.WriteRune(sparkRunes[idx])
	}
	return b.String()
}

func card(title, body string) string {
	titleStr := labelStyle.Render(title)
	content := titleStr + "\n" + body
	return cardStyle.Render(content)
}

func renderTable(rows []model.ProcessRecord, limit int) string {
	max := min(limit, len(rows))
	var b strings.Builder
	fmt.Fprintf(&b, "%-18s %-7s %6s %6s\n", "name", "pid", "cpu", "mem")
	for i := 0; i < max; i++ {
		r := rows[i]
		fmt.Fprintf(&b, "%-18s %-7d %6.1f %6.1f\n",
			truncate(r.Name, 18), r.PID, r.CPUPercent, r.MemPercent)
	}
	return strings.TrimRight(b.String(), "\n")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func pct(used, total uint64) float64 {
	if total == 0 {
		return 0
	}
	return float64(used) * 100 / float64(total)
}

func humanBytes(b uint64) string {
	switch {
	case b >= 1<<30:
		return fmt.Sprintf("%.1f GiB", float64(b)/(1<<30))
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(b)/(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(b)/(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}

func bytesToGiB(b uint64) float64 { return float64(b) / (1024 * 1024 * 1024) }

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// RunTUI starts the Bubble Tea program.
func RunTUI(cfg config.Config, eng *engine.Engine) error {
	prog := tea.NewProgram(New(cfg, eng), tea.WithAltScreen())
	_, err := prog.Run()
	return err
}
