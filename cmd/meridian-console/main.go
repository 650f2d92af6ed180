package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"meridian/internal/config"
	"meridian/internal/domain"
	"meridian/internal/store"
)

// Styles.
var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	headerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Background(lipgloss.Color("236"))
	gainStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	lossStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	statusStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
)

const listLimit = 100

// Messages.
type runsLoadedMsg struct {
	runs []store.RunSummary
	err  error
}

type runDetailMsg struct {
	run *store.RunRecord
	err error
}

type model struct {
	runs     *store.SQLiteStore
	list     []store.RunSummary
	cursor   int
	detail   *store.RunRecord
	viewport viewport.Model
	ready    bool
	width    int
	height   int
	errMsg   string
}

func initialModel(runs *store.SQLiteStore) model {
	return model{runs: runs}
}

func (m model) Init() tea.Cmd {
	return m.loadRuns()
}

func (m model) loadRuns() tea.Cmd {
	runs := m.runs
	return func() tea.Msg {
		list, err := runs.ListRuns(context.Background(), listLimit)
		return runsLoadedMsg{runs: list, err: err}
	}
}

func (m model) loadDetail(id int64) tea.Cmd {
	runs := m.runs
	return func() tea.Msg {
		run, err := runs.GetRun(context.Background(), id)
		return runDetailMsg{run: run, err: err}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.detail != nil {
				m.detail = nil
				m.viewport.SetContent(m.renderContent())
				return m, nil
			}
			return m, tea.Quit
		case "up", "k":
			if m.detail == nil && m.cursor > 0 {
				m.cursor--
				m.viewport.SetContent(m.renderContent())
			} else if m.detail != nil {
				m.viewport.ScrollUp(1)
			}
			return m, nil
		case "down", "j":
			if m.detail == nil && m.cursor < len(m.list)-1 {
				m.cursor++
				m.viewport.SetContent(m.renderContent())
			} else if m.detail != nil {
				m.viewport.ScrollDown(1)
			}
			return m, nil
		case "enter":
			if m.detail == nil && len(m.list) > 0 {
				return m, m.loadDetail(m.list[m.cursor].ID)
			}
			return m, nil
		case "r":
			m.detail = nil
			return m, m.loadRuns()
		}

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-2)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - 2
		}
		m.viewport.SetContent(m.renderContent())
		return m, nil

	case runsLoadedMsg:
		if msg.err != nil {
			m.errMsg = msg.err.Error()
		} else {
			m.list = msg.runs
			m.errMsg = ""
			if m.cursor >= len(m.list) {
				m.cursor = 0
			}
		}
		m.viewport.SetContent(m.renderContent())
		return m, nil

	case runDetailMsg:
		if msg.err != nil {
			m.errMsg = msg.err.Error()
		} else {
			m.detail = msg.run
			m.errMsg = ""
		}
		m.viewport.SetContent(m.renderContent())
		m.viewport.GotoTop()
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m model) View() string {
	if !m.ready {
		return "loading..."
	}
	help := "q quit · enter detail · esc back · r reload"
	if m.errMsg != "" {
		help = lossStyle.Render(m.errMsg)
	}
	return m.viewport.View() + "\n" + dimStyle.Render(help)
}

func (m model) renderContent() string {
	if m.detail != nil {
		return m.renderDetail(m.detail)
	}
	return m.renderList()
}

func (m model) renderList() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("meridian · archived runs"))
	b.WriteString("\n\n")

	if len(m.list) == 0 {
		b.WriteString(dimStyle.Render("no archived runs"))
		return b.String()
	}

	b.WriteString(headerStyle.Render(fmt.Sprintf("%-5s %-8s %-10s  %-10s %-6s %-8s %10s %7s",
		"ID", "SYMBOL", "START", "END", "TF", "STATUS", "PNL", "TRADES")))
	b.WriteString("\n")

	for i, s := range m.list {
		line := fmt.Sprintf("%-5d %-8s %-10s  %-10s %-6s %-8s %10.2f %7d",
			s.ID, s.Symbol,
			s.Start.Format("2006-01-02"), s.End.Format("2006-01-02"),
			s.Timeframe, s.Status, s.FinalPnL, s.TradeCount)
		if i == m.cursor {
			b.WriteString(selectedStyle.Render(line))
		} else if s.FinalPnL >= 0 {
			b.WriteString(gainStyle.Render(line))
		} else {
			b.WriteString(lossStyle.Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m model) renderDetail(run *store.RunRecord) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("run #%d · %s · %s .. %s (%s)",
		run.ID, run.Symbol,
		run.Start.Format("2006-01-02"), run.End.Format("2006-01-02"), run.Timeframe)))
	b.WriteString("\n\n")

	pnlStyle := gainStyle
	if run.FinalPnL < 0 {
		pnlStyle = lossStyle
	}
	b.WriteString(fmt.Sprintf("  status:   %s\n", statusStyle.Render(string(run.Status))))
	b.WriteString(fmt.Sprintf("  initial:  %.2f\n", run.InitialCapital))
	b.WriteString(fmt.Sprintf("  pnl:      %s\n", pnlStyle.Render(fmt.Sprintf("%+.2f", run.FinalPnL))))
	b.WriteString(fmt.Sprintf("  trades:   %d\n\n", len(run.Trades)))

	if len(run.Trades) > 0 {
		b.WriteString(headerStyle.Render("  TIME              SIDE        PRICE    SHARES"))
		b.WriteString("\n")
		for _, tr := range run.Trades {
			line := fmt.Sprintf("  %-16s  %-4s  %11.2f  %8.0f",
				tr.Time.Format("2006-01-02 15:04"), tr.Side, tr.Price, tr.Shares)
			if tr.Side == domain.SideBuy {
				b.WriteString(gainStyle.Render(line))
			} else {
				b.WriteString(lossStyle.Render(line))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if len(run.Equity) > 1 {
		b.WriteString(headerStyle.Render("  equity"))
		b.WriteString("\n")
		b.WriteString(sparkline(run.Equity, min(m.width-4, 80)))
		b.WriteString("\n")
	}
	return b.String()
}

// sparkline renders the equity curve as one row of block characters.
func sparkline(equity []domain.EquityPoint, width int) string {
	if width < 2 {
		width = 2
	}
	blocks := []rune("▁▂▃▄▅▆▇█")

	// Downsample to the target width.
	values := make([]float64, 0, width)
	step := float64(len(equity)) / float64(width)
	if step < 1 {
		step = 1
	}
	for f := 0.0; int(f) < len(equity) && len(values) < width; f += step {
		values = append(values, equity[int(f)].TotalValue)
	}

	lo, hi := values[0], values[0]
	for _, v := range values {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}

	var b strings.Builder
	b.WriteString("  ")
	for _, v := range values {
		idx := 0
		if hi > lo {
			idx = int((v - lo) / (hi - lo) * float64(len(blocks)-1))
		}
		b.WriteRune(blocks[idx])
	}
	b.WriteString(fmt.Sprintf("  %.0f .. %.0f", lo, hi))
	return b.String()
}

func main() {
	cfgPath := "config/meridian.yaml"
	if p := os.Getenv("MERIDIAN_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	runs, err := store.NewSQLiteStore(cfg.Storage.SQLitePath)
	if err != nil {
		log.Fatalf("opening results database: %v", err)
	}
	defer runs.Close()

	p := tea.NewProgram(initialModel(runs), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatalf("console error: %v", err)
	}
}
