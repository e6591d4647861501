// Package progress renders a calculation run's pipeline/segment/optimize
// stages to the terminal as they happen.
package progress

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/papapumpkin/quasar-thermo/internal/thermo"
)

// Color palette.
var (
	colorCyan   = lipgloss.Color("#00BFFF")
	colorGreen  = lipgloss.Color("#00FF87")
	colorYellow = lipgloss.Color("#FFD700")
	colorRed    = lipgloss.Color("#FF5F5F")
	colorDim    = lipgloss.Color("#666666")
	colorWhite  = lipgloss.Color("#FFFFFF")
)

var (
	styleLabel = lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
	styleDone  = lipgloss.NewStyle().Foreground(colorGreen)
	styleWarn  = lipgloss.NewStyle().Foreground(colorYellow)
	styleFail  = lipgloss.NewStyle().Foreground(colorRed)
	styleDim   = lipgloss.NewStyle().Foreground(colorDim)
	styleValue = lipgloss.NewStyle().Foreground(colorWhite)
)

// StageStatus is a pipeline/segment/optimize/calculate stage's terminal
// outcome for display purposes.
type StageStatus int

const (
	StagePending StageStatus = iota
	StageRunning
	StageDone
	StageWarn
	StageFailed
)

// StageUpdate is a tea.Msg reporting one stage's progress; callers send
// these into the bubbletea program as a calculation advances through the
// Filter Pipeline, Segment Builder, Optimal Record Selector and Multi-Phase
// Calculator.
type StageUpdate struct {
	Name    string
	Status  StageStatus
	Detail  string
}

// Model is the bubbletea root model for the progress display: one row per
// stage, updated in place as StageUpdates arrive.
type Model struct {
	Formula string
	order   []string
	rows    map[string]StageUpdate
	width   int
}

// NewModel creates a progress display for a calculation on formula.
func NewModel(formula string) Model {
	return Model{Formula: formula, rows: make(map[string]StageUpdate)}
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case StageUpdate:
		if _, seen := m.rows[msg.Name]; !seen {
			m.order = append(m.order, msg.Name)
		}
		m.rows[msg.Name] = msg
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", styleLabel.Render("calculating"), styleValue.Render(m.Formula))
	for _, name := range m.order {
		row := m.rows[name]
		b.WriteString(renderRow(row))
		b.WriteString("\n")
	}
	return b.String()
}

func renderRow(row StageUpdate) string {
	icon, style := iconFor(row.Status)
	line := fmt.Sprintf("  %s %-28s", style.Render(icon), row.Name)
	if row.Detail != "" {
		line += " " + styleDim.Render(row.Detail)
	}
	return line
}

func iconFor(status StageStatus) (string, lipgloss.Style) {
	switch status {
	case StageDone:
		return "✓", styleDone
	case StageWarn:
		return "!", styleWarn
	case StageFailed:
		return "✗", styleFail
	case StageRunning:
		return "…", styleLabel
	default:
		return "·", styleDim
	}
}

// StagesFromFilterResult converts a filter pipeline's per-stage metrics
// into StageUpdates so a caller can feed them straight into the Model.
func StagesFromFilterResult(stages []thermo.StageMetric) []StageUpdate {
	updates := make([]StageUpdate, 0, len(stages))
	for _, s := range stages {
		status := StageDone
		if s.CountOut == 0 {
			status = StageFailed
		}
		detail := fmt.Sprintf("%d -> %d (%.0f%% reduced)", s.CountIn, s.CountOut, s.ReductionRate*100)
		updates = append(updates, StageUpdate{Name: s.Name, Status: status, Detail: detail})
	}
	return updates
}
