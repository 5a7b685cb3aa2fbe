// Package tui renders the live progress surface for a batch run and turns
// key presses into the cooperative cancellation signal the engine polls.
package tui

import (
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rshade/parceltrack/internal/engine"
)

// Default dimensions for the sync model.
const (
	syncDefaultWidth = 60
	barHorizPadding  = 4
)

// ProgressMsg reports that a row is about to be looked up. It carries a
// snapshot of the run counters for display.
type ProgressMsg struct {
	Current        int
	Total          int
	TrackingNumber string
	Succeeded      int
	Failed         int
}

// DoneMsg reports that the run finished, in whatever terminal state.
type DoneMsg struct {
	Summary engine.Summary
	Err     error
}

// SyncModel is the Bubble Tea model for a batch run in progress. The runner
// feeds it ProgressMsg/DoneMsg values via Program.Send from its own
// goroutine; the model never calls into the runner except through the
// cancel flag.
type SyncModel struct {
	bar    progress.Model
	cancel *engine.CancelFlag

	current    int
	total      int
	tracking   string
	succeeded  int
	failed     int
	cancelling bool

	done    bool
	summary engine.Summary
	err     error

	width int
}

// NewSyncModel creates the progress model for a run over total rows.
func NewSyncModel(cancel *engine.CancelFlag, total int) *SyncModel {
	bar := progress.New(progress.WithDefaultGradient())
	return &SyncModel{
		bar:    bar,
		cancel: cancel,
		total:  total,
		width:  syncDefaultWidth,
	}
}

// Init implements tea.Model.
func (m *SyncModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *SyncModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.bar.Width = msg.Width - barHorizPadding
		if m.bar.Width > syncDefaultWidth {
			m.bar.Width = syncDefaultWidth
		}
		return m, nil

	case ProgressMsg:
		m.current = msg.Current
		m.total = msg.Total
		m.tracking = msg.TrackingNumber
		m.succeeded = msg.Succeeded
		m.failed = msg.Failed
		return m, nil

	case DoneMsg:
		m.done = true
		m.summary = msg.Summary
		m.err = msg.Err
		return m, tea.Quit

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	return m, nil
}

// handleKeyMsg processes keyboard input. Any of q, esc, or ctrl+c raises
// the cancel flag; the run stops at the next row boundary, so the model
// keeps displaying until the DoneMsg arrives.
//
//nolint:exhaustive // Only cancellation keys are relevant while a run is active.
func (m *SyncModel) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.requestCancel()
		return m, nil
	case tea.KeyRunes:
		if string(msg.Runes) == "q" {
			m.requestCancel()
		}
		return m, nil
	}
	return m, nil
}

func (m *SyncModel) requestCancel() {
	if m.cancel != nil {
		m.cancel.Cancel()
	}
	m.cancelling = true
}

// Cancelling reports whether cancellation has been requested from the TUI.
func (m *SyncModel) Cancelling() bool {
	return m.cancelling
}

// Done reports whether the run has finished.
func (m *SyncModel) Done() bool {
	return m.done
}

// Summary returns the final run summary. Valid once Done is true.
func (m *SyncModel) Summary() engine.Summary {
	return m.summary
}

// View implements tea.Model.
func (m *SyncModel) View() string {
	if m.done {
		out := RenderRunSummary(m.summary)
		if m.err != nil {
			out += "\n" + errorStyle.Render("Error: "+m.err.Error()) + "\n"
		}
		return out
	}

	percent := 0.0
	if m.total > 0 {
		percent = float64(m.current) / float64(m.total)
	}

	out := titleStyle.Render("Parcel status sync") + "\n\n"
	out += m.bar.ViewAs(percent) + "\n\n"
	out += statusLineStyle.Render(
		summaryPrinter.Sprintf("Processing %d/%d - %s", m.current, m.total, m.tracking),
	) + "\n"
	out += countStyle.Render(
		summaryPrinter.Sprintf("ok %d · failed %d", m.succeeded, m.failed),
	) + "\n\n"

	if m.cancelling {
		out += cancelStyle.Render("Cancelling after the current row...") + "\n"
	} else {
		out += helpStyle.Render("q/esc: cancel") + "\n"
	}
	return out
}

var (
	titleStyle      = lipgloss.NewStyle().Bold(true)
	statusLineStyle = lipgloss.NewStyle()
	countStyle      = lipgloss.NewStyle().Faint(true)
	helpStyle       = lipgloss.NewStyle().Faint(true)
	cancelStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)
