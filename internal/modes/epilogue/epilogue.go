// internal/modes/epilogue/epilogue.go
//
// Epilogue mode shows the quest summary once the final turn has been read.
// Starting a new quest archives this one and returns to party setup.

package epilogue

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/pixel-quest/internal/modes"
	"github.com/kingrea/pixel-quest/internal/session"
)

// Mode handles the complete phase
type Mode struct {
	modes.BaseMode
	snap       session.Snapshot
	chronicles int
	errorMsg   string
}

// New creates a new Epilogue mode
func New() *Mode {
	return &Mode{
		BaseMode: modes.NewBaseMode("Epilogue", session.PhaseComplete),
	}
}

// Init captures the finished quest for display.
func (m *Mode) Init(ctx *modes.ModeContext) tea.Cmd {
	m.SetContext(ctx)
	m.SetComplete(false)
	m.errorMsg = ""
	m.chronicles = 0
	if ctx != nil && ctx.Controller != nil {
		m.snap = ctx.Controller.Snapshot()
	}
	if ctx != nil && ctx.Chronicles != nil {
		ids, err := ctx.Chronicles.List()
		if err != nil {
			m.logWarn("Could not read chronicles: %v", err)
		}
		m.chronicles = len(ids)
	}
	m.SetStatusMsg("Press Enter to start a new quest")
	return nil
}

// Update handles messages for the epilogue mode
func (m *Mode) Update(msg tea.Msg) (modes.Mode, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch keyMsg.String() {
	case "enter", "n":
		return m.startNewQuest()
	}
	return m, nil
}

func (m *Mode) startNewQuest() (modes.Mode, tea.Cmd) {
	ctx := m.Context()
	if ctx == nil || ctx.Controller == nil {
		return m, nil
	}
	if err := ctx.Controller.End(); err != nil {
		m.errorMsg = err.Error()
		m.logWarn("Chronicle not saved: %v", err)
	}
	m.SetComplete(true)
	return m, modes.Complete(session.PhaseCharacterSetup)
}

// View renders the epilogue mode
func (m *Mode) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#6BCB77")).
		MarginBottom(1)
	labelStyle := lipgloss.NewStyle().Width(16).Foreground(lipgloss.Color("#AAAAAA"))
	valueStyle := lipgloss.NewStyle().Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))

	var b strings.Builder
	b.WriteString(titleStyle.Render("★ QUEST COMPLETE ★"))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render("Heroes") + valueStyle.Render(m.snap.Roster.JoinNames(", ")) + "\n")
	b.WriteString(labelStyle.Render("Turns") + valueStyle.Render(fmt.Sprintf("%d", m.snap.TotalTurns)) + "\n")
	b.WriteString(labelStyle.Render("Difficulty") + valueStyle.Render(strings.ToUpper(string(m.snap.Settings.Difficulty))) + "\n")
	if m.snap.Story != "" {
		b.WriteString("\n" + lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1).
			Width(70).
			Render(m.snap.Story) + "\n")
	}
	b.WriteString("\n" + mutedStyle.Render(fmt.Sprintf("%d chronicle(s) already in the archive", m.chronicles)) + "\n\n")
	b.WriteString(lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#5B8DEF")).
		Foreground(lipgloss.Color("#5B8DEF")).
		Bold(true).
		Padding(0, 2).
		Render("Start New Quest ▸"))

	if m.errorMsg != "" {
		errBlock := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#FF6B6B")).
			Padding(0, 1).
			Render(fmt.Sprintf("⚠ %s", m.errorMsg))
		b.WriteString("\n\n" + errBlock)
	}
	b.WriteString("\n" + mutedStyle.Render(m.StatusMsg()))
	return b.String()
}

func (m *Mode) logWarn(format string, args ...any) {
	ctx := m.Context()
	if ctx == nil || ctx.Logbook == nil {
		return
	}
	ctx.Logbook.Warn(format, args...)
}
