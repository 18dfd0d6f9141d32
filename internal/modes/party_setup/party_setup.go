// internal/modes/party_setup/party_setup.go
//
// Party Setup mode collects the adventurers for a new quest.
// Each row is a name, a class and a level; blank names are dropped on submit.

package party_setup

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/pixel-quest/internal/modes"
	"github.com/kingrea/pixel-quest/internal/party"
	"github.com/kingrea/pixel-quest/internal/session"
)

type field int

const (
	fieldName field = iota
	fieldClass
	fieldLevel
	fieldCount
)

type row struct {
	name  textinput.Model
	class party.Class
	level int
}

// Mode handles the character setup phase
type Mode struct {
	modes.BaseMode
	rows     []row
	selected int
	field    field
	errorMsg string
}

// New creates a new Party Setup mode
func New() *Mode {
	return &Mode{
		BaseMode: modes.NewBaseMode("Party Setup", session.PhaseCharacterSetup),
	}
}

// Init starts with a single empty Fighter row.
func (m *Mode) Init(ctx *modes.ModeContext) tea.Cmd {
	m.SetContext(ctx)
	m.SetComplete(false)
	m.rows = nil
	m.selected = 0
	m.field = fieldName
	m.errorMsg = ""
	m.addRow()
	m.SetStatusMsg("Name your heroes, then press Enter to continue")
	m.logInfo("Assembling a new party")
	return m.focus()
}

// Update handles messages for the party setup mode
func (m *Mode) Update(msg tea.Msg) (modes.Mode, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, m.updateInput(msg)
	}

	switch keyMsg.String() {
	case "enter":
		return m.submit()
	case "tab":
		m.field = (m.field + 1) % fieldCount
		return m, m.focus()
	case "shift+tab":
		m.field = (m.field + fieldCount - 1) % fieldCount
		return m, m.focus()
	case "up":
		if m.selected > 0 {
			m.selected--
		}
		return m, m.focus()
	case "down":
		if m.selected < len(m.rows)-1 {
			m.selected++
		}
		return m, m.focus()
	case "ctrl+a":
		if len(m.rows) >= party.MaxRosterSize {
			m.SetStatusMsg(fmt.Sprintf("A party holds at most %d heroes", party.MaxRosterSize))
			return m, nil
		}
		m.addRow()
		m.selected = len(m.rows) - 1
		m.field = fieldName
		return m, m.focus()
	case "ctrl+d":
		m.removeRow()
		return m, m.focus()
	case "left", "right":
		step := 1
		if keyMsg.String() == "left" {
			step = -1
		}
		switch m.field {
		case fieldClass:
			m.rows[m.selected].class = m.rows[m.selected].class.Next(step)
			return m, nil
		case fieldLevel:
			m.rows[m.selected].level = party.ClampLevel(m.rows[m.selected].level + step)
			return m, nil
		}
	}

	return m, m.updateInput(msg)
}

func (m *Mode) updateInput(msg tea.Msg) tea.Cmd {
	if m.field != fieldName || len(m.rows) == 0 {
		return nil
	}
	var cmd tea.Cmd
	m.rows[m.selected].name, cmd = m.rows[m.selected].name.Update(msg)
	return cmd
}

func (m *Mode) submit() (modes.Mode, tea.Cmd) {
	ctx := m.Context()
	if ctx == nil || ctx.Controller == nil {
		return m, nil
	}
	chars := m.characters()
	if err := ctx.Controller.SubmitRoster(chars); err != nil {
		if errors.Is(err, party.ErrEmptyRoster) {
			m.errorMsg = "Every quest needs at least one named hero"
		} else {
			m.errorMsg = err.Error()
		}
		m.logWarn("Party rejected: %v", err)
		return m, nil
	}
	m.errorMsg = ""
	m.SetComplete(true)
	roster := ctx.Controller.Snapshot().Roster
	m.SetStatusMsg(fmt.Sprintf("%d hero(es) ready", len(roster)))
	return m, modes.Complete(session.PhaseGameSetup)
}

// characters returns every row as entered, including blank ones.
func (m *Mode) characters() []party.Character {
	chars := make([]party.Character, len(m.rows))
	for i, r := range m.rows {
		chars[i] = party.Character{Name: r.name.Value(), Class: r.class, Level: r.level}
	}
	return chars
}

func (m *Mode) addRow() {
	c := party.NewCharacter()
	input := textinput.New()
	input.Placeholder = "Hero name"
	input.CharLimit = 32
	input.Width = 20
	input.Prompt = ""
	input.Cursor.SetMode(cursor.CursorStatic)
	m.rows = append(m.rows, row{name: input, class: c.Class, level: c.Level})
}

func (m *Mode) removeRow() {
	if len(m.rows) <= 1 {
		m.rows[0].name.SetValue("")
		return
	}
	m.rows = append(m.rows[:m.selected], m.rows[m.selected+1:]...)
	if m.selected >= len(m.rows) {
		m.selected = len(m.rows) - 1
	}
}

func (m *Mode) focus() tea.Cmd {
	var cmd tea.Cmd
	for i := range m.rows {
		if i == m.selected && m.field == fieldName {
			cmd = m.rows[i].name.Focus()
			continue
		}
		m.rows[i].name.Blur()
	}
	return cmd
}

// View renders the party setup mode
func (m *Mode) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FFD93D")).
		MarginBottom(1)
	cellStyle := lipgloss.NewStyle().Width(24)
	activeStyle := cellStyle.Copy().
		Foreground(lipgloss.Color("#5B8DEF")).
		Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	statusStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888888")).
		MarginTop(1)

	var b strings.Builder
	b.WriteString(titleStyle.Render("⚔ CREATE YOUR PARTY"))
	b.WriteString("\n")
	header := lipgloss.JoinHorizontal(lipgloss.Top,
		mutedStyle.Copy().Width(4).Render(""),
		mutedStyle.Copy().Width(24).Render("NAME"),
		mutedStyle.Copy().Width(24).Render("CLASS"),
		mutedStyle.Copy().Width(24).Render("LEVEL"),
	)
	b.WriteString(header + "\n")

	for i, r := range m.rows {
		marker := "  "
		if i == m.selected {
			marker = "▸ "
		}
		cells := make([]string, fieldCount)
		values := []string{
			r.name.View(),
			fmt.Sprintf("◂ %s ▸", r.class),
			fmt.Sprintf("◂ %d ▸", r.level),
		}
		for f := range values {
			style := cellStyle
			if i == m.selected && field(f) == m.field {
				style = activeStyle
			}
			cells[f] = style.Render(values[f])
		}
		line := lipgloss.JoinHorizontal(lipgloss.Top, append([]string{lipgloss.NewStyle().Width(4).Render(marker)}, cells...)...)
		b.WriteString(line + "\n")
	}

	b.WriteString(mutedStyle.Render(fmt.Sprintf("\n%d/%d heroes · tab: field · ↑/↓: row · ←/→: change · ctrl+a: add · ctrl+d: remove · enter: continue",
		len(m.rows), party.MaxRosterSize)))

	if m.errorMsg != "" {
		errBlock := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#FF6B6B")).
			Padding(0, 1).
			Render(fmt.Sprintf("⚠ %s", m.errorMsg))
		b.WriteString("\n\n" + errBlock)
	}
	b.WriteString("\n" + statusStyle.Render(m.StatusMsg()))
	return b.String()
}

func (m *Mode) logInfo(format string, args ...any) {
	ctx := m.Context()
	if ctx == nil || ctx.Logbook == nil {
		return
	}
	ctx.Logbook.Info(format, args...)
}

func (m *Mode) logWarn(format string, args ...any) {
	ctx := m.Context()
	if ctx == nil || ctx.Logbook == nil {
		return
	}
	ctx.Logbook.Warn(format, args...)
}
