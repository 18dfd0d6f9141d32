// internal/modes/quest_setup/quest_setup.go
//
// Quest Setup mode fixes the session settings and starts the adventure.
// The chosen settings become the defaults for the next quest.

package quest_setup

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/pixel-quest/internal/modes"
	"github.com/kingrea/pixel-quest/internal/session"
	"github.com/kingrea/pixel-quest/internal/story"
)

type field int

const (
	fieldLength field = iota
	fieldDifficulty
	fieldDice
	fieldVoice
	fieldCount
)

// Mode handles the game setup phase
type Mode struct {
	modes.BaseMode
	settings   story.Settings
	difficulty list.Model
	field      field
	errorMsg   string
}

type difficultyItem struct {
	difficulty story.Difficulty
}

func (i difficultyItem) Title() string       { return i.difficulty.Label() }
func (i difficultyItem) Description() string { return i.difficulty.Description() }
func (i difficultyItem) FilterValue() string { return string(i.difficulty) }

// New creates a new Quest Setup mode
func New() *Mode {
	items := make([]list.Item, len(story.Difficulties))
	for i, d := range story.Difficulties {
		items[i] = difficultyItem{difficulty: d}
	}
	delegate := list.NewDefaultDelegate()
	delegate.SetHeight(2)
	delegate.SetSpacing(0)
	difficulty := list.New(items, delegate, 48, 10)
	difficulty.Title = "Difficulty"
	difficulty.SetShowStatusBar(false)
	difficulty.SetFilteringEnabled(false)
	difficulty.SetShowHelp(false)
	difficulty.SetShowPagination(false)
	difficulty.KeyMap.Quit.SetEnabled(false)

	return &Mode{
		BaseMode:   modes.NewBaseMode("Quest Setup", session.PhaseGameSetup),
		difficulty: difficulty,
	}
}

// Init loads the remembered quest defaults into the form.
func (m *Mode) Init(ctx *modes.ModeContext) tea.Cmd {
	m.SetContext(ctx)
	m.SetComplete(false)
	m.errorMsg = ""
	m.field = fieldLength
	m.settings = story.DefaultSettings()
	if ctx != nil && ctx.Config != nil {
		m.settings = ctx.Config.QuestDefaults()
	}
	for i, d := range story.Difficulties {
		if d == m.settings.Difficulty {
			m.difficulty.Select(i)
		}
	}
	m.SetStatusMsg("Configure your quest, then press Enter to begin")
	return nil
}

// Settings returns the values currently in the form.
func (m *Mode) Settings() story.Settings {
	return m.settings
}

// Update handles messages for the quest setup mode
func (m *Mode) Update(msg tea.Msg) (modes.Mode, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		width := msg.Width - 8
		if width < 30 {
			width = msg.Width
		}
		m.difficulty.SetSize(width, 10)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			return m.begin()
		case "tab", "down":
			if msg.String() == "down" && m.field == fieldDifficulty {
				break
			}
			m.field = (m.field + 1) % fieldCount
			return m, nil
		case "shift+tab", "up":
			if msg.String() == "up" && m.field == fieldDifficulty {
				break
			}
			m.field = (m.field + fieldCount - 1) % fieldCount
			return m, nil
		case "left", "right", " ":
			m.adjust(msg.String())
			return m, nil
		}
	}

	if m.field != fieldDifficulty {
		return m, nil
	}
	var cmd tea.Cmd
	m.difficulty, cmd = m.difficulty.Update(msg)
	if item, ok := m.difficulty.SelectedItem().(difficultyItem); ok {
		m.settings.Difficulty = item.difficulty
	}
	return m, cmd
}

func (m *Mode) adjust(key string) {
	switch m.field {
	case fieldLength:
		step := 0
		switch key {
		case "left":
			step = -1
		case "right":
			step = 1
		}
		m.settings.SessionLength = story.ClampSessionLength(m.settings.SessionLength + step)
	case fieldDice:
		m.settings.UseDiceRoller = !m.settings.UseDiceRoller
	case fieldVoice:
		m.settings.UseVoiceNarration = !m.settings.UseVoiceNarration
	}
}

func (m *Mode) begin() (modes.Mode, tea.Cmd) {
	ctx := m.Context()
	if ctx == nil || ctx.Controller == nil {
		return m, nil
	}
	req, err := ctx.Controller.SubmitSettings(m.settings)
	if err != nil {
		m.errorMsg = err.Error()
		m.logWarn("Quest settings rejected: %v", err)
		return m, nil
	}
	if ctx.Config != nil {
		if err := ctx.Config.SetQuestDefaults(m.settings); err != nil {
			m.logWarn("Could not remember quest defaults: %v", err)
		}
	}
	m.errorMsg = ""
	m.SetComplete(true)
	m.SetStatusMsg(fmt.Sprintf("%d-turn %s quest begins", m.settings.SessionLength, m.settings.Difficulty))
	return m, tea.Batch(
		modes.Complete(session.PhasePlaying),
		modes.GenerateTurn(ctx.Controller, req),
	)
}

// View renders the quest setup mode
func (m *Mode) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FFD93D")).
		MarginBottom(1)
	labelStyle := lipgloss.NewStyle().Width(20).Foreground(lipgloss.Color("#AAAAAA"))
	activeLabel := labelStyle.Copy().Foreground(lipgloss.Color("#5B8DEF")).Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	statusStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888888")).
		MarginTop(1)

	label := func(f field, text string) string {
		if f == m.field {
			return activeLabel.Render("▸ " + text)
		}
		return labelStyle.Render("  " + text)
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("⚙ QUEST CONFIGURATION"))
	b.WriteString("\n")
	b.WriteString(label(fieldLength, "Quest Length") +
		fmt.Sprintf("◂ %d turns ▸", m.settings.SessionLength) +
		mutedStyle.Render(fmt.Sprintf("  (%d-%d)", story.MinSessionLength, story.MaxSessionLength)) + "\n\n")
	b.WriteString(label(fieldDifficulty, "Difficulty") + "\n")
	b.WriteString(m.difficulty.View() + "\n\n")
	b.WriteString(label(fieldDice, "Dice Roller") + toggle(m.settings.UseDiceRoller) + "\n")
	b.WriteString(label(fieldVoice, "Voice Narration") + toggle(m.settings.UseVoiceNarration) + "\n")
	b.WriteString(mutedStyle.Render("\ntab: field · ←/→: adjust · space: toggle · enter: begin quest"))

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

func toggle(on bool) string {
	if on {
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#6BCB77")).Render("[■] ON")
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color("#444444")).Render("[ ] OFF")
}

func (m *Mode) logWarn(format string, args ...any) {
	ctx := m.Context()
	if ctx == nil || ctx.Logbook == nil {
		return
	}
	ctx.Logbook.Warn(format, args...)
}
