// internal/modes/storyteller/storyteller.go
//
// Storyteller mode plays the quest one turn at a time.
// Each finished turn is revealed character by character; the next turn can
// only be requested once the reveal is done and no advance is in flight.

package storyteller

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/pixel-quest/internal/dice"
	"github.com/kingrea/pixel-quest/internal/modes"
	"github.com/kingrea/pixel-quest/internal/session"
)

const (
	defaultRevealInterval = 30 * time.Millisecond
	defaultDiceRollDelay  = 800 * time.Millisecond
)

type revealTickMsg struct {
	seq int
}

type diceRolledMsg struct {
	seq   int
	faces int
}

// Mode handles the playing phase
type Mode struct {
	modes.BaseMode
	snap     session.Snapshot
	spinner  spinner.Model
	progress progress.Model
	width    int
	errorMsg string

	text      []rune
	revealed  int
	revealing bool
	revealSeq int

	showDice bool
	dieIdx   int
	rolling  bool
	lastRoll int
	lastDie  int
	rollSeq  int
}

// New creates a new Storyteller mode
func New() *Mode {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD93D"))

	return &Mode{
		BaseMode: modes.NewBaseMode("Storyteller", session.PhasePlaying),
		spinner:  s,
		progress: progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
	}
}

// Init clears any previous quest's display. The first turn is already being
// generated when the mode starts.
func (m *Mode) Init(ctx *modes.ModeContext) tea.Cmd {
	m.SetContext(ctx)
	m.SetComplete(false)
	m.errorMsg = ""
	m.text = nil
	m.revealed = 0
	m.revealing = false
	m.revealSeq++
	m.showDice = false
	m.rolling = false
	m.lastRoll = 0
	m.rollSeq++
	m.dieIdx = dieIndex(dice.DefaultFaces)
	m.refresh()
	if !m.snap.Pending && m.snap.Story != "" {
		m.text = []rune(m.snap.Story)
		m.revealed = len(m.text)
	}
	m.SetStatusMsg("The storyteller gathers their thoughts...")
	return m.spinner.Tick
}

// Update handles messages for the storyteller mode
func (m *Mode) Update(msg tea.Msg) (modes.Mode, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		barWidth := msg.Width - 20
		if barWidth > 60 {
			barWidth = 60
		}
		if barWidth < 10 {
			barWidth = 10
		}
		m.progress.Width = barWidth
		return m, nil

	case spinner.TickMsg:
		m.refresh()
		if !m.snap.Pending {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case modes.TurnGeneratedMsg:
		m.refresh()
		if msg.Result.Err != nil {
			m.errorMsg = msg.Result.Err.Error()
			m.SetStatusMsg("The storyteller stumbled. Press Enter to try again.")
			return m, nil
		}
		m.errorMsg = ""
		m.SetStatusMsg(fmt.Sprintf("Turn %d of %d", msg.Result.Turn.Number, m.snap.TotalTurns))
		return m, m.startReveal(msg.Result.Turn.Text)

	case revealTickMsg:
		if msg.seq != m.revealSeq || !m.revealing {
			return m, nil
		}
		m.revealed++
		if m.revealed >= len(m.text) {
			m.finishReveal()
			return m, nil
		}
		return m, m.revealTick()

	case diceRolledMsg:
		if msg.seq != m.rollSeq {
			return m, nil
		}
		return m, m.settleRoll(msg.faces)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Mode) handleKey(msg tea.KeyMsg) (modes.Mode, tea.Cmd) {
	m.refresh()
	switch msg.String() {
	case "enter", "n":
		return m.advance()
	case " ":
		if m.revealing {
			m.finishReveal()
		}
		return m, nil
	case "s", "esc":
		return m.saveAndExit()
	case "d":
		if !m.snap.Settings.UseDiceRoller {
			return m, nil
		}
		m.showDice = !m.showDice
		return m, nil
	}

	if !m.showDice {
		return m, nil
	}
	switch msg.String() {
	case "left":
		if m.dieIdx > 0 && !m.rolling {
			m.dieIdx--
		}
	case "right":
		if m.dieIdx < len(dice.Faces)-1 && !m.rolling {
			m.dieIdx++
		}
	case "r":
		return m, m.roll()
	}
	return m, nil
}

func (m *Mode) advance() (modes.Mode, tea.Cmd) {
	ctx := m.Context()
	if ctx == nil || ctx.Controller == nil {
		return m, nil
	}
	if m.snap.Pending || m.revealing {
		return m, nil
	}
	if m.snap.Phase == session.PhaseComplete {
		m.SetComplete(true)
		return m, modes.Complete(session.PhaseComplete)
	}
	req, err := ctx.Controller.RequestNextTurn()
	if err != nil {
		m.SetStatusMsg(err.Error())
		m.logWarn("Next turn refused: %v", err)
		return m, nil
	}
	m.errorMsg = ""
	m.refresh()
	m.SetStatusMsg("The storyteller gathers their thoughts...")
	return m, tea.Batch(m.spinner.Tick, modes.GenerateTurn(ctx.Controller, req))
}

func (m *Mode) saveAndExit() (modes.Mode, tea.Cmd) {
	ctx := m.Context()
	if ctx == nil || ctx.Controller == nil {
		return m, nil
	}
	turns := m.snap.CurrentTurn
	if err := ctx.Controller.End(); err != nil {
		m.logWarn("Save & Exit: %v", err)
	} else if turns > 0 {
		m.logInfo("Quest saved after %d turn(s)", turns)
	}
	m.revealSeq++
	m.rollSeq++
	m.SetComplete(true)
	return m, modes.Complete(session.PhaseCharacterSetup)
}

func (m *Mode) startReveal(text string) tea.Cmd {
	m.revealSeq++
	m.text = []rune(text)
	m.revealed = 0
	m.revealing = len(m.text) > 0
	if m.revealInterval() <= 0 {
		m.finishReveal()
		return nil
	}
	if !m.revealing {
		return nil
	}
	return m.revealTick()
}

func (m *Mode) finishReveal() {
	m.revealed = len(m.text)
	m.revealing = false
	m.revealSeq++
}

func (m *Mode) revealTick() tea.Cmd {
	seq := m.revealSeq
	return tea.Tick(m.revealInterval(), func(time.Time) tea.Msg {
		return revealTickMsg{seq: seq}
	})
}

func (m *Mode) revealInterval() time.Duration {
	if ctx := m.Context(); ctx != nil && ctx.Config != nil {
		return ctx.Config.RevealInterval()
	}
	return defaultRevealInterval
}

func (m *Mode) roll() tea.Cmd {
	if m.rolling {
		return nil
	}
	faces := dice.Faces[m.dieIdx]
	m.rolling = true
	m.rollSeq++
	delay := defaultDiceRollDelay
	if ctx := m.Context(); ctx != nil && ctx.Config != nil {
		delay = ctx.Config.DiceRollDelay()
	}
	if delay <= 0 {
		return m.settleRoll(faces)
	}
	seq := m.rollSeq
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return diceRolledMsg{seq: seq, faces: faces}
	})
}

func (m *Mode) settleRoll(faces int) tea.Cmd {
	m.rolling = false
	ctx := m.Context()
	if ctx == nil || ctx.Roller == nil {
		return nil
	}
	value, err := ctx.Roller.Roll(faces)
	if err != nil {
		m.logWarn("Dice roll failed: %v", err)
		return nil
	}
	m.lastRoll = value
	m.lastDie = faces
	m.logInfo("Rolled %s: %d", dice.Label(faces), value)
	return nil
}

// LastRoll returns the most recent roll and the die it was made with.
func (m *Mode) LastRoll() (value, faces int) {
	return m.lastRoll, m.lastDie
}

// Revealing reports whether the typewriter reveal is still running.
func (m *Mode) Revealing() bool {
	return m.revealing
}

func (m *Mode) refresh() {
	if ctx := m.Context(); ctx != nil && ctx.Controller != nil {
		m.snap = ctx.Controller.Snapshot()
	}
}

func dieIndex(faces int) int {
	for i, f := range dice.Faces {
		if f == faces {
			return i
		}
	}
	return 0
}

// View renders the storyteller mode
func (m *Mode) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FFD93D"))
	mutedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	statusStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888888")).
		MarginTop(1)
	storyWidth := 70
	if m.width > 0 && m.width-10 < storyWidth {
		storyWidth = m.width - 10
	}
	storyStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#5B8DEF")).
		Padding(1, 2).
		Width(storyWidth)

	var b strings.Builder
	b.WriteString(titleStyle.Render("📜 THE ADVENTURE") + "  " + m.renderPips() + "\n")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("Turn %d of %d · %s · %s",
		m.snap.CurrentTurn, m.snap.TotalTurns, m.snap.Settings.Difficulty.Label(), m.snap.Roster.JoinNames(", "))) + "\n")
	b.WriteString(m.progress.ViewAs(m.percent()) + "\n\n")
	b.WriteString(storyStyle.Render(m.renderStory()) + "\n\n")
	b.WriteString(m.renderAction() + "\n")

	if m.showDice {
		b.WriteString("\n" + m.renderDice() + "\n")
	}

	help := "enter: next turn · space: skip · s: save & exit"
	if m.snap.Settings.UseDiceRoller {
		help += " · d: dice"
	}
	b.WriteString(mutedStyle.Render(help))

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

func (m *Mode) percent() float64 {
	if m.snap.TotalTurns == 0 {
		return 0
	}
	return float64(m.snap.CurrentTurn) / float64(m.snap.TotalTurns)
}

func (m *Mode) renderPips() string {
	done := lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD93D"))
	todo := lipgloss.NewStyle().Foreground(lipgloss.Color("#444444"))
	var b strings.Builder
	for i := 1; i <= m.snap.TotalTurns; i++ {
		if i <= m.snap.CurrentTurn {
			b.WriteString(done.Render("●"))
		} else {
			b.WriteString(todo.Render("○"))
		}
	}
	return b.String()
}

func (m *Mode) renderStory() string {
	if m.snap.Pending {
		return m.spinner.View() + " The storyteller weaves the next chapter..."
	}
	if len(m.text) == 0 {
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).Render("The tale has yet to begin.")
	}
	shown := string(m.text[:m.revealed])
	if m.revealing {
		shown += "▌"
	}
	return shown
}

func (m *Mode) renderAction() string {
	label := "Next Turn ▸"
	color := "#5B8DEF"
	switch {
	case m.snap.Pending:
		label = "Generating..."
		color = "#444444"
	case m.revealing:
		label = "Reading..."
		color = "#444444"
	case m.snap.Phase == session.PhaseComplete:
		label = "Quest Complete ★"
		color = "#6BCB77"
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(color)).
		Foreground(lipgloss.Color(color)).
		Bold(true).
		Padding(0, 2).
		Render(label)
}

func (m *Mode) renderDice() string {
	selected := lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD93D")).Bold(true)
	plain := lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA"))
	dies := make([]string, len(dice.Faces))
	for i, f := range dice.Faces {
		if i == m.dieIdx {
			dies[i] = selected.Render("[" + dice.Label(f) + "]")
		} else {
			dies[i] = plain.Render(" " + dice.Label(f) + " ")
		}
	}
	result := "none yet"
	switch {
	case m.rolling:
		result = "rolling..."
	case m.lastRoll > 0:
		result = fmt.Sprintf("%s → %d", dice.Label(m.lastDie), m.lastRoll)
	}
	body := fmt.Sprintf("🎲 %s\n\nResult: %s\n←/→: choose · r: roll", strings.Join(dies, " "), result)
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#AAAAAA")).
		Padding(0, 1).
		Render(body)
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
