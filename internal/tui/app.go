// internal/tui/app.go
//
// This is the main TUI (Terminal User Interface) for PixelQuest.
// It uses bubbletea, which follows The Elm Architecture:
//
// 1. Model: Your application state
// 2. Update: A function that updates state based on messages
// 3. View: A function that renders state to a string
//
// The flow is: User Input -> Message -> Update -> New Model -> View -> Screen
//
// Each session phase has its own mode; the App only routes messages, applies
// finished turns and switches modes when one reports completion.

package tui

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/pixel-quest/internal/chronicle"
	"github.com/kingrea/pixel-quest/internal/config"
	"github.com/kingrea/pixel-quest/internal/dice"
	"github.com/kingrea/pixel-quest/internal/logbook"
	"github.com/kingrea/pixel-quest/internal/logging"
	"github.com/kingrea/pixel-quest/internal/modes"
	"github.com/kingrea/pixel-quest/internal/modes/epilogue"
	"github.com/kingrea/pixel-quest/internal/modes/party_setup"
	"github.com/kingrea/pixel-quest/internal/modes/quest_setup"
	"github.com/kingrea/pixel-quest/internal/modes/storyteller"
	"github.com/kingrea/pixel-quest/internal/session"
	"github.com/kingrea/pixel-quest/internal/story"
)

const footerBanner = "PixelQuest v1.0 - Retro D&D Adventure Generator"

// AppOption customizes App construction for tests and alternate runtimes.
type AppOption func(*App)

// WithEngineOptions appends options to every turn engine the app builds.
func WithEngineOptions(opts ...story.Option) AppOption {
	return func(a *App) {
		a.engineOpts = append(a.engineOpts, opts...)
	}
}

// WithRoller replaces the dice roller, typically with a seeded one.
func WithRoller(r *dice.Roller) AppOption {
	return func(a *App) {
		if r != nil {
			a.roller = r
		}
	}
}

// App is the main application model. In bubbletea, this holds ALL your state.
type App struct {
	config     *config.Config
	logbook    *logbook.Logbook
	logger     *logging.Logger
	controller *session.Controller
	chronicles *chronicle.Store
	roller     *dice.Roller
	engineOpts []story.Option

	modeCtx *modes.ModeContext
	modes   map[session.Phase]modes.Mode
	active  modes.Mode

	statusMsg string

	// Window size (we get this from bubbletea)
	width  int
	height int
}

// journal fans session entries out to the journey logbook and the
// diagnostic log.
type journal struct {
	book *logbook.Logbook
	diag *logging.Logger
}

func (j journal) Info(format string, args ...any) {
	j.book.Info(format, args...)
	j.diag.Infof(format, args...)
}

func (j journal) Warn(format string, args ...any) {
	j.book.Warn(format, args...)
	j.diag.Warnf(format, args...)
}

func (j journal) Error(format string, args ...any) {
	j.book.Error(format, args...)
	j.diag.Errorf(format, args...)
}

// NewApp creates a new App instance
func NewApp(projectDir string, opts ...AppOption) (*App, error) {
	cfg, err := config.NewConfig(projectDir)
	if err != nil {
		return nil, err
	}
	lb, err := logbook.New(cfg.JourneyLogPath())
	if err != nil {
		lb = nil
	}
	logger, err := logging.New(cfg.DiagnosticLogPath(), cfg.LogLevel())
	if err != nil {
		logger = logging.Nop()
	}

	pools, err := story.LoadPools(cfg.FragmentsPath())
	if err != nil {
		logger.Errorw("fragment pools unavailable", "path", cfg.FragmentsPath(), "error", err)
		_ = logger.Close()
		return nil, err
	}

	app := &App{
		config:     cfg,
		logbook:    lb,
		logger:     logger,
		chronicles: chronicle.NewStore(cfg.ChroniclesDir()),
		roller:     dice.NewRoller(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(app)
		}
	}

	factory := func() (*story.Engine, error) {
		engineOpts := append([]story.Option{story.WithDelay(cfg.GenerationDelay())}, app.engineOpts...)
		return story.NewEngine(pools, engineOpts...)
	}
	ctrl, err := session.New(factory,
		session.WithLogger(journal{book: lb, diag: logger}),
		session.WithArchiver(app.chronicles),
	)
	if err != nil {
		_ = logger.Close()
		return nil, err
	}
	app.controller = ctrl

	app.modeCtx = &modes.ModeContext{
		Config:     cfg,
		Controller: ctrl,
		Logbook:    lb,
		Logger:     logger,
		Roller:     app.roller,
		Chronicles: app.chronicles,
	}
	app.modes = map[session.Phase]modes.Mode{
		session.PhaseCharacterSetup: party_setup.New(),
		session.PhaseGameSetup:      quest_setup.New(),
		session.PhasePlaying:        storyteller.New(),
		session.PhaseComplete:       epilogue.New(),
	}
	app.active = app.modes[ctrl.Phase()]

	lb.Info("Session opened · %s", ctrl.Phase().FriendlyName())
	logger.Infow("pixelquest started",
		"project", cfg.ProjectDir,
		"generation_delay", cfg.GenerationDelay(),
		"fragments", cfg.FragmentsPath(),
	)
	return app, nil
}

// Close releases the diagnostic log.
func (a *App) Close() error {
	if a == nil || a.logger == nil {
		return nil
	}
	return a.logger.Close()
}

// Controller exposes the session controller driving the app.
func (a *App) Controller() *session.Controller {
	return a.controller
}

// Init is called once when the program starts.
func (a *App) Init() tea.Cmd {
	return a.active.Init(a.modeCtx)
}

// Update is called when a message is received.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, a.forward(msg)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			a.logbook.Info("Session closed")
			return a, tea.Quit
		}
		return a, a.forward(msg)

	case modes.TurnGeneratedMsg:
		if err := a.controller.Apply(msg.Result); err != nil {
			if errors.Is(err, session.ErrStaleTurn) {
				a.logger.Debugw("discarded stale turn", "turn", msg.Result.Request.Turn, "session", msg.Result.Request.SessionID)
				return a, nil
			}
			a.statusMsg = fmt.Sprintf("Error: %v", err)
			a.logger.Errorw("turn failed", "turn", msg.Result.Request.Turn, "error", err)
		} else {
			a.statusMsg = ""
			a.logger.Infow("turn applied",
				"session", msg.Result.Request.SessionID,
				"turn", msg.Result.Turn.Number,
				"kind", string(msg.Result.Turn.Kind),
			)
		}
		return a, a.forward(msg)

	case modes.ModeCompleteMsg:
		return a, a.switchMode(msg.NextPhase)

	case modes.ModeErrorMsg:
		a.statusMsg = fmt.Sprintf("Error: %v", msg.Error)
		a.logbook.Error("%v", msg.Error)
		return a, nil
	}

	return a, a.forward(msg)
}

func (a *App) forward(msg tea.Msg) tea.Cmd {
	if a.active == nil {
		return nil
	}
	var cmd tea.Cmd
	a.active, cmd = a.active.Update(msg)
	return cmd
}

func (a *App) switchMode(next session.Phase) tea.Cmd {
	mode, ok := a.modes[next]
	if !ok {
		a.statusMsg = fmt.Sprintf("Error: no screen for phase %s", next)
		return nil
	}
	if actual := a.controller.Phase(); actual != next {
		a.logger.Warnw("mode switch disagrees with session phase", "requested", string(next), "session", string(actual))
	}
	a.active = mode
	a.statusMsg = ""
	cmds := []tea.Cmd{mode.Init(a.modeCtx)}
	if a.width > 0 {
		size := tea.WindowSizeMsg{Width: a.width, Height: a.height}
		cmds = append(cmds, func() tea.Msg { return size })
	}
	return tea.Batch(cmds...)
}

// View renders the current state as a string
func (a *App) View() string {
	width := a.width
	if width <= 0 {
		width = 100
	}
	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FF6B6B")).
		MarginBottom(1).
		Render("⚔ PIXELQUEST")

	content := ""
	if a.active != nil {
		content = a.active.View()
	}
	main := lipgloss.JoinVertical(lipgloss.Left,
		a.renderPhasePanel(width-8),
		"",
		content,
	)
	mainBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		Padding(0, 1).
		Width(max(20, width-4)).
		Render(main)

	sections := []string{header, mainBox}
	if logPanel := a.renderLogPanel(); logPanel != "" {
		sections = append(sections, logPanel)
	}
	footerStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	if a.statusMsg != "" {
		sections = append(sections, footerStyle.Copy().MarginTop(1).Render(a.statusMsg))
	}
	sections = append(sections, footerStyle.Render(footerBanner))
	return strings.Join(sections, "\n")
}

func (a *App) renderPhasePanel(width int) string {
	snap := a.controller.Snapshot()
	phase := snap.Phase
	if a.active != nil {
		phase = a.active.Phase()
	}
	pos, total := phase.Position()
	lines := []string{
		fmt.Sprintf("Phase: %s (%d/%d)", phase.FriendlyName(), pos+1, total),
	}
	if next := upcomingPhases(phase); len(next) > 0 {
		names := make([]string, len(next))
		for i, p := range next {
			names[i] = p.FriendlyName()
		}
		lines = append(lines, fmt.Sprintf("Next: %s", strings.Join(names, " → ")))
	}
	if len(snap.Roster) > 0 {
		lines = append(lines, fmt.Sprintf("Party: %s", snap.Roster.JoinNames(", ")))
	}
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("#AAAAAA")).
		Width(max(20, width)).
		Render(strings.Join(lines, "\n"))
}

func (a *App) renderLogPanel() string {
	if a.logbook == nil {
		return ""
	}
	lines, total := a.logbook.Tail(6)
	if len(lines) == 0 {
		return ""
	}
	fileName := filepath.Base(a.logbook.Path())
	if fileName == "." || fileName == "" {
		fileName = "log"
	}
	head := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#5B8DEF")).
		Render(fmt.Sprintf("LOG · %s · %d entries", fileName, total))
	body := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#AAAAAA")).
		Render(strings.Join(lines, "\n"))
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		Padding(0, 1).
		Render(fmt.Sprintf("%s\n%s", head, body))
}

func upcomingPhases(p session.Phase) []session.Phase {
	all := []session.Phase{
		session.PhaseCharacterSetup,
		session.PhaseGameSetup,
		session.PhasePlaying,
		session.PhaseComplete,
	}
	pos, _ := p.Position()
	if pos+1 >= len(all) {
		return nil
	}
	return all[pos+1:]
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
