// internal/modes/mode.go
//
// Defines the Mode interface that every phase screen implements.
// Each mode talks to the session controller and reports back to the app
// through messages; none of them hold story state of their own.

package modes

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kingrea/pixel-quest/internal/chronicle"
	"github.com/kingrea/pixel-quest/internal/config"
	"github.com/kingrea/pixel-quest/internal/dice"
	"github.com/kingrea/pixel-quest/internal/logbook"
	"github.com/kingrea/pixel-quest/internal/logging"
	"github.com/kingrea/pixel-quest/internal/session"
)

// ModeContext provides shared context for all modes
type ModeContext struct {
	Config     *config.Config
	Controller *session.Controller
	Logbook    *logbook.Logbook
	Logger     *logging.Logger
	Roller     *dice.Roller
	Chronicles *chronicle.Store
}

// Mode defines the interface that all phase modes must implement
type Mode interface {
	// Name returns the mode's display name
	Name() string

	// Phase returns which session phase this mode renders
	Phase() session.Phase

	// Init initializes the mode and returns a startup command
	Init(ctx *ModeContext) tea.Cmd

	// Update handles messages and returns the updated mode plus any commands
	// If the mode is complete, it should return a ModeCompleteMsg
	Update(msg tea.Msg) (Mode, tea.Cmd)

	// View renders the mode's current state
	View() string

	// IsComplete returns true if the mode has finished its work
	IsComplete() bool
}

// ModeCompleteMsg signals that a mode has finished and the app should switch
// to the screen for NextPhase.
type ModeCompleteMsg struct {
	NextPhase session.Phase
}

// ModeErrorMsg signals an error occurred during mode execution
type ModeErrorMsg struct {
	Error error
}

// TurnGeneratedMsg carries a finished advance back to the update loop.
type TurnGeneratedMsg struct {
	Result session.TurnResult
}

// GenerateTurn runs req off the update loop.
func GenerateTurn(ctrl *session.Controller, req session.TurnRequest) tea.Cmd {
	return func() tea.Msg {
		return TurnGeneratedMsg{Result: ctrl.Generate(req)}
	}
}

// Complete returns a command that emits ModeCompleteMsg.
func Complete(next session.Phase) tea.Cmd {
	return func() tea.Msg {
		return ModeCompleteMsg{NextPhase: next}
	}
}

// BaseMode provides common functionality for all modes
type BaseMode struct {
	ctx       *ModeContext
	name      string
	phase     session.Phase
	complete  bool
	statusMsg string
}

// NewBaseMode creates a new BaseMode with the given name and phase
func NewBaseMode(name string, phase session.Phase) BaseMode {
	return BaseMode{
		name:  name,
		phase: phase,
	}
}

// Name returns the mode's display name
func (m *BaseMode) Name() string {
	return m.name
}

// Phase returns which session phase this mode renders
func (m *BaseMode) Phase() session.Phase {
	return m.phase
}

// IsComplete returns true if the mode has finished
func (m *BaseMode) IsComplete() bool {
	return m.complete
}

// SetComplete marks the mode as complete
func (m *BaseMode) SetComplete(complete bool) {
	m.complete = complete
}

// Context returns the mode context
func (m *BaseMode) Context() *ModeContext {
	return m.ctx
}

// SetContext sets the mode context
func (m *BaseMode) SetContext(ctx *ModeContext) {
	m.ctx = ctx
}

// StatusMsg returns the current status message
func (m *BaseMode) StatusMsg() string {
	return m.statusMsg
}

// SetStatusMsg sets the status message
func (m *BaseMode) SetStatusMsg(msg string) {
	m.statusMsg = msg
}
