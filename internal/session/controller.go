// Package session drives a quest through its phases: gathering the party,
// choosing settings, playing turns and wrapping up.
//
// Controller methods are meant to be called from a single goroutine (the
// bubbletea update loop). Generate is the exception: it only touches the
// engine captured in its TurnRequest, so it can run inside a tea.Cmd.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kingrea/pixel-quest/internal/party"
	"github.com/kingrea/pixel-quest/internal/story"
)

var (
	ErrWrongPhase      = errors.New("session: action not allowed in this phase")
	ErrAdvancePending  = errors.New("session: a turn is already being generated")
	ErrSessionFinished = errors.New("session: every turn has been played")
	ErrStaleTurn       = errors.New("session: turn belongs to a session that was reset")
)

// Logger receives journey entries. *logbook.Logbook satisfies it.
type Logger interface {
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// Archiver persists a session when the players leave it.
type Archiver interface {
	Archive(Summary) error
}

// EngineFactory builds the turn engine for a fresh session.
type EngineFactory func() (*story.Engine, error)

// TurnRequest describes one advance the controller has authorised.
type TurnRequest struct {
	SessionID string
	Turn      int
	Roster    party.Roster
	Settings  story.Settings

	epoch  int
	engine *story.Engine
}

// TurnResult carries the outcome of Generate back to Apply.
type TurnResult struct {
	Request TurnRequest
	Turn    story.Turn
	Err     error
}

// Snapshot is everything the display needs to render the current state.
type Snapshot struct {
	SessionID   string
	Phase       Phase
	Roster      party.Roster
	Settings    story.Settings
	HasSettings bool
	CurrentTurn int
	TotalTurns  int
	Story       string
	History     []story.Turn
	Generating  bool
	Pending     bool
}

// Summary is handed to the Archiver when a session ends.
type Summary struct {
	SessionID string
	Roster    party.Roster
	Settings  story.Settings
	Turns     []story.Turn
	Completed bool
	StartedAt time.Time
	EndedAt   time.Time
}

// Controller owns the phase state machine and the session's turn engine.
type Controller struct {
	newEngine EngineFactory
	logger    Logger
	archiver  Archiver
	clock     func() time.Time

	id        string
	phase     Phase
	roster    party.Roster
	settings  *story.Settings
	engine    *story.Engine
	story     string
	pending   bool
	epoch     int
	startedAt time.Time
}

// Option customizes the controller.
type Option func(*Controller)

// WithLogger routes phase and turn entries to l.
func WithLogger(l Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithArchiver stores sessions on End.
func WithArchiver(a Archiver) Option {
	return func(c *Controller) {
		c.archiver = a
	}
}

// WithClock injects a deterministic clock (primarily for tests).
func WithClock(clock func() time.Time) Option {
	return func(c *Controller) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// New builds a controller in the character-setup phase.
func New(factory EngineFactory, opts ...Option) (*Controller, error) {
	if factory == nil {
		return nil, fmt.Errorf("session: engine factory is required")
	}
	c := &Controller{
		newEngine: factory,
		logger:    nopLogger{},
		clock:     time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	engine, err := factory()
	if err != nil {
		return nil, fmt.Errorf("session: build engine: %w", err)
	}
	c.engine = engine
	c.id = uuid.NewString()
	c.phase = PhaseCharacterSetup
	return c, nil
}

// Phase returns the current phase.
func (c *Controller) Phase() Phase {
	return c.phase
}

// SubmitRoster accepts the party and moves on to game setup. Rows without a
// name are dropped; at least one named hero is required.
func (c *Controller) SubmitRoster(chars []party.Character) error {
	if c.phase != PhaseCharacterSetup {
		return fmt.Errorf("%w: submit roster during %s", ErrWrongPhase, c.phase)
	}
	roster, err := party.NewRoster(chars)
	if err != nil {
		return err
	}
	c.roster = roster
	c.phase = PhaseGameSetup
	c.logger.Info("Party assembled · %s", roster.JoinNames(", "))
	return nil
}

// SubmitSettings fixes the quest settings, starts play and returns the
// request for the opening turn.
func (c *Controller) SubmitSettings(settings story.Settings) (TurnRequest, error) {
	if c.phase != PhaseGameSetup {
		return TurnRequest{}, fmt.Errorf("%w: submit settings during %s", ErrWrongPhase, c.phase)
	}
	if err := settings.Validate(); err != nil {
		return TurnRequest{}, err
	}
	c.settings = &settings
	c.startedAt = c.clock()
	c.phase = PhasePlaying
	c.logger.Info("Quest begins · %d turns · %s", settings.SessionLength, settings.Difficulty.Label())
	return c.authorise(1), nil
}

// RequestNextTurn authorises the next advance. It is refused while another
// advance is outstanding.
func (c *Controller) RequestNextTurn() (TurnRequest, error) {
	if c.phase != PhasePlaying {
		return TurnRequest{}, fmt.Errorf("%w: next turn during %s", ErrWrongPhase, c.phase)
	}
	if c.pending {
		return TurnRequest{}, ErrAdvancePending
	}
	next := c.engine.State().CurrentTurn + 1
	if next > c.settings.SessionLength {
		return TurnRequest{}, ErrSessionFinished
	}
	return c.authorise(next), nil
}

func (c *Controller) authorise(turn int) TurnRequest {
	c.pending = true
	return TurnRequest{
		SessionID: c.id,
		Turn:      turn,
		Roster:    c.roster.Clone(),
		Settings:  *c.settings,
		epoch:     c.epoch,
		engine:    c.engine,
	}
}

// Generate runs the advance described by req. It blocks for the engine's
// generation delay and is safe to call off the update goroutine.
func (c *Controller) Generate(req TurnRequest) TurnResult {
	if req.engine == nil {
		return TurnResult{Request: req, Err: fmt.Errorf("session: turn %d was not authorised", req.Turn)}
	}
	turn, err := req.engine.AdvanceTurn(req.Roster, req.Settings, req.Turn)
	return TurnResult{Request: req, Turn: turn, Err: err}
}

// Apply records a finished advance. Reaching the last turn completes the quest.
func (c *Controller) Apply(result TurnResult) error {
	if result.Request.epoch != c.epoch || result.Request.engine != c.engine {
		return ErrStaleTurn
	}
	c.pending = false
	if result.Err != nil {
		c.logger.Error("Turn %d failed: %v", result.Request.Turn, result.Err)
		return fmt.Errorf("session: turn %d: %w", result.Request.Turn, result.Err)
	}
	c.story = result.Turn.Text
	c.logger.Info("Turn %d/%d · %s", result.Turn.Number, c.settings.SessionLength, result.Turn.Kind)
	if result.Turn.Number >= c.settings.SessionLength {
		c.phase = PhaseComplete
		c.logger.Info("Quest complete · %s", c.roster.JoinNames(", "))
	}
	return nil
}

// Play generates and applies req synchronously.
func (c *Controller) Play(req TurnRequest) (story.Turn, error) {
	result := c.Generate(req)
	if err := c.Apply(result); err != nil {
		return story.Turn{}, err
	}
	return result.Turn, nil
}

// NextTurn requests, generates and applies the next turn synchronously.
func (c *Controller) NextTurn() (story.Turn, error) {
	req, err := c.RequestNextTurn()
	if err != nil {
		return story.Turn{}, err
	}
	return c.Play(req)
}

// End leaves a quest in progress or finished, archiving it when at least one
// turn was played, and returns to character setup. The reset happens even if
// archiving fails.
func (c *Controller) End() error {
	if c.phase != PhasePlaying && c.phase != PhaseComplete {
		return fmt.Errorf("%w: end during %s", ErrWrongPhase, c.phase)
	}
	var archiveErr error
	if summary := c.summary(); c.archiver != nil && len(summary.Turns) > 0 {
		if err := c.archiver.Archive(summary); err != nil {
			c.logger.Warn("Chronicle not saved: %v", err)
			archiveErr = fmt.Errorf("session: archive: %w", err)
		} else {
			c.logger.Info("Chronicle saved · %d turn(s)", len(summary.Turns))
		}
	}
	c.Reset()
	return archiveErr
}

// Reset discards the party, settings and turn state and starts a new session
// in character setup. An advance still in flight is ignored when it lands.
func (c *Controller) Reset() {
	c.epoch++
	c.phase = PhaseCharacterSetup
	c.roster = nil
	c.settings = nil
	c.story = ""
	c.pending = false
	c.startedAt = time.Time{}
	c.id = uuid.NewString()
	engine, err := c.newEngine()
	if err != nil {
		c.logger.Error("Fresh engine unavailable, reusing previous: %v", err)
		c.engine.Reset()
	} else {
		c.engine = engine
	}
	c.logger.Info("Session reset")
}

// Snapshot reports the display state.
func (c *Controller) Snapshot() Snapshot {
	state := c.engine.State()
	snap := Snapshot{
		SessionID:   c.id,
		Phase:       c.phase,
		Roster:      c.roster.Clone(),
		CurrentTurn: state.CurrentTurn,
		Story:       c.story,
		History:     state.History,
		Generating:  state.Generating,
		Pending:     c.pending,
	}
	if c.settings != nil {
		snap.Settings = *c.settings
		snap.HasSettings = true
		snap.TotalTurns = c.settings.SessionLength
	}
	return snap
}

func (c *Controller) summary() Summary {
	s := Summary{
		SessionID: c.id,
		Roster:    c.roster.Clone(),
		Turns:     c.engine.State().History,
		Completed: c.phase == PhaseComplete,
		StartedAt: c.startedAt,
		EndedAt:   c.clock(),
	}
	if c.settings != nil {
		s.Settings = *c.settings
	}
	return s
}
