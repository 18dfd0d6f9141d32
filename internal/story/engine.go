// Package story selects the authored narrative fragment for each turn of a
// quest and tracks how far the quest has advanced.
package story

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/kingrea/pixel-quest/internal/party"
)

// DefaultGenerationDelay is how long an advance appears to "think".
const DefaultGenerationDelay = 2 * time.Second

var (
	ErrEmptyRoster          = errors.New("story: roster is empty")
	ErrTurnOutOfRange       = errors.New("story: turn out of range")
	ErrTurnOutOfSequence    = errors.New("story: turn out of sequence")
	ErrGenerationInProgress = errors.New("story: generation already in progress")
	ErrNoMatchingRule       = errors.New("story: no rule matches turn")
)

// Turn is one produced fragment.
type Turn struct {
	Number int    `yaml:"number"`
	Kind   Kind   `yaml:"kind"`
	Text   string `yaml:"text"`
}

// TurnState is a point-in-time copy of the engine's progress.
type TurnState struct {
	CurrentTurn int
	History     []Turn
	Generating  bool
}

// Engine advances a quest one turn at a time. Only one advance may be
// outstanding; State may be read concurrently while it sleeps.
type Engine struct {
	pools *Pools
	rules []Rule
	delay time.Duration
	sleep func(time.Duration)

	mu    sync.Mutex
	rng   *rand.Rand
	state TurnState
	epoch int
}

// Option customizes the engine instance.
type Option func(*Engine)

// WithDelay overrides DefaultGenerationDelay. Zero disables the pause.
func WithDelay(d time.Duration) Option {
	return func(e *Engine) {
		if d >= 0 {
			e.delay = d
		}
	}
}

// WithSleeper replaces time.Sleep (primarily for tests).
func WithSleeper(sleep func(time.Duration)) Option {
	return func(e *Engine) {
		if sleep != nil {
			e.sleep = sleep
		}
	}
}

// WithSeed makes fragment choice deterministic.
func WithSeed(seed int64) Option {
	return func(e *Engine) {
		e.rng = rand.New(rand.NewSource(seed))
	}
}

// WithRules replaces DefaultRules.
func WithRules(rules []Rule) Option {
	return func(e *Engine) {
		if len(rules) > 0 {
			e.rules = append([]Rule(nil), rules...)
		}
	}
}

// NewEngine wires an engine to a set of fragment pools.
func NewEngine(pools *Pools, opts ...Option) (*Engine, error) {
	if pools == nil {
		return nil, fmt.Errorf("story: fragment pools are required")
	}
	e := &Engine{
		pools: pools,
		rules: DefaultRules,
		delay: DefaultGenerationDelay,
		sleep: time.Sleep,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e, nil
}

// AdvanceTurn produces the fragment for turnNumber. It marks the engine as
// generating, waits out the generation delay, then records the fragment and
// moves CurrentTurn to turnNumber. Turns must be advanced in order starting
// at 1 and never past settings.SessionLength.
func (e *Engine) AdvanceTurn(roster party.Roster, settings Settings, turnNumber int) (Turn, error) {
	if len(roster) == 0 {
		return Turn{}, ErrEmptyRoster
	}
	if turnNumber < 1 || turnNumber > settings.SessionLength {
		return Turn{}, fmt.Errorf("%w: turn %d not in [1, %d]", ErrTurnOutOfRange, turnNumber, settings.SessionLength)
	}
	rule, ok := matchRule(e.rules, turnNumber, settings)
	if !ok {
		return Turn{}, fmt.Errorf("%w %d", ErrNoMatchingRule, turnNumber)
	}

	e.mu.Lock()
	if e.state.Generating {
		e.mu.Unlock()
		return Turn{}, ErrGenerationInProgress
	}
	if want := e.state.CurrentTurn + 1; turnNumber != want {
		e.mu.Unlock()
		return Turn{}, fmt.Errorf("%w: got %d, want %d", ErrTurnOutOfSequence, turnNumber, want)
	}
	text, err := e.compose(rule, roster)
	if err != nil {
		e.mu.Unlock()
		return Turn{}, err
	}
	e.state.Generating = true
	epoch := e.epoch
	e.mu.Unlock()

	if e.delay > 0 {
		e.sleep(e.delay)
	}

	turn := Turn{Number: turnNumber, Kind: rule.Kind, Text: text}
	e.mu.Lock()
	defer e.mu.Unlock()
	if epoch != e.epoch {
		// Reset while sleeping; the new quest must not inherit this turn.
		return turn, nil
	}
	e.state.History = append(e.state.History, turn)
	e.state.CurrentTurn = turnNumber
	e.state.Generating = false
	return turn, nil
}

// compose must be called with e.mu held; rng is not safe for concurrent use.
func (e *Engine) compose(rule Rule, roster party.Roster) (string, error) {
	size := e.pools.Size(rule.Kind)
	if size == 0 {
		return "", fmt.Errorf("story: %s pool is empty", rule.Kind)
	}
	var vars fragmentVars
	if rule.Join != "" {
		vars.Heroes = roster.JoinNames(rule.Join)
		vars.PartyNoun = "party"
		if len(roster) == 1 {
			vars.PartyNoun = "hero"
		}
	}
	return e.pools.render(rule.Kind, e.rng.Intn(size), vars)
}

// State returns a copy of the current turn state.
func (e *Engine) State() TurnState {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := e.state
	out.History = append([]Turn(nil), e.state.History...)
	return out
}

// Generating reports whether an advance is outstanding.
func (e *Engine) Generating() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Generating
}

// Reset clears all turn state. An advance still sleeping when Reset is called
// completes without touching the cleared state.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = TurnState{}
	e.epoch++
}
