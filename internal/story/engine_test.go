package story

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingrea/pixel-quest/internal/party"
)

func TestAdvanceFirstTurnDrawsOpening(t *testing.T) {
	pools := mustDefaultPools(t)
	for size := 1; size <= party.MaxRosterSize; size++ {
		roster := makeRoster(size)
		for length := MinSessionLength; length <= MaxSessionLength; length++ {
			engine := newTestEngine(t, pools, int64(size*100+length))
			settings := Settings{SessionLength: length, Difficulty: DifficultyNormal}

			turn, err := engine.AdvanceTurn(roster, settings, 1)
			require.NoError(t, err)
			assert.Equal(t, KindOpening, turn.Kind)
			assert.NotEmpty(t, turn.Text)
			assert.Contains(t, renderedPool(t, pools, KindOpening, roster, ", "), turn.Text)

			state := engine.State()
			assert.Equal(t, 1, state.CurrentTurn)
			assert.Len(t, state.History, 1)
			assert.False(t, state.Generating)
		}
	}
}

func TestAdvanceInOrderKeepsHistoryAlignedWithTurn(t *testing.T) {
	pools := mustDefaultPools(t)
	roster := makeRoster(3)
	for _, length := range []int{5, 6, 10, 17, 50} {
		engine := newTestEngine(t, pools, int64(length))
		settings := Settings{SessionLength: length, Difficulty: DifficultyHard}
		for turnNumber := 1; turnNumber <= length; turnNumber++ {
			turn, err := engine.AdvanceTurn(roster, settings, turnNumber)
			require.NoError(t, err)
			assert.Equal(t, Classify(turnNumber, settings), turn.Kind, "length %d turn %d", length, turnNumber)

			state := engine.State()
			assert.Equal(t, turnNumber, state.CurrentTurn)
			assert.Len(t, state.History, state.CurrentTurn)
			assert.LessOrEqual(t, state.CurrentTurn, length)
		}
		_, err := engine.AdvanceTurn(roster, settings, length+1)
		require.ErrorIs(t, err, ErrTurnOutOfRange)
		assert.Equal(t, length, engine.State().CurrentTurn)
	}
}

func TestClassifyTriggersExactly(t *testing.T) {
	for length := MinSessionLength; length <= MaxSessionLength; length++ {
		settings := Settings{SessionLength: length}
		for turn := 1; turn <= length; turn++ {
			want := KindEncounter
			switch {
			case turn == 1:
				want = KindOpening
			case turn == length/2:
				want = KindMidpoint
			case turn == length:
				want = KindEnding
			}
			assert.Equal(t, want, Classify(turn, settings), "length %d turn %d", length, turn)
		}
	}
}

func TestShortSessionPrecedenceFavorsOpening(t *testing.T) {
	pools := mustDefaultPools(t)
	roster := makeRoster(2)

	// floor(2/2) == 1: turn 1 is both the opening and the midpoint.
	settings := Settings{SessionLength: 2}
	engine := newTestEngine(t, pools, 7)
	first, err := engine.AdvanceTurn(roster, settings, 1)
	require.NoError(t, err)
	assert.Equal(t, KindOpening, first.Kind)
	second, err := engine.AdvanceTurn(roster, settings, 2)
	require.NoError(t, err)
	assert.Equal(t, KindEnding, second.Kind)

	// A one-turn session: the opening also outranks the ending.
	assert.Equal(t, KindOpening, Classify(1, Settings{SessionLength: 1}))
	// floor(3/2) == 1 again, so the midpoint never fires.
	assert.Equal(t, KindOpening, Classify(1, Settings{SessionLength: 3}))
	assert.Equal(t, KindEncounter, Classify(2, Settings{SessionLength: 3}))
	assert.Equal(t, KindEnding, Classify(3, Settings{SessionLength: 3}))
	// A four-turn quest places its midpoint on turn 2.
	assert.Equal(t, KindMidpoint, Classify(2, Settings{SessionLength: 4}))
}

func TestAriaScenario(t *testing.T) {
	pools := mustDefaultPools(t)
	roster := party.Roster{{Name: "Aria", Class: party.ClassWizard, Level: 3}}
	settings := Settings{SessionLength: 5, Difficulty: DifficultyNormal, UseDiceRoller: true}
	engine := newTestEngine(t, pools, 42)

	wantKinds := []Kind{KindOpening, KindMidpoint, KindEncounter, KindEncounter, KindEnding}
	encounters := renderedPool(t, pools, KindEncounter, roster, "")
	for i, want := range wantKinds {
		turn, err := engine.AdvanceTurn(roster, settings, i+1)
		require.NoError(t, err)
		assert.Equal(t, want, turn.Kind)
		if want == KindEncounter {
			assert.Contains(t, encounters, turn.Text)
			assert.NotContains(t, turn.Text, "Aria")
		} else {
			assert.Contains(t, turn.Text, "Aria")
		}
	}
}

func TestPartyNounAndSeparators(t *testing.T) {
	pools, err := ParsePools([]byte(`
opening: ["{{.Heroes}}|{{.PartyNoun}}"]
midpoint: ["mid {{.Heroes}}"]
ending: ["end {{.Heroes}}"]
encounter: ["encounter [{{.Heroes}}]"]
`))
	require.NoError(t, err)
	settings := Settings{SessionLength: 6}

	solo := newTestEngine(t, pools, 1)
	turn, err := solo.AdvanceTurn(makeRoster(1), settings, 1)
	require.NoError(t, err)
	assert.Equal(t, "Hero1|hero", turn.Text)

	group := newTestEngine(t, pools, 1)
	roster := makeRoster(3)
	var texts []string
	for n := 1; n <= settings.SessionLength; n++ {
		turn, err := group.AdvanceTurn(roster, settings, n)
		require.NoError(t, err)
		texts = append(texts, turn.Text)
	}
	assert.Equal(t, []string{
		"Hero1, Hero2, Hero3|party",
		"encounter []",
		"mid Hero1 and Hero2 and Hero3",
		"encounter []",
		"encounter []",
		"end Hero1 and Hero2 and Hero3",
	}, texts)
}

func TestAdvanceRejectsInvalidCalls(t *testing.T) {
	engine := newTestEngine(t, mustDefaultPools(t), 3)
	settings := Settings{SessionLength: 5}
	roster := makeRoster(2)

	_, err := engine.AdvanceTurn(nil, settings, 1)
	require.ErrorIs(t, err, ErrEmptyRoster)
	_, err = engine.AdvanceTurn(roster, settings, 0)
	require.ErrorIs(t, err, ErrTurnOutOfRange)
	_, err = engine.AdvanceTurn(roster, settings, 6)
	require.ErrorIs(t, err, ErrTurnOutOfRange)
	_, err = engine.AdvanceTurn(roster, settings, 2)
	require.ErrorIs(t, err, ErrTurnOutOfSequence)

	state := engine.State()
	assert.Zero(t, state.CurrentTurn)
	assert.Empty(t, state.History)
	assert.False(t, state.Generating)
}

func TestAdvanceMarksGeneratingWhileSleeping(t *testing.T) {
	entered := make(chan time.Duration, 1)
	release := make(chan struct{})
	sleeper := func(d time.Duration) {
		entered <- d
		<-release
	}
	engine, err := NewEngine(mustDefaultPools(t), WithSeed(9), WithSleeper(sleeper))
	require.NoError(t, err)
	roster := makeRoster(1)
	settings := Settings{SessionLength: 5}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := engine.AdvanceTurn(roster, settings, 1)
		assert.NoError(t, err)
	}()

	assert.Equal(t, DefaultGenerationDelay, <-entered)
	assert.True(t, engine.Generating())
	_, err = engine.AdvanceTurn(roster, settings, 1)
	require.ErrorIs(t, err, ErrGenerationInProgress)

	close(release)
	wg.Wait()
	state := engine.State()
	assert.False(t, state.Generating)
	assert.Equal(t, 1, state.CurrentTurn)
}

func TestResetDiscardsTurnStillSleeping(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	engine, err := NewEngine(mustDefaultPools(t), WithSeed(5), WithSleeper(func(time.Duration) {
		close(entered)
		<-release
	}))
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = engine.AdvanceTurn(makeRoster(1), Settings{SessionLength: 5}, 1)
	}()
	<-entered
	engine.Reset()
	close(release)
	<-done

	state := engine.State()
	assert.Zero(t, state.CurrentTurn)
	assert.Empty(t, state.History)
	assert.False(t, state.Generating)
}

func TestWithDelayZeroSkipsSleeper(t *testing.T) {
	called := false
	engine, err := NewEngine(mustDefaultPools(t), WithDelay(0), WithSleeper(func(time.Duration) { called = true }))
	require.NoError(t, err)
	_, err = engine.AdvanceTurn(makeRoster(1), Settings{SessionLength: 5}, 1)
	require.NoError(t, err)
	assert.False(t, called)
}

func TestSeededEnginesAreDeterministic(t *testing.T) {
	pools := mustDefaultPools(t)
	roster := makeRoster(2)
	settings := Settings{SessionLength: 12}
	a := newTestEngine(t, pools, 99)
	b := newTestEngine(t, pools, 99)
	for n := 1; n <= settings.SessionLength; n++ {
		ta, err := a.AdvanceTurn(roster, settings, n)
		require.NoError(t, err)
		tb, err := b.AdvanceTurn(roster, settings, n)
		require.NoError(t, err)
		assert.Equal(t, ta, tb)
	}
}

func TestNewEngineRequiresPools(t *testing.T) {
	_, err := NewEngine(nil)
	require.Error(t, err)
}

func newTestEngine(t *testing.T, pools *Pools, seed int64) *Engine {
	t.Helper()
	engine, err := NewEngine(pools, WithSeed(seed), WithSleeper(func(time.Duration) {}))
	require.NoError(t, err)
	return engine
}

func mustDefaultPools(t *testing.T) *Pools {
	t.Helper()
	pools, err := DefaultPools()
	require.NoError(t, err)
	return pools
}

func makeRoster(size int) party.Roster {
	roster := make(party.Roster, size)
	for i := range roster {
		roster[i] = party.Character{Name: "Hero" + string(rune('1'+i)), Class: party.ClassRogue, Level: 1}
	}
	return roster
}

// renderedPool renders every candidate of kind the way the engine would.
func renderedPool(t *testing.T, pools *Pools, kind Kind, roster party.Roster, join string) []string {
	t.Helper()
	var vars fragmentVars
	if join != "" {
		vars.Heroes = roster.JoinNames(join)
		vars.PartyNoun = "party"
		if len(roster) == 1 {
			vars.PartyNoun = "hero"
		}
	}
	out := make([]string, pools.Size(kind))
	for i := range out {
		text, err := pools.render(kind, i, vars)
		require.NoError(t, err)
		out[i] = text
	}
	return out
}
