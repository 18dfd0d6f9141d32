package storyteller

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingrea/pixel-quest/internal/dice"
	"github.com/kingrea/pixel-quest/internal/modes"
	"github.com/kingrea/pixel-quest/internal/party"
	"github.com/kingrea/pixel-quest/internal/session"
	"github.com/kingrea/pixel-quest/internal/story"
)

func TestRevealBlocksNextTurnUntilFinished(t *testing.T) {
	m, ctrl := newPlayingMode(t)

	require.True(t, m.Revealing())
	assert.Contains(t, m.View(), "Reading...")

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, ctrl.Snapshot().Pending, "next turn must wait for the reveal")

	m.Update(tea.KeyMsg{Type: tea.KeySpace})
	require.False(t, m.Revealing())
	assert.Equal(t, len([]rune(ctrl.Snapshot().Story)), m.revealed)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.NotNil(t, cmd)
	assert.True(t, ctrl.Snapshot().Pending)
	assert.Contains(t, m.View(), "Generating...")
}

func TestRevealTicksAdvanceOneRuneAtATime(t *testing.T) {
	m, ctrl := newPlayingMode(t)
	text := []rune(ctrl.Snapshot().Story)

	m.Update(revealTickMsg{seq: m.revealSeq})
	m.Update(revealTickMsg{seq: m.revealSeq})
	assert.Equal(t, 2, m.revealed)

	m.Update(revealTickMsg{seq: m.revealSeq - 1})
	assert.Equal(t, 2, m.revealed, "ticks from an earlier reveal are ignored")

	for m.Revealing() {
		m.Update(revealTickMsg{seq: m.revealSeq})
	}
	assert.Equal(t, len(text), m.revealed)
}

func TestDicePanelHiddenWhenRollerDisabled(t *testing.T) {
	m, _ := newModeWithSettings(t, story.Settings{
		SessionLength: story.MinSessionLength,
		Difficulty:    story.DifficultyHard,
		UseDiceRoller: false,
	})
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("d")})
	assert.False(t, m.showDice)
	assert.NotContains(t, m.View(), "d: dice")
}

func newPlayingMode(t *testing.T) (*Mode, *session.Controller) {
	t.Helper()
	return newModeWithSettings(t, story.DefaultSettings())
}

func newModeWithSettings(t *testing.T, settings story.Settings) (*Mode, *session.Controller) {
	t.Helper()
	pools, err := story.DefaultPools()
	require.NoError(t, err)
	ctrl, err := session.New(func() (*story.Engine, error) {
		return story.NewEngine(pools, story.WithDelay(0), story.WithSeed(1))
	})
	require.NoError(t, err)
	require.NoError(t, ctrl.SubmitRoster([]party.Character{{Name: "Aria", Class: party.ClassRogue, Level: 3}}))
	req, err := ctrl.SubmitSettings(settings)
	require.NoError(t, err)

	m := New()
	m.Init(&modes.ModeContext{Controller: ctrl, Roller: dice.NewSeededRoller(1)})
	result := ctrl.Generate(req)
	require.NoError(t, ctrl.Apply(result))
	m.Update(modes.TurnGeneratedMsg{Result: result})
	return m, ctrl
}
