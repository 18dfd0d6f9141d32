package story

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSettingsAreValid(t *testing.T) {
	s := DefaultSettings()
	require.NoError(t, s.Validate())
	assert.Equal(t, 10, s.SessionLength)
	assert.Equal(t, DifficultyNormal, s.Difficulty)
	assert.True(t, s.UseDiceRoller)
}

func TestSettingsValidateRanges(t *testing.T) {
	s := DefaultSettings()
	s.SessionLength = MinSessionLength - 1
	require.Error(t, s.Validate())
	s.SessionLength = MaxSessionLength + 1
	require.Error(t, s.Validate())
	s.SessionLength = MaxSessionLength
	require.NoError(t, s.Validate())
	s.Difficulty = "impossible"
	require.Error(t, s.Validate())
}

func TestParseDifficulty(t *testing.T) {
	d, err := ParseDifficulty("  NightMare ")
	require.NoError(t, err)
	assert.Equal(t, DifficultyNightmare, d)
	assert.Equal(t, "Nightmare", d.Label())
	assert.NotEmpty(t, d.Description())

	_, err = ParseDifficulty("legendary")
	require.Error(t, err)
}

func TestClampSessionLength(t *testing.T) {
	assert.Equal(t, MinSessionLength, ClampSessionLength(1))
	assert.Equal(t, 25, ClampSessionLength(25))
	assert.Equal(t, MaxSessionLength, ClampSessionLength(80))
}
