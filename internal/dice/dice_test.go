package dice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRollStaysWithinFaces(t *testing.T) {
	roller := NewSeededRoller(1)
	for _, faces := range Faces {
		seen := map[int]bool{}
		for i := 0; i < 2000; i++ {
			v, err := roller.Roll(faces)
			require.NoError(t, err)
			require.GreaterOrEqual(t, v, 1)
			require.LessOrEqual(t, v, faces)
			seen[v] = true
		}
		assert.Len(t, seen, faces, "every face of %s should come up", Label(faces))
	}
}

func TestRollRejectsUnsupportedDie(t *testing.T) {
	roller := NewSeededRoller(1)
	for _, faces := range []int{0, 3, 7, 100} {
		_, err := roller.Roll(faces)
		require.ErrorIs(t, err, ErrUnsupportedDie)
	}
}

func TestSeededRollersRepeat(t *testing.T) {
	a := NewSeededRoller(77)
	b := NewSeededRoller(77)
	for i := 0; i < 20; i++ {
		va, _ := a.Roll(DefaultFaces)
		vb, _ := b.Roll(DefaultFaces)
		assert.Equal(t, va, vb)
	}
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "d12", Label(12))
	assert.True(t, Supported(DefaultFaces))
}
