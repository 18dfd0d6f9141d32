// Package dice implements the table-side dice roller. Rolls never touch the
// story engine.
package dice

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// Faces lists the supported dice in display order.
var Faces = []int{4, 6, 8, 10, 12, 20}

// DefaultFaces is the die selected when the roller opens.
const DefaultFaces = 20

// ErrUnsupportedDie indicates a die outside Faces.
var ErrUnsupportedDie = errors.New("dice: unsupported die")

// Supported reports whether faces is one of Faces.
func Supported(faces int) bool {
	for _, f := range Faces {
		if f == faces {
			return true
		}
	}
	return false
}

// Label renders a die as "d20".
func Label(faces int) string {
	return fmt.Sprintf("d%d", faces)
}

// Roller draws uniform results. It is safe for concurrent use.
type Roller struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRoller seeds a roller from the current time.
func NewRoller() *Roller {
	return NewSeededRoller(time.Now().UnixNano())
}

// NewSeededRoller returns a deterministic roller.
func NewSeededRoller(seed int64) *Roller {
	return &Roller{rng: rand.New(rand.NewSource(seed))}
}

// Roll returns a value in [1, faces].
func (r *Roller) Roll(faces int) (int, error) {
	if !Supported(faces) {
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedDie, Label(faces))
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Intn(faces) + 1, nil
}
