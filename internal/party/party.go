// Package party models the adventurers taking part in a quest.
package party

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// MaxRosterSize caps how many heroes can join one quest.
	MaxRosterSize = 6
	// MinLevel and MaxLevel bound a character's level.
	MinLevel = 1
	MaxLevel = 20
)

var (
	// ErrEmptyRoster is returned when no named character was submitted.
	ErrEmptyRoster = errors.New("party: at least one named hero is required")
	// ErrRosterTooLarge is returned when more than MaxRosterSize heroes are submitted.
	ErrRosterTooLarge = errors.New("party: too many heroes")
)

// Class is one of the fixed character classes.
type Class string

const (
	ClassFighter   Class = "Fighter"
	ClassWizard    Class = "Wizard"
	ClassRogue     Class = "Rogue"
	ClassCleric    Class = "Cleric"
	ClassRanger    Class = "Ranger"
	ClassBarbarian Class = "Barbarian"
	ClassBard      Class = "Bard"
	ClassDruid     Class = "Druid"
	ClassMonk      Class = "Monk"
	ClassPaladin   Class = "Paladin"
	ClassSorcerer  Class = "Sorcerer"
	ClassWarlock   Class = "Warlock"
)

// Classes lists every class in display order.
var Classes = []Class{
	ClassFighter, ClassWizard, ClassRogue, ClassCleric, ClassRanger, ClassBarbarian,
	ClassBard, ClassDruid, ClassMonk, ClassPaladin, ClassSorcerer, ClassWarlock,
}

// Valid reports whether c is a known class.
func (c Class) Valid() bool {
	for _, known := range Classes {
		if c == known {
			return true
		}
	}
	return false
}

// Next cycles to the following class, wrapping around. Step may be negative.
func (c Class) Next(step int) Class {
	idx := 0
	for i, known := range Classes {
		if c == known {
			idx = i
			break
		}
	}
	n := len(Classes)
	return Classes[((idx+step)%n+n)%n]
}

// Character is a single hero.
type Character struct {
	Name  string `yaml:"name"`
	Class Class  `yaml:"class"`
	Level int    `yaml:"level"`
}

// NewCharacter returns the blank row the setup form starts with.
func NewCharacter() Character {
	return Character{Class: ClassFighter, Level: MinLevel}
}

// Named reports whether the character carries a usable name.
func (c Character) Named() bool {
	return strings.TrimSpace(c.Name) != ""
}

func (c Character) validate() error {
	if !c.Class.Valid() {
		return fmt.Errorf("party: %s has unknown class %q", c.Name, c.Class)
	}
	if c.Level < MinLevel || c.Level > MaxLevel {
		return fmt.Errorf("party: %s level %d outside %d-%d", c.Name, c.Level, MinLevel, MaxLevel)
	}
	return nil
}

// ClampLevel pins level into the supported range.
func ClampLevel(level int) int {
	if level < MinLevel {
		return MinLevel
	}
	if level > MaxLevel {
		return MaxLevel
	}
	return level
}

// Roster is the ordered party. Build it with NewRoster.
type Roster []Character

// NewRoster drops rows without a name, trims the rest and validates them.
// The returned roster never aliases the input slice.
func NewRoster(chars []Character) (Roster, error) {
	if len(chars) > MaxRosterSize {
		return nil, fmt.Errorf("%w: %d > %d", ErrRosterTooLarge, len(chars), MaxRosterSize)
	}
	roster := make(Roster, 0, len(chars))
	for _, c := range chars {
		if !c.Named() {
			continue
		}
		c.Name = strings.TrimSpace(c.Name)
		if err := c.validate(); err != nil {
			return nil, err
		}
		roster = append(roster, c)
	}
	if len(roster) == 0 {
		return nil, ErrEmptyRoster
	}
	return roster, nil
}

// Names returns every hero name in roster order.
func (r Roster) Names() []string {
	names := make([]string, len(r))
	for i, c := range r {
		names[i] = c.Name
	}
	return names
}

// JoinNames joins hero names with sep.
func (r Roster) JoinNames(sep string) string {
	return strings.Join(r.Names(), sep)
}

// Clone returns an independent copy.
func (r Roster) Clone() Roster {
	if r == nil {
		return nil
	}
	out := make(Roster, len(r))
	copy(out, r)
	return out
}
