package story

import (
	"fmt"
	"strings"
)

const (
	MinSessionLength     = 5
	MaxSessionLength     = 50
	DefaultSessionLength = 10
)

// Difficulty is carried with the session but does not affect fragment choice.
type Difficulty string

const (
	DifficultyEasy      Difficulty = "easy"
	DifficultyNormal    Difficulty = "normal"
	DifficultyHard      Difficulty = "hard"
	DifficultyNightmare Difficulty = "nightmare"
)

// Difficulties lists every difficulty in display order.
var Difficulties = []Difficulty{DifficultyEasy, DifficultyNormal, DifficultyHard, DifficultyNightmare}

var difficultyDescriptions = map[Difficulty]string{
	DifficultyEasy:      "Gentle challenges, heroic moments",
	DifficultyNormal:    "Balanced adventure with fair stakes",
	DifficultyHard:      "Dangerous encounters, real consequences",
	DifficultyNightmare: "Death lurks around every corner",
}

// ParseDifficulty accepts any casing and surrounding whitespace.
func ParseDifficulty(value string) (Difficulty, error) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(value)))
	if !d.Valid() {
		return "", fmt.Errorf("story: unknown difficulty %q", value)
	}
	return d, nil
}

// Valid reports whether d is one of Difficulties.
func (d Difficulty) Valid() bool {
	_, ok := difficultyDescriptions[d]
	return ok
}

// Label is the capitalized display name.
func (d Difficulty) Label() string {
	if d == "" {
		return ""
	}
	s := string(d)
	return strings.ToUpper(s[:1]) + s[1:]
}

// Description is the one-line blurb shown in the picker.
func (d Difficulty) Description() string {
	return difficultyDescriptions[d]
}

// Settings are chosen once before play and stay fixed for the session.
type Settings struct {
	SessionLength     int        `yaml:"session_length"`
	Difficulty        Difficulty `yaml:"difficulty"`
	UseDiceRoller     bool       `yaml:"dice_roller"`
	UseVoiceNarration bool       `yaml:"voice_narration"`
}

// DefaultSettings mirrors the quest setup form's initial values.
func DefaultSettings() Settings {
	return Settings{
		SessionLength: DefaultSessionLength,
		Difficulty:    DifficultyNormal,
		UseDiceRoller: true,
	}
}

// Validate checks the ranges the setup form enforces.
func (s Settings) Validate() error {
	if s.SessionLength < MinSessionLength || s.SessionLength > MaxSessionLength {
		return fmt.Errorf("story: session length %d outside %d-%d", s.SessionLength, MinSessionLength, MaxSessionLength)
	}
	if !s.Difficulty.Valid() {
		return fmt.Errorf("story: unknown difficulty %q", s.Difficulty)
	}
	return nil
}

// ClampSessionLength pins n into the supported range.
func ClampSessionLength(n int) int {
	if n < MinSessionLength {
		return MinSessionLength
	}
	if n > MaxSessionLength {
		return MaxSessionLength
	}
	return n
}
