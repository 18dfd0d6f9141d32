// internal/config/config.go
//
// This package handles configuration and the .pixelquest directory structure.
// Every directory PixelQuest runs from gets a .pixelquest/ folder holding the
// config file, logs and archived chronicles.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/kingrea/pixel-quest/internal/story"
)

const (
	// QuestDir is the name of the directory we create in the working directory
	QuestDir = ".pixelquest"

	defaultRevealInterval = 30 * time.Millisecond
	defaultDiceRollDelay  = 800 * time.Millisecond
	defaultLogLevel       = "info"
)

const defaultProjectConfigYAML = `# pixelquest configuration
version: 1

# Values the quest setup screen starts with. Updated whenever a quest begins.
quest:
  session_length: 10
  difficulty: normal
  dice_roller: true
  voice_narration: false

pacing:
  generation_delay: 2s
  reveal_interval: 30ms
  dice_roll_delay: 800ms

# Optional custom fragment pools (relative paths resolve from this directory's parent).
fragments:
  path: ""

logging:
  level: info
`

// QuestDefaults seeds the quest setup form.
type QuestDefaults struct {
	SessionLength  int    `yaml:"session_length"`
	Difficulty     string `yaml:"difficulty"`
	DiceRoller     *bool  `yaml:"dice_roller,omitempty"`
	VoiceNarration bool   `yaml:"voice_narration"`
}

// PacingConfig controls how long the storyteller pauses. Zero means default.
type PacingConfig struct {
	GenerationDelay time.Duration `yaml:"generation_delay"`
	RevealInterval  time.Duration `yaml:"reveal_interval"`
	DiceRollDelay   time.Duration `yaml:"dice_roll_delay"`
}

// FragmentsConfig points at a custom fragment pools file.
type FragmentsConfig struct {
	Path string `yaml:"path,omitempty"`
}

// LoggingConfig tunes the diagnostic log.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// ProjectConfig models .pixelquest/config.yaml.
type ProjectConfig struct {
	Version   int             `yaml:"version"`
	Quest     QuestDefaults   `yaml:"quest"`
	Pacing    PacingConfig    `yaml:"pacing"`
	Fragments FragmentsConfig `yaml:"fragments"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// EnvOverrides are read from the environment and win over config.yaml. They
// are never written back to disk.
type EnvOverrides struct {
	GenerationDelay *time.Duration `env:"PIXELQUEST_GENERATION_DELAY"`
	RevealInterval  *time.Duration `env:"PIXELQUEST_REVEAL_INTERVAL"`
	FragmentsPath   string         `env:"PIXELQUEST_FRAGMENTS"`
	LogLevel        string         `env:"PIXELQUEST_LOG_LEVEL"`
}

// Config holds the runtime configuration for PixelQuest.
type Config struct {
	// ProjectDir is the directory where the user ran `pixelquest` from
	ProjectDir string

	// QuestProjectDir is ProjectDir/.pixelquest
	QuestProjectDir string

	Project ProjectConfig
	Env     EnvOverrides
}

// InitQuestDir creates the .pixelquest directory structure in projectDir.
//
// Structure created:
// .pixelquest/
// ├── config.yaml
// ├── logs/         <- journey.log and pixelquest.log
// └── chronicles/   <- one YAML transcript per archived session
func InitQuestDir(projectDir string) error {
	questDir := filepath.Join(projectDir, QuestDir)
	dirs := []string{
		filepath.Join(questDir, "logs"),
		filepath.Join(questDir, "chronicles"),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return ensureProjectConfig(filepath.Join(questDir, "config.yaml"))
}

// NewConfig loads config.yaml (if any) and applies environment overrides.
func NewConfig(projectDir string) (*Config, error) {
	cfg := &Config{
		ProjectDir:      projectDir,
		QuestProjectDir: filepath.Join(projectDir, QuestDir),
		Project:         defaultProjectConfig(),
	}
	if err := cfg.loadProjectConfig(); err != nil {
		return nil, err
	}
	if err := env.Parse(&cfg.Env); err != nil {
		return nil, fmt.Errorf("config: parse env: %w", err)
	}
	return cfg, nil
}

// LogsDir returns the path to the logs directory
func (c *Config) LogsDir() string {
	return filepath.Join(c.QuestProjectDir, "logs")
}

// JourneyLogPath is the human-readable log shown in the TUI.
func (c *Config) JourneyLogPath() string {
	return filepath.Join(c.LogsDir(), "journey.log")
}

// DiagnosticLogPath is the structured log for troubleshooting.
func (c *Config) DiagnosticLogPath() string {
	return filepath.Join(c.LogsDir(), "pixelquest.log")
}

// ChroniclesDir holds archived sessions.
func (c *Config) ChroniclesDir() string {
	return filepath.Join(c.QuestProjectDir, "chronicles")
}

// ProjectConfigPath returns the on-disk location for the config file.
func (c *Config) ProjectConfigPath() string {
	return filepath.Join(c.QuestProjectDir, "config.yaml")
}

// QuestDefaults returns the settings the quest setup form starts with.
func (c *Config) QuestDefaults() story.Settings {
	q := c.Project.Quest
	s := story.DefaultSettings()
	s.SessionLength = story.ClampSessionLength(q.SessionLength)
	if d, err := story.ParseDifficulty(q.Difficulty); err == nil {
		s.Difficulty = d
	}
	if q.DiceRoller != nil {
		s.UseDiceRoller = *q.DiceRoller
	}
	s.UseVoiceNarration = q.VoiceNarration
	return s
}

// SetQuestDefaults remembers s as the starting point for the next quest and
// persists it to config.yaml.
func (c *Config) SetQuestDefaults(s story.Settings) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	dice := s.UseDiceRoller
	c.Project.Quest = QuestDefaults{
		SessionLength:  s.SessionLength,
		Difficulty:     string(s.Difficulty),
		DiceRoller:     &dice,
		VoiceNarration: s.UseVoiceNarration,
	}
	return c.saveProjectConfig()
}

// GenerationDelay is how long the storyteller "thinks" before each turn.
func (c *Config) GenerationDelay() time.Duration {
	if c.Env.GenerationDelay != nil && *c.Env.GenerationDelay >= 0 {
		return *c.Env.GenerationDelay
	}
	return c.Project.Pacing.GenerationDelay
}

// RevealInterval is the per-character delay of the typewriter reveal.
func (c *Config) RevealInterval() time.Duration {
	if c.Env.RevealInterval != nil && *c.Env.RevealInterval >= 0 {
		return *c.Env.RevealInterval
	}
	return c.Project.Pacing.RevealInterval
}

// DiceRollDelay is the length of the dice roll animation.
func (c *Config) DiceRollDelay() time.Duration {
	return c.Project.Pacing.DiceRollDelay
}

// FragmentsPath returns the custom fragment pools file, or "" for the bundled set.
func (c *Config) FragmentsPath() string {
	if p := strings.TrimSpace(c.Env.FragmentsPath); p != "" {
		return resolvePath(c.ProjectDir, p)
	}
	return c.Project.Fragments.Path
}

// LogLevel returns the diagnostic log level.
func (c *Config) LogLevel() string {
	if lvl := strings.TrimSpace(c.Env.LogLevel); lvl != "" {
		return strings.ToLower(lvl)
	}
	return c.Project.Logging.Level
}

func (c *Config) loadProjectConfig() error {
	path := c.ProjectConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	var parsed ProjectConfig
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	parsed.applyDefaults()
	parsed.normalize(c.ProjectDir)
	if err := parsed.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	c.Project = parsed
	return nil
}

func defaultProjectConfig() ProjectConfig {
	pc := ProjectConfig{}
	pc.applyDefaults()
	return pc
}

func (pc *ProjectConfig) applyDefaults() {
	if pc.Version == 0 {
		pc.Version = 1
	}
	if pc.Quest.SessionLength == 0 {
		pc.Quest.SessionLength = story.DefaultSessionLength
	}
	if strings.TrimSpace(pc.Quest.Difficulty) == "" {
		pc.Quest.Difficulty = string(story.DifficultyNormal)
	}
	if pc.Quest.DiceRoller == nil {
		enabled := true
		pc.Quest.DiceRoller = &enabled
	}
	if pc.Pacing.GenerationDelay == 0 {
		pc.Pacing.GenerationDelay = story.DefaultGenerationDelay
	}
	if pc.Pacing.RevealInterval == 0 {
		pc.Pacing.RevealInterval = defaultRevealInterval
	}
	if pc.Pacing.DiceRollDelay == 0 {
		pc.Pacing.DiceRollDelay = defaultDiceRollDelay
	}
	if strings.TrimSpace(pc.Logging.Level) == "" {
		pc.Logging.Level = defaultLogLevel
	}
}

func (pc *ProjectConfig) normalize(base string) {
	pc.Quest.Difficulty = strings.ToLower(strings.TrimSpace(pc.Quest.Difficulty))
	pc.Fragments.Path = resolvePath(base, pc.Fragments.Path)
	pc.Logging.Level = strings.ToLower(strings.TrimSpace(pc.Logging.Level))
}

func (pc *ProjectConfig) validate() error {
	if pc.Version < 1 {
		return fmt.Errorf("config version must be >= 1")
	}
	q := pc.Quest
	if q.SessionLength < story.MinSessionLength || q.SessionLength > story.MaxSessionLength {
		return fmt.Errorf("quest.session_length must be between %d and %d", story.MinSessionLength, story.MaxSessionLength)
	}
	if _, err := story.ParseDifficulty(q.Difficulty); err != nil {
		return fmt.Errorf("quest.difficulty: %w", err)
	}
	if pc.Pacing.GenerationDelay < 0 || pc.Pacing.RevealInterval < 0 || pc.Pacing.DiceRollDelay < 0 {
		return fmt.Errorf("pacing durations must not be negative")
	}
	switch pc.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error")
	}
	return nil
}

func resolvePath(base, candidate string) string {
	trimmed := strings.TrimSpace(candidate)
	if trimmed == "" {
		return ""
	}
	if filepath.IsAbs(trimmed) {
		return filepath.Clean(trimmed)
	}
	return filepath.Clean(filepath.Join(base, trimmed))
}

func ensureProjectConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(defaultProjectConfigYAML), 0o644)
}

func (c *Config) saveProjectConfig() error {
	if c == nil {
		return fmt.Errorf("config: nil receiver")
	}
	c.Project.applyDefaults()
	if err := c.Project.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := os.MkdirAll(c.QuestProjectDir, 0o755); err != nil {
		return fmt.Errorf("config: ensure quest dir: %w", err)
	}
	data, err := yaml.Marshal(c.Project)
	if err != nil {
		return fmt.Errorf("config: encode config: %w", err)
	}
	if err := os.WriteFile(c.ProjectConfigPath(), data, 0o644); err != nil {
		return fmt.Errorf("config: write project config: %w", err)
	}
	return nil
}
