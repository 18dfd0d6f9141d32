package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingrea/pixel-quest/internal/story"
)

func TestLoadProjectConfigDefaultsWhenMissing(t *testing.T) {
	projectDir := t.TempDir()
	cfg, err := NewConfig(projectDir)
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Project.Version)
	assert.Equal(t, story.DefaultSettings(), cfg.QuestDefaults())
	assert.Equal(t, story.DefaultGenerationDelay, cfg.GenerationDelay())
	assert.Equal(t, 30*time.Millisecond, cfg.RevealInterval())
	assert.Equal(t, 800*time.Millisecond, cfg.DiceRollDelay())
	assert.Equal(t, "info", cfg.LogLevel())
	assert.Empty(t, cfg.FragmentsPath())
}

func TestInitQuestDirWritesParsableConfig(t *testing.T) {
	projectDir := t.TempDir()
	require.NoError(t, InitQuestDir(projectDir))
	assert.DirExists(t, filepath.Join(projectDir, QuestDir, "logs"))
	assert.DirExists(t, filepath.Join(projectDir, QuestDir, "chronicles"))

	cfg, err := NewConfig(projectDir)
	require.NoError(t, err)
	assert.Equal(t, story.DefaultSettings(), cfg.QuestDefaults())
	assert.Equal(t, 2*time.Second, cfg.GenerationDelay())

	// A second init keeps user edits.
	custom := []byte("version: 1\nquest:\n  session_length: 20\n")
	require.NoError(t, os.WriteFile(cfg.ProjectConfigPath(), custom, 0o644))
	require.NoError(t, InitQuestDir(projectDir))
	data, err := os.ReadFile(cfg.ProjectConfigPath())
	require.NoError(t, err)
	assert.Equal(t, custom, data)
}

func TestLoadProjectConfigParsesYaml(t *testing.T) {
	projectDir := t.TempDir()
	writeConfig(t, projectDir, `
version: 1
quest:
  session_length: 24
  difficulty: Nightmare
  dice_roller: false
  voice_narration: true
pacing:
  generation_delay: 500ms
  reveal_interval: 10ms
fragments:
  path: lore/fragments.yaml
logging:
  level: DEBUG
`)
	cfg, err := NewConfig(projectDir)
	require.NoError(t, err)
	assert.Equal(t, story.Settings{
		SessionLength:     24,
		Difficulty:        story.DifficultyNightmare,
		UseDiceRoller:     false,
		UseVoiceNarration: true,
	}, cfg.QuestDefaults())
	assert.Equal(t, 500*time.Millisecond, cfg.GenerationDelay())
	assert.Equal(t, 10*time.Millisecond, cfg.RevealInterval())
	assert.Equal(t, filepath.Join(projectDir, "lore", "fragments.yaml"), cfg.FragmentsPath())
	assert.Equal(t, "debug", cfg.LogLevel())
}

func TestLoadProjectConfigValidation(t *testing.T) {
	cases := map[string]string{
		"session length": "quest:\n  session_length: 70\n",
		"difficulty":     "quest:\n  difficulty: legendary\n",
		"log level":      "logging:\n  level: chatty\n",
		"pacing":         "pacing:\n  generation_delay: -1s\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			projectDir := t.TempDir()
			writeConfig(t, projectDir, body)
			_, err := NewConfig(projectDir)
			require.Error(t, err)
		})
	}
}

func TestEnvOverridesWin(t *testing.T) {
	projectDir := t.TempDir()
	t.Setenv("PIXELQUEST_GENERATION_DELAY", "0s")
	t.Setenv("PIXELQUEST_REVEAL_INTERVAL", "5ms")
	t.Setenv("PIXELQUEST_FRAGMENTS", "custom.yaml")
	t.Setenv("PIXELQUEST_LOG_LEVEL", "WARN")
	cfg, err := NewConfig(projectDir)
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), cfg.GenerationDelay())
	assert.Equal(t, 5*time.Millisecond, cfg.RevealInterval())
	assert.Equal(t, filepath.Join(projectDir, "custom.yaml"), cfg.FragmentsPath())
	assert.Equal(t, "warn", cfg.LogLevel())
}

func TestSetQuestDefaultsPersists(t *testing.T) {
	projectDir := t.TempDir()
	require.NoError(t, InitQuestDir(projectDir))
	cfg, err := NewConfig(projectDir)
	require.NoError(t, err)

	chosen := story.Settings{SessionLength: 7, Difficulty: story.DifficultyEasy, UseDiceRoller: false}
	require.NoError(t, cfg.SetQuestDefaults(chosen))

	reloaded, err := NewConfig(projectDir)
	require.NoError(t, err)
	assert.Equal(t, chosen, reloaded.QuestDefaults())

	require.Error(t, cfg.SetQuestDefaults(story.Settings{SessionLength: 1, Difficulty: story.DifficultyEasy}))
}

func writeConfig(t *testing.T, projectDir, body string) {
	t.Helper()
	dir := filepath.Join(projectDir, QuestDir)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(strings.TrimSpace(body)+"\n"), 0o644))
}
