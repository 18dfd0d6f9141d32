// Package chronicle archives finished or abandoned quests as YAML transcripts.
package chronicle

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"gopkg.in/yaml.v3"

	"github.com/kingrea/pixel-quest/internal/party"
	"github.com/kingrea/pixel-quest/internal/session"
	"github.com/kingrea/pixel-quest/internal/story"
)

// ErrNotFound is returned when no chronicle exists for an id.
var ErrNotFound = errors.New("chronicle: not found")

const fileExt = ".yaml"

// Record is the persisted transcript of one session.
type Record struct {
	ID        string         `yaml:"id"`
	SessionID string         `yaml:"session_id"`
	Completed bool           `yaml:"completed"`
	Heroes    party.Roster   `yaml:"heroes"`
	Settings  story.Settings `yaml:"settings"`
	Turns     []story.Turn   `yaml:"turns"`
	StartedAt time.Time      `yaml:"started_at"`
	EndedAt   time.Time      `yaml:"ended_at"`
}

// Store keeps one file per chronicle under dir. File names are ULIDs so a
// directory listing is already in archive order.
type Store struct {
	dir   string
	clock func() time.Time
}

// Option customizes the store.
type Option func(*Store)

// WithClock injects a deterministic clock (primarily for tests).
func WithClock(clock func() time.Time) Option {
	return func(s *Store) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewStore roots a store at dir. The directory is created on first save.
func NewStore(dir string, opts ...Option) *Store {
	s := &Store{dir: dir, clock: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Dir returns the directory backing the store.
func (s *Store) Dir() string {
	return s.dir
}

// Archive implements session.Archiver.
func (s *Store) Archive(summary session.Summary) error {
	_, err := s.Save(Record{
		SessionID: summary.SessionID,
		Completed: summary.Completed,
		Heroes:    summary.Roster,
		Settings:  summary.Settings,
		Turns:     summary.Turns,
		StartedAt: summary.StartedAt,
		EndedAt:   summary.EndedAt,
	})
	return err
}

// Save assigns an id when the record has none and writes it to disk.
func (s *Store) Save(rec Record) (Record, error) {
	if rec.ID == "" {
		rec.ID = ulid.MustNew(ulid.Timestamp(s.clock()), ulid.DefaultEntropy()).String()
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return Record{}, fmt.Errorf("chronicle: ensure dir: %w", err)
	}
	data, err := yaml.Marshal(rec)
	if err != nil {
		return Record{}, fmt.Errorf("chronicle: encode %s: %w", rec.ID, err)
	}
	if err := os.WriteFile(s.path(rec.ID), data, 0o644); err != nil {
		return Record{}, fmt.Errorf("chronicle: write %s: %w", rec.ID, err)
	}
	return rec, nil
}

// Load reads a chronicle by id.
func (s *Store) Load(id string) (Record, error) {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Record{}, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return Record{}, fmt.Errorf("chronicle: read %s: %w", id, err)
	}
	var rec Record
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("chronicle: parse %s: %w", id, err)
	}
	return rec, nil
}

// List returns every chronicle id, newest first.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("chronicle: list: %w", err)
	}
	var ids []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, fileExt) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, fileExt))
	}
	sort.Sort(sort.Reverse(sort.StringSlice(ids)))
	return ids, nil
}

func (s *Store) path(id string) string {
	return filepath.Join(s.dir, id+fileExt)
}
