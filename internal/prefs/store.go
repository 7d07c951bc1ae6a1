package prefs

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
)

// Store persists the reviewer's preferences across runs.
type Store interface {
	// AutoSave reports whether the posting should also be saved on the
	// source site after a successful submission. Defaults to true.
	AutoSave() (bool, error)
	SetAutoSave(enabled bool) error
}

type preferences struct {
	SaveToLinkedIn *bool `json:"saveToLinkedIn,omitempty"`
}

// FileStore keeps preferences in a small JSON file.
type FileStore struct {
	mu       sync.Mutex
	filePath string
	log      logrus.FieldLogger
}

func NewFileStore(path string, log logrus.FieldLogger) *FileStore {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		log.WithError(err).Warn("⚠️ Failed to create preferences directory")
	}
	return &FileStore{filePath: path, log: log}
}

func (s *FileStore) AutoSave() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.load()
	if err != nil {
		return true, err
	}
	if p.SaveToLinkedIn == nil {
		return true, nil
	}
	return *p.SaveToLinkedIn, nil
}

func (s *FileStore) SetAutoSave(enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.load()
	if err != nil {
		// an unreadable file is replaced rather than blocking the toggle
		s.log.WithError(err).Warn("⚠️ Overwriting unreadable preferences file")
		p = preferences{}
	}
	p.SaveToLinkedIn = &enabled
	if err := s.save(p); err != nil {
		return err
	}
	s.log.WithField("saveToLinkedIn", enabled).Info("💾 Preference saved")
	return nil
}

// load reads the preferences file; a missing file yields defaults.
func (s *FileStore) load() (preferences, error) {
	var p preferences
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return p, nil
		}
		return p, fmt.Errorf("failed to read preferences: %w", err)
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return preferences{}, fmt.Errorf("failed to parse preferences: %w", err)
	}
	return p, nil
}

func (s *FileStore) save(p preferences) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal preferences: %w", err)
	}
	tmp := s.filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write preferences: %w", err)
	}
	return os.Rename(tmp, s.filePath)
}

// Memory is a Store that lives only as long as the process.
type Memory struct {
	mu      sync.Mutex
	enabled *bool
}

func (m *Memory) AutoSave() (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.enabled == nil {
		return true, nil
	}
	return *m.enabled, nil
}

func (m *Memory) SetAutoSave(enabled bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enabled = &enabled
	return nil
}
