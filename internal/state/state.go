// Package state remembers the last page shown for each document.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
)

const marksFileName = "page_marks.json"

// ErrNegativePage is returned when storing a page index below zero.
var ErrNegativePage = errors.New("page index must not be negative")

// MarkStore persists one page index per document key.
type MarkStore interface {
	// Get returns the stored page for key; ok is false when nothing is stored.
	Get(key string) (page int, ok bool)
	// Set overwrites the page stored for key.
	Set(key string, page int) error
	// Clear forgets key.
	Clear(key string) error
	Close() error
}

// JSONStore keeps marks in a flat {key: page} JSON file.
type JSONStore struct {
	path string
	data map[string]int
	log  *logrus.Entry
	mu   sync.RWMutex
}

// Dir returns XDG_STATE_HOME/peadz or ~/.local/state/peadz
func Dir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "peadz")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "state", "peadz")
}

// NewJSONStore creates or loads the marks file in dir.
func NewJSONStore(dir string, log *logrus.Entry) (*JSONStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	store := &JSONStore{
		path: filepath.Join(dir, marksFileName),
		data: make(map[string]int),
		log:  componentLogger(log),
	}
	if err := store.load(); err != nil {
		// Non-fatal - start with empty state
		store.log.WithError(err).Warn("page marks unreadable, starting empty")
		store.data = make(map[string]int)
	}
	return store, nil
}

func (s *JSONStore) Get(key string) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	page, ok := s.data[key]
	return page, ok
}

func (s *JSONStore) Set(key string, page int) error {
	if page < 0 {
		return ErrNegativePage
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = page
	return s.save()
}

func (s *JSONStore) Clear(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return s.save()
}

func (s *JSONStore) Close() error { return nil }

func (s *JSONStore) load() error {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, &s.data); err != nil {
		return err
	}
	if s.data == nil {
		s.data = make(map[string]int)
	}
	return nil
}

func (s *JSONStore) save() error {
	data, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("write page marks: %w", err)
	}
	return nil
}

func componentLogger(log *logrus.Entry) *logrus.Entry {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = logrus.NewEntry(l)
	}
	return log.WithField("component", "marks")
}
