package storage

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/anhtu/notebox/interfaces"
)

const (
	notesFile    = "notes.json"
	sessionsFile = "sessions.json"
)

// FileStore implements interfaces.Store on top of two JSON documents in a
// data directory.
type FileStore struct {
	dataDir string
	log     *slog.Logger
}

// NewFileStore creates a file store rooted at dataDir and initializes the
// directory and both documents, seeding empty defaults if absent. This must
// run to completion before the HTTP layer starts accepting connections.
func NewFileStore(dataDir string, log *slog.Logger) (*FileStore, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	s := &FileStore{dataDir: dataDir, log: log}

	if err := s.seedIfMissing(notesFile, []byte("[]")); err != nil {
		return nil, err
	}
	if err := s.seedIfMissing(sessionsFile, []byte("{}")); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *FileStore) seedIfMissing(name string, empty []byte) error {
	path := filepath.Join(s.dataDir, name)
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	s.log.Info("Seeding empty document", "path", path)
	if err := os.WriteFile(path, empty, 0644); err != nil {
		return fmt.Errorf("failed to seed %s: %w", name, err)
	}
	return nil
}

// ReadNotes returns the persisted note collection. A missing or unparsable
// document yields an empty slice, never an error.
func (s *FileStore) ReadNotes() []*interfaces.Note {
	var notes []*interfaces.Note
	if !s.readJSON(notesFile, &notes) || notes == nil {
		return []*interfaces.Note{}
	}
	return notes
}

// WriteNotes overwrites the notes document with the given collection.
func (s *FileStore) WriteNotes(notes []*interfaces.Note) error {
	return s.writeJSON(notesFile, notes)
}

// ReadSessions returns the persisted token-to-session map. A missing or
// unparsable document yields an empty map, never an error.
func (s *FileStore) ReadSessions() map[string]*interfaces.Session {
	var sessions map[string]*interfaces.Session
	if !s.readJSON(sessionsFile, &sessions) || sessions == nil {
		return map[string]*interfaces.Session{}
	}
	return sessions
}

// WriteSessions overwrites the sessions document with the given map.
func (s *FileStore) WriteSessions(sessions map[string]*interfaces.Session) error {
	return s.writeJSON(sessionsFile, sessions)
}

func (s *FileStore) readJSON(name string, v any) bool {
	path := filepath.Join(s.dataDir, name)

	data, err := os.ReadFile(path)
	if err != nil {
		s.log.Error("Failed to read document", "path", path, "err", err)
		return false
	}

	if err := json.Unmarshal(data, v); err != nil {
		s.log.Error("Failed to parse document", "path", path, "err", err)
		return false
	}

	return true
}

func (s *FileStore) writeJSON(name string, v any) error {
	path := filepath.Join(s.dataDir, name)

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize %s: %w", name, err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		s.log.Error("Failed to write document", "path", path, "err", err)
		return fmt.Errorf("failed to write %s: %w", name, err)
	}

	s.log.Debug("Wrote document", "path", path, "size", len(data))
	return nil
}
