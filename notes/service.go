package notes

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/anhtu/notebox/idgen"
	"github.com/anhtu/notebox/interfaces"
	"github.com/anhtu/notebox/metrics"
)

// DefaultTitle is applied when a created note has no title.
const DefaultTitle = "Untitled Note"

// PastebinTitle is applied to notes lazily created by the pastebin flow.
const PastebinTitle = "Untitled"

// Service implements the note operations over a Store.
type Service struct {
	store interfaces.Store
	log   *slog.Logger

	// overridable for tests
	now   func() time.Time
	newID func() string
}

// NewService creates a note service backed by store.
func NewService(store interfaces.Store, log *slog.Logger) *Service {
	return &Service{
		store: store,
		log:   log,
		now:   time.Now,
		newID: idgen.NoteID,
	}
}

// CreateInput holds the caller-provided fields of a new note. Zero values
// get defaults: empty title becomes DefaultTitle, nil metadata becomes an
// empty map.
type CreateInput struct {
	Title        string         `json:"title"`
	Content      string         `json:"content"`
	Encrypted    bool           `json:"encrypted"`
	PasswordHash *string        `json:"passwordHash"`
	Metadata     map[string]any `json:"metadata"`
}

// List returns all notes.
func (s *Service) List() []*interfaces.Note {
	return s.store.ReadNotes()
}

// Get returns the note with the given id, or interfaces.ErrNoteNotFound.
func (s *Service) Get(id string) (*interfaces.Note, error) {
	for _, n := range s.store.ReadNotes() {
		if n.ID == id {
			return n, nil
		}
	}
	return nil, interfaces.ErrNoteNotFound
}

// Create builds a new note with a generated id, version 1 and both
// timestamps set to now, appends it to the collection and persists.
func (s *Service) Create(input CreateInput) (*interfaces.Note, error) {
	now := s.now()

	note := &interfaces.Note{
		ID:           s.newID(),
		Title:        input.Title,
		Content:      input.Content,
		Encrypted:    input.Encrypted,
		PasswordHash: input.PasswordHash,
		Metadata:     input.Metadata,
		CreatedAt:    now,
		UpdatedAt:    now,
		Version:      1,
	}
	if note.Title == "" {
		note.Title = DefaultTitle
	}
	if note.Metadata == nil {
		note.Metadata = map[string]any{}
	}

	all := append(s.store.ReadNotes(), note)
	if err := s.store.WriteNotes(all); err != nil {
		metrics.StoreWriteFailures.Inc()
		return nil, fmt.Errorf("failed to save note: %w", err)
	}

	metrics.NotesCreated.Inc()
	s.log.Info("Note created", "id", note.ID)
	return note, nil
}

// Update applies a partial patch to the note with the given id. Fields absent
// from the patch are left unchanged, present fields overwrite, and metadata is
// shallow-merged. UpdatedAt is set to now and Version is incremented by
// exactly one.
func (s *Service) Update(id string, patch Patch) (*interfaces.Note, error) {
	all := s.store.ReadNotes()

	var note *interfaces.Note
	for _, n := range all {
		if n.ID == id {
			note = n
			break
		}
	}
	if note == nil {
		return nil, interfaces.ErrNoteNotFound
	}

	if patch.Title.Set {
		note.Title = patch.Title.Value
	}
	if patch.Content.Set {
		note.Content = patch.Content.Value
	}
	if patch.Encrypted.Set {
		note.Encrypted = patch.Encrypted.Value
	}
	if patch.PasswordHash.Set {
		note.PasswordHash = patch.PasswordHash.Value
	}
	if patch.Metadata.Set && patch.Metadata.Value != nil {
		if note.Metadata == nil {
			note.Metadata = map[string]any{}
		}
		for k, v := range patch.Metadata.Value {
			note.Metadata[k] = v
		}
	}
	note.UpdatedAt = s.now()
	note.Version++

	if err := s.store.WriteNotes(all); err != nil {
		metrics.StoreWriteFailures.Inc()
		return nil, fmt.Errorf("failed to update note: %w", err)
	}

	s.log.Info("Note updated", "id", id, "version", note.Version)
	return note, nil
}

// Delete removes the note with the given id. Returns
// interfaces.ErrNoteNotFound if no entry had that id.
func (s *Service) Delete(id string) error {
	all := s.store.ReadNotes()

	kept := make([]*interfaces.Note, 0, len(all))
	for _, n := range all {
		if n.ID != id {
			kept = append(kept, n)
		}
	}
	if len(kept) == len(all) {
		return interfaces.ErrNoteNotFound
	}

	if err := s.store.WriteNotes(kept); err != nil {
		metrics.StoreWriteFailures.Inc()
		return fmt.Errorf("failed to delete note: %w", err)
	}

	metrics.NotesDeleted.Inc()
	s.log.Info("Note deleted", "id", id)
	return nil
}

// VerifyPassword compares suppliedHash against the stored password hash of
// the note. The note is returned only when the comparison succeeds; an
// invalid hash never exposes note content. Returns
// interfaces.ErrNotProtected for notes without password protection.
func (s *Service) VerifyPassword(id, suppliedHash string) (bool, *interfaces.Note, error) {
	note, err := s.Get(id)
	if err != nil {
		return false, nil, err
	}

	if !note.Encrypted || note.PasswordHash == nil || *note.PasswordHash == "" {
		return false, nil, interfaces.ErrNotProtected
	}

	if *note.PasswordHash != suppliedHash {
		return false, nil, nil
	}
	return true, note, nil
}

// Stats aggregates counts and sizes over the whole collection. LastUpdated
// is nil when no notes exist.
func (s *Service) Stats() *interfaces.Stats {
	all := s.store.ReadNotes()

	stats := &interfaces.Stats{TotalNotes: len(all)}
	for _, n := range all {
		if n.Encrypted {
			stats.EncryptedNotes++
		}
		stats.TotalCharacters += len(n.Content)
		stats.TotalWords += len(strings.Fields(n.Content))

		if stats.LastUpdated == nil || n.UpdatedAt.After(*stats.LastUpdated) {
			t := n.UpdatedAt
			stats.LastUpdated = &t
		}
	}
	return stats
}

// EnsureExists creates an empty note with exactly the given id on first
// reference. It is idempotent and never overwrites an existing note. Used by
// the pastebin flow where the id is minted before the note body exists.
func (s *Service) EnsureExists(id string) (*interfaces.Note, error) {
	all := s.store.ReadNotes()
	for _, n := range all {
		if n.ID == id {
			return n, nil
		}
	}

	now := s.now()
	note := &interfaces.Note{
		ID:        id,
		Title:     PastebinTitle,
		Content:   "",
		Metadata:  map[string]any{},
		CreatedAt: now,
		UpdatedAt: now,
		Version:   1,
	}

	if err := s.store.WriteNotes(append(all, note)); err != nil {
		metrics.StoreWriteFailures.Inc()
		return nil, fmt.Errorf("failed to save note: %w", err)
	}

	metrics.NotesCreated.Inc()
	s.log.Info("Note lazily created", "id", id)
	return note, nil
}

// UpdateContent is the narrow fast-path mutation used by the low-latency save
// endpoint: it touches only Content, UpdatedAt and Version.
func (s *Service) UpdateContent(id, content string) (*interfaces.Note, error) {
	all := s.store.ReadNotes()

	var note *interfaces.Note
	for _, n := range all {
		if n.ID == id {
			note = n
			break
		}
	}
	if note == nil {
		return nil, interfaces.ErrNoteNotFound
	}

	note.Content = content
	note.UpdatedAt = s.now()
	note.Version++

	if err := s.store.WriteNotes(all); err != nil {
		metrics.StoreWriteFailures.Inc()
		return nil, fmt.Errorf("failed to save note: %w", err)
	}
	return note, nil
}

// Exists reports whether a note with the given id is present. Used for
// short-id collision checks.
func (s *Service) Exists(id string) bool {
	_, err := s.Get(id)
	return err == nil
}
