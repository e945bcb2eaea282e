package interfaces

import (
	"errors"
	"time"
)

// Sentinel errors shared across services and the HTTP layer.
var (
	// ErrNoteNotFound indicates no note exists with the requested id.
	ErrNoteNotFound = errors.New("note not found")

	// ErrNotProtected indicates a password operation on a note that is not
	// password protected.
	ErrNotProtected = errors.New("note is not password protected")

	// ErrSessionNotFound indicates no session exists for the given token.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionExpired indicates the session existed but its TTL has passed.
	// The expired entry is removed as a side effect of the lookup.
	ErrSessionExpired = errors.New("session expired")

	// ErrIDSpaceExhausted indicates short id generation ran out of retries.
	ErrIDSpaceExhausted = errors.New("short id space exhausted")
)

// Note is a persisted document with content, optional password protection,
// and version metadata. When Encrypted is true, Content holds an opaque
// ciphertext blob produced client-side and PasswordHash holds a one-way hash
// used only for verification, never for decryption.
type Note struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Content      string         `json:"content"`
	Encrypted    bool           `json:"encrypted"`
	PasswordHash *string        `json:"passwordHash"`
	Metadata     map[string]any `json:"metadata"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	ImportedAt   *time.Time     `json:"importedAt,omitempty"`
	Version      int            `json:"version"`
}

// Session grants reference to one note id for a fixed 24-hour TTL. The token
// itself is the key of the persisted sessions map and is not repeated here.
type Session struct {
	NoteID    string    `json:"noteId"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Stats aggregates over the whole note collection.
type Stats struct {
	TotalNotes      int        `json:"totalNotes"`
	EncryptedNotes  int        `json:"encryptedNotes"`
	TotalCharacters int        `json:"totalCharacters"`
	TotalWords      int        `json:"totalWords"`
	LastUpdated     *time.Time `json:"lastUpdated"`
}
