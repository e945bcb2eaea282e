// Package api defines the request and response document shapes of the
// notebox HTTP surface, shared by the server handlers and the typed client.
package api

import (
	"time"

	"github.com/anhtu/notebox/interfaces"
	"github.com/anhtu/notebox/notes"
)

// ErrorResponse is the uniform failure body.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// HealthResponse reports liveness.
type HealthResponse struct {
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
}

// ListNotesResponse carries all notes plus a count.
type ListNotesResponse struct {
	Success bool               `json:"success"`
	Notes   []*interfaces.Note `json:"notes"`
	Count   int                `json:"count"`
}

// NoteResponse carries a single note.
type NoteResponse struct {
	Success bool             `json:"success"`
	Note    *interfaces.Note `json:"note"`
	Message string           `json:"message,omitempty"`
}

// VerifyRequest carries the supplied password hash to check.
type VerifyRequest struct {
	PasswordHash string `json:"passwordHash"`
}

// VerifyResponse reports the comparison result. Note is populated only when
// Valid is true.
type VerifyResponse struct {
	Success bool             `json:"success"`
	Valid   bool             `json:"valid"`
	Note    *interfaces.Note `json:"note"`
}

// CreateSessionRequest binds a new session to a note id.
type CreateSessionRequest struct {
	NoteID string `json:"noteId"`
}

// CreateSessionResponse returns the opaque token and its expiry.
type CreateSessionResponse struct {
	Success   bool      `json:"success"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ValidateSessionResponse returns the session for a valid token.
type ValidateSessionResponse struct {
	Success bool                `json:"success"`
	Session *interfaces.Session `json:"session"`
	Valid   bool                `json:"valid"`
}

// StatsResponse carries aggregate statistics.
type StatsResponse struct {
	Success bool              `json:"success"`
	Stats   *interfaces.Stats `json:"stats"`
}

// ImportRequest carries a batch of notes to ingest. Merge true appends with
// fresh ids; false replaces the collection.
type ImportRequest struct {
	Notes []*interfaces.Note `json:"notes"`
	Merge bool               `json:"merge"`
}

// ImportResponse reports how many notes were ingested and the resulting
// collection size.
type ImportResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	Count      int    `json:"count"`
	TotalNotes int    `json:"totalNotes"`
}

// SaveRequest is the fast-path content save body. Content is typed as any so
// the handler can reject non-string payloads before touching the store.
type SaveRequest struct {
	Content any `json:"content"`
}

// SaveResponse acknowledges a fast-path save.
type SaveResponse struct {
	Success bool             `json:"success"`
	Note    *interfaces.Note `json:"note,omitempty"`
}

// Snapshot aliases the export document shape.
type Snapshot = notes.Snapshot
