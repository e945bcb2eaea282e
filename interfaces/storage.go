package interfaces

// Store is the durable mapping from note ids to note records and from session
// tokens to session records. Reads return a previously persisted collection or
// a fresh empty one when the backing document is missing or unparsable; a
// parse failure never propagates to callers. Writes overwrite the backing
// document wholesale with the serialized collection.
//
// There is no per-entry mutation: every caller reads the whole collection,
// modifies one logical entry in memory, and writes the whole collection back.
// Concurrent read-modify-write cycles against the same collection race and
// the last writer wins.
type Store interface {
	// ReadNotes returns all persisted notes, or an empty slice if the notes
	// document is missing or corrupt.
	ReadNotes() []*Note

	// WriteNotes replaces the notes document with the given collection.
	WriteNotes(notes []*Note) error

	// ReadSessions returns the persisted token-to-session map, or an empty
	// map if the sessions document is missing or corrupt.
	ReadSessions() map[string]*Session

	// WriteSessions replaces the sessions document with the given map.
	WriteSessions(sessions map[string]*Session) error
}
