// Package storage persists the note and session collections as two flat JSON
// documents on the local file system.
//
// The notes document is a JSON array of note records and the sessions
// document is a JSON object mapping token strings to session records. Both
// are rewritten wholesale, pretty-printed, on every mutation. Reads that fail
// to open or parse a document fall back to an empty collection so that a
// corrupt file degrades to a fresh store instead of an error surface.
package storage
