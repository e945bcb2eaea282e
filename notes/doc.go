// Package notes implements CRUD, password verification, aggregate statistics
// and bulk import/export over the note collection.
//
// Every operation loads the full collection from the store, works on it in
// memory, and writes the whole collection back on mutation. There is no
// cross-request locking: two concurrent updates to the same id both read the
// pre-mutation state and the later write wins.
package notes
