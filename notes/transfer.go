package notes

import (
	"fmt"
	"time"

	"github.com/anhtu/notebox/interfaces"
	"github.com/anhtu/notebox/metrics"
)

// Snapshot is the export document: the full note collection plus the time it
// was taken.
type Snapshot struct {
	ExportedAt time.Time          `json:"exportedAt"`
	NotesCount int                `json:"notesCount"`
	Notes      []*interfaces.Note `json:"notes"`
}

// Export returns a snapshot of all notes.
func (s *Service) Export() *Snapshot {
	all := s.store.ReadNotes()
	return &Snapshot{
		ExportedAt: s.now(),
		NotesCount: len(all),
		Notes:      all,
	}
}

// Import ingests a batch of notes and persists once after processing the
// whole batch. With merge true the batch is appended to the existing
// collection and every imported note receives a freshly generated id, so
// collisions with existing ids are impossible. With merge false the
// collection is replaced outright and each imported note keeps its own id if
// present, else one is generated. Every imported note is stamped with
// ImportedAt.
//
// Returns the number of imported notes and the resulting collection size.
func (s *Service) Import(imported []*interfaces.Note, merge bool) (int, int, error) {
	var all []*interfaces.Note
	if merge {
		all = s.store.ReadNotes()
	} else {
		all = []*interfaces.Note{}
	}

	now := s.now()
	for _, n := range imported {
		// A JSON null element decodes to nil; materialize it as an empty
		// note rather than dropping it, so the reported count matches the
		// batch length.
		if n == nil {
			n = &interfaces.Note{}
		}
		if merge || n.ID == "" {
			n.ID = s.newID()
		}
		t := now
		n.ImportedAt = &t
		all = append(all, n)
	}

	if err := s.store.WriteNotes(all); err != nil {
		metrics.StoreWriteFailures.Inc()
		return 0, 0, fmt.Errorf("failed to import notes: %w", err)
	}

	metrics.NotesImported.Add(float64(len(imported)))
	s.log.Info("Notes imported", "count", len(imported), "total", len(all), "merge", merge)
	return len(imported), len(all), nil
}
