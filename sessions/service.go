// Package sessions manages short-lived access tokens bound to a note id.
//
// Sessions have a fixed 24-hour TTL and expire lazily: an expired entry is
// removed only when its token is looked up, never by a background sweep.
// Expired-but-never-revisited sessions therefore accumulate in the store
// until restarted or cleaned up manually; this is an accepted limitation.
package sessions

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/anhtu/notebox/idgen"
	"github.com/anhtu/notebox/interfaces"
	"github.com/anhtu/notebox/metrics"
)

// TTL is the fixed session lifetime.
const TTL = 24 * time.Hour

// Service implements session create and validate over a Store.
type Service struct {
	store interfaces.Store
	log   *slog.Logger

	// overridable for tests
	now      func() time.Time
	newToken func() string
}

// NewService creates a session service backed by store.
func NewService(store interfaces.Store, log *slog.Logger) *Service {
	return &Service{
		store:    store,
		log:      log,
		now:      time.Now,
		newToken: idgen.SessionToken,
	}
}

// Create generates a token and stores a session for noteId expiring TTL from
// now. The note id is not validated to exist.
func (s *Service) Create(noteID string) (string, *interfaces.Session, error) {
	now := s.now()
	token := s.newToken()
	session := &interfaces.Session{
		NoteID:    noteID,
		CreatedAt: now,
		ExpiresAt: now.Add(TTL),
	}

	all := s.store.ReadSessions()
	all[token] = session
	if err := s.store.WriteSessions(all); err != nil {
		metrics.StoreWriteFailures.Inc()
		return "", nil, fmt.Errorf("failed to create session: %w", err)
	}

	metrics.SessionsCreated.Inc()
	s.log.Info("Session created", "noteId", noteID)
	return token, session, nil
}

// Validate looks up the session for token. An unknown token returns
// interfaces.ErrSessionNotFound. A token past its expiry is deleted as a side
// effect of the lookup and returns interfaces.ErrSessionExpired; a later
// Validate on the same token reports not-found.
func (s *Service) Validate(token string) (*interfaces.Session, error) {
	all := s.store.ReadSessions()

	session, ok := all[token]
	if !ok {
		return nil, interfaces.ErrSessionNotFound
	}

	if s.now().After(session.ExpiresAt) {
		delete(all, token)
		if err := s.store.WriteSessions(all); err != nil {
			// The caller still sees the session as expired; the stale
			// entry will be retried on the next lookup.
			metrics.StoreWriteFailures.Inc()
			s.log.Error("Failed to persist expired session removal", "err", err)
		}
		metrics.SessionsExpired.Inc()
		return nil, interfaces.ErrSessionExpired
	}

	return session, nil
}
