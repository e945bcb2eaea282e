package notes

import (
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/anhtu/notebox/interfaces"
	"github.com/anhtu/notebox/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := storage.NewFileStore(t.TempDir(), logger)
	require.NoError(t, err)
	return NewService(store, logger)
}

func TestCreate_DefaultsAndVersion(t *testing.T) {
	svc := newTestService(t)

	note, err := svc.Create(CreateInput{Content: "hello"})
	require.NoError(t, err)

	assert.Len(t, note.ID, 32)
	assert.Equal(t, DefaultTitle, note.Title)
	assert.Equal(t, "hello", note.Content)
	assert.False(t, note.Encrypted)
	assert.Nil(t, note.PasswordHash)
	assert.NotNil(t, note.Metadata)
	assert.Equal(t, 1, note.Version)
	assert.True(t, note.CreatedAt.Equal(note.UpdatedAt))

	got, err := svc.Get(note.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Version)
	assert.True(t, got.CreatedAt.Equal(got.UpdatedAt))
}

func TestGet_NotFound(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.Get("nope")
	assert.ErrorIs(t, err, interfaces.ErrNoteNotFound)
}

func TestUpdate_VersionAndTimestampMonotonic(t *testing.T) {
	svc := newTestService(t)

	note, err := svc.Create(CreateInput{Content: "v1"})
	require.NoError(t, err)

	prev := note.UpdatedAt
	const updates = 5
	for i := 0; i < updates; i++ {
		content := "update"
		updated, err := svc.Update(note.ID, Patch{Content: Optional[string]{Set: true, Value: content}})
		require.NoError(t, err)
		assert.False(t, updated.UpdatedAt.Before(prev))
		prev = updated.UpdatedAt
	}

	final, err := svc.Get(note.ID)
	require.NoError(t, err)
	assert.Equal(t, 1+updates, final.Version)
}

func TestUpdate_AbsentFieldsUnchanged(t *testing.T) {
	svc := newTestService(t)

	hash := "cafebabe"
	note, err := svc.Create(CreateInput{Title: "keep", Content: "keep", Encrypted: true, PasswordHash: &hash})
	require.NoError(t, err)

	// A patch decoded from a body that only names content.
	var patch Patch
	require.NoError(t, json.Unmarshal([]byte(`{"content":"new"}`), &patch))

	updated, err := svc.Update(note.ID, patch)
	require.NoError(t, err)
	assert.Equal(t, "keep", updated.Title)
	assert.Equal(t, "new", updated.Content)
	assert.True(t, updated.Encrypted)
	require.NotNil(t, updated.PasswordHash)
	assert.Equal(t, hash, *updated.PasswordHash)
}

func TestUpdate_ExplicitNullClearsPasswordHash(t *testing.T) {
	svc := newTestService(t)

	hash := "cafebabe"
	note, err := svc.Create(CreateInput{Encrypted: true, PasswordHash: &hash})
	require.NoError(t, err)

	var patch Patch
	require.NoError(t, json.Unmarshal([]byte(`{"passwordHash":null,"encrypted":false}`), &patch))

	updated, err := svc.Update(note.ID, patch)
	require.NoError(t, err)
	assert.Nil(t, updated.PasswordHash)
	assert.False(t, updated.Encrypted)
}

func TestUpdate_MetadataShallowMerge(t *testing.T) {
	svc := newTestService(t)

	note, err := svc.Create(CreateInput{Metadata: map[string]any{"b": float64(2)}})
	require.NoError(t, err)

	var patch Patch
	require.NoError(t, json.Unmarshal([]byte(`{"metadata":{"a":1}}`), &patch))

	updated, err := svc.Update(note.ID, patch)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": float64(1), "b": float64(2)}, updated.Metadata)
}

func TestUpdate_NotFound(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.Update("nope", Patch{})
	assert.ErrorIs(t, err, interfaces.ErrNoteNotFound)
}

func TestDelete_SignalsNotFoundOnSecondCall(t *testing.T) {
	svc := newTestService(t)

	note, err := svc.Create(CreateInput{})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(note.ID))
	assert.ErrorIs(t, svc.Delete(note.ID), interfaces.ErrNoteNotFound)
	_, err = svc.Get(note.ID)
	assert.ErrorIs(t, err, interfaces.ErrNoteNotFound)
}

func TestVerifyPassword(t *testing.T) {
	svc := newTestService(t)

	hash := "a3f5"
	note, err := svc.Create(CreateInput{Content: "secret", Encrypted: true, PasswordHash: &hash})
	require.NoError(t, err)

	valid, got, err := svc.VerifyPassword(note.ID, hash)
	require.NoError(t, err)
	assert.True(t, valid)
	require.NotNil(t, got)
	assert.Equal(t, "secret", got.Content)

	valid, got, err = svc.VerifyPassword(note.ID, "wrong")
	require.NoError(t, err)
	assert.False(t, valid)
	assert.Nil(t, got)
}

func TestVerifyPassword_NotProtected(t *testing.T) {
	svc := newTestService(t)

	note, err := svc.Create(CreateInput{Content: "open"})
	require.NoError(t, err)

	_, _, err = svc.VerifyPassword(note.ID, "anything")
	assert.ErrorIs(t, err, interfaces.ErrNotProtected)
}

func TestVerifyPassword_EmptyStoredHashNotProtected(t *testing.T) {
	svc := newTestService(t)

	empty := ""
	note, err := svc.Create(CreateInput{Content: "open", Encrypted: true, PasswordHash: &empty})
	require.NoError(t, err)

	// An empty stored hash means no real protection; verifying with "" must
	// not succeed.
	_, _, err = svc.VerifyPassword(note.ID, "")
	assert.ErrorIs(t, err, interfaces.ErrNotProtected)
}

func TestVerifyPassword_NotFound(t *testing.T) {
	svc := newTestService(t)
	_, _, err := svc.VerifyPassword("nope", "h")
	assert.ErrorIs(t, err, interfaces.ErrNoteNotFound)
}

func TestStats(t *testing.T) {
	svc := newTestService(t)

	hash := "h"
	_, err := svc.Create(CreateInput{Content: "one two  three"})
	require.NoError(t, err)
	second, err := svc.Create(CreateInput{Content: "word", Encrypted: true, PasswordHash: &hash})
	require.NoError(t, err)

	stats := svc.Stats()
	assert.Equal(t, 2, stats.TotalNotes)
	assert.Equal(t, 1, stats.EncryptedNotes)
	assert.Equal(t, len("one two  three")+len("word"), stats.TotalCharacters)
	assert.Equal(t, 4, stats.TotalWords)
	require.NotNil(t, stats.LastUpdated)
	assert.False(t, stats.LastUpdated.Before(second.UpdatedAt))
}

func TestStats_Empty(t *testing.T) {
	svc := newTestService(t)

	stats := svc.Stats()
	assert.Equal(t, 0, stats.TotalNotes)
	assert.Nil(t, stats.LastUpdated)
}

func TestEnsureExists_Idempotent(t *testing.T) {
	svc := newTestService(t)

	note, err := svc.EnsureExists("AbCdEfGh")
	require.NoError(t, err)
	assert.Equal(t, "AbCdEfGh", note.ID)
	assert.Equal(t, PastebinTitle, note.Title)
	assert.Equal(t, 1, note.Version)

	// Mutate, then ensure again: the existing note must survive.
	_, err = svc.UpdateContent("AbCdEfGh", "body")
	require.NoError(t, err)

	again, err := svc.EnsureExists("AbCdEfGh")
	require.NoError(t, err)
	assert.Equal(t, "body", again.Content)
	assert.Equal(t, 2, again.Version)
	assert.Len(t, svc.List(), 1)
}

func TestUpdateContent(t *testing.T) {
	svc := newTestService(t)

	note, err := svc.Create(CreateInput{Title: "stays", Content: "old"})
	require.NoError(t, err)

	updated, err := svc.UpdateContent(note.ID, "new")
	require.NoError(t, err)
	assert.Equal(t, "new", updated.Content)
	assert.Equal(t, "stays", updated.Title)
	assert.Equal(t, 2, updated.Version)

	_, err = svc.UpdateContent("nope", "x")
	assert.ErrorIs(t, err, interfaces.ErrNoteNotFound)
}

func TestLastWriteWins(t *testing.T) {
	svc := newTestService(t)

	note, err := svc.Create(CreateInput{Content: "base"})
	require.NoError(t, err)

	// Two read-modify-write cycles from the same starting state: the later
	// write wins and both increment from the version they read.
	first, err := svc.Update(note.ID, Patch{Content: Optional[string]{Set: true, Value: "first"}})
	require.NoError(t, err)
	assert.Equal(t, 2, first.Version)

	second, err := svc.Update(note.ID, Patch{Content: Optional[string]{Set: true, Value: "second"}})
	require.NoError(t, err)
	assert.Equal(t, 3, second.Version)

	got, err := svc.Get(note.ID)
	require.NoError(t, err)
	assert.Equal(t, "second", got.Content)
}

func TestOptionalUnmarshal(t *testing.T) {
	var patch Patch
	require.NoError(t, json.Unmarshal([]byte(`{"title":"t","passwordHash":null}`), &patch))

	assert.True(t, patch.Title.Set)
	assert.Equal(t, "t", patch.Title.Value)
	assert.True(t, patch.PasswordHash.Set)
	assert.Nil(t, patch.PasswordHash.Value)
	assert.False(t, patch.Content.Set)
	assert.False(t, patch.Encrypted.Set)
	assert.False(t, patch.Metadata.Set)
}

func TestUpdate_FixedClock(t *testing.T) {
	svc := newTestService(t)

	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	note, err := svc.Create(CreateInput{})
	require.NoError(t, err)
	assert.True(t, note.CreatedAt.Equal(fixed))

	later := fixed.Add(time.Hour)
	svc.now = func() time.Time { return later }
	updated, err := svc.Update(note.ID, Patch{Title: Optional[string]{Set: true, Value: "t"}})
	require.NoError(t, err)
	assert.True(t, updated.UpdatedAt.Equal(later))
	assert.True(t, updated.CreatedAt.Equal(fixed))
}
