package httpserver

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/anhtu/notebox/api"
	"github.com/anhtu/notebox/api/clients"
	"github.com/anhtu/notebox/interfaces"
	"github.com/anhtu/notebox/notes"
	"github.com/anhtu/notebox/sessions"
	"github.com/anhtu/notebox/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	router   http.Handler
	notes    *notes.Service
	sessions *sessions.Service
}

func setupTestEnvironment(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := storage.NewFileStore(t.TempDir(), logger)
	require.NoError(t, err)

	noteSvc := notes.NewService(store, logger)
	sessionSvc := sessions.NewService(store, logger)

	staticDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(staticDir, "index.html"), []byte("<html>editor</html>"), 0644))

	handler := NewHandler(noteSvc, sessionSvc, staticDir, false, logger)
	srv, err := New(&HTTPServerConfig{
		ListenAddr:  "127.0.0.1:0",
		MetricsAddr: "",
		Log:         logger,
	}, handler)
	require.NoError(t, err)

	return &testEnv{router: srv.getRouter(), notes: noteSvc, sessions: sessionSvc}
}

func (env *testEnv) request(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reqBody)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func decodeResponse[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHandleHealth(t *testing.T) {
	env := setupTestEnvironment(t)

	w := env.request(t, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	resp := decodeResponse[api.HealthResponse](t, w)
	assert.Equal(t, "ok", resp.Status)
	assert.NotEmpty(t, resp.Version)
	assert.False(t, resp.Timestamp.IsZero())
}

func TestCreateAndGetNote(t *testing.T) {
	env := setupTestEnvironment(t)

	w := env.request(t, http.MethodPost, "/api/notes", map[string]any{"content": "hello"})
	require.Equal(t, http.StatusCreated, w.Code)
	created := decodeResponse[api.NoteResponse](t, w)
	require.True(t, created.Success)
	assert.Equal(t, notes.DefaultTitle, created.Note.Title)
	assert.Equal(t, 1, created.Note.Version)

	w = env.request(t, http.MethodGet, "/api/notes/"+created.Note.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decodeResponse[api.NoteResponse](t, w)
	assert.Equal(t, "hello", got.Note.Content)
}

func TestGetNote_NotFound(t *testing.T) {
	env := setupTestEnvironment(t)

	w := env.request(t, http.MethodGet, "/api/notes/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	resp := decodeResponse[api.ErrorResponse](t, w)
	assert.False(t, resp.Success)
	assert.Equal(t, "Note not found", resp.Error)
}

func TestListNotes(t *testing.T) {
	env := setupTestEnvironment(t)

	_, err := env.notes.Create(notes.CreateInput{Content: "a"})
	require.NoError(t, err)
	_, err = env.notes.Create(notes.CreateInput{Content: "b"})
	require.NoError(t, err)

	w := env.request(t, http.MethodGet, "/api/notes", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse[api.ListNotesResponse](t, w)
	assert.Equal(t, 2, resp.Count)
	assert.Len(t, resp.Notes, 2)
}

func TestUpdateNote_PartialPatch(t *testing.T) {
	env := setupTestEnvironment(t)

	note, err := env.notes.Create(notes.CreateInput{Title: "keep", Content: "old", Metadata: map[string]any{"b": 2}})
	require.NoError(t, err)

	w := env.request(t, http.MethodPut, "/api/notes/"+note.ID, map[string]any{
		"content":  "new",
		"metadata": map[string]any{"a": 1},
	})
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeResponse[api.NoteResponse](t, w)
	assert.Equal(t, "keep", resp.Note.Title)
	assert.Equal(t, "new", resp.Note.Content)
	assert.Equal(t, map[string]any{"a": float64(1), "b": float64(2)}, resp.Note.Metadata)
	assert.Equal(t, 2, resp.Note.Version)
}

func TestUpdateNote_NotFound(t *testing.T) {
	env := setupTestEnvironment(t)

	w := env.request(t, http.MethodPut, "/api/notes/missing", map[string]any{"content": "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteNote(t *testing.T) {
	env := setupTestEnvironment(t)

	note, err := env.notes.Create(notes.CreateInput{})
	require.NoError(t, err)

	w := env.request(t, http.MethodDelete, "/api/notes/"+note.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.request(t, http.MethodDelete, "/api/notes/"+note.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestVerifyPassword(t *testing.T) {
	env := setupTestEnvironment(t)

	hash := "abc123"
	note, err := env.notes.Create(notes.CreateInput{Content: "secret", Encrypted: true, PasswordHash: &hash})
	require.NoError(t, err)

	w := env.request(t, http.MethodPost, "/api/notes/"+note.ID+"/verify", api.VerifyRequest{PasswordHash: hash})
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse[api.VerifyResponse](t, w)
	assert.True(t, resp.Valid)
	require.NotNil(t, resp.Note)
	assert.Equal(t, "secret", resp.Note.Content)

	// Wrong hash: valid false and no note content leaks.
	w = env.request(t, http.MethodPost, "/api/notes/"+note.ID+"/verify", api.VerifyRequest{PasswordHash: "nope"})
	require.Equal(t, http.StatusOK, w.Code)
	resp = decodeResponse[api.VerifyResponse](t, w)
	assert.False(t, resp.Valid)
	assert.Nil(t, resp.Note)
	assert.NotContains(t, w.Body.String(), "secret")
}

func TestVerifyPassword_NotProtected(t *testing.T) {
	env := setupTestEnvironment(t)

	note, err := env.notes.Create(notes.CreateInput{Content: "open"})
	require.NoError(t, err)

	w := env.request(t, http.MethodPost, "/api/notes/"+note.ID+"/verify", api.VerifyRequest{PasswordHash: "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSessionLifecycle(t *testing.T) {
	env := setupTestEnvironment(t)

	w := env.request(t, http.MethodPost, "/api/sessions", api.CreateSessionRequest{NoteID: "n1"})
	require.Equal(t, http.StatusOK, w.Code)
	created := decodeResponse[api.CreateSessionResponse](t, w)
	assert.Len(t, created.Token, 64)
	assert.True(t, created.ExpiresAt.After(time.Now()))

	w = env.request(t, http.MethodGet, "/api/sessions/"+created.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	validated := decodeResponse[api.ValidateSessionResponse](t, w)
	assert.True(t, validated.Valid)
	assert.Equal(t, "n1", validated.Session.NoteID)

	w = env.request(t, http.MethodGet, "/api/sessions/unknowntoken", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStats(t *testing.T) {
	env := setupTestEnvironment(t)

	_, err := env.notes.Create(notes.CreateInput{Content: "one two three"})
	require.NoError(t, err)

	w := env.request(t, http.MethodGet, "/api/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse[api.StatsResponse](t, w)
	assert.Equal(t, 1, resp.Stats.TotalNotes)
	assert.Equal(t, 3, resp.Stats.TotalWords)
}

func TestExport(t *testing.T) {
	env := setupTestEnvironment(t)

	_, err := env.notes.Create(notes.CreateInput{Content: "backup me"})
	require.NoError(t, err)

	w := env.request(t, http.MethodGet, "/api/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment; filename=notebox-backup-")
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".json")

	snapshot := decodeResponse[api.Snapshot](t, w)
	assert.Equal(t, 1, snapshot.NotesCount)
}

func TestImport(t *testing.T) {
	env := setupTestEnvironment(t)

	_, err := env.notes.Create(notes.CreateInput{Content: "existing"})
	require.NoError(t, err)

	w := env.request(t, http.MethodPost, "/api/import", api.ImportRequest{
		Notes: []*interfaces.Note{{ID: "x", Content: "a"}},
		Merge: true,
	})
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse[api.ImportResponse](t, w)
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, 2, resp.TotalNotes)
}

func TestImport_InvalidShape(t *testing.T) {
	env := setupTestEnvironment(t)

	w := env.request(t, http.MethodPost, "/api/import", map[string]any{"notes": "not-an-array"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.request(t, http.MethodPost, "/api/import", map[string]any{"merge": true})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNewPaste_Redirects(t *testing.T) {
	env := setupTestEnvironment(t)

	w := env.request(t, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusFound, w.Code)
	location := w.Header().Get("Location")
	assert.Regexp(t, `^/note/[A-Za-z]{8}$`, location)
}

func TestNotePage_LazyCreate(t *testing.T) {
	env := setupTestEnvironment(t)

	w := env.request(t, http.MethodGet, "/note/AbCdEfGh", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "editor")

	note, err := env.notes.Get("AbCdEfGh")
	require.NoError(t, err)
	assert.Equal(t, notes.PastebinTitle, note.Title)

	// Second visit must not reset the note.
	_, err = env.notes.UpdateContent("AbCdEfGh", "kept")
	require.NoError(t, err)
	w = env.request(t, http.MethodGet, "/note/AbCdEfGh", nil)
	require.Equal(t, http.StatusOK, w.Code)
	note, err = env.notes.Get("AbCdEfGh")
	require.NoError(t, err)
	assert.Equal(t, "kept", note.Content)
}

func TestSave_FastPath(t *testing.T) {
	env := setupTestEnvironment(t)

	_, err := env.notes.EnsureExists("AbCdEfGh")
	require.NoError(t, err)

	w := env.request(t, http.MethodPost, "/save/AbCdEfGh", map[string]any{"content": "pasted"})
	require.Equal(t, http.StatusOK, w.Code)

	note, err := env.notes.Get("AbCdEfGh")
	require.NoError(t, err)
	assert.Equal(t, "pasted", note.Content)
	assert.Equal(t, 2, note.Version)
}

func TestSave_RejectsNonStringContent(t *testing.T) {
	env := setupTestEnvironment(t)

	_, err := env.notes.EnsureExists("AbCdEfGh")
	require.NoError(t, err)

	w := env.request(t, http.MethodPost, "/save/AbCdEfGh", map[string]any{"content": 42})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	note, err := env.notes.Get("AbCdEfGh")
	require.NoError(t, err)
	assert.Equal(t, 1, note.Version)
}

func TestSave_UnknownID(t *testing.T) {
	env := setupTestEnvironment(t)

	w := env.request(t, http.MethodPost, "/save/missing1", map[string]any{"content": "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRawNote(t *testing.T) {
	env := setupTestEnvironment(t)

	_, err := env.notes.EnsureExists("AbCdEfGh")
	require.NoError(t, err)
	_, err = env.notes.UpdateContent("AbCdEfGh", "raw body")
	require.NoError(t, err)

	w := env.request(t, http.MethodGet, "/api/AbCdEfGh?raw=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
	assert.Equal(t, "raw body", w.Body.String())

	w = env.request(t, http.MethodGet, "/api/AbCdEfGh", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse[api.NoteResponse](t, w)
	assert.Equal(t, "raw body", resp.Note.Content)
}

func TestRawNote_NotFound(t *testing.T) {
	env := setupTestEnvironment(t)

	w := env.request(t, http.MethodGet, "/api/missing1?raw=true", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSPAFallback(t *testing.T) {
	env := setupTestEnvironment(t)

	w := env.request(t, http.MethodGet, "/some/deep/link", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "editor")
}

func TestSPAFallback_APIPathsStay404(t *testing.T) {
	env := setupTestEnvironment(t)

	w := env.request(t, http.MethodDelete, "/api/unknown/route", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `"success":false`)
}

func TestTypedClientRoundTrip(t *testing.T) {
	env := setupTestEnvironment(t)

	ts := httptest.NewServer(env.router)
	defer ts.Close()

	client := &clients.Client{ServerAddr: ts.URL}

	note, err := client.Create(notes.CreateInput{Title: "remote", Content: "pushed"})
	require.NoError(t, err)

	got, err := client.Get(note.ID)
	require.NoError(t, err)
	assert.Equal(t, "pushed", got.Content)

	updated, err := client.Update(note.ID, map[string]any{"content": "changed"})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Version)

	stats, err := client.Stats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalNotes)

	require.NoError(t, client.Delete(note.ID))
	_, err = client.Get(note.ID)
	assert.Error(t, err)
}

func TestLivenessAndReadiness(t *testing.T) {
	env := setupTestEnvironment(t)

	w := env.request(t, http.MethodGet, "/livez", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.request(t, http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
