package httpserver

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/anhtu/notebox/api"
	"github.com/anhtu/notebox/common"
	"github.com/anhtu/notebox/idgen"
	"github.com/anhtu/notebox/interfaces"
	"github.com/anhtu/notebox/notes"
	"github.com/anhtu/notebox/sessions"
)

// maxBodySize is the maximum allowed request body size (10MB), matching the
// largest note payloads the editor produces.
const maxBodySize = 10 * 1024 * 1024

// overridable for tests
var timeNow = time.Now

// Handler processes HTTP requests for the notebox API and the pastebin flow.
type Handler struct {
	notes    *notes.Service
	sessions *sessions.Service
	log      *slog.Logger

	// staticDir holds the built frontend; the SPA fallback serves its
	// index.html.
	staticDir string

	// development includes underlying error detail in storage-failure
	// responses.
	development bool
}

// NewHandler creates an HTTP handler over the note and session services.
func NewHandler(noteSvc *notes.Service, sessionSvc *sessions.Service, staticDir string, development bool, log *slog.Logger) *Handler {
	return &Handler{
		notes:       noteSvc,
		sessions:    sessionSvc,
		staticDir:   staticDir,
		development: development,
		log:         log,
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("Failed to encode response", "err", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, api.ErrorResponse{Success: false, Error: msg})
}

// writeStoreError reports a storage failure with a generic message; the
// underlying detail is exposed only in development mode.
func (h *Handler) writeStoreError(w http.ResponseWriter, msg string, err error) {
	h.log.Error(msg, "err", err)
	resp := api.ErrorResponse{Success: false, Error: msg}
	if h.development {
		resp.Message = err.Error()
	}
	h.writeJSON(w, http.StatusInternalServerError, resp)
}

// HandleHealth reports liveness together with the service version.
//
// GET /api/health
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, api.HealthResponse{
		Status:    "ok",
		Message:   "notebox API is running",
		Timestamp: timeNow(),
		Version:   common.Version,
	})
}

// HandleListNotes returns all notes plus a count.
//
// GET /api/notes
func (h *Handler) HandleListNotes(w http.ResponseWriter, r *http.Request) {
	all := h.notes.List()
	h.writeJSON(w, http.StatusOK, api.ListNotesResponse{Success: true, Notes: all, Count: len(all)})
}

// HandleGetNote returns a single note by id.
//
// GET /api/notes/{id}
func (h *Handler) HandleGetNote(w http.ResponseWriter, r *http.Request) {
	note, err := h.notes.Get(r.PathValue("id"))
	if err != nil {
		h.writeError(w, http.StatusNotFound, "Note not found")
		return
	}
	h.writeJSON(w, http.StatusOK, api.NoteResponse{Success: true, Note: note})
}

// HandleCreateNote creates a note from the request body, applying defaults
// for absent optional fields.
//
// POST /api/notes
func (h *Handler) HandleCreateNote(w http.ResponseWriter, r *http.Request) {
	var input notes.CreateInput
	if err := decodeBody(w, r, &input); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	note, err := h.notes.Create(input)
	if err != nil {
		h.writeStoreError(w, "Failed to save note", err)
		return
	}

	h.writeJSON(w, http.StatusCreated, api.NoteResponse{Success: true, Note: note, Message: "Note created successfully"})
}

// HandleUpdateNote applies a partial patch to a note. Fields absent from the
// body are left unchanged; metadata is shallow-merged.
//
// PUT /api/notes/{id}
func (h *Handler) HandleUpdateNote(w http.ResponseWriter, r *http.Request) {
	var patch notes.Patch
	if err := decodeBody(w, r, &patch); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	note, err := h.notes.Update(r.PathValue("id"), patch)
	switch {
	case err == nil:
		h.writeJSON(w, http.StatusOK, api.NoteResponse{Success: true, Note: note, Message: "Note updated successfully"})
	case err == interfaces.ErrNoteNotFound:
		h.writeError(w, http.StatusNotFound, "Note not found")
	default:
		h.writeStoreError(w, "Failed to update note", err)
	}
}

// HandleDeleteNote removes a note by id.
//
// DELETE /api/notes/{id}
func (h *Handler) HandleDeleteNote(w http.ResponseWriter, r *http.Request) {
	err := h.notes.Delete(r.PathValue("id"))
	switch {
	case err == nil:
		h.writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Note deleted successfully"})
	case err == interfaces.ErrNoteNotFound:
		h.writeError(w, http.StatusNotFound, "Note not found")
	default:
		h.writeStoreError(w, "Failed to delete note", err)
	}
}

// HandleVerifyPassword compares a supplied password hash against the stored
// one. The note is included in the response only when the hashes match.
//
// POST /api/notes/{id}/verify
func (h *Handler) HandleVerifyPassword(w http.ResponseWriter, r *http.Request) {
	var req api.VerifyRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	valid, note, err := h.notes.VerifyPassword(r.PathValue("id"), req.PasswordHash)
	switch err {
	case nil:
		h.writeJSON(w, http.StatusOK, api.VerifyResponse{Success: true, Valid: valid, Note: note})
	case interfaces.ErrNoteNotFound:
		h.writeError(w, http.StatusNotFound, "Note not found")
	case interfaces.ErrNotProtected:
		h.writeError(w, http.StatusBadRequest, "Note is not password protected")
	default:
		h.writeStoreError(w, "Failed to verify password", err)
	}
}

// HandleCreateSession issues a 24h access token for a note id.
//
// POST /api/sessions
func (h *Handler) HandleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req api.CreateSessionRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	token, session, err := h.sessions.Create(req.NoteID)
	if err != nil {
		h.writeStoreError(w, "Failed to create session", err)
		return
	}

	h.writeJSON(w, http.StatusOK, api.CreateSessionResponse{Success: true, Token: token, ExpiresAt: session.ExpiresAt})
}

// HandleValidateSession looks up a session token. Expired tokens are removed
// as a side effect and reported with 401, distinct from unknown tokens (404).
//
// GET /api/sessions/{token}
func (h *Handler) HandleValidateSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessions.Validate(r.PathValue("token"))
	switch err {
	case nil:
		h.writeJSON(w, http.StatusOK, api.ValidateSessionResponse{Success: true, Session: session, Valid: true})
	case interfaces.ErrSessionNotFound:
		h.writeError(w, http.StatusNotFound, "Session not found")
	case interfaces.ErrSessionExpired:
		h.writeError(w, http.StatusUnauthorized, "Session expired")
	default:
		h.writeStoreError(w, "Failed to validate session", err)
	}
}

// HandleStats returns aggregate statistics over the note collection.
//
// GET /api/stats
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, api.StatsResponse{Success: true, Stats: h.notes.Stats()})
}

// HandleExport returns a downloadable snapshot of all notes with a
// timestamped attachment filename.
//
// GET /api/export
func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	snapshot := h.notes.Export()

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=notebox-backup-%d.json", snapshot.ExportedAt.UnixMilli()))
	if err := json.NewEncoder(w).Encode(snapshot); err != nil {
		h.log.Error("Failed to encode export", "err", err)
	}
}

// HandleImport bulk-ingests a snapshot. The notes field must be an array;
// anything else is a 400. The whole batch is persisted with a single write.
//
// POST /api/import
func (h *Handler) HandleImport(w http.ResponseWriter, r *http.Request) {
	var req api.ImportRequest
	if err := decodeBody(w, r, &req); err != nil || req.Notes == nil {
		h.writeError(w, http.StatusBadRequest, "Invalid notes format")
		return
	}

	count, total, err := h.notes.Import(req.Notes, req.Merge)
	if err != nil {
		h.writeStoreError(w, "Failed to import notes", err)
		return
	}

	h.writeJSON(w, http.StatusOK, api.ImportResponse{
		Success:    true,
		Message:    "Notes imported successfully",
		Count:      count,
		TotalNotes: total,
	})
}

// HandleNewPaste mints an unused short id and redirects to its editor page.
// The note itself is created lazily on first visit.
//
// GET /
func (h *Handler) HandleNewPaste(w http.ResponseWriter, r *http.Request) {
	id, err := idgen.UniqueShortID(h.notes.Exists)
	if err != nil {
		h.log.Error("Short id generation exhausted", "err", err)
		h.writeError(w, http.StatusInternalServerError, "Failed to allocate note id")
		return
	}
	http.Redirect(w, r, "/note/"+id, http.StatusFound)
}

// HandleNotePage serves the editor page for a short id, creating an empty
// note on first reference. The create is idempotent and never overwrites an
// existing note.
//
// GET /note/{id}
func (h *Handler) HandleNotePage(w http.ResponseWriter, r *http.Request) {
	if _, err := h.notes.EnsureExists(r.PathValue("id")); err != nil {
		h.writeStoreError(w, "Failed to save note", err)
		return
	}
	h.serveIndex(w, r)
}

// HandleSave is the low-latency raw content save used by the pastebin
// editor. The body's content field must be a string; anything else is
// rejected before the store is touched.
//
// POST /save/{id}
func (h *Handler) HandleSave(w http.ResponseWriter, r *http.Request) {
	var req api.SaveRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	content, ok := req.Content.(string)
	if !ok {
		h.writeError(w, http.StatusBadRequest, "Content must be a string")
		return
	}

	note, err := h.notes.UpdateContent(r.PathValue("id"), content)
	switch {
	case err == nil:
		h.writeJSON(w, http.StatusOK, api.SaveResponse{Success: true, Note: note})
	case err == interfaces.ErrNoteNotFound:
		h.writeError(w, http.StatusNotFound, "Note not found")
	default:
		h.writeStoreError(w, "Failed to save note", err)
	}
}

// HandleRawNote returns a note by short or long id. With ?raw=true the
// content is returned as plain text; otherwise the full note document.
//
// GET /api/{id}
func (h *Handler) HandleRawNote(w http.ResponseWriter, r *http.Request) {
	note, err := h.notes.Get(r.PathValue("id"))
	if err != nil {
		h.writeError(w, http.StatusNotFound, "Note not found")
		return
	}

	if r.URL.Query().Get("raw") == "true" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(note.Content)); err != nil {
			h.log.Error("Failed to write raw content", "err", err)
		}
		return
	}

	h.writeJSON(w, http.StatusOK, api.NoteResponse{Success: true, Note: note})
}

// HandleSPA serves static assets and falls back to index.html for any
// non-API path, so client-side routing works on deep links.
func (h *Handler) HandleSPA(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api") {
		h.writeError(w, http.StatusNotFound, "Not found")
		return
	}

	// Serve the asset directly when it exists on disk.
	clean := filepath.Clean(strings.TrimPrefix(r.URL.Path, "/"))
	if clean != "." && !strings.Contains(clean, "..") {
		path := filepath.Join(h.staticDir, clean)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			http.ServeFile(w, r, path)
			return
		}
	}

	h.serveIndex(w, r)
}

func (h *Handler) serveIndex(w http.ResponseWriter, r *http.Request) {
	index := filepath.Join(h.staticDir, "index.html")
	if _, err := os.Stat(index); err != nil {
		h.writeError(w, http.StatusNotFound, "Not found")
		return
	}
	http.ServeFile(w, r, index)
}

// decodeBody decodes a size-limited JSON request body into v.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	return json.NewDecoder(r.Body).Decode(v)
}
