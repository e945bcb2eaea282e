// Package editor implements the client-side editor state machine: plaintext
// editing, an optional locked/encrypted state, and the password-derived
// transitions between them.
//
// The editor talks to a local Vault (the browser-localStorage analog), never
// to the server store. Content is persisted either as a plaintext envelope
// {content, updatedAt} or, once a password is set, as an opaque ciphertext
// blob alongside a one-way password hash used for verification.
package editor

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"regexp"
	"sync"
	"time"

	"github.com/anhtu/notebox/cryptoutils"
)

// Vault keys.
const (
	noteKey     = "note-encrypted"
	passwordKey = "note-password"
)

// DebounceInterval is the quiet period before an auto-save fires.
const DebounceInterval = time.Second

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 6

var (
	// ErrLocked is returned by operations that require the editor to be
	// unlocked first.
	ErrLocked = errors.New("unlock first")

	// ErrInvalidPassword indicates the entered password's hash did not
	// match the stored hash.
	ErrInvalidPassword = errors.New("invalid password")

	// ErrPasswordTooShort rejects passwords below MinPasswordLength.
	ErrPasswordTooShort = errors.New("password must be at least 6 characters")

	// ErrPasswordMismatch rejects a confirmation that differs from the
	// password.
	ErrPasswordMismatch = errors.New("passwords do not match")

	// ErrNotConfirmed rejects destructive operations without explicit
	// user confirmation.
	ErrNotConfirmed = errors.New("operation not confirmed")
)

// envelope is the plaintext persistence format used while the note is not
// password protected.
type envelope struct {
	Content   string    `json:"content"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Editor is the in-memory editor state. All methods are safe for concurrent
// use, though the intended model is a single interactive caller plus the
// debounced auto-save timer.
type Editor struct {
	vault  Vault
	cipher cryptoutils.Cipher
	log    *slog.Logger

	mu        sync.Mutex
	content   string
	locked    bool
	protected bool
	autoSave  bool
	lastSaved time.Time
	saveTimer *time.Timer

	// overridable for tests
	debounce time.Duration
	now      func() time.Time
}

// New creates an editor over the given vault. Call Load to pick up persisted
// state before use.
func New(vault Vault, cipher cryptoutils.Cipher, log *slog.Logger) *Editor {
	return &Editor{
		vault:    vault,
		cipher:   cipher,
		log:      log,
		autoSave: true,
		debounce: DebounceInterval,
		now:      time.Now,
	}
}

// Load restores editor state from the vault, as on a page reload. If a
// password hash is stored the editor starts Locked with the ciphertext left
// in place; otherwise the plaintext envelope (if any) is loaded.
func (e *Editor) Load() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.vault.Get(passwordKey); ok {
		e.protected = true
		e.locked = true
		e.content = ""
		return
	}

	e.protected = false
	e.locked = false

	raw, ok := e.vault.Get(noteKey)
	if !ok {
		return
	}
	var env envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		e.log.Error("Failed to load saved note", "err", err)
		return
	}
	e.content = env.Content
	e.lastSaved = env.UpdatedAt
}

// Locked reports whether the editor is in the Locked state.
func (e *Editor) Locked() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.locked
}

// Protected reports whether a password is set.
func (e *Editor) Protected() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.protected
}

// Content returns the current plaintext. Locked editors expose no content.
func (e *Editor) Content() (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.locked {
		return "", ErrLocked
	}
	return e.content, nil
}

// LastSaved returns the time of the last successful persist.
func (e *Editor) LastSaved() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastSaved
}

// SetAutoSave toggles debounced auto-saving.
func (e *Editor) SetAutoSave(enabled bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.autoSave = enabled
	if !enabled && e.saveTimer != nil {
		e.saveTimer.Stop()
		e.saveTimer = nil
	}
}

// SetContent replaces the editing buffer. While unlocked with protection off
// and auto-save enabled, a persist is scheduled after a one-second quiet
// period; each change cancels and reschedules the pending timer.
func (e *Editor) SetContent(content string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.locked {
		return ErrLocked
	}
	e.content = content

	if e.protected || !e.autoSave {
		return nil
	}
	if e.saveTimer != nil {
		e.saveTimer.Stop()
	}
	e.saveTimer = time.AfterFunc(e.debounce, e.autoSaveFire)
	return nil
}

func (e *Editor) autoSaveFire() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.locked || e.protected || !e.autoSave {
		return
	}
	if err := e.persistPlaintext(); err != nil {
		e.log.Error("Auto-save failed", "err", err)
	}
}

// Save persists immediately, bypassing the debounce. Locked editors reject
// the save.
func (e *Editor) Save() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.locked {
		return ErrLocked
	}
	return e.persistPlaintext()
}

// persistPlaintext writes the plaintext envelope. Caller holds e.mu.
func (e *Editor) persistPlaintext() error {
	env := envelope{Content: e.content, UpdatedAt: e.now()}
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}
	if err := e.vault.Set(noteKey, string(data)); err != nil {
		return err
	}
	e.lastSaved = env.UpdatedAt
	return nil
}

// SetPassword protects the note: the current content is encrypted under
// password and persisted together with a one-way hash of the password. The
// editor stays Unlocked; locking happens on the next Load, not immediately.
func (e *Editor) SetPassword(password, confirm string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.locked {
		return ErrLocked
	}
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if password != confirm {
		return ErrPasswordMismatch
	}

	ciphertext, err := e.cipher.Encrypt(e.content, password)
	if err != nil {
		return err
	}
	if err := e.vault.Set(noteKey, ciphertext); err != nil {
		return err
	}
	if err := e.vault.Set(passwordKey, cryptoutils.HashPassword(password)); err != nil {
		return err
	}

	e.protected = true
	e.locked = false
	e.log.Info("Password protection enabled")
	return nil
}

// Unlock verifies the entered password against the stored hash and, on
// match, decrypts the stored ciphertext and transitions to Unlocked. A hash
// mismatch returns ErrInvalidPassword and a decryption failure despite a
// matching hash returns cryptoutils.ErrDecryptFailed; neither changes state
// or stored bytes.
func (e *Editor) Unlock(password string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	storedHash, ok := e.vault.Get(passwordKey)
	if !ok || storedHash != cryptoutils.HashPassword(password) {
		return ErrInvalidPassword
	}

	ciphertext, ok := e.vault.Get(noteKey)
	if !ok {
		e.locked = false
		e.content = ""
		return nil
	}

	plaintext, err := e.cipher.Decrypt(ciphertext, password)
	if err != nil {
		return err
	}

	e.content = plaintext
	e.locked = false
	e.log.Info("Editor unlocked")
	return nil
}

// RemovePassword drops protection: the stored hash is deleted and the
// current content is re-persisted as a plaintext envelope. Requires explicit
// confirmation and an unlocked editor.
func (e *Editor) RemovePassword(confirmed bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !confirmed {
		return ErrNotConfirmed
	}
	if e.locked {
		return ErrLocked
	}

	if err := e.vault.Delete(passwordKey); err != nil {
		return err
	}
	e.protected = false
	if err := e.persistPlaintext(); err != nil {
		return err
	}

	e.log.Info("Password protection removed")
	return nil
}

// ImportText replaces the buffer with externally read content, as with a
// file import. Rejected while locked.
func (e *Editor) ImportText(text string) error {
	return e.SetContent(text)
}

// ExportTo writes the current plaintext to w. Rejected while locked.
func (e *Editor) ExportTo(w io.Writer) error {
	content, err := e.Content()
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, content)
	return err
}

// Clear empties the buffer. Requires explicit confirmation.
func (e *Editor) Clear(confirmed bool) error {
	if !confirmed {
		return ErrNotConfirmed
	}
	return e.SetContent("")
}

var (
	lowerRe   = regexp.MustCompile(`[a-z]`)
	upperRe   = regexp.MustCompile(`[A-Z]`)
	digitRe   = regexp.MustCompile(`\d`)
	specialRe = regexp.MustCompile(`[^a-zA-Z0-9]`)
)

// PasswordStrength scores a candidate password from 0 to 100 based on length
// and character variety.
func PasswordStrength(password string) int {
	strength := 0
	if len(password) >= 8 {
		strength += 25
	}
	if len(password) >= 12 {
		strength += 25
	}
	if lowerRe.MatchString(password) && upperRe.MatchString(password) {
		strength += 20
	}
	if digitRe.MatchString(password) {
		strength += 15
	}
	if specialRe.MatchString(password) {
		strength += 15
	}
	if strength > 100 {
		strength = 100
	}
	return strength
}
