package editor

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Vault is the editor's local persistent storage, a flat string-to-string
// keyspace. It is deliberately narrow so tests can substitute an in-memory
// implementation.
type Vault interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Delete(key string) error
}

// FileVault persists the keyspace as a single pretty-printed JSON document.
type FileVault struct {
	path string

	mu   sync.Mutex
	data map[string]string
}

// NewFileVault loads (or initializes) a vault at path.
func NewFileVault(path string) (*FileVault, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create vault directory: %w", err)
	}

	v := &FileVault{path: path, data: map[string]string{}}

	raw, err := os.ReadFile(path)
	if err == nil {
		// A corrupt vault degrades to an empty one rather than failing.
		_ = json.Unmarshal(raw, &v.data)
		if v.data == nil {
			v.data = map[string]string{}
		}
	}

	return v, nil
}

// Get returns the value for key and whether it was present.
func (v *FileVault) Get(key string) (string, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	val, ok := v.data[key]
	return val, ok
}

// Set stores key and persists the whole keyspace.
func (v *FileVault) Set(key, value string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.data[key] = value
	return v.flush()
}

// Delete removes key and persists the whole keyspace.
func (v *FileVault) Delete(key string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.data, key)
	return v.flush()
}

func (v *FileVault) flush() error {
	data, err := json.MarshalIndent(v.data, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(v.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write vault: %w", err)
	}
	return nil
}

// MemVault is an in-memory Vault for tests.
type MemVault struct {
	mu   sync.Mutex
	data map[string]string
}

// NewMemVault returns an empty in-memory vault.
func NewMemVault() *MemVault {
	return &MemVault{data: map[string]string{}}
}

func (v *MemVault) Get(key string) (string, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	val, ok := v.data[key]
	return val, ok
}

func (v *MemVault) Set(key, value string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.data[key] = value
	return nil
}

func (v *MemVault) Delete(key string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.data, key)
	return nil
}
