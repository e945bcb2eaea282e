// Package clients provides a typed HTTP client for the notebox API, used by
// the editor CLI's remote mode and by integration tests.
package clients

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/anhtu/notebox/api"
	"github.com/anhtu/notebox/interfaces"
	"github.com/anhtu/notebox/notes"
)

// Client talks to a notebox server.
type Client struct {
	// ServerAddr is the base URL of the notebox server.
	ServerAddr string

	// HTTPClient is used for all requests; defaults to http.DefaultClient.
	HTTPClient *http.Client
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c *Client) do(method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.ServerAddr+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("could not request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp api.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Error != "" {
			return fmt.Errorf("%s returned %d: %s", path, resp.StatusCode, errResp.Error)
		}
		return fmt.Errorf("%s returned non-200 response: %d", path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("could not parse %s response: %w", path, err)
	}
	return nil
}

// List fetches all notes.
func (c *Client) List() (*api.ListNotesResponse, error) {
	var out api.ListNotesResponse
	if err := c.do(http.MethodGet, "/api/notes", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Get fetches one note by id.
func (c *Client) Get(id string) (*interfaces.Note, error) {
	var out api.NoteResponse
	if err := c.do(http.MethodGet, "/api/notes/"+id, nil, &out); err != nil {
		return nil, err
	}
	return out.Note, nil
}

// Create creates a note.
func (c *Client) Create(input notes.CreateInput) (*interfaces.Note, error) {
	var out api.NoteResponse
	if err := c.do(http.MethodPost, "/api/notes", input, &out); err != nil {
		return nil, err
	}
	return out.Note, nil
}

// Update applies a partial patch. The patch document is provided as a map so
// callers control exactly which fields appear in the body.
func (c *Client) Update(id string, patch map[string]any) (*interfaces.Note, error) {
	var out api.NoteResponse
	if err := c.do(http.MethodPut, "/api/notes/"+id, patch, &out); err != nil {
		return nil, err
	}
	return out.Note, nil
}

// Delete removes a note by id.
func (c *Client) Delete(id string) error {
	return c.do(http.MethodDelete, "/api/notes/"+id, nil, nil)
}

// VerifyPassword checks a supplied password hash against a protected note.
func (c *Client) VerifyPassword(id, passwordHash string) (*api.VerifyResponse, error) {
	var out api.VerifyResponse
	if err := c.do(http.MethodPost, "/api/notes/"+id+"/verify", api.VerifyRequest{PasswordHash: passwordHash}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateSession issues an access token for a note id.
func (c *Client) CreateSession(noteID string) (*api.CreateSessionResponse, error) {
	var out api.CreateSessionResponse
	if err := c.do(http.MethodPost, "/api/sessions", api.CreateSessionRequest{NoteID: noteID}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ValidateSession looks up a session token.
func (c *Client) ValidateSession(token string) (*api.ValidateSessionResponse, error) {
	var out api.ValidateSessionResponse
	if err := c.do(http.MethodGet, "/api/sessions/"+token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Stats fetches aggregate statistics.
func (c *Client) Stats() (*interfaces.Stats, error) {
	var out api.StatsResponse
	if err := c.do(http.MethodGet, "/api/stats", nil, &out); err != nil {
		return nil, err
	}
	return out.Stats, nil
}

// Export downloads a snapshot of all notes.
func (c *Client) Export() (*api.Snapshot, error) {
	var out api.Snapshot
	if err := c.do(http.MethodGet, "/api/export", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Import uploads a batch of notes.
func (c *Client) Import(batch []*interfaces.Note, merge bool) (*api.ImportResponse, error) {
	var out api.ImportResponse
	if err := c.do(http.MethodPost, "/api/import", api.ImportRequest{Notes: batch, Merge: merge}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Save performs the fast-path content save of the pastebin flow.
func (c *Client) Save(id, content string) error {
	return c.do(http.MethodPost, "/save/"+id, api.SaveRequest{Content: content}, nil)
}

// Raw fetches a note's content as plain text.
func (c *Client) Raw(id string) (string, error) {
	resp, err := c.httpClient().Get(c.ServerAddr + "/api/" + id + "?raw=true")
	if err != nil {
		return "", fmt.Errorf("could not request raw note: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("raw endpoint returned non-200 response: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
