// Package webapi talks to a remote file API over HTTP. It targets the small
// generic surface the engine needs (find by name, read, create, overwrite)
// and authenticates every request with a bearer token from the auth provider.
//
// Endpoint shape:
//
//	GET    {base}/files?name=<name>&container=<id>  -> {"id": "...", "name": "..."}
//	GET    {base}/files/{id}/content                -> raw document bytes
//	POST   {base}/files?name=<name>&container=<id>  -> {"id": "...", "name": "..."}
//	PUT    {base}/files/{id}/content                -> 204
package webapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/vbonduro/pantrysync/internal/auth"
	"github.com/vbonduro/pantrysync/internal/docstore"
)

type Store struct {
	baseURL string
	tokens  auth.TokenProvider
	client  *http.Client
}

func New(baseURL string, tokens auth.TokenProvider) *Store {
	return &Store{
		baseURL: baseURL,
		tokens:  tokens,
		client:  &http.Client{},
	}
}

type fileInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// newHTTPRequest creates an authenticated request. The token provider is
// consulted once per request; it owns refresh and expiry.
func (s *Store) newHTTPRequest(ctx context.Context, method, rawURL string, body io.Reader) (*http.Request, error) {
	token, err := s.tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get access token: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return req, nil
}

func (s *Store) filesURL(name, containerID string) string {
	q := url.Values{}
	q.Set("name", name)
	q.Set("container", containerID)
	return s.baseURL + "/files?" + q.Encode()
}

func (s *Store) Find(ctx context.Context, name, containerID string) (*docstore.Handle, error) {
	req, err := s.newHTTPRequest(ctx, http.MethodGet, s.filesURL(name, containerID), nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to locate document: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, docstore.ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d locating document %s", resp.StatusCode, name)
	}

	var info fileInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode file info: %w", err)
	}
	return &docstore.Handle{ID: info.ID, Name: info.Name}, nil
}

func (s *Store) Read(ctx context.Context, handle *docstore.Handle) ([]byte, error) {
	req, err := s.newHTTPRequest(ctx, http.MethodGet, s.baseURL+"/files/"+url.PathEscape(handle.ID)+"/content", nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, docstore.ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d reading document %s", resp.StatusCode, handle.Name)
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read document body: %w", err)
	}
	return content, nil
}

func (s *Store) Create(ctx context.Context, name string, content []byte, containerID string) (*docstore.Handle, error) {
	req, err := s.newHTTPRequest(ctx, http.MethodPost, s.filesURL(name, containerID), bytes.NewReader(content))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to create document: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("unexpected status %d creating document %s", resp.StatusCode, name)
	}

	var info fileInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode file info: %w", err)
	}
	return &docstore.Handle{ID: info.ID, Name: info.Name}, nil
}

func (s *Store) Update(ctx context.Context, handle *docstore.Handle, content []byte) error {
	req, err := s.newHTTPRequest(ctx, http.MethodPut, s.baseURL+"/files/"+url.PathEscape(handle.ID)+"/content", bytes.NewReader(content))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to update document: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return docstore.ErrNotFound
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("unexpected status %d updating document %s", resp.StatusCode, handle.Name)
	}
	return nil
}
