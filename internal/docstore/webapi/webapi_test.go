package webapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/pantrysync/internal/auth"
	"github.com/vbonduro/pantrysync/internal/docstore"
)

// fakeFileServer implements the minimal file API the driver targets.
type fakeFileServer struct {
	files map[string][]byte // id -> content
	names map[string]string // container/name -> id
}

func newFakeFileServer() *fakeFileServer {
	return &fakeFileServer{files: make(map[string][]byte), names: make(map[string]string)}
}

func (f *fakeFileServer) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/files", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer token123", r.Header.Get("Authorization"))

		key := r.URL.Query().Get("container") + "/" + r.URL.Query().Get("name")
		switch r.Method {
		case http.MethodGet:
			id, ok := f.names[key]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]string{"id": id, "name": r.URL.Query().Get("name")})
		case http.MethodPost:
			body, _ := io.ReadAll(r.Body)
			id := "id-" + r.URL.Query().Get("name")
			f.names[key] = id
			f.files[id] = body
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(map[string]string{"id": id, "name": r.URL.Query().Get("name")})
		}
	})

	mux.HandleFunc("/files/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer token123", r.Header.Get("Authorization"))

		id := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/files/"), "/content")
		content, ok := f.files[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		switch r.Method {
		case http.MethodGet:
			_, _ = w.Write(content)
		case http.MethodPut:
			body, _ := io.ReadAll(r.Body)
			f.files[id] = body
			w.WriteHeader(http.StatusNoContent)
		}
	})

	return mux
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	server := httptest.NewServer(newFakeFileServer().handler(t))
	t.Cleanup(server.Close)
	return New(server.URL, auth.NewStatic("token123"))
}

func TestFindMissing(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Find(context.Background(), "pantry-registry.json", "folder1")
	assert.ErrorIs(t, err, docstore.ErrNotFound)
}

func TestCreateFindReadRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, "pantry-registry.json", []byte(`{"version":"1.0.0"}`), "folder1")
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	handle, err := store.Find(ctx, "pantry-registry.json", "folder1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, handle.ID)

	content, err := store.Read(ctx, handle)
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":"1.0.0"}`, string(content))
}

func TestUpdateOverwrites(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	handle, err := store.Create(ctx, "doc.json", []byte("a"), "folder1")
	require.NoError(t, err)
	require.NoError(t, store.Update(ctx, handle, []byte("b")))

	content, err := store.Read(ctx, handle)
	require.NoError(t, err)
	assert.Equal(t, "b", string(content))
}

func TestMissingTokenFailsBeforeRequest(t *testing.T) {
	store := New("http://unreachable.invalid", auth.NewStatic(""))

	_, err := store.Find(context.Background(), "doc.json", "folder1")
	assert.ErrorIs(t, err, auth.ErrNoToken)
}
