package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gitmarks/gitmarks/internal/share"
)

func newTestWriter(t *testing.T, handler http.Handler) *Writer {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := NewClient(server.URL, &staticCreds{token: "t"})
	return NewWriter(NewRepoClient(client, "me", "marks", "main"), NewGistClient(client))
}

func repoShare() share.FolderShare {
	return share.FolderShare{
		FolderID:     "f1",
		ResourceType: share.ResourceRepo,
		ResourceID:   "me/marks",
		DisplayName:  "Reading",
		FilePath:     "bookmarks/reading.json",
	}
}

func TestWriter_PutSnapshotCreatesWithoutToken(t *testing.T) {
	var put putRequest
	w := newTestWriter(t, http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case "GET":
			rw.WriteHeader(http.StatusNotFound)
			_, _ = rw.Write([]byte(`{"message":"Not Found"}`))
		case "PUT":
			if err := json.NewDecoder(r.Body).Decode(&put); err != nil {
				t.Errorf("decode body: %v", err)
			}
			_, _ = rw.Write([]byte(`{}`))
		}
	}))

	err := w.PutSnapshot(context.Background(), repoShare(), []byte("{}"), "Sync bookmarks: Reading")
	if err != nil {
		t.Fatalf("PutSnapshot: %v", err)
	}
	if put.SHA != "" {
		t.Errorf("expected create without token, got sha %q", put.SHA)
	}
}

func TestWriter_PutSnapshotUpdatesWithCurrentToken(t *testing.T) {
	var put putRequest
	w := newTestWriter(t, http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case "GET":
			_, _ = rw.Write([]byte(`{"content": "e30=", "sha": "current"}`))
		case "PUT":
			if err := json.NewDecoder(r.Body).Decode(&put); err != nil {
				t.Errorf("decode body: %v", err)
			}
			_, _ = rw.Write([]byte(`{}`))
		}
	}))

	err := w.PutSnapshot(context.Background(), repoShare(), []byte("{}"), "Sync bookmarks: Reading")
	if err != nil {
		t.Fatalf("PutSnapshot: %v", err)
	}
	if put.SHA != "current" {
		t.Errorf("expected current token forwarded, got %q", put.SHA)
	}
}

func TestWriter_PutSnapshotSurfacesConflict(t *testing.T) {
	w := newTestWriter(t, http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case "GET":
			_, _ = rw.Write([]byte(`{"content": "e30=", "sha": "current"}`))
		case "PUT":
			rw.WriteHeader(http.StatusConflict)
			_, _ = rw.Write([]byte(`{"message":"Conflict"}`))
		}
	}))

	err := w.PutSnapshot(context.Background(), repoShare(), []byte("{}"), "m")
	if !IsConflict(err) {
		t.Errorf("expected ConflictError, got %v", err)
	}
}

func TestWriter_PutSnapshotGistIgnoresToken(t *testing.T) {
	patched := false
	w := newTestWriter(t, http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		if r.Method == "PATCH" && r.URL.Path == "/gists/abc" {
			patched = true
		}
		_, _ = rw.Write([]byte(`{}`))
	}))

	s := share.FolderShare{FolderID: "f1", ResourceType: share.ResourceGist, ResourceID: "abc"}
	if err := w.PutSnapshot(context.Background(), s, []byte("{}"), "m"); err != nil {
		t.Fatalf("PutSnapshot: %v", err)
	}
	if !patched {
		t.Error("expected a gist PATCH")
	}
}

func TestWriter_DeletePathMissingFileIsSuccess(t *testing.T) {
	deleted := false
	w := newTestWriter(t, http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		if r.Method == "DELETE" {
			deleted = true
		}
		rw.WriteHeader(http.StatusNotFound)
		_, _ = rw.Write([]byte(`{"message":"Not Found"}`))
	}))

	if err := w.DeletePath(context.Background(), "bookmarks/gone.json", "m"); err != nil {
		t.Errorf("expected success for missing file, got %v", err)
	}
	if deleted {
		t.Error("expected no delete call for a missing file")
	}
}

func TestWriter_DeletePathUsesCurrentToken(t *testing.T) {
	var del deleteRequest
	w := newTestWriter(t, http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case "GET":
			_, _ = rw.Write([]byte(`{"content": "e30=", "sha": "current"}`))
		case "DELETE":
			if err := json.NewDecoder(r.Body).Decode(&del); err != nil {
				t.Errorf("decode body: %v", err)
			}
			_, _ = rw.Write([]byte(`{}`))
		}
	}))

	if err := w.DeletePath(context.Background(), "bookmarks/reading.json", "Remove"); err != nil {
		t.Fatalf("DeletePath: %v", err)
	}
	if del.SHA != "current" {
		t.Errorf("expected current token, got %q", del.SHA)
	}
}

func TestWriter_DeleteSnapshotGistAlreadyGone(t *testing.T) {
	w := newTestWriter(t, http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(http.StatusNotFound)
		_, _ = rw.Write([]byte(`{"message":"Not Found"}`))
	}))

	s := share.FolderShare{FolderID: "f1", ResourceType: share.ResourceGist, ResourceID: "gone"}
	if err := w.DeleteSnapshot(context.Background(), s, "m"); err != nil {
		t.Errorf("expected success for missing gist, got %v", err)
	}
}

func TestWriter_PutSummaryNeverFails(t *testing.T) {
	w := newTestWriter(t, http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(http.StatusInternalServerError)
		_, _ = rw.Write([]byte(`{"message":"boom"}`))
	}))

	// Must not panic or propagate anything.
	w.PutSummary(context.Background(), "# Bookmarks", "Update bookmarks summary")
}
