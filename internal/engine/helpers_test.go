package engine

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/gitmarks/gitmarks/internal/model"
	"github.com/gitmarks/gitmarks/internal/remote"
	"github.com/gitmarks/gitmarks/internal/share"
	"github.com/gitmarks/gitmarks/internal/storage"
)

// testCreds is an in-memory credential store.
type testCreds struct {
	mu      sync.Mutex
	token   string
	cleared bool
}

func (c *testCreds) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

func (c *testCreds) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = ""
	c.cleared = true
	return nil
}

// fakeRemote is an in-memory stand-in for the hosting service: the
// contents API with conditional tokens, the trees API, and gists.
type fakeRemote struct {
	mu        sync.Mutex
	repoFiles map[string]string // path -> content
	repoRevs  map[string]int    // path -> revision, for sha generation
	gists     map[string]string // id -> managed file content
	nextGist  int

	// failStatus, when non-zero, is returned for paths listed in
	// failPaths (repo paths or "gists/<id>").
	failStatus int
	failPaths  map[string]bool
	authFail   bool

	putPaths    []string
	deletePaths []string
	gistPatches []string
	gistDeletes []string
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		repoFiles: make(map[string]string),
		repoRevs:  make(map[string]int),
		gists:     make(map[string]string),
		failPaths: make(map[string]bool),
	}
}

func (f *fakeRemote) sha(path string) string {
	return fmt.Sprintf("sha-%s-%d", path, f.repoRevs[path])
}

func (f *fakeRemote) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()

		if f.authFail {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Bad credentials"}`))
			return
		}

		switch {
		case r.URL.Path == "/user":
			_, _ = w.Write([]byte(`{"login":"tester"}`))

		case r.URL.Path == "/gists" && r.Method == "POST":
			var body struct {
				Files map[string]struct {
					Content string `json:"content"`
				} `json:"files"`
			}
			_ = json.NewDecoder(r.Body).Decode(&body)
			f.nextGist++
			id := fmt.Sprintf("gist%d", f.nextGist)
			f.gists[id] = body.Files[remote.GistFileName].Content
			_, _ = fmt.Fprintf(w, `{"id":"%s","html_url":"https://gist.github.com/%s"}`, id, id)

		case strings.HasPrefix(r.URL.Path, "/gists/"):
			id := strings.TrimPrefix(r.URL.Path, "/gists/")
			if f.failPaths["gists/"+id] {
				w.WriteHeader(f.failStatus)
				_, _ = w.Write([]byte(`{"message":"induced failure"}`))
				return
			}
			content, ok := f.gists[id]
			switch r.Method {
			case "GET":
				if !ok {
					w.WriteHeader(http.StatusNotFound)
					_, _ = w.Write([]byte(`{"message":"Not Found"}`))
					return
				}
				resp := map[string]any{
					"id":    id,
					"files": map[string]any{remote.GistFileName: map[string]any{"content": content}},
				}
				_ = json.NewEncoder(w).Encode(resp)
			case "PATCH":
				var body struct {
					Files map[string]struct {
						Content string `json:"content"`
					} `json:"files"`
				}
				_ = json.NewDecoder(r.Body).Decode(&body)
				f.gists[id] = body.Files[remote.GistFileName].Content
				f.gistPatches = append(f.gistPatches, id)
				_, _ = w.Write([]byte(`{}`))
			case "DELETE":
				if !ok {
					w.WriteHeader(http.StatusNotFound)
					_, _ = w.Write([]byte(`{"message":"Not Found"}`))
					return
				}
				delete(f.gists, id)
				f.gistDeletes = append(f.gistDeletes, id)
				w.WriteHeader(http.StatusNoContent)
			}

		case strings.HasPrefix(r.URL.Path, "/repos/me/marks/git/trees/"):
			entries := make([]map[string]string, 0, len(f.repoFiles))
			for path := range f.repoFiles {
				entries = append(entries, map[string]string{"path": path, "type": "blob"})
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"tree": entries})

		case strings.HasPrefix(r.URL.Path, "/repos/me/marks/contents/"):
			path := strings.TrimPrefix(r.URL.Path, "/repos/me/marks/contents/")
			if f.failPaths[path] {
				w.WriteHeader(f.failStatus)
				_, _ = w.Write([]byte(`{"message":"induced failure"}`))
				return
			}
			switch r.Method {
			case "GET":
				content, ok := f.repoFiles[path]
				if !ok {
					w.WriteHeader(http.StatusNotFound)
					_, _ = w.Write([]byte(`{"message":"Not Found"}`))
					return
				}
				_ = json.NewEncoder(w).Encode(map[string]string{
					"content": base64.StdEncoding.EncodeToString([]byte(content)),
					"sha":     f.sha(path),
				})
			case "PUT":
				var body struct {
					Content string `json:"content"`
					SHA     string `json:"sha"`
				}
				_ = json.NewDecoder(r.Body).Decode(&body)
				if _, exists := f.repoFiles[path]; exists && body.SHA != f.sha(path) {
					w.WriteHeader(http.StatusConflict)
					_, _ = w.Write([]byte(`{"message":"Conflict"}`))
					return
				}
				decoded, _ := base64.StdEncoding.DecodeString(body.Content)
				f.repoFiles[path] = string(decoded)
				f.repoRevs[path]++
				f.putPaths = append(f.putPaths, path)
				_, _ = w.Write([]byte(`{}`))
			case "DELETE":
				var body struct {
					SHA string `json:"sha"`
				}
				_ = json.NewDecoder(r.Body).Decode(&body)
				if _, exists := f.repoFiles[path]; !exists {
					w.WriteHeader(http.StatusNotFound)
					_, _ = w.Write([]byte(`{"message":"Not Found"}`))
					return
				}
				if body.SHA != f.sha(path) {
					w.WriteHeader(http.StatusConflict)
					_, _ = w.Write([]byte(`{"message":"Conflict"}`))
					return
				}
				delete(f.repoFiles, path)
				f.deletePaths = append(f.deletePaths, path)
				_, _ = w.Write([]byte(`{}`))
			}

		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"Not Found"}`))
		}
	})
}

func (f *fakeRemote) putCount(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, p := range f.putPaths {
		if p == path {
			n++
		}
	}
	return n
}

// testEnv wires a full engine against the fake remote and a temp tree.
type testEnv struct {
	engine   *Engine
	registry *share.Registry
	storage  storage.Storage
	remote   *fakeRemote
	creds    *testCreds
	config   *storage.Config
}

func newTestEnv(t *testing.T, store *model.Store) *testEnv {
	t.Helper()

	fake := newFakeRemote()
	server := httptest.NewServer(fake.handler())
	t.Cleanup(server.Close)

	dir := t.TempDir()
	treeStorage := storage.NewJSONStorage(filepath.Join(dir, "bookmarks.json"))
	if err := treeStorage.Save(store); err != nil {
		t.Fatalf("save fixture tree: %v", err)
	}

	registry, err := share.NewRegistry(share.NewJSONStore(filepath.Join(dir, "shares.json")))
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	creds := &testCreds{token: "t"}
	client := remote.NewClient(server.URL, creds)
	repo := remote.NewRepoClient(client, "me", "marks", "main")
	gist := remote.NewGistClient(client)

	config := &storage.Config{
		Owner:           "me",
		Repo:            "marks",
		Branch:          "main",
		Author:          "tester",
		IncludeTags:     true,
		IncludeNotes:    true,
		DebounceMs:      500,
		SyncConcurrency: 2,
		OrphanExcludes:  storage.DefaultConfig().OrphanExcludes,
	}

	eng := New(Params{
		Registry: registry,
		Storage:  treeStorage,
		Writer:   remote.NewWriter(repo, gist),
		Reader:   remote.NewReader(repo, gist),
		Guard:    remote.NewGuard(client, creds),
		Repo:     repo,
		Gist:     gist,
		Config:   config,
	})

	return &testEnv{
		engine:   eng,
		registry: registry,
		storage:  treeStorage,
		remote:   fake,
		creds:    creds,
		config:   config,
	}
}

func strPtr(s string) *string {
	return &s
}

// treeWithFolders builds a store with root folders named by the given
// names, IDs f1..fn, each holding one bookmark.
func treeWithFolders(names ...string) *model.Store {
	store := model.NewStore()
	for i, name := range names {
		id := fmt.Sprintf("f%d", i+1)
		store.AddFolder(model.Folder{ID: id, Name: name})
		store.AddBookmark(model.Bookmark{
			ID:       fmt.Sprintf("b%d", i+1),
			Title:    name + " link",
			URL:      fmt.Sprintf("https://example.com/%d", i+1),
			FolderID: strPtr(id),
		})
	}
	return store
}
