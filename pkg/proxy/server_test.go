package proxy_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/PrathameshJoshi123/doc-generator/pkg/auth/session"
	"github.com/PrathameshJoshi123/doc-generator/pkg/proxy"
)

// fixture wires a proxy server against a fake GitHub API.
type fixture struct {
	router        *chi.Mux
	store         *session.MemoryStore
	upstreamCalls int
}

func newFixture(t *testing.T, upstream http.Handler) *fixture {
	t.Helper()

	f := &fixture{}

	counted := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.upstreamCalls++
		upstream.ServeHTTP(w, r)
	})

	api := httptest.NewServer(counted)
	t.Cleanup(api.Close)

	log := logrus.New()
	log.SetOutput(io.Discard)

	f.store = session.NewMemoryStore(log)
	srv := proxy.NewServer(log, f.store, proxy.NewClientFactory(api.URL))

	f.router = chi.NewRouter()
	srv.MountRoutes(f.router)

	return f
}

func (f *fixture) login(t *testing.T) {
	t.Helper()

	require.NoError(t, f.store.Save(context.Background(), &session.Session{
		UserID:      42,
		Username:    "octocat",
		AccessToken: "gho_abc123",
		Profile:     json.RawMessage(`{"id":42,"login":"octocat"}`),
		CreatedAt:   time.Now(),
	}))
}

func (f *fixture) do(method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, httptest.NewRequest(method, target, nil))

	return rec
}

func TestListReposUnauthenticated(t *testing.T) {
	f := newFixture(t, http.NotFoundHandler())

	rec := f.do(http.MethodGet, "/api/repos/42")

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.JSONEq(t, `{"error":"User not authenticated"}`, rec.Body.String())
	require.Zero(t, f.upstreamCalls, "no upstream call without a session")
}

func TestListReposInvalidUserID(t *testing.T) {
	f := newFixture(t, http.NotFoundHandler())

	rec := f.do(http.MethodGet, "/api/repos/not-a-number")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Zero(t, f.upstreamCalls)
}

func TestListReposPaginationPassthrough(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/user/repos", func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		require.Equal(t, "2", query.Get("page"))
		require.Equal(t, "10", query.Get("per_page"))
		require.Equal(t, "updated", query.Get("sort"))
		require.Equal(t, "desc", query.Get("direction"))
		require.Equal(t, "Bearer gho_abc123", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{
			"id": 7,
			"name": "docgen",
			"full_name": "octocat/docgen",
			"description": "Generates docs",
			"private": true,
			"html_url": "https://github.com/octocat/docgen",
			"language": "Go",
			"updated_at": "2024-01-02T15:04:05Z",
			"default_branch": "main",
			"stargazers_count": 9000
		}]`))
	})

	f := newFixture(t, mux)
	f.login(t)

	rec := f.do(http.MethodGet, "/api/repos/42?page=2&per_page=10")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Repos []map[string]any `json:"repos"`
		User  map[string]any   `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	require.Len(t, resp.Repos, 1)
	require.Equal(t, "docgen", resp.Repos[0]["name"])
	require.Equal(t, "octocat/docgen", resp.Repos[0]["full_name"])
	require.Equal(t, true, resp.Repos[0]["private"])
	require.Equal(t, "main", resp.Repos[0]["default_branch"])

	// The projection is reduced, never the raw upstream payload.
	require.NotContains(t, resp.Repos[0], "stargazers_count")

	// The cached profile snapshot rides along.
	require.Equal(t, "octocat", resp.User["login"])
}

func TestListReposDefaultPagination(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/user/repos", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "1", r.URL.Query().Get("page"))
		require.Equal(t, "30", r.URL.Query().Get("per_page"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	})

	f := newFixture(t, mux)
	f.login(t)

	rec := f.do(http.MethodGet, "/api/repos/42")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestListReposUpstreamFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/user/repos", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message":"API rate limit exceeded"}`))
	})

	f := newFixture(t, mux)
	f.login(t)

	rec := f.do(http.MethodGet, "/api/repos/42")
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "Failed to fetch repositories", resp["error"])
	require.Contains(t, resp["upstream"], "rate limit")
}

func TestListContentsDirectory(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/octocat/docgen/contents/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"type":"dir","name":"src","path":"src","sha":"aaa"},
			{"type":"file","name":"README.md","path":"README.md","sha":"bbb","size":12}
		]`))
	})

	f := newFixture(t, mux)
	f.login(t)

	rec := f.do(http.MethodGet, "/api/repos/42/octocat/docgen/contents")
	require.Equal(t, http.StatusOK, rec.Code)

	var entries []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 2)
	require.Equal(t, "src", entries[0]["name"])
}

func TestListContentsSingleFile(t *testing.T) {
	// GitHub's contents API is polymorphic: a file path yields one object.
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/octocat/docgen/contents/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"type":"file","name":"README.md","path":"README.md","sha":"bbb","size":12,"content":"aGVsbG8=","encoding":"base64"}`))
	})

	f := newFixture(t, mux)
	f.login(t)

	rec := f.do(http.MethodGet, "/api/repos/42/octocat/docgen/contents?path=README.md")
	require.Equal(t, http.StatusOK, rec.Code)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entry))
	require.Equal(t, "README.md", entry["name"])
}

func TestFetchFileDecodesBase64(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/octocat/docgen/contents/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"type":"file","name":"hello.txt","path":"docs/hello.txt","sha":"abc123","size":5,"content":"aGVsbG8=","encoding":"base64"}`))
	})

	f := newFixture(t, mux)
	f.login(t)

	rec := f.do(http.MethodGet, "/api/repos/42/octocat/docgen/file?path=docs/hello.txt")
	require.Equal(t, http.StatusOK, rec.Code)

	var file map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &file))
	require.Equal(t, "hello", file["content"])
	require.Equal(t, "hello.txt", file["name"])
	require.Equal(t, "docs/hello.txt", file["path"])
	require.Equal(t, "abc123", file["sha"])
	require.Equal(t, float64(5), file["size"])
}

func TestFetchFileMissingPath(t *testing.T) {
	f := newFixture(t, http.NotFoundHandler())
	f.login(t)

	rec := f.do(http.MethodGet, "/api/repos/42/octocat/docgen/file")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.JSONEq(t, `{"error":"File path is required"}`, rec.Body.String())
	require.Zero(t, f.upstreamCalls, "no upstream call without a path")
}

func TestFetchFileUnauthenticated(t *testing.T) {
	f := newFixture(t, http.NotFoundHandler())

	rec := f.do(http.MethodGet, "/api/repos/42/octocat/docgen/file?path=README.md")

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Zero(t, f.upstreamCalls)
}

func TestFetchFileUpstreamNotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/octocat/docgen/contents/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Not Found"}`))
	})

	f := newFixture(t, mux)
	f.login(t)

	rec := f.do(http.MethodGet, "/api/repos/42/octocat/docgen/file?path=missing.txt")
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "Failed to fetch file content", resp["error"])
}

func TestLogout(t *testing.T) {
	f := newFixture(t, http.NotFoundHandler())
	f.login(t)

	rec := f.do(http.MethodPost, "/api/logout/42")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"message":"Logged out successfully"}`, rec.Body.String())

	// Any proxied call after logout is unauthenticated.
	rec = f.do(http.MethodGet, "/api/repos/42")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogoutWithoutSession(t *testing.T) {
	f := newFixture(t, http.NotFoundHandler())

	rec := f.do(http.MethodPost, "/api/logout/42")
	require.Equal(t, http.StatusOK, rec.Code)
}
