// Package proxy exposes the authenticated GitHub repository browsing API.
package proxy

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	gh "github.com/google/go-github/v60/github"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/PrathameshJoshi123/doc-generator/pkg/auth/session"
	"github.com/PrathameshJoshi123/doc-generator/pkg/observability"
)

// Endpoint labels for metrics.
const (
	endpointRepos    = "list_repos"
	endpointContents = "contents"
	endpointFile     = "file"
)

// Pagination defaults for the repository listing.
const (
	defaultPage    = 1
	defaultPerPage = 30
)

// Server implements the repository proxy endpoints. Every endpoint resolves
// the caller's session before touching GitHub; a missing session short-circuits
// with 401 and no upstream call.
type Server struct {
	log     logrus.FieldLogger
	store   session.Store
	clients *ClientFactory
}

// NewServer creates a new proxy server.
func NewServer(log logrus.FieldLogger, store session.Store, clients *ClientFactory) *Server {
	return &Server{
		log:     log.WithField("component", "proxy_server"),
		store:   store,
		clients: clients,
	}
}

// MountRoutes mounts the proxy routes on a chi router.
func (s *Server) MountRoutes(r chi.Router) {
	r.Get("/api/repos/{userID}", s.handleListRepos)
	r.Get("/api/repos/{userID}/{owner}/{repo}/contents", s.handleListContents)
	r.Get("/api/repos/{userID}/{owner}/{repo}/file", s.handleFetchFile)
	r.Post("/api/logout/{userID}", s.handleLogout)
}

// handleListRepos lists the authenticated user's repositories, most recently
// updated first, and returns the reduced projection plus the cached profile.
func (s *Server) handleListRepos(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	sess, ok := s.session(w, r, userID, endpointRepos)
	if !ok {
		return
	}

	page := intQuery(r, "page", defaultPage)
	perPage := intQuery(r, "per_page", defaultPerPage)

	client, err := s.clients.New(sess.AccessToken)
	if err != nil {
		s.proxyError(w, endpointRepos, "Failed to fetch repositories", err)

		return
	}

	timer := prometheus.NewTimer(observability.ProxyRequestDuration.WithLabelValues(endpointRepos))
	defer timer.ObserveDuration()

	repos, _, err := client.Repositories.ListByAuthenticatedUser(r.Context(), &gh.RepositoryListByAuthenticatedUserOptions{
		Sort:      "updated",
		Direction: "desc",
		ListOptions: gh.ListOptions{
			Page:    page,
			PerPage: perPage,
		},
	})
	if err != nil {
		s.proxyError(w, endpointRepos, "Failed to fetch repositories", err)

		return
	}

	summaries := make([]RepoSummary, 0, len(repos))
	for _, repo := range repos {
		summaries = append(summaries, RepoSummary{
			ID:            repo.GetID(),
			Name:          repo.GetName(),
			FullName:      repo.GetFullName(),
			Description:   repo.GetDescription(),
			Private:       repo.GetPrivate(),
			HTMLURL:       repo.GetHTMLURL(),
			Language:      repo.GetLanguage(),
			UpdatedAt:     repo.GetUpdatedAt().Time,
			DefaultBranch: repo.GetDefaultBranch(),
		})
	}

	observability.ProxyRequestsTotal.WithLabelValues(endpointRepos, "success").Inc()

	s.writeJSON(w, http.StatusOK, ReposResponse{Repos: summaries, User: sess.Profile})
}

// handleListContents returns GitHub's contents listing for a path. The
// upstream contract is polymorphic: a directory yields an array of entries, a
// file yields a single object. Both shapes are forwarded as-is.
func (s *Server) handleListContents(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	sess, ok := s.session(w, r, userID, endpointContents)
	if !ok {
		return
	}

	owner := chi.URLParam(r, "owner")
	repo := chi.URLParam(r, "repo")
	path := r.URL.Query().Get("path")

	client, err := s.clients.New(sess.AccessToken)
	if err != nil {
		s.proxyError(w, endpointContents, "Failed to fetch repository contents", err)

		return
	}

	timer := prometheus.NewTimer(observability.ProxyRequestDuration.WithLabelValues(endpointContents))
	defer timer.ObserveDuration()

	fileContent, dirContent, _, err := client.Repositories.GetContents(r.Context(), owner, repo, path, nil)
	if err != nil {
		s.proxyError(w, endpointContents, "Failed to fetch repository contents", err)

		return
	}

	observability.ProxyRequestsTotal.WithLabelValues(endpointContents, "success").Inc()

	if fileContent != nil {
		s.writeJSON(w, http.StatusOK, fileContent)

		return
	}

	if dirContent == nil {
		dirContent = []*gh.RepositoryContent{}
	}

	s.writeJSON(w, http.StatusOK, dirContent)
}

// handleFetchFile fetches a single file and returns its decoded content.
// GitHub base64-encodes file blobs; decoding is best-effort UTF-8, so binary
// files produce garbled but non-crashing output.
func (s *Server) handleFetchFile(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		s.writeError(w, http.StatusBadRequest, "File path is required")

		return
	}

	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	sess, ok := s.session(w, r, userID, endpointFile)
	if !ok {
		return
	}

	owner := chi.URLParam(r, "owner")
	repo := chi.URLParam(r, "repo")

	client, err := s.clients.New(sess.AccessToken)
	if err != nil {
		s.proxyError(w, endpointFile, "Failed to fetch file content", err)

		return
	}

	timer := prometheus.NewTimer(observability.ProxyRequestDuration.WithLabelValues(endpointFile))
	defer timer.ObserveDuration()

	fileContent, _, _, err := client.Repositories.GetContents(r.Context(), owner, repo, path, nil)
	if err != nil {
		s.proxyError(w, endpointFile, "Failed to fetch file content", err)

		return
	}

	if fileContent == nil {
		s.proxyError(w, endpointFile, "Failed to fetch file content", errors.New("path is not a file"))

		return
	}

	content, err := fileContent.GetContent()
	if err != nil {
		s.proxyError(w, endpointFile, "Failed to fetch file content", err)

		return
	}

	observability.ProxyRequestsTotal.WithLabelValues(endpointFile, "success").Inc()

	s.writeJSON(w, http.StatusOK, FileContent{
		Name:    fileContent.GetName(),
		Path:    fileContent.GetPath(),
		Content: content,
		Size:    fileContent.GetSize(),
		SHA:     fileContent.GetSHA(),
	})
}

// handleLogout removes the user's session. The GitHub access token is NOT
// revoked upstream: it stays valid at GitHub until the user revokes the OAuth
// app themselves. Operators should treat logout as local state cleanup only.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	if err := s.store.Delete(r.Context(), userID); err != nil {
		s.log.WithError(err).Error("Failed to delete session")
		s.writeError(w, http.StatusInternalServerError, "Failed to log out")

		return
	}

	s.log.WithField("user_id", userID).Info("User logged out")

	s.writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

// userID parses the userID route parameter, responding 400 on garbage.
func (s *Server) userID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "userID")

	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid user id")

		return 0, false
	}

	return userID, true
}

// session resolves the caller's session, responding 401 when absent.
func (s *Server) session(w http.ResponseWriter, r *http.Request, userID int64, endpoint string) (*session.Session, bool) {
	sess, err := s.store.Get(r.Context(), userID)
	if err != nil {
		observability.ProxyRequestsTotal.WithLabelValues(endpoint, "unauthenticated").Inc()

		s.writeError(w, http.StatusUnauthorized, "User not authenticated")

		return nil, false
	}

	return sess, true
}

// proxyError reports an upstream failure: the full error is logged and the
// upstream message is passed to the caller alongside the generic error.
func (s *Server) proxyError(w http.ResponseWriter, endpoint, message string, err error) {
	observability.ProxyRequestsTotal.WithLabelValues(endpoint, "error").Inc()

	fields := logrus.Fields{"endpoint": endpoint}

	var errResp *gh.ErrorResponse
	if errors.As(err, &errResp) && errResp.Response != nil {
		fields["upstream_status"] = errResp.Response.StatusCode
	}

	s.log.WithError(err).WithFields(fields).Error(message)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)

	body := map[string]string{
		"error":    message,
		"upstream": err.Error(),
	}

	if encErr := json.NewEncoder(w).Encode(body); encErr != nil {
		s.log.WithError(encErr).Error("Failed to write error response")
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.WithError(err).Error("Failed to write response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(map[string]string{"error": message}); err != nil {
		s.log.WithError(err).Error("Failed to write error response")
	}
}

// intQuery parses a positive integer query parameter, falling back to def.
func intQuery(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}

	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return def
	}

	return value
}
