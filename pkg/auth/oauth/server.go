// Package oauth implements the GitHub OAuth2 Authorization Code flow for the
// gateway: redirect to GitHub, callback exchange, session creation.
package oauth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/PrathameshJoshi123/doc-generator/pkg/auth/github"
	"github.com/PrathameshJoshi123/doc-generator/pkg/auth/session"
	"github.com/PrathameshJoshi123/doc-generator/pkg/observability"
)

// Authenticator covers the GitHub calls the authentication flow performs.
// *github.Client is the production implementation.
type Authenticator interface {
	// AuthorizationURL generates the GitHub OAuth authorization URL.
	AuthorizationURL(redirectURI string) string

	// ExchangeCode exchanges an authorization code for an access token.
	ExchangeCode(ctx context.Context, code string) (string, error)

	// FetchProfile fetches the authenticated user's profile.
	FetchProfile(ctx context.Context, accessToken string) (*github.Profile, error)
}

// Ensure the real client satisfies the interface.
var _ Authenticator = (*github.Client)(nil)

// Server implements the authentication flow endpoints.
type Server struct {
	log         logrus.FieldLogger
	github      Authenticator
	store       session.Store
	redirectURI string
	frontendURL string
}

// NewServer creates a new authentication flow server. redirectURI is the
// callback URL registered with the GitHub OAuth app; frontendURL is where
// browsers land after the flow completes.
func NewServer(
	log logrus.FieldLogger,
	gh Authenticator,
	store session.Store,
	redirectURI string,
	frontendURL string,
) *Server {
	return &Server{
		log:         log.WithField("component", "oauth_server"),
		github:      gh,
		store:       store,
		redirectURI: redirectURI,
		frontendURL: frontendURL,
	}
}

// MountRoutes mounts the authentication routes on a chi router.
func (s *Server) MountRoutes(r chi.Router) {
	r.Get("/auth/github", s.handleLogin)
	r.Get("/auth/github/callback", s.handleCallback)
}

// handleLogin redirects the browser to GitHub's authorization page. No local
// state is created here: GitHub owns the pending authorization via the code
// it will mint.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	authURL := s.github.AuthorizationURL(s.redirectURI)

	s.log.Debug("Redirecting to GitHub authorization")

	http.Redirect(w, r, authURL, http.StatusFound)
}

// handleCallback completes the OAuth flow: exchange the code, fetch the
// profile, write the session, and send the browser back to the frontend.
// Each step aborts the pipeline on first failure.
func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	code := r.URL.Query().Get("code")
	if code == "" {
		s.log.Warn("OAuth callback without authorization code")
		s.writeError(w, http.StatusBadRequest, "Authorization code not provided")

		return
	}

	accessToken, err := s.github.ExchangeCode(ctx, code)
	if err != nil {
		s.log.WithError(err).Error("GitHub token exchange failed")
		s.redirectFailure(w, r)

		return
	}

	profile, err := s.github.FetchProfile(ctx, accessToken)
	if err != nil {
		s.log.WithError(err).Error("Failed to fetch GitHub profile")
		s.redirectFailure(w, r)

		return
	}

	sess := &session.Session{
		UserID:      profile.ID,
		Username:    profile.Login,
		AccessToken: accessToken,
		Profile:     profile.Raw,
		CreatedAt:   time.Now(),
	}

	if err := s.store.Save(ctx, sess); err != nil {
		s.log.WithError(err).Error("Failed to save session")
		s.redirectFailure(w, r)

		return
	}

	observability.LoginsTotal.WithLabelValues("success").Inc()

	s.log.WithFields(logrus.Fields{
		"user_id":  profile.ID,
		"username": profile.Login,
	}).Info("Authentication successful")

	s.redirectFrontend(w, r, url.Values{
		"success":  {"true"},
		"userId":   {strconv.FormatInt(profile.ID, 10)},
		"username": {profile.Login},
	})
}

// redirectFailure sends the browser back to the frontend with an error flag.
// No stack traces or upstream details reach the browser on this path.
func (s *Server) redirectFailure(w http.ResponseWriter, r *http.Request) {
	observability.LoginsTotal.WithLabelValues("failure").Inc()

	s.redirectFrontend(w, r, url.Values{"error": {"auth_failed"}})
}

// redirectFrontend redirects to the frontend URL with the given query
// parameters appended.
func (s *Server) redirectFrontend(w http.ResponseWriter, r *http.Request, params url.Values) {
	target := s.frontendURL

	if parsed, err := url.Parse(s.frontendURL); err == nil {
		query := parsed.Query()
		for key, values := range params {
			query[key] = values
		}

		parsed.RawQuery = query.Encode()
		target = parsed.String()
	}

	http.Redirect(w, r, target, http.StatusFound)
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(map[string]string{"error": message}); err != nil {
		s.log.WithError(err).Error("Failed to write error response")
	}
}
