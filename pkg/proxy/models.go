// Package proxy exposes the authenticated GitHub repository browsing API.
package proxy

import (
	"encoding/json"
	"time"
)

// RepoSummary is the reduced repository projection returned to the frontend.
// The contract stays stable regardless of upstream schema churn, so the raw
// GitHub payload is never passed through here.
type RepoSummary struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	FullName      string    `json:"full_name"`
	Description   string    `json:"description"`
	Private       bool      `json:"private"`
	HTMLURL       string    `json:"html_url"`
	Language      string    `json:"language"`
	UpdatedAt     time.Time `json:"updated_at"`
	DefaultBranch string    `json:"default_branch"`
}

// ReposResponse pairs the repository listing with the cached profile
// snapshot, so the frontend can display identity without a second round trip.
type ReposResponse struct {
	Repos []RepoSummary   `json:"repos"`
	User  json.RawMessage `json:"user,omitempty"`
}

// FileContent is a decoded repository file.
type FileContent struct {
	Name    string `json:"name"`
	Path    string `json:"path"`
	Content string `json:"content"`
	Size    int    `json:"size"`
	SHA     string `json:"sha"`
}
