package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/PrathameshJoshi123/doc-generator/pkg/config"
)

func chdir(t *testing.T, dir string) {
	t.Helper()

	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		require.NoError(t, os.Chdir(old))
	})
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 8080
  frontend_url: https://docgen.example/app
github:
  client_id: file-client-id
  client_secret: file-client-secret
  redirect_uri: https://docgen.example/auth/github/callback
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, "0.0.0.0", cfg.Server.Host)
	require.Equal(t, "https://docgen.example/app", cfg.Server.FrontendURL)
	require.Equal(t, "file-client-id", cfg.GitHub.ClientID)
}

func TestLoadSubstitutesEnvVars(t *testing.T) {
	t.Setenv("DOCGEN_TEST_SECRET", "sekrit")

	path := writeConfig(t, `
github:
  client_id: the-client
  client_secret: ${DOCGEN_TEST_SECRET}
  redirect_uri: http://localhost:3001/auth/github/callback
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, "sekrit", cfg.GitHub.ClientSecret)
}

func TestLoadMissingEnvVar(t *testing.T) {
	path := writeConfig(t, `
github:
  client_secret: ${DOCGEN_TEST_UNSET_VAR}
`)

	_, err := config.Load(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "DOCGEN_TEST_UNSET_VAR")
}

func TestLoadCommentedEnvVarsIgnored(t *testing.T) {
	path := writeConfig(t, `
github:
  client_id: the-client
  client_secret: the-secret
  redirect_uri: http://localhost:3001/auth/github/callback
  # optional: ${DOCGEN_TEST_UNSET_VAR}
`)

	_, err := config.Load(path)
	require.NoError(t, err)
}

func TestLoadEnvironmentOnly(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("CONFIG_PATH", "")

	t.Setenv("GITHUB_CLIENT_ID", "env-client-id")
	t.Setenv("GITHUB_CLIENT_SECRET", "env-client-secret")
	t.Setenv("REDIRECT_URI", "http://localhost:3001/auth/github/callback")
	t.Setenv("PORT", "4000")

	cfg, err := config.Load("")
	require.NoError(t, err)

	require.Equal(t, "env-client-id", cfg.GitHub.ClientID)
	require.Equal(t, "env-client-secret", cfg.GitHub.ClientSecret)
	require.Equal(t, 4000, cfg.Server.Port)
	require.Equal(t, "/", cfg.Server.FrontendURL)
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("CONFIG_PATH", "")

	t.Setenv("GITHUB_CLIENT_ID", "env-client-id")
	t.Setenv("GITHUB_CLIENT_SECRET", "env-client-secret")
	t.Setenv("REDIRECT_URI", "")
	t.Setenv("PORT", "")

	cfg, err := config.Load("")
	require.NoError(t, err)

	require.Equal(t, 3001, cfg.Server.Port)
	require.Equal(t, "http://localhost:3001/auth/github/callback", cfg.GitHub.RedirectURI)
	require.Equal(t, 3191, cfg.Observability.MetricsPort)
}

func TestLoadRequiresCredentials(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("CONFIG_PATH", "")

	t.Setenv("GITHUB_CLIENT_ID", "")
	t.Setenv("GITHUB_CLIENT_SECRET", "")
	t.Setenv("REDIRECT_URI", "")

	_, err := config.Load("")
	require.Error(t, err)
	require.Contains(t, err.Error(), "client_id")
}

func TestLoadExplicitMissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
