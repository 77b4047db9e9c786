// Package config provides configuration loading for the docgen gateway.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the main configuration structure.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	GitHub        GitHubConfig        `yaml:"github"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig holds server-specific configuration.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`

	// FrontendURL is where browsers are sent after the OAuth callback,
	// with the result appended as query parameters.
	FrontendURL string `yaml:"frontend_url"`
}

// GitHubConfig holds GitHub OAuth configuration.
type GitHubConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`

	// RedirectURI is the callback URL registered with the GitHub OAuth app.
	RedirectURI string `yaml:"redirect_uri"`
}

// ObservabilityConfig holds observability configuration.
type ObservabilityConfig struct {
	MetricsEnabled bool `yaml:"metrics_enabled"`
	MetricsPort    int  `yaml:"metrics_port"`
}

// envVarPattern matches ${VAR_NAME} patterns for environment variable substitution.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Load loads configuration from a YAML file with environment variable
// substitution. A missing file is only an error when a path was given
// explicitly (argument or CONFIG_PATH): the gateway can be configured
// entirely from GITHUB_CLIENT_ID, GITHUB_CLIENT_SECRET, REDIRECT_URI and
// PORT without a config file.
func Load(path string) (*Config, error) {
	explicit := path != ""

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		explicit = path != ""

		if path == "" {
			path = "config.yaml"
		}
	}

	var cfg Config

	data, err := os.ReadFile(path)

	switch {
	case err == nil:
		substituted, subErr := substituteEnvVars(string(data))
		if subErr != nil {
			return nil, fmt.Errorf("substituting env vars: %w", subErr)
		}

		if err := yaml.Unmarshal([]byte(substituted), &cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
		// Environment-only configuration.
	default:
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// substituteEnvVars replaces ${VAR_NAME} patterns with environment variable values.
// Lines that are comments (starting with #) are skipped to allow commented optional
// sections in config files without requiring their environment variables to be set.
func substituteEnvVars(content string) (string, error) {
	var missingVars []string

	lines := strings.Split(content, "\n")

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") {
			continue
		}

		lines[i] = envVarPattern.ReplaceAllStringFunc(line, func(match string) string {
			varName := envVarPattern.FindStringSubmatch(match)[1]

			value := os.Getenv(varName)
			if value == "" {
				missingVars = append(missingVars, varName)

				return match
			}

			return value
		})
	}

	if len(missingVars) > 0 {
		return "", fmt.Errorf("missing environment variables: %v", missingVars)
	}

	return strings.Join(lines, "\n"), nil
}

// applyEnv fills unset fields from the environment variables the original
// deployment used.
func applyEnv(cfg *Config) {
	if cfg.GitHub.ClientID == "" {
		cfg.GitHub.ClientID = os.Getenv("GITHUB_CLIENT_ID")
	}

	if cfg.GitHub.ClientSecret == "" {
		cfg.GitHub.ClientSecret = os.Getenv("GITHUB_CLIENT_SECRET")
	}

	if cfg.GitHub.RedirectURI == "" {
		cfg.GitHub.RedirectURI = os.Getenv("REDIRECT_URI")
	}

	if cfg.Server.FrontendURL == "" {
		cfg.Server.FrontendURL = os.Getenv("FRONTEND_URL")
	}

	if cfg.Server.Port == 0 {
		if port, err := strconv.Atoi(os.Getenv("PORT")); err == nil && port > 0 {
			cfg.Server.Port = port
		}
	}
}

// applyDefaults sets default values for configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = 3001
	}

	if cfg.Server.FrontendURL == "" {
		cfg.Server.FrontendURL = "/"
	}

	if cfg.GitHub.RedirectURI == "" {
		cfg.GitHub.RedirectURI = fmt.Sprintf("http://localhost:%d/auth/github/callback", cfg.Server.Port)
	}

	if cfg.Observability.MetricsPort == 0 {
		cfg.Observability.MetricsPort = 3191
	}
}

// Validate validates the configuration. The OAuth credentials have no sane
// defaults, so startup refuses to continue without them.
func (c *Config) Validate() error {
	if c.GitHub.ClientID == "" {
		return errors.New("github.client_id (or GITHUB_CLIENT_ID) is required")
	}

	if c.GitHub.ClientSecret == "" {
		return errors.New("github.client_secret (or GITHUB_CLIENT_SECRET) is required")
	}

	if c.GitHub.RedirectURI == "" {
		return errors.New("github.redirect_uri (or REDIRECT_URI) is required")
	}

	return nil
}
