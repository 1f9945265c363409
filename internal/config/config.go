// Package config provides centralized configuration management for the application.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration parameters for the application. It is
// loaded once at startup and injected into each collaborator client at
// construction, so tests can substitute fakes without touching the
// environment.
type Config struct {
	GitHub    GitHubConfig
	Anthropic AnthropicConfig
	Jira      JiraConfig
	Server    ServerConfig
	CI        CIConfig
}

// GitHubConfig holds GitHub specific configuration.
type GitHubConfig struct {
	Token string
	// Domain is "github.com" or a GitHub Enterprise host
	Domain string
	// Repository is the target repository in "owner/repo" form
	Repository string
	// BaseBranch is the branch pull requests are opened against
	BaseBranch string
}

// AnthropicConfig holds generation-service configuration.
type AnthropicConfig struct {
	APIKey string
	Model  string
}

// JiraConfig holds JIRA specific configuration. All fields are optional:
// when unset, the comment-back to the originating ticket is skipped.
type JiraConfig struct {
	URL      string
	Username string
	Token    string
}

// ServerConfig holds webhook server configuration.
type ServerConfig struct {
	Addr string
}

// CIConfig holds check-run polling configuration.
type CIConfig struct {
	PollInterval time.Duration
	PollTimeout  time.Duration
}

// LoadConfig initializes and loads configuration from environment variables.
func LoadConfig() (*Config, error) {
	// Initialize Viper for environment variables
	v := viper.New()
	v.SetEnvPrefix("")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Map specific environment variables
	v.BindEnv("github.token", "GITHUB_TOKEN")
	v.BindEnv("github.domain", "GITHUB_DOMAIN")
	v.BindEnv("github.repository", "GITHUB_REPOSITORY")
	v.BindEnv("github.base_branch", "GITHUB_BASE_BRANCH")
	v.BindEnv("anthropic.api_key", "ANTHROPIC_API_KEY")
	v.BindEnv("anthropic.model", "ANTHROPIC_MODEL")
	v.BindEnv("jira.url", "JIRA_URL")
	v.BindEnv("jira.username", "JIRA_USERNAME")
	v.BindEnv("jira.token", "JIRA_TOKEN")
	v.BindEnv("server.addr", "SERVER_ADDR")
	v.BindEnv("ci.poll_interval_seconds", "CI_POLL_INTERVAL_SECONDS")
	v.BindEnv("ci.poll_timeout_seconds", "CI_POLL_TIMEOUT_SECONDS")

	v.SetDefault("github.domain", "github.com")
	v.SetDefault("github.base_branch", "main")
	v.SetDefault("anthropic.model", "claude-sonnet-4-20250514")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("ci.poll_interval_seconds", 30)
	v.SetDefault("ci.poll_timeout_seconds", 600)

	config := &Config{
		GitHub: GitHubConfig{
			Token:      v.GetString("github.token"),
			Domain:     v.GetString("github.domain"),
			Repository: v.GetString("github.repository"),
			BaseBranch: v.GetString("github.base_branch"),
		},
		Anthropic: AnthropicConfig{
			APIKey: v.GetString("anthropic.api_key"),
			Model:  v.GetString("anthropic.model"),
		},
		Jira: JiraConfig{
			URL:      v.GetString("jira.url"),
			Username: v.GetString("jira.username"),
			Token:    v.GetString("jira.token"),
		},
		Server: ServerConfig{
			Addr: v.GetString("server.addr"),
		},
		CI: CIConfig{
			PollInterval: time.Duration(v.GetInt("ci.poll_interval_seconds")) * time.Second,
			PollTimeout:  time.Duration(v.GetInt("ci.poll_timeout_seconds")) * time.Second,
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

// validateConfig ensures that all required configuration values are provided.
// Every missing variable is reported in one error so the operator fixes the
// environment in a single pass.
func validateConfig(config *Config) error {
	var missingVars []string

	if config.GitHub.Token == "" {
		missingVars = append(missingVars, "GITHUB_TOKEN")
	}
	if config.GitHub.Repository == "" {
		missingVars = append(missingVars, "GITHUB_REPOSITORY")
	}
	if config.Anthropic.APIKey == "" {
		missingVars = append(missingVars, "ANTHROPIC_API_KEY")
	}

	if len(missingVars) > 0 {
		return fmt.Errorf("missing required environment variables: %v", missingVars)
	}

	if !strings.Contains(config.GitHub.Repository, "/") {
		return fmt.Errorf("invalid repository format: %s, expected format: owner/repo", config.GitHub.Repository)
	}

	return nil
}

// JiraEnabled reports whether the optional Jira comment-back is configured.
func (c *Config) JiraEnabled() bool {
	return c.Jira.URL != "" && c.Jira.Username != "" && c.Jira.Token != ""
}
