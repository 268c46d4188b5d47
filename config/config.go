package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	ClientID        string        // OAuth2 client id
	ClientSecret    string        // OAuth2 client secret (empty for public clients)
	Authority       string        // Identity-provider authority URL
	AuthorityDomain string        // Known authority domain
	RedirectURI     string        // Registered callback URI
	Scopes          []string      // Requested token scopes
	APIBaseURL      string        // Internal backend API base URL
	Port            string        // Service port
	Production      bool          // Secure cookies when true
	TokenBuffer     time.Duration // Cached-token staleness buffer
	AccountTTL      time.Duration // Account cookie lifetime
	CompanyTTL      time.Duration // Company cookie rolling lifetime
	OAuthFlowTTL    time.Duration // oauth_state / oauth_challenge lifetime
}

// Load reads configuration from environment variables with sensible defaults.
// The OAuth client id, authority, redirect URI, scopes and backend URL are
// required; the process refuses to start without them.
func Load() (*Config, error) {
	config := &Config{
		ClientID:        getEnv("OAUTH_CLIENT_ID", ""),
		ClientSecret:    getEnv("OAUTH_CLIENT_SECRET", ""),
		Authority:       getEnv("OAUTH_AUTHORITY", ""),
		AuthorityDomain: getEnv("OAUTH_AUTHORITY_DOMAIN", ""),
		RedirectURI:     getEnv("OAUTH_REDIRECT_URI", ""),
		APIBaseURL:      getEnv("INTERNAL_API_URL", ""),
		Port:            getEnv("PORT", "3000"),
		Production:      getEnv("ENV", "development") == "production",
		TokenBuffer:     5 * time.Minute,
		AccountTTL:      30 * 24 * time.Hour,
		CompanyTTL:      24 * time.Hour,
		OAuthFlowTTL:    10 * time.Minute,
	}

	if rawScopes := getEnv("OAUTH_SCOPES", ""); rawScopes != "" {
		for _, scope := range strings.Split(rawScopes, ",") {
			if scope = strings.TrimSpace(scope); scope != "" {
				config.Scopes = append(config.Scopes, scope)
			}
		}
	}

	// Parse TOKEN_EXPIRY_BUFFER if provided
	if bufferStr := os.Getenv("TOKEN_EXPIRY_BUFFER"); bufferStr != "" {
		duration, err := time.ParseDuration(bufferStr)
		if err != nil {
			return nil, fmt.Errorf("invalid TOKEN_EXPIRY_BUFFER format: %w", err)
		}
		config.TokenBuffer = duration
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.ClientID) == "" {
		return fmt.Errorf("OAUTH_CLIENT_ID cannot be empty")
	}

	if strings.TrimSpace(c.Authority) == "" {
		return fmt.Errorf("OAUTH_AUTHORITY cannot be empty")
	}

	if strings.TrimSpace(c.AuthorityDomain) == "" {
		return fmt.Errorf("OAUTH_AUTHORITY_DOMAIN cannot be empty")
	}

	// The authority must live on the known domain; tokens are only redeemed
	// against hosts the deployment trusts.
	parsed, err := url.Parse(c.Authority)
	if err != nil || parsed.Host == "" {
		return fmt.Errorf("OAUTH_AUTHORITY is not a valid URL: %q", c.Authority)
	}
	if !strings.EqualFold(parsed.Hostname(), c.AuthorityDomain) {
		return fmt.Errorf("OAUTH_AUTHORITY host %q does not match OAUTH_AUTHORITY_DOMAIN %q",
			parsed.Hostname(), c.AuthorityDomain)
	}

	if strings.TrimSpace(c.RedirectURI) == "" {
		return fmt.Errorf("OAUTH_REDIRECT_URI cannot be empty")
	}

	if len(c.Scopes) == 0 {
		return fmt.Errorf("OAUTH_SCOPES cannot be empty")
	}

	if strings.TrimSpace(c.APIBaseURL) == "" {
		return fmt.Errorf("INTERNAL_API_URL cannot be empty")
	}

	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}

	if c.TokenBuffer <= 0 {
		return fmt.Errorf("TOKEN_EXPIRY_BUFFER must be positive")
	}

	return nil
}

// getEnv retrieves an environment variable or returns a fallback value.
func getEnv(key, fallback string) string {
	// Check for _FILE suffix
	if fileValue := os.Getenv(key + "_FILE"); fileValue != "" {
		content, err := os.ReadFile(fileValue)
		if err == nil {
			return strings.TrimSpace(string(content))
		}
	}

	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
