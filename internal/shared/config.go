package shared

import (
	_ "embed"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file,
// with environment variable overrides applied on top.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Cache       CacheConfig       `toml:"cache"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
}

// SpotifyConfig contains the Spotify OAuth2 application settings.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id" env:"SPOTIFY_CLIENT_ID"`
	ClientSecret string `toml:"client_secret" env:"SPOTIFY_CLIENT_SECRET"`
	RedirectURI  string `toml:"redirect_uri" env:"SPOTIFY_REDIRECT_URI"`
	Scope        string `toml:"scope" env:"SPOTIFY_SCOPE"`
}

// CacheConfig contains local persistence paths.
type CacheConfig struct {
	TokenPath   string `toml:"token_path" env:"SPOTIFY_TOKEN_CACHE"`
	JournalPath string `toml:"journal_path" env:"SPOTMCP_JOURNAL"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv overlays recognized environment variables onto the config.
//
// Environment values win over anything read from the TOML file.
func ApplyEnv(config *Config) error {
	if err := env.Parse(config); err != nil {
		return fmt.Errorf("failed to parse environment overrides: %w", err)
	}
	return nil
}

// Validate checks that the configuration carries enough to construct the
// Spotify gateway.
func (c *Config) Validate() error {
	if c.Credentials.Spotify.ClientID == "" || c.Credentials.Spotify.ClientID == "your_spotify_client_id" {
		return fmt.Errorf("%w: SPOTIFY_CLIENT_ID is not set", ErrMissingCredentials)
	}
	if c.Credentials.Spotify.ClientSecret == "" || c.Credentials.Spotify.ClientSecret == "your_spotify_client_secret" {
		return fmt.Errorf("%w: SPOTIFY_CLIENT_SECRET is not set", ErrMissingCredentials)
	}
	if _, err := url.Parse(c.Credentials.Spotify.RedirectURI); err != nil {
		return fmt.Errorf("%w: invalid redirect URI: %v", ErrInvalidConfig, err)
	}
	return nil
}

// CallbackAddr derives the listen address for the OAuth callback server from
// the configured redirect URI.
func (c *Config) CallbackAddr() (string, error) {
	u, err := url.Parse(c.Credentials.Spotify.RedirectURI)
	if err != nil {
		return "", fmt.Errorf("%w: invalid redirect URI: %v", ErrInvalidConfig, err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%w: redirect URI %q has no host", ErrInvalidConfig, c.Credentials.Spotify.RedirectURI)
	}
	return u.Host, nil
}

// TokenCachePath resolves the on-disk token cache location, falling back to
// a fixed path under the user cache directory when unconfigured.
func (c *Config) TokenCachePath() string {
	if c.Cache.TokenPath != "" {
		return c.Cache.TokenPath
	}
	return defaultCacheFile("token.json")
}

// JournalPath resolves the mutation journal location, falling back to a
// fixed path under the user cache directory when unconfigured.
func (c *Config) JournalPath() string {
	if c.Cache.JournalPath != "" {
		return c.Cache.JournalPath
	}
	return defaultCacheFile("journal.db")
}

func defaultCacheFile(name string) string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = "."
	}
	return filepath.Join(base, "spotmcp", name)
}
