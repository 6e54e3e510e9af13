package shared

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Credentials.Spotify.RedirectURI != "http://127.0.0.1:8888/callback" {
			t.Errorf("expected default redirect URI http://127.0.0.1:8888/callback, got %s", config.Credentials.Spotify.RedirectURI)
		}

		if config.Credentials.Spotify.ClientID != "your_spotify_client_id" {
			t.Errorf("expected placeholder client_id, got %s", config.Credentials.Spotify.ClientID)
		}

		scope := config.Credentials.Spotify.Scope
		for _, want := range []string{"user-top-read", "playlist-modify-private", "playlist-read-private", "user-read-recently-played"} {
			if !strings.Contains(scope, want) {
				t.Errorf("default scope missing %s: %s", want, scope)
			}
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		defaultConfig := DefaultConfig()
		if config.Credentials.Spotify.RedirectURI != defaultConfig.Credentials.Spotify.RedirectURI {
			t.Errorf("created config redirect URI doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[credentials.spotify]
client_id = "test_client_id"
client_secret = "test_secret"
redirect_uri = "http://localhost:9999/callback"
scope = "user-top-read"

[cache]
token_path = "/custom/token.json"
journal_path = "/custom/journal.db"
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Credentials.Spotify.ClientID != "test_client_id" {
			t.Errorf("expected client_id test_client_id, got %s", config.Credentials.Spotify.ClientID)
		}

		if config.TokenCachePath() != "/custom/token.json" {
			t.Errorf("expected configured token path, got %s", config.TokenCachePath())
		}

		if config.JournalPath() != "/custom/journal.db" {
			t.Errorf("expected configured journal path, got %s", config.JournalPath())
		}
	})

	t.Run("LoadConfig Missing File", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
			t.Error("expected error for missing config file")
		}
	})

	t.Run("ApplyEnv", func(t *testing.T) {
		t.Setenv("SPOTIFY_CLIENT_ID", "env_client_id")
		t.Setenv("SPOTIFY_TOKEN_CACHE", "/env/token.json")

		config := DefaultConfig()
		if err := ApplyEnv(config); err != nil {
			t.Fatalf("failed to apply env overrides: %v", err)
		}

		if config.Credentials.Spotify.ClientID != "env_client_id" {
			t.Errorf("expected env client_id to win, got %s", config.Credentials.Spotify.ClientID)
		}

		if config.TokenCachePath() != "/env/token.json" {
			t.Errorf("expected env token path to win, got %s", config.TokenCachePath())
		}
	})

	t.Run("Validate", func(t *testing.T) {
		config := DefaultConfig()
		if err := config.Validate(); !errors.Is(err, ErrMissingCredentials) {
			t.Errorf("placeholder credentials should fail validation, got %v", err)
		}

		config.Credentials.Spotify.ClientID = "id"
		config.Credentials.Spotify.ClientSecret = "secret"
		if err := config.Validate(); err != nil {
			t.Errorf("expected valid config, got %v", err)
		}
	})

	t.Run("CallbackAddr", func(t *testing.T) {
		config := DefaultConfig()

		addr, err := config.CallbackAddr()
		if err != nil {
			t.Fatalf("failed to derive callback address: %v", err)
		}

		if addr != "127.0.0.1:8888" {
			t.Errorf("expected 127.0.0.1:8888, got %s", addr)
		}

		config.Credentials.Spotify.RedirectURI = "not a url at all"
		if _, err := config.CallbackAddr(); err == nil {
			t.Error("expected error for redirect URI without host")
		}
	})

	t.Run("Default Cache Paths", func(t *testing.T) {
		config := DefaultConfig()

		if !strings.HasSuffix(config.TokenCachePath(), filepath.Join("spotmcp", "token.json")) {
			t.Errorf("unexpected default token path %s", config.TokenCachePath())
		}

		if !strings.HasSuffix(config.JournalPath(), filepath.Join("spotmcp", "journal.db")) {
			t.Errorf("unexpected default journal path %s", config.JournalPath())
		}
	})
}
