package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Record is the credential record persisted by the token cache.
type Record struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	Scope        string    `json:"scope"`
}

// Complete reports whether the record is fully populated. Partial records
// are never repaired; readers treat them as absent.
func (r *Record) Complete() bool {
	return r != nil && r.AccessToken != "" && r.RefreshToken != "" && !r.ExpiresAt.IsZero()
}

// Expired reports whether the record's access token has expired at the given
// instant. There is no grace window: a token expiring exactly now is expired.
func (r *Record) Expired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}

// TokenCache is a single-record durable store for the credential record.
//
// It is safe for concurrent use within one process. Concurrent processes
// sharing a cache path may race on refresh; the loser's write is lost, which
// at worst forces one extra refresh later.
type TokenCache struct {
	path string
	mu   sync.Mutex
}

// NewTokenCache creates a token cache backed by the file at path.
func NewTokenCache(path string) *TokenCache {
	return &TokenCache{path: path}
}

// Path returns the backing file location.
func (c *TokenCache) Path() string {
	return c.path
}

// Read returns the cached record, or ok=false when the backing file is
// missing, unreadable, or does not parse as a complete record. Failures are
// never surfaced as errors; a bad cache only means re-authenticating.
func (c *TokenCache) Read() (*Record, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil, false
	}

	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, false
	}

	if !record.Complete() {
		return nil, false
	}

	return &record, true
}

// Write durably persists the record, creating parent directories as needed.
//
// The record is written to a temporary file and renamed into place so a
// concurrent reader never observes a half-written record.
func (c *TokenCache) Write(record *Record) error {
	if !record.Complete() {
		return fmt.Errorf("refusing to persist incomplete credential record")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal credential record: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".token-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write credential record: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Chmod(tmpName, 0600); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to set cache permissions: %w", err)
	}

	if err := os.Rename(tmpName, c.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace cache file: %w", err)
	}

	return nil
}

// Remove deletes the backing file. Removing an absent cache is not an error.
func (c *TokenCache) Remove() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.Remove(c.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove cache file: %w", err)
	}
	return nil
}
