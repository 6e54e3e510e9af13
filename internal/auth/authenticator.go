// Package auth drives the Spotify OAuth2 authorization-code flow and owns
// the on-disk credential record.
//
// The [Authenticator] is a state machine over three states: no token, valid
// token, expired token. A cached record, even an expired one, always goes
// through the refresh exchange first; the interactive consent flow only runs
// when no usable record exists or the refresh token itself is rejected.
package auth

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/soundctl/spotmcp/internal/shared"
	"golang.org/x/oauth2"
)

// State identifies the authenticator's view of the cached credential record.
type State int

const (
	// StateNoToken means no usable record exists; only this state may
	// trigger interactive consent.
	StateNoToken State = iota
	// StateValidToken means the cached access token is usable as-is.
	StateValidToken
	// StateExpiredToken means a record exists but its access token has
	// expired or its granted scope no longer covers the requested scope.
	StateExpiredToken
)

func (s State) String() string {
	switch s {
	case StateValidToken:
		return "valid"
	case StateExpiredToken:
		return "expired"
	default:
		return "none"
	}
}

// ConsentFunc runs the interactive authorization-code exchange and returns
// the minted token. Implementations typically open a browser and wait for
// the local callback server.
type ConsentFunc func(ctx context.Context, config *oauth2.Config) (*oauth2.Token, error)

// Options configures an Authenticator.
type Options struct {
	Config  *oauth2.Config // OAuth2 app config; Scopes may be in any order
	Cache   *TokenCache
	Consent ConsentFunc
	Logger  *log.Logger
	Now     func() time.Time // test hook, defaults to time.Now
}

// Authenticator manages the credential lifecycle for a single Spotify
// account. Safe for concurrent use; token refresh and consent run under one
// lock so only a single exchange is in flight at a time.
type Authenticator struct {
	config  *oauth2.Config
	cache   *TokenCache
	scope   string // canonical requested scope
	consent ConsentFunc
	logger  *log.Logger
	now     func() time.Time

	mu      sync.Mutex
	current *Record
}

// New creates an Authenticator, canonicalizing the requested scope and
// loading any cached record.
func New(opts Options) (*Authenticator, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("%w: oauth2 config is required", shared.ErrInvalidConfig)
	}
	if opts.Config.ClientID == "" || opts.Config.ClientSecret == "" {
		return nil, fmt.Errorf("%w: client_id and client_secret are required", shared.ErrMissingCredentials)
	}
	if opts.Cache == nil {
		return nil, fmt.Errorf("%w: token cache is required", shared.ErrInvalidConfig)
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	scope := CanonicalScope(strings.Join(opts.Config.Scopes, " "))
	opts.Config.Scopes = strings.Fields(scope)

	a := &Authenticator{
		config:  opts.Config,
		cache:   opts.Cache,
		scope:   scope,
		consent: opts.Consent,
		logger:  shared.WithLogger(opts.Logger, "component", "auth"),
		now:     opts.Now,
	}

	if record, ok := a.cache.Read(); ok {
		a.current = record
	}

	return a, nil
}

// Scope returns the canonical requested scope.
func (a *Authenticator) Scope() string {
	return a.scope
}

// State reports the current credential state.
func (a *Authenticator) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.classify(a.current)
}

func (a *Authenticator) classify(record *Record) State {
	if !record.Complete() {
		return StateNoToken
	}
	if record.Expired(a.now()) || !ScopeCovers(record.Scope, a.scope) {
		return StateExpiredToken
	}
	return StateValidToken
}

// EnsureToken returns a usable access token, refreshing or re-authorizing
// as needed. It never opens interactive consent while a refreshable record
// exists.
func (a *Authenticator) EnsureToken(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch a.classify(a.current) {
	case StateValidToken:
		return a.current.AccessToken, nil

	case StateExpiredToken:
		record, err := a.refresh(ctx)
		if err == nil {
			return record.AccessToken, nil
		}
		a.logger.Warn("token refresh failed, falling back to interactive authorization", "error", err)
		fallthrough

	default:
		record, err := a.authorize(ctx)
		if err != nil {
			return "", err
		}
		return record.AccessToken, nil
	}
}

// refresh exchanges the cached refresh token for a new access token and
// persists the result.
func (a *Authenticator) refresh(ctx context.Context) (*Record, error) {
	if a.current == nil || a.current.RefreshToken == "" {
		return nil, shared.ErrNoRefreshToken
	}

	source := a.config.TokenSource(ctx, &oauth2.Token{RefreshToken: a.current.RefreshToken})
	token, err := source.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrRefreshFailed, err)
	}

	record := a.recordFromToken(token, a.current.Scope)
	if !ScopeCovers(record.Scope, a.scope) {
		return nil, fmt.Errorf("%w: granted scope %q does not cover %q", shared.ErrRefreshFailed, record.Scope, a.scope)
	}

	a.store(record)
	return record, nil
}

// authorize runs the interactive authorization-code flow. This is the only
// path that may prompt the user.
func (a *Authenticator) authorize(ctx context.Context) (*Record, error) {
	if a.consent == nil {
		return nil, fmt.Errorf("%w: no cached token and interactive authorization is unavailable", shared.ErrAuthFailed)
	}

	a.logger.Info("starting interactive authorization", "scope", a.scope)

	token, err := a.consent(ctx, a.config)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}
	if token == nil || token.AccessToken == "" {
		return nil, fmt.Errorf("%w: authorization returned no token", shared.ErrAuthFailed)
	}

	record := a.recordFromToken(token, a.scope)
	a.store(record)
	return record, nil
}

// recordFromToken shapes an oauth2 token into a credential record. The
// granted scope comes from the token response when present, otherwise from
// fallback.
func (a *Authenticator) recordFromToken(token *oauth2.Token, fallback string) *Record {
	scope := fallback
	if granted, ok := token.Extra("scope").(string); ok && granted != "" {
		scope = granted
	}

	refresh := token.RefreshToken
	if refresh == "" && a.current != nil {
		// Spotify omits the refresh token on refresh responses.
		refresh = a.current.RefreshToken
	}

	return &Record{
		AccessToken:  token.AccessToken,
		RefreshToken: refresh,
		ExpiresAt:    token.Expiry,
		Scope:        CanonicalScope(scope),
	}
}

// store updates the in-memory record and persists it. A failed cache write
// is logged rather than swallowed: the process keeps its token, but losing
// the write forces an unnecessary re-auth on the next run.
func (a *Authenticator) store(record *Record) {
	a.current = record
	if err := a.cache.Write(record); err != nil {
		a.logger.Warn("failed to persist credential record", "path", a.cache.Path(), "error", err)
	}
}
