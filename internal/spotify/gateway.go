package spotify

import (
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/soundctl/spotmcp/internal/auth"
	"github.com/soundctl/spotmcp/internal/server"
	"github.com/soundctl/spotmcp/internal/shared"
	"golang.org/x/oauth2"
)

// Gateway pairs the Authenticator with the typed API client. Exactly one
// Gateway exists per process when constructed through [Lazy], which makes
// the Authenticator the single owner of the token cache.
type Gateway struct {
	Client *Client
	Auth   *auth.Authenticator
}

// NewGateway wires a Gateway from configuration: token cache, interactive
// consent flow, authenticator, and API client.
func NewGateway(config *shared.Config, logger *log.Logger) (*Gateway, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	addr, err := config.CallbackAddr()
	if err != nil {
		return nil, err
	}

	oauthConfig := &oauth2.Config{
		ClientID:     config.Credentials.Spotify.ClientID,
		ClientSecret: config.Credentials.Spotify.ClientSecret,
		RedirectURL:  config.Credentials.Spotify.RedirectURI,
		Scopes:       strings.Fields(config.Credentials.Spotify.Scope),
		Endpoint:     oauth2.Endpoint{AuthURL: AuthURL, TokenURL: TokenURL},
	}

	consent := server.NewConsentFlow(addr, logger)

	authenticator, err := auth.New(auth.Options{
		Config:  oauthConfig,
		Cache:   auth.NewTokenCache(config.TokenCachePath()),
		Consent: consent.Run,
		Logger:  logger,
	})
	if err != nil {
		return nil, err
	}

	client := NewClient(authenticator, ClientOpts{Logger: logger})

	return &Gateway{Client: client, Auth: authenticator}, nil
}

// Lazy is a lazily-initialized, once-only-constructed Gateway handle.
//
// The first caller to Get constructs the Gateway; every later call, even a
// nearly simultaneous one, observes the same instance or the same
// construction error. Front ends receive the handle explicitly instead of
// reaching for process-global state.
type Lazy struct {
	build func() (*Gateway, error)

	once    sync.Once
	gateway *Gateway
	err     error
}

// NewLazy creates a handle around an arbitrary constructor. Used directly in
// tests; production code goes through [LazyFromConfig].
func NewLazy(build func() (*Gateway, error)) *Lazy {
	return &Lazy{build: build}
}

// LazyFromConfig creates the standard production handle.
func LazyFromConfig(config *shared.Config, logger *log.Logger) *Lazy {
	return NewLazy(func() (*Gateway, error) {
		return NewGateway(config, logger)
	})
}

// Get returns the shared Gateway, constructing it on first use.
func (l *Lazy) Get() (*Gateway, error) {
	l.once.Do(func() {
		l.gateway, l.err = l.build()
	})
	return l.gateway, l.err
}
