package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/soundctl/spotmcp/internal/shared"
	"golang.org/x/oauth2"
)

// consentTimeout bounds how long the flow waits for the user to approve
// access in the browser.
const consentTimeout = 2 * time.Minute

// ConsentFlow runs the interactive authorization-code exchange: it starts a
// local callback server, opens the system browser to the authorization URL,
// and waits for the callback to deliver a token.
type ConsentFlow struct {
	addr    string
	logger  *log.Logger
	timeout time.Duration

	// openBrowser is a test hook; defaults to shared.OpenBrowser.
	openBrowser func(url string) error
}

// NewConsentFlow creates a consent flow listening on addr, which must match
// the host of the registered redirect URI.
func NewConsentFlow(addr string, logger *log.Logger) *ConsentFlow {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &ConsentFlow{
		addr:        addr,
		logger:      shared.WithLogger(logger, "component", "consent"),
		timeout:     consentTimeout,
		openBrowser: shared.OpenBrowser,
	}
}

// Run executes the flow and returns the minted token. It blocks until the
// callback arrives, the timeout elapses, or the context is canceled.
func (f *ConsentFlow) Run(ctx context.Context, config *oauth2.Config) (*oauth2.Token, error) {
	state := shared.GenerateState()
	authURL := config.AuthCodeURL(state)

	handler := NewOAuthHandler(config, state)
	router := NewBasicRouter()
	router.Use(RequestLogger(f.logger))
	router.Handler(handler)

	httpServer := &http.Server{Addr: f.addr, Handler: router}

	serverErrors := make(chan error, 1)
	go func() {
		f.logger.Info("waiting for authorization callback", "addr", f.addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	time.Sleep(100 * time.Millisecond)

	f.logger.Info("opening browser for Spotify authorization")
	if err := f.openBrowser(authURL); err != nil {
		f.logger.Warn("failed to open browser automatically", "error", err)
		fmt.Printf("Open this URL in your browser:\n%s\n\n", authURL)
	}

	timeout := time.NewTimer(f.timeout)
	defer timeout.Stop()

	var result OAuthResult

	select {
	case result = <-handler.Result():
	case err := <-serverErrors:
		return nil, fmt.Errorf("callback server error: %w", err)
	case <-timeout.C:
		f.shutdown(httpServer)
		return nil, fmt.Errorf("%w: authorization timed out after %s", shared.ErrTimeout, f.timeout)
	case <-ctx.Done():
		f.shutdown(httpServer)
		return nil, ctx.Err()
	}

	f.shutdown(httpServer)

	if result.Error() != nil {
		return nil, result.Error()
	}
	if result.Token == nil {
		return nil, fmt.Errorf("authorization completed without a token")
	}

	return result.Token, nil
}

func (f *ConsentFlow) shutdown(httpServer *http.Server) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		f.logger.Warn("error shutting down callback server", "error", err)
	}
}
