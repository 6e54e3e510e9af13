package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/soundctl/spotmcp/internal/shared"
)

func TestConsentFlow(t *testing.T) {
	t.Run("Completes On Callback", func(t *testing.T) {
		exchange := newExchangeServer(t)
		defer exchange.Close()

		addr := "127.0.0.1:28391"
		flow := NewConsentFlow(addr, shared.NewLogger(nil))
		flow.openBrowser = func(authURL string) error {
			u, err := url.Parse(authURL)
			if err != nil {
				return err
			}
			state := u.Query().Get("state")
			go func() {
				// Simulates the user approving access in the browser.
				resp, err := http.Get(fmt.Sprintf("http://%s/callback?state=%s&code=good-code", addr, state))
				if err == nil {
					resp.Body.Close()
				}
			}()
			return nil
		}

		token, err := flow.Run(context.Background(), newCallbackConfig(exchange.URL))
		if err != nil {
			t.Fatalf("expected consent flow to complete, got %v", err)
		}
		if token.AccessToken != "exchanged-token" {
			t.Errorf("expected exchanged-token, got %q", token.AccessToken)
		}
	})

	t.Run("Times Out Without Callback", func(t *testing.T) {
		flow := NewConsentFlow("127.0.0.1:28392", shared.NewLogger(nil))
		flow.timeout = 200 * time.Millisecond
		flow.openBrowser = func(string) error { return nil }

		_, err := flow.Run(context.Background(), newCallbackConfig("http://unused.invalid"))
		if !errors.Is(err, shared.ErrTimeout) {
			t.Errorf("expected ErrTimeout, got %v", err)
		}
	})

	t.Run("Context Cancellation", func(t *testing.T) {
		flow := NewConsentFlow("127.0.0.1:28393", shared.NewLogger(nil))
		flow.openBrowser = func(string) error { return nil }

		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			time.Sleep(150 * time.Millisecond)
			cancel()
		}()

		if _, err := flow.Run(ctx, newCallbackConfig("http://unused.invalid")); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}
