package spotify

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/soundctl/spotmcp/internal/shared"
)

// APIError is a classified Spotify API failure. It wraps one of the shared
// gateway sentinels so callers can branch with errors.Is while still seeing
// the upstream status and message verbatim.
type APIError struct {
	Status     int
	Message    string
	RetryAfter time.Duration // suggested wait, set only for rate limiting

	kind error
}

func (e *APIError) Error() string {
	switch {
	case e.RetryAfter > 0:
		return fmt.Sprintf("%v: spotify returned %d, retry after %s: %s", e.kind, e.Status, e.RetryAfter, e.Message)
	default:
		return fmt.Sprintf("%v: spotify returned %d: %s", e.kind, e.Status, e.Message)
	}
}

func (e *APIError) Unwrap() error {
	return e.kind
}

// spotifyErrorBody is the error envelope used by the Web API.
type spotifyErrorBody struct {
	Error struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

// translate classifies a non-2xx response.
//
//   - 401/403 become permission errors with re-authentication guidance.
//   - 429 performs the single bounded grace sleep for the advertised
//     Retry-After, then still surfaces as rate limited; retrying the whole
//     operation is the caller's decision, this layer never replays the
//     request itself. Blind automatic retries on playlist mutations would
//     risk duplicate side effects.
//   - Anything else passes status and message through verbatim.
func (c *Client) translate(status int, header http.Header, body []byte) error {
	message := string(body)
	var envelope spotifyErrorBody
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		message = envelope.Error.Message
	}

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return &APIError{
			Status:  status,
			Message: fmt.Sprintf("%s (check granted scopes or re-authenticate with 'spotmcp auth login')", message),
			kind:    shared.ErrPermissionDenied,
		}

	case status == http.StatusTooManyRequests:
		retryAfter := parseRetryAfter(header.Get("Retry-After"))
		if retryAfter > 0 {
			c.logger.Warn("rate limited, pausing once before surfacing", "retry_after", retryAfter)
			c.sleep(retryAfter)
		}
		return &APIError{
			Status:     status,
			Message:    message,
			RetryAfter: retryAfter,
			kind:       shared.ErrRateLimited,
		}

	default:
		return &APIError{
			Status:  status,
			Message: message,
			kind:    shared.ErrRemoteService,
		}
	}
}

// parseRetryAfter reads a Retry-After header value in seconds. Malformed or
// missing values yield zero, meaning no grace sleep.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	seconds, err := strconv.Atoi(value)
	if err != nil || seconds < 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}
