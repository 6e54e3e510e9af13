package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrAuthFailed     = fmt.Errorf("authentication failed")
	ErrNoRefreshToken = fmt.Errorf("no refresh token available")
	ErrRefreshFailed  = fmt.Errorf("token refresh failed")
	ErrTimeout        = fmt.Errorf("operation timed out")

	// Gateway errors. Every non-2xx Spotify response is classified as
	// exactly one of these before it leaves the client.
	ErrPermissionDenied = fmt.Errorf("permission denied")
	ErrRateLimited      = fmt.Errorf("rate limited")
	ErrRemoteService    = fmt.Errorf("remote service error")

	// Input validation errors
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrMissingArgument = fmt.Errorf("missing required argument")
)
