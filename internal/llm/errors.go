package llm

import (
	"errors"
	"fmt"
	"net/http"
)

// Configuration errors. These are returned before any process or network call.
var (
	ErrNoProviderSelected  = errors.New("no AI provider selected; configure one with 'farmer providers select'")
	ErrProviderNotFound    = errors.New("selected AI provider not found")
	ErrProviderDisabled    = errors.New("selected AI provider is disabled")
	ErrMissingAPIKey       = errors.New("API key is required")
	ErrUnsupportedProvider = errors.New("unsupported provider type")
	ErrEmptyResponse       = errors.New("backend returned an empty response")
)

// BackendError is a protocol failure reported by a backend: a non-zero exit or a non-2xx status.
type BackendError struct {
	Backend  string
	Status   int // HTTP status, 0 for CLI backends
	ExitCode int
	Detail   string // stderr or response body
}

func (e *BackendError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s returned status %d %s: %s", e.Backend, e.Status, http.StatusText(e.Status), e.Detail)
	}
	return fmt.Sprintf("%s exited with code %d: %s", e.Backend, e.ExitCode, e.Detail)
}
