package domain

import (
	"fmt"
	"net/http"

	"go.trai.ch/zerr"
)

var (
	// ErrNetwork is the category of failures where no response reached the client.
	ErrNetwork = zerr.New("network request failed")

	// ErrHTTPStatus is the category of failures where the server answered with a non-2xx status.
	ErrHTTPStatus = zerr.New("unexpected http status")

	// ErrMutationFailed is the category of failures surfaced by a mutation runner.
	ErrMutationFailed = zerr.New("mutation failed")

	// ErrMutationInFlight is returned when a runner is invoked while a previous invocation is pending.
	ErrMutationInFlight = zerr.New("mutation already in flight")

	// ErrMutationPanicked settles an invocation whose mutation function panicked.
	ErrMutationPanicked = zerr.New("mutation panicked")

	// ErrEncodeFailed is returned when a request body cannot be serialized.
	ErrEncodeFailed = zerr.New("failed to encode request body")

	// ErrDecodeFailed is returned when a response body cannot be parsed into the expected record.
	ErrDecodeFailed = zerr.New("failed to decode response body")

	// ErrUnexpectedData is returned when a cache entry holds data of a different type than requested.
	ErrUnexpectedData = zerr.New("cached data has unexpected type")

	// ErrInvalidKey is returned when a query key has no resource name.
	ErrInvalidKey = zerr.New("query key requires a resource name")

	// ErrStoreClosed is returned when a fetch is attempted against a closed cache store.
	ErrStoreClosed = zerr.New("cache store is closed")

	// ErrFetchAbandoned is returned when a fetch result was superseded too many times to be observed.
	ErrFetchAbandoned = zerr.New("fetch result superseded by newer requests")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrInvalidConfig is returned when a config value fails validation.
	ErrInvalidConfig = zerr.New("invalid configuration")

	// ErrInvalidBaseURL is returned when the API base URL is missing or malformed.
	ErrInvalidBaseURL = zerr.New("invalid api base url")

	// ErrSessionReadFailed is returned when the persisted session cannot be read.
	ErrSessionReadFailed = zerr.New("failed to read session")

	// ErrSessionWriteFailed is returned when the session cannot be persisted.
	ErrSessionWriteFailed = zerr.New("failed to write session")

	// ErrMissingArgument is returned when a required argument or input field is absent.
	ErrMissingArgument = zerr.New("missing required argument")

	// ErrUnknownResource is returned when a CLI command names a resource it cannot watch.
	ErrUnknownResource = zerr.New("unknown resource")
)

// NetworkError reports a transport failure: the request never produced a response.
type NetworkError struct {
	Method string
	Path   string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %s: %v", e.Method, e.Path, ErrNetwork.Error(), e.Err)
}

// Unwrap returns the underlying transport error.
func (e *NetworkError) Unwrap() error { return e.Err }

// Is reports whether target is the ErrNetwork category.
func (e *NetworkError) Is(target error) bool { return target == ErrNetwork }

// ErrorBody is the structured error payload the API returns with non-2xx responses.
type ErrorBody struct {
	Message string            `json:"message"`
	Code    string            `json:"code,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// HTTPStatusError reports a non-2xx response. Body is nil when the server sent no parsable error payload.
type HTTPStatusError struct {
	Method string
	Path   string
	Code   int
	Body   *ErrorBody
}

func (e *HTTPStatusError) Error() string {
	msg := http.StatusText(e.Code)
	if e.Body != nil && e.Body.Message != "" {
		msg = e.Body.Message
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Code, msg)
}

// Is reports whether target is the ErrHTTPStatus category.
func (e *HTTPStatusError) Is(target error) bool { return target == ErrHTTPStatus }

// Transient reports whether the status indicates a server-side failure worth retrying.
func (e *HTTPStatusError) Transient() bool { return e.Code >= http.StatusInternalServerError }

// MutationError wraps the failure of a single mutation invocation.
type MutationError struct {
	Mutation string
	Err      error
}

func (e *MutationError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Mutation, ErrMutationFailed.Error(), e.Err)
}

// Unwrap returns the network or status error that caused the mutation to fail.
func (e *MutationError) Unwrap() error { return e.Err }

// Is reports whether target is the ErrMutationFailed category.
func (e *MutationError) Is(target error) bool { return target == ErrMutationFailed }
